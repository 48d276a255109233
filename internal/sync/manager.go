// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

package sync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okhalidi/propdock/internal/config"
	"github.com/okhalidi/propdock/internal/logging"
	"github.com/okhalidi/propdock/internal/metrics"
	"github.com/okhalidi/propdock/internal/models"
	"github.com/okhalidi/propdock/internal/pf"
)

// Store is the snapshot storage surface the manager needs. *database.DB
// satisfies it.
type Store interface {
	ReplaceListings(ctx context.Context, listings []models.Listing) error
	UpsertLeads(ctx context.Context, leads []models.Lead) error
}

// Portal is the portal read surface the manager needs. pf.API satisfies it.
type Portal interface {
	ListListings(ctx context.Context, opts pf.ListOptions) (*pf.ListingsPage, error)
	Leads(ctx context.Context, opts pf.LeadOptions) ([]models.Lead, error)
}

// Manager keeps the local DuckDB snapshot in step with the portal. It
// refreshes on a fixed interval and on demand via TriggerSync.
type Manager struct {
	store  Store
	portal Portal
	cfg    *config.SyncConfig

	mu       sync.RWMutex
	running  bool
	syncing  bool
	lastSync time.Time

	// syncMu serializes refreshes so a manual trigger cannot overlap the
	// periodic one.
	syncMu sync.Mutex

	onSyncCompleted func(listings, leads int)

	trigger  chan struct{}
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewManager creates a sync manager. It does nothing until Start.
func NewManager(store Store, portal Portal, cfg *config.SyncConfig) *Manager {
	return &Manager{
		store:    store,
		portal:   portal,
		cfg:      cfg,
		trigger:  make(chan struct{}, 1),
		stopChan: make(chan struct{}),
	}
}

// SetOnSyncCompleted sets the callback invoked after each successful
// refresh. The dashboard uses it to drop cached responses.
func (m *Manager) SetOnSyncCompleted(callback func(listings, leads int)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onSyncCompleted = callback
}

// Start runs an initial refresh in the background and begins the
// periodic loop.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return fmt.Errorf("sync manager is already running")
	}
	m.running = true
	m.mu.Unlock()

	interval := m.cfg.Interval
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	logging.Info().
		Dur("interval", interval).
		Int("page_size", m.pageSize()).
		Msg("Starting sync manager")

	m.wg.Add(1)
	go m.loop(ctx, interval)

	return nil
}

// Stop halts the loop and waits for any refresh in flight.
func (m *Manager) Stop() error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return fmt.Errorf("sync manager is not running")
	}
	m.running = false
	m.mu.Unlock()

	close(m.stopChan)
	m.wg.Wait()
	logging.Info().Msg("Sync manager stopped")
	return nil
}

// TriggerSync requests an immediate refresh. Non-blocking; a request
// while a refresh is pending is coalesced into it.
func (m *Manager) TriggerSync() {
	select {
	case m.trigger <- struct{}{}:
	default:
	}
}

// LastSyncTime returns when the last successful refresh finished.
func (m *Manager) LastSyncTime() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastSync
}

// IsSyncing reports whether a refresh is in flight.
func (m *Manager) IsSyncing() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.syncing
}

func (m *Manager) loop(ctx context.Context, interval time.Duration) {
	defer m.wg.Done()

	// Initial refresh populates the snapshot before the first tick.
	m.refresh(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.refresh(ctx)
		case <-m.trigger:
			m.refresh(ctx)
		}
	}
}

// refresh runs one full snapshot refresh with retries.
func (m *Manager) refresh(ctx context.Context) {
	m.syncMu.Lock()
	defer m.syncMu.Unlock()

	m.mu.Lock()
	m.syncing = true
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.syncing = false
		m.mu.Unlock()
	}()

	start := time.Now()

	attempts := m.cfg.RetryAttempts
	if attempts <= 0 {
		attempts = 1
	}
	delay := m.cfg.RetryDelay
	if delay <= 0 {
		delay = 5 * time.Second
	}

	var listings, leads int
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		listings, leads, err = m.syncOnce(ctx)
		if err == nil {
			break
		}
		if ctx.Err() != nil {
			return
		}
		logging.Warn().Err(err).
			Int("attempt", attempt).
			Int("max_attempts", attempts).
			Msg("Snapshot refresh failed")
		if attempt < attempts {
			select {
			case <-time.After(delay):
			case <-m.stopChan:
				return
			case <-ctx.Done():
				return
			}
		}
	}

	elapsed := time.Since(start)
	metrics.SyncDuration.Observe(elapsed.Seconds())

	if err != nil {
		metrics.SyncErrors.Inc()
		return
	}

	metrics.SyncListingsFetched.Set(float64(listings))

	m.mu.Lock()
	m.lastSync = time.Now()
	callback := m.onSyncCompleted
	m.mu.Unlock()

	logging.Info().
		Int("listings", listings).
		Int("leads", leads).
		Dur("duration", elapsed).
		Msg("Snapshot refreshed")

	if callback != nil {
		callback(listings, leads)
	}
}

// syncOnce pulls every listing page and the lead backlog, then swaps
// them into the snapshot.
func (m *Manager) syncOnce(ctx context.Context) (int, int, error) {
	listings, err := m.fetchAllListings(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("fetch listings: %w", err)
	}
	if err := m.store.ReplaceListings(ctx, listings); err != nil {
		return 0, 0, fmt.Errorf("store listings: %w", err)
	}

	leads, err := m.fetchAllLeads(ctx)
	if err != nil {
		// A lead fetch failure does not invalidate the listing snapshot
		// already stored; report it so the refresh retries.
		return len(listings), 0, fmt.Errorf("fetch leads: %w", err)
	}
	if err := m.store.UpsertLeads(ctx, leads); err != nil {
		return len(listings), 0, fmt.Errorf("store leads: %w", err)
	}

	return len(listings), len(leads), nil
}

func (m *Manager) fetchAllListings(ctx context.Context) ([]models.Listing, error) {
	pageSize := m.pageSize()

	var all []models.Listing
	for offset := 0; ; offset += pageSize {
		page, err := m.portal.ListListings(ctx, pf.ListOptions{Limit: pageSize, Offset: offset})
		if err != nil {
			return nil, err
		}
		all = append(all, page.Results...)

		if len(page.Results) < pageSize {
			return all, nil
		}
		if page.Total > 0 && len(all) >= page.Total {
			return all, nil
		}
	}
}

func (m *Manager) fetchAllLeads(ctx context.Context) ([]models.Lead, error) {
	pageSize := m.pageSize()

	var all []models.Lead
	for offset := 0; ; offset += pageSize {
		batch, err := m.portal.Leads(ctx, pf.LeadOptions{Limit: pageSize, Offset: offset})
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)

		if len(batch) < pageSize {
			return all, nil
		}
	}
}

func (m *Manager) pageSize() int {
	if m.cfg.PageSize > 0 {
		return m.cfg.PageSize
	}
	return 100
}
