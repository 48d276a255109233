// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

package sync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okhalidi/propdock/internal/config"
	"github.com/okhalidi/propdock/internal/models"
	"github.com/okhalidi/propdock/internal/pf"
)

type fakeStore struct {
	mu       sync.Mutex
	listings []models.Listing
	leads    []models.Lead
	replaces int
}

func (s *fakeStore) ReplaceListings(ctx context.Context, listings []models.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listings = listings
	s.replaces++
	return nil
}

func (s *fakeStore) UpsertLeads(ctx context.Context, leads []models.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leads = append(s.leads, leads...)
	return nil
}

func (s *fakeStore) snapshot() ([]models.Listing, []models.Lead, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listings, s.leads, s.replaces
}

type fakeSyncPortal struct {
	mu       sync.Mutex
	listings []models.Listing
	leads    []models.Lead

	listErrs int
	calls    int
}

func (p *fakeSyncPortal) ListListings(ctx context.Context, opts pf.ListOptions) (*pf.ListingsPage, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls++
	if p.listErrs > 0 {
		p.listErrs--
		return nil, errors.New("portal unavailable")
	}

	end := opts.Offset + opts.Limit
	if end > len(p.listings) {
		end = len(p.listings)
	}
	start := opts.Offset
	if start > len(p.listings) {
		start = len(p.listings)
	}
	return &pf.ListingsPage{
		Results: p.listings[start:end],
		Total:   len(p.listings),
		Limit:   opts.Limit,
		Offset:  opts.Offset,
	}, nil
}

func (p *fakeSyncPortal) Leads(ctx context.Context, opts pf.LeadOptions) ([]models.Lead, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	end := opts.Offset + opts.Limit
	if end > len(p.leads) {
		end = len(p.leads)
	}
	start := opts.Offset
	if start > len(p.leads) {
		start = len(p.leads)
	}
	return p.leads[start:end], nil
}

func makeListings(n int) []models.Listing {
	listings := make([]models.Listing, n)
	for i := range listings {
		listings[i] = models.Listing{
			ID:           fmt.Sprintf("L-%d", i),
			Title:        fmt.Sprintf("Listing %d", i),
			PropertyType: "AP",
			OfferingType: models.OfferingSale,
			Status:       models.StatusLive,
		}
	}
	return listings
}

func TestManagerRefresh(t *testing.T) {
	t.Run("pages through the full portal index", func(t *testing.T) {
		store := &fakeStore{}
		portal := &fakeSyncPortal{
			listings: makeListings(7),
			leads:    []models.Lead{{ID: "lead-1"}, {ID: "lead-2"}},
		}
		m := NewManager(store, portal, &config.SyncConfig{PageSize: 3})

		m.refresh(context.Background())

		listings, leads, replaces := store.snapshot()
		if len(listings) != 7 {
			t.Errorf("expected 7 listings stored, got %d", len(listings))
		}
		if len(leads) != 2 {
			t.Errorf("expected 2 leads stored, got %d", len(leads))
		}
		if replaces != 1 {
			t.Errorf("expected one snapshot swap, got %d", replaces)
		}
		if m.LastSyncTime().IsZero() {
			t.Error("expected last sync time to be set")
		}
	})

	t.Run("retries transient failures", func(t *testing.T) {
		store := &fakeStore{}
		portal := &fakeSyncPortal{
			listings: makeListings(2),
			listErrs: 2,
		}
		m := NewManager(store, portal, &config.SyncConfig{
			PageSize:      10,
			RetryAttempts: 3,
			RetryDelay:    time.Millisecond,
		})

		m.refresh(context.Background())

		if _, _, replaces := store.snapshot(); replaces != 1 {
			t.Fatalf("expected refresh to succeed on the third attempt, replaces=%d", replaces)
		}
	})

	t.Run("gives up after the attempt budget", func(t *testing.T) {
		store := &fakeStore{}
		portal := &fakeSyncPortal{
			listings: makeListings(2),
			listErrs: 5,
		}
		m := NewManager(store, portal, &config.SyncConfig{
			PageSize:      10,
			RetryAttempts: 2,
			RetryDelay:    time.Millisecond,
		})

		m.refresh(context.Background())

		if _, _, replaces := store.snapshot(); replaces != 0 {
			t.Fatalf("expected no snapshot swap after exhausted retries, replaces=%d", replaces)
		}
		if !m.LastSyncTime().IsZero() {
			t.Error("failed refresh must not advance last sync time")
		}
	})

	t.Run("invokes the completion callback", func(t *testing.T) {
		store := &fakeStore{}
		portal := &fakeSyncPortal{listings: makeListings(4)}
		m := NewManager(store, portal, &config.SyncConfig{PageSize: 10})

		var gotListings, gotLeads int
		m.SetOnSyncCompleted(func(listings, leads int) {
			gotListings, gotLeads = listings, leads
		})

		m.refresh(context.Background())

		if gotListings != 4 || gotLeads != 0 {
			t.Errorf("callback got listings=%d leads=%d", gotListings, gotLeads)
		}
	})
}

func TestManagerLifecycle(t *testing.T) {
	store := &fakeStore{}
	portal := &fakeSyncPortal{listings: makeListings(1)}
	m := NewManager(store, portal, &config.SyncConfig{
		PageSize: 10,
		Interval: time.Hour,
	})

	ctx := context.Background()
	if err := m.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := m.Start(ctx); err == nil {
		t.Error("second start must fail")
	}

	// The initial refresh runs in the background.
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if _, _, replaces := store.snapshot(); replaces >= 1 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if _, _, replaces := store.snapshot(); replaces == 0 {
		t.Fatal("initial refresh never ran")
	}

	m.TriggerSync()
	deadline = time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if _, _, replaces := store.snapshot(); replaces >= 2 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if _, _, replaces := store.snapshot(); replaces < 2 {
		t.Fatal("manual trigger never ran")
	}

	if err := m.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := m.Stop(); err == nil {
		t.Error("second stop must fail")
	}
}
