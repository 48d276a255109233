// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

package bulk

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// progressKeyPrefix namespaces bulk run records in BadgerDB.
const progressKeyPrefix = "bulk:run:"

// ProgressTracker persists partial run reports so an interrupted run can
// resume without re-submitting items already processed.
type ProgressTracker interface {
	Save(ctx context.Context, report *Report) error
	Load(ctx context.Context, runID string) (*Report, error)
	Clear(ctx context.Context, runID string) error
}

// BadgerProgress implements ProgressTracker using BadgerDB for persistence.
// This enables resumable runs across application restarts.
type BadgerProgress struct {
	db *badger.DB
}

// NewBadgerProgress creates a progress tracker using the provided BadgerDB instance.
func NewBadgerProgress(db *badger.DB) *BadgerProgress {
	return &BadgerProgress{db: db}
}

func progressKey(runID string) []byte {
	return []byte(progressKeyPrefix + runID)
}

// Save persists the run report to BadgerDB under its run id.
func (p *BadgerProgress) Save(ctx context.Context, report *Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	return p.db.Update(func(txn *badger.Txn) error {
		return txn.Set(progressKey(report.RunID), data)
	})
}

// Load retrieves the last saved report for a run.
// Returns nil, nil if the run has no saved progress.
func (p *BadgerProgress) Load(ctx context.Context, runID string) (*Report, error) {
	var report Report

	err := p.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(progressKey(runID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &report)
		})
	})

	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}

	if report.StartTime.IsZero() {
		return nil, nil
	}

	return &report, nil
}

// Clear removes the saved progress for a run.
func (p *BadgerProgress) Clear(ctx context.Context, runID string) error {
	return p.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete(progressKey(runID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

// InMemoryProgress implements ProgressTracker using in-memory storage.
// This is useful for testing or when persistence is not required.
type InMemoryProgress struct {
	mu   sync.Mutex
	runs map[string]*Report
}

// NewInMemoryProgress creates a new in-memory progress tracker.
func NewInMemoryProgress() *InMemoryProgress {
	return &InMemoryProgress{runs: make(map[string]*Report)}
}

// Save stores a copy of the report in memory.
func (p *InMemoryProgress) Save(_ context.Context, report *Report) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	cp := *report
	cp.Results = append([]Result(nil), report.Results...)
	p.runs[report.RunID] = &cp
	return nil
}

// Load retrieves a copy of the saved report, or nil if none exists.
func (p *InMemoryProgress) Load(_ context.Context, runID string) (*Report, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	saved, ok := p.runs[runID]
	if !ok {
		return nil, nil
	}
	cp := *saved
	cp.Results = append([]Result(nil), saved.Results...)
	return &cp, nil
}

// Clear removes the stored report for a run.
func (p *InMemoryProgress) Clear(_ context.Context, runID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.runs, runID)
	return nil
}
