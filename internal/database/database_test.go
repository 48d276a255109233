// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

package database

import (
	"context"
	"testing"
	"time"

	"github.com/okhalidi/propdock/internal/config"
)

// testDBSemaphore limits concurrent database creation. Parallel DuckDB CGO
// calls under CI resource pressure can hang, so tests are serialized.
var testDBSemaphore = make(chan struct{}, 1)

// setupTestDB creates an in-memory test database. The semaphore is held for
// the entire test lifecycle so only one test has an active connection.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() {
		<-testDBSemaphore
	})

	cfg := &config.DatabaseConfig{
		Path:      ":memory:",
		MaxMemory: "1GB",
	}

	db, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})

	return db
}

func TestNew(t *testing.T) {
	db := setupTestDB(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.Ping(ctx); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestSchemaIsIdempotent(t *testing.T) {
	db := setupTestDB(t)

	// Re-running initialization must not fail on existing tables.
	if err := db.initialize(); err != nil {
		t.Errorf("second initialize() error = %v", err)
	}
}

func TestMigrationsTableExists(t *testing.T) {
	db := setupTestDB(t)

	ctx := context.Background()
	applied, err := db.getAppliedMigrations(ctx)
	if err != nil {
		t.Fatalf("getAppliedMigrations() error = %v", err)
	}
	if len(applied) != 0 {
		t.Errorf("expected no applied migrations on fresh database, got %d", len(applied))
	}
}
