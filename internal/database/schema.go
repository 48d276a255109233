// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

/*
schema.go - Database Schema Management

Tables:
  - users: local dashboard accounts with bcrypt password hashes
  - folders: listing groupings owned by a user
  - folder_listings: membership rows linking folders to listing references
  - listing_cache: portal listings mirrored by the sync manager, with the
    full document stored as JSON alongside the columns used for filtering
  - leads_cache: portal leads mirrored by the sync manager
  - bulk_runs: record of past bulk operations with their full reports

All columns are defined in the initial CREATE TABLE statements. Incremental
changes after release go through versioned migrations in migrations.go.
*/

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core database tables.
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}

func tableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			email TEXT,
			role TEXT NOT NULL DEFAULT 'agent',
			password_hash TEXT NOT NULL,
			active BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			last_login_at TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS folders (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			owner_id UUID NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS folder_listings (
			folder_id UUID NOT NULL,
			listing_ref TEXT NOT NULL,
			added_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (folder_id, listing_ref)
		)`,

		// The full listing document lives in payload; the other columns
		// exist for filtering and aggregation without JSON extraction.
		`CREATE TABLE IF NOT EXISTS listing_cache (
			id TEXT PRIMARY KEY,
			reference_number TEXT,
			title TEXT,
			property_type TEXT,
			offering_type TEXT,
			status TEXT,
			price DOUBLE,
			bedrooms INTEGER,
			city TEXT,
			community TEXT,
			agent_id TEXT,
			featured BOOLEAN NOT NULL DEFAULT false,
			payload TEXT NOT NULL,
			synced_at TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS leads_cache (
			id TEXT PRIMARY KEY,
			listing_reference TEXT,
			name TEXT,
			email TEXT,
			phone TEXT,
			channel TEXT,
			message TEXT,
			received_at TIMESTAMP,
			synced_at TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS bulk_runs (
			id TEXT PRIMARY KEY,
			operation TEXT NOT NULL,
			source TEXT,
			total INTEGER NOT NULL DEFAULT 0,
			succeeded INTEGER NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0,
			started_at TIMESTAMP NOT NULL,
			completed_at TIMESTAMP,
			started_by TEXT,
			report TEXT
		)`,
	}
}

// createIndexes creates indexes for the common query patterns.
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_listing_cache_status ON listing_cache (status)`,
		`CREATE INDEX IF NOT EXISTS idx_listing_cache_reference ON listing_cache (reference_number)`,
		`CREATE INDEX IF NOT EXISTS idx_listing_cache_agent ON listing_cache (agent_id)`,
		`CREATE INDEX IF NOT EXISTS idx_listing_cache_community ON listing_cache (city, community)`,
		`CREATE INDEX IF NOT EXISTS idx_leads_cache_listing ON leads_cache (listing_reference)`,
		`CREATE INDEX IF NOT EXISTS idx_leads_cache_received ON leads_cache (received_at)`,
		`CREATE INDEX IF NOT EXISTS idx_folders_owner ON folders (owner_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bulk_runs_started ON bulk_runs (started_at)`,
	}

	for _, query := range indexes {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", query, err)
		}
	}
	return nil
}
