// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

// Package database is the dashboard's data layer on embedded DuckDB.
//
// It holds the state that does not live on the portal: local user accounts,
// listing folders, the synced listing and lead mirrors, and the record of
// past bulk runs.
//
// File layout:
//   - database.go: connection lifecycle, pool tuning, prepared statement cache
//   - schema.go: table and index creation
//   - migrations.go: versioned schema migrations
//   - users.go: dashboard account store
//   - folders.go: listing folders and membership
//   - listing_cache.go: synced listing mirror with filter and aggregate queries
//   - leads_cache.go: synced lead mirror
//   - bulk_runs.go: bulk operation history
//
// DuckDB (not SQLite) backs the store so the listing cache gets OLAP-style
// aggregates (status breakdowns, per-community averages) directly in SQL.
// The driver is CGO-based (github.com/duckdb/duckdb-go/v2).
//
// All exported methods are safe for concurrent use and take a
// context.Context for cancellation. Queries are parameterized throughout;
// errors are wrapped with %w and the package exposes ErrNotFound and
// ErrDuplicate sentinels for row-level outcomes.
package database
