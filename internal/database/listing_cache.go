// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

/*
listing_cache.go - Synced Listing Mirror

The sync manager mirrors the account's portal listings into listing_cache so
the dashboard can filter, search and aggregate without hitting the portal on
every page load. Each row stores the full listing document as JSON plus the
columns the dashboard filters on.
*/

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/okhalidi/propdock/internal/metrics"
	"github.com/okhalidi/propdock/internal/models"
)

// ListingFilter narrows ListCachedListings results.
type ListingFilter struct {
	Status       string
	PropertyType string
	OfferingType string
	AgentID      string
	// Search matches title and reference number, case-insensitive.
	Search string

	Limit  int
	Offset int
}

// ReplaceListings swaps the cached listing set for the given one inside a
// transaction. The sync manager calls this after a full portal fetch.
func (db *DB) ReplaceListings(ctx context.Context, listings []models.Listing) error {
	start := time.Now()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace listings: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM listing_cache`); err != nil {
		return fmt.Errorf("clear listing cache: %w", err)
	}

	syncedAt := time.Now().UTC()
	for i := range listings {
		if err := insertListingTx(ctx, tx, &listings[i], syncedAt); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace listings: %w", err)
	}

	metrics.ObserveDBQuery("replace", "listing_cache", time.Since(start), nil)
	return nil
}

// UpsertListing inserts or refreshes a single cached listing.
func (db *DB) UpsertListing(ctx context.Context, listing *models.Listing) error {
	payload, err := json.Marshal(listing)
	if err != nil {
		return fmt.Errorf("marshal listing: %w", err)
	}

	stmt, err := db.prepared(ctx,
		`INSERT OR REPLACE INTO listing_cache
		 (id, reference_number, title, property_type, offering_type, status,
		  price, bedrooms, city, community, agent_id, featured, payload, synced_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}

	if _, err := stmt.ExecContext(ctx, listingCacheArgs(listing, payload, time.Now().UTC())...); err != nil {
		return fmt.Errorf("upsert listing: %w", err)
	}
	return nil
}

// DeleteCachedListing removes a listing from the cache.
func (db *DB) DeleteCachedListing(ctx context.Context, id string) error {
	_, err := db.conn.ExecContext(ctx, `DELETE FROM listing_cache WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete cached listing: %w", err)
	}
	return nil
}

// GetCachedListing returns one cached listing document.
func (db *DB) GetCachedListing(ctx context.Context, id string) (*models.Listing, error) {
	stmt, err := db.prepared(ctx, `SELECT payload FROM listing_cache WHERE id = ?`)
	if err != nil {
		return nil, err
	}

	var payload string
	err = stmt.QueryRowContext(ctx, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get cached listing: %w", err)
	}

	var listing models.Listing
	if err := json.Unmarshal([]byte(payload), &listing); err != nil {
		return nil, fmt.Errorf("unmarshal cached listing: %w", err)
	}
	return &listing, nil
}

// ListCachedListings returns a filtered page of cached listings plus the
// total count matching the filter.
func (db *DB) ListCachedListings(ctx context.Context, filter ListingFilter) ([]models.Listing, int, error) {
	start := time.Now()

	where, args := listingFilterClause(filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM listing_cache` + where
	if err := db.conn.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count cached listings: %w", err)
	}

	query := `SELECT payload FROM listing_cache` + where + ` ORDER BY reference_number`
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, filter.Offset)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list cached listings: %w", err)
	}
	defer rows.Close()

	var listings []models.Listing
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, 0, fmt.Errorf("scan cached listing: %w", err)
		}
		var listing models.Listing
		if err := json.Unmarshal([]byte(payload), &listing); err != nil {
			return nil, 0, fmt.Errorf("unmarshal cached listing: %w", err)
		}
		listings = append(listings, listing)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	metrics.ObserveDBQuery("list", "listing_cache", time.Since(start), nil)
	return listings, total, nil
}

// CountListingsByStatus returns the cached listing count per status.
func (db *DB) CountListingsByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM listing_cache GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count listings by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status sql.NullString
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[status.String] = count
	}
	return counts, rows.Err()
}

// CommunityCount is one row of the community aggregate.
type CommunityCount struct {
	City      string  `json:"city"`
	Community string  `json:"community"`
	Count     int     `json:"count"`
	AvgPrice  float64 `json:"avg_price"`
}

// ListingsByCommunity aggregates cached listings per community, ordered by
// listing count.
func (db *DB) ListingsByCommunity(ctx context.Context, limit int) ([]CommunityCount, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT COALESCE(city, ''), COALESCE(community, ''), COUNT(*), COALESCE(AVG(price), 0)
		 FROM listing_cache
		 GROUP BY city, community
		 ORDER BY COUNT(*) DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listings by community: %w", err)
	}
	defer rows.Close()

	var counts []CommunityCount
	for rows.Next() {
		var c CommunityCount
		if err := rows.Scan(&c.City, &c.Community, &c.Count, &c.AvgPrice); err != nil {
			return nil, fmt.Errorf("scan community count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// LastListingSync returns when the listing cache was last refreshed, or the
// zero time if it never was.
func (db *DB) LastListingSync(ctx context.Context) (time.Time, error) {
	var syncedAt sql.NullTime
	err := db.conn.QueryRowContext(ctx,
		`SELECT MAX(synced_at) FROM listing_cache`).Scan(&syncedAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("last listing sync: %w", err)
	}
	if !syncedAt.Valid {
		return time.Time{}, nil
	}
	return syncedAt.Time, nil
}

func insertListingTx(ctx context.Context, tx *sql.Tx, listing *models.Listing, syncedAt time.Time) error {
	payload, err := json.Marshal(listing)
	if err != nil {
		return fmt.Errorf("marshal listing %s: %w", listing.Reference(), err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO listing_cache
		 (id, reference_number, title, property_type, offering_type, status,
		  price, bedrooms, city, community, agent_id, featured, payload, synced_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		listingCacheArgs(listing, payload, syncedAt)...)
	if err != nil {
		return fmt.Errorf("insert listing %s: %w", listing.Reference(), err)
	}
	return nil
}

func listingCacheArgs(listing *models.Listing, payload []byte, syncedAt time.Time) []any {
	var price any
	if listing.Price != nil {
		price = listing.Price.Amount
	}
	var bedrooms any
	if listing.Bedrooms != nil {
		bedrooms = *listing.Bedrooms
	}
	var city, community any
	if listing.Location != nil {
		city = listing.Location.City
		community = listing.Location.Community
	}

	return []any{
		listing.ID, listing.ReferenceNumber, listing.Title,
		string(listing.PropertyType), string(listing.OfferingType), string(listing.Status),
		price, bedrooms, city, community, listing.AgentID, listing.Featured,
		string(payload), syncedAt,
	}
}

func listingFilterClause(filter ListingFilter) (string, []any) {
	var clauses []string
	var args []any

	if filter.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.PropertyType != "" {
		clauses = append(clauses, "property_type = ?")
		args = append(args, filter.PropertyType)
	}
	if filter.OfferingType != "" {
		clauses = append(clauses, "offering_type = ?")
		args = append(args, filter.OfferingType)
	}
	if filter.AgentID != "" {
		clauses = append(clauses, "agent_id = ?")
		args = append(args, filter.AgentID)
	}
	if filter.Search != "" {
		clauses = append(clauses, "(title ILIKE ? OR reference_number ILIKE ?)")
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}
