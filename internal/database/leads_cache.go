// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

/*
leads_cache.go - Synced Lead Mirror

Leads are mirrored additively: the portal's lead feed is append-only, so the
sync manager upserts new pages instead of replacing the table.
*/

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/okhalidi/propdock/internal/models"
)

// LeadFilter narrows ListCachedLeads results.
type LeadFilter struct {
	ListingReference string
	Since            time.Time

	Limit  int
	Offset int
}

// UpsertLeads inserts or refreshes a batch of leads.
func (db *DB) UpsertLeads(ctx context.Context, leads []models.Lead) error {
	if len(leads) == 0 {
		return nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert leads: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	syncedAt := time.Now().UTC()
	for i := range leads {
		lead := &leads[i]
		_, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO leads_cache
			 (id, listing_reference, name, email, phone, channel, message, received_at, synced_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			lead.ID, lead.ListingReference, lead.Name, lead.Email, lead.Phone,
			lead.Channel, lead.Message, lead.ReceivedAt, syncedAt)
		if err != nil {
			return fmt.Errorf("upsert lead %s: %w", lead.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert leads: %w", err)
	}
	return nil
}

// ListCachedLeads returns a filtered page of leads, newest first, plus the
// total count matching the filter.
func (db *DB) ListCachedLeads(ctx context.Context, filter LeadFilter) ([]models.Lead, int, error) {
	where := ""
	var args []any
	if filter.ListingReference != "" {
		where = " WHERE listing_reference = ?"
		args = append(args, filter.ListingReference)
	}
	if !filter.Since.IsZero() {
		if where == "" {
			where = " WHERE received_at >= ?"
		} else {
			where += " AND received_at >= ?"
		}
		args = append(args, filter.Since)
	}

	var total int
	if err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM leads_cache`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count cached leads: %w", err)
	}

	query := `SELECT id, listing_reference, name, email, phone, channel, message, received_at
		 FROM leads_cache` + where + ` ORDER BY received_at DESC`
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, filter.Offset)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list cached leads: %w", err)
	}
	defer rows.Close()

	var leads []models.Lead
	for rows.Next() {
		var lead models.Lead
		var listingRef, email, phone, channel, message sql.NullString
		var receivedAt sql.NullTime
		if err := rows.Scan(&lead.ID, &listingRef, &lead.Name, &email, &phone,
			&channel, &message, &receivedAt); err != nil {
			return nil, 0, fmt.Errorf("scan cached lead: %w", err)
		}
		lead.ListingReference = listingRef.String
		lead.Email = email.String
		lead.Phone = phone.String
		lead.Channel = channel.String
		lead.Message = message.String
		if receivedAt.Valid {
			lead.ReceivedAt = receivedAt.Time
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return leads, total, nil
}

// LeadsSince counts leads received at or after the given time.
func (db *DB) LeadsSince(ctx context.Context, since time.Time) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM leads_cache WHERE received_at >= ?`, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("leads since: %w", err)
	}
	return count, nil
}
