// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/okhalidi/propdock/internal/models"
)

// InsertBulkRun records the start of a bulk operation.
func (db *DB) InsertBulkRun(ctx context.Context, run *models.BulkRun) error {
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO bulk_runs (id, operation, source, total, succeeded, failed, started_at, started_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Operation, run.Source, run.Total, run.Succeeded, run.Failed,
		run.StartedAt, run.StartedBy)
	if err != nil {
		return fmt.Errorf("insert bulk run: %w", err)
	}
	return nil
}

// CompleteBulkRun records the final counts and report for a run.
func (db *DB) CompleteBulkRun(ctx context.Context, run *models.BulkRun) error {
	completedAt := time.Now().UTC()
	run.CompletedAt = &completedAt

	res, err := db.conn.ExecContext(ctx,
		`UPDATE bulk_runs SET total = ?, succeeded = ?, failed = ?, completed_at = ?, report = ?
		 WHERE id = ?`,
		run.Total, run.Succeeded, run.Failed, completedAt, run.ReportJSON, run.ID)
	if err != nil {
		return fmt.Errorf("complete bulk run: %w", err)
	}
	return requireRowAffected(res, "bulk run")
}

// GetBulkRun returns one run, including its stored report.
func (db *DB) GetBulkRun(ctx context.Context, id string) (*models.BulkRun, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT id, operation, source, total, succeeded, failed, started_at, completed_at, started_by, report
		 FROM bulk_runs WHERE id = ?`, id)
	return scanBulkRun(row)
}

// ListBulkRuns returns the most recent runs, newest first, without reports.
func (db *DB) ListBulkRuns(ctx context.Context, limit int) ([]models.BulkRun, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, operation, source, total, succeeded, failed, started_at, completed_at, started_by, NULL
		 FROM bulk_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list bulk runs: %w", err)
	}
	defer rows.Close()

	var runs []models.BulkRun
	for rows.Next() {
		run, err := scanBulkRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

func scanBulkRun(scanner rowScanner) (*models.BulkRun, error) {
	run := &models.BulkRun{}
	var source, startedBy, report sql.NullString
	var completedAt sql.NullTime

	err := scanner.Scan(
		&run.ID, &run.Operation, &source, &run.Total, &run.Succeeded, &run.Failed,
		&run.StartedAt, &completedAt, &startedBy, &report)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan bulk run: %w", err)
	}

	run.Source = source.String
	run.StartedBy = startedBy.String
	run.ReportJSON = report.String
	if completedAt.Valid {
		run.CompletedAt = &completedAt.Time
	}
	return run, nil
}
