// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/okhalidi/propdock/internal/models"
)

func TestBulkRuns(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	run := &models.BulkRun{
		ID:        uuid.NewString(),
		Operation: "create",
		Source:    "listings.csv",
		Total:     50,
		StartedBy: "omar",
	}

	if err := db.InsertBulkRun(ctx, run); err != nil {
		t.Fatalf("InsertBulkRun() error = %v", err)
	}

	t.Run("in-progress run has no completion", func(t *testing.T) {
		fetched, err := db.GetBulkRun(ctx, run.ID)
		if err != nil {
			t.Fatalf("GetBulkRun() error = %v", err)
		}
		if fetched.CompletedAt != nil {
			t.Error("expected nil completion time on running run")
		}
		if fetched.Source != "listings.csv" || fetched.StartedBy != "omar" {
			t.Errorf("unexpected run: %+v", fetched)
		}
	})

	t.Run("complete records counts and report", func(t *testing.T) {
		run.Succeeded = 48
		run.Failed = 2
		run.ReportJSON = `{"run_id":"` + run.ID + `","failed":2}`

		if err := db.CompleteBulkRun(ctx, run); err != nil {
			t.Fatalf("CompleteBulkRun() error = %v", err)
		}

		fetched, err := db.GetBulkRun(ctx, run.ID)
		if err != nil {
			t.Fatalf("GetBulkRun() error = %v", err)
		}
		if fetched.Succeeded != 48 || fetched.Failed != 2 {
			t.Errorf("unexpected counts: %d/%d", fetched.Succeeded, fetched.Failed)
		}
		if fetched.CompletedAt == nil {
			t.Error("expected completion time set")
		}
		if fetched.ReportJSON == "" {
			t.Error("expected report stored")
		}
	})

	t.Run("list newest first without reports", func(t *testing.T) {
		older := &models.BulkRun{
			ID:        uuid.NewString(),
			Operation: "delete",
			Total:     5,
			StartedAt: time.Now().UTC().Add(-time.Hour),
		}
		if err := db.InsertBulkRun(ctx, older); err != nil {
			t.Fatalf("InsertBulkRun() error = %v", err)
		}

		runs, err := db.ListBulkRuns(ctx, 10)
		if err != nil {
			t.Fatalf("ListBulkRuns() error = %v", err)
		}
		if len(runs) != 2 {
			t.Fatalf("expected 2 runs, got %d", len(runs))
		}
		if runs[0].ID != run.ID {
			t.Errorf("expected newest run first, got %q", runs[0].ID)
		}
		if runs[0].ReportJSON != "" {
			t.Error("expected report omitted from list")
		}
	})

	t.Run("unknown run", func(t *testing.T) {
		_, err := db.GetBulkRun(ctx, "missing")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("complete unknown run", func(t *testing.T) {
		ghost := &models.BulkRun{ID: "ghost"}
		if err := db.CompleteBulkRun(ctx, ghost); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}
