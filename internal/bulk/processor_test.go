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
	"testing"
	"time"

	"github.com/okhalidi/propdock/internal/models"
	"github.com/okhalidi/propdock/internal/pf"
)

// fakePortal implements the portal surface with programmable behavior.
type fakePortal struct {
	pf.API

	mu        sync.Mutex
	created   []string
	updated   []string
	deleted   []string
	published []string

	failCreate  map[string]error
	failPublish map[string]error
	failDelete  map[string]error
}

func newFakePortal() *fakePortal {
	return &fakePortal{
		failCreate:  make(map[string]error),
		failPublish: make(map[string]error),
		failDelete:  make(map[string]error),
	}
}

func (f *fakePortal) CreateListing(ctx context.Context, listing *models.Listing) (*models.Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	ref := listing.Reference()
	if err, ok := f.failCreate[ref]; ok {
		return nil, err
	}
	f.created = append(f.created, ref)

	out := *listing
	out.ID = "pf-" + ref
	return &out, nil
}

func (f *fakePortal) UpdateListing(ctx context.Context, id string, listing *models.Listing) (*models.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.updated = append(f.updated, id)
	out := *listing
	out.ID = id
	return &out, nil
}

func (f *fakePortal) DeleteListing(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err, ok := f.failDelete[id]; ok {
		return err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakePortal) PublishListing(ctx context.Context, id string) (*models.ListingState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err, ok := f.failPublish[id]; ok {
		return nil, err
	}
	f.published = append(f.published, id)
	return &models.ListingState{ID: id, Status: models.StatusLive}, nil
}

func testListings(n int) []models.Listing {
	listings := make([]models.Listing, n)
	for i := range listings {
		listings[i] = models.Listing{
			Title:           fmt.Sprintf("Listing %d", i+1),
			ReferenceNumber: fmt.Sprintf("REF-%03d", i+1),
			PropertyType:    models.PropertyApartment,
			OfferingType:    models.OfferingSale,
		}
	}
	return listings
}

func TestCreateAll(t *testing.T) {
	portal := newFakePortal()
	proc := NewProcessor(portal, NewInMemoryProgress(), 0)

	report, err := proc.CreateAll(context.Background(), testListings(3), RunOptions{})
	if err != nil {
		t.Fatalf("CreateAll failed: %v", err)
	}

	if report.Total != 3 || report.Succeeded != 3 || report.Failed != 0 {
		t.Errorf("unexpected report: total=%d succeeded=%d failed=%d",
			report.Total, report.Succeeded, report.Failed)
	}
	if len(portal.created) != 3 {
		t.Errorf("expected 3 creates, got %d", len(portal.created))
	}
	if len(portal.published) != 0 {
		t.Errorf("expected no publishes, got %d", len(portal.published))
	}
	if report.Results[0].ListingID != "pf-REF-001" {
		t.Errorf("expected portal id recorded, got %q", report.Results[0].ListingID)
	}
	if report.EndTime.IsZero() {
		t.Error("expected end time on completed run")
	}
}

func TestCreateAllWithPublish(t *testing.T) {
	portal := newFakePortal()
	portal.failPublish["pf-REF-002"] = errors.New("permit expired")
	proc := NewProcessor(portal, NewInMemoryProgress(), 0)

	report, err := proc.CreateAll(context.Background(), testListings(3), RunOptions{Publish: true})
	if err != nil {
		t.Fatalf("CreateAll failed: %v", err)
	}

	// A publish failure does not fail the item.
	if report.Succeeded != 3 {
		t.Errorf("expected 3 successes, got %d", report.Succeeded)
	}
	if len(portal.published) != 2 {
		t.Errorf("expected 2 publishes, got %d", len(portal.published))
	}
}

func TestCreateAllRecordsFailures(t *testing.T) {
	portal := newFakePortal()
	portal.failCreate["REF-002"] = &pf.APIError{
		StatusCode: 422,
		Message:    "invalid permit number",
		RequestID:  "req-abc",
	}
	proc := NewProcessor(portal, NewInMemoryProgress(), 0)

	var calls []int
	report, err := proc.CreateAll(context.Background(), testListings(3), RunOptions{
		Progress: func(done, total int, last Result) {
			calls = append(calls, done)
		},
	})
	if err != nil {
		t.Fatalf("CreateAll failed: %v", err)
	}

	if report.Succeeded != 2 || report.Failed != 1 {
		t.Errorf("expected 2 successes 1 failure, got %d/%d", report.Succeeded, report.Failed)
	}

	var failed *Result
	for i := range report.Results {
		if !report.Results[i].OK {
			failed = &report.Results[i]
		}
	}
	if failed == nil {
		t.Fatal("expected a failed result")
	}
	if failed.Reference != "REF-002" {
		t.Errorf("expected failure for REF-002, got %q", failed.Reference)
	}
	if failed.RequestID != "req-abc" {
		t.Errorf("expected request id propagated, got %q", failed.RequestID)
	}

	if len(calls) != 3 || calls[2] != 3 {
		t.Errorf("expected progress callbacks 1..3, got %v", calls)
	}
}

func TestDelayBetweenItems(t *testing.T) {
	portal := newFakePortal()
	proc := NewProcessor(portal, NewInMemoryProgress(), 30*time.Millisecond)

	start := time.Now()
	if _, err := proc.CreateAll(context.Background(), testListings(3), RunOptions{}); err != nil {
		t.Fatalf("CreateAll failed: %v", err)
	}
	elapsed := time.Since(start)

	// Two gaps between three items; no delay trails the final item.
	if elapsed < 60*time.Millisecond {
		t.Errorf("expected at least 60ms elapsed, got %v", elapsed)
	}
	if elapsed > 200*time.Millisecond {
		t.Errorf("run took too long: %v", elapsed)
	}
}

func TestContextCancellationAbortsRun(t *testing.T) {
	portal := newFakePortal()
	proc := NewProcessor(portal, NewInMemoryProgress(), 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	report, err := proc.CreateAll(ctx, testListings(10), RunOptions{})
	if err == nil {
		t.Fatal("expected error from cancelled run")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if report == nil {
		t.Fatal("expected partial report")
	}
	if report.Processed >= 10 {
		t.Errorf("expected partial progress, processed=%d", report.Processed)
	}
}

func TestResumeSkipsProcessedItems(t *testing.T) {
	tracker := NewInMemoryProgress()
	listings := testListings(4)

	// First attempt fails on the third item.
	portal := newFakePortal()
	portal.failCreate["REF-003"] = errors.New("portal unavailable")
	proc := NewProcessor(portal, tracker, 0)

	first, err := proc.CreateAll(context.Background(), listings, RunOptions{})
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if first.Failed != 1 {
		t.Fatalf("expected 1 failure in first run, got %d", first.Failed)
	}

	// Re-save progress to simulate an interrupted run: completed runs clear
	// their tracked state, so put it back before resuming.
	if err := tracker.Save(context.Background(), first); err != nil {
		t.Fatalf("save progress: %v", err)
	}

	portal2 := newFakePortal()
	proc2 := NewProcessor(portal2, tracker, 0)

	second, err := proc2.CreateAll(context.Background(), listings, RunOptions{RunID: first.RunID})
	if err != nil {
		t.Fatalf("resumed run failed: %v", err)
	}

	// All four references were already recorded, so nothing is re-submitted.
	if len(portal2.created) != 0 {
		t.Errorf("expected no new creates on resume, got %v", portal2.created)
	}
	if second.Processed != 4 {
		t.Errorf("expected processed carried over, got %d", second.Processed)
	}
}

func TestConcurrentRunRejected(t *testing.T) {
	portal := newFakePortal()
	proc := NewProcessor(portal, NewInMemoryProgress(), 50*time.Millisecond)

	started := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		close(started)
		_, _ = proc.CreateAll(context.Background(), testListings(5), RunOptions{})
	}()

	<-started
	time.Sleep(20 * time.Millisecond)

	_, err := proc.DeleteAll(context.Background(), []string{"x"}, RunOptions{})
	if !errors.Is(err, ErrRunInProgress) {
		t.Errorf("expected ErrRunInProgress, got %v", err)
	}
	<-done
}

func TestDeleteAll(t *testing.T) {
	portal := newFakePortal()
	portal.failDelete["pf-2"] = errors.New("not found")
	proc := NewProcessor(portal, NewInMemoryProgress(), 0)

	report, err := proc.DeleteAll(context.Background(), []string{"pf-1", "pf-2", "pf-3"}, RunOptions{})
	if err != nil {
		t.Fatalf("DeleteAll failed: %v", err)
	}
	if report.Succeeded != 2 || report.Failed != 1 {
		t.Errorf("expected 2/1, got %d/%d", report.Succeeded, report.Failed)
	}
	if len(portal.deleted) != 2 {
		t.Errorf("expected 2 deletes, got %d", len(portal.deleted))
	}
}

func TestUpdateAllRequiresID(t *testing.T) {
	portal := newFakePortal()
	proc := NewProcessor(portal, NewInMemoryProgress(), 0)

	listings := testListings(2)
	listings[0].ID = "pf-1"
	// listings[1] has no portal id

	report, err := proc.UpdateAll(context.Background(), listings, RunOptions{})
	if err != nil {
		t.Fatalf("UpdateAll failed: %v", err)
	}
	if report.Succeeded != 1 || report.Failed != 1 {
		t.Errorf("expected 1/1, got %d/%d", report.Succeeded, report.Failed)
	}
}

func TestReportSummary(t *testing.T) {
	report := &Report{
		RunID:     "run-1",
		Operation: OpCreate,
		Total:     10,
		Processed: 5,
		Succeeded: 4,
		Failed:    1,
		StartTime: time.Now().Add(-10 * time.Second),
	}

	if got := report.Progress(); got != 50 {
		t.Errorf("expected 50%% progress, got %v", got)
	}

	summary := report.ToSummary(true)
	if summary.Status != "running" {
		t.Errorf("expected running status, got %q", summary.Status)
	}

	report.EndTime = time.Now()
	summary = report.ToSummary(false)
	if summary.Status != "completed" {
		t.Errorf("expected completed status, got %q", summary.Status)
	}
}
