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
	"time"

	"github.com/google/uuid"

	"github.com/okhalidi/propdock/internal/logging"
	"github.com/okhalidi/propdock/internal/metrics"
	"github.com/okhalidi/propdock/internal/models"
	"github.com/okhalidi/propdock/internal/pf"
)

// ErrRunInProgress is returned when a run is started while another is active.
var ErrRunInProgress = errors.New("bulk run already in progress")

// RunOptions controls a bulk run.
type RunOptions struct {
	// RunID resumes a previous run when its progress is still tracked.
	// Leave empty to start a fresh run with a generated id.
	RunID string

	// Publish submits each created listing for publication after creation.
	// Only meaningful for create runs. A publish failure is logged but does
	// not fail the item.
	Publish bool

	// Progress, when set, is invoked after every processed item.
	Progress ProgressFunc
}

// Processor runs bulk listing operations against the portal, one item at
// a time with a configurable delay between submissions.
type Processor struct {
	client  pf.API
	tracker ProgressTracker
	delay   time.Duration

	mu      sync.Mutex
	running bool
	current *Report
}

// NewProcessor creates a bulk processor. The tracker may be nil, in which
// case runs are not resumable.
func NewProcessor(client pf.API, tracker ProgressTracker, delay time.Duration) *Processor {
	if tracker == nil {
		tracker = NewInMemoryProgress()
	}
	return &Processor{
		client:  client,
		tracker: tracker,
		delay:   delay,
	}
}

// Running reports whether a run is currently active.
func (p *Processor) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// CurrentReport returns a snapshot of the active or last run, or nil.
func (p *Processor) CurrentReport() *Report {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return nil
	}
	cp := *p.current
	cp.Results = append([]Result(nil), p.current.Results...)
	return &cp
}

// CreateAll creates every listing in order, optionally publishing each one.
func (p *Processor) CreateAll(ctx context.Context, listings []models.Listing, opts RunOptions) (*Report, error) {
	item := runItem{
		reference: func(i int) string { return itemReference(&listings[i], i) },
		process: func(ctx context.Context, i int) (string, error) {
			listing := &listings[i]

			created, err := p.client.CreateListing(ctx, listing)
			if err != nil {
				return "", err
			}

			id := created.ID
			if opts.Publish && id != "" {
				if _, err := p.client.PublishListing(ctx, id); err != nil {
					logging.Warn().
						Err(err).
						Str("reference", itemReference(listing, i)).
						Str("listing_id", id).
						Msg("Created listing but publish failed")
				}
			}
			return id, nil
		},
	}
	return p.run(ctx, OpCreate, len(listings), opts, item)
}

// UpdateAll updates every listing in order. Each listing must carry its
// portal id.
func (p *Processor) UpdateAll(ctx context.Context, listings []models.Listing, opts RunOptions) (*Report, error) {
	item := runItem{
		reference: func(i int) string { return itemReference(&listings[i], i) },
		process: func(ctx context.Context, i int) (string, error) {
			listing := &listings[i]
			if listing.ID == "" {
				return "", errors.New("listing has no portal id")
			}
			updated, err := p.client.UpdateListing(ctx, listing.ID, listing)
			if err != nil {
				return listing.ID, err
			}
			return updated.ID, nil
		},
	}
	return p.run(ctx, OpUpdate, len(listings), opts, item)
}

// DeleteAll deletes every listing id in order.
func (p *Processor) DeleteAll(ctx context.Context, ids []string, opts RunOptions) (*Report, error) {
	item := runItem{
		reference: func(i int) string {
			if ids[i] != "" {
				return ids[i]
			}
			return fmt.Sprintf("listing_%d", i+1)
		},
		process: func(ctx context.Context, i int) (string, error) {
			if ids[i] == "" {
				return "", errors.New("empty listing id")
			}
			return ids[i], p.client.DeleteListing(ctx, ids[i])
		},
	}
	return p.run(ctx, OpDelete, len(ids), opts, item)
}

// runItem names and processes one item of a bulk run.
type runItem struct {
	reference func(i int) string
	process   func(ctx context.Context, i int) (listingID string, err error)
}

func (p *Processor) run(ctx context.Context, op Operation, total int, opts RunOptions, item runItem) (*Report, error) {
	report, err := p.begin(ctx, op, total, opts.RunID)
	if err != nil {
		return nil, err
	}
	defer p.end(report)

	log := logging.With().
		Str("component", "bulk").
		Str("run_id", report.RunID).
		Str("operation", string(op)).
		Logger()

	done := report.doneReferences()
	if len(done) > 0 {
		log.Info().
			Int("already_processed", len(done)).
			Msg("Resuming bulk run")
	}

	start := time.Now()
	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			p.save(report)
			return p.snapshot(report), fmt.Errorf("bulk run interrupted: %w", err)
		}

		ref := item.reference(i)
		if done[ref] {
			continue
		}

		itemStart := time.Now()
		id, itemErr := item.process(ctx, i)

		var last Result
		if itemErr != nil {
			// Context cancellation during an item aborts the run rather
			// than recording every remaining item as failed.
			if errors.Is(itemErr, context.Canceled) || errors.Is(itemErr, context.DeadlineExceeded) {
				p.save(report)
				return p.snapshot(report), fmt.Errorf("bulk run interrupted: %w", itemErr)
			}

			elapsed := time.Since(itemStart)
			report.addFailure(ref, itemErr.Error(), requestIDFromError(itemErr), elapsed)
			metrics.BulkItemsProcessed.WithLabelValues(string(op), "failure").Inc()
			last = report.Results[len(report.Results)-1]

			log.Warn().
				Err(itemErr).
				Str("reference", ref).
				Int("item", i+1).
				Int("total", total).
				Msg("Bulk item failed")
		} else {
			elapsed := time.Since(itemStart)
			report.addSuccess(ref, id, elapsed)
			metrics.BulkItemsProcessed.WithLabelValues(string(op), "success").Inc()
			last = report.Results[len(report.Results)-1]

			log.Debug().
				Str("reference", ref).
				Str("listing_id", id).
				Int("item", i+1).
				Int("total", total).
				Msg("Bulk item processed")
		}

		p.save(report)
		if opts.Progress != nil {
			opts.Progress(i+1, total, last)
		}

		// Throttle between submissions, but not after the final item.
		if p.delay > 0 && i < total-1 {
			if err := sleepCtx(ctx, p.delay); err != nil {
				p.save(report)
				return p.snapshot(report), fmt.Errorf("bulk run interrupted: %w", err)
			}
		}
	}

	report.EndTime = time.Now()
	metrics.BulkRunDuration.WithLabelValues(string(op)).Observe(time.Since(start).Seconds())

	// A completed run no longer needs resumable state.
	if err := p.tracker.Clear(ctx, report.RunID); err != nil {
		log.Warn().Err(err).Msg("Failed to clear run progress")
	}

	log.Info().
		Int("total", report.Total).
		Int("succeeded", report.Succeeded).
		Int("failed", report.Failed).
		Dur("duration", report.Duration()).
		Msg("Bulk run complete")

	return p.snapshot(report), nil
}

// begin guards against concurrent runs and loads resumable state.
func (p *Processor) begin(ctx context.Context, op Operation, total int, runID string) (*Report, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return nil, ErrRunInProgress
	}

	var report *Report
	if runID != "" {
		saved, err := p.tracker.Load(ctx, runID)
		if err != nil {
			return nil, fmt.Errorf("load run %s: %w", runID, err)
		}
		if saved != nil && saved.Operation == op {
			report = saved
			report.Total = total
		}
	}

	if report == nil {
		if runID == "" {
			runID = uuid.NewString()
		}
		report = &Report{
			RunID:     runID,
			Operation: op,
			Total:     total,
			StartTime: time.Now(),
		}
	}

	p.running = true
	p.current = report
	return report, nil
}

func (p *Processor) end(report *Report) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.running = false
	p.current = report
}

// save persists progress best-effort; a tracker failure never aborts the run.
func (p *Processor) save(report *Report) {
	if err := p.tracker.Save(context.Background(), report); err != nil {
		logging.Warn().
			Err(err).
			Str("run_id", report.RunID).
			Msg("Failed to persist run progress")
	}
}

func (p *Processor) snapshot(report *Report) *Report {
	cp := *report
	cp.Results = append([]Result(nil), report.Results...)
	return &cp
}

// itemReference names an item for reporting, falling back to a positional
// name when the listing carries no identifiers.
func itemReference(listing *models.Listing, i int) string {
	if ref := listing.Reference(); ref != "" {
		return ref
	}
	return fmt.Sprintf("listing_%d", i+1)
}

func requestIDFromError(err error) string {
	var apiErr *pf.APIError
	if errors.As(err, &apiErr) {
		return apiErr.RequestID
	}
	return ""
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
