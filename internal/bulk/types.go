// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

package bulk

import "time"

// Operation names one bulk operation kind.
type Operation string

const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// Result is the outcome of one item in a bulk run.
type Result struct {
	// Reference identifies the item: the listing's reference number,
	// portal id or external reference.
	Reference string `json:"reference"`

	// ListingID is the portal id, when the operation produced or used one.
	ListingID string `json:"listing_id,omitempty"`

	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`

	// RequestID is the upstream request id when the portal returned one
	// on failure.
	RequestID string `json:"request_id,omitempty"`

	Duration time.Duration `json:"duration_ns"`
}

// Report accumulates a bulk run's outcome.
type Report struct {
	// RunID keys the persisted progress record for resumable runs.
	RunID string `json:"run_id"`

	Operation Operation `json:"operation"`

	Total     int `json:"total"`
	Processed int `json:"processed"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`

	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`

	Results []Result `json:"results"`
}

// Duration returns the run's wall-clock duration so far.
func (r *Report) Duration() time.Duration {
	if r.EndTime.IsZero() {
		return time.Since(r.StartTime)
	}
	return r.EndTime.Sub(r.StartTime)
}

// Progress returns completion as a percentage (0-100).
func (r *Report) Progress() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Processed) / float64(r.Total) * 100
}

// ItemsPerSecond returns the processing rate.
func (r *Report) ItemsPerSecond() float64 {
	seconds := r.Duration().Seconds()
	if seconds == 0 {
		return 0
	}
	return float64(r.Processed) / seconds
}

// doneReferences indexes the references already recorded, for resume.
func (r *Report) doneReferences() map[string]bool {
	done := make(map[string]bool, len(r.Results))
	for _, res := range r.Results {
		done[res.Reference] = true
	}
	return done
}

// addSuccess records a successful item.
func (r *Report) addSuccess(reference, listingID string, d time.Duration) {
	r.Results = append(r.Results, Result{
		Reference: reference,
		ListingID: listingID,
		OK:        true,
		Duration:  d,
	})
	r.Processed++
	r.Succeeded++
}

// addFailure records a failed item.
func (r *Report) addFailure(reference, errMsg, requestID string, d time.Duration) {
	r.Results = append(r.Results, Result{
		Reference: reference,
		Error:     errMsg,
		RequestID: requestID,
		Duration:  d,
	})
	r.Processed++
	r.Failed++
}

// ProgressFunc receives per-item progress during a run.
type ProgressFunc func(done, total int, last Result)

// Summary is the compact run status exposed over the dashboard API.
type Summary struct {
	RunID          string    `json:"run_id"`
	Operation      Operation `json:"operation"`
	Status         string    `json:"status"`
	Progress       float64   `json:"progress"`
	Total          int       `json:"total"`
	Processed      int       `json:"processed"`
	Succeeded      int       `json:"succeeded"`
	Failed         int       `json:"failed"`
	ItemsPerSec    float64   `json:"items_per_second"`
	ElapsedSeconds float64   `json:"elapsed_seconds"`
	StartTime      time.Time `json:"start_time"`
}

// ToSummary converts the report to its API form.
func (r *Report) ToSummary(running bool) *Summary {
	status := "completed"
	if running {
		status = "running"
	} else if r.EndTime.IsZero() {
		status = "pending"
	}
	return &Summary{
		RunID:          r.RunID,
		Operation:      r.Operation,
		Status:         status,
		Progress:       r.Progress(),
		Total:          r.Total,
		Processed:      r.Processed,
		Succeeded:      r.Succeeded,
		Failed:         r.Failed,
		ItemsPerSec:    r.ItemsPerSecond(),
		ElapsedSeconds: r.Duration().Seconds(),
		StartTime:      r.StartTime,
	}
}
