// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

package api

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/okhalidi/propdock/internal/auth"
	"github.com/okhalidi/propdock/internal/bulk"
	"github.com/okhalidi/propdock/internal/logging"
	"github.com/okhalidi/propdock/internal/models"
)

type bulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

type bulkAccepted struct {
	RunID     string `json:"run_id"`
	Operation string `json:"operation"`
	Total     int    `json:"total"`
	Publish   bool   `json:"publish,omitempty"`
}

// BulkCreate accepts a JSON array or CSV upload of listings and runs a
// paced create against the portal in the background. Returns 202 with the
// run id; progress is polled via /bulk/status and /bulk/runs/{id}.
func (h *Handler) BulkCreate(w http.ResponseWriter, r *http.Request) {
	h.startBulkListingRun(w, r, bulk.OpCreate)
}

// BulkUpdate accepts listings with portal ids and runs a paced update.
func (h *Handler) BulkUpdate(w http.ResponseWriter, r *http.Request) {
	h.startBulkListingRun(w, r, bulk.OpUpdate)
}

// BulkDelete accepts a JSON id list and runs a paced delete.
func (h *Handler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)

	if h.bulk.Running() {
		rw.Conflict("a bulk run is already in progress")
		return
	}

	var req bulkDeleteRequest
	if err := decodeBody(r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if len(req.IDs) == 0 {
		rw.BadRequest("ids is required")
		return
	}

	opts := h.bulkRunOptions(r)
	run := h.recordBulkRun(r, bulk.OpDelete, "json", len(req.IDs), opts.RunID)

	go func() {
		report, err := h.bulk.DeleteAll(context.Background(), req.IDs, opts)
		h.finishBulkRun(run, report, err)
	}()

	rw.write(http.StatusAccepted, bulkAccepted{
		RunID:     run.ID,
		Operation: string(bulk.OpDelete),
		Total:     len(req.IDs),
	}, false)
}

// BulkStatus returns the summary of the run in flight, or the most
// recently finished one still held in memory.
func (h *Handler) BulkStatus(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)

	report := h.bulk.CurrentReport()
	if report == nil {
		rw.NotFound("no bulk run")
		return
	}
	rw.Success(report.ToSummary(h.bulk.Running()))
}

// ListBulkRuns returns the persisted run history, newest first.
func (h *Handler) ListBulkRuns(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)

	limit, _ := h.pageWindow(queryInt(r, "limit", 0), 0)
	runs, err := h.db.ListBulkRuns(r.Context(), limit)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(runs)
}

// GetBulkRun returns one run record with its full per-item report when
// the run has finished.
func (h *Handler) GetBulkRun(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)

	run, err := h.db.GetBulkRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	out := map[string]interface{}{"run": run}
	if run.ReportJSON != "" {
		var report bulk.Report
		if err := json.Unmarshal([]byte(run.ReportJSON), &report); err == nil {
			out["report"] = &report
		}
	}
	rw.Success(out)
}

func (h *Handler) startBulkListingRun(w http.ResponseWriter, r *http.Request, op bulk.Operation) {
	rw := respond(w, r)

	if h.bulk.Running() {
		rw.Conflict("a bulk run is already in progress")
		return
	}

	listings, source, err := decodeBulkListings(r)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if len(listings) == 0 {
		rw.BadRequest("no listings in request")
		return
	}

	opts := h.bulkRunOptions(r)
	run := h.recordBulkRun(r, op, source, len(listings), opts.RunID)

	go func() {
		var report *bulk.Report
		var runErr error
		switch op {
		case bulk.OpUpdate:
			report, runErr = h.bulk.UpdateAll(context.Background(), listings, opts)
		default:
			report, runErr = h.bulk.CreateAll(context.Background(), listings, opts)
		}
		h.finishBulkRun(run, report, runErr)
	}()

	rw.write(http.StatusAccepted, bulkAccepted{
		RunID:     run.ID,
		Operation: string(op),
		Total:     len(listings),
		Publish:   opts.Publish,
	}, false)
}

func (h *Handler) bulkRunOptions(r *http.Request) bulk.RunOptions {
	runID := r.URL.Query().Get("run_id")
	if runID == "" {
		runID = uuid.NewString()
	}
	return bulk.RunOptions{
		RunID:   runID,
		Publish: r.URL.Query().Get("publish") == "true",
	}
}

// recordBulkRun persists the run-started row before the goroutine begins.
func (h *Handler) recordBulkRun(r *http.Request, op bulk.Operation, source string, total int, runID string) *models.BulkRun {
	run := &models.BulkRun{
		ID:        runID,
		Operation: string(op),
		Source:    source,
		Total:     total,
		StartedAt: time.Now().UTC(),
	}
	if claims := auth.ClaimsFromContext(r.Context()); claims != nil {
		run.StartedBy = claims.Username
	}

	if err := h.db.InsertBulkRun(r.Context(), run); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to record bulk run")
	}
	return run
}

// finishBulkRun stores the outcome. Runs detached from any request, so
// it logs with the run id rather than a request id.
func (h *Handler) finishBulkRun(run *models.BulkRun, report *bulk.Report, runErr error) {
	log := logging.With().Str("run_id", run.ID).Logger()

	if runErr != nil {
		log.Error().Err(runErr).Msg("Bulk run failed")
	}
	if report == nil {
		return
	}

	now := time.Now().UTC()
	run.Succeeded = report.Succeeded
	run.Failed = report.Failed
	run.CompletedAt = &now

	if body, err := json.Marshal(report); err == nil {
		run.ReportJSON = string(body)
	}

	if err := h.db.CompleteBulkRun(context.Background(), run); err != nil {
		log.Error().Err(err).Msg("Failed to store bulk run outcome")
		return
	}
	log.Info().
		Int("succeeded", report.Succeeded).
		Int("failed", report.Failed).
		Msg("Bulk run recorded")
}

// decodeBulkListings reads the request payload as CSV when the content
// type says so, otherwise as a JSON array. Multipart uploads use the
// "file" field.
func decodeBulkListings(r *http.Request) ([]models.Listing, string, error) {
	if !isCSVUpload(r) {
		r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
		listings, err := bulk.DecodeJSON(r.Body)
		return listings, "json", err
	}

	var reader io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, "csv", err
		}
		defer file.Close()
		reader = file
	}

	listings, err := bulk.DecodeCSV(reader)
	return listings, "csv", err
}
