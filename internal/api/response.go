// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

package api

import (
	"errors"
	"fmt"
	"hash/fnv"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"

	"github.com/okhalidi/propdock/internal/database"
	"github.com/okhalidi/propdock/internal/logging"
	"github.com/okhalidi/propdock/internal/models"
	"github.com/okhalidi/propdock/internal/pf"
)

// Error codes carried in the envelope error block.
const (
	codeBadRequest     = "BAD_REQUEST"
	codeValidation     = "VALIDATION_ERROR"
	codeAuthentication = "AUTHENTICATION_ERROR"
	codeAuthorization  = "AUTHORIZATION_ERROR"
	codeNotFound       = "NOT_FOUND"
	codeConflict       = "CONFLICT"
	codeRateLimit      = "RATE_LIMIT_EXCEEDED"
	codeUpstream       = "UPSTREAM_ERROR"
	codeDatabase       = "DATABASE_ERROR"
	codeInternal       = "INTERNAL_ERROR"
)

// responder writes envelope responses for one request.
type responder struct {
	w     http.ResponseWriter
	r     *http.Request
	start time.Time
}

func respond(w http.ResponseWriter, r *http.Request) *responder {
	return &responder{w: w, r: r, start: time.Now()}
}

// Success writes a 200 envelope. Cacheable GETs go through SuccessCached
// instead when the payload came from the in-process cache.
func (rw *responder) Success(data interface{}) {
	rw.write(http.StatusOK, data, false)
}

// SuccessCached writes a 200 envelope flagged as served from cache.
func (rw *responder) SuccessCached(data interface{}) {
	rw.write(http.StatusOK, data, true)
}

// Created writes a 201 envelope.
func (rw *responder) Created(data interface{}) {
	rw.write(http.StatusCreated, data, false)
}

// NoContent writes a bare 204.
func (rw *responder) NoContent() {
	rw.w.WriteHeader(http.StatusNoContent)
}

func (rw *responder) write(status int, data interface{}, cached bool) {
	resp := models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
			Cached:    cached,
		},
	}
	if !cached {
		resp.Metadata.QueryTimeMS = time.Since(rw.start).Milliseconds()
	}

	body, err := json.Marshal(resp)
	if err != nil {
		logging.Ctx(rw.r.Context()).Error().Err(err).Msg("Failed to encode response")
		rw.w.WriteHeader(http.StatusInternalServerError)
		return
	}

	// Conditional GET support. The tag covers the payload, not the
	// envelope, so timestamps do not defeat caching.
	if rw.r.Method == http.MethodGet && status == http.StatusOK {
		tag := etagFor(data)
		if tag != "" {
			rw.w.Header().Set("ETag", tag)
			if rw.r.Header.Get("If-None-Match") == tag {
				rw.w.WriteHeader(http.StatusNotModified)
				return
			}
		}
	}

	rw.w.Header().Set("Content-Type", "application/json; charset=utf-8")
	rw.w.WriteHeader(status)
	if _, err := rw.w.Write(body); err != nil {
		logging.Ctx(rw.r.Context()).Debug().Err(err).Msg("Failed to write response")
	}
}

// Error writes an error envelope.
func (rw *responder) Error(status int, code, message string) {
	rw.ErrorWithDetails(status, code, message, nil)
}

// ErrorWithDetails writes an error envelope with a details map.
func (rw *responder) ErrorWithDetails(status int, code, message string, details map[string]interface{}) {
	resp := models.APIResponse{
		Status: "error",
		Error: &models.APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
		Metadata: models.Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: time.Since(rw.start).Milliseconds(),
		},
	}

	rw.w.Header().Set("Content-Type", "application/json; charset=utf-8")
	rw.w.WriteHeader(status)
	if err := json.NewEncoder(rw.w).Encode(resp); err != nil {
		logging.Ctx(rw.r.Context()).Debug().Err(err).Msg("Failed to write error response")
	}
}

func (rw *responder) BadRequest(message string) {
	rw.Error(http.StatusBadRequest, codeBadRequest, message)
}

func (rw *responder) Unauthorized(message string) {
	rw.Error(http.StatusUnauthorized, codeAuthentication, message)
}

func (rw *responder) Forbidden(message string) {
	rw.Error(http.StatusForbidden, codeAuthorization, message)
}

func (rw *responder) NotFound(message string) {
	rw.Error(http.StatusNotFound, codeNotFound, message)
}

func (rw *responder) Conflict(message string) {
	rw.Error(http.StatusConflict, codeConflict, message)
}

// DatabaseError logs the real failure and returns an opaque 500. Row
// misses map to 404 instead.
func (rw *responder) DatabaseError(err error) {
	if errors.Is(err, database.ErrNotFound) {
		rw.NotFound("resource not found")
		return
	}
	logging.Ctx(rw.r.Context()).Error().Err(err).Msg("Database error")
	rw.Error(http.StatusInternalServerError, codeDatabase, "a database error occurred")
}

// UpstreamError translates a portal client failure into the closest
// dashboard status: portal 4xx pass through, the open breaker is 503,
// everything else is 502.
func (rw *responder) UpstreamError(err error) {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
		rw.Error(http.StatusServiceUnavailable, codeUpstream, "portal temporarily unavailable")
		return
	case errors.Is(err, pf.ErrRateLimited):
		rw.Error(http.StatusTooManyRequests, codeRateLimit, "portal rate limit exceeded")
		return
	}

	var apiErr *pf.APIError
	if errors.As(err, &apiErr) {
		details := map[string]interface{}{}
		if apiErr.RequestID != "" {
			details["portal_request_id"] = apiErr.RequestID
		}
		switch {
		case apiErr.StatusCode == http.StatusNotFound:
			rw.ErrorWithDetails(http.StatusNotFound, codeNotFound, apiErr.Message, details)
		case apiErr.StatusCode >= 400 && apiErr.StatusCode < 500:
			rw.ErrorWithDetails(apiErr.StatusCode, codeUpstream, apiErr.Message, details)
		default:
			rw.ErrorWithDetails(http.StatusBadGateway, codeUpstream, apiErr.Message, details)
		}
		return
	}

	logging.Ctx(rw.r.Context()).Error().Err(err).Msg("Portal request failed")
	rw.Error(http.StatusBadGateway, codeUpstream, "portal request failed")
}

// etagFor hashes the payload with FNV-1a. Returns "" when the payload
// cannot be marshalled.
func etagFor(data interface{}) string {
	body, err := json.Marshal(data)
	if err != nil {
		return ""
	}
	h := fnv.New64a()
	_, _ = h.Write(body)
	return fmt.Sprintf(`"%x"`, h.Sum64())
}
