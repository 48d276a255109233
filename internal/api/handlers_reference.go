// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

package api

import (
	"net/http"
	"strings"

	"github.com/okhalidi/propdock/internal/logging"
	"github.com/okhalidi/propdock/internal/metrics"
	"github.com/okhalidi/propdock/internal/models"
)

// SearchLocations proxies the portal location tree search. Results are
// LRU-cached per query because the tree changes rarely and the dashboard
// autocomplete fires on every keystroke.
func (h *Handler) SearchLocations(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		rw.BadRequest("q is required")
		return
	}

	key := strings.ToLower(query)
	if locations, ok := h.locations.Get(key); ok {
		metrics.CacheHits.WithLabelValues("locations").Inc()
		rw.SuccessCached(locations)
		return
	}
	metrics.CacheMisses.WithLabelValues("locations").Inc()

	locations, err := h.portal.Locations(r.Context(), query)
	if err != nil {
		rw.UpstreamError(err)
		return
	}

	h.locations.Add(key, locations)
	rw.Success(locations)
}

// Credits returns the account's remaining listing credits.
func (h *Handler) Credits(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)

	credits, err := h.portal.CreditBalance(r.Context())
	if err != nil {
		rw.UpstreamError(err)
		return
	}
	rw.Success(credits)
}

// Account returns the portal user roster together with the credit
// balance, the CLI "account" view.
func (h *Handler) Account(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)

	users, err := h.portal.Users(r.Context())
	if err != nil {
		rw.UpstreamError(err)
		return
	}

	out := map[string]interface{}{"users": users}
	if credits, err := h.portal.CreditBalance(r.Context()); err == nil {
		out["credits"] = credits
	} else {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Failed to fetch credit balance")
	}

	rw.Success(out)
}

// ValidatePermit asks the regulator endpoint whether a permit is valid.
func (h *Handler) ValidatePermit(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)

	issuer := models.PermitIssuer(r.URL.Query().Get("issuer"))
	permit := r.URL.Query().Get("permit")
	if permit == "" {
		rw.BadRequest("permit is required")
		return
	}
	if !models.ValidPermitIssuer(issuer) {
		rw.BadRequest("issuer must be one of: rera, dtcm, adrec")
		return
	}

	result, err := h.portal.ValidatePermit(r.Context(), issuer, permit)
	if err != nil {
		rw.UpstreamError(err)
		return
	}
	rw.Success(result)
}
