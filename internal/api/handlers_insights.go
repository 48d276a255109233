// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

package api

import (
	"net/http"
	"time"

	"github.com/okhalidi/propdock/internal/database"
	"github.com/okhalidi/propdock/internal/logging"
	"github.com/okhalidi/propdock/internal/metrics"
	"github.com/okhalidi/propdock/internal/models"
)

const insightsCacheKey = "insights"

// insightsView is the dashboard landing payload: account stats and
// credits from the portal plus breakdowns computed over the local
// snapshot.
type insightsView struct {
	Stats          *models.AccountStats      `json:"stats,omitempty"`
	Credits        *models.CreditBalance     `json:"credits,omitempty"`
	StatusCounts   map[string]int            `json:"status_counts"`
	TopCommunities []database.CommunityCount `json:"top_communities"`
	LeadsThisWeek  int                       `json:"leads_this_week"`
	LastSync       *time.Time                `json:"last_sync,omitempty"`
}

// Insights aggregates the dashboard landing numbers. The portal calls
// are the expensive part, so the whole payload is cached for the
// configured TTL and invalidated when a sync completes.
func (h *Handler) Insights(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)

	if cached, ok := h.cache.Get(insightsCacheKey); ok {
		metrics.CacheHits.WithLabelValues("insights").Inc()
		rw.SuccessCached(cached)
		return
	}
	metrics.CacheMisses.WithLabelValues("insights").Inc()

	view := insightsView{}

	// Portal failures degrade the payload rather than failing the page:
	// the local breakdowns still render.
	stats, err := h.portal.Stats(r.Context())
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Failed to fetch account stats")
	} else {
		view.Stats = stats
	}

	credits, err := h.portal.CreditBalance(r.Context())
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Failed to fetch credit balance")
	} else {
		view.Credits = credits
	}

	counts, err := h.db.CountListingsByStatus(r.Context())
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	view.StatusCounts = counts

	communities, err := h.db.ListingsByCommunity(r.Context(), 10)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	view.TopCommunities = communities

	leads, err := h.db.LeadsSince(r.Context(), time.Now().AddDate(0, 0, -7))
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	view.LeadsThisWeek = leads

	if last, err := h.db.LastListingSync(r.Context()); err == nil && !last.IsZero() {
		view.LastSync = &last
	}

	h.cache.Set(insightsCacheKey, view)
	rw.Success(view)
}

// ListLeads serves the cached lead inbox with filtering and paging.
func (h *Handler) ListLeads(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)

	limit, offset := h.pageWindow(queryInt(r, "limit", 0), queryInt(r, "offset", 0))
	filter := database.LeadFilter{
		ListingReference: r.URL.Query().Get("listing_ref"),
		Limit:            limit,
		Offset:           offset,
	}
	if since := r.URL.Query().Get("since"); since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			rw.BadRequest("since must be RFC3339")
			return
		}
		filter.Since = t
	}

	leads, total, err := h.db.ListCachedLeads(r.Context(), filter)
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	rw.Success(models.Page{
		Results: leads,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	})
}
