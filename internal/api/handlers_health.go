// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

package api

import (
	"net/http"
	"time"
)

type healthView struct {
	Status       string     `json:"status"`
	Uptime       string     `json:"uptime"`
	Database     string     `json:"database"`
	LastSync     *time.Time `json:"last_sync,omitempty"`
	Syncing      bool       `json:"syncing"`
	CacheHitRate float64    `json:"cache_hit_rate"`
}

// Health reports liveness of the store and the last snapshot refresh.
// Degraded (database down) still returns 200 so load balancers keep the
// process while it recovers; the status field carries the truth.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)

	view := healthView{
		Status:       "ok",
		Uptime:       time.Since(h.startedAt).Round(time.Second).String(),
		Database:     "ok",
		CacheHitRate: h.cache.HitRate(),
	}

	if err := h.db.Ping(r.Context()); err != nil {
		view.Status = "degraded"
		view.Database = "unreachable"
	}

	if h.syncer != nil {
		view.Syncing = h.syncer.IsSyncing()
		if last := h.syncer.LastSyncTime(); !last.IsZero() {
			view.LastSync = &last
		}
	}

	rw.Success(view)
}
