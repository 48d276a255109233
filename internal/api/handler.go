// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

package api

import (
	"time"

	"github.com/okhalidi/propdock/internal/auth"
	"github.com/okhalidi/propdock/internal/bulk"
	"github.com/okhalidi/propdock/internal/cache"
	"github.com/okhalidi/propdock/internal/config"
	"github.com/okhalidi/propdock/internal/database"
	"github.com/okhalidi/propdock/internal/models"
	"github.com/okhalidi/propdock/internal/pf"
)

// Syncer is the refresh-manager surface the handlers need. *sync.Manager
// satisfies it.
type Syncer interface {
	TriggerSync()
	LastSyncTime() time.Time
	IsSyncing() bool
}

// Handler owns the dependencies shared by all dashboard endpoints.
type Handler struct {
	db     *database.DB
	portal pf.API
	bulk   *bulk.Processor
	syncer Syncer

	authenticator *auth.Authenticator
	jwt           *auth.JWTManager

	// cache holds rendered response payloads, cleared on sync completion.
	// locations caches portal location searches separately because those
	// survive a listing refresh.
	cache     *cache.Cache
	locations *cache.LRUCache[[]models.PortalLocation]

	cfg       *config.Config
	startedAt time.Time
}

// NewHandler wires the dashboard handler.
func NewHandler(cfg *config.Config, db *database.DB, portal pf.API, processor *bulk.Processor,
	authenticator *auth.Authenticator, jwt *auth.JWTManager) *Handler {
	ttl := cfg.Cache.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return &Handler{
		db:            db,
		portal:        portal,
		bulk:          processor,
		authenticator: authenticator,
		jwt:           jwt,
		cache:         cache.New(ttl),
		locations:     cache.NewLRUCache[[]models.PortalLocation](500, 30*time.Minute),
		cfg:           cfg,
		startedAt:     time.Now(),
	}
}

// SetSyncer attaches the refresh manager. Wired after construction because
// the manager needs the handler's ClearCache callback.
func (h *Handler) SetSyncer(s Syncer) {
	h.syncer = s
}

// ClearCache drops all cached response payloads. Called by the refresh
// manager when a portal snapshot completes.
func (h *Handler) ClearCache() {
	h.cache.Clear()
}

// pageWindow clamps limit/offset to the configured paging bounds.
func (h *Handler) pageWindow(limit, offset int) (int, int) {
	def, max := h.cfg.API.DefaultPageSize, h.cfg.API.MaxPageSize
	if def <= 0 {
		def = 50
	}
	if max <= 0 {
		max = 500
	}
	if limit <= 0 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
