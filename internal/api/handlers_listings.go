// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okhalidi/propdock/internal/database"
	"github.com/okhalidi/propdock/internal/logging"
	"github.com/okhalidi/propdock/internal/models"
	"github.com/okhalidi/propdock/internal/validation"
)

// ListListings serves the cached portal snapshot with filtering and
// paging. The snapshot is refreshed by the sync manager; POST
// /listings/refresh forces it.
func (h *Handler) ListListings(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)

	limit, offset := h.pageWindow(queryInt(r, "limit", 0), queryInt(r, "offset", 0))
	filter := database.ListingFilter{
		Status:       r.URL.Query().Get("status"),
		PropertyType: r.URL.Query().Get("property_type"),
		OfferingType: r.URL.Query().Get("offering_type"),
		AgentID:      r.URL.Query().Get("agent_id"),
		Search:       r.URL.Query().Get("q"),
		Limit:        limit,
		Offset:       offset,
	}

	listings, total, err := h.db.ListCachedListings(r.Context(), filter)
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	rw.Success(models.Page{
		Results: listings,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	})
}

// GetListing returns one listing, preferring the local snapshot and
// falling back to the portal for listings not yet synced.
func (h *Handler) GetListing(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)
	id := chi.URLParam(r, "id")

	listing, err := h.db.GetCachedListing(r.Context(), id)
	if err == nil {
		rw.Success(listing)
		return
	}
	if !errors.Is(err, database.ErrNotFound) {
		rw.DatabaseError(err)
		return
	}

	listing, err = h.portal.GetListing(r.Context(), id)
	if err != nil {
		rw.UpstreamError(err)
		return
	}
	rw.Success(listing)
}

// CreateListing validates and creates a listing on the portal, then
// mirrors it into the local snapshot.
func (h *Handler) CreateListing(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)

	var listing models.Listing
	if err := decodeBody(r, &listing); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validation.ValidateListing(&listing); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ErrorWithDetails(http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	created, err := h.portal.CreateListing(r.Context(), &listing)
	if err != nil {
		rw.UpstreamError(err)
		return
	}

	if err := h.db.UpsertListing(r.Context(), created); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Failed to mirror created listing")
	}
	rw.Created(created)
}

// UpdateListing applies a partial update through the portal.
func (h *Handler) UpdateListing(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)
	id := chi.URLParam(r, "id")

	var listing models.Listing
	if err := decodeBody(r, &listing); err != nil {
		rw.BadRequest(err.Error())
		return
	}

	updated, err := h.portal.UpdateListing(r.Context(), id, &listing)
	if err != nil {
		rw.UpstreamError(err)
		return
	}

	if err := h.db.UpsertListing(r.Context(), updated); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Failed to mirror updated listing")
	}
	rw.Success(updated)
}

// DeleteListing removes a listing from the portal and the snapshot.
func (h *Handler) DeleteListing(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)
	id := chi.URLParam(r, "id")

	if err := h.portal.DeleteListing(r.Context(), id); err != nil {
		rw.UpstreamError(err)
		return
	}
	if err := h.db.DeleteCachedListing(r.Context(), id); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Failed to drop deleted listing from snapshot")
	}
	rw.NoContent()
}

// PublishListing pushes a listing live, spending a credit.
func (h *Handler) PublishListing(w http.ResponseWriter, r *http.Request) {
	h.setListingState(w, r, h.portal.PublishListing)
}

// UnpublishListing takes a listing off the portal.
func (h *Handler) UnpublishListing(w http.ResponseWriter, r *http.Request) {
	h.setListingState(w, r, h.portal.UnpublishListing)
}

// GetListingState returns the publish state, tolerating portals where the
// state endpoint is missing.
func (h *Handler) GetListingState(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)

	state, err := h.portal.GetListingStateSafe(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		rw.UpstreamError(err)
		return
	}
	rw.Success(state)
}

// RefreshListings clears the response cache and triggers an immediate
// snapshot refresh.
func (h *Handler) RefreshListings(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)

	h.cache.Clear()
	if h.syncer != nil {
		h.syncer.TriggerSync()
	}

	rw.Success(map[string]interface{}{
		"message": "refresh triggered",
		"syncing": h.syncer != nil && h.syncer.IsSyncing(),
	})
}

func (h *Handler) setListingState(w http.ResponseWriter, r *http.Request,
	op func(context.Context, string) (*models.ListingState, error)) {
	rw := respond(w, r)
	id := chi.URLParam(r, "id")

	state, err := op(r.Context(), id)
	if err != nil {
		rw.UpstreamError(err)
		return
	}

	// Keep the snapshot's status column in step without waiting for the
	// next sync.
	if listing, lerr := h.db.GetCachedListing(r.Context(), id); lerr == nil {
		listing.Status = state.Status
		if uerr := h.db.UpsertListing(r.Context(), listing); uerr != nil {
			logging.Ctx(r.Context()).Warn().Err(uerr).Msg("Failed to mirror listing state")
		}
	}

	rw.Success(state)
}
