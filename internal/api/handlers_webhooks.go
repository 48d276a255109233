// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okhalidi/propdock/internal/models"
	"github.com/okhalidi/propdock/internal/validation"
)

// Webhook management is a thin passthrough to the portal; the dashboard
// holds no webhook state of its own.

func (h *Handler) ListWebhooks(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)

	hooks, err := h.portal.ListWebhooks(r.Context())
	if err != nil {
		rw.UpstreamError(err)
		return
	}
	rw.Success(hooks)
}

func (h *Handler) CreateWebhook(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)

	var hook models.Webhook
	if err := decodeBody(r, &hook); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validation.ValidateStruct(&hook); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ErrorWithDetails(http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	created, err := h.portal.CreateWebhook(r.Context(), &hook)
	if err != nil {
		rw.UpstreamError(err)
		return
	}
	rw.Created(created)
}

func (h *Handler) UpdateWebhook(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)

	var hook models.Webhook
	if err := decodeBody(r, &hook); err != nil {
		rw.BadRequest(err.Error())
		return
	}

	updated, err := h.portal.UpdateWebhook(r.Context(), chi.URLParam(r, "id"), &hook)
	if err != nil {
		rw.UpstreamError(err)
		return
	}
	rw.Success(updated)
}

func (h *Handler) DeleteWebhook(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)

	if err := h.portal.DeleteWebhook(r.Context(), chi.URLParam(r, "id")); err != nil {
		rw.UpstreamError(err)
		return
	}
	rw.NoContent()
}
