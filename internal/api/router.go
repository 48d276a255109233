// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okhalidi/propdock/internal/auth"
	"github.com/okhalidi/propdock/internal/middleware"
	"github.com/okhalidi/propdock/internal/models"
)

// Router assembles the HTTP surface: the handler set, the JWT
// middleware, and an optional basic auth manager guarding /metrics.
type Router struct {
	handler   *Handler
	authMW    *auth.Middleware
	chiMW     *ChiMiddleware
	metricsBA *auth.BasicAuthManager
}

// NewRouter creates the router. metricsBA may be nil, in which case
// /metrics is served without authentication.
func NewRouter(h *Handler, metricsBA *auth.BasicAuthManager) *Router {
	return &Router{
		handler:   h,
		authMW:    auth.NewMiddleware(h.jwt),
		chiMW:     NewChiMiddleware(&h.cfg.Security),
		metricsBA: metricsBA,
	}
}

// Setup builds the route tree.
func (rt *Router) Setup() http.Handler {
	h := rt.handler

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(rt.chiMW.CORS())
	r.Use(securityHeaders)

	// Liveness probe, no auth and no rate limit so orchestrators can
	// poll aggressively.
	r.Get("/api/v1/health", h.Health)

	metricsHandler := http.Handler(promhttp.Handler())
	if rt.metricsBA != nil {
		metricsHandler = auth.RequireBasicAuth(rt.metricsBA, metricsHandler)
	}
	r.Handle("/metrics", metricsHandler)

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(rt.chiMW.RateLimitAuth())
		r.Use(middleware.Prometheus)
		r.With(rt.chiMW.RateLimitLogin()).Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.chiMW.RateLimit())
		r.Use(middleware.Prometheus)
		r.Use(rt.authMW.RequireAuth)

		r.Get("/me", h.Me)

		r.Route("/listings", func(r chi.Router) {
			r.Get("/", h.ListListings)
			r.With(rt.chiMW.RateLimitWrite()).Post("/", h.CreateListing)
			r.Post("/refresh", h.RefreshListings)
			r.Get("/{id}", h.GetListing)
			r.With(rt.chiMW.RateLimitWrite()).Put("/{id}", h.UpdateListing)
			r.With(rt.chiMW.RateLimitWrite()).Delete("/{id}", h.DeleteListing)
			r.Get("/{id}/state", h.GetListingState)
			r.With(rt.chiMW.RateLimitWrite()).Post("/{id}/publish", h.PublishListing)
			r.With(rt.chiMW.RateLimitWrite()).Post("/{id}/unpublish", h.UnpublishListing)
		})

		r.Route("/folders", func(r chi.Router) {
			r.Get("/", h.ListFolders)
			r.Post("/", h.CreateFolder)
			r.Get("/{id}", h.GetFolder)
			r.Put("/{id}", h.UpdateFolder)
			r.Delete("/{id}", h.DeleteFolder)
			r.Post("/{id}/listings", h.AddFolderListing)
			r.Delete("/{id}/listings/{ref}", h.RemoveFolderListing)
		})

		r.Route("/bulk", func(r chi.Router) {
			limitBulk := rt.chiMW.RateLimitBulk()
			r.With(limitBulk).Post("/create", h.BulkCreate)
			r.With(limitBulk).Post("/update", h.BulkUpdate)
			r.With(limitBulk).Post("/delete", h.BulkDelete)
			r.Get("/status", h.BulkStatus)
			r.Get("/runs", h.ListBulkRuns)
			r.Get("/runs/{id}", h.GetBulkRun)
		})

		r.Route("/webhooks", func(r chi.Router) {
			r.Get("/", h.ListWebhooks)
			r.Post("/", h.CreateWebhook)
			r.Put("/{id}", h.UpdateWebhook)
			r.Delete("/{id}", h.DeleteWebhook)
		})

		r.Get("/leads", h.ListLeads)
		r.Get("/insights", h.Insights)
		r.Get("/locations", h.SearchLocations)
		r.Get("/credits", h.Credits)
		r.Get("/account", h.Account)
		r.Get("/permits/validate", h.ValidatePermit)

		r.Route("/users", func(r chi.Router) {
			r.Use(rt.authMW.RequireRole(models.RoleAdmin))
			r.Get("/", h.ListUsers)
			r.Post("/", h.CreateUser)
			r.Get("/{id}", h.GetUser)
			r.Put("/{id}", h.UpdateUser)
			r.Delete("/{id}", h.DeactivateUser)
		})
	})

	return r
}
