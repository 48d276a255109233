// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/okhalidi/propdock/internal/config"
)

// rateLimit bundles a request budget with its window.
type rateLimit struct {
	requests int
	window   time.Duration
}

// Endpoint-class budgets. Login is tight against credential stuffing;
// bulk starts are tight because each one occupies the processor for
// minutes; reads are sized for a dashboard polling several panels.
var (
	limitLogin = rateLimit{requests: 5, window: 5 * time.Minute}
	limitAuth  = rateLimit{requests: 10, window: time.Minute}
	limitBulk  = rateLimit{requests: 10, window: time.Minute}
	limitWrite = rateLimit{requests: 60, window: time.Minute}
)

// ChiMiddleware builds the CORS and rate limiting layers from the
// security configuration.
type ChiMiddleware struct {
	cors     func(http.Handler) http.Handler
	requests int
	window   time.Duration
	disabled bool
}

// NewChiMiddleware creates the middleware factory.
func NewChiMiddleware(cfg *config.SecurityConfig) *ChiMiddleware {
	requests := cfg.RateLimitRequests
	if requests <= 0 {
		requests = 300
	}
	window := cfg.RateLimitWindow
	if window <= 0 {
		window = time.Minute
	}

	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "If-None-Match"},
		AllowCredentials: true,
		MaxAge:           86400,
	})

	return &ChiMiddleware{
		cors:     corsHandler,
		requests: requests,
		window:   window,
		disabled: cfg.RateLimitDisabled,
	}
}

// CORS returns the go-chi/cors handler. Global so OPTIONS preflights are
// answered on every route.
func (m *ChiMiddleware) CORS() func(http.Handler) http.Handler {
	return m.cors
}

// RateLimit is the default per-IP budget for API routes.
func (m *ChiMiddleware) RateLimit() func(http.Handler) http.Handler {
	return m.limit(rateLimit{requests: m.requests, window: m.window})
}

// RateLimitLogin guards the login endpoint.
func (m *ChiMiddleware) RateLimitLogin() func(http.Handler) http.Handler {
	return m.limit(limitLogin)
}

// RateLimitAuth guards the rest of the auth surface.
func (m *ChiMiddleware) RateLimitAuth() func(http.Handler) http.Handler {
	return m.limit(limitAuth)
}

// RateLimitBulk guards bulk run starts.
func (m *ChiMiddleware) RateLimitBulk() func(http.Handler) http.Handler {
	return m.limit(limitBulk)
}

// RateLimitWrite guards portal-mutating endpoints.
func (m *ChiMiddleware) RateLimitWrite() func(http.Handler) http.Handler {
	return m.limit(limitWrite)
}

func (m *ChiMiddleware) limit(l rateLimit) func(http.Handler) http.Handler {
	if m.disabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}
	return httprate.LimitByIP(l.requests, l.window)
}

// securityHeaders adds the standard API response headers.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		next.ServeHTTP(w, r)
	})
}
