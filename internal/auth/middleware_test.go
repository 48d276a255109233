// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/okhalidi/propdock/internal/models"
)

func okHandler(t *testing.T, wantUsername string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFromContext(r.Context())
		if claims == nil {
			t.Error("expected claims in context")
		} else if wantUsername != "" && claims.Username != wantUsername {
			t.Errorf("claims username = %q, want %q", claims.Username, wantUsername)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth(t *testing.T) {
	manager, _ := NewJWTManager(testSecurityConfig())
	mw := NewMiddleware(manager)

	handler := mw.RequireAuth(okHandler(t, "omar"))

	t.Run("bearer token accepted", func(t *testing.T) {
		token, _ := manager.GenerateToken("user-1", "omar", "agent")

		req := httptest.NewRequest(http.MethodGet, "/api/v1/listings", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("session cookie accepted", func(t *testing.T) {
		token, _ := manager.GenerateToken("user-1", "omar", "agent")

		req := httptest.NewRequest(http.MethodGet, "/api/v1/listings", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("missing token rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/listings", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", ct)
		}
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/listings", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})
}

func TestRequireRole(t *testing.T) {
	manager, _ := NewJWTManager(testSecurityConfig())
	mw := NewMiddleware(manager)

	protected := mw.RequireAuth(mw.RequireRole(models.RoleManager)(okHandler(t, "")))

	cases := []struct {
		role string
		want int
	}{
		{models.RoleAdmin, http.StatusOK},
		{models.RoleManager, http.StatusOK},
		{models.RoleAgent, http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.role, func(t *testing.T) {
			token, _ := manager.GenerateToken("user-1", "someone", tc.role)

			req := httptest.NewRequest(http.MethodDelete, "/api/v1/listings/x", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()

			protected.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Errorf("role %s: status = %d, want %d", tc.role, rec.Code, tc.want)
			}
		})
	}
}

func TestRequireBasicAuth(t *testing.T) {
	manager, err := NewBasicAuthManager("metrics", "scrape-password")
	if err != nil {
		t.Fatalf("NewBasicAuthManager() error = %v", err)
	}

	handler := RequireBasicAuth(manager, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("valid credentials", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		req.SetBasicAuth("metrics", "scrape-password")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		req.SetBasicAuth("metrics", "wrong")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
		if rec.Header().Get("WWW-Authenticate") == "" {
			t.Error("expected WWW-Authenticate challenge")
		}
	})

	t.Run("missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})
}
