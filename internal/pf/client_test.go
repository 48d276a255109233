// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

package pf

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/okhalidi/propdock/internal/config"
	"github.com/okhalidi/propdock/internal/models"
)

// testConfig returns a portal config pointed at srv with fast retries and
// effectively unlimited client-side rate limits.
func testConfig(srv *httptest.Server) *config.PortalConfig {
	return &config.PortalConfig{
		BaseURL:           srv.URL,
		APIKey:            "test-key",
		APISecret:         "test-secret",
		Timeout:           5 * time.Second,
		MaxRetries:        3,
		RetryBaseDelay:    time.Millisecond,
		TokenExpiryBuffer: 60 * time.Second,
		AuthRateLimit:     600000,
		RequestRateLimit:  600000,
		Language:          "en",
	}
}

func writeToken(t *testing.T, w http.ResponseWriter, token string, expiresIn int) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"accessToken": token,
		"expiresIn":   expiresIn,
	}); err != nil {
		t.Fatalf("encode token: %v", err)
	}
}

func TestTokenExchangeAndCaching(t *testing.T) {
	var tokenCalls, listingCalls int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/token":
			atomic.AddInt32(&tokenCalls, 1)

			var creds map[string]string
			if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
				t.Errorf("decode credentials: %v", err)
			}
			if creds["apiKey"] != "test-key" || creds["apiSecret"] != "test-secret" {
				t.Errorf("unexpected credentials: %v", creds)
			}
			writeToken(t, w, "tok-1", 1800)

		case "/listings":
			atomic.AddInt32(&listingCalls, 1)
			if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
				t.Errorf("Authorization = %q", got)
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"results":[],"total":0}`))

		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := c.ListListings(ctx, ListOptions{}); err != nil {
			t.Fatalf("list %d: %v", i, err)
		}
	}

	if got := atomic.LoadInt32(&tokenCalls); got != 1 {
		t.Errorf("token endpoint hit %d times, want 1 (cache)", got)
	}
	if got := atomic.LoadInt32(&listingCalls); got != 3 {
		t.Errorf("listings hit %d times, want 3", got)
	}
}

func TestMissingCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should reach the server")
	}))
	defer srv.Close()

	cfg := testConfig(srv)
	cfg.APIKey = ""
	c := NewClient(cfg)

	_, err := c.ListListings(context.Background(), ListOptions{})
	if !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("expected ErrMissingCredentials, got %v", err)
	}
}

func TestUnauthorizedForcesTokenRefresh(t *testing.T) {
	var tokenCalls int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/token":
			n := atomic.AddInt32(&tokenCalls, 1)
			writeToken(t, w, "tok-"+string(rune('0'+n)), 1800)

		case "/stats":
			// The first token is rejected once, simulating server-side
			// revocation.
			if r.Header.Get("Authorization") == "Bearer tok-1" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"total_listings":7}`))
		}
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv))
	stats, err := c.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalListings != 7 {
		t.Errorf("total = %d, want 7", stats.TotalListings)
	}
	if got := atomic.LoadInt32(&tokenCalls); got != 2 {
		t.Errorf("token endpoint hit %d times, want 2 (initial + forced refresh)", got)
	}
}

func TestRateLimitRetry(t *testing.T) {
	var attempts int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/token" {
			writeToken(t, w, "tok", 1800)
			return
		}
		if atomic.AddInt32(&attempts, 1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"total_listings":1}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv))
	if _, err := c.Stats(context.Background()); err != nil {
		t.Fatalf("stats after 429s: %v", err)
	}
	if got := atomic.LoadInt32(&attempts); got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}
}

func TestRateLimitExhaustion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/token" {
			writeToken(t, w, "tok", 1800)
			return
		}
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv))
	_, err := c.Stats(context.Background())
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("expected ErrRateLimited, got %v", err)
	}
}

func TestUpstreamErrorRetry(t *testing.T) {
	var attempts int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/token" {
			writeToken(t, w, "tok", 1800)
			return
		}
		if atomic.AddInt32(&attempts, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"total_listings":2}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv))
	stats, err := c.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats after 502: %v", err)
	}
	if stats.TotalListings != 2 {
		t.Errorf("total = %d, want 2", stats.TotalListings)
	}
}

func TestEdgeBlockRetry(t *testing.T) {
	var attempts int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/token" {
			writeToken(t, w, "tok", 1800)
			return
		}
		if atomic.AddInt32(&attempts, 1) == 1 {
			w.Header().Set("Content-Type", "text/html")
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte("<html>Generated by cloudfront (CloudFront)</html>"))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"total_listings":5}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv))
	stats, err := c.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats after edge block: %v", err)
	}
	if stats.TotalListings != 5 {
		t.Errorf("total = %d, want 5", stats.TotalListings)
	}
}

func TestEdgeBlockBudgetExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/token" {
			writeToken(t, w, "tok", 1800)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("<html>cloudfront</html>"))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv))
	_, err := c.Stats(context.Background())
	if !errors.Is(err, ErrEdgeBlocked) {
		t.Errorf("expected ErrEdgeBlocked, got %v", err)
	}
}

func TestAPIErrorCarriesRequestID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/token" {
			writeToken(t, w, "tok", 1800)
			return
		}
		w.Header().Set("x-request-id", "req-abc")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"permit_number is required"}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv))
	_, err := c.CreateListing(context.Background(), &models.Listing{Title: "x"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d", apiErr.StatusCode)
	}
	if apiErr.RequestID != "req-abc" {
		t.Errorf("request id = %q", apiErr.RequestID)
	}
	if apiErr.Message != "permit_number is required" {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestContextCancellationDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/token" {
			writeToken(t, w, "tok", 1800)
			return
		}
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	c := NewClient(testConfig(srv))
	start := time.Now()
	_, err := c.Stats(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("backoff was not cancellable, waited %v", elapsed)
	}
}

func TestGetListingStateSafeFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/token":
			writeToken(t, w, "tok", 1800)
		case "/listings/L1/state":
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"not found"}`))
		case "/listings/L1":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"L1","title":"Villa","status":"live"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv))
	state, err := c.GetListingStateSafe(context.Background(), "L1")
	if err != nil {
		t.Fatalf("state safe: %v", err)
	}
	if state.ID != "L1" || state.Status != models.StatusLive {
		t.Errorf("state = %+v", state)
	}
}

func TestGetListingPrices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/token":
			writeToken(t, w, "tok", 1800)
		case "/listings/L1/prices":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"listing_id":"L1","prices":[{"amount":1500000,"currency":"AED"},{"amount":1450000,"currency":"AED"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv))
	prices, err := c.GetListingPrices(context.Background(), "L1")
	if err != nil {
		t.Fatalf("get prices: %v", err)
	}
	if prices.ListingID != "L1" || len(prices.Prices) != 2 {
		t.Fatalf("prices = %+v", prices)
	}
	if prices.Prices[1].Amount != 1450000 {
		t.Errorf("second price = %+v", prices.Prices[1])
	}
}

func TestCreditBalanceLegacyFallback(t *testing.T) {
	var balanceCalls, legacyCalls int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/token":
			writeToken(t, w, "tok", 1800)
		case "/credits/balance":
			atomic.AddInt32(&balanceCalls, 1)
			w.WriteHeader(http.StatusNotFound)
		case "/credits":
			atomic.AddInt32(&legacyCalls, 1)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"available":40,"used":10,"total":50}`))
		}
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		balance, err := c.CreditBalance(ctx)
		if err != nil {
			t.Fatalf("credit balance %d: %v", i, err)
		}
		if balance.Available != 40 {
			t.Errorf("available = %d, want 40", balance.Available)
		}
	}

	// The fallback is remembered: the new path is only probed once.
	if got := atomic.LoadInt32(&balanceCalls); got != 1 {
		t.Errorf("/credits/balance hit %d times, want 1", got)
	}
	if got := atomic.LoadInt32(&legacyCalls); got != 2 {
		t.Errorf("/credits hit %d times, want 2", got)
	}
}

func TestLocationsSendsAcceptLanguage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/token":
			writeToken(t, w, "tok", 1800)
		case "/locations":
			if got := r.Header.Get("Accept-Language"); got != "ar" {
				t.Errorf("Accept-Language = %q, want ar", got)
			}
			if got := r.URL.Query().Get("search"); got != "marina" {
				t.Errorf("search = %q", got)
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"results":[{"id":"50","name":"Dubai Marina"}]}`))
		}
	}))
	defer srv.Close()

	cfg := testConfig(srv)
	cfg.Language = "ar"
	c := NewClient(cfg)

	locs, err := c.Locations(context.Background(), "marina")
	if err != nil {
		t.Fatalf("locations: %v", err)
	}
	if len(locs) != 1 || locs[0].Name != "Dubai Marina" {
		t.Errorf("locations = %+v", locs)
	}
}

func TestTokenExpiryBufferTriggersRefresh(t *testing.T) {
	var tokenCalls int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/token":
			atomic.AddInt32(&tokenCalls, 1)
			// Expires inside the 60s buffer, so every request re-auths.
			writeToken(t, w, "tok", 30)
		case "/stats":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{}`))
		}
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv))
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := c.Stats(ctx); err != nil {
			t.Fatalf("stats %d: %v", i, err)
		}
	}
	if got := atomic.LoadInt32(&tokenCalls); got != 2 {
		t.Errorf("token endpoint hit %d times, want 2 (ttl inside buffer)", got)
	}
}
