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

	gobreaker "github.com/sony/gobreaker/v2"
)

func TestCircuitBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var serverHits int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/token" {
			writeToken(t, w, "tok", 1800)
			return
		}
		atomic.AddInt32(&serverHits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cbc := WrapWithBreaker(NewClient(testConfig(srv)))
	ctx := context.Background()

	// Three consecutive failures trip the breaker.
	for i := 0; i < 3; i++ {
		if _, err := cbc.Stats(ctx); err == nil {
			t.Fatalf("call %d should fail", i)
		}
	}
	if got := cbc.State(); got != "open" {
		t.Fatalf("breaker state = %q, want open", got)
	}

	hitsBeforeRejection := atomic.LoadInt32(&serverHits)
	_, err := cbc.Stats(ctx)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("expected ErrOpenState, got %v", err)
	}
	if got := atomic.LoadInt32(&serverHits); got != hitsBeforeRejection {
		t.Errorf("open breaker still reached the server (%d -> %d hits)", hitsBeforeRejection, got)
	}
}

func TestCircuitBreakerPassesThroughSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/token" {
			writeToken(t, w, "tok", 1800)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"total_listings":9}`))
	}))
	defer srv.Close()

	cbc := WrapWithBreaker(NewClient(testConfig(srv)))
	stats, err := cbc.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalListings != 9 {
		t.Errorf("total = %d, want 9", stats.TotalListings)
	}
	if got := cbc.State(); got != "closed" {
		t.Errorf("breaker state = %q, want closed", got)
	}
}
