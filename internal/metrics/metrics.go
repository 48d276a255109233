// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

// Package metrics defines the Prometheus instrumentation for Propdock:
// portal API latency and retries, circuit breaker state, bulk throughput,
// cache efficiency, dashboard HTTP traffic and DuckDB query timing.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Portal API client metrics.

	PortalRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "portal_request_duration_seconds",
			Help:    "Duration of PropertyFinder API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	PortalRequestRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_request_retries_total",
			Help: "Total retried PropertyFinder API requests by cause",
		},
		[]string{"cause"}, // unauthorized, rate_limited, upstream, edge_block
	)

	PortalTokenRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_token_refreshes_total",
			Help: "Total access token acquisitions by outcome",
		},
		[]string{"outcome"}, // success, failure
	)

	PortalRateLimitWaits = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "portal_rate_limit_wait_seconds",
			Help:    "Time spent waiting on the client-side rate limiter",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
	)

	// Circuit breaker metrics.

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Circuit breaker requests by result",
		},
		[]string{"name", "result"}, // success, failure, rejected
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Bulk operation metrics.

	BulkItemsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bulk_items_processed_total",
			Help: "Bulk operation items processed by operation and result",
		},
		[]string{"operation", "result"}, // create/update/delete, success/failure
	)

	BulkRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bulk_run_duration_seconds",
			Help:    "Wall-clock duration of bulk runs",
			Buckets: []float64{1, 5, 15, 60, 300, 900, 3600},
		},
		[]string{"operation"},
	)

	// Cache metrics.

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "In-process cache hits by namespace",
		},
		[]string{"namespace"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "In-process cache misses by namespace",
		},
		[]string{"namespace"},
	)

	// Dashboard HTTP metrics.

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of dashboard HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Dashboard HTTP requests currently being served",
		},
	)

	// Database metrics.

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// Sync metrics.

	SyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sync_duration_seconds",
			Help:    "Duration of portal snapshot refreshes",
			Buckets: []float64{0.5, 1, 5, 15, 60, 300},
		},
	)

	SyncErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sync_errors_total",
			Help: "Total failed portal snapshot refreshes",
		},
	)

	SyncListingsFetched = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sync_listings_fetched",
			Help: "Listings fetched in the last completed refresh",
		},
	)
)

// ObservePortalRequest records one portal API request.
func ObservePortalRequest(endpoint, method string, status int, duration time.Duration) {
	PortalRequestDuration.WithLabelValues(endpoint, method, strconv.Itoa(status)).Observe(duration.Seconds())
}

// ObserveDBQuery records one database query.
func ObserveDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}
