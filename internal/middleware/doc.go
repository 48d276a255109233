// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

// Package middleware provides router-agnostic HTTP middleware: request id
// propagation into the logging context and Prometheus request timing.
package middleware
