// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

// Package api is the dashboard HTTP layer: a chi router over the DuckDB
// store, the portal client and the bulk processor.
//
// Responses use the models.APIResponse envelope. Cacheable GETs get an
// FNV-1a ETag so dashboards polling the same data receive 304s. Routes
// under /api/v1 require a JWT session except /auth/login and /health;
// user management is admin-gated.
package api
