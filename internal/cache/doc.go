// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

// Package cache provides the in-memory caches used by the dashboard API:
// a TTL map cache for response payloads (cleared after each portal sync)
// and a generic bounded LRU for portal location lookups.
package cache
