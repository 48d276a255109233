// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

// Package sync keeps the local listing and lead snapshot in step with
// the PropertyFinder portal. A manager refreshes on a configurable
// interval, coalesces manual triggers, and retries transient portal
// failures before counting the refresh as failed.
package sync
