// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

// Package auth provides dashboard authentication: bcrypt password
// verification against the local user store, JWT session tokens, account
// lockout after repeated failures, role-gating middleware, and HTTP Basic
// auth for the operational endpoints.
//
// The portal's own credentials (API key/secret) never pass through this
// package; those belong to the pf client.
package auth
