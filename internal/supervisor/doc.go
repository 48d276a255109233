// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

// Package supervisor runs the server's long-lived components under a
// suture supervisor tree. The tree has two layers: the sync layer holds
// the portal snapshot manager, the api layer holds the HTTP server, so
// a crash loop in one does not take the other down.
package supervisor
