// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// maxBodyBytes caps request bodies. Bulk CSV uploads are the largest
// legitimate payloads.
const maxBodyBytes = 16 << 20

// decodeBody decodes a JSON request body into out, rejecting unknown
// fields so typos surface as 400s rather than silently dropped input.
func decodeBody(r *http.Request, out interface{}) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// queryInt parses an integer query parameter, returning def when absent
// or malformed.
func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// isCSVUpload reports whether the request carries CSV rather than JSON.
func isCSVUpload(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return strings.HasPrefix(ct, "text/csv") || strings.HasPrefix(ct, "application/csv") ||
		strings.HasPrefix(ct, "multipart/form-data")
}
