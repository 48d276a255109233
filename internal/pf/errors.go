// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

package pf

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the client.
var (
	// ErrMissingCredentials means no API key/secret pair is configured.
	ErrMissingCredentials = errors.New("pf: api key and secret are required")

	// ErrRateLimited means the retry budget was exhausted on HTTP 429.
	ErrRateLimited = errors.New("pf: rate limit exceeded after retries")

	// ErrEdgeBlocked means the CDN edge rejected the request repeatedly.
	ErrEdgeBlocked = errors.New("pf: request blocked at the CDN edge")
)

// APIError is a non-2xx response from the PropertyFinder API.
type APIError struct {
	StatusCode int
	RequestID  string
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("pf: HTTP %d (request_id=%s): %s", e.StatusCode, e.RequestID, e.Message)
	}
	return fmt.Sprintf("pf: HTTP %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 404
}

// IsAuthError reports whether err is an APIError with status 401 or 403.
func IsAuthError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && (apiErr.StatusCode == 401 || apiErr.StatusCode == 403)
}
