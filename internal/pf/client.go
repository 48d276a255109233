// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

/*
client.go - Core PropertyFinder Enterprise API Client

This file provides the Client struct, the token lifecycle and the shared
request pipeline used by every endpoint method.

Authentication:
  - POST /auth/token exchanges apiKey/apiSecret for a JWT access token
  - Tokens expire after ~30 minutes; a 60s buffer forces early refresh
  - Token acquisition is single-flight; concurrent callers share one refresh

Resilience:
  - Client-side rate limiting: 60 req/min for the token endpoint,
    650 req/min for everything else (x/time/rate, context-cancellable)
  - HTTP 401: force token refresh and retry
  - HTTP 429: honor Retry-After, otherwise exponential backoff
  - HTTP 502/503/504: exponential backoff with jitter
  - CDN edge 403 (HTML body): jittered retry, independent budget of 2
  - x-request-id / x-correlation-id captured into APIError and logs

Related Files:
  - listings.go: listing CRUD, state and publication methods
  - reference.go: users, locations, leads, stats, permits, credits
  - webhooks.go: webhook management
  - circuit_breaker.go: gobreaker wrapper used by the server
*/

//nolint:staticcheck // File documentation, not package doc
package pf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/okhalidi/propdock/internal/config"
	"github.com/okhalidi/propdock/internal/logging"
	"github.com/okhalidi/propdock/internal/metrics"
)

// maxErrorBodySize caps the response body read for error reporting.
const maxErrorBodySize = 64 * 1024 // 64KB

// edgeRetryBudget is the independent retry budget for CDN edge blocks.
const edgeRetryBudget = 2

// defaultTokenTTL applies when the token response omits expiresIn.
const defaultTokenTTL = 1800 * time.Second

// Client talks to the PropertyFinder Enterprise API.
//
// Thread Safety: safe for concurrent use. The token cache is guarded by a
// mutex; each request builds its own http.Request.
type Client struct {
	baseURL        string
	apiKey         string
	apiSecret      string
	client         *http.Client
	maxRetries     int
	retryBaseDelay time.Duration
	expiryBuffer   time.Duration
	language       string

	authLimiter *rate.Limiter
	reqLimiter  *rate.Limiter

	tokenMu        sync.Mutex
	accessToken    string
	tokenExpiresAt time.Time

	creditsMu         sync.Mutex
	creditsLegacyPath bool
}

// NewClient creates a client from portal configuration. Credentials are not
// verified here; the first request acquires a token.
func NewClient(cfg *config.PortalConfig) *Client {
	perMinute := func(n int) *rate.Limiter {
		if n <= 0 {
			n = 1
		}
		return rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), 1)
	}

	return &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:         cfg.APIKey,
		apiSecret:      cfg.APISecret,
		client:         &http.Client{Timeout: cfg.Timeout},
		maxRetries:     cfg.MaxRetries,
		retryBaseDelay: cfg.RetryBaseDelay,
		expiryBuffer:   cfg.TokenExpiryBuffer,
		language:       cfg.Language,
		authLimiter:    perMinute(cfg.AuthRateLimit),
		reqLimiter:     perMinute(cfg.RequestRateLimit),
	}
}

// tokenResponse is the /auth/token response body.
type tokenResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int    `json:"expiresIn"`
	TokenType   string `json:"tokenType,omitempty"`
}

// token returns a valid access token, acquiring a new one when the cached
// token is missing, expired, or force is set.
func (c *Client) token(ctx context.Context, force bool) (string, error) {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()

	if !force && c.accessToken != "" && time.Now().Before(c.tokenExpiresAt.Add(-c.expiryBuffer)) {
		return c.accessToken, nil
	}

	if c.apiKey == "" || c.apiSecret == "" {
		return "", ErrMissingCredentials
	}

	waitStart := time.Now()
	if err := c.authLimiter.Wait(ctx); err != nil {
		return "", err
	}
	metrics.PortalRateLimitWaits.Observe(time.Since(waitStart).Seconds())

	body, err := json.Marshal(map[string]string{
		"apiKey":    c.apiKey,
		"apiSecret": c.apiSecret,
	})
	if err != nil {
		return "", fmt.Errorf("marshal token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/token", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.PortalTokenRefreshes.WithLabelValues("failure").Inc()
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.PortalTokenRefreshes.WithLabelValues("failure").Inc()
		return "", newAPIError(resp, readBodyForError(resp.Body))
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		metrics.PortalTokenRefreshes.WithLabelValues("failure").Inc()
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if tok.AccessToken == "" {
		metrics.PortalTokenRefreshes.WithLabelValues("failure").Inc()
		return "", fmt.Errorf("token response missing accessToken")
	}

	ttl := defaultTokenTTL
	if tok.ExpiresIn > 0 {
		ttl = time.Duration(tok.ExpiresIn) * time.Second
	}
	c.accessToken = tok.AccessToken
	c.tokenExpiresAt = time.Now().Add(ttl)

	metrics.PortalTokenRefreshes.WithLabelValues("success").Inc()
	logging.Debug().Dur("ttl", ttl).Msg("portal access token acquired")

	return c.accessToken, nil
}

// InvalidateToken drops the cached token. The next request re-authenticates.
func (c *Client) InvalidateToken() {
	c.tokenMu.Lock()
	c.accessToken = ""
	c.tokenExpiresAt = time.Time{}
	c.tokenMu.Unlock()
}

// requestOptions carries per-request extras for doRequest.
type requestOptions struct {
	query   url.Values
	headers http.Header
}

// doRequest runs one API call through the shared pipeline: rate limiting,
// bearer auth, retries and JSON decoding. path must start with "/".
func (c *Client) doRequest(ctx context.Context, method, path string, opts *requestOptions, body, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("marshal %s %s body: %w", method, path, err)
		}
	}

	reqURL := c.baseURL + path
	if opts != nil && len(opts.query) > 0 {
		reqURL += "?" + opts.query.Encode()
	}

	force := false
	edgeAttempts := 0
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		waitStart := time.Now()
		if err := c.reqLimiter.Wait(ctx); err != nil {
			return err
		}
		metrics.PortalRateLimitWaits.Observe(time.Since(waitStart).Seconds())

		token, err := c.token(ctx, force)
		if err != nil {
			return err
		}
		force = false

		var reqBody io.Reader = http.NoBody
		if payload != nil {
			reqBody = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
		if err != nil {
			return fmt.Errorf("create %s %s request: %w", method, path, err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if opts != nil {
			for key, values := range opts.headers {
				for _, v := range values {
					req.Header.Add(key, v)
				}
			}
		}

		start := time.Now()
		resp, err := c.client.Do(req)
		if err != nil {
			return fmt.Errorf("%s %s failed: %w", method, path, err)
		}
		metrics.ObservePortalRequest(path, method, resp.StatusCode, time.Since(start))

		requestID := resp.Header.Get("x-request-id")
		if requestID == "" {
			requestID = resp.Header.Get("x-correlation-id")
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			err := decodeResponse(resp, out)
			_ = resp.Body.Close()
			if err != nil {
				return fmt.Errorf("decode %s %s response: %w", method, path, err)
			}
			return nil

		case resp.StatusCode == http.StatusUnauthorized:
			_ = resp.Body.Close()
			metrics.PortalRequestRetries.WithLabelValues("unauthorized").Inc()
			lastErr = &APIError{StatusCode: resp.StatusCode, RequestID: requestID, Message: "unauthorized"}
			// Token may have been revoked server-side; refresh and retry.
			force = true

		case resp.StatusCode == http.StatusTooManyRequests:
			delay := c.backoffDelay(attempt)
			if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
				if seconds, parseErr := strconv.Atoi(retryAfter); parseErr == nil && seconds > 0 {
					delay = time.Duration(seconds) * time.Second
				}
			}
			_ = resp.Body.Close()
			metrics.PortalRequestRetries.WithLabelValues("rate_limited").Inc()
			lastErr = ErrRateLimited
			logging.Warn().Str("path", path).Dur("delay", delay).Str("request_id", requestID).Msg("portal rate limited")
			if err := sleepCtx(ctx, delay); err != nil {
				return err
			}

		case isEdgeBlock(resp):
			_ = resp.Body.Close()
			if edgeAttempts >= edgeRetryBudget {
				return fmt.Errorf("%w (request_id=%s)", ErrEdgeBlocked, requestID)
			}
			edgeAttempts++
			metrics.PortalRequestRetries.WithLabelValues("edge_block").Inc()
			delay := jitter(c.retryBaseDelay * time.Duration(1<<uint(edgeAttempts-1)))
			logging.Warn().Str("path", path).Dur("delay", delay).Str("request_id", requestID).Msg("CDN edge block detected, retrying")
			if err := sleepCtx(ctx, delay); err != nil {
				return err
			}
			// Edge retries do not consume the regular retry budget.
			attempt--

		case resp.StatusCode == http.StatusBadGateway ||
			resp.StatusCode == http.StatusServiceUnavailable ||
			resp.StatusCode == http.StatusGatewayTimeout:
			errBody := readBodyForError(resp.Body)
			_ = resp.Body.Close()
			metrics.PortalRequestRetries.WithLabelValues("upstream").Inc()
			lastErr = newAPIErrorWithID(resp.StatusCode, requestID, errBody)
			if attempt == c.maxRetries {
				return lastErr
			}
			delay := jitter(c.backoffDelay(attempt))
			if err := sleepCtx(ctx, delay); err != nil {
				return err
			}

		default:
			errBody := readBodyForError(resp.Body)
			_ = resp.Body.Close()
			return newAPIErrorWithID(resp.StatusCode, requestID, errBody)
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("%s %s: retries exhausted", method, path)
	}
	return lastErr
}

// backoffDelay doubles the base delay per attempt (1s, 2s, 4s, ...).
func (c *Client) backoffDelay(attempt int) time.Duration {
	return c.retryBaseDelay * time.Duration(1<<uint(attempt))
}

// jitter adds up to 25% random spread so synchronized clients do not retry
// in lockstep.
func jitter(d time.Duration) time.Duration {
	return d + time.Duration(rand.Int63n(int64(d)/4+1))
}

// sleepCtx waits for d, returning early if the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// isEdgeBlock detects the CDN returning an HTML 403 instead of a JSON API
// response.
func isEdgeBlock(resp *http.Response) bool {
	if resp.StatusCode != http.StatusForbidden {
		return false
	}
	if !strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		return false
	}
	body := readBodyForError(resp.Body)
	resp.Body = io.NopCloser(bytes.NewReader(body))
	return strings.Contains(strings.ToLower(string(body)), "cloudfront")
}

// decodeResponse decodes the body into out. A nil out or empty body is fine.
func decodeResponse(resp *http.Response, out interface{}) error {
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

// readBodyForError reads at most maxErrorBodySize bytes for diagnostics.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}

// newAPIError builds an APIError from a live response.
func newAPIError(resp *http.Response, body []byte) *APIError {
	requestID := resp.Header.Get("x-request-id")
	if requestID == "" {
		requestID = resp.Header.Get("x-correlation-id")
	}
	return newAPIErrorWithID(resp.StatusCode, requestID, body)
}

func newAPIErrorWithID(status int, requestID string, body []byte) *APIError {
	return &APIError{
		StatusCode: status,
		RequestID:  requestID,
		Message:    extractErrorMessage(body, status),
		Body:       string(body),
	}
}

// extractErrorMessage pulls a human-readable message out of a JSON error
// body, falling back to the HTTP status text.
func extractErrorMessage(body []byte, status int) string {
	var parsed struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Message != "" {
			return parsed.Message
		}
		if parsed.Error != "" {
			return parsed.Error
		}
	}
	return http.StatusText(status)
}

// getJSON issues a GET with optional query parameters.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.doRequest(ctx, http.MethodGet, path, &requestOptions{query: query}, nil, out)
}

// postJSON issues a POST with a JSON body.
func (c *Client) postJSON(ctx context.Context, path string, body, out interface{}) error {
	return c.doRequest(ctx, http.MethodPost, path, nil, body, out)
}

// putJSON issues a PUT with a JSON body.
func (c *Client) putJSON(ctx context.Context, path string, body, out interface{}) error {
	return c.doRequest(ctx, http.MethodPut, path, nil, body, out)
}

// deleteJSON issues a DELETE.
func (c *Client) deleteJSON(ctx context.Context, path string) error {
	return c.doRequest(ctx, http.MethodDelete, path, nil, nil, nil)
}
