// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validation errors.
var (
	ErrMissingBaseURL    = errors.New("portal.base_url is required")
	ErrInvalidPort       = errors.New("server.port must be between 1 and 65535")
	ErrWeakJWTSecret     = errors.New("security.jwt_secret must be at least 32 characters")
	ErrInvalidPageSizes  = errors.New("api.default_page_size must not exceed api.max_page_size")
	ErrNegativeRetries   = errors.New("portal.max_retries must not be negative")
	ErrInvalidRateLimits = errors.New("portal rate limits must be positive")
)

// Validate checks the assembled configuration. It validates what both
// binaries need; ValidateServer adds the server-only checks.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Portal.BaseURL) == "" {
		return ErrMissingBaseURL
	}
	c.Portal.BaseURL = strings.TrimRight(c.Portal.BaseURL, "/")

	if c.Portal.MaxRetries < 0 {
		return ErrNegativeRetries
	}
	if c.Portal.AuthRateLimit <= 0 || c.Portal.RequestRateLimit <= 0 {
		return ErrInvalidRateLimits
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return ErrInvalidPort
	}

	if c.API.DefaultPageSize < 1 {
		c.API.DefaultPageSize = 50
	}
	if c.API.MaxPageSize < 1 {
		c.API.MaxPageSize = 200
	}
	if c.API.DefaultPageSize > c.API.MaxPageSize {
		return ErrInvalidPageSizes
	}

	if c.Bulk.EffectiveDelay() < 0 {
		return fmt.Errorf("bulk.delay must not be negative")
	}

	return nil
}

// ValidateServer checks the settings only the dashboard server requires.
// Call after Validate when starting cmd/server.
func (c *Config) ValidateServer() error {
	if len(c.Security.JWTSecret) < 32 {
		return ErrWeakJWTSecret
	}
	if strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("database.path is required")
	}
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" && c.Server.Environment == "production" {
			return fmt.Errorf("wildcard CORS origin not allowed in production")
		}
	}
	return nil
}

// HasPortalCredentials reports whether API credentials are configured.
func (c *Config) HasPortalCredentials() bool {
	return c.Portal.APIKey != "" && c.Portal.APISecret != ""
}
