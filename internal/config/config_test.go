// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

package config

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Portal.BaseURL != "https://atlas.propertyfinder.com/v1" {
		t.Errorf("unexpected base url: %s", cfg.Portal.BaseURL)
	}
	if cfg.Portal.TokenExpiryBuffer != 60*time.Second {
		t.Errorf("token expiry buffer = %v, want 60s", cfg.Portal.TokenExpiryBuffer)
	}
	if cfg.Portal.AuthRateLimit != 60 || cfg.Portal.RequestRateLimit != 650 {
		t.Errorf("rate limits = %d/%d, want 60/650", cfg.Portal.AuthRateLimit, cfg.Portal.RequestRateLimit)
	}
	if cfg.Bulk.EffectiveDelay() != time.Second {
		t.Errorf("bulk delay = %v, want 1s", cfg.Bulk.EffectiveDelay())
	}
}

func TestValidateDefaults(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestValidateTrimsBaseURLSlash(t *testing.T) {
	cfg := defaultConfig()
	cfg.Portal.BaseURL = "https://atlas.propertyfinder.com/v1/"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cfg.Portal.BaseURL != "https://atlas.propertyfinder.com/v1" {
		t.Errorf("trailing slash survived: %s", cfg.Portal.BaseURL)
	}
}

func TestValidateRejectsBadPort(t *testing.T) {
	cfg := defaultConfig()
	cfg.Server.Port = 0
	if err := cfg.Validate(); err != ErrInvalidPort {
		t.Errorf("expected ErrInvalidPort, got %v", err)
	}
}

func TestValidateServerRequiresJWTSecret(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.ValidateServer(); err != ErrWeakJWTSecret {
		t.Errorf("expected ErrWeakJWTSecret, got %v", err)
	}
	cfg.Security.JWTSecret = "0123456789abcdef0123456789abcdef"
	if err := cfg.ValidateServer(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateServerWildcardCORSInProduction(t *testing.T) {
	cfg := defaultConfig()
	cfg.Security.JWTSecret = "0123456789abcdef0123456789abcdef"
	cfg.Security.CORSOrigins = []string{"*"}
	cfg.Server.Environment = "production"
	if err := cfg.ValidateServer(); err == nil {
		t.Error("wildcard CORS must fail in production")
	}
}

func TestBulkEffectiveDelayLegacyOverride(t *testing.T) {
	b := BulkConfig{Delay: 2 * time.Second, DelaySeconds: 0.5}
	if got := b.EffectiveDelay(); got != 500*time.Millisecond {
		t.Errorf("EffectiveDelay() = %v, want 500ms", got)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"PF_API_KEY", "portal.api_key"},
		{"PF_API_SECRET", "portal.api_secret"},
		{"BULK_DELAY_SECONDS", "bulk.delay_seconds"},
		{"DUCKDB_PATH", "database.path"},
		{"JWT_SECRET", "security.jwt_secret"},
		{"PROPDOCK_SERVER_PORT", "server.port"},
		{"PROPDOCK_PORTAL_REQUEST_RATE_LIMIT", "portal.request_rate_limit"},
		{"PROPDOCK_LOGGING_LEVEL", "logging.level"},
		{"UNRELATED_VAR", ""},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			if got := envTransformFunc(tt.env); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
			}
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PF_API_KEY", "key-123")
	t.Setenv("PF_API_SECRET", "secret-456")
	t.Setenv("PROPDOCK_SERVER_PORT", "9090")
	t.Setenv("BULK_DELAY_SECONDS", "0.25")
	t.Setenv("CONFIG_PATH", "/nonexistent/config.yaml")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Portal.APIKey != "key-123" {
		t.Errorf("api key = %q", cfg.Portal.APIKey)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.Bulk.EffectiveDelay() != 250*time.Millisecond {
		t.Errorf("bulk delay = %v", cfg.Bulk.EffectiveDelay())
	}
	if !cfg.HasPortalCredentials() {
		t.Error("credentials should be detected")
	}
}
