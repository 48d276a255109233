// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

/*
config.go - Configuration Structures

Defines the full configuration tree for Propdock. Configuration is loaded in
three layers (defaults, YAML file, environment) by koanf.go; validation lives
in config_validate.go.
*/

package config

import "time"

// Config is the root configuration for both the server and the CLI.
type Config struct {
	Portal   PortalConfig   `koanf:"portal"`
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Security SecurityConfig `koanf:"security"`
	Sync     SyncConfig     `koanf:"sync"`
	Bulk     BulkConfig     `koanf:"bulk"`
	Cache    CacheConfig    `koanf:"cache"`
	API      APIConfig      `koanf:"api"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// PortalConfig holds PropertyFinder Enterprise API credentials and the
// client's resilience knobs.
type PortalConfig struct {
	// BaseURL of the Enterprise API, without trailing slash.
	BaseURL string `koanf:"base_url"`

	// APIKey and APISecret are exchanged for a short-lived access token.
	APIKey    string `koanf:"api_key"`
	APISecret string `koanf:"api_secret"`

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration `koanf:"timeout"`

	// MaxRetries bounds the retry loop for 401/429/5xx responses.
	MaxRetries int `koanf:"max_retries"`

	// RetryBaseDelay is the initial backoff delay; it doubles per attempt.
	RetryBaseDelay time.Duration `koanf:"retry_base_delay"`

	// TokenExpiryBuffer refreshes the token this long before it expires.
	TokenExpiryBuffer time.Duration `koanf:"token_expiry_buffer"`

	// AuthRateLimit and RequestRateLimit are requests-per-minute budgets
	// for the token endpoint and everything else.
	AuthRateLimit    int `koanf:"auth_rate_limit"`
	RequestRateLimit int `koanf:"request_rate_limit"`

	// Language is sent as Accept-Language on location lookups.
	Language string `koanf:"language"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	Path string `koanf:"path"`

	// MaxMemory caps DuckDB's memory use, e.g. "1GB".
	MaxMemory string `koanf:"max_memory"`

	// Threads 0 means runtime.NumCPU().
	Threads int `koanf:"threads"`
}

// SecurityConfig holds dashboard authentication settings.
type SecurityConfig struct {
	// JWTSecret signs dashboard session tokens. Required when the server
	// runs; the CLI does not use it.
	JWTSecret string `koanf:"jwt_secret"`

	SessionTimeout time.Duration `koanf:"session_timeout"`

	// AdminUsername/AdminPassword seed the first admin account on an
	// empty database.
	AdminUsername string `koanf:"admin_username"`
	AdminPassword string `koanf:"admin_password"`

	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	CORSOrigins []string `koanf:"cors_origins"`

	// LockoutThreshold failed logins within LockoutWindow lock the account.
	LockoutThreshold int           `koanf:"lockout_threshold"`
	LockoutWindow    time.Duration `koanf:"lockout_window"`
}

// SyncConfig controls the periodic portal snapshot refresh.
type SyncConfig struct {
	Enabled       bool          `koanf:"enabled"`
	Interval      time.Duration `koanf:"interval"`
	PageSize      int           `koanf:"page_size"`
	RetryAttempts int           `koanf:"retry_attempts"`
	RetryDelay    time.Duration `koanf:"retry_delay"`
}

// BulkConfig controls bulk operation pacing and progress persistence.
type BulkConfig struct {
	// Delay is the fixed wait between items.
	Delay time.Duration `koanf:"delay"`

	// DelaySeconds mirrors the legacy BULK_DELAY_SECONDS variable;
	// when set it overrides Delay.
	DelaySeconds float64 `koanf:"delay_seconds"`

	// ProgressPath is the BadgerDB directory for resumable run state.
	ProgressPath string `koanf:"progress_path"`
}

// EffectiveDelay resolves the legacy seconds override against Delay.
func (b BulkConfig) EffectiveDelay() time.Duration {
	if b.DelaySeconds > 0 {
		return time.Duration(b.DelaySeconds * float64(time.Second))
	}
	return b.Delay
}

// CacheConfig controls the in-process TTL cache for portal data.
type CacheConfig struct {
	TTL             time.Duration `koanf:"ttl"`
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
}

// APIConfig holds HTTP API paging limits.
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns the built-in defaults. These load first and are
// overridden by the config file and environment.
func defaultConfig() *Config {
	return &Config{
		Portal: PortalConfig{
			BaseURL:           "https://atlas.propertyfinder.com/v1",
			Timeout:           30 * time.Second,
			MaxRetries:        3,
			RetryBaseDelay:    1 * time.Second,
			TokenExpiryBuffer: 60 * time.Second,
			AuthRateLimit:     60,
			RequestRateLimit:  650,
			Language:          "en",
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8095,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			Environment:     "development",
		},
		Database: DatabaseConfig{
			Path:      "/data/propdock.duckdb",
			MaxMemory: "1GB",
			Threads:   0,
		},
		Security: SecurityConfig{
			SessionTimeout:    24 * time.Hour,
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
			CORSOrigins:       []string{},
			LockoutThreshold:  5,
			LockoutWindow:     15 * time.Minute,
		},
		Sync: SyncConfig{
			Enabled:       true,
			Interval:      15 * time.Minute,
			PageSize:      100,
			RetryAttempts: 3,
			RetryDelay:    30 * time.Second,
		},
		Bulk: BulkConfig{
			Delay:        1 * time.Second,
			ProgressPath: "/data/bulk-progress",
		},
		Cache: CacheConfig{
			TTL:             5 * time.Minute,
			CleanupInterval: 10 * time.Minute,
		},
		API: APIConfig{
			DefaultPageSize: 50,
			MaxPageSize:     200,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
