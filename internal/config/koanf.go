// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where config files are searched, in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/propdock/config.yaml",
	"/etc/propdock/config.yml",
}

// ConfigPathEnvVar overrides the config file path when set.
const ConfigPathEnvVar = "CONFIG_PATH"

// Load builds the configuration from three layers:
//  1. Built-in defaults
//  2. Optional YAML config file
//  3. Environment variables (highest priority)
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first config file that exists, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are parsed from comma-separated strings when they arrive
// through the environment.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}
		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envTransformFunc maps environment variable names to koanf paths.
// Variables with the PROPDOCK_ prefix map structurally
// (PROPDOCK_SERVER_PORT -> server.port); the legacy names used by earlier
// deployments map explicitly.
//
// Examples:
//   - PF_API_KEY -> portal.api_key
//   - BULK_DELAY_SECONDS -> bulk.delay_seconds
//   - PROPDOCK_LOGGING_LEVEL -> logging.level
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// PropertyFinder credentials (legacy names)
		"pf_api_key":          "portal.api_key",
		"pf_api_secret":       "portal.api_secret",
		"pf_base_url":         "portal.base_url",
		"pf_max_retries":      "portal.max_retries",
		"pf_timeout":          "portal.timeout",
		"token_expiry_buffer": "portal.token_expiry_buffer",

		// Bulk pacing (legacy names)
		"bulk_delay_seconds": "bulk.delay_seconds",
		"bulk_progress_path": "bulk.progress_path",

		// Server
		"http_port": "server.port",
		"http_host": "server.host",

		// Database
		"duckdb_path":       "database.path",
		"duckdb_max_memory": "database.max_memory",
		"duckdb_threads":    "database.threads",

		// Security
		"jwt_secret":     "security.jwt_secret",
		"admin_username": "security.admin_username",
		"admin_password": "security.admin_password",
		"cors_origins":   "security.cors_origins",

		// Sync
		"sync_enabled":  "sync.enabled",
		"sync_interval": "sync.interval",

		// Logging
		"log_level":  "logging.level",
		"log_format": "logging.format",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// Structured names: PROPDOCK_<SECTION>_<FIELD...>
	if rest, ok := strings.CutPrefix(key, "propdock_"); ok {
		for _, section := range []string{
			"portal", "server", "database", "security",
			"sync", "bulk", "cache", "api", "logging",
		} {
			if field, ok := strings.CutPrefix(rest, section+"_"); ok {
				return section + "." + field
			}
		}
	}

	// Unknown variables are ignored by returning an empty path.
	return ""
}
