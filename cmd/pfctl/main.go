// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

// Command pfctl is the operator CLI for a PropertyFinder Enterprise
// account. It talks to the portal directly; the dashboard server is not
// required.
//
// Credentials and defaults come from the same configuration sources as
// the server (config.yaml, PROPDOCK_* environment variables).
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/okhalidi/propdock/internal/config"
	"github.com/okhalidi/propdock/internal/logging"
	"github.com/okhalidi/propdock/internal/pf"
)

var rootCmd = &cobra.Command{
	Use:               "pfctl",
	Short:             "PropertyFinder listings CLI",
	Long:              "Manage PropertyFinder Enterprise listings, bulk operations and reference data from the command line.",
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: rootPreRunE,
}

var rootArgs struct {
	verbose    bool
	delay      float64
	maxRetries int
}

var (
	cfg    *config.Config
	client pf.API
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&rootArgs.verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().Float64Var(&rootArgs.delay, "delay", 0, "Seconds to wait between bulk items (overrides config)")
	rootCmd.PersistentFlags().IntVar(&rootArgs.maxRetries, "max-retries", 0, "Max retries per portal request (overrides config)")
}

func rootPreRunE(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	level := "warn"
	if rootArgs.verbose {
		level = "debug"
	}
	logging.Init(logging.Config{Level: level, Format: "console"})

	if cfg.Portal.APIKey == "" || cfg.Portal.APISecret == "" {
		return fmt.Errorf("portal credentials are required: set PF_API_KEY and PF_API_SECRET")
	}

	if rootArgs.maxRetries > 0 {
		cfg.Portal.MaxRetries = rootArgs.maxRetries
	}
	if rootArgs.delay > 0 {
		cfg.Bulk.DelaySeconds = rootArgs.delay
	}

	client = pf.NewClient(&cfg.Portal)
	return nil
}

// bulkDelay resolves the per-item pacing for bulk commands.
func bulkDelay() time.Duration {
	if d := cfg.Bulk.EffectiveDelay(); d > 0 {
		return d
	}
	return time.Second
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
