// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

// Command server runs the Propdock dashboard: a DuckDB-backed mirror of
// a PropertyFinder Enterprise account with a JSON API for listings,
// folders, leads, insights and bulk operations.
//
// Configuration comes from config.yaml and PROPDOCK_* environment
// variables; see internal/config.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/okhalidi/propdock/internal/api"
	"github.com/okhalidi/propdock/internal/auth"
	"github.com/okhalidi/propdock/internal/bulk"
	"github.com/okhalidi/propdock/internal/config"
	"github.com/okhalidi/propdock/internal/database"
	"github.com/okhalidi/propdock/internal/logging"
	"github.com/okhalidi/propdock/internal/pf"
	"github.com/okhalidi/propdock/internal/supervisor"
	"github.com/okhalidi/propdock/internal/sync"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("portal_url", cfg.Portal.BaseURL).
		Str("db_path", cfg.Database.Path).
		Bool("sync_enabled", cfg.Sync.Enabled).
		Msg("Starting Propdock")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	if err := seedAdminUser(cfg, db); err != nil {
		logging.Fatal().Err(err).Msg("Failed to seed admin user")
	}

	portal := pf.NewCircuitBreakerClient(&cfg.Portal)

	tracker, badgerDB, err := openProgressTracker(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open bulk progress store")
	}
	if badgerDB != nil {
		defer func() {
			if err := badgerDB.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing progress store")
			}
		}()
	}
	processor := bulk.NewProcessor(portal, tracker, cfg.Bulk.EffectiveDelay())

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize session tokens")
	}
	authenticator := auth.NewAuthenticator(db, &cfg.Security)

	handler := api.NewHandler(cfg, db, portal, processor, authenticator, jwtManager)

	// Scrapes of /metrics reuse the admin credentials when configured.
	var metricsBA *auth.BasicAuthManager
	if cfg.Security.AdminUsername != "" && cfg.Security.AdminPassword != "" {
		metricsBA, err = auth.NewBasicAuthManager(cfg.Security.AdminUsername, cfg.Security.AdminPassword)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize metrics basic auth")
		}
	}
	router := api.NewRouter(handler, metricsBA)

	syncManager := sync.NewManager(db, portal, &cfg.Sync)
	syncManager.SetOnSyncCompleted(func(listings, leads int) {
		handler.ClearCache()
	})
	handler.SetSyncer(syncManager)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if cfg.Sync.Enabled {
		tree.AddSyncService(supervisor.NewSyncService(syncManager))
	} else {
		logging.Info().Msg("Portal sync disabled, snapshot refresh is manual only")
	}
	tree.AddAPIService(supervisor.NewHTTPService(server, cfg.Server.ShutdownTimeout))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Propdock stopped")
}

// seedAdminUser creates the configured admin account on an empty user
// table so the dashboard is reachable on first boot.
func seedAdminUser(cfg *config.Config, db *database.DB) error {
	if cfg.Security.AdminUsername == "" || cfg.Security.AdminPassword == "" {
		logging.Warn().Msg("No admin credentials configured, skipping admin seed")
		return nil
	}

	hash, err := auth.HashPassword(cfg.Security.AdminPassword)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return db.EnsureAdminUser(ctx, cfg.Security.AdminUsername, hash)
}

// openProgressTracker opens the Badger-backed progress store when a
// path is configured; without one, bulk runs are not resumable across
// restarts.
func openProgressTracker(cfg *config.Config) (bulk.ProgressTracker, *badger.DB, error) {
	if cfg.Bulk.ProgressPath == "" {
		return bulk.NewInMemoryProgress(), nil, nil
	}

	opts := badger.DefaultOptions(cfg.Bulk.ProgressPath).WithLogger(nil)
	badgerDB, err := badger.Open(opts)
	if err != nil {
		return nil, nil, err
	}
	return bulk.NewBadgerProgress(badgerDB), badgerDB, nil
}
