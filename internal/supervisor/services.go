// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

package supervisor

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/okhalidi/propdock/internal/logging"
)

// HTTPService runs an http.Server under suture supervision. Serve
// blocks until the context is canceled, then shuts the server down
// gracefully within the configured timeout.
type HTTPService struct {
	server          *http.Server
	shutdownTimeout time.Duration

	mu   sync.Mutex
	addr string
}

// NewHTTPService wraps server. A zero shutdownTimeout defaults to 10s.
func NewHTTPService(server *http.Server, shutdownTimeout time.Duration) *HTTPService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &HTTPService{server: server, shutdownTimeout: shutdownTimeout}
}

// Addr returns the bound listen address, or "" before Serve has bound.
func (s *HTTPService) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Serve implements suture.Service.
func (s *HTTPService) Serve(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.addr = listener.Addr().String()
	s.mu.Unlock()

	logging.Info().Str("addr", listener.Addr().String()).Msg("HTTP server listening")

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		logging.Warn().Err(err).Msg("HTTP server shutdown timed out")
		return err
	}
	logging.Info().Msg("HTTP server stopped")
	return nil
}

// SyncManager is the lifecycle surface of the snapshot sync manager.
type SyncManager interface {
	Start(ctx context.Context) error
	Stop() error
}

// SyncService runs the snapshot sync manager under suture supervision.
type SyncService struct {
	manager SyncManager
}

// NewSyncService wraps manager.
func NewSyncService(manager SyncManager) *SyncService {
	return &SyncService{manager: manager}
}

// Serve implements suture.Service. The manager owns its own goroutines,
// so Serve just brackets its lifecycle around the context.
func (s *SyncService) Serve(ctx context.Context) error {
	if err := s.manager.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()

	if err := s.manager.Stop(); err != nil {
		logging.Warn().Err(err).Msg("Sync manager stop failed")
	}
	return nil
}
