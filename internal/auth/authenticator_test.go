// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okhalidi/propdock/internal/config"
	"github.com/okhalidi/propdock/internal/database"
	"github.com/okhalidi/propdock/internal/models"
)

// authDBSemaphore serializes DuckDB-backed tests, matching the store's own
// test setup. Parallel CGO connections under CI pressure can hang.
var authDBSemaphore = make(chan struct{}, 1)

func setupAuthDB(t *testing.T) *database.DB {
	t.Helper()

	authDBSemaphore <- struct{}{}
	t.Cleanup(func() {
		<-authDBSemaphore
	})

	db, err := database.New(&config.DatabaseConfig{
		Path:      ":memory:",
		MaxMemory: "1GB",
	})
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})

	return db
}

func seedUser(t *testing.T, db *database.DB, username, password string) *models.User {
	t.Helper()

	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	user := &models.User{
		Username:     username,
		Role:         models.RoleAgent,
		PasswordHash: hash,
	}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	return user
}

func TestAuthenticate(t *testing.T) {
	db := setupAuthDB(t)
	auth := NewAuthenticator(db, &config.SecurityConfig{
		LockoutThreshold: 3,
		LockoutWindow:    time.Minute,
	})
	ctx := context.Background()

	seeded := seedUser(t, db, "omar", "super-secret-pw")

	t.Run("valid credentials", func(t *testing.T) {
		user, err := auth.Authenticate(ctx, "omar", "super-secret-pw")
		if err != nil {
			t.Fatalf("Authenticate() error = %v", err)
		}
		if user.ID != seeded.ID {
			t.Errorf("user ID = %q, want %q", user.ID, seeded.ID)
		}

		// Successful login stamps last_login_at.
		fresh, err := db.GetUser(ctx, seeded.ID)
		if err != nil {
			t.Fatalf("GetUser() error = %v", err)
		}
		if fresh.LastLoginAt == nil {
			t.Error("expected LastLoginAt to be set after login")
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := auth.Authenticate(ctx, "omar", "wrong")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("error = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("unknown username", func(t *testing.T) {
		_, err := auth.Authenticate(ctx, "nobody", "whatever")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("error = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("disabled account", func(t *testing.T) {
		disabled := seedUser(t, db, "former-agent", "super-secret-pw")
		if err := db.DeactivateUser(ctx, disabled.ID); err != nil {
			t.Fatalf("DeactivateUser() error = %v", err)
		}

		_, err := auth.Authenticate(ctx, "former-agent", "super-secret-pw")
		if !errors.Is(err, ErrAccountDisabled) {
			t.Errorf("error = %v, want ErrAccountDisabled", err)
		}
	})
}

func TestAuthenticateLockout(t *testing.T) {
	db := setupAuthDB(t)
	auth := NewAuthenticator(db, &config.SecurityConfig{
		LockoutThreshold: 2,
		LockoutWindow:    time.Minute,
	})
	ctx := context.Background()

	seedUser(t, db, "omar", "super-secret-pw")

	for range 2 {
		if _, err := auth.Authenticate(ctx, "omar", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("error = %v, want ErrInvalidCredentials", err)
		}
	}

	// Threshold reached: even the correct password is refused.
	if _, err := auth.Authenticate(ctx, "omar", "super-secret-pw"); !errors.Is(err, ErrAccountLocked) {
		t.Errorf("error = %v, want ErrAccountLocked", err)
	}
}
