// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okhalidi/propdock/internal/config"
	"github.com/okhalidi/propdock/internal/database"
	"github.com/okhalidi/propdock/internal/logging"
	"github.com/okhalidi/propdock/internal/models"
)

// Authentication failure modes. Handlers map all of them except
// ErrAccountLocked to the same generic response so usernames cannot be
// enumerated.
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrAccountLocked      = errors.New("account is temporarily locked")
)

// Authenticator validates dashboard logins against the local user store
// with lockout protection.
type Authenticator struct {
	db      *database.DB
	lockout *LockoutManager
}

// NewAuthenticator creates an authenticator over the user store.
func NewAuthenticator(db *database.DB, cfg *config.SecurityConfig) *Authenticator {
	lockoutCfg := DefaultLockoutConfig()
	if cfg.LockoutThreshold > 0 {
		lockoutCfg.MaxAttempts = cfg.LockoutThreshold
	}
	if cfg.LockoutWindow > 0 {
		lockoutCfg.LockoutDuration = cfg.LockoutWindow
	}

	return &Authenticator{
		db:      db,
		lockout: NewLockoutManager(lockoutCfg),
	}
}

// Authenticate checks a username/password pair and returns the user on
// success. Failed attempts count toward lockout; a locked subject is
// rejected before the password is checked.
func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	if locked, until := a.lockout.IsLocked(username); locked {
		logging.Warn().
			Str("username", logging.SanitizeUsername(username)).
			Time("locked_until", until).
			Msg("Login attempt on locked account")
		return nil, fmt.Errorf("%w until %s", ErrAccountLocked, until.Format(time.RFC3339))
	}

	user, err := a.db.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			// Burn a hash comparison so unknown usernames take as long
			// as wrong passwords.
			VerifyPassword("$2a$12$XXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXX", password)
			a.lockout.RecordFailure(username)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !VerifyPassword(user.PasswordHash, password) {
		a.lockout.RecordFailure(username)
		return nil, ErrInvalidCredentials
	}

	if !user.Active {
		return nil, ErrAccountDisabled
	}

	a.lockout.RecordSuccess(username)

	if err := a.db.TouchLastLogin(ctx, user.ID); err != nil {
		logging.Warn().Err(err).Msg("Failed to record last login")
	}

	return user, nil
}

// Lockout exposes the lockout manager for admin reset endpoints.
func (a *Authenticator) Lockout() *LockoutManager {
	return a.lockout
}
