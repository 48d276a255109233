// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

/*
users.go - Dashboard User Accounts

Database operations for the local user store backing dashboard
authentication. Password hashes arrive pre-computed; this file never sees
plaintext credentials. Deactivation is a soft delete via the active flag so
audit references to a user id keep resolving.
*/

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okhalidi/propdock/internal/logging"
	"github.com/okhalidi/propdock/internal/models"
)

// CreateUser inserts a new user. The caller supplies the bcrypt hash.
func (db *DB) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if !models.IsValidRole(user.Role) {
		return fmt.Errorf("invalid role %q", user.Role)
	}

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	user.Active = true

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, username, email, role, password_hash, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Username, user.Email, user.Role, user.PasswordHash, user.Active,
		user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("username %s: %w", user.Username, ErrDuplicate)
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetUserByUsername returns the user with the given username, active or not.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT id, username, email, role, password_hash, active, created_at, updated_at, last_login_at
		 FROM users WHERE username = ?`, username)
	return scanUser(row)
}

// GetUser returns the user with the given id.
func (db *DB) GetUser(ctx context.Context, id string) (*models.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT id, username, email, role, password_hash, active, created_at, updated_at, last_login_at
		 FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// ListUsers returns all users ordered by username.
func (db *DB) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, username, email, role, password_hash, active, created_at, updated_at, last_login_at
		 FROM users ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

// UpdateUser updates the mutable fields of a user.
func (db *DB) UpdateUser(ctx context.Context, user *models.User) error {
	if !models.IsValidRole(user.Role) {
		return fmt.Errorf("invalid role %q", user.Role)
	}
	user.UpdatedAt = time.Now().UTC()

	res, err := db.conn.ExecContext(ctx,
		`UPDATE users SET email = ?, role = ?, password_hash = ?, active = ?, updated_at = ?
		 WHERE id = ?`,
		user.Email, user.Role, user.PasswordHash, user.Active, user.UpdatedAt, user.ID)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return requireRowAffected(res, "user")
}

// DeactivateUser soft-deletes a user.
func (db *DB) DeactivateUser(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE users SET active = false, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("deactivate user: %w", err)
	}
	return requireRowAffected(res, "user")
}

// TouchLastLogin records a successful login.
func (db *DB) TouchLastLogin(ctx context.Context, id string) error {
	_, err := db.conn.ExecContext(ctx,
		`UPDATE users SET last_login_at = ? WHERE id = ?`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	return nil
}

// EnsureAdminUser creates the bootstrap admin account if no user with the
// given username exists. Existing accounts are left untouched so a changed
// environment password never silently rewrites a managed one.
func (db *DB) EnsureAdminUser(ctx context.Context, username, passwordHash string) error {
	_, err := db.GetUserByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}

	admin := &models.User{
		Username:     username,
		Role:         models.RoleAdmin,
		PasswordHash: passwordHash,
	}
	if err := db.CreateUser(ctx, admin); err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}

	logging.Info().Str("username", username).Msg("Created bootstrap admin user")
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(scanner rowScanner) (*models.User, error) {
	user := &models.User{}
	var email sql.NullString
	var lastLogin sql.NullTime

	err := scanner.Scan(
		&user.ID, &user.Username, &email, &user.Role, &user.PasswordHash,
		&user.Active, &user.CreatedAt, &user.UpdatedAt, &lastLogin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}

	if email.Valid {
		user.Email = email.String
	}
	if lastLogin.Valid {
		user.LastLoginAt = &lastLogin.Time
	}
	return user, nil
}

func requireRowAffected(res sql.Result, entity string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", entity, ErrNotFound)
	}
	return nil
}

// isDuplicateKey detects DuckDB unique constraint violations.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "constraint")
}
