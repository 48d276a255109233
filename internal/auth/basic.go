// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

package auth

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// BasicAuthManager guards the operational endpoints (metrics, pprof) with
// HTTP Basic authentication. The dashboard itself uses JWT sessions; Basic
// auth exists for scrapers that cannot perform a login flow.
type BasicAuthManager struct {
	username     string
	passwordHash []byte
}

// NewBasicAuthManager hashes the password once at startup so requests only
// pay for a bcrypt comparison.
func NewBasicAuthManager(username, password string) (*BasicAuthManager, error) {
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	return &BasicAuthManager{
		username:     username,
		passwordHash: hash,
	}, nil
}

// ValidateCredentials validates an Authorization header value and returns
// the username on success.
func (m *BasicAuthManager) ValidateCredentials(authHeader string) (string, error) {
	if !strings.HasPrefix(authHeader, "Basic ") {
		return "", fmt.Errorf("invalid authorization header format")
	}

	credentials, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(authHeader, "Basic "))
	if err != nil {
		return "", fmt.Errorf("failed to decode credentials")
	}

	parts := strings.SplitN(string(credentials), ":", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid credentials format")
	}

	// Both comparisons always run so the response time does not reveal
	// which half failed. bcrypt's comparison is timing-safe already.
	usernameMatch := subtle.ConstantTimeCompare([]byte(parts[0]), []byte(m.username)) == 1
	passwordMatch := bcrypt.CompareHashAndPassword(m.passwordHash, []byte(parts[1])) == nil
	if !(usernameMatch && passwordMatch) {
		return "", fmt.Errorf("invalid username or password")
	}

	return parts[0], nil
}

// WWWAuthenticateHeader returns the challenge header sent with 401 responses.
func (m *BasicAuthManager) WWWAuthenticateHeader() string {
	return `Basic realm="Propdock", charset="UTF-8"`
}
