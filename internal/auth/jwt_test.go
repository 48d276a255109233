// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/okhalidi/propdock/internal/config"
)

func testSecurityConfig() *config.SecurityConfig {
	return &config.SecurityConfig{
		JWTSecret:      "test-secret-at-least-32-characters-long",
		SessionTimeout: time.Hour,
	}
}

func TestJWTManager(t *testing.T) {
	manager, err := NewJWTManager(testSecurityConfig())
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}

	t.Run("round trip", func(t *testing.T) {
		token, err := manager.GenerateToken("user-1", "omar", "admin")
		if err != nil {
			t.Fatalf("GenerateToken() error = %v", err)
		}

		claims, err := manager.ValidateToken(token)
		if err != nil {
			t.Fatalf("ValidateToken() error = %v", err)
		}
		if claims.UserID != "user-1" || claims.Username != "omar" || claims.Role != "admin" {
			t.Errorf("unexpected claims: %+v", claims)
		}
	})

	t.Run("rejects tampered token", func(t *testing.T) {
		token, _ := manager.GenerateToken("user-1", "omar", "agent")
		tampered := token[:len(token)-4] + "XXXX"

		if _, err := manager.ValidateToken(tampered); err == nil {
			t.Error("expected error for tampered token")
		}
	})

	t.Run("rejects wrong secret", func(t *testing.T) {
		other, _ := NewJWTManager(&config.SecurityConfig{
			JWTSecret:      "another-secret-at-least-32-characters",
			SessionTimeout: time.Hour,
		})
		token, _ := other.GenerateToken("user-1", "omar", "agent")

		if _, err := manager.ValidateToken(token); err == nil {
			t.Error("expected error for token signed with different secret")
		}
	})

	t.Run("rejects expired token", func(t *testing.T) {
		short, _ := NewJWTManager(&config.SecurityConfig{
			JWTSecret:      "test-secret-at-least-32-characters-long",
			SessionTimeout: -time.Minute,
		})
		token, _ := short.GenerateToken("user-1", "omar", "agent")

		if _, err := manager.ValidateToken(token); err == nil {
			t.Error("expected error for expired token")
		}
	})

	t.Run("rejects unsigned algorithm", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{Username: "evil"})
		token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		if err != nil {
			t.Fatalf("signing none token: %v", err)
		}

		_, err = manager.ValidateToken(token)
		if err == nil {
			t.Fatal("expected error for alg=none token")
		}
		if !strings.Contains(err.Error(), "signing method") && !strings.Contains(err.Error(), "parse") {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestNewJWTManagerRequiresSecret(t *testing.T) {
	_, err := NewJWTManager(&config.SecurityConfig{SessionTimeout: time.Hour})
	if err == nil {
		t.Error("expected error for empty secret")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	if !VerifyPassword(hash, "correct horse battery") {
		t.Error("expected matching password to verify")
	}
	if VerifyPassword(hash, "wrong password") {
		t.Error("expected wrong password to fail")
	}

	if _, err := HashPassword("short"); err == nil {
		t.Error("expected error for short password")
	}
}
