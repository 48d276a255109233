// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

package logging

import "testing"

func TestSanitizeToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  string
	}{
		{"empty", "", ""},
		{"short", "abc123", "***"},
		{"boundary", "123456789012", "***"},
		{"long", "eyJhbGciOiJIUzI1NiJ9abcd", "eyJh...abcd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeToken(tt.token); got != tt.want {
				t.Errorf("SanitizeToken(%q) = %q, want %q", tt.token, got, tt.want)
			}
		})
	}
}

func TestSanitizeUsername(t *testing.T) {
	if got := SanitizeUsername("johndoe"); got != "jo***" {
		t.Errorf("got %q", got)
	}
	if got := SanitizeUsername("jo"); got != "***" {
		t.Errorf("got %q", got)
	}
}

func TestSanitizeEmail(t *testing.T) {
	if got := SanitizeEmail("agent@broker.ae"); got != "ag***@broker.ae" {
		t.Errorf("got %q", got)
	}
	if got := SanitizeEmail("not-an-email"); got != "***" {
		t.Errorf("got %q", got)
	}
}

func TestSanitizeError(t *testing.T) {
	if got := SanitizeError("invalid apiSecret provided"); got != "authentication error" {
		t.Errorf("credential-bearing error not masked: %q", got)
	}
	if got := SanitizeError("connection refused"); got != "connection refused" {
		t.Errorf("benign error changed: %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("abcdef", 4); got != "abcd..." {
		t.Errorf("got %q", got)
	}
	if got := Truncate("ab", 4); got != "ab" {
		t.Errorf("got %q", got)
	}
}
