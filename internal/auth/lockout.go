// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

package auth

import (
	"sync"
	"time"

	"github.com/okhalidi/propdock/internal/logging"
)

// LockoutConfig holds configuration for the account lockout system.
type LockoutConfig struct {
	// MaxAttempts is the number of failed attempts before lockout.
	MaxAttempts int

	// LockoutDuration is the base lockout period.
	LockoutDuration time.Duration

	// EnableExponentialBackoff doubles the lockout period on each
	// subsequent lockout.
	EnableExponentialBackoff bool

	// MaxLockoutDuration caps the lockout period under backoff.
	MaxLockoutDuration time.Duration
}

// DefaultLockoutConfig returns sensible defaults.
func DefaultLockoutConfig() *LockoutConfig {
	return &LockoutConfig{
		MaxAttempts:              5,
		LockoutDuration:          15 * time.Minute,
		EnableExponentialBackoff: true,
		MaxLockoutDuration:       24 * time.Hour,
	}
}

// lockoutEntry tracks failed login attempts for a subject (username or IP).
type lockoutEntry struct {
	failedAttempts int
	lastAttempt    time.Time
	lockoutCount   int
	lockedUntil    time.Time
}

// LockoutManager tracks failed logins per subject and locks accounts after
// repeated failures. State is in-memory: a restart clears lockouts, which is
// acceptable for a single-node dashboard and keeps the attacker-visible
// behavior identical.
type LockoutManager struct {
	config *LockoutConfig

	mu      sync.Mutex
	entries map[string]*lockoutEntry
}

// NewLockoutManager creates a lockout manager.
func NewLockoutManager(config *LockoutConfig) *LockoutManager {
	if config == nil {
		config = DefaultLockoutConfig()
	}
	m := &LockoutManager{
		config:  config,
		entries: make(map[string]*lockoutEntry),
	}
	go m.cleanupLoop(5 * time.Minute)
	return m
}

// IsLocked reports whether the subject is currently locked out, and if so,
// until when.
func (m *LockoutManager) IsLocked(subject string) (bool, time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[subject]
	if !ok {
		return false, time.Time{}
	}
	if time.Now().Before(entry.lockedUntil) {
		return true, entry.lockedUntil
	}
	return false, time.Time{}
}

// RecordFailure registers a failed login. Returns true if the failure
// triggered a lockout.
func (m *LockoutManager) RecordFailure(subject string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[subject]
	if !ok {
		entry = &lockoutEntry{}
		m.entries[subject] = entry
	}

	entry.failedAttempts++
	entry.lastAttempt = time.Now()

	if entry.failedAttempts < m.config.MaxAttempts {
		return false
	}

	duration := m.config.LockoutDuration
	if m.config.EnableExponentialBackoff && entry.lockoutCount > 0 {
		duration <<= entry.lockoutCount
		if duration > m.config.MaxLockoutDuration || duration <= 0 {
			duration = m.config.MaxLockoutDuration
		}
	}

	entry.lockedUntil = time.Now().Add(duration)
	entry.lockoutCount++
	entry.failedAttempts = 0

	logging.Warn().
		Str("subject", subject).
		Dur("duration", duration).
		Int("lockout_count", entry.lockoutCount).
		Msg("Account locked after repeated failed logins")

	return true
}

// RecordSuccess clears the failure count for a subject after a successful
// login. An active lockout is not cleared.
func (m *LockoutManager) RecordSuccess(subject string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[subject]
	if !ok {
		return
	}
	if time.Now().Before(entry.lockedUntil) {
		return
	}
	delete(m.entries, subject)
}

// Reset removes all lockout state for a subject. Admin use.
func (m *LockoutManager) Reset(subject string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, subject)
}

func (m *LockoutManager) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		m.cleanup()
	}
}

// cleanup drops entries that are neither locked nor recently active.
func (m *LockoutManager) cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for subject, entry := range m.entries {
		if now.After(entry.lockedUntil) && now.Sub(entry.lastAttempt) > m.config.LockoutDuration {
			delete(m.entries, subject)
		}
	}
}
