// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

/*
account.go - Dashboard Account Models

Local models persisted in DuckDB: dashboard users, listing folders and bulk
run history. These are Propdock's own records, distinct from the portal-side
types in portal.go.
*/

package models

import "time"

// Dashboard roles, in ascending privilege order.
const (
	RoleAgent   = "agent"
	RoleManager = "manager"
	RoleAdmin   = "admin"
)

// ValidRoles lists all recognized dashboard roles.
var ValidRoles = []string{RoleAgent, RoleManager, RoleAdmin}

// IsValidRole reports whether role is a recognized dashboard role.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// RoleAtLeast reports whether have grants the privileges of want.
// admin > manager > agent.
func RoleAtLeast(have, want string) bool {
	rank := map[string]int{RoleAgent: 1, RoleManager: 2, RoleAdmin: 3}
	return rank[have] >= rank[want] && rank[have] != 0
}

// User is a dashboard account. PasswordHash is a bcrypt hash and never
// leaves the server; the json tag strips it from responses.
type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username" validate:"required,min=3,max=64"`
	Email        string     `json:"email,omitempty" validate:"omitempty,email"`
	Role         string     `json:"role" validate:"required,oneof=agent manager admin"`
	PasswordHash string     `json:"-"`
	Active       bool       `json:"active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// Folder groups listings for dashboard organization.
type Folder struct {
	ID          string    `json:"id"`
	Name        string    `json:"name" validate:"required,min=1,max=128"`
	Description string    `json:"description,omitempty"`
	OwnerID     string    `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// ListingRefs is populated on read, not stored on the folder row.
	ListingRefs []string `json:"listing_refs,omitempty"`
}

// BulkRun is the persisted record of one bulk operation.
type BulkRun struct {
	ID          string     `json:"id"`
	Operation   string     `json:"operation"`
	Source      string     `json:"source,omitempty"`
	Total       int        `json:"total"`
	Succeeded   int        `json:"succeeded"`
	Failed      int        `json:"failed"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	StartedBy   string     `json:"started_by,omitempty"`
	ReportJSON  string     `json:"-"`
}
