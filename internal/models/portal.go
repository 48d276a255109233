// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

/*
portal.go - Portal Reference Data Models

Wire types for the non-listing PropertyFinder endpoints: portal users,
locations, leads, credits, stats, permits and webhooks.
*/

package models

import "time"

// PortalUser is an agent or admin account on the portal side.
type PortalUser struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Role      string `json:"role,omitempty"`
	Active    bool   `json:"active"`
}

// PortalLocation is a node in the portal's location tree. Listings refer to
// locations by id.
type PortalLocation struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type,omitempty"`
	Path     string `json:"path,omitempty"`
	ParentID string `json:"parent_id,omitempty"`
}

// Lead is an inbound enquiry against a listing.
type Lead struct {
	ID               string    `json:"id"`
	ListingReference string    `json:"listing_reference,omitempty"`
	Name             string    `json:"name"`
	Email            string    `json:"email,omitempty"`
	Phone            string    `json:"phone,omitempty"`
	Channel          string    `json:"channel,omitempty"`
	Message          string    `json:"message,omitempty"`
	ReceivedAt       time.Time `json:"received_at"`
}

// CreditBalance is the account's remaining listing credits.
type CreditBalance struct {
	Available int    `json:"available"`
	Used      int    `json:"used"`
	Total     int    `json:"total"`
	Currency  string `json:"currency,omitempty"`
}

// AccountStats is the aggregate account statistics document.
type AccountStats struct {
	TotalListings  int `json:"total_listings"`
	LiveListings   int `json:"live_listings"`
	DraftListings  int `json:"draft_listings"`
	ExpiredCount   int `json:"expired_count"`
	LeadsThisMonth int `json:"leads_this_month"`
	Views          int `json:"views"`
	Impressions    int `json:"impressions"`
}

// PermitIssuer identifies the regulator that issued an advertising permit.
type PermitIssuer string

const (
	PermitRERA  PermitIssuer = "rera"
	PermitDTCM  PermitIssuer = "dtcm"
	PermitADREC PermitIssuer = "adrec"
)

// ValidPermitIssuer reports whether issuer is a supported regulator.
func ValidPermitIssuer(issuer PermitIssuer) bool {
	return issuer == PermitRERA || issuer == PermitDTCM || issuer == PermitADREC
}

// PermitValidation is the regulator's verdict on a permit number.
type PermitValidation struct {
	Permit    string       `json:"permit"`
	Issuer    PermitIssuer `json:"issuer"`
	Valid     bool         `json:"valid"`
	ExpiresAt string       `json:"expires_at,omitempty"`
	Message   string       `json:"message,omitempty"`
}

// Webhook is a registered event callback.
type Webhook struct {
	ID     string   `json:"id,omitempty"`
	URL    string   `json:"url" validate:"required,url"`
	Events []string `json:"events" validate:"required,min=1"`
	Secret string   `json:"secret,omitempty"`
	Active bool     `json:"active"`
}
