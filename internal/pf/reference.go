// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

/*
reference.go - Portal Reference Data Methods

Non-listing endpoints: portal users, the location tree, leads, account
statistics, compliance permit validation and credit balances. The credits
endpoint moved between API generations; CreditBalance remembers which path
the account answers on.
*/

package pf

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/okhalidi/propdock/internal/models"
)

// Users fetches the portal user accounts (agents and admins).
func (c *Client) Users(ctx context.Context) ([]models.PortalUser, error) {
	var page struct {
		Results []models.PortalUser `json:"results"`
	}
	if err := c.getJSON(ctx, "/users", nil, &page); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return page.Results, nil
}

// Locations searches the portal location tree. The configured language is
// sent as Accept-Language so Arabic deployments get localized names.
func (c *Client) Locations(ctx context.Context, search string) ([]models.PortalLocation, error) {
	query := url.Values{}
	if search != "" {
		query.Set("search", search)
	}

	headers := http.Header{}
	if c.language != "" {
		headers.Set("Accept-Language", c.language)
	}

	var page struct {
		Results []models.PortalLocation `json:"results"`
	}
	opts := &requestOptions{query: query, headers: headers}
	if err := c.doRequest(ctx, http.MethodGet, "/locations", opts, nil, &page); err != nil {
		return nil, fmt.Errorf("search locations: %w", err)
	}
	return page.Results, nil
}

// LeadOptions pages the leads index.
type LeadOptions struct {
	ListingReference string
	Limit            int
	Offset           int
}

// Leads fetches inbound enquiries.
func (c *Client) Leads(ctx context.Context, opts LeadOptions) ([]models.Lead, error) {
	query := url.Values{}
	if opts.ListingReference != "" {
		query.Set("listing_reference", opts.ListingReference)
	}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		query.Set("offset", strconv.Itoa(opts.Offset))
	}

	var page struct {
		Results []models.Lead `json:"results"`
	}
	if err := c.getJSON(ctx, "/leads", query, &page); err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	return page.Results, nil
}

// Stats fetches the aggregate account statistics.
func (c *Client) Stats(ctx context.Context) (*models.AccountStats, error) {
	var stats models.AccountStats
	if err := c.getJSON(ctx, "/stats", nil, &stats); err != nil {
		return nil, fmt.Errorf("get stats: %w", err)
	}
	return &stats, nil
}

// ValidatePermit checks an advertising permit number with its regulator.
func (c *Client) ValidatePermit(ctx context.Context, issuer models.PermitIssuer, permit string) (*models.PermitValidation, error) {
	if !models.ValidPermitIssuer(issuer) {
		return nil, fmt.Errorf("unsupported permit issuer %q", issuer)
	}

	var result models.PermitValidation
	path := "/compliance/permits/" + url.PathEscape(string(issuer)) + "/" + url.PathEscape(permit)
	if err := c.getJSON(ctx, path, nil, &result); err != nil {
		return nil, fmt.Errorf("validate %s permit %s: %w", issuer, permit, err)
	}
	return &result, nil
}

// CreditBalance fetches the remaining listing credits. Newer accounts answer
// on /credits/balance; older ones only on /credits. A 404 or 405 on the new
// path switches this client to the legacy path for its lifetime.
func (c *Client) CreditBalance(ctx context.Context) (*models.CreditBalance, error) {
	c.creditsMu.Lock()
	legacy := c.creditsLegacyPath
	c.creditsMu.Unlock()

	var balance models.CreditBalance
	if !legacy {
		err := c.getJSON(ctx, "/credits/balance", nil, &balance)
		if err == nil {
			return &balance, nil
		}
		var apiErr *APIError
		if !errors.As(err, &apiErr) || (apiErr.StatusCode != http.StatusNotFound && apiErr.StatusCode != http.StatusMethodNotAllowed) {
			return nil, fmt.Errorf("get credit balance: %w", err)
		}
		c.creditsMu.Lock()
		c.creditsLegacyPath = true
		c.creditsMu.Unlock()
	}

	if err := c.getJSON(ctx, "/credits", nil, &balance); err != nil {
		return nil, fmt.Errorf("get credit balance (legacy path): %w", err)
	}
	return &balance, nil
}
