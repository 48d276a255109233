// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

/*
listings.go - Listing CRUD and Publication Methods

Listing lifecycle against the portal: create/read/update/delete, the
publish-state machine (publish, unpublish, state inspection) and price
history.
*/

package pf

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/okhalidi/propdock/internal/models"
)

// ListOptions filters and pages the listings index.
type ListOptions struct {
	Status models.ListingStatus
	Limit  int
	Offset int
}

// ListingsPage is one page of the listings index.
type ListingsPage struct {
	Results []models.Listing `json:"results"`
	Total   int              `json:"total"`
	Limit   int              `json:"limit"`
	Offset  int              `json:"offset"`
}

// ListingPrices is the price history document for one listing.
type ListingPrices struct {
	ListingID string         `json:"listing_id"`
	Prices    []models.Price `json:"prices"`
}

// ListListings fetches a page of the account's listings.
func (c *Client) ListListings(ctx context.Context, opts ListOptions) (*ListingsPage, error) {
	query := url.Values{}
	if opts.Status != "" {
		query.Set("status", string(opts.Status))
	}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		query.Set("offset", strconv.Itoa(opts.Offset))
	}

	var page ListingsPage
	if err := c.getJSON(ctx, "/listings", query, &page); err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	return &page, nil
}

// GetListing fetches one listing by portal id.
func (c *Client) GetListing(ctx context.Context, id string) (*models.Listing, error) {
	var listing models.Listing
	if err := c.getJSON(ctx, "/listings/"+url.PathEscape(id), nil, &listing); err != nil {
		return nil, fmt.Errorf("get listing %s: %w", id, err)
	}
	return &listing, nil
}

// CreateListing creates a draft listing and returns the stored document,
// including the portal-assigned id.
func (c *Client) CreateListing(ctx context.Context, listing *models.Listing) (*models.Listing, error) {
	var created models.Listing
	if err := c.postJSON(ctx, "/listings", listing, &created); err != nil {
		return nil, fmt.Errorf("create listing %s: %w", listing.Reference(), err)
	}
	return &created, nil
}

// UpdateListing replaces the listing document.
func (c *Client) UpdateListing(ctx context.Context, id string, listing *models.Listing) (*models.Listing, error) {
	var updated models.Listing
	if err := c.putJSON(ctx, "/listings/"+url.PathEscape(id), listing, &updated); err != nil {
		return nil, fmt.Errorf("update listing %s: %w", id, err)
	}
	return &updated, nil
}

// DeleteListing removes a listing.
func (c *Client) DeleteListing(ctx context.Context, id string) error {
	if err := c.deleteJSON(ctx, "/listings/"+url.PathEscape(id)); err != nil {
		return fmt.Errorf("delete listing %s: %w", id, err)
	}
	return nil
}

// GetListingState fetches the publish-state document.
func (c *Client) GetListingState(ctx context.Context, id string) (*models.ListingState, error) {
	var state models.ListingState
	if err := c.getJSON(ctx, "/listings/"+url.PathEscape(id)+"/state", nil, &state); err != nil {
		return nil, fmt.Errorf("get listing state %s: %w", id, err)
	}
	return &state, nil
}

// GetListingStateSafe fetches the publish state, falling back to the listing
// document itself when the state endpoint is not available for this listing.
func (c *Client) GetListingStateSafe(ctx context.Context, id string) (*models.ListingState, error) {
	state, err := c.GetListingState(ctx, id)
	if err == nil {
		return state, nil
	}
	if !IsNotFound(err) {
		return nil, err
	}

	listing, getErr := c.GetListing(ctx, id)
	if getErr != nil {
		return nil, fmt.Errorf("state fallback for %s: %w", id, getErr)
	}
	return &models.ListingState{ID: listing.ID, Status: listing.Status}, nil
}

// PublishListing pushes a draft or unpublished listing live. Publishing
// consumes a credit on the portal side.
func (c *Client) PublishListing(ctx context.Context, id string) (*models.ListingState, error) {
	var state models.ListingState
	if err := c.postJSON(ctx, "/listings/"+url.PathEscape(id)+"/publish", nil, &state); err != nil {
		return nil, fmt.Errorf("publish listing %s: %w", id, err)
	}
	return &state, nil
}

// UnpublishListing takes a live listing off the portal.
func (c *Client) UnpublishListing(ctx context.Context, id string) (*models.ListingState, error) {
	var state models.ListingState
	if err := c.postJSON(ctx, "/listings/"+url.PathEscape(id)+"/unpublish", nil, &state); err != nil {
		return nil, fmt.Errorf("unpublish listing %s: %w", id, err)
	}
	return &state, nil
}

// GetListingPrices fetches the price history.
func (c *Client) GetListingPrices(ctx context.Context, id string) (*ListingPrices, error) {
	var prices ListingPrices
	if err := c.getJSON(ctx, "/listings/"+url.PathEscape(id)+"/prices", nil, &prices); err != nil {
		return nil, fmt.Errorf("get listing prices %s: %w", id, err)
	}
	return &prices, nil
}
