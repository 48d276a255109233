// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

package pf

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/okhalidi/propdock/internal/config"
	"github.com/okhalidi/propdock/internal/logging"
	"github.com/okhalidi/propdock/internal/metrics"
	"github.com/okhalidi/propdock/internal/models"
)

// API is the portal surface consumed by the server, the sync manager and the
// bulk processor. *Client and *CircuitBreakerClient both satisfy it.
type API interface {
	ListListings(ctx context.Context, opts ListOptions) (*ListingsPage, error)
	GetListing(ctx context.Context, id string) (*models.Listing, error)
	CreateListing(ctx context.Context, listing *models.Listing) (*models.Listing, error)
	UpdateListing(ctx context.Context, id string, listing *models.Listing) (*models.Listing, error)
	DeleteListing(ctx context.Context, id string) error
	GetListingState(ctx context.Context, id string) (*models.ListingState, error)
	GetListingStateSafe(ctx context.Context, id string) (*models.ListingState, error)
	PublishListing(ctx context.Context, id string) (*models.ListingState, error)
	UnpublishListing(ctx context.Context, id string) (*models.ListingState, error)
	GetListingPrices(ctx context.Context, id string) (*ListingPrices, error)

	Users(ctx context.Context) ([]models.PortalUser, error)
	Locations(ctx context.Context, search string) ([]models.PortalLocation, error)
	Leads(ctx context.Context, opts LeadOptions) ([]models.Lead, error)
	Stats(ctx context.Context) (*models.AccountStats, error)
	ValidatePermit(ctx context.Context, issuer models.PermitIssuer, permit string) (*models.PermitValidation, error)
	CreditBalance(ctx context.Context) (*models.CreditBalance, error)

	ListWebhooks(ctx context.Context) ([]models.Webhook, error)
	CreateWebhook(ctx context.Context, hook *models.Webhook) (*models.Webhook, error)
	UpdateWebhook(ctx context.Context, id string, hook *models.Webhook) (*models.Webhook, error)
	DeleteWebhook(ctx context.Context, id string) error
}

var (
	_ API = (*Client)(nil)
	_ API = (*CircuitBreakerClient)(nil)
)

// CircuitBreakerClient wraps Client with the circuit breaker pattern so a
// failing portal cannot stall the dashboard. The CLI uses the bare client;
// server-side consumers go through this wrapper.
//
// The breaker uses real time for its open-interval bookkeeping. Tests that
// need determinism should exercise the wrapped client directly.
type CircuitBreakerClient struct {
	client *Client
	cb     *gobreaker.CircuitBreaker[any]
	name   string
}

// NewCircuitBreakerClient creates the protected portal client.
// The circuit opens after 3 consecutive failures and probes again after 30s.
func NewCircuitBreakerClient(cfg *config.PortalConfig) *CircuitBreakerClient {
	return WrapWithBreaker(NewClient(cfg))
}

// WrapWithBreaker wraps an existing client.
func WrapWithBreaker(client *Client) *CircuitBreakerClient {
	const cbName = "propertyfinder-api"

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &CircuitBreakerClient{client: client, cb: cb, name: cbName}
}

// execute runs one portal call under the breaker and records metrics.
func (cbc *CircuitBreakerClient) execute(fn func() (any, error)) (any, error) {
	result, err := cbc.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "rejected").Inc()
			logging.Warn().Err(err).Msg("[CIRCUIT BREAKER] Request rejected")
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "failure").Inc()
		}
		return nil, err
	}
	metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "success").Inc()
	return result, nil
}

// castResult type-asserts the breaker's any result.
func castResult[T any](result any, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	typed, ok := result.(*T)
	if !ok {
		return nil, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

// castSlice type-asserts slice results.
func castSlice[T any](result any, err error) ([]T, error) {
	if err != nil {
		return nil, err
	}
	typed, ok := result.([]T)
	if !ok {
		return nil, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

func (cbc *CircuitBreakerClient) ListListings(ctx context.Context, opts ListOptions) (*ListingsPage, error) {
	return castResult[ListingsPage](cbc.execute(func() (any, error) {
		return cbc.client.ListListings(ctx, opts)
	}))
}

func (cbc *CircuitBreakerClient) GetListing(ctx context.Context, id string) (*models.Listing, error) {
	return castResult[models.Listing](cbc.execute(func() (any, error) {
		return cbc.client.GetListing(ctx, id)
	}))
}

func (cbc *CircuitBreakerClient) CreateListing(ctx context.Context, listing *models.Listing) (*models.Listing, error) {
	return castResult[models.Listing](cbc.execute(func() (any, error) {
		return cbc.client.CreateListing(ctx, listing)
	}))
}

func (cbc *CircuitBreakerClient) UpdateListing(ctx context.Context, id string, listing *models.Listing) (*models.Listing, error) {
	return castResult[models.Listing](cbc.execute(func() (any, error) {
		return cbc.client.UpdateListing(ctx, id, listing)
	}))
}

func (cbc *CircuitBreakerClient) DeleteListing(ctx context.Context, id string) error {
	_, err := cbc.execute(func() (any, error) {
		return nil, cbc.client.DeleteListing(ctx, id)
	})
	return err
}

func (cbc *CircuitBreakerClient) GetListingState(ctx context.Context, id string) (*models.ListingState, error) {
	return castResult[models.ListingState](cbc.execute(func() (any, error) {
		return cbc.client.GetListingState(ctx, id)
	}))
}

func (cbc *CircuitBreakerClient) GetListingStateSafe(ctx context.Context, id string) (*models.ListingState, error) {
	return castResult[models.ListingState](cbc.execute(func() (any, error) {
		return cbc.client.GetListingStateSafe(ctx, id)
	}))
}

func (cbc *CircuitBreakerClient) PublishListing(ctx context.Context, id string) (*models.ListingState, error) {
	return castResult[models.ListingState](cbc.execute(func() (any, error) {
		return cbc.client.PublishListing(ctx, id)
	}))
}

func (cbc *CircuitBreakerClient) UnpublishListing(ctx context.Context, id string) (*models.ListingState, error) {
	return castResult[models.ListingState](cbc.execute(func() (any, error) {
		return cbc.client.UnpublishListing(ctx, id)
	}))
}

func (cbc *CircuitBreakerClient) GetListingPrices(ctx context.Context, id string) (*ListingPrices, error) {
	return castResult[ListingPrices](cbc.execute(func() (any, error) {
		return cbc.client.GetListingPrices(ctx, id)
	}))
}

func (cbc *CircuitBreakerClient) Users(ctx context.Context) ([]models.PortalUser, error) {
	return castSlice[models.PortalUser](cbc.execute(func() (any, error) {
		return cbc.client.Users(ctx)
	}))
}

func (cbc *CircuitBreakerClient) Locations(ctx context.Context, search string) ([]models.PortalLocation, error) {
	return castSlice[models.PortalLocation](cbc.execute(func() (any, error) {
		return cbc.client.Locations(ctx, search)
	}))
}

func (cbc *CircuitBreakerClient) Leads(ctx context.Context, opts LeadOptions) ([]models.Lead, error) {
	return castSlice[models.Lead](cbc.execute(func() (any, error) {
		return cbc.client.Leads(ctx, opts)
	}))
}

func (cbc *CircuitBreakerClient) Stats(ctx context.Context) (*models.AccountStats, error) {
	return castResult[models.AccountStats](cbc.execute(func() (any, error) {
		return cbc.client.Stats(ctx)
	}))
}

func (cbc *CircuitBreakerClient) ValidatePermit(ctx context.Context, issuer models.PermitIssuer, permit string) (*models.PermitValidation, error) {
	return castResult[models.PermitValidation](cbc.execute(func() (any, error) {
		return cbc.client.ValidatePermit(ctx, issuer, permit)
	}))
}

func (cbc *CircuitBreakerClient) CreditBalance(ctx context.Context) (*models.CreditBalance, error) {
	return castResult[models.CreditBalance](cbc.execute(func() (any, error) {
		return cbc.client.CreditBalance(ctx)
	}))
}

func (cbc *CircuitBreakerClient) ListWebhooks(ctx context.Context) ([]models.Webhook, error) {
	return castSlice[models.Webhook](cbc.execute(func() (any, error) {
		return cbc.client.ListWebhooks(ctx)
	}))
}

func (cbc *CircuitBreakerClient) CreateWebhook(ctx context.Context, hook *models.Webhook) (*models.Webhook, error) {
	return castResult[models.Webhook](cbc.execute(func() (any, error) {
		return cbc.client.CreateWebhook(ctx, hook)
	}))
}

func (cbc *CircuitBreakerClient) UpdateWebhook(ctx context.Context, id string, hook *models.Webhook) (*models.Webhook, error) {
	return castResult[models.Webhook](cbc.execute(func() (any, error) {
		return cbc.client.UpdateWebhook(ctx, id, hook)
	}))
}

func (cbc *CircuitBreakerClient) DeleteWebhook(ctx context.Context, id string) error {
	_, err := cbc.execute(func() (any, error) {
		return nil, cbc.client.DeleteWebhook(ctx, id)
	})
	return err
}

// State returns the breaker's current state for health reporting.
func (cbc *CircuitBreakerClient) State() string {
	return stateToString(cbc.cb.State())
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
