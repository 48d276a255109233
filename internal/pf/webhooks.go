// Propdock - PropertyFinder Listings Management and Publishing
// Copyright 2026 Omar K. (okhalidi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/okhalidi/propdock

package pf

import (
	"context"
	"fmt"
	"net/url"

	"github.com/okhalidi/propdock/internal/models"
)

// ListWebhooks fetches the registered webhooks.
func (c *Client) ListWebhooks(ctx context.Context) ([]models.Webhook, error) {
	var page struct {
		Results []models.Webhook `json:"results"`
	}
	if err := c.getJSON(ctx, "/webhooks", nil, &page); err != nil {
		return nil, fmt.Errorf("list webhooks: %w", err)
	}
	return page.Results, nil
}

// CreateWebhook registers a new event callback.
func (c *Client) CreateWebhook(ctx context.Context, hook *models.Webhook) (*models.Webhook, error) {
	var created models.Webhook
	if err := c.postJSON(ctx, "/webhooks", hook, &created); err != nil {
		return nil, fmt.Errorf("create webhook: %w", err)
	}
	return &created, nil
}

// UpdateWebhook replaces a webhook registration.
func (c *Client) UpdateWebhook(ctx context.Context, id string, hook *models.Webhook) (*models.Webhook, error) {
	var updated models.Webhook
	if err := c.putJSON(ctx, "/webhooks/"+url.PathEscape(id), hook, &updated); err != nil {
		return nil, fmt.Errorf("update webhook %s: %w", id, err)
	}
	return &updated, nil
}

// DeleteWebhook removes a webhook registration.
func (c *Client) DeleteWebhook(ctx context.Context, id string) error {
	if err := c.deleteJSON(ctx, "/webhooks/"+url.PathEscape(id)); err != nil {
		return fmt.Errorf("delete webhook %s: %w", id, err)
	}
	return nil
}
