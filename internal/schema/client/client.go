// Package client is the HTTP client for the external entity-configuration
// provider.
package client

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/tendai-dev/onboarding-kyb-sub006/internal/schema"
	"github.com/tendai-dev/onboarding-kyb-sub006/pkg/platform/sentinel"
)

// Client fetches entity configurations over HTTP.
type Client struct {
	http   *resty.Client
	logger *slog.Logger
}

// New builds a configuration client. Returns nil when baseURL is empty (the
// collaborator is not deployed and lookups are skipped).
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if baseURL == "" {
		return nil
	}
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &Client{http: httpClient, logger: logger}
}

// FetchByFormConfig fetches the versioned configuration behind a form
// config ID.
func (c *Client) FetchByFormConfig(ctx context.Context, formConfigID, formVersion string) (*schema.EntityConfiguration, error) {
	var cfg schema.EntityConfiguration
	req := c.http.R().
		SetContext(ctx).
		SetResult(&cfg).
		SetPathParam("id", formConfigID)
	if formVersion != "" {
		req.SetQueryParam("version", formVersion)
	}
	resp, err := req.Get("/form-configs/{id}")
	if err != nil {
		return nil, fmt.Errorf("fetch form config %s: %w", formConfigID, err)
	}
	return c.decode(resp, fmt.Sprintf("form config %s", formConfigID), &cfg)
}

// FetchByEntityType fetches the current configuration for an entity-type
// code.
func (c *Client) FetchByEntityType(ctx context.Context, entityTypeCode string) (*schema.EntityConfiguration, error) {
	var cfg schema.EntityConfiguration
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&cfg).
		SetPathParam("code", entityTypeCode).
		Get("/entity-configurations/{code}")
	if err != nil {
		return nil, fmt.Errorf("fetch entity configuration %s: %w", entityTypeCode, err)
	}
	return c.decode(resp, fmt.Sprintf("entity configuration %s", entityTypeCode), &cfg)
}

func (c *Client) decode(resp *resty.Response, what string, cfg *schema.EntityConfiguration) (*schema.EntityConfiguration, error) {
	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", what, sentinel.ErrNotFound)
	case resp.IsError():
		return nil, fmt.Errorf("%s: status %d: %w", what, resp.StatusCode(), sentinel.ErrUnavailable)
	}
	return cfg, nil
}
