// Package projection keeps the denormalized dashboard store in step with
// newly created cases.
package projection

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/tendai-dev/onboarding-kyb-sub006/pkg/platform/sentinel"
)

// SyncResult reports the effect of one projection-sync call. Transient.
type SyncResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// Affected is the total number of read-model rows the call touched.
func (r SyncResult) Affected() int {
	return r.Created + r.Updated
}

// Client calls the projection service's sync endpoint.
type Client struct {
	http *resty.Client
}

// NewClient builds a projection sync client. Returns nil when baseURL is
// empty; the syncer treats a nil client as "step disabled".
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		return nil
	}
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
	}
}

// Sync triggers a resynchronization run. forceFullSync requests a full
// rebuild instead of an incremental pass.
func (c *Client) Sync(ctx context.Context, forceFullSync bool) (SyncResult, error) {
	var result SyncResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&result).
		SetQueryParam("forceFullSync", strconv.FormatBool(forceFullSync)).
		Post("/sync")
	if err != nil {
		return SyncResult{}, fmt.Errorf("projection sync (full=%t): %w", forceFullSync, err)
	}
	if resp.IsError() {
		return SyncResult{}, fmt.Errorf("projection sync (full=%t): status %d: %w", forceFullSync, resp.StatusCode(), sentinel.ErrUnavailable)
	}
	return result, nil
}
