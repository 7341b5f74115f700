// ABOUTME: Folder and alert rule endpoints, both read-only and cacheable.

package grafana

import (
	"context"
)

// ListFolders returns the top-level folders visible to the API key.
func (c *Client) ListFolders(ctx context.Context) ([]Folder, error) {
	var out []Folder
	if err := c.getJSON(ctx, "/api/folders", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []Folder{}
	}
	return out, nil
}

// ListAlertRules returns every Grafana-managed alert rule.
func (c *Client) ListAlertRules(ctx context.Context) ([]AlertRule, error) {
	var out []AlertRule
	if err := c.getJSON(ctx, "/api/v1/provisioning/alert-rules", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []AlertRule{}
	}
	return out, nil
}
