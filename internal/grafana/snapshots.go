// ABOUTME: Snapshot endpoints: create, list, fetch by key, and delete.
// ABOUTME: Deleting a snapshot evicts its cached payload.

package grafana

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// CreateSnapshot stores p.Dashboard as a snapshot.
func (c *Client) CreateSnapshot(ctx context.Context, p SnapshotParams) (*SnapshotResult, error) {
	if p.Dashboard == nil {
		return nil, fmt.Errorf("dashboard model is required")
	}
	body := map[string]any{
		"dashboard": p.Dashboard,
		"expires":   p.Expires,
	}
	if p.Name != "" {
		body["name"] = p.Name
	}

	data, _, err := c.do(ctx, http.MethodPost, "/api/snapshots", nil, body)
	if err != nil {
		return nil, err
	}

	var result SnapshotResult
	if err := decode(data, &result); err != nil {
		return nil, err
	}
	c.logger.Info("snapshot created", "key", result.Key, "name", p.Name)
	return &result, nil
}

// ListSnapshots lists snapshots whose name matches query. Results are not
// cached since creating a snapshot would make them stale.
func (c *Client) ListSnapshots(ctx context.Context, query string, limit int) ([]Snapshot, error) {
	q := url.Values{}
	if query != "" {
		q.Set("query", query)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	data, _, err := c.do(ctx, http.MethodGet, "/api/dashboard/snapshots", q, nil)
	if err != nil {
		return nil, err
	}
	var out []Snapshot
	if err := decode(data, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []Snapshot{}
	}
	return out, nil
}

// GetSnapshot returns the snapshot payload (dashboard plus meta) as sent.
func (c *Client) GetSnapshot(ctx context.Context, key string) (json.RawMessage, error) {
	if key == "" {
		return nil, fmt.Errorf("snapshot key is required")
	}
	var raw json.RawMessage
	if err := c.getJSON(ctx, snapshotPath(key), nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// DeleteSnapshot removes a snapshot by key and returns Grafana's message.
func (c *Client) DeleteSnapshot(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("snapshot key is required")
	}
	path := snapshotPath(key)
	data, _, err := c.do(ctx, http.MethodDelete, path, nil, nil)
	if err != nil {
		return "", err
	}
	if c.cache != nil {
		c.cache.Delete(c.endpoint(path, nil))
	}

	var payload struct {
		Message string `json:"message"`
	}
	if len(data) > 0 {
		if err := decode(data, &payload); err != nil {
			return "", err
		}
	}
	c.logger.Info("snapshot deleted", "key", key)
	return payload.Message, nil
}

func snapshotPath(key string) string {
	return "/api/snapshots/" + url.PathEscape(key)
}
