// ABOUTME: Dashboard endpoints: search, fetch by UID, save, and image rendering.
// ABOUTME: Saves purge the response cache so later reads see the new version.

package grafana

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// SearchDashboards lists dashboards matching p. Folders are excluded.
func (c *Client) SearchDashboards(ctx context.Context, p SearchParams) ([]SearchHit, error) {
	q := url.Values{}
	q.Set("type", "dash-db")
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Query != "" {
		q.Set("query", p.Query)
	}
	for _, tag := range p.Tags {
		q.Add("tag", tag)
	}
	for _, id := range p.FolderIDs {
		q.Add("folderIds", strconv.Itoa(id))
	}

	var hits []SearchHit
	if err := c.getJSON(ctx, "/api/search", q, &hits); err != nil {
		return nil, err
	}
	if hits == nil {
		hits = []SearchHit{}
	}
	return hits, nil
}

// GetDashboardByUID fetches a dashboard and its metadata. When Grafana's
// payload lacks a dashboard object, Dashboard is nil and Raw holds the body.
func (c *Client) GetDashboardByUID(ctx context.Context, uid string) (*Dashboard, error) {
	if uid == "" {
		return nil, fmt.Errorf("dashboard uid is required")
	}

	var raw json.RawMessage
	if err := c.getJSON(ctx, "/api/dashboards/uid/"+url.PathEscape(uid), nil, &raw); err != nil {
		return nil, err
	}

	var d Dashboard
	if err := decode(raw, &d); err != nil {
		return nil, err
	}
	d.Raw = raw
	if d.Meta.UID == "" && d.Dashboard != nil {
		if v, ok := d.Dashboard["uid"].(string); ok {
			d.Meta.UID = v
		}
	}
	return &d, nil
}

// UpdateDashboard creates or overwrites a dashboard.
func (c *Client) UpdateDashboard(ctx context.Context, p UpdateParams) (*UpdateResult, error) {
	if p.Dashboard == nil {
		return nil, fmt.Errorf("dashboard model is required")
	}
	message := p.Message
	if message == "" {
		message = DefaultUpdateMessage
	}

	body := map[string]any{
		"dashboard": p.Dashboard,
		"message":   message,
		"overwrite": p.Overwrite,
	}
	if p.FolderID != nil {
		body["folderId"] = *p.FolderID
	}
	if p.FolderUID != "" {
		body["folderUid"] = p.FolderUID
	}

	data, _, err := c.do(ctx, http.MethodPost, "/api/dashboards/db", nil, body)
	if err != nil {
		return nil, err
	}
	if c.cache != nil {
		c.cache.Purge()
	}

	var result UpdateResult
	if err := decode(data, &result); err != nil {
		return nil, err
	}
	c.logger.Info("dashboard saved", "uid", result.UID, "version", result.Version, "status", result.Status)
	return &result, nil
}

// RenderDashboard asks the image renderer for a PNG of a dashboard, or of a
// single panel when PanelID is set. Renders are never cached.
func (c *Client) RenderDashboard(ctx context.Context, p RenderParams) (*Image, error) {
	if p.DashboardUID == "" {
		return nil, fmt.Errorf("dashboard uid is required")
	}

	q := url.Values{}
	path := "/render/d/" + url.PathEscape(p.DashboardUID)
	if p.PanelID != nil {
		path = "/render/d-solo/" + url.PathEscape(p.DashboardUID)
		q.Set("panelId", strconv.Itoa(*p.PanelID))
	}
	if p.Width > 0 {
		q.Set("width", strconv.Itoa(p.Width))
	}
	if p.Height > 0 {
		q.Set("height", strconv.Itoa(p.Height))
	}
	if p.From != "" {
		q.Set("from", p.From)
	}
	if p.To != "" {
		q.Set("to", p.To)
	}
	if p.Theme != "" {
		q.Set("theme", p.Theme)
	}

	data, header, err := c.do(ctx, http.MethodGet, path, q, nil)
	if err != nil {
		return nil, err
	}

	contentType := header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return &Image{Data: data, ContentType: contentType}, nil
}
