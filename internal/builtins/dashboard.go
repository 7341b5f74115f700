// ABOUTME: Dashboard pack: fetch a dashboard, render a screenshot, and save changes.
// ABOUTME: Screenshots are returned base64-encoded so they survive the string content envelope.

package builtins

import (
	"context"
	"encoding/base64"
	"encoding/json"

	"github.com/2389/grafana-mcp/internal/grafana"
	"github.com/2389/grafana-mcp/internal/packs"
	"github.com/2389/grafana-mcp/internal/schema"
)

// Screenshot defaults.
const (
	DefaultScreenshotWidth  = 1000
	DefaultScreenshotHeight = 500
	DefaultScreenshotTheme  = "light"
)

// DashboardPack creates the dashboard pack.
func DashboardPack(api Grafana) *packs.Pack {
	h := &dashboardHandlers{api: api}
	return &packs.Pack{
		ID: CategoryDashboard,
		Tools: []*packs.Tool{
			packs.NewTool("get_dashboard_by_uid",
				"Get a dashboard's full JSON model and metadata by UID",
				h.GetDashboardByUID),
			packs.NewTool("get_dashboard_screenshot",
				"Render a PNG screenshot of a dashboard or a single panel",
				h.GetDashboardScreenshot),
			packs.NewTool("update_dashboard",
				"Create or update a dashboard from its JSON model",
				h.UpdateDashboard),
		},
	}
}

type dashboardHandlers struct {
	api Grafana
}

// get_dashboard_by_uid

type getDashboardParams struct {
	UID string `json:"uid"`
}

func (getDashboardParams) Describe() *schema.Schema {
	return schema.Object(
		schema.String("uid", "Dashboard UID").Require(),
	)
}

type dashboardMeta struct {
	UID         string `json:"uid"`
	Slug        string `json:"slug"`
	URL         string `json:"url"`
	FolderID    int    `json:"folder_id"`
	FolderTitle string `json:"folder_title"`
	FolderURL   string `json:"folder_url"`
	IsStarred   bool   `json:"is_starred"`
	CreatedBy   string `json:"created_by"`
	UpdatedBy   string `json:"updated_by"`
	Version     int    `json:"version"`
}

type dashboardResult struct {
	Dashboard map[string]any `json:"dashboard"`
	Meta      dashboardMeta  `json:"meta"`
}

func (h *dashboardHandlers) GetDashboardByUID(ctx context.Context, p getDashboardParams) (any, error) {
	d, err := h.api.GetDashboardByUID(ctx, p.UID)
	if err != nil {
		return nil, err
	}
	if d.Dashboard == nil {
		return json.RawMessage(d.Raw), nil
	}

	m := d.Meta
	return dashboardResult{
		Dashboard: d.Dashboard,
		Meta: dashboardMeta{
			UID:         m.UID,
			Slug:        m.Slug,
			URL:         m.URL,
			FolderID:    m.FolderID,
			FolderTitle: m.FolderTitle,
			FolderURL:   m.FolderURL,
			IsStarred:   m.IsStarred,
			CreatedBy:   m.CreatedBy,
			UpdatedBy:   m.UpdatedBy,
			Version:     m.Version,
		},
	}, nil
}

// get_dashboard_screenshot

type screenshotParams struct {
	DashboardUID string `json:"dashboard_uid"`
	PanelID      *int   `json:"panel_id"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	FromTime     string `json:"from_time"`
	ToTime       string `json:"to_time"`
	Theme        string `json:"theme"`
}

func (screenshotParams) Describe() *schema.Schema {
	return schema.Object(
		schema.String("dashboard_uid", "Dashboard UID").Require(),
		schema.Integer("panel_id", "Render only this panel"),
		schema.Integer("width", "Image width in pixels").WithDefault(DefaultScreenshotWidth),
		schema.Integer("height", "Image height in pixels").WithDefault(DefaultScreenshotHeight),
		schema.String("from_time", "Range start, e.g. now-6h"),
		schema.String("to_time", "Range end, e.g. now"),
		schema.String("theme", "Render theme").WithDefault(DefaultScreenshotTheme).OneOf("light", "dark"),
	)
}

type screenshotResult struct {
	ImageData    string `json:"image_data"`
	ImageType    string `json:"image_type"`
	DashboardUID string `json:"dashboard_uid"`
	PanelID      *int   `json:"panel_id"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
}

func (h *dashboardHandlers) GetDashboardScreenshot(ctx context.Context, p screenshotParams) (any, error) {
	img, err := h.api.RenderDashboard(ctx, grafana.RenderParams{
		DashboardUID: p.DashboardUID,
		PanelID:      p.PanelID,
		Width:        p.Width,
		Height:       p.Height,
		From:         p.FromTime,
		To:           p.ToTime,
		Theme:        p.Theme,
	})
	if err != nil {
		return nil, err
	}

	return screenshotResult{
		ImageData:    base64.StdEncoding.EncodeToString(img.Data),
		ImageType:    "image/png",
		DashboardUID: p.DashboardUID,
		PanelID:      p.PanelID,
		Width:        p.Width,
		Height:       p.Height,
	}, nil
}

// update_dashboard

type updateDashboardParams struct {
	Dashboard map[string]any `json:"dashboard"`
	Message   string         `json:"message"`
	FolderID  *int           `json:"folder_id"`
	FolderUID string         `json:"folder_uid"`
	Overwrite bool           `json:"overwrite"`
}

func (updateDashboardParams) Describe() *schema.Schema {
	return schema.Object(
		schema.Map("dashboard", "Dashboard JSON model").Require(),
		schema.String("message", "Version history message").WithDefault(grafana.DefaultUpdateMessage),
		schema.Integer("folder_id", "Folder to save the dashboard in, by numeric id"),
		schema.String("folder_uid", "Folder to save the dashboard in, by UID"),
		schema.Boolean("overwrite", "Overwrite a dashboard with the same UID or title").WithDefault(false),
	)
}

func (h *dashboardHandlers) UpdateDashboard(ctx context.Context, p updateDashboardParams) (any, error) {
	return h.api.UpdateDashboard(ctx, grafana.UpdateParams{
		Dashboard: p.Dashboard,
		Message:   p.Message,
		FolderID:  p.FolderID,
		FolderUID: p.FolderUID,
		Overwrite: p.Overwrite,
	})
}
