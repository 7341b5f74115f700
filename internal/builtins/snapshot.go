// ABOUTME: Snapshot pack: snapshot a dashboard with its panel data, list, fetch, and delete snapshots.
// ABOUTME: Panel data is queried per panel; panels whose query fails are snapshotted without data.

package builtins

import (
	"context"
	"fmt"

	"github.com/2389/grafana-mcp/internal/grafana"
	"github.com/2389/grafana-mcp/internal/packs"
	"github.com/2389/grafana-mcp/internal/schema"
)

// DefaultSnapshotListLimit caps list_snapshots when no limit is given.
const DefaultSnapshotListLimit = 100

// SnapshotPack creates the snapshot pack.
func SnapshotPack(api Grafana) *packs.Pack {
	h := &snapshotHandlers{api: api}
	return &packs.Pack{
		ID: CategorySnapshot,
		Tools: []*packs.Tool{
			packs.NewTool("create_dashboard_snapshot",
				"Snapshot a dashboard, embedding the current data of each panel",
				h.CreateDashboardSnapshot),
			packs.NewTool("list_snapshots",
				"List dashboard snapshots",
				h.ListSnapshots),
			packs.NewTool("get_snapshot",
				"Get a snapshot's dashboard model and metadata by key",
				h.GetSnapshot),
			packs.NewTool("delete_snapshot",
				"Delete a snapshot by key",
				h.DeleteSnapshot),
		},
	}
}

type snapshotHandlers struct {
	api Grafana
}

// create_dashboard_snapshot

type createSnapshotParams struct {
	DashboardUID string `json:"dashboard_uid"`
	Name         string `json:"name"`
	Expires      int    `json:"expires"`
	IncludeData  bool   `json:"include_data"`
}

func (createSnapshotParams) Describe() *schema.Schema {
	return schema.Object(
		schema.String("dashboard_uid", "Dashboard to snapshot").Require(),
		schema.String("name", "Snapshot name").Require(),
		schema.Integer("expires", "Seconds until the snapshot expires, 0 for never").WithDefault(0),
		schema.Boolean("include_data", "Query each panel and embed the results").WithDefault(true),
	)
}

type createSnapshotResult struct {
	Key            string `json:"key"`
	DeleteKey      string `json:"delete_key"`
	URL            string `json:"url"`
	DeleteURL      string `json:"delete_url"`
	PanelsWithData int    `json:"panels_with_data"`
	FailedPanels   []any  `json:"failed_panels"`
}

func (h *snapshotHandlers) CreateDashboardSnapshot(ctx context.Context, p createSnapshotParams) (any, error) {
	if p.Expires < 0 {
		return nil, fmt.Errorf("expires must not be negative")
	}
	d, err := h.api.GetDashboardByUID(ctx, p.DashboardUID)
	if err != nil {
		return nil, err
	}
	if d.Dashboard == nil {
		return nil, fmt.Errorf("dashboard %s has no model", p.DashboardUID)
	}

	model := make(map[string]any, len(d.Dashboard))
	for k, v := range d.Dashboard {
		model[k] = v
	}
	title, _ := model["title"].(string)
	model["title"] = title + " (Snapshot)"

	result := createSnapshotResult{FailedPanels: []any{}}
	if p.IncludeData {
		from, to := dashboardRange(model)
		if panels, ok := model["panels"].([]any); ok {
			model["panels"] = h.fillPanelData(ctx, panels, from, to, &result)
		}
	}

	snap, err := h.api.CreateSnapshot(ctx, grafana.SnapshotParams{
		Dashboard: model,
		Name:      p.Name,
		Expires:   p.Expires,
	})
	if err != nil {
		return nil, err
	}
	result.Key = snap.Key
	result.DeleteKey = snap.DeleteKey
	result.URL = snap.URL
	result.DeleteURL = snap.DeleteURL
	return result, nil
}

// fillPanelData returns copies of panels with snapshotData set from a live
// query. Collapsed rows carry their children in a nested panels list.
func (h *snapshotHandlers) fillPanelData(ctx context.Context, panels []any, from, to string, res *createSnapshotResult) []any {
	out := make([]any, len(panels))
	for i, raw := range panels {
		panel, ok := raw.(map[string]any)
		if !ok {
			out[i] = raw
			continue
		}
		cp := make(map[string]any, len(panel)+1)
		for k, v := range panel {
			cp[k] = v
		}
		if nested, ok := cp["panels"].([]any); ok {
			cp["panels"] = h.fillPanelData(ctx, nested, from, to, res)
		}

		targets, _ := cp["targets"].([]any)
		if len(targets) > 0 {
			queries := make([]map[string]any, 0, len(targets))
			for j, t := range targets {
				if target, ok := t.(map[string]any); ok {
					queries = append(queries, withQueryDefaults(target, j, cp["datasource"]))
				}
			}
			data, err := h.api.QueryDatasources(ctx, grafana.QueryRequest{Queries: queries, From: from, To: to})
			if err != nil {
				res.FailedPanels = append(res.FailedPanels, cp["id"])
			} else {
				cp["snapshotData"] = data
				res.PanelsWithData++
			}
		}
		out[i] = cp
	}
	return out
}

// dashboardRange reads the dashboard's saved time range, falling back to the
// last six hours like a fresh Grafana dashboard.
func dashboardRange(model map[string]any) (string, string) {
	from, to := "now-6h", "now"
	if tr, ok := model["time"].(map[string]any); ok {
		if v, ok := tr["from"].(string); ok && v != "" {
			from = v
		}
		if v, ok := tr["to"].(string); ok && v != "" {
			to = v
		}
	}
	return from, to
}

// list_snapshots

type listSnapshotsParams struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

func (listSnapshotsParams) Describe() *schema.Schema {
	return schema.Object(
		schema.String("query", "Only snapshots whose name contains this text"),
		schema.Integer("limit", "Maximum number of snapshots").WithDefault(DefaultSnapshotListLimit),
	)
}

type snapshotSummary struct {
	Key     string `json:"key"`
	Name    string `json:"name"`
	Expires string `json:"expires"`
	Created string `json:"created"`
	URL     string `json:"url,omitempty"`
}

func (h *snapshotHandlers) ListSnapshots(ctx context.Context, p listSnapshotsParams) (any, error) {
	snaps, err := h.api.ListSnapshots(ctx, p.Query, p.Limit)
	if err != nil {
		return nil, err
	}
	out := make([]snapshotSummary, 0, len(snaps))
	for _, s := range snaps {
		out = append(out, snapshotSummary{
			Key:     s.Key,
			Name:    s.Name,
			Expires: s.Expires,
			Created: s.Created,
			URL:     s.ExternalURL,
		})
	}
	return out, nil
}

// get_snapshot / delete_snapshot

type snapshotKeyParams struct {
	Key string `json:"key"`
}

func (snapshotKeyParams) Describe() *schema.Schema {
	return schema.Object(
		schema.String("key", "Snapshot key").Require(),
	)
}

func (h *snapshotHandlers) GetSnapshot(ctx context.Context, p snapshotKeyParams) (any, error) {
	return h.api.GetSnapshot(ctx, p.Key)
}

type deleteSnapshotResult struct {
	Key     string `json:"key"`
	Deleted bool   `json:"deleted"`
	Message string `json:"message"`
}

func (h *snapshotHandlers) DeleteSnapshot(ctx context.Context, p snapshotKeyParams) (any, error) {
	msg, err := h.api.DeleteSnapshot(ctx, p.Key)
	if err != nil {
		return nil, err
	}
	return deleteSnapshotResult{Key: p.Key, Deleted: true, Message: msg}, nil
}
