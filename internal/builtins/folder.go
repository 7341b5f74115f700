// ABOUTME: Folder and alerting packs: list folders and Grafana-managed alert rules.

package builtins

import (
	"context"

	"github.com/2389/grafana-mcp/internal/packs"
	"github.com/2389/grafana-mcp/internal/schema"
)

// FolderPack creates the folder pack.
func FolderPack(api Grafana) *packs.Pack {
	h := &folderHandlers{api: api}
	return &packs.Pack{
		ID: CategoryFolder,
		Tools: []*packs.Tool{
			packs.NewTool("list_folders",
				"List dashboard folders",
				h.ListFolders),
		},
	}
}

// AlertingPack creates the alerting pack.
func AlertingPack(api Grafana) *packs.Pack {
	h := &folderHandlers{api: api}
	return &packs.Pack{
		ID: CategoryAlerting,
		Tools: []*packs.Tool{
			packs.NewTool("list_alert_rules",
				"List Grafana-managed alert rules, optionally only those in one folder",
				h.ListAlertRules),
		},
	}
}

type folderHandlers struct {
	api Grafana
}

type folderSummary struct {
	UID       string `json:"uid"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	ParentUID string `json:"parent_uid,omitempty"`
}

func (h *folderHandlers) ListFolders(ctx context.Context, _ noParams) (any, error) {
	folders, err := h.api.ListFolders(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]folderSummary, 0, len(folders))
	for _, f := range folders {
		out = append(out, folderSummary{UID: f.UID, Title: f.Title, URL: f.URL, ParentUID: f.ParentUID})
	}
	return out, nil
}

type listAlertRulesParams struct {
	FolderUID string `json:"folder_uid"`
}

func (listAlertRulesParams) Describe() *schema.Schema {
	return schema.Object(
		schema.String("folder_uid", "Only rules stored in this folder"),
	)
}

type alertRuleSummary struct {
	UID         string            `json:"uid"`
	Title       string            `json:"title"`
	FolderUID   string            `json:"folder_uid"`
	RuleGroup   string            `json:"rule_group"`
	For         string            `json:"for"`
	IsPaused    bool              `json:"is_paused"`
	Labels      map[string]string `json:"labels"`
	Annotations map[string]string `json:"annotations"`
}

func (h *folderHandlers) ListAlertRules(ctx context.Context, p listAlertRulesParams) (any, error) {
	rules, err := h.api.ListAlertRules(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]alertRuleSummary, 0, len(rules))
	for _, r := range rules {
		if p.FolderUID != "" && r.FolderUID != p.FolderUID {
			continue
		}
		labels, annotations := r.Labels, r.Annotations
		if labels == nil {
			labels = map[string]string{}
		}
		if annotations == nil {
			annotations = map[string]string{}
		}
		out = append(out, alertRuleSummary{
			UID:         r.UID,
			Title:       r.Title,
			FolderUID:   r.FolderUID,
			RuleGroup:   r.RuleGroup,
			For:         r.For,
			IsPaused:    r.IsPaused,
			Labels:      labels,
			Annotations: annotations,
		})
	}
	return out, nil
}
