// ABOUTME: Search pack: dashboard search with tag and folder filters.

package builtins

import (
	"context"

	"github.com/2389/grafana-mcp/internal/grafana"
	"github.com/2389/grafana-mcp/internal/packs"
	"github.com/2389/grafana-mcp/internal/schema"
)

// DefaultSearchLimit is the page size when the caller gives none.
const DefaultSearchLimit = 100

// SearchPack creates the search pack.
func SearchPack(api Grafana) *packs.Pack {
	h := &searchHandlers{api: api}
	return &packs.Pack{
		ID: CategorySearch,
		Tools: []*packs.Tool{
			packs.NewTool("search_dashboards",
				"Search Grafana dashboards by title, tags, or folder",
				h.SearchDashboards),
		},
	}
}

type searchHandlers struct {
	api Grafana
}

type searchParams struct {
	Query     string   `json:"query"`
	Tags      []string `json:"tags"`
	FolderIDs []int    `json:"folder_ids"`
	Limit     int      `json:"limit"`
}

func (searchParams) Describe() *schema.Schema {
	return schema.Object(
		schema.String("query", "Search query matched against dashboard titles"),
		schema.Array("tags", schema.TypeString, "Only dashboards carrying all of these tags"),
		schema.Array("folder_ids", schema.TypeInteger, "Only dashboards in these folders"),
		schema.Integer("limit", "Maximum number of results").WithDefault(DefaultSearchLimit),
	)
}

type dashboardSummary struct {
	UID         string   `json:"uid"`
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	Type        string   `json:"type"`
	Tags        []string `json:"tags"`
	FolderTitle string   `json:"folder_title"`
	FolderUID   string   `json:"folder_uid"`
	IsStarred   bool     `json:"is_starred"`
}

func (h *searchHandlers) SearchDashboards(ctx context.Context, p searchParams) (any, error) {
	hits, err := h.api.SearchDashboards(ctx, grafana.SearchParams{
		Query:     p.Query,
		Tags:      p.Tags,
		FolderIDs: p.FolderIDs,
		Limit:     p.Limit,
	})
	if err != nil {
		return nil, err
	}

	out := make([]dashboardSummary, 0, len(hits))
	for _, hit := range hits {
		tags := hit.Tags
		if tags == nil {
			tags = []string{}
		}
		out = append(out, dashboardSummary{
			UID:         hit.UID,
			Title:       hit.Title,
			URL:         hit.URL,
			Type:        hit.Type,
			Tags:        tags,
			FolderTitle: hit.FolderTitle,
			FolderUID:   hit.FolderUID,
			IsStarred:   hit.IsStarred,
		})
	}
	return out, nil
}
