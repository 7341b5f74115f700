// ABOUTME: Query pack: run datasource queries through Grafana's /api/ds/query.
// ABOUTME: Fills in refId and datasource on each query when the caller leaves them out.

package builtins

import (
	"context"
	"fmt"

	"github.com/2389/grafana-mcp/internal/grafana"
	"github.com/2389/grafana-mcp/internal/packs"
	"github.com/2389/grafana-mcp/internal/schema"
)

// Default query range.
const (
	DefaultQueryFrom = "now-1h"
	DefaultQueryTo   = "now"
)

// QueryPack creates the query pack.
func QueryPack(api Grafana) *packs.Pack {
	h := &queryHandlers{api: api}
	return &packs.Pack{
		ID: CategoryQuery,
		Tools: []*packs.Tool{
			packs.NewTool("query_datasource",
				"Run one or more queries against a datasource and return the raw data frames",
				h.QueryDatasource),
		},
	}
}

type queryHandlers struct {
	api Grafana
}

type queryDatasourceParams struct {
	DatasourceUID string           `json:"datasource_uid"`
	Queries       []map[string]any `json:"queries"`
	From          string           `json:"from"`
	To            string           `json:"to"`
}

func (queryDatasourceParams) Describe() *schema.Schema {
	return schema.Object(
		schema.String("datasource_uid", "Datasource used by queries that do not name one").Require(),
		schema.Array("queries", schema.TypeObject, "Datasource-specific query objects, e.g. {\"expr\":\"up\"}").Require(),
		schema.String("from", "Range start").WithDefault(DefaultQueryFrom),
		schema.String("to", "Range end").WithDefault(DefaultQueryTo),
	)
}

func (h *queryHandlers) QueryDatasource(ctx context.Context, p queryDatasourceParams) (any, error) {
	if len(p.Queries) == 0 {
		return nil, fmt.Errorf("at least one query is required")
	}
	queries := make([]map[string]any, len(p.Queries))
	for i, q := range p.Queries {
		queries[i] = withQueryDefaults(q, i, map[string]any{"uid": p.DatasourceUID})
	}
	return h.api.QueryDatasources(ctx, grafana.QueryRequest{
		Queries: queries,
		From:    p.From,
		To:      p.To,
	})
}

// withQueryDefaults copies q, adding a refId (A, B, ...) and the datasource
// when they are missing.
func withQueryDefaults(q map[string]any, i int, datasource any) map[string]any {
	out := make(map[string]any, len(q)+2)
	for k, v := range q {
		out[k] = v
	}
	if ref, _ := out["refId"].(string); ref == "" {
		out["refId"] = refID(i)
	}
	if out["datasource"] == nil && datasource != nil {
		out["datasource"] = datasource
	}
	return out
}

// refID names the i-th query the way Grafana's editor does: A..Z, then AA, AB...
func refID(i int) string {
	if i < 26 {
		return string(rune('A' + i))
	}
	return refID(i/26-1) + string(rune('A'+i%26))
}
