// ABOUTME: Datasource pack: list datasources and fetch one by UID or name.

package builtins

import (
	"context"
	"errors"

	"github.com/2389/grafana-mcp/internal/packs"
	"github.com/2389/grafana-mcp/internal/schema"
)

// ErrDatasourceSelector is returned unless exactly one of uid or name is given.
var ErrDatasourceSelector = errors.New("exactly one of uid or name is required")

// DatasourcePack creates the datasource pack.
func DatasourcePack(api Grafana) *packs.Pack {
	h := &datasourceHandlers{api: api}
	return &packs.Pack{
		ID: CategoryDatasource,
		Tools: []*packs.Tool{
			packs.NewTool("list_datasources",
				"List all configured datasources",
				h.ListDatasources),
			packs.NewTool("get_datasource",
				"Get a datasource by UID or by name",
				h.GetDatasource),
		},
	}
}

type datasourceHandlers struct {
	api Grafana
}

type noParams struct{}

func (noParams) Describe() *schema.Schema {
	return schema.Object()
}

type datasourceSummary struct {
	UID       string `json:"uid"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	URL       string `json:"url"`
	IsDefault bool   `json:"is_default"`
}

func (h *datasourceHandlers) ListDatasources(ctx context.Context, _ noParams) (any, error) {
	list, err := h.api.ListDatasources(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]datasourceSummary, 0, len(list))
	for _, ds := range list {
		out = append(out, datasourceSummary{
			UID:       ds.UID,
			Name:      ds.Name,
			Type:      ds.Type,
			URL:       ds.URL,
			IsDefault: ds.IsDefault,
		})
	}
	return out, nil
}

type getDatasourceParams struct {
	UID  string `json:"uid"`
	Name string `json:"name"`
}

func (getDatasourceParams) Describe() *schema.Schema {
	return schema.Object(
		schema.String("uid", "Datasource UID"),
		schema.String("name", "Datasource name"),
	)
}

// GetDatasource returns Grafana's full datasource record.
func (h *datasourceHandlers) GetDatasource(ctx context.Context, p getDatasourceParams) (any, error) {
	switch {
	case p.UID != "" && p.Name == "":
		return h.api.GetDatasourceByUID(ctx, p.UID)
	case p.Name != "" && p.UID == "":
		return h.api.GetDatasourceByName(ctx, p.Name)
	default:
		return nil, ErrDatasourceSelector
	}
}
