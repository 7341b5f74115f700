// ABOUTME: Registration of the Grafana tool packs and the API surface they call.
// ABOUTME: Packs register in a fixed order and can be disabled by category.

package builtins

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/2389/grafana-mcp/internal/grafana"
	"github.com/2389/grafana-mcp/internal/packs"
)

// Pack categories, in registration order.
const (
	CategorySearch     = "search"
	CategoryDashboard  = "dashboard"
	CategoryDatasource = "datasource"
	CategoryFolder     = "folder"
	CategoryAlerting   = "alerting"
	CategoryQuery      = "query"
	CategorySnapshot   = "snapshot"
	CategoryUser       = "user"
)

// Categories lists every pack category in registration order.
var Categories = []string{
	CategorySearch,
	CategoryDashboard,
	CategoryDatasource,
	CategoryFolder,
	CategoryAlerting,
	CategoryQuery,
	CategorySnapshot,
	CategoryUser,
}

// ErrUnknownCategory is returned when a disabled list names no known pack.
var ErrUnknownCategory = errors.New("unknown tool category")

// Grafana is the subset of the Grafana client the tools call.
type Grafana interface {
	SearchDashboards(ctx context.Context, p grafana.SearchParams) ([]grafana.SearchHit, error)
	GetDashboardByUID(ctx context.Context, uid string) (*grafana.Dashboard, error)
	RenderDashboard(ctx context.Context, p grafana.RenderParams) (*grafana.Image, error)
	UpdateDashboard(ctx context.Context, p grafana.UpdateParams) (*grafana.UpdateResult, error)
	ListDatasources(ctx context.Context) ([]grafana.Datasource, error)
	GetDatasourceByUID(ctx context.Context, uid string) (*grafana.Datasource, error)
	GetDatasourceByName(ctx context.Context, name string) (*grafana.Datasource, error)
	ListFolders(ctx context.Context) ([]grafana.Folder, error)
	ListAlertRules(ctx context.Context) ([]grafana.AlertRule, error)
	QueryDatasources(ctx context.Context, req grafana.QueryRequest) (json.RawMessage, error)
	CreateSnapshot(ctx context.Context, p grafana.SnapshotParams) (*grafana.SnapshotResult, error)
	ListSnapshots(ctx context.Context, query string, limit int) ([]grafana.Snapshot, error)
	GetSnapshot(ctx context.Context, key string) (json.RawMessage, error)
	DeleteSnapshot(ctx context.Context, key string) (string, error)
	CurrentUser(ctx context.Context) (*grafana.User, error)
	CurrentOrg(ctx context.Context) (*grafana.Org, error)
}

var _ Grafana = (*grafana.Client)(nil)

// Packs builds every pack in registration order.
func Packs(api Grafana) []*packs.Pack {
	return []*packs.Pack{
		SearchPack(api),
		DashboardPack(api),
		DatasourcePack(api),
		FolderPack(api),
		AlertingPack(api),
		QueryPack(api),
		SnapshotPack(api),
		UserPack(api),
	}
}

// RegisterAll registers every pack whose category is not disabled.
func RegisterAll(registry *packs.Registry, api Grafana, disabled []string) error {
	off := make(map[string]bool, len(disabled))
	for _, name := range disabled {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if !slices.Contains(Categories, name) {
			return fmt.Errorf("%w: %q (known: %s)", ErrUnknownCategory, name, strings.Join(Categories, ", "))
		}
		off[name] = true
	}

	for _, pack := range Packs(api) {
		if off[pack.ID] {
			continue
		}
		if err := registry.RegisterPack(pack); err != nil {
			return fmt.Errorf("registering %s pack: %w", pack.ID, err)
		}
	}
	return nil
}
