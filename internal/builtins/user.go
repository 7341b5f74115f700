// ABOUTME: User pack: who the API key acts as and which organization it belongs to.

package builtins

import (
	"context"

	"github.com/2389/grafana-mcp/internal/packs"
)

// UserPack creates the user pack.
func UserPack(api Grafana) *packs.Pack {
	return &packs.Pack{
		ID: CategoryUser,
		Tools: []*packs.Tool{
			packs.NewTool("get_current_user",
				"Get the user or service account the API key acts as",
				func(ctx context.Context, _ noParams) (any, error) {
					return api.CurrentUser(ctx)
				}),
			packs.NewTool("get_current_org",
				"Get the organization the API key belongs to",
				func(ctx context.Context, _ noParams) (any, error) {
					return api.CurrentOrg(ctx)
				}),
		},
	}
}
