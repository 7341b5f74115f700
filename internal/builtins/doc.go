// Package builtins provides the Grafana tool packs.
//
// # Tool Packs
//
// The package provides 8 packs with 15 tools:
//
// Search Pack (search):
//
//   - search_dashboards: Search dashboards by title, tags, or folder
//
// Dashboard Pack (dashboard):
//
//   - get_dashboard_by_uid: Full dashboard model plus metadata
//   - get_dashboard_screenshot: Base64 PNG of a dashboard or panel
//   - update_dashboard: Create or overwrite a dashboard
//
// Datasource Pack (datasource):
//
//   - list_datasources: Summary of every datasource
//   - get_datasource: One datasource by UID or by name
//
// Folder and Alerting Packs (folder, alerting):
//
//   - list_folders: Dashboard folders
//   - list_alert_rules: Grafana-managed alert rules, optionally per folder
//
// Query Pack (query):
//
//   - query_datasource: Raw data frames from POST /api/ds/query
//
// Snapshot Pack (snapshot):
//
//   - create_dashboard_snapshot: Snapshot a dashboard with live panel data
//   - list_snapshots, get_snapshot, delete_snapshot
//
// User Pack (user):
//
//   - get_current_user, get_current_org: Identity behind the API key
//
// # Registration
//
// Register all enabled packs, in the order above:
//
//	builtins.RegisterAll(registry, client, cfg.Tools.Disabled)
//
// A disabled entry naming no known category is an error, so typos in
// configuration surface at startup.
//
// # Tool Implementation
//
// Each tool handler decodes its validated arguments into a parameter record
// that also declares the tool's schema:
//
//	func(ctx context.Context, p searchParams) (any, error)
//
// Results are reshaped into snake_case records before they are serialized
// into the response content. Grafana failures propagate unchanged and
// become tool execution errors.
package builtins
