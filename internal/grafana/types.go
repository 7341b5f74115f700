// ABOUTME: Grafana API payload types for search, dashboards, datasources, and rendering.
// ABOUTME: Field names follow Grafana's JSON; tools reshape them for clients.

package grafana

import "encoding/json"

// HealthInfo is the body of GET /api/health.
type HealthInfo struct {
	Commit   string `json:"commit"`
	Database string `json:"database"`
	Version  string `json:"version"`
}

// SearchParams filters a dashboard search. Zero values are omitted.
type SearchParams struct {
	Query     string
	Tags      []string
	FolderIDs []int
	Limit     int
}

// SearchHit is one result of GET /api/search.
type SearchHit struct {
	ID          int      `json:"id"`
	UID         string   `json:"uid"`
	Title       string   `json:"title"`
	URI         string   `json:"uri"`
	URL         string   `json:"url"`
	Slug        string   `json:"slug"`
	Type        string   `json:"type"`
	Tags        []string `json:"tags"`
	IsStarred   bool     `json:"isStarred"`
	FolderID    int      `json:"folderId"`
	FolderUID   string   `json:"folderUid"`
	FolderTitle string   `json:"folderTitle"`
	FolderURL   string   `json:"folderUrl"`
}

// DashboardMeta is the meta block of GET /api/dashboards/uid/{uid}.
type DashboardMeta struct {
	UID         string `json:"uid"`
	Type        string `json:"type"`
	Slug        string `json:"slug"`
	URL         string `json:"url"`
	CanSave     bool   `json:"canSave"`
	CanEdit     bool   `json:"canEdit"`
	IsStarred   bool   `json:"isStarred"`
	Created     string `json:"created"`
	Updated     string `json:"updated"`
	CreatedBy   string `json:"createdBy"`
	UpdatedBy   string `json:"updatedBy"`
	Version     int    `json:"version"`
	FolderID    int    `json:"folderId"`
	FolderUID   string `json:"folderUid"`
	FolderTitle string `json:"folderTitle"`
	FolderURL   string `json:"folderUrl"`
}

// Dashboard is a dashboard model with its metadata. Raw keeps the response
// exactly as Grafana sent it.
type Dashboard struct {
	Dashboard map[string]any  `json:"dashboard"`
	Meta      DashboardMeta   `json:"meta"`
	Raw       json.RawMessage `json:"-"`
}

// UpdateParams saves a dashboard model through POST /api/dashboards/db.
type UpdateParams struct {
	Dashboard map[string]any
	Message   string // defaults to DefaultUpdateMessage
	FolderID  *int
	FolderUID string
	Overwrite bool
}

// DefaultUpdateMessage is the version message used when none is given.
const DefaultUpdateMessage = "Updated via MCP"

// UpdateResult is the response of a dashboard save.
type UpdateResult struct {
	ID      int    `json:"id"`
	UID     string `json:"uid"`
	URL     string `json:"url"`
	Status  string `json:"status"`
	Version int    `json:"version"`
	Slug    string `json:"slug"`
}

// Datasource is one entry of GET /api/datasources.
type Datasource struct {
	ID        int            `json:"id"`
	UID       string         `json:"uid"`
	OrgID     int            `json:"orgId"`
	Name      string         `json:"name"`
	Type      string         `json:"type"`
	TypeName  string         `json:"typeName"`
	Access    string         `json:"access"`
	URL       string         `json:"url"`
	Database  string         `json:"database"`
	IsDefault bool           `json:"isDefault"`
	ReadOnly  bool           `json:"readOnly"`
	JSONData  map[string]any `json:"jsonData,omitempty"`
}

// RenderParams selects what the image renderer draws.
type RenderParams struct {
	DashboardUID string
	PanelID      *int // nil renders the whole dashboard
	Width        int
	Height       int
	From         string
	To           string
	Theme        string
}

// Image is a rendered PNG (or whatever the renderer returned).
type Image struct {
	Data        []byte
	ContentType string
}

// Folder is one entry of GET /api/folders.
type Folder struct {
	ID        int    `json:"id"`
	UID       string `json:"uid"`
	Title     string `json:"title"`
	URL       string `json:"url,omitempty"`
	ParentUID string `json:"parentUid,omitempty"`
}

// AlertRule is a Grafana-managed alert rule from the provisioning API.
type AlertRule struct {
	ID           int               `json:"id"`
	UID          string            `json:"uid"`
	Title        string            `json:"title"`
	FolderUID    string            `json:"folderUID"`
	RuleGroup    string            `json:"ruleGroup"`
	Condition    string            `json:"condition"`
	For          string            `json:"for"`
	NoDataState  string            `json:"noDataState"`
	ExecErrState string            `json:"execErrState"`
	IsPaused     bool              `json:"isPaused"`
	Labels       map[string]string `json:"labels,omitempty"`
	Annotations  map[string]string `json:"annotations,omitempty"`
	Updated      string            `json:"updated,omitempty"`
}

// QueryRequest is the body of POST /api/ds/query. Each query must name its
// datasource; From and To accept Grafana time expressions.
type QueryRequest struct {
	Queries []map[string]any `json:"queries"`
	From    string           `json:"from"`
	To      string           `json:"to"`
}

// SnapshotParams creates a snapshot from a dashboard model.
type SnapshotParams struct {
	Dashboard map[string]any
	Name      string
	Expires   int // seconds; 0 never expires
}

// SnapshotResult is the response of POST /api/snapshots.
type SnapshotResult struct {
	ID        int    `json:"id"`
	Key       string `json:"key"`
	DeleteKey string `json:"deleteKey"`
	URL       string `json:"url"`
	DeleteURL string `json:"deleteUrl"`
}

// Snapshot is one entry of GET /api/dashboard/snapshots.
type Snapshot struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Key         string `json:"key"`
	External    bool   `json:"external"`
	ExternalURL string `json:"externalUrl,omitempty"`
	Expires     string `json:"expires"`
	Created     string `json:"created"`
	Updated     string `json:"updated"`
}

// User is the signed-in identity behind the API key.
type User struct {
	ID             int    `json:"id"`
	Login          string `json:"login"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	OrgID          int    `json:"orgId"`
	IsGrafanaAdmin bool   `json:"isGrafanaAdmin"`
	Theme          string `json:"theme,omitempty"`
}

// Org is the organization the API key belongs to.
type Org struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
