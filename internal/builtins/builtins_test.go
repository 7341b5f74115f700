// ABOUTME: Tests for the Grafana tool packs.
// ABOUTME: Runs tools through a real registry against an httptest Grafana.

package builtins

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/grafana-mcp/internal/grafana"
	"github.com/2389/grafana-mcp/internal/packs"
	"github.com/2389/grafana-mcp/internal/schema"
)

var fakePNG = []byte("\x89PNG\r\n\x1a\npixels")

// requestLog records the requests a fake Grafana received.
type requestLog struct {
	mu     sync.Mutex
	reqs   []*http.Request
	bodies [][]byte
}

func (l *requestLog) add(r *http.Request, body []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reqs = append(l.reqs, r)
	l.bodies = append(l.bodies, body)
}

// bodyOf decodes the JSON body of the most recent request to method+path.
func (l *requestLog) bodyOf(t *testing.T, method, path string) map[string]any {
	t.Helper()
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := len(l.reqs) - 1; i >= 0; i-- {
		if l.reqs[i].Method == method && l.reqs[i].URL.Path == path {
			var body map[string]any
			require.NoError(t, json.Unmarshal(l.bodies[i], &body))
			return body
		}
	}
	t.Fatalf("no %s %s request recorded", method, path)
	return nil
}

func (l *requestLog) all() []*http.Request {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*http.Request(nil), l.reqs...)
}

func (l *requestLog) last(t *testing.T) *http.Request {
	t.Helper()
	reqs := l.all()
	require.NotEmpty(t, reqs)
	return reqs[len(reqs)-1]
}

// newFakeGrafana serves a small fixed Grafana API. Requests are recorded so
// tests can assert on the query string the tools produced.
func newFakeGrafana(t *testing.T) (*grafana.Client, *requestLog) {
	t.Helper()
	seen := &requestLog{}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/search", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[
			{"id":1,"uid":"cpu","title":"CPU","url":"/d/cpu/cpu","type":"dash-db","tags":["infra"],"isStarred":true,"folderUid":"f1","folderTitle":"Infra"},
			{"id":2,"uid":"mem","title":"Memory","url":"/d/mem/memory","type":"dash-db"}
		]`)
	})
	mux.HandleFunc("GET /api/dashboards/uid/cpu", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"dashboard":{"uid":"cpu","title":"CPU","panels":[]},"meta":{"slug":"cpu","url":"/d/cpu/cpu","folderId":3,"folderTitle":"Infra","folderUrl":"/dashboards/f/f1","isStarred":true,"createdBy":"admin","updatedBy":"bot","version":7}}`)
	})
	mux.HandleFunc("GET /api/dashboards/uid/odd", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status":"provisioned"}`)
	})
	mux.HandleFunc("GET /render/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(fakePNG)
	})
	mux.HandleFunc("POST /api/dashboards/db", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["message"] != grafana.DefaultUpdateMessage {
			http.Error(w, `{"message":"unexpected message"}`, http.StatusBadRequest)
			return
		}
		_, _ = io.WriteString(w, `{"id":9,"uid":"new","url":"/d/new/new","status":"success","version":1,"slug":"new"}`)
	})
	mux.HandleFunc("GET /api/datasources", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"id":1,"uid":"prom","name":"Prometheus","type":"prometheus","url":"http://prom:9090","isDefault":true,"access":"proxy"}]`)
	})
	mux.HandleFunc("GET /api/datasources/uid/prom", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id":1,"uid":"prom","name":"Prometheus","type":"prometheus"}`)
	})
	mux.HandleFunc("GET /api/datasources/name/Prometheus", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id":1,"uid":"prom","name":"Prometheus","type":"prometheus"}`)
	})
	mux.HandleFunc("GET /api/dashboards/uid/svc", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"dashboard":{"uid":"svc","title":"Service","time":{"from":"now-24h","to":"now"},"panels":[
			{"id":1,"type":"timeseries","datasource":{"uid":"prom"},"targets":[{"expr":"up"}]},
			{"id":2,"type":"text"},
			{"id":3,"type":"row","collapsed":true,"panels":[
				{"id":4,"type":"stat","datasource":{"uid":"broken"},"targets":[{"refId":"Z","expr":"rate(x[5m])"}]}
			]}
		]},"meta":{"slug":"svc"}}`)
	})
	mux.HandleFunc("GET /api/folders", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"id":3,"uid":"f1","title":"Infra","url":"/dashboards/f/f1/infra"},{"id":4,"uid":"f2","title":"Apps","url":"/dashboards/f/f2/apps","parentUid":"f1"}]`)
	})
	mux.HandleFunc("GET /api/v1/provisioning/alert-rules", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[
			{"uid":"r1","title":"High CPU","folderUID":"f1","ruleGroup":"infra","for":"5m","labels":{"team":"sre"},"annotations":{"summary":"CPU > 90%"}},
			{"uid":"r2","title":"Slow API","folderUID":"f2","ruleGroup":"apps","for":"1m","isPaused":true}
		]`)
	})
	mux.HandleFunc("POST /api/ds/query", func(w http.ResponseWriter, r *http.Request) {
		var body grafana.QueryRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		for _, q := range body.Queries {
			if ds, _ := q["datasource"].(map[string]any); ds["uid"] == "broken" {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = io.WriteString(w, `{"message":"datasource not found"}`)
				return
			}
		}
		_, _ = io.WriteString(w, `{"results":{"A":{"frames":[{"schema":{"fields":[]},"data":{"values":[]}}]}}}`)
	})
	mux.HandleFunc("POST /api/snapshots", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id":5,"key":"snap1","deleteKey":"del1","url":"http://grafana/dashboard/snapshot/snap1","deleteUrl":"http://grafana/api/snapshots-delete/del1"}`)
	})
	mux.HandleFunc("GET /api/dashboard/snapshots", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"id":5,"name":"nightly","key":"snap1","expires":"2027-01-01T00:00:00Z","created":"2026-10-19T00:00:00Z"}]`)
	})
	mux.HandleFunc("GET /api/snapshots/snap1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"dashboard":{"title":"Service (Snapshot)"},"meta":{"isSnapshot":true}}`)
	})
	mux.HandleFunc("DELETE /api/snapshots/snap1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"message":"Snapshot deleted"}`)
	})
	mux.HandleFunc("GET /api/user", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id":7,"login":"sa-mcp","email":"mcp@example.com","name":"MCP","orgId":1}`)
	})
	mux.HandleFunc("GET /api/org", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id":1,"name":"Main Org."}`)
	})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))
		seen.add(r.Clone(context.Background()), body)
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := grafana.NewClient(grafana.Config{BaseURL: srv.URL, APIKey: "k"})
	require.NoError(t, err)
	return client, seen
}

func newTestRegistry(t *testing.T, api Grafana, disabled ...string) *packs.Registry {
	t.Helper()
	registry := packs.NewRegistry(slog.Default())
	require.NoError(t, RegisterAll(registry, api, disabled))
	registry.Freeze()
	return registry
}

// callTool validates raw JSON arguments and invokes the named tool the same
// way the dispatcher does, returning the result serialized to JSON.
func callTool(t *testing.T, registry *packs.Registry, name, rawArgs string) (string, error) {
	t.Helper()
	tool, ok := registry.Lookup(name)
	require.True(t, ok, "tool %s not registered", name)

	var raw map[string]any
	require.NoError(t, json.Unmarshal([]byte(rawArgs), &raw))
	args, err := tool.Schema.Validate(raw)
	if err != nil {
		return "", err
	}

	router := packs.NewRouter(packs.RouterConfig{Logger: slog.Default()})
	result, err := router.Execute(context.Background(), tool, args, "test")
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(result)
	require.NoError(t, err)
	return string(data), nil
}

func TestRegisterAll_Order(t *testing.T) {
	client, _ := newFakeGrafana(t)
	registry := newTestRegistry(t, client)

	var names []string
	for _, info := range registry.List() {
		names = append(names, info.Name)
	}
	assert.Equal(t, []string{
		"search_dashboards",
		"get_dashboard_by_uid",
		"get_dashboard_screenshot",
		"update_dashboard",
		"list_datasources",
		"get_datasource",
		"list_folders",
		"list_alert_rules",
		"query_datasource",
		"create_dashboard_snapshot",
		"list_snapshots",
		"get_snapshot",
		"delete_snapshot",
		"get_current_user",
		"get_current_org",
	}, names)
}

func TestRegisterAll_Disabled(t *testing.T) {
	client, _ := newFakeGrafana(t)
	registry := newTestRegistry(t, client, "Dashboard", " search ", "folder", "alerting", "query", "snapshot", "USER")

	var names []string
	for _, info := range registry.List() {
		names = append(names, info.Name)
	}
	assert.Equal(t, []string{"list_datasources", "get_datasource"}, names)
}

func TestRegisterAll_UnknownCategory(t *testing.T) {
	client, _ := newFakeGrafana(t)
	err := RegisterAll(packs.NewRegistry(slog.Default()), client, []string{"alerts"})
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestRegisterAll_Twice(t *testing.T) {
	client, _ := newFakeGrafana(t)
	registry := packs.NewRegistry(slog.Default())
	require.NoError(t, RegisterAll(registry, client, nil))
	err := RegisterAll(registry, client, nil)
	assert.ErrorIs(t, err, packs.ErrToolAlreadyRegistered)
}

func TestSchemas(t *testing.T) {
	client, _ := newFakeGrafana(t)
	registry := newTestRegistry(t, client)

	tool, _ := registry.Lookup("get_dashboard_screenshot")
	data, err := json.Marshal(tool.Schema)
	require.NoError(t, err)

	var doc struct {
		Properties map[string]map[string]any `json:"properties"`
		Required   []string                  `json:"required"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, []string{"dashboard_uid"}, doc.Required)
	assert.Equal(t, float64(DefaultScreenshotWidth), doc.Properties["width"]["default"])
	assert.Equal(t, []any{"light", "dark"}, doc.Properties["theme"]["enum"])

	tool, _ = registry.Lookup("list_datasources")
	data, err = json.Marshal(tool.Schema)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"object","properties":{},"required":[]}`, string(data))
}

func TestSearchDashboards(t *testing.T) {
	client, seen := newFakeGrafana(t)
	registry := newTestRegistry(t, client)

	out, err := callTool(t, registry, "search_dashboards", `{"query":"cpu","tags":["infra"],"folder_ids":[3]}`)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"uid":"cpu","title":"CPU","url":"/d/cpu/cpu","type":"dash-db","tags":["infra"],"folder_title":"Infra","folder_uid":"f1","is_starred":true},
		{"uid":"mem","title":"Memory","url":"/d/mem/memory","type":"dash-db","tags":[],"folder_title":"","folder_uid":"","is_starred":false}
	]`, out)

	require.Len(t, seen.all(), 1)
	q := seen.last(t).URL.Query()
	assert.Equal(t, "100", q.Get("limit"), "default limit applied")
	assert.Equal(t, "cpu", q.Get("query"))
	assert.Equal(t, "infra", q.Get("tag"))
	assert.Equal(t, "3", q.Get("folderIds"))
}

func TestSearchDashboards_BadArgs(t *testing.T) {
	client, seen := newFakeGrafana(t)
	registry := newTestRegistry(t, client)

	_, err := callTool(t, registry, "search_dashboards", `{"folder_ids":["three"]}`)
	assert.ErrorIs(t, err, schema.ErrValidation)
	assert.Empty(t, seen.all(), "invalid arguments never reach Grafana")
}

func TestGetDashboardByUID(t *testing.T) {
	client, _ := newFakeGrafana(t)
	registry := newTestRegistry(t, client)

	out, err := callTool(t, registry, "get_dashboard_by_uid", `{"uid":"cpu"}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"dashboard":{"uid":"cpu","title":"CPU","panels":[]},
		"meta":{"uid":"cpu","slug":"cpu","url":"/d/cpu/cpu","folder_id":3,"folder_title":"Infra","folder_url":"/dashboards/f/f1","is_starred":true,"created_by":"admin","updated_by":"bot","version":7}
	}`, out)
}

func TestGetDashboardByUID_RawPayload(t *testing.T) {
	client, _ := newFakeGrafana(t)
	registry := newTestRegistry(t, client)

	out, err := callTool(t, registry, "get_dashboard_by_uid", `{"uid":"odd"}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"provisioned"}`, out)
}

func TestGetDashboardByUID_NotFound(t *testing.T) {
	client, _ := newFakeGrafana(t)
	registry := newTestRegistry(t, client)

	_, err := callTool(t, registry, "get_dashboard_by_uid", `{"uid":"missing"}`)
	require.Error(t, err)
	assert.True(t, grafana.IsNotFound(err))
}

func TestGetDashboardScreenshot(t *testing.T) {
	client, seen := newFakeGrafana(t)
	registry := newTestRegistry(t, client)

	t.Run("defaults", func(t *testing.T) {
		out, err := callTool(t, registry, "get_dashboard_screenshot", `{"dashboard_uid":"cpu"}`)
		require.NoError(t, err)

		var res map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &res))
		img, err := base64.StdEncoding.DecodeString(res["image_data"].(string))
		require.NoError(t, err)
		assert.Equal(t, fakePNG, img)
		assert.Equal(t, "image/png", res["image_type"])
		assert.Nil(t, res["panel_id"])
		assert.Equal(t, float64(1000), res["width"])
		assert.Equal(t, float64(500), res["height"])

		last := seen.last(t)
		assert.Equal(t, "/render/d/cpu", last.URL.Path)
		assert.Equal(t, "light", last.URL.Query().Get("theme"))
	})

	t.Run("panel", func(t *testing.T) {
		out, err := callTool(t, registry, "get_dashboard_screenshot",
			`{"dashboard_uid":"cpu","panel_id":2,"width":640,"theme":"dark","from_time":"now-6h","to_time":"now"}`)
		require.NoError(t, err)
		assert.Contains(t, out, `"panel_id":2`)

		last := seen.last(t)
		assert.Equal(t, "/render/d-solo/cpu", last.URL.Path)
		q := last.URL.Query()
		assert.Equal(t, "2", q.Get("panelId"))
		assert.Equal(t, "640", q.Get("width"))
		assert.Equal(t, "dark", q.Get("theme"))
		assert.Equal(t, "now-6h", q.Get("from"))
		assert.Equal(t, "now", q.Get("to"))
	})

	t.Run("bad theme", func(t *testing.T) {
		_, err := callTool(t, registry, "get_dashboard_screenshot", `{"dashboard_uid":"cpu","theme":"neon"}`)
		assert.ErrorIs(t, err, schema.ErrValidation)
	})
}

func TestUpdateDashboard(t *testing.T) {
	client, seen := newFakeGrafana(t)
	registry := newTestRegistry(t, client)

	out, err := callTool(t, registry, "update_dashboard", `{"dashboard":{"title":"New"},"folder_id":4}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":9,"uid":"new","url":"/d/new/new","status":"success","version":1,"slug":"new"}`, out)
	assert.Equal(t, http.MethodPost, seen.last(t).Method)

	body := seen.bodyOf(t, http.MethodPost, "/api/dashboards/db")
	assert.Equal(t, float64(4), body["folderId"])
	assert.NotContains(t, body, "folderUid")

	_, err = callTool(t, registry, "update_dashboard", `{"dashboard":{"title":"New"},"folder_uid":"f2","overwrite":true}`)
	require.NoError(t, err)
	body = seen.bodyOf(t, http.MethodPost, "/api/dashboards/db")
	assert.Equal(t, "f2", body["folderUid"])
	assert.Equal(t, true, body["overwrite"])
	assert.NotContains(t, body, "folderId")

	_, err = callTool(t, registry, "update_dashboard", `{"dashboard":"not an object"}`)
	assert.ErrorIs(t, err, schema.ErrValidation)
}

func TestListDatasources(t *testing.T) {
	client, _ := newFakeGrafana(t)
	registry := newTestRegistry(t, client)

	out, err := callTool(t, registry, "list_datasources", `{}`)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"uid":"prom","name":"Prometheus","type":"prometheus","url":"http://prom:9090","is_default":true}]`, out)
}

func TestGetDatasource(t *testing.T) {
	client, _ := newFakeGrafana(t)
	registry := newTestRegistry(t, client)

	out, err := callTool(t, registry, "get_datasource", `{"uid":"prom"}`)
	require.NoError(t, err)
	assert.Contains(t, out, `"name":"Prometheus"`)

	out, err = callTool(t, registry, "get_datasource", `{"name":"Prometheus"}`)
	require.NoError(t, err)
	assert.Contains(t, out, `"uid":"prom"`)

	for _, args := range []string{`{}`, `{"uid":"prom","name":"Prometheus"}`} {
		_, err = callTool(t, registry, "get_datasource", args)
		assert.True(t, errors.Is(err, ErrDatasourceSelector), args)
	}
}

func TestListFolders(t *testing.T) {
	client, _ := newFakeGrafana(t)
	registry := newTestRegistry(t, client)

	out, err := callTool(t, registry, "list_folders", `{}`)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"uid":"f1","title":"Infra","url":"/dashboards/f/f1/infra"},
		{"uid":"f2","title":"Apps","url":"/dashboards/f/f2/apps","parent_uid":"f1"}
	]`, out)
}

func TestListAlertRules(t *testing.T) {
	client, _ := newFakeGrafana(t)
	registry := newTestRegistry(t, client)

	out, err := callTool(t, registry, "list_alert_rules", `{}`)
	require.NoError(t, err)
	var rules []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rules))
	require.Len(t, rules, 2)
	assert.Equal(t, "High CPU", rules[0]["title"])
	assert.Equal(t, map[string]any{}, rules[1]["labels"], "missing labels become an empty object")
	assert.Equal(t, true, rules[1]["is_paused"])

	out, err = callTool(t, registry, "list_alert_rules", `{"folder_uid":"f2"}`)
	require.NoError(t, err)
	var filtered []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &filtered))
	require.Len(t, filtered, 1)
	assert.Equal(t, "r2", filtered[0]["uid"])
}

func TestQueryDatasource(t *testing.T) {
	client, seen := newFakeGrafana(t)
	registry := newTestRegistry(t, client)

	out, err := callTool(t, registry, "query_datasource",
		`{"datasource_uid":"prom","queries":[{"expr":"up"},{"refId":"X","expr":"down","datasource":{"uid":"other"}}]}`)
	require.NoError(t, err)
	assert.Contains(t, out, `"frames"`)

	body := seen.bodyOf(t, http.MethodPost, "/api/ds/query")
	assert.Equal(t, DefaultQueryFrom, body["from"])
	assert.Equal(t, DefaultQueryTo, body["to"])
	queries := body["queries"].([]any)
	require.Len(t, queries, 2)
	first, second := queries[0].(map[string]any), queries[1].(map[string]any)
	assert.Equal(t, "A", first["refId"])
	assert.Equal(t, map[string]any{"uid": "prom"}, first["datasource"])
	assert.Equal(t, "X", second["refId"])
	assert.Equal(t, map[string]any{"uid": "other"}, second["datasource"])
}

func TestQueryDatasource_Validation(t *testing.T) {
	client, seen := newFakeGrafana(t)
	registry := newTestRegistry(t, client)

	for _, args := range []string{
		`{"queries":[{"expr":"up"}]}`,
		`{"datasource_uid":"prom","queries":["up"]}`,
	} {
		_, err := callTool(t, registry, "query_datasource", args)
		assert.ErrorIs(t, err, schema.ErrValidation, args)
	}

	_, err := callTool(t, registry, "query_datasource", `{"datasource_uid":"prom","queries":[]}`)
	assert.Error(t, err)
	assert.Empty(t, seen.all())

	_, err = callTool(t, registry, "query_datasource", `{"datasource_uid":"broken","queries":[{"expr":"up"}]}`)
	var apiErr *grafana.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "datasource not found", apiErr.Message)
}

func TestRefID(t *testing.T) {
	assert.Equal(t, "A", refID(0))
	assert.Equal(t, "Z", refID(25))
	assert.Equal(t, "AA", refID(26))
	assert.Equal(t, "AB", refID(27))
}

func TestCreateDashboardSnapshot(t *testing.T) {
	client, seen := newFakeGrafana(t)
	registry := newTestRegistry(t, client)

	out, err := callTool(t, registry, "create_dashboard_snapshot", `{"dashboard_uid":"svc","name":"nightly","expires":3600}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"key":"snap1","delete_key":"del1",
		"url":"http://grafana/dashboard/snapshot/snap1",
		"delete_url":"http://grafana/api/snapshots-delete/del1",
		"panels_with_data":1,"failed_panels":[4]
	}`, out)

	body := seen.bodyOf(t, http.MethodPost, "/api/snapshots")
	assert.Equal(t, "nightly", body["name"])
	assert.Equal(t, float64(3600), body["expires"])

	dash := body["dashboard"].(map[string]any)
	assert.Equal(t, "Service (Snapshot)", dash["title"])
	panels := dash["panels"].([]any)
	require.Len(t, panels, 3)
	assert.Contains(t, panels[0], "snapshotData")
	assert.NotContains(t, panels[1], "snapshotData")
	nested := panels[2].(map[string]any)["panels"].([]any)
	assert.NotContains(t, nested[0], "snapshotData")

	query := seen.bodyOf(t, http.MethodPost, "/api/ds/query")
	assert.Equal(t, "now-24h", query["from"], "dashboard time range is used")
}

func TestCreateDashboardSnapshot_WithoutData(t *testing.T) {
	client, seen := newFakeGrafana(t)
	registry := newTestRegistry(t, client)

	out, err := callTool(t, registry, "create_dashboard_snapshot", `{"dashboard_uid":"svc","name":"bare","include_data":false}`)
	require.NoError(t, err)
	assert.Contains(t, out, `"panels_with_data":0`)

	for _, r := range seen.all() {
		assert.NotEqual(t, "/api/ds/query", r.URL.Path)
	}
	body := seen.bodyOf(t, http.MethodPost, "/api/snapshots")
	assert.Equal(t, float64(0), body["expires"])
}

func TestCreateDashboardSnapshot_MissingDashboard(t *testing.T) {
	client, seen := newFakeGrafana(t)
	registry := newTestRegistry(t, client)

	_, err := callTool(t, registry, "create_dashboard_snapshot", `{"dashboard_uid":"missing","name":"x"}`)
	assert.True(t, grafana.IsNotFound(err))
	for _, r := range seen.all() {
		assert.NotEqual(t, http.MethodPost, r.Method)
	}
}

func TestSnapshotLifecycle(t *testing.T) {
	client, seen := newFakeGrafana(t)
	registry := newTestRegistry(t, client)

	out, err := callTool(t, registry, "list_snapshots", `{"query":"night"}`)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"key":"snap1","name":"nightly","expires":"2027-01-01T00:00:00Z","created":"2026-10-19T00:00:00Z"}]`, out)
	q := seen.last(t).URL.Query()
	assert.Equal(t, "night", q.Get("query"))
	assert.Equal(t, "100", q.Get("limit"))

	out, err = callTool(t, registry, "get_snapshot", `{"key":"snap1"}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"dashboard":{"title":"Service (Snapshot)"},"meta":{"isSnapshot":true}}`, out)

	out, err = callTool(t, registry, "delete_snapshot", `{"key":"snap1"}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"key":"snap1","deleted":true,"message":"Snapshot deleted"}`, out)
	assert.Equal(t, http.MethodDelete, seen.last(t).Method)

	_, err = callTool(t, registry, "delete_snapshot", `{"key":"gone"}`)
	assert.True(t, grafana.IsNotFound(err))
}

func TestCurrentUserAndOrg(t *testing.T) {
	client, _ := newFakeGrafana(t)
	registry := newTestRegistry(t, client)

	out, err := callTool(t, registry, "get_current_user", `{}`)
	require.NoError(t, err)
	assert.Contains(t, out, `"login":"sa-mcp"`)

	out, err = callTool(t, registry, "get_current_org", `{}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"name":"Main Org."}`, out)
}
