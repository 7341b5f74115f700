// ABOUTME: Tests for the snapshot endpoints and their cache eviction.

package grafana

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/grafana-mcp/internal/cache"
)

func TestCreateSnapshot(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/snapshots", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "nightly", body["name"])
		assert.Equal(t, float64(3600), body["expires"])
		assert.Equal(t, "CPU", body["dashboard"].(map[string]any)["title"])

		_, _ = io.WriteString(w, `{"id":4,"key":"k1","deleteKey":"dk1","url":"http://g/dashboard/snapshot/k1","deleteUrl":"http://g/api/snapshots-delete/dk1"}`)
	}, nil)

	res, err := client.CreateSnapshot(context.Background(), SnapshotParams{
		Dashboard: map[string]any{"title": "CPU"},
		Name:      "nightly",
		Expires:   3600,
	})
	require.NoError(t, err)
	assert.Equal(t, "k1", res.Key)
	assert.Equal(t, "dk1", res.DeleteKey)
}

func TestCreateSnapshot_RequiresModel(t *testing.T) {
	c, err := NewClient(Config{BaseURL: "http://localhost:3000"})
	require.NoError(t, err)
	_, err = c.CreateSnapshot(context.Background(), SnapshotParams{Name: "x"})
	assert.Error(t, err)
}

func TestListSnapshots(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/dashboard/snapshots", r.URL.Path)
		assert.Equal(t, "night", r.URL.Query().Get("query"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		_, _ = io.WriteString(w, `[{"id":4,"name":"nightly","key":"k1","expires":"2026-01-01T00:00:00Z","created":"2025-12-31T00:00:00Z"}]`)
	}, nil)

	snaps, err := client.ListSnapshots(context.Background(), "night", 5)
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, "k1", snaps[0].Key)
}

func TestDeleteSnapshot_EvictsCachedPayload(t *testing.T) {
	var gets atomic.Int32
	c := cache.New(time.Minute, 10)
	defer c.Close()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/snapshots/k%201", r.URL.EscapedPath())
		switch r.Method {
		case http.MethodGet:
			gets.Add(1)
			_, _ = io.WriteString(w, `{"dashboard":{"title":"CPU"},"meta":{"isSnapshot":true}}`)
		case http.MethodDelete:
			_, _ = io.WriteString(w, `{"message":"Snapshot deleted. It might take an hour before it's cleared from any CDN caches."}`)
		}
	}, c)
	ctx := context.Background()

	for range 2 {
		raw, err := client.GetSnapshot(ctx, "k 1")
		require.NoError(t, err)
		assert.Contains(t, string(raw), `"isSnapshot":true`)
	}
	assert.Equal(t, int32(1), gets.Load())

	msg, err := client.DeleteSnapshot(ctx, "k 1")
	require.NoError(t, err)
	assert.Contains(t, msg, "Snapshot deleted")

	_, err = client.GetSnapshot(ctx, "k 1")
	require.NoError(t, err)
	assert.Equal(t, int32(2), gets.Load(), "delete evicts the cached snapshot")
}

func TestDeleteSnapshot_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"message":"Failed to get dashboard snapshot"}`)
	}, nil)

	_, err := client.DeleteSnapshot(context.Background(), "gone")
	assert.True(t, IsNotFound(err))
}
