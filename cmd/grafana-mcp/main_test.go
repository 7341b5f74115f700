// ABOUTME: Tests for serve flag handling and the console log handler
// ABOUTME: Flags must override config and logs must never reach stdout

package main

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/grafana-mcp/internal/config"
)

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"search", "dashboard"}, splitList(" search, ,dashboard ,"))
	assert.Nil(t, splitList(""))
}

func TestServeFlags_Apply(t *testing.T) {
	flags, err := parseServeFlags([]string{
		"--transport", "http",
		"--host", "0.0.0.0",
		"--port", "9100",
		"--debug",
		"--grafana-url", "https://grafana.internal",
		"--grafana-api-key", "flag-key",
		"--disabled-tools", "dashboard,datasource",
	})
	require.NoError(t, err)

	cfg := config.Default()
	require.NoError(t, flags.apply(cfg))

	assert.Equal(t, "0.0.0.0:9100", cfg.Addr())
	assert.True(t, cfg.UsesHTTP())
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Grafana.Debug)
	assert.Equal(t, "https://grafana.internal", cfg.Grafana.URL)
	assert.Equal(t, "flag-key", cfg.Grafana.APIKey)
	assert.Equal(t, []string{"dashboard", "datasource"}, cfg.Tools.Disabled)
}

func TestServeFlags_Invalid(t *testing.T) {
	flags, err := parseServeFlags([]string{"--transport", "carrier-pigeon"})
	require.NoError(t, err)

	cfg := config.Default()
	assert.Error(t, flags.apply(cfg))

	_, err = parseServeFlags([]string{"extra"})
	assert.Error(t, err)
}

func TestColorHandler(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	logger := setupLogger(config.LoggingConfig{Level: "info", Format: "text"}, &buf)

	logger.Debug("hidden")
	logger.With("component", "grafana").WithGroup("req").Info("fetched", "status", 200)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "INF fetched")
	assert.Contains(t, out, "component=grafana")
	assert.Contains(t, out, "req.status=200")
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := setupLogger(config.LoggingConfig{Level: "debug", Format: "json"}, &buf)
	logger.Debug("visible", "k", "v")

	assert.Contains(t, buf.String(), `"msg":"visible"`)
	assert.Contains(t, buf.String(), `"k":"v"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("whatever"))
}

func TestNewGrafanaClient_ReleaseLogsCacheStats(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	logger := setupLogger(config.LoggingConfig{Level: "info", Format: "text"}, &buf)

	cfg := config.Default()
	cfg.Grafana.CacheTTL = time.Minute
	_, release, err := newGrafanaClient(cfg, logger)
	require.NoError(t, err)
	release()

	out := buf.String()
	assert.Contains(t, out, "grafana cache closed")
	assert.Contains(t, out, "entries=0")
	assert.Contains(t, out, "hits=0")
}

func TestNewGrafanaClient_NoCacheReleaseIsQuiet(t *testing.T) {
	var buf bytes.Buffer
	logger := setupLogger(config.LoggingConfig{Level: "info", Format: "json"}, &buf)

	_, release, err := newGrafanaClient(config.Default(), logger)
	require.NoError(t, err)
	release()
	assert.Empty(t, buf.String())
}
