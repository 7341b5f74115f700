// Package config handles configuration loading for grafana-mcp.
//
// # Overview
//
// Configuration is loaded from a YAML or TOML file with environment variable
// expansion, then overridden by a few well-known environment variables.
// Every setting has a default, so running with no file at all is valid.
//
// # Configuration File
//
// Location (in order):
//
//  1. Path given with --config
//  2. Path from GRAFANA_MCP_CONFIG environment variable
//  3. None: defaults plus environment overrides
//
// A path ending in .toml is parsed as TOML; anything else as YAML.
//
// A .env file in the working directory is loaded first when present.
// Variables already set in the environment are not replaced.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	grafana:
//	  api_key: "${GRAFANA_SERVICE_ACCOUNT_TOKEN}"
//
// Unset variables expand to the empty string.
//
// # Environment Overrides
//
// These win over the file:
//
//	GRAFANA_URL             grafana.url
//	GRAFANA_API_KEY         grafana.api_key
//	GRAFANA_MCP_AUTH_TOKEN  server.auth_token
//
// # Configuration Sections
//
// Server settings:
//
//	server:
//	  transport: "stdio"      # stdio, sse, or http
//	  host: "localhost"       # HTTP transports only
//	  port: 8000
//	  auth_token: ""          # bearer token for /v1 routes; empty disables
//
// Grafana connection:
//
//	grafana:
//	  url: "http://localhost:3000"
//	  api_key: ""
//	  timeout: "30s"
//	  cache_ttl: "0s"         # >0 caches GET responses
//	  debug: false            # log request/response summaries
//
// Tool categories:
//
//	tools:
//	  disabled: ["snapshot"]  # search, dashboard, datasource, folder,
//	                          # alerting, query, snapshot, user
//
// Logging:
//
//	logging:
//	  level: "info"           # debug, info, warn, error
//	  format: "text"          # text or json
//
// Tool-call journal:
//
//	database:
//	  path: "./grafana-mcp.db" # empty disables the journal
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	grafana:
//	  timeout: "10s"
//	  cache_ttl: "5m"
//
// Supported units: ns, us, ms, s, m, h
//
// # Validation
//
// Load validates the result and reports the first problem found: an unknown
// transport, an out-of-range port for HTTP transports, a Grafana URL without
// an http(s) scheme or host, a non-positive timeout, or an unknown log level
// or format.
package config
