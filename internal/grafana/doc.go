// ABOUTME: Package grafana is the thin HTTP client the builtin tools call.
// ABOUTME: Every call carries the configured API key as a bearer token.

// Package grafana wraps the subset of the Grafana HTTP API used by the
// dashboard and datasource tools.
//
// Non-2xx responses surface as *APIError carrying the status code and
// Grafana's message. There are no retries; a failed call fails the tool
// invocation that made it. When a cache is configured, successful GET
// bodies are cached by full URL, and any dashboard save purges it.
package grafana
