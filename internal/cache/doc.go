// Package cache provides a TTL and size bounded cache for Grafana API responses,
// so repeated read-only tool calls within a short window reuse the last payload.
package cache
