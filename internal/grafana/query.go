// ABOUTME: Datasource query endpoint used for ad-hoc queries and snapshot data.

package grafana

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// QueryDatasources runs queries through POST /api/ds/query and returns
// Grafana's response untouched. Queries are never cached.
func (c *Client) QueryDatasources(ctx context.Context, req QueryRequest) (json.RawMessage, error) {
	if len(req.Queries) == 0 {
		return nil, fmt.Errorf("at least one query is required")
	}
	data, _, err := c.do(ctx, http.MethodPost, "/api/ds/query", nil, req)
	if err != nil {
		return nil, err
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("decoding grafana response: invalid JSON")
	}
	return json.RawMessage(data), nil
}
