// ABOUTME: Datasource endpoints: list all, or fetch one by UID or by name.

package grafana

import (
	"context"
	"fmt"
	"net/url"
)

// ListDatasources returns every datasource visible to the API key.
func (c *Client) ListDatasources(ctx context.Context) ([]Datasource, error) {
	var out []Datasource
	if err := c.getJSON(ctx, "/api/datasources", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []Datasource{}
	}
	return out, nil
}

func (c *Client) GetDatasourceByUID(ctx context.Context, uid string) (*Datasource, error) {
	if uid == "" {
		return nil, fmt.Errorf("datasource uid is required")
	}
	var ds Datasource
	if err := c.getJSON(ctx, "/api/datasources/uid/"+url.PathEscape(uid), nil, &ds); err != nil {
		return nil, err
	}
	return &ds, nil
}

func (c *Client) GetDatasourceByName(ctx context.Context, name string) (*Datasource, error) {
	if name == "" {
		return nil, fmt.Errorf("datasource name is required")
	}
	var ds Datasource
	if err := c.getJSON(ctx, "/api/datasources/name/"+url.PathEscape(name), nil, &ds); err != nil {
		return nil, err
	}
	return &ds, nil
}
