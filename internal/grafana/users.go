// ABOUTME: Identity lookups for the API key: current user and current org.

package grafana

import "context"

// CurrentUser returns the user the API key acts as. Service accounts
// report their own login.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var u User
	if err := c.getJSON(ctx, "/api/user", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// CurrentOrg returns the organization the API key belongs to.
func (c *Client) CurrentOrg(ctx context.Context) (*Org, error) {
	var o Org
	if err := c.getJSON(ctx, "/api/org", nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}
