package datadog

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
)

// TeamsOptions filters the team listing.
type TeamsOptions struct {
	Keyword  string // filters by team name or handle
	PageSize int
}

// GetTeams lists teams, optionally filtered by keyword.
func (c *Client) GetTeams(ctx context.Context, opts TeamsOptions) (json.RawMessage, error) {
	query := url.Values{}
	if opts.Keyword != "" {
		query.Set("filter[keyword]", opts.Keyword)
	}
	if opts.PageSize > 0 {
		query.Set("page[size]", strconv.Itoa(opts.PageSize))
	}
	return c.get(ctx, "/api/v2/team", query)
}

// GetTeamMemberships lists the members of a team.
func (c *Client) GetTeamMemberships(ctx context.Context, teamID string) (json.RawMessage, error) {
	return c.get(ctx, "/api/v2/team/"+url.PathEscape(teamID)+"/memberships", nil)
}
