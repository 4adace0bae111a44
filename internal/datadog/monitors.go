package datadog

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
)

// MonitorsOptions filters the monitor listing.
type MonitorsOptions struct {
	Name        string
	Tags        []string // scope tags on monitored resources
	MonitorTags []string // tags on the monitors themselves
}

// GetMonitors lists monitors matching the given filters.
func (c *Client) GetMonitors(ctx context.Context, opts MonitorsOptions) (json.RawMessage, error) {
	query := url.Values{}
	if opts.Name != "" {
		query.Set("name", opts.Name)
	}
	if len(opts.Tags) > 0 {
		query.Set("tags", strings.Join(opts.Tags, ","))
	}
	if len(opts.MonitorTags) > 0 {
		query.Set("monitor_tags", strings.Join(opts.MonitorTags, ","))
	}
	return c.get(ctx, "/api/v1/monitor", query)
}
