package datadog

import (
	"context"
	"encoding/json"
	"time"
)

// LogsQuery describes a log search.
type LogsQuery struct {
	Query string
	From  time.Time
	To    time.Time
	Limit int
}

// SearchLogs searches log events matching the query over the given window.
func (c *Client) SearchLogs(ctx context.Context, q LogsQuery) (json.RawMessage, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 25
	}

	body := map[string]any{
		"filter": map[string]any{
			"query": q.Query,
			"from":  q.From.UTC().Format(time.RFC3339),
			"to":    q.To.UTC().Format(time.RFC3339),
		},
		"page": map[string]any{
			"limit": limit,
		},
		"sort": "-timestamp",
	}
	return c.post(ctx, "/api/v2/logs/events/search", body)
}
