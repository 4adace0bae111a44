package datadog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// MetricsQuery describes a timeseries query.
type MetricsQuery struct {
	Metric      string
	Aggregation string   // avg, sum, min, max (default avg)
	Filters     []string // tag filters, e.g. "env:prod"; empty means {*}
	GroupBy     []string // tag keys to group by
	AsCount     bool     // append .as_count() rollup
	From        time.Time
	To          time.Time
}

// String renders the Datadog query expression. The group-by clause comes
// before the .as_count() suffix: "sum:metric{*} by {field}.as_count()" is
// valid, "sum:metric{*}.as_count() by {field}" is not.
func (q MetricsQuery) String() string {
	agg := q.Aggregation
	if agg == "" {
		agg = "avg"
	}

	filter := "*"
	if len(q.Filters) > 0 {
		filter = strings.Join(q.Filters, ",")
	}

	expr := fmt.Sprintf("%s:%s{%s}", agg, q.Metric, filter)
	if len(q.GroupBy) > 0 {
		expr += " by {" + strings.Join(q.GroupBy, ",") + "}"
	}
	if q.AsCount {
		expr += ".as_count()"
	}
	return expr
}

// QueryMetrics runs a timeseries query over the given window.
func (c *Client) QueryMetrics(ctx context.Context, q MetricsQuery) (json.RawMessage, error) {
	query := url.Values{
		"from":  {strconv.FormatInt(q.From.Unix(), 10)},
		"to":    {strconv.FormatInt(q.To.Unix(), 10)},
		"query": {q.String()},
	}
	return c.get(ctx, "/api/v1/query", query)
}
