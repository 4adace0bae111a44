package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/cobalt-robotics/datadog-mcp/internal/auth"
	"github.com/cobalt-robotics/datadog-mcp/internal/datadog"
)

func (s *Server) handleQueryMetrics(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	metric, err := req.RequireString("metric")
	if err != nil {
		return mcp.NewToolResultError("metric is required"), nil
	}

	to := time.Now()
	from := to.Add(-time.Duration(req.GetFloat("hours_back", 1) * float64(time.Hour)))

	q := datadog.MetricsQuery{
		Metric:      metric,
		Aggregation: req.GetString("aggregation", ""),
		Filters:     splitList(req.GetString("filter", "")),
		GroupBy:     splitList(req.GetString("group_by", "")),
		AsCount:     req.GetBool("as_count", false),
		From:        from,
		To:          to,
	}

	s.logger.Debug("query_metrics", "query", q.String())

	result, err := s.api.QueryMetrics(ctx, q)
	if err != nil {
		return s.toolError("metrics query failed", err), nil
	}
	return mcp.NewToolResultText(string(result)), nil
}

func (s *Server) handleGetMonitors(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	opts := datadog.MonitorsOptions{
		Name:        req.GetString("name", ""),
		Tags:        splitList(req.GetString("tags", "")),
		MonitorTags: splitList(req.GetString("monitor_tags", "")),
	}

	result, err := s.api.GetMonitors(ctx, opts)
	if err != nil {
		return s.toolError("monitor listing failed", err), nil
	}
	return mcp.NewToolResultText(string(result)), nil
}

func (s *Server) handleGetTeams(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	opts := datadog.TeamsOptions{
		Keyword: req.GetString("team_name", ""),
	}

	teams, err := s.api.GetTeams(ctx, opts)
	if err != nil {
		return s.toolError("team listing failed", err), nil
	}

	if !req.GetBool("include_members", false) {
		return mcp.NewToolResultText(string(teams)), nil
	}

	teamID, err := soleTeamID(teams)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	members, err := s.api.GetTeamMemberships(ctx, teamID)
	if err != nil {
		return s.toolError("membership listing failed", err), nil
	}

	combined, err := json.Marshal(map[string]json.RawMessage{
		"teams":   teams,
		"members": members,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(combined)), nil
}

func (s *Server) handleSearchLogs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query is required"), nil
	}

	to := time.Now()
	q := datadog.LogsQuery{
		Query: query,
		From:  to.Add(-time.Duration(req.GetFloat("hours_back", 1) * float64(time.Hour))),
		To:    to,
		Limit: req.GetInt("limit", 25),
	}

	result, err := s.api.SearchLogs(ctx, q)
	if err != nil {
		return s.toolError("log search failed", err), nil
	}
	return mcp.NewToolResultText(string(result)), nil
}

// toolError converts a client error into a tool-error result. Credential
// failures surface the full remediation diagnostic; everything else gets a
// one-line message. AWS SDK internals never reach the tool caller.
func (s *Server) toolError(prefix string, err error) *mcp.CallToolResult {
	var noCreds *auth.NoCredentialsError
	if errors.As(err, &noCreds) {
		s.logger.Warn("credential resolution failed")
		return mcp.NewToolResultError(noCreds.Error())
	}

	s.logger.Warn(prefix, "error", err)
	return mcp.NewToolResultError(fmt.Sprintf("%s: %v", prefix, err))
}

// soleTeamID extracts the team ID from a v2 team listing that must contain
// exactly one team.
func soleTeamID(teams json.RawMessage) (string, error) {
	var listing struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(teams, &listing); err != nil {
		return "", fmt.Errorf("decoding team listing: %w", err)
	}
	if len(listing.Data) != 1 {
		return "", fmt.Errorf("include_members requires team_name to match exactly one team, matched %d", len(listing.Data))
	}
	return listing.Data[0].ID, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
