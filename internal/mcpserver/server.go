// Package mcpserver exposes Datadog monitoring endpoints as MCP tools over
// stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/cobalt-robotics/datadog-mcp/internal/datadog"
)

// API is the slice of the Datadog client the tool handlers use.
type API interface {
	QueryMetrics(ctx context.Context, q datadog.MetricsQuery) (json.RawMessage, error)
	GetMonitors(ctx context.Context, opts datadog.MonitorsOptions) (json.RawMessage, error)
	GetTeams(ctx context.Context, opts datadog.TeamsOptions) (json.RawMessage, error)
	GetTeamMemberships(ctx context.Context, teamID string) (json.RawMessage, error)
	SearchLogs(ctx context.Context, q datadog.LogsQuery) (json.RawMessage, error)
}

// Deps holds the dependencies for creating a Server.
type Deps struct {
	API     API
	Logger  *slog.Logger
	Version string
}

// Server wraps an MCP server with the Datadog tool handlers.
type Server struct {
	api       API
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// New creates a Server with all tools registered.
func New(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	version := deps.Version
	if version == "" {
		version = "dev"
	}

	s := &Server{api: deps.API, logger: logger}

	mcpSrv := server.NewMCPServer(
		"datadog-mcp",
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions("Proxies Datadog monitoring endpoints. Use query_metrics for timeseries data, get_monitors to list monitors, get_teams for team info, and search_logs to search log events."),
	)

	mcpSrv.AddTools(s.tools()...)
	s.mcpServer = mcpSrv
	return s
}

// Serve starts the stdio transport and blocks until ctx is cancelled or
// stdin closes.
func (s *Server) Serve(ctx context.Context) error {
	stdio := server.NewStdioServer(s.mcpServer)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

// MCPServer returns the underlying MCPServer for testing or custom
// transports.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) tools() []server.ServerTool {
	return []server.ServerTool{
		{Tool: queryMetricsTool(), Handler: s.handleQueryMetrics},
		{Tool: getMonitorsTool(), Handler: s.handleGetMonitors},
		{Tool: getTeamsTool(), Handler: s.handleGetTeams},
		{Tool: searchLogsTool(), Handler: s.handleSearchLogs},
	}
}

// --- Tool definitions ---

func queryMetricsTool() mcp.Tool {
	return mcp.NewTool("query_metrics",
		mcp.WithDescription("Query Datadog timeseries metrics"),
		mcp.WithString("metric", mcp.Required(), mcp.Description("Metric name, e.g. system.cpu.user")),
		mcp.WithString("aggregation", mcp.Enum("avg", "sum", "min", "max"), mcp.Description("Space aggregation (default: avg)")),
		mcp.WithString("filter", mcp.Description("Comma-separated tag filters, e.g. env:prod,service:api")),
		mcp.WithString("group_by", mcp.Description("Comma-separated tag keys to group by")),
		mcp.WithBoolean("as_count", mcp.Description("Apply the .as_count() rollup")),
		mcp.WithNumber("hours_back", mcp.Description("Query window in hours ending now (default: 1)")),
	)
}

func getMonitorsTool() mcp.Tool {
	return mcp.NewTool("get_monitors",
		mcp.WithDescription("List Datadog monitors"),
		mcp.WithString("name", mcp.Description("Filter monitors by name")),
		mcp.WithString("tags", mcp.Description("Comma-separated scope tags, e.g. host:web-1")),
		mcp.WithString("monitor_tags", mcp.Description("Comma-separated tags on the monitors themselves")),
	)
}

func getTeamsTool() mcp.Tool {
	return mcp.NewTool("get_teams",
		mcp.WithDescription("List Datadog teams and optionally their members"),
		mcp.WithString("team_name", mcp.Description("Filter teams by name or handle")),
		mcp.WithBoolean("include_members", mcp.Description("Include team memberships (requires team_name to match exactly one team)")),
	)
}

func searchLogsTool() mcp.Tool {
	return mcp.NewTool("search_logs",
		mcp.WithDescription("Search Datadog log events"),
		mcp.WithString("query", mcp.Required(), mcp.Description("Log search query, e.g. service:api status:error")),
		mcp.WithNumber("hours_back", mcp.Description("Search window in hours ending now (default: 1)")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of events to return (default: 25)")),
	)
}
