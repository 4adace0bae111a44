// Package cli implements the datadog-mcp command-line interface using
// Cobra. Running the binary with no subcommand starts the MCP stdio
// server.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/cobalt-robotics/datadog-mcp/internal/log"
)

var (
	verbose bool
	jsonOut bool
)

var rootCmd = &cobra.Command{
	Use:   "datadog-mcp",
	Short: "MCP server proxying Datadog monitoring endpoints",
	Long: `datadog-mcp exposes Datadog metrics, monitors, teams, and logs as MCP
tools over stdio.

Credentials resolve per request from, in order: a session cookie + CSRF
token (env vars or local files), then an API key + application key (env
vars or AWS Secrets Manager with TTL caching). Rotating a cookie file or
a vault secret takes effect without restarting the server.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.Init(log.Options{
			Verbose:    verbose,
			JSONFormat: jsonOut,
		})
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "log in JSON format")
}
