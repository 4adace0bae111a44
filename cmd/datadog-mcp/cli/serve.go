package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cobalt-robotics/datadog-mcp/internal/auth"
	"github.com/cobalt-robotics/datadog-mcp/internal/config"
	"github.com/cobalt-robotics/datadog-mcp/internal/datadog"
	"github.com/cobalt-robotics/datadog-mcp/internal/log"
	"github.com/cobalt-robotics/datadog-mcp/internal/mcpserver"
	"github.com/cobalt-robotics/datadog-mcp/internal/secrets"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP stdio server (the default command)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	client := newDatadogClient(cfg)

	srv := mcpserver.New(mcpserver.Deps{
		API:     client,
		Logger:  log.With("component", "mcp"),
		Version: Version(),
	})

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("starting MCP server",
		"profile", cfg.Profile,
		"region", cfg.Region,
		"api_key_secret", cfg.APIKeySecret,
		"app_key_secret", cfg.AppKeySecret,
		"cache_ttl", cfg.CacheTTL().String())

	return srv.Serve(ctx)
}

// newDatadogClient wires the credential sources into a client: vault
// behind the TTL cache, resolver over env/file/vault, builder carrying the
// scheme-dependent endpoints.
func newDatadogClient(cfg *config.Config) *datadog.Client {
	vault := secrets.NewVaultSource(cfg.Profile, cfg.Region, cfg.RoleARN)
	cache := secrets.NewVaultCache(vault, cfg.CacheTTL())
	resolver := auth.NewResolver(cfg, cache)
	builder := auth.NewRequestBuilder(cfg.AppURL, cfg.APIURL)
	return datadog.NewClient(resolver, builder)
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
