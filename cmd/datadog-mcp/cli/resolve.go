package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cobalt-robotics/datadog-mcp/internal/auth"
	"github.com/cobalt-robotics/datadog-mcp/internal/config"
	"github.com/cobalt-robotics/datadog-mcp/internal/secrets"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve credentials and report which scheme and sources won",
	Long: `Resolve runs one credential resolution and prints the outcome:
which scheme matched and where each field came from. Values are never
printed. On failure it prints the full per-field diagnostic.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		vault := secrets.NewVaultSource(cfg.Profile, cfg.Region, cfg.RoleARN)
		cache := secrets.NewVaultCache(vault, cfg.CacheTTL())
		resolver := auth.NewResolver(cfg, cache)

		bundle, err := resolver.Resolve(cmd.Context())
		if err != nil {
			var noCreds *auth.NoCredentialsError
			if errors.As(err, &noCreds) {
				fmt.Println(noCreds.Error())
				return fmt.Errorf("resolution failed")
			}
			return err
		}

		switch b := bundle.(type) {
		case *auth.CookieBundle:
			fmt.Println("scheme: cookie")
			fmt.Printf("  cookie:     %s (%s)\n", b.Cookie.Source, b.Cookie.Key)
			fmt.Printf("  CSRF token: %s (%s)\n", b.CSRFToken.Source, b.CSRFToken.Key)
		case *auth.APIKeyBundle:
			fmt.Println("scheme: api-key")
			fmt.Printf("  API key: %s (%s)\n", b.APIKey.Source, b.APIKey.Key)
			fmt.Printf("  app key: %s (%s)\n", b.AppKey.Source, b.AppKey.Key)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}
