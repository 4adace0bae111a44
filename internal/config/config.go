// Package config loads resolver configuration from defaults, an optional
// YAML file, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults match the standard deployment: secrets under /DEVELOPMENT/datadog
// in us-west-2, fetched with the default shared-config profile, cached for
// 50 minutes.
const (
	DefaultAPIKeySecret = "/DEVELOPMENT/datadog/API_KEY"
	DefaultAppKeySecret = "/DEVELOPMENT/datadog/APP_KEY"
	DefaultRegion       = "us-west-2"
	DefaultProfile      = "default"
	DefaultCacheTTL     = 3000 * time.Second

	DefaultAppURL = "https://app.datadoghq.com"
	DefaultAPIURL = "https://api.datadoghq.com"
)

// Config holds the recognized resolver configuration. It is loaded once at
// startup and treated as immutable for the process lifetime; resolution
// logic never reads ambient state.
type Config struct {
	// AWS Secrets Manager access
	Profile      string `yaml:"profile"`
	Region       string `yaml:"region"`
	APIKeySecret string `yaml:"api_key_secret"`
	AppKeySecret string `yaml:"app_key_secret"`
	RoleARN      string `yaml:"role_arn"`

	// Remote-fetch cache TTL in seconds
	CacheTTLSeconds int `yaml:"cache_ttl_seconds"`

	// Session-cookie credential files
	CookieFile string `yaml:"cookie_file"`
	CSRFFile   string `yaml:"csrf_file"`

	// Datadog endpoints (cookie auth uses the app URL, key auth the API URL)
	AppURL string `yaml:"app_url"`
	APIURL string `yaml:"api_url"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Profile:         DefaultProfile,
		Region:          DefaultRegion,
		APIKeySecret:    DefaultAPIKeySecret,
		AppKeySecret:    DefaultAppKeySecret,
		CacheTTLSeconds: int(DefaultCacheTTL / time.Second),
		CookieFile:      filepath.Join(Dir(), "cookie"),
		CSRFFile:        filepath.Join(Dir(), "csrf_token"),
		AppURL:          DefaultAppURL,
		APIURL:          DefaultAPIURL,
	}
}

// Load builds the configuration: defaults, then ~/.datadog-mcp/config.yaml
// if present, then environment overrides. A configured role ARN is
// validated up front so a typo fails at startup rather than on the first
// vault fetch.
func Load() (*Config, error) {
	cfg := Default()

	path := filepath.Join(Dir(), "config.yaml")
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if cfg.RoleARN != "" {
		if err := ValidateRoleARN(cfg.RoleARN); err != nil {
			return nil, err
		}
	}
	if cfg.CacheTTLSeconds <= 0 {
		return nil, fmt.Errorf("cache TTL must be positive, got %d", cfg.CacheTTLSeconds)
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("AWS_PROFILE"); v != "" {
		cfg.Profile = v
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		cfg.Region = v
	}
	if v := os.Getenv("AWS_SECRET_API_KEY"); v != "" {
		cfg.APIKeySecret = v
	}
	if v := os.Getenv("AWS_SECRET_APP_KEY"); v != "" {
		cfg.AppKeySecret = v
	}
	if v := os.Getenv("AWS_ROLE_ARN"); v != "" {
		cfg.RoleARN = v
	}
	if v := os.Getenv("SECRET_CACHE_TTL"); v != "" {
		if ttl, err := strconv.Atoi(v); err == nil {
			cfg.CacheTTLSeconds = ttl
		}
	}
	if v := os.Getenv("DD_COOKIE_FILE"); v != "" {
		cfg.CookieFile = v
	}
	if v := os.Getenv("DD_CSRF_FILE"); v != "" {
		cfg.CSRFFile = v
	}
	if v := os.Getenv("DD_APP_URL"); v != "" {
		cfg.AppURL = v
	}
	if v := os.Getenv("DD_API_URL"); v != "" {
		cfg.APIURL = v
	}
}

// CacheTTL returns the cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// Dir returns the path to ~/.datadog-mcp.
func Dir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".datadog-mcp")
	}
	return filepath.Join(homeDir, ".datadog-mcp")
}

// ValidateRoleARN checks that arn is a well-formed IAM role ARN.
// ARN format: arn:PARTITION:iam::ACCOUNT_ID:role/ROLE_NAME
// Supported partitions: aws, aws-cn, aws-us-gov
func ValidateRoleARN(arn string) error {
	parts := strings.Split(arn, ":")
	if len(parts) != 6 {
		return fmt.Errorf("invalid role ARN %q: expected 6 colon-separated parts, got %d", arn, len(parts))
	}

	prefix, partition, service, _, account, resource := parts[0], parts[1], parts[2], parts[3], parts[4], parts[5]

	if prefix != "arn" {
		return fmt.Errorf("invalid role ARN %q: must start with 'arn:'", arn)
	}

	switch partition {
	case "aws", "aws-cn", "aws-us-gov":
		// valid
	default:
		return fmt.Errorf("invalid role ARN %q: unknown partition %s", arn, partition)
	}

	if service != "iam" {
		return fmt.Errorf("invalid role ARN %q: must be an IAM ARN (got %s)", arn, service)
	}

	if account == "" {
		return fmt.Errorf("invalid role ARN %q: account ID is required", arn)
	}

	if !strings.HasPrefix(resource, "role/") || resource == "role/" {
		return fmt.Errorf("invalid role ARN %q: must name a role (role/NAME)", arn)
	}

	return nil
}
