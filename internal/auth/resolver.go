package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/cobalt-robotics/datadog-mcp/internal/config"
	"github.com/cobalt-robotics/datadog-mcp/internal/log"
	"github.com/cobalt-robotics/datadog-mcp/internal/secrets"
)

// Environment variables holding direct credential overrides.
const (
	EnvCookie    = "DD_COOKIE"
	EnvCSRFToken = "DD_CSRF_TOKEN"
	EnvAPIKey    = "DD_API_KEY"
	EnvAppKey    = "DD_APP_KEY"
)

// Resolver produces exactly one credential bundle per call, or fails with
// a diagnostic naming every source it tried. Scheme precedence: the
// session-cookie scheme first (the manually configured, interactive
// override), then the API-key scheme (the durable automation default).
//
// The resolver holds no per-call state; sources are re-queried on every
// call so rotated env vars and files take effect without a restart. Only
// the vault source caches, behind its own TTL.
type Resolver struct {
	cfg   *config.Config
	env   secrets.Source
	file  secrets.Source
	vault secrets.Source
}

// NewResolver builds a resolver over the standard env and file sources
// plus the given vault source (normally a *secrets.VaultCache).
func NewResolver(cfg *config.Config, vault secrets.Source) *Resolver {
	return &Resolver{
		cfg:   cfg,
		env:   secrets.EnvSource{},
		file:  secrets.FileSource{},
		vault: vault,
	}
}

// probe is one (source, key) pair in a field's precedence chain.
type probe struct {
	source secrets.Source
	key    string
	// extract lists preferred JSON keys when the source returns a
	// structured secret payload. Empty for env and file sources.
	extract []string
}

// Attempt records one probe outcome for the failure diagnostic.
type Attempt struct {
	Field  string
	Source string
	Key    string
	Err    error
}

// Outcome describes the attempt result: "absent" for a not-configured
// source, otherwise the unavailability reason.
func (a Attempt) Outcome() string {
	var notFound *secrets.NotFoundError
	if errors.As(a.Err, &notFound) {
		return "absent"
	}
	var unavailable *secrets.UnavailableError
	if errors.As(a.Err, &unavailable) {
		return "unavailable: " + unavailable.Reason
	}
	return a.Err.Error()
}

// NoCredentialsError is the terminal resolution failure: neither scheme
// fully resolved. It enumerates every attempted source per field so an
// operator can see exactly what was tried and which knob to set.
type NoCredentialsError struct {
	Attempts []Attempt
}

func (e *NoCredentialsError) Error() string {
	var b strings.Builder
	b.WriteString("no Datadog credentials available\n")

	byField := make(map[string][]Attempt)
	var order []string
	for _, a := range e.Attempts {
		if _, seen := byField[a.Field]; !seen {
			order = append(order, a.Field)
		}
		byField[a.Field] = append(byField[a.Field], a)
	}
	for _, field := range order {
		var parts []string
		for _, a := range byField[field] {
			parts = append(parts, fmt.Sprintf("%s %s %s", a.Source, a.Key, a.Outcome()))
		}
		fmt.Fprintf(&b, "  %s: %s\n", field, strings.Join(parts, "; "))
	}

	b.WriteString("\nSet " + EnvCookie + " and " + EnvCSRFToken + " (or the cookie/CSRF files) for session auth,\n")
	b.WriteString("or " + EnvAPIKey + " and " + EnvAppKey + ", or configure AWS Secrets Manager access\n")
	b.WriteString("(AWS_PROFILE, AWS_REGION, AWS_SECRET_API_KEY, AWS_SECRET_APP_KEY).")
	return b.String()
}

// Resolve produces the current bundle. Cookie and CSRF token each fall
// back env -> file independently; API key and app key each fall back
// env -> vault. The first fully resolvable scheme wins; fields are never
// mixed across schemes.
func (r *Resolver) Resolve(ctx context.Context) (Bundle, error) {
	var attempts []Attempt

	cookie, cookieAttempts, cookieOK := r.resolveField(ctx, "cookie", []probe{
		{source: r.env, key: EnvCookie},
		{source: r.file, key: r.cfg.CookieFile},
	})
	attempts = append(attempts, cookieAttempts...)

	csrf, csrfAttempts, csrfOK := r.resolveField(ctx, "CSRF token", []probe{
		{source: r.env, key: EnvCSRFToken},
		{source: r.file, key: r.cfg.CSRFFile},
	})
	attempts = append(attempts, csrfAttempts...)

	if cookieOK && csrfOK {
		log.Debug("resolved session-cookie credentials",
			"cookie_source", cookie.Source, "csrf_source", csrf.Source)
		return &CookieBundle{Cookie: cookie, CSRFToken: csrf}, nil
	}

	// API-key scheme. The two fields resolve concurrently: vault
	// round-trips dominate and the original fetch order does not matter.
	var (
		apiKey, appKey           Credential
		apiAttempts, appAttempts []Attempt
		apiOK, appOK             bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		apiKey, apiAttempts, apiOK = r.resolveField(gctx, "API key", []probe{
			{source: r.env, key: EnvAPIKey},
			{source: r.vault, key: r.cfg.APIKeySecret, extract: []string{"DD_API_KEY", "api_key"}},
		})
		return nil
	})
	g.Go(func() error {
		appKey, appAttempts, appOK = r.resolveField(gctx, "app key", []probe{
			{source: r.env, key: EnvAppKey},
			{source: r.vault, key: r.cfg.AppKeySecret, extract: []string{"DD_APP_KEY", "app_key"}},
		})
		return nil
	})
	_ = g.Wait()
	attempts = append(attempts, apiAttempts...)
	attempts = append(attempts, appAttempts...)

	if apiOK && appOK {
		log.Debug("resolved API-key credentials",
			"api_key_source", apiKey.Source, "app_key_source", appKey.Source)
		return &APIKeyBundle{APIKey: apiKey, AppKey: appKey}, nil
	}

	return nil, &NoCredentialsError{Attempts: attempts}
}

// resolveField walks a field's precedence chain until a source yields a
// non-empty value. Every probe outcome is recorded: on total failure the
// caller needs the full list, not just the first miss.
func (r *Resolver) resolveField(ctx context.Context, field string, probes []probe) (Credential, []Attempt, bool) {
	var attempts []Attempt
	for _, p := range probes {
		value, err := p.source.Resolve(ctx, p.key)
		if err != nil {
			attempts = append(attempts, Attempt{Field: field, Source: p.source.Name(), Key: p.key, Err: err})
			continue
		}
		if len(p.extract) > 0 {
			value = secrets.ExtractValue(value, p.extract...)
		}
		if value == "" {
			// A present-but-empty value is equivalent to absent.
			attempts = append(attempts, Attempt{
				Field: field, Source: p.source.Name(), Key: p.key,
				Err: &secrets.NotFoundError{Source: p.source.Name(), Key: p.key},
			})
			continue
		}
		return Credential{Value: value, Key: p.key, Source: p.source.Name()}, attempts, true
	}
	return Credential{}, attempts, false
}
