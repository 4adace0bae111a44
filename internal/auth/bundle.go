// Package auth resolves Datadog credentials from the configured sources
// and maps them onto outbound request headers.
package auth

// Scheme identifies an authentication scheme. The two schemes are
// mutually exclusive: a request carries either a session cookie pair or
// an API-key pair, never both.
type Scheme string

const (
	SchemeCookie Scheme = "cookie"
	SchemeAPIKey Scheme = "api-key"
)

// Credential is a resolved value together with where it came from.
// Immutable once constructed.
type Credential struct {
	Value  string
	Key    string // identifier within the source: env var name, file path, or secret path
	Source string // source tag: env, file, aws-secrets-manager
}

// Bundle is a complete, internally consistent credential set for exactly
// one scheme. Partial bundles are never returned: the resolver either
// produces a fully populated variant or fails.
type Bundle interface {
	Scheme() Scheme
}

// CookieBundle carries session-cookie authentication: the raw cookie
// string and its CSRF token.
type CookieBundle struct {
	Cookie    Credential
	CSRFToken Credential
}

// Scheme returns SchemeCookie.
func (*CookieBundle) Scheme() Scheme { return SchemeCookie }

// APIKeyBundle carries API-key authentication: the API key and the
// application key.
type APIKeyBundle struct {
	APIKey Credential
	AppKey Credential
}

// Scheme returns SchemeAPIKey.
func (*APIKeyBundle) Scheme() Scheme { return SchemeAPIKey }
