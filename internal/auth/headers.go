package auth

import "net/http"

// Datadog authentication headers.
const (
	HeaderAPIKey    = "DD-API-KEY"
	HeaderAppKey    = "DD-APPLICATION-KEY"
	HeaderCSRFToken = "x-csrf-token"
)

// RequestBuilder maps a resolved bundle onto outbound request headers and
// picks the endpoint for its scheme: session-cookie auth talks to the app
// host, API-key auth to the public API host. Values are attached verbatim;
// shape validation (non-empty) already happened during resolution.
type RequestBuilder struct {
	appURL string
	apiURL string
}

// NewRequestBuilder creates a builder with the given endpoints.
func NewRequestBuilder(appURL, apiURL string) *RequestBuilder {
	return &RequestBuilder{appURL: appURL, apiURL: apiURL}
}

// Headers returns the full header set for the bundle's scheme. Exactly one
// scheme's headers are present, plus Content-Type.
func (b *RequestBuilder) Headers(bundle Bundle) http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")

	switch v := bundle.(type) {
	case *CookieBundle:
		h.Set("Cookie", v.Cookie.Value)
		h.Set(HeaderCSRFToken, v.CSRFToken.Value)
	case *APIKeyBundle:
		h.Set(HeaderAPIKey, v.APIKey.Value)
		h.Set(HeaderAppKey, v.AppKey.Value)
	}

	return h
}

// BaseURL returns the endpoint for the bundle's scheme.
func (b *RequestBuilder) BaseURL(bundle Bundle) string {
	if bundle.Scheme() == SchemeCookie {
		return b.appURL
	}
	return b.apiURL
}

// Apply attaches the bundle's headers to req.
func (b *RequestBuilder) Apply(req *http.Request, bundle Bundle) {
	for key, values := range b.Headers(bundle) {
		for _, v := range values {
			req.Header.Set(key, v)
		}
	}
}
