package datadog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cobalt-robotics/datadog-mcp/internal/auth"
	"github.com/cobalt-robotics/datadog-mcp/internal/config"
	"github.com/cobalt-robotics/datadog-mcp/internal/secrets"
)

// newTestClient points both endpoints at the given server and isolates
// credential sources from host state.
func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()

	for _, key := range []string{auth.EnvCookie, auth.EnvCSRFToken, auth.EnvAPIKey, auth.EnvAppKey} {
		t.Setenv(key, "")
	}

	dir := t.TempDir()
	cfg := config.Default()
	cfg.CookieFile = filepath.Join(dir, "cookie")
	cfg.CSRFFile = filepath.Join(dir, "csrf_token")

	vault := secrets.NewVaultCache(unreachableVault{}, time.Minute)
	resolver := auth.NewResolver(cfg, vault)
	builder := auth.NewRequestBuilder(serverURL, serverURL)
	return NewClient(resolver, builder)
}

// unreachableVault simulates a vault that is never configured.
type unreachableVault struct{}

func (unreachableVault) Name() string { return "aws-secrets-manager" }

func (unreachableVault) Resolve(_ context.Context, key string) (string, error) {
	return "", &secrets.NotFoundError{Source: "aws-secrets-manager", Key: key}
}

func TestClientAttachesAPIKeyHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	t.Setenv(auth.EnvAPIKey, "k1")
	t.Setenv(auth.EnvAppKey, "k2")

	body, err := client.get(context.Background(), "/api/v1/validate", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))

	assert.Equal(t, "k1", got.Get(auth.HeaderAPIKey))
	assert.Equal(t, "k2", got.Get(auth.HeaderAppKey))
	assert.Empty(t, got.Get("Cookie"))
}

func TestClientAttachesCookieHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	t.Setenv(auth.EnvCookie, "dogweb=a; dogwebu=b")
	t.Setenv(auth.EnvCSRFToken, "tok")

	_, err := client.get(context.Background(), "/api/v1/validate", nil)
	require.NoError(t, err)

	assert.Equal(t, "dogweb=a; dogwebu=b", got.Get("Cookie"))
	assert.Equal(t, "tok", got.Get(auth.HeaderCSRFToken))
	assert.Empty(t, got.Get(auth.HeaderAPIKey))
}

func TestClientSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"errors":["Forbidden"]}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	t.Setenv(auth.EnvAPIKey, "k1")
	t.Setenv(auth.EnvAppKey, "k2")

	_, err := client.get(context.Background(), "/api/v1/monitor", nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "Forbidden")
}

func TestClientPropagatesNoCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request should be made without credentials")
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	_, err := client.get(context.Background(), "/api/v1/validate", nil)

	var noCreds *auth.NoCredentialsError
	assert.ErrorAs(t, err, &noCreds)
}

func TestClientResolvesPerRequest(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	t.Setenv(auth.EnvAPIKey, "k1")
	t.Setenv(auth.EnvAppKey, "k2")

	_, err := client.get(context.Background(), "/api/v1/validate", nil)
	require.NoError(t, err)
	assert.Equal(t, "k1", got.Get(auth.HeaderAPIKey))

	// Rotate the key between calls: the next request must carry it.
	t.Setenv(auth.EnvAPIKey, "k1-rotated")

	_, err = client.get(context.Background(), "/api/v1/validate", nil)
	require.NoError(t, err)
	assert.Equal(t, "k1-rotated", got.Get(auth.HeaderAPIKey))
}
