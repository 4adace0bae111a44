// Package datadog is a thin HTTP wrapper over the Datadog API. Every call
// resolves credentials fresh through the auth resolver, so rotated
// cookies, env vars, and vault secrets take effect without a restart.
package datadog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cobalt-robotics/datadog-mcp/internal/auth"
	"github.com/cobalt-robotics/datadog-mcp/internal/log"
)

const requestTimeout = 30 * time.Second

// maxErrorBody bounds how much of an error response is carried in an
// APIError.
const maxErrorBody = 2048

// Client calls the Datadog API with per-request credential resolution.
type Client struct {
	resolver *auth.Resolver
	builder  *auth.RequestBuilder
	httpc    *http.Client
}

// NewClient creates a client over the given resolver and request builder.
func NewClient(resolver *auth.Resolver, builder *auth.RequestBuilder) *Client {
	return &Client{
		resolver: resolver,
		builder:  builder,
		httpc:    &http.Client{Timeout: requestTimeout},
	}
}

// APIError is a non-2xx response from the Datadog API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("datadog API returned %d: %s", e.StatusCode, e.Body)
}

func (c *Client) get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, path, query, nil)
}

func (c *Client) post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, path, nil, body)
}

// do resolves credentials, builds the request against the endpoint for the
// resolved scheme, and returns the raw response body.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (json.RawMessage, error) {
	bundle, err := c.resolver.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	u := c.builder.BaseURL(bundle) + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	c.builder.Apply(req, bundle)

	log.Debug("datadog API request", "method", method, "path", path, "scheme", string(bundle.Scheme()))

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling datadog API: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		errBody := string(data)
		if len(errBody) > maxErrorBody {
			errBody = errBody[:maxErrorBody]
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Body: errBody}
	}

	return json.RawMessage(data), nil
}
