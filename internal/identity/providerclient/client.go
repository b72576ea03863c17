// Package providerclient implements the identity.Verifier port against the
// external identity provider's token introspection endpoint.
package providerclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pawhaven/adoption-api/internal/identity"
)

// ErrUpstream signals the provider could not be reached or misbehaved.
var ErrUpstream = errors.New("identity provider upstream error")

const introspectPath = "/v1/tokens/introspect"

// DefaultTimeout bounds each introspection round trip.
const DefaultTimeout = 5 * time.Second

var _ identity.Verifier = (*Client)(nil)

// Config carries the provider endpoint settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client calls the identity provider over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a provider client. The base URL is required.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// IsConfigured reports whether the client has an endpoint to talk to.
func (c *Client) IsConfigured() bool {
	return c != nil && c.baseURL != ""
}

type introspectRequest struct {
	Token string `json:"token"`
}

type introspectResponse struct {
	Active bool     `json:"active"`
	Sub    string   `json:"sub"`
	Roles  []string `json:"roles"`
}

// Verify introspects the token and maps the response onto a Principal.
// Inactive or rejected tokens surface identity.ErrUnauthenticated.
func (c *Client) Verify(ctx context.Context, token string) (identity.Principal, error) {
	if !c.IsConfigured() {
		return identity.Principal{}, fmt.Errorf("%w: client not configured", ErrUpstream)
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return identity.Principal{}, identity.ErrUnauthenticated
	}

	body, err := json.Marshal(introspectRequest{Token: token})
	if err != nil {
		return identity.Principal{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+introspectPath, bytes.NewReader(body))
	if err != nil {
		return identity.Principal{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return identity.Principal{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return identity.Principal{}, identity.ErrUnauthenticated
	default:
		return identity.Principal{}, fmt.Errorf("%w: status=%d", ErrUpstream, resp.StatusCode)
	}

	var out introspectResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return identity.Principal{}, fmt.Errorf("%w: invalid json: %v", ErrUpstream, err)
	}
	if !out.Active || out.Sub == "" {
		return identity.Principal{}, identity.ErrUnauthenticated
	}
	return identity.Principal{UserID: out.Sub, Roles: out.Roles}, nil
}
