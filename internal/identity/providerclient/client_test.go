package providerclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawhaven/adoption-api/internal/identity"
)

func newProviderStub(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Config{BaseURL: server.URL})
}

func TestVerify_ActiveToken(t *testing.T) {
	client := newProviderStub(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/tokens/introspect", r.URL.Path)
		var body struct {
			Token string `json:"token"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "good-token", body.Token)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"active": true,
			"sub":    "alice",
			"roles":  []string{"adopter", "admin"},
		})
	})

	principal, err := client.Verify(context.Background(), "good-token")
	require.NoError(t, err)
	assert.Equal(t, "alice", principal.UserID)
	assert.True(t, principal.IsAdmin())
}

func TestVerify_InactiveToken(t *testing.T) {
	client := newProviderStub(t, func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"active": false})
	})

	_, err := client.Verify(context.Background(), "revoked-token")
	assert.ErrorIs(t, err, identity.ErrUnauthenticated)
}

func TestVerify_RejectedToken(t *testing.T) {
	client := newProviderStub(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.Verify(context.Background(), "ghost-token")
	assert.ErrorIs(t, err, identity.ErrUnauthenticated)
}

func TestVerify_UpstreamFailure(t *testing.T) {
	client := newProviderStub(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.Verify(context.Background(), "any-token")
	assert.ErrorIs(t, err, ErrUpstream)
	assert.NotErrorIs(t, err, identity.ErrUnauthenticated)
}

func TestVerify_EmptyToken(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://identity.invalid"})
	_, err := client.Verify(context.Background(), "  ")
	assert.ErrorIs(t, err, identity.ErrUnauthenticated)
}

func TestVerify_NotConfigured(t *testing.T) {
	client := NewClient(Config{})
	assert.False(t, client.IsConfigured())
	_, err := client.Verify(context.Background(), "token")
	assert.ErrorIs(t, err, ErrUpstream)
}
