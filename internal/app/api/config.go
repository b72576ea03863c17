// Package api bootstraps the HTTP process: configuration, observability,
// storage selection, and the wiring of both bounded contexts.
package api

import (
	"os"
	"strings"
)

// Config carries the process-level settings sourced from the environment.
type Config struct {
	Port              string
	PostgresDSN       string
	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool

	// IdentityProviderURL points at the external token introspection
	// endpoint. When empty, AuthStaticTokens supplies a development verifier.
	IdentityProviderURL string
	AuthStaticTokens    string
}

// LoadConfig reads the environment into a Config with defaults applied.
func LoadConfig() Config {
	return Config{
		Port:                envOrDefault("PORT", "8080"),
		PostgresDSN:         strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		TemporalAddress:     strings.TrimSpace(os.Getenv("TEMPORAL_ADDRESS")),
		TemporalNamespace:   strings.TrimSpace(os.Getenv("TEMPORAL_NAMESPACE")),
		TemporalDisabled:    os.Getenv("TEMPORAL_DISABLED") == "1",
		IdentityProviderURL: strings.TrimSpace(os.Getenv("IDENTITY_PROVIDER_URL")),
		AuthStaticTokens:    strings.TrimSpace(os.Getenv("AUTH_STATIC_TOKENS")),
	}
}

// Addr formats the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

func envOrDefault(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}
