package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("TEMPORAL_DISABLED", "")

	cfg := LoadConfig()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Empty(t, cfg.PostgresDSN)
	assert.False(t, cfg.TemporalDisabled)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("POSTGRES_DSN", "host=db user=app dbname=pawhaven")
	t.Setenv("TEMPORAL_DISABLED", "1")
	t.Setenv("IDENTITY_PROVIDER_URL", "https://id.example.com")
	t.Setenv("AUTH_STATIC_TOKENS", "tok:alice,admin-tok:root:admin")

	cfg := LoadConfig()
	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, "host=db user=app dbname=pawhaven", cfg.PostgresDSN)
	assert.True(t, cfg.TemporalDisabled)
	assert.Equal(t, "https://id.example.com", cfg.IdentityProviderURL)
	assert.NotEmpty(t, cfg.AuthStaticTokens)
}
