package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BACKEND_API_URL", "http://backend:8080/api/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://backend:8080/api", cfg.APIURL)
	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, []string{"/dashboard", "/assignments", "/my-submissions"}, cfg.ProtectedPrefixes)
	assert.Equal(t, time.Duration(0), cfg.BackendTimeout)
	assert.Equal(t, "@every 1m", cfg.HealthCheckSchedule)
	assert.Empty(t, cfg.JWKSURL)
}

func TestLoadFallsBackToPublicAPIURL(t *testing.T) {
	t.Setenv("BACKEND_API_URL", "")
	t.Setenv("NEXT_PUBLIC_API_URL", "http://localhost:8080/api")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/api", cfg.APIURL)
}

func TestLoadRequiresAPIURL(t *testing.T) {
	t.Setenv("BACKEND_API_URL", "")
	t.Setenv("NEXT_PUBLIC_API_URL", "")

	_, err := Load()
	assert.ErrorIs(t, err, ErrMissingAPIURL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("BACKEND_API_URL", "http://backend")
	t.Setenv("APP_ENV", "production")
	t.Setenv("GATE_PROTECTED_PREFIXES", " /dashboard , ,/class ")
	t.Setenv("BACKEND_TIMEOUT", "15s")
	t.Setenv("PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, []string{"/dashboard", "/class"}, cfg.ProtectedPrefixes)
	assert.Equal(t, 15*time.Second, cfg.BackendTimeout)
	assert.Equal(t, "9090", cfg.Port)
}
