package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("FORMAB_DATABASE_URL", "file:formab.db")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "file:formab.db", cfg.Database.URL)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.False(t, cfg.OTel.Enabled)
	assert.Empty(t, cfg.HTTP.AdminTokens)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("FORMAB_DATABASE_URL", "libsql://db.turso.io")
	t.Setenv("FORMAB_DATABASE_AUTH_TOKEN", "secret")
	t.Setenv("FORMAB_HTTP_PORT", "9090")
	t.Setenv("FORMAB_HTTP_ADMIN_TOKENS", "alpha,beta")
	t.Setenv("FORMAB_LOG_LEVEL", "debug")
	t.Setenv("FORMAB_LOG_FORMAT", "console")
	t.Setenv("FORMAB_OTEL_ENABLED", "true")
	t.Setenv("FORMAB_OTEL_ENDPOINT", "localhost:4317")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.Database.AuthToken)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, []string{"alpha", "beta"}, cfg.HTTP.AdminTokens)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.True(t, cfg.OTel.Enabled)
	assert.Equal(t, "localhost:4317", cfg.OTel.Endpoint)
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	t.Setenv("FORMAB_DATABASE_URL", "")
	require.NoError(t, os.Unsetenv("FORMAB_DATABASE_URL"))

	_, err := Load()
	assert.Error(t, err)

	_, err = LoadDatabase()
	assert.Error(t, err)
}
