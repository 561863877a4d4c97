package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/lead-dashboard/internal/config"
	"github.com/stretchr/testify/require"
)

const testConfigYAML = `
server:
  port: "9090"
  app_name: File Dashboard
  allowed_origins:
    - https://dash.example.com
    - https://ops.example.com
backend:
  url: http://backend.internal:8080
  timeout: 3s
session:
  store: sqlite
  sqlite_path: /tmp/sessions.db
  max_age: 12h
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestNew_Defaults(t *testing.T) {
	c := config.New()

	require.Equal(t, ":8080", c.GetPort())
	require.Equal(t, "DEV", c.GetEnv())
	require.Equal(t, 5*time.Second, c.GetBackendTimeout())
	require.Equal(t, config.SessionStoreMemory, c.GetSessionStore())
	require.True(t, c.GetAllowedOrigins().IsAllowedOrigin("http://localhost:5173"))
}

func TestLoad_FileValues(t *testing.T) {
	c, err := config.Load(writeConfig(t, testConfigYAML))
	require.NoError(t, err)

	require.Equal(t, ":9090", c.GetPort())
	require.Equal(t, "File Dashboard", c.GetAppName())
	require.Equal(t, "http://backend.internal:8080", c.GetBackendURL())
	require.Equal(t, 3*time.Second, c.GetBackendTimeout())
	require.Equal(t, config.SessionStoreSQLite, c.GetSessionStore())
	require.Equal(t, "/tmp/sessions.db", c.GetSQLitePath())
	require.Equal(t, 12*time.Hour, c.GetSessionMaxAge())

	origins := c.GetAllowedOrigins()
	require.True(t, origins.IsAllowedOrigin("https://dash.example.com"))
	require.True(t, origins.IsAllowedOrigin("https://ops.example.com"))
	require.False(t, origins.IsAllowedOrigin("http://localhost:5173"))
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("BACKEND_URL", "http://override:1234")
	t.Setenv("BACKEND_TIMEOUT", "750ms")

	c, err := config.Load(writeConfig(t, testConfigYAML))
	require.NoError(t, err)

	require.Equal(t, "http://override:1234", c.GetBackendURL())
	require.Equal(t, 750*time.Millisecond, c.GetBackendTimeout())
}

func TestLoad_InvalidDurationFallsBack(t *testing.T) {
	t.Setenv("BACKEND_TIMEOUT", "soon")

	c := config.New()
	require.Equal(t, 5*time.Second, c.GetBackendTimeout())
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := config.Load(writeConfig(t, "server: [unterminated"))
		require.Error(t, err)
	})

	t.Run("empty path", func(t *testing.T) {
		c, err := config.Load("")
		require.NoError(t, err)
		require.NotNil(t, c)
	})
}
