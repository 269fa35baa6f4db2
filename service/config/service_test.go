package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	want := DefaultConfig()
	assert.Equal(t, want.LogLevel, cfg.LogLevel)
	assert.Equal(t, want.Concurrency, cfg.Concurrency)
	assert.Equal(t, want.API.BaseURL, cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yamlText := `
log_level: debug
verbose: true
concurrency: 2
api:
  base_url: "http://localhost:9000"
  api_key: "secret"
  timeout: 5s
aws:
  profile: billing
`
	require.NoError(t, os.WriteFile(path, []byte(yamlText), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, 2, cfg.Concurrency)
	assert.Equal(t, "http://localhost:9000", cfg.API.BaseURL)
	assert.Equal(t, "secret", cfg.API.APIKey)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, "billing", cfg.AWS.Profile)
	assert.Equal(t, "us-east-1", cfg.AWS.Region, "unset keys keep defaults")
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("RECEIPT_PARSER_API_API_KEY", "from-env")
	t.Setenv("RECEIPT_PARSER_SERVER_PORT", "9191")

	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.API.APIKey)
	assert.Equal(t, 9191, cfg.Server.Port)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api: [unterminated"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestWriteDefaultRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, WriteDefault(path))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	assert.Error(t, WriteDefault(path), "existing file is not overwritten")
}

func TestSetValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, WriteDefault(path))

	svc, err := NewService(path)
	require.NoError(t, err)

	require.NoError(t, svc.SetValue("api.base_url", "http://example.test"))
	require.NoError(t, svc.SetValue("concurrency", "12"))
	assert.Equal(t, "http://example.test", svc.Get().API.BaseURL)
	assert.Equal(t, 12, svc.Get().Concurrency)

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://example.test", reloaded.API.BaseURL)
	assert.Equal(t, 12, reloaded.Concurrency)

	assert.Error(t, svc.SetValue("no.such.key", "x"))
}

func TestSetValueKeepsEnvOverridesOutOfFile(t *testing.T) {
	t.Setenv("RECEIPT_PARSER_API_API_KEY", "sk_secret_from_env")
	t.Setenv("RECEIPT_PARSER_AWS_SECRET_ACCESS_KEY", "aws_secret_from_env")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, WriteDefault(path))

	svc, err := NewService(path)
	require.NoError(t, err)
	require.NoError(t, svc.SetValue("server.port", "9090"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "sk_secret_from_env")
	assert.NotContains(t, string(raw), "aws_secret_from_env")
	assert.Contains(t, string(raw), "port: 9090")

	assert.Equal(t, "sk_secret_from_env", svc.Get().API.APIKey, "env still applies to the loaded config")
	assert.Equal(t, 9090, svc.Get().Server.Port)
}

func TestLogJSONKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_json: true\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.LogJSON)
}
