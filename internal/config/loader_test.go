package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestViper(t *testing.T) *viper.Viper {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	require.NoError(t, BindEnv(v, "UNPACK_"))
	return v
}

func clearVendorEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"PORT", "LLM_PROVIDER", "ANTHROPIC_API_KEY", "ANTHROPIC_MODEL",
		"GEMINI_API_KEY", "GEMINI_MODEL", "UNPACK_SERVER_PORT", "UNPACK_LLM_PROVIDER",
	} {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
}

func TestLoadDefaults(t *testing.T) {
	clearVendorEnv(t)
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	cfg, err := Load(newTestViper(t))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.EqualValues(t, 51200, cfg.Server.MaxBodyBytes)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.False(t, cfg.Server.TrustProxy)

	assert.Equal(t, 30, cfg.RateLimit.Requests)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, 5*time.Minute, cfg.RateLimit.SweepInterval)

	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, []string{"POST"}, cfg.CORS.AllowedMethods)

	assert.Equal(t, "anthropic", cfg.AILink.DefaultProvider)
	assert.Equal(t, 60*time.Second, cfg.AILink.Timeout)
	assert.Equal(t, "claude-sonnet-4-20250514", cfg.AILink.Providers["anthropic"].Model)
	assert.Equal(t, "gemini-3.0-pro", cfg.AILink.Providers["gemini"].Model)
	assert.Equal(t, 4096, cfg.AILink.Providers["anthropic"].MaxTokens)

	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, "libsql", cfg.Store.Driver)
	assert.Equal(t, "unpack.db", filepath.Base(cfg.Store.Path))

	assert.Equal(t, "http://localhost:3000", cfg.Client.URL)
	assert.Equal(t, 9090, cfg.Metrics.Port)
	assert.Same(t, cfg, GetConfig())
}

func TestLoadVendorEnvNames(t *testing.T) {
	clearVendorEnv(t)
	t.Setenv("PORT", "8081")
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("GEMINI_MODEL", "gemini-custom")

	cfg, err := Load(newTestViper(t))
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, "gemini", cfg.AILink.DefaultProvider)
	assert.Equal(t, "sk-ant", cfg.AILink.Providers["anthropic"].APIKey)
	assert.Equal(t, "g-key", cfg.AILink.Providers["gemini"].APIKey)
	assert.Equal(t, "gemini-custom", cfg.AILink.Providers["gemini"].Model)
}

func TestLoadPrefixedEnvWins(t *testing.T) {
	clearVendorEnv(t)
	t.Setenv("PORT", "8081")
	t.Setenv("UNPACK_SERVER_PORT", "9000")
	t.Setenv("UNPACK_RATE_LIMIT_REQUESTS", "5")
	t.Setenv("UNPACK_CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("UNPACK_CACHE_ENABLED", "true")
	t.Setenv("UNPACK_CACHE_TTL", "2h")

	cfg, err := Load(newTestViper(t))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 5, cfg.RateLimit.Requests)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 2*time.Hour, cfg.Cache.TTL)
}

func TestLoadConfigFile(t *testing.T) {
	clearVendorEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 4000
  trust_proxy: true
rate_limit:
  window: 30s
ailink:
  default_provider: gemini
  timeout: 15s
store:
  url: libsql://example.turso.io
`), 0o600))

	v := newTestViper(t)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.Server.Port)
	assert.True(t, cfg.Server.TrustProxy)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)
	assert.Equal(t, "gemini", cfg.AILink.DefaultProvider)
	assert.Equal(t, 15*time.Second, cfg.AILink.Timeout)
	assert.Equal(t, "", cfg.Store.Path, "url takes the place of the default path")
}

func TestValidate(t *testing.T) {
	clearVendorEnv(t)
	v := newTestViper(t)
	v.Set("server.port", 0)
	v.Set("rate_limit.requests", -1)
	v.Set("cache.enabled", true)
	v.Set("cache.ttl", "0s")

	_, err := Load(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")
	assert.Contains(t, err.Error(), "rate_limit.requests")
	assert.Contains(t, err.Error(), "cache.ttl")
}

func TestShutdownTimeoutFloor(t *testing.T) {
	var cfg *Config
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout())
	cfg = &Config{Server: ServerConfig{ShutdownTimeout: 3 * time.Second}}
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout())
}

func TestDefaultConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	path := DefaultConfigPath()
	assert.Equal(t, "config.yaml", filepath.Base(path))
}
