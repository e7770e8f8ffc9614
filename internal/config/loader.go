// Package config loads the typed application configuration from viper.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	gfconfig "github.com/fulmenhq/gofulmen/config"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/unpackhq/unpack/internal/ailink"
	"github.com/unpackhq/unpack/internal/appid"
)

var (
	appConfig *Config
	configMu  sync.RWMutex
)

// SetDefaults registers every default value on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.max_body_bytes", 50*1024)
	v.SetDefault("server.trust_proxy", false)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "90s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("rate_limit.requests", 30)
	v.SetDefault("rate_limit.window", "1m")
	v.SetDefault("rate_limit.sweep_interval", "5m")

	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"POST"})
	v.SetDefault("cors.allowed_headers", []string{"Content-Type"})

	v.SetDefault("ailink.default_provider", string(ailink.ProviderAnthropic))
	v.SetDefault("ailink.timeout", ailink.DefaultTimeout.String())
	v.SetDefault("ailink.prompts_dir", "")
	v.SetDefault("ailink.providers.anthropic.api_key", "")
	v.SetDefault("ailink.providers.anthropic.base_url", "https://api.anthropic.com")
	v.SetDefault("ailink.providers.anthropic.model", ailink.DefaultAnthropicModel)
	v.SetDefault("ailink.providers.anthropic.max_tokens", ailink.DefaultMaxTokens)
	v.SetDefault("ailink.providers.gemini.api_key", "")
	v.SetDefault("ailink.providers.gemini.base_url", "https://generativelanguage.googleapis.com")
	v.SetDefault("ailink.providers.gemini.model", ailink.DefaultGeminiModel)
	v.SetDefault("ailink.providers.gemini.max_tokens", 0)

	v.SetDefault("store.driver", "libsql")
	v.SetDefault("store.path", "")
	v.SetDefault("store.url", "")
	v.SetDefault("store.auth_token", "")

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.ttl", "24h")

	v.SetDefault("client.url", "http://localhost:3000")
	v.SetDefault("client.timeout", "90s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("health.enabled", true)
}

// BindEnv wires prefixed env vars (UNPACK_SERVER_PORT) for every key and
// the bare vendor names the deployment docs use (PORT, LLM_PROVIDER,
// ANTHROPIC_API_KEY and friends). The prefixed name wins when both are set.
func BindEnv(v *viper.Viper, prefix string) error {
	prefix = strings.TrimSuffix(strings.TrimSpace(prefix), "_")
	v.SetEnvPrefix(prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	p := func(name string) string { return prefix + "_" + name }
	bindings := map[string][]string{
		"server.port":                        {p("SERVER_PORT"), "PORT"},
		"server.host":                        {p("SERVER_HOST")},
		"ailink.default_provider":            {p("LLM_PROVIDER"), "LLM_PROVIDER"},
		"ailink.providers.anthropic.api_key": {p("ANTHROPIC_API_KEY"), "ANTHROPIC_API_KEY"},
		"ailink.providers.anthropic.model":   {p("ANTHROPIC_MODEL"), "ANTHROPIC_MODEL"},
		"ailink.providers.gemini.api_key":    {p("GEMINI_API_KEY"), "GEMINI_API_KEY"},
		"ailink.providers.gemini.model":      {p("GEMINI_MODEL"), "GEMINI_MODEL"},
		"client.url":                         {p("API_URL"), p("CLIENT_URL")},
		"store.path":                         {p("DB_PATH"), p("STORE_PATH")},
		"store.url":                          {p("DB_URL"), p("STORE_URL")},
		"store.auth_token":                   {p("DB_AUTH_TOKEN"), p("STORE_AUTH_TOKEN")},
		"logging.level":                      {p("LOG_LEVEL"), p("LOGGING_LEVEL")},
	}
	for key, names := range bindings {
		args := append([]string{key}, names...)
		if err := v.BindEnv(args...); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}
	return nil
}

// Load decodes the settings held by v into a validated Config and makes it
// the current configuration.
func Load(v *viper.Viper) (*Config, error) {
	cfg, err := Decode(v.AllSettings())
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.Store.URL) == "" && strings.TrimSpace(cfg.Store.Path) == "" {
		cfg.Store.Path = DefaultStorePath()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	setConfig(cfg)
	return cfg, nil
}

// Decode converts a raw settings tree into a Config.
func Decode(raw map[string]any) (*Config, error) {
	cfg := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
			mapstructure.StringToFloat64HookFunc(),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// Validate rejects values the server cannot run with.
func (c *Config) Validate() error {
	var problems []string
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.MaxBodyBytes <= 0 {
		problems = append(problems, "server.max_body_bytes must be positive")
	}
	if c.RateLimit.Requests <= 0 {
		problems = append(problems, "rate_limit.requests must be positive")
	}
	if c.RateLimit.Window <= 0 {
		problems = append(problems, "rate_limit.window must be positive")
	}
	if c.AILink.Timeout < 0 {
		problems = append(problems, "ailink.timeout must not be negative")
	}
	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		problems = append(problems, "cache.ttl must be positive when the cache is enabled")
	}
	if c.Metrics.Enabled && (c.Metrics.Port <= 0 || c.Metrics.Port > 65535) {
		problems = append(problems, fmt.Sprintf("metrics.port %d out of range", c.Metrics.Port))
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// ShutdownTimeout returns the configured grace period with a floor.
func (c *Config) ShutdownTimeout() time.Duration {
	if c == nil || c.Server.ShutdownTimeout <= 0 {
		return 10 * time.Second
	}
	return c.Server.ShutdownTimeout
}

// GetConfig returns the current application configuration (thread-safe)
func GetConfig() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return appConfig
}

func setConfig(cfg *Config) {
	configMu.Lock()
	defer configMu.Unlock()
	appConfig = cfg
}

// DefaultConfigDir returns the XDG config directory for the app.
func DefaultConfigDir() string {
	return gfconfig.GetAppConfigDir(appid.ConfigName)
}

// DefaultConfigPath returns the XDG-compliant path to the user config file.
func DefaultConfigPath() string {
	dir := DefaultConfigDir()
	if strings.TrimSpace(dir) == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// DefaultStorePath returns the XDG-compliant path to the cache database.
func DefaultStorePath() string {
	dataDir := gfconfig.GetAppDataDir(appid.ConfigName)
	if strings.TrimSpace(dataDir) == "" {
		return "./" + appid.BinaryName + ".db"
	}
	return filepath.Join(dataDir, appid.BinaryName+".db")
}
