package ailink

import "time"

// Config is the ailink subtree of the application configuration.
type Config struct {
	// DefaultProvider is used when a request names no provider or an unknown one.
	DefaultProvider string        `mapstructure:"default_provider"`
	Timeout         time.Duration `mapstructure:"timeout"`

	// PromptsDir overrides embedded prompts by slug when set.
	PromptsDir string `mapstructure:"prompts_dir"`

	Providers map[string]ProviderConfig `mapstructure:"providers"`
}

// ProviderConfig configures one backend of the closed provider set.
type ProviderConfig struct {
	APIKey    string `mapstructure:"api_key"`
	BaseURL   string `mapstructure:"base_url"`
	Model     string `mapstructure:"model"`
	MaxTokens int    `mapstructure:"max_tokens"`
}

const (
	DefaultTimeout        = 60 * time.Second
	DefaultAnthropicModel = "claude-sonnet-4-20250514"
	DefaultGeminiModel    = "gemini-3.0-pro"
	DefaultMaxTokens      = 4096
)
