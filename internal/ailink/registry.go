package ailink

import (
	"fmt"
	"strings"
	"sync"

	"github.com/unpackhq/unpack/internal/ailink/driver"
	"github.com/unpackhq/unpack/internal/ailink/driver/anthropic"
	"github.com/unpackhq/unpack/internal/ailink/driver/gemini"
)

// Registry builds one driver per provider and shares it across requests.
type Registry struct {
	cfg Config

	mu      sync.Mutex
	drivers map[ProviderID]driver.Driver
}

// ResolvedProvider is a ready-to-call backend.
type ResolvedProvider struct {
	ID        ProviderID
	Driver    driver.Driver
	Model     string
	MaxTokens int
}

func NewRegistry(cfg Config) *Registry {
	return &Registry{cfg: cfg}
}

// Resolve returns the driver and model for id.
func (r *Registry) Resolve(id ProviderID) (*ResolvedProvider, error) {
	if r == nil {
		return nil, fmt.Errorf("ailink registry not configured")
	}
	providerCfg := r.providerConfig(id)

	drv, err := r.driverFor(id, providerCfg)
	if err != nil {
		return nil, err
	}

	maxTokens := providerCfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	return &ResolvedProvider{
		ID:        id,
		Driver:    drv,
		Model:     r.Model(id),
		MaxTokens: maxTokens,
	}, nil
}

// Model returns the configured model for id, or the built-in default.
func (r *Registry) Model(id ProviderID) string {
	if model := strings.TrimSpace(r.providerConfig(id).Model); model != "" {
		return model
	}
	switch id {
	case ProviderGemini:
		return DefaultGeminiModel
	default:
		return DefaultAnthropicModel
	}
}

// HasCredentials reports whether an API key is configured for id.
func (r *Registry) HasCredentials(id ProviderID) bool {
	return strings.TrimSpace(r.providerConfig(id).APIKey) != ""
}

func (r *Registry) providerConfig(id ProviderID) ProviderConfig {
	if r == nil || r.cfg.Providers == nil {
		return ProviderConfig{}
	}
	return r.cfg.Providers[string(id)]
}

func (r *Registry) driverFor(id ProviderID, providerCfg ProviderConfig) (driver.Driver, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.drivers == nil {
		r.drivers = map[ProviderID]driver.Driver{}
	}
	if drv, ok := r.drivers[id]; ok {
		return drv, nil
	}

	var drv driver.Driver
	switch id {
	case ProviderAnthropic:
		drv = anthropic.NewClient(providerCfg.BaseURL, providerCfg.APIKey)
	case ProviderGemini:
		drv = gemini.NewClient(providerCfg.BaseURL, providerCfg.APIKey)
	default:
		return nil, fmt.Errorf("unsupported provider %q", id)
	}
	r.drivers[id] = drv
	return drv, nil
}
