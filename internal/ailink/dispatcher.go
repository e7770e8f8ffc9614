package ailink

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fulmenhq/gofulmen/logging"
	"go.uber.org/zap"

	"github.com/unpackhq/unpack/internal/ailink/driver"
	"github.com/unpackhq/unpack/internal/ailink/prompt"
)

// Result is a successful simplification.
type Result struct {
	Text     string
	Provider ProviderID
	Model    string
	Usage    *driver.Usage
	Latency  time.Duration
}

// Dispatcher sends text to one of the configured providers using the shared
// simplify prompt. Each call is a single round trip.
type Dispatcher struct {
	Providers *Registry
	Prompts   prompt.Registry
	Logger    *logging.Logger

	defaultProvider ProviderID
	timeout         time.Duration
}

// NewDispatcher wires a dispatcher from configuration.
func NewDispatcher(cfg Config, prompts prompt.Registry, logger *logging.Logger) *Dispatcher {
	def, ok := ParseProvider(cfg.DefaultProvider)
	if !ok {
		def = ProviderAnthropic
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Dispatcher{
		Providers:       NewRegistry(cfg),
		Prompts:         prompts,
		Logger:          logger,
		defaultProvider: def,
		timeout:         timeout,
	}
}

// DefaultProvider returns the provider used for empty or unknown selectors.
func (d *Dispatcher) DefaultProvider() ProviderID {
	if d == nil || d.defaultProvider == "" {
		return ProviderAnthropic
	}
	return d.defaultProvider
}

// Resolve maps a free-form selector onto the provider set.
func (d *Dispatcher) Resolve(selector string) ProviderID {
	if id, ok := ParseProvider(selector); ok {
		return id
	}
	return d.DefaultProvider()
}

// Model reports the model that would serve selector.
func (d *Dispatcher) Model(selector string) string {
	return d.Providers.Model(d.Resolve(selector))
}

// Simplify rewrites text with the provider chosen by selector.
func (d *Dispatcher) Simplify(ctx context.Context, text, selector string) (*Result, error) {
	if d == nil || d.Providers == nil {
		return nil, errors.New("ailink dispatcher not configured")
	}
	if d.Prompts == nil {
		return nil, errors.New("ailink prompt registry not configured")
	}

	promptDef, err := d.Prompts.Get(prompt.SlugSimplify)
	if err != nil {
		return nil, err
	}
	rendered, err := promptDef.Render(map[string]string{"text": text})
	if err != nil {
		return nil, err
	}

	id := d.Resolve(selector)
	resolved, err := d.Providers.Resolve(id)
	if err != nil {
		return nil, err
	}

	req := &driver.Request{
		Model:      resolved.Model,
		System:     rendered.System,
		Messages:   []driver.Message{{Role: "user", Content: rendered.User}},
		MaxTokens:  resolved.MaxTokens,
		PromptSlug: promptDef.Config.Slug,
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	d.info("Simplifying with provider",
		zap.String("provider", id.String()),
		zap.String("model", resolved.Model),
		zap.Int("chars", len([]rune(text))),
	)

	start := time.Now()
	resp, err := resolved.Driver.Complete(ctx, req)
	latency := time.Since(start)
	if err != nil {
		if ctx.Err() != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
		}
		return nil, fmt.Errorf("%s: %w", id, err)
	}

	if strings.TrimSpace(resp.Text) == "" {
		return nil, fmt.Errorf("%s: empty response content", id)
	}

	d.debug("Provider call completed",
		zap.String("provider", id.String()),
		zap.String("model", resolved.Model),
		zap.Duration("latency", latency),
	)

	return &Result{
		Text:     resp.Text,
		Provider: id,
		Model:    resolved.Model,
		Usage:    resp.Usage,
		Latency:  latency,
	}, nil
}

func (d *Dispatcher) info(msg string, fields ...zap.Field) {
	if d.Logger != nil {
		d.Logger.Info(msg, fields...)
	}
}

func (d *Dispatcher) debug(msg string, fields ...zap.Field) {
	if d.Logger != nil {
		d.Logger.Debug(msg, fields...)
	}
}
