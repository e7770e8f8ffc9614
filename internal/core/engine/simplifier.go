package engine

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/unpackhq/unpack/internal/ailink"
	"github.com/unpackhq/unpack/internal/core"
	"github.com/unpackhq/unpack/internal/core/store"
	"github.com/unpackhq/unpack/internal/metrics"
	"github.com/unpackhq/unpack/internal/observability"
)

// Dispatcher sends validated text to a provider.
type Dispatcher interface {
	Simplify(ctx context.Context, text, selector string) (*ailink.Result, error)
	Resolve(selector string) ailink.ProviderID
	Model(selector string) string
}

// Cache stores finished rewrites keyed by provider, model and text.
type Cache interface {
	GetSimplification(ctx context.Context, key string) (*core.CachedSimplification, error)
	PutSimplification(ctx context.Context, key, provider, model, simplified string, ttl time.Duration) error
}

// Simplifier validates input, consults the optional cache and dispatches to
// a provider.
type Simplifier struct {
	Dispatcher Dispatcher
	Cache      Cache
	CacheTTL   time.Duration
}

// NewSimplifier builds a simplifier. A nil cache disables caching.
func NewSimplifier(d Dispatcher, cache Cache, ttl time.Duration) *Simplifier {
	return &Simplifier{Dispatcher: d, Cache: cache, CacheTTL: ttl}
}

// Simplify runs one request through validation, the cache and the provider.
// Validation failures are *core.InputError and happen before any external
// call. Provider errors are returned unchanged for ailink.ClassifyError.
func (s *Simplifier) Simplify(ctx context.Context, req core.SimplifyRequest) (*core.Simplification, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	text, err := core.ValidateText(req.Text)
	if err != nil {
		return nil, err
	}
	if s == nil || s.Dispatcher == nil {
		return nil, errors.New("simplifier not configured")
	}

	provider := s.Dispatcher.Resolve(req.Provider)
	model := s.Dispatcher.Model(req.Provider)
	key := store.CacheKey(provider.String(), model, text)

	if cached := s.lookup(ctx, key); cached != nil {
		createdAt := cached.CreatedAt
		return &core.Simplification{
			Original:   text,
			Simplified: cached.Simplified,
			Provider:   cached.Provider,
			Model:      cached.Model,
			FromCache:  true,
			CachedAt:   &createdAt,
		}, nil
	}

	start := time.Now()
	result, err := s.Dispatcher.Simplify(ctx, text, req.Provider)
	duration := time.Since(start)
	if err != nil {
		metrics.RecordSimplification(provider.String(), outcomeFor(err), duration)
		return nil, err
	}
	metrics.RecordSimplification(result.Provider.String(), metrics.OutcomeSuccess, duration)

	s.store(ctx, key, result)

	return &core.Simplification{
		Original:   text,
		Simplified: result.Text,
		Provider:   result.Provider.String(),
		Model:      result.Model,
	}, nil
}

func (s *Simplifier) lookup(ctx context.Context, key string) *core.CachedSimplification {
	if s.Cache == nil || s.CacheTTL <= 0 {
		return nil
	}
	cached, err := s.Cache.GetSimplification(ctx, key)
	if err != nil {
		warn("Cache lookup failed", zap.Error(err))
		return nil
	}
	metrics.RecordCacheLookup(cached != nil)
	return cached
}

func (s *Simplifier) store(ctx context.Context, key string, result *ailink.Result) {
	if s.Cache == nil || s.CacheTTL <= 0 {
		return
	}
	err := s.Cache.PutSimplification(ctx, key, result.Provider.String(), result.Model, result.Text, s.CacheTTL)
	if err != nil {
		warn("Cache write failed", zap.Error(err))
	}
}

func outcomeFor(err error) string {
	switch ailink.ClassifyError(err) {
	case ailink.Busy:
		return metrics.OutcomeBusy
	case ailink.Timeout:
		return metrics.OutcomeTimeout
	default:
		return metrics.OutcomeFailure
	}
}

func warn(msg string, fields ...zap.Field) {
	if logger := observability.Logger(); logger != nil {
		logger.Warn(msg, fields...)
	}
}
