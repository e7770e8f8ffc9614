package cmd

import (
	"context"
	"fmt"

	"github.com/fulmenhq/gofulmen/logging"
	"go.uber.org/zap"

	"github.com/unpackhq/unpack/internal/ailink"
	"github.com/unpackhq/unpack/internal/ailink/prompt"
	"github.com/unpackhq/unpack/internal/config"
	"github.com/unpackhq/unpack/internal/core/engine"
	"github.com/unpackhq/unpack/internal/core/store"
)

// pipeline is the in-process simplification stack shared by serve,
// simplify --local and verify.
type pipeline struct {
	Dispatcher *ailink.Dispatcher
	Simplifier *engine.Simplifier
	Store      *store.Store
}

func (p *pipeline) Close() error {
	if p == nil || p.Store == nil {
		return nil
	}
	return p.Store.Close()
}

// buildPipeline loads prompts, wires the dispatcher and opens the cache
// store when caching is enabled.
func buildPipeline(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*pipeline, error) {
	prompts, err := prompt.NewRegistry(cfg.AILink.PromptsDir)
	if err != nil {
		return nil, fmt.Errorf("load prompts: %w", err)
	}

	p := &pipeline{
		Dispatcher: ailink.NewDispatcher(cfg.AILink, prompts, logger),
	}

	if cfg.Cache.Enabled {
		db, err := openStore(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("open cache store: %w", err)
		}
		p.Store = db
		if logger != nil {
			logger.Debug("Simplification cache enabled",
				zap.String("driver", db.Driver()),
				zap.Duration("ttl", cfg.Cache.TTL))
		}
	}

	if p.Store != nil {
		p.Simplifier = engine.NewSimplifier(p.Dispatcher, p.Store, cfg.Cache.TTL)
	} else {
		p.Simplifier = engine.NewSimplifier(p.Dispatcher, nil, 0)
	}
	return p, nil
}
