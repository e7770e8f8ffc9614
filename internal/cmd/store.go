package cmd

import (
	"context"

	"github.com/unpackhq/unpack/internal/config"
	"github.com/unpackhq/unpack/internal/core/store"
)

// openStore opens the cache database and applies migrations.
func openStore(ctx context.Context, cfg *config.Config) (*store.Store, error) {
	db, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}
