package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/unpackhq/unpack/internal/core"
)

// CacheKey identifies a rewrite of text by one provider model.
func CacheKey(provider, model, text string) string {
	sum := sha256.Sum256([]byte(provider + "\x00" + model + "\x00" + text))
	return hex.EncodeToString(sum[:])
}

// GetSimplification returns a live cache entry or nil.
func (s *Store) GetSimplification(ctx context.Context, key string) (*core.CachedSimplification, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	row := s.DB.QueryRowContext(ctx,
		`SELECT cache_key, provider, model, simplified, created_at, expires_at
		 FROM simplify_cache WHERE cache_key = ?`, key)

	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if s.now().After(entry.ExpiresAt) {
		return nil, nil
	}
	return entry, nil
}

// PutSimplification upserts a rewrite with the given TTL. A non-positive TTL
// stores nothing.
func (s *Store) PutSimplification(ctx context.Context, key, provider, model, simplified string, ttl time.Duration) error {
	if err := s.ready(); err != nil {
		return err
	}
	if ttl <= 0 {
		return nil
	}

	now := s.now()
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO simplify_cache (cache_key, provider, model, simplified, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(cache_key)
		 DO UPDATE SET provider = excluded.provider,
		               model = excluded.model,
		               simplified = excluded.simplified,
		               created_at = excluded.created_at,
		               expires_at = excluded.expires_at`,
		key, provider, model, simplified, now.Unix(), now.Add(ttl).Unix(),
	)
	if err != nil {
		return fmt.Errorf("store simplification: %w", err)
	}
	return nil
}

// ListSimplifications returns entries newest first, at most limit when
// limit is positive.
func (s *Store) ListSimplifications(ctx context.Context, limit int) ([]core.CachedSimplification, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	query := `SELECT cache_key, provider, model, simplified, created_at, expires_at
		FROM simplify_cache ORDER BY created_at DESC, cache_key`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list simplifications: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup on SQL rows

	var out []core.CachedSimplification
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *entry)
	}
	return out, rows.Err()
}

// PurgeSimplifications deletes cached entries. With expiredOnly it removes
// only entries past their expiry.
func (s *Store) PurgeSimplifications(ctx context.Context, expiredOnly bool) (int64, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	var (
		res sql.Result
		err error
	)
	if expiredOnly {
		res, err = s.DB.ExecContext(ctx, `DELETE FROM simplify_cache WHERE expires_at < ?`, s.now().Unix())
	} else {
		res, err = s.DB.ExecContext(ctx, `DELETE FROM simplify_cache`)
	}
	if err != nil {
		return 0, fmt.Errorf("purge simplifications: %w", err)
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*core.CachedSimplification, error) {
	var (
		entry            core.CachedSimplification
		created, expires int64
	)
	if err := row.Scan(&entry.Key, &entry.Provider, &entry.Model, &entry.Simplified, &created, &expires); err != nil {
		return nil, err
	}
	entry.CreatedAt = time.Unix(created, 0).UTC()
	entry.ExpiresAt = time.Unix(expires, 0).UTC()
	return &entry, nil
}
