//go:build cgo

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unpackhq/unpack/internal/config"
)

func openTestStore(t *testing.T) (*Store, *time.Time) {
	t.Helper()
	st, err := Open(context.Background(), config.StoreConfig{
		Driver: "libsql",
		Path:   filepath.Join(t.TempDir(), "unpack.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	st.Clock = func() time.Time { return now }
	require.NoError(t, st.Migrate(context.Background()))
	return st, &now
}

func TestMigrateRecordsVersion(t *testing.T) {
	st, _ := openTestStore(t)
	require.NoError(t, st.Migrate(context.Background()), "migrate is idempotent")

	version, err := st.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, schemaVersion, version)
	assert.Equal(t, "libsql", st.Driver())
}

func TestSimplificationCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	st, now := openTestStore(t)
	key := CacheKey("anthropic", "claude", "The utilization of the mechanism.")

	got, err := st.GetSimplification(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, st.PutSimplification(ctx, key, "anthropic", "claude", "We used the tool.", time.Hour))

	got, err = st.GetSimplification(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "We used the tool.", got.Simplified)
	assert.Equal(t, "anthropic", got.Provider)
	assert.Equal(t, now.Add(time.Hour), got.ExpiresAt)

	*now = now.Add(2 * time.Hour)
	got, err = st.GetSimplification(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, got, "expired entries are misses")
}

func TestPurgeSimplifications(t *testing.T) {
	ctx := context.Background()
	st, now := openTestStore(t)

	require.NoError(t, st.PutSimplification(ctx, "short", "gemini", "g", "a", time.Minute))
	require.NoError(t, st.PutSimplification(ctx, "long", "gemini", "g", "b", 24*time.Hour))
	require.NoError(t, st.PutSimplification(ctx, "skip", "gemini", "g", "c", 0))

	*now = now.Add(time.Hour)

	entries, err := st.ListSimplifications(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	removed, err := st.PurgeSimplifications(ctx, true)
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	removed, err = st.PurgeSimplifications(ctx, false)
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	entries, err = st.ListSimplifications(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
