package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeUnderTest exercises the Store contract shared by all backends.
func storeUnderTest(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, _, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	storedAt := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, store.Set(ctx, "k", `{"title":"Dune"}`, storedAt))

	data, gotAt, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"title":"Dune"}`, data)
	assert.WithinDuration(t, storedAt, gotAt, time.Second)

	// Replacement updates both data and store time.
	later := storedAt.Add(time.Hour)
	require.NoError(t, store.Set(ctx, "k", `{"title":"Dune II"}`, later))

	data, gotAt, ok, err = store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"title":"Dune II"}`, data)
	assert.WithinDuration(t, later, gotAt, time.Second)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	defer func() { _ = store.Close() }()

	storeUnderTest(t, store)
	assert.Equal(t, 1, store.Len())
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	storeUnderTest(t, store)
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cache.db")
	ctx := context.Background()

	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "k", "v", time.Now().UTC()))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	data, _, ok, err := reopened.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v", data)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)

	store, err := NewRedisStore(context.Background(), RedisConfig{Addr: mr.Addr()}, "libris")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	storeUnderTest(t, store)
}

func TestRedisStoreEntriesHaveNoServerTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	store, err := NewRedisStore(ctx, RedisConfig{Addr: mr.Addr()}, "libris")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	require.NoError(t, store.Set(ctx, "k", "v", time.Now().UTC()))

	// Stale-on-error fallback depends on entries outliving their TTL.
	assert.Equal(t, time.Duration(0), mr.TTL("libris:k"))

	mr.FastForward(24 * time.Hour)
	_, _, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisStoreConnectFailure(t *testing.T) {
	_, err := NewRedisStore(context.Background(), RedisConfig{Addr: "127.0.0.1:1"}, "libris")
	require.Error(t, err)
}
