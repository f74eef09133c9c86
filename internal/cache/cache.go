package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"reflect"
	"time"
)

// FactoryFunc computes the value for a key on a cache miss.
type FactoryFunc[T any] func(ctx context.Context) (T, error)

// Cache judges entry freshness against a TTL over a backing Store.
type Cache struct {
	store Store

	// now is replaceable in tests.
	now func() time.Time
}

// New wraps a Store in a Cache.
func New(store Store) *Cache {
	return &Cache{store: store, now: time.Now}
}

// Store returns the backing store, for lifecycle management.
func (c *Cache) Store() Store {
	return c.store
}

// GetOrCreate returns the fresh cached value for key, or runs factory
// and caches its result with the given TTL. Failures never propagate:
// a nil factory value is returned uncached with a warning, and a
// factory error falls back to whatever the store still holds for the
// key (however stale), or the zero value when it holds nothing.
//
// Concurrent misses on the same key may each run the factory; the last
// write wins and both callers receive an answer consistent with
// upstream.
func GetOrCreate[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, factory FactoryFunc[T]) T {
	var zero T

	data, storedAt, ok, err := c.store.Get(ctx, key)
	if err != nil {
		slog.Warn("Cache read failed, falling through to factory", "key", key, "error", err)
	} else if ok && c.now().Sub(storedAt) <= ttl {
		var cached T
		if err := json.Unmarshal([]byte(data), &cached); err == nil && !isNil(cached) {
			slog.Debug("Cache hit", "key", key)
			return cached
		}
		slog.Warn("Failed to decode cached value, refetching", "key", key, "error", err)
	}

	slog.Debug("Cache miss", "key", key)
	value, err := factory(ctx)
	if err != nil {
		slog.Error("Cache factory failed", "key", key, "error", err)
		if fallback, ok := staleValue[T](ctx, c, key); ok {
			slog.Warn("Returning stale cache entry", "key", key)
			return fallback
		}
		return zero
	}

	if isNil(value) {
		slog.Warn("Cache factory returned nil value, not caching", "key", key)
		return value
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		slog.Warn("Failed to encode value for caching", "key", key, "error", err)
		return value
	}
	if err := c.store.Set(ctx, key, string(encoded), c.now()); err != nil {
		// A failed store never fails the request.
		slog.Warn("Failed to store cache entry", "key", key, "error", err)
	}
	return value
}

// staleValue reads the stored entry for key regardless of age.
func staleValue[T any](ctx context.Context, c *Cache, key string) (T, bool) {
	var zero T

	data, _, ok, err := c.store.Get(ctx, key)
	if err != nil || !ok {
		return zero, false
	}

	var value T
	if err := json.Unmarshal([]byte(data), &value); err != nil || isNil(value) {
		return zero, false
	}
	return value, true
}

// isNil reports whether a generic value is nil for the kinds that can
// be, mirroring a reference-type null check.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return rv.IsNil()
	default:
		return false
	}
}
