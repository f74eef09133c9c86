// Package cache provides per-key memoization with factory-on-miss
// semantics and graceful degradation to stale data when a factory
// fails. Entries live in a pluggable Store; freshness is always judged
// here against the TTL, never by the store itself, so a stale value
// remains readable as a fallback.
package cache

import (
	"context"
	"sync"
	"time"
)

// Store persists cache entries as JSON strings with their store time.
// Implementations must be safe for concurrent use and must not expire
// entries on their own.
type Store interface {
	// Get returns the entry for key and the instant it was stored.
	// A missing key is (_, _, false, nil); errors are reserved for
	// backend failures.
	Get(ctx context.Context, key string) (data string, storedAt time.Time, ok bool, err error)

	// Set stores or replaces the entry for key.
	Set(ctx context.Context, key, data string, storedAt time.Time) error

	// Close releases backend resources.
	Close() error
}

type memoryEntry struct {
	data     string
	storedAt time.Time
}

// MemoryStore is the default in-process Store backed by a mutex-guarded
// map. Entries are replaced on re-fetch and never deleted.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry)}
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, key string) (string, time.Time, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	if !ok {
		return "", time.Time{}, false, nil
	}
	return entry.data, entry.storedAt, true, nil
}

// Set implements Store.
func (s *MemoryStore) Set(_ context.Context, key, data string, storedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = memoryEntry{data: data, storedAt: storedAt}
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	return nil
}

// Len reports the number of stored entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
