package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisEntry is the value stored under each key. The store time rides
// along in the payload because entries carry no server-side TTL: a
// stale value must remain readable for factory-failure fallback.
type redisEntry struct {
	Data     string    `json:"data"`
	StoredAt time.Time `json:"storedAt"`
}

// RedisStore persists cache entries in Redis under a key prefix,
// allowing several services to share one upstream cache.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// RedisConfig holds connection settings for the Redis cache backend.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig, prefix string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		closeErr := client.Close()
		return nil, errors.Join(fmt.Errorf("failed to connect to Redis: %w", err), closeErr)
	}

	return &RedisStore{client: client, prefix: prefix}, nil
}

func (s *RedisStore) fullKey(key string) string {
	return fmt.Sprintf("%s:%s", s.prefix, key)
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, key string) (string, time.Time, bool, error) {
	raw, err := s.client.Get(ctx, s.fullKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", time.Time{}, false, nil
	}
	if err != nil {
		return "", time.Time{}, false, fmt.Errorf("failed to get value from Redis: %w", err)
	}

	var entry redisEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return "", time.Time{}, false, fmt.Errorf("failed to decode Redis cache entry: %w", err)
	}
	return entry.Data, entry.StoredAt, true, nil
}

// Set implements Store.
func (s *RedisStore) Set(ctx context.Context, key, data string, storedAt time.Time) error {
	raw, err := json.Marshal(redisEntry{Data: data, StoredAt: storedAt.UTC()})
	if err != nil {
		return fmt.Errorf("failed to encode Redis cache entry: %w", err)
	}
	if err := s.client.Set(ctx, s.fullKey(key), raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to set value in Redis: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
