// Package config centralizes viper-backed configuration for the
// service. Defaults mirror the upstream catalog's sensible limits;
// every key can be overridden by config file, environment, or flag.
package config

import (
	"time"

	"github.com/spf13/viper"
)

// Cache backend names accepted for the cache.backend key.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// SetDefaults registers default values for every recognized key.
func SetDefaults() {
	viper.SetDefault("upstream.baseurl", "https://www.googleapis.com/books/v1/")
	viper.SetDefault("upstream.maxresults", 20)
	viper.SetDefault("upstream.retrycount", 3)
	viper.SetDefault("upstream.ratelimit", 4)
	viper.SetDefault("upstream.apikey", "")

	viper.SetDefault("cache.backend", BackendMemory)
	viper.SetDefault("cache.dbfile", "./cache.db")
	viper.SetDefault("cache.ttl_minutes", 30)
	viper.SetDefault("cache.details_ttl_hours", 24)

	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("server.port", "8080")
}

// Upstream holds settings for the external catalog API.
type Upstream struct {
	BaseURL    string
	MaxResults int
	RetryCount int
	RateLimit  int
	APIKey     string
}

// UpstreamConfig reads the upstream settings.
func UpstreamConfig() Upstream {
	return Upstream{
		BaseURL:    viper.GetString("upstream.baseurl"),
		MaxResults: viper.GetInt("upstream.maxresults"),
		RetryCount: viper.GetInt("upstream.retrycount"),
		RateLimit:  viper.GetInt("upstream.ratelimit"),
		APIKey:     viper.GetString("upstream.apikey"),
	}
}

// SearchTTL is the cache validity window for search results.
func SearchTTL() time.Duration {
	return time.Duration(viper.GetInt("cache.ttl_minutes")) * time.Minute
}

// DetailsTTL is the cache validity window for book details.
func DetailsTTL() time.Duration {
	return time.Duration(viper.GetInt("cache.details_ttl_hours")) * time.Hour
}

// CacheBackend returns the configured cache store kind.
func CacheBackend() string {
	return viper.GetString("cache.backend")
}

// CacheDBFile is the SQLite database path for the sqlite backend.
func CacheDBFile() string {
	return viper.GetString("cache.dbfile")
}

// Redis holds connection settings for the redis cache backend.
type Redis struct {
	Addr     string
	Password string
	DB       int
}

// RedisConfig reads the redis settings.
func RedisConfig() Redis {
	return Redis{
		Addr:     viper.GetString("redis.addr"),
		Password: viper.GetString("redis.password"),
		DB:       viper.GetInt("redis.db"),
	}
}

// ServerPort is the HTTP listen port for serve mode.
func ServerPort() string {
	return viper.GetString("server.port")
}
