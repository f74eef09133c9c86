package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/humanlog"
	"github.com/lepinkainen/libris/internal/books"
	"github.com/lepinkainen/libris/internal/cache"
	"github.com/lepinkainen/libris/internal/config"
	"github.com/lepinkainen/libris/internal/ratelimit"
	"github.com/lepinkainen/libris/internal/server"
	"github.com/spf13/viper"
)

// CLI represents the complete command structure for the libris application
type CLI struct {
	// Global flags
	BaseURL      string `help:"Upstream catalog API base URL"`
	MaxResults   int    `help:"Cap on search hits requested upstream" default:"-1"`
	RetryCount   int    `help:"Additional attempts beyond the first for transient upstream failures" default:"-1"`
	CacheBackend string `help:"Cache store backend (memory, sqlite, redis)"`
	CacheDBFile  string `help:"Path to cache SQLite database file (sqlite backend)"`

	Serve   ServeCmd   `cmd:"" help:"Run the HTTP lookup service"`
	Search  SearchCmd  `cmd:"" help:"Search the catalog by title and print the result envelope"`
	Details DetailsCmd `cmd:"" help:"Fetch details for a work ID and print the result envelope"`
}

// ServeCmd runs the HTTP server.
type ServeCmd struct {
	Port string `short:"p" help:"HTTP listen port"`
}

// SearchCmd performs a one-shot title search.
type SearchCmd struct {
	Title string `arg:"" help:"Title (or partial title) to search for"`
}

// DetailsCmd performs a one-shot details lookup.
type DetailsCmd struct {
	WorkID string `arg:"" help:"Work identifier of the volume"`
}

// Execute runs the Kong-based CLI
func Execute() {
	initLogging()
	initConfig()

	var cli CLI

	ctx := kong.Parse(&cli,
		kong.Name("libris"),
		kong.Description("A cached, typed lookup service over an external book catalog."),
		kong.UsageOnError(),
	)

	applyOverrides(&cli)

	if err := ctx.Run(); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

func initLogging() {
	handler := humanlog.NewHandler(os.Stdout, &humanlog.Options{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
}

func initConfig() {
	config.SetDefaults()

	viper.AutomaticEnv()
	if err := viper.BindEnv("upstream.apikey", "BOOKS_API_KEY"); err != nil {
		slog.Error("Failed to bind environment variable", "error", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			slog.Debug("Config file not found, using defaults")
		} else {
			slog.Error("Fatal error reading config file", "error", err)
			os.Exit(1)
		}
	}
}

func applyOverrides(cli *CLI) {
	if cli.BaseURL != "" {
		viper.Set("upstream.baseurl", cli.BaseURL)
	}
	if cli.MaxResults >= 0 {
		viper.Set("upstream.maxresults", cli.MaxResults)
	}
	if cli.RetryCount >= 0 {
		viper.Set("upstream.retrycount", cli.RetryCount)
	}
	if cli.CacheBackend != "" {
		viper.Set("cache.backend", cli.CacheBackend)
	}
	if cli.CacheDBFile != "" {
		viper.Set("cache.dbfile", cli.CacheDBFile)
	}
}

// newStore builds the configured cache store.
func newStore(ctx context.Context) (cache.Store, error) {
	switch backend := config.CacheBackend(); backend {
	case config.BackendMemory:
		return cache.NewMemoryStore(), nil
	case config.BackendSQLite:
		return cache.NewSQLiteStore(config.CacheDBFile())
	case config.BackendRedis:
		redisCfg := config.RedisConfig()
		return cache.NewRedisStore(ctx, cache.RedisConfig{
			Addr:     redisCfg.Addr,
			Password: redisCfg.Password,
			DB:       redisCfg.DB,
		}, "libris")
	default:
		return nil, fmt.Errorf("unknown cache backend: %q", backend)
	}
}

// newService wires config, store, client, and service together. The
// returned cleanup closes the store.
func newService(ctx context.Context) (*books.Service, func(), error) {
	store, err := newStore(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create cache store: %w", err)
	}

	upstream := config.UpstreamConfig()
	client := books.NewClient(
		books.WithBaseURL(upstream.BaseURL),
		books.WithMaxResults(upstream.MaxResults),
		books.WithRetries(upstream.RetryCount),
		books.WithAPIKey(upstream.APIKey),
		books.WithRateLimiter(ratelimit.New("catalog", upstream.RateLimit)),
	)

	svc := books.NewService(client, cache.New(store), config.SearchTTL(), config.DetailsTTL())
	cleanup := func() {
		if err := store.Close(); err != nil {
			slog.Warn("Failed to close cache store", "error", err)
		}
	}
	return svc, cleanup, nil
}

// Run starts the HTTP server.
func (s *ServeCmd) Run() error {
	ctx := context.Background()

	svc, cleanup, err := newService(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	port := s.Port
	if port == "" {
		port = config.ServerPort()
	}

	return server.New(svc).Run(port)
}

// Run performs a one-shot search and prints the envelope.
func (s *SearchCmd) Run() error {
	ctx := context.Background()

	svc, cleanup, err := newService(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	return printEnvelope(svc.Search(ctx, s.Title))
}

// Run performs a one-shot details lookup and prints the envelope.
func (d *DetailsCmd) Run() error {
	ctx := context.Background()

	svc, cleanup, err := newService(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	return printEnvelope(svc.GetDetails(ctx, d.WorkID))
}

func printEnvelope(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
