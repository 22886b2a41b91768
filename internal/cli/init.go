// Package cli provides the initialization shared by the findash commands:
// environment, configuration, logging and an opened ledger.
package cli

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"

	"findash/internal/backend"
	"findash/internal/cache"
	"findash/internal/config"
	"findash/internal/history"
	"findash/internal/ledger"
	applog "findash/internal/log"
	"findash/internal/reports"
)

// SetupLogger initializes structured logging at the given level.
// Returns the configured logger and sets it as the default logger.
func SetupLogger(level string) *applog.Logger {
	cfg := applog.DefaultConfig()
	cfg.Level = applog.ParseLevel(level)
	logger := applog.New(cfg)
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as the file is optional.
func LoadEnvFile(paths ...string) {
	_ = godotenv.Load(paths...)
}

// LoadAndValidateConfig loads configuration and validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// App bundles what a command needs to run.
type App struct {
	Config   *config.Config
	Log      *applog.Logger
	Ledger   *ledger.Ledger
	Reporter *reports.Reporter

	caches  *cache.Manager
	cleanup backend.CleanupFunc
}

// Option adjusts how Open prepares the App.
type Option func(*options)

type options struct {
	longLived bool
}

// LongLived marks a process that serves more than one command. Only such
// processes run the periodic cache cleanup.
func LongLived() Option {
	return func(o *options) { o.longLived = true }
}

// Open loads the environment and configuration, opens the configured
// backend and hydrates the ledger from it.
func Open(ctx context.Context, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	LoadEnvFile()
	cfg, err := LoadAndValidateConfig()
	if err != nil {
		return nil, err
	}
	logger := SetupLogger(cfg.LogLevel)

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("open backend: %w", err)
	}

	l, err := ledger.Open(ctx, res.Store, ledger.WithLogger(logger))
	if err != nil {
		res.Cleanup()
		return nil, fmt.Errorf("load ledger: %w", err)
	}

	caches := cache.NewManager(logger)
	lru := cache.NewLRUCache[[]history.Point](cfg.HistoryCacheSize, cfg.HistoryCacheTTL)
	caches.Register(lru)
	if o.longLived && cfg.HistoryCacheTTL > 0 {
		caches.StartCleanup(ctx, cfg.HistoryCacheTTL)
	}

	return &App{
		Config:   cfg,
		Log:      logger,
		Ledger:   l,
		Reporter: reports.NewReporter(l, lru, history.Options{MaxPoints: cfg.HistoryPoints}, logger),
		caches:   caches,
		cleanup:  res.Cleanup,
	}, nil
}

// Close stops background work and releases the backend.
func (a *App) Close() error {
	a.caches.Stop()
	return a.cleanup()
}
