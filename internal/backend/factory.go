package backend

import (
	"context"
	"fmt"

	applog "findash/internal/log"
	"findash/internal/store"
	"findash/internal/store/memory"
	"findash/internal/store/sqlite"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(applog.ComponentBackend),
	}
}

// CreateBackend opens the configured store and wraps it in a store.Guard.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		next store.Store
		err  error
	)
	switch config.Type {
	case SQLiteBackend:
		next, err = f.createSQLiteBackend(ctx, config)
	case MemoryBackend:
		next, err = f.createMemoryBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	guarded := store.NewGuard(next, config.Limits)
	return &BackendResult{
		Store:   guarded,
		Cleanup: guarded.Close,
	}, nil
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (store.Store, error) {
	s, err := sqlite.Open(config.SQLiteDBPath, sqlite.WithLogger(f.logger))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized SQLite backend",
		applog.FieldBackend, SQLiteBackend.String(),
		"db_path", config.SQLiteDBPath)

	return s, nil
}

func (f *DefaultFactory) createMemoryBackend(ctx context.Context, config Config) (store.Store, error) {
	if config.DataFile == "" {
		f.logger.InfoContext(ctx, "Initialized memory backend without persistence",
			applog.FieldBackend, MemoryBackend.String())
		return memory.New(), nil
	}

	s, err := memory.Open(config.DataFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize memory store: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized memory backend",
		applog.FieldBackend, MemoryBackend.String(),
		"data_file", config.DataFile)

	return s, nil
}
