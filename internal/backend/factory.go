package backend

import (
	"context"
	"fmt"

	"pennie/internal/log"
	"pennie/internal/storage"
	"pennie/internal/storage/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*BackendResult, error) {
	store, err := storage.NewSQLiteStore(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("initialize sqlite store: %w", err)
	}

	if version, dirty, err := storage.SchemaVersion(config.SQLiteDBPath); err == nil {
		f.logger.InfoContext(ctx, "SQLite backend initialized",
			"path", config.SQLiteDBPath,
			"schema_version", version,
			"dirty", dirty)
	} else {
		f.logger.WarnContext(ctx, "Could not read schema version", log.FieldError, err)
	}

	return &BackendResult{
		Store: store,
		Cleanup: func() error {
			f.logger.Info("Closing SQLite store")
			return store.Close()
		},
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(ctx context.Context, config Config) (*BackendResult, error) {
	store := memory.NewFromFiles(config.DataDirectory)
	f.logger.InfoContext(ctx, "Memory backend initialized",
		"data_dir", config.DataDirectory,
		"seeded_collections", store.Len())

	return &BackendResult{
		Store:   store,
		Cleanup: func() error { return nil },
	}, nil
}
