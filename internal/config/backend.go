package config

import (
	"context"
	"fmt"
	"os"

	"timebookings/internal/logging"
	"timebookings/internal/repository/jsonfile"
	"timebookings/internal/repository/odata"
	"timebookings/internal/repository/sqlite"
	"timebookings/internal/storage"
)

// CreateBackend creates the persistence backend selected by the configuration
func CreateBackend(ctx context.Context, config *Config, logger logging.Logger) (storage.Backend, error) {
	logger = logger.With("backend", config.Storage.Backend)

	switch config.Storage.Backend {
	case BackendSQLite:
		dbPath := config.GetDatabasePath()
		if !config.IsTesting() {
			if err := os.MkdirAll(config.Storage.Dir, os.FileMode(config.Storage.DirPermissions)); err != nil {
				return nil, fmt.Errorf("failed to create storage directory: %w", err)
			}
		}
		repo, err := sqlite.New(ctx, dbPath,
			sqlite.WithQueryTimeout(config.Storage.QueryTimeout),
			sqlite.WithWriteTimeout(config.Storage.WriteTimeout),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		logger.Debug(ctx, "opened sqlite database", "path", dbPath)
		return storage.NewSQLiteBackend(repo), nil

	case BackendJSONFile:
		store, err := jsonfile.New(config.Storage.Dir,
			jsonfile.WithFiles(config.Storage.EntriesFile, config.Storage.ReferenceFile),
			jsonfile.WithDirPermissions(os.FileMode(config.Storage.DirPermissions)),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize json store: %w", err)
		}
		logger.Debug(ctx, "opened json store", "dir", config.Storage.Dir)
		return store, nil

	case BackendOData:
		client, err := odata.New(config.Storage.ODataURL, odata.WithTimeout(config.Storage.ODataTimeout))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize odata client: %w", err)
		}
		logger.Debug(ctx, "using odata service", "url", config.Storage.ODataURL)
		return client, nil

	default:
		return nil, &ConfigError{Field: "storage.backend", Message: fmt.Sprintf("unknown backend %q", config.Storage.Backend)}
	}
}

// CreateTestBackend creates an in-memory sqlite backend for testing
func CreateTestBackend(ctx context.Context) (storage.Backend, error) {
	cfg := NewConfig()
	cfg.Application.Environment = EnvironmentTesting
	return CreateBackend(ctx, cfg, logging.Nop())
}
