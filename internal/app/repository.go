package app

import (
	"fmt"

	"catalog-scraper/internal/config"
	"catalog-scraper/internal/observability"
	"catalog-scraper/internal/storage"
	"catalog-scraper/internal/storage/mssql"
	"catalog-scraper/internal/storage/postgres"
	"catalog-scraper/internal/storage/sqlite"
)

// OpenRepository connects the configured storage driver. The "none" driver
// yields a nil repository.
func OpenRepository(cfg *config.Config, logger *observability.Logger) (storage.Repository, error) {
	var (
		repo storage.Repository
		err  error
	)

	switch cfg.Storage.Driver {
	case config.DriverNone:
		return nil, nil
	case config.DriverMSSQL:
		repo, err = asRepository(mssql.NewRepository(cfg.Storage.DSN, cfg.GetCommandTimeout(), logger))
	case config.DriverPostgres:
		repo, err = asRepository(postgres.NewRepository(cfg.Storage.DSN, cfg.GetCommandTimeout(), logger))
	case config.DriverSQLite:
		repo, err = asRepository(sqlite.NewRepository(cfg.Storage.DSN, cfg.GetCommandTimeout(), logger))
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Driver, err)
	}

	logger.Info("Storage opened", "driver", cfg.Storage.Driver)
	return repo, nil
}

// asRepository keeps a failed constructor's typed nil out of the interface.
func asRepository[R storage.Repository](repo R, err error) (storage.Repository, error) {
	if err != nil {
		return nil, err
	}
	return repo, nil
}
