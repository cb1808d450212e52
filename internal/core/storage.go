package core

import (
	"context"
	"fmt"

	"homeerp/internal/infra/persistence/memory"
	"homeerp/internal/infra/persistence/postgres"
	"homeerp/internal/infra/persistence/sqlite"
	"homeerp/internal/platform/config"
	"homeerp/pkg/domain"
)

// StorageDriver identifies a concrete persistent storage implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

// OpenRecordStore opens the backend named by cfg.Driver, defaulting to sqlite.
// The caller owns the returned store and must Close it.
func OpenRecordStore(ctx context.Context, cfg config.Storage) (domain.RecordStore, error) {
	driver := StorageDriver(cfg.Driver)
	if driver == "" {
		driver = StorageSQLite
	}
	switch driver {
	case StorageMemory:
		return memory.NewStore(), nil
	case StorageSQLite:
		store, err := sqlite.NewStore(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return store, nil
	case StoragePostgres:
		store, err := postgres.NewStore(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
