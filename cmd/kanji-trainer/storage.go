package main

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/phrazzld/kanji-trainer/internal/config"
	"github.com/phrazzld/kanji-trainer/internal/platform/migrations"
	"github.com/phrazzld/kanji-trainer/internal/platform/postgres"
	"github.com/phrazzld/kanji-trainer/internal/platform/sqlite"
	"github.com/phrazzld/kanji-trainer/internal/store"
)

// openBackend opens the slot backend named by cfg.Engine. SQL backends are
// migrated before they are returned.
func openBackend(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (store.Backend, error) {
	switch cfg.Engine {
	case config.EngineMemory:
		return store.NewMemoryBackend(), nil
	case config.EngineJSON:
		return store.NewJSONFileBackend(cfg.Path)
	case config.EngineSQLite:
		return sqlite.Open(ctx, cfg.Path, logger)
	case config.EnginePostgres:
		return postgres.Open(ctx, cfg.DatabaseURL, logger)
	}
	return nil, fmt.Errorf("%w: %q", store.ErrUnknownEngine, cfg.Engine)
}

// sqlDatabase is an unmigrated connection to a SQL engine with the
// migrations that belong to it.
type sqlDatabase struct {
	db         *sql.DB
	dialect    migrations.Dialect
	migrations fs.FS
}

// openSQLDatabase opens the database of a SQL engine without migrating it.
func openSQLDatabase(ctx context.Context, cfg config.StorageConfig) (*sqlDatabase, error) {
	switch cfg.Engine {
	case config.EngineSQLite:
		db, err := sqlite.OpenDB(ctx, cfg.Path)
		if err != nil {
			return nil, err
		}
		return &sqlDatabase{db: db, dialect: migrations.DialectSQLite, migrations: sqlite.Migrations()}, nil
	case config.EnginePostgres:
		db, err := postgres.OpenDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return &sqlDatabase{db: db, dialect: migrations.DialectPostgres, migrations: postgres.Migrations()}, nil
	case config.EngineMemory, config.EngineJSON:
		return nil, fmt.Errorf("storage engine %q has no schema to migrate", cfg.Engine)
	}
	return nil, fmt.Errorf("%w: %q", store.ErrUnknownEngine, cfg.Engine)
}
