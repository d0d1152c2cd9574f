// Package postgres provides the PostgreSQL slot backend. Slot documents are
// stored as JSONB rows; updates hold a transaction-scoped advisory lock on
// the slot key for the length of the read-modify-write.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/phrazzld/kanji-trainer/internal/platform/logger"
	"github.com/phrazzld/kanji-trainer/internal/platform/migrations"
	"github.com/phrazzld/kanji-trainer/internal/store"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrations returns the embedded migration files.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		// ALLOW-PANIC: the embedded directory is fixed at build time
		panic(err)
	}
	return sub
}

// Backend stores slots in a PostgreSQL database.
type Backend struct {
	db     *sql.DB
	logger *slog.Logger
}

var (
	_ store.Backend = (*Backend)(nil)
	_ store.Updater = (*Backend)(nil)
)

// OpenDB opens a connection pool for databaseURL and verifies it with a ping.
func OpenDB(ctx context.Context, databaseURL string) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("database URL cannot be empty")
	}
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("database ping timed out after 5s: %w", err)
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Open connects to databaseURL and applies pending migrations.
func Open(ctx context.Context, databaseURL string, logger *slog.Logger) (*Backend, error) {
	db, err := OpenDB(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := migrations.Up(ctx, db, migrations.DialectPostgres, Migrations(), logger); err != nil {
		_ = db.Close()
		return nil, err
	}
	return New(db, logger), nil
}

// New wraps an already migrated database.
func New(db *sql.DB, logger *slog.Logger) *Backend {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		db:     db,
		logger: logger.With(slog.String("component", "postgres_backend")),
	}
}

// Get implements store.Backend.
func (b *Backend) Get(ctx context.Context, key string) ([]byte, error) {
	return get(ctx, b.db, key)
}

// Put implements store.Backend.
func (b *Backend) Put(ctx context.Context, key string, value []byte) error {
	if err := put(ctx, b.db, key, value); err != nil {
		logger.FromContextOrDefault(ctx, b.logger).Error("failed to write slot",
			slog.String("slot", key),
			slog.String("error", err.Error()))
		return err
	}
	return nil
}

// Update implements store.Updater. Concurrent updaters of the same slot run
// one after the other, including the first write of an empty slot.
func (b *Backend) Update(ctx context.Context, key string, fn store.UpdateFn) error {
	return store.RunInTransaction(ctx, b.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
			return fmt.Errorf("failed to lock slot %q: %w", key, MapError(err))
		}
		current, err := get(ctx, tx, key)
		if err != nil && !errors.Is(err, store.ErrSlotNotFound) {
			return err
		}
		next, err := fn(current)
		if err != nil {
			return err
		}
		return put(ctx, tx, key, next)
	})
}

// Close implements store.Backend.
func (b *Backend) Close() error {
	return b.db.Close()
}

func get(ctx context.Context, q store.DBTX, key string) ([]byte, error) {
	var doc []byte
	err := q.QueryRowContext(ctx, `SELECT document FROM slots WHERE slot_key = $1`, key).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", store.ErrSlotNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read slot %q: %w", key, MapError(err))
	}
	return doc, nil
}

func put(ctx context.Context, q store.DBTX, key string, value []byte) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO slots (slot_key, document, updated_at)
		VALUES ($1, $2::jsonb, NOW())
		ON CONFLICT (slot_key) DO UPDATE SET document = EXCLUDED.document, updated_at = NOW()
	`, key, string(value))
	if err != nil {
		return fmt.Errorf("failed to write slot %q: %w", key, MapError(err))
	}
	return nil
}
