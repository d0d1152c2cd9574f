// Package sqlite provides the SQLite slot backend. Every slot is one row of
// the slots table holding its JSON document; updates run in an immediate
// transaction so a read-modify-write is atomic across processes too.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/phrazzld/kanji-trainer/internal/platform/logger"
	"github.com/phrazzld/kanji-trainer/internal/platform/migrations"
	"github.com/phrazzld/kanji-trainer/internal/store"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// dsnOptions keep writers waiting instead of failing with SQLITE_BUSY and
// take the write lock when a transaction begins.
const dsnOptions = "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate"

// Migrations returns the embedded migration files.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		// ALLOW-PANIC: the embedded directory is fixed at build time
		panic(err)
	}
	return sub
}

// Backend stores slots in a SQLite database.
type Backend struct {
	db     *sql.DB
	logger *slog.Logger
}

var (
	_ store.Backend = (*Backend)(nil)
	_ store.Updater = (*Backend)(nil)
)

// OpenDB opens the database file at path, creating its directory.
func OpenDB(ctx context.Context, path string) (*sql.DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path cannot be empty")
	}
	clean := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(clean), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", clean+dsnOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	return db, nil
}

// Open opens the database at path and applies pending migrations.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Backend, error) {
	db, err := OpenDB(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := migrations.Up(ctx, db, migrations.DialectSQLite, Migrations(), logger); err != nil {
		_ = db.Close()
		return nil, err
	}
	return New(db, logger), nil
}

// New wraps an already migrated database and limits it to one connection,
// which serialises writers within the process.
func New(db *sql.DB, logger *slog.Logger) *Backend {
	if db == nil {
		panic("db cannot be nil")
	}
	db.SetMaxOpenConns(1)
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		db:     db,
		logger: logger.With(slog.String("component", "sqlite_backend")),
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

// Update implements store.Updater.
func (b *Backend) Update(ctx context.Context, key string, fn store.UpdateFn) error {
	return store.RunInTransaction(ctx, b.db, nil, func(ctx context.Context, tx *sql.Tx) error {
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
	var doc string
	err := q.QueryRowContext(ctx, `SELECT document FROM slots WHERE slot_key = ?`, key).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", store.ErrSlotNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read slot %q: %w", key, err)
	}
	return []byte(doc), nil
}

func put(ctx context.Context, q store.DBTX, key string, value []byte) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO slots (slot_key, document, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (slot_key) DO UPDATE SET document = excluded.document, updated_at = CURRENT_TIMESTAMP
	`, key, string(value))
	if err != nil {
		return fmt.Errorf("failed to write slot %q: %w", key, err)
	}
	return nil
}
