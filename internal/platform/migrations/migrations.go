// Package migrations runs the embedded goose migrations of the SQL slot
// backends and forwards goose output to slog.
package migrations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
)

// TableName is the table goose records applied versions in.
const TableName = "schema_migrations"

// Dialect names a goose SQL dialect.
type Dialect string

// Dialects of the supported backends.
const (
	DialectSQLite   Dialect = "sqlite3"
	DialectPostgres Dialect = "postgres"
)

// Commands lists the accepted migration commands.
var Commands = []string{"up", "down", "reset", "status", "version"}

// ErrUnknownCommand is returned for a command not in Commands.
var ErrUnknownCommand = errors.New("unknown migration command")

// goose keeps its configuration in package globals.
var mu sync.Mutex

// slogGooseLogger adapts the goose logger interface to slog. Fatalf does
// not exit; the error is returned to the caller instead.
type slogGooseLogger struct {
	logger *slog.Logger
}

func (l *slogGooseLogger) Printf(format string, v ...any) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l *slogGooseLogger) Fatalf(format string, v ...any) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// Up applies every pending migration in fsys.
func Up(ctx context.Context, db *sql.DB, dialect Dialect, fsys fs.FS, logger *slog.Logger) error {
	return Run(ctx, db, dialect, fsys, "up", logger)
}

// Run executes a goose command against db using the migrations at the root
// of fsys.
func Run(
	ctx context.Context,
	db *sql.DB,
	dialect Dialect,
	fsys fs.FS,
	command string,
	logger *slog.Logger,
) error {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With(
		slog.String("component", "migrations"),
		slog.String("correlation_id", uuid.New().String()),
		slog.String("dialect", string(dialect)),
		slog.String("command", command),
	)

	mu.Lock()
	defer mu.Unlock()

	goose.SetLogger(&slogGooseLogger{logger: log})
	goose.SetBaseFS(fsys)
	defer goose.SetBaseFS(nil)
	goose.SetTableName(TableName)
	if err := goose.SetDialect(string(dialect)); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	start := time.Now()
	var err error
	switch command {
	case "up":
		err = goose.UpContext(ctx, db, ".")
	case "down":
		err = goose.DownContext(ctx, db, ".")
	case "reset":
		err = goose.ResetContext(ctx, db, ".")
	case "status":
		err = goose.StatusContext(ctx, db, ".")
	case "version":
		err = goose.VersionContext(ctx, db, ".")
	default:
		return fmt.Errorf("%w: %q (expected one of %s)", ErrUnknownCommand, command, strings.Join(Commands, ", "))
	}
	if err != nil {
		log.Error("migration command failed",
			slog.String("error", err.Error()),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()))
		return fmt.Errorf("migration command %q failed: %w", command, err)
	}

	log.Debug("migration command completed",
		slog.Int64("duration_ms", time.Since(start).Milliseconds()))
	return nil
}
