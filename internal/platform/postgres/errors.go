package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/kanji-trainer/internal/store"
)

// PostgreSQL error codes
const (
	// notNullViolationCode is the PostgreSQL error code for not null violations
	notNullViolationCode = "23502"

	// checkViolationCode is the PostgreSQL error code for check constraint violations
	checkViolationCode = "23514"

	// invalidTextRepresentationCode is raised when a document is not valid JSON
	invalidTextRepresentationCode = "22P02"

	// undefinedTableCode is raised when the slots table has not been migrated
	undefinedTableCode = "42P01"

	// serializationFailureCode is raised when a concurrent update wins
	serializationFailureCode = "40001"

	// connectionExceptionClass prefixes every connection failure code
	connectionExceptionClass = "08"
)

// ErrNotMigrated is returned when the slots table does not exist.
var ErrNotMigrated = errors.New("database schema not migrated")

// MapError maps a database error to a store error, wrapping the original so
// its details stay available to errors.As.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %w", store.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch {
	case pgErr.Code == notNullViolationCode:
		return fmt.Errorf("%w: not null violation (%s): %w", store.ErrInvalidEntity, pgErr.ColumnName, err)
	case pgErr.Code == checkViolationCode:
		return fmt.Errorf("%w: check constraint violation (%s): %w", store.ErrInvalidEntity, pgErr.ConstraintName, err)
	case pgErr.Code == invalidTextRepresentationCode:
		return fmt.Errorf("%w: malformed document: %w", store.ErrInvalidEntity, err)
	case pgErr.Code == undefinedTableCode:
		return fmt.Errorf("%w: %w", ErrNotMigrated, err)
	case pgErr.Code == serializationFailureCode:
		return fmt.Errorf("%w: %w", store.ErrTransactionFailed, err)
	case strings.HasPrefix(pgErr.Code, connectionExceptionClass):
		return fmt.Errorf("%w: connection lost: %w", store.ErrUpdateFailed, err)
	}
	return err
}

// IsNotNullViolation checks if the given error is a PostgreSQL not null constraint violation.
func IsNotNullViolation(err error) bool {
	return hasCode(err, notNullViolationCode)
}

// IsSerializationFailure reports whether a transaction lost a race with a
// concurrent one and may be retried.
func IsSerializationFailure(err error) bool {
	return hasCode(err, serializationFailureCode)
}

// IsNotFoundError checks if the given error represents a "not found" scenario.
// This handles both sql.ErrNoRows and errors that are or wrap store.ErrNotFound.
func IsNotFoundError(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || errors.Is(err, store.ErrNotFound)
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
