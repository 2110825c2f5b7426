package errors

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// MapDBError maps database errors to AppError instances so callers can
// distinguish failure classes without inspecting driver internals:
//   - context deadline → Timeout
//   - context cancellation → Canceled
//   - pgx.ErrNoRows → NotFound
//   - server-side cancellation (statement_timeout) → Timeout
//   - connection loss, shutdown, exhausted slots → Unavailable
//   - missing relations, bad identifiers, privilege errors → Query
//
// If the error is not a recognized database error, it returns the original error.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}

	// Check for context errors first
	if errors.Is(err, context.DeadlineExceeded) {
		return &AppError{
			Code:    ErrCodeTimeout,
			Message: "query exceeded its deadline",
			Cause:   err,
		}
	}
	if errors.Is(err, context.Canceled) {
		return &AppError{
			Code:    ErrCodeCanceled,
			Message: "query was canceled",
			Cause:   err,
		}
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return &AppError{
			Code:    ErrCodeNotFound,
			Message: "no matching rows",
			Cause:   err,
		}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return mapPgError(pgErr)
	}

	// Return original error if not a recognized database error
	return err
}

// mapPgError maps PostgreSQL-specific errors to AppError instances.
func mapPgError(pgErr *pgconn.PgError) error {
	switch pgErr.Code {
	case pgerrcode.QueryCanceled:
		// statement_timeout and ctx-driven cancel requests surface as 57014.
		return &AppError{
			Code:    ErrCodeTimeout,
			Message: "query canceled by the server",
			Cause:   pgErr,
		}
	case pgerrcode.AdminShutdown, pgerrcode.CrashShutdown, pgerrcode.CannotConnectNow:
		return &AppError{
			Code:    ErrCodeUnavailable,
			Message: "database is shutting down or not accepting connections",
			Cause:   pgErr,
		}
	case pgerrcode.TooManyConnections:
		return &AppError{
			Code:    ErrCodeUnavailable,
			Message: "database connection slots exhausted",
			Cause:   pgErr,
		}
	case pgerrcode.UndefinedTable, pgerrcode.UndefinedColumn, pgerrcode.InvalidSchemaName:
		return &AppError{
			Code:    ErrCodeQuery,
			Message: "relation or column does not exist; has the schema been migrated?",
			Cause:   pgErr,
		}
	case pgerrcode.InsufficientPrivilege:
		return &AppError{
			Code:    ErrCodeQuery,
			Message: "insufficient privilege for query",
			Cause:   pgErr,
		}
	}

	// Class 08 covers connection exceptions (failure, reset, does not exist).
	if strings.HasPrefix(pgErr.Code, "08") {
		return &AppError{
			Code:    ErrCodeUnavailable,
			Message: "database connection failed",
			Cause:   pgErr,
		}
	}

	return &AppError{
		Code:    ErrCodeInternal,
		Message: "a database error occurred",
		Cause:   pgErr,
	}
}
