package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestMapDBError_NilError(t *testing.T) {
	err := MapDBError(nil)
	if err != nil {
		t.Errorf("MapDBError(nil) = %v, want nil", err)
	}
}

func TestMapDBError_ContextErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode ErrorCode
	}{
		{
			name:     "deadline exceeded",
			err:      context.DeadlineExceeded,
			wantCode: ErrCodeTimeout,
		},
		{
			name:     "canceled",
			err:      context.Canceled,
			wantCode: ErrCodeCanceled,
		},
		{
			name:     "wrapped deadline exceeded",
			err:      fmt.Errorf("query: %w", context.DeadlineExceeded),
			wantCode: ErrCodeTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapDBError(tt.err)
			if GetCode(err) != tt.wantCode {
				t.Errorf("MapDBError() code = %v, want %v", GetCode(err), tt.wantCode)
			}
		})
	}
}

func TestMapDBError_NoRows(t *testing.T) {
	err := MapDBError(pgx.ErrNoRows)
	if !IsNotFound(err) {
		t.Errorf("MapDBError(pgx.ErrNoRows) should be NotFound, got %v", GetCode(err))
	}
}

func TestMapDBError_PgErrors(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		wantCode ErrorCode
	}{
		{name: "query canceled", code: pgerrcode.QueryCanceled, wantCode: ErrCodeTimeout},
		{name: "admin shutdown", code: pgerrcode.AdminShutdown, wantCode: ErrCodeUnavailable},
		{name: "crash shutdown", code: pgerrcode.CrashShutdown, wantCode: ErrCodeUnavailable},
		{name: "cannot connect now", code: pgerrcode.CannotConnectNow, wantCode: ErrCodeUnavailable},
		{name: "too many connections", code: pgerrcode.TooManyConnections, wantCode: ErrCodeUnavailable},
		{name: "connection failure", code: pgerrcode.ConnectionFailure, wantCode: ErrCodeUnavailable},
		{name: "connection does not exist", code: pgerrcode.ConnectionDoesNotExist, wantCode: ErrCodeUnavailable},
		{name: "undefined table", code: pgerrcode.UndefinedTable, wantCode: ErrCodeQuery},
		{name: "undefined column", code: pgerrcode.UndefinedColumn, wantCode: ErrCodeQuery},
		{name: "invalid schema name", code: pgerrcode.InvalidSchemaName, wantCode: ErrCodeQuery},
		{name: "insufficient privilege", code: pgerrcode.InsufficientPrivilege, wantCode: ErrCodeQuery},
		{name: "unknown pg error", code: pgerrcode.DivisionByZero, wantCode: ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pgErr := &pgconn.PgError{Code: tt.code, Message: tt.name}
			err := MapDBError(pgErr)
			if GetCode(err) != tt.wantCode {
				t.Errorf("MapDBError() code = %v, want %v", GetCode(err), tt.wantCode)
			}
			if !errors.Is(err, pgErr) {
				t.Error("MapDBError() should preserve the pg error as cause")
			}
		})
	}
}

func TestMapDBError_WrappedPgError(t *testing.T) {
	pgErr := &pgconn.PgError{Code: pgerrcode.UndefinedTable}
	err := MapDBError(fmt.Errorf("run measurement query: %w", pgErr))
	if !IsQuery(err) {
		t.Errorf("MapDBError(wrapped pg error) should be Query, got %v", GetCode(err))
	}
}

func TestMapDBError_StandardError(t *testing.T) {
	stdErr := errors.New("some random error")
	err := MapDBError(stdErr)
	if !errors.Is(err, stdErr) {
		t.Errorf("MapDBError() should return the original error, got %v", err)
	}
	if GetCode(err) != "" {
		t.Errorf("MapDBError() should not attach a code to unknown errors, got %v", GetCode(err))
	}
}
