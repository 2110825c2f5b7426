package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "error without cause",
			err: &AppError{
				Code:    ErrCodeNotFound,
				Message: "resource not found",
			},
			want: "resource not found",
		},
		{
			name: "error with cause",
			err: &AppError{
				Code:    ErrCodeInternal,
				Message: "failed to process",
				Cause:   errors.New("underlying error"),
			},
			want: "failed to process: underlying error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("AppError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := &AppError{
		Code:    ErrCodeInternal,
		Message: "wrapped error",
		Cause:   cause,
	}

	if unwrapped := err.Unwrap(); !errors.Is(unwrapped, cause) {
		t.Errorf("AppError.Unwrap() = %v, want %v", unwrapped, cause)
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		wantCode ErrorCode
		wantMsg  string
	}{
		{name: "NotFound", err: NotFound("missing"), wantCode: ErrCodeNotFound, wantMsg: "missing"},
		{name: "NotFoundf", err: NotFoundf("period %d missing", 3), wantCode: ErrCodeNotFound, wantMsg: "period 3 missing"},
		{name: "Validation", err: Validation("bad input"), wantCode: ErrCodeValidation, wantMsg: "bad input"},
		{name: "Validationf", err: Validationf("bad %s", "limit"), wantCode: ErrCodeValidation, wantMsg: "bad limit"},
		{name: "Internal", err: Internal("boom"), wantCode: ErrCodeInternal, wantMsg: "boom"},
		{name: "Internalf", err: Internalf("boom %d", 2), wantCode: ErrCodeInternal, wantMsg: "boom 2"},
		{name: "Unavailable", err: Unavailable("db down"), wantCode: ErrCodeUnavailable, wantMsg: "db down"},
		{name: "Query", err: Query("bad relation"), wantCode: ErrCodeQuery, wantMsg: "bad relation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("Code = %v, want %v", tt.err.Code, tt.wantCode)
			}
			if tt.err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", tt.err.Message, tt.wantMsg)
			}
		})
	}
}

func TestValidationField(t *testing.T) {
	err := ValidationField("limit", "must be >= 0")
	if err.Code != ErrCodeValidation {
		t.Errorf("ValidationField().Code = %v, want %v", err.Code, ErrCodeValidation)
	}
	if err.Field != "limit" {
		t.Errorf("ValidationField().Field = %v, want limit", err.Field)
	}
	if got := GetField(err); got != "limit" {
		t.Errorf("GetField() = %v, want limit", got)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(cause, ErrCodeTimeout, "operation timed out")

	if err.Code != ErrCodeTimeout {
		t.Errorf("Wrap().Code = %v, want %v", err.Code, ErrCodeTimeout)
	}
	if !errors.Is(err, cause) {
		t.Error("Wrap() should preserve the cause chain")
	}
	if Wrap(nil, ErrCodeTimeout, "ignored") != nil {
		t.Error("Wrap(nil) should return nil")
	}
}

func TestWrapf(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrapf(cause, ErrCodeQuery, "query for sensor %d failed", 9)

	if err.Message != "query for sensor 9 failed" {
		t.Errorf("Wrapf().Message = %q", err.Message)
	}
	if !errors.Is(err, cause) {
		t.Error("Wrapf() should preserve the cause chain")
	}
}

func TestIsHelpers(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
		want  bool
	}{
		{name: "IsNotFound matches", err: NotFound("x"), check: IsNotFound, want: true},
		{name: "IsNotFound mismatched code", err: Internal("x"), check: IsNotFound, want: false},
		{name: "IsValidation matches", err: Validation("x"), check: IsValidation, want: true},
		{name: "IsInternal matches", err: Internal("x"), check: IsInternal, want: true},
		{name: "IsTimeout matches", err: Wrap(errors.New("x"), ErrCodeTimeout, "t"), check: IsTimeout, want: true},
		{name: "IsCanceled matches", err: Wrap(errors.New("x"), ErrCodeCanceled, "c"), check: IsCanceled, want: true},
		{name: "IsUnavailable matches", err: Unavailable("x"), check: IsUnavailable, want: true},
		{name: "IsQuery matches", err: Query("x"), check: IsQuery, want: true},
		{name: "wrapped with fmt.Errorf still matches", err: fmt.Errorf("outer: %w", NotFound("x")), check: IsNotFound, want: true},
		{name: "plain error never matches", err: errors.New("plain"), check: IsNotFound, want: false},
		{name: "nil never matches", err: nil, check: IsNotFound, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.check(tt.err); got != tt.want {
				t.Errorf("check(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(NotFound("x")); got != ErrCodeNotFound {
		t.Errorf("GetCode() = %v, want %v", got, ErrCodeNotFound)
	}
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode(plain) = %v, want empty", got)
	}
}
