package errors

import (
	"context"
	goerrors "errors"
	"fmt"
	"testing"

	apperrors "github.com/target/chunkwise/internal/errors"
)

func TestClassifyNil(t *testing.T) {
	t.Parallel()

	if got := Classify(nil); got != "" {
		t.Fatalf("Classify(nil) = %q, want empty string", got)
	}
}

func TestClassifyAppErrorCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want string
	}{
		{apperrors.Wrap(context.DeadlineExceeded, apperrors.ErrCodeTimeout, "query timed out"), "timeout"},
		{apperrors.Wrap(context.Canceled, apperrors.ErrCodeCanceled, "run canceled"), "canceled"},
		{apperrors.Unavailable("too many connections"), "unavailable"},
		{apperrors.Query("relation does not exist"), "query"},
		{apperrors.Internal("worker panic"), "internal"},
	}

	for _, tc := range tests {
		if got := Classify(tc.err); got != tc.want {
			t.Fatalf("Classify(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestClassifyWrappedAppError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("dispatch: %w", apperrors.Unavailable("connection lost"))
	if got := Classify(err); got != "unavailable" {
		t.Fatalf("Classify(wrapped) = %q, want %q", got, "unavailable")
	}
}

func TestClassifyFallsBackToTypeName(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("outer: %w", goerrors.New("inner"))
	got := Classify(err)
	if got != "errors_errorstring" {
		t.Fatalf("Classify(plain error) = %q, want %q", got, "errors_errorstring")
	}
}
