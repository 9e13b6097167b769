package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// -----------------------------------------------------------------------------
// Severity Tests
// -----------------------------------------------------------------------------

func TestSeverity_String(t *testing.T) {
	tests := []struct {
		severity Severity
		want     string
	}{
		{SeverityDebug, "debug"},
		{SeverityInfo, "info"},
		{SeverityWarning, "warning"},
		{SeverityError, "error"},
		{SeverityCritical, "critical"},
		{Severity(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.severity.String(); got != tt.want {
				t.Errorf("Severity.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

// -----------------------------------------------------------------------------
// Domain Error Tests
// -----------------------------------------------------------------------------

func TestDataSourceError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *DataSourceError
		want string
	}{
		{
			name: "message only",
			err:  NewDataSourceError("fetch failed", nil),
			want: "data source error: fetch failed",
		},
		{
			name: "with mode and text",
			err:  NewDataSourceError("fetch failed", New("boom")).WithMode("text").WithText("ope"),
			want: `data source error [mode=text, text="ope"]: fetch failed: boom`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDataSourceError_Is(t *testing.T) {
	cause := New("provider down")
	err := fmt.Errorf("wrapped: %w", NewDataSourceError("fetch failed", cause))

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
	var dsErr *DataSourceError
	if !errors.As(err, &dsErr) {
		t.Fatal("errors.As(err, *DataSourceError) = false, want true")
	}
	if !dsErr.IsUserFacing() {
		t.Error("IsUserFacing() = false, want true")
	}
}

func TestPersistenceError(t *testing.T) {
	err := NewPersistenceError("save tabs", New("bad gateway")).
		WithMode("remote").
		WithKey("/api/tabs").
		WithStatusCode(502)

	want := "persistence error [mode=remote, key=/api/tabs, status=502]: save tabs: bad gateway"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrPersistence) {
		t.Error("errors.Is(err, ErrPersistence) = false, want true")
	}
	if !IsRetryable(err) {
		t.Error("5xx persistence error should be retryable")
	}
	if IsRetryable(NewPersistenceError("save tabs", nil).WithStatusCode(400)) {
		t.Error("4xx persistence error should not be retryable")
	}
}

// -----------------------------------------------------------------------------
// Semantic Error Tests
// -----------------------------------------------------------------------------

func TestValidationError(t *testing.T) {
	err := NewValidationError("values must not be nil").WithField("values")

	if got, want := err.Error(), "validation error [field=values]: values must not be nil"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrInvalidInput) {
		t.Error("errors.Is(err, ErrInvalidInput) = false, want true")
	}
	if GetSeverity(err) != SeverityWarning {
		t.Errorf("GetSeverity() = %v, want %v", GetSeverity(err), SeverityWarning)
	}
}

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("tab", "/orders")

	if got, want := err.Error(), "tab '/orders' not found"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrNotFound) {
		t.Error("errors.Is(err, ErrNotFound) = false, want true")
	}
}

// -----------------------------------------------------------------------------
// Classification Tests
// -----------------------------------------------------------------------------

func TestIsCanceled(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"context canceled", context.Canceled, true},
		{"wrapped context canceled", fmt.Errorf("fetch: %w", context.Canceled), true},
		{"deadline exceeded", context.DeadlineExceeded, true},
		{"superseded", ErrSuperseded, true},
		{"canceled sentinel", ErrCanceled, true},
		{"plain error", New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsCanceled(tt.err); got != tt.want {
				t.Errorf("IsCanceled() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsUserFacing(t *testing.T) {
	if IsUserFacing(nil) {
		t.Error("IsUserFacing(nil) = true, want false")
	}
	if IsUserFacing(context.Canceled) {
		t.Error("cancellation must never be user facing")
	}
	if !IsUserFacing(NewValidationError("bad")) {
		t.Error("validation errors should be user facing")
	}
	if IsUserFacing(New("internal")) {
		t.Error("plain errors should not be user facing")
	}
}

func TestGetSeverity(t *testing.T) {
	if got := GetSeverity(New("plain")); got != SeverityError {
		t.Errorf("GetSeverity(plain) = %v, want %v", got, SeverityError)
	}
	if got := GetSeverity(ErrSuperseded); got != SeverityDebug {
		t.Errorf("GetSeverity(superseded) = %v, want %v", got, SeverityDebug)
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, "ctx") != nil {
		t.Error("Wrap(nil) should return nil")
	}
	base := New("base")
	err := Wrapf(base, "loading %s", "tabs")
	if got, want := err.Error(), "loading tabs: base"; got != want {
		t.Errorf("Wrapf() = %q, want %q", got, want)
	}
	if !errors.Is(err, base) {
		t.Error("Wrapf should preserve the chain")
	}
}
