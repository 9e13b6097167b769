// Package errors provides centralized error definitions and error handling utilities
// for filterbox. It defines domain-specific errors, semantic error types,
// error constructors with context wrapping, and error classification helpers.
//
// # Error Types
//
// Domain-specific errors represent errors from specific subsystems:
//   - DataSourceError: errors raised while fetching candidate items
//   - PersistenceError: errors raised while loading or saving tab state
//
// Semantic errors represent common error conditions:
//   - NotFoundError: resource not found
//   - ValidationError: invalid argument or configuration (InvalidArgument kind)
//
// # Cancellation
//
// Cancellation is control flow, not failure. [IsCanceled] recognises
// context cancellation, [ErrCanceled] and [ErrSuperseded] so callers can
// discard the result without reporting anything to the user:
//
//	items, err := selector.Search(ctx, text, nil)
//	if errors.IsCanceled(err) {
//	    return nil // a newer search replaced this one
//	}
//
// # Error Classification
//
// Errors can be classified by severity and behavior:
//   - Retryable: transient errors that may succeed on retry
//   - UserFacing: errors safe to display to users (vs internal errors)
//   - Severity: Debug, Info, Warning, Error, Critical
package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that require immediate attention.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// General sentinel errors
var (
	// ErrInvalidInput indicates that an argument or value failed validation.
	ErrInvalidInput = New("invalid input")
	// ErrNotFound indicates that a requested resource does not exist.
	ErrNotFound = New("not found")
	// ErrCanceled indicates that an operation was canceled.
	ErrCanceled = New("operation canceled")
	// ErrSuperseded indicates that a newer request replaced this one.
	ErrSuperseded = New("superseded by a newer request")
)

// Persistence-related sentinel errors
var (
	// ErrPersistence indicates a failure reading or writing tab state.
	ErrPersistence = New("persistence failed")
	// ErrUnknownSavingMode indicates an unrecognised saving mode.
	ErrUnknownSavingMode = New("unknown saving mode")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// FilterboxError is the base interface for all filterbox errors.
type FilterboxError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsRetryable returns true if the error is transient and the operation
	// may succeed on retry.
	IsRetryable() bool

	// IsUserFacing returns true if the error message is safe to display
	// to end users.
	IsUserFacing() bool
}

type baseError struct {
	message    string
	cause      error
	severity   Severity
	retryable  bool
	userFacing bool
}

func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *baseError) Unwrap() error {
	return e.cause
}

func (e *baseError) Severity() Severity {
	return e.severity
}

func (e *baseError) IsRetryable() bool {
	return e.retryable
}

func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// formatWithContext renders "<kind> [k=v, ...]: message: cause".
func formatWithContext(kind string, parts []string, message string, cause error) string {
	prefix := kind
	if len(parts) > 0 {
		prefix = fmt.Sprintf("%s [%s]", kind, strings.Join(parts, ", "))
	}
	if cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, message, cause)
	}
	return fmt.Sprintf("%s: %s", prefix, message)
}

// -----------------------------------------------------------------------------
// Domain-Specific Errors
// -----------------------------------------------------------------------------

// DataSourceError represents errors raised while loading candidate items.
// Provider errors themselves are returned unmodified by the engine; this type
// is used by callers that need to attach context before surfacing them.
//
// Example:
//
//	err := errors.NewDataSourceError("search failed", cause).WithMode("text").WithText("ope")
type DataSourceError struct {
	baseError
	Mode string
	Text string
}

// NewDataSourceError creates a new DataSourceError.
func NewDataSourceError(message string, cause error) *DataSourceError {
	return &DataSourceError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			userFacing: true,
		},
	}
}

// WithMode records the query mode ("text" or "value").
func (e *DataSourceError) WithMode(mode string) *DataSourceError {
	e.Mode = mode
	return e
}

// WithText records the searched text.
func (e *DataSourceError) WithText(text string) *DataSourceError {
	e.Text = text
	return e
}

// WithRetryable sets whether the error is retryable.
func (e *DataSourceError) WithRetryable(r bool) *DataSourceError {
	e.retryable = r
	return e
}

func (e *DataSourceError) Error() string {
	var parts []string
	if e.Mode != "" {
		parts = append(parts, fmt.Sprintf("mode=%s", e.Mode))
	}
	if e.Text != "" {
		parts = append(parts, fmt.Sprintf("text=%q", e.Text))
	}
	return formatWithContext("data source error", parts, e.message, e.cause)
}

// Is reports whether target is a *DataSourceError or matches the cause.
func (e *DataSourceError) Is(target error) bool {
	if _, ok := target.(*DataSourceError); ok {
		return true
	}
	return e.cause != nil && errors.Is(e.cause, target)
}

// PersistenceError represents errors loading or saving tab state.
//
// Example:
//
//	err := errors.NewPersistenceError("save tabs", cause).WithMode("remote").WithStatusCode(502)
type PersistenceError struct {
	baseError
	Mode       string
	Key        string
	StatusCode int
}

// NewPersistenceError creates a new PersistenceError.
func NewPersistenceError(message string, cause error) *PersistenceError {
	return &PersistenceError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			userFacing: false,
		},
	}
}

// WithMode records the saving mode ("local" or "remote").
func (e *PersistenceError) WithMode(mode string) *PersistenceError {
	e.Mode = mode
	return e
}

// WithKey records the store key or remote route.
func (e *PersistenceError) WithKey(key string) *PersistenceError {
	e.Key = key
	return e
}

// WithStatusCode records an HTTP status. 5xx responses are retryable.
func (e *PersistenceError) WithStatusCode(code int) *PersistenceError {
	e.StatusCode = code
	e.retryable = code >= 500
	return e
}

func (e *PersistenceError) Error() string {
	var parts []string
	if e.Mode != "" {
		parts = append(parts, fmt.Sprintf("mode=%s", e.Mode))
	}
	if e.Key != "" {
		parts = append(parts, fmt.Sprintf("key=%s", e.Key))
	}
	if e.StatusCode != 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.StatusCode))
	}
	return formatWithContext("persistence error", parts, e.message, e.cause)
}

// Is reports whether target is a *PersistenceError, ErrPersistence, or
// matches the cause.
func (e *PersistenceError) Is(target error) bool {
	if _, ok := target.(*PersistenceError); ok {
		return true
	}
	if target == ErrPersistence {
		return true
	}
	return e.cause != nil && errors.Is(e.cause, target)
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// NotFoundError represents a resource that could not be found.
//
// Example:
//
//	err := errors.NewNotFoundError("tab", "/orders")
//	fmt.Println(err) // "tab '/orders' not found"
type NotFoundError struct {
	baseError
	ResourceType string
	ResourceID   string
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(resourceType, resourceID string) *NotFoundError {
	return &NotFoundError{
		baseError: baseError{
			message:    fmt.Sprintf("%s '%s' not found", resourceType, resourceID),
			severity:   SeverityWarning,
			userFacing: true,
		},
		ResourceType: resourceType,
		ResourceID:   resourceID,
	}
}

// Is reports whether target is a *NotFoundError or ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	if _, ok := target.(*NotFoundError); ok {
		return true
	}
	return target == ErrNotFound
}

// ValidationError represents an invalid argument or invalid state. It is the
// InvalidArgument kind raised for malformed filter construction.
//
// Example:
//
//	err := errors.NewValidationError("values must not be nil").WithField("values")
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:    message,
			severity:   SeverityWarning,
			userFacing: true,
		},
	}
}

// WithField adds a field or argument name to the error context.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue adds the invalid value to the error context.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

func (e *ValidationError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}
	return formatWithContext("validation error", parts, e.message, e.cause)
}

// Is reports whether target is a *ValidationError or ErrInvalidInput.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	return target == ErrInvalidInput
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// IsCanceled reports whether err represents cancellation: a canceled or
// expired context, ErrCanceled, or ErrSuperseded. Canceled results should be
// discarded silently.
func IsCanceled(err error) bool {
	if err == nil {
		return false
	}
	return Is(err, context.Canceled) ||
		Is(err, context.DeadlineExceeded) ||
		Is(err, ErrCanceled) ||
		Is(err, ErrSuperseded)
}

// IsRetryable returns true if the error represents a transient condition
// that may succeed on retry.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var fbErr FilterboxError
	if As(err, &fbErr) {
		return fbErr.IsRetryable()
	}
	return false
}

// IsUserFacing returns true if the error message is safe to display to end users.
// Cancellation is never user facing.
func IsUserFacing(err error) bool {
	if err == nil || IsCanceled(err) {
		return false
	}
	var fbErr FilterboxError
	if As(err, &fbErr) {
		return fbErr.IsUserFacing()
	}
	return false
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement FilterboxError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}
	if IsCanceled(err) {
		return SeverityDebug
	}
	var fbErr FilterboxError
	if As(err, &fbErr) {
		return fbErr.Severity()
	}
	return SeverityError
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
