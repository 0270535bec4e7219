package governance

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is matched by every NotFoundError via errors.Is.
var ErrNotFound = errors.New("record not found")

// ValidationError reports a malformed definition or request. The caller must
// not persist the record that produced it.
type ValidationError struct {
	Entity string   // "lineage", "override", ...
	Issues []string // Individual problems, in detection order
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if len(e.Issues) == 1 {
		return fmt.Sprintf("invalid %s: %s", e.Entity, e.Issues[0])
	}
	return fmt.Sprintf("invalid %s: %d issues: %s", e.Entity, len(e.Issues), strings.Join(e.Issues, "; "))
}

// NewValidationError creates a new ValidationError.
func NewValidationError(entity string, issues ...string) *ValidationError {
	return &ValidationError{Entity: entity, Issues: issues}
}

// InvalidTransitionError reports an override action attempted from a state
// that does not allow it. It signals a workflow bug and must not be retried.
type InvalidTransitionError struct {
	From   OverrideStatus
	Action OverrideAction
}

// Error implements the error interface.
func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: cannot %s an override in status %q", e.Action, e.From)
}

// NewInvalidTransitionError creates a new InvalidTransitionError.
func NewInvalidTransitionError(from OverrideStatus, action OverrideAction) *InvalidTransitionError {
	return &InvalidTransitionError{From: from, Action: action}
}

// NotFoundError reports a missing record in a named collection.
type NotFoundError struct {
	Collection string
	ID         string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s/%s: %v", e.Collection, e.ID, ErrNotFound)
}

// Is makes errors.Is(err, ErrNotFound) succeed.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(collection, id string) *NotFoundError {
	return &NotFoundError{Collection: collection, ID: id}
}

// StorageError represents an error from a storage backend.
type StorageError struct {
	Backend   string // "memory", "sqlite", ...
	Operation string // "append", "query", "delete", ...
	Cause     error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageError creates a new StorageError.
func NewStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{Backend: backend, Operation: operation, Cause: cause}
}

// QueryError represents an invalid snapshot query.
type QueryError struct {
	Field string
	Cause error
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("query error: %v", e.Cause)
	}
	return fmt.Sprintf("query error [field=%s]: %v", e.Field, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *QueryError) Unwrap() error {
	return e.Cause
}

// NewQueryError creates a new QueryError.
func NewQueryError(field string, cause error) *QueryError {
	return &QueryError{Field: field, Cause: cause}
}

// ExportError represents a failure while exporting snapshots.
type ExportError struct {
	Format string
	Cause  error
}

// Error implements the error interface.
func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [format=%s]: %v", e.Format, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *ExportError) Unwrap() error {
	return e.Cause
}

// NewExportError creates a new ExportError.
func NewExportError(format string, cause error) *ExportError {
	return &ExportError{Format: format, Cause: cause}
}

// SignalError represents a failure handing an exception signal to a sink.
type SignalError struct {
	SignalID string
	Sink     string
	Cause    error
}

// Error implements the error interface.
func (e *SignalError) Error() string {
	return fmt.Sprintf("signal error [id=%s, sink=%s]: %v", e.SignalID, e.Sink, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *SignalError) Unwrap() error {
	return e.Cause
}

// NewSignalError creates a new SignalError.
func NewSignalError(signalID, sink string, cause error) *SignalError {
	return &SignalError{SignalID: signalID, Sink: sink, Cause: cause}
}
