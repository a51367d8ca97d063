// Package errors defines the structured error types used across the deposit
// reconciliation service.
//
// Every operation that can fail for a caller-visible reason returns an *Error
// carrying a Kind from the taxonomy below. The HTTP layer (out of scope here)
// is expected to translate kinds into status codes; the background passes
// treat per-item errors as non-fatal and only surface aggregate counts.
package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies an error into one of the caller-visible failure modes.
type Kind string

const (
	// KindNotFound indicates a referenced entity id is absent from the store.
	KindNotFound Kind = "not_found"

	// KindInvalidState indicates the operation is not legal in the entity's
	// current status, e.g. submitting proof on a non-pending deposit or
	// activating an unapproved payment account.
	KindInvalidState Kind = "invalid_state"

	// KindConflict indicates a uniqueness violation, e.g. a duplicate
	// UTR/hash proof string or a duplicate user email.
	KindConflict Kind = "conflict"

	// KindValidation indicates malformed input, e.g. a non-positive deposit
	// amount or an empty bulk account upload.
	KindValidation Kind = "validation"

	// KindStorage indicates the durable store could not be read or persisted.
	KindStorage Kind = "storage"

	// KindInternal indicates an unexpected failure.
	KindInternal Kind = "internal"
)

// String returns the string representation of the Kind
func (k Kind) String() string {
	return string(k)
}

// Context provides additional structured information about an error
type Context map[string]interface{}

// Error is the base error type for all service errors
type Error struct {
	Kind       Kind              `json:"kind"`
	Message    string            `json:"message"`
	Context    Context           `json:"context,omitempty"`
	Cause      error             `json:"-"`
	StackTrace errors.StackTrace `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause error
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithContext adds a key/value pair to the error context
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(Context)
	}
	e.Context[key] = value
	return e
}

// stackTracer is the interface github.com/pkg/errors exposes for stacks
type stackTracer interface {
	StackTrace() errors.StackTrace
}

// New creates a new Error with the given kind and message
func New(kind Kind, message string) *Error {
	return &Error{
		Kind:       kind,
		Message:    message,
		StackTrace: errors.New("").(stackTracer).StackTrace(),
	}
}

// Newf creates a new Error with a formatted message
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return New(kind, fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error with service error context. Returns nil when
// err is nil so it can be used on return paths unconditionally.
func Wrap(err error, kind Kind, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Kind:       kind,
		Message:    message,
		Cause:      err,
		StackTrace: errors.WithStack(err).(stackTracer).StackTrace(),
	}
}

// Constructors for the common failure shapes

// NotFound reports an absent entity by collection name and id
func NotFound(entity string, id int64) *Error {
	return Newf(KindNotFound, "%s %d not found", entity, id).
		WithContext("entity", entity).
		WithContext("id", id)
}

// InvalidState reports an operation attempted in an illegal status
func InvalidState(entity string, id int64, message string) *Error {
	return Newf(KindInvalidState, "%s %d: %s", entity, id, message).
		WithContext("entity", entity).
		WithContext("id", id)
}

// Conflict reports a uniqueness violation on the named field
func Conflict(field string, value interface{}, message string) *Error {
	return New(KindConflict, message).
		WithContext("field", field).
		WithContext("value", value)
}

// Validation reports malformed input for the named field
func Validation(field string, value interface{}, message string) *Error {
	return New(KindValidation, message).
		WithContext("field", field).
		WithContext("value", value)
}

// Storage reports a durable store failure during the named operation
func Storage(operation string, err error) *Error {
	return Wrap(err, KindStorage, fmt.Sprintf("store %s failed", operation)).
		WithContext("operation", operation)
}

// Kind inspection helpers

// GetKind extracts the Kind from an error chain, or KindInternal when the
// error carries no service kind.
func GetKind(err error) Kind {
	if e, ok := AsError(err); ok {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether the error chain contains an Error of the given kind
func IsKind(err error, kind Kind) bool {
	e, ok := AsError(err)
	return ok && e.Kind == kind
}

// IsNotFound reports whether err is a not-found error
func IsNotFound(err error) bool { return IsKind(err, KindNotFound) }

// IsInvalidState reports whether err is an invalid-state error
func IsInvalidState(err error) bool { return IsKind(err, KindInvalidState) }

// IsConflict reports whether err is a conflict error
func IsConflict(err error) bool { return IsKind(err, KindConflict) }

// IsValidation reports whether err is a validation error
func IsValidation(err error) bool { return IsKind(err, KindValidation) }

// AsError extracts an *Error from an error chain
func AsError(err error) (*Error, bool) {
	var serviceErr *Error
	if errors.As(err, &serviceErr) {
		return serviceErr, true
	}
	return nil, false
}

// WrapIfNeeded wraps an error unless it already carries a service kind
func WrapIfNeeded(err error, kind Kind, message string) *Error {
	if err == nil {
		return nil
	}
	if serviceErr, ok := AsError(err); ok {
		return serviceErr
	}
	return Wrap(err, kind, message)
}
