// Package altiserr implements the error taxonomy from the error handling
// design: a single typed error carrying the HTTP status, retry policy and
// correlation metadata a handler needs, instead of ad-hoc errors.New calls
// scattered through the core.
package altiserr

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Kind is one of the error kinds named by the error handling design.
type Kind string

const (
	Authentication        Kind = "AUTHENTICATION"
	Authorization         Kind = "AUTHORIZATION"
	Validation            Kind = "VALIDATION"
	NotFound              Kind = "NOT_FOUND"
	Gone                  Kind = "GONE"
	Conflict              Kind = "CONFLICT"
	DependencyUnavailable Kind = "DEPENDENCY_UNAVAILABLE"
	Internal              Kind = "INTERNAL"
)

var statusByKind = map[Kind]int{
	Authentication:        http.StatusUnauthorized,
	Authorization:         http.StatusForbidden,
	Validation:            http.StatusBadRequest,
	NotFound:              http.StatusNotFound,
	Gone:                  http.StatusGone,
	Conflict:              http.StatusConflict,
	DependencyUnavailable: http.StatusServiceUnavailable,
	Internal:              http.StatusInternalServerError,
}

// Error is the typed error carried through the core. It never embeds
// provider-side detail in Message — that's reserved for internal logging
// via Cause.
type Error struct {
	ID         string
	Kind       Kind
	Operation  string
	Message    string
	Cause      error
	Timestamp  time.Time
	Retryable  bool
	RetryAfter *time.Duration
	Metadata   map[string]interface{}
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Kind, e.Operation, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// HTTPStatus returns the status code this error maps to.
func (e *Error) HTTPStatus() int {
	if s, ok := statusByKind[e.Kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

func newError(kind Kind, operation, message string, cause error, retryable bool) *Error {
	return &Error{
		ID:        uuid.New().String(),
		Kind:      kind,
		Operation: operation,
		Message:   message,
		Cause:     cause,
		Timestamp: time.Now(),
		Retryable: retryable,
		Metadata:  map[string]interface{}{},
	}
}

func New(kind Kind, operation, message string) *Error {
	return newError(kind, operation, message, nil, false)
}

func Wrap(kind Kind, operation, message string, cause error) *Error {
	return newError(kind, operation, message, cause, false)
}

// NewValidation reports malformed input — never mutates state.
func NewValidation(operation, message string) *Error {
	return New(Validation, operation, message)
}

// NewConflict reports inventory contention or an illegal state transition.
func NewConflict(operation, message string) *Error {
	return New(Conflict, operation, message)
}

// NewNotFound reports a missing entity.
func NewNotFound(operation, message string) *Error {
	return New(NotFound, operation, message)
}

// NewGone reports an offer/order past its expiry.
func NewGone(operation, message string) *Error {
	return New(Gone, operation, message)
}

// NewDependencyUnavailable reports a breaker-open or provider-timeout
// condition; it is always retryable after the given delay.
func NewDependencyUnavailable(operation, message string, cause error, retryAfter time.Duration) *Error {
	err := newError(DependencyUnavailable, operation, message, cause, true)
	err.RetryAfter = &retryAfter
	return err
}

// NewInternal reports an unclassified failure. The message returned to
// callers must not leak cause detail; Cause is for logging only.
func NewInternal(operation, message string, cause error) *Error {
	return newError(Internal, operation, message, cause, false)
}

// IsRetryable reports whether err (if an *Error) is retryable.
func IsRetryable(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.Retryable
	}
	return false
}

// As extracts an *Error from err, if any.
func As(err error) (*Error, bool) {
	e, ok := err.(*Error)
	return e, ok
}
