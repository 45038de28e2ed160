// Package apperr defines the domain errors returned by services and mapped to
// HTTP responses by the api package.
//
// Services create errors where the failure is detected:
//
//	return apperr.Validation("ingredients must not be empty")
//
// Callers match on kind with errors.Is:
//
//	if errors.Is(err, apperr.ErrConflict) { ... }
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is a machine-readable error category.
type Kind string

const (
	KindValidation             Kind = "validation"
	KindNotFound               Kind = "not_found"
	KindConflict               Kind = "conflict"
	KindPermissionDenied       Kind = "permission_denied"
	KindAuthenticationRequired Kind = "authentication_required"
	KindInternal               Kind = "internal"
)

// HTTPStatus returns the status code a kind maps to.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindPermissionDenied:
		return http.StatusForbidden
	case KindAuthenticationRequired:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a kind, message and optional field details.
type Error struct {
	Kind    Kind              `json:"error"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error with the same Kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

func (e *Error) HTTPStatus() int {
	return e.Kind.HTTPStatus()
}

// Sentinels for errors.Is.
var (
	ErrValidation             = &Error{Kind: KindValidation, Message: "validation failed"}
	ErrNotFound               = &Error{Kind: KindNotFound, Message: "not found"}
	ErrConflict               = &Error{Kind: KindConflict, Message: "conflict"}
	ErrPermissionDenied       = &Error{Kind: KindPermissionDenied, Message: "permission denied"}
	ErrAuthenticationRequired = &Error{Kind: KindAuthenticationRequired, Message: "authentication required"}
	ErrInternal               = &Error{Kind: KindInternal, Message: "internal error"}
)

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// ValidationWithDetails carries per-field messages keyed by JSON field name.
func ValidationWithDetails(msg string, details map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: msg, Details: details}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

func PermissionDenied(msg string) *Error {
	return &Error{Kind: KindPermissionDenied, Message: msg}
}

func AuthenticationRequired(msg string) *Error {
	return &Error{Kind: KindAuthenticationRequired, Message: msg}
}

// Internal wraps an infrastructure failure. The cause is logged, never sent to clients.
func Internal(msg string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: msg, cause: cause}
}

// KindOf returns the kind of err, or KindInternal for errors outside this package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
