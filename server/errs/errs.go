// Package errs provides the coded errors shared by the simulation, merge and
// storage layers.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error class.
type Code string

const (
	// CodeConfiguration rejects invalid inputs before any simulation work.
	CodeConfiguration Code = "CONFIGURATION"
	// CodeSchema rejects batches that cannot be combined.
	CodeSchema Code = "SCHEMA"
	// CodeStorage covers read/write failures and corrupt stored batches.
	CodeStorage Code = "STORAGE"
	// CodeNotFound is a storage lookup that matched nothing.
	CodeNotFound Code = "NOT_FOUND"
)

// HTTPStatus maps a code to the status the API answers with.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeConfiguration, CodeSchema:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error { return e.Cause }

// Is matches by code, so errors.Is(err, errs.ErrSchema) works for any schema error.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// Sentinels for errors.Is checks.
var (
	ErrConfiguration = &Error{Code: CodeConfiguration, Message: "invalid configuration"}
	ErrSchema        = &Error{Code: CodeSchema, Message: "schema mismatch"}
	ErrStorage       = &Error{Code: CodeStorage, Message: "storage failure"}
	ErrNotFound      = &Error{Code: CodeNotFound, Message: "not found"}
)

// Configurationf builds a configuration error.
func Configurationf(format string, args ...any) error {
	return &Error{Code: CodeConfiguration, Message: fmt.Sprintf(format, args...)}
}

// Schemaf builds a schema error.
func Schemaf(format string, args ...any) error {
	return &Error{Code: CodeSchema, Message: fmt.Sprintf(format, args...)}
}

// NotFoundf builds a not-found error.
func NotFoundf(format string, args ...any) error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Storage wraps a driver failure. A nil cause returns nil.
func Storage(message string, cause error) error {
	if cause == nil {
		return nil
	}
	return &Error{Code: CodeStorage, Message: message, Cause: cause}
}

// CodeOf extracts the code of the first coded error in the chain.
func CodeOf(err error) (Code, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return "", false
}
