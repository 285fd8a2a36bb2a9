// Package apperr defines the error taxonomy surfaced over the API. Each
// error carries a stable machine-readable code and maps to an HTTP status;
// persistence errors additionally get a correlation id so a client report
// can be matched to a server log line without leaking internals.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

type Code string

const (
	CodeValidation  Code = "VALIDATION"
	CodeAuth        Code = "AUTH"
	CodeNotFound    Code = "NOT_FOUND"
	CodeDemoMode    Code = "DEMO_MODE"
	CodePersistence Code = "PERSISTENCE"
)

type Error struct {
	Code          Code   `json:"code"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlation_id,omitempty"`
	err           error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.err }

// Status maps the error code to an HTTP status.
func (e *Error) Status() int {
	switch e.Code {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeAuth:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	case CodeDemoMode:
		return http.StatusForbidden
	case CodePersistence:
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

func Validation(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

func Auth(message string) *Error {
	return &Error{Code: CodeAuth, Message: message}
}

func NotFound(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// DemoMode signals that the request targeted a demo or local-only household
// where server-side writes are refused.
func DemoMode(householdID string) *Error {
	return &Error{
		Code:    CodeDemoMode,
		Message: fmt.Sprintf("household %q is demo or local-only; server-side state is unavailable", householdID),
	}
}

// Persistence wraps a storage failure with a fresh correlation id. The
// wrapped error goes to the log, never to the client.
func Persistence(err error) *Error {
	return &Error{
		Code:          CodePersistence,
		Message:       "a storage operation failed",
		CorrelationID: uuid.NewString(),
		err:           err,
	}
}

// From returns err as an *Error, wrapping unknown errors as persistence
// failures.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Persistence(err)
}
