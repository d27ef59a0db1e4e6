// Package apperror defines the error kinds shared by services and handlers.
// Services wrap a sentinel; handlers map the sentinel to an HTTP status.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrValidation      = errors.New("validation_error")
	ErrBadRequest      = errors.New("bad_request")
	ErrUnauthenticated = errors.New("authentication_required")
	ErrForbidden       = errors.New("permission_denied")
	ErrNotFound        = errors.New("not_found")
	ErrConflict        = errors.New("conflict")
)

type AppError struct {
	Err     error  // one of the sentinels above
	Message string // human-readable
	Field   string // optional: offending input field
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func Validation(field, message string) *AppError {
	return &AppError{Err: ErrValidation, Message: message, Field: field}
}

func BadRequest(message string) *AppError {
	return &AppError{Err: ErrBadRequest, Message: message}
}

func Unauthenticated() *AppError {
	return &AppError{Err: ErrUnauthenticated, Message: "authentication credentials were not provided"}
}

func Forbidden(message string) *AppError {
	return &AppError{Err: ErrForbidden, Message: message}
}

func NotFound(resource string, id any) *AppError {
	return &AppError{Err: ErrNotFound, Message: fmt.Sprintf("%s %v not found", resource, id)}
}

func Conflict(resource, message string) *AppError {
	return &AppError{Err: ErrConflict, Message: fmt.Sprintf("%s: %s", resource, message)}
}

// HTTPStatus maps err to the status code the API answers with. Unknown errors are 500.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// Kind returns the machine-readable kind of err, "internal_error" when err carries none.
func Kind(err error) string {
	for _, sentinel := range []error{ErrValidation, ErrBadRequest, ErrUnauthenticated, ErrForbidden, ErrNotFound, ErrConflict} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "internal_error"
}
