package errors

import (
	"errors"
	"net/http"

	"campusrooms/internal/booking"
)

// HTTPError represents an error with an associated HTTP status code.
type HTTPError struct {
	Code    int
	Message string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTPError with the given code and message.
func NewHTTPError(code int, message string) *HTTPError {
	return &HTTPError{
		Code:    code,
		Message: message,
	}
}

// Helper for common errors
var (
	ErrUnauthorized = func(msg string) *HTTPError { return NewHTTPError(http.StatusUnauthorized, msg) }
)

// FromEngine maps the engine's error taxonomy onto HTTP status codes without
// leaking storage detail. Unknown errors become a generic 500.
func FromEngine(err error) *HTTPError {
	switch {
	case errors.Is(err, booking.ErrValidation):
		return NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, booking.ErrNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, booking.ErrConflict):
		return NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, booking.ErrInvalidState):
		return NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, booking.ErrPermission):
		return NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, booking.ErrBusy):
		return NewHTTPError(http.StatusServiceUnavailable, err.Error())
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
