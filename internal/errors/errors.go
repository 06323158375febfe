package errors

import (
	"errors"
	"net/http"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a referenced entity is absent.
	ErrNotFound = errors.New("record not found")
	// ErrForbidden is returned when an authenticated user is disallowed.
	ErrForbidden = errors.New("forbidden")
	// ErrUnauthenticated is returned on missing or invalid credentials.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrConflict is returned on duplicate unique keys.
	ErrConflict = errors.New("conflict")
	// ErrValidation is returned on missing or malformed input.
	ErrValidation = errors.New("validation failed")
)

// ErrorResponse is the failure envelope returned by every endpoint.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// HTTPError carries an HTTP status with a message and optional details.
type HTTPError struct {
	StatusCode int
	Message    string
	Details    any
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message string) *HTTPError {
	return &HTTPError{StatusCode: statusCode, Message: message}
}

// WithDetails attaches machine-readable details to the error.
func (e *HTTPError) WithDetails(details any) *HTTPError {
	e.Details = details
	return e
}

// Validation builds a 400 error.
func Validation(message string) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, message)
}

// Unauthenticated builds a 401 error.
func Unauthenticated(message string) *HTTPError {
	return NewHTTPError(http.StatusUnauthorized, message)
}

// Forbidden builds a 403 error.
func Forbidden(message string) *HTTPError {
	return NewHTTPError(http.StatusForbidden, message)
}

// NotFound builds a 404 error.
func NotFound(message string) *HTTPError {
	return NewHTTPError(http.StatusNotFound, message)
}

// Conflict builds a 409 error.
func Conflict(message string) *HTTPError {
	return NewHTTPError(http.StatusConflict, message)
}

// Internal builds a 500 error with a generic message.
func Internal() *HTTPError {
	return NewHTTPError(http.StatusInternalServerError, "internal server error")
}

// ToResponse converts an HTTPError to the failure envelope.
func (e *HTTPError) ToResponse() ErrorResponse {
	return ErrorResponse{Success: false, Error: e.Message, Details: e.Details}
}

// MapError maps domain and store errors to HTTP errors. Unrecognized errors
// become a generic 500 so nothing internal leaks to clients.
func MapError(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return NotFound("record not found")
	case errors.Is(err, ErrForbidden):
		return Forbidden(err.Error())
	case errors.Is(err, ErrUnauthenticated):
		return Unauthenticated(err.Error())
	case errors.Is(err, ErrConflict), errors.Is(err, gorm.ErrDuplicatedKey):
		return Conflict(err.Error())
	case errors.Is(err, ErrValidation):
		return Validation(err.Error())
	default:
		return Internal()
	}
}
