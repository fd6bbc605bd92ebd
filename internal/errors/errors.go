// Package errors provides the typed errors shared by the API handlers and the
// operator client, along with their HTTP status mapping.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the category of an error.
type ErrorType string

const (
	// TypeValidation indicates invalid input (HTTP 400)
	TypeValidation ErrorType = "validation"
	// TypeUnauthorized indicates a missing or rejected credential (HTTP 401)
	TypeUnauthorized ErrorType = "unauthorized"
	// TypeNotFound indicates resource not found (HTTP 404)
	TypeNotFound ErrorType = "not_found"
	// TypeConflict indicates resource conflict (HTTP 409)
	TypeConflict ErrorType = "conflict"
	// TypeRateLimited indicates the caller exceeded its quota (HTTP 429)
	TypeRateLimited ErrorType = "rate_limited"
	// TypeInternal indicates server-side error (HTTP 500)
	TypeInternal ErrorType = "internal"
	// TypeExternal indicates an upstream service failure (HTTP 502)
	TypeExternal ErrorType = "external"
)

// Error carries a user-facing message, optional per-field messages and the underlying cause.
type Error struct {
	Type    ErrorType
	Message string
	Fields  map[string]string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	if e.Message == "" && len(e.Fields) > 0 {
		return fmt.Sprintf("%s: %d invalid fields", e.Type, len(e.Fields))
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the appropriate HTTP status code for this error type.
func (e *Error) HTTPStatus() int {
	switch e.Type {
	case TypeValidation:
		return http.StatusBadRequest
	case TypeUnauthorized:
		return http.StatusUnauthorized
	case TypeNotFound:
		return http.StatusNotFound
	case TypeConflict:
		return http.StatusConflict
	case TypeRateLimited:
		return http.StatusTooManyRequests
	case TypeExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// WithField attaches a per-field message (chainable).
func (e *Error) WithField(field, message string) *Error {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = message
	return e
}

// FieldsError creates a validation error from per-field messages.
func FieldsError(fields map[string]string) *Error {
	return &Error{Type: TypeValidation, Fields: fields}
}

// ValidationError creates a new validation error (HTTP 400).
func ValidationError(message string) *Error {
	return &Error{Type: TypeValidation, Message: message}
}

// UnauthorizedError creates a new unauthorized error (HTTP 401).
func UnauthorizedError(message string) *Error {
	return &Error{Type: TypeUnauthorized, Message: message}
}

// NotFoundError creates a new not-found error (HTTP 404).
func NotFoundError(message string) *Error {
	return &Error{Type: TypeNotFound, Message: message}
}

// ConflictError creates a new conflict error (HTTP 409).
func ConflictError(message string) *Error {
	return &Error{Type: TypeConflict, Message: message}
}

// RateLimitedError creates a new rate limit error (HTTP 429).
func RateLimitedError(message string) *Error {
	return &Error{Type: TypeRateLimited, Message: message}
}

// InternalError creates a new internal error (HTTP 500).
func InternalError(message string, cause error) *Error {
	return &Error{Type: TypeInternal, Message: message, Cause: cause}
}

// ExternalError creates a new external service error (HTTP 502).
func ExternalError(message string, cause error) *Error {
	return &Error{Type: TypeExternal, Message: message, Cause: cause}
}

// Response is the JSON body written for failed requests.
type Response struct {
	Error  string            `json:"error"`
	Type   ErrorType         `json:"type"`
	Fields map[string]string `json:"fields,omitempty"`
}

// ToResponse converts an Error to its JSON representation.
func (e *Error) ToResponse() Response {
	return Response{Error: e.Message, Type: e.Type, Fields: e.Fields}
}

// As extracts a structured error from err, if any.
func As(err error) (*Error, bool) {
	var structured *Error
	if errors.As(err, &structured) {
		return structured, true
	}
	return nil, false
}

// IsType reports whether err is a structured error of the given type.
func IsType(err error, t ErrorType) bool {
	structured, ok := As(err)
	return ok && structured.Type == t
}

// AsStructuredError converts any error into a structured Error.
// Unknown errors are wrapped as internal errors.
func AsStructuredError(err error) *Error {
	if err == nil {
		return nil
	}
	if structured, ok := As(err); ok {
		return structured
	}
	return InternalError("internal server error", err)
}
