// Package errors defines the error values the HTTP layer renders to clients.
package errors

import (
	"errors"
	"maps"
	"net/http"
)

// AppError carries a stable code and a client-safe message. The internal
// cause is logged but never rendered.
type AppError struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Fields     map[string]string `json:"fields,omitempty"`
	StatusCode int               `json:"-"`
	Internal   error             `json:"-"`
}

func (e *AppError) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.Internal == nil:
		return e.Message
	default:
		return e.Message + ": " + e.Internal.Error()
	}
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Internal
}

// Is matches any AppError with the same code, so copies made by the With
// helpers still satisfy errors.Is against the package sentinels.
func (e *AppError) Is(target error) bool {
	other, ok := target.(*AppError)
	if !ok || e == nil || other == nil {
		return false
	}
	return e.Code == other.Code
}

func (e *AppError) clone() *AppError {
	cpy := *e
	cpy.Fields = maps.Clone(e.Fields)
	return &cpy
}

// WithInternal returns a copy with err attached as the cause.
func (e *AppError) WithInternal(err error) *AppError {
	if e == nil {
		return nil
	}
	cpy := e.clone()
	cpy.Internal = err
	return cpy
}

// WithMessage returns a copy with a different client message.
func (e *AppError) WithMessage(message string) *AppError {
	if e == nil {
		return nil
	}
	cpy := e.clone()
	cpy.Message = message
	return cpy
}

// WithFields returns a copy carrying per-field messages, keyed by the
// request field name.
func (e *AppError) WithFields(fields map[string]string) *AppError {
	if e == nil {
		return nil
	}
	cpy := e.clone()
	if len(fields) > 0 {
		cpy.Fields = maps.Clone(fields)
	}
	return cpy
}

func define(code string, status int, message string) *AppError {
	return &AppError{Code: code, Message: message, StatusCode: status}
}

var (
	ErrBadRequest         = define("BAD_REQUEST", http.StatusBadRequest, "Invalid request")
	ErrUnauthorized       = define("UNAUTHORIZED", http.StatusUnauthorized, "Authentication required")
	ErrInvalidCredentials = define("INVALID_CREDENTIALS", http.StatusUnauthorized, "Invalid username or password")
	ErrForbidden          = define("FORBIDDEN", http.StatusForbidden, "Permission denied")
	ErrCSRFInvalid        = define("CSRF_TOKEN_INVALID", http.StatusForbidden, "Invalid CSRF token")
	ErrNotFound           = define("NOT_FOUND", http.StatusNotFound, "Resource not found")
	ErrUnknownShortcode   = define("UNKNOWN_SHORTCODE", http.StatusNotFound, "Shortcode is not registered")
	ErrRateLimit          = define("RATE_LIMIT_EXCEEDED", http.StatusTooManyRequests, "Too many requests, please slow down")
	ErrInternalServer     = define("INTERNAL_SERVER_ERROR", http.StatusInternalServerError, "Internal server error")
)

// New builds an application error.
func New(code, message string, statusCode int) *AppError {
	return define(code, statusCode, message)
}

// Wrap keeps an AppError already in err's chain; anything else becomes a 500
// with message shown to the client and err kept for the logs.
func Wrap(err error, message string) *AppError {
	if appErr, ok := As(err); ok {
		return appErr
	}
	return define("INTERNAL_ERROR", http.StatusInternalServerError, message).WithInternal(err)
}

// FromError is Wrap with the generic internal server error message. A nil err
// stays nil.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := As(err); ok {
		return appErr
	}
	return ErrInternalServer.WithInternal(err)
}

// As finds the first AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr != nil {
		return appErr, true
	}
	return nil, false
}

// StatusOf reports the HTTP status err should be rendered with.
func StatusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if appErr, ok := As(err); ok && appErr.StatusCode != 0 {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

// NewBadRequest is ErrBadRequest with a specific message.
func NewBadRequest(message string) *AppError {
	return ErrBadRequest.WithMessage(message)
}
