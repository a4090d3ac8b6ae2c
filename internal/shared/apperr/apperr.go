package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error into the small set of outcomes the API exposes.
type Kind int

const (
	KindValidation Kind = iota
	KindNotFound
	KindConflict
	KindUpstream
	KindStorage
)

// Error carries a machine-readable code alongside the human message.
// Upstream/storage causes stay wrapped and are logged, never serialized.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error without an underlying cause.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap creates an Error that keeps the underlying cause for logging.
func Wrap(kind Kind, code, message string, err error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

func Validation(code, message string) *Error {
	return New(KindValidation, code, message)
}

func NotFound(code, message string) *Error {
	return New(KindNotFound, code, message)
}

func Conflict(code, message string) *Error {
	return New(KindConflict, code, message)
}

func Upstream(code, message string, err error) *Error {
	return Wrap(KindUpstream, code, message, err)
}

func Storage(message string, err error) *Error {
	return Wrap(KindStorage, "STORAGE_ERROR", message, err)
}

// AsError extracts an *Error from an error chain, if present.
func AsError(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf returns the stable error code, or "INTERNAL_ERROR" for untyped errors.
func CodeOf(err error) string {
	if appErr, ok := AsError(err); ok {
		return appErr.Code
	}
	return "INTERNAL_ERROR"
}

// HTTPStatus maps an error to its HTTP-equivalent status code.
func HTTPStatus(err error) int {
	appErr, ok := AsError(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch appErr.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Public returns the message safe to expose to clients. Upstream and storage
// failures degrade to a generic message so provider internals never leak.
func Public(err error) string {
	appErr, ok := AsError(err)
	if !ok {
		return "internal server error"
	}
	switch appErr.Kind {
	case KindUpstream, KindStorage:
		return "service temporarily unavailable"
	default:
		return appErr.Message
	}
}
