// Package errs defines the closed set of errors the service can surface to
// clients. Every error that reaches the HTTP boundary is either an *Error or
// reduced to one of kind Internal.
package errs

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Kind discriminates the error variants.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindMethodNotAllowed
	KindService
)

// Name returns the public error name used in the response envelope.
func (k Kind) Name() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindUnauthorized:
		return "UnauthorizedError"
	case KindForbidden:
		return "ForbiddenError"
	case KindNotFound:
		return "NotFoundError"
	case KindMethodNotAllowed:
		return "MethodNotAllowedError"
	case KindService:
		return "ServiceError"
	default:
		return "InternalServerError"
	}
}

// StatusCode maps the kind to its HTTP status.
func (k Kind) StatusCode() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case KindService:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error is the service error type. Cause is kept for logging and errors.As
// and is never serialized.
type Error struct {
	Kind    Kind
	Message string
	Action  string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Kind.Name() + ": " + e.Message + ": " + e.Cause.Error()
	}
	return e.Kind.Name() + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// StatusCode returns the HTTP status for the error.
func (e *Error) StatusCode() int { return e.Kind.StatusCode() }

type envelope struct {
	Name       string `json:"name"`
	Message    string `json:"message"`
	Action     string `json:"action"`
	StatusCode int    `json:"status_code"`
}

// MarshalJSON renders the public envelope.
func (e *Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(envelope{
		Name:       e.Kind.Name(),
		Message:    e.Message,
		Action:     e.Action,
		StatusCode: e.Kind.StatusCode(),
	})
}

// Validation reports input the client must fix.
func Validation(message, action string) *Error {
	return &Error{Kind: KindValidation, Message: message, Action: action}
}

// Unauthorized reports a missing or failed authentication.
func Unauthorized(message, action string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message, Action: action}
}

// Forbidden reports a caller lacking the required feature.
func Forbidden(message, action string) *Error {
	return &Error{Kind: KindForbidden, Message: message, Action: action}
}

// NotFound reports an absent resource.
func NotFound(message, action string) *Error {
	return &Error{Kind: KindNotFound, Message: message, Action: action}
}

// MethodNotAllowed reports an unsupported HTTP verb.
func MethodNotAllowed() *Error {
	return &Error{
		Kind:    KindMethodNotAllowed,
		Message: "Method not allowed to this endpoint",
		Action:  "Verify if the method HTTP sended is allowed to this endpoint",
	}
}

// Service wraps a downstream (database, mail) failure.
func Service(cause error) *Error {
	return &Error{
		Kind:    KindService,
		Message: "Connection or Query Error",
		Action:  "Verify if the service is available",
		Cause:   cause,
	}
}

// Internal wraps an unexpected fault.
func Internal(cause error) *Error {
	return &Error{
		Kind:    KindInternal,
		Message: "A unexpected Internal Error ocurred",
		Action:  "Contact support",
		Cause:   cause,
	}
}

// Public returns the error to show the client: known kinds unchanged,
// anything else wrapped as Internal.
func Public(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}

// Is reports whether err carries an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
