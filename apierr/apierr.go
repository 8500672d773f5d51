// Package apierr defines the typed errors returned by the service
// layer and their HTTP status mapping. Every handler converts these to
// a JSON error body at the boundary; nothing escapes as a raw error.
package apierr

import (
	"errors"
	"net/http"
)

// Kind classifies an error for status mapping and caller messaging.
type Kind int

const (
	// KindConfiguration means a required credential or env var is missing.
	KindConfiguration Kind = iota
	// KindValidation means the caller's input was malformed or out of range.
	KindValidation
	// KindUpstreamAuth means the provider rejected credentials or a token.
	KindUpstreamAuth
	// KindUpstreamRateLimit means the provider returned a rate-limit status.
	KindUpstreamRateLimit
	// KindUpstreamService means any other non-success provider response.
	KindUpstreamService
	// KindParse means the provider response was not the expected shape.
	KindParse
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindValidation:
		return "validation"
	case KindUpstreamAuth:
		return "upstream_auth"
	case KindUpstreamRateLimit:
		return "upstream_rate_limit"
	case KindUpstreamService:
		return "upstream_service"
	case KindParse:
		return "parse"
	}
	return "unknown"
}

// Error carries the error kind, a caller-facing message, optional
// details, and an optional upstream status to pass through.
type Error struct {
	Kind           Kind
	Message        string
	Details        string
	UpstreamStatus int
	Err            error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Status returns the HTTP status code this error maps to.
func (e *Error) Status() int {
	switch e.Kind {
	case KindConfiguration:
		return http.StatusInternalServerError
	case KindValidation:
		return http.StatusBadRequest
	case KindUpstreamAuth:
		if e.UpstreamStatus == http.StatusUnauthorized {
			return http.StatusUnauthorized
		}
		return http.StatusBadRequest
	case KindUpstreamRateLimit:
		return http.StatusTooManyRequests
	case KindUpstreamService:
		if e.UpstreamStatus >= 400 {
			return e.UpstreamStatus
		}
		return http.StatusInternalServerError
	case KindParse:
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

// New creates an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an Error of the given kind wrapping a cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Configuration creates a missing-configuration error.
func Configuration(message string) *Error {
	return New(KindConfiguration, message)
}

// Validation creates a caller-input error with a field-level message.
func Validation(message string) *Error {
	return New(KindValidation, message)
}

// UpstreamAuth creates a provider-rejection error carrying the
// provider's status code.
func UpstreamAuth(message string, status int) *Error {
	return &Error{Kind: KindUpstreamAuth, Message: message, UpstreamStatus: status}
}

// Upstream classifies a non-success provider status: 429 becomes a
// rate-limit error, everything else a service error carrying the
// provider status for passthrough.
func Upstream(message string, status int) *Error {
	if status == http.StatusTooManyRequests {
		return &Error{
			Kind:           KindUpstreamRateLimit,
			Message:        message,
			Details:        "Rate limit exceeded",
			UpstreamStatus: status,
		}
	}
	return &Error{
		Kind:           KindUpstreamService,
		Message:        message,
		Details:        "Service unavailable",
		UpstreamStatus: status,
	}
}

// Parse creates an unexpected-response-shape error.
func Parse(message string, err error) *Error {
	return Wrap(KindParse, message, err)
}

// As unwraps err into an *Error if possible.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
