// Package upstream holds the typed error surface shared by the GitHub and
// LLM API clients. Handlers never echo these to callers; the dispatcher
// converts them to an opaque 500 with a correlation id and the detail stays
// in the server logs.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// ErrorType categorizes an upstream failure.
type ErrorType int

const (
	ErrTypeAuthentication ErrorType = iota
	ErrTypeRateLimit
	ErrTypeNotFound
	ErrTypeInvalidRequest
	ErrTypeServiceUnavailable
	ErrTypeTimeout
	ErrTypeTransport
	ErrTypeUnknown
)

// String returns a human-readable description of the error type.
func (e ErrorType) String() string {
	switch e {
	case ErrTypeAuthentication:
		return "authentication error"
	case ErrTypeRateLimit:
		return "rate limit exceeded"
	case ErrTypeNotFound:
		return "not found"
	case ErrTypeInvalidRequest:
		return "invalid request"
	case ErrTypeServiceUnavailable:
		return "service unavailable"
	case ErrTypeTimeout:
		return "timeout"
	case ErrTypeTransport:
		return "transport error"
	default:
		return "unknown error"
	}
}

// Error is a typed failure from an upstream API call.
type Error struct {
	Type       ErrorType
	Message    string
	StatusCode int
	Provider   string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %s (status: %d)", e.Provider, e.Type.String(), e.Message, e.StatusCode)
}

// Is matches on error type so callers can use errors.Is with a sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// NewTransportError wraps a failure where no HTTP status was received.
// Deadline and I/O timeouts are classified ErrTypeTimeout; every other
// network failure (connection refused, DNS, reset) is ErrTypeTransport so
// operators can tell slow upstreams from unreachable ones.
func NewTransportError(provider string, err error) *Error {
	errType := ErrTypeTransport
	if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
		errType = ErrTypeTimeout
	}
	return &Error{
		Type:     errType,
		Message:  err.Error(),
		Provider: provider,
	}
}
