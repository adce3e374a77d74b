package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnauthenticated is returned before any network call when the token
// provider has no token for the request.
var ErrUnauthenticated = errors.New("no authentication token available")

// Kind classifies a remote API failure. Classification happens once, at
// the HTTP boundary; callers branch on the kind instead of re-deriving it
// from status codes or message text.
type Kind int

const (
	KindUnknown Kind = iota
	// KindNetwork means the request never reached the server. Retryable.
	KindNetwork
	// KindAuth means the server rejected the credentials. Not retryable;
	// the session must be cleared upstream.
	KindAuth
	// KindServer is a 5xx response. Retryable with bounded attempts.
	KindServer
	// KindValidation is a 400/422 response. Not retryable; user-actionable.
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindAuth:
		return "auth"
	case KindServer:
		return "server"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind       Kind
	StatusCode int
	Message    string
	cause      error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api %s error: %s", e.Kind, e.Message)
	}
	if e.cause != nil {
		return fmt.Sprintf("api %s error: %v", e.Kind, e.cause)
	}
	return fmt.Sprintf("api %s error (status %d)", e.Kind, e.StatusCode)
}

func (e *Error) Unwrap() error {
	return e.cause
}

func (e *Error) Retryable() bool {
	return e.Kind == KindNetwork || e.Kind == KindServer
}

// KindOf extracts the classified kind from an error chain.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}

// IsRetryable reports whether a failed call may be attempted again.
func IsRetryable(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Retryable()
	}
	return false
}

func classifyTransport(err error) *Error {
	return &Error{Kind: KindNetwork, Message: "request failed", cause: err}
}

func classifyStatus(statusCode int, message string) *Error {
	kind := KindUnknown
	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		kind = KindAuth
	case statusCode == http.StatusBadRequest || statusCode == http.StatusUnprocessableEntity:
		kind = KindValidation
	case statusCode >= 500:
		kind = KindServer
	}
	return &Error{Kind: kind, StatusCode: statusCode, Message: message}
}
