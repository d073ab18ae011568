package api

import (
	"errors"
	"net/http"
)

var (
	// ErrUnavailable covers transport failures and non-JSON responses.
	// User-facing layers translate it to a generic "try again" message.
	ErrUnavailable = errors.New("service unavailable")

	// ErrUnauthorized is returned for 401/403 responses. The session should
	// be treated as expired; no automatic retry is attempted.
	ErrUnauthorized = errors.New("unauthorized")
)

// BackendError is a non-2xx response carrying the server's message field.
// The message is surfaced to the user verbatim.
type BackendError struct {
	StatusCode int
	Message    string
}

func (e *BackendError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return http.StatusText(e.StatusCode)
}

func (e *BackendError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden {
		return ErrUnauthorized
	}
	return nil
}
