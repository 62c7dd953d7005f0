// internal/infrastructure/platform/errors.go
package platform

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnavailable is returned while the circuit breaker is open
	ErrUnavailable = errors.New("platform unavailable")
	// ErrTransport wraps network level failures reaching the platform
	ErrTransport = errors.New("platform transport failure")
	// ErrInvalidResponse is returned when a body cannot be decoded
	ErrInvalidResponse = errors.New("invalid platform response")
)

// Error is a non-2xx answer from the platform
type Error struct {
	Status  int
	Message string
	Path    string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("platform %s returned %d", e.Path, e.Status)
	}
	return fmt.Sprintf("platform %s returned %d: %s", e.Path, e.Status, e.Message)
}

// IsPlatformError reports whether err came from talking to the platform
func IsPlatformError(err error) bool {
	var perr *Error
	return errors.As(err, &perr) ||
		errors.Is(err, ErrUnavailable) ||
		errors.Is(err, ErrTransport) ||
		errors.Is(err, ErrInvalidResponse)
}

// UserMessage picks the text shown to the shopper for a failed call.
// Business errors carry the platform's own wording. A rejected anti-forgery
// token is indistinguishable from a connection problem.
func UserMessage(err error, fallback, connection string) string {
	var perr *Error
	if !errors.As(err, &perr) {
		return connection
	}
	if perr.Status == http.StatusForbidden {
		return connection
	}
	if perr.Message != "" {
		return perr.Message
	}
	return fallback
}
