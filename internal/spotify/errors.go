package spotify

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/zmb3/spotify/v2"
)

// Upstream error kinds. An *APIError unwraps to exactly one of these.
var (
	ErrUnauthorized = errors.New("authorization rejected")
	ErrNotFound     = errors.New("resource not found")
	ErrRateLimited  = errors.New("rate limited")
	ErrBadRequest   = errors.New("malformed request")
	ErrUpstream     = errors.New("upstream failure")
)

// APIError is a non-2xx answer from the Web API.
type APIError struct {
	Kind    error
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("http status %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Kind
}

// classify wraps err with op, turning Web API error bodies into an *APIError.
// Transport failures are wrapped unchanged.
func classify(op string, err error) error {
	var value spotify.Error
	if errors.As(err, &value) {
		return fmt.Errorf("%s: %w", op, newAPIError(value.Status, value.Message))
	}
	var ptr *spotify.Error
	if errors.As(err, &ptr) && ptr != nil {
		return fmt.Errorf("%s: %w", op, newAPIError(ptr.Status, ptr.Message))
	}
	return fmt.Errorf("%s: %w", op, err)
}

func newAPIError(status int, message string) *APIError {
	return &APIError{Kind: kindForStatus(status), Status: status, Message: message}
}

func kindForStatus(status int) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrUnauthorized
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusTooManyRequests:
		return ErrRateLimited
	case status >= 400 && status < 500:
		return ErrBadRequest
	default:
		return ErrUpstream
	}
}
