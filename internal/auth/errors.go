package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"

	"golang.org/x/oauth2"
)

// Error kinds returned by the Exchanger. Every error it returns wraps exactly one of these.
var (
	// ErrInvalidGrant is returned when the authorization code is invalid, expired or already used.
	ErrInvalidGrant = errors.New("invalid authorization grant")

	// ErrInvalidRefreshToken is returned when the provider rejects a refresh token as revoked or expired.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// ErrNetwork is returned when the token endpoint could not be reached or timed out.
	ErrNetwork = errors.New("token endpoint unreachable")

	// ErrProvider is returned for any other provider failure, including malformed responses.
	ErrProvider = errors.New("token endpoint error")
)

// classify maps a golang.org/x/oauth2 failure onto an error kind.
// rejected is the kind used when the provider answers invalid_grant.
func classify(err error, rejected error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		if retrieveErr.ErrorCode == "invalid_grant" {
			if retrieveErr.ErrorDescription != "" {
				return fmt.Errorf("%w: %s", rejected, retrieveErr.ErrorDescription)
			}
			return rejected
		}
		return fmt.Errorf("%w: %v", ErrProvider, err)
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	return fmt.Errorf("%w: %v", ErrProvider, err)
}
