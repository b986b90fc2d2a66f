// Package session keeps per-browser state on the server, keyed by a signed cookie.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/justestif/spotify-playlist-relay/internal/auth"
)

// ErrNotFound is returned when a session does not exist or has expired.
var ErrNotFound = errors.New("session not found")

// Session is the server-side state of one browser.
type Session struct {
	ID string

	// Token is nil while the user is not logged in.
	Token *auth.TokenInfo

	// Permanent sessions get a cookie that survives browser restarts for the configured lifetime.
	Permanent bool

	CreatedAt time.Time
	ExpiresAt time.Time
}

// Authenticated reports whether the session holds a token.
func (s *Session) Authenticated() bool {
	return s != nil && s.Token != nil
}

// Store persists sessions. Implementations must make each method atomic per session ID.
type Store interface {
	// Get returns a copy of an unexpired session or ErrNotFound.
	Get(ctx context.Context, id string) (*Session, error)

	// Save inserts or replaces a session.
	Save(ctx context.Context, s *Session) error

	// UpdateToken replaces the token of an existing session; nil clears it.
	// Returns ErrNotFound if the session was deleted or expired in the meantime.
	UpdateToken(ctx context.Context, id string, tok *auth.TokenInfo) error

	// ClearToken removes the token of a session only while its access token is still
	// accessToken. A session holding a different token is left alone.
	// Returns ErrNotFound if the session was deleted or expired.
	ClearToken(ctx context.Context, id, accessToken string) error

	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error

	// DeleteExpired removes expired sessions and reports how many were removed.
	DeleteExpired(ctx context.Context) (int64, error)
}

type contextKey struct{}

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session stored in ctx, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(contextKey{}).(*Session)
	return s
}

func copyToken(tok *auth.TokenInfo) *auth.TokenInfo {
	if tok == nil {
		return nil
	}
	c := *tok
	return &c
}
