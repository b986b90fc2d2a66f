// Package authenticator turns a session into a ready-to-use upstream client,
// refreshing the session's token first when it has expired.
package authenticator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/justestif/spotify-playlist-relay/internal/auth"
	"github.com/justestif/spotify-playlist-relay/internal/session"
	"github.com/justestif/spotify-playlist-relay/internal/spotify"
)

// Refresher exchanges a refresh token for a new access token.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*auth.TokenInfo, error)
}

// Authenticator is the single point where routes obtain upstream access.
type Authenticator struct {
	refresher Refresher
	store     session.Store
	factory   spotify.Factory
	now       func() time.Time

	// refreshes coalesces concurrent refreshes of the same session.
	refreshes singleflight.Group
}

// New creates an Authenticator.
func New(refresher Refresher, store session.Store, factory spotify.Factory) *Authenticator {
	return &Authenticator{
		refresher: refresher,
		store:     store,
		factory:   factory,
		now:       time.Now,
	}
}

// Client returns an upstream client for sess, or false when the session is not logged in.
//
// An expired token is refreshed and written back to both sess and the store before the
// client is built. If the refresh fails, or the session disappeared from the store
// meanwhile, the token is cleared and false is returned; the refresh is not retried.
// A valid token leaves sess and the store untouched.
func (a *Authenticator) Client(ctx context.Context, sess *session.Session) (spotify.Client, bool) {
	if !sess.Authenticated() {
		return nil, false
	}

	tok := sess.Token
	if auth.IsExpired(tok, a.now()) {
		fresh, err := a.refresh(ctx, sess.ID, tok)
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("token refresh failed, session logged out")
			sess.Token = nil
			return nil, false
		}
		sess.Token = fresh
		tok = fresh
	}

	return a.factory(tok.AccessToken), true
}

// refresh performs one refresh for sessionID and stores the outcome.
// Concurrent callers for the same session share the call and its result.
//
// A caller holding an older copy of the token reuses whatever valid token another
// request already stored. A failed refresh only clears the stored token if it is
// still the stale one.
func (a *Authenticator) refresh(ctx context.Context, sessionID string, stale *auth.TokenInfo) (*auth.TokenInfo, error) {
	// The shared call must not die with whichever request started it.
	ctx = context.WithoutCancel(ctx)

	v, err, _ := a.refreshes.Do(sessionID, func() (any, error) {
		current, err := a.store.Get(ctx, sessionID)
		if err != nil {
			return nil, fmt.Errorf("reloading session: %w", err)
		}
		if tok := current.Token; tok != nil && tok.AccessToken != stale.AccessToken && !auth.IsExpired(tok, a.now()) {
			return tok, nil
		}

		fresh, err := a.refresher.Refresh(ctx, stale.RefreshToken)
		if err != nil {
			if clearErr := a.store.ClearToken(ctx, sessionID, stale.AccessToken); clearErr != nil && !errors.Is(clearErr, session.ErrNotFound) {
				zerolog.Ctx(ctx).Error().Err(clearErr).Msg("clearing session token")
			}
			return nil, err
		}

		if err := a.store.UpdateToken(ctx, sessionID, fresh); err != nil {
			return nil, fmt.Errorf("storing refreshed token: %w", err)
		}
		return fresh, nil
	})
	if err != nil {
		return nil, err
	}

	tok := *v.(*auth.TokenInfo)
	return &tok, nil
}
