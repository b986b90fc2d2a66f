package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionRepository handles session database operations.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// Upsert inserts a session or replaces the stored row with the same ID.
func (r *SessionRepository) Upsert(ctx context.Context, session *Session) error {
	query := `
		INSERT INTO sessions (id, access_token, refresh_token, token_expiry, scope, permanent, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			token_expiry = EXCLUDED.token_expiry,
			scope = EXCLUDED.scope,
			permanent = EXCLUDED.permanent,
			expires_at = EXCLUDED.expires_at
	`
	access, refresh, expiry, scope := tokenColumns(session.Token)
	_, err := r.pool.Exec(ctx, query,
		session.ID,
		access,
		refresh,
		expiry,
		scope,
		session.Permanent,
		session.CreatedAt,
		session.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("upserting session: %w", err)
	}
	return nil
}

// Get retrieves an unexpired session by ID.
func (r *SessionRepository) Get(ctx context.Context, id string) (*Session, error) {
	query := `
		SELECT id, access_token, refresh_token, token_expiry, scope, permanent, created_at, expires_at
		FROM sessions
		WHERE id = $1 AND expires_at > NOW()
	`
	var (
		session Session
		access  *string
		refresh *string
		expiry  *time.Time
		scope   *string
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&session.ID,
		&access,
		&refresh,
		&expiry,
		&scope,
		&session.Permanent,
		&session.CreatedAt,
		&session.ExpiresAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying session: %w", err)
	}

	if access != nil {
		session.Token = &Token{AccessToken: *access}
		if refresh != nil {
			session.Token.RefreshToken = *refresh
		}
		if expiry != nil {
			session.Token.Expiry = *expiry
		}
		if scope != nil {
			session.Token.Scope = *scope
		}
	}
	return &session, nil
}

// UpdateToken replaces the OAuth token of a live session. A nil token clears it.
// Returns ErrNotFound if the session no longer exists.
func (r *SessionRepository) UpdateToken(ctx context.Context, id string, token *Token) error {
	query := `
		UPDATE sessions
		SET access_token = $2, refresh_token = $3, token_expiry = $4, scope = $5
		WHERE id = $1 AND expires_at > NOW()
	`
	access, refresh, expiry, scope := tokenColumns(token)
	result, err := r.pool.Exec(ctx, query, id, access, refresh, expiry, scope)
	if err != nil {
		return fmt.Errorf("updating session token: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearToken nulls the token columns of a live session whose access token is
// still accessToken. Returns ErrNotFound only if the session itself is gone.
func (r *SessionRepository) ClearToken(ctx context.Context, id, accessToken string) error {
	query := `
		UPDATE sessions
		SET access_token = NULL, refresh_token = NULL, token_expiry = NULL, scope = NULL
		WHERE id = $1 AND access_token = $2 AND expires_at > NOW()
	`
	result, err := r.pool.Exec(ctx, query, id, accessToken)
	if err != nil {
		return fmt.Errorf("clearing session token: %w", err)
	}
	if result.RowsAffected() > 0 {
		return nil
	}

	// Nothing cleared: either the token changed or the session is gone.
	var exists bool
	err = r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM sessions WHERE id = $1 AND expires_at > NOW())`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking session: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return nil
}

// Delete removes a session by ID.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM sessions WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// DeleteExpired removes all expired sessions.
func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM sessions WHERE expires_at <= NOW()`
	result, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("deleting expired sessions: %w", err)
	}
	return result.RowsAffected(), nil
}

// tokenColumns flattens a token into nullable column values.
// A zero expiry is stored as NULL.
func tokenColumns(token *Token) (access, refresh *string, expiry *time.Time, scope *string) {
	if token == nil {
		return nil, nil, nil, nil
	}
	if !token.Expiry.IsZero() {
		expiry = &token.Expiry
	}
	return &token.AccessToken, &token.RefreshToken, expiry, &token.Scope
}
