package session

import (
	"context"
	"errors"

	"github.com/justestif/spotify-playlist-relay/internal/auth"
	"github.com/justestif/spotify-playlist-relay/internal/db"
)

// PostgresStore manages sessions in PostgreSQL.
type PostgresStore struct {
	database *db.DB
}

// NewPostgresStore creates a new database-backed session store.
func NewPostgresStore(database *db.DB) *PostgresStore {
	return &PostgresStore{database: database}
}

// Get retrieves a session by ID from the database.
func (s *PostgresStore) Get(ctx context.Context, id string) (*Session, error) {
	row, err := s.database.Sessions().Get(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &Session{
		ID:        row.ID,
		Token:     fromRow(row.Token),
		Permanent: row.Permanent,
		CreatedAt: row.CreatedAt,
		ExpiresAt: row.ExpiresAt,
	}, nil
}

// Save writes the session to the database.
func (s *PostgresStore) Save(ctx context.Context, sess *Session) error {
	return s.database.Sessions().Upsert(ctx, &db.Session{
		ID:        sess.ID,
		Token:     toRow(sess.Token),
		Permanent: sess.Permanent,
		CreatedAt: sess.CreatedAt,
		ExpiresAt: sess.ExpiresAt,
	})
}

// UpdateToken updates the OAuth token for a session in the database.
func (s *PostgresStore) UpdateToken(ctx context.Context, id string, tok *auth.TokenInfo) error {
	err := s.database.Sessions().UpdateToken(ctx, id, toRow(tok))
	if errors.Is(err, db.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// ClearToken drops the OAuth token for a session if it still carries accessToken.
func (s *PostgresStore) ClearToken(ctx context.Context, id, accessToken string) error {
	err := s.database.Sessions().ClearToken(ctx, id, accessToken)
	if errors.Is(err, db.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// Delete removes a session from the database.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	return s.database.Sessions().Delete(ctx, id)
}

// DeleteExpired removes expired sessions from the database.
func (s *PostgresStore) DeleteExpired(ctx context.Context) (int64, error) {
	return s.database.Sessions().DeleteExpired(ctx)
}

func toRow(tok *auth.TokenInfo) *db.Token {
	if tok == nil {
		return nil
	}
	return &db.Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.ExpiresAt,
		Scope:        tok.Scope,
	}
}

func fromRow(tok *db.Token) *auth.TokenInfo {
	if tok == nil {
		return nil
	}
	return &auth.TokenInfo{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry,
		Scope:        tok.Scope,
	}
}

// Ensure both stores implement Store.
var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*PostgresStore)(nil)
)
