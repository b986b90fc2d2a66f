package session

import (
	"context"
	"sync"
	"time"

	"github.com/justestif/spotify-playlist-relay/internal/auth"
)

// MemoryStore manages sessions in memory.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	now      func() time.Time
}

// NewMemoryStore creates a new in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Session),
		now:      time.Now,
	}
}

// Get retrieves a session by ID.
func (s *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.sessions[id]
	if !ok || !s.now().Before(stored.ExpiresAt) {
		return nil, ErrNotFound
	}

	stored.Token = copyToken(stored.Token)
	return &stored, nil
}

// Save stores a copy of the session.
func (s *MemoryStore) Save(_ context.Context, sess *Session) error {
	stored := *sess
	stored.Token = copyToken(sess.Token)

	s.mu.Lock()
	s.sessions[sess.ID] = stored
	s.mu.Unlock()

	return nil
}

// UpdateToken updates the OAuth token for a session.
func (s *MemoryStore) UpdateToken(_ context.Context, id string, tok *auth.TokenInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.sessions[id]
	if !ok || !s.now().Before(stored.ExpiresAt) {
		return ErrNotFound
	}

	stored.Token = copyToken(tok)
	s.sessions[id] = stored
	return nil
}

// ClearToken drops the OAuth token for a session if it still carries accessToken.
func (s *MemoryStore) ClearToken(_ context.Context, id, accessToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.sessions[id]
	if !ok || !s.now().Before(stored.ExpiresAt) {
		return ErrNotFound
	}

	if stored.Token != nil && stored.Token.AccessToken == accessToken {
		stored.Token = nil
		s.sessions[id] = stored
	}
	return nil
}

// Delete removes a session by ID.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

// DeleteExpired removes all expired sessions.
func (s *MemoryStore) DeleteExpired(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var n int64
	for id, stored := range s.sessions {
		if !now.Before(stored.ExpiresAt) {
			delete(s.sessions, id)
			n++
		}
	}
	return n, nil
}
