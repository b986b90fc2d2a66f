package session

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/hlog"
)

const (
	// DefaultCookieName is the cookie carrying the signed session ID.
	DefaultCookieName = "spotify-login-session"

	// DefaultLifetime is how long a session lives once saved.
	DefaultLifetime = time.Hour
)

// Options configures a Manager.
type Options struct {
	CookieName string
	Secret     []byte
	Secure     bool
	Lifetime   time.Duration
}

// Manager loads sessions from request cookies and writes them back.
type Manager struct {
	store Store
	opts  Options
	now   func() time.Time
}

// NewManager creates a Manager backed by store.
func NewManager(store Store, opts Options) *Manager {
	if opts.CookieName == "" {
		opts.CookieName = DefaultCookieName
	}
	if opts.Lifetime <= 0 {
		opts.Lifetime = DefaultLifetime
	}
	return &Manager{store: store, opts: opts, now: time.Now}
}

// Store returns the underlying session store.
func (m *Manager) Store() Store {
	return m.store
}

// Middleware attaches the request's session to its context.
// Requests without a valid cookie get a fresh, unsaved session.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := m.Load(r)
		next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), s)))
	})
}

// Load returns the session named by the request cookie, or a new empty session.
func (m *Manager) Load(r *http.Request) *Session {
	if cookie, err := r.Cookie(m.opts.CookieName); err == nil {
		if id, ok := m.verify(cookie.Value); ok {
			s, err := m.store.Get(r.Context(), id)
			if err == nil {
				return s
			}
			if !errors.Is(err, ErrNotFound) {
				hlog.FromRequest(r).Error().Err(err).Msg("loading session")
			}
		}
	}
	return m.newSession()
}

// Save persists s, extends its lifetime and sets the session cookie.
func (m *Manager) Save(ctx context.Context, w http.ResponseWriter, s *Session) error {
	now := m.now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.ExpiresAt = now.Add(m.opts.Lifetime)

	if err := m.store.Save(ctx, s); err != nil {
		return err
	}

	cookie := &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    m.sign(s.ID),
		Path:     "/",
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if s.Permanent {
		cookie.MaxAge = int(m.opts.Lifetime.Seconds())
		cookie.Expires = s.ExpiresAt
	}
	http.SetCookie(w, cookie)
	return nil
}

// Renew moves s to a fresh ID and deletes the row stored under the old one.
// Call it before saving a session that changes privilege, such as at login, so a
// cookie issued earlier never names the logged-in session.
func (m *Manager) Renew(ctx context.Context, s *Session) error {
	old := s.ID
	s.ID = uuid.NewString()
	s.CreatedAt = time.Time{}
	if old == "" {
		return nil
	}
	if err := m.store.Delete(ctx, old); err != nil {
		return fmt.Errorf("deleting previous session: %w", err)
	}
	return nil
}

// Destroy deletes s from the store, clears it in place and removes the cookie.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, s *Session) error {
	err := m.store.Delete(ctx, s.ID)

	s.Token = nil
	s.Permanent = false

	http.SetCookie(w, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   m.opts.Secure,
		MaxAge:   -1,
	})
	return err
}

func (m *Manager) newSession() *Session {
	return &Session{ID: uuid.NewString()}
}

// sign returns "id.signature" where signature is an HMAC-SHA256 of id.
func (m *Manager) sign(id string) string {
	return id + "." + base64.RawURLEncoding.EncodeToString(m.mac(id))
}

// verify checks a signed cookie value and returns the session ID it carries.
func (m *Manager) verify(value string) (string, bool) {
	id, sig, ok := strings.Cut(value, ".")
	if !ok || id == "" {
		return "", false
	}
	got, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil {
		return "", false
	}
	if !hmac.Equal(got, m.mac(id)) {
		return "", false
	}
	return id, true
}

func (m *Manager) mac(id string) []byte {
	h := hmac.New(sha256.New, m.opts.Secret)
	h.Write([]byte(id))
	return h.Sum(nil)
}
