package db

import "time"

// Session represents a server-side web session row.
type Session struct {
	ID        string
	Token     *Token // nullable - absent until the OAuth callback succeeds
	Permanent bool
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Token holds the OAuth token columns of a session.
type Token struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
	Scope        string
}
