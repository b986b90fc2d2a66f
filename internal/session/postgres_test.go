package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/justestif/spotify-playlist-relay/internal/auth"
)

func TestTokenRowConversion(t *testing.T) {
	assert.Nil(t, toRow(nil))
	assert.Nil(t, fromRow(nil))

	tok := &auth.TokenInfo{
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresAt:    time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
		Scope:        "playlist-modify-private",
	}
	assert.Equal(t, tok, fromRow(toRow(tok)))
}
