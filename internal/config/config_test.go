package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setCredentials(t *testing.T) {
	t.Setenv("CLIENT_ID", "id")
	t.Setenv("CLIENT_ID_SECRET", "secret")
	t.Setenv("URI", "http://127.0.0.1:5000/callback")
}

func TestLoad_Defaults(t *testing.T) {
	setCredentials(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:5000", cfg.Addr())
	assert.False(t, cfg.Debug())
	assert.False(t, cfg.CookieSecure)
	assert.Equal(t, time.Hour, cfg.SessionLifetime)
	assert.Equal(t, 10*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, float64(10), cfg.UpstreamRateLimit)
	assert.Empty(t, cfg.DatabaseURL)
}

func TestLoad_Overrides(t *testing.T) {
	setCredentials(t)
	t.Setenv("PORT", "8080")
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("APP_ENV", "development")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("SESSION_LIFETIME", "30m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.Addr())
	assert.True(t, cfg.Debug())
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, 30*time.Minute, cfg.SessionLifetime)
}

func TestLoad_MissingCredentials(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		secret string
		uri    string
	}{
		{"all missing", "", "", ""},
		{"id missing", "", "secret", "http://x/callback"},
		{"secret missing", "id", "", "http://x/callback"},
		{"uri missing", "id", "secret", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CLIENT_ID", tt.id)
			t.Setenv("CLIENT_ID_SECRET", tt.secret)
			t.Setenv("URI", tt.uri)

			cfg, err := Load()
			assert.True(t, errors.Is(err, ErrMissingCredentials))
			assert.Nil(t, cfg)
		})
	}
}

func TestLoad_InvalidValue(t *testing.T) {
	setCredentials(t)
	t.Setenv("PORT", "not-a-number")

	_, err := Load()
	assert.Error(t, err)
}

func TestCookieSecret(t *testing.T) {
	cfg := &Config{ClientSecret: "client"}
	secret, fallback := cfg.CookieSecret()
	assert.Equal(t, []byte("client"), secret)
	assert.True(t, fallback)

	cfg.SessionSecret = "dedicated"
	secret, fallback = cfg.CookieSecret()
	assert.Equal(t, []byte("dedicated"), secret)
	assert.False(t, fallback)
}

func TestParse_WithoutCredentials(t *testing.T) {
	t.Setenv("CLIENT_ID", "")
	t.Setenv("CLIENT_ID_SECRET", "")
	t.Setenv("URI", "")
	t.Setenv("DATABASE_URL", "postgres://localhost/relay")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/relay", cfg.DatabaseURL)
}
