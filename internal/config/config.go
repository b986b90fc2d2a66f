// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
)

// ErrMissingCredentials is returned when the OAuth client registration is incomplete.
var ErrMissingCredentials = errors.New("missing required environment variables: CLIENT_ID, CLIENT_ID_SECRET, URI")

// Config holds every setting the server reads at start-up.
type Config struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_ID_SECRET"`
	RedirectURI  string `env:"URI"`

	// SessionSecret signs session cookies. Falls back to ClientSecret when unset.
	SessionSecret string `env:"SESSION_SECRET"`

	Host string `env:"HOST" envDefault:"0.0.0.0"`
	Port int    `env:"PORT" envDefault:"5000"`
	Env  string `env:"APP_ENV" envDefault:"production"`

	CookieSecure    bool          `env:"COOKIE_SECURE" envDefault:"false"`
	SessionLifetime time.Duration `env:"SESSION_LIFETIME" envDefault:"1h"`
	DatabaseURL     string        `env:"DATABASE_URL"`

	UpstreamTimeout   time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"10s"`
	UpstreamRateLimit float64       `env:"UPSTREAM_RATE_LIMIT" envDefault:"10"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads the configuration from environment variables.
// Returns ErrMissingCredentials if the client ID, secret or redirect URI is not set.
func Load() (*Config, error) {
	cfg, err := Parse()
	if err != nil {
		return nil, err
	}

	if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.RedirectURI == "" {
		return nil, ErrMissingCredentials
	}

	return cfg, nil
}

// Parse reads the environment without requiring OAuth credentials.
// Maintenance commands that only touch the session store use it.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

// Debug reports whether the process runs in development mode.
func (c *Config) Debug() bool {
	return c.Env == "development"
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// CookieSecret returns the key used to sign session cookies and whether it is
// the client-secret fallback.
func (c *Config) CookieSecret() (secret []byte, fallback bool) {
	if c.SessionSecret != "" {
		return []byte(c.SessionSecret), false
	}
	return []byte(c.ClientSecret), true
}
