package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
)

// DefaultTimeout bounds every call to the token endpoint when Config.Timeout is zero.
const DefaultTimeout = 10 * time.Second

// Scopes is the fixed scope set requested at login.
var Scopes = []string{
	spotifyauth.ScopePlaylistModifyPublic,
	spotifyauth.ScopePlaylistModifyPrivate,
	spotifyauth.ScopeUserTopRead,
	spotifyauth.ScopeUserReadPrivate,
}

// Config holds the OAuth client registration.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string

	// Endpoint defaults to the Spotify accounts service.
	Endpoint oauth2.Endpoint

	// Timeout bounds each token endpoint call. Defaults to DefaultTimeout.
	Timeout time.Duration
}

// Exchanger performs the authorization-code and refresh-token grants.
type Exchanger struct {
	config     *oauth2.Config
	httpClient *http.Client
}

// NewExchanger creates an Exchanger for the given client registration.
func NewExchanger(cfg Config) *Exchanger {
	endpoint := cfg.Endpoint
	if endpoint.AuthURL == "" {
		endpoint.AuthURL = spotifyauth.AuthURL
	}
	if endpoint.TokenURL == "" {
		endpoint.TokenURL = spotifyauth.TokenURL
	}
	endpoint.AuthStyle = oauth2.AuthStyleInHeader

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Exchanger{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       Scopes,
			Endpoint:     endpoint,
		},
		httpClient: &http.Client{Timeout: timeout},
	}
}

// AuthorizeURL returns the provider URL the browser is sent to for consent.
// No state parameter is attached.
func (e *Exchanger) AuthorizeURL() string {
	return e.config.AuthCodeURL("")
}

// Exchange trades an authorization code for a token.
// Codes are single use: replaying one yields ErrInvalidGrant.
func (e *Exchanger) Exchange(ctx context.Context, code string) (*TokenInfo, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: empty code", ErrInvalidGrant)
	}

	tok, err := e.config.Exchange(e.clientContext(ctx), code)
	if err != nil {
		return nil, classify(err, ErrInvalidGrant)
	}

	return fromOAuth2(tok), nil
}

// Refresh trades a refresh token for a new access token.
// The returned TokenInfo keeps refreshToken when the provider does not rotate it.
func (e *Exchanger) Refresh(ctx context.Context, refreshToken string) (*TokenInfo, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("%w: no refresh token stored", ErrInvalidRefreshToken)
	}

	src := e.config.TokenSource(e.clientContext(ctx), &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, classify(err, ErrInvalidRefreshToken)
	}

	info := fromOAuth2(tok)
	if info.RefreshToken == "" {
		info.RefreshToken = refreshToken
	}
	return info, nil
}

// clientContext routes token endpoint traffic through the bounded HTTP client.
func (e *Exchanger) clientContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, e.httpClient)
}
