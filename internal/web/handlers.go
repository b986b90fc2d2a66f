package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"github.com/justestif/spotify-playlist-relay/internal/auth"
	"github.com/justestif/spotify-playlist-relay/internal/session"
	"github.com/justestif/spotify-playlist-relay/internal/spotify"
)

const (
	appTitle = "Spotify Playlist Relay"

	// postLoginPath is where a successful login lands.
	postLoginPath = "/create_playlist"
)

// Exchanger drives the authorization-code flow.
type Exchanger interface {
	AuthorizeURL() string
	Exchange(ctx context.Context, code string) (*auth.TokenInfo, error)
}

// ClientProvider yields an upstream client for a logged-in session.
type ClientProvider interface {
	Client(ctx context.Context, sess *session.Session) (spotify.Client, bool)
}

// Handlers contains HTTP handlers for the web application.
type Handlers struct {
	exchanger Exchanger
	clients   ClientProvider
	sessions  *session.Manager
	templates *Templates
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(exchanger Exchanger, clients ClientProvider, sessions *session.Manager, templates *Templates) *Handlers {
	return &Handlers{
		exchanger: exchanger,
		clients:   clients,
		sessions:  sessions,
		templates: templates,
	}
}

// loginErrors are the notices shown for /?error= codes set by Callback.
var loginErrors = map[string]string{
	"access_denied":   "Spotify login was cancelled.",
	"no_code":         "Spotify did not return an authorization code.",
	"callback_failed": "Logging in with Spotify failed. Please try again.",
}

// Home renders the login link or a welcome page (GET /).
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	data := HomePageData{
		PageData: PageData{
			Title:       appTitle,
			CurrentPath: r.URL.Path,
		},
		LoginURL: h.exchanger.AuthorizeURL(),
	}
	if code := r.URL.Query().Get("error"); code != "" {
		msg, ok := loginErrors[code]
		if !ok {
			msg = "Something went wrong. Please try again."
		}
		data.Flash = &FlashMessage{Type: "error", Message: msg}
	}

	if client, ok := h.clients.Client(ctx, session.FromContext(ctx)); ok {
		user, err := client.CurrentUser(ctx)
		if err != nil {
			hlog.FromRequest(r).Warn().Err(err).Msg("fetching current user for home page")
		} else {
			data.User = &UserData{ID: user.ID, Name: user.Name()}
		}
	}

	h.render(w, r, http.StatusOK, "home", data)
}

// Callback handles the OAuth redirect from Spotify (GET /callback).
func (h *Handlers) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := hlog.FromRequest(r)
	q := r.URL.Query()

	if errParam := q.Get("error"); errParam != "" {
		log.Warn().Str("oauth_error", errParam).Msg("authorization declined")
		http.Redirect(w, r, "/?error=access_denied", http.StatusFound)
		return
	}

	code := q.Get("code")
	if code == "" {
		log.Warn().Msg("no authorization code received")
		http.Redirect(w, r, "/?error=no_code", http.StatusFound)
		return
	}

	tok, err := h.exchanger.Exchange(ctx, code)
	if err != nil {
		log.Error().Err(err).Msg("exchanging authorization code")
		http.Redirect(w, r, "/?error=callback_failed", http.StatusFound)
		return
	}

	sess := session.FromContext(ctx)
	if err := h.sessions.Renew(ctx, sess); err != nil {
		log.Error().Err(err).Msg("renewing session")
		http.Redirect(w, r, "/?error=callback_failed", http.StatusFound)
		return
	}
	sess.Token = tok
	sess.Permanent = true
	if err := h.sessions.Save(ctx, w, sess); err != nil {
		log.Error().Err(err).Msg("saving session")
		http.Redirect(w, r, "/?error=callback_failed", http.StatusFound)
		return
	}

	http.Redirect(w, r, postLoginPath, http.StatusFound)
}

// Logout clears the session and redirects to home (GET /auth/logout).
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.sessions.Destroy(ctx, w, session.FromContext(ctx)); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("deleting session")
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

type statusResponse struct {
	Authenticated bool          `json:"authenticated"`
	User          *spotify.User `json:"user,omitempty"`
}

// Status reports whether the session is logged in (GET /auth/status).
// An upstream rejection of the stored token logs the session out.
func (h *Handlers) Status(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := session.FromContext(ctx)

	client, ok := h.clients.Client(ctx, sess)
	if !ok {
		writeJSON(w, http.StatusOK, statusResponse{})
		return
	}

	user, err := client.CurrentUser(ctx)
	if err != nil {
		var apiErr *spotify.APIError
		if !errors.As(err, &apiErr) {
			hlog.FromRequest(r).Error().Err(err).Msg("fetching current user")
			writeError(w, http.StatusInternalServerError, msgInternal)
			return
		}
		hlog.FromRequest(r).Warn().Err(err).Msg("Spotify API error, clearing session token")
		h.forgetToken(r, sess)
		writeJSON(w, http.StatusOK, statusResponse{})
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{Authenticated: true, User: user})
}

// forgetToken logs the session out without deleting it.
func (h *Handlers) forgetToken(r *http.Request, sess *session.Session) {
	sess.Token = nil
	err := h.sessions.Store().UpdateToken(r.Context(), sess.ID, nil)
	if err != nil && !errors.Is(err, session.ErrNotFound) {
		hlog.FromRequest(r).Error().Err(err).Msg("clearing session token")
	}
}

func (h *Handlers) render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	buf, err := h.templates.Render(page, data)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("template", page).Msg("rendering template")
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
