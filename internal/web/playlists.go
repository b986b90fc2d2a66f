package web

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/justestif/spotify-playlist-relay/internal/session"
	"github.com/justestif/spotify-playlist-relay/internal/spotify"
)

const (
	newPlaylistName        = "My Personalized Playlist 🎶"
	newPlaylistDescription = "Generated by playlist-relay"
	recommendationLimit    = 10
)

// recommendationGenres seeds the tracks added to a new playlist.
var recommendationGenres = []string{"pop"}

// browserClient returns an upstream client, or redirects to the login page and returns false.
func (h *Handlers) browserClient(w http.ResponseWriter, r *http.Request) (spotify.Client, bool) {
	ctx := r.Context()
	client, ok := h.clients.Client(ctx, session.FromContext(ctx))
	if !ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return nil, false
	}
	return client, true
}

// CreatePlaylist creates a private playlist filled with recommendations (GET /create_playlist).
func (h *Handlers) CreatePlaylist(w http.ResponseWriter, r *http.Request) {
	client, ok := h.browserClient(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	user, err := client.CurrentUser(ctx)
	if err != nil {
		h.renderUpstreamError(w, r, "Error creating playlist", err)
		return
	}

	playlist, err := client.CreatePlaylist(ctx, user.ID, newPlaylistName, newPlaylistDescription, false)
	if err != nil {
		h.renderUpstreamError(w, r, "Error creating playlist", err)
		return
	}

	uris, err := client.Recommend(ctx, recommendationGenres, recommendationLimit)
	if err != nil {
		h.renderUpstreamError(w, r, "Error creating playlist", err)
		return
	}

	if err := client.AddItems(ctx, playlist.ID, uris); err != nil {
		h.renderUpstreamError(w, r, "Error creating playlist", err)
		return
	}

	hlog.FromRequest(r).Info().Str("playlist_id", playlist.ID).Int("tracks", len(uris)).Msg("playlist created")
	h.renderMessage(w, r, http.StatusOK, MessagePageData{
		Heading:  "Playlist created! 🎉",
		Playlist: playlist,
		Lines:    []string{pluralTracks(len(uris))},
		LinkText: "Back to Home",
	})
}

// ModifyPlaylist adds or removes one track (GET /modify_playlist/{playlistID}/{action}/{trackURI}).
// An unknown action is answered with an explanatory page and status 200.
func (h *Handlers) ModifyPlaylist(w http.ResponseWriter, r *http.Request) {
	client, ok := h.browserClient(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	playlistID := chi.URLParam(r, "playlistID")
	// chi matches on the escaped path, so the wildcard may still be percent-encoded.
	trackURI, err := url.PathUnescape(chi.URLParam(r, "*"))
	if err != nil {
		h.renderMessage(w, r, http.StatusBadRequest, MessagePageData{
			Heading:  "Error modifying playlist",
			Lines:    []string{"Invalid track URI"},
			LinkText: "Try Again",
		})
		return
	}

	var done string
	switch chi.URLParam(r, "action") {
	case "add":
		err = client.AddItems(ctx, playlistID, []string{trackURI})
		done = "Added " + trackURI
	case "remove":
		err = client.RemoveItems(ctx, playlistID, []string{trackURI})
		done = "Removed " + trackURI
	default:
		h.renderMessage(w, r, http.StatusOK, MessagePageData{
			Heading:  "Invalid action",
			Lines:    []string{"Use 'add' or 'remove'"},
			LinkText: "Back to Home",
		})
		return
	}

	if err != nil {
		h.renderUpstreamError(w, r, "Error modifying playlist", err)
		return
	}

	h.renderMessage(w, r, http.StatusOK, MessagePageData{
		Heading:  "Success!",
		Lines:    []string{done},
		LinkText: "Back to Home",
	})
}

// renderUpstreamError renders a "try again" page for a failed upstream call.
// Upstream answers show their message; anything else stays generic.
func (h *Handlers) renderUpstreamError(w http.ResponseWriter, r *http.Request, heading string, err error) {
	var apiErr *spotify.APIError
	if errors.As(err, &apiErr) {
		hlog.FromRequest(r).Warn().Err(err).Msg("Spotify API error")
		h.renderMessage(w, r, upstreamStatus(apiErr), MessagePageData{
			Heading:  heading,
			Lines:    []string{apiErr.Error()},
			LinkText: "Try Again",
		})
		return
	}

	hlog.FromRequest(r).Error().Err(err).Msg("unexpected upstream failure")
	h.renderMessage(w, r, http.StatusInternalServerError, MessagePageData{
		Heading:  "Unexpected error",
		LinkText: "Try Again",
	})
}

func (h *Handlers) renderMessage(w http.ResponseWriter, r *http.Request, status int, data MessagePageData) {
	data.PageData = PageData{Title: appTitle, CurrentPath: r.URL.Path}
	h.render(w, r, status, "message", data)
}

func pluralTracks(n int) string {
	if n == 1 {
		return "Added 1 track"
	}
	return "Added " + strconv.Itoa(n) + " tracks"
}
