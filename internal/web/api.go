package web

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"github.com/justestif/spotify-playlist-relay/internal/session"
	"github.com/justestif/spotify-playlist-relay/internal/spotify"
)

const (
	playlistLimit = 50
	searchLimit   = 20
)

// apiClient returns an upstream client, or writes a 401 JSON error and returns false.
func (h *Handlers) apiClient(w http.ResponseWriter, r *http.Request) (spotify.Client, bool) {
	ctx := r.Context()
	client, ok := h.clients.Client(ctx, session.FromContext(ctx))
	if !ok {
		writeError(w, http.StatusUnauthorized, msgNotAuthenticated)
		return nil, false
	}
	return client, true
}

// UserPlaylists lists the caller's playlists (GET /api/user/playlists).
func (h *Handlers) UserPlaylists(w http.ResponseWriter, r *http.Request) {
	client, ok := h.apiClient(w, r)
	if !ok {
		return
	}

	playlists, err := client.Playlists(r.Context(), playlistLimit)
	if err != nil {
		writeUpstreamError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string][]spotify.Playlist{"playlists": playlists})
}

// Search finds tracks matching ?q= (GET /api/search).
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	client, ok := h.apiClient(w, r)
	if !ok {
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, msgNoQuery)
		return
	}

	tracks, err := client.SearchTracks(r.Context(), query, searchLimit)
	if err != nil {
		writeUpstreamError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string][]spotify.Track{"tracks": tracks})
}

// writeUpstreamError maps a failed upstream call to a JSON error.
func writeUpstreamError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *spotify.APIError
	if errors.As(err, &apiErr) {
		hlog.FromRequest(r).Warn().Err(err).Msg("Spotify API error")
		writeError(w, upstreamStatus(apiErr), "Spotify API error: "+apiErr.Error())
		return
	}

	hlog.FromRequest(r).Error().Err(err).Msg("unexpected upstream failure")
	writeError(w, http.StatusInternalServerError, msgInternal)
}

// upstreamStatus picks the response status for an upstream error: 404 for a missing
// resource, 400 for every other upstream answer.
func upstreamStatus(apiErr *spotify.APIError) int {
	if errors.Is(apiErr, spotify.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}
