package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zmb3/spotify/v2"
)

// fakeAPI serves canned Web API responses and records the bearer tokens it sees.
func fakeAPI(t *testing.T, routes map[string]http.HandlerFunc) (*httptest.Server, *[]string) {
	t.Helper()
	var tokens []string
	mux := http.NewServeMux()
	for pattern, h := range routes {
		mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
			tokens = append(tokens, r.Header.Get("Authorization"))
			h(w, r)
		})
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &tokens
}

func respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func apiError(status int, message string) map[string]any {
	return map[string]any{"error": map[string]any{"status": status, "message": message}}
}

func newTestClient(srv *httptest.Server, token string) Client {
	return NewFactory(Options{BaseURL: srv.URL + "/"})(token)
}

func TestSearchTracks(t *testing.T) {
	srv, tokens := fakeAPI(t, map[string]http.HandlerFunc{
		"GET /search": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "test", r.URL.Query().Get("q"))
			assert.Equal(t, "track", r.URL.Query().Get("type"))
			assert.Equal(t, "20", r.URL.Query().Get("limit"))
			respond(w, http.StatusOK, map[string]any{
				"tracks": map[string]any{
					"items": []any{
						map[string]any{
							"uri":         "spotify:track:1",
							"name":        "Song",
							"artists":     []any{map[string]any{"name": "A"}, map[string]any{"name": "B"}},
							"album":       map[string]any{"name": "Album"},
							"duration_ms": 215000,
							"preview_url": "https://p.scdn.co/1",
						},
					},
				},
			})
		},
	})

	tracks, err := newTestClient(srv, "access-1").SearchTracks(context.Background(), "test", 20)
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, "spotify:track:1", tracks[0].URI)
	assert.Equal(t, []string{"A", "B"}, tracks[0].Artists)
	assert.Equal(t, "Album", tracks[0].Album)
	assert.Equal(t, 215000, tracks[0].DurationMs)
	require.NotNil(t, tracks[0].PreviewURL)
	assert.Equal(t, "https://p.scdn.co/1", *tracks[0].PreviewURL)

	assert.Equal(t, []string{"Bearer access-1"}, *tokens)
}

func TestPlaylists(t *testing.T) {
	srv, _ := fakeAPI(t, map[string]http.HandlerFunc{
		"GET /me/playlists": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "50", r.URL.Query().Get("limit"))
			respond(w, http.StatusOK, map[string]any{
				"items": []any{
					map[string]any{
						"id":            "pl1",
						"name":          "Road Trip",
						"public":        true,
						"tracks":        map[string]any{"total": 12},
						"external_urls": map[string]string{"spotify": "https://open.spotify.com/playlist/pl1"},
					},
				},
			})
		},
	})

	playlists, err := newTestClient(srv, "a").Playlists(context.Background(), 50)
	require.NoError(t, err)
	assert.Equal(t, []Playlist{{
		ID:     "pl1",
		Name:   "Road Trip",
		Tracks: 12,
		Public: true,
		URL:    "https://open.spotify.com/playlist/pl1",
	}}, playlists)
}

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantKind error
	}{
		{"unauthorized", http.StatusUnauthorized, ErrUnauthorized},
		{"forbidden", http.StatusForbidden, ErrUnauthorized},
		{"not found", http.StatusNotFound, ErrNotFound},
		{"rate limited", http.StatusTooManyRequests, ErrRateLimited},
		{"bad request", http.StatusBadRequest, ErrBadRequest},
		{"server error", http.StatusBadGateway, ErrUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := fakeAPI(t, map[string]http.HandlerFunc{
				"GET /me": func(w http.ResponseWriter, _ *http.Request) {
					respond(w, tt.status, apiError(tt.status, "upstream says no"))
				},
			})

			_, err := newTestClient(srv, "a").CurrentUser(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantKind)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, "upstream says no", apiErr.Message)
		})
	}
}

func TestClassify_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	c := newTestClient(srv, "a")
	srv.Close()

	_, err := c.CurrentUser(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestCreatePlaylistAndAddItems(t *testing.T) {
	var added []string
	srv, _ := fakeAPI(t, map[string]http.HandlerFunc{
		"POST /users/user-1/playlists": func(w http.ResponseWriter, r *http.Request) {
			var body struct {
				Name   string `json:"name"`
				Public bool   `json:"public"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "Mix", body.Name)
			assert.False(t, body.Public)
			respond(w, http.StatusCreated, map[string]any{
				"id":            "new-pl",
				"name":          body.Name,
				"external_urls": map[string]string{"spotify": "https://open.spotify.com/playlist/new-pl"},
			})
		},
		"POST /playlists/new-pl/tracks": func(w http.ResponseWriter, r *http.Request) {
			var body struct {
				URIs []string `json:"uris"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			added = append(added, body.URIs...)
			respond(w, http.StatusCreated, map[string]string{"snapshot_id": "snap"})
		},
	})
	c := newTestClient(srv, "a")

	p, err := c.CreatePlaylist(context.Background(), "user-1", "Mix", "desc", false)
	require.NoError(t, err)
	assert.Equal(t, "new-pl", p.ID)
	assert.Equal(t, "https://open.spotify.com/playlist/new-pl", p.URL)

	require.NoError(t, c.AddItems(context.Background(), p.ID, []string{"spotify:track:1", "2"}))
	assert.Equal(t, []string{"spotify:track:1", "spotify:track:2"}, added)
}

func TestAddItems_InvalidURI(t *testing.T) {
	srv, tokens := fakeAPI(t, map[string]http.HandlerFunc{})
	err := newTestClient(srv, "a").AddItems(context.Background(), "pl", []string{"spotify:album:1"})
	assert.ErrorIs(t, err, ErrBadRequest)
	assert.Empty(t, *tokens)
}

func TestTrackID(t *testing.T) {
	tests := []struct {
		uri     string
		want    string
		wantErr bool
	}{
		{"spotify:track:4uLU6hMCjMI75M1A2tKUQC", "4uLU6hMCjMI75M1A2tKUQC", false},
		{"4uLU6hMCjMI75M1A2tKUQC", "4uLU6hMCjMI75M1A2tKUQC", false},
		{"spotify:episode:abc", "", true},
		{"spotify:track:", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			got, err := TrackID(tt.uri)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrBadRequest)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConvertTrack_NoPreview(t *testing.T) {
	track := convertTrack(spotify.FullTrack{
		SimpleTrack: spotify.SimpleTrack{
			Name: "Quiet",
			URI:  "spotify:track:q",
		},
	})

	assert.Nil(t, track.PreviewURL)
	assert.Empty(t, track.Artists)
	assert.NotNil(t, track.Artists)
}

func TestUserName(t *testing.T) {
	assert.Equal(t, "Ada", (&User{ID: "ada123", DisplayName: "Ada"}).Name())
	assert.Equal(t, "ada123", (&User{ID: "ada123"}).Name())
}
