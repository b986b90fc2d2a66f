// Package spotify is the upstream call surface for the Spotify Web API.
package spotify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// DefaultTimeout bounds each upstream call when Options.Timeout is zero.
const DefaultTimeout = 10 * time.Second

// Client is the capability set routes use against the upstream API.
// Every error it returns either wraps an upstream error kind or is a transport failure.
type Client interface {
	CurrentUser(ctx context.Context) (*User, error)
	SearchTracks(ctx context.Context, query string, limit int) ([]Track, error)
	Playlists(ctx context.Context, limit int) ([]Playlist, error)
	CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (*Playlist, error)
	AddItems(ctx context.Context, playlistID string, uris []string) error
	RemoveItems(ctx context.Context, playlistID string, uris []string) error
	Recommend(ctx context.Context, genres []string, limit int) ([]string, error)
}

// Factory builds a Client bound to one access token.
type Factory func(accessToken string) Client

// Options configures NewFactory.
type Options struct {
	// Timeout bounds each request. Defaults to DefaultTimeout.
	Timeout time.Duration

	// RateLimit caps outbound requests per second across all clients. Zero disables it.
	RateLimit float64

	// BaseURL overrides the Web API root, with a trailing slash.
	BaseURL string

	// Transport is the base round tripper. Defaults to http.DefaultTransport.
	Transport http.RoundTripper
}

// NewFactory returns a Factory whose clients share one transport and rate limiter.
func NewFactory(opts Options) Factory {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	if opts.RateLimit > 0 {
		base = newLimitedTransport(base, rate.Limit(opts.RateLimit), max(1, int(opts.RateLimit)))
	}

	var clientOpts []spotify.ClientOption
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, spotify.WithBaseURL(opts.BaseURL))
	}

	return func(accessToken string) Client {
		httpClient := &http.Client{
			Timeout: timeout,
			Transport: &oauth2.Transport{
				Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}),
				Base:   base,
			},
		}
		return &API{api: spotify.New(httpClient, clientOpts...)}
	}
}

// API implements Client with github.com/zmb3/spotify/v2.
type API struct {
	api *spotify.Client
}

// CurrentUser returns the profile of the token's owner.
func (c *API) CurrentUser(ctx context.Context) (*User, error) {
	user, err := c.api.CurrentUser(ctx)
	if err != nil {
		return nil, classify("getting current user", err)
	}
	return convertUser(user), nil
}

// SearchTracks returns up to limit tracks matching query.
func (c *API) SearchTracks(ctx context.Context, query string, limit int) ([]Track, error) {
	result, err := c.api.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(limit))
	if err != nil {
		return nil, classify("searching tracks", err)
	}

	tracks := []Track{}
	if result.Tracks == nil {
		return tracks, nil
	}
	for _, t := range result.Tracks.Tracks {
		tracks = append(tracks, convertTrack(t))
	}
	return tracks, nil
}

// Playlists returns the first page of the current user's playlists.
func (c *API) Playlists(ctx context.Context, limit int) ([]Playlist, error) {
	page, err := c.api.CurrentUsersPlaylists(ctx, spotify.Limit(limit))
	if err != nil {
		return nil, classify("listing playlists", err)
	}

	playlists := make([]Playlist, 0, len(page.Playlists))
	for _, p := range page.Playlists {
		playlists = append(playlists, convertPlaylist(p))
	}
	return playlists, nil
}

// CreatePlaylist creates a playlist owned by userID.
func (c *API) CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (*Playlist, error) {
	created, err := c.api.CreatePlaylistForUser(ctx, userID, name, description, public, false)
	if err != nil {
		return nil, classify("creating playlist", err)
	}

	p := convertPlaylist(created.SimplePlaylist)
	return &p, nil
}

// AddItems appends tracks, given as URIs or IDs, to a playlist.
func (c *API) AddItems(ctx context.Context, playlistID string, uris []string) error {
	if len(uris) == 0 {
		return nil
	}
	ids, err := trackIDs(uris)
	if err != nil {
		return err
	}

	for i := 0; i < len(ids); i += maxTracksPerRequest {
		end := min(i+maxTracksPerRequest, len(ids))
		if _, err := c.api.AddTracksToPlaylist(ctx, spotify.ID(playlistID), ids[i:end]...); err != nil {
			return classify(fmt.Sprintf("adding tracks (batch %d-%d)", i+1, end), err)
		}
	}
	return nil
}

// RemoveItems removes every occurrence of the given tracks from a playlist.
func (c *API) RemoveItems(ctx context.Context, playlistID string, uris []string) error {
	if len(uris) == 0 {
		return nil
	}
	ids, err := trackIDs(uris)
	if err != nil {
		return err
	}

	for i := 0; i < len(ids); i += maxTracksPerRequest {
		end := min(i+maxTracksPerRequest, len(ids))
		if _, err := c.api.RemoveTracksFromPlaylist(ctx, spotify.ID(playlistID), ids[i:end]...); err != nil {
			return classify(fmt.Sprintf("removing tracks (batch %d-%d)", i+1, end), err)
		}
	}
	return nil
}

// Recommend returns the URIs of up to limit tracks seeded by genres.
func (c *API) Recommend(ctx context.Context, genres []string, limit int) ([]string, error) {
	recs, err := c.api.GetRecommendations(ctx, spotify.Seeds{Genres: genres}, nil, spotify.Limit(limit))
	if err != nil {
		return nil, classify("getting recommendations", err)
	}

	uris := make([]string, 0, len(recs.Tracks))
	for _, t := range recs.Tracks {
		uris = append(uris, string(t.URI))
	}
	return uris, nil
}

// maxTracksPerRequest is the playlist items limit per Web API call.
const maxTracksPerRequest = 100

// trackIDs converts "spotify:track:<id>" URIs, or bare IDs, to track IDs.
func trackIDs(uris []string) ([]spotify.ID, error) {
	ids := make([]spotify.ID, len(uris))
	for i, uri := range uris {
		id, err := TrackID(uri)
		if err != nil {
			return nil, err
		}
		ids[i] = spotify.ID(id)
	}
	return ids, nil
}

// TrackID extracts the track ID from a track URI. Bare IDs are returned unchanged.
// Episode and other non-track URIs are rejected: playlist edits go through the
// track endpoints only.
func TrackID(uri string) (string, error) {
	if !strings.Contains(uri, ":") {
		if uri == "" {
			return "", &APIError{Kind: ErrBadRequest, Status: http.StatusBadRequest, Message: "empty track URI"}
		}
		return uri, nil
	}

	parts := strings.Split(uri, ":")
	if len(parts) != 3 || parts[0] != "spotify" || parts[1] != "track" || parts[2] == "" {
		return "", &APIError{Kind: ErrBadRequest, Status: http.StatusBadRequest, Message: fmt.Sprintf("not a track URI: %q", uri)}
	}
	return parts[2], nil
}
