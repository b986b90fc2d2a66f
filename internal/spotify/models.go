package spotify

import (
	"github.com/zmb3/spotify/v2"
)

// User is the subset of a Spotify profile exposed to the browser.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}

// Name returns the display name, or the ID when the profile has none.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.ID
}

// Track is a search result.
type Track struct {
	URI        string   `json:"uri"`
	Name       string   `json:"name"`
	Artists    []string `json:"artists"`
	Album      string   `json:"album"`
	DurationMs int      `json:"duration_ms"`
	PreviewURL *string  `json:"preview_url"`
}

// Playlist is a playlist summary.
type Playlist struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Tracks int    `json:"tracks"`
	Public bool   `json:"public"`
	URL    string `json:"url"`
}

func convertUser(u *spotify.PrivateUser) *User {
	return &User{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		Email:       u.Email,
	}
}

// convertTrack projects a Web API track onto Track.
func convertTrack(t spotify.FullTrack) Track {
	artists := make([]string, len(t.Artists))
	for i, a := range t.Artists {
		artists[i] = a.Name
	}

	track := Track{
		URI:        string(t.URI),
		Name:       t.Name,
		Artists:    artists,
		Album:      t.Album.Name,
		DurationMs: int(t.Duration),
	}
	if t.PreviewURL != "" {
		preview := t.PreviewURL
		track.PreviewURL = &preview
	}
	return track
}

// convertPlaylist projects a Web API playlist onto Playlist.
func convertPlaylist(p spotify.SimplePlaylist) Playlist {
	return Playlist{
		ID:     p.ID.String(),
		Name:   p.Name,
		Tracks: int(p.Tracks.Total),
		Public: p.IsPublic,
		URL:    p.ExternalURLs["spotify"],
	}
}
