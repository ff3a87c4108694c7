package models

import (
	"net/url"
	"path"
	"strings"
)

// Track is one audio file reference taken from a directory listing.
type Track struct {
	Ref  string `json:"ref"`
	Name string `json:"name"`
}

func NewTrack(ref string) Track {
	return Track{
		Ref:  ref,
		Name: DisplayName(ref),
	}
}

// DisplayName returns the last path element of ref with URL-encoded spaces
// turned back into spaces.
func DisplayName(ref string) string {
	name := ref
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	name = path.Base(strings.TrimSuffix(name, "/"))
	if name == "." || name == "/" {
		return ""
	}

	name = strings.ReplaceAll(name, "%20", " ")
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	return name
}

// Playlist is the ordered set of tracks found at BaseURL.
type Playlist struct {
	BaseURL string  `json:"baseUrl"`
	Tracks  []Track `json:"tracks"`
}

func (p *Playlist) Len() int {
	return len(p.Tracks)
}

// Get returns the track at the 1-based position n.
func (p *Playlist) Get(n int) (Track, bool) {
	if n < 1 || n > len(p.Tracks) {
		return Track{}, false
	}
	return p.Tracks[n-1], true
}

// Copy returns a playlist that shares no backing array with p.
func (p *Playlist) Copy() Playlist {
	tracks := make([]Track, len(p.Tracks))
	copy(tracks, p.Tracks)
	return Playlist{
		BaseURL: p.BaseURL,
		Tracks:  tracks,
	}
}
