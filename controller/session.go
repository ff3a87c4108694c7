package controller

import (
	"errors"
	"io/fs"
	"os"

	"jukebox/models"

	"github.com/google/uuid"
)

// Session is the state of one jukebox run: the playlist being played and the
// temporary file currently loaded into the engine.
type Session struct {
	ID       string
	Playlist models.Playlist

	// live is the temp file loaded into the engine, or "" when none is.
	live string
	// track is the track behind live.
	track *models.Track
	// playAll is non-nil while a play-all run is in progress.
	playAll *Signals
}

func NewSession(baseURL string, tracks []models.Track) *Session {
	return &Session{
		ID: uuid.New().String(),
		Playlist: models.Playlist{
			BaseURL: baseURL,
			Tracks:  tracks,
		},
	}
}

func (s *Session) setLive(path string, track models.Track) {
	s.live = path
	s.track = &track
}

// Live returns the path of the live temp file.
func (s *Session) Live() string {
	return s.live
}

// Track returns the track currently loaded, if any.
func (s *Session) Track() (models.Track, bool) {
	if s.track == nil {
		return models.Track{}, false
	}
	return *s.track, true
}

// releaseLive forgets the live file and deletes it from disk. The engine must
// already have been stopped.
func (s *Session) releaseLive() error {
	path := s.live
	s.live = ""
	s.track = nil
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
