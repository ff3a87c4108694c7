package audio

import "errors"

type PlaybackState string

const (
	StateIdle    PlaybackState = "idle"
	StatePlaying PlaybackState = "playing"
	StatePaused  PlaybackState = "paused"
	StateStopped PlaybackState = "stopped"
)

var (
	ErrAudioUnavailable  = errors.New("audio output is not available in this build")
	ErrNothingLoaded     = errors.New("no track loaded")
	ErrNotPlaying        = errors.New("not currently playing")
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrDownload          = errors.New("download failed")
	ErrTranscode         = errors.New("transcode failed")
)
