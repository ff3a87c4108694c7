package audio

import (
	"fmt"
	"os"
	"sync"
	"time"

	sentry "github.com/getsentry/sentry-go"
	"github.com/gopxl/beep/v2"
	log "github.com/sirupsen/logrus"
)

// loadedTrack bundles the resources of the track currently held by the Player.
type loadedTrack struct {
	path     string
	file     *os.File
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	started  bool
	// done is closed from the speaker goroutine when the track runs out.
	done chan struct{}
}

func (t *loadedTrack) finished() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

func (t *loadedTrack) close() {
	if t.streamer != nil {
		t.streamer.Close()
	}
	if t.file != nil {
		t.file.Close()
	}
}

// Player is a thin stateful wrapper around the audio output. It holds at most
// one track at a time.
type Player struct {
	mutex   sync.Mutex
	output  Output
	logger  *log.Entry
	state   PlaybackState
	current *loadedTrack
}

// NewPlayer initialises output. An error here means the audio subsystem is
// unusable.
// NewSystemPlayer returns a Player on the system speaker. Builds without
// native audio fail here instead of on the first track.
func NewSystemPlayer() (*Player, error) {
	if !AudioAvailable {
		return nil, fmt.Errorf("%w: rebuild with CGO_ENABLED=1", ErrAudioUnavailable)
	}
	return NewPlayer(NewSpeakerOutput())
}

func NewPlayer(output Output) (*Player, error) {
	if err := output.Init(SpeakerSampleRate, SpeakerSampleRate.N(time.Second/10)); err != nil {
		sentry.CaptureException(err)
		return nil, err
	}

	return &Player{
		output: output,
		logger: log.WithFields(log.Fields{
			"module": "player",
		}),
		state: StateIdle,
	}, nil
}

// Load replaces whatever is loaded with the file at path. The new track is
// not started until Play.
func (p *Player) Load(path string) error {
	streamer, format, file, err := decodeFile(path)
	if err != nil {
		p.logger.Warnf("could not load %s: %v", path, err)
		return err
	}

	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.stopLocked()

	var source beep.Streamer = streamer
	if format.SampleRate != SpeakerSampleRate {
		source = beep.Resample(4, format.SampleRate, SpeakerSampleRate, streamer)
	}

	track := &loadedTrack{
		path:     path,
		file:     file,
		streamer: streamer,
		format:   format,
		done:     make(chan struct{}),
	}
	track.ctrl = &beep.Ctrl{
		Streamer: beep.Seq(source, beep.Callback(func() {
			close(track.done)
		})),
		Paused: true,
	}

	p.current = track
	p.state = StateIdle
	p.logger.Debugf("loaded %s (%d Hz, %d ch)", path, format.SampleRate, format.NumChannels)
	return nil
}

// Play starts the loaded track, or resumes it if paused.
func (p *Player) Play() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.current == nil || p.state == StateStopped {
		return ErrNothingLoaded
	}

	switch p.state {
	case StatePlaying:
		return nil
	case StatePaused:
		p.resumeLocked()
	default:
		p.startLocked()
	}
	return nil
}

// Pause pauses the current track. A loaded but not yet started track is
// marked paused so that Resume starts it.
func (p *Player) Pause() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	switch {
	case p.current == nil || p.state == StateStopped:
		return ErrNotPlaying
	case p.state == StatePaused:
		return nil
	}

	if p.current.started {
		p.output.Lock()
		p.current.ctrl.Paused = true
		p.output.Unlock()
	}
	p.state = StatePaused
	p.logger.Info("playback paused")
	return nil
}

// Resume continues a paused track. It is a no-op while playing.
func (p *Player) Resume() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.current == nil || p.state == StateStopped {
		return ErrNothingLoaded
	}

	switch p.state {
	case StatePlaying:
		return nil
	case StatePaused:
		p.resumeLocked()
	default:
		p.startLocked()
	}
	p.logger.Info("playback resumed")
	return nil
}

// Stop halts output and releases the track's file handle.
func (p *Player) Stop() {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.stopLocked()
}

// IsBusy reports whether the loaded track still has audio to output. It turns
// false once the track finishes or is stopped; a paused track is still busy.
func (p *Player) IsBusy() bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.current == nil {
		return false
	}
	if p.state != StatePlaying && p.state != StatePaused {
		return false
	}
	return !p.current.finished()
}

func (p *Player) State() PlaybackState {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.state == StatePlaying && p.current != nil && p.current.finished() {
		return StateIdle
	}
	return p.state
}

// Current returns the path of the loaded track, or "" when nothing is loaded.
func (p *Player) Current() string {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.current == nil {
		return ""
	}
	return p.current.path
}

// Progress returns how far into the loaded track playback is, and the track
// length. ok is false when nothing is loaded.
func (p *Player) Progress() (position, length time.Duration, ok bool) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.current == nil {
		return 0, 0, false
	}

	p.output.Lock()
	pos := p.current.streamer.Position()
	n := p.current.streamer.Len()
	p.output.Unlock()

	rate := p.current.format.SampleRate
	return rate.D(pos), rate.D(n), true
}

// Close stops playback and shuts the output down.
func (p *Player) Close() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.stopLocked()
	p.output.Close()
}

// must be called with p.mutex held
func (p *Player) startLocked() {
	p.current.ctrl.Paused = false
	p.current.started = true
	p.output.Play(p.current.ctrl)
	p.state = StatePlaying
	p.logger.Debugf("playing %s", p.current.path)
}

// must be called with p.mutex held
func (p *Player) resumeLocked() {
	if !p.current.started {
		p.startLocked()
		return
	}
	p.output.Lock()
	p.current.ctrl.Paused = false
	p.output.Unlock()
	p.state = StatePlaying
}

// must be called with p.mutex held
func (p *Player) stopLocked() {
	if p.current == nil {
		return
	}

	// A nil streamer makes the Ctrl report exhaustion, which drops it from the mixer.
	p.output.Lock()
	p.current.ctrl.Streamer = nil
	p.output.Unlock()

	p.current.close()
	p.current = nil
	p.state = StateStopped
}
