//go:build !((linux && cgo) || windows || darwin)

package audio

import "github.com/gopxl/beep/v2"

// AudioAvailable indicates whether audio playback is supported in this build.
// Audio on Linux requires cgo for the native sound libraries.
const AudioAvailable = false

type speakerOutput struct{}

func NewSpeakerOutput() Output {
	return speakerOutput{}
}

func (speakerOutput) Init(beep.SampleRate, int) error { return ErrAudioUnavailable }
func (speakerOutput) Play(beep.Streamer)              {}
func (speakerOutput) Lock()                           {}
func (speakerOutput) Unlock()                         {}
func (speakerOutput) Close()                          {}
