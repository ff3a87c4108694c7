//go:build (linux && cgo) || windows || darwin

package audio

import (
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

// AudioAvailable indicates whether audio playback is supported in this build.
const AudioAvailable = true

type speakerOutput struct{}

// NewSpeakerOutput returns the system audio output.
func NewSpeakerOutput() Output {
	return speakerOutput{}
}

func (speakerOutput) Init(sampleRate beep.SampleRate, bufferSize int) error {
	return speaker.Init(sampleRate, bufferSize)
}

func (speakerOutput) Play(s beep.Streamer) { speaker.Play(s) }
func (speakerOutput) Lock()                { speaker.Lock() }
func (speakerOutput) Unlock()              { speaker.Unlock() }

func (speakerOutput) Close() {
	speaker.Clear()
	speaker.Close()
}
