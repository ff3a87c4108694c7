package audio

import "github.com/gopxl/beep/v2"

// Output is the sink the Player mixes into. The real implementation is the
// beep speaker; tests substitute their own.
type Output interface {
	Init(sampleRate beep.SampleRate, bufferSize int) error
	Play(s beep.Streamer)
	Lock()
	Unlock()
	Close()
}
