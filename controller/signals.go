package controller

import (
	"sync"
	"sync/atomic"
)

// Signals coordinates a play-all run with its control loop. Pause has a single
// writer at a time (guarded by the Controller); Stop may be requested by
// anyone and only ever moves one way.
type Signals struct {
	paused   atomic.Bool
	stop     chan struct{}
	stopOnce sync.Once
}

func NewSignals() *Signals {
	return &Signals{stop: make(chan struct{})}
}

// SetPaused sets the pause flag and reports whether it changed.
func (s *Signals) SetPaused(paused bool) bool {
	return s.paused.CompareAndSwap(!paused, paused)
}

func (s *Signals) Paused() bool {
	return s.paused.Load()
}

// Stop requests the run to end. Safe to call more than once.
func (s *Signals) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// Done is closed once Stop has been called.
func (s *Signals) Done() <-chan struct{} {
	return s.stop
}

func (s *Signals) Stopped() bool {
	select {
	case <-s.stop:
		return true
	default:
		return false
	}
}
