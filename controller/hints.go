package controller

import (
	"math/rand/v2"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Hints hands out an occasional usage tip after a command succeeds.
type Hints struct {
	mutex       sync.Mutex
	lastHint    time.Time
	cooldownDur time.Duration
	hintChance  float32
	hints       []string
	now         func() time.Time
}

func NewHints() *Hints {
	return &Hints{
		cooldownDur: 5 * time.Minute,
		hintChance:  0.15,
		hints: []string{
			"Tip: option 2 plays the whole playlist; press 3 to stop it early",
			"Tip: option 7 switches to another directory listing without restarting",
			"Tip: option 9 shows what you played recently",
			"Tip: option 10 shows your most played songs",
			"Tip: pass a listing URL on the command line to start with a different playlist",
			"Tip: set CONTROL_PORT to pause and resume from another terminal with curl",
			"Tip: m4a files are converted with ffmpeg; set FFMPEG_PATH if it is not on your PATH",
		},
		now: time.Now,
	}
}

// ShouldShowHint returns a tip and true when one is due.
func (h *Hints) ShouldShowHint() (string, bool) {
	if len(h.hints) == 0 || rand.Float32() > h.hintChance {
		return "", false
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	now := h.now()
	if !h.lastHint.IsZero() && now.Sub(h.lastHint) < h.cooldownDur {
		return "", false
	}

	hint := h.hints[rand.IntN(len(h.hints))]
	h.lastHint = now

	log.Debugf("Showing hint: %s", hint)
	return hint, true
}

// ShowIfApplicable returns a formatted tip, or "" when none is due.
func (h *Hints) ShowIfApplicable() string {
	if hint, show := h.ShouldShowHint(); show {
		return "\n" + hint
	}
	return ""
}
