package controller

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"sync"
	"time"

	"jukebox/database"
	"jukebox/models"

	log "github.com/sirupsen/logrus"
)

// PlayAll plays the playlist in order while a control loop on the console
// accepts pause, resume and stop. It returns once the run is over and the
// control loop has exited.
func (c *Controller) PlayAll(ctx context.Context) error {
	c.mutex.Lock()
	if c.session.playAll != nil {
		c.mutex.Unlock()
		return ErrPlayAllActive
	}
	c.stopLiveLocked()
	signals := NewSignals()
	c.session.playAll = signals
	playlist := c.session.Playlist.Copy()
	c.mutex.Unlock()

	logger := c.logger.WithFields(log.Fields{
		"method":  "PlayAll",
		"session": c.session.ID,
	})
	logger.Infof("playing %d tracks from %s", playlist.Len(), playlist.BaseURL)

	runCtx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		c.controlLoop(runCtx, signals)
	}()
	// A stop request also aborts a download in progress.
	go func() {
		defer wg.Done()
		select {
		case <-signals.Done():
			cancel()
		case <-runCtx.Done():
		}
	}()

	played := 0
	for _, track := range playlist.Tracks {
		if signals.Stopped() || runCtx.Err() != nil {
			break
		}
		if c.playAllTrack(runCtx, playlist.BaseURL, track, signals) {
			played++
		}
	}

	c.mutex.Lock()
	c.engine.Stop()
	c.session.playAll = nil
	c.mutex.Unlock()

	signals.Stop()
	cancel()
	wg.Wait()

	logger.Infof("play-all finished after %d tracks", played)
	c.console.Println("Finished playing all songs.")
	return nil
}

// playAllTrack plays one track of a play-all run and waits for it to end or
// for the run to stop. It reports whether the track was played.
func (c *Controller) playAllTrack(ctx context.Context, baseURL string, track models.Track, signals *Signals) bool {
	c.console.Printf("\nFetching and playing: %s\n", track.Name)
	path, err := c.preparer.Prepare(ctx, baseURL, track)
	if err != nil {
		if !signals.Stopped() {
			c.console.Printf("Error fetching file '%s': %v\n", track.Name, err)
		}
		return false
	}

	c.mutex.Lock()
	if signals.Stopped() {
		c.mutex.Unlock()
		removeFile(path)
		return false
	}
	c.session.setLive(path, track)
	err = c.engine.Load(path)
	if err == nil {
		// A pause requested during the download applies to this track.
		if signals.Paused() {
			err = c.engine.Pause()
		} else {
			err = c.engine.Play()
		}
	}
	c.mutex.Unlock()

	defer func() {
		c.mutex.Lock()
		defer c.mutex.Unlock()
		c.stopLiveLocked()
	}()

	if err != nil {
		c.console.Printf("Error playing file '%s': %v\n", track.Name, err)
		return false
	}
	c.recordPlay(baseURL, track, database.ModePlayAll)

	ticker := time.NewTicker(c.tick)
	defer ticker.Stop()
	for {
		select {
		case <-signals.Done():
			return true
		case <-ctx.Done():
			return true
		case <-ticker.C:
		}
		if signals.Paused() {
			continue
		}
		if !c.engine.IsBusy() {
			return true
		}
	}
}

// controlLoop serves the play-all control menu until the run stops.
func (c *Controller) controlLoop(ctx context.Context, signals *Signals) {
	for !signals.Stopped() {
		c.console.Print("\nPlay-All Controls:\n1. Pause\n2. Resume\n3. Stop\n")
		line, err := c.console.Prompt(ctx, "\nEnter your choice: ")
		if err != nil {
			if errors.Is(err, ErrInputClosed) {
				c.logger.Debug("console closed during play-all, stopping")
				c.Stop()
			}
			return
		}

		control, ok := ParsePlayAllControl(line)
		if !ok {
			c.console.Println("Invalid input. Please enter a number.")
			continue
		}

		switch control {
		case ControlPause:
			if changed, _ := c.setPaused(true); changed {
				c.console.Println("Playback paused.")
			}
		case ControlResume:
			if changed, _ := c.setPaused(false); changed {
				c.console.Println("Playback resumed.")
			}
		case ControlStop:
			c.Stop()
			c.console.Println("Stopping playback...")
		default:
			c.console.Println("Invalid choice. Please try again.")
		}
	}
}

func removeFile(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.WithField("module", "controller").Warnf("could not remove temp file %s: %v", path, err)
	}
}
