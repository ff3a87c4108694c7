package controller

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"jukebox/audio"
	"jukebox/database"
	"jukebox/models"
	"jukebox/sentryhelper"

	log "github.com/sirupsen/logrus"
)

const (
	menuPrompt      = "\nGive me Your dAMn your choice: "
	urlPrompt       = "Enter the new IPFS directory URL: "
	defaultTick     = 100 * time.Millisecond
	historyPageSize = 10
)

var (
	ErrPlayAllActive = errors.New("play-all is in progress")
	ErrInvalidTrack  = errors.New("invalid song number")
)

// Lister produces the playlist for a directory listing URL.
type Lister interface {
	List(ctx context.Context, baseURL string) []models.Track
}

// Preparer turns a track into a local file the Engine can load.
type Preparer interface {
	Prepare(ctx context.Context, baseURL string, track models.Track) (string, error)
}

type Engine interface {
	Load(path string) error
	Play() error
	Pause() error
	Resume() error
	Stop()
	IsBusy() bool
	State() audio.PlaybackState
	Progress() (position, length time.Duration, ok bool)
	Close()
}

type History interface {
	RecordPlay(sessionID, baseURL string, track models.Track, mode string) error
	GetHistory(limit int) ([]database.PlayRecord, error)
	GetMostPlayed(limit int) ([]database.MostPlayedRecord, error)
}

type Options struct {
	Lister   Lister
	Preparer Preparer
	Engine   Engine
	Console  *Console
	// History may be nil when play history is disabled.
	History History
	// Hints may be nil to disable tips.
	Hints *Hints
	// TickInterval is how often play-all checks whether a track has ended.
	TickInterval time.Duration
}

// Status is a snapshot of what the jukebox is doing.
type Status struct {
	State   audio.PlaybackState `json:"state"`
	Track   string              `json:"track"`
	PlayAll bool                `json:"playAll"`
	Paused  bool                `json:"paused"`
	// Position and Duration are in seconds; zero when nothing is loaded.
	Position float64 `json:"position"`
	Duration float64 `json:"duration"`
}

type Controller struct {
	mutex    sync.Mutex
	lister   Lister
	preparer Preparer
	engine   Engine
	console  *Console
	history  History
	hints    *Hints
	tick     time.Duration
	session  *Session
	logger   *log.Entry
}

func New(opts Options) *Controller {
	tick := opts.TickInterval
	if tick <= 0 {
		tick = defaultTick
	}
	return &Controller{
		lister:   opts.Lister,
		preparer: opts.Preparer,
		engine:   opts.Engine,
		console:  opts.Console,
		history:  opts.History,
		hints:    opts.Hints,
		tick:     tick,
		session:  NewSession("", nil),
		logger: log.WithFields(log.Fields{
			"module": "controller",
		}),
	}
}

// SessionID identifies this run in the play history.
func (c *Controller) SessionID() string {
	return c.session.ID
}

// Run lists baseURL and then serves the menu until Exit, end of input or ctx
// is cancelled. The engine is closed before Run returns.
func (c *Controller) Run(ctx context.Context, baseURL string) error {
	defer c.shutdown()

	tracks := c.lister.List(ctx, baseURL)
	if len(tracks) == 0 {
		c.logger.Warnf("no tracks at %s, nothing to play", baseURL)
		return nil
	}

	c.mutex.Lock()
	c.session.Playlist = models.Playlist{BaseURL: baseURL, Tracks: tracks}
	c.mutex.Unlock()

	c.logger.WithField("session", c.session.ID).Infof("loaded %d tracks from %s", len(tracks), baseURL)

	for {
		c.printMenu()
		line, err := c.console.Prompt(ctx, menuPrompt)
		if err != nil {
			if errors.Is(err, ErrInputClosed) {
				c.console.Println("\nExiting...")
				return nil
			}
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		cmd, ok := ParseCommand(line)
		if !ok {
			c.console.Println("Invalid choice. Please enter a number.")
			continue
		}
		if !cmd.Valid() {
			c.console.Println("Invalid choice. Please try again.")
			continue
		}

		if cmd == CommandExit {
			c.console.Println("Exiting...")
			return nil
		}

		if err := c.dispatch(ctx, cmd); err != nil {
			if errors.Is(err, ErrInputClosed) {
				c.console.Println("\nExiting...")
				return nil
			}
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Debugf("%s: %v", cmd, err)
			continue
		}

		if c.hints != nil {
			if tip := c.hints.ShowIfApplicable(); tip != "" {
				c.console.Println(tip)
			}
		}
	}
}

func (c *Controller) printMenu() {
	var b strings.Builder
	b.WriteString("\nControls:\n")
	for _, entry := range commandLabels {
		b.WriteString(strconv.Itoa(int(entry.cmd)))
		b.WriteString(". ")
		b.WriteString(entry.label)
		b.WriteString("\n")
	}
	c.console.Print(b.String())
}

func (c *Controller) dispatch(ctx context.Context, cmd Command) error {
	ctx, span := sentryhelper.StartCommandTransaction(ctx, cmd.String(), c.session.ID)
	defer span.Finish()
	sentryhelper.AddBreadcrumb(ctx, "menu", cmd.String())

	switch cmd {
	case CommandPlay:
		return c.promptAndPlay(ctx)
	case CommandPlayAll:
		return c.PlayAll(ctx)
	case CommandPause:
		if err := c.Pause(); err != nil {
			c.console.Println("Nothing is playing.")
			return err
		}
		c.console.Println("Song paused.")
		c.printProgress()
	case CommandResume:
		if err := c.Resume(); err != nil {
			c.console.Println("Nothing to resume.")
			return err
		}
		c.console.Println("Song resumed.")
		c.printProgress()
	case CommandStop:
		c.Stop()
		c.console.Println("Song stopped.")
	case CommandShowList:
		c.refreshList(ctx)
	case CommandChangePlaylist:
		return c.changePlaylist(ctx)
	case CommandHistory:
		return c.showHistory()
	case CommandMostPlayed:
		return c.showMostPlayed()
	}
	return nil
}

func (c *Controller) promptAndPlay(ctx context.Context) error {
	playlist := c.Playlist()
	line, err := c.console.Prompt(ctx, "Enter the song number (1-"+strconv.Itoa(playlist.Len())+"): ")
	if err != nil {
		return err
	}

	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		c.console.Println("Invalid input. Please enter a number.")
		return err
	}
	if _, ok := playlist.Get(n); !ok {
		c.console.Println("Invalid song number.")
		return ErrInvalidTrack
	}

	return c.PlayTrack(ctx, n)
}

// PlayTrack stops whatever is live and plays track n (1-based) of the
// playlist. It fails with ErrPlayAllActive while a play-all run is going.
func (c *Controller) PlayTrack(ctx context.Context, n int) error {
	c.mutex.Lock()
	if c.session.playAll != nil {
		c.mutex.Unlock()
		return ErrPlayAllActive
	}
	track, ok := c.session.Playlist.Get(n)
	if !ok {
		c.mutex.Unlock()
		return ErrInvalidTrack
	}
	baseURL := c.session.Playlist.BaseURL
	c.stopLiveLocked()
	c.mutex.Unlock()

	c.console.Printf("\nFetching and playing: %s\n", track.Name)
	path, err := c.preparer.Prepare(ctx, baseURL, track)
	if err != nil {
		c.console.Printf("Error fetching file '%s': %v\n", track.Name, err)
		return err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.session.playAll != nil {
		removeFile(path)
		return ErrPlayAllActive
	}
	// Another caller may have loaded a track while this one was downloading.
	c.stopLiveLocked()

	if err := c.engine.Load(path); err != nil {
		removeFile(path)
		c.console.Printf("Error playing file '%s': %v\n", track.Name, err)
		return err
	}
	c.session.setLive(path, track)
	if err := c.engine.Play(); err != nil {
		c.console.Printf("Error playing file '%s': %v\n", track.Name, err)
		c.stopLiveLocked()
		return err
	}

	c.recordPlay(baseURL, track, database.ModeSingle)
	return nil
}

// Pause pauses playback. During play-all it also holds the run on the
// current track.
func (c *Controller) Pause() error {
	_, err := c.setPaused(true)
	return err
}

func (c *Controller) Resume() error {
	_, err := c.setPaused(false)
	return err
}

// setPaused reports whether the pause state changed.
func (c *Controller) setPaused(paused bool) (bool, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if signals := c.session.playAll; signals != nil {
		if !signals.SetPaused(paused) {
			return false, nil
		}
		// Between tracks nothing is loaded; the next track picks up the flag.
		if paused {
			c.engine.Pause()
		} else {
			c.engine.Resume()
		}
		return true, nil
	}

	before := c.engine.State()
	var err error
	if paused {
		err = c.engine.Pause()
	} else {
		err = c.engine.Resume()
	}
	if err != nil {
		return false, err
	}
	return c.engine.State() != before, nil
}

// Stop halts playback. A single track's live file is removed; a play-all run
// is told to stop and cleans up after itself.
func (c *Controller) Stop() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if signals := c.session.playAll; signals != nil {
		signals.Stop()
		c.engine.Stop()
		return
	}
	c.stopLiveLocked()
}

func (c *Controller) Status() Status {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	status := Status{
		State:   c.engine.State(),
		PlayAll: c.session.playAll != nil,
	}
	if track, ok := c.session.Track(); ok {
		status.Track = track.Name
	}
	status.Paused = status.State == audio.StatePaused ||
		(c.session.playAll != nil && c.session.playAll.Paused())
	if position, length, ok := c.engine.Progress(); ok {
		status.Position = position.Seconds()
		status.Duration = length.Seconds()
	}
	return status
}

// Playlist returns a copy of the current playlist.
func (c *Controller) Playlist() models.Playlist {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.session.Playlist.Copy()
}

// refreshList lists the current URL again. A non-empty result replaces the
// playlist so the numbers shown match what Play uses.
func (c *Controller) refreshList(ctx context.Context) {
	baseURL := c.Playlist().BaseURL
	tracks := c.lister.List(ctx, baseURL)
	if len(tracks) == 0 {
		return
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.session.Playlist.BaseURL == baseURL {
		c.session.Playlist.Tracks = tracks
	}
}

func (c *Controller) changePlaylist(ctx context.Context) error {
	line, err := c.console.Prompt(ctx, urlPrompt)
	if err != nil {
		return err
	}
	newURL := strings.TrimSpace(line)

	tracks := c.lister.List(ctx, newURL)
	if len(tracks) == 0 {
		c.logger.Infof("keeping current playlist, %s has no tracks", newURL)
		return nil
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.stopLiveLocked()
	c.session.Playlist = models.Playlist{BaseURL: newURL, Tracks: tracks}
	c.logger.Infof("switched playlist to %s (%d tracks)", newURL, len(tracks))
	return nil
}

func (c *Controller) recordPlay(baseURL string, track models.Track, mode string) {
	if c.history == nil {
		return
	}
	if err := c.history.RecordPlay(c.session.ID, baseURL, track, mode); err != nil {
		c.logger.Warnf("could not record play of %s: %v", track.Name, err)
	}
}

// stopLiveLocked stops the engine and deletes the live file.
// must be called with c.mutex held
func (c *Controller) stopLiveLocked() {
	c.engine.Stop()
	if err := c.session.releaseLive(); err != nil {
		c.logger.Warnf("could not remove temp file: %v", err)
	}
}

func (c *Controller) shutdown() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if signals := c.session.playAll; signals != nil {
		signals.Stop()
	}
	c.stopLiveLocked()
	c.engine.Close()
}
