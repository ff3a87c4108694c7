package handlers

// handlers serve the local remote-control API. They translate HTTP requests
// into calls on the running controller.

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"jukebox/audio"
	"jukebox/controller"
	"jukebox/database"
	"jukebox/models"
	"jukebox/sentry"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const maxHistoryLimit = 100

// Remote is the part of the controller the API drives.
type Remote interface {
	Status() controller.Status
	Playlist() models.Playlist
	PlayTrack(ctx context.Context, n int) error
	Pause() error
	Resume() error
	Stop()
}

type HistorySource interface {
	GetHistory(limit int) ([]database.PlayRecord, error)
	GetMostPlayed(limit int) ([]database.MostPlayedRecord, error)
}

type PlaylistEntry struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Ref   string `json:"ref"`
}

type PlaylistResponse struct {
	BaseURL string          `json:"baseUrl"`
	Tracks  []PlaylistEntry `json:"tracks"`
}

type Manager struct {
	Remote  Remote
	History HistorySource
	logger  *log.Entry
}

// NewManager builds the API around remote. history may be nil when play
// history is disabled.
func NewManager(remote Remote, history HistorySource) *Manager {
	return &Manager{
		Remote:  remote,
		History: history,
		logger: log.WithFields(log.Fields{
			"module": "handlers",
		}),
	}
}

func (m *Manager) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), sentry.GetSentryGin(), m.requestLogger())

	router.GET("/status", m.handleStatus)
	router.GET("/playlist", m.handlePlaylist)
	router.GET("/history", m.handleHistory)
	router.GET("/history/top", m.handleMostPlayed)
	router.POST("/play/:index", m.handlePlay)
	router.POST("/pause", m.handlePause)
	router.POST("/resume", m.handleResume)
	router.POST("/stop", m.handleStop)

	return router
}

// requestLogger logs through logrus so request lines stay off the console
// menu's stdout.
func (m *Manager) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		m.logger.WithFields(log.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
			"status": c.Writer.Status(),
		}).Debugf("handled in %v", time.Since(start))
	}
}

func (m *Manager) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, m.Remote.Status())
}

func (m *Manager) handlePlaylist(c *gin.Context) {
	playlist := m.Remote.Playlist()
	resp := PlaylistResponse{
		BaseURL: playlist.BaseURL,
		Tracks:  make([]PlaylistEntry, 0, playlist.Len()),
	}
	for i, track := range playlist.Tracks {
		resp.Tracks = append(resp.Tracks, PlaylistEntry{
			Index: i + 1,
			Name:  track.Name,
			Ref:   track.Ref,
		})
	}
	c.JSON(http.StatusOK, resp)
}

func (m *Manager) handleHistory(c *gin.Context) {
	if m.History == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": controller.ErrHistoryDisabled.Error()})
		return
	}
	limit, ok := parseLimit(c)
	if !ok {
		return
	}

	records, err := m.History.GetHistory(limit)
	if err != nil {
		m.fail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plays": records})
}

func (m *Manager) handleMostPlayed(c *gin.Context) {
	if m.History == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": controller.ErrHistoryDisabled.Error()})
		return
	}
	limit, ok := parseLimit(c)
	if !ok {
		return
	}

	records, err := m.History.GetMostPlayed(limit)
	if err != nil {
		m.fail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tracks": records})
}

func (m *Manager) handlePlay(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "index must be a number"})
		return
	}

	err = m.Remote.PlayTrack(c.Request.Context(), index)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"ok": true})
	case errors.Is(err, controller.ErrInvalidTrack):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, controller.ErrPlayAllActive):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		m.fail(c, http.StatusBadGateway, err)
	}
}

func (m *Manager) handlePause(c *gin.Context) {
	m.respond(c, m.Remote.Pause())
}

func (m *Manager) handleResume(c *gin.Context) {
	m.respond(c, m.Remote.Resume())
}

func (m *Manager) handleStop(c *gin.Context) {
	m.Remote.Stop()
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// respond maps playback control errors onto 409 Conflict.
func (m *Manager) respond(c *gin.Context, err error) {
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"ok": true})
	case errors.Is(err, audio.ErrNotPlaying), errors.Is(err, audio.ErrNothingLoaded):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		m.fail(c, http.StatusInternalServerError, err)
	}
}

func (m *Manager) fail(c *gin.Context, status int, err error) {
	m.logger.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	sentry.ReportError(err)
	c.JSON(status, gin.H{"error": err.Error()})
}

func parseLimit(c *gin.Context) (int, bool) {
	raw := c.DefaultQuery("limit", "10")
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive number"})
		return 0, false
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	return limit, true
}

// Serve runs handler on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("module", "handlers").Infof("control API listening on http://%s", addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}
