package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"jukebox/models"

	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// Play modes recorded with each history row.
const (
	ModeSingle  = "single"
	ModePlayAll = "all"
)

type Database struct {
	db *sql.DB
}

type PlayRecord struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"sessionId"`
	BaseURL   string    `json:"baseUrl"`
	Ref       string    `json:"ref"`
	Name      string    `json:"name"`
	Mode      string    `json:"mode"`
	PlayedAt  time.Time `json:"playedAt"`
}

type MostPlayedRecord struct {
	Ref        string    `json:"ref"`
	Name       string    `json:"name"`
	PlayCount  int       `json:"playCount"`
	LastPlayed time.Time `json:"lastPlayed"`
}

// New opens (and creates if needed) the history database at dbPath.
func New(dbPath string) (*Database, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// The menu and the remote API may query concurrently; a single connection
	// keeps ":memory:" databases shared between them.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	d := &Database{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Infof("Database initialized at %s", dbPath)
	return d, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

func (d *Database) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS play_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			base_url TEXT NOT NULL DEFAULT '',
			ref TEXT NOT NULL,
			name TEXT NOT NULL,
			mode TEXT NOT NULL DEFAULT 'single',
			played_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_play_history_played_at ON play_history(played_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_play_history_ref ON play_history(ref)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}

	return nil
}

// playedAtLayout is fixed width so played_at sorts correctly as text.
const playedAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// RecordPlay inserts a play record for track.
func (d *Database) RecordPlay(sessionID, baseURL string, track models.Track, mode string) error {
	return d.recordPlayAt(sessionID, baseURL, track, mode, time.Now())
}

func (d *Database) recordPlayAt(sessionID, baseURL string, track models.Track, mode string, at time.Time) error {
	_, err := d.db.Exec(
		`INSERT INTO play_history (session_id, base_url, ref, name, mode, played_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sessionID, baseURL, track.Ref, track.Name, mode, at.UTC().Format(playedAtLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to record play: %w", err)
	}
	return nil
}

// GetHistory returns the most recent plays, newest first.
func (d *Database) GetHistory(limit int) ([]PlayRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := d.db.Query(
		`SELECT id, session_id, base_url, ref, name, mode, played_at
		 FROM play_history
		 ORDER BY played_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	records := []PlayRecord{}
	for rows.Next() {
		var r PlayRecord
		var playedAt string
		if err := rows.Scan(&r.ID, &r.SessionID, &r.BaseURL, &r.Ref, &r.Name, &r.Mode, &playedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		r.PlayedAt = parseTimestamp(playedAt)
		records = append(records, r)
	}
	return records, rows.Err()
}

// GetMostPlayed returns the most played tracks across all sessions.
func (d *Database) GetMostPlayed(limit int) ([]MostPlayedRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := d.db.Query(
		`SELECT ref, MAX(name), COUNT(*) as play_count, MAX(played_at) as last_played
		 FROM play_history
		 GROUP BY ref
		 ORDER BY play_count DESC, last_played DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query most played: %w", err)
	}
	defer rows.Close()

	records := []MostPlayedRecord{}
	for rows.Next() {
		var r MostPlayedRecord
		var lastPlayed string
		if err := rows.Scan(&r.Ref, &r.Name, &r.PlayCount, &lastPlayed); err != nil {
			return nil, fmt.Errorf("failed to scan most played row: %w", err)
		}
		r.LastPlayed = parseTimestamp(lastPlayed)
		records = append(records, r)
	}
	return records, rows.Err()
}

var timestampFormats = []string{
	playedAtLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// parseTimestamp reads a played_at column. Unparseable values fall back to
// now rather than year 1.
func parseTimestamp(s string) time.Time {
	for _, layout := range timestampFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	log.Warnf("failed to parse timestamp '%s' with all known formats", s)
	return time.Now()
}
