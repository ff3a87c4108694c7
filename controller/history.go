package controller

import (
	"errors"
	"fmt"
	"io"
	"time"

	"jukebox/database"

	"github.com/jedib0t/go-pretty/v6/table"
)

var ErrHistoryDisabled = errors.New("play history is disabled")

func (c *Controller) showHistory() error {
	if c.history == nil {
		c.console.Println("Play history is disabled.")
		return ErrHistoryDisabled
	}

	records, err := c.history.GetHistory(historyPageSize)
	if err != nil {
		c.logger.Errorf("loading history: %v", err)
		c.console.Println("Could not load play history.")
		return err
	}
	if len(records) == 0 {
		c.console.Println("Nothing has been played yet.")
		return nil
	}

	c.console.Println("\nRecently Played:")
	RenderHistory(c.console.Writer(), records, time.Now())
	return nil
}

func (c *Controller) showMostPlayed() error {
	if c.history == nil {
		c.console.Println("Play history is disabled.")
		return ErrHistoryDisabled
	}

	records, err := c.history.GetMostPlayed(historyPageSize)
	if err != nil {
		c.logger.Errorf("loading most played: %v", err)
		c.console.Println("Could not load play history.")
		return err
	}
	if len(records) == 0 {
		c.console.Println("Nothing has been played yet.")
		return nil
	}

	c.console.Println("\nMost Played:")
	RenderMostPlayed(c.console.Writer(), records, time.Now())
	return nil
}

func RenderHistory(w io.Writer, records []database.PlayRecord, now time.Time) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Song", "Mode", "Played"})
	for i, r := range records {
		t.AppendRow(table.Row{i + 1, r.Name, r.Mode, formatAge(now.Sub(r.PlayedAt))})
	}
	t.Render()
}

func RenderMostPlayed(w io.Writer, records []database.MostPlayedRecord, now time.Time) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Song", "Plays", "Last Played"})
	for i, r := range records {
		t.AppendRow(table.Row{i + 1, r.Name, r.PlayCount, formatAge(now.Sub(r.LastPlayed))})
	}
	t.Render()
}

func formatAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
