package controller

import (
	"fmt"
	"strings"
	"time"
)

const progressBarWidth = 20

// RenderProgressBar draws width cells of ▓/░ followed by "elapsed / total".
// current is clamped to [0, total].
func RenderProgressBar(current, total time.Duration, width int) string {
	var filled int
	if total > 0 {
		current = min(max(current, 0), total)
		filled = int(int64(width) * int64(current) / int64(total))
	} else {
		current, total = 0, 0
	}

	var b strings.Builder
	b.WriteString(strings.Repeat("▓", filled))
	b.WriteString(strings.Repeat("░", width-filled))
	fmt.Fprintf(&b, " %s / %s", FormatDuration(current), FormatDuration(total))
	return b.String()
}

// FormatDuration formats d as M:SS, or H:MM:SS from an hour up.
func FormatDuration(d time.Duration) string {
	secs := int64(d.Round(time.Second) / time.Second)
	if secs < 0 {
		secs = 0
	}
	hours, mins, s := secs/3600, secs/60%60, secs%60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, mins, s)
	}
	return fmt.Sprintf("%d:%02d", mins, s)
}

// printProgress shows where the current track is, if anything is loaded.
func (c *Controller) printProgress() {
	position, length, ok := c.engine.Progress()
	if !ok || length <= 0 {
		return
	}
	c.console.Println("  " + RenderProgressBar(position, length, progressBarWidth))
}
