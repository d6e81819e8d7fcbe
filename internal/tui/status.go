package tui

import (
	"fmt"
	"time"
)

// Canonical short status messages used across the app.
const (
	MsgRefreshing        = "Refreshing…"
	MsgAlreadyRefreshing = "Refresh already running"
	MsgLoadingPreview    = "Loading preview…"
	MsgLoadingComments   = "Loading comments…"
	MsgNoResults         = "No results"
	MsgPreviewClosed     = "Preview closed by refresh"
	MsgNothingToOpen     = "Nothing to open"
)

func MsgResultsCount(n int) string {
	if n == 1 {
		return "1 result"
	}
	return fmt.Sprintf("%d results", n)
}

func MsgRefreshSummary(category string, posts, docCount int) string {
	base := fmt.Sprintf("Loaded %s • %s", category, pluralize(posts, "post"))
	if docCount >= 0 {
		base += fmt.Sprintf(" • idx: %d docs", docCount)
	}
	return base
}

func MsgOpened(link string) string {
	return "Opened " + truncateMiddle(link, 60)
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// relativeTime renders t the way the front page does ("3 hours ago").
func relativeTime(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return pluralize(int(d/time.Minute), "minute") + " ago"
	case d < 24*time.Hour:
		return pluralize(int(d/time.Hour), "hour") + " ago"
	default:
		return pluralize(int(d/(24*time.Hour)), "day") + " ago"
	}
}
