package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/hackers/internal/feed"
	"github.com/pders01/hackers/internal/hn"
	"github.com/pders01/hackers/internal/prefs"
	"github.com/pders01/hackers/internal/reader"
	"github.com/pders01/hackers/internal/search"
)

type View int

const (
	ViewList View = iota
	ViewDetail
	ViewPreview
	ViewSettings
	ViewSearch
)

func (v View) String() string {
	switch v {
	case ViewList:
		return "list"
	case ViewDetail:
		return "detail"
	case ViewPreview:
		return "preview"
	case ViewSettings:
		return "settings"
	case ViewSearch:
		return "search"
	default:
		return fmt.Sprintf("View(%d)", int(v))
	}
}

// postItem is one row of the feed or search list. index is the post's
// position in the coordinator, independent of any list filter.
type postItem struct {
	post      hn.Post
	index     int
	showBadge bool
}

func (i postItem) Title() string {
	return fmt.Sprintf("%2d. %s", i.post.Rank, i.post.Title)
}

func (i postItem) Description() string {
	var parts []string
	if i.showBadge {
		if d := i.post.Domain(); d != "" {
			parts = append(parts, BadgeStyle.Render(d))
		}
	}
	parts = append(parts, ScoreStyle.Render(pluralize(i.post.Score, "point")))
	if i.post.By != "" {
		parts = append(parts, "by "+i.post.By)
	}
	parts = append(parts, pluralize(i.post.CommentCount, "comment"))
	if !i.post.Time.IsZero() {
		parts = append(parts, TimeStyle.Render(relativeTime(i.post.Time, time.Now())))
	}
	return lipgloss.NewStyle().Foreground(MutedColor).Render(strings.Join(parts, " • "))
}

func (i postItem) FilterValue() string {
	return i.post.Title + " " + i.post.Domain()
}

type refreshDoneMsg struct {
	result feed.RefreshResult
}

type refreshRequiredMsg struct{}

type prefChangedMsg struct {
	change prefs.Change
}

type previewLoadedMsg struct {
	postID int64
	page   *reader.Page
	err    error
}

type commentsLoadedMsg struct {
	postID   int64
	comments []hn.Comment
	err      error
}

type searchResultsMsg struct {
	query   string
	results []*search.Result
}

type statusMsg struct {
	text string
	kind StatusKind
}

type errorMsg struct {
	err error
}
