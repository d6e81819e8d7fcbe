package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/pders01/hackers/internal/feed"
	"github.com/pders01/hackers/internal/hn"
)

// detailMarkdown builds the detail screen of a post: its metadata, its
// link and the loaded comments.
func detailMarkdown(p hn.Post, comments []hn.Comment, loading bool, err error) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", p.Title)

	meta := []string{pluralize(p.Score, "point")}
	if p.By != "" {
		meta = append(meta, "by "+p.By)
	}
	if !p.Time.IsZero() {
		meta = append(meta, relativeTime(p.Time, time.Now()))
	}
	fmt.Fprintf(&b, "*%s*\n\n", strings.Join(meta, " · "))

	if !p.IsSelfPost() {
		fmt.Fprintf(&b, "[%s](%s)\n\n", linkLabel(p), p.URL)
	}
	fmt.Fprintf(&b, "[Discussion](%s)\n\n---\n\n", p.CommentsURL())

	fmt.Fprintf(&b, "## %s\n\n", feed.PreviewActionTitle(p))
	switch {
	case loading:
		b.WriteString("_" + MsgLoadingComments + "_\n")
	case err != nil:
		fmt.Fprintf(&b, "_Could not load comments: %v_\n", err)
	case len(comments) == 0:
		b.WriteString("_No comments yet._\n")
	default:
		for _, c := range comments {
			writeComment(&b, c)
		}
	}
	return b.String()
}

func linkLabel(p hn.Post) string {
	if d := p.Domain(); d != "" {
		return d
	}
	return p.URL
}

func writeComment(b *strings.Builder, c hn.Comment) {
	quote := strings.Repeat("> ", c.Depth)
	header := "**" + c.By + "**"
	if c.By == "" {
		header = "**[deleted]**"
	}
	if !c.Time.IsZero() {
		header += " · " + relativeTime(c.Time, time.Now())
	}
	b.WriteString(quote + header + "\n" + quote + "\n")
	for _, line := range strings.Split(strings.TrimSpace(c.Text), "\n") {
		b.WriteString(quote + line + "\n")
	}
	b.WriteString("\n")
}
