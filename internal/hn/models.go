package hn

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/samber/lo"
)

const itemPageURL = "https://news.ycombinator.com/item?id=%d"

// Post is a single story as shown in a feed. Posts are values and are never
// mutated after a page has been loaded.
type Post struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	URL          string    `json:"url"`
	By           string    `json:"by"`
	Score        int       `json:"score"`
	CommentCount int       `json:"comment_count"`
	Rank         int       `json:"rank"`
	Time         time.Time `json:"time"`
	Type         string    `json:"type"`
}

// CommentsURL returns the Hacker News discussion page for the post.
func (p Post) CommentsURL() string {
	return ItemURL(p.ID)
}

// Domain returns the host of the post link without a leading "www.".
func (p Post) Domain() string {
	u, err := url.Parse(p.URL)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// IsSelfPost reports whether the post links back to its own discussion page.
func (p Post) IsSelfPost() bool {
	return p.URL == "" || p.URL == p.CommentsURL()
}

// ItemURL returns the news.ycombinator.com page for an item ID.
func ItemURL(id int64) string {
	return fmt.Sprintf(itemPageURL, id)
}

// Comment is a top-level reply to a post. Text is markdown.
type Comment struct {
	ID    int64
	By    string
	Text  string
	Time  time.Time
	Depth int
}

// Page is one page of posts returned by a provider.
type Page struct {
	Posts         []Post
	NextPageToken string
}

// Category selects which Hacker News list to load.
type Category string

const (
	CategoryTop  Category = "top"
	CategoryNew  Category = "new"
	CategoryBest Category = "best"
	CategoryAsk  Category = "ask"
	CategoryShow Category = "show"
	CategoryJobs Category = "jobs"
)

// Categories lists every supported category in menu order.
var Categories = []Category{CategoryTop, CategoryNew, CategoryBest, CategoryAsk, CategoryShow, CategoryJobs}

// ParseCategory converts a user supplied name into a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if c == "" {
		return CategoryTop, nil
	}
	if !lo.Contains(Categories, c) {
		return "", fmt.Errorf("unknown category %q (want one of %s)", s, strings.Join(lo.Map(Categories, func(c Category, _ int) string { return string(c) }), ", "))
	}
	return c, nil
}

func (c Category) String() string { return string(c) }
