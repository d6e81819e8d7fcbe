package hn

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultAPIBaseURL  = "https://hacker-news.firebaseio.com/v0"
	defaultPageSize    = 30
	defaultConcurrency = 8
)

// item mirrors the Firebase item document.
type item struct {
	ID          int64   `json:"id"`
	Type        string  `json:"type"`
	By          string  `json:"by"`
	Time        int64   `json:"time"`
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Text        string  `json:"text"`
	Score       int     `json:"score"`
	Descendants int     `json:"descendants"`
	Kids        []int64 `json:"kids"`
	Deleted     bool    `json:"deleted"`
	Dead        bool    `json:"dead"`
}

func (it *item) visible() bool {
	return it != nil && it.ID != 0 && !it.Deleted && !it.Dead
}

type Client struct {
	baseURL     string
	userAgent   string
	pageSize    int
	concurrency int
	http        *http.Client
}

type ClientOption func(*Client)

// WithPageSize sets how many posts make up one page.
func WithPageSize(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithConcurrency bounds the number of item requests in flight.
func WithConcurrency(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

func WithUserAgent(ua string) ClientOption {
	return func(c *Client) { c.userAgent = ua }
}

func NewClient(baseURL string, httpClient *http.Client, opts ...ClientOption) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if baseURL == "" {
		baseURL = DefaultAPIBaseURL
	}
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		pageSize:    defaultPageSize,
		concurrency: defaultConcurrency,
		http:        httpClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchTopPosts loads the first page of a category.
func (c *Client) FetchTopPosts(ctx context.Context, category Category) (Page, error) {
	return c.FetchPage(ctx, category, "")
}

var apiPaths = map[Category]string{
	CategoryTop:  "/topstories.json",
	CategoryNew:  "/newstories.json",
	CategoryBest: "/beststories.json",
	CategoryAsk:  "/askstories.json",
	CategoryShow: "/showstories.json",
	CategoryJobs: "/jobstories.json",
}

// FetchPage loads the page starting at token. An empty token is the first page.
func (c *Client) FetchPage(ctx context.Context, category Category, token string) (Page, error) {
	offset := 0
	if token != "" {
		n, err := strconv.Atoi(token)
		if err != nil || n < 0 {
			return Page{}, fmt.Errorf("invalid page token %q", token)
		}
		offset = n
	}

	var ids []int64
	path, ok := apiPaths[category]
	if !ok {
		return Page{}, fmt.Errorf("unknown category %q", category)
	}
	if err := c.getJSON(ctx, path, &ids); err != nil {
		return Page{}, fmt.Errorf("list %s stories: %w", category, err)
	}
	if offset >= len(ids) {
		return Page{Posts: []Post{}}, nil
	}

	end := min(offset+c.pageSize, len(ids))
	items, err := c.fetchItems(ctx, ids[offset:end])
	if err != nil {
		return Page{}, err
	}

	posts := make([]Post, 0, len(items))
	for _, it := range items {
		if !it.visible() {
			continue
		}
		posts = append(posts, postFromItem(it, offset+len(posts)+1))
	}

	page := Page{Posts: posts}
	if end < len(ids) {
		page.NextPageToken = strconv.Itoa(end)
	}
	return page, nil
}

// FetchComments loads up to limit top-level comments of a post.
func (c *Client) FetchComments(ctx context.Context, post Post, limit int) ([]Comment, error) {
	var parent item
	if err := c.getJSON(ctx, fmt.Sprintf("/item/%d.json", post.ID), &parent); err != nil {
		return nil, fmt.Errorf("get item %d: %w", post.ID, err)
	}
	kids := parent.Kids
	if limit > 0 && len(kids) > limit {
		kids = kids[:limit]
	}
	items, err := c.fetchItems(ctx, kids)
	if err != nil {
		return nil, err
	}
	visible := lo.Filter(items, func(it *item, _ int) bool { return it.visible() })
	return lo.Map(visible, func(it *item, _ int) Comment {
		return Comment{
			ID:   it.ID,
			By:   it.By,
			Text: htmlToMarkdown(it.Text),
			Time: time.Unix(it.Time, 0),
		}
	}), nil
}

// fetchItems loads items concurrently and returns them in the order of ids.
// Null documents come back as nil entries.
func (c *Client) fetchItems(ctx context.Context, ids []int64) ([]*item, error) {
	items := make([]*item, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, id := range ids {
		g.Go(func() error {
			var it *item
			if err := c.getJSON(gctx, fmt.Sprintf("/item/%d.json", id), &it); err != nil {
				return fmt.Errorf("get item %d: %w", id, err)
			}
			items[i] = it
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func postFromItem(it *item, rank int) Post {
	p := Post{
		ID:           it.ID,
		Title:        it.Title,
		URL:          it.URL,
		By:           it.By,
		Score:        it.Score,
		CommentCount: it.Descendants,
		Rank:         rank,
		Time:         time.Unix(it.Time, 0),
		Type:         it.Type,
	}
	if p.URL == "" {
		p.URL = ItemURL(it.ID)
	}
	return p
}

func htmlToMarkdown(s string) string {
	if s == "" {
		return ""
	}
	md, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		return s
	}
	return strings.TrimSpace(md)
}
