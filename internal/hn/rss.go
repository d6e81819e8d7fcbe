package hn

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

const DefaultRSSBaseURL = "https://hnrss.org"

var rssPaths = map[Category]string{
	CategoryTop:  "/frontpage",
	CategoryNew:  "/newest",
	CategoryBest: "/best",
	CategoryAsk:  "/ask",
	CategoryShow: "/show",
	CategoryJobs: "/jobs",
}

var (
	itemIDRegex   = regexp.MustCompile(`item\?id=(\d+)`)
	pointsRegex   = regexp.MustCompile(`Points:\s*(\d+)`)
	commentsRegex = regexp.MustCompile(`#\s*Comments:\s*(\d+)`)
)

// RSSProvider reads posts from an hnrss.org compatible feed. It only ever
// returns a single page.
type RSSProvider struct {
	baseURL   string
	userAgent string
	count     int
	client    *http.Client
	parser    *gofeed.Parser
}

func NewRSSProvider(baseURL string, httpClient *http.Client, count int, userAgent string) *RSSProvider {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if baseURL == "" {
		baseURL = DefaultRSSBaseURL
	}
	if count <= 0 {
		count = defaultPageSize
	}
	return &RSSProvider{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		count:     count,
		client:    httpClient,
		parser:    gofeed.NewParser(),
	}
}

func (p *RSSProvider) FetchTopPosts(ctx context.Context, category Category) (Page, error) {
	path, ok := rssPaths[category]
	if !ok {
		return Page{}, fmt.Errorf("unsupported category %q", category)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s%s?count=%d", p.baseURL, path, p.count), nil)
	if err != nil {
		return Page{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/rss+xml, application/xml, text/xml")
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("fetching feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return Page{}, fmt.Errorf("HTTP error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	feed, err := p.parser.Parse(resp.Body)
	if err != nil {
		return Page{}, fmt.Errorf("parsing feed: %w", err)
	}

	posts := make([]Post, 0, len(feed.Items))
	for _, it := range feed.Items {
		post, ok := postFromFeedItem(it)
		if !ok {
			continue
		}
		post.Rank = len(posts) + 1
		posts = append(posts, post)
	}
	return Page{Posts: posts}, nil
}

func postFromFeedItem(it *gofeed.Item) (Post, bool) {
	id := firstInt64(itemIDRegex, it.GUID, it.Description, it.Link)
	if id == 0 {
		return Post{}, false
	}

	post := Post{
		ID:           id,
		Title:        strings.TrimSpace(it.Title),
		URL:          it.Link,
		Score:        int(firstInt64(pointsRegex, it.Description)),
		CommentCount: int(firstInt64(commentsRegex, it.Description)),
		Type:         "story",
	}
	if it.Author != nil {
		post.By = it.Author.Name
	} else if len(it.Authors) > 0 && it.Authors[0] != nil {
		post.By = it.Authors[0].Name
	}
	if it.PublishedParsed != nil {
		post.Time = *it.PublishedParsed
	}
	if post.URL == "" {
		post.URL = ItemURL(id)
	}
	return post, true
}

func firstInt64(re *regexp.Regexp, candidates ...string) int64 {
	for _, s := range candidates {
		if m := re.FindStringSubmatch(s); len(m) > 1 {
			if n, err := strconv.ParseInt(m[1], 10, 64); err == nil {
				return n
			}
		}
	}
	return 0
}
