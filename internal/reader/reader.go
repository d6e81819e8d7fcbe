// Package reader fetches the page behind a post link and turns it into
// something a terminal can show inline.
package reader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/PuerkitoBio/goquery"

	"github.com/pders01/hackers/internal/debuglog"
	"github.com/pders01/hackers/internal/validation"
)

const (
	defaultUserAgent = "hackers/1.0 (terminal Hacker News reader; github.com/pders01/hackers)"
	defaultTimeout   = 15 * time.Second
	maxRedirects     = 10

	// MaxBodyBytes caps how much of a page is read.
	MaxBodyBytes = 2 << 20
)

// Page is a fetched link ready for display.
type Page struct {
	URL         string
	Title       string
	SiteName    string
	Description string
	ImageURL    string
	ContentType string
	// Markdown is the extracted article in reader mode, or a short summary
	// built from the page metadata otherwise.
	Markdown   string
	ReaderMode bool
	Truncated  bool
}

type Fetcher struct {
	client    *http.Client
	userAgent string
	validator *validation.LinkValidator
}

type Option func(*Fetcher)

func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithValidator replaces the link validator, e.g. to allow local servers.
func WithValidator(v *validation.LinkValidator) Option {
	return func(f *Fetcher) { f.validator = v }
}

func NewFetcher(client *http.Client, opts ...Option) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	f := &Fetcher{
		client:    client,
		userAgent: defaultUserAgent,
		validator: validation.NewLinkValidator(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.client = f.guardRedirects(client)
	return f
}

// guardRedirects returns a copy of client that runs every redirect target
// through the link validator before following it.
func (f *Fetcher) guardRedirects(client *http.Client) *http.Client {
	c := *client
	next := client.CheckRedirect
	c.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= maxRedirects {
			return fmt.Errorf("stopped after %d redirects", maxRedirects)
		}
		if _, err := f.validator.ValidateAndNormalize(req.URL.String()); err != nil {
			return fmt.Errorf("redirect to %s: %w", req.URL.Redacted(), err)
		}
		if next != nil {
			return next(req, via)
		}
		return nil
	}
	return &c
}

// Fetch loads rawURL. With readerMode set the main content of the page is
// converted to markdown.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, readerMode bool) (*Page, error) {
	link, err := f.validator.ValidateAndNormalize(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid link: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html, application/xhtml+xml, text/plain;q=0.8, */*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading page: %w", err)
	}

	page := &Page{URL: resp.Request.URL.String(), ReaderMode: readerMode}
	if len(body) > MaxBodyBytes {
		body = body[:MaxBodyBytes]
		page.Truncated = true
	}

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mediaType == "" {
		mediaType = http.DetectContentType(body)
		mediaType, _, _ = mime.ParseMediaType(mediaType)
	}
	page.ContentType = mediaType

	switch {
	case mediaType == "text/html" || mediaType == "application/xhtml+xml":
		if err := f.fillFromHTML(page, body, readerMode); err != nil {
			return nil, err
		}
	case strings.HasPrefix(mediaType, "text/"):
		page.Title = displayPath(resp.Request.URL)
		page.Markdown = "```\n" + strings.TrimRight(string(body), "\n") + "\n```\n"
	default:
		page.Title = displayPath(resp.Request.URL)
		page.Markdown = fmt.Sprintf("_%s content (%d bytes) cannot be shown inline._\n", mediaType, len(body))
		debuglog.WithFields(map[string]interface{}{
			"url":          page.URL,
			"content_type": mediaType,
		}).Debugf("preview falls back to summary")
	}

	return page, nil
}

func displayPath(u *url.URL) string {
	if u.Path == "" || u.Path == "/" {
		return u.Host
	}
	return u.Host + u.Path
}

const noiseSelectors = "script, style, noscript, nav, header, footer, aside, form, iframe, svg"

func (f *Fetcher) fillFromHTML(page *Page, body []byte, readerMode bool) error {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("parsing page: %w", err)
	}

	page.Title = strings.TrimSpace(firstNonEmpty(
		meta(doc, "og:title"),
		doc.Find("title").First().Text(),
		doc.Find("h1").First().Text(),
	))
	page.SiteName = meta(doc, "og:site_name")
	page.Description = strings.TrimSpace(firstNonEmpty(
		meta(doc, "og:description"),
		meta(doc, "description"),
	))
	if img := meta(doc, "og:image"); img != "" {
		page.ImageURL = resolve(page.URL, img)
	}

	if !readerMode {
		page.Markdown = summary(page)
		return nil
	}

	content := mainContent(doc)
	content.Find(noiseSelectors).Remove()
	html, err := goquery.OuterHtml(content)
	if err != nil {
		return fmt.Errorf("extracting content: %w", err)
	}

	md, err := htmltomarkdown.ConvertString(html, converter.WithDomain(page.URL))
	if err != nil {
		return fmt.Errorf("converting page: %w", err)
	}
	md = strings.TrimSpace(md)
	if md == "" {
		md = summary(page)
	}
	page.Markdown = md
	return nil
}

// mainContent picks the element most likely to hold the article.
func mainContent(doc *goquery.Document) *goquery.Selection {
	for _, sel := range []string{"article", "main", "[role=main]", "#content", "body"} {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			return s
		}
	}
	return doc.Selection
}

func meta(doc *goquery.Document, name string) string {
	sel := fmt.Sprintf(`meta[property=%q], meta[name=%q]`, name, name)
	v, _ := doc.Find(sel).First().Attr("content")
	return strings.TrimSpace(v)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func resolve(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}

func summary(p *Page) string {
	var sb strings.Builder
	if p.Title != "" {
		sb.WriteString("# " + p.Title + "\n\n")
	}
	if p.SiteName != "" {
		sb.WriteString("_" + p.SiteName + "_\n\n")
	}
	if p.Description != "" {
		sb.WriteString(p.Description + "\n\n")
	}
	sb.WriteString(p.URL + "\n")
	return sb.String()
}
