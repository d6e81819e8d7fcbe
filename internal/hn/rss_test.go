package hn

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frontpageRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:dc="http://purl.org/dc/elements/1.1/">
<channel>
<title>Hacker News: Front Page</title>
<link>https://news.ycombinator.com/</link>
<item>
  <title>Show HN: A thing</title>
  <description><![CDATA[
<p>Article URL: <a href="https://thing.dev">https://thing.dev</a></p>
<p>Comments URL: <a href="https://news.ycombinator.com/item?id=41000001">https://news.ycombinator.com/item?id=41000001</a></p>
<p>Points: 120</p>
<p># Comments: 45</p>
]]></description>
  <pubDate>Mon, 01 Jul 2024 10:00:00 +0000</pubDate>
  <link>https://thing.dev</link>
  <dc:creator>alice</dc:creator>
  <comments>https://news.ycombinator.com/item?id=41000001</comments>
  <guid isPermaLink="false">https://news.ycombinator.com/item?id=41000001</guid>
</item>
<item>
  <title>Ask HN: Something?</title>
  <description><![CDATA[<p>Points: 7</p><p># Comments: 0</p>]]></description>
  <link>https://news.ycombinator.com/item?id=41000002</link>
  <guid isPermaLink="false">https://news.ycombinator.com/item?id=41000002</guid>
</item>
<item>
  <title>No identifier</title>
  <link>https://elsewhere.example</link>
</item>
</channel>
</rss>`

func TestRSSProvider_ParsesHNRSS(t *testing.T) {
	var gotPath, gotCount string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotCount = r.URL.Query().Get("count")
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(frontpageRSS))
	}))
	defer ts.Close()

	p := NewRSSProvider(ts.URL, ts.Client(), 25, "hackers-test")
	page, err := p.FetchTopPosts(context.Background(), CategoryTop)
	require.NoError(t, err)

	assert.Equal(t, "/frontpage", gotPath)
	assert.Equal(t, "25", gotCount)
	require.Len(t, page.Posts, 2)
	assert.Empty(t, page.NextPageToken)

	first := page.Posts[0]
	assert.Equal(t, int64(41000001), first.ID)
	assert.Equal(t, "https://thing.dev", first.URL)
	assert.Equal(t, 120, first.Score)
	assert.Equal(t, 45, first.CommentCount)
	assert.Equal(t, "alice", first.By)
	assert.Equal(t, 1, first.Rank)
	assert.False(t, first.Time.IsZero())

	second := page.Posts[1]
	assert.Equal(t, 2, second.Rank)
	assert.True(t, second.IsSelfPost())
}

func TestRSSProvider_Errors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/newest" {
			_, _ = w.Write([]byte("this is not xml"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	p := NewRSSProvider(ts.URL, ts.Client(), 0, "")

	_, err := p.FetchTopPosts(context.Background(), CategoryTop)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")

	_, err = p.FetchTopPosts(context.Background(), CategoryNew)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing feed")

	_, err = p.FetchTopPosts(context.Background(), Category("polls"))
	assert.Error(t, err)
}
