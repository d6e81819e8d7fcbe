package hn

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAPIServer(t *testing.T, ids []int64, items map[int64]string) (*httptest.Server, *int32) {
	t.Helper()
	var itemRequests int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/topstories.json":
			parts := make([]string, len(ids))
			for i, id := range ids {
				parts[i] = fmt.Sprint(id)
			}
			_, _ = w.Write([]byte("[" + strings.Join(parts, ",") + "]"))
		case strings.HasPrefix(r.URL.Path, "/item/"):
			atomic.AddInt32(&itemRequests, 1)
			var id int64
			_, _ = fmt.Sscanf(r.URL.Path, "/item/%d.json", &id)
			body, ok := items[id]
			if !ok {
				body = "null"
			}
			_, _ = w.Write([]byte(body))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(ts.Close)
	return ts, &itemRequests
}

func story(id int64, title, url string, comments int) string {
	return fmt.Sprintf(`{"id":%d,"type":"story","by":"pg","time":1700000000,"title":%q,"url":%q,"score":%d,"descendants":%d}`,
		id, title, url, id*10, comments)
}

func TestFetchTopPosts_PreservesOrderAndAssignsRank(t *testing.T) {
	ids := []int64{3, 1, 2}
	items := map[int64]string{
		1: story(1, "One", "https://example.com/1", 4),
		2: story(2, "Two", "", 0),
		3: story(3, "Three", "https://www.example.org/3", 12),
	}
	ts, _ := newAPIServer(t, ids, items)

	c := NewClient(ts.URL, ts.Client())
	page, err := c.FetchTopPosts(context.Background(), CategoryTop)
	require.NoError(t, err)
	require.Len(t, page.Posts, 3)

	assert.Equal(t, int64(3), page.Posts[0].ID)
	assert.Equal(t, 1, page.Posts[0].Rank)
	assert.Equal(t, "example.org", page.Posts[0].Domain())
	assert.Equal(t, 12, page.Posts[0].CommentCount)
	assert.Equal(t, int64(1), page.Posts[1].ID)
	assert.Equal(t, 2, page.Posts[1].Rank)
	assert.Equal(t, "https://news.ycombinator.com/item?id=2", page.Posts[2].URL)
	assert.True(t, page.Posts[2].IsSelfPost())
	assert.Empty(t, page.NextPageToken)
}

func TestFetchPage_PaginatesWithToken(t *testing.T) {
	ids := []int64{1, 2, 3, 4, 5}
	items := map[int64]string{}
	for _, id := range ids {
		items[id] = story(id, fmt.Sprintf("Story %d", id), "https://example.com", 0)
	}
	ts, requests := newAPIServer(t, ids, items)

	c := NewClient(ts.URL, ts.Client(), WithPageSize(2), WithConcurrency(1))
	first, err := c.FetchTopPosts(context.Background(), CategoryTop)
	require.NoError(t, err)
	require.Len(t, first.Posts, 2)
	assert.Equal(t, "2", first.NextPageToken)
	assert.Equal(t, int32(2), atomic.LoadInt32(requests))

	second, err := c.FetchPage(context.Background(), CategoryTop, first.NextPageToken)
	require.NoError(t, err)
	require.Len(t, second.Posts, 2)
	assert.Equal(t, int64(3), second.Posts[0].ID)
	assert.Equal(t, 3, second.Posts[0].Rank)
	assert.Equal(t, "4", second.NextPageToken)

	_, err = c.FetchPage(context.Background(), CategoryTop, "nope")
	assert.Error(t, err)
}

func TestFetchTopPosts_SkipsDeletedDeadAndNull(t *testing.T) {
	ids := []int64{1, 2, 3, 4}
	items := map[int64]string{
		1: story(1, "Alive", "https://example.com", 1),
		2: `{"id":2,"deleted":true}`,
		3: `{"id":3,"type":"story","dead":true,"title":"Dead"}`,
	}
	ts, _ := newAPIServer(t, ids, items)

	page, err := NewClient(ts.URL, ts.Client()).FetchTopPosts(context.Background(), CategoryTop)
	require.NoError(t, err)
	require.Len(t, page.Posts, 1)
	assert.Equal(t, "Alive", page.Posts[0].Title)
}

func TestFetchTopPosts_FailsWholePageOnItemError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/topstories.json" {
			_, _ = w.Write([]byte("[1,2]"))
			return
		}
		if r.URL.Path == "/item/2.json" {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("boom"))
			return
		}
		_, _ = w.Write([]byte(story(1, "One", "https://example.com", 0)))
	}))
	defer ts.Close()

	_, err := NewClient(ts.URL, ts.Client()).FetchTopPosts(context.Background(), CategoryTop)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestFetchTopPosts_MalformedJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{not json"))
	}))
	defer ts.Close()

	_, err := NewClient(ts.URL, ts.Client()).FetchTopPosts(context.Background(), CategoryTop)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestFetchComments_ConvertsHTML(t *testing.T) {
	items := map[int64]string{
		10: `{"id":10,"type":"story","title":"Parent","kids":[11,12,13]}`,
		11: `{"id":11,"type":"comment","by":"alice","time":1700000000,"text":"Hello <i>world</i>"}`,
		12: `{"id":12,"type":"comment","deleted":true}`,
		13: `{"id":13,"type":"comment","by":"bob","text":"Second"}`,
	}
	ts, _ := newAPIServer(t, nil, items)

	comments, err := NewClient(ts.URL, ts.Client()).FetchComments(context.Background(), Post{ID: 10}, 2)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "alice", comments[0].By)
	assert.Contains(t, comments[0].Text, "world")
	assert.NotContains(t, comments[0].Text, "<i>")
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory("")
	require.NoError(t, err)
	assert.Equal(t, CategoryTop, c)

	c, err = ParseCategory(" Ask ")
	require.NoError(t, err)
	assert.Equal(t, CategoryAsk, c)

	_, err = ParseCategory("polls")
	assert.Error(t, err)
}

func TestFetchTopPosts_CategoryEndpoints(t *testing.T) {
	var paths []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		_, _ = w.Write([]byte("[]"))
	}))
	defer ts.Close()

	c := NewClient(ts.URL, ts.Client())
	for _, cat := range Categories {
		_, err := c.FetchTopPosts(context.Background(), cat)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{
		"/topstories.json", "/newstories.json", "/beststories.json",
		"/askstories.json", "/showstories.json", "/jobstories.json",
	}, paths)

	_, err := c.FetchTopPosts(context.Background(), Category("polls"))
	assert.Error(t, err)
}
