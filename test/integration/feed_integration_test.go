package integration

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/hackers/internal/feed"
	"github.com/pders01/hackers/internal/hn"
	"github.com/pders01/hackers/internal/prefs"
	"github.com/pders01/hackers/internal/search"
	"github.com/pders01/hackers/internal/storage"
)

// hnServer serves a small slice of the Hacker News API. Flipping fail makes
// the story list endpoints return 503.
type hnServer struct {
	*httptest.Server
	fail atomic.Bool
}

func newHNServer(t *testing.T) *hnServer {
	t.Helper()
	s := &hnServer{}
	items := map[string]string{
		"/item/1.json":   `{"id":1,"type":"story","by":"pg","time":1700000000,"title":"Launch of a tiny Lisp","url":"https://lisp.example.com/post","score":310,"descendants":2,"kids":[100,101]}`,
		"/item/2.json":   `{"id":2,"type":"story","by":"dang","time":1700000500,"title":"Ask HN: How do you read papers?","score":88,"descendants":0}`,
		"/item/3.json":   `{"id":3,"type":"story","by":"tptacek","time":1700001000,"title":"Postmortem of a DNS outage","url":"https://www.status.example.org/dns","score":150,"descendants":41}`,
		"/item/100.json": `{"id":100,"type":"comment","by":"alice","time":1700000100,"text":"Nice <i>work</i>","parent":1}`,
		"/item/101.json": `{"id":101,"type":"comment","deleted":true,"time":1700000200,"parent":1}`,
	}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "stories.json") {
			if s.fail.Load() {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			switch r.URL.Path {
			case "/topstories.json":
				fmt.Fprint(w, "[1,2,3]")
			case "/newstories.json":
				fmt.Fprint(w, "[3]")
			default:
				fmt.Fprint(w, "[]")
			}
			return
		}
		body, ok := items[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, body)
	}))
	t.Cleanup(s.Close)
	return s
}

func newClient(s *hnServer) *hn.Client {
	return hn.NewClient(s.URL, &http.Client{Timeout: 5 * time.Second}, hn.WithPageSize(10))
}

func TestRefreshSelectAndComments(t *testing.T) {
	srv := newHNServer(t)
	client := newClient(srv)
	co := feed.NewCoordinator(client)
	defer co.Close()

	ctx := context.Background()
	require.NoError(t, co.Refresh(ctx))
	posts := co.Posts()
	require.Len(t, posts, 3)
	assert.Equal(t, "Launch of a tiny Lisp", posts[0].Title)
	assert.Equal(t, "status.example.org", posts[2].Domain())
	assert.True(t, posts[1].IsSelfPost())

	intent, err := co.SelectPost(0, feed.Compact)
	require.NoError(t, err)
	assert.Equal(t, feed.ShowDetailAndCollapse, intent.Kind)
	assert.False(t, co.ShouldCollapseOnLayoutChange())

	comments, err := client.FetchComments(ctx, intent.Post, 10)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "alice", comments[0].By)
	assert.Contains(t, comments[0].Text, "work")
}

func TestFailedRefreshKeepsPosts(t *testing.T) {
	srv := newHNServer(t)
	co := feed.NewCoordinator(newClient(srv))
	defer co.Close()

	require.NoError(t, co.Refresh(context.Background()))
	_, err := co.BeginPreview(2)
	require.NoError(t, err)

	srv.fail.Store(true)
	err = co.Refresh(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, feed.ErrFetchFailed))

	assert.Len(t, co.Posts(), 3)
	assert.False(t, co.IsRefreshing())
	idx, ok := co.PreviewedIndex()
	assert.True(t, ok, "a failed refresh leaves the preview alone")
	assert.Equal(t, 2, idx)
}

func TestRefreshClearsPreviewAndCommit(t *testing.T) {
	srv := newHNServer(t)
	co := feed.NewCoordinator(newClient(srv))
	defer co.Close()
	ctx := context.Background()

	require.NoError(t, co.Refresh(ctx))
	link, err := co.BeginPreview(0)
	require.NoError(t, err)
	assert.Equal(t, "https://lisp.example.com/post", link)

	require.NoError(t, co.Refresh(ctx))
	_, ok := co.PreviewedIndex()
	assert.False(t, ok)

	_, err = co.CommitPreview(feed.Regular)
	assert.ErrorIs(t, err, feed.ErrNoPreview)

	_, err = co.BeginPreview(1)
	require.NoError(t, err)
	intent, err := co.CommitPreview(feed.Regular)
	require.NoError(t, err)
	assert.Equal(t, feed.ShowDetailSideBySide, intent.Kind)
	assert.Equal(t, int64(2), intent.Post.ID)
}

func TestStaleTicketIsDiscarded(t *testing.T) {
	srv := newHNServer(t)
	co := feed.NewCoordinator(newClient(srv), feed.WithCategory(hn.CategoryNew))
	defer co.Close()
	ctx := context.Background()

	ticket, ok := co.BeginRefresh()
	require.True(t, ok)
	_, ok = co.BeginRefresh()
	assert.False(t, ok, "only one refresh runs at a time")

	result := co.Fetch(ctx, ticket)
	require.NoError(t, result.Err)
	require.NoError(t, co.ApplyRefresh(result))
	require.Len(t, co.Posts(), 1)

	// Delivered a second time the same result is stale and ignored.
	result.Page.Posts = nil
	require.NoError(t, co.ApplyRefresh(result))
	assert.Len(t, co.Posts(), 1)

	co.Close()
	ticket, ok = co.BeginRefresh()
	assert.False(t, ok)
	assert.Empty(t, co.Posts())
	_ = ticket
}

func TestPreferenceChangeRequestsRefresh(t *testing.T) {
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "hackers.db"), time.Second)
	require.NoError(t, err)
	defer store.Close()

	svc := prefs.New(store)
	co := feed.NewCoordinator(newClient(newHNServer(t)))
	defer co.Close()
	co.Listen(svc)

	require.NoError(t, svc.SetReaderMode(true))
	select {
	case <-co.RefreshRequired():
		t.Fatal("reader mode should not trigger a refresh")
	default:
	}

	require.NoError(t, svc.SetShowThumbnails(false))
	require.NoError(t, svc.SetShowThumbnails(true))
	select {
	case <-co.RefreshRequired():
	case <-time.After(time.Second):
		t.Fatal("expected a refresh request")
	}
	select {
	case <-co.RefreshRequired():
		t.Fatal("pending requests should be coalesced")
	default:
	}

	reloaded, err := store.LoadPreferences()
	require.NoError(t, err)
	assert.True(t, reloaded.ReaderMode)
	assert.True(t, reloaded.ShowThumbnails)
}

func TestSearchOverLoadedPosts(t *testing.T) {
	co := feed.NewCoordinator(newClient(newHNServer(t)))
	defer co.Close()
	require.NoError(t, co.Refresh(context.Background()))

	s := search.New()
	require.NoError(t, s.Index(co.Posts()))

	results, err := s.Search("dns outage", 10)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, int64(3), results[0].Post.ID)
}
