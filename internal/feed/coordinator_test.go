package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/hackers/internal/hn"
)

type fakeProvider struct {
	mu         sync.Mutex
	pages      []hn.Page
	errs       []error
	calls      int
	categories []hn.Category
}

func (f *fakeProvider) FetchTopPosts(_ context.Context, category hn.Category) (hn.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.calls
	f.calls++
	f.categories = append(f.categories, category)
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	if err != nil {
		return hn.Page{}, err
	}
	if i < len(f.pages) {
		return f.pages[i], nil
	}
	return hn.Page{Posts: []hn.Post{}}, nil
}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func makePosts(n int) []hn.Post {
	posts := make([]hn.Post, n)
	for i := range posts {
		posts[i] = hn.Post{
			ID:           int64(100 + i),
			Title:        fmt.Sprintf("P%d", i),
			URL:          fmt.Sprintf("https://example.com/p%d", i),
			CommentCount: i * 3,
			Rank:         i + 1,
		}
	}
	return posts
}

func loaded(t *testing.T, n int) (*Coordinator, *fakeProvider) {
	t.Helper()
	p := &fakeProvider{pages: []hn.Page{{Posts: makePosts(n)}}}
	c := NewCoordinator(p)
	require.NoError(t, c.Refresh(context.Background()))
	require.Equal(t, n, c.Len())
	return c, p
}

func TestNewCoordinator_StartsEmptyAndCollapsed(t *testing.T) {
	c := NewCoordinator(&fakeProvider{})
	assert.Empty(t, c.Posts())
	assert.False(t, c.IsRefreshing())
	_, ok := c.PreviewedIndex()
	assert.False(t, ok)
	assert.True(t, c.ShouldCollapseOnLayoutChange())
	assert.Equal(t, hn.CategoryTop, c.Category())
}

func TestRefresh_RequestsDefaultCategory(t *testing.T) {
	p := &fakeProvider{}
	require.NoError(t, NewCoordinator(p).Refresh(context.Background()))
	require.NoError(t, NewCoordinator(p, WithCategory(hn.CategoryAsk)).Refresh(context.Background()))
	assert.Equal(t, []hn.Category{hn.CategoryTop, hn.CategoryAsk}, p.categories)
}

func TestRefresh_SuccessReplacesPostsAndClearsFlags(t *testing.T) {
	c, p := loaded(t, 3)
	_, err := c.BeginPreview(2)
	require.NoError(t, err)

	p.pages = append(p.pages, hn.Page{Posts: makePosts(1)})
	require.NoError(t, c.Refresh(context.Background()))

	assert.Len(t, c.Posts(), 1)
	assert.False(t, c.IsRefreshing())
	_, ok := c.PreviewedIndex()
	assert.False(t, ok, "preview must be abandoned when a refresh lands")
}

func TestRefresh_FailureKeepsPreviousPosts(t *testing.T) {
	c, p := loaded(t, 2)
	before := c.Posts()

	p.errs = []error{nil, errors.New("network down")}
	err := c.Refresh(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetchFailed)
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, hn.CategoryTop, fe.Category)
	assert.Contains(t, err.Error(), "network down")

	assert.Equal(t, before, c.Posts())
	assert.False(t, c.IsRefreshing())
}

func TestRefresh_NilPostListIsFetchFailure(t *testing.T) {
	p := &fakeProvider{pages: []hn.Page{{}}}
	c := NewCoordinator(p)
	err := c.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.Empty(t, c.Posts())
}

func TestRefresh_WhileRefreshingIsNoop(t *testing.T) {
	c, p := loaded(t, 2)
	before := c.Posts()

	ticket, ok := c.BeginRefresh()
	require.True(t, ok)
	assert.True(t, c.IsRefreshing())

	require.NoError(t, c.Refresh(context.Background()))
	_, again := c.BeginRefresh()
	assert.False(t, again)

	assert.Equal(t, 1, p.callCount(), "no second provider request while refreshing")
	assert.Equal(t, before, c.Posts())

	require.NoError(t, c.ApplyRefresh(RefreshResult{Ticket: ticket, Page: hn.Page{Posts: makePosts(4)}}))
	assert.Len(t, c.Posts(), 4)
}

func TestApplyRefresh_DropsStaleTickets(t *testing.T) {
	c, _ := loaded(t, 2)

	old, ok := c.BeginRefresh()
	require.True(t, ok)
	require.ErrorIs(t, c.ApplyRefresh(RefreshResult{Ticket: old, Err: errors.New("timeout")}), ErrFetchFailed)

	require.NoError(t, c.ApplyRefresh(RefreshResult{Ticket: old, Page: hn.Page{Posts: makePosts(5)}}))
	assert.Len(t, c.Posts(), 2, "a completed ticket cannot be applied twice")

	current, ok := c.BeginRefresh()
	require.True(t, ok)
	require.NoError(t, c.ApplyRefresh(RefreshResult{Ticket: old, Page: hn.Page{Posts: makePosts(7)}}))
	assert.True(t, c.IsRefreshing())
	assert.Len(t, c.Posts(), 2)

	require.NoError(t, c.ApplyRefresh(RefreshResult{Ticket: current, Page: hn.Page{Posts: makePosts(1)}}))
	assert.Len(t, c.Posts(), 1)
}

func TestSelectPost_IntentByDeviceClass(t *testing.T) {
	c, _ := loaded(t, 3)

	intent, err := c.SelectPost(1, Compact)
	require.NoError(t, err)
	assert.Equal(t, ShowDetailAndCollapse, intent.Kind)
	assert.Equal(t, "P1", intent.Post.Title)
	assert.Equal(t, 1, intent.Index)
	assert.False(t, c.ShouldCollapseOnLayoutChange())

	intent, err = c.SelectPost(2, Regular)
	require.NoError(t, err)
	assert.Equal(t, ShowDetailSideBySide, intent.Kind)
	assert.Equal(t, "P2", intent.Post.Title)
}

func TestSelectPost_DoesNotMutatePosts(t *testing.T) {
	c, _ := loaded(t, 4)
	before := c.Posts()
	for i := 0; i < 4; i++ {
		for _, d := range []DeviceClass{Compact, Regular} {
			_, err := c.SelectPost(i, d)
			require.NoError(t, err)
			assert.Equal(t, before, c.Posts())
		}
	}
}

func TestSelectPost_OutOfRange(t *testing.T) {
	c, _ := loaded(t, 2)
	for _, idx := range []int{-1, 2, 10} {
		_, err := c.SelectPost(idx, Compact)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrOutOfRange)
		var ie *IndexError
		require.ErrorAs(t, err, &ie)
		assert.Equal(t, idx, ie.Index)
		assert.Equal(t, 2, ie.Len)
	}
	assert.True(t, c.ShouldCollapseOnLayoutChange(), "failed selection must not expand the split view")
}

func TestCollapseDecision_NeverResets(t *testing.T) {
	c, p := loaded(t, 3)
	assert.True(t, c.ShouldCollapseOnLayoutChange())

	_, err := c.SelectPost(0, Regular)
	require.NoError(t, err)
	assert.False(t, c.ShouldCollapseOnLayoutChange())

	p.pages = append(p.pages, hn.Page{Posts: makePosts(2)})
	require.NoError(t, c.Refresh(context.Background()))
	c.CancelPreview()
	assert.False(t, c.ShouldCollapseOnLayoutChange())
}

func TestBeginPreview(t *testing.T) {
	c, _ := loaded(t, 3)

	url, err := c.BeginPreview(2)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/p2", url)
	idx, ok := c.PreviewedIndex()
	assert.True(t, ok)
	assert.Equal(t, 2, idx)

	again, err := c.BeginPreview(2)
	require.NoError(t, err)
	assert.Equal(t, url, again)
	idx, _ = c.PreviewedIndex()
	assert.Equal(t, 2, idx)

	post, ok := c.PreviewedPost()
	require.True(t, ok)
	assert.Equal(t, "P2", post.Title)

	_, err = c.BeginPreview(3)
	assert.ErrorIs(t, err, ErrOutOfRange)
	idx, _ = c.PreviewedIndex()
	assert.Equal(t, 2, idx, "invalid preview keeps the existing one")
}

func TestCommitPreview_EquivalentToSelect(t *testing.T) {
	for _, device := range []DeviceClass{Compact, Regular} {
		t.Run(device.String(), func(t *testing.T) {
			direct, _ := loaded(t, 3)
			want, err := direct.SelectPost(2, device)
			require.NoError(t, err)

			viaPreview, _ := loaded(t, 3)
			_, err = viaPreview.BeginPreview(2)
			require.NoError(t, err)
			got, err := viaPreview.CommitPreview(device)
			require.NoError(t, err)

			assert.Equal(t, want, got)
			assert.Equal(t, direct.ShouldCollapseOnLayoutChange(), viaPreview.ShouldCollapseOnLayoutChange())
			_, ok := viaPreview.PreviewedIndex()
			assert.False(t, ok)
		})
	}
}

func TestCommitPreview_WithoutPreview(t *testing.T) {
	c, _ := loaded(t, 1)
	_, err := c.CommitPreview(Compact)
	assert.ErrorIs(t, err, ErrNoPreview)
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.True(t, c.ShouldCollapseOnLayoutChange())
}

func TestCancelPreview(t *testing.T) {
	c, _ := loaded(t, 2)
	_, err := c.BeginPreview(1)
	require.NoError(t, err)

	c.CancelPreview()
	_, ok := c.PreviewedIndex()
	assert.False(t, ok)
	assert.True(t, c.ShouldCollapseOnLayoutChange(), "cancel has no navigation effect")
	c.CancelPreview()
}

type fakeNotifier struct {
	mu        sync.Mutex
	listeners []func()
	cancelled int
}

func (n *fakeNotifier) SubscribeRefreshRequired(fn func()) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listeners = append(n.listeners, fn)
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		n.cancelled++
	}
}

func (n *fakeNotifier) fire() {
	n.mu.Lock()
	ls := append([]func(){}, n.listeners...)
	n.mu.Unlock()
	for _, fn := range ls {
		fn()
	}
}

func TestListen_CoalescesRefreshRequired(t *testing.T) {
	c := NewCoordinator(&fakeProvider{})
	n := &fakeNotifier{}
	c.Listen(n)

	n.fire()
	n.fire()

	select {
	case <-c.RefreshRequired():
	default:
		t.Fatal("expected a refresh-required signal")
	}
	select {
	case <-c.RefreshRequired():
		t.Fatal("signals should be coalesced")
	default:
	}

	c.Close()
	assert.Equal(t, 1, n.cancelled)
}

func TestClose_DiscardsStateAndLateResults(t *testing.T) {
	c, _ := loaded(t, 2)
	ticket, ok := c.BeginRefresh()
	require.True(t, ok)

	c.Close()
	assert.Empty(t, c.Posts())

	require.NoError(t, c.ApplyRefresh(RefreshResult{Ticket: ticket, Page: hn.Page{Posts: makePosts(3)}}))
	assert.Empty(t, c.Posts())

	_, ok = c.BeginRefresh()
	assert.False(t, ok)
}

func TestPreviewActionTitle(t *testing.T) {
	assert.Equal(t, "View 12 comments", PreviewActionTitle(hn.Post{CommentCount: 12}))
	assert.Equal(t, "View comments", PreviewActionTitle(hn.Post{}))
}

func TestIntentKindString(t *testing.T) {
	assert.Equal(t, "show-detail-and-collapse", ShowDetailAndCollapse.String())
	assert.Equal(t, "show-detail-side-by-side", ShowDetailSideBySide.String())
	assert.Equal(t, "regular", Regular.String())
	assert.Equal(t, "compact", Compact.String())
}
