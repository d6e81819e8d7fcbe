package feed

import (
	"context"
	"fmt"
	"sync"

	"github.com/pders01/hackers/internal/debuglog"
	"github.com/pders01/hackers/internal/hn"
)

// PostProvider supplies a page of posts for a category.
type PostProvider interface {
	FetchTopPosts(ctx context.Context, category hn.Category) (hn.Page, error)
}

// RefreshNotifier is anything that can announce that the feed must be
// reloaded, such as a preference change affecting how posts are shown.
type RefreshNotifier interface {
	SubscribeRefreshRequired(fn func()) (cancel func())
}

// DeviceClass is supplied by the host at selection time.
type DeviceClass int

const (
	Compact DeviceClass = iota
	Regular
)

func (d DeviceClass) String() string {
	if d == Regular {
		return "regular"
	}
	return "compact"
}

type IntentKind int

const (
	// ShowDetailAndCollapse replaces the list with the detail screen.
	ShowDetailAndCollapse IntentKind = iota + 1
	// ShowDetailSideBySide shows the detail next to the still visible list.
	ShowDetailSideBySide
)

func (k IntentKind) String() string {
	switch k {
	case ShowDetailAndCollapse:
		return "show-detail-and-collapse"
	case ShowDetailSideBySide:
		return "show-detail-side-by-side"
	default:
		return "unknown"
	}
}

// NavigationIntent is the result of a selection, computed once per event.
type NavigationIntent struct {
	Kind  IntentKind
	Index int
	Post  hn.Post
}

// Ticket identifies one refresh request.
type Ticket struct {
	generation uint64
	category   hn.Category
}

// RefreshResult carries a provider response back to ApplyRefresh.
type RefreshResult struct {
	Ticket Ticket
	Page   hn.Page
	Err    error
}

type Option func(*Coordinator)

// WithCategory overrides the category loaded by Refresh.
func WithCategory(c hn.Category) Option {
	return func(co *Coordinator) { co.category = c }
}

// Coordinator owns the feed state of the post list screen: which posts are
// shown, whether a refresh is running, which row is being previewed and
// whether the split layout may collapse the detail away.
//
// All mutations are expected to come from a single event loop; the mutex
// only makes the accessors safe to call from commands running elsewhere.
type Coordinator struct {
	mu         sync.Mutex
	provider   PostProvider
	category   hn.Category
	posts      []hn.Post
	refreshing bool
	generation uint64
	previewed  int
	collapse   bool
	closed     bool

	refreshRequired chan struct{}
	cancels         []func()
}

func NewCoordinator(provider PostProvider, opts ...Option) *Coordinator {
	c := &Coordinator{
		provider:        provider,
		category:        hn.CategoryTop,
		posts:           []hn.Post{},
		previewed:       -1,
		collapse:        true,
		refreshRequired: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Coordinator) Category() hn.Category {
	return c.category
}

// Posts returns a copy of the current posts in display order.
func (c *Coordinator) Posts() []hn.Post {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]hn.Post(nil), c.posts...)
}

func (c *Coordinator) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.posts)
}

func (c *Coordinator) IsRefreshing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshing
}

// PreviewedIndex returns the row being previewed, if any.
func (c *Coordinator) PreviewedIndex() (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.previewed, c.previewed >= 0
}

// PreviewedPost returns the post being previewed, if any.
func (c *Coordinator) PreviewedPost() (hn.Post, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.previewed < 0 {
		return hn.Post{}, false
	}
	return c.posts[c.previewed], true
}

// Refresh loads the first page of the coordinator's category and replaces
// the posts on success. It is a no-op while another refresh is running.
func (c *Coordinator) Refresh(ctx context.Context) error {
	t, ok := c.BeginRefresh()
	if !ok {
		return nil
	}
	return c.ApplyRefresh(c.Fetch(ctx, t))
}

// BeginRefresh marks a refresh as running. It returns false, and issues no
// ticket, when a refresh is already in flight or the coordinator is closed.
func (c *Coordinator) BeginRefresh() (Ticket, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.refreshing || c.closed {
		return Ticket{}, false
	}
	c.refreshing = true
	c.generation++
	debuglog.WithFields(map[string]interface{}{
		"category":   c.category,
		"generation": c.generation,
	}).Debugf("refresh started")
	return Ticket{generation: c.generation, category: c.category}, true
}

// Fetch asks the provider for the ticket's page. It touches no coordinator
// state and may run off the event loop.
func (c *Coordinator) Fetch(ctx context.Context, t Ticket) RefreshResult {
	page, err := c.provider.FetchTopPosts(ctx, t.category)
	return RefreshResult{Ticket: t, Page: page, Err: err}
}

// ApplyRefresh completes the refresh identified by r.Ticket. Results for a
// ticket that is no longer current are dropped without touching state.
func (c *Coordinator) ApplyRefresh(r RefreshResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	log := debuglog.WithFields(map[string]interface{}{
		"category":   r.Ticket.category,
		"generation": r.Ticket.generation,
	})

	if c.closed || !c.refreshing || r.Ticket.generation != c.generation {
		log.Warnf("discarding stale refresh result")
		return nil
	}
	c.refreshing = false

	if r.Err != nil {
		log.Errorf("refresh failed: %v", r.Err)
		return &FetchError{Category: r.Ticket.category, Err: r.Err}
	}
	if r.Page.Posts == nil {
		log.Errorf("refresh returned no post list")
		return &FetchError{Category: r.Ticket.category, Err: fmt.Errorf("provider returned no post list")}
	}

	c.posts = append([]hn.Post(nil), r.Page.Posts...)
	c.previewed = -1
	log.Infof("refresh loaded %d posts", len(c.posts))
	return nil
}

// SelectPost maps a row selection to a navigation intent for the given
// device class. Once a post has been selected the split view no longer
// collapses onto the list.
func (c *Coordinator) SelectPost(index int, device DeviceClass) (NavigationIntent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selectLocked(index, device)
}

func (c *Coordinator) selectLocked(index int, device DeviceClass) (NavigationIntent, error) {
	if index < 0 || index >= len(c.posts) {
		return NavigationIntent{}, &IndexError{Index: index, Len: len(c.posts)}
	}
	kind := ShowDetailAndCollapse
	if device == Regular {
		kind = ShowDetailSideBySide
	}
	c.collapse = false
	return NavigationIntent{Kind: kind, Index: index, Post: c.posts[index]}, nil
}

// BeginPreview records index as the previewed row and returns the link to
// show inline.
func (c *Coordinator) BeginPreview(index int) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.posts) {
		return "", &IndexError{Index: index, Len: len(c.posts)}
	}
	c.previewed = index
	return c.posts[index].URL, nil
}

// CommitPreview turns the current preview into a selection of the same row.
func (c *Coordinator) CommitPreview(device DeviceClass) (NavigationIntent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.previewed < 0 {
		return NavigationIntent{}, ErrNoPreview
	}
	intent, err := c.selectLocked(c.previewed, device)
	if err != nil {
		return NavigationIntent{}, err
	}
	c.previewed = -1
	return intent, nil
}

func (c *Coordinator) CancelPreview() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.previewed = -1
}

// ShouldCollapseOnLayoutChange reports whether a layout change may collapse
// the detail pane onto the list.
func (c *Coordinator) ShouldCollapseOnLayoutChange() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.collapse
}

// Listen subscribes to n. Notifications are coalesced into RefreshRequired.
func (c *Coordinator) Listen(n RefreshNotifier) (cancel func()) {
	cancel = n.SubscribeRefreshRequired(c.notifyRefreshRequired)
	c.mu.Lock()
	c.cancels = append(c.cancels, cancel)
	c.mu.Unlock()
	return cancel
}

// RefreshRequired delivers a value whenever a subscribed notifier asked for
// a reload. Pending signals are merged into one.
func (c *Coordinator) RefreshRequired() <-chan struct{} {
	return c.refreshRequired
}

func (c *Coordinator) notifyRefreshRequired() {
	select {
	case c.refreshRequired <- struct{}{}:
	default:
	}
}

// Close tears the feed state down. Results of an in-flight refresh arriving
// afterwards are ignored.
func (c *Coordinator) Close() {
	c.mu.Lock()
	cancels := c.cancels
	c.cancels = nil
	c.closed = true
	c.refreshing = false
	c.posts = []hn.Post{}
	c.previewed = -1
	c.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}

// PreviewActionTitle is the label of the action that opens the comments of
// a previewed post.
func PreviewActionTitle(p hn.Post) string {
	if p.CommentCount > 0 {
		return fmt.Sprintf("View %d comments", p.CommentCount)
	}
	return "View comments"
}
