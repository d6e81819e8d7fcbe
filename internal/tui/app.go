package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"github.com/pders01/hackers/internal/browser"
	"github.com/pders01/hackers/internal/config"
	"github.com/pders01/hackers/internal/debuglog"
	"github.com/pders01/hackers/internal/feed"
	"github.com/pders01/hackers/internal/hn"
	"github.com/pders01/hackers/internal/prefs"
	"github.com/pders01/hackers/internal/reader"
	"github.com/pders01/hackers/internal/search"
	"github.com/pders01/hackers/internal/settings"
)

// Launcher opens links outside the program. *browser.Launcher satisfies it.
type Launcher interface {
	Open(link string) error
}

// PageFetcher loads a link for the inline preview. *reader.Fetcher
// satisfies it.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string, readerMode bool) (*reader.Page, error)
}

// CommentSource loads the discussion of a post. *hn.Client satisfies it.
type CommentSource interface {
	FetchComments(ctx context.Context, post hn.Post, limit int) ([]hn.Comment, error)
}

// Deps are the collaborators of the App. Coordinator and Prefs are
// required; the rest get defaults built from the config.
type Deps struct {
	Coordinator       *feed.Coordinator
	Prefs             *prefs.Service
	Pages             PageFetcher
	Launcher          Launcher
	Comments          CommentSource
	Searcher          search.Searcher
	Version           string
	HasDarkBackground bool
}

// statusLines is the height of the separator plus the status bar.
const statusLines = 2

type App struct {
	config      *config.Config
	coordinator *feed.Coordinator
	prefs       *prefs.Service
	panel       *settings.Panel
	pages       PageFetcher
	launcher    Launcher
	comments    CommentSource
	searcher    search.Searcher
	keyHandler  *KeyHandler

	ctx    context.Context
	cancel context.CancelFunc

	prefChanges chan prefs.Change
	stopPrefs   func()

	postList    list.Model
	searchList  list.Model
	searchInput textinput.Model
	detail      viewport.Model
	preview     viewport.Model
	spinner     spinner.Model
	help        help.Model

	view         View
	previousView View
	device       feed.DeviceClass
	sized        bool
	width        int
	height       int

	detailPost     *hn.Post
	detailIndex    int
	detailMarkdown string

	previewPost     hn.Post
	previewLink     string
	previewMarkdown string
	previewLoading  bool

	settingsCursor int
	showHelp       bool

	status     string
	statusKind StatusKind
	loading    int
	err        error

	glamourRenderer *glamour.TermRenderer
	rendererWidth   int
	rendererDark    bool
}

func NewApp(cfg *config.Config, deps Deps) *App {
	if deps.Pages == nil {
		deps.Pages = reader.NewFetcher(nil, reader.WithUserAgent(cfg.HN.UserAgent))
	}
	if deps.Launcher == nil {
		deps.Launcher = browser.NewLauncher(cfg.Browser)
	}
	if deps.Searcher == nil {
		deps.Searcher = search.New()
	}

	panel := settings.NewPanel(deps.Prefs, settings.Info{
		Version:       deps.Version,
		Website:       cfg.About.Website,
		FeedbackEmail: cfg.About.FeedbackEmail,
	}, deps.HasDarkBackground)
	ApplyTheme(panel.DarkMode())

	postList := list.New([]list.Item{}, newPostDelegate(), 0, 0)
	postList.Title = "› " + deps.Coordinator.Category().String()
	postList.Styles.Title = TitleStyle
	postList.SetShowStatusBar(false)
	postList.SetFilteringEnabled(true)
	postList.SetShowHelp(false)
	postList.KeyMap.Quit.SetEnabled(false)

	searchList := list.New([]list.Item{}, newPostDelegate(), 0, 0)
	searchList.Title = "› results"
	searchList.Styles.Title = TitleStyle
	searchList.SetShowStatusBar(false)
	searchList.SetFilteringEnabled(false)
	searchList.SetShowHelp(false)
	searchList.KeyMap.Quit.SetEnabled(false)

	si := textinput.New()
	si.Placeholder = "Search loaded stories..."

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = lipgloss.NewStyle().Foreground(PrimaryColor)

	ctx, cancel := context.WithCancel(context.Background())

	app := &App{
		config:       cfg,
		coordinator:  deps.Coordinator,
		prefs:        deps.Prefs,
		panel:        panel,
		pages:        deps.Pages,
		launcher:     deps.Launcher,
		comments:     deps.Comments,
		searcher:     deps.Searcher,
		ctx:          ctx,
		cancel:       cancel,
		postList:     postList,
		searchList:   searchList,
		searchInput:  si,
		detail:       viewport.New(0, 0),
		preview:      viewport.New(0, 0),
		spinner:      sp,
		help:         help.New(),
		view:         ViewList,
		previousView: ViewList,
		device:       feed.Compact,
		detailIndex:  -1,
	}
	app.keyHandler = NewKeyHandler(app, cfg)

	// Changes reach the event loop through waitForPrefChange.
	app.prefChanges = make(chan prefs.Change, 16)
	app.stopPrefs = deps.Prefs.Subscribe(func(c prefs.Change) {
		select {
		case app.prefChanges <- c:
		default:
			debuglog.Warnf("dropping preference change %s", c.Key)
		}
	})
	return app
}

func newPostDelegate() list.DefaultDelegate {
	d := list.NewDefaultDelegate()
	d.Styles.NormalTitle = d.Styles.NormalTitle.Foreground(TextColor)
	d.Styles.SelectedTitle = d.Styles.SelectedTitle.
		Foreground(PrimaryColor).
		BorderForeground(PrimaryColor)
	d.Styles.SelectedDesc = d.Styles.SelectedDesc.
		Foreground(SecondaryColor).
		BorderForeground(PrimaryColor)
	return d
}

// Close cancels outstanding fetches.
func (a *App) Close() {
	a.stopPrefs()
	a.cancel()
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.startRefresh(),
		a.waitForRefreshRequired(),
		a.waitForPrefChange(),
		tea.EnterAltScreen,
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.keyHandler.HandleKey(msg)

	case spinner.TickMsg:
		if a.loading == 0 {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case refreshDoneMsg:
		return a, a.applyRefresh(msg.result)

	case refreshRequiredMsg:
		return a, tea.Batch(a.startRefresh(), a.waitForRefreshRequired())

	case prefChangedMsg:
		return a, tea.Batch(a.applyPrefChange(msg.change), a.waitForPrefChange())

	case previewLoadedMsg:
		a.doneLoading()
		a.applyPreview(msg)
		return a, nil

	case commentsLoadedMsg:
		a.doneLoading()
		a.applyComments(msg)
		return a, nil

	case searchResultsMsg:
		if a.view == ViewSearch && msg.query == a.searchQuery() {
			a.applySearchResults(msg.results)
		}
		return a, nil

	case statusMsg:
		a.setStatus(msg.text, msg.kind)
		return a, nil

	case errorMsg:
		a.setError(msg.err)
		return a, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	a.postList, cmd = a.postList.Update(msg)
	cmds = append(cmds, cmd)
	if a.view == ViewSearch {
		a.searchInput, cmd = a.searchInput.Update(msg)
		cmds = append(cmds, cmd)
	}
	return a, tea.Batch(cmds...)
}

func deviceFor(width, splitMinWidth int) feed.DeviceClass {
	if width >= splitMinWidth {
		return feed.Regular
	}
	return feed.Compact
}

func (a *App) bodyHeight() int {
	return max(a.height-statusLines, 1)
}

// paneWidths returns the widths of the list and detail columns. In the
// compact layout both take the whole screen.
func (a *App) paneWidths() (int, int) {
	if a.device != feed.Regular {
		return a.width, a.width
	}
	listW := a.width * a.config.UI.ListWidthPercent / 100
	return listW, a.width - listW
}

func (a *App) resize(width, height int) {
	prev := a.device
	wasSized := a.sized
	a.width, a.height = width, height
	a.device = deviceFor(width, a.config.UI.SplitMinWidth)
	a.sized = true

	h := a.bodyHeight()
	listW, detailW := a.paneWidths()
	a.postList.SetSize(listW, h)
	a.searchList.SetSize(width, max(h-6, 3))
	a.searchInput.Width = max(width-8, 10)
	a.detail.Width = max(detailW-2, 1)
	a.detail.Height = max(h-3, 1)
	a.preview.Width = width
	a.preview.Height = max(h-3, 1)

	if wasSized && prev != a.device {
		a.onLayoutChange(prev)
	}

	a.renderDetail()
	a.renderPreview()
}

// onLayoutChange applies the collapse rule when the terminal crosses the
// split threshold.
func (a *App) onLayoutChange(prev feed.DeviceClass) {
	collapse := a.coordinator.ShouldCollapseOnLayoutChange()
	debuglog.WithFields(map[string]interface{}{
		"from":     prev,
		"to":       a.device,
		"collapse": collapse,
		"view":     a.view,
	}).Debugf("layout changed")

	if a.device != feed.Compact {
		return
	}
	switch a.view {
	case ViewList:
		if !collapse && a.detailPost != nil {
			a.view = ViewDetail
		}
	case ViewDetail:
		if collapse {
			a.view = ViewList
		}
	}
}

func (a *App) getRenderer(width int) (*glamour.TermRenderer, error) {
	wrap := min(width-4, a.config.UI.WordWrapMaxWidth)
	wrap = max(wrap, a.config.UI.WordWrapMinWidth)
	if width < a.config.UI.WordWrapMinWidth+4 {
		wrap = max(width-4, 20)
	}
	dark := a.panel.DarkMode()

	if a.glamourRenderer == nil || abs(a.rendererWidth-wrap) > 10 || a.rendererDark != dark {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(GlamourStyle(dark)),
			glamour.WithWordWrap(wrap),
		)
		if err != nil {
			return nil, err
		}
		a.glamourRenderer = r
		a.rendererWidth = wrap
		a.rendererDark = dark
	}
	return a.glamourRenderer, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (a *App) renderMarkdown(md string, width int) string {
	r, err := a.getRenderer(width)
	if err != nil {
		debuglog.Warnf("markdown renderer: %v", err)
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		debuglog.Warnf("rendering markdown: %v", err)
		return md
	}
	return out
}

func (a *App) renderDetail() {
	if a.detailMarkdown == "" || !a.sized {
		return
	}
	a.detail.SetContent(a.renderMarkdown(a.detailMarkdown, a.detail.Width))
}

func (a *App) renderPreview() {
	if a.previewMarkdown == "" || !a.sized {
		return
	}
	a.preview.SetContent(a.renderMarkdown(a.previewMarkdown, a.preview.Width))
}

// applyTheme re-resolves the palette after a theme preference changed.
func (a *App) applyTheme() {
	ApplyTheme(a.panel.DarkMode())
	a.postList.Styles.Title = TitleStyle
	a.searchList.Styles.Title = TitleStyle
	a.postList.SetDelegate(newPostDelegate())
	a.searchList.SetDelegate(newPostDelegate())
	a.spinner.Style = lipgloss.NewStyle().Foreground(PrimaryColor)
	a.renderDetail()
	a.renderPreview()
}

func (a *App) setStatus(text string, kind StatusKind) {
	a.status = text
	a.statusKind = kind
	a.err = nil
}

func (a *App) setError(err error) {
	if err == nil {
		return
	}
	a.err = err
	a.status = ""
}

// clearToast drops a finished status message; messages of running work
// stay until the work completes.
func (a *App) clearToast() {
	a.err = nil
	if a.loading == 0 {
		a.status = ""
	}
}

func (a *App) startSpinner(text string) tea.Cmd {
	a.setStatus(text, StatusInfo)
	a.loading++
	if a.loading > 1 {
		return nil
	}
	return a.spinner.Tick
}

func (a *App) doneLoading() {
	if a.loading > 0 {
		a.loading--
	}
	if a.loading == 0 && a.statusKind == StatusInfo {
		a.status = ""
	}
}

// syncPosts rebuilds the list from the coordinator.
func (a *App) syncPosts() tea.Cmd {
	showBadge := a.prefs.ShowThumbnails()
	posts := a.coordinator.Posts()
	items := make([]list.Item, len(posts))
	for i, p := range posts {
		items[i] = postItem{post: p, index: i, showBadge: showBadge}
	}
	return a.postList.SetItems(items)
}

func (a *App) applyRefresh(r feed.RefreshResult) tea.Cmd {
	a.doneLoading()
	if err := a.coordinator.ApplyRefresh(r); err != nil {
		a.setError(err)
		return nil
	}

	cmd := a.syncPosts()
	posts := a.coordinator.Posts()
	if err := a.searcher.Index(posts); err != nil {
		debuglog.Warnf("indexing posts: %v", err)
	}
	a.relinkDetail(posts)

	if a.view == ViewPreview {
		if _, ok := a.coordinator.PreviewedIndex(); !ok {
			a.view = ViewList
			a.previewLoading = false
			a.previewMarkdown = ""
			a.setStatus(MsgPreviewClosed, StatusWarn)
			return cmd
		}
	}

	docs := -1
	if ds, ok := a.searcher.(search.DebugStatser); ok {
		if n, err := ds.DocCount(); err == nil {
			docs = n
		}
	}
	a.setStatus(MsgRefreshSummary(a.coordinator.Category().String(), len(posts), docs), StatusSuccess)
	return cmd
}

// relinkDetail points detailIndex at the detail post's row in the new list,
// or -1 when the post dropped out of it.
func (a *App) relinkDetail(posts []hn.Post) {
	if a.detailPost == nil {
		a.detailIndex = -1
		return
	}
	id := a.detailPost.ID
	_, idx, found := lo.FindIndexOf(posts, func(p hn.Post) bool { return p.ID == id })
	if !found {
		idx = -1
	}
	a.detailIndex = idx
}

// selectedIndex is the coordinator index of the highlighted list row.
func (a *App) selectedIndex() (int, bool) {
	item, ok := a.postList.SelectedItem().(postItem)
	if !ok {
		return -1, false
	}
	return item.index, true
}

func (a *App) selectPost(index int) tea.Cmd {
	intent, err := a.coordinator.SelectPost(index, a.device)
	if err != nil {
		a.setError(err)
		return nil
	}
	return a.showIntent(intent)
}

func (a *App) showIntent(intent feed.NavigationIntent) tea.Cmd {
	debuglog.WithFields(map[string]interface{}{
		"intent": intent.Kind,
		"index":  intent.Index,
		"post":   intent.Post.ID,
	}).Debugf("showing detail")

	post := intent.Post
	a.detailPost = &post
	a.detailIndex = intent.Index
	a.view = ViewDetail
	a.detailMarkdown = detailMarkdown(post, nil, true, nil)
	a.renderDetail()
	a.detail.GotoTop()

	if a.comments == nil {
		a.detailMarkdown = detailMarkdown(post, nil, false, nil)
		a.renderDetail()
		return nil
	}
	return tea.Batch(a.startSpinner(MsgLoadingComments), a.loadComments(post))
}

func (a *App) applyComments(msg commentsLoadedMsg) {
	if a.detailPost == nil || a.detailPost.ID != msg.postID {
		return
	}
	if msg.err != nil {
		debuglog.WithFields(map[string]interface{}{"post": msg.postID}).Warnf("loading comments: %v", msg.err)
	}
	a.detailMarkdown = detailMarkdown(*a.detailPost, msg.comments, false, msg.err)
	a.renderDetail()
}

// backFromDetail returns focus to the list. On a wide terminal the detail
// stays visible next to it.
func (a *App) backFromDetail() {
	a.view = ViewList
	if a.detailIndex >= 0 && a.detailIndex < len(a.postList.Items()) && a.postList.FilterState() == list.Unfiltered {
		a.postList.Select(a.detailIndex)
	}
}

func (a *App) beginPreview(index int) tea.Cmd {
	link, err := a.coordinator.BeginPreview(index)
	if err != nil {
		a.setError(err)
		return nil
	}
	post, _ := a.coordinator.PreviewedPost()
	if link == "" {
		link = post.CommentsURL()
	}

	a.previousView = a.view
	a.view = ViewPreview
	a.previewPost = post
	a.previewLink = link
	a.previewLoading = true
	a.previewMarkdown = ""
	a.preview.SetContent("")
	a.preview.GotoTop()

	return tea.Batch(a.startSpinner(MsgLoadingPreview), a.fetchPreview(post.ID, link, a.prefs.ReaderMode()))
}

func (a *App) applyPreview(msg previewLoadedMsg) {
	if a.view != ViewPreview || a.previewPost.ID != msg.postID {
		return
	}
	a.previewLoading = false
	if msg.err != nil {
		debuglog.WithFields(map[string]interface{}{"url": a.previewLink}).Warnf("preview failed: %v", msg.err)
		a.previewMarkdown = fmt.Sprintf("# %s\n\nCould not load the page: %v\n\n%s\n", a.previewPost.Title, msg.err, a.previewLink)
		a.setError(wrapErr("preview", msg.err))
	} else {
		a.previewMarkdown = msg.page.Markdown
		if msg.page.Truncated {
			a.previewMarkdown += "\n\n_Page truncated._\n"
		}
	}
	a.renderPreview()
}

func (a *App) commitPreview() tea.Cmd {
	intent, err := a.coordinator.CommitPreview(a.device)
	a.previewLoading = false
	a.previewMarkdown = ""
	if err != nil {
		a.view = ViewList
		a.setError(err)
		return nil
	}
	return a.showIntent(intent)
}

func (a *App) cancelPreview() {
	a.coordinator.CancelPreview()
	a.previewLoading = false
	a.previewMarkdown = ""
	a.view = a.previousView
	if a.view == ViewPreview {
		a.view = ViewList
	}
}

// openPost follows the link of the post at index: externally when the
// user prefers the default browser, inline otherwise.
func (a *App) openPost(index int) tea.Cmd {
	posts := a.coordinator.Posts()
	if index < 0 || index >= len(posts) {
		a.setStatus(MsgNothingToOpen, StatusWarn)
		return nil
	}
	if a.prefs.OpenInDefaultBrowser() {
		return a.openLink(postLink(posts[index]))
	}
	return a.beginPreview(index)
}

// openDetail follows the link of the post shown in the detail screen. A
// post that left the list after a refresh can only be opened externally.
func (a *App) openDetail() tea.Cmd {
	if a.detailPost == nil {
		a.setStatus(MsgNothingToOpen, StatusWarn)
		return nil
	}
	if a.detailIndex < 0 || a.prefs.OpenInDefaultBrowser() {
		return a.openLink(postLink(*a.detailPost))
	}
	return a.beginPreview(a.detailIndex)
}

func postLink(p hn.Post) string {
	if p.URL == "" {
		return p.CommentsURL()
	}
	return p.URL
}

func (a *App) enterSettings() {
	if a.view != ViewSettings {
		a.previousView = a.view
	}
	a.view = ViewSettings
}

func (a *App) leaveSettings() {
	a.view = a.previousView
	if a.view == ViewSettings || a.view == ViewPreview {
		a.view = ViewList
	}
}

func (a *App) moveSettingsCursor(delta int) {
	n := len(a.panel.Rows())
	a.settingsCursor = (a.settingsCursor + delta + n) % n
}

// activateSetting toggles the row under the cursor or follows its link.
func (a *App) activateSetting() tea.Cmd {
	row := a.panel.Rows()[a.settingsCursor].Row
	if !row.IsToggle() {
		link, err := a.panel.Activate(row)
		if err != nil {
			a.setStatus(err.Error(), StatusWarn)
			return nil
		}
		return a.openLink(link)
	}

	if _, err := a.panel.Toggle(row); err != nil {
		a.setError(err)
	}
	return nil
}

// applyPrefChange updates the screen after a preference was written, from
// the settings panel or elsewhere.
func (a *App) applyPrefChange(c prefs.Change) tea.Cmd {
	switch c.Key {
	case prefs.KeyTheme:
		a.applyTheme()
	case prefs.KeyShowThumbnails:
		return a.syncPosts()
	}
	return nil
}

func (a *App) enterSearch() {
	if a.view != ViewSearch {
		a.previousView = a.view
	}
	a.view = ViewSearch
	a.searchInput.Reset()
	a.searchInput.Focus()
	a.searchList.SetItems([]list.Item{})

	engine := fmt.Sprintf("%T", a.searcher)
	if ds, ok := a.searcher.(search.DebugStatser); ok {
		if n, err := ds.DocCount(); err == nil {
			a.setStatus(fmt.Sprintf("Search: %s • idx: %d", engine, n), StatusInfo)
			return
		}
	}
	a.setStatus("Search: "+engine, StatusInfo)
}

func (a *App) leaveSearch() {
	a.searchInput.Reset()
	a.searchInput.Blur()
	a.searchList.SetItems([]list.Item{})
	a.view = a.previousView
	if a.view == ViewSearch || a.view == ViewPreview {
		a.view = ViewList
	}
}

func (a *App) searchQuery() string {
	return strings.TrimSpace(a.searchInput.Value())
}

func (a *App) applySearchResults(results []*search.Result) {
	index := make(map[int64]int)
	for i, p := range a.coordinator.Posts() {
		index[p.ID] = i
	}
	items := make([]list.Item, 0, len(results))
	for _, r := range results {
		i, ok := index[r.Post.ID]
		if !ok {
			continue
		}
		items = append(items, postItem{post: r.Post, index: i, showBadge: true})
	}
	a.searchList.SetItems(items)
	if len(items) == 0 {
		a.setStatus(MsgNoResults, StatusInfo)
	} else {
		a.setStatus(MsgResultsCount(len(items)), StatusInfo)
	}
}

// chooseSearchResult closes the search and selects the post in the feed.
func (a *App) chooseSearchResult() tea.Cmd {
	item, ok := a.searchList.SelectedItem().(postItem)
	if !ok {
		return nil
	}
	a.leaveSearch()
	a.postList.ResetFilter()
	a.postList.Select(item.index)
	return a.selectPost(item.index)
}

func (a *App) View() string {
	h := a.bodyHeight()

	var content string
	switch a.view {
	case ViewList, ViewDetail:
		content = a.feedView(h)
	case ViewPreview:
		content = a.previewView(h)
	case ViewSettings:
		content = a.settingsView(h)
	case ViewSearch:
		content = a.searchView(h)
	}
	if a.showHelp {
		content = renderCentered(a.width, h, a.help.FullHelpView(a.keyHandler.keys.FullHelp()))
	}

	return lipgloss.JoinVertical(lipgloss.Top,
		lipgloss.NewStyle().Height(h).MaxHeight(h).Render(content),
		renderSeparator(a.width),
		a.statusBar(),
	)
}

func (a *App) feedView(h int) string {
	listW, detailW := a.paneWidths()

	var listView string
	if len(a.postList.Items()) == 0 {
		msg := "No stories. Press " + a.keyHandler.keys.Refresh.Help().Key + " to refresh."
		if a.coordinator.IsRefreshing() {
			listView = renderCentered(listW, h, GetWelcomeMessage())
		} else {
			listView = renderCentered(listW, h, GetCompactBanner(msg))
		}
	} else {
		listView = a.postList.View()
	}

	if a.device == feed.Regular {
		return renderSplit(listView, a.detailPane(detailW, h), listW, detailW, h)
	}
	if a.view == ViewDetail {
		return a.detailPane(detailW, h)
	}
	return listView
}

func (a *App) detailPane(width, h int) string {
	if a.detailPost == nil {
		return renderCentered(width-2, h, renderMuted("Select a story to read its comments"))
	}
	p := a.detailPost
	subtitle := fmt.Sprintf("%s • %s", pluralize(p.Score, "point"), pluralize(p.CommentCount, "comment"))
	if d := p.Domain(); d != "" {
		subtitle = d + " • " + subtitle
	}
	return lipgloss.JoinVertical(lipgloss.Top,
		renderHeader(p.Title, subtitle, width),
		"",
		a.detail.View(),
	)
}

func (a *App) previewView(h int) string {
	header := renderHeader("› "+a.previewPost.Title, truncateMiddle(a.previewLink, a.width-2), a.width)
	body := a.preview.View()
	if a.previewLoading {
		body = renderCentered(a.width, h-3, renderMuted(MsgLoadingPreview))
	}
	return lipgloss.JoinVertical(lipgloss.Top, header, "", body)
}

func (a *App) settingsView(h int) string {
	rows := []string{HeaderStyle.Render("› settings"), ""}
	for i, r := range a.panel.Rows() {
		var line string
		if r.Row.IsToggle() {
			mark := "[ ]"
			if r.On {
				mark = "[x]"
			}
			line = fmt.Sprintf("%s %s", mark, r.Label)
		} else {
			line = "→  " + r.Label
		}

		switch {
		case i == a.settingsCursor:
			line = SelectedRowStyle.Render(" " + line + " ")
		case !r.Enabled:
			line = DisabledRowStyle.Render(" " + line + " ")
		default:
			line = " " + line + " "
		}
		rows = append(rows, line)
	}
	rows = append(rows, "", renderMuted(a.panel.VersionLabel()))
	if w := a.panel.WebsiteURL(); w != "" {
		rows = append(rows, renderMuted(w))
	}
	return lipgloss.NewStyle().Padding(1, 2).Height(h).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a *App) searchView(h int) string {
	helpText := "Type to search • Tab/↓: results • Esc: back"
	if !a.searchInput.Focused() {
		if len(a.searchList.Items()) > 0 {
			helpText = "↑↓: navigate • Enter: open • Tab: search box • Esc: back"
		} else {
			helpText = "No results • Tab: search box • Esc: back"
		}
	}
	return lipgloss.JoinVertical(lipgloss.Top,
		HeaderStyle.Render("› search"),
		"",
		renderInputFrame(a.searchInput.View(), a.searchInput.Focused(), a.searchInput.Width),
		renderHelp(helpText),
		"",
		a.searchList.View(),
	)
}

func (a *App) statusBar() string {
	var left string
	switch {
	case a.err != nil:
		left = StatusErrorStyle.Render("✗ " + userMessage(a.err))
	case a.loading > 0:
		left = a.spinner.View() + " " + StatusInfoStyle.Render(a.status)
	case a.status != "":
		left = a.statusKind.style().Render(a.statusKind.icon() + a.status)
	}

	line := a.help.ShortHelpView(a.keyHandler.GetHelpForCurrentView())
	if left != "" {
		line = left + renderMuted("  │  ") + line
	}
	return lipgloss.NewStyle().
		Width(a.width).
		MaxWidth(a.width).
		Padding(0, 1).
		Render(line)
}
