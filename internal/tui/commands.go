package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/hackers/internal/debuglog"
	"github.com/pders01/hackers/internal/hn"
	"github.com/pders01/hackers/internal/search"
)

// startRefresh issues a refresh ticket on the event loop and fetches the
// page in a command. A refresh that is already running is not restarted.
func (a *App) startRefresh() tea.Cmd {
	ticket, ok := a.coordinator.BeginRefresh()
	if !ok {
		a.setStatus(MsgAlreadyRefreshing, StatusWarn)
		return nil
	}
	ctx, co := a.ctx, a.coordinator
	return tea.Batch(
		a.startSpinner(MsgRefreshing),
		func() tea.Msg {
			return refreshDoneMsg{result: co.Fetch(ctx, ticket)}
		},
	)
}

// waitForRefreshRequired blocks until the coordinator reports that the
// feed must be reloaded.
func (a *App) waitForRefreshRequired() tea.Cmd {
	ctx, ch := a.ctx, a.coordinator.RefreshRequired()
	return func() tea.Msg {
		select {
		case <-ch:
			return refreshRequiredMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

func (a *App) waitForPrefChange() tea.Cmd {
	ctx, ch := a.ctx, a.prefChanges
	return func() tea.Msg {
		select {
		case c := <-ch:
			return prefChangedMsg{change: c}
		case <-ctx.Done():
			return nil
		}
	}
}

func (a *App) fetchPreview(postID int64, link string, readerMode bool) tea.Cmd {
	ctx, pages := a.ctx, a.pages
	return func() tea.Msg {
		page, err := pages.Fetch(ctx, link, readerMode)
		return previewLoadedMsg{postID: postID, page: page, err: err}
	}
}

func (a *App) loadComments(post hn.Post) tea.Cmd {
	ctx, source, limit := a.ctx, a.comments, a.config.HN.CommentLimit
	return func() tea.Msg {
		comments, err := source.FetchComments(ctx, post, limit)
		return commentsLoadedMsg{postID: post.ID, comments: comments, err: err}
	}
}

func (a *App) openLink(link string) tea.Cmd {
	launcher := a.launcher
	return func() tea.Msg {
		if err := launcher.Open(link); err != nil {
			debuglog.Warnf("opening %s: %v", link, err)
			return errorMsg{err: wrapErr("open "+truncateMiddle(link, 40), err)}
		}
		return statusMsg{text: MsgOpened(link), kind: StatusSuccess}
	}
}

func (a *App) performSearch(query string) tea.Cmd {
	if len([]rune(query)) < search.MinQueryLength {
		a.searchList.SetItems(nil)
		return nil
	}
	searcher := a.searcher
	return func() tea.Msg {
		results, err := searcher.Search(query, 50)
		if err != nil {
			return errorMsg{err: wrapErr("search", err)}
		}
		return searchResultsMsg{query: query, results: results}
	}
}

