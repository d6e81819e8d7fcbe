package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/hackers/internal/config"
	"github.com/pders01/hackers/internal/feed"
)

type KeyHandler struct {
	app  *App
	keys keyMap
}

func NewKeyHandler(app *App, cfg *config.Config) *KeyHandler {
	return &KeyHandler{app: app, keys: newKeyMap(cfg.Keys.Bindings)}
}

func (kh *KeyHandler) HandleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return kh.app, tea.Quit
	}
	kh.app.clearToast()

	if kh.isInTextInputMode() {
		return kh.handleTextInputMode(msg)
	}

	// Any key dismisses the help screen.
	if kh.app.showHelp {
		kh.app.showHelp = false
		return kh.app, nil
	}

	if model, cmd, handled := kh.handleCustomKeys(msg); handled {
		return model, cmd
	}

	return kh.delegateToCharm(msg)
}

func (kh *KeyHandler) isInTextInputMode() bool {
	switch kh.app.view {
	case ViewList:
		return kh.app.postList.SettingFilter()
	case ViewSearch:
		return kh.app.searchInput.Focused()
	default:
		return false
	}
}

func (kh *KeyHandler) handleTextInputMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := kh.app
	if a.view == ViewList {
		var cmd tea.Cmd
		a.postList, cmd = a.postList.Update(msg)
		return a, cmd
	}

	switch msg.String() {
	case "esc":
		a.leaveSearch()
		return a, nil
	case "enter", "tab", "down":
		if len(a.searchList.Items()) > 0 {
			a.searchInput.Blur()
			a.searchList.Select(0)
		}
		return a, nil
	}

	before := a.searchQuery()
	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(msg)
	if q := a.searchQuery(); q != before {
		return a, tea.Batch(cmd, a.performSearch(q))
	}
	return a, cmd
}

func (kh *KeyHandler) handleCustomKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	if key.Matches(msg, kh.keys.Quit) {
		return kh.app, tea.Quit, true
	}
	if key.Matches(msg, kh.keys.Help) {
		kh.app.showHelp = true
		return kh.app, nil, true
	}

	switch kh.app.view {
	case ViewList:
		return kh.handleListKeys(msg)
	case ViewDetail:
		return kh.handleDetailKeys(msg)
	case ViewPreview:
		return kh.handlePreviewKeys(msg)
	case ViewSettings:
		return kh.handleSettingsKeys(msg)
	case ViewSearch:
		return kh.handleSearchKeys(msg)
	}
	return kh.app, nil, false
}

// handleGlobalKeys covers the actions available from the list and the
// detail screen.
func (kh *KeyHandler) handleGlobalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	a := kh.app
	switch {
	case key.Matches(msg, kh.keys.Refresh):
		return a, a.startRefresh(), true
	case key.Matches(msg, kh.keys.Settings):
		a.enterSettings()
		return a, nil, true
	case key.Matches(msg, kh.keys.Search):
		a.enterSearch()
		return a, textinput.Blink, true
	}
	return a, nil, false
}

func (kh *KeyHandler) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	a := kh.app
	index, hasSelection := a.selectedIndex()

	switch {
	case key.Matches(msg, kh.keys.Select):
		if !hasSelection {
			return a, nil, true
		}
		return a, a.selectPost(index), true
	case key.Matches(msg, kh.keys.Preview):
		if !hasSelection {
			return a, nil, true
		}
		return a, a.beginPreview(index), true
	case key.Matches(msg, kh.keys.Open):
		if !hasSelection {
			a.setStatus(MsgNothingToOpen, StatusWarn)
			return a, nil, true
		}
		return a, a.openPost(index), true
	case key.Matches(msg, kh.keys.Back):
		if a.postList.FilterState() != list.Unfiltered {
			a.postList.ResetFilter()
		}
		return a, nil, true
	}
	return kh.handleGlobalKeys(msg)
}

func (kh *KeyHandler) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	a := kh.app
	switch {
	case key.Matches(msg, kh.keys.Back):
		a.backFromDetail()
		return a, nil, true
	case key.Matches(msg, kh.keys.Open):
		return a, a.openDetail(), true
	}
	return kh.handleGlobalKeys(msg)
}

func (kh *KeyHandler) handlePreviewKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	a := kh.app
	switch {
	case key.Matches(msg, kh.keys.Commit):
		return a, a.commitPreview(), true
	case key.Matches(msg, kh.keys.Back):
		a.cancelPreview()
		return a, nil, true
	case key.Matches(msg, kh.keys.Open):
		return a, a.openLink(a.previewLink), true
	case key.Matches(msg, kh.keys.Refresh):
		return a, a.startRefresh(), true
	}
	return a, nil, false
}

func (kh *KeyHandler) handleSettingsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	a := kh.app
	switch {
	case key.Matches(msg, kh.keys.Up):
		a.moveSettingsCursor(-1)
	case key.Matches(msg, kh.keys.Down):
		a.moveSettingsCursor(1)
	case key.Matches(msg, kh.keys.Toggle):
		return a, a.activateSetting(), true
	case key.Matches(msg, kh.keys.Back), key.Matches(msg, kh.keys.Settings):
		a.leaveSettings()
	}
	return a, nil, true
}

func (kh *KeyHandler) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	a := kh.app
	switch msg.String() {
	case "esc":
		a.leaveSearch()
		return a, nil, true
	case "enter":
		return a, a.chooseSearchResult(), true
	case "tab", "shift+tab", "/":
		a.searchInput.Focus()
		return a, nil, true
	case "up":
		if a.searchList.Index() == 0 {
			a.searchInput.Focus()
			return a, nil, true
		}
	}
	return a, nil, false
}

// delegateToCharm lets the bubbles components handle keys we don't intercept.
func (kh *KeyHandler) delegateToCharm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := kh.app
	var cmd tea.Cmd

	switch a.view {
	case ViewList:
		a.postList, cmd = a.postList.Update(msg)
	case ViewDetail:
		a.detail, cmd = a.detail.Update(msg)
	case ViewPreview:
		a.preview, cmd = a.preview.Update(msg)
	case ViewSearch:
		a.searchList, cmd = a.searchList.Update(msg)
	}
	return a, cmd
}

// GetHelpForCurrentView returns the bindings shown in the status bar.
func (kh *KeyHandler) GetHelpForCurrentView() []key.Binding {
	k := kh.keys
	switch kh.app.view {
	case ViewList:
		return []key.Binding{k.Select, k.Preview, k.Open, k.Refresh, k.Search, k.Settings, k.Help, k.Quit}
	case ViewDetail:
		return []key.Binding{k.Back, k.Open, k.Refresh, k.Help, k.Quit}
	case ViewPreview:
		commit := k.Commit
		commit.SetHelp(commit.Help().Key, feed.PreviewActionTitle(kh.app.previewPost))
		return []key.Binding{commit, k.Open, k.Back}
	case ViewSettings:
		return []key.Binding{k.Up, k.Down, k.Toggle, k.Back}
	case ViewSearch:
		return []key.Binding{k.Back}
	default:
		return nil
	}
}
