package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/hackers/internal/prefs"
	"github.com/pders01/hackers/internal/storage"
)

type memBackend struct{ p storage.Preferences }

func (m *memBackend) LoadPreferences() (storage.Preferences, error) { return m.p, nil }
func (m *memBackend) SavePreferences(p storage.Preferences) error  { m.p = p; return nil }

func newPanel(t *testing.T, darkBg bool, info Info) (*Panel, *prefs.Service) {
	t.Helper()
	svc := prefs.New(&memBackend{p: storage.DefaultPreferences()})
	return NewPanel(svc, info, darkBg), svc
}

var testInfo = Info{Version: "4.2.0", Website: "https://example.com/hackers", FeedbackEmail: "hi@example.com"}

func rowState(t *testing.T, p *Panel, r Row) RowState {
	t.Helper()
	for _, s := range p.Rows() {
		if s.Row == r {
			return s
		}
	}
	t.Fatalf("row %s not found", r)
	return RowState{}
}

func TestRows_Defaults(t *testing.T) {
	p, _ := newPanel(t, true, testInfo)

	rows := p.Rows()
	require.Len(t, rows, 7)
	assert.Equal(t, "Use system theme", rows[0].Label)

	assert.True(t, rowState(t, p, RowSystemTheme).On)
	assert.False(t, rowState(t, p, RowDarkMode).Enabled)
	assert.True(t, rowState(t, p, RowDarkMode).On, "system theme on a dark terminal renders dark")
	assert.True(t, rowState(t, p, RowShowThumbnails).On)
	assert.True(t, rowState(t, p, RowReaderMode).Enabled)
	assert.True(t, rowState(t, p, RowFeedback).Enabled)
}

func TestToggle_SystemThemeEnablesDarkMode(t *testing.T) {
	p, svc := newPanel(t, false, testInfo)

	changed, err := p.Toggle(RowSystemTheme)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, storage.ThemeLight, svc.Theme(), "leaving system keeps the resolved look")
	assert.True(t, p.Enabled(RowDarkMode))

	changed, err = p.Toggle(RowDarkMode)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, storage.ThemeDark, svc.Theme())
	assert.True(t, p.DarkMode())

	_, err = p.Toggle(RowSystemTheme)
	require.NoError(t, err)
	assert.Equal(t, storage.ThemeSystem, svc.Theme())
	assert.False(t, p.DarkMode())
}

func TestToggle_DisabledRowIsNoop(t *testing.T) {
	p, svc := newPanel(t, true, testInfo)

	changed, err := p.Toggle(RowDarkMode)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, storage.ThemeSystem, svc.Theme())
}

func TestToggle_DefaultBrowserDisablesReaderMode(t *testing.T) {
	p, svc := newPanel(t, true, testInfo)

	_, err := p.Toggle(RowReaderMode)
	require.NoError(t, err)
	assert.True(t, svc.ReaderMode())

	_, err = p.Toggle(RowOpenInDefaultBrowser)
	require.NoError(t, err)
	assert.False(t, p.Enabled(RowReaderMode))

	changed, err := p.Toggle(RowReaderMode)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.True(t, svc.ReaderMode(), "the stored value is kept while the row is disabled")
}

func TestToggle_ThumbnailsRequestsRefresh(t *testing.T) {
	p, svc := newPanel(t, true, testInfo)
	refreshes := 0
	svc.SubscribeRefreshRequired(func() { refreshes++ })

	changed, err := p.Toggle(RowShowThumbnails)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.False(t, svc.ShowThumbnails())
	assert.Equal(t, 1, refreshes)
}

func TestToggle_LinkRow(t *testing.T) {
	p, _ := newPanel(t, true, testInfo)
	_, err := p.Toggle(RowWebsite)
	assert.Error(t, err)
}

func TestLinks(t *testing.T) {
	p, _ := newPanel(t, true, testInfo)

	assert.Equal(t, "Version 4.2.0", p.VersionLabel())
	assert.Equal(t, "https://example.com/hackers", p.WebsiteURL())
	assert.Equal(t, "mailto:hi@example.com?subject=Feedback%20for%20Hackers%204.2.0", p.FeedbackURL())

	link, err := p.Activate(RowFeedback)
	require.NoError(t, err)
	assert.Equal(t, p.FeedbackURL(), link)

	link, err = p.Activate(RowWebsite)
	require.NoError(t, err)
	assert.Equal(t, p.WebsiteURL(), link)

	_, err = p.Activate(RowShowThumbnails)
	assert.Error(t, err)
}

func TestFeedbackDisabledWithoutAddress(t *testing.T) {
	p, _ := newPanel(t, true, Info{Version: "1.0"})

	assert.False(t, p.Enabled(RowFeedback))
	assert.Empty(t, p.FeedbackURL())
	_, err := p.Activate(RowFeedback)
	assert.ErrorIs(t, err, ErrRowDisabled)
}

func TestResolveDark(t *testing.T) {
	assert.True(t, ResolveDark(storage.ThemeDark, false))
	assert.False(t, ResolveDark(storage.ThemeLight, true))
	assert.True(t, ResolveDark(storage.ThemeSystem, true))
	assert.False(t, ResolveDark(storage.ThemeSystem, false))
}
