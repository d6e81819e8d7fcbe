// Package settings holds the rules of the settings screen: which rows exist,
// which of them can be changed right now and what they do.
package settings

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/pders01/hackers/internal/prefs"
	"github.com/pders01/hackers/internal/storage"
)

var ErrRowDisabled = errors.New("row is disabled")

type Row int

const (
	RowSystemTheme Row = iota
	RowDarkMode
	RowShowThumbnails
	RowReaderMode
	RowOpenInDefaultBrowser
	RowWebsite
	RowFeedback
)

var rowLabels = map[Row]string{
	RowSystemTheme:          "Use system theme",
	RowDarkMode:             "Dark mode",
	RowShowThumbnails:       "Show thumbnails",
	RowReaderMode:           "Reader mode",
	RowOpenInDefaultBrowser: "Open in default browser",
	RowWebsite:              "Website",
	RowFeedback:             "Send feedback",
}

func (r Row) String() string {
	if l, ok := rowLabels[r]; ok {
		return l
	}
	return fmt.Sprintf("Row(%d)", int(r))
}

func (r Row) IsToggle() bool {
	return r >= RowSystemTheme && r <= RowOpenInDefaultBrowser
}

// RowState is one rendered row.
type RowState struct {
	Row     Row
	Label   string
	On      bool
	Enabled bool
}

// Info is the static "about" data shown on the panel.
type Info struct {
	Version       string
	Website       string
	FeedbackEmail string
}

type Panel struct {
	prefs  *prefs.Service
	info   Info
	darkBg bool
}

// NewPanel builds a panel. hasDarkBackground is the terminal's background as
// detected at startup; it decides what "system" resolves to.
func NewPanel(p *prefs.Service, info Info, hasDarkBackground bool) *Panel {
	return &Panel{prefs: p, info: info, darkBg: hasDarkBackground}
}

func (p *Panel) Rows() []RowState {
	rows := make([]RowState, 0, len(rowLabels))
	for r := RowSystemTheme; r <= RowFeedback; r++ {
		rows = append(rows, RowState{
			Row:     r,
			Label:   r.String(),
			On:      p.isOn(r),
			Enabled: p.Enabled(r),
		})
	}
	return rows
}

func (p *Panel) isOn(r Row) bool {
	s := p.prefs.Snapshot()
	switch r {
	case RowSystemTheme:
		return s.Theme == storage.ThemeSystem
	case RowDarkMode:
		return p.DarkMode()
	case RowShowThumbnails:
		return s.ShowThumbnails
	case RowReaderMode:
		return s.ReaderMode
	case RowOpenInDefaultBrowser:
		return s.OpenInDefaultBrowser
	default:
		return false
	}
}

// Enabled reports whether a row currently accepts input.
func (p *Panel) Enabled(r Row) bool {
	s := p.prefs.Snapshot()
	switch r {
	case RowDarkMode:
		return s.Theme != storage.ThemeSystem
	case RowReaderMode:
		return !s.OpenInDefaultBrowser
	case RowFeedback:
		return p.info.FeedbackEmail != ""
	case RowWebsite:
		return p.info.Website != ""
	default:
		return r >= RowSystemTheme && r <= RowFeedback
	}
}

// Toggle flips a switch row and reports whether anything changed.
func (p *Panel) Toggle(r Row) (bool, error) {
	if !r.IsToggle() {
		return false, fmt.Errorf("%s is not a switch", r)
	}
	if !p.Enabled(r) {
		return false, nil
	}

	s := p.prefs.Snapshot()
	var err error
	switch r {
	case RowSystemTheme:
		if s.Theme == storage.ThemeSystem {
			err = p.prefs.SetTheme(p.themeFor(p.darkBg))
		} else {
			err = p.prefs.SetTheme(storage.ThemeSystem)
		}
	case RowDarkMode:
		err = p.prefs.SetTheme(p.themeFor(s.Theme != storage.ThemeDark))
	case RowShowThumbnails:
		err = p.prefs.SetShowThumbnails(!s.ShowThumbnails)
	case RowReaderMode:
		err = p.prefs.SetReaderMode(!s.ReaderMode)
	case RowOpenInDefaultBrowser:
		err = p.prefs.SetOpenInDefaultBrowser(!s.OpenInDefaultBrowser)
	}
	if err != nil {
		return false, err
	}
	return p.prefs.Snapshot() != s, nil
}

func (p *Panel) themeFor(dark bool) storage.Theme {
	if dark {
		return storage.ThemeDark
	}
	return storage.ThemeLight
}

// Activate returns the link behind a link row.
func (p *Panel) Activate(r Row) (string, error) {
	if !p.Enabled(r) {
		return "", fmt.Errorf("%s: %w", r, ErrRowDisabled)
	}
	switch r {
	case RowWebsite:
		return p.WebsiteURL(), nil
	case RowFeedback:
		return p.FeedbackURL(), nil
	default:
		return "", fmt.Errorf("%s is not a link", r)
	}
}

// DarkMode resolves the effective theme.
func (p *Panel) DarkMode() bool {
	return ResolveDark(p.prefs.Theme(), p.darkBg)
}

// ResolveDark reports whether theme t renders dark on a terminal whose
// background is dark when hasDarkBackground is set.
func ResolveDark(t storage.Theme, hasDarkBackground bool) bool {
	switch t {
	case storage.ThemeDark:
		return true
	case storage.ThemeLight:
		return false
	default:
		return hasDarkBackground
	}
}

func (p *Panel) VersionLabel() string {
	if p.info.Version == "" {
		return "Version unknown"
	}
	return "Version " + p.info.Version
}

func (p *Panel) WebsiteURL() string {
	return p.info.Website
}

// FeedbackURL is a mailto link addressed to the feedback address with the
// running version in the subject. It is empty when no address is set.
func (p *Panel) FeedbackURL() string {
	if p.info.FeedbackEmail == "" {
		return ""
	}
	u := url.URL{
		Scheme:   "mailto",
		Opaque:   p.info.FeedbackEmail,
		RawQuery: "subject=" + url.PathEscape("Feedback for Hackers "+p.info.Version),
	}
	return u.String()
}
