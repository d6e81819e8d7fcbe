package storage

import "fmt"

// Theme is the colour scheme preference.
type Theme string

const (
	ThemeSystem Theme = "system"
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
)

func ParseTheme(s string) (Theme, error) {
	switch t := Theme(s); t {
	case ThemeSystem, ThemeLight, ThemeDark:
		return t, nil
	default:
		return "", fmt.Errorf("unknown theme %q (want system, light or dark)", s)
	}
}

// Preferences are the user choices persisted across sessions.
type Preferences struct {
	Theme                Theme `json:"theme"`
	ShowThumbnails       bool  `json:"show_thumbnails"`
	ReaderMode           bool  `json:"reader_mode"`
	OpenInDefaultBrowser bool  `json:"open_in_default_browser"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		Theme:          ThemeSystem,
		ShowThumbnails: true,
	}
}
