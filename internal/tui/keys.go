package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/pders01/hackers/internal/config"
)

type keyMap struct {
	Quit     key.Binding
	Select   key.Binding
	Preview  key.Binding
	Commit   key.Binding
	Back     key.Binding
	Open     key.Binding
	Refresh  key.Binding
	Settings key.Binding
	Search   key.Binding
	Toggle   key.Binding
	Up       key.Binding
	Down     key.Binding
	Help     key.Binding
}

// bindingKeys splits a configured binding such as "p,space" into keys.
// A lone "," is the comma key itself.
func bindingKeys(s string, extra ...string) []string {
	var keys []string
	if strings.TrimSpace(s) == "," {
		keys = append(keys, ",")
	} else {
		for _, k := range strings.Split(s, ",") {
			if k = strings.TrimSpace(k); k != "" {
				keys = append(keys, k)
			}
		}
	}
	return append(keys, extra...)
}

// newKeyMap builds the bindings from b. A binding that names no key falls
// back to the stock layout.
func newKeyMap(b config.KeyBindings) keyMap {
	def := config.DefaultKeyBindings()
	keys := func(configured, fallback string, extra ...string) []string {
		if k := bindingKeys(configured); len(k) > 0 {
			return append(k, extra...)
		}
		return bindingKeys(fallback, extra...)
	}
	bind := func(keys []string, help string) key.Binding {
		return key.NewBinding(key.WithKeys(keys...), key.WithHelp(keys[0], help))
	}
	return keyMap{
		Quit:     bind(keys(b.Quit, def.Quit, "ctrl+c"), "quit"),
		Select:   bind(keys(b.Select, def.Select), "open"),
		Preview:  bind(keys(b.Preview, def.Preview, " "), "peek"),
		Commit:   bind(keys(b.Commit, def.Commit, "enter"), "comments"),
		Back:     bind(keys(b.Back, def.Back), "back"),
		Open:     bind(keys(b.Open, def.Open), "open link"),
		Refresh:  bind(keys(b.Refresh, def.Refresh), "refresh"),
		Settings: bind(keys(b.Settings, def.Settings), "settings"),
		Search:   bind(keys(b.Search, def.Search), "search"),
		Help:     bind(keys(b.Help, def.Help), "help"),
		Toggle:   bind([]string{"enter", " "}, "toggle"),
		Up:       bind([]string{"up", "k"}, "up"),
		Down:     bind([]string{"down", "j"}, "down"),
	}
}

// FullHelp groups every binding for the help screen.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Select, k.Preview, k.Commit, k.Open},
		{k.Back, k.Refresh, k.Search, k.Settings},
		{k.Up, k.Down, k.Toggle, k.Help, k.Quit},
	}
}
