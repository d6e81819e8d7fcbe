// Package prefs exposes the user's preferences to the rest of the program and
// announces changes to them.
package prefs

import (
	"fmt"
	"sync"

	"github.com/samber/lo"

	"github.com/pders01/hackers/internal/debuglog"
	"github.com/pders01/hackers/internal/storage"
)

// Backend persists preferences. *storage.Store satisfies it.
type Backend interface {
	LoadPreferences() (storage.Preferences, error)
	SavePreferences(storage.Preferences) error
}

type Key string

const (
	KeyTheme                Key = "theme"
	KeyShowThumbnails       Key = "show_thumbnails"
	KeyReaderMode           Key = "reader_mode"
	KeyOpenInDefaultBrowser Key = "open_in_default_browser"
)

var Keys = []Key{KeyTheme, KeyShowThumbnails, KeyReaderMode, KeyOpenInDefaultBrowser}

// Change describes one applied preference update.
type Change struct {
	Key Key
	Old storage.Preferences
	New storage.Preferences
}

type Service struct {
	mu      sync.RWMutex
	backend Backend
	current storage.Preferences

	subMu     sync.Mutex
	nextID    int
	listeners map[int]func(Change)
	refresh   map[int]func()
}

// New loads the stored preferences. A load failure is logged and the
// defaults are used so the program can still start.
func New(backend Backend) *Service {
	current, err := backend.LoadPreferences()
	if err != nil {
		debuglog.Warnf("using default preferences: %v", err)
		current = storage.DefaultPreferences()
	}
	return &Service{
		backend:   backend,
		current:   current,
		listeners: make(map[int]func(Change)),
		refresh:   make(map[int]func()),
	}
}

func (s *Service) Snapshot() storage.Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *Service) Theme() storage.Theme       { return s.Snapshot().Theme }
func (s *Service) ShowThumbnails() bool       { return s.Snapshot().ShowThumbnails }
func (s *Service) ReaderMode() bool           { return s.Snapshot().ReaderMode }
func (s *Service) OpenInDefaultBrowser() bool { return s.Snapshot().OpenInDefaultBrowser }

func (s *Service) SetTheme(t storage.Theme) error {
	if _, err := storage.ParseTheme(string(t)); err != nil {
		return err
	}
	return s.update(KeyTheme, func(p *storage.Preferences) { p.Theme = t })
}

func (s *Service) SetShowThumbnails(v bool) error {
	return s.update(KeyShowThumbnails, func(p *storage.Preferences) { p.ShowThumbnails = v })
}

func (s *Service) SetReaderMode(v bool) error {
	return s.update(KeyReaderMode, func(p *storage.Preferences) { p.ReaderMode = v })
}

func (s *Service) SetOpenInDefaultBrowser(v bool) error {
	return s.update(KeyOpenInDefaultBrowser, func(p *storage.Preferences) { p.OpenInDefaultBrowser = v })
}

// Get returns the string form of a preference.
func (s *Service) Get(key Key) (string, error) {
	p := s.Snapshot()
	switch key {
	case KeyTheme:
		return string(p.Theme), nil
	case KeyShowThumbnails:
		return fmt.Sprint(p.ShowThumbnails), nil
	case KeyReaderMode:
		return fmt.Sprint(p.ReaderMode), nil
	case KeyOpenInDefaultBrowser:
		return fmt.Sprint(p.OpenInDefaultBrowser), nil
	default:
		return "", fmt.Errorf("unknown preference %q", key)
	}
}

// Set parses value for key and applies it.
func (s *Service) Set(key Key, value string) error {
	if key == KeyTheme {
		t, err := storage.ParseTheme(value)
		if err != nil {
			return err
		}
		return s.SetTheme(t)
	}

	var b bool
	switch value {
	case "true", "on", "yes", "1":
		b = true
	case "false", "off", "no", "0":
	default:
		return fmt.Errorf("invalid value %q for %s (want true or false)", value, key)
	}

	switch key {
	case KeyShowThumbnails:
		return s.SetShowThumbnails(b)
	case KeyReaderMode:
		return s.SetReaderMode(b)
	case KeyOpenInDefaultBrowser:
		return s.SetOpenInDefaultBrowser(b)
	default:
		return fmt.Errorf("unknown preference %q", key)
	}
}

func (s *Service) update(key Key, apply func(*storage.Preferences)) error {
	s.mu.Lock()
	old := s.current
	next := old
	apply(&next)
	if next == old {
		s.mu.Unlock()
		return nil
	}
	if err := s.backend.SavePreferences(next); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("updating %s: %w", key, err)
	}
	s.current = next
	s.mu.Unlock()

	debuglog.WithFields(map[string]interface{}{"key": key}).Infof("preference changed")
	s.broadcast(Change{Key: key, Old: old, New: next})
	return nil
}

// Subscribe calls fn after every applied change.
func (s *Service) Subscribe(fn func(Change)) (cancel func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.listeners, id)
	}
}

// SubscribeRefreshRequired calls fn whenever a change alters how posts are
// presented, so the feed must be reloaded.
func (s *Service) SubscribeRefreshRequired(fn func()) (cancel func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextID
	s.nextID++
	s.refresh[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.refresh, id)
	}
}

func requiresRefresh(key Key) bool {
	return key == KeyShowThumbnails
}

func (s *Service) broadcast(c Change) {
	s.subMu.Lock()
	listeners := lo.Values(s.listeners)
	var refresh []func()
	if requiresRefresh(c.Key) {
		refresh = lo.Values(s.refresh)
	}
	s.subMu.Unlock()

	for _, fn := range listeners {
		fn(c)
	}
	for _, fn := range refresh {
		fn()
	}
}
