// Package browser hands links to the system browser.
package browser

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/pders01/hackers/internal/config"
	"github.com/pders01/hackers/internal/debuglog"
	"github.com/pders01/hackers/internal/validation"
)

// Runner starts a command without waiting for it.
type Runner func(name string, args ...string) error

type Launcher struct {
	opener    string
	validator *validation.LinkValidator
	run       Runner
	lookPath  func(string) (string, error)
}

type Option func(*Launcher)

// WithRunner replaces the process starter.
func WithRunner(r Runner) Option {
	return func(l *Launcher) { l.run = r }
}

// WithLookPath chooses the opener among the configured candidates with
// lookPath instead of exec.LookPath.
func WithLookPath(lookPath func(string) (string, error)) Option {
	return func(l *Launcher) { l.lookPath = lookPath }
}

func NewLauncher(cfg config.BrowserConfig, opts ...Option) *Launcher {
	l := &Launcher{
		validator: validation.NewLaunchValidator(),
		run:       startDetached,
	}
	for _, opt := range opts {
		opt(l)
	}

	if l.lookPath == nil {
		l.lookPath = exec.LookPath
	}
	l.opener = chooseOpener(l.lookPath, cfg)
	return l
}

// chooseOpener prefers the configured default opener, then the first
// installed candidate. An opener that cannot be found is still used when
// nothing else is installed.
func chooseOpener(lookPath func(string) (string, error), cfg config.BrowserConfig) string {
	if cfg.DefaultOpener != "" {
		if cfg.DefaultOpener == "start" || findCommand(lookPath, cfg.DefaultOpener) != "" {
			return cfg.DefaultOpener
		}
		debuglog.Warnf("browser.default_opener %q not found, trying candidates", cfg.DefaultOpener)
	}
	if c := findCommand(lookPath, cfg.Candidates...); c != "" {
		return c
	}
	if cfg.DefaultOpener != "" {
		return cfg.DefaultOpener
	}
	return defaultOpener()
}

// Opener is the command links are handed to.
func (l *Launcher) Opener() string {
	return l.opener
}

// Open validates link and starts the opener with it.
func (l *Launcher) Open(link string) error {
	normalized, err := l.validator.ValidateAndNormalize(link)
	if err != nil {
		return fmt.Errorf("refusing to open link: %w", err)
	}

	name, args := commandFor(l.opener, normalized)
	if err := l.run(name, args...); err != nil {
		debuglog.WithFields(map[string]interface{}{
			"opener": name,
			"url":    normalized,
		}).Errorf("launch failed: %v", err)
		return fmt.Errorf("failed to start %s: %w", name, err)
	}
	debuglog.Debugf("opened %s with %s", normalized, name)
	return nil
}

// commandFor builds the argv for opener. Windows openers need the link
// passed through their own protocol handlers.
func commandFor(opener, link string) (string, []string) {
	switch filepath.Base(opener) {
	case "rundll32", "rundll32.exe":
		return opener, []string{"url.dll,FileProtocolHandler", link}
	case "start":
		return "cmd", []string{"/c", "start", "", link}
	default:
		return opener, []string{link}
	}
}

func defaultOpener() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "windows":
		return "rundll32"
	default:
		return "xdg-open"
	}
}

func findCommand(lookPath func(string) (string, error), commands ...string) string {
	for _, cmd := range commands {
		if _, err := lookPath(cmd); err == nil {
			return cmd
		}
	}
	return ""
}

func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}
