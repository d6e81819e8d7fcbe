package browser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/hackers/internal/config"
)

type call struct {
	name string
	args []string
}

func recorder(calls *[]call, err error) Runner {
	return func(name string, args ...string) error {
		*calls = append(*calls, call{name: name, args: args})
		return err
	}
}

func lookPathFor(available ...string) func(string) (string, error) {
	return func(name string) (string, error) {
		for _, a := range available {
			if a == name {
				return "/usr/bin/" + name, nil
			}
		}
		return "", errors.New("not found")
	}
}

func TestNewLauncher_PicksFirstAvailableCandidate(t *testing.T) {
	cfg := config.BrowserConfig{
		Candidates: []string{"w3m-open", "firefox", "chromium"},
	}
	l := NewLauncher(cfg, WithLookPath(lookPathFor("chromium", "firefox")))
	assert.Equal(t, "firefox", l.Opener())
}

func TestNewLauncher_DefaultOpenerWinsOverCandidates(t *testing.T) {
	cfg := config.BrowserConfig{
		DefaultOpener: "firefox",
		Candidates:    []string{"xdg-open", "firefox"},
	}
	l := NewLauncher(cfg, WithLookPath(lookPathFor("xdg-open", "firefox")))
	assert.Equal(t, "firefox", l.Opener())

	cfg.DefaultOpener = "qutebrowser"
	l = NewLauncher(cfg, WithLookPath(lookPathFor("xdg-open", "firefox")))
	assert.Equal(t, "xdg-open", l.Opener(), "a missing default opener defers to the candidates")
}

func TestNewLauncher_FallsBackToDefaultOpener(t *testing.T) {
	cfg := config.BrowserConfig{DefaultOpener: "my-opener", Candidates: []string{"nope"}}
	l := NewLauncher(cfg, WithLookPath(lookPathFor()))
	assert.Equal(t, "my-opener", l.Opener())

	l = NewLauncher(config.BrowserConfig{}, WithLookPath(lookPathFor()))
	assert.NotEmpty(t, l.Opener())
}

func TestOpen_StartsOpener(t *testing.T) {
	var calls []call
	l := NewLauncher(config.BrowserConfig{Candidates: []string{"firefox"}},
		WithLookPath(lookPathFor("firefox")), WithRunner(recorder(&calls, nil)))

	require.NoError(t, l.Open("https://news.ycombinator.com/item?id=1"))
	require.NoError(t, l.Open("mailto:hi@example.com?subject=Feedback"))

	require.Len(t, calls, 2)
	assert.Equal(t, "firefox", calls[0].name)
	assert.Equal(t, []string{"https://news.ycombinator.com/item?id=1"}, calls[0].args)
	assert.Equal(t, []string{"mailto:hi@example.com?subject=Feedback"}, calls[1].args)
}

func TestOpen_RejectsBadLinks(t *testing.T) {
	var calls []call
	l := NewLauncher(config.BrowserConfig{DefaultOpener: "open"},
		WithLookPath(lookPathFor()), WithRunner(recorder(&calls, nil)))

	for _, link := range []string{"", "javascript:alert(1)", "file:///etc/passwd"} {
		assert.Error(t, l.Open(link), link)
	}
	assert.Empty(t, calls)
}

func TestOpen_ReportsStartFailure(t *testing.T) {
	var calls []call
	l := NewLauncher(config.BrowserConfig{DefaultOpener: "open"},
		WithLookPath(lookPathFor()), WithRunner(recorder(&calls, errors.New("exec: not found"))))

	err := l.Open("https://example.org")
	assert.ErrorContains(t, err, "failed to start open")
}

func TestCommandFor(t *testing.T) {
	name, args := commandFor("rundll32", "https://a.org")
	assert.Equal(t, "rundll32", name)
	assert.Equal(t, []string{"url.dll,FileProtocolHandler", "https://a.org"}, args)

	name, args = commandFor("start", "https://a.org")
	assert.Equal(t, "cmd", name)
	assert.Equal(t, []string{"/c", "start", "", "https://a.org"}, args)

	name, args = commandFor("/usr/bin/xdg-open", "https://a.org")
	assert.Equal(t, "/usr/bin/xdg-open", name)
	assert.Equal(t, []string{"https://a.org"}, args)
}
