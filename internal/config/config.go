package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/pders01/hackers/internal/debuglog"
	"github.com/pders01/hackers/internal/hn"
)

const (
	SourceAPI = "api"
	SourceRSS = "rss"
)

type Config struct {
	Database DatabaseConfig `mapstructure:"database" toml:"database"`
	HN       HNConfig       `mapstructure:"hn" toml:"hn"`
	UI       UIConfig       `mapstructure:"ui" toml:"ui"`
	Browser  BrowserConfig  `mapstructure:"browser" toml:"browser"`
	Keys     KeyConfig      `mapstructure:"keys" toml:"keys"`
	Log      LogConfig      `mapstructure:"log" toml:"log"`
	About    AboutConfig    `mapstructure:"about" toml:"about"`
}

type DatabaseConfig struct {
	Path    string        `mapstructure:"path"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// HNConfig selects and tunes the post source.
type HNConfig struct {
	Source       string        `mapstructure:"source"`
	APIBaseURL   string        `mapstructure:"api_base_url"`
	RSSBaseURL   string        `mapstructure:"rss_base_url"`
	Category     string        `mapstructure:"category"`
	PageSize     int           `mapstructure:"page_size"`
	Concurrency  int           `mapstructure:"concurrency"`
	HTTPTimeout  time.Duration `mapstructure:"http_timeout"`
	UserAgent    string        `mapstructure:"user_agent"`
	CommentLimit int           `mapstructure:"comment_limit"`
}

type UIConfig struct {
	SplitMinWidth    int `mapstructure:"split_min_width" toml:"split_min_width"`
	ListWidthPercent int `mapstructure:"list_width_percent" toml:"list_width_percent"`
	WordWrapMaxWidth int `mapstructure:"word_wrap_max_width" toml:"word_wrap_max_width"`
	WordWrapMinWidth int `mapstructure:"word_wrap_min_width" toml:"word_wrap_min_width"`
}

type BrowserConfig struct {
	DefaultOpener string   `mapstructure:"default_opener" toml:"default_opener"`
	Candidates    []string `mapstructure:"candidates" toml:"candidates"`
}

type KeyConfig struct {
	Bindings KeyBindings `mapstructure:"bindings" toml:"bindings"`
}

type KeyBindings struct {
	Quit     string `mapstructure:"quit" toml:"quit"`
	Select   string `mapstructure:"select" toml:"select"`
	Preview  string `mapstructure:"preview" toml:"preview"`
	Commit   string `mapstructure:"commit" toml:"commit"`
	Back     string `mapstructure:"back" toml:"back"`
	Open     string `mapstructure:"open" toml:"open"`
	Refresh  string `mapstructure:"refresh" toml:"refresh"`
	Settings string `mapstructure:"settings" toml:"settings"`
	Search   string `mapstructure:"search" toml:"search"`
	Help     string `mapstructure:"help" toml:"help"`
}

type LogConfig struct {
	Level string `mapstructure:"level" toml:"level"`
	File  string `mapstructure:"file" toml:"file"`
}

type AboutConfig struct {
	Website       string `mapstructure:"website" toml:"website"`
	FeedbackEmail string `mapstructure:"feedback_email" toml:"feedback_email"`
}

// DefaultKeyBindings is the stock key layout. Empty fields of a loaded
// configuration fall back to it.
func DefaultKeyBindings() KeyBindings {
	return KeyBindings{
		Quit:     "q",
		Select:   "enter",
		Preview:  "p",
		Commit:   "c",
		Back:     "esc",
		Open:     "o",
		Refresh:  "r",
		Settings: ",",
		Search:   "ctrl+s",
		Help:     "?",
	}
}

func defaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Database: DatabaseConfig{
			Path:    filepath.Join(homeDir, ".hackers", "hackers.db"),
			Timeout: 1 * time.Second,
		},
		HN: HNConfig{
			Source:       SourceAPI,
			APIBaseURL:   hn.DefaultAPIBaseURL,
			RSSBaseURL:   hn.DefaultRSSBaseURL,
			Category:     string(hn.CategoryTop),
			PageSize:     30,
			Concurrency:  8,
			HTTPTimeout:  15 * time.Second,
			UserAgent:    "hackers/1.0 (https://github.com/pders01/hackers)",
			CommentLimit: 20,
		},
		UI: UIConfig{
			SplitMinWidth:    120,
			ListWidthPercent: 40,
			WordWrapMaxWidth: 100,
			WordWrapMinWidth: 40,
		},
		Browser: BrowserConfig{
			Candidates:    defaultCandidates(),
		},
		Keys: KeyConfig{
			Bindings: DefaultKeyBindings(),
		},
		Log: LogConfig{
			Level: debuglog.LevelOff.String(),
			File:  debuglog.DefaultPath(),
		},
		About: AboutConfig{
			Website:       "https://github.com/pders01/hackers",
			FeedbackEmail: "",
		},
	}
}

func defaultCandidates() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"open"}
	case "windows":
		return []string{"rundll32"}
	default:
		return []string{"xdg-open", "sensible-browser", "firefox", "chromium"}
	}
}

func setDefaults(v *viper.Viper, cfg *Config) {
	defaults := map[string]any{
		"database.path":    cfg.Database.Path,
		"database.timeout": cfg.Database.Timeout,

		"hn.source":        cfg.HN.Source,
		"hn.api_base_url":  cfg.HN.APIBaseURL,
		"hn.rss_base_url":  cfg.HN.RSSBaseURL,
		"hn.category":      cfg.HN.Category,
		"hn.page_size":     cfg.HN.PageSize,
		"hn.concurrency":   cfg.HN.Concurrency,
		"hn.http_timeout":  cfg.HN.HTTPTimeout,
		"hn.user_agent":    cfg.HN.UserAgent,
		"hn.comment_limit": cfg.HN.CommentLimit,

		"ui.split_min_width":     cfg.UI.SplitMinWidth,
		"ui.list_width_percent":  cfg.UI.ListWidthPercent,
		"ui.word_wrap_max_width": cfg.UI.WordWrapMaxWidth,
		"ui.word_wrap_min_width": cfg.UI.WordWrapMinWidth,

		"browser.default_opener": cfg.Browser.DefaultOpener,
		"browser.candidates":     cfg.Browser.Candidates,

		"keys.bindings.quit":     cfg.Keys.Bindings.Quit,
		"keys.bindings.select":   cfg.Keys.Bindings.Select,
		"keys.bindings.preview":  cfg.Keys.Bindings.Preview,
		"keys.bindings.commit":   cfg.Keys.Bindings.Commit,
		"keys.bindings.back":     cfg.Keys.Bindings.Back,
		"keys.bindings.open":     cfg.Keys.Bindings.Open,
		"keys.bindings.refresh":  cfg.Keys.Bindings.Refresh,
		"keys.bindings.settings": cfg.Keys.Bindings.Settings,
		"keys.bindings.search":   cfg.Keys.Bindings.Search,
		"keys.bindings.help":     cfg.Keys.Bindings.Help,

		"log.level": cfg.Log.Level,
		"log.file":  cfg.Log.File,

		"about.website":        cfg.About.Website,
		"about.feedback_email": cfg.About.FeedbackEmail,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

// DefaultPath is the config file looked up when Load is given no path.
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "hackers", "config.toml")
}

func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v, defaultConfig())

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(filepath.Dir(DefaultPath()))
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("HACKERS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	expandPaths(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate rejects settings the application cannot start with.
func (c *Config) Validate() error {
	var errs []error
	switch c.HN.Source {
	case SourceAPI, SourceRSS:
	default:
		errs = append(errs, fmt.Errorf("hn.source must be %q or %q, got %q", SourceAPI, SourceRSS, c.HN.Source))
	}
	if _, err := hn.ParseCategory(c.HN.Category); err != nil {
		errs = append(errs, fmt.Errorf("hn.category: %w", err))
	}
	if c.HN.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("hn.page_size must be positive, got %d", c.HN.PageSize))
	}
	if c.HN.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("hn.concurrency must be positive, got %d", c.HN.Concurrency))
	}
	if c.UI.SplitMinWidth <= 0 {
		errs = append(errs, fmt.Errorf("ui.split_min_width must be positive, got %d", c.UI.SplitMinWidth))
	}
	if c.UI.ListWidthPercent < 10 || c.UI.ListWidthPercent > 90 {
		errs = append(errs, fmt.Errorf("ui.list_width_percent must be within 10..90, got %d", c.UI.ListWidthPercent))
	}
	errs = append(errs, c.Keys.Bindings.validate()...)
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func (b KeyBindings) validate() []error {
	fields := []struct{ name, value string }{
		{"quit", b.Quit}, {"select", b.Select}, {"preview", b.Preview}, {"commit", b.Commit},
		{"back", b.Back}, {"open", b.Open}, {"refresh", b.Refresh}, {"settings", b.Settings},
		{"search", b.Search}, {"help", b.Help},
	}
	var errs []error
	for _, f := range fields {
		if strings.Trim(f.value, " \t") == "" {
			errs = append(errs, fmt.Errorf("keys.bindings.%s must name at least one key", f.name))
		}
	}
	return errs
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return path
}

func expandPaths(cfg *Config) {
	cfg.Database.Path = expandPath(cfg.Database.Path)
	cfg.Log.File = expandPath(cfg.Log.File)
}

// Save writes cfg as TOML. Durations are stored in their string form so the
// file stays readable and round-trips through Load.
func Save(config *Config, path string) error {
	doc := map[string]any{
		"database": map[string]any{
			"path":    config.Database.Path,
			"timeout": config.Database.Timeout.String(),
		},
		"hn": map[string]any{
			"source":        config.HN.Source,
			"api_base_url":  config.HN.APIBaseURL,
			"rss_base_url":  config.HN.RSSBaseURL,
			"category":      config.HN.Category,
			"page_size":     config.HN.PageSize,
			"concurrency":   config.HN.Concurrency,
			"http_timeout":  config.HN.HTTPTimeout.String(),
			"user_agent":    config.HN.UserAgent,
			"comment_limit": config.HN.CommentLimit,
		},
		"ui":      config.UI,
		"browser": config.Browser,
		"keys":    config.Keys,
		"log":     config.Log,
		"about":   config.About,
	}

	data, err := toml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}
