package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/pders01/hackers/internal/browser"
	"github.com/pders01/hackers/internal/config"
	"github.com/pders01/hackers/internal/debuglog"
	"github.com/pders01/hackers/internal/feed"
	"github.com/pders01/hackers/internal/hn"
	"github.com/pders01/hackers/internal/prefs"
	"github.com/pders01/hackers/internal/reader"
	"github.com/pders01/hackers/internal/search"
	"github.com/pders01/hackers/internal/storage"
	"github.com/pders01/hackers/internal/tui"
	"github.com/pders01/hackers/internal/validation"
)

// Version is the version of the application, set at build time
var Version = "dev"

type options struct {
	configPath string
	dbPath     string
	category   string
	quiet      bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "hackers",
		Short:         "Read Hacker News in the terminal",
		Long:          "hackers shows the Hacker News front page in your terminal, with inline link previews and comments.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !opts.quiet {
				tui.ShowBanner(Version)
			}
			return runTUI(opts)
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to configuration file")
	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "Path to database file (overrides config)")
	root.PersistentFlags().StringVarP(&opts.category, "category", "c", "", "Story list: "+categoriesHelp())
	root.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Skip startup banner")

	root.AddCommand(
		newTopCmd(opts),
		newSettingsCmd(opts),
		newVersionCmd(),
		newConfigCmd(opts),
	)
	return root
}

func loadConfig(opts *options) (*config.Config, error) {
	paths := validation.NewPathValidator()
	configPath := opts.configPath
	if configPath != "" {
		p, err := paths.File(configPath)
		if err != nil {
			return nil, fmt.Errorf("--config: %w", err)
		}
		configPath = p
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if opts.dbPath != "" {
		p, err := paths.File(opts.dbPath)
		if err != nil {
			return nil, fmt.Errorf("--db: %w", err)
		}
		cfg.Database.Path = p
	}
	if opts.category != "" {
		cfg.HN.Category = opts.category
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// env is what every subcommand needs: configuration, logging and the
// preference store.
type env struct {
	cfg   *config.Config
	store *storage.Store
	prefs *prefs.Service
}

func setup(opts *options) (*env, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	if err := debuglog.Setup(debuglog.ParseLogLevel(cfg.Log.Level), cfg.Log.File); err != nil {
		return nil, err
	}
	if _, err := validation.NewPathValidator().EnsureDir(filepath.Dir(cfg.Database.Path)); err != nil {
		_ = debuglog.Close()
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	store, err := storage.NewStore(cfg.Database.Path, cfg.Database.Timeout)
	if err != nil {
		_ = debuglog.Close()
		return nil, err
	}
	schema, err := store.SchemaVersion()
	if err != nil {
		debuglog.Warnf("reading schema version: %v", err)
	}
	debuglog.WithFields(map[string]interface{}{
		"db":     store.Path(),
		"schema": schema,
	}).Infof("store opened")
	return &env{cfg: cfg, store: store, prefs: prefs.New(store)}, nil
}

func (e *env) Close() {
	if err := e.store.Close(); err != nil {
		debuglog.Warnf("closing store: %v", err)
	}
	_ = debuglog.Close()
}

// newProvider builds the configured post source. The API client is always
// returned as well since comments are only available through it.
func newProvider(cfg *config.Config, httpClient *http.Client) (feed.PostProvider, *hn.Client) {
	client := hn.NewClient(cfg.HN.APIBaseURL, httpClient,
		hn.WithPageSize(cfg.HN.PageSize),
		hn.WithConcurrency(cfg.HN.Concurrency),
		hn.WithUserAgent(cfg.HN.UserAgent),
	)
	if cfg.HN.Source == config.SourceRSS {
		return hn.NewRSSProvider(cfg.HN.RSSBaseURL, httpClient, cfg.HN.PageSize, cfg.HN.UserAgent), client
	}
	return client, client
}

func newCoordinator(cfg *config.Config, provider feed.PostProvider) (*feed.Coordinator, error) {
	category, err := hn.ParseCategory(cfg.HN.Category)
	if err != nil {
		return nil, err
	}
	return feed.NewCoordinator(provider, feed.WithCategory(category)), nil
}

func runTUI(opts *options) error {
	e, err := setup(opts)
	if err != nil {
		return err
	}
	defer e.Close()

	httpClient := &http.Client{Timeout: e.cfg.HN.HTTPTimeout}
	provider, client := newProvider(e.cfg, httpClient)
	co, err := newCoordinator(e.cfg, provider)
	if err != nil {
		return err
	}
	defer co.Close()
	co.Listen(e.prefs)

	app := tui.NewApp(e.cfg, tui.Deps{
		Coordinator:       co,
		Prefs:             e.prefs,
		Pages:             reader.NewFetcher(httpClient, reader.WithUserAgent(e.cfg.HN.UserAgent)),
		Launcher:          browser.NewLauncher(e.cfg.Browser),
		Comments:          client,
		Searcher:          search.New(),
		Version:           Version,
		HasDarkBackground: lipgloss.HasDarkBackground(),
	})
	defer app.Close()

	debuglog.WithFields(map[string]interface{}{
		"source":   e.cfg.HN.Source,
		"category": co.Category(),
		"version":  Version,
	}).Infof("starting")

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running ui: %w", err)
	}
	return nil
}
