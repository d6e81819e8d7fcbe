package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/pders01/hackers/internal/config"
	"github.com/pders01/hackers/internal/hn"
	"github.com/pders01/hackers/internal/prefs"
	"github.com/pders01/hackers/internal/validation"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "hackers %s\n", Version)
			fmt.Fprintln(out, "Hacker News reader")
			fmt.Fprintln(out, "github.com/pders01/hackers")
		},
	}
}

func newConfigCmd(opts *options) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}
	configCmd.AddCommand(&cobra.Command{
		Use:   "generate",
		Short: "Write the default configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.configPath
			if path == "" {
				path = config.DefaultPath()
			}
			path, err := validation.NewPathValidator().File(path)
			if err != nil {
				return err
			}
			if err := config.GenerateDefaultConfig(path); err != nil {
				return fmt.Errorf("generating config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Generated default configuration at: %s\n", path)
			return nil
		},
	})
	return configCmd
}

func newTopCmd(opts *options) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "top",
		Short: "Print the first page of stories and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(opts)
			if err != nil {
				return err
			}
			defer e.Close()

			provider, _ := newProvider(e.cfg, &http.Client{Timeout: e.cfg.HN.HTTPTimeout})
			co, err := newCoordinator(e.cfg, provider)
			if err != nil {
				return err
			}
			defer co.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), e.cfg.HN.HTTPTimeout*2)
			defer cancel()
			if err := co.Refresh(ctx); err != nil {
				return err
			}

			posts := co.Posts()
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(posts)
			}
			showDomain := e.prefs.ShowThumbnails()
			for _, p := range posts {
				title := p.Title
				if d := p.Domain(); showDomain && d != "" {
					title += " (" + d + ")"
				}
				fmt.Fprintf(out, "%3d. %s\n", p.Rank, title)
				fmt.Fprintf(out, "     %d points by %s | %d comments | %s\n", p.Score, p.By, p.CommentCount, p.CommentsURL())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print stories as JSON")
	return cmd
}

func newSettingsCmd(opts *options) *cobra.Command {
	keyNames := strings.Join(lo.Map(prefs.Keys, func(k prefs.Key, _ int) string { return string(k) }), ", ")

	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change preferences",
		Long:  "Show or change preferences. Keys: " + keyNames + ".",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(opts)
			if err != nil {
				return err
			}
			defer e.Close()
			for _, k := range prefs.Keys {
				v, err := e.prefs.Get(k)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", k, v)
			}
			return nil
		},
	}

	settingsCmd.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Print one preference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(opts)
			if err != nil {
				return err
			}
			defer e.Close()
			v, err := e.prefs.Get(prefs.Key(args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	}, &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one preference",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(opts)
			if err != nil {
				return err
			}
			defer e.Close()
			if err := e.prefs.Set(prefs.Key(args[0]), args[1]); err != nil {
				return err
			}
			v, _ := e.prefs.Get(prefs.Key(args[0]))
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], v)
			return nil
		},
	})
	return settingsCmd
}

// categoriesHelp lists the accepted --category values.
func categoriesHelp() string {
	return strings.Join(lo.Map(hn.Categories, func(c hn.Category, _ int) string { return c.String() }), ", ")
}
