// cmd/navigator/root.go
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github-navigator/internal/config"
	"github-navigator/internal/github"
	"github-navigator/internal/history"
	"github-navigator/internal/model"
	"github-navigator/internal/navigator"
	"github-navigator/internal/server"
)

type rootOptions struct {
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:          "navigator",
		Short:        "Find the newest GitHub repositories for a search term",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(newSearchCmd(opts), newServeCmd(opts))
	return cmd
}

// newLogger returns an slog.Logger backed by charmbracelet/log for terminal output.
func newLogger(w io.Writer, level log.Level) *slog.Logger {
	handler := log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: true,
	})
	return slog.New(handler)
}

// parseLevel maps a LOG_LEVEL value onto a charmbracelet/log level.
// --verbose always wins.
func parseLevel(level string, verbose bool) log.Level {
	if verbose {
		return log.DebugLevel
	}
	switch level {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

func newSearchCmd(root *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Search repositories and show their latest commit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			logger := newLogger(cmd.ErrOrStderr(), parseLevel(cfg.LogLevel, root.verbose))

			client, err := github.NewClient(cfg.GithubToken, cfg.GithubBaseURL, logger)
			if err != nil {
				return err
			}
			nav := navigator.New(client, history.NopStore{}, logger, server.NavigatorOptions(cfg))

			repos, err := nav.Search(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), args[0], repos)
			}
			_, err = io.WriteString(cmd.OutOrStdout(), renderRepositories(args[0], repos))
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func newServeCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the navigator HTTP service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			logger := newLogger(cmd.ErrOrStderr(), parseLevel(cfg.LogLevel, root.verbose))

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			srv, err := server.New(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer srv.Close()
			return srv.Run(ctx)
		},
	}
}

func writeJSON(w io.Writer, term string, repos []model.Repository) error {
	if repos == nil {
		repos = []model.Repository{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		SearchTerm   string             `json:"search_term"`
		Repositories []model.Repository `json:"repositories"`
	}{term, repos})
}
