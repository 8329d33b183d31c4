// Package cmd implements the aquarius CLI command tree.
// This file defines the root command and registers all global persistent flags.
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/aquarius/internal/app"
	"github.com/derickschaefer/aquarius/internal/config"
	"github.com/derickschaefer/aquarius/internal/render"
)

// globalFlags holds the parsed values of all persistent (global) flags.
// Commands read from this struct via the deps they receive.
var globalFlags struct {
	Origin  string
	DBPath  string
	Format  string
	Out     string
	Timeout string
	NoStore bool
	Quiet   bool
	Verbose bool
	Debug   bool
}

// rootCmd is the base command. Running `aquarius` with no subcommand
// prints help.
var rootCmd = &cobra.Command{
	Use:   "aquarius",
	Short: "Paphos district dam water levels",
	Long: `aquarius is a command-line client for the Paphos (Cyprus) dam
water-level API. It reports the overall reservoir level, per-dam detail and
trends for a selected reporting period.

The selected period is remembered between runs. When no period is selected
the API answers with its latest data.

Quick start:
  aquarius summary                 # overall level, latest data
  aquarius period set 15.01.2025   # select a reporting period
  aquarius dams                    # every dam for that period
  aquarius dam Asprokremmos        # one dam in detail`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// buildDeps resolves config and constructs the dependency container.
// Called at the start of each command's RunE.
func buildDeps(cmd *cobra.Command) (*app.Deps, error) {
	ov := config.Overrides{
		Origin: globalFlags.Origin,
		DBPath: globalFlags.DBPath,
		Format: globalFlags.Format,
	}
	if globalFlags.Timeout != "" {
		d, err := time.ParseDuration(globalFlags.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid --timeout %q: %w", globalFlags.Timeout, err)
		}
		ov.Timeout = d
	}

	cfg, err := config.Load(ov)
	if err != nil {
		return nil, err
	}

	// Apply CLI flag overrides
	cfg.NoStore = globalFlags.NoStore
	cfg.Quiet = globalFlags.Quiet
	cfg.Verbose = globalFlags.Verbose
	cfg.Debug = globalFlags.Debug

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return app.New(cfg, newLogger(cmd.ErrOrStderr()))
}

// newLogger returns a text logger on w at the level chosen by the global
// flags: warn by default, info with --verbose, debug with --debug.
func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case globalFlags.Debug:
		level = slog.LevelDebug
	case globalFlags.Verbose:
		level = slog.LevelInfo
	case globalFlags.Quiet:
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func init() {
	pf := rootCmd.PersistentFlags()

	pf.StringVar(&globalFlags.Origin, "origin", "",
		"API origin (overrides env AQUARIUS_ORIGIN and config.json)")
	pf.StringVar(&globalFlags.DBPath, "db", "",
		"settings database path (default: ~/.aquarius/aquarius.db)")
	pf.StringVar(&globalFlags.Format, "format", "",
		"output format: "+strings.Join(render.Formats, "|")+" (default: table)")
	pf.StringVar(&globalFlags.Out, "out", "",
		"write output to file instead of stdout")
	pf.StringVar(&globalFlags.Timeout, "timeout", "",
		"HTTP request timeout (e.g. 15s, 1m)")
	pf.BoolVar(&globalFlags.NoStore, "no-store", false,
		"keep the selected period in memory only for this run")
	pf.BoolVar(&globalFlags.Quiet, "quiet", false,
		"suppress all non-error output")
	pf.BoolVar(&globalFlags.Verbose, "verbose", false,
		"show timing stats after output and log at info level")
	pf.BoolVar(&globalFlags.Debug, "debug", false,
		"log HTTP requests and responses")
}
