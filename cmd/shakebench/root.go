// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/shakebench/shakebench/internal/config"
	"github.com/shakebench/shakebench/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   config.AppName,
		Short: "Tree-shaking conformance and build-time benchmark for JavaScript bundlers",
		Long: TitleStyle.Render("shakebench") + SubtitleStyle.Render(" - tree-shaking conformance and build-time benchmark") + `

shakebench builds one fixture program with every configured bundler,
checks each output for marker strings that must survive or disappear,
and times repeated builds to produce stable statistics.

` + SubtitleStyle.Render("Examples:") + `
  shakebench verify                One conformance pass over every backend
  shakebench run --runs 10         Benchmark session with 10 repetitions
  shakebench stats results.csv     Statistics for a saved session
  shakebench report patch r.csv    Rewrite the report from a saved session
  shakebench backends              List backends and their versions`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			applyColorMode(app.opts.color)
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&app.opts.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&app.opts.configPath, "config", "", "config file (default is $HOME/.config/shakebench/config.cue, then ./shakebench.cue)")
	rootCmd.PersistentFlags().StringVar(&app.opts.color, "color", "", "color output: auto, always or never")

	rootCmd.AddCommand(newRunCommand(app))
	rootCmd.AddCommand(newVerifyCommand(app))
	rootCmd.AddCommand(newBackendsCommand(app))
	rootCmd.AddCommand(newStatsCommand(app))
	rootCmd.AddCommand(newReportCommand(app))
	rootCmd.AddCommand(newConfigCommand(app))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute builds the production App and runs the command tree.
// This is called by main.main().
func Execute() {
	app, err := NewApp(Dependencies{})
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		os.Exit(1)
	}

	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		app.explain(err)
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// formatErrorForDisplay formats an error for user display.
// ActionableErrors render with their suggestions; verbose mode adds the chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// newLogger returns the session logger. Verbose mode enables debug output.
func newLogger(w io.Writer, verbose bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Prefix:          config.AppName,
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// applyColorMode maps the color setting onto the NO_COLOR and
// CLICOLOR_FORCE conventions honored by the terminal renderers.
func applyColorMode(mode string) {
	switch config.ColorMode(mode) {
	case config.ColorNever:
		_ = os.Setenv("NO_COLOR", "1")
	case config.ColorAlways:
		_ = os.Setenv("CLICOLOR_FORCE", "1")
	}
}
