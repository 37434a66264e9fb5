// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shakebench/shakebench/internal/config"
)

// newConfigCommand creates the `shakebench config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage shakebench configuration",
		Long: `Manage shakebench configuration.

Configuration is looked up in this order:
  1. the file given with --config
  2. the user config file:
     - Linux: ~/.config/shakebench/config.cue
     - macOS: ~/Library/Application Support/shakebench/config.cue
     - Windows: %APPDATA%\shakebench\config.cue
  3. ./shakebench.cue

SHAKEBENCH_* environment variables override file values, e.g.
SHAKEBENCH_RUNS=5 or SHAKEBENCH_REPORT_PATH=docs/BENCHMARK.md.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showConfig(cmd.Context(), app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := app.resolveConfig(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(app.stdout, config.GenerateCUE(res.Config))
			return err
		},
	})

	var project bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := ""
			if project {
				path = config.ProjectFileName
			}
			return initConfig(app, path)
		},
	}
	initCmd.Flags().BoolVar(&project, "project", false, "write ./"+config.ProjectFileName+" instead of the user config file")
	cfgCmd.AddCommand(initCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfgDir, err := config.ConfigDir()
			if err != nil {
				return err
			}
			fmt.Fprintf(app.stdout, "Config directory: %s\n", cfgDir)
			fmt.Fprintf(app.stdout, "Config file: %s\n", filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt))
			fmt.Fprintf(app.stdout, "Project file: %s\n", config.ProjectFileName)
			return nil
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App) error {
	res, err := app.resolveConfig(ctx)
	if err != nil {
		return err
	}
	cfg := res.Config

	keyStyle := CmdStyle
	valueStyle := SuccessStyle
	kv := func(indent, key string, value any) {
		fmt.Fprintf(app.stdout, "%s%s: %s\n", indent, keyStyle.Render(key), valueStyle.Render(fmt.Sprint(value)))
	}

	fmt.Fprintln(app.stdout, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(app.stdout)

	if res.Path != "" {
		fmt.Fprintf(app.stdout, "%s: %s\n", keyStyle.Render("Config file"), res.Path)
	} else {
		fmt.Fprintf(app.stdout, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(app.stdout)

	kv("", "runs", cfg.Runs)
	kv("", "warmup", cfg.Warmup)
	kv("", "entry", cfg.Entry)
	kv("", "work_dir", cfg.WorkDir)
	kv("", "package_json", cfg.PackageJSON)
	kv("", "results_dir", cfg.ResultsDir)
	kv("", "failure_policy", cfg.FailurePolicy)
	if cfg.MetricsTextfile != "" {
		kv("", "metrics_textfile", cfg.MetricsTextfile)
	}
	if cfg.Scenario != "" {
		kv("", "scenario", cfg.Scenario)
	}

	fmt.Fprintln(app.stdout)
	fmt.Fprintf(app.stdout, "%s:\n", keyStyle.Render("report"))
	kv("  ", "path", cfg.Report.Path)
	kv("  ", "row_label", cfg.Report.RowLabel)
	kv("  ", "fence_language", cfg.Report.FenceLanguage)
	kv("  ", "precision", cfg.Report.Precision)

	fmt.Fprintln(app.stdout)
	fmt.Fprintf(app.stdout, "%s:\n", keyStyle.Render("backends"))
	if len(cfg.Backends) == 0 {
		fmt.Fprintf(app.stdout, "  %s\n", SubtitleStyle.Render("(all catalogue backends)"))
	}
	for _, b := range cfg.Backends {
		var details []string
		if b.Adapter != "" {
			details = append(details, "adapter: "+string(b.Adapter))
		}
		if b.Runtime != "" {
			details = append(details, "runtime: "+string(b.Runtime))
		}
		if b.Command != "" {
			details = append(details, "command: "+b.Command)
		}
		line := "  - " + valueStyle.Render(b.ID)
		if len(details) > 0 {
			line += " (" + strings.Join(details, ", ") + ")"
		}
		fmt.Fprintln(app.stdout, line)
	}

	fmt.Fprintln(app.stdout)
	fmt.Fprintf(app.stdout, "%s:\n", keyStyle.Render("ui"))
	kv("  ", "verbose", cfg.UI.Verbose)
	kv("  ", "color", cfg.UI.Color)

	return nil
}

func initConfig(app *App, path string) error {
	written, created, err := config.CreateDefaultConfig(path)
	if err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}
	if !created {
		fmt.Fprintf(app.stdout, "%s Configuration already exists at %s\n", WarningStyle.Render("!"), written)
		return nil
	}
	fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), written)
	return nil
}
