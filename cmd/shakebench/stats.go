// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/shakebench/shakebench/internal/bundler"
	"github.com/shakebench/shakebench/internal/config"
	"github.com/shakebench/shakebench/internal/issue"
	"github.com/shakebench/shakebench/internal/report"
	"github.com/shakebench/shakebench/internal/series"
	"github.com/shakebench/shakebench/internal/stats"
)

func newStatsCommand(app *App) *cobra.Command {
	var (
		format    string
		backends  []string
		precision int
	)

	cmd := &cobra.Command{
		Use:   "stats <results.csv>",
		Short: "Print statistics for a saved session",
		Long: `Print statistics for a CSV file written by 'shakebench run'.

The CSV header must match the backend labels resolved from package.json.
Formats: text (console summary), json, yaml, toml.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printStats(cmd.Context(), app, args[0], report.Format(format), backends, precision)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(report.FormatText), "output format: text, json, yaml or toml")
	cmd.Flags().StringSliceVarP(&backends, "backend", "b", nil, "backends in the CSV (default from config, else all)")
	cmd.Flags().IntVar(&precision, "precision", -1, "decimal places for text output (default from config)")

	return cmd
}

func printStats(ctx context.Context, app *App, path string, format report.Format, backends []string, precision int) error {
	if format != report.FormatText && !slices.Contains(report.Formats(), format) {
		return fmt.Errorf("%w %q", report.ErrUnknownFormat, format)
	}

	res, err := app.loadConfig(ctx)
	if err != nil {
		return err
	}
	cfg := res.Config

	reg, samples, err := app.loadResults(cfg, path, backends)
	if err != nil {
		return err
	}

	aggs := stats.Aggregate(reg, samples)
	if format == report.FormatText {
		if precision < 0 {
			precision = cfg.Report.Precision
		}
		fmt.Fprint(app.stdout, report.Summary(reg, aggs, precision))
		if len(aggs) == 0 {
			app.renderIssue(issue.NoValidTimingsId)
		}
		return nil
	}

	return report.Export(app.stdout, format, report.Document{
		Runs:     samples.Len(),
		Backends: aggs,
		Missing:  stats.Missing(reg, samples),
	})
}

// loadResults reads a saved CSV against the configured registry.
func (a *App) loadResults(cfg *config.Config, path string, backends []string) (*bundler.Registry, *series.SampleSeries, error) {
	reg, err := a.loadRegistry(cfg, backends)
	if err != nil {
		return nil, nil, err
	}

	samples, err := report.LoadCSV(path, reg)
	if err != nil {
		return nil, nil, issue.NewErrorContext().
			WithOperation("load results").
			WithResource(path).
			WithSuggestion("Select the backends of that session with --backend").
			WithSuggestion("Check that package.json declares the versions the session ran with").
			Wrap(err).
			BuildError()
	}
	return reg, samples, nil
}
