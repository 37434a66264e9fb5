// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/shakebench/shakebench/internal/config"
	"github.com/shakebench/shakebench/internal/issue"
	"github.com/shakebench/shakebench/internal/report"
	"github.com/shakebench/shakebench/internal/stats"
)

// errReportNotUpdated is returned by report patch once the cause has been
// logged.
var errReportNotUpdated = errors.New("report not updated")

func newReportCommand(app *App) *cobra.Command {
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Maintain the markdown report document",
		Long: `Maintain the markdown report document.

The report must contain a table row starting with the configured row label
and a fenced block with the configured language. Both are rewritten in
place; nothing else in the document changes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	var backends []string
	patchCmd := &cobra.Command{
		Use:   "patch <results.csv>",
		Short: "Rewrite the report from a saved session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return patchFromCSV(cmd.Context(), app, args[0], backends)
		},
	}
	patchCmd.Flags().StringSliceVarP(&backends, "backend", "b", nil, "backends in the CSV (default from config, else all)")
	reportCmd.AddCommand(patchCmd)

	reportCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Render the report document in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showReport(cmd.Context(), app)
		},
	})

	return reportCmd
}

func patchOptions(rc config.ReportConfig) report.PatchOptions {
	return report.PatchOptions{
		RowLabel:      rc.RowLabel,
		FenceLanguage: rc.FenceLanguage,
		Precision:     rc.Precision,
	}
}

func patchFromCSV(ctx context.Context, app *App, path string, backends []string) error {
	res, err := app.loadConfig(ctx)
	if err != nil {
		return err
	}
	cfg := res.Config
	s := &session{cfg: cfg, logger: newLogger(app.stderr, app.verbose(cfg))}

	reg, samples, err := app.loadResults(cfg, path, backends)
	if err != nil {
		return err
	}
	aggs := stats.Aggregate(reg, samples)
	if !patchReport(app, s, reg, aggs, report.Summary(reg, aggs, cfg.Report.Precision)) {
		return errReportNotUpdated
	}
	return nil
}

func showReport(ctx context.Context, app *App) error {
	res, err := app.loadConfig(ctx)
	if err != nil {
		return err
	}
	path := res.Config.Report.Path

	data, err := os.ReadFile(path)
	if err != nil {
		return issue.NewErrorContext().
			WithOperation("read report").
			WithResource(path).
			WithIssue(issue.ReportNotFoundId).
			WithSuggestion("Set report.path in the configuration").
			Wrap(err).
			BuildError()
	}

	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		return err
	}
	out, err := r.Render(string(data))
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	_, err = fmt.Fprint(app.stdout, out)
	return err
}
