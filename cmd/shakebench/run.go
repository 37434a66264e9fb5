// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/shakebench/shakebench/internal/benchmark"
	"github.com/shakebench/shakebench/internal/bundler"
	"github.com/shakebench/shakebench/internal/issue"
	"github.com/shakebench/shakebench/internal/report"
	"github.com/shakebench/shakebench/internal/series"
	"github.com/shakebench/shakebench/internal/stats"
)

type runFlags struct {
	runs     int
	noWarmup bool
	backends []string
	policy   string
	noPatch  bool
}

func newRunCommand(app *App) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a benchmark session",
		Long: `Run a benchmark session.

Every repetition builds the fixture with each backend in catalogue order and
checks the output against the conformance scenario. A build that fails or
does not tree-shake as expected records no timing for that repetition.

When the session completes the samples are saved as CSV under results_dir,
summary statistics are printed and the report document is patched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBenchmark(cmd.Context(), app, flags)
		},
	}

	cmd.Flags().IntVarP(&flags.runs, "runs", "n", 0, "measured repetitions (default from config)")
	cmd.Flags().BoolVar(&flags.noWarmup, "no-warmup", false, "skip the discarded warmup cycle")
	cmd.Flags().StringSliceVarP(&flags.backends, "backend", "b", nil, "backends to run (default from config, else all)")
	cmd.Flags().StringVar(&flags.policy, "failure-policy", "", "repetition or backend (default from config)")
	cmd.Flags().BoolVar(&flags.noPatch, "no-patch", false, "do not patch the report document")

	return cmd
}

func runBenchmark(ctx context.Context, app *App, flags runFlags) error {
	s, err := app.loadSession(ctx, flags.backends)
	if err != nil {
		return err
	}
	cfg := s.cfg

	opts := benchmark.Options{
		Runs:    cfg.Runs,
		Warmup:  cfg.Warmup && !flags.noWarmup,
		Entry:   cfg.Entry,
		WorkDir: cfg.WorkDir,
		Policy:  benchmark.FailurePolicy(cfg.FailurePolicy),
	}
	if flags.runs > 0 {
		opts.Runs = flags.runs
	}
	if flags.policy != "" {
		opts.Policy = benchmark.FailurePolicy(flags.policy)
		if opts.Policy != benchmark.FailRepetition && opts.Policy != benchmark.FailBackend {
			return fmt.Errorf("invalid --failure-policy %q: want repetition or backend", flags.policy)
		}
	}
	if s.verbose {
		opts.Tee = app.stderr
	}

	runner, err := benchmark.NewRunner(s.registry, s.adapters, opts,
		benchmark.WithScenario(s.scenario),
		benchmark.WithLogger(s.logger),
		benchmark.WithClock(app.Clock),
		benchmark.WithProgress(app.stdout),
	)
	if err != nil {
		return err
	}

	s.logger.Info("starting benchmark", "backends", len(runner.Backends()), "runs", opts.Runs, "policy", opts.Policy)
	samples, runErr := runner.Run(ctx)
	if samples == nil {
		return runErr
	}
	if runErr != nil {
		s.logger.Warn("benchmark interrupted, reporting partial results", "runs", samples.Len())
	}

	publish(app, s, samples, !flags.noPatch)

	if runErr != nil {
		return &ExitError{Code: ExitInterrupted, Err: fmt.Errorf("benchmark interrupted: %w", runErr)}
	}
	return nil
}

// publish writes every report artifact for a finished session. Each step
// logs its own failure and the remaining steps still run.
func publish(app *App, s *session, samples *series.SampleSeries, patch bool) {
	cfg := s.cfg
	aggs := stats.Aggregate(s.registry, samples)

	if path, err := report.SaveCSV(cfg.ResultsDir, app.Clock.Now(), s.registry, samples); err != nil {
		s.logger.Error("could not save results", "error", err)
	} else {
		s.logger.Info("results saved", "path", path)
	}

	summary := report.Summary(s.registry, aggs, cfg.Report.Precision)
	fmt.Fprint(app.stdout, "\n"+summary)
	if len(aggs) == 0 {
		app.renderIssue(issue.NoValidTimingsId)
	}

	if patch {
		patchReport(app, s, s.registry, aggs, summary)
	}

	if cfg.MetricsTextfile != "" {
		if err := report.WriteTextfile(cfg.MetricsTextfile, aggs); err != nil {
			s.logger.Error("could not write metrics textfile", "path", cfg.MetricsTextfile, "error", err)
		} else {
			s.logger.Debug("metrics textfile written", "path", cfg.MetricsTextfile)
		}
	}
}

// patchReport patches the configured report document and reports whether
// both anchors were updated. Failures are logged and explained.
func patchReport(app *App, s *session, reg *bundler.Registry, aggs []stats.AggregateStatistic, summary string) bool {
	cfg := s.cfg
	res, err := report.PatchFile(cfg.Report.Path, patchOptions(cfg.Report), reg, aggs, summary)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.logger.Error("could not read report", "path", cfg.Report.Path, "error", err)
		app.renderIssue(issue.ReportNotFoundId)
		return false
	case err != nil:
		s.logger.Error("could not update report", "path", cfg.Report.Path, "error", err)
		return false
	}

	if res.Err() != nil {
		s.logger.Warn("report only partially updated", "path", cfg.Report.Path, "row", res.RowPatched, "summary", res.FencePatched)
		app.renderIssue(issue.ReportAnchorMissingId)
		return false
	}
	s.logger.Info("report updated", "path", cfg.Report.Path)
	return true
}
