// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/shakebench/shakebench/internal/benchmark"
	"github.com/shakebench/shakebench/internal/conformance"
)

func newVerifyCommand(app *App) *cobra.Command {
	var backends []string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Build once with every backend and check tree-shaking",
		Long: `Build once with every backend and check the output against the
conformance scenario.

Checks a backend documents as known failures are reported as expected
failures. A known failure that now passes is reported as an unexpected pass
and fails verification, so the catalogue can be updated.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return verify(cmd.Context(), app, backends)
		},
	}

	cmd.Flags().StringSliceVarP(&backends, "backend", "b", nil, "backends to verify (default from config, else all)")

	return cmd
}

func verify(ctx context.Context, app *App, backends []string) error {
	s, err := app.loadSession(ctx, backends)
	if err != nil {
		return err
	}

	opts := benchmark.Options{Entry: s.cfg.Entry, WorkDir: s.cfg.WorkDir}
	if s.verbose {
		opts.Tee = app.stderr
	}
	runner, err := benchmark.NewRunner(s.registry, s.adapters, opts,
		benchmark.WithScenario(s.scenario),
		benchmark.WithLogger(s.logger),
		benchmark.WithClock(app.Clock),
	)
	if err != nil {
		return err
	}

	cycle := runner.Cycle(ctx)

	failed := 0
	for _, o := range cycle.Outcomes {
		if o.OK() {
			fmt.Fprintln(app.stdout, SuccessStyle.Render("✔")+" builds and tree-shakes using "+CmdStyle.Render(o.Backend)+fmt.Sprintf(" (%.2fms)", o.Ms()))
			continue
		}
		failed++
		fmt.Fprintln(app.stdout, ErrorStyle.Render("✖")+" builds and tree-shakes using "+CmdStyle.Render(o.Backend))
		if o.Verdict == nil {
			fmt.Fprintln(app.stdout, "  "+SubtitleStyle.Render(o.Err.Error()))
			continue
		}
		for _, c := range o.Verdict.Failures() {
			fmt.Fprintf(app.stdout, "  %s %s\n", ErrorStyle.Render(string(c.Outcome)), c.Name)
			if s.verbose {
				writeExpectations(app.stdout, c)
			}
		}
	}

	fmt.Fprintln(app.stdout)
	fmt.Fprintln(app.stdout, verdictTable(s.scenario, cycle))

	if failed > 0 {
		return &ExitError{Code: ExitVerifyFailed, Err: fmt.Errorf("%d of %d backends failed verification", failed, len(cycle.Outcomes))}
	}
	return nil
}

func writeExpectations(w io.Writer, c conformance.CheckResult) {
	for _, e := range c.Expectations {
		if e.Passed {
			continue
		}
		if e.Artifact == "" {
			fmt.Fprintf(w, "      no artifact matches %q\n", e.Selector)
			continue
		}
		for _, p := range e.Patterns {
			if p.Passed {
				continue
			}
			want := "absent"
			if p.WantPresent {
				want = "present"
			}
			fmt.Fprintf(w, "      %s: %q should be %s\n", e.Artifact, p.Pattern, want)
		}
	}
}

// verdictTable renders one row per check and one column per backend.
func verdictTable(scenario *conformance.Scenario, cycle benchmark.CycleResult) string {
	headers := []string{"check"}
	for _, o := range cycle.Outcomes {
		headers = append(headers, o.Backend)
	}

	names := scenario.CheckNames()
	rows := make([][]string, 0, len(names))
	for _, name := range names {
		row := []string{name}
		for _, o := range cycle.Outcomes {
			row = append(row, outcomeCell(o.Verdict, name))
		}
		rows = append(rows, row)
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(SubtitleStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			if col == 0 || row < 0 || row >= len(rows) {
				return tableCellStyle
			}
			return outcomeStyle(rows[row][col])
		}).
		String()
}

func outcomeCell(v *conformance.Verdict, check string) string {
	if v == nil {
		return "-"
	}
	for _, c := range v.Checks {
		if c.Name == check {
			return outcomeSymbol(c.Outcome)
		}
	}
	return "-"
}

func outcomeSymbol(o conformance.Outcome) string {
	switch o {
	case conformance.OutcomePass:
		return "✔"
	case conformance.OutcomeFail:
		return "✖"
	case conformance.OutcomeExpectedFail:
		return "✖ known"
	case conformance.OutcomeUnexpectedPass:
		return "✔ unexpected"
	case conformance.OutcomeSkipped:
		return "skip"
	default:
		return string(o)
	}
}

func outcomeStyle(cell string) lipgloss.Style {
	switch {
	case cell == "✔":
		return tableCellStyle.Foreground(ColorSuccess)
	case cell == "✖", strings.HasSuffix(cell, "unexpected"):
		return tableCellStyle.Foreground(ColorError)
	case strings.HasSuffix(cell, "known"):
		return tableCellStyle.Foreground(ColorWarning)
	default:
		return tableCellStyle.Foreground(ColorMuted)
	}
}
