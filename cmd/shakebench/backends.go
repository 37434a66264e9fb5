// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/shakebench/shakebench/internal/adapter"
	"github.com/shakebench/shakebench/internal/bundler"
)

func newBackendsCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List backends with declared and installed versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return listBackends(cmd.Context(), app)
		},
	}
}

func listBackends(ctx context.Context, app *App) error {
	res, err := app.loadConfig(ctx)
	if err != nil {
		return err
	}
	cfg := res.Config

	reg, err := app.loadRegistry(cfg, nil)
	if err != nil {
		return err
	}

	specs := adapter.DefaultSpecs()
	overrides := adapterOverrides(cfg)

	rows := make([][]string, 0, reg.Len())
	statuses := make([]bundler.VersionStatus, 0, reg.Len())
	for _, d := range reg.All() {
		spec := adapter.Merge(specs[d.ID], overrides[d.ID])
		kind := string(spec.Kind)
		if kind == "" {
			kind = "-"
		}
		installed := d.Installed
		if installed == "" {
			installed = "-"
		}
		status := bundler.CheckInstalled(d)
		statuses = append(statuses, status)
		rows = append(rows, []string{d.ID, d.Package, d.Version, installed, string(status), kind})
	}

	fmt.Fprintln(app.stdout, TitleStyle.Render("Backends"))
	fmt.Fprintln(app.stdout, table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(SubtitleStyle).
		Headers("id", "package", "declared", "installed", "status", "adapter").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return tableHeaderStyle
			case col == 0:
				return tableCellStyle.Foreground(ColorHighlight)
			case col == 4 && row >= 0 && row < len(statuses):
				return statusStyle(statuses[row])
			default:
				return tableCellStyle
			}
		}).
		String())
	return nil
}

func statusStyle(s bundler.VersionStatus) lipgloss.Style {
	switch s {
	case bundler.VersionSatisfied:
		return tableCellStyle.Foreground(ColorSuccess)
	case bundler.VersionMismatch:
		return tableCellStyle.Foreground(ColorError)
	default:
		return tableCellStyle.Foreground(ColorWarning)
	}
}
