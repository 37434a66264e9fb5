// SPDX-License-Identifier: MPL-2.0

package report

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/shakebench/shakebench/internal/bundler"
	"github.com/shakebench/shakebench/internal/stats"
)

// Default document anchors.
const (
	DefaultRowLabel      = "Build time (ms)"
	DefaultFenceLanguage = "benchmark"
)

type (
	// PatchOptions name the two document anchors.
	PatchOptions struct {
		// RowLabel is the first cell of the table row to rewrite.
		RowLabel string
		// FenceLanguage is the info string of the fenced block to rewrite.
		FenceLanguage string
		Precision     int
	}

	// PatchResult reports which anchors were found.
	PatchResult struct {
		RowPatched   bool
		FencePatched bool
	}
)

// Err returns ErrAnchorNotFound naming every missing anchor, or nil.
func (r PatchResult) Err() error {
	var errs []error
	if !r.RowPatched {
		errs = append(errs, fmt.Errorf("%w: table row", ErrAnchorNotFound))
	}
	if !r.FencePatched {
		errs = append(errs, fmt.Errorf("%w: fenced block", ErrAnchorNotFound))
	}
	return errors.Join(errs...)
}

func (o PatchOptions) withDefaults() PatchOptions {
	if o.RowLabel == "" {
		o.RowLabel = DefaultRowLabel
	}
	if o.FenceLanguage == "" {
		o.FenceLanguage = DefaultFenceLanguage
	}
	if o.Precision < 0 {
		o.Precision = DefaultPrecision
	}
	return o
}

// Row renders the report table row: the label, then one "avg±stddev" cell
// per backend in registry order ("n/a" for backends without samples).
func Row(label string, reg *bundler.Registry, aggs []stats.AggregateStatistic, precision int) string {
	byID := index(aggs)
	cells := []string{label}
	for _, d := range reg.All() {
		if a, ok := byID[d.ID]; ok {
			cells = append(cells, Cell(a, precision))
		} else {
			cells = append(cells, "n/a")
		}
	}
	return "| " + strings.Join(cells, " | ") + " |"
}

// PatchDocument rewrites the first table row whose first cell is the row
// label and the contents of the first fenced block tagged with the fence
// language. Every other byte is preserved. A missing anchor leaves its
// section untouched and is reported in the result.
func PatchDocument(doc string, opts PatchOptions, reg *bundler.Registry, aggs []stats.AggregateStatistic, summary string) (string, PatchResult) {
	opts = opts.withDefaults()
	var res PatchResult

	rowRe := regexp.MustCompile(`(?m)^\|[ \t]*` + regexp.QuoteMeta(opts.RowLabel) + `[ \t]*\|[^\r\n]*`)
	if loc := rowRe.FindStringIndex(doc); loc != nil {
		doc = doc[:loc[0]] + Row(opts.RowLabel, reg, aggs, opts.Precision) + doc[loc[1]:]
		res.RowPatched = true
	}

	fenceRe := regexp.MustCompile("(?ms)^```" + regexp.QuoteMeta(opts.FenceLanguage) + "[ \\t]*(\\r?)\\n(.*?)^```[ \\t]*\\r?$")
	if loc := fenceRe.FindStringSubmatchIndex(doc); loc != nil {
		body := summary
		if body != "" && !strings.HasSuffix(body, "\n") {
			body += "\n"
		}
		// Follow the fence's line endings.
		if loc[3] > loc[2] {
			body = strings.ReplaceAll(strings.ReplaceAll(body, "\r\n", "\n"), "\n", "\r\n")
		}
		doc = doc[:loc[4]] + body + doc[loc[5]:]
		res.FencePatched = true
	}

	return doc, res
}

// PatchFile applies PatchDocument to the file at path. A read failure is
// returned as is and nothing is written; a write failure is a *WriteError.
// The file is only rewritten when its content changes.
func PatchFile(path string, opts PatchOptions, reg *bundler.Registry, aggs []stats.AggregateStatistic, summary string) (PatchResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PatchResult{}, fmt.Errorf("failed to read report: %w", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return PatchResult{}, fmt.Errorf("failed to read report: %w", err)
	}

	patched, res := PatchDocument(string(data), opts, reg, aggs, summary)
	if patched == string(data) {
		return res, nil
	}
	if err := os.WriteFile(path, []byte(patched), info.Mode().Perm()); err != nil {
		return res, &WriteError{Path: path, Cause: err}
	}
	return res, nil
}
