// SPDX-License-Identifier: MPL-2.0

package report

import (
	"fmt"
	"strings"

	"github.com/shakebench/shakebench/internal/bundler"
	"github.com/shakebench/shakebench/internal/stats"
)

// DefaultPrecision is the number of decimals in rendered statistics.
const DefaultPrecision = 2

// Summary renders the console summary: a block of Average, Median, Stddev,
// Min and Max per backend with samples, and a "No valid timings" line for
// every backend without any.
func Summary(reg *bundler.Registry, aggs []stats.AggregateStatistic, precision int) string {
	if precision < 0 {
		precision = DefaultPrecision
	}
	byID := index(aggs)

	var b strings.Builder
	b.WriteString("📊 Summary Statistics:\n")
	b.WriteString(strings.Repeat("=", 50) + "\n")

	for _, d := range reg.All() {
		a, ok := byID[d.ID]
		if !ok {
			fmt.Fprintf(&b, "%s: No valid timings\n", d.ID)
			continue
		}
		fmt.Fprintf(&b, "%s:\n", d.LongLabel())
		fmt.Fprintf(&b, "  Average: %.*fms\n", precision, a.Avg)
		fmt.Fprintf(&b, "  Median:  %.*fms\n", precision, a.Median)
		fmt.Fprintf(&b, "  Stddev:  %.*fms\n", precision, a.Stddev)
		fmt.Fprintf(&b, "  Min:     %.*fms\n", precision, a.Min)
		fmt.Fprintf(&b, "  Max:     %.*fms\n", precision, a.Max)
		b.WriteString("\n")
	}
	return b.String()
}

// Cell formats one backend's "avg±stddev" report cell.
func Cell(a stats.AggregateStatistic, precision int) string {
	return fmt.Sprintf("%.*f±%.*f", precision, a.Avg, precision, a.Stddev)
}

func index(aggs []stats.AggregateStatistic) map[string]stats.AggregateStatistic {
	m := make(map[string]stats.AggregateStatistic, len(aggs))
	for _, a := range aggs {
		m[a.Backend.ID] = a
	}
	return m
}
