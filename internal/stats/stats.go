// SPDX-License-Identifier: MPL-2.0

// Package stats reduces per-backend timing samples into summary statistics.
package stats

import (
	"math"
	"slices"

	"github.com/shakebench/shakebench/internal/bundler"
	"github.com/shakebench/shakebench/internal/series"
)

type (
	// Summary describes one backend's non-null samples.
	Summary struct {
		Avg    float64 `json:"avg" yaml:"avg" toml:"avg"`
		Median float64 `json:"median" yaml:"median" toml:"median"`
		// Stddev is the population standard deviation (divides by N).
		Stddev float64 `json:"stddev" yaml:"stddev" toml:"stddev"`
		Min    float64 `json:"min" yaml:"min" toml:"min"`
		Max    float64 `json:"max" yaml:"max" toml:"max"`
		N      int     `json:"n" yaml:"n" toml:"n"`
	}

	// AggregateStatistic pairs a backend with its Summary.
	AggregateStatistic struct {
		Backend bundler.Descriptor `json:"backend" yaml:"backend" toml:"backend"`
		Summary `yaml:",inline"`
	}
)

// Compute summarizes samples. It returns false when samples is empty.
// The input slice is not modified.
func Compute(samples []float64) (Summary, bool) {
	n := len(samples)
	if n == 0 {
		return Summary{}, false
	}

	sorted := slices.Clone(samples)
	slices.Sort(sorted)

	var sum float64
	for _, x := range sorted {
		sum += x
	}
	avg := sum / float64(n)

	var sq float64
	for _, x := range sorted {
		d := x - avg
		sq += d * d
	}

	var median float64
	if n%2 == 0 {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	} else {
		median = sorted[n/2]
	}

	return Summary{
		Avg:    avg,
		Median: median,
		Stddev: math.Sqrt(sq / float64(n)),
		Min:    sorted[0],
		Max:    sorted[n-1],
		N:      n,
	}, true
}

// Aggregate computes one AggregateStatistic per backend of reg that has at
// least one non-null sample in s, in registry order. Backends without
// samples are omitted.
func Aggregate(reg *bundler.Registry, s *series.SampleSeries) []AggregateStatistic {
	var out []AggregateStatistic
	for _, d := range reg.All() {
		sum, ok := Compute(s.Column(d.ID))
		if !ok {
			continue
		}
		out = append(out, AggregateStatistic{Backend: d, Summary: sum})
	}
	return out
}

// Missing returns the ids of backends in reg without any valid sample.
func Missing(reg *bundler.Registry, s *series.SampleSeries) []string {
	var out []string
	for _, id := range reg.IDs() {
		if s.Valid(id) == 0 {
			out = append(out, id)
		}
	}
	return out
}
