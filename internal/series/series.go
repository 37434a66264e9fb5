// SPDX-License-Identifier: MPL-2.0

// Package series holds the timing samples collected by a benchmark run.
package series

import "slices"

type (
	// RunSample is one repetition: backend id to elapsed milliseconds.
	// A nil value means the backend produced no valid timing for that
	// repetition.
	RunSample map[string]*float64

	// SampleSeries is the ordered list of measured repetitions. Warm-up
	// repetitions are never part of it.
	SampleSeries struct {
		// Backends is the column order (registry order).
		Backends []string
		Runs     []RunSample
	}
)

// New creates an empty series with the given column order.
func New(backends []string) *SampleSeries {
	return &SampleSeries{Backends: slices.Clone(backends)}
}

// Ms returns a pointer to v, for building samples.
func Ms(v float64) *float64 { return &v }

// Append adds one repetition. Backends absent from the sample are null.
func (s *SampleSeries) Append(sample RunSample) {
	row := make(RunSample, len(s.Backends))
	for _, id := range s.Backends {
		if v, ok := sample[id]; ok && v != nil {
			row[id] = Ms(*v)
		} else {
			row[id] = nil
		}
	}
	s.Runs = append(s.Runs, row)
}

// Len returns the number of repetitions.
func (s *SampleSeries) Len() int { return len(s.Runs) }

// Column returns the non-null timings of a backend in run order.
func (s *SampleSeries) Column(id string) []float64 {
	var out []float64
	for _, run := range s.Runs {
		if v := run[id]; v != nil {
			out = append(out, *v)
		}
	}
	return out
}

// Valid returns the number of non-null timings of a backend.
func (s *SampleSeries) Valid(id string) int {
	return len(s.Column(id))
}
