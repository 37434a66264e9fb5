// SPDX-License-Identifier: MPL-2.0

package report

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/shakebench/shakebench/internal/stats"
)

const metricsNamespace = "shakebench"

// Gatherer registers per-backend gauges for aggs on a fresh registry.
func Gatherer(aggs []stats.AggregateStatistic) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	duration := factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "build_duration_milliseconds",
			Help:      "Build duration statistics per backend in milliseconds",
		},
		[]string{"backend", "package", "version", "stat"},
	)
	samples := factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "build_samples",
			Help:      "Number of valid timing samples per backend",
		},
		[]string{"backend"},
	)

	for _, a := range aggs {
		d := a.Backend
		for stat, v := range map[string]float64{
			"avg":    a.Avg,
			"median": a.Median,
			"stddev": a.Stddev,
			"min":    a.Min,
			"max":    a.Max,
		} {
			duration.WithLabelValues(d.ID, d.Package, d.Version, stat).Set(v)
		}
		samples.WithLabelValues(d.ID).Set(float64(a.N))
	}
	return reg
}

// WriteTextfile writes aggs in the Prometheus text format for the node
// exporter textfile collector. Failures are returned as *WriteError.
func WriteTextfile(path string, aggs []stats.AggregateStatistic) error {
	if err := prometheus.WriteToTextfile(path, Gatherer(aggs)); err != nil {
		return &WriteError{Path: path, Cause: err}
	}
	return nil
}
