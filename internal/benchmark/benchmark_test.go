// SPDX-License-Identifier: MPL-2.0

package benchmark

import (
	"context"
	"strings"
	"testing"

	"github.com/shakebench/shakebench/internal/adapter"
	"github.com/shakebench/shakebench/internal/conformance"
	"github.com/shakebench/shakebench/internal/stats"
)

// minifiedIndex approximates a minified entry chunk with markers buried in
// unrelated code.
var minifiedIndex = strings.Repeat(`var a=function(){return"x"},b=[1,2,3].map(function(n){return n*2});`, 2000) +
	`console.log("TO KEEP IN BUNDLE SYNC IMPORT","TO KEEP IN BUNDLE SYNC REQUIRE DESTRUCTURING",` +
	`"TO KEEP IN BUNDLE SYNC REQUIRE MODULE","TO KEEP IN BUNDLE SYNC REQUIRE CHAINING");`

func benchArtifacts() adapter.ArtifactSet {
	return adapter.ArtifactSet{
		"index":                       minifiedIndex,
		"assets/file-async-await-a1":  "TO KEEP IN BUNDLE TOP LEVEL AWAITED",
		"assets/file-async-module-b2": "TO KEEP IN BUNDLE ASYNC WHOLE MODULE",
		"assets/file-async-picked-c3": "TO KEEP IN BUNDLE ASYNC IMPORTED PICKED",
		"assets/chunk-d4":             strings.Repeat("x", 4096),
	}
}

func BenchmarkDefaultScenarioLoad(b *testing.B) {
	for b.Loop() {
		if _, err := conformance.DefaultScenario(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkAnalyze(b *testing.B) {
	s, err := conformance.DefaultScenario()
	if err != nil {
		b.Fatal(err)
	}
	artifacts := benchArtifacts()

	for b.Loop() {
		conformance.Analyze(artifacts, s, "rollup")
	}
}

func BenchmarkCycle(b *testing.B) {
	s, err := conformance.DefaultScenario()
	if err != nil {
		b.Fatal(err)
	}

	reg := testRegistry(b, "alpha", "beta")
	artifacts := benchArtifacts()
	adapters := []adapter.Adapter{&staticAdapter{id: "alpha", set: artifacts}, &staticAdapter{id: "beta", set: artifacts}}
	r, err := NewRunner(reg, adapters, Options{Runs: 1}, WithScenario(s), WithTempRoot(b.TempDir()))
	if err != nil {
		b.Fatal(err)
	}

	for b.Loop() {
		r.Cycle(context.Background())
	}
}

func BenchmarkCompute(b *testing.B) {
	samples := make([]float64, 1000)
	for i := range samples {
		samples[i] = float64((i * 7919) % 1000)
	}

	for b.Loop() {
		stats.Compute(samples)
	}
}

type staticAdapter struct {
	id  string
	set adapter.ArtifactSet
}

func (s *staticAdapter) ID() string { return s.id }

func (s *staticAdapter) Build(context.Context, string, string, adapter.Options) (*adapter.BuildResult, error) {
	return &adapter.BuildResult{Artifacts: s.set, Elapsed: 1}, nil
}
