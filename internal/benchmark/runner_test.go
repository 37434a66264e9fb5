// SPDX-License-Identifier: MPL-2.0

package benchmark

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/shakebench/shakebench/internal/adapter"
	"github.com/shakebench/shakebench/internal/bundler"
	"github.com/shakebench/shakebench/internal/clock"
	"github.com/shakebench/shakebench/internal/conformance"
	"github.com/shakebench/shakebench/internal/series"
)

// step is one scripted fake build.
type step struct {
	ms    float64
	text  string
	err   error
	panic string
}

type fakeAdapter struct {
	id    string
	steps []step

	mu      sync.Mutex
	calls   int
	outDirs []string
}

func (f *fakeAdapter) ID() string { return f.id }

func (f *fakeAdapter) Build(_ context.Context, _, outDir string, _ adapter.Options) (*adapter.BuildResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.outDirs = append(f.outDirs, outDir)
	s := f.steps[f.calls%len(f.steps)]
	f.calls++
	if s.panic != "" {
		panic(s.panic)
	}
	if s.err != nil {
		return nil, &adapter.BuildError{BackendID: f.id, Cause: s.err}
	}
	text := s.text
	if text == "" {
		text = "TO KEEP IN BUNDLE SYNC"
	}
	return &adapter.BuildResult{
		Artifacts: adapter.ArtifactSet{"index": text},
		Elapsed:   time.Duration(s.ms * float64(time.Millisecond)),
	}, nil
}

var errCrash = errors.New("segmentation fault")

func testRegistry(tb testing.TB, ids ...string) *bundler.Registry {
	tb.Helper()
	descs := make([]bundler.Descriptor, len(ids))
	for i, id := range ids {
		descs[i] = bundler.Descriptor{ID: id, Package: id, Version: "1.0.0"}
	}
	reg, err := bundler.NewRegistry(descs...)
	if err != nil {
		tb.Fatal(err)
	}
	return reg
}

func column(s *series.SampleSeries, id string) []*float64 {
	out := make([]*float64, len(s.Runs))
	for i, run := range s.Runs {
		out[i] = run[id]
	}
	return out
}

func TestRunner_CollectsSamples(t *testing.T) {
	t.Parallel()

	reg := testRegistry(t, "alpha", "beta")
	alpha := &fakeAdapter{id: "alpha", steps: []step{{ms: 10}, {ms: 20}, {ms: 30}}}
	beta := &fakeAdapter{id: "beta", steps: []step{{ms: 100}}}

	var progress bytes.Buffer
	r, err := NewRunner(reg, []adapter.Adapter{beta, alpha}, Options{Runs: 3}, WithProgress(&progress))
	if err != nil {
		t.Fatal(err)
	}

	s, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if diff := cmp.Diff([]float64{10, 20, 30}, s.Column("alpha")); diff != "" {
		t.Errorf("alpha column (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"alpha", "beta"}, s.Backends); diff != "" {
		t.Errorf("backends not in registry order (-want +got):\n%s", diff)
	}
	if r.State() != StateDone {
		t.Errorf("State() = %s, want done", r.State())
	}
	for _, want := range []string{"Running test 1/3...", "Completed run 3/3 (100.0%)", "Benchmark completed in"} {
		if !strings.Contains(progress.String(), want) {
			t.Errorf("progress missing %q:\n%s", want, progress.String())
		}
	}
}

func TestRunner_WarmupIsDiscarded(t *testing.T) {
	t.Parallel()

	reg := testRegistry(t, "alpha")
	alpha := &fakeAdapter{id: "alpha", steps: []step{{ms: 999}, {ms: 10}, {ms: 11}}}

	r, err := NewRunner(reg, []adapter.Adapter{alpha}, Options{Runs: 2, Warmup: true})
	if err != nil {
		t.Fatal(err)
	}
	s, err := r.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]float64{10, 11}, s.Column("alpha")); diff != "" {
		t.Errorf("column (-want +got):\n%s", diff)
	}
	if alpha.calls != 3 {
		t.Errorf("calls = %d, want 3", alpha.calls)
	}
}

func TestRunner_CrashDoesNotStopLaterRuns(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		policy   FailurePolicy
		wantBeta []*float64
	}{
		{
			name:     "repetition policy nulls the whole repetition",
			policy:   FailRepetition,
			wantBeta: []*float64{series.Ms(5), nil, series.Ms(5)},
		},
		{
			name:     "backend policy nulls only the crashing backend",
			policy:   FailBackend,
			wantBeta: []*float64{series.Ms(5), series.Ms(5), series.Ms(5)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			reg := testRegistry(t, "alpha", "beta")
			alpha := &fakeAdapter{id: "alpha", steps: []step{{ms: 10}, {err: errCrash}, {ms: 30}}}
			beta := &fakeAdapter{id: "beta", steps: []step{{ms: 5}}}

			var logs bytes.Buffer
			r, err := NewRunner(reg, []adapter.Adapter{alpha, beta}, Options{Runs: 3, Policy: tt.policy},
				WithLogger(log.New(&logs)))
			if err != nil {
				t.Fatal(err)
			}
			s, err := r.Run(context.Background())
			if err != nil {
				t.Fatal(err)
			}

			if s.Len() != 3 {
				t.Fatalf("Len() = %d, want 3", s.Len())
			}
			if diff := cmp.Diff([]*float64{series.Ms(10), nil, series.Ms(30)}, column(s, "alpha")); diff != "" {
				t.Errorf("alpha (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantBeta, column(s, "beta")); diff != "" {
				t.Errorf("beta (-want +got):\n%s", diff)
			}
			if !strings.Contains(logs.String(), "segmentation fault") {
				t.Errorf("warning not logged:\n%s", logs.String())
			}
		})
	}
}

func TestRunner_PanicIsABuildError(t *testing.T) {
	t.Parallel()

	reg := testRegistry(t, "alpha")
	alpha := &fakeAdapter{id: "alpha", steps: []step{{ms: 10}, {panic: "backend crashed"}, {ms: 30}}}

	var logs bytes.Buffer
	r, err := NewRunner(reg, []adapter.Adapter{alpha}, Options{Runs: 3}, WithLogger(log.New(&logs)))
	if err != nil {
		t.Fatal(err)
	}
	s, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if diff := cmp.Diff([]*float64{series.Ms(10), nil, series.Ms(30)}, column(s, "alpha")); diff != "" {
		t.Errorf("alpha (-want +got):\n%s", diff)
	}
	if !strings.Contains(logs.String(), "backend crashed") {
		t.Errorf("panic not logged:\n%s", logs.String())
	}

	out := r.runBackend(context.Background(), &fakeAdapter{id: "alpha", steps: []step{{panic: "boom"}}})
	if !errors.Is(out.Err, adapter.ErrBuild) {
		t.Errorf("runBackend() error = %v, want a BuildError", out.Err)
	}
}

func TestRunner_ConformanceFailureNullsBackend(t *testing.T) {
	t.Parallel()

	scenario, err := conformance.LoadScenario([]byte(`
name: "sync"
checks: [{name: "drops dead sync", expect: [{artifact: "index", absent: ["SHOULD BE REMOVED FROM BUNDLE SYNC"]}]}]
`), "sync.cue")
	if err != nil {
		t.Fatal(err)
	}

	reg := testRegistry(t, "clean", "leaky")
	clean := &fakeAdapter{id: "clean", steps: []step{{ms: 10}}}
	leaky := &fakeAdapter{id: "leaky", steps: []step{{ms: 20, text: "SHOULD BE REMOVED FROM BUNDLE SYNC"}}}

	r, err := NewRunner(reg, []adapter.Adapter{clean, leaky}, Options{Runs: 2}, WithScenario(scenario))
	if err != nil {
		t.Fatal(err)
	}

	cycle := r.Cycle(context.Background())
	if !errors.Is(cycle.Outcomes[1].Err, ErrExtraction) {
		t.Errorf("leaky error = %v, want ErrExtraction", cycle.Outcomes[1].Err)
	}
	if cycle.BuildFailed() {
		t.Error("BuildFailed() = true for a conformance failure")
	}

	s, err := r.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got := s.Valid("clean"); got != 2 {
		t.Errorf("clean samples = %d, want 2", got)
	}
	if got := s.Valid("leaky"); got != 0 {
		t.Errorf("leaky samples = %d, want 0", got)
	}
}

func TestRunner_StatesAndFinalizer(t *testing.T) {
	t.Parallel()

	reg := testRegistry(t, "alpha")
	var r *Runner
	var seen []State
	alpha := &observingAdapter{id: "alpha", observe: func() { seen = append(seen, r.State()) }}

	var finalized *series.SampleSeries
	var finalState State
	var err error
	r, err = NewRunner(reg, []adapter.Adapter{alpha}, Options{Runs: 1, Warmup: true},
		WithFinalizer(func(s *series.SampleSeries) {
			finalized = s
			finalState = r.State()
		}))
	if err != nil {
		t.Fatal(err)
	}
	if r.State() != StateIdle {
		t.Errorf("initial State() = %s, want idle", r.State())
	}

	s, err := r.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]State{StateWarmingUp, StateRunning}, seen); diff != "" {
		t.Errorf("states seen by adapter (-want +got):\n%s", diff)
	}
	if finalized != s || finalState != StateFinalizing {
		t.Errorf("finalizer got series=%p state=%s", finalized, finalState)
	}
	if _, err := r.Run(context.Background()); !errors.Is(err, ErrAlreadyRun) {
		t.Errorf("second Run() error = %v, want ErrAlreadyRun", err)
	}
}

type observingAdapter struct {
	id      string
	observe func()
}

func (o *observingAdapter) ID() string { return o.id }

func (o *observingAdapter) Build(context.Context, string, string, adapter.Options) (*adapter.BuildResult, error) {
	o.observe()
	return &adapter.BuildResult{Artifacts: adapter.ArtifactSet{"index": "x"}, Elapsed: time.Millisecond}, nil
}

func TestRunner_OutputDirsAreRemoved(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	reg := testRegistry(t, "alpha")
	alpha := &fakeAdapter{id: "alpha", steps: []step{{ms: 1}, {err: errCrash}}}

	r, err := NewRunner(reg, []adapter.Adapter{alpha}, Options{Runs: 2}, WithTempRoot(root))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	if len(alpha.outDirs) != 2 || alpha.outDirs[0] == alpha.outDirs[1] {
		t.Errorf("outDirs = %v, want two distinct directories", alpha.outDirs)
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("temp root not cleaned: %d entries left", len(entries))
	}
}

func TestRunner_Cancelled(t *testing.T) {
	t.Parallel()

	reg := testRegistry(t, "alpha")
	alpha := &fakeAdapter{id: "alpha", steps: []step{{ms: 1}}}
	r, err := NewRunner(reg, []adapter.Adapter{alpha}, Options{Runs: 5}, WithClock(clock.NewFake(time.Time{})))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s, err := r.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
}

func TestNewRunner_Validation(t *testing.T) {
	t.Parallel()

	reg := testRegistry(t, "alpha")
	if _, err := NewRunner(reg, nil, Options{}); !errors.Is(err, ErrNoAdapters) {
		t.Errorf("no adapters error = %v", err)
	}
	stray := &fakeAdapter{id: "stray", steps: []step{{ms: 1}}}
	if _, err := NewRunner(reg, []adapter.Adapter{stray}, Options{}); !errors.Is(err, ErrAdapterMismatch) {
		t.Errorf("stray adapter error = %v", err)
	}

	r, err := NewRunner(reg, []adapter.Adapter{&fakeAdapter{id: "alpha", steps: []step{{ms: 1}}}}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if r.opts.Runs != DefaultRuns || r.opts.Policy != FailRepetition {
		t.Errorf("defaults = %+v", r.opts)
	}
}
