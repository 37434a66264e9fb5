// SPDX-License-Identifier: MPL-2.0

package benchmark

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/shakebench/shakebench/internal/adapter"
	"github.com/shakebench/shakebench/internal/bundler"
	"github.com/shakebench/shakebench/internal/clock"
	"github.com/shakebench/shakebench/internal/conformance"
	"github.com/shakebench/shakebench/internal/series"
)

// Failure policies.
const (
	// FailRepetition nulls every backend of a repetition in which any
	// backend failed to build.
	FailRepetition FailurePolicy = "repetition"
	// FailBackend nulls only the failing backend.
	FailBackend FailurePolicy = "backend"
)

// DefaultRuns is the number of measured repetitions per session.
const DefaultRuns = 25

var (
	// ErrNoAdapters is returned when a runner has nothing to run.
	ErrNoAdapters = errors.New("no backends to run")
	// ErrAdapterMismatch is returned when an adapter has no registry entry.
	ErrAdapterMismatch = errors.New("adapter has no registry entry")
	// ErrAlreadyRun is returned by a second Run call on the same Runner.
	ErrAlreadyRun = errors.New("runner already used")
)

type (
	// FailurePolicy decides how a build failure affects the repetition.
	FailurePolicy string

	// Options configure a session.
	Options struct {
		Runs    int
		Warmup  bool
		Entry   string
		WorkDir string
		Policy  FailurePolicy
		// Tee receives backend console output (verbose mode).
		Tee io.Writer
	}

	// Finalizer receives the completed series while the runner is in the
	// Finalizing state.
	Finalizer func(*series.SampleSeries)

	// Runner executes a benchmark session.
	Runner struct {
		registry  *bundler.Registry
		adapters  []adapter.Adapter
		scenario  *conformance.Scenario
		opts      Options
		logger    *log.Logger
		clock     clock.Clock
		progress  io.Writer
		tempRoot  string
		finalizer Finalizer

		mu    sync.Mutex
		state State
	}

	// Option configures a Runner.
	Option func(*Runner)
)

// WithScenario verifies every build against s; failing builds yield no sample.
func WithScenario(s *conformance.Scenario) Option {
	return func(r *Runner) { r.scenario = s }
}

// WithLogger sets the logger for warnings and debug output.
func WithLogger(l *log.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithClock sets the clock used for total session time.
func WithClock(c clock.Clock) Option {
	return func(r *Runner) { r.clock = c }
}

// WithProgress sets where progress lines are written.
func WithProgress(w io.Writer) Option {
	return func(r *Runner) { r.progress = w }
}

// WithTempRoot sets the parent of the per-invocation output directories.
func WithTempRoot(dir string) Option {
	return func(r *Runner) { r.tempRoot = dir }
}

// WithFinalizer registers f to run in the Finalizing state.
func WithFinalizer(f Finalizer) Option {
	return func(r *Runner) { r.finalizer = f }
}

// NewRunner creates a runner. adapters run in registry order; every adapter
// must have a registry entry.
func NewRunner(reg *bundler.Registry, adapters []adapter.Adapter, opts Options, options ...Option) (*Runner, error) {
	if len(adapters) == 0 {
		return nil, ErrNoAdapters
	}

	byID := make(map[string]adapter.Adapter, len(adapters))
	for _, a := range adapters {
		if _, ok := reg.Get(a.ID()); !ok {
			return nil, fmt.Errorf("%w: %s", ErrAdapterMismatch, a.ID())
		}
		byID[a.ID()] = a
	}
	ordered := make([]adapter.Adapter, 0, len(adapters))
	for _, id := range reg.IDs() {
		if a, ok := byID[id]; ok {
			ordered = append(ordered, a)
		}
	}

	if opts.Runs < 1 {
		opts.Runs = DefaultRuns
	}
	if opts.Policy == "" {
		opts.Policy = FailRepetition
	}

	r := &Runner{
		registry: reg,
		adapters: ordered,
		opts:     opts,
		logger:   log.New(io.Discard),
		clock:    clock.Real{},
		progress: io.Discard,
	}
	for _, o := range options {
		o(r)
	}
	return r, nil
}

// State returns the current session state.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Runner) setState(s State) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

// Backends returns the backend ids in run order.
func (r *Runner) Backends() []string {
	ids := make([]string, len(r.adapters))
	for i, a := range r.adapters {
		ids[i] = a.ID()
	}
	return ids
}

// Run executes the session and returns the collected series. Per-run
// failures are logged and recorded as null samples. Cancelling ctx stops
// the session between backends and returns the partial series with the
// context error.
func (r *Runner) Run(ctx context.Context) (*series.SampleSeries, error) {
	r.mu.Lock()
	if r.state != StateIdle {
		r.mu.Unlock()
		return nil, ErrAlreadyRun
	}
	r.mu.Unlock()

	s := series.New(r.Backends())

	if r.opts.Warmup {
		r.setState(StateWarmingUp)
		fmt.Fprintln(r.progress, "Warming up...")
		r.Cycle(ctx)
	}

	r.setState(StateRunning)
	start := r.clock.Now()
	for i := 1; i <= r.opts.Runs; i++ {
		if err := ctx.Err(); err != nil {
			r.setState(StateDone)
			return s, err
		}

		fmt.Fprintf(r.progress, "Running test %d/%d...\n", i, r.opts.Runs)
		cycle := r.Cycle(ctx)
		if err := ctx.Err(); err != nil {
			r.setState(StateDone)
			return s, err
		}

		r.warn(i, cycle)
		s.Append(cycle.Sample(r.opts.Policy))
		fmt.Fprintf(r.progress, "✅ Completed run %d/%d (%.1f%%)\n", i, r.opts.Runs, float64(i)*100/float64(r.opts.Runs))
	}

	r.setState(StateFinalizing)
	fmt.Fprintf(r.progress, "\n🎉 Benchmark completed in %.2f seconds\n", r.clock.Since(start).Seconds())
	if r.finalizer != nil {
		r.finalizer(s)
	}

	r.setState(StateDone)
	return s, nil
}

func (r *Runner) warn(run int, cycle CycleResult) {
	nullAll := r.opts.Policy == FailRepetition && cycle.BuildFailed()
	for _, o := range cycle.Outcomes {
		switch {
		case o.Err != nil:
			r.logger.Warn("could not record timing", "backend", o.Backend, "run", run, "error", o.Err)
		case nullAll:
			r.logger.Warn("discarding timing, another backend failed to build", "backend", o.Backend, "run", run)
		}
	}
}
