// SPDX-License-Identifier: MPL-2.0

package benchmark

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shakebench/shakebench/internal/adapter"
	"github.com/shakebench/shakebench/internal/conformance"
	"github.com/shakebench/shakebench/internal/series"
)

type (
	// BackendOutcome is one backend's part of a cycle.
	BackendOutcome struct {
		Backend string
		// Elapsed is set only when the build succeeded and passed
		// conformance.
		Elapsed   time.Duration
		Artifacts adapter.ArtifactSet
		// Verdict is nil when the build failed or no scenario is set.
		Verdict *conformance.Verdict
		// Err is a *adapter.BuildError or *ExtractionError.
		Err error
	}

	// CycleResult is one full pass over every backend.
	CycleResult struct {
		Outcomes []BackendOutcome
	}
)

// Ms returns Elapsed in milliseconds.
func (o BackendOutcome) Ms() float64 {
	return float64(o.Elapsed) / float64(time.Millisecond)
}

// OK reports whether the outcome yields a timing sample.
func (o BackendOutcome) OK() bool { return o.Err == nil }

// BuildFailed reports whether any backend failed to build.
func (c CycleResult) BuildFailed() bool {
	for _, o := range c.Outcomes {
		if errors.Is(o.Err, adapter.ErrBuild) {
			return true
		}
	}
	return false
}

// Sample converts the cycle into a RunSample under policy.
func (c CycleResult) Sample(policy FailurePolicy) series.RunSample {
	sample := make(series.RunSample, len(c.Outcomes))
	nullAll := policy == FailRepetition && c.BuildFailed()
	for _, o := range c.Outcomes {
		if nullAll || !o.OK() {
			sample[o.Backend] = nil
			continue
		}
		sample[o.Backend] = series.Ms(o.Ms())
	}
	return sample
}

// Cycle builds and verifies once with every backend, in registry order.
// Each invocation gets a fresh output directory that is removed afterwards.
func (r *Runner) Cycle(ctx context.Context) CycleResult {
	var res CycleResult
	for _, a := range r.adapters {
		res.Outcomes = append(res.Outcomes, r.runBackend(ctx, a))
	}
	return res
}

func (r *Runner) runBackend(ctx context.Context, a adapter.Adapter) BackendOutcome {
	out := BackendOutcome{Backend: a.ID()}

	outDir, err := os.MkdirTemp(r.tempRoot, "shakebench-"+a.ID()+"-")
	if err != nil {
		out.Err = &adapter.BuildError{BackendID: a.ID(), Cause: fmt.Errorf("failed to create output dir: %w", err)}
		return out
	}
	defer func() {
		if rmErr := os.RemoveAll(outDir); rmErr != nil {
			r.logger.Debug("failed to remove output dir", "dir", outDir, "error", rmErr)
		}
	}()

	r.logger.Debug("building", "backend", a.ID(), "entry", r.opts.Entry, "outDir", outDir)
	built, err := r.build(ctx, a, outDir)
	if err != nil {
		var buildErr *adapter.BuildError
		if !errors.As(err, &buildErr) {
			err = &adapter.BuildError{BackendID: a.ID(), Cause: err}
		}
		out.Err = err
		return out
	}
	if built == nil || built.Elapsed < 0 {
		out.Err = &ExtractionError{BackendID: a.ID(), Reason: "adapter reported no elapsed time"}
		return out
	}

	out.Artifacts = built.Artifacts
	r.logger.Debug("built", "backend", a.ID(), "artifacts", len(built.Artifacts), "bytes", built.Artifacts.Size(), "elapsed", built.Elapsed)

	if r.scenario != nil {
		v := conformance.Analyze(built.Artifacts, r.scenario, a.ID())
		out.Verdict = &v
		if failures := v.Failures(); len(failures) > 0 {
			names := make([]string, len(failures))
			for i, f := range failures {
				names[i] = fmt.Sprintf("%q (%s)", f.Name, f.Outcome)
			}
			out.Err = &ExtractionError{BackendID: a.ID(), Reason: "conformance failed: " + strings.Join(names, ", ")}
			return out
		}
	}

	out.Elapsed = built.Elapsed
	return out
}

// build invokes the adapter. A panic inside the adapter is a BuildError for
// this invocation only.
func (r *Runner) build(ctx context.Context, a adapter.Adapter, outDir string) (built *adapter.BuildResult, err error) {
	defer func() {
		if v := recover(); v != nil {
			built = nil
			err = &adapter.BuildError{BackendID: a.ID(), Cause: fmt.Errorf("panic: %v", v)}
		}
	}()
	return a.Build(ctx, r.opts.Entry, outDir, adapter.Options{WorkDir: r.opts.WorkDir, Tee: r.opts.Tee})
}
