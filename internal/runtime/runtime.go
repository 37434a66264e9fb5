// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"fmt"
	"io"
	"slices"
)

// Runtime type constants.
const (
	RuntimeTypeNative  RuntimeType = "native"
	RuntimeTypeVirtual RuntimeType = "virtual"
)

type (
	// RuntimeType identifies a runtime.
	//
	//nolint:revive // RuntimeType is more descriptive than Type for external callers
	RuntimeType string

	// ExecutionContext is one command invocation.
	ExecutionContext struct {
		// Context cancels the invocation.
		Context context.Context
		// Script is the shell command line to run.
		Script string
		// WorkDir is the working directory; empty means the current one.
		WorkDir string
		// Env is layered over the host environment.
		Env map[string]string
		// Tee, when set, additionally receives stdout and stderr as they
		// are produced (verbose mode).
		Tee io.Writer
	}

	// Runtime executes command lines and captures their output.
	Runtime interface {
		// Name returns the runtime name.
		Name() string
		// Available reports whether the runtime can run on this host.
		Available() bool
		// Validate checks the command line before execution.
		Validate(ctx *ExecutionContext) error
		// ExecuteCapture runs the command line and captures stdout/stderr.
		ExecuteCapture(ctx *ExecutionContext) *Result
	}

	// Registry holds the available runtimes.
	Registry struct {
		runtimes map[RuntimeType]Runtime
	}
)

// NewRegistry creates an empty runtime registry.
func NewRegistry() *Registry {
	return &Registry{runtimes: make(map[RuntimeType]Runtime)}
}

// DefaultRegistry returns a registry with the native and virtual runtimes.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(RuntimeTypeNative, NewNativeRuntime())
	r.Register(RuntimeTypeVirtual, NewVirtualRuntime())
	return r
}

// Register adds a runtime to the registry.
func (r *Registry) Register(typ RuntimeType, rt Runtime) {
	r.runtimes[typ] = rt
}

// Get returns a runtime by type.
func (r *Registry) Get(typ RuntimeType) (Runtime, error) {
	rt, ok := r.runtimes[typ]
	if !ok {
		return nil, fmt.Errorf("runtime '%s' not registered", typ)
	}
	return rt, nil
}

// Available returns the available runtime types, sorted.
func (r *Registry) Available() []RuntimeType {
	var types []RuntimeType
	for typ, rt := range r.runtimes {
		if rt.Available() {
			types = append(types, typ)
		}
	}
	slices.Sort(types)
	return types
}

// Execute validates and runs ctx with the runtime of the given type.
func (r *Registry) Execute(typ RuntimeType, ctx *ExecutionContext) *Result {
	rt, err := r.Get(typ)
	if err != nil {
		return NewErrorResult(1, err)
	}

	if !rt.Available() {
		return NewErrorResult(1, fmt.Errorf("runtime '%s' is not available on this system", rt.Name()))
	}

	if err := rt.Validate(ctx); err != nil {
		return NewErrorResult(1, err)
	}

	return rt.ExecuteCapture(ctx)
}

func (ctx *ExecutionContext) context() context.Context {
	if ctx.Context == nil {
		return context.Background()
	}
	return ctx.Context
}

func (ctx *ExecutionContext) outputs(stdout, stderr io.Writer) (io.Writer, io.Writer) {
	if ctx.Tee == nil {
		return stdout, stderr
	}
	return io.MultiWriter(stdout, ctx.Tee), io.MultiWriter(stderr, ctx.Tee)
}
