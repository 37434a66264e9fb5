// SPDX-License-Identifier: MPL-2.0

package adapter

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"strings"

	"github.com/shakebench/shakebench/internal/clock"
	"github.com/shakebench/shakebench/internal/runtime"
)

// Environment variables exposed to backend command lines.
const (
	EnvEntry    = "ENTRY"
	EnvEntryDir = "ENTRY_DIR"
	EnvOutDir   = "OUTDIR"
	EnvBackend  = "BACKEND"
)

// maxErrTail bounds how much backend stderr is carried into a BuildError.
const maxErrTail = 2048

type (
	// CommandAdapter runs a backend CLI and harvests its output directory.
	CommandAdapter struct {
		id       string
		command  string
		runtime  runtime.RuntimeType
		runtimes *runtime.Registry
		env      map[string]string
		envFile  string
		exts     []string
		clock    clock.Clock
	}

	// CommandOption configures a CommandAdapter.
	CommandOption func(*CommandAdapter)
)

// WithRuntime selects the runtime that interprets the command line.
func WithRuntime(typ runtime.RuntimeType) CommandOption {
	return func(a *CommandAdapter) { a.runtime = typ }
}

// WithRuntimeRegistry sets the runtime registry.
func WithRuntimeRegistry(r *runtime.Registry) CommandOption {
	return func(a *CommandAdapter) { a.runtimes = r }
}

// WithEnv adds fixed environment variables.
func WithEnv(env map[string]string) CommandOption {
	return func(a *CommandAdapter) { maps.Copy(a.env, env) }
}

// WithEnvFile loads a dotenv file on every invocation. Its values are
// overridden by WithEnv entries.
func WithEnvFile(path string) CommandOption {
	return func(a *CommandAdapter) { a.envFile = path }
}

// WithExtensions sets the harvested artifact extensions.
func WithExtensions(exts ...string) CommandOption {
	return func(a *CommandAdapter) { a.exts = exts }
}

// WithClock sets the clock used to time invocations.
func WithClock(c clock.Clock) CommandOption {
	return func(a *CommandAdapter) { a.clock = c }
}

// NewCommandAdapter creates a command adapter for backend id.
func NewCommandAdapter(id, command string, opts ...CommandOption) *CommandAdapter {
	a := &CommandAdapter{
		id:      id,
		command: command,
		runtime: runtime.RuntimeTypeVirtual,
		env:     make(map[string]string),
		clock:   clock.Real{},
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.runtimes == nil {
		a.runtimes = runtime.DefaultRegistry()
	}
	return a
}

// ID returns the backend id.
func (a *CommandAdapter) ID() string { return a.id }

// Command returns the command line template.
func (a *CommandAdapter) Command() string { return a.command }

// Build runs the command line and harvests outDir.
func (a *CommandAdapter) Build(ctx context.Context, entryPath, outDir string, opts Options) (*BuildResult, error) {
	absOut, err := filepath.Abs(outDir)
	if err != nil {
		return nil, &BuildError{BackendID: a.id, Cause: err}
	}

	env, err := a.buildEnv(entryPath, absOut)
	if err != nil {
		return nil, &BuildError{BackendID: a.id, Cause: err}
	}

	start := a.clock.Now()
	res := a.runtimes.Execute(a.runtime, &runtime.ExecutionContext{
		Context: ctx,
		Script:  a.command,
		WorkDir: opts.WorkDir,
		Env:     env,
		Tee:     opts.Tee,
	})
	elapsed := a.clock.Since(start)

	if !res.Success() {
		return nil, &BuildError{BackendID: a.id, Cause: commandError(res)}
	}

	artifacts, err := Harvest(absOut, a.exts)
	if err != nil {
		return nil, &BuildError{BackendID: a.id, Cause: err}
	}
	if len(artifacts) == 0 {
		return nil, &BuildError{BackendID: a.id, Cause: errors.New("no artifacts written to output directory")}
	}

	return &BuildResult{Artifacts: artifacts, Elapsed: elapsed}, nil
}

func (a *CommandAdapter) buildEnv(entryPath, outDir string) (map[string]string, error) {
	env := make(map[string]string)
	if a.envFile != "" {
		if err := runtime.LoadEnvFile(env, a.envFile); err != nil {
			return nil, err
		}
	}
	maps.Copy(env, a.env)

	env[EnvEntry] = filepath.ToSlash(entryPath)
	env[EnvEntryDir] = filepath.ToSlash(filepath.Dir(entryPath))
	env[EnvOutDir] = outDir
	env[EnvBackend] = a.id
	return env, nil
}

func commandError(res *runtime.Result) error {
	if res.Error != nil {
		return res.Error
	}
	tail := strings.TrimSpace(res.ErrOutput)
	if len(tail) > maxErrTail {
		tail = "..." + tail[len(tail)-maxErrTail:]
	}
	if tail == "" {
		return fmt.Errorf("exit code %s", res.ExitCode)
	}
	return fmt.Errorf("exit code %s: %s", res.ExitCode, tail)
}
