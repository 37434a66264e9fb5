// SPDX-License-Identifier: MPL-2.0

package adapter

import (
	"errors"
	"fmt"
	"maps"

	"github.com/shakebench/shakebench/internal/clock"
	"github.com/shakebench/shakebench/internal/runtime"
)

// Adapter kinds.
const (
	KindEsbuild Kind = "esbuild"
	KindCommand Kind = "command"
)

// ErrUnknownKind is returned for an unsupported adapter kind.
var ErrUnknownKind = errors.New("unknown adapter kind")

type (
	// Kind selects the adapter implementation for a backend.
	Kind string

	// Spec describes how to build with one backend.
	Spec struct {
		ID      string
		Kind    Kind
		Command string
		Runtime runtime.RuntimeType
		EnvFile string
		Env     map[string]string
	}

	// Deps are the shared collaborators handed to every adapter.
	Deps struct {
		Clock    clock.Clock
		Runtimes *runtime.Registry
	}
)

// DefaultSpecs returns the built-in invocation for every catalogue backend.
// Command lines read ENTRY, ENTRY_DIR and OUTDIR from the environment.
// rsbuild has no CLI flag for the output path, so the project's
// rsbuild.config must read process.env.OUTDIR.
func DefaultSpecs() map[string]Spec {
	cmd := func(id, line string) Spec {
		return Spec{ID: id, Kind: KindCommand, Command: line, Runtime: runtime.RuntimeTypeVirtual}
	}
	return map[string]Spec{
		"esbuild":  {ID: "esbuild", Kind: KindEsbuild},
		"parcel":   cmd("parcel", `npx parcel build "$ENTRY" --dist-dir "$OUTDIR" --no-cache --no-source-maps`),
		"rollup":   cmd("rollup", `npx rollup "$ENTRY" --dir "$OUTDIR" --format es`),
		"rspack":   cmd("rspack", `npx rspack build --entry "./$ENTRY" --output-path "$OUTDIR" --mode production`),
		"vite":     cmd("vite", `npx vite build "$ENTRY_DIR" --outDir "$OUTDIR" --emptyOutDir --logLevel silent`),
		"rolldown": cmd("rolldown", `npx rolldown "$ENTRY" --dir "$OUTDIR"`),
		"rsbuild":  cmd("rsbuild", `npx rsbuild build`),
	}
}

// Merge overlays the non-empty fields of override on base.
func Merge(base, override Spec) Spec {
	out := base
	if override.ID != "" {
		out.ID = override.ID
	}
	if override.Kind != "" {
		out.Kind = override.Kind
	}
	if override.Command != "" {
		out.Command = override.Command
		if out.Kind == "" {
			out.Kind = KindCommand
		}
	}
	if override.Runtime != "" {
		out.Runtime = override.Runtime
	}
	if override.EnvFile != "" {
		out.EnvFile = override.EnvFile
	}
	if len(override.Env) > 0 {
		env := make(map[string]string, len(base.Env)+len(override.Env))
		maps.Copy(env, base.Env)
		maps.Copy(env, override.Env)
		out.Env = env
	}
	return out
}

// New creates the adapter described by spec.
func New(spec Spec, deps Deps) (Adapter, error) {
	if deps.Clock == nil {
		deps.Clock = clock.Real{}
	}

	switch spec.Kind {
	case KindEsbuild:
		return NewEsbuildAdapter(spec.ID, deps.Clock), nil
	case KindCommand:
		if spec.Command == "" {
			return nil, fmt.Errorf("backend %s: command adapter needs a command line", spec.ID)
		}
		opts := []CommandOption{WithClock(deps.Clock), WithEnv(spec.Env)}
		if spec.Runtime != "" {
			opts = append(opts, WithRuntime(spec.Runtime))
		}
		if spec.EnvFile != "" {
			opts = append(opts, WithEnvFile(spec.EnvFile))
		}
		if deps.Runtimes != nil {
			opts = append(opts, WithRuntimeRegistry(deps.Runtimes))
		}
		return NewCommandAdapter(spec.ID, spec.Command, opts...), nil
	default:
		return nil, fmt.Errorf("backend %s: %w '%s'", spec.ID, ErrUnknownKind, spec.Kind)
	}
}

// NewAll creates one adapter per id, overlaying overrides on DefaultSpecs.
// An id with neither a default nor an override with a kind or command
// is an error.
func NewAll(ids []string, overrides map[string]Spec, deps Deps) ([]Adapter, error) {
	defaults := DefaultSpecs()
	adapters := make([]Adapter, 0, len(ids))
	for _, id := range ids {
		spec := Merge(defaults[id], overrides[id])
		spec.ID = id
		a, err := New(spec, deps)
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, a)
	}
	return adapters, nil
}
