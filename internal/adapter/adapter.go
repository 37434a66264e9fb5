// SPDX-License-Identifier: MPL-2.0

package adapter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"
)

// ErrBuild is the sentinel wrapped by every BuildError.
var ErrBuild = errors.New("backend build failed")

type (
	// ArtifactSet maps artifact name (slash path relative to the output
	// directory, without extension) to its source text.
	ArtifactSet map[string]string

	// BuildResult is the outcome of one successful build.
	BuildResult struct {
		Artifacts ArtifactSet
		Elapsed   time.Duration
	}

	// Options tune one invocation.
	Options struct {
		// WorkDir is the project directory the entry path is relative to.
		WorkDir string
		// Tee receives backend console output as it is produced.
		Tee io.Writer
	}

	// Adapter invokes one backend.
	Adapter interface {
		// ID returns the backend id this adapter builds with.
		ID() string
		// Build bundles entryPath into outDir and returns the produced
		// artifacts. Any invocation failure is returned as a *BuildError.
		Build(ctx context.Context, entryPath, outDir string, opts Options) (*BuildResult, error)
	}

	// BuildError reports a failed backend invocation.
	BuildError struct {
		BackendID string
		Cause     error
	}
)

func (e *BuildError) Error() string {
	return fmt.Sprintf("backend %s: build failed: %v", e.BackendID, e.Cause)
}

// Unwrap returns both ErrBuild and the cause so either can be matched.
func (e *BuildError) Unwrap() []error { return []error{ErrBuild, e.Cause} }

// Names returns the artifact names in lexical order.
func (a ArtifactSet) Names() []string {
	return slices.Sorted(maps.Keys(a))
}

// Find returns the first artifact, in lexical name order, for which match
// reports true.
func (a ArtifactSet) Find(match func(name string) bool) (string, string, bool) {
	for _, name := range a.Names() {
		if match(name) {
			return name, a[name], true
		}
	}
	return "", "", false
}

// Size returns the total byte size of all artifacts.
func (a ArtifactSet) Size() int {
	n := 0
	for _, text := range a {
		n += len(text)
	}
	return n
}

func artifactName(rel string) string {
	rel = strings.ReplaceAll(rel, "\\", "/")
	if i := strings.LastIndexByte(rel, '.'); i > strings.LastIndexByte(rel, '/') {
		rel = rel[:i]
	}
	return rel
}
