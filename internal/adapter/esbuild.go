// SPDX-License-Identifier: MPL-2.0

package adapter

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/shakebench/shakebench/internal/clock"
)

// EsbuildAdapter bundles with esbuild's Go build API in-process.
type EsbuildAdapter struct {
	id    string
	clock clock.Clock
}

// NewEsbuildAdapter creates an esbuild adapter for backend id.
func NewEsbuildAdapter(id string, clk clock.Clock) *EsbuildAdapter {
	if clk == nil {
		clk = clock.Real{}
	}
	return &EsbuildAdapter{id: id, clock: clk}
}

// ID returns the backend id.
func (a *EsbuildAdapter) ID() string { return a.id }

// Build bundles entryPath with tree shaking and code splitting into ESM
// chunks. Output is kept in memory; outDir only anchors chunk paths.
func (a *EsbuildAdapter) Build(ctx context.Context, entryPath, outDir string, opts Options) (*BuildResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, &BuildError{BackendID: a.id, Cause: err}
	}

	workDir, err := absDir(opts.WorkDir)
	if err != nil {
		return nil, &BuildError{BackendID: a.id, Cause: err}
	}
	absOut, err := filepath.Abs(outDir)
	if err != nil {
		return nil, &BuildError{BackendID: a.id, Cause: err}
	}

	start := a.clock.Now()
	result := api.Build(api.BuildOptions{
		EntryPoints:   []string{entryPath},
		AbsWorkingDir: workDir,
		Bundle:        true,
		TreeShaking:   api.TreeShakingTrue,
		Splitting:     true,
		Format:        api.FormatESModule,
		Outdir:        absOut,
		Write:         false,
		LogLevel:      api.LogLevelSilent,
	})
	elapsed := a.clock.Since(start)

	if len(result.Errors) > 0 {
		return nil, &BuildError{BackendID: a.id, Cause: messagesError(result.Errors)}
	}

	artifacts := make(ArtifactSet, len(result.OutputFiles))
	for _, f := range result.OutputFiles {
		rel, err := filepath.Rel(absOut, f.Path)
		if err != nil {
			return nil, &BuildError{BackendID: a.id, Cause: err}
		}
		rel = filepath.ToSlash(rel)
		if strings.HasSuffix(rel, ".map") {
			continue
		}
		artifacts[artifactName(rel)] = string(f.Contents)
	}
	if len(artifacts) == 0 {
		return nil, &BuildError{BackendID: a.id, Cause: errors.New("no output files produced")}
	}

	return &BuildResult{Artifacts: artifacts, Elapsed: elapsed}, nil
}

func absDir(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve work dir: %w", err)
	}
	return abs, nil
}

func messagesError(msgs []api.Message) error {
	errs := make([]error, 0, len(msgs))
	for _, m := range msgs {
		if m.Location != nil {
			errs = append(errs, fmt.Errorf("%s:%d:%d: %s", m.Location.File, m.Location.Line, m.Location.Column, m.Text))
			continue
		}
		errs = append(errs, errors.New(m.Text))
	}
	return errors.Join(errs...)
}
