// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/shakebench/shakebench/internal/adapter"
	"github.com/shakebench/shakebench/internal/bundler"
	"github.com/shakebench/shakebench/internal/clock"
	"github.com/shakebench/shakebench/internal/config"
	"github.com/shakebench/shakebench/internal/conformance"
	"github.com/shakebench/shakebench/internal/issue"
	"github.com/shakebench/shakebench/internal/runtime"
)

type (
	// App wires CLI services and shared dependencies. It is the composition
	// root for the CLI layer: every Cobra handler receives an App reference.
	App struct {
		Config   ConfigProvider
		Clock    clock.Clock
		Runtimes *runtime.Registry
		stdout   io.Writer
		stderr   io.Writer
		opts     rootOptions
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config   ConfigProvider
		Clock    clock.Clock
		Runtimes *runtime.Registry
		Stdout   io.Writer
		Stderr   io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Resolve(ctx context.Context, opts config.LoadOptions) (*config.LoadResult, error)
	}

	rootOptions struct {
		verbose    bool
		configPath string
		color      string
	}

	// session is everything a command needs to build with the configured
	// backends.
	session struct {
		cfg      *config.Config
		registry *bundler.Registry
		adapters []adapter.Adapter
		scenario *conformance.Scenario
		logger   *log.Logger
		verbose  bool
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Clock == nil {
		deps.Clock = clock.Real{}
	}
	if deps.Runtimes == nil {
		deps.Runtimes = runtime.DefaultRegistry()
	}

	return &App{
		Config:   deps.Config,
		Clock:    deps.Clock,
		Runtimes: deps.Runtimes,
		stdout:   deps.Stdout,
		stderr:   deps.Stderr,
	}, nil
}

// resolveConfig resolves the effective configuration as written and applies
// its UI settings where no flag overrides them.
func (a *App) resolveConfig(ctx context.Context) (*config.LoadResult, error) {
	res, err := a.Config.Resolve(ctx, config.LoadOptions{ConfigFilePath: a.opts.configPath})
	if err != nil {
		return nil, err
	}
	if a.opts.color == "" {
		applyColorMode(string(res.Config.UI.Color))
	}
	return res, nil
}

// loadConfig is resolveConfig with every file path anchored to work_dir.
func (a *App) loadConfig(ctx context.Context) (*config.LoadResult, error) {
	res, err := a.resolveConfig(ctx)
	if err != nil {
		return nil, err
	}
	return &config.LoadResult{Config: res.Config.Anchored(), Path: res.Path}, nil
}

func (a *App) verbose(cfg *config.Config) bool {
	return a.opts.verbose || (cfg != nil && cfg.UI.Verbose)
}

// loadRegistry resolves the backend registry for cfg. selected overrides
// the configured backend list when non-empty.
func (a *App) loadRegistry(cfg *config.Config, selected []string) (*bundler.Registry, error) {
	reg, err := bundler.LoadRegistry(catalogue(cfg), cfg.PackageJSON)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("resolve backend versions").
			WithResource(cfg.PackageJSON).
			WithSuggestion("Check that package.json is valid JSON").
			Wrap(err).
			BuildError()
	}

	ids := selected
	if len(ids) == 0 {
		ids = cfg.BackendIDs()
	}
	if len(ids) == 0 {
		return reg, nil
	}

	sub, err := reg.Select(ids)
	if err != nil {
		ec := issue.NewErrorContext().WithOperation("select backends")
		if errors.Is(err, bundler.ErrUnknownBackend) {
			ec = ec.WithIssue(issue.UnknownBackendId)
		}
		return nil, ec.
			WithSuggestion("Run 'shakebench backends' to list the registered backends").
			WithSuggestion("Declare custom backends with a command in the config backends list").
			Wrap(err).
			BuildError()
	}
	return sub, nil
}

// loadSession resolves config, registry, adapters and scenario.
func (a *App) loadSession(ctx context.Context, selected []string) (*session, error) {
	res, err := a.loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	cfg := res.Config
	verbose := a.verbose(cfg)
	logger := newLogger(a.stderr, verbose)
	logger.Debug("configuration loaded", "path", res.Path)

	reg, err := a.loadRegistry(cfg, selected)
	if err != nil {
		return nil, err
	}

	scenario, err := loadScenario(cfg)
	if err != nil {
		return nil, err
	}

	adapters, err := adapter.NewAll(reg.IDs(), adapterOverrides(cfg), adapter.Deps{
		Clock:    a.Clock,
		Runtimes: a.Runtimes,
	})
	if err != nil {
		return nil, err
	}
	for _, ad := range adapters {
		if c, ok := ad.(*adapter.CommandAdapter); ok {
			logger.Debug("backend command", "backend", c.ID(), "command", c.Command())
		}
	}

	return &session{
		cfg:      cfg,
		registry: reg,
		adapters: adapters,
		scenario: scenario,
		logger:   logger,
		verbose:  verbose,
	}, nil
}

// explain renders the catalogued issue linked to err, if any.
func (a *App) explain(err error) {
	if id, ok := issue.IdOf(err); ok {
		a.renderIssue(id)
	}
}

// renderIssue prints the markdown explanation for a known problem class.
func (a *App) renderIssue(id issue.Id) {
	is := issue.Get(id)
	if is == nil {
		return
	}
	rendered, err := is.Render("dark")
	if err != nil {
		return
	}
	_, _ = io.WriteString(a.stderr, rendered)
}

// catalogue extends the built-in catalogue with the configured backends.
// A configured package replaces the built-in one for that id.
func catalogue(cfg *config.Config) []bundler.Entry {
	entries := bundler.DefaultCatalogue()
	index := make(map[string]int, len(entries))
	for i, e := range entries {
		index[e.ID] = i
	}

	for _, b := range cfg.Backends {
		if i, ok := index[b.ID]; ok {
			if b.Package != "" {
				entries[i].Package = b.Package
			}
			continue
		}
		pkg := b.Package
		if pkg == "" {
			pkg = b.ID
		}
		index[b.ID] = len(entries)
		entries = append(entries, bundler.Entry{ID: b.ID, Package: pkg})
	}
	return entries
}

// adapterOverrides converts the configured backends into adapter specs.
func adapterOverrides(cfg *config.Config) map[string]adapter.Spec {
	out := make(map[string]adapter.Spec, len(cfg.Backends))
	for _, b := range cfg.Backends {
		out[b.ID] = adapter.Spec{
			ID:      b.ID,
			Kind:    adapter.Kind(b.Adapter),
			Command: b.Command,
			Runtime: runtime.RuntimeType(b.Runtime),
			EnvFile: b.EnvFile,
			Env:     b.Env,
		}
	}
	return out
}

func loadScenario(cfg *config.Config) (*conformance.Scenario, error) {
	if cfg.Scenario == "" {
		return conformance.DefaultScenario()
	}
	s, err := conformance.LoadScenarioFile(cfg.Scenario)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("load scenario").
			WithResource(cfg.Scenario).
			WithIssue(issue.ScenarioLoadFailedId).
			WithSuggestion("Remove the scenario setting to use the built-in tree-shaking checks").
			Wrap(err).
			BuildError()
	}
	return s, nil
}
