// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

const (
	// FailurePolicyRepetition nulls every backend of a repetition in which
	// any backend failed to build.
	FailurePolicyRepetition FailurePolicy = "repetition"
	// FailurePolicyBackend nulls only the failing backend.
	FailurePolicyBackend FailurePolicy = "backend"

	// AdapterEsbuild builds in-process with esbuild's Go API.
	AdapterEsbuild AdapterKind = "esbuild"
	// AdapterCommand runs a backend CLI.
	AdapterCommand AdapterKind = "command"

	// RuntimeNative runs command lines in the host shell.
	RuntimeNative RuntimeMode = "native"
	// RuntimeVirtual runs command lines in the embedded mvdan/sh interpreter.
	RuntimeVirtual RuntimeMode = "virtual"

	// ColorAuto colors output when stdout is a terminal.
	ColorAuto ColorMode = "auto"
	// ColorAlways forces colored output.
	ColorAlways ColorMode = "always"
	// ColorNever disables colored output.
	ColorNever ColorMode = "never"
)

// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
var ErrInvalidConfig = errors.New("invalid config")

type (
	// FailurePolicy decides how a build failure affects its repetition.
	FailurePolicy string

	// AdapterKind selects how a backend is invoked.
	AdapterKind string

	// RuntimeMode selects the shell that runs a command adapter.
	RuntimeMode string

	// ColorMode controls styled output.
	ColorMode string

	// ReportConfig locates the markdown report and its anchors.
	ReportConfig struct {
		Path          string `json:"path" mapstructure:"path"`
		RowLabel      string `json:"row_label" mapstructure:"row_label"`
		FenceLanguage string `json:"fence_language" mapstructure:"fence_language"`
		Precision     int    `json:"precision" mapstructure:"precision"`
	}

	// BackendConfig selects a backend and optionally overrides how it is built.
	BackendConfig struct {
		ID      string            `json:"id" mapstructure:"id"`
		Package string            `json:"package,omitempty" mapstructure:"package"`
		Adapter AdapterKind       `json:"adapter,omitempty" mapstructure:"adapter"`
		Command string            `json:"command,omitempty" mapstructure:"command"`
		Runtime RuntimeMode       `json:"runtime,omitempty" mapstructure:"runtime"`
		EnvFile string            `json:"env_file,omitempty" mapstructure:"env_file"`
		Env     map[string]string `json:"env,omitempty" mapstructure:"env"`
	}

	// UIConfig holds presentation settings.
	UIConfig struct {
		Verbose bool      `json:"verbose" mapstructure:"verbose"`
		Color   ColorMode `json:"color" mapstructure:"color"`
	}

	// Config is the effective configuration.
	Config struct {
		Runs            int             `json:"runs" mapstructure:"runs"`
		Warmup          bool            `json:"warmup" mapstructure:"warmup"`
		Entry           string          `json:"entry" mapstructure:"entry"`
		WorkDir         string          `json:"work_dir" mapstructure:"work_dir"`
		PackageJSON     string          `json:"package_json" mapstructure:"package_json"`
		ResultsDir      string          `json:"results_dir" mapstructure:"results_dir"`
		FailurePolicy   FailurePolicy   `json:"failure_policy" mapstructure:"failure_policy"`
		Report          ReportConfig    `json:"report" mapstructure:"report"`
		MetricsTextfile string          `json:"metrics_textfile,omitempty" mapstructure:"metrics_textfile"`
		Scenario        string          `json:"scenario,omitempty" mapstructure:"scenario"`
		Backends        []BackendConfig `json:"backends,omitempty" mapstructure:"backends"`
		UI              UIConfig        `json:"ui" mapstructure:"ui"`
	}

	// InvalidConfigError collects every validation failure of a Config.
	InvalidConfigError struct {
		FieldErrors []error
	}
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Runs:          25,
		Warmup:        true,
		Entry:         "src/index.js",
		WorkDir:       ".",
		PackageJSON:   "package.json",
		ResultsDir:    "benchmarks",
		FailurePolicy: FailurePolicyRepetition,
		Report: ReportConfig{
			Path:          "README.md",
			RowLabel:      "Build time (ms)",
			FenceLanguage: "benchmark",
			Precision:     2,
		},
		UI: UIConfig{Color: ColorAuto},
	}
}

// BackendIDs returns the ids selected in the backends list, in order.
func (c Config) BackendIDs() []string {
	ids := make([]string, 0, len(c.Backends))
	for _, b := range c.Backends {
		ids = append(ids, b.ID)
	}
	return ids
}

// Anchored returns a copy of c with WorkDir made absolute and every
// relative file path resolved against it. Entry stays relative since
// backends receive it together with WorkDir.
func (c Config) Anchored() *Config {
	if abs, err := filepath.Abs(c.WorkDir); err == nil {
		c.WorkDir = abs
	}
	c.PackageJSON = anchor(c.WorkDir, c.PackageJSON)
	c.ResultsDir = anchor(c.WorkDir, c.ResultsDir)
	c.Report.Path = anchor(c.WorkDir, c.Report.Path)
	c.MetricsTextfile = anchor(c.WorkDir, c.MetricsTextfile)
	c.Scenario = anchor(c.WorkDir, c.Scenario)

	backends := make([]BackendConfig, len(c.Backends))
	for i, b := range c.Backends {
		b.EnvFile = anchor(c.WorkDir, b.EnvFile)
		backends[i] = b
	}
	c.Backends = backends
	return &c
}

func anchor(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// IsValid checks constraints the schema cannot express and guards configs
// built in code.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if c.Runs < 1 {
		errs = append(errs, fmt.Errorf("runs must be at least 1, got %d", c.Runs))
	}
	if c.FailurePolicy != FailurePolicyRepetition && c.FailurePolicy != FailurePolicyBackend {
		errs = append(errs, fmt.Errorf("failure_policy %q is not one of repetition, backend", c.FailurePolicy))
	}
	if c.Report.Precision < 0 {
		errs = append(errs, fmt.Errorf("report.precision must not be negative, got %d", c.Report.Precision))
	}

	seen := make(map[string]int, len(c.Backends))
	for i, b := range c.Backends {
		if b.ID == "" {
			errs = append(errs, fmt.Errorf("backends[%d]: id is required", i))
			continue
		}
		if first, ok := seen[b.ID]; ok {
			errs = append(errs, fmt.Errorf("backends[%d]: duplicate id %q (same as backends[%d])", i, b.ID, first))
		}
		seen[b.ID] = i
		if b.Adapter == AdapterCommand && b.Command == "" {
			errs = append(errs, fmt.Errorf("backends[%d]: adapter %q needs a command", i, b.Adapter))
		}
	}

	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return "invalid config: " + strings.Join(msgs, "; ")
}

// Unwrap returns ErrInvalidConfig.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }
