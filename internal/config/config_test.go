// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/shakebench/shakebench/internal/issue"
	"github.com/shakebench/shakebench/internal/testutil"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	testutil.MustWriteFile(t, path, content)
	return path
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.Runs != 25 || !cfg.Warmup {
		t.Errorf("runs=%d warmup=%v, want 25 true", cfg.Runs, cfg.Warmup)
	}
	if cfg.FailurePolicy != FailurePolicyRepetition {
		t.Errorf("failure policy = %s", cfg.FailurePolicy)
	}
	if cfg.Report.FenceLanguage != "benchmark" || cfg.Report.Precision != 2 {
		t.Errorf("report = %+v", cfg.Report)
	}
	if ok, errs := cfg.IsValid(); !ok {
		t.Errorf("default config invalid: %v", errs)
	}
}

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	t.Parallel()

	res, err := Resolve(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if res.Path != "" {
		t.Errorf("Path = %q, want empty", res.Path)
	}
	if diff := cmp.Diff(DefaultConfig(), res.Config); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_FromConfigDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeConfig(t, dir, "config.cue", `
runs: 5
failure_policy: "backend"
report: precision: 3
backends: [
	{id: "esbuild"},
	{id: "vite", runtime: "native", env: {NODE_ENV: "production"}},
]
`)

	res, err := Resolve(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	cfg := res.Config

	if res.Path != path {
		t.Errorf("Path = %q, want %q", res.Path, path)
	}
	if cfg.Runs != 5 || cfg.FailurePolicy != FailurePolicyBackend || cfg.Report.Precision != 3 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Report.Path != "README.md" || !cfg.Warmup {
		t.Errorf("defaults lost: %+v", cfg)
	}

	want := []BackendConfig{
		{ID: "esbuild"},
		{ID: "vite", Runtime: RuntimeNative, Env: map[string]string{"NODE_ENV": "production"}},
	}
	if diff := cmp.Diff(want, cfg.Backends); diff != "" {
		t.Errorf("backends mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SHAKEBENCH_RUNS", "7")
	t.Setenv("SHAKEBENCH_REPORT_PATH", "docs/BENCH.md")

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Runs != 7 {
		t.Errorf("Runs = %d, want 7", cfg.Runs)
	}
	if cfg.Report.Path != "docs/BENCH.md" {
		t.Errorf("Report.Path = %q", cfg.Report.Path)
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"runs below one", `runs: 0`, "runs"},
		{"unknown policy", `failure_policy: "abort"`, "failure_policy"},
		{"unknown field", `rnus: 3`, "rnus"},
		{"bad syntax", `runs: [`, "config.cue"},
		{"duplicate backend", `backends: [{id: "vite"}, {id: "vite"}]`, "duplicate id"},
		{"command adapter without command", `backends: [{id: "x", adapter: "command"}]`, "needs a command"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			path := writeConfig(t, dir, "config.cue", tt.content)

			_, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: path})
			if err == nil {
				t.Fatal("Load() error = nil")
			}
			var ae *issue.ActionableError
			if !errors.As(err, &ae) {
				t.Fatalf("error %T is not *issue.ActionableError", err)
			}
			if !strings.Contains(ae.Format(true), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", ae.Format(true), tt.wantErr)
			}
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: filepath.Join(t.TempDir(), "nope.cue")})
	if err == nil || !strings.Contains(err.Error(), "load configuration") {
		t.Errorf("Load() error = %v", err)
	}
}

func TestLoad_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewProvider().Load(ctx, LoadOptions{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v, want context.Canceled", err)
	}
}

func TestGenerateCUE_RoundTrip(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Runs = 3
	cfg.MetricsTextfile = "metrics/shakebench.prom"
	cfg.Backends = []BackendConfig{
		{ID: "rollup"},
		{ID: "custom", Adapter: AdapterCommand, Command: `npx custom "$ENTRY"`, Runtime: RuntimeVirtual, Env: map[string]string{"B": "2", "A": "1"}},
	}

	path := writeConfig(t, t.TempDir(), "config.cue", GenerateCUE(cfg))
	got, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: path})
	if err != nil {
		t.Fatalf("Load(GenerateCUE()) error = %v", err)
	}
	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "config.cue")
	got, created, err := CreateDefaultConfig(path)
	if err != nil || !created || got != path {
		t.Fatalf("CreateDefaultConfig() = %q, %v, %v", got, created, err)
	}

	if _, created, err := CreateDefaultConfig(path); err != nil || created {
		t.Errorf("second CreateDefaultConfig() created=%v err=%v, want existing file kept", created, err)
	}
}

func TestConfig_BackendIDs(t *testing.T) {
	t.Parallel()

	cfg := Config{Backends: []BackendConfig{{ID: "vite"}, {ID: "esbuild"}}}
	if diff := cmp.Diff([]string{"vite", "esbuild"}, cfg.BackendIDs()); diff != "" {
		t.Errorf("BackendIDs() mismatch (-want +got):\n%s", diff)
	}
}

func TestConfig_Anchored(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	abs := filepath.Join(dir, "abs.prom")

	cfg := DefaultConfig()
	cfg.WorkDir = dir
	cfg.Report.Path = "docs/README.md"
	cfg.MetricsTextfile = abs
	cfg.Scenario = "scenario.cue"
	cfg.Backends = []BackendConfig{{ID: "vite", EnvFile: ".env?"}, {ID: "rollup"}}

	got := cfg.Anchored()

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"package.json", got.PackageJSON, filepath.Join(dir, "package.json")},
		{"results dir", got.ResultsDir, filepath.Join(dir, "benchmarks")},
		{"report path", got.Report.Path, filepath.Join(dir, "docs", "README.md")},
		{"absolute path kept", got.MetricsTextfile, abs},
		{"scenario", got.Scenario, filepath.Join(dir, "scenario.cue")},
		{"env file", got.Backends[0].EnvFile, filepath.Join(dir, ".env?")},
		{"unset env file", got.Backends[1].EnvFile, ""},
		{"entry stays relative", got.Entry, cfg.Entry},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
		}
	}

	if cfg.Report.Path != "docs/README.md" || cfg.Backends[0].EnvFile != ".env?" {
		t.Error("Anchored() modified the receiver")
	}
	if diff := cmp.Diff(got, got.Anchored()); diff != "" {
		t.Errorf("Anchored() is not idempotent (-once +twice):\n%s", diff)
	}
}

func TestConfigDir_UsesPlatformHome(t *testing.T) {
	// Not parallel: mutates the process environment.
	home := t.TempDir()
	testutil.SetConfigHome(t, home)

	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error = %v", err)
	}
	if !strings.HasPrefix(dir, home) || filepath.Base(dir) != AppName {
		t.Errorf("ConfigDir() = %q, want %s under %q", dir, AppName, home)
	}

	path := writeConfig(t, dir, "config.cue", "runs: 3\n")
	res, err := Resolve(context.Background(), LoadOptions{})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if res.Path != path || res.Config.Runs != 3 {
		t.Errorf("Resolve() = %q runs=%d, want %q runs=3", res.Path, res.Config.Runs, path)
	}
}
