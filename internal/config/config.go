// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"cuelang.org/go/cue"
	"github.com/spf13/viper"

	"github.com/shakebench/shakebench/internal/cueutil"
	"github.com/shakebench/shakebench/internal/issue"
)

const (
	// AppName is the application name.
	AppName = "shakebench"
	// ConfigFileName is the name of the user config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// ProjectFileName is the config file looked up in the working directory.
	ProjectFileName = AppName + "." + ConfigFileExt
	// EnvPrefix prefixes environment overrides, e.g. SHAKEBENCH_RUNS.
	EnvPrefix = "SHAKEBENCH"
)

//go:embed config_schema.cue
var configSchema []byte

// ConfigDir returns the shakebench configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default:
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// loadWithOptions performs option-driven config loading. It returns the
// effective config and the path of the file it came from ("" for defaults).
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	resolvedPath := ""
	var backends []BackendConfig

	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithIssue(issue.ConfigLoadFailedId).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Use 'shakebench config init' to write a default configuration").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		resolvedPath = opts.ConfigFilePath
	} else {
		cfgDir, err := configDirWithOverride(opts.ConfigDirPath)
		if err != nil {
			return nil, "", err
		}
		for _, candidate := range []string{
			filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt),
			ProjectFileName,
		} {
			if fileExists(candidate) {
				resolvedPath = candidate
				break
			}
		}
	}

	if resolvedPath != "" {
		var err error
		if backends, err = loadCUEIntoViper(v, resolvedPath); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(resolvedPath).
				WithIssue(issue.ConfigLoadFailedId).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithSuggestion("Run 'shakebench config dump' to see a valid configuration").
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.Backends = backends

	if ok, errs := cfg.IsValid(); !ok {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			WithIssue(issue.ConfigLoadFailedId).
			WithSuggestion("Ensure each backend id appears once in the backends list").
			WithSuggestion("Command adapters need a command line").
			Wrap(errs[0]).
			BuildError()
	}

	return &cfg, resolvedPath, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("runs", d.Runs)
	v.SetDefault("warmup", d.Warmup)
	v.SetDefault("entry", d.Entry)
	v.SetDefault("work_dir", d.WorkDir)
	v.SetDefault("package_json", d.PackageJSON)
	v.SetDefault("results_dir", d.ResultsDir)
	v.SetDefault("failure_policy", string(d.FailurePolicy))
	v.SetDefault("report.path", d.Report.Path)
	v.SetDefault("report.row_label", d.Report.RowLabel)
	v.SetDefault("report.fence_language", d.Report.FenceLanguage)
	v.SetDefault("report.precision", d.Report.Precision)
	v.SetDefault("metrics_textfile", d.MetricsTextfile)
	v.SetDefault("scenario", d.Scenario)
	v.SetDefault("ui.verbose", d.UI.Verbose)
	v.SetDefault("ui.color", string(d.UI.Color))
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}
	return ConfigDir()
}

// loadCUEIntoViper validates a CUE file against #Config and merges it into
// Viper. Scalars decode to a map so Viper keeps layering defaults and
// environment overrides beneath them. The backends list is decoded
// separately and returned, because Viper lower-cases map keys and backend
// env var names are case-sensitive.
func loadCUEIntoViper(v *viper.Viper, path string) ([]BackendConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	unified, err := cueutil.Unify(configSchema, data, "#Config",
		cueutil.WithFilename(path), cueutil.WithConcrete(false))
	if err != nil {
		return nil, err
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return nil, cueutil.FormatError(err, path)
	}

	var backends []BackendConfig
	if raw, ok := configMap["backends"]; ok && raw != nil {
		if err := unified.LookupPath(cue.ParsePath("backends")).Decode(&backends); err != nil {
			return nil, cueutil.FormatError(err, path)
		}
		delete(configMap, "backends")
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return nil, fmt.Errorf("failed to merge config: %w", err)
	}
	return backends, nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig writes a default config file at path unless one exists.
// An empty path means config.cue in ConfigDir. It returns the path and
// whether a file was written.
func CreateDefaultConfig(path string) (string, bool, error) {
	if path == "" {
		cfgDir, err := ConfigDir()
		if err != nil {
			return "", false, err
		}
		path = filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)
	}

	if fileExists(path) {
		return path, false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", false, fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return "", false, fmt.Errorf("failed to write config file: %w", err)
	}
	return path, true, nil
}

// GenerateCUE generates a CUE representation of the configuration
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// shakebench configuration\n\n")

	fmt.Fprintf(&sb, "runs: %d\n", cfg.Runs)
	fmt.Fprintf(&sb, "warmup: %v\n", cfg.Warmup)
	fmt.Fprintf(&sb, "entry: %q\n", cfg.Entry)
	fmt.Fprintf(&sb, "work_dir: %q\n", cfg.WorkDir)
	fmt.Fprintf(&sb, "package_json: %q\n", cfg.PackageJSON)
	fmt.Fprintf(&sb, "results_dir: %q\n", cfg.ResultsDir)
	fmt.Fprintf(&sb, "failure_policy: %q\n", cfg.FailurePolicy)
	if cfg.MetricsTextfile != "" {
		fmt.Fprintf(&sb, "metrics_textfile: %q\n", cfg.MetricsTextfile)
	}
	if cfg.Scenario != "" {
		fmt.Fprintf(&sb, "scenario: %q\n", cfg.Scenario)
	}

	sb.WriteString("\nreport: {\n")
	fmt.Fprintf(&sb, "\tpath: %q\n", cfg.Report.Path)
	fmt.Fprintf(&sb, "\trow_label: %q\n", cfg.Report.RowLabel)
	fmt.Fprintf(&sb, "\tfence_language: %q\n", cfg.Report.FenceLanguage)
	fmt.Fprintf(&sb, "\tprecision: %d\n", cfg.Report.Precision)
	sb.WriteString("}\n")

	if len(cfg.Backends) > 0 {
		sb.WriteString("\nbackends: [\n")
		for _, b := range cfg.Backends {
			sb.WriteString("\t{" + backendFields(b) + "},\n")
		}
		sb.WriteString("]\n")
	}

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	fmt.Fprintf(&sb, "\tcolor: %q\n", cfg.UI.Color)
	sb.WriteString("}\n")

	return sb.String()
}

func backendFields(b BackendConfig) string {
	fields := []string{fmt.Sprintf("id: %q", b.ID)}
	add := func(key, value string) {
		if value != "" {
			fields = append(fields, fmt.Sprintf("%s: %q", key, value))
		}
	}
	add("package", b.Package)
	add("adapter", string(b.Adapter))
	add("command", b.Command)
	add("runtime", string(b.Runtime))
	add("env_file", b.EnvFile)
	if len(b.Env) > 0 {
		keys := make([]string, 0, len(b.Env))
		for k := range b.Env {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		env := make([]string, len(keys))
		for i, k := range keys {
			env[i] = fmt.Sprintf("%q: %q", k, b.Env[k])
		}
		fields = append(fields, "env: {"+strings.Join(env, ", ")+"}")
	}
	return strings.Join(fields, ", ")
}
