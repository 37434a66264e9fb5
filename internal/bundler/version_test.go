// SPDX-License-Identifier: MPL-2.0

package bundler

import (
	"path/filepath"
	"testing"

	"github.com/shakebench/shakebench/internal/testutil"
)

func TestLoadRegistry_ResolvesDeclaredAndInstalled(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(dir, "package.json"), `{
		"devDependencies": {"esbuild": "^0.25.0", "@rspack/core": "~1.4.1"},
		"dependencies": {"rollup": "4.44.0"}
	}`)
	testutil.MustWriteFile(t, filepath.Join(dir, "node_modules", "esbuild", "package.json"), `{"version": "0.25.5"}`)
	testutil.MustWriteFile(t, filepath.Join(dir, "node_modules", "@rspack", "core", "package.json"), `{"version": "1.5.0"}`)

	reg, err := LoadRegistry(DefaultCatalogue(), filepath.Join(dir, "package.json"))
	if err != nil {
		t.Fatalf("LoadRegistry() error: %v", err)
	}

	tests := []struct {
		id        string
		version   string
		installed string
		status    VersionStatus
	}{
		{"esbuild", "^0.25.0", "0.25.5", VersionSatisfied},
		{"rspack", "~1.4.1", "1.5.0", VersionMismatch},
		{"rollup", "4.44.0", "", VersionNotResolved},
		{"vite", UnknownVersion, "", VersionNotResolved},
	}
	for _, tt := range tests {
		d, ok := reg.Get(tt.id)
		if !ok {
			t.Fatalf("Get(%q) not found", tt.id)
		}
		if d.Version != tt.version || d.Installed != tt.installed {
			t.Errorf("%s: version=%q installed=%q, want %q/%q", tt.id, d.Version, d.Installed, tt.version, tt.installed)
		}
		if got := CheckInstalled(d); got != tt.status {
			t.Errorf("CheckInstalled(%s) = %q, want %q", tt.id, got, tt.status)
		}
	}
}

func TestLoadRegistry_MissingPackageJSON(t *testing.T) {
	t.Parallel()

	reg, err := LoadRegistry(DefaultCatalogue(), filepath.Join(t.TempDir(), "package.json"))
	if err != nil {
		t.Fatalf("LoadRegistry() error: %v", err)
	}
	for _, d := range reg.All() {
		if d.Version != UnknownVersion {
			t.Errorf("%s version = %q, want %q", d.ID, d.Version, UnknownVersion)
		}
	}
}

func TestLoadRegistry_MalformedPackageJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "package.json")
	testutil.MustWriteFile(t, path, `{not json`)
	if _, err := LoadRegistry(DefaultCatalogue(), path); err == nil {
		t.Error("LoadRegistry() should fail on malformed package.json")
	}
}

func TestCheckInstalled_NonSemverRange(t *testing.T) {
	t.Parallel()

	d := Descriptor{ID: "vite", Version: "workspace:*", Installed: "7.0.0"}
	if got := CheckInstalled(d); got != VersionNotResolved {
		t.Errorf("CheckInstalled(workspace range) = %q, want %q", got, VersionNotResolved)
	}
}
