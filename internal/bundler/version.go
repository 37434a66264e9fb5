// SPDX-License-Identifier: MPL-2.0

package bundler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
)

// PackageJSON is the subset of package.json the registry reads.
type PackageJSON struct {
	Version         string            `json:"version"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// ReadPackageJSON parses the package.json at path.
func ReadPackageJSON(path string) (*PackageJSON, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read package.json: %w", err)
	}

	var pkg PackageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &pkg, nil
}

// Declared returns the version range declared for name, preferring
// devDependencies like the benchmark project does.
func (p *PackageJSON) Declared(name string) (string, bool) {
	if p == nil {
		return "", false
	}
	if v, ok := p.DevDependencies[name]; ok {
		return v, true
	}
	v, ok := p.Dependencies[name]
	return v, ok
}

// Resolve builds descriptors for entries. Versions come from pkg (which may
// be nil); installed versions are read from nodeModulesDir when it is set.
func Resolve(entries []Entry, pkg *PackageJSON, nodeModulesDir string) []Descriptor {
	descs := make([]Descriptor, 0, len(entries))
	for _, e := range entries {
		d := Descriptor{ID: e.ID, Package: e.Package, Version: UnknownVersion}
		if v, ok := pkg.Declared(e.Package); ok {
			d.Version = v
		}
		if nodeModulesDir != "" {
			if installed, err := InstalledVersion(nodeModulesDir, e.Package); err == nil {
				d.Installed = installed
			}
		}
		descs = append(descs, d)
	}
	return descs
}

// InstalledVersion reads node_modules/<pkg>/package.json.
func InstalledVersion(nodeModulesDir, pkgName string) (string, error) {
	p, err := ReadPackageJSON(filepath.Join(nodeModulesDir, filepath.FromSlash(pkgName), "package.json"))
	if err != nil {
		return "", err
	}
	if p.Version == "" {
		return "", fmt.Errorf("%s: no version field", pkgName)
	}
	return p.Version, nil
}

// VersionStatus reports how an installed version relates to the declared range.
type VersionStatus string

const (
	VersionSatisfied   VersionStatus = "ok"
	VersionMismatch    VersionStatus = "mismatch"
	VersionNotResolved VersionStatus = "unresolved"
)

// CheckInstalled compares d.Installed against the declared range.
// Ranges that are not semver constraints (workspace:, git urls, tags)
// and missing installs report VersionNotResolved.
func CheckInstalled(d Descriptor) VersionStatus {
	if d.Installed == "" || d.Version == UnknownVersion {
		return VersionNotResolved
	}
	c, err := semver.NewConstraint(d.Version)
	if err != nil {
		return VersionNotResolved
	}
	v, err := semver.NewVersion(d.Installed)
	if err != nil {
		return VersionNotResolved
	}
	if c.Check(v) {
		return VersionSatisfied
	}
	return VersionMismatch
}

// LoadRegistry resolves the default catalogue against the package.json at
// pkgPath. A missing package.json is not an error: every backend is then
// labelled with UnknownVersion.
func LoadRegistry(entries []Entry, pkgPath string) (*Registry, error) {
	pkg, err := ReadPackageJSON(pkgPath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	nodeModules := filepath.Join(filepath.Dir(pkgPath), "node_modules")
	return NewRegistry(Resolve(entries, pkg, nodeModules)...)
}
