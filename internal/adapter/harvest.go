// SPDX-License-Identifier: MPL-2.0

package adapter

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// DefaultExtensions are the file extensions harvested as artifacts.
var DefaultExtensions = []string{".js", ".mjs", ".cjs"}

// Harvest collects every file under outDir whose extension is in exts
// (DefaultExtensions when empty). Source maps and assets are skipped.
func Harvest(outDir string, exts []string) (ArtifactSet, error) {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}

	set := make(ArtifactSet)
	err := filepath.WalkDir(outDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !slices.Contains(exts, strings.ToLower(filepath.Ext(path))) {
			return nil
		}

		rel, err := filepath.Rel(outDir, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		set[artifactName(filepath.ToSlash(rel))] = string(data)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to harvest %s: %w", outDir, err)
	}
	return set, nil
}
