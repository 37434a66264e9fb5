// SPDX-License-Identifier: MPL-2.0

package bundler

// Entry is a catalogue row before version resolution.
type Entry struct {
	ID      string
	Package string
}

// UnknownVersion labels a backend whose package is not declared in package.json.
const UnknownVersion = "unknown"

// DefaultCatalogue lists the built-in backends in report order.
func DefaultCatalogue() []Entry {
	return []Entry{
		{ID: "esbuild", Package: "esbuild"},
		{ID: "parcel", Package: "@parcel/core"},
		{ID: "rollup", Package: "rollup"},
		{ID: "rspack", Package: "@rspack/core"},
		{ID: "vite", Package: "vite"},
		{ID: "rolldown", Package: "rolldown"},
		{ID: "rsbuild", Package: "@rsbuild/core"},
	}
}
