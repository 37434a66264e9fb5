// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"path/filepath"
	"testing"
)

// FixtureEntry is the entry point written by WriteFixture, relative to the
// project directory.
const FixtureEntry = "src/index.js"

var fixtureFiles = map[string]string{
	"index.js": `import { toKeepInBundle as toKeepInBundleSync } from "./file-sync";
console.log(toKeepInBundleSync);

const { toKeepInBundle: toKeepInBundleDestructured } = require("./file-sync-require-destructuring");
console.log(toKeepInBundleDestructured);

const requiredModule = require("./file-sync-require-module");
console.log(requiredModule.toKeepInBundle);

console.log(require("./file-sync-require-chaining").toKeepInBundle);

import("./file-async-module").then((module) => console.log(module.toKeepInBundle));

import("./file-async-picked").then(({ toKeepInBundle }) => console.log(toKeepInBundle));

const { toKeepInBundle: toKeepInBundleAwait } = await import("./file-async-await");
console.log(toKeepInBundleAwait);
`,
	"file-sync.js":                       esmModule("SYNC IMPORT"),
	"file-async-module.js":               esmModule("ASYNC WHOLE MODULE"),
	"file-async-picked.js":               esmModule("ASYNC IMPORTED PICKED"),
	"file-async-await.js":                esmModule("TOP LEVEL AWAITED"),
	"file-sync-require-destructuring.js": cjsModule("SYNC REQUIRE DESTRUCTURING"),
	"file-sync-require-module.js":        cjsModule("SYNC REQUIRE MODULE"),
	"file-sync-require-chaining.js":      cjsModule("SYNC REQUIRE CHAINING"),
}

func esmModule(marker string) string {
	return `export const toKeepInBundle = "TO KEEP IN BUNDLE ` + marker + `";
export const toRemoveFromBundle = "SHOULD BE REMOVED FROM BUNDLE ` + marker + `";
`
}

func cjsModule(marker string) string {
	return `exports.toKeepInBundle = "TO KEEP IN BUNDLE ` + marker + `";
exports.toRemoveFromBundle = "SHOULD BE REMOVED FROM BUNDLE ` + marker + `";
`
}

// WriteFixture writes the marker fixture program under dir/src. Every
// module exports one value the entry uses and one it never touches.
func WriteFixture(t testing.TB, dir string) {
	t.Helper()
	for name, content := range fixtureFiles {
		MustWriteFile(t, filepath.Join(dir, "src", name), content)
	}
}
