// SPDX-License-Identifier: MPL-2.0

// Package adapter defines the contract every bundling backend implements and
// provides the two adapter kinds: an in-process esbuild adapter and a command
// adapter that runs a backend CLI and harvests its output directory.
//
// An adapter invocation is scoped to a caller-provided output directory; the
// caller creates a fresh directory per invocation and removes it afterwards.
// Adapters time their own build and report the duration as a structured
// field, so nothing downstream parses console text.
package adapter
