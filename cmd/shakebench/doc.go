// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for shakebench.
//
// This package implements the Cobra command hierarchy: the benchmark
// session (run), a single conformance pass (verify), the backend catalogue
// (backends), offline statistics over saved CSV files (stats), report
// document maintenance (report) and configuration management (config).
// App is the composition root every command receives.
package cmd
