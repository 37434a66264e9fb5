// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries the failed operation, the resource involved and
// remediation hints. Issue holds a Markdown explanation for a known class of
// problem (missing backend toolchain, missing report anchors, ...) that the
// CLI renders with glamour.
package issue
