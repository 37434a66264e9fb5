// SPDX-License-Identifier: MPL-2.0

// Package report renders benchmark results: the per-repetition CSV, the
// console summary, the in-place markdown report patch and structured
// exports.
package report
