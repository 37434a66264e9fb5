// SPDX-License-Identifier: MPL-2.0

// Package conformance classifies bundle output by the presence or absence of
// marker tokens.
//
// Matching is textual: every pattern is a case-insensitive regular
// expression searched in one artifact's source. This tolerates any backend's
// code shape as long as marker strings survive intact; a backend that splits
// or rewrites a marker string produces a false result, which is a known
// limitation of the approach.
package conformance
