// SPDX-License-Identifier: MPL-2.0

// Package bundler holds the static catalogue of benchmarked backends.
//
// A Descriptor identifies one backend by id, distributable package and the
// version declared in the project's package.json. Registry keeps descriptors
// in a fixed order; that order is the column order of every CSV and report
// row the tool produces.
package bundler
