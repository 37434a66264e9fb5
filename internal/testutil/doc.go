// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// It also writes the marker fixture program that the conformance scenario
// is designed around, so adapter and analyzer tests build the same input.
package testutil
