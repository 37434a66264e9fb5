// SPDX-License-Identifier: MPL-2.0

// Package cueutil compiles an embedded CUE schema, unifies user data with
// one of its definitions, validates the result and decodes it into a Go
// value. Both the configuration file and scenario definitions go through it.
//
//	//go:embed scenario_schema.cue
//	var schema []byte
//
//	res, err := cueutil.ParseAndDecode[Scenario](schema, data, "#Scenario",
//	    cueutil.WithFilename("scenario.cue"))
package cueutil
