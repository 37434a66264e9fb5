// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// The configuration file is looked up, in order, at the path given with
// --config, at config.cue in the user configuration directory
// ($XDG_CONFIG_HOME/shakebench on Linux, ~/Library/Application Support/shakebench
// on macOS, %APPDATA%\shakebench on Windows) and at shakebench.cue in the
// working directory. Files are validated against an embedded CUE schema
// (config_schema.cue) before being merged over the defaults. SHAKEBENCH_*
// environment variables override scalar settings.
package config
