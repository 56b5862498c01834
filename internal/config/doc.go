// SPDX-License-Identifier: MPL-2.0

// Package config handles javawizard configuration using Viper with CUE as
// the file format.
//
// The file lives at $XDG_CONFIG_HOME/javawizard/config.cue on Linux,
// ~/Library/Application Support/javawizard/config.cue on macOS and
// %APPDATA%\javawizard\config.cue on Windows. It is validated against the
// embedded config_schema.cue before being merged over the defaults, and
// every key can be overridden from the environment with the JAVAWIZARD_
// prefix (java.versions_dir -> JAVAWIZARD_JAVA_VERSIONS_DIR).
package config
