// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the javawizard command tree: file analysis and
// conversion, the Java version and PATH managers, native image builds and
// configuration inspection.
package cmd
