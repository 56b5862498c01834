// SPDX-License-Identifier: MPL-2.0

// Package platform centralizes operating-system specific naming rules:
// GOOS constants, executable suffixes and Windows reserved file names.
package platform
