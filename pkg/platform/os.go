// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"runtime"
	"strings"
)

// OS name constants for runtime.GOOS comparisons.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
)

// reservedNames are device names Windows refuses as file names regardless
// of extension.
var reservedNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true,
	"COM5": true, "COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true,
	"LPT5": true, "LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// IsWindows reports whether the running binary targets Windows.
func IsWindows() bool { return runtime.GOOS == Windows }

// ExeName appends ".exe" to name when goos is Windows.
func ExeName(goos, name string) string {
	if goos == Windows && !strings.HasSuffix(strings.ToLower(name), ".exe") {
		return name + ".exe"
	}
	return name
}

// IsWindowsReservedName reports whether name (with or without extension)
// is a reserved Windows device name.
func IsWindowsReservedName(name string) bool {
	upper := strings.ToUpper(name)
	if idx := strings.LastIndex(upper, "."); idx != -1 {
		upper = upper[:idx]
	}
	return reservedNames[upper]
}
