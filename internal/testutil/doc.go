// SPDX-License-Identifier: MPL-2.0

// Package testutil provides Must* helpers that fail the test on error and
// return restore functions suitable for t.Cleanup.
package testutil
