// SPDX-License-Identifier: MPL-2.0

// Package envstore persists user-level environment variables (JAVA_HOME,
// PATH) so they survive the javawizard process.
//
// On Windows the values live in HKCU\Environment and are written with
// reg.exe. Elsewhere javawizard owns a POSIX shell file, env.sh, that the
// user sources from their shell profile.
package envstore
