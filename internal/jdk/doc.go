// SPDX-License-Identifier: MPL-2.0

// Package jdk discovers Java installations and manages the versions that
// javawizard installs under its versions directory.
//
// A JDK's version is read from the "release" file shipped at the root of
// every modern JDK; when that file is missing the launcher is executed with
// -version through a runner.Runner.
package jdk
