// SPDX-License-Identifier: MPL-2.0

// Package nativebuild turns a javawizard.cue project file into a GraalVM
// native-image build: compile, dist, installer and sources tasks ordered
// through a dependency graph, plus the reflection manifest generator.
package nativebuild
