// SPDX-License-Identifier: MPL-2.0

// Package jdkdist resolves, downloads, verifies and unpacks JDK
// distributions: Eclipse Temurin through the Adoptium API and GraalVM
// Community Edition through the graalvm-ce-builds GitHub releases.
package jdkdist
