// SPDX-License-Identifier: MPL-2.0

package jdkdist

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/amankrmj/javawizard/internal/jdk"
	"github.com/amankrmj/javawizard/pkg/platform"
)

// Distribution names a JDK vendor build.
type Distribution string

const (
	Temurin Distribution = "temurin"
	GraalVM Distribution = "graalvm"
)

// ErrUnsupportedPlatform is returned when no build exists for the host.
var ErrUnsupportedPlatform = errors.New("unsupported platform")

type (
	// Request is a parsed "java install" argument.
	Request struct {
		// Raw is the argument as typed, e.g. "21-graalvm".
		Raw string
		// Version is Raw without the distribution marker.
		Version      string
		Feature      int
		Distribution Distribution
		// Name is the managed directory name ("jdk-21", "graalvm-21").
		Name string
	}

	// Package is a resolved downloadable archive.
	Package struct {
		Distribution Distribution
		Version      string
		ArchiveName  string
		URL          string
		// Checksum is the expected SHA-256; empty when ChecksumURL must be fetched.
		Checksum    string
		ChecksumURL string
		Size        int64
	}
)

// ParseRequest interprets a version argument. A "graalvm" marker anywhere
// in the argument selects GraalVM; otherwise def applies.
func ParseRequest(raw string, def Distribution) (Request, error) {
	raw = strings.TrimSpace(raw)
	dist := def
	if dist == "" {
		dist = Temurin
	}
	version := raw
	if strings.Contains(strings.ToLower(raw), "graalvm") {
		dist = GraalVM
		version = strings.NewReplacer("-graalvm", "", "graalvm-", "", "graalvm", "").Replace(strings.ToLower(raw))
	}

	feature, err := jdk.FeatureOf(version)
	if err != nil {
		return Request{}, err
	}

	req := Request{Raw: raw, Version: version, Feature: feature, Distribution: dist}
	switch dist {
	case GraalVM:
		req.Name = "graalvm-" + version
	default:
		req.Name = "jdk-" + version
	}
	return req, nil
}

// Pinned reports whether the request names an update ("17.0.9") rather
// than a feature release ("17"). Legacy "1.8" spellings are not pinned.
func (r Request) Pinned() bool {
	return r.Version != "" && r.Version != strconv.Itoa(r.Feature) && !strings.HasPrefix(r.Version, "1.")
}

// archiveExt returns the archive format vendors publish for goos.
func archiveExt(goos string) string {
	if goos == platform.Windows {
		return "zip"
	}
	return "tar.gz"
}

// vendorArch maps GOARCH to the x64/aarch64 naming both vendors use.
func vendorArch(goarch string) (string, error) {
	switch goarch {
	case "amd64":
		return "x64", nil
	case "arm64":
		return "aarch64", nil
	}
	return "", fmt.Errorf("%s: %w", goarch, ErrUnsupportedPlatform)
}
