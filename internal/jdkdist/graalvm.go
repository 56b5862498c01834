// SPDX-License-Identifier: MPL-2.0

package jdkdist

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/amankrmj/javawizard/pkg/platform"
)

const (
	// DefaultGitHubAPI is the public GitHub REST endpoint.
	DefaultGitHubAPI = "https://api.github.com"
	graalvmRepo      = "graalvm/graalvm-ce-builds"
	releasesPerPage  = 100
)

type (
	// GraalVMResolver finds GraalVM CE builds in GitHub releases.
	GraalVMResolver struct {
		client  *Client
		baseURL string
	}

	githubRelease struct {
		TagName    string        `json:"tag_name"`
		Draft      bool          `json:"draft"`
		Prerelease bool          `json:"prerelease"`
		Assets     []githubAsset `json:"assets"`
	}

	githubAsset struct {
		Name               string `json:"name"`
		BrowserDownloadURL string `json:"browser_download_url"`
		Size               int64  `json:"size"`
	}
)

// NewGraalVM returns a resolver against baseURL (DefaultGitHubAPI when empty).
func NewGraalVM(client *Client, baseURL string) *GraalVMResolver {
	if baseURL == "" {
		baseURL = DefaultGitHubAPI
	}
	return &GraalVMResolver{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

// Resolve picks the highest "jdk-<feature>.x.y" release matching the
// request and its archive for goos/goarch. An exact version such as
// "21.0.2" pins that tag.
func (g *GraalVMResolver) Resolve(ctx context.Context, req Request, goos, goarch string) (*Package, error) {
	osName, err := graalvmOS(goos)
	if err != nil {
		return nil, err
	}
	arch, err := vendorArch(goarch)
	if err != nil {
		return nil, err
	}

	var releases []githubRelease
	endpoint := fmt.Sprintf("%s/repos/%s/releases?per_page=%d", g.baseURL, graalvmRepo, releasesPerPage)
	if err := g.client.GetJSON(ctx, endpoint, &releases); err != nil {
		return nil, fmt.Errorf("listing GraalVM releases: %w", err)
	}

	rel := pickGraalVMRelease(releases, req)
	if rel == nil {
		return nil, fmt.Errorf("no GraalVM release for Java %s: %w", req.Version, ErrNotFound)
	}

	version := strings.TrimPrefix(rel.TagName, "jdk-")
	archive := fmt.Sprintf("graalvm-community-jdk-%s_%s-%s_bin.%s", version, osName, arch, archiveExt(goos))
	pkg := &Package{Distribution: GraalVM, Version: version, ArchiveName: archive}
	for _, as := range rel.Assets {
		switch as.Name {
		case archive:
			pkg.URL = as.BrowserDownloadURL
			pkg.Size = as.Size
		case archive + ".sha256":
			pkg.ChecksumURL = as.BrowserDownloadURL
		}
	}
	if pkg.URL == "" {
		return nil, fmt.Errorf("release %s has no %s: %w", rel.TagName, archive, ErrNotFound)
	}
	return pkg, nil
}

// pickGraalVMRelease returns the newest stable release whose tag matches
// the requested feature, or the exact tag when a full version was given.
func pickGraalVMRelease(releases []githubRelease, req Request) *githubRelease {
	exact := strings.Count(req.Version, ".") > 0
	prefix := "jdk-" + strconv.Itoa(req.Feature)

	var candidates []githubRelease
	for _, r := range releases {
		if r.Draft || r.Prerelease || !semver.IsValid(tagSemver(r.TagName)) {
			continue
		}
		if exact && r.TagName != "jdk-"+req.Version {
			continue
		}
		if !exact && r.TagName != prefix && !strings.HasPrefix(r.TagName, prefix+".") {
			continue
		}
		candidates = append(candidates, r)
	}
	if len(candidates) == 0 {
		return nil
	}
	slices.SortStableFunc(candidates, func(a, b githubRelease) int {
		return semver.Compare(tagSemver(b.TagName), tagSemver(a.TagName))
	})
	return &candidates[0]
}

// tagSemver maps "jdk-21.0.2" to "v21.0.2".
func tagSemver(tag string) string {
	return "v" + strings.TrimPrefix(tag, "jdk-")
}

func graalvmOS(goos string) (string, error) {
	switch goos {
	case platform.Linux:
		return "linux", nil
	case platform.Darwin:
		return "macos", nil
	case platform.Windows:
		return "windows", nil
	}
	return "", fmt.Errorf("%s: %w", goos, ErrUnsupportedPlatform)
}
