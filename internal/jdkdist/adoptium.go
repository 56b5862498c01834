// SPDX-License-Identifier: MPL-2.0

package jdkdist

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/amankrmj/javawizard/internal/jdk"
	"github.com/amankrmj/javawizard/pkg/platform"
)

// DefaultAdoptiumURL is the public Adoptium API.
const DefaultAdoptiumURL = "https://api.adoptium.net"

type (
	// Adoptium resolves Eclipse Temurin builds.
	Adoptium struct {
		client  *Client
		baseURL string
	}

	adoptiumPackage struct {
		Checksum string `json:"checksum"`
		Link     string `json:"link"`
		Name     string `json:"name"`
		Size     int64  `json:"size"`
	}

	adoptiumVersion struct {
		Semver         string `json:"semver"`
		OpenJDKVersion string `json:"openjdk_version"`
	}

	// adoptiumAsset is an entry of /v3/assets/latest.
	adoptiumAsset struct {
		Binary struct {
			Package adoptiumPackage `json:"package"`
		} `json:"binary"`
		ReleaseName string          `json:"release_name"`
		Version     adoptiumVersion `json:"version"`
	}

	// adoptiumRelease is an entry of /v3/assets/version.
	adoptiumRelease struct {
		Binaries []struct {
			Package adoptiumPackage `json:"package"`
		} `json:"binaries"`
		ReleaseName string          `json:"release_name"`
		VersionData adoptiumVersion `json:"version_data"`
	}
)

// NewAdoptium returns a resolver against baseURL (DefaultAdoptiumURL when empty).
func NewAdoptium(client *Client, baseURL string) *Adoptium {
	if baseURL == "" {
		baseURL = DefaultAdoptiumURL
	}
	return &Adoptium{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

// Resolve finds the Temurin JDK for req. A feature-only request ("21")
// takes the latest build of that release; a patch-level request
// ("17.0.9") is pinned to that update.
func (a *Adoptium) Resolve(ctx context.Context, req Request, goos, goarch string) (*Package, error) {
	osName, err := adoptiumOS(goos)
	if err != nil {
		return nil, err
	}
	arch, err := vendorArch(goarch)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("architecture", arch)
	q.Set("image_type", "jdk")
	q.Set("os", osName)
	q.Set("vendor", "eclipse")

	var candidates []adoptiumAsset
	if req.Pinned() {
		candidates, err = a.releases(ctx, req, q)
	} else {
		endpoint := fmt.Sprintf("%s/v3/assets/latest/%d/hotspot?%s", a.baseURL, req.Feature, q.Encode())
		err = a.client.GetJSON(ctx, endpoint, &candidates)
		if err != nil {
			err = fmt.Errorf("querying Adoptium for Java %d: %w", req.Feature, err)
		}
	}
	if err != nil {
		return nil, err
	}

	ext := "." + archiveExt(goos)
	for _, as := range candidates {
		pkg := as.Binary.Package
		if pkg.Link == "" || !strings.HasSuffix(pkg.Name, ext) {
			continue
		}
		version := as.Version.Semver
		if version == "" {
			version = strings.TrimPrefix(as.ReleaseName, "jdk-")
		}
		return &Package{
			Distribution: Temurin,
			Version:      version,
			ArchiveName:  pkg.Name,
			URL:          pkg.Link,
			Checksum:     strings.ToLower(pkg.Checksum),
			Size:         pkg.Size,
		}, nil
	}
	if req.Pinned() {
		return nil, fmt.Errorf("no Temurin %s build for %s/%s: %w", req.Version, goos, goarch, ErrNotFound)
	}
	return nil, fmt.Errorf("no Temurin %d build for %s/%s: %w", req.Feature, goos, goarch, ErrNotFound)
}

// releases queries the newest GA build inside the version range of a
// pinned request and flattens its binaries into assets.
func (a *Adoptium) releases(ctx context.Context, req Request, q url.Values) ([]adoptiumAsset, error) {
	vr, err := versionRange(req.Version)
	if err != nil {
		return nil, err
	}
	q.Set("jvm_impl", "hotspot")
	q.Set("release_type", "ga")
	q.Set("sort_order", "DESC")
	q.Set("page_size", "1")
	endpoint := fmt.Sprintf("%s/v3/assets/version/%s?%s", a.baseURL, url.PathEscape(vr), q.Encode())

	var releases []adoptiumRelease
	if err := a.client.GetJSON(ctx, endpoint, &releases); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying Adoptium for Java %s: %w", req.Version, err)
	}

	var assets []adoptiumAsset
	for _, rel := range releases {
		for _, bin := range rel.Binaries {
			var as adoptiumAsset
			as.Binary.Package = bin.Package
			as.ReleaseName = rel.ReleaseName
			as.Version = rel.VersionData
			assets = append(assets, as)
		}
	}
	return assets, nil
}

// versionRange turns "17.0.9" into the Maven range "[17.0.9,17.0.10)".
// A version with a build suffix ("17.0.9+9") is used as is.
func versionRange(v string) (string, error) {
	if strings.Contains(v, "+") {
		return v, nil
	}
	parts := strings.Split(v, ".")
	last, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return "", &jdk.InvalidVersionError{Value: v}
	}
	for _, p := range parts[:len(parts)-1] {
		if _, err := strconv.Atoi(p); err != nil {
			return "", &jdk.InvalidVersionError{Value: v}
		}
	}
	parts[len(parts)-1] = strconv.Itoa(last + 1)
	return "[" + v + "," + strings.Join(parts, ".") + ")", nil
}

func adoptiumOS(goos string) (string, error) {
	switch goos {
	case platform.Linux:
		return "linux", nil
	case platform.Darwin:
		return "mac", nil
	case platform.Windows:
		return "windows", nil
	}
	return "", fmt.Errorf("%s: %w", goos, ErrUnsupportedPlatform)
}
