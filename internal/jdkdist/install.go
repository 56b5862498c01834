// SPDX-License-Identifier: MPL-2.0

package jdkdist

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"

	"github.com/amankrmj/javawizard/internal/jdk"
)

// ErrAlreadyInstalled is wrapped by AlreadyInstalledError.
var ErrAlreadyInstalled = errors.New("Java version already installed")

type (
	// AlreadyInstalledError reports an existing target directory.
	AlreadyInstalledError struct {
		Path string
	}

	// Resolver maps a Request to a downloadable Package.
	Resolver interface {
		Resolve(ctx context.Context, req Request, goos, goarch string) (*Package, error)
	}

	// Installer downloads, verifies and unpacks JDKs into a versions directory.
	Installer struct {
		Client    *Client
		Resolvers map[Distribution]Resolver
		GOOS      string
		GOARCH    string
		Logger    *log.Logger
	}

	// Installed describes a completed installation.
	Installed struct {
		Name    string
		Path    string
		Package *Package
	}
)

func (e *AlreadyInstalledError) Error() string {
	return fmt.Sprintf("Java version already installed at %s", e.Path)
}

func (e *AlreadyInstalledError) Unwrap() error { return ErrAlreadyInstalled }

// NewInstaller wires the Adoptium and GraalVM resolvers to client for the
// running platform. Empty URLs select the public endpoints.
func NewInstaller(client *Client, adoptiumURL, githubURL string, logger *log.Logger) *Installer {
	if logger == nil {
		logger = log.Default()
	}
	return &Installer{
		Client: client,
		Resolvers: map[Distribution]Resolver{
			Temurin: NewAdoptium(client, adoptiumURL),
			GraalVM: NewGraalVM(client, githubURL),
		},
		GOOS:   runtime.GOOS,
		GOARCH: runtime.GOARCH,
		Logger: logger,
	}
}

// Resolve looks up the archive for req on the installer's platform.
func (i *Installer) Resolve(ctx context.Context, req Request) (*Package, error) {
	r, ok := i.Resolvers[req.Distribution]
	if !ok {
		return nil, fmt.Errorf("unknown distribution %q", req.Distribution)
	}
	return r.Resolve(ctx, req, i.GOOS, i.GOARCH)
}

// Install places the JDK for req at <versionsDir>/<req.Name>. An existing
// installation is replaced only when force is set.
func (i *Installer) Install(ctx context.Context, req Request, versionsDir string, force bool) (*Installed, error) {
	target := filepath.Join(versionsDir, req.Name)
	if _, err := os.Stat(target); err == nil && !force {
		return nil, &AlreadyInstalledError{Path: target}
	}
	if err := os.MkdirAll(versionsDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating versions directory: %w", err)
	}

	pkg, err := i.Resolve(ctx, req)
	if err != nil {
		return nil, err
	}

	i.Logger.Info("downloading", "archive", pkg.ArchiveName, "size", humanize.Bytes(uint64(max(pkg.Size, 0))))
	archive, err := i.Client.Download(ctx, pkg.URL, versionsDir)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", pkg.ArchiveName, err)
	}
	defer func() { _ = os.Remove(archive) }()

	if err := i.verify(ctx, pkg, archive); err != nil {
		return nil, err
	}

	staging, err := os.MkdirTemp(versionsDir, ".staging-*")
	if err != nil {
		return nil, fmt.Errorf("creating staging directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(staging) }()

	i.Logger.Debug("extracting", "archive", pkg.ArchiveName, "staging", staging)
	if err := Extract(archive, pkg.ArchiveName, staging); err != nil {
		return nil, fmt.Errorf("extracting %s: %w", pkg.ArchiveName, err)
	}
	root, err := findJDKRoot(staging)
	if err != nil {
		return nil, err
	}
	if _, err := jdk.Launcher(root); err != nil {
		return nil, fmt.Errorf("extracted archive: %w", err)
	}

	if force {
		if err := os.RemoveAll(target); err != nil {
			return nil, fmt.Errorf("removing previous installation: %w", err)
		}
	}
	if err := os.Rename(root, target); err != nil {
		return nil, fmt.Errorf("installing to %s: %w", target, err)
	}
	return &Installed{Name: req.Name, Path: target, Package: pkg}, nil
}

func (i *Installer) verify(ctx context.Context, pkg *Package, archive string) error {
	expected := pkg.Checksum
	if expected == "" && pkg.ChecksumURL != "" {
		body, err := i.Client.GetText(ctx, pkg.ChecksumURL)
		if err != nil {
			return fmt.Errorf("downloading checksum: %w", err)
		}
		if expected, err = ParseChecksumString(body); err != nil {
			return fmt.Errorf("parsing checksum for %s: %w", pkg.ArchiveName, err)
		}
	}
	if expected == "" {
		i.Logger.Warn("no checksum published, skipping verification", "archive", pkg.ArchiveName)
		return nil
	}
	if err := VerifyFile(archive, expected); err != nil {
		return fmt.Errorf("verifying %s: %w", pkg.ArchiveName, err)
	}
	i.Logger.Debug("checksum verified", "sha256", expected)
	return nil
}
