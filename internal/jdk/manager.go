// SPDX-License-Identifier: MPL-2.0

package jdk

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/amankrmj/javawizard/internal/runner"
	"github.com/amankrmj/javawizard/pkg/platform"
)

var (
	// ErrNoManagedVersions is returned when the versions directory does not exist.
	ErrNoManagedVersions = errors.New("no managed Java versions")
	// ErrVersionNotFound is the sentinel wrapped by VersionNotFoundError.
	ErrVersionNotFound = errors.New("Java version not found")
	// ErrVersionInUse is returned when removing the version JAVA_HOME points at.
	ErrVersionInUse = errors.New("Java version is the current JAVA_HOME")
	// ErrInvalidName is returned for names that would escape the versions directory.
	ErrInvalidName = errors.New("invalid version name")
)

type (
	// VersionNotFoundError names the missing version and what is installed.
	VersionNotFoundError struct {
		Name      string
		Available []string
	}

	// Installed is one managed version directory.
	Installed struct {
		Name    string
		Path    string
		Version Version
		Current bool
	}

	// Installation is a JDK found while scanning an install root.
	Installation struct {
		Name      string
		Path      string
		Detection Detection
	}

	// RootScan groups the installations found under one root.
	RootScan struct {
		Root          string
		Installations []Installation
	}

	// Manager owns the managed versions directory.
	Manager struct {
		VersionsDir string
		Runner      runner.Runner
		Logger      *log.Logger
		// Getenv defaults to os.Getenv.
		Getenv func(string) string
	}
)

func (e *VersionNotFoundError) Error() string {
	return fmt.Sprintf("Java version not found: %s", e.Name)
}

func (e *VersionNotFoundError) Unwrap() error { return ErrVersionNotFound }

// NewManager returns a Manager for versionsDir.
func NewManager(versionsDir string, r runner.Runner, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{VersionsDir: versionsDir, Runner: r, Logger: logger, Getenv: os.Getenv}
}

func (m *Manager) getenv(key string) string {
	if m.Getenv == nil {
		return os.Getenv(key)
	}
	return m.Getenv(key)
}

// Path returns the directory a managed version named name lives in.
func (m *Manager) Path(name string) string {
	return filepath.Join(m.VersionsDir, name)
}

// Names returns the managed version directory names, sorted.
func (m *Manager) Names() ([]string, error) {
	entries, err := os.ReadDir(m.VersionsDir)
	if err != nil {
		if isNotExist(err) {
			return nil, ErrNoManagedVersions
		}
		return nil, fmt.Errorf("read versions directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	return names, nil
}

// List returns the managed versions ordered by Java version, then name.
// The entry JAVA_HOME resolves to is marked Current.
func (m *Manager) List() ([]Installed, error) {
	names, err := m.Names()
	if err != nil {
		return nil, err
	}

	current := m.Current()
	out := make([]Installed, 0, len(names))
	for _, name := range names {
		in := Installed{Name: name, Path: m.Path(name), Current: name == current}
		if props, err := ReadRelease(in.Path); err == nil {
			in.Version, _ = ParseVersion(props["JAVA_VERSION"])
		}
		if in.Version.Feature == 0 {
			in.Version, _ = versionFromName(name)
		}
		out = append(out, in)
	}

	slices.SortStableFunc(out, func(a, b Installed) int {
		if c := a.Version.Compare(b.Version); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out, nil
}

// Current returns the managed version JAVA_HOME points into, or "".
func (m *Manager) Current() string {
	home := m.getenv("JAVA_HOME")
	if home == "" {
		return ""
	}
	rel, err := filepath.Rel(filepath.Clean(m.VersionsDir), filepath.Clean(home))
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return ""
	}
	first, _, _ := strings.Cut(filepath.ToSlash(rel), "/")
	return first
}

// Resolve returns the directory of the managed version name.
func (m *Manager) Resolve(name string) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	p := m.Path(name)
	if info, err := os.Stat(p); err == nil && info.IsDir() {
		return p, nil
	}
	available, err := m.Names()
	if err != nil && !errors.Is(err, ErrNoManagedVersions) {
		return "", err
	}
	return "", &VersionNotFoundError{Name: name, Available: available}
}

// Remove deletes a managed version. The current version is only removed
// when force is set.
func (m *Manager) Remove(name string, force bool) error {
	p, err := m.Resolve(name)
	if err != nil {
		return err
	}
	if !force && m.Current() == name {
		return fmt.Errorf("%s: %w", name, ErrVersionInUse)
	}
	if err := os.RemoveAll(p); err != nil {
		return fmt.Errorf("remove %s: %w", p, err)
	}
	m.Logger.Debug("removed Java version", "name", name, "path", p)
	return nil
}

// Active runs `java -version` from PATH and returns its trimmed output.
// ok is false when no java is on PATH or it exits non-zero.
func (m *Manager) Active(ctx context.Context) (output string, ok bool, err error) {
	bin, err := m.Runner.LookPath("java")
	if err != nil {
		return "", false, nil
	}
	res, err := m.Runner.Run(ctx, runner.Command{Name: bin, Args: []string{"-version"}})
	if err != nil {
		return "", false, err
	}
	if !res.Success() {
		return "", false, nil
	}
	out := strings.TrimSpace(res.Stderr)
	if out == "" {
		out = strings.TrimSpace(res.Stdout)
	}
	return out, true, nil
}

// Scan probes every directory directly under each root. Roots are scanned
// concurrently; missing roots are omitted and order follows roots.
func (m *Manager) Scan(ctx context.Context, roots []string) ([]RootScan, error) {
	results := make([]*RootScan, len(roots))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, root := range roots {
		g.Go(func() error {
			entries, err := os.ReadDir(root)
			if err != nil {
				if !isNotExist(err) {
					m.Logger.Debug("skipping install root", "root", root, "err", err)
				}
				return nil
			}
			scan := &RootScan{Root: root}
			for _, e := range entries {
				if err := ctx.Err(); err != nil {
					return err
				}
				if !e.IsDir() {
					continue
				}
				home := filepath.Join(root, e.Name())
				scan.Installations = append(scan.Installations, Installation{
					Name:      e.Name(),
					Path:      home,
					Detection: Detect(ctx, m.Runner, javaHomeOf(home)),
				})
			}
			results[i] = scan
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]RootScan, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, nil
}

// javaHomeOf maps a macOS bundle (Foo.jdk/Contents/Home) to its home.
func javaHomeOf(dir string) string {
	bundle := filepath.Join(dir, "Contents", "Home")
	if info, err := os.Stat(bundle); err == nil && info.IsDir() {
		return bundle
	}
	return dir
}

func validateName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || platform.IsWindowsReservedName(name) {
		return fmt.Errorf("%q: %w", name, ErrInvalidName)
	}
	return nil
}
