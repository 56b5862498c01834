// SPDX-License-Identifier: MPL-2.0

package nativebuild

import (
	"context"
	"path/filepath"
	"slices"
	"strings"

	"github.com/amankrmj/javawizard/internal/watch"
)

// WatchPatterns selects the files whose changes trigger a rebuild.
func (b *Builder) WatchPatterns() []string {
	patterns := []string{"**/*.java", "**/*.jar", filepath.ToSlash(filepath.Base(b.Project.File))}
	for _, inc := range b.WatchIncludes() {
		if !strings.HasSuffix(inc, ".jar") {
			patterns = append(patterns, inc, inc+"/**")
		}
	}
	return patterns
}

// WatchIncludes lists the project-relative jar and classpath entries. They
// usually live under build/ and are watched despite the build ignores.
func (b *Builder) WatchIncludes() []string {
	var out []string
	for _, entry := range append([]string{b.Project.Jar}, b.Project.Classpath...) {
		if rel, ok := b.projectRel(entry); ok && !slices.Contains(out, rel) {
			out = append(out, rel)
		}
	}
	return out
}

// WatchIgnores lists what the build itself writes, so finishing a build
// does not schedule the next one.
func (b *Builder) WatchIgnores() []string {
	var out []string
	for _, dir := range []string{b.Project.OutputDir, b.Project.Dist.Dir} {
		if rel, ok := b.projectRel(dir); ok {
			out = append(out, rel, rel+"/**")
		}
	}
	if rel, ok := b.projectRel(b.Project.Sources.Archive); ok {
		out = append(out, rel)
	}
	return out
}

// projectRel returns entry as a slash path relative to the project
// directory, rejecting entries outside it.
func (b *Builder) projectRel(entry string) (string, bool) {
	if entry == "" {
		return "", false
	}
	rel, err := filepath.Rel(b.Project.Dir, b.Project.Path(entry))
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") || strings.ContainsAny(rel, "*?[{") {
		return "", false
	}
	return rel, true
}

// Watch runs tasks once and again after every matching change under the
// project directory until ctx is cancelled. Failed rebuilds are logged and
// watching continues.
func (b *Builder) Watch(ctx context.Context, tasks ...string) error {
	if err := b.Run(ctx, tasks...); err != nil {
		b.logger().Error("build failed", "err", err)
	}

	w, err := watch.New(watch.Config{
		Patterns: b.WatchPatterns(),
		Include:  b.WatchIncludes(),
		Ignore:   b.WatchIgnores(),
		Debounce: b.WatchDebounce,
		BaseDir:  b.Project.Dir,
		Logger:   b.logger(),
		OnChange: func(ctx context.Context, changed []string) error {
			if b.Project.File != "" && containsProjectFile(changed, b.Project.File) {
				if p, err := LoadProject(b.Project.File); err != nil {
					b.logger().Error("project file invalid, keeping previous settings", "err", err)
				} else {
					b.Project = p
				}
			}
			if err := b.Run(ctx, tasks...); err != nil {
				b.logger().Error("build failed", "err", err)
			}
			return nil
		},
	})
	if err != nil {
		return err
	}
	b.logger().Info("watching for changes", "dir", b.Project.Dir)
	return w.Run(ctx)
}

func containsProjectFile(changed []string, file string) bool {
	base := filepath.ToSlash(filepath.Base(file))
	for _, c := range changed {
		if c == base {
			return true
		}
	}
	return false
}
