// SPDX-License-Identifier: MPL-2.0

// Package watch re-runs a callback when project files change.
//
// Directories under the base directory are registered with fsnotify; events
// are filtered through doublestar globs and coalesced over a debounce window
// so one save produces one rebuild.
package watch

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 500 * time.Millisecond

// defaultIgnores keeps build outputs and tool caches from retriggering the
// build that produced them.
var defaultIgnores = []string{
	"**/.git/**",
	"**/.gradle/**",
	"**/.idea/**",
	"**/build/**",
	"**/target/**",
	"**/out/**",
	"**/*.swp",
	"**/*~",
	"**/.DS_Store",
}

// ErrAlreadyRunning is returned by a second call to Run.
var ErrAlreadyRunning = errors.New("watch: Run called more than once")

type (
	// Config holds the parameters for a Watcher.
	Config struct {
		// Patterns select the files that trigger OnChange. Empty matches all.
		Patterns []string
		// Ignore is merged with the built-in ignores.
		Ignore []string
		// Include lists paths relative to BaseDir that stay watched even
		// when an ignore pattern matches them. Directories leading to an
		// included path are registered too.
		Include []string
		// Debounce defaults to 500ms when zero.
		Debounce time.Duration
		// BaseDir defaults to the working directory.
		BaseDir string
		// OnChange receives the sorted changed paths relative to BaseDir.
		OnChange func(ctx context.Context, changed []string) error
		// Logger defaults to log.Default().
		Logger *log.Logger
	}

	// Watcher fires a debounced callback when matching files change.
	Watcher struct {
		cfg      Config
		fsw      *fsnotify.Watcher
		ignores  []string
		includes []string
		logger   *log.Logger
		debounce time.Duration
		baseDir  string
		started  atomic.Bool
	}
)

// New validates the patterns and registers every non-ignored directory
// under BaseDir.
func New(cfg Config) (*Watcher, error) {
	if err := validatePatterns(cfg.Patterns, "watch"); err != nil {
		return nil, err
	}
	if err := validatePatterns(cfg.Ignore, "ignore"); err != nil {
		return nil, err
	}

	baseDir := cfg.BaseDir
	if baseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("watch: determine working directory: %w", err)
		}
		baseDir = wd
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve base directory: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		ignores:  append(slices.Clone(defaultIgnores), cfg.Ignore...),
		includes: cleanIncludes(cfg.Include),
		logger:   cfg.Logger,
		debounce: cfg.Debounce,
		baseDir:  absBase,
	}
	if w.logger == nil {
		w.logger = log.Default()
	}
	if w.debounce <= 0 {
		w.debounce = defaultDebounce
	}

	if err := w.addDirectories(); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Run processes events until ctx is cancelled. It returns nil on
// cancellation and an error when the underlying watcher breaks.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
		running atomic.Bool
	)

	// fire skips while a previous callback is still running and re-arms the
	// timer so the pending set is not lost.
	fire := func() {
		if ctx.Err() != nil {
			return
		}
		if !running.CompareAndSwap(false, true) {
			w.logger.Debug("rebuild still running, deferring changes")
			mu.Lock()
			if timer != nil {
				timer.Reset(w.debounce)
			}
			mu.Unlock()
			return
		}
		defer running.Store(false)

		mu.Lock()
		changed := slices.Sorted(maps.Keys(pending))
		clear(pending)
		mu.Unlock()
		if len(changed) == 0 {
			return
		}

		w.logger.Info("change detected", "files", len(changed))
		if w.cfg.OnChange != nil {
			if err := w.cfg.OnChange(ctx, changed); err != nil {
				w.logger.Error("rebuild failed", "err", err)
			}
		}
	}

	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		if err := w.fsw.Close(); err != nil {
			w.logger.Warn("close watcher", "err", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: event channel closed")
			}
			rel, err := filepath.Rel(w.baseDir, evt.Name)
			if err != nil {
				rel = evt.Name
			}
			if w.isIgnored(rel) {
				continue
			}
			if evt.Has(fsnotify.Create) {
				w.maybeAddDir(evt.Name)
			}
			if !w.matchesPatterns(rel) {
				continue
			}

			mu.Lock()
			pending[filepath.ToSlash(rel)] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: error channel closed")
			}
			if isFatalFsnotifyError(err) {
				return fmt.Errorf("watch: fatal fsnotify error: %w", err)
			}
			w.logger.Warn("fsnotify error", "err", err)
		}
	}
}

func (w *Watcher) addDirectories() error {
	err := filepath.WalkDir(w.baseDir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			w.logger.Warn("skipping inaccessible path", "path", path, "err", walkErr)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(w.baseDir, path)
		if relErr != nil {
			return nil //nolint:nilerr
		}
		if rel != "." && w.isIgnoredDir(rel) {
			return filepath.SkipDir
		}
		if addErr := w.fsw.Add(path); addErr != nil {
			return fmt.Errorf("watch: add directory %q: %w", path, addErr)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("watch: walk directory tree: %w", err)
	}
	return nil
}

func (w *Watcher) maybeAddDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	rel, err := filepath.Rel(w.baseDir, path)
	if err != nil || w.isIgnoredDir(rel) {
		return
	}
	if err := w.fsw.Add(path); err != nil {
		w.logger.Warn("watch new directory", "path", path, "err", err)
	}
}

// isIgnoredDir also tests rel with a trailing slash so "**/build/**"
// excludes the build directory itself.
func (w *Watcher) isIgnoredDir(rel string) bool {
	if w.isIncluded(rel) {
		return false
	}
	return matchAny(w.ignores, rel) || matchAny(w.ignores, rel+"/")
}

func (w *Watcher) isIgnored(rel string) bool {
	return !w.isIncluded(rel) && matchAny(w.ignores, rel)
}

// isIncluded reports whether rel is an included path, lies under one, or
// is a directory on the way to one.
func (w *Watcher) isIncluded(rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, inc := range w.includes {
		if rel == inc || strings.HasPrefix(rel, inc+"/") || strings.HasPrefix(inc, rel+"/") {
			return true
		}
	}
	return false
}

func cleanIncludes(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		p = filepath.ToSlash(filepath.Clean(p))
		if p == "." || p == ".." || strings.HasPrefix(p, "../") || filepath.IsAbs(p) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (w *Watcher) matchesPatterns(rel string) bool {
	return len(w.cfg.Patterns) == 0 || matchAny(w.cfg.Patterns, rel)
}

// DefaultIgnores returns a copy of the built-in ignore patterns.
func DefaultIgnores() []string {
	return slices.Clone(defaultIgnores)
}

func matchAny(patterns []string, rel string) bool {
	normalized := filepath.ToSlash(rel)
	for _, pat := range patterns {
		if ok, err := doublestar.Match(pat, normalized); err == nil && ok {
			return true
		}
	}
	return false
}

func validatePatterns(patterns []string, label string) error {
	for _, pat := range patterns {
		if pat == "" || !doublestar.ValidatePattern(pat) {
			return fmt.Errorf("watch: invalid %s pattern %q", label, pat)
		}
	}
	return nil
}
