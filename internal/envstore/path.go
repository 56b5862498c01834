// SPDX-License-Identifier: MPL-2.0

package envstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/amankrmj/javawizard/pkg/platform"
)

// ErrNotInPath is returned when removing a directory PATH does not contain.
var ErrNotInPath = errors.New("directory is not in PATH")

// Environment edits the persisted JAVA_HOME and PATH for one platform.
type Environment struct {
	Store Store
	GOOS  string
	// Exists reports whether a PATH directory exists; defaults to os.Stat.
	Exists func(dir string) bool
}

// NewEnvironment returns an Environment over store for goos.
func NewEnvironment(store Store, goos string) *Environment {
	return &Environment{Store: store, GOOS: goos, Exists: dirExists}
}

// ListSeparator returns the PATH separator for goos.
func ListSeparator(goos string) string {
	if goos == platform.Windows {
		return ";"
	}
	return ":"
}

// SplitPath splits a PATH value, dropping empty entries.
func SplitPath(value, goos string) []string {
	var out []string
	for _, e := range strings.Split(value, ListSeparator(goos)) {
		if e = strings.TrimSpace(e); e != "" {
			out = append(out, e)
		}
	}
	return out
}

// JoinPath joins entries with the separator for goos.
func JoinPath(entries []string, goos string) string {
	return strings.Join(entries, ListSeparator(goos))
}

// SamePath compares PATH entries, ignoring case on Windows and a trailing
// separator everywhere.
func SamePath(a, b, goos string) bool {
	a = strings.TrimRight(a, `/\`)
	b = strings.TrimRight(b, `/\`)
	if goos == platform.Windows {
		return strings.EqualFold(a, b)
	}
	return a == b
}

// AddEntry puts dir at the front (or the back when appendEntry is set),
// removing any existing occurrences first.
func AddEntry(entries []string, dir string, appendEntry bool, goos string) []string {
	out, _ := RemoveEntry(entries, dir, goos)
	if appendEntry {
		return append(out, dir)
	}
	return append([]string{dir}, out...)
}

// RemoveEntry drops every occurrence of dir and reports how many were removed.
func RemoveEntry(entries []string, dir, goos string) ([]string, int) {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if !SamePath(e, dir, goos) {
			out = append(out, e)
		}
	}
	return out, len(entries) - len(out)
}

// CleanEntries removes duplicates and directories for which exists is false.
func CleanEntries(entries []string, goos string, exists func(string) bool) (kept, removed []string) {
	for _, e := range entries {
		dup := slices.ContainsFunc(kept, func(k string) bool { return SamePath(k, e, goos) })
		// %VAR% references are left alone; they cannot be resolved here.
		if dup || (!strings.Contains(e, "%") && !exists(os.ExpandEnv(e))) {
			removed = append(removed, e)
			continue
		}
		kept = append(kept, e)
	}
	return kept, removed
}

// JavaPath puts javaBin first and drops every other entry mentioning java.
func JavaPath(entries []string, javaBin string) []string {
	out := []string{javaBin}
	for _, e := range entries {
		if e != "" && !strings.Contains(strings.ToLower(e), "java") {
			out = append(out, e)
		}
	}
	return out
}

// PathEntries returns the persisted PATH split into entries.
func (env *Environment) PathEntries(ctx context.Context) ([]string, error) {
	value, err := env.Store.Get(ctx, KeyPath)
	if err != nil {
		return nil, fmt.Errorf("reading PATH: %w", err)
	}
	return SplitPath(value, env.GOOS), nil
}

// SetPathEntries persists entries as PATH.
func (env *Environment) SetPathEntries(ctx context.Context, entries []string) error {
	return env.Store.Set(ctx, KeyPath, JoinPath(entries, env.GOOS))
}

// AddPath adds dir to the persisted PATH.
func (env *Environment) AddPath(ctx context.Context, dir string, appendEntry bool) ([]string, error) {
	entries, err := env.PathEntries(ctx)
	if err != nil {
		return nil, err
	}
	entries = AddEntry(entries, dir, appendEntry, env.GOOS)
	return entries, env.SetPathEntries(ctx, entries)
}

// RemovePath removes dir from the persisted PATH.
func (env *Environment) RemovePath(ctx context.Context, dir string) ([]string, error) {
	entries, err := env.PathEntries(ctx)
	if err != nil {
		return nil, err
	}
	entries, n := RemoveEntry(entries, dir, env.GOOS)
	if n == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrNotInPath)
	}
	return entries, env.SetPathEntries(ctx, entries)
}

// CleanPath drops duplicate and missing directories from the persisted PATH.
// Nothing is written when there is nothing to remove.
func (env *Environment) CleanPath(ctx context.Context) (removed []string, err error) {
	entries, err := env.PathEntries(ctx)
	if err != nil {
		return nil, err
	}
	exists := env.Exists
	if exists == nil {
		exists = dirExists
	}
	kept, removed := CleanEntries(entries, env.GOOS, exists)
	if len(removed) == 0 {
		return nil, nil
	}
	return removed, env.SetPathEntries(ctx, kept)
}

// UseJava persists JAVA_HOME=home and a PATH led by home/bin.
func (env *Environment) UseJava(ctx context.Context, home string) error {
	if err := env.Store.Set(ctx, KeyJavaHome, home); err != nil {
		return err
	}
	entries, err := env.PathEntries(ctx)
	if err != nil {
		return err
	}
	bin := filepath.Join(home, "bin")
	if env.GOOS == platform.Windows {
		bin = home + `\bin`
	}
	return env.SetPathEntries(ctx, JavaPath(entries, bin))
}

// DirExists reports whether dir exists for the running process.
func (env *Environment) DirExists(dir string) bool {
	if env.Exists != nil {
		return env.Exists(dir)
	}
	return dirExists(dir)
}

func dirExists(dir string) bool {
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}
