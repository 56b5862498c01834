// SPDX-License-Identifier: MPL-2.0

package nativebuild

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
)

// ErrInvalidClassName is the sentinel wrapped by InvalidClassNameError.
var ErrInvalidClassName = errors.New("invalid class name")

// classNameRe accepts binary names such as com.example.Outer$Inner.
var classNameRe = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*(\.[A-Za-z_$][A-Za-z0-9_$]*)*$`)

// reflectFlags are switched on for every generated entry.
var reflectFlags = []string{
	"allDeclaredConstructors",
	"allPublicConstructors",
	"allDeclaredMethods",
	"allPublicMethods",
	"allDeclaredFields",
	"allPublicFields",
}

// InvalidClassNameError is returned for a name that is not a Java binary name.
type InvalidClassNameError struct {
	Name string
}

func (e *InvalidClassNameError) Error() string {
	return fmt.Sprintf("invalid class name %q", e.Name)
}

func (e *InvalidClassNameError) Unwrap() error { return ErrInvalidClassName }

// ReflectEntry is one element of a reflect-config.json array. Keys other
// than name are kept as found so hand-written method lists survive a merge.
type ReflectEntry map[string]any

// Name returns the class the entry configures.
func (e ReflectEntry) Name() string {
	s, _ := e["name"].(string)
	return s
}

// MergeReflectConfig adds full reflective access for classes to existing.
// Entries are matched by name and the result is sorted by name.
func MergeReflectConfig(existing []ReflectEntry, classes []string) ([]ReflectEntry, error) {
	byName := make(map[string]ReflectEntry, len(existing)+len(classes))
	for _, e := range existing {
		if n := e.Name(); n != "" {
			byName[n] = e
		}
	}
	for _, c := range classes {
		c = strings.TrimSpace(c)
		if !classNameRe.MatchString(c) {
			return nil, &InvalidClassNameError{Name: c}
		}
		e, ok := byName[c]
		if !ok {
			e = ReflectEntry{"name": c}
			byName[c] = e
		}
		for _, f := range reflectFlags {
			e[f] = true
		}
	}

	out := make([]ReflectEntry, 0, len(byName))
	for _, e := range byName {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b ReflectEntry) int { return strings.Compare(a.Name(), b.Name()) })
	return out, nil
}

// ReadReflectConfig parses path; a missing file yields no entries.
func ReadReflectConfig(path string) ([]ReflectEntry, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var entries []ReflectEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return entries, nil
}

// EncodeReflectConfig renders entries as indented JSON.
func EncodeReflectConfig(entries []ReflectEntry) ([]byte, error) {
	if entries == nil {
		entries = []ReflectEntry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// WriteReflectConfig merges classes into the manifest at path and returns
// the number of entries written.
func WriteReflectConfig(path string, classes []string) (int, error) {
	existing, err := ReadReflectConfig(path)
	if err != nil {
		return 0, err
	}
	merged, err := MergeReflectConfig(existing, classes)
	if err != nil {
		return 0, err
	}
	data, err := EncodeReflectConfig(merged)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, err
	}
	return len(merged), os.WriteFile(path, data, 0o644)
}
