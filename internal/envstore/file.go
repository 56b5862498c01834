// SPDX-License-Identifier: MPL-2.0

package envstore

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

const fileHeader = "# Managed by javawizard. Source this file from your shell profile:\n#   . %s\n"

// FileStore persists variables as export statements in a shell file.
type FileStore struct {
	path string
	// getenv supplies values the file does not define yet.
	getenv func(string) string
}

type assignment struct {
	key   string
	value string
}

// NewFileStore returns a FileStore writing to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, getenv: os.Getenv}
}

// Location implements Store.
func (s *FileStore) Location() string { return s.path }

// Get implements Store. Keys the file does not define fall back to the
// process environment, so the first PATH edit starts from the live PATH.
func (s *FileStore) Get(_ context.Context, key string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}
	vars, err := s.read()
	if err != nil {
		return "", err
	}
	for _, a := range vars {
		if a.key == key {
			return a.value, nil
		}
	}
	return s.getenv(key), nil
}

// Set implements Store.
func (s *FileStore) Set(_ context.Context, key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	vars, err := s.read()
	if err != nil {
		return &SetError{Key: key, Err: err}
	}
	if i := slices.IndexFunc(vars, func(a assignment) bool { return a.key == key }); i >= 0 {
		vars[i].value = value
	} else {
		vars = append(vars, assignment{key: key, value: value})
	}
	if err := s.write(vars); err != nil {
		return &SetError{Key: key, Err: err}
	}
	return nil
}

// read parses the export statements of the file; a missing file is empty.
func (s *FileStore) read() ([]assignment, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	// Only the bash variant yields DeclClause nodes for export.
	f, err := syntax.NewParser(syntax.Variant(syntax.LangBash)).Parse(bytes.NewReader(data), s.path)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.path, err)
	}

	var vars []assignment
	syntax.Walk(f, func(node syntax.Node) bool {
		decl, ok := node.(*syntax.DeclClause)
		if !ok || decl.Variant == nil || decl.Variant.Value != "export" {
			return true
		}
		for _, a := range decl.Args {
			if a.Name == nil || a.Naked || a.Value == nil {
				continue
			}
			if v, ok := wordValue(a.Value); ok {
				vars = append(vars, assignment{key: a.Name.Value, value: v})
			}
		}
		return false
	})
	return vars, nil
}

func (s *FileStore) write(vars []assignment) error {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, fileHeader, s.path)
	for _, a := range vars {
		quoted, err := syntax.Quote(a.value, syntax.LangPOSIX)
		if err != nil {
			return fmt.Errorf("quoting %s: %w", a.key, err)
		}
		fmt.Fprintf(&buf, "export %s=%s\n", a.key, quoted)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".env-*.sh")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

// wordValue flattens a word made only of literal and quoted parts.
func wordValue(w *syntax.Word) (string, bool) {
	var sb strings.Builder
	for _, part := range w.Parts {
		switch p := part.(type) {
		case *syntax.Lit:
			sb.WriteString(unescape(p.Value, ""))
		case *syntax.SglQuoted:
			sb.WriteString(p.Value)
		case *syntax.DblQuoted:
			for _, inner := range p.Parts {
				lit, ok := inner.(*syntax.Lit)
				if !ok {
					return "", false
				}
				sb.WriteString(unescape(lit.Value, "\"\\`$"))
			}
		default:
			return "", false
		}
	}
	return sb.String(), true
}

// unescape drops the backslash before a following character. Inside
// double quotes only the characters in special are escapable; an empty
// special means every character is.
func unescape(s, special string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && (special == "" || strings.IndexByte(special, s[i+1]) >= 0) {
			i++
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}
