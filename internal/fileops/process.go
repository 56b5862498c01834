// SPDX-License-Identifier: MPL-2.0

package fileops

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	cueformat "cuelang.org/go/cue/format"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
	"mvdan.cc/sh/v3/syntax"
)

// Processing formats.
const (
	ProcessCleanup ProcessFormat = "cleanup"
	ProcessMinify  ProcessFormat = "minify"
	ProcessPretty  ProcessFormat = "format"
)

// ErrInvalidProcessFormat is the sentinel wrapped by InvalidProcessFormatError.
var ErrInvalidProcessFormat = errors.New("invalid processing format")

type (
	// ProcessFormat selects the transformation process applies.
	ProcessFormat string

	// InvalidProcessFormatError is returned for an unknown --format value.
	InvalidProcessFormatError struct {
		Value string
	}

	// ProcessOptions configures Process.
	ProcessOptions struct {
		Format    ProcessFormat
		OutputDir string
		DryRun    bool
	}

	// ProcessResult is the outcome for one input.
	ProcessResult struct {
		Input  string
		Name   string
		Output string
		// Changed reports whether the transformation altered the content.
		Changed bool
		Status  Status
		Err     error
	}
)

func (e *InvalidProcessFormatError) Error() string {
	return fmt.Sprintf("invalid processing format %q (valid: cleanup, minify, format)", e.Value)
}

func (e *InvalidProcessFormatError) Unwrap() error { return ErrInvalidProcessFormat }

// ParseProcessFormat validates s; the empty string means cleanup.
func ParseProcessFormat(s string) (ProcessFormat, error) {
	switch f := ProcessFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return ProcessCleanup, nil
	case ProcessCleanup, ProcessMinify, ProcessPretty:
		return f, nil
	default:
		return "", &InvalidProcessFormatError{Value: s}
	}
}

// Process transforms every input concurrently and writes the result to
// OutputDir under the input's base name. A dry run only reads and
// transforms.
func Process(ctx context.Context, inputs []string, opts ProcessOptions) ([]*ProcessResult, error) {
	format, err := ParseProcessFormat(string(opts.Format))
	if err != nil {
		return nil, err
	}
	dir := opts.OutputDir
	if dir == "" {
		dir = "."
	}
	return forEach(ctx, inputs, func(_ context.Context, in string) *ProcessResult {
		r := &ProcessResult{Input: in, Name: filepath.Base(in)}
		r.Output = filepath.Join(dir, r.Name)
		processFile(r, format, opts.DryRun)
		return r
	})
}

func processFile(r *ProcessResult, format ProcessFormat, dryRun bool) {
	info, err := os.Stat(r.Input)
	if err != nil {
		if isNotExist(err) {
			r.Status = StatusNotFound
			return
		}
		r.Status, r.Err = StatusFailed, err
		return
	}
	if info.IsDir() {
		r.Status, r.Err = StatusFailed, fmt.Errorf("%s is a directory", r.Input)
		return
	}
	data, err := os.ReadFile(r.Input)
	if err != nil {
		r.Status, r.Err = StatusFailed, err
		return
	}
	out, err := ProcessContent(r.Name, data, format)
	if err != nil {
		r.Status, r.Err = StatusFailed, err
		return
	}
	r.Changed = !bytes.Equal(out, data)
	if dryRun {
		r.Status = StatusSkipped
		return
	}
	if err := writeFileAtomic(r.Output, out, info.Mode().Perm()); err != nil {
		r.Status, r.Err = StatusFailed, err
		return
	}
	r.Status = StatusDone
}

// ProcessContent applies format to data, choosing a formatter by the
// extension of name.
func ProcessContent(name string, data []byte, format ProcessFormat) ([]byte, error) {
	ext, _ := extension(name)
	ext = strings.ToLower(ext)
	switch format {
	case ProcessCleanup:
		return Cleanup(data), nil
	case ProcessMinify:
		if ext == "json" {
			var buf bytes.Buffer
			if err := json.Compact(&buf, data); err != nil {
				return nil, fmt.Errorf("minify %s: %w", name, err)
			}
			return buf.Bytes(), nil
		}
		return minifyText(data), nil
	case ProcessPretty:
		return formatByExtension(name, ext, data)
	default:
		return nil, &InvalidProcessFormatError{Value: string(format)}
	}
}

// Cleanup normalizes line endings to LF, strips trailing whitespace,
// collapses runs of more than two blank lines and ends non-empty content
// with exactly one newline.
func Cleanup(data []byte) []byte {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	lines := strings.Split(text, "\n")

	var sb strings.Builder
	blank := 0
	for _, l := range lines {
		l = strings.TrimRight(l, " \t\v\f")
		if l == "" {
			blank++
			if blank > 2 {
				continue
			}
		} else {
			blank = 0
		}
		sb.WriteString(l)
		sb.WriteByte('\n')
	}
	out := strings.TrimRight(sb.String(), "\n")
	if out == "" {
		return []byte{}
	}
	return []byte(out + "\n")
}

// minifyText drops blank lines and leading indentation.
func minifyText(data []byte) []byte {
	var sb strings.Builder
	for _, l := range strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n") {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		sb.WriteString(l)
		sb.WriteByte('\n')
	}
	return []byte(sb.String())
}

func formatByExtension(name, ext string, data []byte) ([]byte, error) {
	switch ext {
	case "json":
		var buf bytes.Buffer
		if err := json.Indent(&buf, bytes.TrimSpace(data), "", "  "); err != nil {
			return nil, fmt.Errorf("format %s: %w", name, err)
		}
		buf.WriteByte('\n')
		return buf.Bytes(), nil
	case "cue":
		out, err := cueformat.Source(data, cueformat.Simplify())
		if err != nil {
			return nil, fmt.Errorf("format %s: %w", name, err)
		}
		return out, nil
	case "sh", "bash":
		return formatShell(name, ext, data)
	case "toml":
		var v map[string]any
		if err := toml.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("format %s: %w", name, err)
		}
		return toml.Marshal(v)
	case "yaml", "yml":
		return formatYAML(name, data)
	default:
		return Cleanup(data), nil
	}
}

func formatShell(name, ext string, data []byte) ([]byte, error) {
	lang := syntax.LangPOSIX
	if ext == "bash" || bytes.HasPrefix(data, []byte("#!/bin/bash")) || bytes.HasPrefix(data, []byte("#!/usr/bin/env bash")) {
		lang = syntax.LangBash
	}
	f, err := syntax.NewParser(syntax.KeepComments(true), syntax.Variant(lang)).Parse(bytes.NewReader(data), name)
	if err != nil {
		return nil, fmt.Errorf("format %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := syntax.NewPrinter(syntax.Indent(0)).Print(&buf, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// formatYAML re-indents every document of data, keeping comments and key
// order through yaml.Node.
func formatYAML(name string, data []byte) ([]byte, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	for {
		var node yaml.Node
		err := dec.Decode(&node)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("format %s: %w", name, err)
		}
		if err := enc.Encode(&node); err != nil {
			return nil, err
		}
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
