// SPDX-License-Identifier: MPL-2.0

package fileops

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// TargetFormats lists the formats convert can write.
var TargetFormats = []string{"json", "xml", "csv", "txt", "yaml", "toml"}

// ErrInvalidFormat is the sentinel wrapped by InvalidFormatError.
var ErrInvalidFormat = errors.New("invalid target format")

type (
	// InvalidFormatError is returned for an unsupported --to value.
	InvalidFormatError struct {
		Value string
	}

	// ConvertOptions configures Convert.
	ConvertOptions struct {
		// Format is one of TargetFormats, in any case.
		Format    string
		OutputDir string
		Overwrite bool
		// PreserveStructure recreates relative input directories under
		// OutputDir.
		PreserveStructure bool
	}

	// ConvertResult is the outcome for one input.
	ConvertResult struct {
		Input string
		// Name is the input base name.
		Name string
		// OutName is the output base name.
		OutName string
		// Output is the full output path.
		Output string
		Status Status
		Err    error
	}
)

func (e *InvalidFormatError) Error() string {
	return "Invalid target format: " + e.Value
}

func (e *InvalidFormatError) Unwrap() error { return ErrInvalidFormat }

// ParseTargetFormat validates format case-insensitively and returns it
// lower-cased.
func ParseTargetFormat(format string) (string, error) {
	f := strings.ToLower(strings.TrimSpace(format))
	if !slices.Contains(TargetFormats, f) {
		return "", &InvalidFormatError{Value: format}
	}
	return f, nil
}

// OutputName replaces the last extension of name with format. A leading
// dot is not treated as an extension separator.
func OutputName(name, format string) string {
	base := name
	if ext, ok := extension(name); ok {
		base = name[:len(name)-len(ext)-1]
	}
	return base + "." + strings.ToLower(format)
}

// outputPath places name under dir, keeping the relative directory of
// input when preserve is set and input stays inside the working tree.
func outputPath(dir, input, name string, preserve bool) string {
	if preserve && !filepath.IsAbs(input) {
		if rel := filepath.Dir(filepath.Clean(input)); rel != "." && filepath.IsLocal(rel) {
			return filepath.Join(dir, rel, name)
		}
	}
	return filepath.Join(dir, name)
}

// Convert converts every input concurrently. An input whose output path
// was already claimed by an earlier input fails without being read.
func Convert(ctx context.Context, inputs []string, opts ConvertOptions) ([]*ConvertResult, error) {
	format, err := ParseTargetFormat(opts.Format)
	if err != nil {
		return nil, err
	}
	dir := opts.OutputDir
	if dir == "" {
		dir = "."
	}

	results := make([]*ConvertResult, len(inputs))
	pending := make([]*ConvertResult, 0, len(inputs))
	claimed := make(map[string]string, len(inputs))
	for i, in := range inputs {
		r := &ConvertResult{Input: in, Name: filepath.Base(in)}
		r.OutName = OutputName(r.Name, format)
		r.Output = outputPath(dir, in, r.OutName, opts.PreserveStructure)
		results[i] = r

		key := filepath.Clean(r.Output)
		if first, ok := claimed[key]; ok {
			r.Status, r.Err = StatusFailed, fmt.Errorf("output %s is also produced from %s", r.OutName, first)
			continue
		}
		claimed[key] = in
		pending = append(pending, r)
	}

	_, err = forEach(ctx, pending, func(_ context.Context, r *ConvertResult) struct{} {
		convertFile(r, format, opts.Overwrite)
		return struct{}{}
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

func convertFile(r *ConvertResult, format string, overwrite bool) {
	data, err := os.ReadFile(r.Input)
	if err != nil {
		if isNotExist(err) {
			r.Status = StatusNotFound
			return
		}
		r.Status, r.Err = StatusFailed, err
		return
	}
	if !overwrite {
		if _, err := os.Stat(r.Output); err == nil {
			r.Status = StatusExists
			return
		}
	}
	doc, err := decodeDocument(r.Name, data)
	if err != nil {
		r.Status, r.Err = StatusFailed, fmt.Errorf("decode %s: %w", r.Name, err)
		return
	}
	out, err := encodeDocument(doc, format)
	if err != nil {
		r.Status, r.Err = StatusFailed, fmt.Errorf("encode %s: %w", strings.ToUpper(format), err)
		return
	}
	if err := writeFileAtomic(r.Output, out, 0o644); err != nil {
		r.Status, r.Err = StatusFailed, err
		return
	}
	r.Status = StatusDone
}
