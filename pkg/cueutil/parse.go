// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// DefaultMaxFileSize bounds the size of user-provided CUE files (5 MiB).
const DefaultMaxFileSize int64 = 5 << 20

type (
	// ParseResult contains the result of a successful CUE parse operation.
	ParseResult[T any] struct {
		// Value is the decoded Go struct.
		Value *T

		// Unified is the unified CUE value, available for callers that need
		// to inspect fields the Go struct does not model.
		Unified cue.Value
	}

	// Option configures ParseAndDecode.
	Option func(*options)

	options struct {
		filename    string
		maxFileSize int64
		concrete    bool
	}
)

func defaultOptions() options {
	return options{
		maxFileSize: DefaultMaxFileSize,
		concrete:    true,
	}
}

// WithFilename sets the filename used in error messages.
func WithFilename(name string) Option {
	return func(o *options) { o.filename = name }
}

// WithMaxFileSize overrides DefaultMaxFileSize.
func WithMaxFileSize(size int64) Option {
	return func(o *options) { o.maxFileSize = size }
}

// WithConcrete controls whether validation requires every field to be
// concrete. Defaults to true; schemas whose defaults are filled in later
// by viper can turn it off.
func WithConcrete(concrete bool) Option {
	return func(o *options) { o.concrete = concrete }
}

// ParseAndDecode compiles schema, unifies data with the definition at
// schemaPath (e.g. "#Config") and decodes the result into T.
func ParseAndDecode[T any](schema, data []byte, schemaPath string, opts ...Option) (*ParseResult[T], error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	filename := o.filename
	if filename == "" {
		filename = "<input>"
	}

	if err := CheckFileSize(data, o.maxFileSize, filename); err != nil {
		return nil, err
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileBytes(schema)
	if schemaValue.Err() != nil {
		return nil, fmt.Errorf("internal error: failed to compile schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(filename))
	if userValue.Err() != nil {
		return nil, FormatError(userValue.Err(), filename)
	}

	root := schemaValue.LookupPath(cue.ParsePath(schemaPath))
	if root.Err() != nil {
		return nil, fmt.Errorf("internal error: schema definition %s not found: %w", schemaPath, root.Err())
	}

	unified := root.Unify(userValue)
	if err := unified.Validate(cue.Concrete(o.concrete)); err != nil {
		return nil, FormatError(err, filename)
	}

	var result T
	if err := unified.Decode(&result); err != nil {
		return nil, FormatError(err, filename)
	}

	return &ParseResult[T]{
		Value:   &result,
		Unified: unified,
	}, nil
}
