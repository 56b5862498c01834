// SPDX-License-Identifier: MPL-2.0

package fileops

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Status is the per-file outcome of convert and process.
type Status int

const (
	// StatusDone means the file was handled.
	StatusDone Status = iota
	// StatusNotFound means the input does not exist.
	StatusNotFound
	// StatusExists means the output exists and overwriting was not allowed.
	StatusExists
	// StatusSkipped means a dry run left the file untouched.
	StatusSkipped
	// StatusFailed means reading, transforming or writing failed.
	StatusFailed
)

// forEach runs fn for every item with at most NumCPU goroutines and
// returns the results in input order. fn reports per-item failures in its
// result; only context cancellation aborts the batch.
func forEach[I, O any](ctx context.Context, items []I, fn func(ctx context.Context, item I) O) ([]O, error) {
	results := make([]O, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, item := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = fn(gctx, item)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// FileType returns the upper-cased extension after the last dot, or
// "Unknown" when there is none or the name starts with its only dot.
func FileType(name string) string {
	ext, ok := extension(name)
	if !ok {
		return "Unknown"
	}
	return strings.ToUpper(ext)
}

// extension returns the text after the last dot when that dot is not the
// first character of name.
func extension(name string) (string, bool) {
	for i := len(name) - 1; i > 0; i-- {
		if name[i] == '.' {
			return name[i+1:], true
		}
	}
	return "", false
}

func isNotExist(err error) bool { return errors.Is(err, fs.ErrNotExist) }

// writeFileAtomic replaces path with data through a temp file in the same
// directory.
func writeFileAtomic(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".javawizard-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
