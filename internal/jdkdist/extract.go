// SPDX-License-Identifier: MPL-2.0

package jdkdist

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// maxExtractBytes bounds the total uncompressed size of an archive.
const maxExtractBytes = 4 << 30

var (
	// ErrUnsafePath is returned for entries that would land outside the destination.
	ErrUnsafePath = errors.New("archive entry escapes destination")
	// ErrArchiveTooLarge is returned when maxExtractBytes is exceeded.
	ErrArchiveTooLarge = errors.New("archive exceeds size limit")
	// ErrUnknownFormat is returned for archives that are neither zip nor tar.gz.
	ErrUnknownFormat = errors.New("unknown archive format")
)

// Extract unpacks the archive at path into dest. name, typically the
// published archive name, selects the format by extension.
func Extract(path, name, dest string) error {
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return err
	}
	// Entries are checked against the real destination, so symlinks
	// created earlier in the archive cannot redirect later writes.
	resolvedDest, err := filepath.EvalSymlinks(dest)
	if err != nil {
		return err
	}
	dest = resolvedDest
	switch lower := strings.ToLower(name); {
	case strings.HasSuffix(lower, ".zip"):
		return extractZip(path, dest)
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return extractTarGz(path, dest)
	}
	return fmt.Errorf("%s: %w", name, ErrUnknownFormat)
}

func extractTarGz(path, dest string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer func() { _ = f.Close() }()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("creating gzip reader: %w", err)
	}
	defer func() { _ = gz.Close() }()

	var budget int64 = maxExtractBytes
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading tar entry: %w", err)
		}

		target, err := safeJoin(dest, hdr.Name)
		if err != nil {
			return err
		}
		if hdr.Typeflag != tar.TypeSymlink {
			if err := checkResolved(dest, target, hdr.Name); err != nil {
				return err
			}
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if budget -= hdr.Size; budget < 0 {
				return ErrArchiveTooLarge
			}
			if err := writeFile(target, tr, fs.FileMode(hdr.Mode).Perm()); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if err := writeSymlink(dest, target, hdr.Linkname); err != nil {
				return err
			}
		default:
			// hard links, devices and fifos do not occur in JDK archives
		}
	}
}

func extractZip(path, dest string) error {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("opening zip: %w", err)
	}
	defer func() { _ = zr.Close() }()

	var budget int64 = maxExtractBytes
	for _, zf := range zr.File {
		target, err := safeJoin(dest, zf.Name)
		if err != nil {
			return err
		}
		mode := zf.Mode()
		if mode&fs.ModeSymlink == 0 {
			if err := checkResolved(dest, target, zf.Name); err != nil {
				return err
			}
		}

		switch {
		case mode.IsDir():
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case mode&fs.ModeSymlink != 0:
			rc, err := zf.Open()
			if err != nil {
				return err
			}
			link, err := io.ReadAll(io.LimitReader(rc, 4<<10))
			_ = rc.Close()
			if err != nil {
				return err
			}
			if err := writeSymlink(dest, target, string(link)); err != nil {
				return err
			}
		default:
			if budget -= int64(zf.UncompressedSize64); budget < 0 {
				return ErrArchiveTooLarge
			}
			rc, err := zf.Open()
			if err != nil {
				return err
			}
			perm := mode.Perm()
			if perm == 0 {
				perm = 0o644
			}
			err = writeFile(target, rc, perm)
			_ = rc.Close()
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func safeJoin(dest, name string) (string, error) {
	clean := filepath.FromSlash(strings.TrimPrefix(name, "./"))
	if clean == "" || clean == "." {
		return dest, nil
	}
	if !filepath.IsLocal(clean) {
		return "", fmt.Errorf("%s: %w", name, ErrUnsafePath)
	}
	return filepath.Join(dest, clean), nil
}

func writeFile(target string, r io.Reader, perm fs.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm|0o200)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		_ = out.Close()
		return fmt.Errorf("extracting %s: %w", filepath.Base(target), err)
	}
	return out.Close()
}

// checkResolved rejects an entry whose path, after following the
// symlinks already on disk, lands outside dest.
func checkResolved(dest, target, name string) error {
	resolved, err := resolveExisting(target)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", name, err)
	}
	if !within(dest, resolved) {
		return fmt.Errorf("%s: %w", name, ErrUnsafePath)
	}
	return nil
}

// resolveExisting evaluates symlinks in the longest existing prefix of p
// and appends the remaining components unchanged.
func resolveExisting(p string) (string, error) {
	var rest []string
	for {
		resolved, err := filepath.EvalSymlinks(p)
		if err == nil {
			return filepath.Join(append([]string{resolved}, rest...)...), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(p)
		if parent == p {
			return "", err
		}
		rest = append([]string{filepath.Base(p)}, rest...)
		p = parent
	}
}

// followLink resolves link relative to dir the way the kernel would,
// evaluating each existing prefix before applying the next component.
func followLink(dir, link string) string {
	cur := dir
	if filepath.IsAbs(link) {
		cur = filepath.VolumeName(link) + string(filepath.Separator)
	}
	for _, part := range strings.Split(filepath.ToSlash(link), "/") {
		switch part {
		case "", ".":
			continue
		case "..":
			cur = filepath.Dir(cur)
			continue
		}
		cur = filepath.Join(cur, part)
		if resolved, err := filepath.EvalSymlinks(cur); err == nil {
			cur = resolved
		}
	}
	return cur
}

func within(dest, p string) bool {
	rel, err := filepath.Rel(dest, p)
	return err == nil && (rel == "." || filepath.IsLocal(rel))
}

// writeSymlink creates target -> link when the link resolves inside dest.
// The link is followed from the real parent directory one component at a
// time, so links created earlier in the archive are honored.
func writeSymlink(dest, target, link string) error {
	parent, err := resolveExisting(filepath.Dir(target))
	if err != nil {
		return fmt.Errorf("resolving %s: %w", target, err)
	}
	if !within(dest, parent) || !within(dest, followLink(parent, link)) {
		return fmt.Errorf("symlink %s -> %s: %w", target, link, ErrUnsafePath)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	return os.Symlink(link, target)
}

// findJDKRoot descends through single wrapper directories and the macOS
// Contents/Home bundle layout until it reaches a directory holding bin/.
func findJDKRoot(dir string) (string, error) {
	for range 4 {
		if isDir(filepath.Join(dir, "bin")) {
			return dir, nil
		}
		if home := filepath.Join(dir, "Contents", "Home"); isDir(home) {
			dir = home
			continue
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			return "", err
		}
		var sub []string
		for _, e := range entries {
			if e.IsDir() && !strings.HasPrefix(e.Name(), ".") && !strings.HasPrefix(e.Name(), "__MACOSX") {
				sub = append(sub, e.Name())
			}
		}
		if len(sub) != 1 {
			break
		}
		dir = filepath.Join(dir, sub[0])
	}
	return "", errors.New("archive does not contain a JDK (no bin directory)")
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}
