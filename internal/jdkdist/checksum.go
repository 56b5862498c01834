// SPDX-License-Identifier: MPL-2.0

package jdkdist

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var (
	// ErrChecksumMismatch is wrapped by ChecksumError.
	ErrChecksumMismatch = errors.New("checksum mismatch")
	// ErrNoChecksum is returned when a checksum document has no SHA-256.
	ErrNoChecksum = errors.New("no checksum found")
)

// ChecksumError reports a verification failure.
type ChecksumError struct {
	Filename string
	Expected string
	Got      string
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum verification failed for %s\nExpected: %s\nGot:      %s", e.Filename, e.Expected, e.Got)
}

func (e *ChecksumError) Unwrap() error { return ErrChecksumMismatch }

// ParseChecksum reads a .sha256 companion file. Both the bare "<hash>" form
// GraalVM publishes and the sha256sum "<hash>  <file>" form are accepted.
func ParseChecksum(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, 4<<10))
	if err != nil {
		return "", fmt.Errorf("reading checksum: %w", err)
	}
	for _, field := range strings.Fields(string(data)) {
		if isValidHexHash(field) {
			return strings.ToLower(field), nil
		}
	}
	return "", ErrNoChecksum
}

// VerifyFile compares the SHA-256 of path with expected, case-insensitively.
func VerifyFile(path, expected string) error {
	got, err := ComputeFileHash(path)
	if err != nil {
		return err
	}
	if !strings.EqualFold(got, expected) {
		return &ChecksumError{Filename: path, Expected: strings.ToLower(expected), Got: got}
	}
	return nil
}

// ComputeFileHash streams path through SHA-256.
func ComputeFileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing file %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func isValidHexHash(s string) bool {
	if len(s) != 64 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

// ParseChecksumString is ParseChecksum over an in-memory document.
func ParseChecksumString(s string) (string, error) {
	return ParseChecksum(strings.NewReader(s))
}
