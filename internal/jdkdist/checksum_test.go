// SPDX-License-Identifier: MPL-2.0

package jdkdist

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseChecksum(t *testing.T) {
	t.Parallel()

	hash := strings.Repeat("ab", 32)
	tests := []struct {
		in      string
		want    string
		wantErr error
	}{
		{hash + "\n", hash, nil},
		{strings.ToUpper(hash) + "  graalvm-community-jdk-21.0.2_linux-x64_bin.tar.gz\n", hash, nil},
		{"not a checksum", "", ErrNoChecksum},
		{"", "", ErrNoChecksum},
	}
	for _, tt := range tests {
		got, err := ParseChecksumString(tt.in)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("ParseChecksumString(%q) error = %v, want %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseChecksumString(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestVerifyFile(t *testing.T) {
	t.Parallel()

	p := filepath.Join(t.TempDir(), "archive")
	data := []byte("jdk bytes")
	if err := os.WriteFile(p, data, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := VerifyFile(p, strings.ToUpper(sha256Hex(data))); err != nil {
		t.Errorf("VerifyFile() with matching hash = %v", err)
	}

	err := VerifyFile(p, strings.Repeat("0", 64))
	var ce *ChecksumError
	if !errors.As(err, &ce) || !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("VerifyFile() error = %v, want ChecksumError", err)
	}
	if ce.Got != sha256Hex(data) {
		t.Errorf("Got = %s", ce.Got)
	}
}
