// SPDX-License-Identifier: MPL-2.0

package fileops

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/amankrmj/javawizard/internal/testutil"
)

func TestCleanup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"only blank lines", "\n\n\n", ""},
		{"crlf and trailing spaces", "a  \r\nb\t\r\n", "a\nb\n"},
		{"collapse blank runs", "a\n\n\n\n\nb", "a\n\n\nb\n"},
		{"keeps two blank lines", "a\n\n\nb\n", "a\n\n\nb\n"},
		{"single trailing newline", "a\n\n\n", "a\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := string(Cleanup([]byte(tt.in))); got != tt.want {
				t.Errorf("Cleanup(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestProcessContent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		file   string
		format ProcessFormat
		in     string
		want   string
	}{
		{"minify json", "a.json", ProcessMinify, "{\n  \"a\": [1, 2]\n}\n", `{"a":[1,2]}`},
		{"minify text", "a.java", ProcessMinify, "class A {\n\n    int x;\n}\n", "class A {\nint x;\n}\n"},
		{"format json", "a.json", ProcessPretty, `{"a":{"b":true}}`, "{\n  \"a\": {\n    \"b\": true\n  }\n}\n"},
		{"format cue", "a.cue", ProcessPretty, "name:   \"x\"\nlist: [1,2]\n", "name: \"x\"\nlist: [1, 2]\n"},
		{"format sh", "run.sh", ProcessPretty, "if true; then\necho hi\nfi\n", "if true; then\n\techo hi\nfi\n"},
		{"format toml", "a.toml", ProcessPretty, "b=1\na   =   'x'\n", "a = 'x'\nb = 1\n"},
		{"format other falls back to cleanup", "a.txt", ProcessPretty, "x  \r\n", "x\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ProcessContent(tt.file, []byte(tt.in), tt.format)
			if err != nil {
				t.Fatalf("ProcessContent() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, string(got)); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestProcessContent_YAMLKeepsCommentsAndOrder(t *testing.T) {
	t.Parallel()

	in := "# top\nzeta:    1\nalpha:\n      - a   # first\n"
	got, err := ProcessContent("a.yaml", []byte(in), ProcessPretty)
	if err != nil {
		t.Fatal(err)
	}
	out := string(got)
	for _, want := range []string{"# top", "# first", "zeta: 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("output lost %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "zeta") > strings.Index(out, "alpha") {
		t.Errorf("key order changed:\n%s", out)
	}
}

func TestProcessContent_Errors(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct{ file, in string }{
		{"a.json", "{"},
		{"a.sh", "if then fi ("},
		{"a.cue", "a: {"},
	} {
		if _, err := ProcessContent(tc.file, []byte(tc.in), ProcessPretty); err == nil {
			t.Errorf("%s: expected an error", tc.file)
		}
	}
}

func TestParseProcessFormat(t *testing.T) {
	t.Parallel()

	if f, err := ParseProcessFormat(""); err != nil || f != ProcessCleanup {
		t.Errorf("empty = %q, %v", f, err)
	}
	if _, err := ParseProcessFormat("beautify"); !errors.Is(err, ErrInvalidProcessFormat) {
		t.Errorf("beautify: error = %v", err)
	}
}

func TestProcess(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := filepath.Join(dir, "src", "notes.txt")
	testutil.MustWriteFile(t, in, "a  \r\n\r\n\r\n\r\nb")
	out := filepath.Join(dir, "out")

	results, err := Process(context.Background(), []string{in, filepath.Join(dir, "nope.txt")}, ProcessOptions{OutputDir: out, DryRun: true})
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Status != StatusSkipped || !results[0].Changed || results[1].Status != StatusNotFound {
		t.Errorf("dry run results = %+v %+v", results[0], results[1])
	}

	results, err = Process(context.Background(), []string{in}, ProcessOptions{Format: ProcessCleanup, OutputDir: out})
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Status != StatusDone || results[0].Output != filepath.Join(out, "notes.txt") {
		t.Fatalf("result = %+v", results[0])
	}
	if got := testutil.MustReadFile(t, results[0].Output); got != "a\n\n\nb\n" {
		t.Errorf("output = %q", got)
	}
	if testutil.MustReadFile(t, in) != "a  \r\n\r\n\r\n\r\nb" {
		t.Error("input must not change when writing elsewhere")
	}
}
