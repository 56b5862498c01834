// SPDX-License-Identifier: MPL-2.0

package fileops

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/amankrmj/javawizard/internal/testutil"
)

func TestParseTargetFormat(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"json", "XML", "Csv", "txt", "yaml", "TOML"} {
		if got, err := ParseTargetFormat(in); err != nil || got != strings.ToLower(in) {
			t.Errorf("ParseTargetFormat(%q) = %q, %v", in, got, err)
		}
	}
	_, err := ParseTargetFormat("docx")
	if !errors.Is(err, ErrInvalidFormat) || err.Error() != "Invalid target format: docx" {
		t.Errorf("docx: error = %v", err)
	}
}

func TestOutputName(t *testing.T) {
	t.Parallel()

	tests := []struct{ in, format, want string }{
		{"data.csv", "JSON", "data.json"},
		{"archive.tar.gz", "txt", "archive.tar.txt"},
		{"README", "xml", "README.xml"},
		{".env", "yaml", ".env.yaml"},
	}
	for _, tt := range tests {
		if got := OutputName(tt.in, tt.format); got != tt.want {
			t.Errorf("OutputName(%q, %q) = %q, want %q", tt.in, tt.format, got, tt.want)
		}
	}
}

func TestOutputPath(t *testing.T) {
	t.Parallel()

	out := filepath.Join("out")
	tests := []struct {
		input    string
		preserve bool
		want     string
	}{
		{filepath.Join("data", "a.csv"), true, filepath.Join("out", "data", "a.json")},
		{filepath.Join("data", "a.csv"), false, filepath.Join("out", "a.json")},
		{"a.csv", true, filepath.Join("out", "a.json")},
		{filepath.Join("..", "up", "a.csv"), true, filepath.Join("out", "a.json")},
	}
	for _, tt := range tests {
		if got := outputPath(out, tt.input, "a.json", tt.preserve); got != tt.want {
			t.Errorf("outputPath(%q, %v) = %q, want %q", tt.input, tt.preserve, got, tt.want)
		}
	}
}

func convertOne(t *testing.T, name, content, format string) string {
	t.Helper()
	dir := t.TempDir()
	in := filepath.Join(dir, name)
	testutil.MustWriteFile(t, in, content)
	results, err := Convert(context.Background(), []string{in}, ConvertOptions{Format: format, OutputDir: filepath.Join(dir, "out")})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	r := results[0]
	if r.Status != StatusDone {
		t.Fatalf("status = %v, err = %v", r.Status, r.Err)
	}
	return testutil.MustReadFile(t, r.Output)
}

const sampleCSV = "name,version\njavawizard,1.0\npicocli,4.7.5\n"

func TestConvert_CSVToJSON(t *testing.T) {
	t.Parallel()

	got := convertOne(t, "deps.csv", sampleCSV, "json")
	want := `[
  {
    "name": "javawizard",
    "version": "1.0"
  },
  {
    "name": "picocli",
    "version": "4.7.5"
  }
]
`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("json mismatch (-want +got):\n%s", diff)
	}
}

func TestConvert_JSONToCSV(t *testing.T) {
	t.Parallel()

	got := convertOne(t, "deps.json", `[{"name":"a","size":1},{"name":"b","tags":["x"]}]`, "CSV")
	want := "name,size,tags\na,1,\nb,,\"[\"\"x\"\"]\"\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("csv mismatch (-want +got):\n%s", diff)
	}
}

func TestConvert_CSVToXML(t *testing.T) {
	t.Parallel()

	got := convertOne(t, "deps.csv", sampleCSV, "xml")
	want := `<?xml version="1.0" encoding="UTF-8"?>
<document>
  <record>
    <name>javawizard</name>
    <version>1.0</version>
  </record>
  <record>
    <name>picocli</name>
    <version>4.7.5</version>
  </record>
</document>
`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("xml mismatch (-want +got):\n%s", diff)
	}

	// The XML decoder maps the records back.
	doc, err := decodeDocument("deps.xml", []byte(got))
	if err != nil {
		t.Fatal(err)
	}
	wantDoc := []any{
		map[string]any{"name": "javawizard", "version": "1.0"},
		map[string]any{"name": "picocli", "version": "4.7.5"},
	}
	if diff := cmp.Diff(wantDoc, doc); diff != "" {
		t.Errorf("decoded mismatch (-want +got):\n%s", diff)
	}
}

func TestConvert_YAMLToTOML(t *testing.T) {
	t.Parallel()

	got := convertOne(t, "app.yaml", "name: javawizard\nnative:\n  auto: true\n  retries: 3\n", "toml")
	var decoded map[string]any
	if err := toml.Unmarshal([]byte(got), &decoded); err != nil {
		t.Fatalf("output is not TOML: %v\n%s", err, got)
	}
	want := map[string]any{"name": "javawizard", "native": map[string]any{"auto": true, "retries": int64(3)}}
	if diff := cmp.Diff(want, decoded); diff != "" {
		t.Errorf("toml mismatch (-want +got):\n%s", diff)
	}
}

func TestConvert_ListToTOMLWrapsRecords(t *testing.T) {
	t.Parallel()

	got := convertOne(t, "deps.csv", sampleCSV, "toml")
	if !strings.Contains(got, "[[records]]") {
		t.Errorf("top-level list should become [[records]]:\n%s", got)
	}
}

func TestConvert_TextToYAMLAndTxt(t *testing.T) {
	t.Parallel()

	got := convertOne(t, "notes.md", "# Title\r\nline two\n", "yaml")
	var lines []string
	if err := yaml.Unmarshal([]byte(got), &lines); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"# Title", "line two"}, lines); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}

	got = convertOne(t, "app.json", `{"name":"jw","java":{"version":17}}`, "txt")
	if want := "java.version: 17\nname: jw\n"; got != want {
		t.Errorf("txt = %q, want %q", got, want)
	}
}

func TestConvert_Statuses(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	a := filepath.Join(dir, "a.csv")
	testutil.MustWriteFile(t, a, sampleCSV)
	b := filepath.Join(dir, "a.txt")
	testutil.MustWriteFile(t, b, "plain")
	bad := filepath.Join(dir, "bad.json")
	testutil.MustWriteFile(t, bad, "{")
	testutil.MustWriteFile(t, filepath.Join(out, "exists.json"), "{}")
	exists := filepath.Join(dir, "exists.csv")
	testutil.MustWriteFile(t, exists, sampleCSV)

	inputs := []string{a, filepath.Join(dir, "nope.csv"), b, bad, exists}
	results, err := Convert(context.Background(), inputs, ConvertOptions{Format: "json", OutputDir: out})
	if err != nil {
		t.Fatal(err)
	}
	got := make([]Status, len(results))
	for i, r := range results {
		got[i] = r.Status
	}
	want := []Status{StatusDone, StatusNotFound, StatusFailed, StatusFailed, StatusExists}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("statuses mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(results[2].Err.Error(), "also produced from") {
		t.Errorf("collision error = %v", results[2].Err)
	}
	if testutil.MustReadFile(t, filepath.Join(out, "exists.json")) != "{}" {
		t.Error("existing output must not be replaced without overwrite")
	}

	results, err = Convert(context.Background(), []string{exists}, ConvertOptions{Format: "json", OutputDir: out, Overwrite: true})
	if err != nil || results[0].Status != StatusDone {
		t.Fatalf("overwrite: %v %+v", err, results)
	}
}

func TestXMLName(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]string{
		"name":       "name",
		"group id":   "group_id",
		"1st":        "_1st",
		"@attr":      "_attr",
		"":           "_",
		"artifact-v": "artifact-v",
	} {
		if got := xmlName(in); got != want {
			t.Errorf("xmlName(%q) = %q, want %q", in, got, want)
		}
	}
}
