// SPDX-License-Identifier: MPL-2.0

package fileops

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/amankrmj/javawizard/pkg/platform"
)

// Analysis types.
const (
	AnalysisBasic    AnalysisType = "basic"
	AnalysisDetailed AnalysisType = "detailed"
	AnalysisSecurity AnalysisType = "security"
)

// ErrInvalidAnalysisType is the sentinel wrapped by InvalidAnalysisTypeError.
var ErrInvalidAnalysisType = errors.New("invalid analysis type")

// secretNames flags files that usually hold keys or keystores.
var secretNames = []string{".pem", ".key", ".jks", ".p12", ".pfx", ".keystore", "id_rsa", "id_ed25519", "id_ecdsa"}

// privateKeyMarker appears in PEM encoded private keys.
var privateKeyMarker = []byte("PRIVATE KEY-----")

type (
	// AnalysisType selects how much work analyze does per file.
	AnalysisType string

	// InvalidAnalysisTypeError is returned for an unknown --type value.
	InvalidAnalysisTypeError struct {
		Value string
	}

	// Analysis is the result for one file. It is also the JSON record
	// written by --output.
	Analysis struct {
		Path     string `json:"path"`
		Name     string `json:"name"`
		Found    bool   `json:"found"`
		Size     int64  `json:"size"`
		Type     string `json:"type"`
		Readable bool   `json:"readable"`
		Writable bool   `json:"writable"`

		Lines        int      `json:"lines,omitempty"`
		Words        int      `json:"words,omitempty"`
		MIME         string   `json:"mime,omitempty"`
		Dependencies []string `json:"dependencies,omitempty"`
		Findings     []string `json:"findings,omitempty"`

		Error string `json:"error,omitempty"`
	}

	// pom models the parts of a Maven pom.xml analyze reports.
	pom struct {
		Dependencies struct {
			Dependency []struct {
				GroupID    string `xml:"groupId"`
				ArtifactID string `xml:"artifactId"`
				Version    string `xml:"version"`
				Scope      string `xml:"scope"`
			} `xml:"dependency"`
		} `xml:"dependencies"`
	}
)

func (e *InvalidAnalysisTypeError) Error() string {
	return fmt.Sprintf("invalid analysis type %q (valid: basic, detailed, security)", e.Value)
}

func (e *InvalidAnalysisTypeError) Unwrap() error { return ErrInvalidAnalysisType }

// ParseAnalysisType validates s; the empty string means basic.
func ParseAnalysisType(s string) (AnalysisType, error) {
	switch t := AnalysisType(strings.ToLower(strings.TrimSpace(s))); t {
	case "":
		return AnalysisBasic, nil
	case AnalysisBasic, AnalysisDetailed, AnalysisSecurity:
		return t, nil
	default:
		return "", &InvalidAnalysisTypeError{Value: s}
	}
}

// Analyze inspects every path concurrently.
func Analyze(ctx context.Context, paths []string, typ AnalysisType) ([]*Analysis, error) {
	return forEach(ctx, paths, func(_ context.Context, p string) *Analysis {
		return AnalyzeFile(p, typ)
	})
}

// AnalyzeFile inspects one path. A missing file yields Found=false.
func AnalyzeFile(path string, typ AnalysisType) *Analysis {
	a := &Analysis{Path: path, Name: filepath.Base(path)}
	info, err := os.Stat(path)
	if err != nil {
		if !isNotExist(err) {
			a.Error = err.Error()
		}
		return a
	}
	a.Found = true
	a.Size = info.Size()
	a.Type = FileType(a.Name)
	a.Readable = canOpen(path, os.O_RDONLY)
	a.Writable = canOpen(path, os.O_WRONLY)
	if info.IsDir() {
		return a
	}

	switch typ {
	case AnalysisDetailed:
		if err := a.analyzeContent(path); err != nil {
			a.Error = err.Error()
		}
	case AnalysisSecurity:
		a.Findings = securityFindings(path, info.Mode(), runtime.GOOS)
	}
	return a
}

func canOpen(path string, flag int) bool {
	f, err := os.OpenFile(path, flag, 0)
	if err != nil {
		return false
	}
	_ = f.Close()
	return true
}

func (a *Analysis) analyzeContent(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return err
	}
	head = head[:n]
	a.MIME = detectMIME(a.Name, head)

	lines, words, err := countText(io.MultiReader(bytes.NewReader(head), f))
	if err != nil {
		return err
	}
	a.Lines, a.Words = lines, words

	if strings.EqualFold(a.Name, "pom.xml") {
		deps, err := pomDependencies(path)
		if err != nil {
			return fmt.Errorf("parse pom.xml: %w", err)
		}
		a.Dependencies = deps
	}
	return nil
}

func detectMIME(name string, head []byte) string {
	if ext := filepath.Ext(name); ext != "" {
		if t := mime.TypeByExtension(ext); t != "" {
			return t
		}
	}
	return http.DetectContentType(head)
}

// countText counts lines (a final unterminated line counts) and
// whitespace separated words.
func countText(r io.Reader) (lines, words int, err error) {
	br := bufio.NewReader(r)
	inWord := false
	var last byte
	for {
		c, err := br.ReadByte()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, 0, err
		}
		if c == '\n' {
			lines++
		}
		space := c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
		if !space && !inWord {
			words++
		}
		inWord = !space
		last = c
	}
	if last != 0 && last != '\n' {
		lines++
	}
	return lines, words, nil
}

func pomDependencies(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p pom
	if err := xml.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	deps := make([]string, 0, len(p.Dependencies.Dependency))
	for _, d := range p.Dependencies.Dependency {
		coord := d.GroupID + ":" + d.ArtifactID
		if d.Version != "" {
			coord += ":" + d.Version
		}
		if d.Scope != "" {
			coord += " (" + d.Scope + ")"
		}
		deps = append(deps, coord)
	}
	return deps, nil
}

func securityFindings(path string, mode os.FileMode, goos string) []string {
	var findings []string
	if goos != platform.Windows {
		if mode.Perm()&0o002 != 0 {
			findings = append(findings, "world-writable")
		}
		if mode.Perm()&0o111 != 0 {
			findings = append(findings, "executable bit set")
		}
	}
	lower := strings.ToLower(filepath.Base(path))
	for _, s := range secretNames {
		if strings.HasSuffix(lower, s) {
			findings = append(findings, "file name suggests a secret ("+s+")")
			break
		}
	}
	if containsPrivateKey(path) {
		findings = append(findings, "contains a PEM private key")
	}
	return findings
}

// containsPrivateKey scans the first MiB of path for a PEM key header.
func containsPrivateKey(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, 1<<20))
	if err != nil {
		return false
	}
	return bytes.Contains(data, privateKeyMarker)
}

// WriteText prints the human-readable analysis of a found file.
func (a *Analysis) WriteText(w io.Writer, typ AnalysisType, report bool) {
	fmt.Fprintf(w, "Analyzing: %s\n", a.Name)
	fmt.Fprintf(w, "  Size: %d bytes (%s)\n", a.Size, humanize.IBytes(uint64(max(a.Size, 0))))
	fmt.Fprintf(w, "  Type: %s\n", a.Type)
	fmt.Fprintf(w, "  Readable: %t\n", a.Readable)
	fmt.Fprintf(w, "  Writable: %t\n", a.Writable)

	switch typ {
	case AnalysisDetailed:
		fmt.Fprintf(w, "  Lines: %s\n", humanize.Comma(int64(a.Lines)))
		fmt.Fprintf(w, "  Words: %s\n", humanize.Comma(int64(a.Words)))
		if a.MIME != "" {
			fmt.Fprintf(w, "  MIME: %s\n", a.MIME)
		}
		if a.Dependencies != nil {
			fmt.Fprintf(w, "  Maven dependencies: %d\n", len(a.Dependencies))
			for _, d := range a.Dependencies {
				fmt.Fprintf(w, "    - %s\n", d)
			}
		}
	case AnalysisSecurity:
		if len(a.Findings) == 0 {
			fmt.Fprintln(w, "  Security: no issues found")
		} else {
			fmt.Fprintf(w, "  Security: %d issue(s)\n", len(a.Findings))
			for _, f := range a.Findings {
				fmt.Fprintf(w, "    ! %s\n", f)
			}
		}
	}
	if a.Error != "" {
		fmt.Fprintf(w, "  Error: %s\n", a.Error)
	}
	if report {
		fmt.Fprintln(w, "  ✓ Detailed report generated")
	}
}

// WriteJSON stores results as an indented JSON array at path.
func WriteJSON(path string, results []*Analysis) error {
	if results == nil {
		results = []*Analysis{}
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(path, append(data, '\n'), 0o644)
}
