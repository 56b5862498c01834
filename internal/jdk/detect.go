// SPDX-License-Identifier: MPL-2.0

package jdk

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/amankrmj/javawizard/internal/runner"
	"github.com/amankrmj/javawizard/pkg/platform"
)

// ErrNoLauncher is returned when a directory has no bin/java launcher.
var ErrNoLauncher = errors.New("no java launcher")

// quotedRe pulls the version out of `openjdk version "17.0.9" 2023-10-17`.
var quotedRe = regexp.MustCompile(`"([^"]*)"`)

// Detection is the outcome of probing a JDK directory.
type Detection struct {
	Version string
	Err     error
}

// Label renders the detection as "(17.0.9)", "(unknown)" or "(error: msg)".
func (d Detection) Label() string {
	switch {
	case d.Err != nil:
		return "(error: " + d.Err.Error() + ")"
	case d.Version == "":
		return "(unknown)"
	default:
		return "(" + d.Version + ")"
	}
}

// ReadRelease parses the KEY="value" lines of <home>/release.
func ReadRelease(home string) (map[string]string, error) {
	f, err := os.Open(filepath.Join(home, "release"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	props := make(map[string]string)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		key, value, ok := strings.Cut(sc.Text(), "=")
		if !ok {
			continue
		}
		props[strings.TrimSpace(key)] = strings.Trim(strings.TrimSpace(value), `"`)
	}
	return props, sc.Err()
}

// Launcher returns the java executable inside home, preferring java.exe.
func Launcher(home string) (string, error) {
	for _, name := range []string{"java.exe", "java"} {
		p := filepath.Join(home, "bin", name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}
	return "", fmt.Errorf("%s: %w", home, ErrNoLauncher)
}

// Detect determines the version of the JDK at home.
func Detect(ctx context.Context, r runner.Runner, home string) Detection {
	if props, err := ReadRelease(home); err == nil && props["JAVA_VERSION"] != "" {
		return Detection{Version: props["JAVA_VERSION"]}
	}

	bin, err := Launcher(home)
	if err != nil {
		return Detection{}
	}
	res, err := r.Run(ctx, runner.Command{Name: bin, Args: []string{"-version"}})
	if err != nil {
		return Detection{Err: err}
	}
	return Detection{Version: parseVersionOutput(res.Stderr)}
}

// parseVersionOutput extracts the quoted version from the first line of
// `java -version`; an unquoted first line is returned as is.
func parseVersionOutput(out string) string {
	first, _, _ := strings.Cut(strings.TrimSpace(out), "\n")
	first = strings.TrimSpace(first)
	if m := quotedRe.FindStringSubmatch(first); m != nil {
		return m[1]
	}
	return first
}

// ScanRoots lists the directories where JDKs are commonly installed on goos.
func ScanRoots(goos, home string) []string {
	switch goos {
	case platform.Windows:
		return []string{
			`C:\Program Files\Java`,
			`C:\Program Files (x86)\Java`,
			`C:\Program Files\Eclipse Adoptium`,
			`C:\Program Files\Microsoft`,
			filepath.Join(home, ".jdks"),
		}
	case platform.Darwin:
		return []string{
			"/Library/Java/JavaVirtualMachines",
			filepath.Join(home, "Library", "Java", "JavaVirtualMachines"),
			filepath.Join(home, ".jdks"),
			filepath.Join(home, ".sdkman", "candidates", "java"),
		}
	default:
		return []string{
			"/usr/lib/jvm",
			"/usr/java",
			"/opt/java",
			filepath.Join(home, ".jdks"),
			filepath.Join(home, ".sdkman", "candidates", "java"),
		}
	}
}

// Which returns every java launcher on pathList, in PATH order.
func Which(pathList, goos string) []string {
	name := platform.ExeName(goos, "java")
	seen := make(map[string]bool)
	var found []string
	for _, dir := range filepath.SplitList(pathList) {
		if dir == "" {
			continue
		}
		p := filepath.Join(dir, name)
		if seen[p] {
			continue
		}
		info, err := os.Stat(p)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		if goos != platform.Windows && info.Mode().Perm()&0o111 == 0 {
			continue
		}
		seen[p] = true
		found = append(found, p)
	}
	return found
}

func isNotExist(err error) bool { return errors.Is(err, fs.ErrNotExist) }
