// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/amankrmj/javawizard/internal/envstore"
	"github.com/amankrmj/javawizard/internal/issue"
	"github.com/amankrmj/javawizard/internal/runner/runnertest"
	"github.com/amankrmj/javawizard/internal/testutil"
)

func TestJavaListEmpty(t *testing.T) {
	t.Parallel()

	c := newTestCLI(t)
	if err := c.run("java", "list"); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	out := c.stdout.String()
	for _, want := range []string{
		"=== Managed Java Versions ===",
		"No managed Java versions found.",
		"Use 'javawizard java install <version>' to install Java versions.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestJavaListMarksCurrent(t *testing.T) {
	t.Parallel()

	c := newTestCLI(t)
	testutil.FakeJDK(t, filepath.Join(c.versionsDir(), "jdk-17"), "17.0.9")
	current := testutil.FakeJDK(t, filepath.Join(c.versionsDir(), "jdk-21"), "21.0.1")
	c.env["JAVA_HOME"] = current

	if err := c.run("java", "list"); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	out := c.stdout.String()
	i17 := strings.Index(out, "jdk-17")
	i21 := strings.Index(out, "jdk-21")
	if i17 < 0 || i21 < 0 || i17 > i21 {
		t.Fatalf("want jdk-17 listed before jdk-21:\n%s", out)
	}
	if !strings.Contains(out, "(current)") || strings.Index(out, "(current)") < i21 {
		t.Errorf("jdk-21 is not marked current:\n%s", out)
	}
}

func TestJavaListAll(t *testing.T) {
	t.Parallel()

	c := newTestCLI(t)
	root := filepath.Join(c.home, "opt", "java")
	testutil.FakeJDK(t, filepath.Join(root, "openjdk-17"), "17.0.2")
	cfgFile := filepath.Join(c.home, "config.cue")
	testutil.MustWriteFile(t, cfgFile, "java: scan_paths: [\""+filepath.ToSlash(root)+"\"]\n")

	if err := c.run("--config", cfgFile, "java", "list", "--all"); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	out := c.stdout.String()
	for _, want := range []string{
		"=== All Detected Java Installations ===",
		"Scanning common installation directories...",
		"openjdk-17 (17.0.2)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestJavaUse(t *testing.T) {
	t.Parallel()

	c := newTestCLI(t)
	home := testutil.FakeJDK(t, filepath.Join(c.versionsDir(), "jdk-21"), "21.0.1")
	c.store.vars[envstore.KeyPath] = "/usr/bin:/opt/java8/bin"

	if err := c.run("java", "use", "jdk-21"); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if got := c.store.vars[envstore.KeyJavaHome]; got != home {
		t.Errorf("JAVA_HOME = %q, want %q", got, home)
	}
	wantPath := filepath.Join(home, "bin") + ":/usr/bin"
	if got := c.store.vars[envstore.KeyPath]; got != wantPath {
		t.Errorf("PATH = %q, want %q", got, wantPath)
	}
	out := c.stdout.String()
	for _, want := range []string{
		"Switched to Java version: jdk-21",
		"JAVA_HOME: " + home,
		"Note: Restart your terminal to see the changes.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestJavaUsePersistsToEnvFile(t *testing.T) {
	t.Parallel()

	c := newTestCLI(t)
	c.app.EnvStore = envstore.New
	home := testutil.FakeJDK(t, filepath.Join(c.versionsDir(), "jdk-21"), "21.0.1")
	envFile := filepath.Join(c.home, ".javawizard", envstore.EnvFileName)
	testutil.MustWriteFile(t, envFile, "export PATH=/usr/bin:/opt/java8/bin\n")

	if err := c.run("java", "use", "jdk-21"); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	content := testutil.MustReadFile(t, envFile)
	for _, want := range []string{
		"export JAVA_HOME=" + home,
		"export PATH=" + filepath.Join(home, "bin") + ":/usr/bin\n",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("%s missing %q:\n%s", envstore.EnvFileName, want, content)
		}
	}
}

func TestJavaUseUnknownVersion(t *testing.T) {
	t.Parallel()

	c := newTestCLI(t)
	testutil.FakeJDK(t, filepath.Join(c.versionsDir(), "jdk-17"), "17.0.9")

	err := c.run("java", "use", "jdk-99")
	if !isSilent(err) {
		t.Fatalf("run() error = %v, want a silent exit", err)
	}
	errOut := c.stderr.String()
	for _, want := range []string{"Java version not found: jdk-99", "Available versions:", "  jdk-17"} {
		if !strings.Contains(errOut, want) {
			t.Errorf("stderr missing %q:\n%s", want, errOut)
		}
	}
	if _, ok := c.store.vars[envstore.KeyJavaHome]; ok {
		t.Error("JAVA_HOME was written for an unknown version")
	}
}

func TestJavaUseWithNothingInstalled(t *testing.T) {
	t.Parallel()

	c := newTestCLI(t)
	if err := c.run("java", "use", "jdk-21"); !isSilent(err) {
		t.Fatalf("run() error = %v, want a silent exit", err)
	}
	errOut := c.stderr.String()
	for _, want := range []string{"Java version not found: jdk-21", "Available versions:", "javawizard java install jdk-21"} {
		if !strings.Contains(errOut, want) {
			t.Errorf("stderr missing %q:\n%s", want, errOut)
		}
	}
	if strings.Index(errOut, "Available versions:") > strings.Index(errOut, "javawizard java install") {
		t.Errorf("the version lines must come before the guide:\n%s", errOut)
	}
}

func TestJavaCurrent(t *testing.T) {
	t.Parallel()

	c := newTestCLI(t)
	c.env["JAVA_HOME"] = "/opt/jdk-21"
	c.runner.WithPath("java", "/opt/jdk-21/bin/java").
		On("/opt/jdk-21/bin/java -version", runnertest.Response{Stderr: "openjdk version \"21.0.1\" 2023-10-17\n"})

	if err := c.run("java", "current"); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	out := c.stdout.String()
	for _, want := range []string{"JAVA_HOME: /opt/jdk-21", "Active Java version:", `openjdk version "21.0.1"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestJavaCurrentNothingActive(t *testing.T) {
	t.Parallel()

	c := newTestCLI(t)
	if err := c.run("java", "current"); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	out := c.stdout.String()
	if !strings.Contains(out, "JAVA_HOME not set") || !strings.Contains(out, "No Java found in PATH") {
		t.Errorf("output = %q", out)
	}
}

func TestJavaWhich(t *testing.T) {
	t.Parallel()

	c := newTestCLI(t)
	bin := filepath.Join(c.home, "jdk", "bin")
	testutil.MustWriteFile(t, filepath.Join(bin, "java"), "")
	if err := os.Chmod(filepath.Join(bin, "java"), 0o755); err != nil {
		t.Fatal(err)
	}
	c.env["PATH"] = filepath.Join(c.home, "empty") + ":" + bin

	if err := c.run("java", "which"); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	out := c.stdout.String()
	if !strings.Contains(out, "Java executable locations:") || !strings.Contains(out, filepath.Join(bin, "java")) {
		t.Errorf("output = %q", out)
	}
}

func TestJavaUninstall(t *testing.T) {
	t.Parallel()

	c := newTestCLI(t)
	current := testutil.FakeJDK(t, filepath.Join(c.versionsDir(), "jdk-21"), "21.0.1")
	testutil.FakeJDK(t, filepath.Join(c.versionsDir(), "jdk-17"), "17.0.9")
	c.env["JAVA_HOME"] = current

	err := c.run("java", "uninstall", "jdk-21")
	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("uninstall of the current version: error = %v, want ActionableError", err)
	}

	if err := c.run("java", "uninstall", "jdk-17"); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !strings.Contains(c.stdout.String(), "Removed jdk-17") {
		t.Errorf("output = %q", c.stdout.String())
	}

	if err := c.run("java", "uninstall", "jdk-21", "--force"); err != nil {
		t.Fatalf("forced uninstall error = %v", err)
	}
}

func TestJavaInstallGuide(t *testing.T) {
	t.Parallel()

	c := newTestCLI(t)
	if err := c.run("java", "install", "21-graalvm", "--guide"); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	out := c.stdout.String()
	if !strings.Contains(out, "Installing Java 21-graalvm...") {
		t.Errorf("output missing the install line:\n%s", out)
	}
	if !strings.Contains(out, "graalvm-community-jdk-21") {
		t.Errorf("output missing the GraalVM guide:\n%s", out)
	}
	if len(c.runner.Calls) != 0 {
		t.Errorf("guide ran commands: %v", c.runner.CommandLines())
	}
}

func TestJavaInstallInvalidVersion(t *testing.T) {
	t.Parallel()

	c := newTestCLI(t)
	err := c.run("java", "install", "latest-and-greatest")
	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("error = %v, want ActionableError", err)
	}
}
