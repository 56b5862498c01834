// SPDX-License-Identifier: MPL-2.0

package envstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/amankrmj/javawizard/internal/runner"
	"github.com/amankrmj/javawizard/internal/runner/runnertest"
	"github.com/amankrmj/javawizard/internal/testutil"
	"github.com/amankrmj/javawizard/pkg/platform"
)

const regQueryOutput = "\r\nHKEY_CURRENT_USER\\Environment\r\n    Path    REG_EXPAND_SZ    C:\\Program Files\\Java\\jdk-17\\bin;%USERPROFILE%\\bin\r\n\r\n"

func TestRegistryStore_Get(t *testing.T) {
	t.Parallel()

	fake := runnertest.New().
		On(`reg query HKCU\Environment /v Path`, runnertest.Response{Stdout: regQueryOutput}).
		On(`reg query HKCU\Environment /v JAVA_HOME`, runnertest.Response{ExitCode: 1, Stderr: "ERROR: The system was unable to find the specified registry key or value."})
	s := NewRegistryStore(fake)

	got, err := s.Get(context.Background(), KeyPath)
	if err != nil {
		t.Fatal(err)
	}
	if want := `C:\Program Files\Java\jdk-17\bin;%USERPROFILE%\bin`; got != want {
		t.Errorf("Get(PATH) = %q, want %q", got, want)
	}

	got, err = s.Get(context.Background(), KeyJavaHome)
	if err != nil || got != "" {
		t.Errorf("Get(JAVA_HOME) = %q, %v; want empty", got, err)
	}
}

func TestRegistryStore_Set(t *testing.T) {
	t.Parallel()

	fake := runnertest.New()
	s := NewRegistryStore(fake)
	ctx := context.Background()

	if err := s.Set(ctx, KeyJavaHome, `C:\jw\jdk-21`); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(ctx, KeyPath, `C:\jw\jdk-21\bin;C:\Windows`); err != nil {
		t.Fatal(err)
	}

	want := [][]string{
		{"add", `HKCU\Environment`, "/v", "JAVA_HOME", "/t", "REG_SZ", "/d", `C:\jw\jdk-21`, "/f"},
		{"add", `HKCU\Environment`, "/v", "Path", "/t", "REG_EXPAND_SZ", "/d", `C:\jw\jdk-21\bin;C:\Windows`, "/f"},
	}
	for i, call := range fake.Calls {
		if call.Name != "reg" || strings.Join(call.Args, "|") != strings.Join(want[i], "|") {
			t.Errorf("call %d = %v %v", i, call.Name, call.Args)
		}
	}
}

func TestRegistryStore_SetFailure(t *testing.T) {
	t.Parallel()

	fake := runnertest.New().On("reg add", runnertest.Response{ExitCode: 1, Stderr: "ERROR: Access is denied.\r\n"})
	err := NewRegistryStore(fake).Set(context.Background(), KeyJavaHome, `C:\x`)

	var se *SetError
	if !errors.As(err, &se) {
		t.Fatalf("error = %v, want SetError", err)
	}
	if got, want := err.Error(), "Failed to set JAVA_HOME: ERROR: Access is denied."; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	pathErr := &SetError{Key: KeyPath, Detail: "denied"}
	if pathErr.Error() != "Failed to update PATH: denied" {
		t.Errorf("PATH message = %q", pathErr.Error())
	}
}

func TestFileStore_RoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "home", EnvFileName)
	s := NewFileStore(path)
	s.getenv = func(key string) string {
		if key == KeyPath {
			return "/usr/bin:/bin"
		}
		return ""
	}
	ctx := context.Background()

	got, err := s.Get(ctx, KeyPath)
	if err != nil || got != "/usr/bin:/bin" {
		t.Fatalf("Get(PATH) before write = %q, %v", got, err)
	}

	tricky := "/opt/it's here/jdk $HOME"
	if err := s.Set(ctx, KeyJavaHome, tricky); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(ctx, KeyPath, tricky+"/bin:/usr/bin"); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(ctx, KeyJavaHome, "/opt/jdk-21"); err != nil {
		t.Fatal(err)
	}

	if got, _ := s.Get(ctx, KeyJavaHome); got != "/opt/jdk-21" {
		t.Errorf("JAVA_HOME = %q", got)
	}
	if got, _ := s.Get(ctx, KeyPath); got != tricky+"/bin:/usr/bin" {
		t.Errorf("PATH = %q", got)
	}

	content := testutil.MustReadFile(t, path)
	if !strings.HasPrefix(content, "# Managed by javawizard") {
		t.Errorf("missing header:\n%s", content)
	}
	if strings.Index(content, "export JAVA_HOME=") > strings.Index(content, "export PATH=") {
		t.Errorf("assignment order should be preserved:\n%s", content)
	}
}

func TestFileStore_ReadsHandEditedFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), EnvFileName)
	testutil.MustWriteFile(t, path, "export JAVA_HOME=/opt/a\\ b\nexport PATH=\"/x/bin:/usr/bin\"\necho hi\n")
	s := NewFileStore(path)

	if got, _ := s.Get(context.Background(), KeyJavaHome); got != "/opt/a b" {
		t.Errorf("JAVA_HOME = %q", got)
	}
	if got, _ := s.Get(context.Background(), KeyPath); got != "/x/bin:/usr/bin" {
		t.Errorf("PATH = %q", got)
	}
}

func TestFileStore_ParseError(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), EnvFileName)
	testutil.MustWriteFile(t, path, "export PATH='unterminated\n")
	if _, err := NewFileStore(path).Get(context.Background(), KeyPath); err == nil {
		t.Error("expected parse error")
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	home := t.TempDir()
	if _, ok := New(platform.Windows, runner.New(), home).(*RegistryStore); !ok {
		t.Error("windows should use the registry")
	}
	fs, ok := New(platform.Linux, runner.New(), home).(*FileStore)
	if !ok || fs.Location() != filepath.Join(home, EnvFileName) {
		t.Errorf("linux store = %#v", fs)
	}
	if _, err := os.Stat(fs.Location()); !os.IsNotExist(err) {
		t.Error("New must not create the file")
	}
}
