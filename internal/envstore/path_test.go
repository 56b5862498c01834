// SPDX-License-Identifier: MPL-2.0

package envstore

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/amankrmj/javawizard/pkg/platform"
)

// memStore is an in-memory Store.
type memStore struct {
	vals map[string]string
	sets []string
}

func newMemStore(kv ...string) *memStore {
	m := &memStore{vals: make(map[string]string)}
	for i := 0; i+1 < len(kv); i += 2 {
		m.vals[kv[i]] = kv[i+1]
	}
	return m
}

func (m *memStore) Get(_ context.Context, key string) (string, error) { return m.vals[key], nil }
func (m *memStore) Set(_ context.Context, key, value string) error {
	m.vals[key] = value
	m.sets = append(m.sets, key)
	return nil
}
func (m *memStore) Location() string { return "memory" }

func TestSplitJoinPath(t *testing.T) {
	t.Parallel()

	got := SplitPath(`C:\a;;C:\b ; `, platform.Windows)
	if diff := cmp.Diff([]string{`C:\a`, `C:\b`}, got); diff != "" {
		t.Errorf("SplitPath mismatch:\n%s", diff)
	}
	if JoinPath([]string{"/a", "/b"}, platform.Linux) != "/a:/b" {
		t.Error("JoinPath should use ':' on linux")
	}
}

func TestSamePath(t *testing.T) {
	t.Parallel()

	if !SamePath(`C:\Tools\`, `c:\tools`, platform.Windows) {
		t.Error("windows comparison should ignore case and trailing separator")
	}
	if SamePath("/opt/Tools", "/opt/tools", platform.Linux) {
		t.Error("linux comparison is case-sensitive")
	}
	if !SamePath("/opt/tools/", "/opt/tools", platform.Linux) {
		t.Error("trailing slash should be ignored")
	}
}

func TestAddEntry(t *testing.T) {
	t.Parallel()

	base := []string{"/usr/bin", "/opt/tools", "/bin"}
	tests := []struct {
		name   string
		dir    string
		append bool
		want   []string
	}{
		{"prepend new", "/new", false, []string{"/new", "/usr/bin", "/opt/tools", "/bin"}},
		{"append new", "/new", true, []string{"/usr/bin", "/opt/tools", "/bin", "/new"}},
		{"prepend existing moves it", "/bin", false, []string{"/bin", "/usr/bin", "/opt/tools"}},
		{"append existing moves it", "/usr/bin/", true, []string{"/opt/tools", "/bin", "/usr/bin/"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := AddEntry(base, tt.dir, tt.append, platform.Linux)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("AddEntry mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCleanEntries(t *testing.T) {
	t.Parallel()

	exists := func(d string) bool { return d != `C:\gone` }
	kept, removed := CleanEntries(
		[]string{`C:\a`, `C:\gone`, `c:\A\`, `%USERPROFILE%\bin`, `C:\b`},
		platform.Windows, exists)

	if diff := cmp.Diff([]string{`C:\a`, `%USERPROFILE%\bin`, `C:\b`}, kept); diff != "" {
		t.Errorf("kept mismatch:\n%s", diff)
	}
	if diff := cmp.Diff([]string{`C:\gone`, `c:\A\`}, removed); diff != "" {
		t.Errorf("removed mismatch:\n%s", diff)
	}
}

func TestJavaPath(t *testing.T) {
	t.Parallel()

	got := JavaPath([]string{`C:\Program Files\Java\jdk-17\bin`, `C:\Windows`, `C:\Tools\JAVA8`, `C:\git\bin`}, `C:\jw\jdk-21\bin`)
	want := []string{`C:\jw\jdk-21\bin`, `C:\Windows`, `C:\git\bin`}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("JavaPath mismatch (-want +got):\n%s", diff)
	}
}

func TestEnvironment_UseJava(t *testing.T) {
	t.Parallel()

	store := newMemStore(KeyPath, `C:\Program Files\Java\jdk-17\bin;C:\Windows`)
	env := NewEnvironment(store, platform.Windows)

	if err := env.UseJava(context.Background(), `C:\Users\u\.javawizard\java-versions\jdk-21`); err != nil {
		t.Fatalf("UseJava() error = %v", err)
	}
	if store.vals[KeyJavaHome] != `C:\Users\u\.javawizard\java-versions\jdk-21` {
		t.Errorf("JAVA_HOME = %q", store.vals[KeyJavaHome])
	}
	if got, want := store.vals[KeyPath], `C:\Users\u\.javawizard\java-versions\jdk-21\bin;C:\Windows`; got != want {
		t.Errorf("PATH = %q, want %q", got, want)
	}
	if diff := cmp.Diff([]string{KeyJavaHome, KeyPath}, store.sets); diff != "" {
		t.Errorf("JAVA_HOME must be written before PATH:\n%s", diff)
	}
}

func TestEnvironment_PathOps(t *testing.T) {
	t.Parallel()

	store := newMemStore(KeyPath, "/usr/bin:/missing:/usr/bin")
	env := NewEnvironment(store, platform.Linux)
	env.Exists = func(d string) bool { return d != "/missing" }
	ctx := context.Background()

	if _, err := env.RemovePath(ctx, "/nowhere"); !errors.Is(err, ErrNotInPath) {
		t.Errorf("RemovePath error = %v, want ErrNotInPath", err)
	}

	removed, err := env.CleanPath(ctx)
	if err != nil {
		t.Fatalf("CleanPath() error = %v", err)
	}
	if diff := cmp.Diff([]string{"/missing", "/usr/bin"}, removed); diff != "" {
		t.Errorf("removed mismatch:\n%s", diff)
	}
	if store.vals[KeyPath] != "/usr/bin" {
		t.Errorf("PATH = %q", store.vals[KeyPath])
	}

	if _, err := env.AddPath(ctx, "/opt/jw/bin", false); err != nil {
		t.Fatal(err)
	}
	if store.vals[KeyPath] != "/opt/jw/bin:/usr/bin" {
		t.Errorf("PATH after add = %q", store.vals[KeyPath])
	}

	if _, err := env.RemovePath(ctx, "/usr/bin"); err != nil {
		t.Fatal(err)
	}
	if store.vals[KeyPath] != "/opt/jw/bin" {
		t.Errorf("PATH after remove = %q", store.vals[KeyPath])
	}

	store.sets = nil
	if removed, err := env.CleanPath(ctx); err != nil || removed != nil || store.sets != nil {
		t.Errorf("clean PATH should not write: removed %v, err %v, sets %v", removed, err, store.sets)
	}
}
