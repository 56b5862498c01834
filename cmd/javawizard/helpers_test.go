// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/amankrmj/javawizard/internal/envstore"
	"github.com/amankrmj/javawizard/internal/runner"
	"github.com/amankrmj/javawizard/internal/runner/runnertest"
	"github.com/amankrmj/javawizard/pkg/platform"
)

type (
	// memStore is an in-memory envstore.Store.
	memStore struct {
		mu   sync.Mutex
		vars map[string]string
	}

	// testCLI runs the command tree against buffers, a temporary home and
	// a scripted runner.
	testCLI struct {
		t      *testing.T
		app    *App
		stdout *bytes.Buffer
		stderr *bytes.Buffer
		runner *runnertest.Fake
		store  *memStore
		env    map[string]string
		home   string
	}
)

func (s *memStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vars[key], nil
}

func (s *memStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vars[key] = value
	return nil
}

func (s *memStore) Location() string { return "memory" }

func newTestCLI(t *testing.T) *testCLI {
	t.Helper()

	c := &testCLI{
		t:      t,
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		runner: runnertest.New(),
		store:  &memStore{vars: map[string]string{}},
		env:    map[string]string{},
		home:   t.TempDir(),
	}
	app, err := NewApp(Dependencies{
		Runner: c.runner,
		Logger: log.New(c.stderr),
		GOOS:   platform.Linux,
		Getenv: func(key string) string { return c.env[key] },
		EnvStore: func(string, runner.Runner, string) envstore.Store {
			return c.store
		},
		ConfigDir: filepath.Join(c.home, "config"),
		HomeDir:   c.home,
		Stdout:    c.stdout,
		Stderr:    c.stderr,
	})
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	c.app = app
	return c
}

// run executes one invocation, resetting the output buffers first.
func (c *testCLI) run(args ...string) error {
	c.t.Helper()
	c.stdout.Reset()
	c.stderr.Reset()
	root := NewRootCommand(c.app)
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

// versionsDir is where the default config puts managed JDKs.
func (c *testCLI) versionsDir() string {
	return filepath.Join(c.home, ".javawizard", "java-versions")
}
