// SPDX-License-Identifier: MPL-2.0

// Package runnertest provides a scripted runner.Runner for tests.
package runnertest

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"github.com/amankrmj/javawizard/internal/runner"
	"github.com/amankrmj/javawizard/pkg/types"
)

type (
	// Response is the canned outcome for a matched command.
	Response struct {
		ExitCode types.ExitCode
		Stdout   string
		Stderr   string
		Err      error
		// Do runs before the response is returned, e.g. to create the
		// files a real tool would have produced.
		Do func(cmd runner.Command)
	}

	// Fake records every command and answers with the first response whose
	// key prefixes the rendered command line.
	Fake struct {
		mu        sync.Mutex
		responses []entry
		paths     map[string]string
		Calls     []runner.Command
	}

	entry struct {
		prefix string
		resp   Response
	}
)

// New returns an empty Fake. Unmatched commands succeed with no output.
func New() *Fake {
	return &Fake{paths: make(map[string]string)}
}

// On registers resp for commands whose String() starts with prefix.
func (f *Fake) On(prefix string, resp Response) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, entry{prefix: prefix, resp: resp})
	return f
}

// WithPath makes LookPath(name) return path.
func (f *Fake) WithPath(name, path string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths[name] = path
	return f
}

// Run implements runner.Runner.
func (f *Fake) Run(_ context.Context, cmd runner.Command) (*runner.Result, error) {
	f.mu.Lock()
	f.Calls = append(f.Calls, cmd)
	line := cmd.String()
	var resp Response
	for _, e := range f.responses {
		if strings.HasPrefix(line, e.prefix) {
			resp = e.resp
			break
		}
	}
	f.mu.Unlock()

	if resp.Do != nil {
		resp.Do(cmd)
	}
	writeTo(cmd.Stdout, resp.Stdout)
	writeTo(cmd.Stderr, resp.Stderr)
	if resp.Err != nil {
		return nil, resp.Err
	}
	return &runner.Result{ExitCode: resp.ExitCode, Stdout: resp.Stdout, Stderr: resp.Stderr}, nil
}

// LookPath implements runner.Runner.
func (f *Fake) LookPath(name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.paths[name]; ok {
		return p, nil
	}
	return "", fmt.Errorf("%s: %w", name, exec.ErrNotFound)
}

// CommandLines returns the rendered command lines in call order.
func (f *Fake) CommandLines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	lines := make([]string, len(f.Calls))
	for i, c := range f.Calls {
		lines[i] = c.String()
	}
	return lines
}

func writeTo(w io.Writer, s string) {
	if w != nil && s != "" {
		_, _ = io.WriteString(w, s)
	}
}
