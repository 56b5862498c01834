// SPDX-License-Identifier: MPL-2.0

// Package runner executes external programs (java, reg, native-image,
// ISCC) behind an interface so callers can be tested without spawning
// processes.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/amankrmj/javawizard/pkg/types"
)

type (
	// Command describes a single process invocation.
	Command struct {
		// Name is the executable name or path.
		Name string
		// Args are passed verbatim (no shell interpretation).
		Args []string
		// Dir is the working directory; empty means the current one.
		Dir string
		// Env entries ("KEY=value") are appended to the inherited environment.
		Env []string
		// Stdout and Stderr, when set, receive the streams in addition to
		// the captured Result buffers.
		Stdout io.Writer
		Stderr io.Writer
	}

	// Result captures the outcome of a finished process.
	Result struct {
		ExitCode types.ExitCode
		Stdout   string
		Stderr   string
	}

	// Runner starts processes and resolves executables.
	Runner interface {
		Run(ctx context.Context, cmd Command) (*Result, error)
		LookPath(name string) (string, error)
	}

	// ExecRunner runs processes with os/exec.
	ExecRunner struct{}
)

// New returns the os/exec backed Runner.
func New() *ExecRunner { return &ExecRunner{} }

// String renders the command line for logs.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, c.Name)
	for _, a := range c.Args {
		if strings.ContainsAny(a, " \t\"") {
			a = fmt.Sprintf("%q", a)
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}

// Success reports whether the process exited with status 0.
func (r *Result) Success() bool { return r != nil && r.ExitCode.IsSuccess() }

// Run starts the process and waits for it. A non-zero exit status is not an
// error: it is reported through Result.ExitCode. The error return is
// reserved for processes that could not be started or were cancelled.
func (ExecRunner) Run(ctx context.Context, c Command) (*Result, error) {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	if c.Dir != "" {
		cmd.Dir = c.Dir
	}
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = teeWriter(&stdout, c.Stdout)
	cmd.Stderr = teeWriter(&stderr, c.Stderr)

	err := cmd.Run()
	result := &Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return result, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		result.ExitCode = types.ExitCodeFromError(err)
		return result, nil
	}
	if ctx.Err() != nil {
		return result, fmt.Errorf("%s: %w", c.Name, ctx.Err())
	}
	return result, fmt.Errorf("start %s: %w", c.Name, err)
}

// LookPath wraps exec.LookPath.
func (ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

func teeWriter(buf *bytes.Buffer, extra io.Writer) io.Writer {
	if extra == nil {
		return buf
	}
	return io.MultiWriter(buf, extra)
}
