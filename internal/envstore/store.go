// SPDX-License-Identifier: MPL-2.0

package envstore

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/amankrmj/javawizard/internal/runner"
	"github.com/amankrmj/javawizard/pkg/platform"
)

const (
	KeyJavaHome = "JAVA_HOME"
	KeyPath     = "PATH"

	// EnvFileName is the managed shell file under the javawizard home.
	EnvFileName = "env.sh"
)

type (
	// Store reads and writes persisted user environment variables.
	Store interface {
		// Get returns the persisted value, or "" when unset.
		Get(ctx context.Context, key string) (string, error)
		Set(ctx context.Context, key, value string) error
		// Location describes where values are persisted, for user hints.
		Location() string
	}

	// SetError reports a failed write, carrying the tool's diagnostic.
	SetError struct {
		Key    string
		Detail string
		Err    error
	}
)

func (e *SetError) Error() string {
	verb := "set " + e.Key
	if e.Key == KeyPath {
		verb = "update PATH"
	}
	msg := "Failed to " + verb
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SetError) Unwrap() error { return e.Err }

// New returns the Store for goos: the registry on Windows, env.sh under
// homeDir elsewhere.
func New(goos string, r runner.Runner, homeDir string) Store {
	if goos == platform.Windows {
		return NewRegistryStore(r)
	}
	return NewFileStore(filepath.Join(homeDir, EnvFileName))
}

// ErrEmptyKey is returned for a blank variable name.
var ErrEmptyKey = fmt.Errorf("empty variable name")
