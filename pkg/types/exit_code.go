// SPDX-License-Identifier: MPL-2.0

// Package types holds small value types shared across javawizard packages.
package types

import (
	"errors"
	"fmt"
	"os/exec"
	"strconv"
)

const (
	// ExitSuccess is returned when a command completed normally.
	ExitSuccess ExitCode = 0
	// ExitFailure is returned for usage errors and failed operations.
	ExitFailure ExitCode = 1
)

// ErrInvalidExitCode is the sentinel error wrapped by InvalidExitCodeError.
var ErrInvalidExitCode = errors.New("invalid exit code")

type (
	// ExitCode represents a process exit status code in the range 0-255.
	ExitCode int

	// InvalidExitCodeError is returned when an ExitCode is outside 0-255.
	InvalidExitCodeError struct {
		Value ExitCode
	}
)

// Error implements the error interface.
func (e *InvalidExitCodeError) Error() string {
	return fmt.Sprintf("invalid exit code %d (must be in range 0-255)", e.Value)
}

// Unwrap returns ErrInvalidExitCode.
func (e *InvalidExitCodeError) Unwrap() error { return ErrInvalidExitCode }

// Validate returns an error if the ExitCode is outside the valid range (0-255).
func (c ExitCode) Validate() error {
	if c < 0 || c > 255 {
		return &InvalidExitCodeError{Value: c}
	}
	return nil
}

// IsSuccess returns true if the exit code indicates success.
func (c ExitCode) IsSuccess() bool { return c == ExitSuccess }

// String returns the decimal string representation of the ExitCode.
func (c ExitCode) String() string { return strconv.Itoa(int(c)) }

// ExitCodeFromError extracts the exit status of a finished child process.
// A nil error maps to ExitSuccess; errors that do not come from a process
// exit (the binary was not found, the context was cancelled) map to
// ExitFailure.
func ExitCodeFromError(err error) ExitCode {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := ExitCode(exitErr.ExitCode())
		if code.Validate() == nil && code != ExitSuccess {
			return code
		}
	}
	return ExitFailure
}
