// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/amankrmj/javawizard/pkg/types"
)

// ExitError signals a non-zero exit code without forcing os.Exit in RunE
// handlers. A nil Err means the command already reported the failure.
type ExitError struct {
	Code types.ExitCode
	Err  error
}

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// silentExit is returned after a failure was already printed.
func silentExit() error {
	return &ExitError{Code: types.ExitFailure}
}

// exitCodeOf maps a command error to the process exit status.
func exitCodeOf(err error) types.ExitCode {
	if err == nil {
		return types.ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Code.Validate() == nil && exitErr.Code != types.ExitSuccess {
		return exitErr.Code
	}
	return types.ExitFailure
}

// isSilent reports whether err carries nothing left to print.
func isSilent(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr) && exitErr.Err == nil
}
