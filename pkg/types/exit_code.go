// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"os/exec"
	"strconv"
)

const (
	// ExitSuccess is the status of a process that completed normally.
	ExitSuccess ExitCode = 0
	// ExitFailure is the generic failure status. The shim uses it for the
	// intercepted target crate, matching what a failed rustc reports.
	ExitFailure ExitCode = 1
	// ExitCargoBuildFailed is what cargo returns when any unit fails to compile.
	ExitCargoBuildFailed ExitCode = 101
)

// ErrInvalidExitCode is the sentinel error wrapped by InvalidExitCodeError.
var ErrInvalidExitCode = errors.New("invalid exit code")

type (
	// ExitCode represents a process exit status code.
	// Exit codes are in the range 0-255 on POSIX systems.
	// The zero value (0) means success.
	ExitCode int

	// InvalidExitCodeError is returned when an ExitCode is outside the
	// valid range (0-255).
	InvalidExitCodeError struct {
		Value ExitCode
	}
)

// Error implements the error interface.
func (e *InvalidExitCodeError) Error() string {
	return fmt.Sprintf("invalid exit code %d (must be in range 0-255)", e.Value)
}

// Unwrap returns ErrInvalidExitCode so callers can use errors.Is for programmatic detection.
func (e *InvalidExitCodeError) Unwrap() error { return ErrInvalidExitCode }

// Validate returns an error if the ExitCode is outside the valid range (0-255).
func (c ExitCode) Validate() error {
	if c < 0 || c > 255 {
		return &InvalidExitCodeError{Value: c}
	}
	return nil
}

// IsSuccess returns true if the exit code indicates successful execution.
func (c ExitCode) IsSuccess() bool { return c == ExitSuccess }

// IsBuildFailure reports whether cargo signalled that at least one unit failed.
func (c ExitCode) IsBuildFailure() bool { return c == ExitCargoBuildFailed }

// FromProcessError extracts the status of a child process that ran and
// exited non-zero. ok is false when err did not come from a finished
// process, in which case code is ExitFailure.
func FromProcessError(err error) (code ExitCode, ok bool) {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return ExitCode(exitErr.ExitCode()), true
	}
	return ExitFailure, false
}

// String returns the decimal string representation of the ExitCode.
func (c ExitCode) String() string { return strconv.Itoa(int(c)) }
