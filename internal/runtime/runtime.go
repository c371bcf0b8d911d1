// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"strings"

	"github.com/crateprobe/crateprobe/pkg/types"
)

type (
	// Request describes one build run.
	Request struct {
		// Dir is the working directory of the build tool.
		Dir string
		// Env holds variables set for the child only, on top of the host environment.
		Env map[string]string
		// Unset lists host variables removed from the child environment.
		Unset []string
	}

	// Result contains the outcome of running the build tool.
	Result struct {
		// ExitCode is the exit code of the build tool
		ExitCode types.ExitCode
		// Error is set when the tool could not be run at all
		Error error
		// Output contains captured stdout
		Output []byte
		// ErrOutput contains captured stderr
		ErrOutput []byte
	}

	// Builder runs a build and captures its output.
	Builder interface {
		// Name returns the builder name
		Name() string
		// Build runs the build described by req and blocks until it exits.
		Build(ctx context.Context, req Request) *Result
	}
)

// NewErrorResult creates a Result with the given exit code and error.
func NewErrorResult(code types.ExitCode, err error) *Result {
	return &Result{ExitCode: code, Error: err}
}

// Succeeded reports whether the tool ran and exited zero.
func (r *Result) Succeeded() bool {
	return r.Error == nil && r.ExitCode.IsSuccess()
}

// StderrTail returns at most the last n lines of captured stderr.
func (r *Result) StderrTail(n int) string {
	text := strings.TrimRight(string(r.ErrOutput), "\n")
	if text == "" || n <= 0 {
		return ""
	}
	lines := strings.Split(text, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
