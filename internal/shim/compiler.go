// SPDX-License-Identifier: MPL-2.0

package shim

import (
	"context"
	"fmt"
	"io"
	"os/exec"

	"github.com/crateprobe/crateprobe/pkg/types"
)

const (
	// OutcomeSuccess means the compiler ran and exited zero.
	OutcomeSuccess Outcome = iota
	// OutcomeIntercepted means the target crate was captured and rejected on purpose.
	OutcomeIntercepted
	// OutcomeFailure means the real compiler ran and failed.
	OutcomeFailure
)

type (
	// Outcome tags how a single compiler invocation ended.
	Outcome int

	// Result is the outcome of one compiler invocation together with the
	// process exit status it maps to.
	Result struct {
		Outcome  Outcome
		ExitCode types.ExitCode
	}

	// Compiler is anything that can be invoked with a rustc argv.
	// The returned error is reserved for failures to run at all; a compiler
	// that ran and failed reports it through Result.
	Compiler interface {
		Compile(ctx context.Context, args []string) (Result, error)
	}

	// ProcessCompiler runs a real compiler executable.
	ProcessCompiler struct {
		// Path is the compiler executable, looked up in PATH when not absolute.
		Path string
		// Dir is the working directory; empty means the current one.
		Dir    string
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
	}

	// Interceptor rejects the target crate and forwards everything else to Next.
	Interceptor struct {
		// Target is the --crate-name to intercept.
		Target string
		// Next receives every other invocation unchanged.
		Next Compiler
		// Notices receives the notice lines.
		Notices io.Writer
	}
)

// String returns a readable name for the Outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeIntercepted:
		return "intercepted"
	case OutcomeFailure:
		return "failure"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Compile runs the real compiler with args exactly as given.
func (c *ProcessCompiler) Compile(ctx context.Context, args []string) (Result, error) {
	cmd := exec.CommandContext(ctx, c.Path, args...)
	cmd.Dir = c.Dir
	cmd.Stdin = c.Stdin
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr

	if err := cmd.Run(); err != nil {
		code, exited := types.FromProcessError(err)
		if exited {
			return Result{Outcome: OutcomeFailure, ExitCode: code}, nil
		}
		return Result{Outcome: OutcomeFailure, ExitCode: code}, fmt.Errorf("failed to run compiler %s: %w", c.Path, err)
	}
	return Result{Outcome: OutcomeSuccess, ExitCode: types.ExitSuccess}, nil
}

// Compile captures and rejects the target crate, or delegates to Next.
func (i *Interceptor) Compile(ctx context.Context, args []string) (Result, error) {
	expanded, err := ExpandArgfiles(args)
	if err != nil {
		// The real compiler reports an unreadable argument file itself.
		return i.Next.Compile(ctx, args)
	}
	inv := ParseInvocation(expanded)
	if inv.CrateName == "" || inv.CrateName != i.Target {
		return i.Next.Compile(ctx, args)
	}

	if err := WriteNotices(i.Notices, inv.CrateName, inv.Externs); err != nil {
		return Result{Outcome: OutcomeFailure, ExitCode: types.ExitFailure}, err
	}
	return Result{Outcome: OutcomeIntercepted, ExitCode: types.ExitFailure}, nil
}
