// SPDX-License-Identifier: MPL-2.0

package probe

import (
	"errors"
	"fmt"

	"github.com/crateprobe/crateprobe/pkg/types"
)

const (
	// KindStaging means the nested project could not be prepared. The script
	// has not been read or written.
	KindStaging Kind = iota + 1
	// KindBuild means the nested build failed for a reason other than the
	// intentional rejection of the target crate.
	KindBuild
	// KindRewrite means the declarations could not be written back.
	KindRewrite
)

var (
	// ErrStaging is the sentinel wrapped by staging errors.
	ErrStaging = errors.New("nested project staging failed")
	// ErrBuildFailed is the sentinel wrapped by unrelated build failures.
	ErrBuildFailed = errors.New("dependency build failed")
	// ErrRewrite is the sentinel wrapped by write-back failures.
	ErrRewrite = errors.New("script rewrite failed")

	errUnknownKind = errors.New("probe failed")
)

type (
	// Kind classifies a probe failure.
	Kind int

	// Error is returned by Prober.Probe. Every probe failure is an *Error;
	// the script is only modified when Probe returns nil.
	Error struct {
		Kind Kind
		// Op is the step that failed, e.g. "copy manifest".
		Op string
		// Err is the underlying cause.
		Err error
		// Stderr holds the tail of cargo's stderr for KindBuild.
		Stderr string
		// ExitCode is cargo's exit status for KindBuild.
		ExitCode types.ExitCode
	}
)

// String returns a readable name for the Kind.
func (k Kind) String() string {
	switch k {
	case KindStaging:
		return "staging"
	case KindBuild:
		return "build"
	case KindRewrite:
		return "rewrite"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.sentinel(), e.Op)
	}
	return fmt.Sprintf("%s: %s: %v", e.sentinel(), e.Op, e.Err)
}

// Unwrap exposes both the Kind sentinel and the cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.sentinel()}
	}
	return []error{e.sentinel(), e.Err}
}

func (e *Error) sentinel() error {
	switch e.Kind {
	case KindStaging:
		return ErrStaging
	case KindBuild:
		return ErrBuildFailed
	case KindRewrite:
		return ErrRewrite
	default:
		return errUnknownKind
	}
}

func stagingError(op string, err error) *Error {
	return &Error{Kind: KindStaging, Op: op, Err: err}
}

func rewriteError(op string, err error) *Error {
	return &Error{Kind: KindRewrite, Op: op, Err: err}
}
