// SPDX-License-Identifier: MPL-2.0

package scaffold

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// KindFile uses the body as the whole source file.
	KindFile Kind = "file"
	// KindExpr prints the Debug form of an expression.
	KindExpr Kind = "expr"
	// KindLoop calls a closure once per stdin line.
	KindLoop Kind = "loop"
	// KindLoopCount is KindLoop with a 1-based line counter.
	KindLoopCount Kind = "loop-count"

	preludeMarker = "%p"
	bodyMarker    = "%b"
)

// ErrInvalidKind is the sentinel error wrapped by InvalidKindError.
var ErrInvalidKind = errors.New("invalid script kind")

type (
	// Kind selects the template a body is wrapped in.
	Kind string

	// InvalidKindError is returned when a Kind value is not recognized.
	InvalidKindError struct {
		Value Kind
	}
)

var templates = map[Kind]string{
	KindFile: bodyMarker,
	KindExpr: `
%p
fn main() {
    println!("{:?}",
{%b}
    );
}
`,
	KindLoop: `
%p
use std::any::Any;
use std::io::prelude::*;

fn main() {
    let mut closure = enforce_closure(
{%b}
    );
    let mut line_buffer = String::new();
    let stdin = std::io::stdin();
    loop {
        line_buffer.clear();
        let read_res = stdin.lock().read_line(&mut line_buffer).unwrap_or(0);
        if read_res == 0 { break }
        let output = closure(&line_buffer);

        let display = {
            let output_any: &dyn Any = &output;
            !output_any.is::<()>()
        };

        if display {
            println!("{:?}", output);
        }
    }
}

fn enforce_closure<F, T>(closure: F) -> F
where F: FnMut(&str) -> T, T: std::fmt::Debug + 'static {
    closure
}
`,
	KindLoopCount: `
%p
use std::any::Any;
use std::io::prelude::*;

fn main() {
    let mut closure = enforce_closure(
{%b}
    );
    let mut line_buffer = String::new();
    let stdin = std::io::stdin();
    let mut count = 0;
    loop {
        line_buffer.clear();
        let read_res = stdin.lock().read_line(&mut line_buffer).unwrap_or(0);
        if read_res == 0 { break }
        count += 1;
        let output = closure(&line_buffer, count);

        let display = {
            let output_any: &dyn Any = &output;
            !output_any.is::<()>()
        };

        if display {
            println!("{:?}", output);
        }
    }
}

fn enforce_closure<F, T>(closure: F) -> F
where F: FnMut(&str, usize) -> T, T: std::fmt::Debug + 'static {
    closure
}
`,
}

// Error implements the error interface.
func (e *InvalidKindError) Error() string {
	return fmt.Sprintf("invalid script kind %q (valid: %s, %s, %s, %s)", e.Value, KindFile, KindExpr, KindLoop, KindLoopCount)
}

// Unwrap returns ErrInvalidKind for errors.Is compatibility.
func (e *InvalidKindError) Unwrap() error { return ErrInvalidKind }

// IsValid returns whether the Kind is a known template. The zero value
// means KindFile.
func (k Kind) IsValid() (bool, []error) {
	if k == "" {
		return true, nil
	}
	if _, ok := templates[k]; ok {
		return true, nil
	}
	return false, []error{&InvalidKindError{Value: k}}
}

// String returns the string representation of the Kind.
func (k Kind) String() string { return string(k) }

// Wrap substitutes prelude and body into the template of kind. Substituted
// text is never rescanned, so a body containing "%b" stays intact.
func Wrap(kind Kind, prelude, body string) (string, error) {
	if kind == "" {
		kind = KindFile
	}
	tmpl, ok := templates[kind]
	if !ok {
		return "", &InvalidKindError{Value: kind}
	}
	return strings.NewReplacer(preludeMarker, prelude, bodyMarker, body).Replace(tmpl), nil
}
