// SPDX-License-Identifier: MPL-2.0

package shim

import (
	"errors"
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

const (
	// FileName is the name of the shim inside the nested project.
	FileName = "rustc_shim.sh"
	// FileMode lets the owner execute the shim.
	FileMode = 0o755

	// CommandPath is the hidden subcommand the shim re-executes.
	CommandPath = "internal rustc-shim"
	// TargetFlag names the crate to intercept.
	TargetFlag = "target-crate"
	// RustcFlag names the real compiler.
	RustcFlag = "rustc"
)

// ErrIncompleteScript is returned when a Script is missing a required field.
var ErrIncompleteScript = errors.New("incomplete shim script")

// Script describes the generated shim executable.
type Script struct {
	// Host is the crateprobe binary that implements the rustc-shim subcommand.
	Host string
	// Target is the crate name to intercept.
	Target string
	// RealCompiler is the compiler every other invocation is forwarded to.
	RealCompiler string
}

// Render returns the shell source of the shim. All values are quoted for a
// POSIX shell, so paths with spaces or quotes survive.
func (s Script) Render() (string, error) {
	if s.Host == "" || s.Target == "" || s.RealCompiler == "" {
		return "", fmt.Errorf("%w: host=%q target=%q rustc=%q", ErrIncompleteScript, s.Host, s.Target, s.RealCompiler)
	}

	words := []string{s.Host, s.Target, s.RealCompiler}
	quoted := make([]string, len(words))
	for i, w := range words {
		q, err := syntax.Quote(w, syntax.LangPOSIX)
		if err != nil {
			return "", fmt.Errorf("cannot quote %q for the shim: %w", w, err)
		}
		quoted[i] = q
	}

	var sb strings.Builder
	sb.WriteString("#!/bin/sh\n")
	fmt.Fprintf(&sb, "exec %s %s --%s %s --%s %s -- \"$@\"\n",
		quoted[0], CommandPath, TargetFlag, quoted[1], RustcFlag, quoted[2])

	rendered := sb.String()
	if err := validate(rendered); err != nil {
		return "", err
	}
	return rendered, nil
}

// validate parses the rendered script so a quoting mistake surfaces here and
// not as an obscure cargo error.
func validate(src string) error {
	parser := syntax.NewParser(syntax.Variant(syntax.LangPOSIX))
	if _, err := parser.Parse(strings.NewReader(src), FileName); err != nil {
		return fmt.Errorf("generated shim does not parse: %w", err)
	}
	return nil
}
