// SPDX-License-Identifier: MPL-2.0

package shim

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/syntax"
)

func TestScriptRenderRoundTrip(t *testing.T) {
	t.Parallel()

	s := Script{
		Host:         "/opt/my tools/crate'probe",
		Target:       "my_script",
		RealCompiler: "/home/u/.cargo/bin/rustc",
	}
	src, err := s.Render()
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.HasPrefix(src, "#!/bin/sh\n") {
		t.Errorf("missing shebang: %q", src)
	}

	file, err := syntax.NewParser().Parse(strings.NewReader(src), FileName)
	if err != nil {
		t.Fatalf("parse rendered script: %v", err)
	}

	var words []string
	syntax.Walk(file, func(node syntax.Node) bool {
		call, ok := node.(*syntax.CallExpr)
		if !ok {
			return true
		}
		for _, w := range call.Args {
			lit, litErr := expand.Literal(nil, w)
			if litErr != nil {
				t.Fatalf("expand word: %v", litErr)
			}
			words = append(words, lit)
		}
		return false
	})

	want := []string{
		"exec", s.Host, "internal", "rustc-shim",
		"--target-crate", s.Target, "--rustc", s.RealCompiler, "--",
	}
	if len(words) < len(want) || !slices.Equal(words[:len(want)], want) {
		t.Errorf("words = %q, want prefix %q", words, want)
	}
	if !strings.Contains(src, `"$@"`) {
		t.Errorf("shim must forward its arguments: %q", src)
	}
}

func TestScriptRenderIncomplete(t *testing.T) {
	t.Parallel()

	_, err := Script{Host: "/bin/crateprobe", Target: "x"}.Render()
	if !errors.Is(err, ErrIncompleteScript) {
		t.Errorf("error = %v, want ErrIncompleteScript", err)
	}
}
