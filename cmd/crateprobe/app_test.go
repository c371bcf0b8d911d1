// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/crateprobe/crateprobe/internal/config"
	"github.com/crateprobe/crateprobe/internal/issue"
	"github.com/crateprobe/crateprobe/internal/probe"
	"github.com/crateprobe/crateprobe/pkg/types"

	"github.com/charmbracelet/fang"
)

func TestParseDeps(t *testing.T) {
	t.Parallel()

	got, err := parseDeps([]string{"serde=1.0", "rand", " regex = 1.10 "})
	if err != nil {
		t.Fatalf("parseDeps() error = %v", err)
	}
	want := map[string]string{"serde": "1.0", "rand": "", "regex": "1.10"}
	if len(got) != len(want) {
		t.Fatalf("parseDeps() = %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("parseDeps()[%q] = %q, want %q", k, got[k], v)
		}
	}

	if deps, err := parseDeps(nil); err != nil || deps != nil {
		t.Errorf("parseDeps(nil) = %v, %v", deps, err)
	}
	if _, err := parseDeps([]string{"=1.0"}); err == nil {
		t.Error("parseDeps() should reject a missing crate name")
	}
}

func TestReadScriptBody(t *testing.T) {
	t.Parallel()

	t.Run("stdin", func(t *testing.T) {
		t.Parallel()
		body, source, err := readScriptBody("-", strings.NewReader("1 + 1"))
		if err != nil {
			t.Fatal(err)
		}
		if body != "1 + 1" || source != "expr" {
			t.Errorf("readScriptBody() = %q, %q", body, source)
		}
	})

	t.Run("file without extension", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		path := filepath.Join(dir, "tool.crs")
		if err := os.WriteFile(path, []byte("fn main() {}\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		body, source, err := readScriptBody(filepath.Join(dir, "tool"), nil)
		if err != nil {
			t.Fatal(err)
		}
		if body != "fn main() {}\n" || source != path {
			t.Errorf("readScriptBody() = %q, %q", body, source)
		}
	})

	t.Run("missing", func(t *testing.T) {
		t.Parallel()
		if _, _, err := readScriptBody(filepath.Join(t.TempDir(), "none"), nil); err == nil {
			t.Error("readScriptBody() should fail for a missing script")
		}
	})
}

func TestRealCompiler(t *testing.T) {
	// Not parallel: mutates RUSTC.
	cfg := config.DefaultConfig()

	t.Setenv("RUSTC", "")
	if got := realCompiler(cfg); got != probe.DefaultRealCompiler {
		t.Errorf("realCompiler() = %q, want %q", got, probe.DefaultRealCompiler)
	}

	t.Setenv("RUSTC", "/toolchain/rustc")
	if got := realCompiler(cfg); got != "/toolchain/rustc" {
		t.Errorf("realCompiler() = %q, want $RUSTC", got)
	}

	cfg.Cargo.Rustc = "/configured/rustc"
	if got := realCompiler(cfg); got != "/configured/rustc" {
		t.Errorf("realCompiler() = %q, want cargo.rustc", got)
	}
}

func TestHostExecutable(t *testing.T) {
	t.Parallel()

	got, err := hostExecutable()
	if err != nil {
		t.Fatalf("hostExecutable() error = %v", err)
	}
	if !filepath.IsAbs(got) {
		t.Errorf("hostExecutable() = %q, want an absolute path", got)
	}
}

func TestNewProber(t *testing.T) {
	t.Parallel()

	app, _, _ := newTestApp(&stubProvider{})
	cfg := config.DefaultConfig()
	cfg.Cargo.Binary = "/opt/cargo"
	cfg.Probe.CopyWorkers = 3

	p, cargo, err := app.newProber(cfg, true)
	if err != nil {
		t.Fatal(err)
	}
	if cargo.Binary != "/opt/cargo" || p.Builder != cargo {
		t.Errorf("cargo runtime = %+v", cargo)
	}
	if p.Host != "/usr/local/bin/crateprobe" {
		t.Errorf("Host = %q", p.Host)
	}
	if p.ReuseArtifacts {
		t.Error("--no-reuse should disable artifact reuse")
	}
	if p.CopyWorkers != 3 || p.Order != cfg.Probe.Order {
		t.Errorf("prober = %+v", p)
	}

	empty := config.DefaultConfig()
	empty.Cargo = config.CargoConfig{}
	_, cargo, err = app.newProber(empty, false)
	if err != nil {
		t.Fatal(err)
	}
	if cargo.Binary != "cargo" || len(cargo.Args) != 1 || cargo.Args[0] != "build" {
		t.Errorf("unset cargo config should fall back to `cargo build`, got %+v", cargo)
	}

	app.Host = func() (string, error) { return "", fs.ErrNotExist }
	if _, _, err := app.newProber(cfg, false); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("newProber() error = %v, want fs.ErrNotExist", err)
	}
}

func TestProbeFailure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantCode types.ExitCode
		wantText string
	}{
		{
			name:     "staging",
			err:      &probe.Error{Kind: probe.KindStaging, Op: "read manifest", Err: fs.ErrNotExist},
			wantCode: types.ExitFailure,
			wantText: "--manifest",
		},
		{
			name:     "build keeps cargo status",
			err:      &probe.Error{Kind: probe.KindBuild, Op: "cargo build", Stderr: "error: could not compile `x`", ExitCode: types.ExitCargoBuildFailed},
			wantCode: types.ExitCargoBuildFailed,
			wantText: "has not been modified",
		},
		{
			name:     "rewrite",
			err:      &probe.Error{Kind: probe.KindRewrite, Op: "replace script", Err: fs.ErrPermission},
			wantCode: types.ExitFailure,
			wantText: "write permission",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			app, _, stderr := newTestApp(&stubProvider{})
			err := app.probeFailure("hello.rs", tt.err)

			var exitErr *ExitError
			if !errors.As(err, &exitErr) {
				t.Fatalf("probeFailure() = %T, want *ExitError", err)
			}
			if exitErr.Code != tt.wantCode {
				t.Errorf("Code = %d, want %d", exitErr.Code, tt.wantCode)
			}
			var ae *issue.ActionableError
			if !errors.As(err, &ae) {
				t.Fatalf("probeFailure() does not wrap an ActionableError")
			}
			if !strings.Contains(ae.Format(false), tt.wantText) {
				t.Errorf("Format() = %q, want it to mention %q", ae.Format(false), tt.wantText)
			}
			if !errors.Is(err, tt.err) {
				t.Error("probe error lost from the chain")
			}
			if tt.err.(*probe.Error).Kind == probe.KindBuild && !strings.Contains(stderr.String(), "could not compile") {
				t.Errorf("stderr = %q, want the cargo output", stderr.String())
			}
		})
	}

	t.Run("other errors pass through", func(t *testing.T) {
		t.Parallel()
		app, _, _ := newTestApp(&stubProvider{})
		plain := errors.New("plain")
		if got := app.probeFailure("hello.rs", plain); got != plain {
			t.Errorf("probeFailure() = %v, want the input error", got)
		}
	})
}

func TestHandleError(t *testing.T) {
	t.Parallel()

	app, _, _ := newTestApp(&stubProvider{})
	var styles fang.Styles

	var silent bytes.Buffer
	app.handleError(&silent, styles, &ExitError{Code: 1})
	if silent.Len() != 0 {
		t.Errorf("silent ExitError wrote %q", silent.String())
	}

	var actionable bytes.Buffer
	err := issue.NewErrorContext().
		WithOperation("probe script").
		WithResource("hello.rs").
		WithSuggestion("try again").
		Wrap(errors.New("cargo exploded")).
		BuildError()
	app.handleError(&actionable, styles, &ExitError{Code: 101, Err: err})
	out := actionable.String()
	for _, want := range []string{"failed to probe script: hello.rs: cargo exploded", "• try again"} {
		if !strings.Contains(out, want) {
			t.Errorf("handleError() output %q missing %q", out, want)
		}
	}
}
