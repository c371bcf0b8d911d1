// SPDX-License-Identifier: MPL-2.0

// Package fakecargo implements stand-ins for cargo and rustc that are small
// enough to run in tests yet drive the compiler the way cargo does: one
// process per crate, dependencies first, the target last with one --extern
// per dependency, and the compiler taken from $RUSTC.
//
// Dependencies whose name starts with "broken" fail to compile.
package fakecargo

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/crateprobe/crateprobe/internal/manifest"
	"github.com/crateprobe/crateprobe/internal/shim"
	"github.com/crateprobe/crateprobe/pkg/types"
)

const (
	// BrokenPrefix marks crates the fake compiler refuses.
	BrokenPrefix = "broken"
	// Version is printed by `rustc -vV`.
	Version = "rustc 1.80.0 (fake)"

	depsDir = "target/debug/deps"
)

// CargoMain runs `cargo build` in the current directory and returns the
// process exit code.
func CargoMain() int {
	return Cargo(context.Background(), ".", os.Stdout, os.Stderr)
}

// Cargo builds the package in dir, writing compiler stdout to stdout and
// progress and errors to stderr.
func Cargo(ctx context.Context, dir string, stdout, stderr io.Writer) int {
	m, err := manifest.Load(filepath.Join(dir, manifest.FileName))
	if err != nil {
		fmt.Fprintf(stderr, "error: failed to parse manifest: %v\n", err)
		return int(types.ExitCargoBuildFailed)
	}

	rustc := os.Getenv("RUSTC")
	if rustc == "" {
		rustc = "rustc"
	}
	run := func(args ...string) int {
		cmd := exec.CommandContext(ctx, rustc, args...)
		cmd.Dir = dir
		cmd.Stdout = stdout
		cmd.Stderr = stderr
		if err := cmd.Run(); err != nil {
			if code, exited := types.FromProcessError(err); exited {
				return int(code)
			}
			fmt.Fprintf(stderr, "error: could not execute process `%s`: %v\n", rustc, err)
			return -1
		}
		return 0
	}

	if code := run("-vV"); code != 0 {
		fmt.Fprintf(stderr, "error: `%s -vV` failed\n", rustc)
		return int(types.ExitCargoBuildFailed)
	}

	var externs []string
	for _, dep := range m.DependencyNames() {
		crate := manifest.CrateName(dep)
		fmt.Fprintf(stderr, "   Compiling %s v0.1.0\n", dep)
		if code := run("--crate-name", crate, "--crate-type", "lib", "--edition=2021", "src/lib.rs", "--out-dir", depsDir); code != 0 {
			fmt.Fprintf(stderr, "error: could not compile `%s` (lib) due to 1 previous error\n", dep)
			return int(types.ExitCargoBuildFailed)
		}
		externs = append(externs, "--extern", crate+"="+depsDir+"/lib"+crate+".rlib")
	}

	if bs := m.BuildScript(); bs != "" {
		if code := run("--crate-name", "build_script_build", "--edition=2021", bs, "--out-dir", "target/debug/build"); code != 0 {
			fmt.Fprintf(stderr, "error: failed to compile build script of `%s`\n", m.Package.Name)
			return int(types.ExitCargoBuildFailed)
		}
	}

	name := m.TargetName()
	fmt.Fprintf(stderr, "   Compiling %s v%s\n", m.Package.Name, m.Package.Version)
	args := append([]string{"--crate-name", manifest.CrateName(name), "--edition=2021", m.TargetSource(name)}, externs...)
	args = append(args, "--out-dir", "target/debug")
	if code := run(args...); code != 0 {
		fmt.Fprintf(stderr, "error: could not compile `%s` (bin \"%s\") due to 1 previous error\n", m.Package.Name, name)
		return int(types.ExitCargoBuildFailed)
	}
	fmt.Fprintln(stderr, "    Finished `dev` profile [unoptimized + debuginfo] target(s)")
	return 0
}

// RustcMain runs the fake compiler with os.Args and returns the exit code.
func RustcMain() int {
	return Rustc(os.Args[1:], os.Stdout, os.Stderr)
}

// Rustc "compiles" one crate: it writes an empty artifact into --out-dir.
func Rustc(args []string, stdout, stderr io.Writer) int {
	if len(args) == 1 && args[0] == "-vV" {
		fmt.Fprintln(stdout, Version)
		return 0
	}

	inv := shim.ParseInvocation(args)
	if inv.CrateName == "" {
		fmt.Fprintln(stderr, "error: no input crate name")
		return 1
	}
	if strings.HasPrefix(inv.CrateName, BrokenPrefix) {
		fmt.Fprintf(stderr, "error[E0425]: cannot find value `x` in crate `%s`\n", inv.CrateName)
		return 1
	}

	outDir := "."
	for i, a := range args {
		if a == "--out-dir" && i+1 < len(args) {
			outDir = args[i+1]
		}
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	artifact := filepath.Join(outDir, "lib"+inv.CrateName+".rlib")
	if err := os.WriteFile(artifact, []byte(inv.CrateName+"\n"), 0o644); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
