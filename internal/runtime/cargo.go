// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/crateprobe/crateprobe/pkg/types"
)

const (
	// DefaultCargo is the build tool used when none is configured.
	DefaultCargo = "cargo"
	// RustcEnv selects the compiler cargo invokes.
	RustcEnv = "RUSTC"
	// RustcWrapperEnv would put another program between cargo and the shim.
	RustcWrapperEnv = "RUSTC_WRAPPER"
)

// CargoRuntime runs cargo as a child process.
type CargoRuntime struct {
	// Binary is the cargo executable
	Binary string
	// Args are passed to cargo, e.g. ["build"]
	Args []string
}

// NewCargoRuntime creates a runtime for `cargo build`.
func NewCargoRuntime() *CargoRuntime {
	return &CargoRuntime{Binary: DefaultCargo, Args: []string{"build"}}
}

// Name returns the runtime name
func (r *CargoRuntime) Name() string {
	return "cargo"
}

// Available reports whether the cargo binary can be found.
func (r *CargoRuntime) Available() bool {
	_, err := exec.LookPath(r.binary())
	return err == nil
}

// Build runs cargo in req.Dir and captures its output.
func (r *CargoRuntime) Build(ctx context.Context, req Request) *Result {
	cmd := exec.CommandContext(ctx, r.binary(), r.Args...)
	cmd.Dir = req.Dir
	cmd.Env = ScopedEnv(os.Environ(), req.Env, req.Unset)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := &Result{
		Output:    stdout.Bytes(),
		ErrOutput: stderr.Bytes(),
	}

	if err != nil {
		code, exited := types.FromProcessError(err)
		result.ExitCode = code
		if !exited {
			result.Error = fmt.Errorf("failed to run %s: %w", r.binary(), err)
		}
	}

	return result
}

func (r *CargoRuntime) binary() string {
	if r.Binary == "" {
		return DefaultCargo
	}
	return r.Binary
}
