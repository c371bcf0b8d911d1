// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"os"

	"github.com/crateprobe/crateprobe/internal/shim"
	"github.com/crateprobe/crateprobe/pkg/types"

	"github.com/spf13/cobra"
)

// newRustcShimCommand creates `crateprobe internal rustc-shim`, the body of
// the compiler shim cargo runs as RUSTC inside a nested project.
//
// The invocation for the target crate prints its extern notices on stdout
// and exits 1 without compiling. Every other invocation runs the real
// compiler with the same arguments and stdio, and exits with its status.
func newRustcShimCommand(app *App) *cobra.Command {
	var target, rustc string

	shimCmd := &cobra.Command{
		Use:    "rustc-shim --" + shim.TargetFlag + " CRATE --" + shim.RustcFlag + " RUSTC -- [rustc args...]",
		Short:  "Intercept one crate's compiler invocation (internal use only)",
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceErrors = true
			cmd.SilenceUsage = true

			compiler := &shim.Interceptor{
				Target: target,
				Next: &shim.ProcessCompiler{
					Path:   rustc,
					Stdin:  os.Stdin,
					Stdout: app.stdout,
					Stderr: app.stderr,
				},
				Notices: app.stdout,
			}

			res, err := compiler.Compile(cmd.Context(), args)
			if err != nil {
				return &ExitError{Code: types.ExitFailure, Err: err}
			}
			if res.Outcome != shim.OutcomeSuccess {
				return &ExitError{Code: res.ExitCode}
			}
			return nil
		},
	}

	shimCmd.Flags().StringVar(&target, shim.TargetFlag, "", "crate name to intercept")
	shimCmd.Flags().StringVar(&rustc, shim.RustcFlag, "rustc", "real compiler for every other crate")
	_ = shimCmd.MarkFlagRequired(shim.TargetFlag)

	return shimCmd
}
