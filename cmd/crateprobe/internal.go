// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"
)

// newInternalCommand creates the hidden parent of subcommands that crateprobe
// runs in child processes of its own.
func newInternalCommand(app *App) *cobra.Command {
	internalCmd := &cobra.Command{
		Use:    "internal",
		Short:  "Internal commands (not for direct use)",
		Hidden: true,
	}
	internalCmd.AddCommand(newRustcShimCommand(app))
	return internalCmd
}
