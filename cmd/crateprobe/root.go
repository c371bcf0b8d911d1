// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand creates the crateprobe command tree bound to app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "crateprobe",
		Short: "Discover and declare the crates a Rust script needs",
		Long: TitleStyle.Render("crateprobe") + SubtitleStyle.Render(" - discover and declare the crates a Rust script needs") + `

crateprobe builds a throwaway copy of a script's package with a stand-in
compiler that records which crates cargo hands to the script, then prepends
an extern crate declaration for each of them to the script.

` + SubtitleStyle.Render("Examples:") + `
  crateprobe probe hello.rs                 Declare the crates hello.rs needs
  crateprobe stage hello.rs --out ./pkg     Wrap a script into a cargo package
  crateprobe stage - --kind expr --out ./pkg --probe
  crateprobe config show                    Show current configuration`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&app.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/crateprobe/config.cue)")

	rootCmd.AddCommand(newProbeCommand(app))
	rootCmd.AddCommand(newStageCommand(app))
	rootCmd.AddCommand(newConfigCommand(app))
	rootCmd.AddCommand(newInternalCommand(app))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI and exits the process with its status.
// This is called by main.main().
func Execute() {
	os.Exit(ExecuteCode())
}

// ExecuteCode runs the CLI and returns the process exit status.
func ExecuteCode() int {
	app := NewApp(Dependencies{})
	return run(context.Background(), app, NewRootCommand(app))
}

func run(ctx context.Context, app *App, rootCmd *cobra.Command) int {
	// fang overrides rootCmd.Version, so the version goes through WithVersion.
	err := fang.Execute(
		ctx,
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(app.handleError),
	)
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return int(exitErr.Code)
	}
	return 1
}
