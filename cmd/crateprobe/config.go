// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/crateprobe/crateprobe/internal/config"
	"github.com/crateprobe/crateprobe/internal/issue"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `crateprobe config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage crateprobe configuration",
		Long: `Manage crateprobe configuration.

Configuration is stored in:
  - Linux: ~/.config/crateprobe/config.cue
  - macOS: ~/Library/Application Support/crateprobe/config.cue
  - Windows: %APPDATA%\crateprobe\config.cue

Every key can be overridden with a CRATEPROBE_ environment variable,
for example CRATEPROBE_PROBE_ORDER=lexical.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.showConfig(cmd.Context())
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, created, err := config.CreateDefaultConfig("")
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(app.stdout, "%s created %s\n", SuccessStyle.Render("✓"), CmdStyle.Render(path))
			} else {
				fmt.Fprintf(app.stdout, "%s already exists\n", CmdStyle.Render(path))
			}
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ConfigFilePath("")
			if err != nil {
				return err
			}
			fmt.Fprintln(app.stdout, path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output raw configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

func (a *App) showConfig(ctx context.Context) error {
	cfg, path, err := a.Config.Resolve(ctx, config.LoadOptions{ConfigFilePath: a.configPath})
	if err != nil {
		a.renderIssue(issue.ConfigLoadFailedId)
		return err
	}

	keyStyle := CmdStyle
	valueStyle := SuccessStyle
	line := func(indent, key string, value any) {
		fmt.Fprintf(a.stdout, "%s%s: %s\n", indent, keyStyle.Render(key), valueStyle.Render(fmt.Sprint(value)))
	}

	fmt.Fprintln(a.stdout, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(a.stdout)
	if path != "" {
		fmt.Fprintf(a.stdout, "%s: %s\n", keyStyle.Render("Config file"), path)
	} else {
		fmt.Fprintf(a.stdout, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}

	fmt.Fprintln(a.stdout)
	fmt.Fprintf(a.stdout, "%s:\n", keyStyle.Render("cargo"))
	line("  ", "binary", cfg.Cargo.Binary)
	line("  ", "args", strings.Join(cfg.Cargo.Args, " "))
	if cfg.Cargo.Rustc != "" {
		line("  ", "rustc", cfg.Cargo.Rustc)
	} else {
		fmt.Fprintf(a.stdout, "  %s: %s\n", keyStyle.Render("rustc"), SubtitleStyle.Render("($RUSTC or rustc)"))
	}

	fmt.Fprintln(a.stdout)
	fmt.Fprintf(a.stdout, "%s:\n", keyStyle.Render("probe"))
	line("  ", "order", cfg.Probe.Order)
	line("  ", "reuse_artifacts", cfg.Probe.ReuseArtifacts)
	if cfg.Probe.ScratchRoot != "" {
		line("  ", "scratch_root", cfg.Probe.ScratchRoot)
	} else {
		fmt.Fprintf(a.stdout, "  %s: %s\n", keyStyle.Render("scratch_root"), SubtitleStyle.Render("(package directory)"))
	}
	line("  ", "copy_workers", cfg.Probe.CopyWorkers)

	fmt.Fprintln(a.stdout)
	fmt.Fprintf(a.stdout, "%s:\n", keyStyle.Render("ui"))
	line("  ", "verbose", cfg.UI.Verbose)

	return nil
}
