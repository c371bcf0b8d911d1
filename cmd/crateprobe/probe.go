// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/crateprobe/crateprobe/internal/config"
	"github.com/crateprobe/crateprobe/internal/issue"
	"github.com/crateprobe/crateprobe/internal/probe"
	"github.com/crateprobe/crateprobe/internal/rewrite"
	"github.com/crateprobe/crateprobe/internal/scaffold"
	"github.com/crateprobe/crateprobe/pkg/types"

	"github.com/spf13/cobra"
)

// probeFlags are the options shared by `probe` and `stage --probe`.
type probeFlags struct {
	packageName  string
	packageDir   string
	manifestPath string
	order        string
	noReuse      bool
}

func newProbeCommand(app *App) *cobra.Command {
	var flags probeFlags

	probeCmd := &cobra.Command{
		Use:   "probe <script>",
		Short: "Declare the external crates a script needs",
		Long: `Run a nested cargo build of the script's package with a stand-in compiler,
collect the crates cargo passes to the script, and prepend one
extern crate declaration per crate to the script.

The script is left untouched when the build fails for any other reason.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			script, err := scaffold.FindScript(args[0])
			if err != nil {
				app.renderIssue(issue.ScriptNotFoundId)
				return issue.NewErrorContext().
					WithOperation("probe script").
					WithResource(args[0]).
					WithSuggestion("Check the path; .crs and .rs are tried when no extension is given").
					Wrap(err).
					BuildError()
			}
			return app.runProbe(cmd.Context(), script, flags)
		},
	}

	addProbeFlags(probeCmd, &flags)
	probeCmd.Flags().StringVar(&flags.packageName, "package", "", "bin target to intercept (default: from the manifest)")
	probeCmd.Flags().StringVar(&flags.packageDir, "package-dir", "", "package root (default: the script's directory)")
	probeCmd.Flags().StringVar(&flags.manifestPath, "manifest", "", "path to Cargo.toml (default: <package-dir>/Cargo.toml)")

	return probeCmd
}

func addProbeFlags(cmd *cobra.Command, flags *probeFlags) {
	cmd.Flags().StringVar(&flags.order, "order", "", "declaration order: discovery or lexical (default from config)")
	cmd.Flags().BoolVar(&flags.noReuse, "no-reuse", false, "do not copy existing build artifacts into the nested project")
}

// runProbe loads configuration, runs the prober and reports the outcome.
func (a *App) runProbe(ctx context.Context, script string, flags probeFlags) error {
	cfg, err := a.loadConfig(ctx)
	if err != nil {
		a.renderIssue(issue.ConfigLoadFailedId)
		return err
	}
	if flags.order != "" {
		order := rewrite.Order(flags.order)
		if ok, errs := order.IsValid(); !ok {
			return errs[0]
		}
		cfg.Probe.Order = order
	}

	prober, cargo, err := a.newProber(cfg, flags.noReuse)
	if err != nil {
		return err
	}
	if !cargo.Available() {
		a.renderIssue(issue.CargoNotFoundId)
		return issue.NewErrorContext().
			WithOperation("probe script").
			WithResource(script).
			WithSuggestion("Install Rust with rustup or set cargo.binary in " + config.ConfigFileName + "." + config.ConfigFileExt).
			Wrap(fmt.Errorf("cargo executable %q not found", cargo.Binary)).
			BuildError()
	}

	res, err := prober.Probe(ctx, probe.Request{
		ScriptPath:   script,
		PackageName:  flags.packageName,
		PackageDir:   flags.packageDir,
		ManifestPath: flags.manifestPath,
	})
	if err != nil {
		return a.probeFailure(script, err)
	}

	a.reportProbe(script, res)
	return nil
}

func (a *App) reportProbe(script string, res *probe.Result) {
	if len(res.Externs) == 0 {
		fmt.Fprintln(a.stdout, SuccessStyle.Render("✓")+" "+CmdStyle.Render(script)+SubtitleStyle.Render(" needs no external crates"))
	} else {
		fmt.Fprintf(a.stdout, "%s declared %d crate(s) in %s\n", SuccessStyle.Render("✓"), len(res.Externs), CmdStyle.Render(script))
		for _, name := range res.Externs {
			fmt.Fprintln(a.stdout, "  • "+CmdStyle.Render(name))
		}
	}
	if res.CleanupErr != nil {
		fmt.Fprintln(a.stderr, WarningStyle.Render("Warning: ")+"nested project left behind: "+res.CleanupErr.Error())
	}
}

// probeFailure turns a probe error into an actionable error carrying the
// exit code cargo reported.
func (a *App) probeFailure(script string, err error) error {
	var perr *probe.Error
	if !errors.As(err, &perr) {
		return err
	}

	ctx := issue.NewErrorContext().WithOperation("probe script").WithResource(script)
	code := types.ExitFailure

	switch perr.Kind {
	case probe.KindStaging:
		if strings.Contains(perr.Op, "manifest") {
			a.renderIssue(issue.ManifestInvalidId)
			ctx.WithSuggestion("Pass --manifest, or create a package with 'crateprobe stage'")
		} else {
			a.renderIssue(issue.StagingFailedId)
		}
		ctx.WithSuggestion("The script has not been modified")
	case probe.KindBuild:
		a.renderIssue(issue.DependencyBuildFailedId)
		if perr.Stderr != "" {
			fmt.Fprintln(a.stderr, VerboseStyle.Render(perr.Stderr))
		}
		ctx.WithSuggestion("A dependency failed to compile; the script has not been modified")
		if !a.verbose {
			ctx.WithSuggestion("Run with --verbose for the build log")
		}
		if perr.ExitCode != 0 {
			code = perr.ExitCode
		}
	case probe.KindRewrite:
		a.renderIssue(issue.RewriteFailedId)
		ctx.WithSuggestion("Check write permission on the script and its directory")
	}

	return &ExitError{Code: code, Err: ctx.Wrap(err).BuildError()}
}
