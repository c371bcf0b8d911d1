// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/crateprobe/crateprobe/internal/issue"
	"github.com/crateprobe/crateprobe/internal/scaffold"

	"github.com/spf13/cobra"
)

// stdinScript is the script argument that reads the body from stdin.
const stdinScript = "-"

func newStageCommand(app *App) *cobra.Command {
	var (
		out     string
		kind    string
		name    string
		prelude string
		deps    []string
		doProbe bool
		flags   probeFlags
	)

	stageCmd := &cobra.Command{
		Use:   "stage <script|->",
		Short: "Wrap a script into a cargo package",
		Long: `Write a cargo package for a script: a generated Cargo.toml, the script
wrapped in the chosen template, and a placeholder build.rs.

Kinds:
  file        the script is the whole source file (default)
  expr        the script is an expression whose value is printed
  loop        the script is a closure called once per stdin line
  loop-count  like loop, the closure also receives the line number

With --probe the new package is probed right away.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, source, err := readScriptBody(args[0], cmd.InOrStdin())
			if err != nil {
				app.renderIssue(issue.ScriptNotFoundId)
				return issue.NewErrorContext().
					WithOperation("stage package").
					WithResource(args[0]).
					Wrap(err).
					BuildError()
			}

			dependencies, err := parseDeps(deps)
			if err != nil {
				return err
			}

			pkg, err := scaffold.Stage(out, scaffold.Options{
				Name:         name,
				Source:       source,
				Kind:         scaffold.Kind(kind),
				Prelude:      prelude,
				Body:         body,
				Dependencies: dependencies,
			})
			if err != nil {
				return issue.NewErrorContext().
					WithOperation("stage package").
					WithResource(out).
					WithSuggestion("Valid kinds are file, expr, loop and loop-count").
					Wrap(err).
					BuildError()
			}
			fmt.Fprintf(app.stdout, "%s staged %s in %s\n", SuccessStyle.Render("✓"), CmdStyle.Render(pkg.Name), CmdStyle.Render(pkg.Dir))

			if !doProbe {
				return nil
			}
			flags.manifestPath = pkg.ManifestPath
			flags.packageDir = pkg.Dir
			return app.runProbe(cmd.Context(), pkg.ScriptPath, flags)
		},
	}

	stageCmd.Flags().StringVarP(&out, "out", "o", "", "package directory to write")
	stageCmd.Flags().StringVarP(&kind, "kind", "k", string(scaffold.KindFile), "template: file, expr, loop or loop-count")
	stageCmd.Flags().StringVar(&name, "name", "", "package name (default: derived from the script name)")
	stageCmd.Flags().StringVar(&prelude, "prelude", "", "items placed before main() in non-file templates")
	stageCmd.Flags().StringArrayVarP(&deps, "dep", "d", nil, "dependency as NAME or NAME=VERSION (repeatable)")
	stageCmd.Flags().BoolVar(&doProbe, "probe", false, "probe the staged package")
	addProbeFlags(stageCmd, &flags)
	_ = stageCmd.MarkFlagRequired("out")

	return stageCmd
}

// readScriptBody returns the script text and the path it names. "-" reads
// stdin and names the script "expr".
func readScriptBody(arg string, stdin io.Reader) (body, source string, err error) {
	if arg == stdinScript {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), "expr", nil
	}

	path, err := scaffold.FindScript(arg)
	if err != nil {
		return "", "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", err
	}
	return string(data), path, nil
}

// parseDeps turns NAME[=VERSION] flags into a dependency table.
func parseDeps(specs []string) (map[string]string, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	deps := make(map[string]string, len(specs))
	for _, spec := range specs {
		name, version, _ := strings.Cut(spec, "=")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("invalid --dep %q: missing crate name", spec)
		}
		deps[name] = strings.TrimSpace(version)
	}
	return deps, nil
}
