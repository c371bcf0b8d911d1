// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/crateprobe/crateprobe/internal/config"
	"github.com/crateprobe/crateprobe/internal/issue"
	"github.com/crateprobe/crateprobe/internal/probe"
	"github.com/crateprobe/crateprobe/internal/runtime"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
)

type (
	// App wires CLI services and shared dependencies. It is the composition
	// root for the CLI layer: every command handler receives an App and
	// reaches configuration, output streams and the prober through it.
	App struct {
		Config ConfigProvider
		// Host resolves the executable the compiler shim re-executes.
		Host   func() (string, error)
		stdout io.Writer
		stderr io.Writer

		// verbose and configPath are bound to the persistent flags.
		verbose    bool
		configPath string
	}

	// Dependencies defines the injection points for building an App. Nil fields are
	// replaced with production defaults by NewApp.
	Dependencies struct {
		Config ConfigProvider
		Host   func() (string, error)
		Stdout io.Writer
		Stderr io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
		Resolve(ctx context.Context, opts config.LoadOptions) (*config.Config, string, error)
	}
)

// NewApp creates an App, filling unset dependencies with production defaults.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config: deps.Config,
		Host:   deps.Host,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.Host == nil {
		app.Host = hostExecutable
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	return app
}

// loadConfig loads configuration honoring --config and folds ui.verbose into
// the verbose flag.
func (a *App) loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: a.configPath})
	if err != nil {
		return nil, err
	}
	if cfg.UI.Verbose {
		a.verbose = true
	}
	return cfg, nil
}

// logger returns the charm logger used by the orchestrator.
func (a *App) logger() *log.Logger {
	level := log.InfoLevel
	if a.verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(a.stderr, log.Options{
		Prefix: "probe",
		Level:  level,
	})
}

// newProber builds a Prober from configuration.
func (a *App) newProber(cfg *config.Config, noReuse bool) (*probe.Prober, *runtime.CargoRuntime, error) {
	host, err := a.Host()
	if err != nil {
		return nil, nil, fmt.Errorf("cannot locate the crateprobe executable: %w", err)
	}

	cargo := runtime.NewCargoRuntime()
	if cfg.Cargo.Binary != "" {
		cargo.Binary = cfg.Cargo.Binary
	}
	if len(cfg.Cargo.Args) > 0 {
		cargo.Args = cfg.Cargo.Args
	}
	return &probe.Prober{
		Builder:        cargo,
		Logger:         a.logger(),
		Host:           host,
		RealCompiler:   realCompiler(cfg),
		Order:          cfg.Probe.Order,
		ReuseArtifacts: cfg.Probe.ReuseArtifacts && !noReuse,
		ScratchRoot:    cfg.Probe.ScratchRoot,
		CopyWorkers:    cfg.Probe.CopyWorkers,
	}, cargo, nil
}

// realCompiler picks the compiler non-target crates are forwarded to:
// cargo.rustc, else the caller's $RUSTC, else rustc from PATH.
func realCompiler(cfg *config.Config) string {
	if cfg.Cargo.Rustc != "" {
		return cfg.Cargo.Rustc
	}
	if env := os.Getenv(runtime.RustcEnv); env != "" {
		return env
	}
	return probe.DefaultRealCompiler
}

// hostExecutable returns the absolute path this process was started as.
// os.Args[0] is preferred over os.Executable so that multi-call binaries
// (and test harnesses that dispatch on the program name) re-enter the same
// command tree.
func hostExecutable() (string, error) {
	arg0 := os.Args[0]
	switch {
	case arg0 == "":
	case filepath.Base(arg0) == arg0:
		if found, err := exec.LookPath(arg0); err == nil {
			return filepath.Abs(found)
		}
	default:
		if abs, err := filepath.Abs(arg0); err == nil && fileExists(abs) {
			return abs, nil
		}
	}
	return os.Executable()
}

// handleError renders command errors. Silent ExitErrors print nothing and
// ActionableErrors use their own formatting; anything else goes to fang.
func (a *App) handleError(w io.Writer, styles fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		fmt.Fprintln(w, ErrorStyle.Render("Error: ")+ae.Format(a.verbose))
		return
	}
	fang.DefaultErrorHandler(w, styles, err)
}

// renderIssue prints the help page for id in verbose mode.
func (a *App) renderIssue(id issue.Id) {
	if !a.verbose {
		return
	}
	iss := issue.Get(id)
	if iss == nil {
		return
	}
	rendered, err := iss.Render("dark")
	if err != nil {
		return
	}
	fmt.Fprint(a.stderr, rendered)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
