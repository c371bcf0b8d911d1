// SPDX-License-Identifier: MPL-2.0

package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/crateprobe/crateprobe/internal/manifest"
	"github.com/crateprobe/crateprobe/internal/rewrite"
	"github.com/crateprobe/crateprobe/internal/runtime"
	"github.com/crateprobe/crateprobe/internal/shim"

	"github.com/charmbracelet/log"
)

const (
	// DefaultCopyWorkers bounds the artifact copy when Prober.CopyWorkers is zero.
	DefaultCopyWorkers = 8
	// DefaultRealCompiler is used when Prober.RealCompiler is empty.
	DefaultRealCompiler = "rustc"

	stderrTailLines = 20
)

type (
	// Prober runs dependency discovery for scripts. A Prober holds no
	// per-probe state and may be used by several goroutines at once.
	Prober struct {
		// Builder runs the nested build.
		Builder runtime.Builder
		// Logger receives progress and warnings. Nil discards them.
		Logger *log.Logger
		// Host is the executable implementing the hidden rustc-shim command.
		Host string
		// RealCompiler receives every invocation the shim does not intercept.
		RealCompiler string
		// Order arranges the discovered names.
		Order rewrite.Order
		// ReuseArtifacts copies the package's target/ into the nested project.
		ReuseArtifacts bool
		// ScratchRoot is the parent of scratch projects. Empty means the package directory.
		ScratchRoot string
		// CopyWorkers bounds the parallel artifact copy.
		CopyWorkers int

		// removeAll deletes scratch directories. Nil means os.RemoveAll.
		removeAll func(string) error
	}

	// Request names the script to probe.
	Request struct {
		// ScriptPath is the script to rewrite.
		ScriptPath string
		// PackageName overrides the bin target read from the manifest.
		PackageName string
		// PackageDir is the package root. Empty means the script's directory.
		PackageDir string
		// ManifestPath is the package manifest. Empty means PackageDir/Cargo.toml.
		ManifestPath string
	}

	// Result reports a successful probe.
	Result struct {
		// Externs are the declared crate names in declaration order.
		Externs []string
		// Intercepted is false when the build never reached the target crate.
		Intercepted bool
		// Output is the nested build's stdout.
		Output []byte
		// CleanupErr is set when the scratch directory could not be removed.
		// The rewrite has still happened.
		CleanupErr error
	}
)

// Probe discovers the external crates of req's script and prepends their
// declarations to it. The script is only written when Probe returns a nil
// error. The nested project is removed on every path.
func (p *Prober) Probe(ctx context.Context, req Request) (res *Result, err error) {
	logger := p.logger()

	req, m, manifestData, err := p.resolve(req)
	if err != nil {
		return nil, err
	}
	target := manifest.CrateName(req.PackageName)

	scratchRoot := p.ScratchRoot
	if scratchRoot == "" {
		scratchRoot = req.PackageDir
	}

	np, cleanup, err := stage(stageSpec{
		root:         scratchRoot,
		manifestData: manifestData,
		manifest:     m,
		target:       req.PackageName,
		removeAll:    p.removeAll,
		shim: shim.Script{
			Host:         p.Host,
			Target:       target,
			RealCompiler: p.realCompiler(),
		},
	})
	defer func() {
		cerr := cleanup()
		if cerr == nil {
			return
		}
		logger.Warn("failed to remove nested project", "dir", scratchDir(np), "err", cerr)
		if res != nil {
			res.CleanupErr = cerr
		}
	}()
	if err != nil {
		return nil, err
	}
	logger.Debug("staged nested project", "dir", np.Dir, "target", target)

	if p.ReuseArtifacts {
		p.reuseArtifacts(ctx, filepath.Join(req.PackageDir, TargetDir), filepath.Join(np.Dir, TargetDir))
	}

	// The original bytes are read before anything can write to the script.
	info, err := os.Stat(req.ScriptPath)
	if err != nil {
		return nil, stagingError("stat script", err)
	}
	original, err := os.ReadFile(req.ScriptPath)
	if err != nil {
		return nil, stagingError("read script", err)
	}

	logger.Debug("running nested build", "builder", p.Builder.Name(), "dir", np.Dir)
	build := p.Builder.Build(ctx, runtime.Request{
		Dir:   np.Dir,
		Env:   map[string]string{runtime.RustcEnv: np.ShimPath},
		Unset: []string{runtime.RustcWrapperEnv},
	})
	if build.Error != nil {
		return nil, &Error{Kind: KindBuild, Op: "run " + p.Builder.Name(), Err: build.Error, ExitCode: build.ExitCode}
	}
	if ctx.Err() != nil {
		return nil, &Error{Kind: KindBuild, Op: "nested build interrupted", Err: ctx.Err(), ExitCode: build.ExitCode}
	}

	notices := shim.ParseNotices(build.Output)
	intercepted := notices.Intercepts(target)
	logger.Debug("nested build finished", "exit", build.ExitCode, "intercepted", intercepted, "notices", len(notices.Externs))

	if !build.Succeeded() && !intercepted {
		return nil, &Error{
			Kind:     KindBuild,
			Op:       fmt.Sprintf("%s exited with %s before reaching %s", p.Builder.Name(), build.ExitCode, target),
			Stderr:   build.StderrTail(stderrTailLines),
			ExitCode: build.ExitCode,
		}
	}

	if !intercepted {
		// The build succeeded without ever compiling the target, so the
		// notices cannot be attributed to it. The script is not touched.
		logger.Warn("target crate was not compiled, declaring no dependencies", "target", target, "stray_notices", len(notices.Externs))
		return &Result{Output: build.Output}, nil
	}
	names := rewrite.Unique(notices.Externs, p.Order)
	res = &Result{
		Externs:     names,
		Intercepted: intercepted,
		Output:      build.Output,
	}
	if len(names) == 0 {
		logger.Info("no external crates needed", "script", req.ScriptPath)
		return res, nil
	}

	if err := writeAtomic(req.ScriptPath, rewrite.Apply(names, original), info.Mode().Perm()); err != nil {
		return nil, rewriteError("write "+req.ScriptPath, err)
	}
	logger.Info("declared dependencies", "script", req.ScriptPath, "count", len(names))
	return res, nil
}

// resolve fills the Request defaults and loads the manifest. Failures here
// are staging failures: nothing has been touched yet.
func (p *Prober) resolve(req Request) (Request, *manifest.Manifest, []byte, error) {
	if p.Builder == nil {
		return req, nil, nil, stagingError("configure prober", errors.New("no builder"))
	}
	if req.ScriptPath == "" {
		return req, nil, nil, stagingError("resolve script", errors.New("no script path"))
	}

	script, err := filepath.Abs(req.ScriptPath)
	if err != nil {
		return req, nil, nil, stagingError("resolve script", err)
	}
	// Rewriting through a symlink must update the file it points at.
	if resolved, err := filepath.EvalSymlinks(script); err == nil {
		script = resolved
	}
	req.ScriptPath = script

	if req.PackageDir == "" {
		req.PackageDir = filepath.Dir(script)
	}
	// The shim path ends up in RUSTC, which cargo runs from another directory.
	if req.PackageDir, err = filepath.Abs(req.PackageDir); err != nil {
		return req, nil, nil, stagingError("resolve package directory", err)
	}
	if req.ManifestPath == "" {
		req.ManifestPath = filepath.Join(req.PackageDir, manifest.FileName)
	}

	data, err := os.ReadFile(req.ManifestPath)
	if err != nil {
		return req, nil, nil, stagingError("read manifest", err)
	}
	m, err := manifest.Parse(data)
	if err != nil {
		return req, nil, nil, stagingError("parse manifest "+req.ManifestPath, err)
	}
	if req.PackageName == "" {
		req.PackageName = m.TargetName()
	}
	return req, m, data, nil
}

func (p *Prober) reuseArtifacts(ctx context.Context, src, dst string) {
	logger := p.logger()
	if _, err := os.Stat(src); err != nil {
		logger.Debug("no build artifacts to reuse", "dir", src)
		return
	}

	workers := p.CopyWorkers
	if workers <= 0 {
		workers = DefaultCopyWorkers
	}
	if err := copyArtifacts(ctx, src, dst, workers); err != nil {
		// Reuse only saves time; a partial copy could confuse cargo, so drop it.
		logger.Warn("failed to reuse build artifacts, building from scratch", "err", err)
		if rmErr := os.RemoveAll(dst); rmErr != nil {
			logger.Warn("failed to discard partial artifact copy", "dir", dst, "err", rmErr)
		}
		return
	}
	logger.Debug("reused build artifacts", "from", src)
}

func (p *Prober) realCompiler() string {
	if p.RealCompiler == "" {
		return DefaultRealCompiler
	}
	return p.RealCompiler
}

func (p *Prober) logger() *log.Logger {
	if p.Logger == nil {
		return log.New(io.Discard)
	}
	return p.Logger
}

func scratchDir(np *nestedProject) string {
	if np == nil {
		return ""
	}
	return np.Dir
}
