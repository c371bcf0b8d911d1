// SPDX-License-Identifier: MPL-2.0

package probe

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/crateprobe/crateprobe/internal/manifest"
	"github.com/crateprobe/crateprobe/internal/shim"
)

const (
	// NestedDirPattern is the os.MkdirTemp pattern of scratch projects.
	NestedDirPattern = "nested-*"
	// Placeholder is the body of every stand-in source file.
	Placeholder = "fn main() {}\n"
	// TargetDir is cargo's build output directory.
	TargetDir = "target"
)

// nestedProject is a staged scratch package owned by one probe.
type nestedProject struct {
	// Dir is the scratch package root.
	Dir string
	// ShimPath is the absolute path of the executable shim inside Dir.
	ShimPath string
}

// stageSpec is everything needed to lay out a nested project.
type stageSpec struct {
	root         string
	manifestData []byte
	manifest     *manifest.Manifest
	// target is the bin the probe intercepts.
	target string
	shim   shim.Script
	// removeAll deletes the scratch directory. Nil means os.RemoveAll.
	removeAll func(string) error
}

// stage creates the scratch directory and fills it. On error the returned
// cleanup is still valid and removes whatever was created.
func stage(spec stageSpec) (*nestedProject, func() error, error) {
	noop := func() error { return nil }
	root, err := filepath.Abs(spec.root)
	if err != nil {
		return nil, noop, stagingError("resolve scratch root", err)
	}
	dir, err := os.MkdirTemp(root, NestedDirPattern)
	if err != nil {
		return nil, noop, stagingError("create scratch directory", err)
	}
	removeAll := spec.removeAll
	if removeAll == nil {
		removeAll = os.RemoveAll
	}
	cleanup := func() error {
		return removeAll(dir)
	}

	np := &nestedProject{Dir: dir, ShimPath: filepath.Join(dir, shim.FileName)}

	if err := os.WriteFile(filepath.Join(dir, manifest.FileName), spec.manifestData, 0o644); err != nil {
		return nil, cleanup, stagingError("copy manifest", err)
	}

	for _, rel := range placeholderPaths(spec.manifest, spec.target) {
		if err := writePlaceholder(dir, rel); err != nil {
			return nil, cleanup, stagingError("write placeholder "+rel, err)
		}
	}

	src, err := spec.shim.Render()
	if err != nil {
		return nil, cleanup, stagingError("render shim", err)
	}
	if err := os.WriteFile(np.ShimPath, []byte(src), shim.FileMode); err != nil {
		return nil, cleanup, stagingError("write shim", err)
	}
	// WriteFile honours the umask; the shim must be executable regardless.
	if err := os.Chmod(np.ShimPath, shim.FileMode); err != nil {
		return nil, cleanup, stagingError("make shim executable", err)
	}

	return np, cleanup, nil
}

// placeholderPaths lists the manifest-relative sources that must exist for
// the nested project to build: the source of the target and of every other
// [[bin]] cargo builds alongside it, and the build script, if any.
func placeholderPaths(m *manifest.Manifest, target string) []string {
	var paths []string
	seen := make(map[string]bool)
	add := func(rel string) {
		if rel != "" && !seen[rel] {
			seen[rel] = true
			paths = append(paths, rel)
		}
	}

	add(m.TargetSource(target))
	for _, b := range m.Bin {
		add(m.TargetSource(b.Name))
	}
	add(m.BuildScript())
	return paths
}

// writePlaceholder writes the stand-in source at rel inside dir. Paths that
// would leave the scratch directory are refused so a manifest can never make
// the probe overwrite a real file.
func writePlaceholder(dir, rel string) error {
	local := filepath.FromSlash(rel)
	if !filepath.IsLocal(local) {
		return fmt.Errorf("source path %q is outside the package", rel)
	}
	path := filepath.Join(dir, local)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(Placeholder), 0o644)
}
