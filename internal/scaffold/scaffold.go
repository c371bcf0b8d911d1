// SPDX-License-Identifier: MPL-2.0

package scaffold

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/crateprobe/crateprobe/internal/manifest"
)

const (
	// DefaultName is used when nothing usable is left of the script name.
	DefaultName = "script"

	placeholderBuildScript = "fn main() {}\n"
)

// Extensions are tried, in order, when a script is named without one.
var Extensions = []string{"crs", "rs"}

// ErrScriptNotFound is returned by FindScript when no candidate exists.
var ErrScriptNotFound = errors.New("script not found")

// Options describes a package to stage.
type Options struct {
	// Name is the package name. Empty derives it from Source with SafeName.
	Name string
	// Source is the script path the body came from, used for naming only.
	Source string
	Kind   Kind
	// Prelude replaces %p in non-file templates.
	Prelude string
	Body    string
	// Dependencies become the [dependencies] table, name to version requirement.
	Dependencies map[string]string
}

// Package is a staged package on disk.
type Package struct {
	Dir          string
	Name         string
	ManifestPath string
	ScriptPath   string
}

// SafeName derives a cargo package name from a script path: the file stem,
// lowercased, with everything but letters, digits, '_' and '-' replaced by
// '_'. Names that would start with a digit or '-' get a "script_" prefix.
func SafeName(path string) string {
	stem := filepath.Base(path)
	if ext := filepath.Ext(stem); ext != "" && ext != stem {
		stem = strings.TrimSuffix(stem, ext)
	}

	var sb strings.Builder
	for _, r := range strings.ToLower(stem) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)), r == '_', r == '-':
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}

	name := sb.String()
	if strings.Trim(name, "_-") == "" {
		return DefaultName
	}
	if c := name[0]; (c >= '0' && c <= '9') || c == '-' {
		name = DefaultName + "_" + name
	}
	return name
}

// FindScript returns path if it names a file, else the first of path.crs
// and path.rs that does.
func FindScript(path string) (string, error) {
	if isFile(path) {
		return path, nil
	}
	if filepath.Ext(path) == "" {
		for _, ext := range Extensions {
			if candidate := path + "." + ext; isFile(candidate) {
				return candidate, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %s", ErrScriptNotFound, path)
}

// Stage writes a package for opts into dir: Cargo.toml, <name>.rs with the
// wrapped body and a placeholder build.rs.
func Stage(dir string, opts Options) (*Package, error) {
	name := opts.Name
	if name == "" {
		name = SafeName(opts.Source)
	}

	src, err := Wrap(opts.Kind, opts.Prelude, opts.Body)
	if err != nil {
		return nil, err
	}

	manifestData, err := renderManifest(name, opts.Dependencies)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create package directory: %w", err)
	}

	pkg := &Package{
		Dir:          dir,
		Name:         name,
		ManifestPath: filepath.Join(dir, manifest.FileName),
		ScriptPath:   filepath.Join(dir, name+".rs"),
	}

	files := []struct {
		path string
		data []byte
	}{
		{pkg.ManifestPath, manifestData},
		{pkg.ScriptPath, []byte(src)},
		{filepath.Join(dir, manifest.DefaultBuildScript), []byte(placeholderBuildScript)},
	}
	for _, f := range files {
		if err := os.WriteFile(f.path, f.data, 0o644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", f.path, err)
		}
	}
	return pkg, nil
}

func renderManifest(name string, deps map[string]string) ([]byte, error) {
	data, err := manifest.Default(name)
	if err != nil || len(deps) == 0 {
		return data, err
	}
	m, err := manifest.Parse(data)
	if err != nil {
		return nil, err
	}
	m.Dependencies = make(map[string]any, len(deps))
	for dep, req := range deps {
		if req == "" {
			req = "*"
		}
		m.Dependencies[dep] = req
	}
	return m.Encode()
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
