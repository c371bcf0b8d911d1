// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"errors"
	"fmt"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	// FileName is the manifest file name cargo looks for.
	FileName = "Cargo.toml"
	// DefaultBuildScript is what cargo auto-detects when package.build is unset.
	DefaultBuildScript = "build.rs"
	// DefaultMainSource is the bin source when no [[bin]] path is given.
	DefaultMainSource = "src/main.rs"

	defaultVersion = "0.1.0"
	defaultAuthor  = "Anonymous"
)

// ErrMissingPackageName is returned when the manifest has no package.name.
var ErrMissingPackageName = errors.New("manifest has no package.name")

type (
	// Manifest is the subset of Cargo.toml the probe reads and writes.
	Manifest struct {
		Package      Package        `toml:"package"`
		Bin          []Target       `toml:"bin,omitempty"`
		Dependencies map[string]any `toml:"dependencies,omitempty"`
	}

	// Package is the [package] table.
	Package struct {
		Name    string   `toml:"name"`
		Version string   `toml:"version,omitempty"`
		Authors []string `toml:"authors,omitempty"`
		// Build is either a path or false; nil means cargo's default.
		Build any `toml:"build,omitempty"`
	}

	// Target is one [[bin]] entry.
	Target struct {
		Name string `toml:"name"`
		Path string `toml:"path,omitempty"`
	}
)

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Parse decodes manifest bytes.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	if m.Package.Name == "" {
		return nil, ErrMissingPackageName
	}
	return &m, nil
}

// Default renders the manifest used for freshly staged script packages:
// one bin target named after the package, sourced from "<name>.rs", with a
// build script.
func Default(name string) ([]byte, error) {
	if name == "" {
		return nil, ErrMissingPackageName
	}
	m := Manifest{
		Package: Package{
			Name:    name,
			Version: defaultVersion,
			Authors: []string{defaultAuthor},
			Build:   DefaultBuildScript,
		},
		Bin: []Target{{Name: name, Path: name + ".rs"}},
	}
	return m.Encode()
}

// Encode renders the manifest as TOML.
func (m *Manifest) Encode() ([]byte, error) {
	out, err := toml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to render manifest: %w", err)
	}
	return out, nil
}

// TargetName is the name of the binary the script compiles to: the first
// [[bin]] entry, or the package name.
func (m *Manifest) TargetName() string {
	if len(m.Bin) > 0 && m.Bin[0].Name != "" {
		return m.Bin[0].Name
	}
	return m.Package.Name
}

// TargetSource returns the slash-separated source path of the named bin
// target, relative to the manifest.
func (m *Manifest) TargetSource(name string) string {
	for _, b := range m.Bin {
		if b.Name != name {
			continue
		}
		if b.Path != "" {
			return b.Path
		}
		if name != m.Package.Name {
			return path.Join("src", "bin", name+".rs")
		}
	}
	return DefaultMainSource
}

// BuildScript returns the build script path, or "" when package.build = false.
func (m *Manifest) BuildScript() string {
	switch b := m.Package.Build.(type) {
	case string:
		if b != "" {
			return b
		}
	case bool:
		if !b {
			return ""
		}
	}
	return DefaultBuildScript
}

// DependencyNames returns the keys of [dependencies], sorted.
func (m *Manifest) DependencyNames() []string {
	names := make([]string, 0, len(m.Dependencies))
	for name := range m.Dependencies {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// CrateName converts a package or target name to the identifier cargo
// passes as --crate-name.
func CrateName(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}
