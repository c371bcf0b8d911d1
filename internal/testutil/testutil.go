// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// MustChdir changes the current working directory to dir.
// It returns a cleanup function that restores the original directory.
// The test fails immediately if the directory change fails.
func MustChdir(t testing.TB, dir string) func() {
	t.Helper()
	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get current directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("failed to change directory to %s: %v", dir, err)
	}
	return func() {
		if err := os.Chdir(originalWd); err != nil {
			t.Errorf("failed to restore directory to %s: %v", originalWd, err)
		}
	}
}

// MustSetenv sets the environment variable key to value.
// It returns a cleanup function that restores the original value (or unsets it).
// The test fails immediately if the operation fails.
func MustSetenv(t testing.TB, key, value string) func() {
	t.Helper()
	originalValue, hadValue := os.LookupEnv(key)
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("failed to set env %s: %v", key, err)
	}
	return func() {
		if hadValue {
			if err := os.Setenv(key, originalValue); err != nil {
				t.Errorf("failed to restore env %s: %v", key, err)
			}
		} else {
			if err := os.Unsetenv(key); err != nil {
				t.Errorf("failed to unset env %s: %v", key, err)
			}
		}
	}
}

// MustMkdirAll creates a directory along with any necessary parents.
func MustMkdirAll(t testing.TB, path string, perm os.FileMode) {
	t.Helper()
	if err := os.MkdirAll(path, perm); err != nil {
		t.Fatalf("failed to create directory %s: %v", path, err)
	}
}

// MustWriteFile writes content to path, creating parent directories.
func MustWriteFile(t testing.TB, path, content string) {
	t.Helper()
	MustMkdirAll(t, filepath.Dir(path), 0o755)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// MustReadFile returns the content of path.
func MustReadFile(t testing.TB, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

// WritePackage lays out a minimal cargo package in dir: a Cargo.toml naming
// the package and a bin target at <name>.rs holding script. Extra manifest
// lines (for example a [dependencies] table) are appended verbatim.
// It returns the script path.
func WritePackage(t testing.TB, dir, name, script string, manifestExtra ...string) string {
	t.Helper()
	manifest := "[package]\n" +
		"name = \"" + name + "\"\n" +
		"version = \"0.1.0\"\n" +
		"build = \"build.rs\"\n\n" +
		"[[bin]]\n" +
		"name = \"" + name + "\"\n" +
		"path = \"" + name + ".rs\"\n"
	for _, extra := range manifestExtra {
		manifest += "\n" + extra + "\n"
	}
	MustWriteFile(t, filepath.Join(dir, "Cargo.toml"), manifest)
	MustWriteFile(t, filepath.Join(dir, "build.rs"), "fn main() {}\n")
	scriptPath := filepath.Join(dir, name+".rs")
	MustWriteFile(t, scriptPath, script)
	return scriptPath
}
