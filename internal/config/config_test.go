// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/crateprobe/crateprobe/internal/issue"
	"github.com/crateprobe/crateprobe/internal/rewrite"
	"github.com/crateprobe/crateprobe/internal/testutil"
)

func TestConfigDir(t *testing.T) {
	t.Cleanup(Reset)

	root := testutil.IsolateHome(t, t.TempDir())
	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error = %v", err)
	}
	if want := filepath.Join(root, AppName); dir != want {
		t.Errorf("ConfigDir() = %q, want %q", dir, want)
	}

	if runtime.GOOS == "linux" {
		t.Cleanup(testutil.MustSetenv(t, "XDG_CONFIG_HOME", "/tmp/test-xdg-config"))

		dir, err := ConfigDir()
		if err != nil {
			t.Fatalf("ConfigDir() error = %v", err)
		}
		if want := filepath.Join("/tmp/test-xdg-config", AppName); dir != want {
			t.Errorf("ConfigDir() = %q, want %q", dir, want)
		}
	}

	SetConfigDirOverride("/somewhere/else")
	dir, err = ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error = %v", err)
	}
	if dir != "/somewhere/else" {
		t.Errorf("ConfigDir() with override = %q", dir)
	}
}

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	tmp := t.TempDir()
	t.Cleanup(testutil.MustChdir(t, tmp))

	cfg, path, err := NewProvider().Resolve(context.Background(), LoadOptions{ConfigDirPath: filepath.Join(tmp, "cfg")})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if path != "" {
		t.Errorf("resolved path = %q, want empty", path)
	}
	if cfg.Cargo.Binary != DefaultCargoBinary || cfg.Probe.Order != rewrite.OrderDiscovery || !cfg.Probe.ReuseArtifacts {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoad_ConfigDirFile(t *testing.T) {
	tmp := t.TempDir()
	t.Cleanup(testutil.MustChdir(t, tmp))
	cfgDir := filepath.Join(tmp, "cfg")
	testutil.MustWriteFile(t, filepath.Join(cfgDir, "config.cue"), `
cargo: {
	binary: "/opt/rust/bin/cargo"
	args: ["build", "--offline"]
}
probe: {
	order: "lexical"
	reuse_artifacts: false
	copy_workers: 2
}
ui: verbose: true
`)

	cfg, path, err := NewProvider().Resolve(context.Background(), LoadOptions{ConfigDirPath: cfgDir})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if path != filepath.Join(cfgDir, "config.cue") {
		t.Errorf("resolved path = %q", path)
	}
	if cfg.Cargo.Binary != "/opt/rust/bin/cargo" {
		t.Errorf("Cargo.Binary = %q", cfg.Cargo.Binary)
	}
	if strings.Join(cfg.Cargo.Args, " ") != "build --offline" {
		t.Errorf("Cargo.Args = %v", cfg.Cargo.Args)
	}
	if cfg.Probe.Order != rewrite.OrderLexical {
		t.Errorf("Probe.Order = %q", cfg.Probe.Order)
	}
	if cfg.Probe.ReuseArtifacts {
		t.Error("Probe.ReuseArtifacts should be false")
	}
	if cfg.Probe.CopyWorkers != 2 {
		t.Errorf("Probe.CopyWorkers = %d", cfg.Probe.CopyWorkers)
	}
	if !cfg.UI.Verbose {
		t.Error("UI.Verbose should be true")
	}
}

func TestLoad_LocalFile(t *testing.T) {
	tmp := t.TempDir()
	t.Cleanup(testutil.MustChdir(t, tmp))
	testutil.MustWriteFile(t, filepath.Join(tmp, "config.cue"), `probe: order: "lexical"`)

	cfg, path, err := NewProvider().Resolve(context.Background(), LoadOptions{ConfigDirPath: filepath.Join(tmp, "missing")})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if path != "config.cue" {
		t.Errorf("resolved path = %q, want config.cue", path)
	}
	if cfg.Probe.Order != rewrite.OrderLexical {
		t.Errorf("Probe.Order = %q", cfg.Probe.Order)
	}
	if cfg.Cargo.Binary != DefaultCargoBinary {
		t.Errorf("defaults lost after merge: Cargo.Binary = %q", cfg.Cargo.Binary)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	tmp := t.TempDir()
	t.Cleanup(testutil.MustChdir(t, tmp))
	t.Cleanup(testutil.MustSetenv(t, "CRATEPROBE_PROBE_ORDER", "lexical"))
	t.Cleanup(testutil.MustSetenv(t, "CRATEPROBE_CARGO_BINARY", "/usr/local/bin/cargo"))

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: filepath.Join(tmp, "cfg")})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Probe.Order != rewrite.OrderLexical {
		t.Errorf("Probe.Order = %q, want lexical", cfg.Probe.Order)
	}
	if cfg.Cargo.Binary != "/usr/local/bin/cargo" {
		t.Errorf("Cargo.Binary = %q", cfg.Cargo.Binary)
	}
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	t.Parallel()

	_, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: filepath.Join(t.TempDir(), "nope.cue")})
	if err == nil {
		t.Fatal("Load() with missing explicit file should fail")
	}
	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("error should be *issue.ActionableError, got %T", err)
	}
	if ae.Operation != "load configuration" {
		t.Errorf("Operation = %q", ae.Operation)
	}
}

func TestLoad_SchemaViolations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{"unknown order", `probe: order: "random"`},
		{"unknown field", `probe: parallel: true`},
		{"workers out of range", `probe: copy_workers: 0`},
		{"empty binary", `cargo: binary: ""`},
		{"syntax error", `cargo: {`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "config.cue")
			testutil.MustWriteFile(t, path, tt.content)

			_, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: path})
			if err == nil {
				t.Fatalf("Load() accepted %q", tt.content)
			}
			if !strings.Contains(err.Error(), path) {
				t.Errorf("error should name the file, got %v", err)
			}
		})
	}
}

func TestLoad_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewProvider().Load(ctx, LoadOptions{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v, want context.Canceled", err)
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "cfg")

	path, created, err := CreateDefaultConfig(dir)
	if err != nil {
		t.Fatalf("CreateDefaultConfig() error = %v", err)
	}
	if !created {
		t.Error("first call should create the file")
	}

	// The generated file must load back to the defaults.
	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: path})
	if err != nil {
		t.Fatalf("generated config does not load: %v", err)
	}
	if cfg.Probe.CopyWorkers != DefaultCopyWorkers || cfg.Cargo.Binary != DefaultCargoBinary {
		t.Errorf("round-tripped config = %+v", cfg)
	}

	testutil.MustWriteFile(t, path, "ui: verbose: true\n")
	if _, created, err = CreateDefaultConfig(dir); err != nil || created {
		t.Errorf("second call: created=%v err=%v, want existing file kept", created, err)
	}
	if data, _ := os.ReadFile(path); string(data) != "ui: verbose: true\n" {
		t.Errorf("existing config overwritten: %q", data)
	}
}

func TestGenerateCUE(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Cargo.Rustc = "/opt/rustc"
	cfg.Probe.ScratchRoot = "/var/tmp"

	out := GenerateCUE(cfg)
	for _, want := range []string{
		`binary: "cargo"`,
		`args: ["build"]`,
		`rustc: "/opt/rustc"`,
		`order: "discovery"`,
		`scratch_root: "/var/tmp"`,
		`copy_workers: 8`,
		`verbose: false`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("GenerateCUE() missing %q:\n%s", want, out)
		}
	}
}

func TestCreateDefaultConfig_UserConfigDir(t *testing.T) {
	t.Cleanup(Reset)
	root := testutil.IsolateHome(t, t.TempDir())
	t.Cleanup(testutil.MustChdir(t, t.TempDir()))

	path, created, err := CreateDefaultConfig("")
	if err != nil {
		t.Fatalf("CreateDefaultConfig() error = %v", err)
	}
	if want := filepath.Join(root, AppName, ConfigFileName+"."+ConfigFileExt); path != want || !created {
		t.Fatalf("CreateDefaultConfig() = %q, %v; want %q, true", path, created, want)
	}

	_, resolved, err := NewProvider().Resolve(context.Background(), LoadOptions{})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if resolved != path {
		t.Errorf("Resolve() used %q, want %q", resolved, path)
	}
}
