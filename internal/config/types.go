// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/crateprobe/crateprobe/internal/rewrite"
)

const (
	// DefaultCargoBinary is the cargo executable looked up on PATH.
	DefaultCargoBinary = "cargo"
	// DefaultCopyWorkers bounds the parallel artifact copy.
	DefaultCopyWorkers = 8
	// MaxCopyWorkers is the upper bound accepted for probe.copy_workers.
	MaxCopyWorkers = 64
)

var (
	// ErrInvalidCargoConfig is the sentinel error wrapped by InvalidCargoConfigError.
	ErrInvalidCargoConfig = errors.New("invalid cargo config")
	// ErrInvalidProbeConfig is the sentinel error wrapped by InvalidProbeConfigError.
	ErrInvalidProbeConfig = errors.New("invalid probe config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// InvalidCargoConfigError is returned when a CargoConfig has invalid fields.
	InvalidCargoConfigError struct {
		FieldErrors []error
	}

	// InvalidProbeConfigError is returned when a ProbeConfig has invalid fields.
	InvalidProbeConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// Cargo configures the nested build.
		Cargo CargoConfig `json:"cargo" mapstructure:"cargo"`
		// Probe configures dependency discovery.
		Probe ProbeConfig `json:"probe" mapstructure:"probe"`
		// UI configures user interface settings.
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// CargoConfig selects the cargo binary, its arguments and the real compiler.
	CargoConfig struct {
		Binary string   `json:"binary" mapstructure:"binary"`
		Args   []string `json:"args" mapstructure:"args"`
		// Rustc is the compiler the shim forwards non-target crates to.
		Rustc string `json:"rustc" mapstructure:"rustc"`
	}

	// ProbeConfig configures the probe orchestrator.
	ProbeConfig struct {
		Order          rewrite.Order `json:"order" mapstructure:"order"`
		ReuseArtifacts bool          `json:"reuse_artifacts" mapstructure:"reuse_artifacts"`
		ScratchRoot    string        `json:"scratch_root" mapstructure:"scratch_root"`
		CopyWorkers    int           `json:"copy_workers" mapstructure:"copy_workers"`
	}

	// UIConfig configures user interface settings.
	UIConfig struct {
		// Verbose enables debug logging and full issue pages.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Cargo: CargoConfig{
			Binary: DefaultCargoBinary,
			Args:   []string{"build"},
		},
		Probe: ProbeConfig{
			Order:          rewrite.OrderDiscovery,
			ReuseArtifacts: true,
			CopyWorkers:    DefaultCopyWorkers,
		},
	}
}

// IsValid returns whether the CargoConfig has usable values.
func (c CargoConfig) IsValid() (bool, []error) {
	var errs []error
	if strings.TrimSpace(c.Binary) == "" {
		errs = append(errs, errors.New("cargo.binary must not be empty"))
	}
	if len(c.Args) == 0 {
		errs = append(errs, errors.New("cargo.args must contain at least one argument"))
	}
	if c.Rustc != "" && strings.TrimSpace(c.Rustc) == "" {
		errs = append(errs, errors.New("cargo.rustc must not be whitespace-only"))
	}
	if len(errs) > 0 {
		return false, []error{&InvalidCargoConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface.
func (e *InvalidCargoConfigError) Error() string {
	return fmt.Sprintf("invalid cargo config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidCargoConfig for errors.Is() compatibility.
func (e *InvalidCargoConfigError) Unwrap() error { return ErrInvalidCargoConfig }

// IsValid returns whether the ProbeConfig has usable values.
func (c ProbeConfig) IsValid() (bool, []error) {
	var errs []error
	if ok, orderErrs := c.Order.IsValid(); !ok {
		errs = append(errs, orderErrs...)
	}
	if c.CopyWorkers < 1 || c.CopyWorkers > MaxCopyWorkers {
		errs = append(errs, fmt.Errorf("probe.copy_workers must be between 1 and %d, got %d", MaxCopyWorkers, c.CopyWorkers))
	}
	if c.ScratchRoot != "" && strings.TrimSpace(c.ScratchRoot) == "" {
		errs = append(errs, errors.New("probe.scratch_root must not be whitespace-only"))
	}
	if len(errs) > 0 {
		return false, []error{&InvalidProbeConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface.
func (e *InvalidProbeConfigError) Error() string {
	return fmt.Sprintf("invalid probe config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidProbeConfig for errors.Is() compatibility.
func (e *InvalidProbeConfigError) Unwrap() error { return ErrInvalidProbeConfig }

// IsValid validates every section and collects the failures.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if ok, cargoErrs := c.Cargo.IsValid(); !ok {
		errs = append(errs, cargoErrs...)
	}
	if ok, probeErrs := c.Probe.IsValid(); !ok {
		errs = append(errs, probeErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }
