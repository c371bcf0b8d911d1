// SPDX-License-Identifier: MPL-2.0

// Package runtime runs the external build tool for the probe.
//
// CargoRuntime executes `cargo build` (or the configured command) inside the
// nested project and captures stdout and stderr. Environment overrides such
// as RUSTC are applied to the child process only; the parent environment is
// never modified.
package runtime
