// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for crateprobe.
//
// This package implements the Cobra command hierarchy: probe, stage, config
// and the hidden internal rustc-shim command that the generated compiler
// shim re-executes.
package cmd
