// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper.
//
// The configuration file is CUE, validated against the embedded #Config
// schema before it is merged into Viper on top of the built-in defaults.
// Environment variables prefixed with CRATEPROBE_ override file values
// (for example CRATEPROBE_PROBE_ORDER=lexical).
package config
