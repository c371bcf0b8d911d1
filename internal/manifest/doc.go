// SPDX-License-Identifier: MPL-2.0

// Package manifest reads and writes the Cargo.toml of a script package.
//
// Only the handful of keys the probe needs are modelled: the package name,
// the build script, the [[bin]] targets and the dependency names.
package manifest
