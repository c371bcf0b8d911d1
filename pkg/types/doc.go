// SPDX-License-Identifier: MPL-2.0

// Package types holds small value types shared by the probe, the shim and the CLI.
package types
