// SPDX-License-Identifier: MPL-2.0

// Package scaffold turns a script body into a buildable cargo package.
//
// A body is wrapped in one of four templates (a whole file, an expression
// whose value is printed, or a closure run once per stdin line with or
// without a line counter) and written next to a generated Cargo.toml and a
// placeholder build script. The result is what the probe expects to find.
package scaffold
