// SPDX-License-Identifier: MPL-2.0

// Package shim implements the stand-in compiler used by the dependency probe.
//
// Cargo is pointed at a small generated script (see Script) through the
// RUSTC variable. The script re-executes the crateprobe binary, which runs
// an Interceptor in front of the real compiler:
//
//   - invocations for the target crate are not compiled; every --extern
//     argument is reported as an "EXTERN <name>" notice on stdout, followed
//     by an "INTERCEPTED <crate>" marker, and the shim exits with status 1;
//   - every other invocation is forwarded verbatim to the real compiler and
//     its exit status is returned unchanged.
//
// Failing the target crate on purpose makes cargo stop after all of its
// dependencies were built, so the probe sees each target invocation exactly
// once and the nested artifact cache stays reusable.
package shim
