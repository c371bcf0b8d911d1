// SPDX-License-Identifier: MPL-2.0

// Package probe discovers the external crates a script needs and declares
// them at the top of the script.
//
// A Prober stages a throwaway copy of the script's package (the nested
// project), points cargo at a shim compiler through RUSTC, and runs the
// build. The shim rejects the script's own crate after printing one
// EXTERN line per --extern argument cargo handed it; every other crate is
// compiled by the real rustc. The collected names are written back to the
// script as extern crate declarations, and the nested project is removed.
package probe
