// SPDX-License-Identifier: MPL-2.0

// Package rewrite prepends extern crate declarations to a script.
//
// The original script bytes are never reflowed or otherwise
// touched: the rewritten script is always declarations followed by the
// original buffer, so the original is a byte-identical suffix of the result.
package rewrite
