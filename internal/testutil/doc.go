// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// Common helpers include environment variable management (MustSetenv,
// IsolateHome), filesystem operations (MustChdir, MustMkdirAll, MustWriteFile)
// and a package fixture builder (WritePackage). The fakecargo subpackage provides stand-in
// cargo and rustc programs for end-to-end tests.
package testutil
