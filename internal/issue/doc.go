// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries the failed operation, the resource involved and
// remediation hints. The issue catalog holds longer Markdown help pages,
// rendered with glamour, for the failures users hit most often when probing
// a script: missing cargo, a broken dependency, a bad manifest.
package issue
