// SPDX-License-Identifier: MPL-2.0

// Package cueutil formats CUE evaluation errors for the configuration loader.
//
// Errors are reported as <file>: <json-path>: <message> so that a bad key in
// config.cue points straight at the offending field, e.g.
//
//	config.cue: probe.order: 2 errors in empty disjunction
package cueutil
