// SPDX-License-Identifier: MPL-2.0

package rewrite

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
)

const (
	// OrderDiscovery keeps names in the order the build first reported them.
	OrderDiscovery Order = "discovery"
	// OrderLexical sorts names byte-wise.
	OrderLexical Order = "lexical"

	declarationFormat = "#[allow(unused_attributes)] #[macro_use] extern crate %s;\n"
)

// ErrInvalidOrder is the sentinel error wrapped by InvalidOrderError.
var ErrInvalidOrder = errors.New("invalid extern order")

type (
	// Order selects how discovered crate names are arranged in the declaration block.
	// The zero value behaves like OrderDiscovery.
	Order string

	// InvalidOrderError is returned when an Order value is not recognized.
	InvalidOrderError struct {
		Value Order
	}
)

// Error implements the error interface.
func (e *InvalidOrderError) Error() string {
	return fmt.Sprintf("invalid extern order %q (valid: %s, %s)", e.Value, OrderDiscovery, OrderLexical)
}

// Unwrap returns ErrInvalidOrder for errors.Is compatibility.
func (e *InvalidOrderError) Unwrap() error { return ErrInvalidOrder }

// IsValid returns whether the Order is a known value.
func (o Order) IsValid() (bool, []error) {
	switch o {
	case "", OrderDiscovery, OrderLexical:
		return true, nil
	default:
		return false, []error{&InvalidOrderError{Value: o}}
	}
}

// String returns the string representation of the Order.
func (o Order) String() string { return string(o) }

// Unique drops duplicate and empty names. With OrderDiscovery the first
// occurrence wins; with OrderLexical the survivors are sorted.
func Unique(names []string, order Order) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	if order == OrderLexical {
		slices.Sort(out)
	}
	return out
}

// Declaration returns the single declaration line for name, newline included.
func Declaration(name string) string {
	return fmt.Sprintf(declarationFormat, name)
}

// Declarations renders one declaration line per name, in the order given.
func Declarations(names []string) []byte {
	var buf bytes.Buffer
	for _, name := range names {
		buf.WriteString(Declaration(name))
	}
	return buf.Bytes()
}

// Apply returns the declarations for names followed by src. src is copied,
// not aliased, so callers may keep using their buffer. With no names the
// result equals src.
func Apply(names []string, src []byte) []byte {
	decls := Declarations(names)
	out := make([]byte, 0, len(decls)+len(src))
	out = append(out, decls...)
	return append(out, src...)
}
