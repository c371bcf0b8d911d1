// SPDX-License-Identifier: MPL-2.0

package shim

import (
	"fmt"
	"os"
	"slices"
	"strings"
)

// argfilePrefix marks an argument that names a file of further arguments.
// cargo switches to one when the command line gets too long.
const argfilePrefix = "@"

// Invocation is the part of a compiler argv the probe cares about.
type Invocation struct {
	// CrateName is the value of --crate-name, empty for helper calls such as -vV.
	CrateName string
	// Externs are the normalized names of all --extern arguments, in argv order.
	Externs []string
	// Args is the full argv, kept for pass-through.
	Args []string
}

// ParseInvocation extracts the crate name and extern crates from a rustc argv.
// Both "--flag value" and "--flag=value" spellings are accepted.
func ParseInvocation(args []string) Invocation {
	inv := Invocation{Args: args}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--crate-name" && i+1 < len(args):
			i++
			inv.CrateName = args[i]
		case strings.HasPrefix(arg, "--crate-name="):
			inv.CrateName = strings.TrimPrefix(arg, "--crate-name=")
		case arg == "--extern" && i+1 < len(args):
			i++
			inv.addExtern(args[i])
		case strings.HasPrefix(arg, "--extern="):
			inv.addExtern(strings.TrimPrefix(arg, "--extern="))
		}
	}
	return inv
}

// ExpandArgfiles replaces every "@path" argument with the lines of that
// file, one argument per line, the way rustc reads them. Arguments read from
// a file are not expanded again.
func ExpandArgfiles(args []string) ([]string, error) {
	if !slices.ContainsFunc(args, isArgfile) {
		return args, nil
	}
	expanded := make([]string, 0, len(args))
	for _, arg := range args {
		if !isArgfile(arg) {
			expanded = append(expanded, arg)
			continue
		}
		path := strings.TrimPrefix(arg, argfilePrefix)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read argument file %s: %w", path, err)
		}
		expanded = append(expanded, argfileLines(string(data))...)
	}
	return expanded, nil
}

func isArgfile(arg string) bool {
	return len(arg) > len(argfilePrefix) && strings.HasPrefix(arg, argfilePrefix)
}

func argfileLines(content string) []string {
	content = strings.TrimSuffix(content, "\n")
	if content == "" {
		return nil
	}
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

func (inv *Invocation) addExtern(spec string) {
	if name := NormalizeExtern(spec); name != "" {
		inv.Externs = append(inv.Externs, name)
	}
}

// NormalizeExtern reduces an --extern value to the bare crate name.
//
//	serde=/t/deps/libserde-1a2b.rlib   -> serde
//	priv,noprelude:log=/t/liblog.rlib  -> log
//	proc_macro                         -> proc_macro
func NormalizeExtern(spec string) string {
	name, _, _ := strings.Cut(spec, "=")
	if i := strings.LastIndexByte(name, ':'); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSpace(name)
}
