// SPDX-License-Identifier: MPL-2.0

package shim

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
)

const (
	// NoticePrefix tags a line that names one extern crate of the target.
	NoticePrefix = "EXTERN"
	// InterceptPrefix tags the line written once the target crate was rejected.
	InterceptPrefix = "INTERCEPTED"

	maxNoticeLine = 1 << 20
)

// Notices is everything the orchestrator learns from a build's stdout.
type Notices struct {
	// Externs lists crate names in the order they were printed, duplicates included.
	Externs []string
	// Intercepted lists the crate names the shim rejected.
	Intercepted []string
}

// FormatNotice returns the notice line for one extern crate.
func FormatNotice(name string) string {
	return NoticePrefix + " " + name + "\n"
}

// FormatIntercept returns the marker line for a rejected crate.
func FormatIntercept(crate string) string {
	return InterceptPrefix + " " + crate + "\n"
}

// WriteNotices writes one notice per extern followed by the intercept marker.
func WriteNotices(w io.Writer, crate string, externs []string) error {
	bw := bufio.NewWriter(w)
	for _, name := range externs {
		if _, err := bw.WriteString(FormatNotice(name)); err != nil {
			return fmt.Errorf("write extern notice: %w", err)
		}
	}
	if _, err := bw.WriteString(FormatIntercept(crate)); err != nil {
		return fmt.Errorf("write intercept marker: %w", err)
	}
	return bw.Flush()
}

// ParseNotices scans build output for notice and marker lines. Anything
// else, including malformed notices, is ignored.
func ParseNotices(output []byte) Notices {
	var n Notices
	sc := bufio.NewScanner(bytes.NewReader(output))
	sc.Buffer(make([]byte, 0, 64*1024), maxNoticeLine)
	for sc.Scan() {
		line := strings.TrimSuffix(sc.Text(), "\r")
		if name, ok := taggedValue(line, NoticePrefix); ok {
			n.Externs = append(n.Externs, name)
			continue
		}
		if crate, ok := taggedValue(line, InterceptPrefix); ok {
			n.Intercepted = append(n.Intercepted, crate)
		}
	}
	return n
}

// Intercepts reports whether crate appears among the intercept markers.
func (n Notices) Intercepts(crate string) bool {
	for _, c := range n.Intercepted {
		if c == crate {
			return true
		}
	}
	return false
}

// taggedValue matches "<tag> <token>" where token is a single non-empty
// whitespace-free word.
func taggedValue(line, tag string) (string, bool) {
	rest, ok := strings.CutPrefix(line, tag+" ")
	if !ok || rest == "" || strings.ContainsAny(rest, " \t\v\f") {
		return "", false
	}
	return rest, true
}
