// SPDX-License-Identifier: MPL-2.0

package shim

import (
	"bytes"
	"slices"
	"testing"
)

func TestWriteAndParseNotices(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	buf.WriteString("   Compiling foo v0.1.0\n")
	if err := WriteNotices(&buf, "expr", []string{"foo", "bar"}); err != nil {
		t.Fatalf("WriteNotices() error = %v", err)
	}
	buf.WriteString("error: could not compile `expr`\n")

	n := ParseNotices(buf.Bytes())
	if !slices.Equal(n.Externs, []string{"foo", "bar"}) {
		t.Errorf("Externs = %v, want [foo bar]", n.Externs)
	}
	if !n.Intercepts("expr") {
		t.Errorf("expected expr to be intercepted, got %v", n.Intercepted)
	}
	if n.Intercepts("foo") {
		t.Error("foo was never intercepted")
	}
}

func TestParseNoticesIgnoresMalformedLines(t *testing.T) {
	t.Parallel()

	output := []byte(
		"EXTERN\n" + // no name
			"EXTERN \n" + // empty name
			"EXTERN two words\n" + // whitespace in name
			"EXTERNAL foo\n" + // different tag
			" EXTERN indented\n" + // not at line start
			"EXTERN ok\r\n" + // CRLF tolerated
			"EXTERN-END foo\n" +
			"INTERCEPTED\n",
	)

	n := ParseNotices(output)
	if !slices.Equal(n.Externs, []string{"ok"}) {
		t.Errorf("Externs = %v, want [ok]", n.Externs)
	}
	if len(n.Intercepted) != 0 {
		t.Errorf("Intercepted = %v, want none", n.Intercepted)
	}
}

func TestParseNoticesKeepsDuplicates(t *testing.T) {
	t.Parallel()

	out := FormatNotice("a") + FormatNotice("b") + FormatNotice("a")
	n := ParseNotices([]byte(out))
	if !slices.Equal(n.Externs, []string{"a", "b", "a"}) {
		t.Errorf("Externs = %v", n.Externs)
	}
}

func TestParseNoticesEmpty(t *testing.T) {
	t.Parallel()

	n := ParseNotices(nil)
	if len(n.Externs) != 0 || len(n.Intercepted) != 0 {
		t.Errorf("expected no notices, got %+v", n)
	}
}
