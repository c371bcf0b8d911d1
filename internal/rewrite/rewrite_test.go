// SPDX-License-Identifier: MPL-2.0

package rewrite

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyNoNamesIsIdentity(t *testing.T) {
	t.Parallel()

	src := []byte("fn main() {\r\n    println!(\"hi\");\r\n}\n\xff")
	got := Apply(nil, src)
	assert.Equal(t, src, got)
}

func TestApplyPrependsDeclarations(t *testing.T) {
	t.Parallel()

	src := []byte("fn main() { foo::go(); bar::go(); }\n")
	got := Apply([]string{"foo", "bar"}, src)

	want := "#[allow(unused_attributes)] #[macro_use] extern crate foo;\n" +
		"#[allow(unused_attributes)] #[macro_use] extern crate bar;\n" +
		string(src)
	assert.Equal(t, want, string(got))
	assert.True(t, bytes.HasSuffix(got, src), "original must be a suffix")
}

func TestApplyDoesNotAliasSource(t *testing.T) {
	t.Parallel()

	src := []byte("abc")
	got := Apply(nil, src)
	got[0] = 'X'
	assert.Equal(t, "abc", string(src))
}

func TestUnique(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		in    []string
		order Order
		want  []string
	}{
		{name: "empty", in: nil, order: OrderDiscovery, want: []string{}},
		{name: "first seen wins", in: []string{"foo", "bar", "foo", "baz", "bar"}, order: OrderDiscovery, want: []string{"foo", "bar", "baz"}},
		{name: "zero order is discovery", in: []string{"b", "a", "b"}, order: "", want: []string{"b", "a"}},
		{name: "lexical", in: []string{"serde", "log", "serde", "anyhow"}, order: OrderLexical, want: []string{"anyhow", "log", "serde"}},
		{name: "drops empty", in: []string{"", "x", ""}, order: OrderDiscovery, want: []string{"x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Unique(tt.in, tt.order))
		})
	}
}

func TestDeclarationsOneLinePerName(t *testing.T) {
	t.Parallel()

	names := Unique([]string{"a", "b", "a", "c", "b"}, OrderDiscovery)
	out := string(Declarations(names))
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 3)
	for i, name := range []string{"a", "b", "c"} {
		assert.Equal(t, strings.TrimSuffix(Declaration(name), "\n"), lines[i])
	}
}

func TestOrderIsValid(t *testing.T) {
	t.Parallel()

	for _, o := range []Order{"", OrderDiscovery, OrderLexical} {
		ok, errs := o.IsValid()
		assert.True(t, ok, "order %q", o)
		assert.Empty(t, errs)
	}

	ok, errs := Order("random").IsValid()
	assert.False(t, ok)
	require.Len(t, errs, 1)
	assert.True(t, errors.Is(errs[0], ErrInvalidOrder))
}
