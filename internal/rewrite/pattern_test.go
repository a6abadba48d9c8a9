package rewrite

import (
	"go/parser"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahl/transmogrify/internal/common"
	"github.com/ahl/transmogrify/internal/diagnostic"
)

var (
	testSelf    = common.TypePath{Pkg: "example.com/model", Segments: []string{"Value"}}
	testImports = common.Imports{"jsonv": "example.com/jsonv"}
)

func parsePattern(t *testing.T, src string) Pattern {
	t.Helper()

	e, err := parser.ParseExpr(src)
	require.NoError(t, err)

	return ParsePattern(e, testSelf, testImports)
}

func TestParsePattern_Path(t *testing.T) {
	tests := []struct {
		src      string
		expected common.TypePath
	}{
		{"Null", common.TypePath{Segments: []string{"Null"}}},
		{"jsonv.Null", common.TypePath{Pkg: "example.com/jsonv", Segments: []string{"Null"}}},
		{"Self", testSelf},
		{"Self.Null", common.TypePath{Pkg: "example.com/model", Segments: []string{"Null"}}},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			p, ok := parsePattern(t, tt.src).(*PatternPath)
			require.True(t, ok)
			assert.Equal(t, tt.expected, p.Path)
		})
	}
}

func TestParsePattern_Positional(t *testing.T) {
	p, ok := parsePattern(t, "jsonv.Pair(a, _)").(*PatternPositional)
	require.True(t, ok)

	assert.Equal(t, "jsonv.Pair", p.Path.String())
	require.Len(t, p.Elems, 2)
	assert.Equal(t, "a", p.Elems[0].Name)
	assert.Equal(t, "_", p.Elems[1].Name)

	p, ok = parsePattern(t, "Unit()").(*PatternPositional)
	require.True(t, ok)
	assert.Empty(t, p.Elems)
}

func TestParsePattern_Fields(t *testing.T) {
	p, ok := parsePattern(t, "Self{Key: k, Value: _, Extra}").(*PatternFields)
	require.True(t, ok)

	assert.Equal(t, testSelf, p.Path)
	assert.Equal(t, []string{"Key", "Value", "Extra"}, fieldNames(p.Fields))
	assert.Equal(t, []string{"k", "value_1", "Extra"}, localNames(p.Fields))
	assert.False(t, p.Fields[0].Synthetic)
	assert.True(t, p.Fields[1].Synthetic)
}

func fieldNames(fs []FieldBinding) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.Field
	}

	return out
}

func localNames(fs []FieldBinding) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.Name
	}

	return out
}

func TestParsePattern_Unsupported(t *testing.T) {
	tests := []struct {
		src    string
		code   string
		reason string
	}{
		{"1", diagnostic.CodeUnsupportedPattern, "literal patterns"},
		{`"a"`, diagnostic.CodeUnsupportedPattern, "literal patterns"},
		{"&x", diagnostic.CodeUnsupportedPattern, "reference patterns"},
		{"(x)", diagnostic.CodeUnsupportedPattern, "parenthesised patterns"},
		{"x.(T)", diagnostic.CodeUnsupportedPattern, "type assertion patterns"},
		{"[]Value{a}", diagnostic.CodeUnsupportedPattern, "slice patterns"},
		{"map[string]Value{}", diagnostic.CodeUnsupportedPattern, "map patterns"},
		{"Pair[int](a)", diagnostic.CodeUnsupportedPattern, "patterns with type arguments"},
		{"Pair[int]{A: a}", diagnostic.CodeUnsupportedPattern, "patterns with type arguments"},
		{"(*Value)(a)", diagnostic.CodeUnsupportedPattern, "qualified self types"},
		{"Bool(1)", diagnostic.CodeUnsupportedPattern, "literal elements"},
		{"Object{Members: m.X}", diagnostic.CodeUnsupportedPattern, "selector field patterns"},
		{"Bool(x...)", diagnostic.CodeRestPattern, "rest elements"},
		{"Object{Members: m, _}", diagnostic.CodeRestPattern, "rest elements"},
		{"a + b", diagnostic.CodeUnsupportedPattern, "binary patterns"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			p, ok := parsePattern(t, tt.src).(*PatternUnsupported)
			require.True(t, ok)
			assert.Equal(t, tt.code, p.Code)
			assert.Equal(t, tt.reason, p.Reason)
			assert.NotNil(t, p.At)
		})
	}
}

func TestElement(t *testing.T) {
	assert.Equal(t, "value_0", Element(0))
	assert.Equal(t, "value_12", Element(12))
}
