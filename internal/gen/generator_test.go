package gen

import (
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahl/transmogrify/internal/common"
	"github.com/ahl/transmogrify/internal/diagnostic"
	"github.com/ahl/transmogrify/quote"
)

func source(t *testing.T, f quote.Fragment) string {
	t.Helper()

	src, err := f.Source()
	require.NoError(t, err)

	return src
}

func missingPrefix() diagnostic.Diagnostics {
	var d diagnostic.Diagnostics
	d.AddError(diagnostic.CodeMissingPrefix, "must specify a path prefix", "Point", diagnostic.Span{
		Start: token.Position{Filename: "/src/example/point.go", Line: 3, Column: 1, Offset: 20},
	})

	return d
}

func TestCodeHelpers(t *testing.T) {
	point := common.TypePath{Pkg: "example.com/geo/v2", Segments: []string{"Point"}}

	tests := []struct {
		name     string
		fragment quote.Fragment
		expected string
	}{
		{"of", Of(quote.Ident("x")), "transmogrify.Of(x)"},
		{"type for", TypeFor("K"), "transmogrify.TypeFor[K]()"},
		{"qual", QualCall(point), `quote.Qual("example.com/geo/v2", "Point")`},
		{"local qual", QualCall(common.TypePath{Segments: []string{"Color", "Red"}}), `quote.Qual("", "Color", "Red")`},
		{"type call", TypeCall(point, nil), `quote.Qual("example.com/geo/v2", "Point")`},
		{
			"generic type call",
			TypeCall(point.Rehome("example.com/api").Member(), []string{"K", "T"}),
			`quote.Expr("$T_[$K, $T]", quote.Bind{"T_": quote.Qual("example.com/api", "Point"), "K": transmogrify.TypeFor[K](), "T": transmogrify.TypeFor[T]()})`,
		},
		{"construct without bindings", Construct("$T{}", nil), `quote.Expr("$T{}", quote.Bind{})`},
		{"string", String("a\"b"), `"a\"b"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, source(t, tt.fragment))
		})
	}
}

func TestNamedTemplate(t *testing.T) {
	assert.Equal(t, "$T{}", NamedTemplate("T", nil))
	assert.Equal(t, "$T{Foo: $foo, Bar: $bar}", NamedTemplate("T", []Field{{"Foo", "foo"}, {"Bar", "bar"}}))
	assert.Equal(t, "T__", Hole("T", []string{"T", "T_", "x"}))
}

func TestErrorItem(t *testing.T) {
	d := missingPrefix()

	assert.Equal(t,
		"var _ int = /*line point.go:3*/ \"transmogrify: missing_prefix: must specify a path prefix\"\n",
		ErrorItem(d.Errors[0]))

	assert.Equal(t,
		"var _ int = \"transmogrify: no position\"\n",
		ErrorItem(diagnostic.Diagnostic{Message: "no position"}))

	d.Errors[0].Span.Start.Column = 9
	assert.Equal(t,
		"var _ int = /*line point.go:3:8*/ \"transmogrify: missing_prefix: must specify a path prefix\"\n",
		ErrorItem(d.Errors[0]))
}

func TestErrorItem_Positions(t *testing.T) {
	var d diagnostic.Diagnostics
	d.AddError(diagnostic.CodeUngenerableField, "cannot be generated", "Point", diagnostic.Span{
		Start: token.Position{Filename: "/src/example/point.go", Line: 7, Column: 6},
	})
	d.AddError(diagnostic.CodeUnknownType, "no position", "", diagnostic.Span{})

	f := NewFile("/src/example/transmogrify_gen.go", "example")
	f.AddErrors(d)

	file, err := NewGenerator(DefaultGeneratorConfig()).GenerateFile(f)
	require.NoError(t, err)

	fset := token.NewFileSet()
	parsed, err := parser.ParseFile(fset, file.Filename, file.Content, parser.ParseComments)
	require.NoError(t, err)

	var errs []types.Error

	conf := types.Config{Error: func(err error) { errs = append(errs, err.(types.Error)) }}
	_, _ = conf.Check("example", fset, []*ast.File{parsed}, nil)
	require.Len(t, errs, 2)

	// The item without a span comes first and keeps its own position.
	first := fset.Position(errs[0].Pos)
	assert.Equal(t, "/src/example/transmogrify_gen.go", first.Filename)
	assert.Contains(t, errs[0].Msg, "no position")

	second := fset.Position(errs[1].Pos)
	assert.Equal(t, "point.go", filepath.Base(second.Filename))
	assert.Equal(t, 7, second.Line)
	assert.Equal(t, 6, second.Column)
	assert.Contains(t, errs[1].Msg, "cannot be generated")
}

func TestGenerator_GenerateFile(t *testing.T) {
	f := NewFile("/src/example/transmogrify_gen.go", "example")
	f.Add("Transmogrify implements transmogrify.Transmogrifier.", quote.Decls(
		"func (v $recv) Transmogrify() $fragment {\n\treturn $body\n}",
		quote.Bind{
			"recv":     quote.Ident("Point"),
			"fragment": FragmentType(),
			"body":     Of(quote.Ident("v")),
		}))
	f.AddErrors(missingPrefix())

	file, err := NewGenerator(DefaultGeneratorConfig()).GenerateFile(f)
	require.NoError(t, err)
	assert.Equal(t, "/src/example/transmogrify_gen.go", file.Filename)

	expected := `// Code generated by transmogrify. DO NOT EDIT.

package example

import (
	"github.com/ahl/transmogrify"
	"github.com/ahl/transmogrify/quote"
)

// Transmogrify implements transmogrify.Transmogrifier.
func (v Point) Transmogrify() quote.Fragment {
	return transmogrify.Of(v)
}

var _ int = /*line point.go:3*/ "transmogrify: missing_prefix: must specify a path prefix"
`

	if diff := cmp.Diff(expected, string(file.Content)); diff != "" {
		t.Errorf("generated file mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerator_KeepsSourceAndPrunesImports(t *testing.T) {
	f := NewFile("value_gen.go", "jsonv")
	f.Constraint = "!transmogrify"
	f.Imports = []quote.Import{{Path: "fmt"}, {Path: "strings"}, {Name: "yaml", Path: "gopkg.in/yaml.v3"}}
	f.AddItem(Item{Doc: []string{"// Shout is loud."}, Source: "var Shout = strings.ToUpper(\"hi\")"})
	f.Add("", quote.Decls("func _() $fragment { return $q }", quote.Bind{
		"fragment": FragmentType(),
		"q":        QualCall(common.TypePath{Segments: []string{"Null"}}),
	}))

	file, err := NewGenerator(DefaultGeneratorConfig()).GenerateFile(f)
	require.NoError(t, err)

	content := string(file.Content)
	assert.Contains(t, content, "//go:build !transmogrify\n\n"+Header)
	assert.Contains(t, content, "// Shout is loud.\nvar Shout = strings.ToUpper(\"hi\")")
	assert.Contains(t, content, `"strings"`)
	assert.Contains(t, content, `"github.com/ahl/transmogrify/quote"`)
	assert.Contains(t, content, `return quote.Qual("", "Null")`)
	assert.NotContains(t, content, `"fmt"`)
	assert.NotContains(t, content, "yaml")
}

func TestGenerator_AliasedImport(t *testing.T) {
	f := NewFile("value_gen.go", "jsonv")
	f.Imports = []quote.Import{{Name: "tm", Path: RuntimePkg}}
	f.Add("", quote.Decls("func _(v int) $fragment { return $body }", quote.Bind{
		"fragment": FragmentType(),
		"body":     At(token.Position{Filename: "/src/value.go", Line: 4, Column: 2}, "X", Of(quote.Ident("v"))),
	}))

	file, err := NewGenerator(DefaultGeneratorConfig()).GenerateFile(f)
	require.NoError(t, err)

	content := string(file.Content)
	assert.Contains(t, content, `tm "github.com/ahl/transmogrify"`)
	assert.Contains(t, content, `return tm.At("value.go:4:2", "X", tm.Of(v))`)
	assert.NotContains(t, content, "transmogrify.Of")
}

func TestGenerator_KeepsUnknownImportNames(t *testing.T) {
	dir := t.TempDir()

	f := NewFile(filepath.Join(dir, "value_gen.go"), "value")
	f.Imports = []quote.Import{{Path: "example.com/foo-bar"}, {Path: "example.com/geo/v2"}, {Path: "os"}}
	f.AddItem(Item{Source: "var X = foobar.Value\n\nvar P = geo.Point{}"})

	file, err := NewGenerator(DefaultGeneratorConfig()).GenerateFile(f)
	require.NoError(t, err)

	content := string(file.Content)
	assert.Contains(t, content, `"example.com/foo-bar"`)
	assert.Contains(t, content, `"example.com/geo/v2"`)
	assert.NotContains(t, content, `"os"`)
}

func TestGenerator_Errors(t *testing.T) {
	bad := NewFile("bad.go", "bad")
	bad.Add("", quote.Errorf("no rule for chan int"))

	clash := NewFile("clash.go", "clash")
	clash.Imports = []quote.Import{{Path: "example.com/a/geo"}, {Path: "example.com/b/geo"}}

	good := NewFile("good.go", "good")

	files, err := NewGenerator(DefaultGeneratorConfig()).Generate([]*File{bad, clash, good})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no rule for chan int")
	assert.Contains(t, err.Error(), "are both named geo")

	require.Len(t, files, 1)
	assert.Equal(t, "good.go", files[0].Filename)
}

func TestGenerator_DebugUnformatted(t *testing.T) {
	dir := t.TempDir()

	f := NewFile(filepath.Join(dir, "broken_gen.go"), "broken")
	f.AddItem(Item{Source: "func {"})

	file, err := NewGenerator(GeneratorConfig{DebugUnformatted: true}).GenerateFile(f)
	require.Error(t, err)
	require.NotNil(t, file)
	assert.Contains(t, string(file.Content), "func {")

	_, err = os.Stat(filepath.Join(dir, "broken_gen.unformatted.go"))
	assert.NoError(t, err)
}

func TestWriteFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "a_gen.go")

	require.NoError(t, WriteFiles([]GeneratedFile{{Filename: path, Content: []byte("package a\n")}}))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "package a\n", string(content))
}
