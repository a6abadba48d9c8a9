package transmogrify_test

import (
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/go/packages"

	"github.com/ahl/transmogrify"
	"github.com/ahl/transmogrify/quote"
)

// elementTypes compiles f as a package-level initializer and returns the
// static type of each element of the composite literal it renders.
func elementTypes(t *testing.T, f quote.Fragment) []string {
	t.Helper()

	out, err := quote.Render("p", "v", f)
	require.NoError(t, err)

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "p.go", out, 0)
	require.NoError(t, err)

	info := &types.Info{Types: make(map[ast.Expr]types.TypeAndValue)}
	conf := types.Config{Importer: importer.ForCompiler(fset, "source", nil)}
	_, err = conf.Check("p", fset, []*ast.File{file}, info)
	require.NoError(t, err, string(out))

	var lit *ast.CompositeLit

	ast.Inspect(file, func(n ast.Node) bool {
		if c, ok := n.(*ast.CompositeLit); ok && lit == nil {
			lit = c
		}

		return lit == nil
	})
	require.NotNil(t, lit, string(out))

	elems := make([]string, 0, len(lit.Elts))

	for _, e := range lit.Elts {
		if kv, ok := e.(*ast.KeyValueExpr); ok {
			e = kv.Value
		}

		elems = append(elems, info.TypeOf(e).String())
	}

	return elems
}

func TestOf_InterfaceSlots(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected string
		types    []string
	}{
		{
			"sized numbers",
			[]any{int8(3), float32(1.5), uint16(7)},
			"[]any{int8(3), float32(1.5), uint16(7)}",
			[]string{"int8", "float32", "uint16"},
		},
		{
			"map values",
			map[string]any{"n": uint8(200)},
			`map[string]any{"n": uint8(200)}`,
			[]string{"uint8"},
		},
		{
			"beyond int",
			[]any{uint64(1 << 63)},
			"[]any{uint64(9223372036854775808)}",
			[]string{"uint64"},
		},
		{
			"default kinds",
			[]any{1, 2.5, true, "s", complex(1, 2)},
			`[]any{1, 2.5, true, "s", complex(1.0, 2.0)}`,
			[]string{"int", "float64", "bool", "string", "complex128"},
		},
		{
			"small complex",
			[]any{complex64(complex(1, 2))},
			"[]any{complex64(complex(1.0, 2.0))}",
			[]string{"complex64"},
		},
		{
			"float32 nan",
			[]any{float32(math.NaN())},
			"[]any{float32(math.NaN())}",
			[]string{"float32"},
		},
		{
			"float32 slice infinity",
			[]float32{float32(math.Inf(1)), -1},
			"[]float32{float32(math.Inf(1)), -1.0}",
			[]string{"float32", "float32"},
		},
		{
			"typed slices stay untyped inside",
			[]any{[]int8{1}},
			"[]any{[]int8{1}}",
			[]string{"[]int8"},
		},
		{
			"named types",
			[]any{time.Duration(5), uintptr(9)},
			"[]any{time.Duration(5), uintptr(9)}",
			[]string{"time.Duration", "uintptr"},
		},
		{
			"negative",
			[]any{int32(-4)},
			"[]any{int32(-4)}",
			[]string{"int32"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := transmogrify.Of(tt.value)
			assert.Equal(t, tt.expected, source(t, f))
			assert.Equal(t, tt.types, elementTypes(t, f))
		})
	}
}

func TestOf_InterfaceField(t *testing.T) {
	holder := struct{ V any }{V: int16(2)}
	assert.Equal(t, "int16(2)", source(t, transmogrify.Field(holder, 0)))

	// A defined type already spells its own conversion.
	assert.Equal(t, "[]any{transmogrify_test.celsius(2.0)}", source(t, transmogrify.Of([]any{celsius(2)})))
	assert.False(t, strings.Contains(source(t, transmogrify.Of([]any{float32(2)})), "float32(float32("))
}

// TestExamples_TypeCheck type-checks every fixture package, generated files
// and tests included, and checks that each position recorded by a generated
// transmogrify.At call names a column on an existing line.
func TestExamples_TypeCheck(t *testing.T) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedCompiledGoFiles |
			packages.NeedSyntax | packages.NeedTypes | packages.NeedTypesInfo,
		Tests: true,
	}

	pkgs, err := packages.Load(cfg, "./examples/...")
	require.NoError(t, err)
	require.NotEmpty(t, pkgs)

	generated := 0

	packages.Visit(pkgs, nil, func(p *packages.Package) {
		for _, e := range p.Errors {
			t.Errorf("%s: %v", p.ID, e)
		}

		for i, file := range p.Syntax {
			name := p.CompiledGoFiles[i]
			if !strings.HasSuffix(name, "_gen.go") {
				continue
			}

			generated++

			ast.Inspect(file, func(n ast.Node) bool {
				if call, ok := n.(*ast.CallExpr); ok {
					checkAt(t, filepath.Dir(name), call)
				}

				return true
			})
		}
	})

	// shapes, jsonv and roundtrip, each seen with and without its tests.
	assert.GreaterOrEqual(t, generated, 3)
}

func checkAt(t *testing.T, dir string, call *ast.CallExpr) {
	t.Helper()

	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok || sel.Sel.Name != "At" || len(call.Args) != 3 {
		return
	}

	lit, ok := call.Args[0].(*ast.BasicLit)
	require.True(t, ok)

	pos, err := strconv.Unquote(lit.Value)
	require.NoError(t, err)

	parts := strings.Split(pos, ":")
	require.Len(t, parts, 3, pos)

	line, err := strconv.Atoi(parts[1])
	require.NoError(t, err)
	col, err := strconv.Atoi(parts[2])
	require.NoError(t, err)

	src, err := os.ReadFile(filepath.Join(dir, parts[0]))
	require.NoError(t, err, pos)

	lines := strings.Split(string(src), "\n")
	require.LessOrEqual(t, line, len(lines), pos)
	require.GreaterOrEqual(t, col, 1, pos)
	require.LessOrEqual(t, col, len(lines[line-1]), pos)
	assert.NotContains(t, " \t", string(lines[line-1][col-1]), pos)
}
