package rewrite

import (
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"strconv"

	"github.com/ahl/transmogrify/internal/common"
	"github.com/ahl/transmogrify/internal/diagnostic"
)

// Pattern is the shape matched by one case of a skeleton switch. It is one
// of PatternPath, PatternPositional, PatternFields or PatternUnsupported.
type Pattern interface {
	// Node returns the case expression the pattern was read from.
	Node() ast.Expr

	pattern()
}

// PatternPath matches a single value: Null, jsonv.Null, Self.Null.
type PatternPath struct {
	Expr ast.Expr
	Path common.TypePath
}

// PatternPositional matches a type and binds its positional elements:
// Number(_), Point(x, y).
type PatternPositional struct {
	Expr  *ast.CallExpr
	Path  common.TypePath
	Elems []*ast.Ident
}

// PatternFields matches a type and binds fields by name:
// Object{Members: m}, Point{X, Y}.
type PatternFields struct {
	Expr   *ast.CompositeLit
	Path   common.TypePath
	Fields []FieldBinding
}

// FieldBinding binds one field of a PatternFields to a local.
type FieldBinding struct {
	Field     string
	Name      string
	Synthetic bool // the pattern bound _, Name is value_<i>
	Node      ast.Node
}

// PatternUnsupported is every other case expression.
type PatternUnsupported struct {
	Expr   ast.Expr
	Code   string   // diagnostic code it is reported with
	Reason string   // what the pattern is, plural
	At     ast.Node // offending node
}

func (p *PatternPath) Node() ast.Expr        { return p.Expr }
func (p *PatternPositional) Node() ast.Expr  { return p.Expr }
func (p *PatternFields) Node() ast.Expr      { return p.Expr }
func (p *PatternUnsupported) Node() ast.Expr { return p.Expr }

func (*PatternPath) pattern()        {}
func (*PatternPositional) pattern()  {}
func (*PatternFields) pattern()      {}
func (*PatternUnsupported) pattern() {}

// Element returns the name of the i-th synthetic local.
func Element(i int) string {
	return "value_" + strconv.Itoa(i)
}

// ParsePattern reads one case expression. Paths are resolved against self
// and the imports of the file.
func ParsePattern(expr ast.Expr, self common.TypePath, imports common.Imports) Pattern {
	switch e := expr.(type) {
	case *ast.Ident, *ast.SelectorExpr:
		p, err := common.ResolvePath(e, self, imports)
		if err != nil {
			return unsupported(expr, expr, err)
		}

		return &PatternPath{Expr: expr, Path: p}
	case *ast.CallExpr:
		return parsePositional(e, self, imports)
	case *ast.CompositeLit:
		return parseFields(e, self, imports)
	case *ast.BasicLit:
		return &PatternUnsupported{Expr: expr, Code: diagnostic.CodeUnsupportedPattern, Reason: "literal patterns", At: expr}
	case *ast.UnaryExpr:
		if e.Op == token.AND {
			return &PatternUnsupported{Expr: expr, Code: diagnostic.CodeUnsupportedPattern, Reason: "reference patterns", At: expr}
		}
	case *ast.ParenExpr:
		return &PatternUnsupported{Expr: expr, Code: diagnostic.CodeUnsupportedPattern, Reason: "parenthesised patterns", At: expr}
	case *ast.TypeAssertExpr:
		return &PatternUnsupported{Expr: expr, Code: diagnostic.CodeUnsupportedPattern, Reason: "type assertion patterns", At: expr}
	case *ast.IndexExpr, *ast.IndexListExpr:
		return &PatternUnsupported{Expr: expr, Code: diagnostic.CodeUnsupportedPattern, Reason: "patterns with type arguments", At: expr}
	}

	return &PatternUnsupported{
		Expr:   expr,
		Code:   diagnostic.CodeUnsupportedPattern,
		Reason: fmt.Sprintf("%s patterns", nodeKind(expr)),
		At:     expr,
	}
}

func parsePositional(call *ast.CallExpr, self common.TypePath, imports common.Imports) Pattern {
	p, err := common.ResolvePath(call.Fun, self, imports)
	if err != nil {
		return unsupported(call, call.Fun, err)
	}

	if call.Ellipsis.IsValid() {
		return &PatternUnsupported{
			Expr:   call,
			Code:   diagnostic.CodeRestPattern,
			Reason: "rest elements",
			At:     call.Args[len(call.Args)-1],
		}
	}

	elems := make([]*ast.Ident, len(call.Args))

	for i, arg := range call.Args {
		id, ok := arg.(*ast.Ident)
		if !ok {
			return &PatternUnsupported{
				Expr:   call,
				Code:   diagnostic.CodeUnsupportedPattern,
				Reason: fmt.Sprintf("%s elements", nodeKind(arg)),
				At:     arg,
			}
		}

		elems[i] = id
	}

	return &PatternPositional{Expr: call, Path: p, Elems: elems}
}

func parseFields(lit *ast.CompositeLit, self common.TypePath, imports common.Imports) Pattern {
	switch lit.Type.(type) {
	case nil:
		return &PatternUnsupported{Expr: lit, Code: diagnostic.CodeUnsupportedPattern, Reason: "untyped composite patterns", At: lit}
	case *ast.ArrayType:
		return &PatternUnsupported{Expr: lit, Code: diagnostic.CodeUnsupportedPattern, Reason: "slice patterns", At: lit.Type}
	case *ast.MapType:
		return &PatternUnsupported{Expr: lit, Code: diagnostic.CodeUnsupportedPattern, Reason: "map patterns", At: lit.Type}
	}

	p, err := common.ResolvePath(lit.Type, self, imports)
	if err != nil {
		return unsupported(lit, lit.Type, err)
	}

	fields := make([]FieldBinding, 0, len(lit.Elts))

	for i, elt := range lit.Elts {
		switch e := elt.(type) {
		case *ast.Ident:
			if e.Name == "_" {
				return &PatternUnsupported{Expr: lit, Code: diagnostic.CodeRestPattern, Reason: "rest elements", At: e}
			}

			fields = append(fields, FieldBinding{Field: e.Name, Name: e.Name, Node: e})
		case *ast.KeyValueExpr:
			key, ok := e.Key.(*ast.Ident)
			if !ok {
				return &PatternUnsupported{Expr: lit, Code: diagnostic.CodeUnsupportedPattern, Reason: "non-field keys", At: e.Key}
			}

			value, ok := e.Value.(*ast.Ident)
			if !ok {
				return &PatternUnsupported{
					Expr:   lit,
					Code:   diagnostic.CodeUnsupportedPattern,
					Reason: fmt.Sprintf("%s field patterns", nodeKind(e.Value)),
					At:     e.Value,
				}
			}

			binding := FieldBinding{Field: key.Name, Name: value.Name, Node: e}
			if value.Name == "_" {
				binding.Name = Element(i)
				binding.Synthetic = true
			}

			fields = append(fields, binding)
		default:
			return &PatternUnsupported{
				Expr:   lit,
				Code:   diagnostic.CodeUnsupportedPattern,
				Reason: fmt.Sprintf("%s field patterns", nodeKind(elt)),
				At:     elt,
			}
		}
	}

	return &PatternFields{Expr: lit, Path: p, Fields: fields}
}

// unsupported reports a pattern whose path is not a plain name.
func unsupported(expr ast.Expr, at ast.Node, err error) *PatternUnsupported {
	reason := "patterns whose type is not a plain name"

	if errors.Is(err, common.ErrNotPath) {
		switch at.(type) {
		case *ast.ParenExpr, *ast.StarExpr:
			reason = "qualified self types"
		case *ast.IndexExpr, *ast.IndexListExpr:
			reason = "patterns with type arguments"
		}
	} else {
		reason = err.Error()
	}

	return &PatternUnsupported{Expr: expr, Code: diagnostic.CodeUnsupportedPattern, Reason: reason, At: at}
}

func nodeKind(n ast.Node) string {
	switch n.(type) {
	case *ast.BasicLit:
		return "literal"
	case *ast.CompositeLit:
		return "composite"
	case *ast.CallExpr:
		return "call"
	case *ast.UnaryExpr:
		return "unary"
	case *ast.BinaryExpr:
		return "binary"
	case *ast.FuncLit:
		return "function literal"
	case *ast.SliceExpr:
		return "slice expression"
	case *ast.SelectorExpr:
		return "selector"
	case *ast.StarExpr:
		return "pointer"
	case *ast.ParenExpr:
		return "parenthesised"
	case *ast.KeyValueExpr:
		return "keyed"
	default:
		return fmt.Sprintf("%T", n)
	}
}
