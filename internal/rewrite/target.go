package rewrite

import (
	"go/ast"
	"go/token"
	"go/types"

	"github.com/ahl/transmogrify/internal/common"
	"github.com/ahl/transmogrify/internal/diagnostic"
)

// defaultSelf names a receiver or parameter that was left unnamed or blank.
const defaultSelf = "v"

// target is a function marked //transmogrify:template.
type target struct {
	fn      *ast.FuncDecl
	fset    *token.FileSet
	imports common.Imports
	pkg     string // import path of the package of the file

	self   *ast.Field      // receiver or parameter
	name   string          // name of the self value in the generated body
	path   common.TypePath // qualified, generics stripped
	params []string        // type parameters of the self type
}

// declName names a function in diagnostics: Type.Method or Func.
func declName(fn *ast.FuncDecl) string {
	if fn.Recv == nil || len(fn.Recv.List) == 0 {
		return fn.Name.Name
	}

	p, err := common.SelfPath(fn.Recv.List[0].Type, nil)
	if err != nil {
		return fn.Name.Name
	}

	return p.Name() + "." + fn.Name.Name
}

func newTarget(fset *token.FileSet, fn *ast.FuncDecl, imports common.Imports, pkg string) (*target, *diagnostic.Error) {
	span := diagnostic.SpanOf(fset, fn.Name)

	var self *ast.Field

	switch {
	case fn.Recv != nil && len(fn.Recv.List) == 1 && fn.Type.Params.NumFields() == 0:
		self = fn.Recv.List[0]
	case fn.Recv == nil && fn.Type.Params.NumFields() == 1:
		self = fn.Type.Params.List[0]
	default:
		return nil, diagnostic.Fatalf(diagnostic.CodeWrongTarget, span,
			"a template must take exactly one self value: a receiver, or a single parameter")
	}

	if fn.Type.Results.NumFields() != 1 {
		return nil, diagnostic.Fatalf(diagnostic.CodeWrongTarget, span,
			"a template must return exactly one quote.Fragment")
	}

	if fn.Body == nil {
		return nil, diagnostic.Fatalf(diagnostic.CodeWrongTarget, span, "a template needs a body")
	}

	path, err := common.SelfPath(self.Type, imports)
	if err != nil {
		return nil, diagnostic.Fatalf(diagnostic.CodeWrongTarget, diagnostic.SpanOf(fset, self.Type),
			"the self type %s is not a named type", types.ExprString(self.Type))
	}

	if path.Pkg == "" {
		path.Pkg = pkg
	}

	params, ok := typeParams(self.Type)
	if !ok {
		return nil, diagnostic.Fatalf(diagnostic.CodeWrongTarget, diagnostic.SpanOf(fset, self.Type),
			"the type arguments of %s must be type parameters", types.ExprString(self.Type))
	}

	name := defaultSelf
	if len(self.Names) == 1 && self.Names[0].Name != "_" {
		name = self.Names[0].Name
	}

	return &target{
		fn:      fn,
		fset:    fset,
		imports: imports,
		pkg:     pkg,
		self:    self,
		name:    name,
		path:    path,
		params:  params,
	}, nil
}

// typeParams returns the type arguments of a self type. They must all be
// plain names.
func typeParams(expr ast.Expr) ([]string, bool) {
	for {
		switch e := expr.(type) {
		case *ast.StarExpr:
			expr = e.X
		case *ast.ParenExpr:
			expr = e.X
		case *ast.IndexExpr:
			return identNames(e.Index)
		case *ast.IndexListExpr:
			return identNames(e.Indices...)
		default:
			return nil, true
		}
	}
}

func identNames(exprs ...ast.Expr) ([]string, bool) {
	names := make([]string, len(exprs))

	for i, e := range exprs {
		id, ok := e.(*ast.Ident)
		if !ok {
			return nil, false
		}

		names[i] = id.Name
	}

	return names, true
}

// isSelf reports whether expr refers to the self value.
func (t *target) isSelf(expr ast.Expr) bool {
	id, ok := expr.(*ast.Ident)
	return ok && id.Name == t.name
}

// renamed reports whether the self value gets a name it did not have.
func (t *target) renamed() bool {
	return len(t.self.Names) != 1 || t.self.Names[0].Name != t.name
}

// selfType is the type expression of the self value as written, with
// pointer indirections and parentheses removed.
func (t *target) selfType() ast.Expr {
	expr := t.self.Type
	for {
		switch e := expr.(type) {
		case *ast.StarExpr:
			expr = e.X
		case *ast.ParenExpr:
			expr = e.X
		default:
			return expr
		}
	}
}

// local turns a pattern path as written in the skeleton into an expression
// valid in the generated file. Self becomes the self type; Self.X becomes X
// qualified like the self type.
func (t *target) local(expr ast.Expr) ast.Expr {
	segs := selectors(expr)
	if len(segs) == 0 || segs[0] != common.SelfName {
		return expr
	}

	if len(segs) == 1 {
		return t.self.Type
	}

	var out ast.Expr = ast.NewIdent(segs[1])

	base := t.selfType()
	if idx, ok := base.(*ast.IndexExpr); ok {
		base = idx.X
	}
	if idx, ok := base.(*ast.IndexListExpr); ok {
		base = idx.X
	}

	if sel, ok := base.(*ast.SelectorExpr); ok {
		out = &ast.SelectorExpr{X: sel.X, Sel: ast.NewIdent(segs[1])}
	}

	for _, s := range segs[2:] {
		out = &ast.SelectorExpr{X: out, Sel: ast.NewIdent(s)}
	}

	return out
}

// isSelfType reports whether a resolved pattern path names the self type.
func (t *target) isSelfType(p common.TypePath) bool {
	return p.Pkg == t.path.Pkg && len(p.Segments) == 1 && p.Name() == t.path.Name()
}

// selectors returns the names of an identifier or selector chain, or nil.
func selectors(expr ast.Expr) []string {
	switch e := expr.(type) {
	case *ast.Ident:
		return []string{e.Name}
	case *ast.SelectorExpr:
		head := selectors(e.X)
		if head == nil {
			return nil
		}

		return append(head, e.Sel.Name)
	default:
		return nil
	}
}
