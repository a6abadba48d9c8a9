package rewrite

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"path"
	"strconv"
	"strings"

	"github.com/ahl/transmogrify/internal/common"
	"github.com/ahl/transmogrify/internal/diagnostic"
	"github.com/ahl/transmogrify/internal/gen"
	"github.com/ahl/transmogrify/quote"
)

const (
	typeHole = "T"

	noMatch = "transmogrify: no case matches %#v"

	skeletonForms = "a template must start with a binding of fields of %s (a, b := %s.A, %s.B) " +
		"or a switch over it (switch %s { case <pattern>: ... })"
)

// body returns the statements of the generated function.
func (t *target) body(diags *diagnostic.Diagnostics) (quote.Fragment, *diagnostic.Error) {
	stmts := t.fn.Body.List
	if len(stmts) == 0 {
		return quote.Fragment{}, t.unsupportedSkeleton(t.fn.Body)
	}

	t.extraneous(stmts[1:], diags)

	switch s := stmts[0].(type) {
	case *ast.AssignStmt:
		if s.Tok != token.DEFINE {
			break
		}

		lhs := make([]*ast.Ident, len(s.Lhs))
		for i, e := range s.Lhs {
			id, ok := e.(*ast.Ident)
			if !ok {
				return quote.Fragment{}, t.unsupportedSkeleton(e)
			}

			lhs[i] = id
		}

		return t.destructure(s, lhs, s.Rhs)
	case *ast.DeclStmt:
		gd, ok := s.Decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.VAR || len(gd.Specs) != 1 {
			break
		}

		vs := gd.Specs[0].(*ast.ValueSpec)
		if vs.Type != nil {
			break
		}

		return t.destructure(s, vs.Names, vs.Values)
	case *ast.SwitchStmt:
		return t.match(s)
	}

	return quote.Fragment{}, t.unsupportedSkeleton(stmts[0])
}

func (t *target) unsupportedSkeleton(at ast.Node) *diagnostic.Error {
	return diagnostic.Fatalf(diagnostic.CodeUnsupportedSkeleton, diagnostic.SpanOf(t.fset, at),
		skeletonForms, t.name, t.name, t.name, t.name)
}

// extraneous flags every statement after the first, except a trailing panic
// placeholder.
func (t *target) extraneous(rest []ast.Stmt, diags *diagnostic.Diagnostics) {
	if n := len(rest); n > 0 && isPanic(rest[n-1]) {
		rest = rest[:n-1]
	}

	if len(rest) == 0 {
		return
	}

	span := diagnostic.Join(diagnostic.SpanOf(t.fset, rest[0]), diagnostic.SpanOf(t.fset, rest[len(rest)-1]))

	diags.AddError(diagnostic.CodeExtraneousItems,
		"only the first statement of a template is rewritten; the statements after it are dropped",
		declName(t.fn), span)
}

func isPanic(s ast.Stmt) bool {
	es, ok := s.(*ast.ExprStmt)
	if !ok {
		return false
	}

	call, ok := es.X.(*ast.CallExpr)
	if !ok {
		return false
	}

	id, ok := call.Fun.(*ast.Ident)

	return ok && id.Name == "panic"
}

// shadows returns the name a binding would hide from the generated body.
func (t *target) shadows(name string) (string, bool) {
	switch name {
	case t.name:
		return "the self value", true
	case "quote", "transmogrify":
		return "the " + name + " package", true
	case "any":
		return "the predeclared any", true
	}

	if p, ok := t.imports[name]; ok && (p == gen.RuntimePkg || p == gen.QuotePkg) {
		return "the " + path.Base(p) + " package", true
	}

	return "", false
}

// destructure keeps the binding statement and returns the value rebuilt from
// the bound fields.
func (t *target) destructure(stmt ast.Stmt, lhs []*ast.Ident, rhs []ast.Expr) (quote.Fragment, *diagnostic.Error) {
	if len(lhs) == 0 || len(lhs) != len(rhs) {
		return quote.Fragment{}, t.unsupportedSkeleton(stmt)
	}

	names := make([]*ast.Ident, len(lhs))
	locals := make([]string, len(lhs))

	var fields []gen.Field

	for i, e := range rhs {
		sel, ok := e.(*ast.SelectorExpr)
		if !ok || !t.isSelf(sel.X) {
			return quote.Fragment{}, diagnostic.Fatalf(diagnostic.CodeUnsupportedSkeleton, diagnostic.SpanOf(t.fset, e),
				"%s is not a field of %s", types.ExprString(e), t.name)
		}

		name := lhs[i].Name
		if name == "_" {
			name = Element(i)
		}

		if what, ok := t.shadows(name); ok {
			return quote.Fragment{}, diagnostic.Fatalf(diagnostic.CodeUnsupportedSkeleton, diagnostic.SpanOf(t.fset, lhs[i]),
				"binding %s shadows %s", name, what)
		}

		names[i] = ast.NewIdent(name)
		locals[i] = name
		fields = append(fields, gen.Field{Key: sel.Sel.Name, Hole: name})
	}

	var kept ast.Stmt

	switch s := stmt.(type) {
	case *ast.AssignStmt:
		lhs := make([]ast.Expr, len(names))
		for i, n := range names {
			lhs[i] = n
		}

		kept = &ast.AssignStmt{Lhs: lhs, Tok: token.DEFINE, Rhs: s.Rhs}
	default:
		kept = &ast.DeclStmt{Decl: &ast.GenDecl{
			Tok:   token.VAR,
			Specs: []ast.Spec{&ast.ValueSpec{Names: names, Values: rhs}},
		}}
	}

	hole := gen.Hole(typeHole, locals)

	binds := []gen.Binding{{Name: hole, Value: gen.TypeCall(t.path, t.params)}}
	for i, name := range locals {
		binds = append(binds, gen.Binding{Name: name, Value: t.at(lhs[i], fields[i].Key, gen.Of(quote.Ident(name)))})
	}

	return quote.List(
		quote.Node(kept),
		returns(gen.Construct(gen.NamedTemplate(hole, fields), binds)),
	), nil
}

// arm is one rewritten case of a match.
type arm struct {
	typed    bool     // matches a type rather than a value
	cond     ast.Expr // value or type expression of the case
	body     quote.Fragment
	usesSelf bool // the body refers to the self value
}

// match rewrites every case of a switch over the self value.
func (t *target) match(sw *ast.SwitchStmt) (quote.Fragment, *diagnostic.Error) {
	if sw.Init != nil || !t.isSelf(sw.Tag) {
		return quote.Fragment{}, t.unsupportedSkeleton(sw)
	}

	var arms []arm

	for _, s := range sw.Body.List {
		cc := s.(*ast.CaseClause)

		switch {
		case len(cc.List) == 0:
			return quote.Fragment{}, diagnostic.Fatalf(diagnostic.CodeUnsupportedPattern, diagnostic.SpanOf(t.fset, cc),
				"default arms are not supported; every case must name one pattern")
		case len(cc.List) > 1:
			span := diagnostic.Join(diagnostic.SpanOf(t.fset, cc.List[0]), diagnostic.SpanOf(t.fset, cc.List[len(cc.List)-1]))
			return quote.Fragment{}, diagnostic.Fatalf(diagnostic.CodeUnsupportedPattern, span,
				"or-patterns are not supported; give every pattern its own case")
		}

		a, err := t.arm(ParsePattern(cc.List[0], t.path, t.imports))
		if err != nil {
			return quote.Fragment{}, err
		}

		arms = append(arms, a)
	}

	return t.dispatch(arms), nil
}

func (t *target) arm(p Pattern) (arm, *diagnostic.Error) {
	switch p := p.(type) {
	case *PatternPath:
		return arm{
			cond: t.local(p.Expr),
			body: returns(gen.QualCall(t.qualify(p.Path))),
		}, nil
	case *PatternPositional:
		return t.positional(p), nil
	case *PatternFields:
		return t.fields(p)
	case *PatternUnsupported:
		return arm{}, diagnostic.Fatalf(p.Code, diagnostic.SpanOf(t.fset, p.At), "%s are not supported", p.Reason)
	}

	panic(fmt.Sprintf("unknown pattern %T", p))
}

func (t *target) positional(p *PatternPositional) arm {
	var (
		stmts []quote.Fragment
		elems []quote.Fragment
	)

	for i := range p.Elems {
		local := Element(i)

		field := quote.Expr("$field($self, $i)", quote.Bind{
			"field": gen.Runtime("Field"),
			"self":  quote.Ident(t.name),
			"i":     quote.Lit(token.INT, strconv.Itoa(i)),
		})

		stmts = append(stmts, quote.Stmts("$local := $call", quote.Bind{
			"local": quote.Ident(local),
			"call":  t.at(p.Elems[i], strconv.Itoa(i), field),
		}))
		elems = append(elems, quote.Ident(local))
	}

	stmts = append(stmts, returns(quote.Expr("$positional($T, $self, $elems)", quote.Bind{
		"positional": gen.Runtime("Positional"),
		"T":          t.typeOf(p.Path),
		"self":       quote.Ident(t.name),
		"elems":      quote.List(elems...),
	})))

	return arm{typed: true, cond: t.local(p.Expr.Fun), body: quote.List(stmts...), usesSelf: true}
}

func (t *target) fields(p *PatternFields) (arm, *diagnostic.Error) {
	var (
		stmts  []quote.Fragment
		fields []gen.Field
		locals []string
	)

	seen := make(map[string]bool, len(p.Fields))

	for _, f := range p.Fields {
		if what, ok := t.shadows(f.Name); ok {
			return arm{}, diagnostic.Fatalf(diagnostic.CodeUnsupportedPattern, diagnostic.SpanOf(t.fset, f.Node),
				"binding %s shadows %s", f.Name, what)
		}

		if seen[f.Name] {
			return arm{}, diagnostic.Fatalf(diagnostic.CodeUnsupportedPattern, diagnostic.SpanOf(t.fset, f.Node),
				"%s is bound twice", f.Name)
		}
		seen[f.Name] = true

		stmts = append(stmts, quote.Node(&ast.AssignStmt{
			Lhs: []ast.Expr{ast.NewIdent(f.Name)},
			Tok: token.DEFINE,
			Rhs: []ast.Expr{&ast.SelectorExpr{X: ast.NewIdent(t.name), Sel: ast.NewIdent(f.Field)}},
		}))
		fields = append(fields, gen.Field{Key: f.Field, Hole: f.Name})
		locals = append(locals, f.Name)
	}

	hole := gen.Hole(typeHole, locals)

	binds := []gen.Binding{{Name: hole, Value: t.typeOf(p.Path)}}
	for i, name := range locals {
		f := p.Fields[i]
		binds = append(binds, gen.Binding{Name: name, Value: t.at(f.Node, f.Field, gen.Of(quote.Ident(name)))})
	}

	stmts = append(stmts, returns(gen.Construct(gen.NamedTemplate(hole, fields), binds)))

	return arm{typed: true, cond: t.local(p.Expr.Type), body: quote.List(stmts...), usesSelf: len(fields) > 0}, nil
}

// dispatch assembles the arms into a switch followed by the error returned
// when no case matches.
func (t *target) dispatch(arms []arm) quote.Fragment {
	var (
		tmpl  strings.Builder
		typed int
	)

	uses := false

	for _, a := range arms {
		if a.typed {
			typed++
		}

		uses = uses || a.usesSelf
	}

	binds := quote.Bind{
		"self":   quote.Ident(t.name),
		"errorf": gen.Quote("Errorf"),
		"msg":    gen.String(noMatch),
	}

	switch {
	case typed == 0:
		tmpl.WriteString("switch $self {\n")
	case typed == len(arms) && uses:
		tmpl.WriteString("switch $self := any($self).(type) {\n")
	case typed == len(arms):
		tmpl.WriteString("switch any($self).(type) {\n")
	default:
		tmpl.WriteString("switch {\n")
		binds["is"] = gen.Runtime("Is")
	}

	mixed := typed > 0 && typed < len(arms)

	for i, a := range arms {
		switch {
		case !mixed:
			fmt.Fprintf(&tmpl, "case $c%d:\n", i)
		case a.typed:
			fmt.Fprintf(&tmpl, "case $is[$c%d]($self):\n", i)
			if a.usesSelf {
				fmt.Fprintf(&tmpl, "\t$self := any($self).($c%d)\n", i)
			}
		default:
			fmt.Fprintf(&tmpl, "case any($self) == any($c%d):\n", i)
		}

		fmt.Fprintf(&tmpl, "\t$b%d\n", i)

		binds[fmt.Sprintf("c%d", i)] = gen.SourceExpr(a.cond, t.imports)
		binds[fmt.Sprintf("b%d", i)] = a.body
	}

	tmpl.WriteString("}\nreturn $errorf($msg, $self)")

	return quote.Stmts(tmpl.String(), binds)
}

// qualify places a path written without a package in the package of the
// file.
func (t *target) qualify(p common.TypePath) common.TypePath {
	if p.Pkg == "" {
		return p.Rehome(t.pkg)
	}

	return p
}

// typeOf returns code building the type a typed arm constructs. The self
// type is instantiated with its type parameters.
func (t *target) typeOf(p common.TypePath) quote.Fragment {
	p = t.qualify(p)
	if t.isSelfType(p) {
		return gen.TypeCall(p, t.params)
	}

	return gen.QualCall(p)
}

// at wraps a generation call with the position of the node binding field.
func (t *target) at(n ast.Node, field string, call quote.Fragment) quote.Fragment {
	return gen.At(t.fset.Position(n.Pos()), field, call)
}

func returns(f quote.Fragment) quote.Fragment {
	return quote.Stmts("return $f", quote.Bind{"f": f})
}
