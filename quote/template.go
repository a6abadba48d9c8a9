package quote

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/scanner"
	"go/token"
	"maps"
	"slices"
	"strings"

	"golang.org/x/tools/go/ast/astutil"
)

// Bind maps placeholder names of a template to the fragments substituted for
// them.
type Bind map[string]Fragment

// marker is reserved for placeholder identifiers. It is a letter, so
// `_ǀname` is a valid Go identifier that cannot clash with user names.
const marker = 'ǀ'

const holePrefix = "_" + string(marker)

// Expr expands a template holding a single Go expression.
func Expr(tmpl string, b Bind) Fragment {
	return expand(tmpl, b, false, func(src string) ([]ast.Node, error) {
		e, err := parser.ParseExprFrom(token.NewFileSet(), "", src, parser.SkipObjectResolution)
		if err != nil {
			return nil, err
		}

		return []ast.Node{e}, nil
	})
}

// Stmts expands a template holding a list of Go statements.
func Stmts(tmpl string, b Bind) Fragment {
	return expand(tmpl, b, true, func(src string) ([]ast.Node, error) {
		f, err := parser.ParseFile(token.NewFileSet(), "", "package p\nfunc _() {\n"+src+"\n}\n", parser.SkipObjectResolution)
		if err != nil {
			return nil, err
		}

		body := f.Decls[0].(*ast.FuncDecl).Body.List
		nodes := make([]ast.Node, len(body))

		for i, s := range body {
			nodes[i] = s
		}

		return nodes, nil
	})
}

// Decls expands a template holding a list of top-level Go declarations.
// Imports are not allowed in the template; use Qual instead.
func Decls(tmpl string, b Bind) Fragment {
	return expand(tmpl, b, true, func(src string) ([]ast.Node, error) {
		f, err := parser.ParseFile(token.NewFileSet(), "", "package p\n"+src+"\n", parser.SkipObjectResolution)
		if err != nil {
			return nil, err
		}

		if len(f.Imports) > 0 {
			return nil, fmt.Errorf("imports are not allowed in a template")
		}

		nodes := make([]ast.Node, len(f.Decls))
		for i, d := range f.Decls {
			nodes[i] = d
		}

		return nodes, nil
	})
}

func expand(tmpl string, b Bind, list bool, parse func(string) ([]ast.Node, error)) Fragment {
	var imports map[string]string

	for _, name := range slices.Sorted(maps.Keys(b)) {
		f := b[name]
		if f.err != nil {
			return Fragment{err: f.err}
		}

		if len(f.nodes) == 0 && !f.list {
			return Errorf("quote: empty fragment bound to $%s", name)
		}

		imports = mergeImports(imports, f.imports)
	}

	src, holes, err := prepare(tmpl)
	if err != nil {
		return Errorf("quote: %w", err)
	}

	for _, name := range slices.Sorted(maps.Keys(holes)) {
		if _, ok := b[name]; !ok {
			return Errorf("quote: unbound placeholder $%s", name)
		}
	}

	for _, name := range slices.Sorted(maps.Keys(b)) {
		if !holes[name] {
			return Errorf("quote: unused binding $%s", name)
		}
	}

	nodes, err := parse(src)
	if err != nil {
		return Errorf("quote: parse template: %w", err)
	}

	out := Fragment{list: list, imports: imports, nodes: make([]ast.Node, 0, len(nodes))}

	for _, n := range nodes {
		detach(n)

		n, err = substitute(n, b)
		if err != nil {
			return Errorf("quote: %w", err)
		}

		out.nodes = append(out.nodes, n)
	}

	return out
}

// prepare replaces every `$name` placeholder of a template with a reserved
// identifier and returns the names found. The template is tokenized, so a `$`
// inside a string or rune literal or a comment is kept as text.
func prepare(tmpl string) (string, map[string]bool, error) {
	if strings.ContainsRune(tmpl, marker) {
		return "", nil, fmt.Errorf("template contains the reserved rune %q", marker)
	}

	fset := token.NewFileSet()
	file := fset.AddFile("", -1, len(tmpl))

	var s scanner.Scanner
	s.Init(file, []byte(tmpl), nil, 0)

	var (
		buf    strings.Builder
		holes  = make(map[string]bool)
		last   = 0
		dollar = -1
	)

	for {
		pos, tok, lit := s.Scan()
		if tok == token.EOF {
			break
		}

		off := file.Offset(pos)

		if tok == token.ILLEGAL && lit == "$" {
			if dollar >= 0 {
				return "", nil, fmt.Errorf("offset %d: $ must be followed by a placeholder name", dollar)
			}

			dollar = off

			continue
		}

		if dollar < 0 {
			continue
		}

		if tok != token.IDENT || off != dollar+1 {
			return "", nil, fmt.Errorf("offset %d: $ must be followed by a placeholder name", dollar)
		}

		buf.WriteString(tmpl[last:dollar])
		buf.WriteString(holePrefix + lit)

		holes[lit] = true
		last = off + len(lit)
		dollar = -1
	}

	if dollar >= 0 {
		return "", nil, fmt.Errorf("offset %d: $ must be followed by a placeholder name", dollar)
	}

	buf.WriteString(tmpl[last:])

	return buf.String(), holes, nil
}

func holeName(e ast.Expr) (string, bool) {
	id, ok := e.(*ast.Ident)
	if !ok {
		return "", false
	}

	return strings.CutPrefix(id.Name, holePrefix)
}

// substitute replaces placeholders with the bound fragments. Inserted nodes
// are never walked, so a binding cannot be expanded a second time.
func substitute(root ast.Node, b Bind) (result ast.Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("placeholder does not fit its position: %v", r)
		}
	}()

	result = astutil.Apply(root, func(c *astutil.Cursor) bool {
		if err != nil {
			return false
		}

		switch n := c.Node().(type) {
		case *ast.ExprStmt:
			name, ok := holeName(n.X)
			if !ok {
				return true
			}

			f := b[name]

			if f.list || isStmt(f) {
				err = splice(c, name, f)
				return false
			}

			c.Replace(&ast.ExprStmt{X: clone(f.nodes[0]).(ast.Expr)})

			return false
		case *ast.Ident:
			name, ok := holeName(n)
			if !ok {
				return true
			}

			f := b[name]

			if f.list {
				err = splice(c, name, f)
				return false
			}

			c.Replace(clone(f.nodes[0]))

			return false
		}

		return true
	}, nil)

	return result, err
}

func splice(c *astutil.Cursor, name string, f Fragment) error {
	if c.Index() < 0 {
		return fmt.Errorf("list bound to $%s is not in a list position", name)
	}

	for i := len(f.nodes) - 1; i >= 0; i-- {
		c.InsertAfter(clone(f.nodes[i]))
	}

	c.Delete()

	return nil
}

func isStmt(f Fragment) bool {
	if len(f.nodes) == 0 {
		return false
	}

	_, ok := f.nodes[0].(ast.Stmt)

	return ok
}
