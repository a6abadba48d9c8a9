package quote

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/token"
	"maps"
	"slices"

	"github.com/ahl/transmogrify/internal/common"
)

// Fragment is a piece of generated Go source: one syntax node or a list of
// them, the imports the nodes refer to, and a sticky error.
//
// Fragments are immutable. Every constructor copies the nodes it is given, and
// composing fragments through a Bind never modifies the bound fragments.
type Fragment struct {
	nodes   []ast.Node
	list    bool
	imports map[string]string // import path -> package name
	err     error
}

// Import is an import required by a fragment.
type Import struct {
	Name string
	Path string
}

// Ident returns a fragment holding a single identifier.
func Ident(name string) Fragment {
	if !token.IsIdentifier(name) {
		return Errorf("quote: %q is not an identifier", name)
	}

	return Fragment{nodes: []ast.Node{&ast.Ident{NamePos: detached, Name: name}}}
}

// Qual returns a reference to name declared in the package at path, followed
// by optional member selectors. An empty path refers to the current package.
// The package qualifier is derived lexically from the import path.
func Qual(path, name string, members ...string) Fragment {
	var (
		expr    ast.Expr
		imports map[string]string
	)

	if path == "" {
		if !token.IsIdentifier(name) {
			return Errorf("quote: %q is not an identifier", name)
		}

		expr = &ast.Ident{NamePos: detached, Name: name}
	} else {
		alias := common.PkgAlias(path)
		if !token.IsIdentifier(alias) || !token.IsIdentifier(name) {
			return Errorf("quote: cannot refer to %q in package %q", name, path)
		}

		expr = &ast.SelectorExpr{
			X:   &ast.Ident{NamePos: detached, Name: alias},
			Sel: &ast.Ident{NamePos: detached, Name: name},
		}
		imports = map[string]string{path: alias}
	}

	for _, member := range members {
		if !token.IsIdentifier(member) {
			return Errorf("quote: %q is not an identifier", member)
		}

		expr = &ast.SelectorExpr{X: expr, Sel: &ast.Ident{NamePos: detached, Name: member}}
	}

	return Fragment{nodes: []ast.Node{expr}, imports: imports}
}

// Lit returns a basic literal fragment. The value is used verbatim.
func Lit(kind token.Token, value string) Fragment {
	return Fragment{nodes: []ast.Node{&ast.BasicLit{ValuePos: detached, Kind: kind, Value: value}}}
}

// Node wraps a syntax node built by hand. The node is copied and its
// positions are detached from any file.
func Node(n ast.Node) Fragment {
	if n == nil {
		return Errorf("quote: nil node")
	}

	n = clone(n)
	detach(n)

	return Fragment{nodes: []ast.Node{n}}
}

// KeyValue returns a `key: value` element for a composite literal.
func KeyValue(key, value Fragment) Fragment {
	if err := firstErr(key.err, value.err); err != nil {
		return Fragment{err: err}
	}

	k, err := key.Expr()
	if err != nil {
		return Fragment{err: err}
	}

	v, err := value.Expr()
	if err != nil {
		return Fragment{err: err}
	}

	return Fragment{
		nodes:   []ast.Node{&ast.KeyValueExpr{Key: k, Colon: detached, Value: v}},
		imports: mergeImports(key.imports, value.imports),
	}
}

// List concatenates fragments into a list fragment. Bound to a placeholder in
// a list position (composite literal elements, call arguments, statements) the
// list is spliced in place of the placeholder.
func List(fs ...Fragment) Fragment {
	out := Fragment{list: true, nodes: []ast.Node{}}

	for _, f := range fs {
		if f.err != nil {
			return Fragment{err: f.err}
		}

		for _, n := range f.nodes {
			out.nodes = append(out.nodes, clone(n))
		}

		out.imports = mergeImports(out.imports, f.imports)
	}

	return out
}

// Errorf returns a fragment that carries only an error. The error sticks to
// every fragment the result is composed into.
func Errorf(format string, args ...any) Fragment {
	return Fragment{err: fmt.Errorf(format, args...)}
}

// Spanned returns a copy of f whose nodes carry the source position pos.
func Spanned(pos token.Pos, f Fragment) Fragment {
	if f.err != nil || !pos.IsValid() {
		return f
	}

	out := Fragment{list: f.list, imports: maps.Clone(f.imports), nodes: make([]ast.Node, len(f.nodes))}
	for i, n := range f.nodes {
		out.nodes[i] = clone(n)
		setPos(out.nodes[i], pos)
	}

	return out
}

// Requires returns a copy of f that also requires the given imports. It is
// for nodes built with Node that refer to packages through qualifiers.
func (f Fragment) Requires(imports ...Import) Fragment {
	if f.err != nil || len(imports) == 0 {
		return f
	}

	extra := make(map[string]string, len(imports))
	for _, imp := range imports {
		extra[imp.Path] = imp.Name
	}

	return Fragment{nodes: f.nodes, list: f.list, imports: mergeImports(f.imports, extra)}
}

// Rename returns a copy of f that refers to the package at path as name, for
// a file that imports it under an alias. Qualifiers using the name recorded
// for path are rewritten.
func (f Fragment) Rename(path, name string) Fragment {
	old, ok := f.imports[path]
	if f.err != nil || !ok || old == name {
		return f
	}

	if !token.IsIdentifier(name) {
		return Errorf("quote: cannot refer to package %q as %q", path, name)
	}

	out := Fragment{list: f.list, imports: maps.Clone(f.imports), nodes: make([]ast.Node, len(f.nodes))}
	out.imports[path] = name

	for i, n := range f.nodes {
		out.nodes[i] = clone(n)

		ast.Inspect(out.nodes[i], func(n ast.Node) bool {
			if sel, ok := n.(*ast.SelectorExpr); ok {
				if id, ok := sel.X.(*ast.Ident); ok && id.Name == old {
					id.Name = name
				}
			}

			return true
		})
	}

	return out
}

// Err returns the error carried by the fragment, if any.
func (f Fragment) Err() error {
	return f.err
}

// IsList reports whether the fragment is a list.
func (f Fragment) IsList() bool {
	return f.list
}

// Len returns the number of nodes in the fragment.
func (f Fragment) Len() int {
	return len(f.nodes)
}

// Nodes returns copies of the nodes of the fragment.
func (f Fragment) Nodes() []ast.Node {
	out := make([]ast.Node, len(f.nodes))
	for i, n := range f.nodes {
		out[i] = clone(n)
	}

	return out
}

// Expr returns a copy of the single expression held by the fragment.
func (f Fragment) Expr() (ast.Expr, error) {
	if f.err != nil {
		return nil, f.err
	}

	if f.list || len(f.nodes) != 1 {
		return nil, fmt.Errorf("quote: expected a single expression, got %d nodes", len(f.nodes))
	}

	e, ok := f.nodes[0].(ast.Expr)
	if !ok {
		return nil, fmt.Errorf("quote: expected an expression, got %T", f.nodes[0])
	}

	return clone(e), nil
}

// Imports returns the imports the fragment refers to, sorted by path.
func (f Fragment) Imports() []Import {
	out := make([]Import, 0, len(f.imports))
	for _, p := range slices.Sorted(maps.Keys(f.imports)) {
		out = append(out, Import{Name: f.imports[p], Path: p})
	}

	return out
}

// Source prints the fragment as gofmt-formatted Go source. List elements are
// separated by commas when they are expressions and by newlines otherwise.
func (f Fragment) Source() (string, error) {
	if f.err != nil {
		return "", f.err
	}

	var buf bytes.Buffer

	for i, n := range f.nodes {
		if i > 0 {
			switch n.(type) {
			case ast.Expr:
				buf.WriteString(", ")
			case ast.Decl:
				buf.WriteString("\n\n")
			default:
				buf.WriteString("\n")
			}
		}

		if err := format.Node(&buf, layout, n); err != nil {
			return "", fmt.Errorf("quote: print %T: %w", n, err)
		}
	}

	return buf.String(), nil
}

// String implements fmt.Stringer. Fragments carrying an error print the error.
func (f Fragment) String() string {
	src, err := f.Source()
	if err != nil {
		return "<error: " + err.Error() + ">"
	}

	return src
}

func mergeImports(a, b map[string]string) map[string]string {
	if len(a)+len(b) == 0 {
		return nil
	}

	out := make(map[string]string, len(a)+len(b))
	maps.Copy(out, a)
	maps.Copy(out, b)

	return out
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	return nil
}
