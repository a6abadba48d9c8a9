package gen

import (
	"fmt"
	"go/ast"
	"go/token"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ahl/transmogrify/internal/common"
	"github.com/ahl/transmogrify/quote"
)

// Import paths of the packages generated code calls into.
const (
	RuntimePkg = "github.com/ahl/transmogrify"
	QuotePkg   = "github.com/ahl/transmogrify/quote"
)

// Runtime returns a reference to a declaration of the transmogrify package.
func Runtime(name string) quote.Fragment {
	return quote.Qual(RuntimePkg, name)
}

// Quote returns a reference to a declaration of the quote package.
func Quote(name string) quote.Fragment {
	return quote.Qual(QuotePkg, name)
}

// FragmentType is the result type of every generated method.
func FragmentType() quote.Fragment {
	return Quote("Fragment")
}

// String returns a string literal.
func String(s string) quote.Fragment {
	return quote.Lit(token.STRING, strconv.Quote(s))
}

// Of returns the generation call `transmogrify.Of(arg)`.
func Of(arg quote.Fragment) quote.Fragment {
	return quote.Expr("$of($arg)", quote.Bind{"of": Runtime("Of"), "arg": arg})
}

// At returns the call `transmogrify.At("file:line:col", field, call)`. A
// failure of call is then reported with where field was bound.
func At(pos token.Position, field string, call quote.Fragment) quote.Fragment {
	where := fmt.Sprintf("%s:%d:%d", filepath.Base(pos.Filename), pos.Line, pos.Column)

	return quote.Expr("$at($pos, $field, $call)", quote.Bind{
		"at":    Runtime("At"),
		"pos":   String(where),
		"field": String(field),
		"call":  call,
	})
}

// TypeFor returns the call `transmogrify.TypeFor[param]()`.
func TypeFor(param string) quote.Fragment {
	return quote.Expr("$typeFor[$param]()", quote.Bind{
		"typeFor": Runtime("TypeFor"),
		"param":   quote.Ident(param),
	})
}

// QualCall returns code that builds the quote.Qual fragment of a path at run
// time.
func QualCall(p common.TypePath) quote.Fragment {
	args := []quote.Fragment{String(p.Pkg)}
	for _, s := range p.Segments {
		args = append(args, String(s))
	}

	return quote.Expr("$qual($args)", quote.Bind{"qual": Quote("Qual"), "args": quote.List(args...)})
}

// TypeCall returns code that builds the type expression of a path at run
// time. Type parameters are filled in with transmogrify.TypeFor.
func TypeCall(p common.TypePath, params []string) quote.Fragment {
	if len(params) == 0 {
		return QualCall(p)
	}

	hole := Hole("T", params)

	var tmpl strings.Builder
	tmpl.WriteString("$" + hole + "[")

	binds := []Binding{{Name: hole, Value: QualCall(p)}}

	for i, param := range params {
		if i > 0 {
			tmpl.WriteString(", ")
		}
		tmpl.WriteString("$" + param)

		binds = append(binds, Binding{Name: param, Value: TypeFor(param)})
	}

	tmpl.WriteString("]")

	return Construct(tmpl.String(), binds)
}

// Binding is one entry of a generated quote.Bind literal.
type Binding struct {
	Name  string
	Value quote.Fragment
}

// Construct returns code for `quote.Expr("<tmpl>", quote.Bind{...})`.
// Bindings keep the order given.
func Construct(tmpl string, binds []Binding) quote.Fragment {
	entries := make([]quote.Fragment, len(binds))
	for i, b := range binds {
		entries[i] = quote.KeyValue(String(b.Name), b.Value)
	}

	return quote.Expr("$expr($tmpl, $bind{$entries})", quote.Bind{
		"expr":    Quote("Expr"),
		"tmpl":    String(tmpl),
		"bind":    Quote("Bind"),
		"entries": quote.List(entries...),
	})
}

// Field is a keyed element of a generated struct literal template.
type Field struct {
	Key  string // field name
	Hole string // placeholder bound to the field value
}

// NamedTemplate returns the quote template `$T{Key: $hole, ...}`.
func NamedTemplate(typeHole string, fields []Field) string {
	var b strings.Builder

	b.WriteString("$" + typeHole + "{")

	for i, f := range fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.Key + ": $" + f.Hole)
	}

	b.WriteString("}")

	return b.String()
}

// Hole returns base, or base followed by underscores, whichever is not taken.
func Hole(base string, taken []string) string {
	used := make(map[string]bool, len(taken))
	for _, t := range taken {
		used[t] = true
	}

	for used[base] {
		base += "_"
	}

	return base
}

// SourceExpr wraps an expression taken from a parsed file. The imports its
// package qualifiers refer to are required by the result.
func SourceExpr(expr ast.Expr, imports common.Imports) quote.Fragment {
	var required []quote.Import

	ast.Inspect(expr, func(n ast.Node) bool {
		sel, ok := n.(*ast.SelectorExpr)
		if !ok {
			return true
		}

		if id, ok := sel.X.(*ast.Ident); ok {
			if p, ok := imports[id.Name]; ok {
				required = append(required, quote.Import{Name: id.Name, Path: p})
			}
		}

		return true
	})

	return quote.Node(expr).Requires(required...)
}
