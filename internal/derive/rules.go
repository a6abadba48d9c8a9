package derive

import (
	"fmt"
	"go/ast"
	"strings"

	"github.com/ahl/transmogrify/internal/analyze"
	"github.com/ahl/transmogrify/internal/common"
	"github.com/ahl/transmogrify/internal/gen"
	"github.com/ahl/transmogrify/quote"
)

// decl is one generated declaration with its doc comment.
type decl struct {
	doc   string
	decls quote.Fragment
}

// declsFor returns the declarations generated for t.
func declsFor(t *analyze.TypeInfo, cfg Config) []decl {
	if t.Kind == analyze.TypeKindSealed {
		return sealedDecls(t, cfg)
	}

	var body quote.Fragment

	self := quote.Expr("v.TransmogrifyType()", nil)

	if t.Kind == analyze.TypeKindEnum {
		body = enumBody(t, cfg, self)
	} else {
		body = product{info: t, typ: self}.body()
	}

	return []decl{
		{
			doc: "Transmogrify implements transmogrify.Transmogrifier.",
			decls: quote.Decls("func (v $recv) Transmogrify() $fragment {\n\t$body\n}", quote.Bind{
				"recv":     receiverType(t),
				"fragment": gen.FragmentType(),
				"body":     body,
			}),
		},
		{
			doc: "TransmogrifyType implements transmogrify.TypeTransmogrifier.",
			decls: quote.Decls("func ($recv) TransmogrifyType() $fragment {\n\treturn $typ\n}", quote.Bind{
				"recv":     receiverType(t),
				"fragment": gen.FragmentType(),
				"typ":      gen.TypeCall(destination(cfg, t.ID.Name), typeParamNames(t)),
			}),
		},
	}
}

// product builds a value of a struct or defined type from v.
type product struct {
	info    *analyze.TypeInfo
	typ     quote.Fragment // code evaluating to the destination type
	pointer bool           // v points to the value
}

func (p product) body() quote.Fragment {
	switch {
	case p.info.Kind == analyze.TypeKindStruct && len(p.info.Fields) > 0:
		return p.named()
	case p.info.Kind == analyze.TypeKindStruct:
		return returns(gen.Construct(p.address(gen.NamedTemplate(typeHole, nil)), []gen.Binding{{Name: typeHole, Value: p.typ}}))
	default:
		return p.positional()
	}
}

func (p product) named() quote.Fragment {
	names := newNamer(typeParamNames(p.info)...)

	var (
		stmts  []quote.Fragment
		fields []gen.Field
		binds  = []gen.Binding{{Name: typeHole, Value: p.typ}}
	)

	for _, f := range p.info.Fields {
		local := names.name(f.Name)

		stmts = append(stmts, quote.Stmts("$local := $of", quote.Bind{
			"local": quote.Ident(local),
			"of":    gen.Of(quote.Node(&ast.SelectorExpr{X: ast.NewIdent(receiverName), Sel: ast.NewIdent(f.Name)})),
		}))
		fields = append(fields, gen.Field{Key: f.Name, Hole: local})
		binds = append(binds, gen.Binding{Name: local, Value: quote.Ident(local)})
	}

	stmts = append(stmts, returns(gen.Construct(p.address(gen.NamedTemplate(typeHole, fields)), binds)))

	return quote.List(stmts...)
}

// positional converts v to its underlying type and wraps the generated
// element in a conversion to the destination type.
func (p product) positional() quote.Fragment {
	arg := receiverName
	if p.pointer {
		arg = "*" + arg
	}

	conv := "$U(" + arg + ")"
	switch p.info.Underlying.(type) {
	case *ast.StarExpr, *ast.FuncType, *ast.ChanType:
		conv = "($U)(" + arg + ")"
	}

	tmpl := "$" + typeHole + "($" + elementName + ")"
	if p.pointer {
		tmpl = "func() *$" + typeHole + " { v := " + tmpl + "; return &v }()"
	}

	return quote.List(
		quote.Stmts("$local := $of", quote.Bind{
			"local": quote.Ident(elementName),
			"of":    gen.Of(quote.Expr(conv, quote.Bind{"U": gen.SourceExpr(p.info.Underlying, p.info.Imports())})),
		}),
		returns(gen.Construct(tmpl, []gen.Binding{
			{Name: typeHole, Value: p.typ},
			{Name: elementName, Value: quote.Ident(elementName)},
		})),
	)
}

func (p product) address(tmpl string) string {
	if p.pointer {
		return "&" + tmpl
	}

	return tmpl
}

// enumBody switches over the constants of t. Values outside the declared
// constants are built as conversions.
func enumBody(t *analyze.TypeInfo, cfg Config, self quote.Fragment) quote.Fragment {
	var tmpl strings.Builder

	binds := quote.Bind{"fallback": product{info: t, typ: self}.positional()}

	tmpl.WriteString("switch v {\n")

	for i, c := range t.Consts {
		fmt.Fprintf(&tmpl, "case $c%d:\n\treturn $r%d\n", i, i)

		binds[fmt.Sprintf("c%d", i)] = quote.Ident(c.Name)
		binds[fmt.Sprintf("r%d", i)] = gen.QualCall(destination(cfg, c.Name))
	}

	tmpl.WriteString("default:\n\t$fallback\n}")

	return quote.Stmts(tmpl.String(), binds)
}

// sealedDecls returns the generation function of a sealed interface and the
// init function registering it.
func sealedDecls(t *analyze.TypeInfo, cfg Config) []decl {
	name := "Transmogrify" + t.ID.Name

	var tmpl strings.Builder

	binds := quote.Bind{
		"fn":       quote.Ident(name),
		"iface":    quote.Ident(t.ID.Name),
		"fragment": gen.FragmentType(),
		"nil":      nilFragment(),
		"errorf":   gen.Quote("Errorf"),
		"msg":      gen.String("transmogrify: %T is not a variant of " + t.ID.Name),
	}

	tmpl.WriteString("func $fn(v $iface) $fragment {\n")
	tmpl.WriteString("\tswitch v := v.(type) {\n")
	tmpl.WriteString("\tcase nil:\n\t\treturn $nil\n")

	for i, variant := range t.Variants {
		fmt.Fprintf(&tmpl, "\tcase $t%d:\n\t\t$b%d\n", i, i)

		var caseType ast.Expr = ast.NewIdent(variant.Type.ID.Name)
		if variant.Pointer {
			caseType = &ast.StarExpr{X: caseType}
		}

		binds[fmt.Sprintf("t%d", i)] = quote.Node(caseType)
		binds[fmt.Sprintf("b%d", i)] = variantBody(variant, cfg)
	}

	tmpl.WriteString("\tdefault:\n\t\treturn $errorf($msg, v)\n\t}\n}")

	register := quote.Decls("func init() {\n\t$register($fn)\n\t$registerType[$iface]($typ)\n}", quote.Bind{
		"register":     gen.Runtime("Register"),
		"registerType": gen.Runtime("RegisterType"),
		"fn":           quote.Ident(name),
		"iface":        quote.Ident(t.ID.Name),
		"typ":          gen.QualCall(destination(cfg, t.ID.Name)),
	})

	return []decl{
		{doc: name + " returns a fragment that reconstructs v.", decls: quote.Decls(tmpl.String(), binds)},
		{decls: register},
	}
}

// variantBody applies the product rule of a variant inside a type switch arm.
// Enumerations among the variants are built as conversions.
func variantBody(variant analyze.VariantInfo, cfg Config) quote.Fragment {
	p := product{
		info:    variant.Type,
		typ:     gen.QualCall(destination(cfg, variant.Type.ID.Name)),
		pointer: variant.Pointer,
	}

	var body quote.Fragment
	if p.info.Kind == analyze.TypeKindEnum {
		body = p.positional()
	} else {
		body = p.body()
	}

	if !variant.Pointer {
		return body
	}

	return quote.List(
		quote.Stmts("if v == nil {\n\treturn $nil\n}", quote.Bind{"nil": nilFragment()}),
		body,
	)
}

func returns(f quote.Fragment) quote.Fragment {
	return quote.Stmts("return $f", quote.Bind{"f": f})
}

// nilFragment is the code `quote.Ident("nil")`.
func nilFragment() quote.Fragment {
	return quote.Expr("$ident($nil)", quote.Bind{"ident": gen.Quote("Ident"), "nil": gen.String("nil")})
}

func destination(cfg Config, name string) common.TypePath {
	return common.TypePath{Pkg: cfg.Prefix, Segments: []string{name}}
}

func typeParamNames(t *analyze.TypeInfo) []string {
	names := make([]string, len(t.TypeParams))
	for i, p := range t.TypeParams {
		names[i] = p.Name
	}

	return names
}

// receiverType returns the type of generated receivers: the type name
// instantiated with its own type parameters.
func receiverType(t *analyze.TypeInfo) quote.Fragment {
	var expr ast.Expr = ast.NewIdent(t.ID.Name)

	params := typeParamNames(t)

	switch len(params) {
	case 0:
	case 1:
		expr = &ast.IndexExpr{X: expr, Index: ast.NewIdent(params[0])}
	default:
		indices := make([]ast.Expr, len(params))
		for i, p := range params {
			indices[i] = ast.NewIdent(p)
		}

		expr = &ast.IndexListExpr{X: expr, Indices: indices}
	}

	return quote.Node(expr)
}
