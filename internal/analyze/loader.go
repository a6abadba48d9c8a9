package analyze

import (
	"fmt"
	"go/ast"
	"go/constant"
	"go/token"
	"path/filepath"
	"reflect"
	"strconv"

	"golang.org/x/tools/go/packages"

	"github.com/ahl/transmogrify/internal/diagnostic"
	"github.com/ahl/transmogrify/primitive"
)

// LoadMode specifies what information to load from packages.
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedCompiledGoFiles |
	packages.NeedSyntax

// Analyzer loads Go packages and builds a type graph.
//
// Analysis is syntactic: declarations are classified from their source
// alone, without type checking, so packages whose generated companion files
// are stale or missing can still be analyzed.
type Analyzer struct {
	graph *TypeGraph

	// Dir is the directory package patterns are resolved in. Empty means the
	// current directory.
	Dir string
	// BuildFlags are passed to the build system, e.g. "-tags=integration".
	BuildFlags []string
}

// NewAnalyzer creates a new Analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		graph: NewTypeGraph(),
	}
}

// LoadPackages loads the specified packages and builds the type graph.
// Patterns are standard Go package patterns (e.g., "./shapes", "github.com/ahl/transmogrify/examples/...").
func (a *Analyzer) LoadPackages(patterns ...string) (*TypeGraph, error) {
	cfg := &packages.Config{
		Mode:       LoadMode,
		Dir:        a.Dir,
		BuildFlags: a.BuildFlags,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	// Check for package errors
	var errs []error
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			errs = append(errs, e)
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("package errors: %v", errs)
	}

	for _, pkg := range pkgs {
		a.AnalyzeFiles(pkg.PkgPath, pkg.Name, pkg.Fset, pkg.Syntax)
	}

	return a.graph, nil
}

// Graph returns the current type graph.
func (a *Analyzer) Graph() *TypeGraph {
	return a.graph
}

// AnalyzeFiles adds the declarations of one parsed package to the graph and
// returns its package info. Files are visited in the order given.
func (a *Analyzer) AnalyzeFiles(pkgPath, name string, fset *token.FileSet, files []*ast.File) *PackageInfo {
	pkgInfo := &PackageInfo{
		Path:  pkgPath,
		Name:  name,
		Fset:  fset,
		Files: files,
	}
	if len(files) > 0 {
		pkgInfo.Dir = filepath.Dir(fset.Position(files[0].Package).Filename)
	}

	s := &scan{
		graph:   a.graph,
		pkg:     pkgInfo,
		fset:    fset,
		byName:  make(map[string]*TypeInfo),
		methods: make(map[string]map[string]bool),
		consts:  make(map[string][]ConstInfo),

		constTypes:  make(map[string]string),
		constValues: make(map[string]constant.Value),
	}

	s.collectTypes(files)
	s.collectMethods(files)
	s.collectConsts(files)

	// Interfaces last: their variants are classified types.
	for _, info := range s.order {
		if _, ok := unparen(info.Spec.Type).(*ast.InterfaceType); !ok || info.Spec.Assign.IsValid() {
			s.classify(info)
		}
	}
	for _, info := range s.order {
		if it, ok := unparen(info.Spec.Type).(*ast.InterfaceType); ok && !info.Spec.Assign.IsValid() {
			s.classifyInterface(info, it)
		}
	}

	for _, info := range s.order {
		a.graph.Types[info.ID] = info
		pkgInfo.Types = append(pkgInfo.Types, info.ID)
	}

	a.graph.Packages[pkgPath] = pkgInfo

	return pkgInfo
}

// Lookup returns the type declared in a package, or an error naming it.
func (a *Analyzer) Lookup(pkgPath, typeName string) (*TypeInfo, error) {
	id := TypeID{PkgPath: pkgPath, Name: typeName}
	info := a.graph.GetType(id)
	if info == nil {
		return nil, fmt.Errorf("type %s not found", id)
	}

	return info, nil
}

// scan holds the per-package state of one AnalyzeFiles call.
type scan struct {
	graph   *TypeGraph
	pkg     *PackageInfo
	fset    *token.FileSet
	order   []*TypeInfo
	byName  map[string]*TypeInfo
	methods map[string]map[string]bool // receiver type -> method -> pointer receiver
	consts  map[string][]ConstInfo     // type -> typed constants

	constTypes  map[string]string         // constant -> type
	constValues map[string]constant.Value // constant -> value, when known
}

func (s *scan) collectTypes(files []*ast.File) {
	for _, file := range files {
		for _, decl := range file.Decls {
			gen, ok := decl.(*ast.GenDecl)
			if !ok || gen.Tok != token.TYPE {
				continue
			}

			for _, spec := range gen.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if !ok || ts.Name.Name == "_" {
					continue
				}

				doc := ts.Doc
				if doc == nil && !gen.Lparen.IsValid() {
					doc = gen.Doc
				}

				info := &TypeInfo{
					ID:         TypeID{PkgPath: s.pkg.Path, Name: ts.Name.Name},
					Exported:   ts.Name.IsExported(),
					TypeParams: typeParams(ts.TypeParams),
					Directives: ParseDirectives(s.fset, doc),
					Spec:       ts,
					File:       file,
					Span:       diagnostic.SpanOf(s.fset, ts),
				}

				s.order = append(s.order, info)
				s.byName[ts.Name.Name] = info
			}
		}
	}
}

func typeParams(list *ast.FieldList) []TypeParam {
	if list == nil {
		return nil
	}

	var out []TypeParam
	for _, f := range list.List {
		for _, n := range f.Names {
			out = append(out, TypeParam{Name: n.Name, Constraint: f.Type})
		}
	}

	return out
}

func (s *scan) collectMethods(files []*ast.File) {
	for _, file := range files {
		for _, decl := range file.Decls {
			fd, ok := decl.(*ast.FuncDecl)
			if !ok || fd.Recv == nil || len(fd.Recv.List) != 1 {
				continue
			}

			name, pointer := receiverName(fd.Recv.List[0].Type)
			if name == "" {
				continue
			}

			if s.methods[name] == nil {
				s.methods[name] = make(map[string]bool)
			}
			s.methods[name][fd.Name.Name] = pointer
		}
	}
}

// receiverName returns the base type name of a receiver type expression.
func receiverName(expr ast.Expr) (string, bool) {
	pointer := false
	if star, ok := expr.(*ast.StarExpr); ok {
		pointer = true
		expr = star.X
	}

	switch t := unparen(expr).(type) {
	case *ast.Ident:
		return t.Name, pointer
	case *ast.IndexExpr:
		if id, ok := t.X.(*ast.Ident); ok {
			return id.Name, pointer
		}
	case *ast.IndexListExpr:
		if id, ok := t.X.(*ast.Ident); ok {
			return id.Name, pointer
		}
	}

	return "", false
}

// collectConsts records typed constants per local type. Implicit repetition
// inside a const block carries the type and values of the last explicit spec,
// evaluated with the iota of the repeating spec.
func (s *scan) collectConsts(files []*ast.File) {
	for _, file := range files {
		for _, decl := range file.Decls {
			gen, ok := decl.(*ast.GenDecl)
			if !ok || gen.Tok != token.CONST {
				continue
			}

			var typ ast.Expr
			var values []ast.Expr

			for iota, spec := range gen.Specs {
				vs, ok := spec.(*ast.ValueSpec)
				if !ok {
					continue
				}

				if vs.Type != nil || len(vs.Values) > 0 {
					typ, values = vs.Type, vs.Values
					if typ == nil {
						typ = s.inferType(values)
					}
				}

				s.addConsts(vs, typ, values, s.constSpecValues(vs, values, iota))
			}
		}
	}
}

// constSpecValues evaluates the constants of one spec and remembers them for
// the specs that refer to them.
func (s *scan) constSpecValues(vs *ast.ValueSpec, values []ast.Expr, iota int) []constant.Value {
	out := make([]constant.Value, len(vs.Names))

	for i, n := range vs.Names {
		if i < len(values) {
			out[i] = s.evalConst(values[i], iota)
		}

		if n.Name != "_" && out[i] != nil {
			s.constValues[n.Name] = out[i]
		}
	}

	return out
}

// addConsts records the constants of a spec of a local type. Only the first
// constant of every value becomes a case of the enumeration; a switch with
// two cases of equal value does not compile.
func (s *scan) addConsts(vs *ast.ValueSpec, typ ast.Expr, values []ast.Expr, vals []constant.Value) {
	id, ok := typ.(*ast.Ident)
	if !ok || s.byName[id.Name] == nil {
		return
	}

	for i, n := range vs.Names {
		if n.Name == "_" {
			continue
		}

		s.constTypes[n.Name] = id.Name

		if i < len(values) {
			if alias, ok := values[i].(*ast.Ident); ok && alias.Name != "iota" {
				s.graph.Diagnostics.AddInfo(diagnostic.CodeSkippedConstant,
					fmt.Sprintf("constant %s is an alias of %s and is skipped", n.Name, alias.Name),
					id.Name, diagnostic.SpanOf(s.fset, n))

				continue
			}
		}

		if first, ok := s.equalConst(id.Name, vals[i]); ok {
			s.graph.Diagnostics.AddInfo(diagnostic.CodeSkippedConstant,
				fmt.Sprintf("constant %s has the same value as %s and is skipped", n.Name, first),
				id.Name, diagnostic.SpanOf(s.fset, n))

			continue
		}

		s.consts[id.Name] = append(s.consts[id.Name], ConstInfo{
			Name:     n.Name,
			Exported: n.IsExported(),
			Value:    vals[i],
			Span:     diagnostic.SpanOf(s.fset, n),
		})
	}
}

// equalConst returns the recorded constant of typeName equal to v.
func (s *scan) equalConst(typeName string, v constant.Value) (string, bool) {
	if v == nil {
		return "", false
	}

	for _, c := range s.consts[typeName] {
		if c.Value != nil && sameConst(c.Value, v) {
			return c.Name, true
		}
	}

	return "", false
}

// inferType returns T for a single untyped value of the form T(x), or the
// type of the constant a single identifier refers to.
func (s *scan) inferType(values []ast.Expr) ast.Expr {
	if len(values) != 1 {
		return nil
	}

	switch v := values[0].(type) {
	case *ast.CallExpr:
		if id, ok := v.Fun.(*ast.Ident); ok && len(v.Args) == 1 {
			return id
		}
	case *ast.Ident:
		if name, ok := s.constTypes[v.Name]; ok {
			return ast.NewIdent(name)
		}
	}

	return nil
}

func (s *scan) classify(info *TypeInfo) {
	ts := info.Spec

	if ts.Assign.IsValid() {
		info.Kind = TypeKindAlias
		info.Underlying = ts.Type

		return
	}

	switch t := unparen(ts.Type).(type) {
	case *ast.StructType:
		info.Kind = TypeKindStruct
		info.Fields = s.fields(t)

	case *ast.FuncType:
		info.Kind = TypeKindOpaque
		info.Reason = "function types"

	case *ast.ChanType:
		info.Kind = TypeKindOpaque
		info.Reason = "channel types"

	default:
		info.Kind = TypeKindNewtype
		info.Underlying = ts.Type

		id, ok := t.(*ast.Ident)
		if !ok || s.byName[id.Name] != nil {
			return
		}

		if kind := primitive.FromName(id.Name); kind.IsBasic() && len(s.consts[ts.Name.Name]) > 0 {
			info.Kind = TypeKindEnum
			info.Basic = kind
			info.Consts = s.consts[ts.Name.Name]
		}
	}
}

func (s *scan) fields(st *ast.StructType) []FieldInfo {
	var out []FieldInfo

	index := 0
	for _, f := range st.Fields.List {
		var tag string
		if f.Tag != nil {
			tag, _ = strconv.Unquote(f.Tag.Value)
		}

		if len(f.Names) == 0 {
			name := embeddedName(f.Type)
			out = append(out, FieldInfo{
				Name:     name,
				Exported: ast.IsExported(name),
				Type:     f.Type,
				Tag:      reflect.StructTag(tag),
				Embedded: true,
				Index:    index,
				Span:     diagnostic.SpanOf(s.fset, f),
			})
			index++

			continue
		}

		for _, n := range f.Names {
			if n.Name != "_" {
				out = append(out, FieldInfo{
					Name:     n.Name,
					Exported: n.IsExported(),
					Type:     f.Type,
					Tag:      reflect.StructTag(tag),
					Index:    index,
					Span: diagnostic.Span{
						Start: s.fset.Position(n.Pos()),
						End:   s.fset.Position(f.Type.End()),
					},
				})
			}
			index++
		}
	}

	return out
}

// embeddedName returns the field name Go gives an embedded type.
func embeddedName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return embeddedName(t.X)
	case *ast.ParenExpr:
		return embeddedName(t.X)
	case *ast.IndexExpr:
		return embeddedName(t.X)
	case *ast.IndexListExpr:
		return embeddedName(t.X)
	case *ast.SelectorExpr:
		return t.Sel.Name
	case *ast.Ident:
		return t.Name
	}

	return "_"
}

func (s *scan) classifyInterface(info *TypeInfo, it *ast.InterfaceType) {
	methods, union := s.interfaceMethods(it, map[string]bool{info.ID.Name: true})

	switch {
	case union != "":
		info.Kind = TypeKindUnion
		info.Reason = union

		return
	case len(methods) == 0:
		info.Kind = TypeKindOpaque
		info.Reason = "empty interfaces"

		return
	}

	info.Kind = TypeKindSealed
	info.Methods = methods

	for _, candidate := range s.order {
		if candidate == info || candidate.Kind == TypeKindAlias || candidate.Kind == TypeKindOpaque {
			continue
		}
		if _, ok := unparen(candidate.Spec.Type).(*ast.InterfaceType); ok {
			continue
		}

		pointer, ok := s.implements(candidate.ID.Name, methods)
		if !ok {
			continue
		}

		if candidate.IsGeneric() {
			s.graph.Diagnostics.AddWarning(diagnostic.CodeGenericSum,
				fmt.Sprintf("generic type %s implements %s but cannot be matched without type arguments; skipped",
					candidate.ID.Name, info.ID.Name),
				info.ID.Name, candidate.Span)

			continue
		}

		info.Variants = append(info.Variants, VariantInfo{Type: candidate, Pointer: pointer})
	}

	if len(info.Variants) == 0 {
		info.Kind = TypeKindOpaque
		info.Reason = "interfaces no type of the package implements"
	}
}

// interfaceMethods returns the method names of an interface, following
// embedded interfaces of the same package. A non-empty union names the
// type-set element that makes the interface a constraint.
func (s *scan) interfaceMethods(it *ast.InterfaceType, seen map[string]bool) ([]string, string) {
	var methods []string

	for _, f := range it.Methods.List {
		if len(f.Names) > 0 {
			for _, n := range f.Names {
				methods = append(methods, n.Name)
			}

			continue
		}

		switch t := unparen(f.Type).(type) {
		case *ast.BinaryExpr:
			return nil, "union interfaces"
		case *ast.UnaryExpr:
			return nil, "approximation constraints"
		case *ast.Ident:
			local := s.byName[t.Name]
			if local == nil {
				switch t.Name {
				case "error":
					methods = append(methods, "Error")
				case "comparable":
					return nil, "comparable constraints"
				case "any":
				default:
					if primitive.FromName(t.Name) != 0 {
						return nil, "type-set interfaces"
					}
				}

				continue
			}

			embedded, ok := unparen(local.Spec.Type).(*ast.InterfaceType)
			if !ok {
				return nil, "type-set interfaces"
			}
			if seen[t.Name] {
				continue
			}
			seen[t.Name] = true

			more, union := s.interfaceMethods(embedded, seen)
			if union != "" {
				return nil, union
			}
			methods = append(methods, more...)
		case *ast.ArrayType, *ast.MapType, *ast.StructType, *ast.FuncType, *ast.ChanType, *ast.StarExpr:
			return nil, "type-set interfaces"
		}
	}

	return methods, ""
}

// implements reports whether the named type declares every method, and
// whether any of them is on the pointer receiver.
func (s *scan) implements(name string, methods []string) (bool, bool) {
	declared := s.methods[name]
	pointer := false

	for _, m := range methods {
		p, ok := declared[m]
		if !ok {
			return false, false
		}
		pointer = pointer || p
	}

	return pointer, true
}

func unparen(expr ast.Expr) ast.Expr {
	for {
		p, ok := expr.(*ast.ParenExpr)
		if !ok {
			return expr
		}
		expr = p.X
	}
}
