package derive

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"

	"github.com/ahl/transmogrify/internal/analyze"
	"github.com/ahl/transmogrify/internal/common"
	"github.com/ahl/transmogrify/internal/diagnostic"
)

const notDerivable = "transmogrify may not be derived from "

// reject returns the fatal error for shapes that cannot be derived.
func reject(t *analyze.TypeInfo) *diagnostic.Error {
	switch t.Kind {
	case analyze.TypeKindStruct, analyze.TypeKindNewtype, analyze.TypeKindEnum:
		return nil
	case analyze.TypeKindSealed:
		if t.IsGeneric() {
			return diagnostic.Fatalf(diagnostic.CodeGenericSum, t.Span,
				notDerivable+"generic interfaces").In(t.ID.Name)
		}

		return nil
	case analyze.TypeKindUnion:
		return diagnostic.Fatalf(diagnostic.CodeUnionType, t.Span, notDerivable+"%s", t.Reason).In(t.ID.Name)
	case analyze.TypeKindAlias:
		return diagnostic.Fatalf(diagnostic.CodeOpaqueType, t.Span, notDerivable+"type aliases").In(t.ID.Name)
	case analyze.TypeKindOpaque:
		return diagnostic.Fatalf(diagnostic.CodeOpaqueType, t.Span, notDerivable+"%s", t.Reason).In(t.ID.Name)
	default:
		return diagnostic.Fatalf(diagnostic.CodeOpaqueType, t.Span, notDerivable+"%s types", t.Kind).In(t.ID.Name)
	}
}

// validate reports the non-fatal problems of t to d.
func validate(fset *token.FileSet, t *analyze.TypeInfo, d *diagnostic.Diagnostics) {
	decl := t.ID.Name

	if !t.Exported {
		span := t.Span
		if t.Spec != nil {
			span = diagnostic.SpanOf(fset, t.Spec.Name)
		}

		d.AddError(diagnostic.CodeUnexportedType, fmt.Sprintf("type %s must be exported", decl), decl, span)
	}

	if t.Kind != analyze.TypeKindStruct {
		return
	}

	imports := t.Imports()

	for _, f := range t.Fields {
		if !f.Exported {
			d.AddError(diagnostic.CodeUnexportedField, fmt.Sprintf("field %s must be exported", f.Name), decl, f.Span)
		}

		if reason := ungenerable(f.Type, imports); reason != "" {
			d.AddError(diagnostic.CodeUngenerableField,
				fmt.Sprintf("field %s of type %s cannot be generated: %s", f.Name, types.ExprString(f.Type), reason),
				decl, f.Span)
		}
	}
}

// ungenerable reports why no value of the type expr can be written as a
// literal, or "" when it can.
func ungenerable(expr ast.Expr, imports common.Imports) string {
	switch e := expr.(type) {
	case *ast.FuncType:
		return "func values"
	case *ast.ChanType:
		return "channels"
	case *ast.StructType:
		if e.Fields != nil && len(e.Fields.List) > 0 {
			return "anonymous structs"
		}
	case *ast.InterfaceType:
		if e.Methods != nil {
			for _, m := range e.Methods.List {
				if _, ok := m.Type.(*ast.FuncType); ok {
					return "interface literals with methods"
				}
			}
		}
	case *ast.SelectorExpr:
		if x, ok := e.X.(*ast.Ident); ok && imports[x.Name] == "unsafe" && e.Sel.Name == "Pointer" {
			return "unsafe pointers"
		}
	case *ast.StarExpr:
		return ungenerable(e.X, imports)
	case *ast.ParenExpr:
		return ungenerable(e.X, imports)
	case *ast.ArrayType:
		return ungenerable(e.Elt, imports)
	case *ast.MapType:
		if reason := ungenerable(e.Key, imports); reason != "" {
			return reason
		}

		return ungenerable(e.Value, imports)
	}

	return ""
}
