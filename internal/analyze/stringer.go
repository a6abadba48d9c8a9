package analyze

import (
	"go/types"
	"strings"
)

// TypeStringer provides methods for creating readable shape summaries.
type TypeStringer struct{}

// NewTypeStringer creates a new TypeStringer.
func NewTypeStringer() *TypeStringer {
	return &TypeStringer{}
}

// TypeString returns the declared name of a type with its type parameters,
// e.g. "Pair[K, V]".
func (s *TypeStringer) TypeString(t *TypeInfo) string {
	if t == nil {
		return "<nil>"
	}

	if !t.IsGeneric() {
		return t.ID.Name
	}

	names := make([]string, len(t.TypeParams))
	for i, p := range t.TypeParams {
		names[i] = p.Name
	}

	return t.ID.Name + "[" + strings.Join(names, ", ") + "]"
}

// Shape returns a one-line summary of an analyzed type.
// Examples:
//   - "struct Point{X float64, Y float64}"
//   - "newtype Meters(float64)"
//   - "enum Color(int){Red, Green, Blue}"
//   - "sealed Shape{Circle, Square, *Nothing}"
//   - "union Number: union interfaces"
func (s *TypeStringer) Shape(t *TypeInfo) string {
	if t == nil {
		return "<nil>"
	}

	var b strings.Builder

	b.WriteString(t.Kind.String())
	b.WriteByte(' ')
	b.WriteString(s.TypeString(t))

	switch t.Kind {
	case TypeKindStruct:
		fields := make([]string, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = f.Name + " " + types.ExprString(f.Type)
		}
		b.WriteString("{" + strings.Join(fields, ", ") + "}")

	case TypeKindNewtype, TypeKindAlias:
		b.WriteString("(" + types.ExprString(t.Underlying) + ")")

	case TypeKindEnum:
		consts := make([]string, len(t.Consts))
		for i, c := range t.Consts {
			consts[i] = c.Name
		}
		b.WriteString("(" + t.Basic.GoName() + "){" + strings.Join(consts, ", ") + "}")

	case TypeKindSealed:
		variants := make([]string, len(t.Variants))
		for i, v := range t.Variants {
			variants[i] = v.String()
		}
		b.WriteString("{" + strings.Join(variants, ", ") + "}")

	case TypeKindUnion, TypeKindOpaque:
		b.WriteString(": " + t.Reason)

	case TypeKindUnknown:
	}

	return b.String()
}

// String returns the variant as it appears in a type switch.
func (v VariantInfo) String() string {
	if v.Type == nil {
		return "<nil>"
	}

	if v.Pointer {
		return "*" + v.Type.ID.Name
	}

	return v.Type.ID.Name
}
