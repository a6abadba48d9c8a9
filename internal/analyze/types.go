package analyze

import (
	"go/ast"
	"go/constant"
	"go/token"
	"reflect"

	"github.com/ahl/transmogrify/internal/common"
	"github.com/ahl/transmogrify/internal/diagnostic"
	"github.com/ahl/transmogrify/primitive"
)

// TypeID uniquely identifies a type by its package path and name.
type TypeID struct {
	PkgPath string // e.g., "github.com/ahl/transmogrify/examples/shapes"
	Name    string // e.g., "Circle"
}

// String returns a human-readable representation of the TypeID.
func (t TypeID) String() string {
	if t.PkgPath == "" {
		return t.Name
	}

	return t.PkgPath + "." + t.Name
}

// TypeKind represents the shape of a declared type.
type TypeKind int

const (
	TypeKindUnknown TypeKind = iota
	TypeKindStruct           // struct type: named fields, or none
	TypeKindNewtype          // defined non-struct type with one positional element
	TypeKindEnum             // defined basic type with typed constants
	TypeKindSealed           // interface implemented by types of the same package
	TypeKindUnion            // interface with type-set elements
	TypeKindOpaque           // empty interface, func or chan
	TypeKindAlias            // alias declaration (type A = B)
)

// String returns a human-readable representation of the TypeKind.
func (k TypeKind) String() string {
	switch k {
	case TypeKindStruct:
		return "struct"
	case TypeKindNewtype:
		return "newtype"
	case TypeKindEnum:
		return "enum"
	case TypeKindSealed:
		return "sealed"
	case TypeKindUnion:
		return "union"
	case TypeKindOpaque:
		return "opaque"
	case TypeKindAlias:
		return "alias"
	default:
		return common.UnknownStr
	}
}

// IsProduct reports whether values of the kind are built from elements.
func (k TypeKind) IsProduct() bool {
	return k == TypeKindStruct || k == TypeKindNewtype
}

// IsSum reports whether values of the kind are one of several variants.
func (k TypeKind) IsSum() bool {
	return k == TypeKindEnum || k == TypeKindSealed
}

// TypeInfo describes a type declared in an analyzed package.
type TypeInfo struct {
	ID         TypeID             // Unique identifier
	Kind       TypeKind           // Shape of the type
	Exported   bool               // Whether the type name is exported
	TypeParams []TypeParam        // Type parameters, in order
	Fields     []FieldInfo        // For structs, the list of fields
	Underlying ast.Expr           // For newtypes and enums, the underlying type expression
	Basic      primitive.KindEnum // For enums, the predeclared underlying kind
	Consts     []ConstInfo        // For enums, the typed constants in declaration order
	Methods    []string           // For sealed interfaces, the method set variants must declare
	Variants   []VariantInfo      // For sealed interfaces, the implementing types in declaration order
	Directives []Directive        // //transmogrify: directives from the doc comment
	Reason     string             // For union and opaque kinds, what makes the type ungenerable
	Spec       *ast.TypeSpec      // Declaration syntax
	File       *ast.File          // File holding the declaration
	Span       diagnostic.Span    // Span of the type spec
}

// IsNamed returns true if this type has a name (TypeID is set).
func (t *TypeInfo) IsNamed() bool {
	return t.ID.Name != ""
}

// IsGeneric reports whether the type declares type parameters.
func (t *TypeInfo) IsGeneric() bool {
	return len(t.TypeParams) > 0
}

// Imports returns the imports of the file declaring the type.
func (t *TypeInfo) Imports() common.Imports {
	if t.File == nil {
		return common.Imports{}
	}

	return common.FileImports(t.File)
}

// TypeParam is a type parameter of a generic type.
type TypeParam struct {
	Name       string
	Constraint ast.Expr
}

// FieldInfo describes a struct field.
type FieldInfo struct {
	Name     string            // Go field name (the type name for embedded fields)
	Exported bool              // Whether the field is exported
	Type     ast.Expr          // Field type expression
	Tag      reflect.StructTag // Raw struct tag
	Embedded bool              // Whether the field is embedded (anonymous)
	Index    int               // Field index in the struct
	Span     diagnostic.Span   // Span of the field declaration
}

// ConstInfo describes a typed constant of an enumeration.
type ConstInfo struct {
	Name     string
	Exported bool
	Value    constant.Value // nil when it cannot be evaluated from source alone
	Span     diagnostic.Span
}

// VariantInfo describes a type implementing a sealed interface.
type VariantInfo struct {
	Type    *TypeInfo
	Pointer bool // methods are declared on the pointer receiver
}

// TypeGraph holds all analyzed types from loaded packages.
type TypeGraph struct {
	// Types maps TypeID to TypeInfo for all declared types.
	Types map[TypeID]*TypeInfo
	// Packages maps package paths to their package info.
	Packages map[string]*PackageInfo
	// Diagnostics collects what analysis noticed but could not act on.
	Diagnostics diagnostic.Diagnostics
}

// NewTypeGraph creates a new empty TypeGraph.
func NewTypeGraph() *TypeGraph {
	return &TypeGraph{
		Types:    make(map[TypeID]*TypeInfo),
		Packages: make(map[string]*PackageInfo),
	}
}

// GetType returns the TypeInfo for a given TypeID, or nil if not found.
func (g *TypeGraph) GetType(id TypeID) *TypeInfo {
	return g.Types[id]
}

// PackageInfo holds information about a loaded package.
type PackageInfo struct {
	Path  string         // Import path
	Name  string         // Package name
	Dir   string         // Directory holding the package files
	Fset  *token.FileSet // File set of the parsed files
	Files []*ast.File    // Parsed files
	Types []TypeID       // Types declared in this package, in declaration order
}
