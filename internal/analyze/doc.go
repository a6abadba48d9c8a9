// Package analyze provides package loading and shape extraction.
//
// It uses golang.org/x/tools/go/packages to parse packages and classifies
// every top-level type declaration from its syntax alone.
//
// Key types:
//   - TypeID: package import path + type name
//   - TypeInfo: describes the shape (struct/newtype/enum/sealed/union/opaque/alias)
//   - FieldInfo: describes field name, type expression, tags, and embedding
//   - Directive: a //transmogrify: comment attached to a declaration
package analyze
