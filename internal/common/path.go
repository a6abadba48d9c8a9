package common

import (
	"errors"
	"fmt"
	"go/ast"
	"slices"
	"strconv"
	"strings"
)

// SelfName is the identifier that stands for the implementing type inside
// skeleton patterns and constructed expressions.
const SelfName = "Self"

// ErrNotPath is returned when an expression is not a plain identifier or
// selector chain.
var ErrNotPath = errors.New("not a path")

// TypePath is a generics-stripped lexical reference to a type or to another
// package-level declaration, optionally followed by member selectors.
type TypePath struct {
	Pkg      string   // import path, empty for the current package
	Segments []string // type name followed by member selectors
}

// IsZero reports whether the path has no segments.
func (p TypePath) IsZero() bool {
	return len(p.Segments) == 0
}

// Name returns the last segment of the path.
func (p TypePath) Name() string {
	if len(p.Segments) == 0 {
		return ""
	}

	return p.Segments[len(p.Segments)-1]
}

// Rehome returns a copy of the path that lives in pkg.
func (p TypePath) Rehome(pkg string) TypePath {
	return TypePath{Pkg: pkg, Segments: slices.Clone(p.Segments)}
}

// Member returns a copy of the path extended with the given selectors.
func (p TypePath) Member(names ...string) TypePath {
	return TypePath{Pkg: p.Pkg, Segments: append(slices.Clone(p.Segments), names...)}
}

// String renders the path as it appears in Go source, using the lexical
// package alias as qualifier.
func (p TypePath) String() string {
	s := strings.Join(p.Segments, ".")
	if p.Pkg == "" {
		return s
	}

	return PkgAlias(p.Pkg) + "." + s
}

// Imports maps the local name of each import of a file to its import path.
type Imports map[string]string

// FileImports collects the named imports of a file. Blank and dot imports are
// not addressable through a qualifier and are skipped.
func FileImports(f *ast.File) Imports {
	imports := make(Imports, len(f.Imports))

	for _, spec := range f.Imports {
		p, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}

		name := PkgAlias(p)
		if spec.Name != nil {
			if spec.Name.Name == "_" || spec.Name.Name == "." {
				continue
			}

			name = spec.Name.Name
		}

		imports[name] = p
	}

	return imports
}

// SelfPath resolves the type of a receiver or self parameter to its path.
// Pointer indirections and type arguments are stripped.
func SelfPath(expr ast.Expr, imports Imports) (TypePath, error) {
	for {
		switch e := expr.(type) {
		case *ast.StarExpr:
			expr = e.X
		case *ast.ParenExpr:
			expr = e.X
		case *ast.IndexExpr:
			expr = e.X
		case *ast.IndexListExpr:
			expr = e.X
		default:
			return ResolvePath(expr, TypePath{}, imports)
		}
	}
}

// ResolvePath converts an identifier or selector chain to a TypePath.
// A bare Self is replaced by self. Self.X names the declaration X of the
// package self lives in, such as a constant of an enumeration. A leading
// segment naming an import of the file becomes the package of the path.
// Every other path is kept as written, in the current package.
func ResolvePath(expr ast.Expr, self TypePath, imports Imports) (TypePath, error) {
	segs, err := flatten(expr)
	if err != nil {
		return TypePath{}, err
	}

	head := segs[0]

	switch {
	case head == SelfName:
		if self.IsZero() {
			return TypePath{}, fmt.Errorf("%s used outside of an implementation", SelfName)
		}

		if len(segs) == 1 {
			return self.Rehome(self.Pkg), nil
		}

		return TypePath{Pkg: self.Pkg, Segments: segs[1:]}, nil
	case len(segs) > 1:
		if p, ok := imports[head]; ok {
			return TypePath{Pkg: p, Segments: segs[1:]}, nil
		}
	}

	return TypePath{Segments: segs}, nil
}

func flatten(expr ast.Expr) ([]string, error) {
	switch e := expr.(type) {
	case *ast.Ident:
		return []string{e.Name}, nil
	case *ast.SelectorExpr:
		segs, err := flatten(e.X)
		if err != nil {
			return nil, err
		}

		return append(segs, e.Sel.Name), nil
	case *ast.IndexExpr, *ast.IndexListExpr:
		return nil, fmt.Errorf("%w: type arguments are not allowed here", ErrNotPath)
	case *ast.ParenExpr:
		return nil, fmt.Errorf("%w: parenthesised types are not allowed here", ErrNotPath)
	case *ast.StarExpr:
		return nil, fmt.Errorf("%w: pointer types are not allowed here", ErrNotPath)
	default:
		return nil, fmt.Errorf("%w: %T", ErrNotPath, expr)
	}
}
