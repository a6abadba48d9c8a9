package quote

import (
	"bytes"
	"fmt"
	"go/format"
	"go/token"
	"path"
)

// Render prints a complete Go file in package pkg declaring `var name = f`,
// with the imports f requires. It is the usual way to write a generated value
// out from a go:generate program.
func Render(pkg, name string, f Fragment) ([]byte, error) {
	if !token.IsIdentifier(pkg) || !token.IsIdentifier(name) {
		return nil, fmt.Errorf("quote: render %s.%s: not an identifier", pkg, name)
	}

	if _, err := f.Expr(); err != nil {
		return nil, fmt.Errorf("quote: render %s: %w", name, err)
	}

	src, err := f.Source()
	if err != nil {
		return nil, fmt.Errorf("quote: render %s: %w", name, err)
	}

	var buf bytes.Buffer

	buf.WriteString("// Code generated by transmogrify. DO NOT EDIT.\n\n")
	fmt.Fprintf(&buf, "package %s\n\n", pkg)

	if err := WriteImports(&buf, f.Imports()); err != nil {
		return nil, fmt.Errorf("quote: render %s: %w", name, err)
	}

	fmt.Fprintf(&buf, "var %s = %s\n", name, src)

	out, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("quote: render %s: %w", name, err)
	}

	return out, nil
}

// WriteImports writes an import block. Two paths sharing a package name cannot
// both be referenced lexically, so that is reported as an error.
func WriteImports(buf *bytes.Buffer, imports []Import) error {
	if len(imports) == 0 {
		return nil
	}

	seen := make(map[string]string, len(imports))

	buf.WriteString("import (\n")

	for _, imp := range imports {
		if other, ok := seen[imp.Name]; ok && other != imp.Path {
			return fmt.Errorf("packages %q and %q are both named %s", other, imp.Path, imp.Name)
		}

		seen[imp.Name] = imp.Path

		if imp.Name == path.Base(imp.Path) {
			fmt.Fprintf(buf, "\t%q\n", imp.Path)
		} else {
			fmt.Fprintf(buf, "\t%s %q\n", imp.Name, imp.Path)
		}
	}

	buf.WriteString(")\n\n")

	return nil
}
