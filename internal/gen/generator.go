package gen

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"path"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/tools/go/ast/astutil"
	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/imports"

	"github.com/ahl/transmogrify/internal/common"
)

// GeneratorConfig holds configuration for file assembly.
type GeneratorConfig struct {
	// DebugUnformatted writes the unformatted source next to the intended
	// output when formatting fails.
	DebugUnformatted bool
}

// DefaultGeneratorConfig returns the default generator configuration.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		DebugUnformatted: false,
	}
}

// Generator turns files under construction into formatted Go source.
type Generator struct {
	config GeneratorConfig
}

// NewGenerator creates a new Generator with the given configuration.
func NewGenerator(config GeneratorConfig) *Generator {
	return &Generator{config: config}
}

// GeneratedFile represents a generated Go source file.
type GeneratedFile struct {
	// Filename is the path the file is written to.
	Filename string
	// Content is the formatted Go source code.
	Content []byte
}

// Generate renders every file. Files that fail are reported together; the
// others are still returned.
func (g *Generator) Generate(files []*File) ([]GeneratedFile, error) {
	var (
		out  []GeneratedFile
		errs *multierror.Error
	)

	for _, f := range files {
		file, err := g.GenerateFile(f)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("generating %s: %w", f.Path, err))
			continue
		}

		out = append(out, *file)
	}

	return out, errs.ErrorOrNil()
}

// GenerateFile renders a single file.
func (g *Generator) GenerateFile(f *File) (*GeneratedFile, error) {
	data, err := f.data()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing template: %w", err)
	}

	formatted, err := tidy(f.Path, buf.Bytes())
	if err != nil {
		// Best-effort: keep the unformatted code around to aid debugging.
		if g.config.DebugUnformatted {
			_ = writeDebugUnformatted(f.Path, buf.Bytes())
		}

		return &GeneratedFile{
			Filename: f.Path,
			Content:  buf.Bytes(),
		}, fmt.Errorf("formatting code: %w", err)
	}

	return &GeneratedFile{
		Filename: f.Path,
		Content:  formatted,
	}, nil
}

// tidy drops the imports nothing refers to and formats the source. An
// import whose package name cannot be determined is kept.
func tidy(filename string, src []byte) ([]byte, error) {
	fset := token.NewFileSet()

	file, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		return nil, err
	}

	removed := false

	for _, spec := range slices.Clone(file.Imports) {
		p, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}

		var (
			name  string
			known = true
		)

		if spec.Name != nil {
			name = spec.Name.Name
		} else {
			name, known = importName(filepath.Dir(filename), p)
		}

		if !known || name == "_" || name == "." || usesName(file, name) {
			continue
		}

		var local string
		if spec.Name != nil {
			local = spec.Name.Name
		}

		removed = astutil.DeleteNamedImport(fset, file, local, p) || removed
	}

	if removed {
		var buf bytes.Buffer
		if err := format.Node(&buf, fset, file); err != nil {
			return nil, err
		}

		src = buf.Bytes()
	}

	return imports.Process(filename, src, &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
}

// importName returns the package name an unaliased import is referred to by.
// The last path element is used when it is the name itself; otherwise the
// package is loaded from dir.
func importName(dir, p string) (string, bool) {
	if name := path.Base(p); name == common.PkgAlias(p) {
		return name, true
	}

	pkgs, err := packages.Load(&packages.Config{Mode: packages.NeedName, Dir: dir}, p)
	if err != nil || len(pkgs) != 1 || len(pkgs[0].Errors) > 0 || pkgs[0].Name == "" {
		return "", false
	}

	return pkgs[0].Name, true
}

// usesName reports whether a package qualifier is referenced in the file.
func usesName(file *ast.File, name string) bool {
	used := false

	ast.Inspect(file, func(n ast.Node) bool {
		if used {
			return false
		}

		sel, ok := n.(*ast.SelectorExpr)
		if !ok {
			return true
		}

		if id, ok := sel.X.(*ast.Ident); ok && id.Name == name {
			used = true
		}

		return true
	})

	return used
}
