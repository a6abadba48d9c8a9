package gen

import (
	"cmp"
	"fmt"
	"path"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"text/template"

	"github.com/ahl/transmogrify/internal/common"
	"github.com/ahl/transmogrify/internal/diagnostic"
	"github.com/ahl/transmogrify/quote"
)

// Header is the comment that marks every generated file.
const Header = "// Code generated by transmogrify. DO NOT EDIT."

// File is a generated Go file under construction.
type File struct {
	// Path is where the file is written.
	Path string
	// PackageName is the package clause of the file.
	PackageName string
	// Constraint is a build constraint expression, without the //go:build
	// prefix. Empty means none.
	Constraint string
	// Imports are kept from an input file. Unused ones are dropped. Items
	// refer to an aliased import by its alias.
	Imports []quote.Import

	items  []Item
	errors []diagnostic.Diagnostic
}

// Item is one top-level piece of a generated file.
type Item struct {
	// Doc is printed above the item, one comment per line, each starting
	// with "//".
	Doc []string
	// Source is copied verbatim. It takes precedence over Decls.
	Source string
	// Decls are printed through quote.
	Decls quote.Fragment
}

// NewFile creates an empty generated file.
func NewFile(path, packageName string) *File {
	return &File{Path: path, PackageName: packageName}
}

// Add appends declarations with a doc comment. The doc may span several
// lines; each is prefixed with "// ".
func (f *File) Add(doc string, decls quote.Fragment) {
	var lines []string
	if doc != "" {
		for _, l := range strings.Split(doc, "\n") {
			lines = append(lines, strings.TrimRight("// "+l, " "))
		}
	}

	f.items = append(f.items, Item{Doc: lines, Decls: decls})
}

// AddItem appends an item as is.
func (f *File) AddItem(item Item) {
	f.items = append(f.items, item)
}

// AddErrors appends a compile-error item for every error diagnostic.
// Warnings and infos are not reported in generated code.
func (f *File) AddErrors(d diagnostic.Diagnostics) {
	f.errors = append(f.errors, d.Errors...)
}

// Items returns the items added so far.
func (f *File) Items() []Item {
	return slices.Clone(f.items)
}

// IsEmpty reports whether nothing was added to the file.
func (f *File) IsEmpty() bool {
	return len(f.items) == 0 && len(f.errors) == 0
}

// templateData holds all data needed for the file template.
type templateData struct {
	Constraint  string
	PackageName string
	Imports     []importSpec
	Items       []string
	Errors      []string
}

// importSpec represents an import statement.
type importSpec struct {
	Alias string
	Path  string
	Gap   bool // blank line before, between standard library and other imports
}

var fileTemplate = template.Must(template.New("file").Parse(`{{if .Constraint}}//go:build {{.Constraint}}

{{end}}` + Header + `

package {{.PackageName}}
{{if .Imports}}
import (
{{range .Imports}}{{if .Gap}}
{{end}}	{{if .Alias}}{{.Alias}} {{end}}"{{.Path}}"
{{end}})
{{end}}{{range .Items}}
{{.}}
{{end}}{{range .Errors}}
{{.}}
{{end}}`))

// data renders the items of the file and collects their imports.
func (f *File) data() (*templateData, error) {
	data := &templateData{
		Constraint:  f.Constraint,
		PackageName: f.PackageName,
	}

	imports := make(map[string]importSpec)
	for _, imp := range f.Imports {
		imports[imp.Path] = importSpecFor(imp)
	}

	for _, item := range f.items {
		var b strings.Builder
		for _, l := range item.Doc {
			b.WriteString(l + "\n")
		}

		if item.Source != "" {
			b.WriteString(item.Source)
		} else {
			decls := item.Decls
			for _, imp := range f.Imports {
				if imp.Name != "" && imp.Name != "_" && imp.Name != "." {
					decls = decls.Rename(imp.Path, imp.Name)
				}
			}

			src, err := decls.Source()
			if err != nil {
				return nil, err
			}
			b.WriteString(src)

			for _, imp := range decls.Imports() {
				if _, ok := imports[imp.Path]; !ok {
					imports[imp.Path] = importSpecFor(imp)
				}
			}
		}

		data.Items = append(data.Items, b.String())
	}

	for _, spanned := range []bool{false, true} {
		for _, d := range f.errors {
			if hasSpan(d) == spanned {
				data.Errors = append(data.Errors, ErrorItem(d))
			}
		}
	}

	paths := make([]string, 0, len(imports))
	for p := range imports {
		paths = append(paths, p)
	}
	slices.SortFunc(paths, func(a, b string) int {
		return cmp.Or(cmp.Compare(importGroup(a), importGroup(b)), cmp.Compare(a, b))
	})

	names := make(map[string]string, len(paths))
	for i, p := range paths {
		spec := imports[p]
		spec.Gap = i > 0 && importGroup(paths[i-1]) != importGroup(p)

		name := spec.Alias
		if name == "" {
			name = common.PkgAlias(p)
		}

		if other, ok := names[name]; ok && name != "_" && name != "." {
			return nil, fmt.Errorf("packages %q and %q are both named %s", other, p, name)
		}
		names[name] = p

		data.Imports = append(data.Imports, spec)
	}

	return data, nil
}

// importGroup orders standard library imports before the others.
func importGroup(p string) int {
	first, _, _ := strings.Cut(p, "/")
	if strings.Contains(first, ".") {
		return 1
	}

	return 0
}

func importSpecFor(imp quote.Import) importSpec {
	if imp.Name == path.Base(imp.Path) {
		return importSpec{Path: imp.Path}
	}

	return importSpec{Alias: imp.Name, Path: imp.Path}
}

// ErrorItem returns a declaration that fails to type-check with the message
// of d. A line directive right before the message places the failure at the
// span of d, so the compiler reports it at the offending construct.
//
// gofmt keeps one blank between the directive and the message, and the
// directive positions that blank. A span in the first column can only be
// given by its line.
//
// The directive stays in effect for the rest of the file, which is why items
// without a span are placed before the others.
func ErrorItem(d diagnostic.Diagnostic) string {
	msg := "transmogrify: "
	if d.Code != "" {
		msg += d.Code + ": "
	}
	msg += d.Message

	var directive string

	if start := d.Span.Start; hasSpan(d) {
		if start.Column > 1 {
			directive = fmt.Sprintf("/*line %s:%d:%d*/ ", filepath.Base(start.Filename), start.Line, start.Column-1)
		} else {
			directive = fmt.Sprintf("/*line %s:%d*/ ", filepath.Base(start.Filename), start.Line)
		}
	}

	return fmt.Sprintf("var _ int = %s%s\n", directive, strconv.Quote(msg))
}

func hasSpan(d diagnostic.Diagnostic) bool {
	return d.Span.Start.IsValid() && d.Span.Start.Filename != ""
}
