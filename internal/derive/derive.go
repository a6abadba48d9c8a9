package derive

import (
	"fmt"
	"go/token"
	"maps"
	"path/filepath"
	"slices"

	"github.com/ahl/transmogrify/internal/analyze"
	"github.com/ahl/transmogrify/internal/diagnostic"
	"github.com/ahl/transmogrify/internal/gen"
	"github.com/ahl/transmogrify/internal/logger"
	"github.com/ahl/transmogrify/internal/match"
)

// DefaultOutput is the name of the file generated in each package directory.
const DefaultOutput = "transmogrify_gen.go"

// Options select what is derived and where it is written.
type Options struct {
	// Types are derived in addition to the types carrying a directive.
	Types []string
	// Output is the file name generated in each package directory.
	Output string
}

// Deriver generates transmogrify methods for the packages of a type graph.
type Deriver struct {
	graph *analyze.TypeGraph
	opts  Options
}

// NewDeriver creates a Deriver over graph.
func NewDeriver(graph *analyze.TypeGraph, opts Options) *Deriver {
	if opts.Output == "" {
		opts.Output = DefaultOutput
	}

	return &Deriver{graph: graph, opts: opts}
}

// Derive generates one file per package of the graph, in import path order.
// Packages without anything to derive produce no file.
func (d *Deriver) Derive() ([]*gen.File, diagnostic.Diagnostics) {
	var (
		files []*gen.File
		diags diagnostic.Diagnostics
	)

	for _, p := range slices.Sorted(maps.Keys(d.graph.Packages)) {
		file, pd := d.Package(d.graph.Packages[p])
		diags.Merge(pd)

		if file != nil {
			files = append(files, file)
		}
	}

	return files, diags
}

// Package generates the file of one package.
func (d *Deriver) Package(pkg *analyze.PackageInfo) (*gen.File, diagnostic.Diagnostics) {
	var diags diagnostic.Diagnostics

	selected := d.selected(pkg, &diags)
	if len(selected) == 0 {
		return nil, diags
	}

	file := gen.NewFile(filepath.Join(pkg.Dir, d.opts.Output), pkg.Name)

	for _, t := range selected {
		diags.Merge(d.Type(pkg.Fset, t, file))
	}

	logger.Logger.Debugw("derived package", "package", pkg.Path, "types", len(selected), "errors", len(diags.Errors))

	return file, diags
}

// Type derives the declaration t into file. Every diagnostic of the
// declaration is added to the file together, after its declarations.
func (d *Deriver) Type(fset *token.FileSet, t *analyze.TypeInfo, file *gen.File) diagnostic.Diagnostics {
	var diags diagnostic.Diagnostics

	cfg := parseConfig(t, &diags)

	if err := reject(t); err != nil {
		diags.AddFatal(err)
		file.AddErrors(diags)

		return diags
	}

	validate(fset, t, &diags)

	for _, dc := range declsFor(t, cfg) {
		file.Add(dc.doc, dc.decls)
	}

	file.AddErrors(diags)

	logger.Logger.Debugw("derived type", "type", t.ID.String(), "kind", t.Kind.String(), "prefix", cfg.Prefix)

	return diags
}

// selected returns the types of pkg to derive, in declaration order.
func (d *Deriver) selected(pkg *analyze.PackageInfo, diags *diagnostic.Diagnostics) []*analyze.TypeInfo {
	requested := make(map[string]bool, len(d.opts.Types))
	for _, name := range d.opts.Types {
		requested[name] = true
	}

	var (
		out   []*analyze.TypeInfo
		names []string
	)

	for _, id := range pkg.Types {
		t := d.graph.GetType(id)
		if t == nil {
			continue
		}

		names = append(names, id.Name)

		if len(t.Directives) > 0 || requested[id.Name] {
			out = append(out, t)
			delete(requested, id.Name)
		}
	}

	for _, name := range d.opts.Types {
		if !requested[name] {
			continue
		}

		diags.AddError(diagnostic.CodeUnknownType,
			fmt.Sprintf("no type %s in package %s", name, pkg.Path), name, diagnostic.Span{},
			match.Suggest(name, names)...)
	}

	return out
}
