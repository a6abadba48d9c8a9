package rewrite

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"strconv"
	"strings"

	"github.com/ahl/transmogrify/internal/analyze"
	"github.com/ahl/transmogrify/internal/common"
	"github.com/ahl/transmogrify/internal/diagnostic"
	"github.com/ahl/transmogrify/internal/gen"
	"github.com/ahl/transmogrify/internal/logger"
	"github.com/ahl/transmogrify/quote"
)

// Options configure a Rewriter.
type Options struct {
	// SelfPackage is the import path of the package the skeleton files
	// belong to. Paths written without a package qualifier live there.
	SelfPackage string
	// Tag is the build tag of skeleton files. Defaults to Tag.
	Tag string
}

// Rewriter turns skeleton files into their generated companions.
type Rewriter struct {
	opts Options
}

// NewRewriter creates a Rewriter.
func NewRewriter(opts Options) *Rewriter {
	if opts.Tag == "" {
		opts.Tag = Tag
	}

	return &Rewriter{opts: opts}
}

// RewriteFile reads and rewrites the skeleton file at filename.
func (r *Rewriter) RewriteFile(filename string) (*gen.File, diagnostic.Diagnostics, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, diagnostic.Diagnostics{}, fmt.Errorf("read skeleton: %w", err)
	}

	fset := token.NewFileSet()

	file, err := parser.ParseFile(fset, filename, src, parser.ParseComments|parser.SkipObjectResolution)
	if err != nil {
		return nil, diagnostic.Diagnostics{}, fmt.Errorf("parse skeleton: %w", err)
	}

	out, diags := r.Rewrite(fset, file, src)

	return out, diags, nil
}

// Rewrite produces the generated companion of a parsed skeleton file. src is
// the content file was parsed from. Declarations other than templates are
// copied as written.
func (r *Rewriter) Rewrite(fset *token.FileSet, file *ast.File, src []byte) (*gen.File, diagnostic.Diagnostics) {
	var diags diagnostic.Diagnostics

	filename := fset.Position(file.Package).Filename
	out := gen.NewFile(OutputPath(filename), file.Name.Name)
	out.Imports = fileImports(file)

	constraint, err := GeneratedConstraint(file, r.opts.Tag)
	if err != nil {
		diags.AddError(diagnostic.CodeMalformedDirective, err.Error(), "", diagnostic.Span{Start: fset.Position(file.Package)})
		constraint = "!" + r.opts.Tag
	}
	out.Constraint = constraint

	imports := common.FileImports(file)
	templates := 0

	for _, d := range file.Decls {
		if gd, ok := d.(*ast.GenDecl); ok && gd.Tok == token.IMPORT {
			continue
		}

		if !analyze.HasDirective(docOf(d), analyze.VerbTemplate) {
			out.AddItem(gen.Item{Source: sourceText(fset, src, d)})
			continue
		}

		templates++

		fn, ok := d.(*ast.FuncDecl)
		if !ok {
			err := diagnostic.Fatalf(diagnostic.CodeWrongTarget, diagnostic.SpanOf(fset, d),
				"//transmogrify:template applies to function declarations")

			var fd diagnostic.Diagnostics
			fd.AddFatal(err)
			out.AddErrors(fd)
			diags.Merge(fd)

			continue
		}

		item, fd, ok := r.Function(fset, fn, imports)
		if ok {
			out.AddItem(item)
		}

		out.AddErrors(fd)
		diags.Merge(fd)
	}

	logger.Logger.Debugw("rewrote skeleton", "file", filename, "templates", templates, "errors", len(diags.Errors))

	return out, diags
}

// Function rewrites one template function. ok is false when a fatal error
// left nothing to generate.
func (r *Rewriter) Function(fset *token.FileSet, fn *ast.FuncDecl, imports common.Imports) (item gen.Item, diags diagnostic.Diagnostics, ok bool) {
	name := declName(fn)

	t, ferr := newTarget(fset, fn, imports, r.opts.SelfPackage)
	if ferr != nil {
		diags.AddFatal(ferr.In(name))
		return gen.Item{}, diags, false
	}

	body, ferr := t.body(&diags)
	if ferr != nil {
		diags.AddFatal(ferr.In(name))
		return gen.Item{}, diags, false
	}

	if err := body.Err(); err != nil {
		diags.AddFatal(diagnostic.Fatalf(diagnostic.CodeUnsupportedSkeleton, diagnostic.SpanOf(fset, fn.Name),
			"%v", err).In(name))
		return gen.Item{}, diags, false
	}

	var stmts []ast.Stmt
	for _, n := range body.Nodes() {
		stmts = append(stmts, n.(ast.Stmt))
	}

	decl := &ast.FuncDecl{
		Recv: fn.Recv,
		Name: ast.NewIdent(fn.Name.Name),
		Type: fn.Type,
		Body: &ast.BlockStmt{List: stmts},
	}

	if t.renamed() {
		named := *t.self
		named.Names = []*ast.Ident{ast.NewIdent(t.name)}
		list := &ast.FieldList{List: []*ast.Field{&named}}

		if fn.Recv != nil {
			decl.Recv = list
		} else {
			typ := *fn.Type
			typ.Params = list
			decl.Type = &typ
		}
	}

	return gen.Item{
		Doc:   docLines(fn.Doc),
		Decls: quote.Node(decl).Requires(body.Imports()...),
	}, diags, true
}

func docOf(d ast.Decl) *ast.CommentGroup {
	switch d := d.(type) {
	case *ast.FuncDecl:
		return d.Doc
	case *ast.GenDecl:
		return d.Doc
	default:
		return nil
	}
}

// docLines returns the doc comment of a template without its directive.
func docLines(cg *ast.CommentGroup) []string {
	if cg == nil {
		return nil
	}

	var lines []string

	for _, c := range cg.List {
		if strings.HasPrefix(c.Text, analyze.DirectivePrefix+analyze.VerbTemplate) {
			continue
		}

		lines = append(lines, c.Text)
	}

	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "//" {
		lines = lines[:len(lines)-1]
	}

	return lines
}

// sourceText returns the text of a declaration with its doc comment and a
// trailing line comment.
func sourceText(fset *token.FileSet, src []byte, d ast.Decl) string {
	start := d.Pos()
	if doc := docOf(d); doc != nil {
		start = doc.Pos()
	}

	tf := fset.File(start)
	from, to := tf.Offset(start), tf.Offset(d.End())

	line, _, _ := bytes.Cut(src[to:], []byte("\n"))
	if bytes.HasPrefix(bytes.TrimSpace(line), []byte("//")) {
		to += len(bytes.TrimRight(line, " \t\r"))
	}

	return string(src[from:to])
}

// fileImports returns the imports of a file as written.
func fileImports(file *ast.File) []quote.Import {
	var out []quote.Import

	for _, spec := range file.Imports {
		p, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}

		imp := quote.Import{Path: p}
		if spec.Name != nil {
			imp.Name = spec.Name.Name
		}

		out = append(out, imp)
	}

	return out
}
