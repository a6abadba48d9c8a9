package analyze

import (
	"go/ast"
	"go/token"
	"strings"

	"github.com/ahl/transmogrify/internal/diagnostic"
)

// DirectivePrefix starts every transmogrify directive comment.
const DirectivePrefix = "//transmogrify:"

// Directive verbs.
const (
	VerbDerive   = "derive"
	VerbTemplate = "template"
)

// Directive is one `//transmogrify:<verb> <args>` comment line.
type Directive struct {
	Verb string          // word right after the prefix
	Args string          // rest of the line, trimmed
	Text string          // the whole comment
	Span diagnostic.Span // span of the comment
}

// ParseDirectives returns the transmogrify directives of a comment group in
// source order. Other comments are ignored.
func ParseDirectives(fset *token.FileSet, cg *ast.CommentGroup) []Directive {
	if cg == nil {
		return nil
	}

	var out []Directive

	for _, c := range cg.List {
		rest, ok := strings.CutPrefix(c.Text, DirectivePrefix)
		if !ok {
			continue
		}

		verb, args, _ := strings.Cut(rest, " ")

		out = append(out, Directive{
			Verb: strings.TrimSpace(verb),
			Args: strings.TrimSpace(args),
			Text: c.Text,
			Span: diagnostic.SpanOf(fset, c),
		})
	}

	return out
}

// HasDirective reports whether a comment group holds a directive with the
// given verb.
func HasDirective(cg *ast.CommentGroup, verb string) bool {
	if cg == nil {
		return false
	}

	for _, c := range cg.List {
		rest, ok := strings.CutPrefix(c.Text, DirectivePrefix)
		if !ok {
			continue
		}

		v, _, _ := strings.Cut(rest, " ")
		if strings.TrimSpace(v) == verb {
			return true
		}
	}

	return false
}
