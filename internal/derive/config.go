package derive

import (
	"fmt"
	"strings"

	"golang.org/x/mod/module"

	"github.com/ahl/transmogrify/internal/analyze"
	"github.com/ahl/transmogrify/internal/diagnostic"
	"github.com/ahl/transmogrify/internal/match"
)

// PrefixOption is the only option of the derive directive.
const PrefixOption = "prefix"

const directiveForm = "must be of the form " + analyze.DirectivePrefix + analyze.VerbDerive + " " + PrefixOption + "=<path>"

// Config is the configuration of one derived declaration.
type Config struct {
	// Prefix is the import path of the destination package. Empty when no
	// valid directive was found; paths are then left unqualified.
	Prefix string
	// Found reports whether any directive was present, valid or not.
	Found bool
}

// parseConfig reads the derive directives of t. Problems are reported to d.
// The first valid directive wins.
func parseConfig(t *analyze.TypeInfo, d *diagnostic.Diagnostics) Config {
	var (
		cfg   Config
		valid bool
	)

	decl := t.ID.Name

	for _, dir := range t.Directives {
		cfg.Found = true

		switch dir.Verb {
		case analyze.VerbDerive:
		case analyze.VerbTemplate:
			d.AddError(diagnostic.CodeMalformedDirective,
				analyze.DirectivePrefix+analyze.VerbTemplate+" applies to functions, not types", decl, dir.Span)
			continue
		default:
			d.AddError(diagnostic.CodeMalformedDirective,
				fmt.Sprintf("unknown directive %q", dir.Verb), decl, dir.Span,
				match.Suggest(dir.Verb, []string{analyze.VerbDerive})...)
			continue
		}

		prefix, ok := parsePrefix(dir, decl, d)
		if !ok {
			continue
		}

		if valid {
			d.AddError(diagnostic.CodeDuplicateDirective,
				"duplicate "+analyze.DirectivePrefix+analyze.VerbDerive+" directive; the first one is used", decl, dir.Span)
			continue
		}

		cfg.Prefix = prefix
		valid = true
	}

	if !cfg.Found {
		d.AddError(diagnostic.CodeMissingPrefix,
			"must specify a path prefix "+analyze.DirectivePrefix+analyze.VerbDerive+" "+PrefixOption+"=<path>",
			decl, t.Span)
	}

	return cfg
}

// parsePrefix checks the arguments of a derive directive and returns the
// destination path.
func parsePrefix(dir analyze.Directive, decl string, d *diagnostic.Diagnostics) (string, bool) {
	malformed := func(msg string, suggestions ...string) (string, bool) {
		d.AddError(diagnostic.CodeMalformedDirective, msg, decl, dir.Span, suggestions...)
		return "", false
	}

	fields := strings.Fields(dir.Args)

	switch {
	case len(fields) == 0:
		return malformed(directiveForm)
	case len(fields) > 1:
		return malformed(fmt.Sprintf("%s; unexpected %q", directiveForm, strings.Join(fields[1:], " ")))
	}

	key, value, ok := strings.Cut(fields[0], "=")

	switch {
	case key != PrefixOption:
		return malformed(fmt.Sprintf("%s; unknown option %q", directiveForm, key),
			match.Suggest(key, []string{PrefixOption})...)
	case !ok:
		return malformed(directiveForm)
	case value == "":
		return malformed("the " + PrefixOption + " option needs an import path")
	case strings.ContainsAny(value, "\"'`"):
		return malformed(fmt.Sprintf("the %s option takes an unquoted import path, got %s", PrefixOption, value))
	}

	if err := module.CheckImportPath(value); err != nil {
		return malformed(fmt.Sprintf("invalid %s: %v", PrefixOption, err))
	}

	return value, true
}
