package diagnostic

import (
	"cmp"
	"fmt"
	"go/ast"
	"go/token"
	"slices"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/ahl/transmogrify/internal/common"
)

// Diagnostic codes.
const (
	CodeMissingPrefix       = "missing_prefix"
	CodeMalformedDirective  = "malformed_directive"
	CodeDuplicateDirective  = "duplicate_directive"
	CodeUnexportedType      = "unexported_type"
	CodeUnexportedField     = "unexported_field"
	CodeUngenerableField    = "ungenerable_field"
	CodeExtraneousItems     = "extraneous_items"
	CodeUnknownType         = "unknown_type"
	CodeSkippedConstant     = "skipped_constant"
	CodeWrongTarget         = "wrong_target"
	CodeUnionType           = "union_type"
	CodeOpaqueType          = "opaque_type"
	CodeGenericSum          = "generic_sum"
	CodeUnsupportedSkeleton = "unsupported_skeleton"
	CodeRestPattern         = "rest_pattern"
	CodeUnsupportedPattern  = "unsupported_pattern"
	CodeStaleOutput         = "stale_output"
)

// Diagnostics holds all diagnostic information from one generation pass.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Infos    []Diagnostic
}

// Span is the source range of the construct a diagnostic is about.
type Span struct {
	Start token.Position
	End   token.Position
}

// SpanOf returns the span of a syntax node.
func SpanOf(fset *token.FileSet, n ast.Node) Span {
	if fset == nil || n == nil {
		return Span{}
	}

	return Span{Start: fset.Position(n.Pos()), End: fset.Position(n.End())}
}

// Join returns the span covering both a and b.
func Join(a, b Span) Span {
	if !a.Start.IsValid() {
		return b
	}

	if !b.Start.IsValid() {
		return a
	}

	out := a
	if b.Start.Offset < out.Start.Offset {
		out.Start = b.Start
	}

	if b.End.Offset > out.End.Offset {
		out.End = b.End
	}

	return out
}

// String returns the start position as file:line:col.
func (s Span) String() string {
	if !s.Start.IsValid() {
		return ""
	}

	return s.Start.String()
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	// Severity of the diagnostic.
	Severity DiagnosticSeverity
	// Code is a unique identifier for this type of diagnostic.
	Code string
	// Message is the human-readable description.
	Message string
	// Decl names the declaration or function this relates to (if any).
	Decl string
	// Span locates the offending construct.
	Span Span
	// Suggestions are potential fixes or alternatives.
	Suggestions []string
}

// DiagnosticSeverity represents the severity level of a diagnostic.
type DiagnosticSeverity int

const (
	DiagnosticInfo DiagnosticSeverity = iota
	DiagnosticWarning
	DiagnosticError
)

// String returns a human-readable severity name.
func (s DiagnosticSeverity) String() string {
	switch s {
	case DiagnosticInfo:
		return "info"
	case DiagnosticWarning:
		return "warning"
	case DiagnosticError:
		return "error"
	default:
		return common.UnknownStr
	}
}

// AddError adds an error diagnostic.
func (d *Diagnostics) AddError(code, message, decl string, span Span, suggestions ...string) {
	d.Errors = append(d.Errors, Diagnostic{
		Severity:    DiagnosticError,
		Code:        code,
		Message:     message,
		Decl:        decl,
		Span:        span,
		Suggestions: suggestions,
	})
}

// AddWarning adds a warning diagnostic.
func (d *Diagnostics) AddWarning(code, message, decl string, span Span) {
	d.Warnings = append(d.Warnings, Diagnostic{
		Severity: DiagnosticWarning,
		Code:     code,
		Message:  message,
		Decl:     decl,
		Span:     span,
	})
}

// AddInfo adds an info diagnostic.
func (d *Diagnostics) AddInfo(code, message, decl string, span Span) {
	d.Infos = append(d.Infos, Diagnostic{
		Severity: DiagnosticInfo,
		Code:     code,
		Message:  message,
		Decl:     decl,
		Span:     span,
	})
}

// AddFatal records a fatal error as an error diagnostic.
func (d *Diagnostics) AddFatal(err *Error) {
	d.Errors = append(d.Errors, err.Diagnostic())
}

// HasErrors returns true if there are any error diagnostics.
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// Merge merges another Diagnostics instance into this one.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
	d.Infos = append(d.Infos, other.Infos...)
}

// IsValid returns true if there are no errors.
func (d *Diagnostics) IsValid() bool {
	return len(d.Errors) == 0
}

// All returns every diagnostic in source order. Diagnostics at the same
// position keep the order they were added in, errors first.
func (d *Diagnostics) All() []Diagnostic {
	all := make([]Diagnostic, 0, len(d.Errors)+len(d.Warnings)+len(d.Infos))
	all = append(all, d.Errors...)
	all = append(all, d.Warnings...)
	all = append(all, d.Infos...)

	slices.SortStableFunc(all, func(a, b Diagnostic) int {
		return cmp.Or(
			cmp.Compare(a.Span.Start.Filename, b.Span.Start.Filename),
			cmp.Compare(a.Span.Start.Offset, b.Span.Start.Offset),
		)
	})

	return all
}

// Error returns a combined error from all error diagnostics, or nil if valid.
func (d *Diagnostics) Error() error {
	if d.IsValid() {
		return nil
	}

	var result *multierror.Error
	for _, e := range d.Errors {
		result = multierror.Append(result, &Error{Code: e.Code, Message: e.Message, Span: e.Span})
	}

	result.ErrorFormat = func(errs []error) string {
		parts := make([]string, len(errs))
		for i, err := range errs {
			parts[i] = err.Error()
		}

		return strings.Join(parts, "; ")
	}

	return result.ErrorOrNil()
}

// String returns a formatted diagnostic string.
func (d Diagnostic) String() string {
	var prefix []string
	if pos := d.Span.String(); pos != "" {
		prefix = append(prefix, pos)
	}

	if d.Decl != "" {
		prefix = append(prefix, "["+d.Decl+"]")
	}

	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}

	if len(d.Suggestions) > 0 {
		msg += " (did you mean " + strings.Join(d.Suggestions, ", ") + "?)"
	}

	if len(prefix) > 0 {
		return strings.Join(prefix, " ") + ": " + msg
	}

	return msg
}
