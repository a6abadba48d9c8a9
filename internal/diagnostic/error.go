package diagnostic

import "fmt"

// Error is a fatal diagnostic. It stops generation of the declaration or
// function it belongs to; everything else is still generated.
type Error struct {
	Code    string
	Message string
	Decl    string
	Span    Span
}

// Fatalf returns a fatal error at span.
func Fatalf(code string, span Span, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Span: span}
}

// In returns a copy of e attributed to the named declaration.
func (e *Error) In(decl string) *Error {
	c := *e
	c.Decl = decl

	return &c
}

// Error renders the error as `file:line:col: code: message`.
func (e *Error) Error() string {
	if pos := e.Span.String(); pos != "" {
		return fmt.Sprintf("%s: %s: %s", pos, e.Code, e.Message)
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Diagnostic converts e to an error diagnostic.
func (e *Error) Diagnostic() Diagnostic {
	return Diagnostic{
		Severity: DiagnosticError,
		Code:     e.Code,
		Message:  e.Message,
		Decl:     e.Decl,
		Span:     e.Span,
	}
}
