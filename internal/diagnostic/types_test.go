package diagnostic

import (
	"bytes"
	"go/token"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func span(file string, line, col, offset int) Span {
	pos := token.Position{Filename: file, Line: line, Column: col, Offset: offset}
	return Span{Start: pos, End: pos}
}

func TestDiagnostics_AllInSourceOrder(t *testing.T) {
	var d Diagnostics

	d.AddError(CodeUnexportedField, "struct fields must be exported", "Simple", span("a.go", 5, 2, 40))
	d.AddInfo(CodeSkippedConstant, "alias constant skipped", "Color", span("a.go", 9, 1, 80))
	d.AddError(CodeMissingPrefix, "must specify a path prefix", "Simple", span("a.go", 3, 1, 20))

	all := d.All()
	require.Len(t, all, 3)
	assert.Equal(t, CodeMissingPrefix, all[0].Code)
	assert.Equal(t, CodeUnexportedField, all[1].Code)
	assert.Equal(t, CodeSkippedConstant, all[2].Code)

	assert.True(t, d.HasErrors())
	assert.False(t, d.IsValid())
}

func TestDiagnostics_Error(t *testing.T) {
	var d Diagnostics
	require.NoError(t, d.Error())

	d.AddError(CodeMissingPrefix, "must specify a path prefix", "Simple", span("a.go", 3, 1, 20))
	d.AddError(CodeUnexportedType, "the type must be exported", "simple", span("a.go", 7, 6, 60))

	err := d.Error()
	require.Error(t, err)
	assert.Equal(t,
		"a.go:3:1: missing_prefix: must specify a path prefix; a.go:7:6: unexported_type: the type must be exported",
		err.Error())
}

func TestDiagnostics_Merge(t *testing.T) {
	var a, b Diagnostics

	a.AddWarning(CodeUnknownType, "no such type", "", Span{})
	b.AddError(CodeExtraneousItems, "extra items", "f", Span{})
	b.AddFatal(Fatalf(CodeWrongTarget, Span{}, "expected a function").In("g"))

	a.Merge(b)

	assert.Len(t, a.Warnings, 1)
	require.Len(t, a.Errors, 2)
	assert.Equal(t, "g", a.Errors[1].Decl)
}

func TestError(t *testing.T) {
	err := Fatalf(CodeUnionType, span("u.go", 4, 6, 30), "transmogrify may not be derived from %s", "unions")
	assert.Equal(t, "u.go:4:6: union_type: transmogrify may not be derived from unions", err.Error())

	err = Fatalf(CodeRestPattern, Span{}, "rest patterns are not supported")
	assert.Equal(t, "rest_pattern: rest patterns are not supported", err.Error())

	diag := err.In("f").Diagnostic()
	assert.Equal(t, DiagnosticError, diag.Severity)
	assert.Equal(t, "f", diag.Decl)
	assert.Empty(t, err.Decl)
}

func TestDiagnostic_String(t *testing.T) {
	d := Diagnostic{
		Code:        CodeMalformedDirective,
		Message:     "must be of the form //transmogrify:derive prefix=<path>",
		Decl:        "Simple",
		Span:        span("a.go", 3, 1, 20),
		Suggestions: []string{"prefix"},
	}

	assert.Equal(t,
		"a.go:3:1 [Simple]: [malformed_directive] must be of the form //transmogrify:derive prefix=<path> (did you mean prefix?)",
		d.String())
}

func TestJoin(t *testing.T) {
	a := Span{
		Start: token.Position{Filename: "a.go", Line: 3, Column: 1, Offset: 20},
		End:   token.Position{Filename: "a.go", Line: 3, Column: 9, Offset: 28},
	}
	b := Span{
		Start: token.Position{Filename: "a.go", Line: 5, Column: 1, Offset: 40},
		End:   token.Position{Filename: "a.go", Line: 5, Column: 12, Offset: 51},
	}

	joined := Join(b, a)
	assert.Equal(t, 20, joined.Start.Offset)
	assert.Equal(t, 51, joined.End.Offset)
	assert.Equal(t, a, Join(Span{}, a))
}

func TestWriteText(t *testing.T) {
	color.NoColor = true

	var d Diagnostics
	d.AddError(CodeMalformedDirective, "must be of the form //transmogrify:derive prefix=<path>", "Simple",
		span("a.go", 3, 1, 20), "prefix")
	d.AddWarning(CodeUnknownType, "type Missing not found", "", Span{})

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, &d))

	assert.Equal(t,
		"warning: [unknown_type] type Missing not found\n"+
			"a.go:3:1: error: Simple: [malformed_directive] must be of the form //transmogrify:derive prefix=<path> (did you mean \"prefix\"?)\n",
		buf.String())
}

func TestWriteYAML(t *testing.T) {
	var d Diagnostics
	d.AddError(CodeUnexportedField, "struct fields must be exported", "Simple", Span{
		Start: token.Position{Filename: "a.go", Line: 5, Column: 2, Offset: 40},
		End:   token.Position{Filename: "a.go", Line: 5, Column: 9, Offset: 47},
	})

	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, &d))

	var report Report
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &report))
	require.Len(t, report.Diagnostics, 1)

	entry := report.Diagnostics[0]
	assert.Equal(t, "error", entry.Severity)
	assert.Equal(t, CodeUnexportedField, entry.Code)
	assert.Equal(t, "a.go", entry.File)
	assert.Equal(t, 5, entry.Line)
	assert.Equal(t, 9, entry.EndColumn)
}
