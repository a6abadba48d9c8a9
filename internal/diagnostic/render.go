package diagnostic

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan)
	posColor     = color.New(color.Bold)
)

// WriteText writes one line per diagnostic, in source order, as
// `file:line:col: severity: [code] message`. Color follows the fatih/color
// global switch.
func WriteText(w io.Writer, d *Diagnostics) error {
	for _, diag := range d.All() {
		sev := severityColor(diag.Severity).Sprint(diag.Severity.String())

		msg := diag.Message
		if diag.Code != "" {
			msg = fmt.Sprintf("[%s] %s", diag.Code, msg)
		}

		if diag.Decl != "" {
			msg = diag.Decl + ": " + msg
		}

		for _, s := range diag.Suggestions {
			msg += fmt.Sprintf(" (did you mean %q?)", s)
		}

		var err error
		if pos := diag.Span.String(); pos != "" {
			_, err = fmt.Fprintf(w, "%s: %s: %s\n", posColor.Sprint(pos), sev, msg)
		} else {
			_, err = fmt.Fprintf(w, "%s: %s\n", sev, msg)
		}

		if err != nil {
			return err
		}
	}

	return nil
}

func severityColor(s DiagnosticSeverity) *color.Color {
	switch s {
	case DiagnosticError:
		return errorColor
	case DiagnosticWarning:
		return warningColor
	default:
		return infoColor
	}
}

// Report is the YAML form of a set of diagnostics.
type Report struct {
	Diagnostics []ReportEntry `yaml:"diagnostics"`
}

// ReportEntry is the YAML form of one diagnostic.
type ReportEntry struct {
	Severity    string   `yaml:"severity"`
	Code        string   `yaml:"code"`
	Message     string   `yaml:"message"`
	Decl        string   `yaml:"decl,omitempty"`
	File        string   `yaml:"file,omitempty"`
	Line        int      `yaml:"line,omitempty"`
	Column      int      `yaml:"column,omitempty"`
	EndLine     int      `yaml:"end_line,omitempty"`
	EndColumn   int      `yaml:"end_column,omitempty"`
	Suggestions []string `yaml:"suggestions,omitempty"`
}

// NewReport converts diagnostics to their YAML form, in source order.
func NewReport(d *Diagnostics) Report {
	all := d.All()
	r := Report{Diagnostics: make([]ReportEntry, 0, len(all))}

	for _, diag := range all {
		r.Diagnostics = append(r.Diagnostics, ReportEntry{
			Severity:    diag.Severity.String(),
			Code:        diag.Code,
			Message:     diag.Message,
			Decl:        diag.Decl,
			File:        diag.Span.Start.Filename,
			Line:        diag.Span.Start.Line,
			Column:      diag.Span.Start.Column,
			EndLine:     diag.Span.End.Line,
			EndColumn:   diag.Span.End.Column,
			Suggestions: diag.Suggestions,
		})
	}

	return r
}

// WriteYAML writes the diagnostics as a YAML report.
func WriteYAML(w io.Writer, d *Diagnostics) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(NewReport(d)); err != nil {
		return fmt.Errorf("encode diagnostics: %w", err)
	}

	return enc.Close()
}
