// Package diag provides the structured diagnostic type shared by every
// compiler stage (lexer, parser, semantic analyzer, interpreter), matching
// the {code, message, file, line, column, span, notes} external format.
package diag

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hassandahiru/scriptum/internal/sourcemap"
)

// Severity classifies a Diagnostic.
type Severity int

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	if s == Warning {
		return "warning"
	}
	return "error"
}

// Diagnostic is a single structured compiler message.
type Diagnostic struct {
	Code     string
	Message  string
	Severity Severity
	Span     sourcemap.Span
	Notes    []string
}

// New builds an error-severity Diagnostic.
func New(code, message string, span sourcemap.Span) Diagnostic {
	return Diagnostic{Code: code, Message: message, Severity: Error, Span: span}
}

// Newf builds an error-severity Diagnostic with a formatted message.
func Newf(code string, span sourcemap.Span, format string, args ...interface{}) Diagnostic {
	return New(code, fmt.Sprintf(format, args...), span)
}

// WithNote returns a copy of d with an additional note appended.
func (d Diagnostic) WithNote(note string) Diagnostic {
	d.Notes = append(append([]string{}, d.Notes...), note)
	return d
}

// Render produces a human-readable, multi-line rendering with a source
// excerpt and a caret pointing at the offending span's start column.
func (d Diagnostic) Render(file *sourcemap.File) string {
	pos := file.Position(d.Span.Start)
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s: %s [%s]\n", pos.String(), d.Severity, d.Message, d.Code)

	lineText := lineAt(file, pos.Line)
	if lineText != "" {
		fmt.Fprintf(&b, "    %s\n", lineText)
		fmt.Fprintf(&b, "    %s^\n", strings.Repeat(" ", pos.Column-1))
	}
	for _, note := range d.Notes {
		fmt.Fprintf(&b, "    note: %s\n", note)
	}
	return b.String()
}

func lineAt(file *sourcemap.File, line int) string {
	start := 0
	current := 1
	for i := 0; i < len(file.Text); i++ {
		if current == line {
			start = i
			break
		}
		if file.Text[i] == '\n' {
			current++
		}
	}
	if current != line {
		return ""
	}
	end := strings.IndexByte(file.Text[start:], '\n')
	if end < 0 {
		return file.Text[start:]
	}
	return file.Text[start : start+end]
}

type jsonDiagnostic struct {
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Severity string   `json:"severity"`
	File     string   `json:"file"`
	Line     int      `json:"line"`
	Column   int      `json:"column"`
	Span     jsonSpan `json:"span"`
	Notes    []string `json:"notes,omitempty"`
}

type jsonSpan struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// MarshalJSONWithFile renders d into the external JSON diagnostic shape,
// resolving file/line/column against file.
func (d Diagnostic) MarshalJSONWithFile(file *sourcemap.File) ([]byte, error) {
	pos := file.Position(d.Span.Start)
	return json.Marshal(jsonDiagnostic{
		Code:     d.Code,
		Message:  d.Message,
		Severity: d.Severity.String(),
		File:     pos.Filename,
		Line:     pos.Line,
		Column:   pos.Column,
		Span:     jsonSpan{Start: d.Span.Start, End: d.Span.End},
		Notes:    d.Notes,
	})
}

// HasErrors reports whether any diagnostic in the slice is error severity.
func HasErrors(ds []Diagnostic) bool {
	for _, d := range ds {
		if d.Severity == Error {
			return true
		}
	}
	return false
}
