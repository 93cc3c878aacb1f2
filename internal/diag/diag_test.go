package diag

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/hassandahiru/scriptum/internal/sourcemap"
)

func TestNewBuildsErrorSeverity(t *testing.T) {
	d := New("S100", "something went wrong", sourcemap.Span{Start: 0, End: 1})
	if d.Severity != Error {
		t.Errorf("New() severity = %v, want Error", d.Severity)
	}
	if d.Code != "S100" || d.Message != "something went wrong" {
		t.Errorf("New() = %+v, unexpected code/message", d)
	}
}

func TestNewfFormatsMessage(t *testing.T) {
	d := Newf("T210", sourcemap.Span{}, "expected %s, got %s", "numerus", "textus")
	want := "expected numerus, got textus"
	if d.Message != want {
		t.Errorf("Newf() message = %q, want %q", d.Message, want)
	}
}

func TestWithNoteAppendsWithoutMutatingOriginal(t *testing.T) {
	base := New("S100", "msg", sourcemap.Span{})
	noted := base.WithNote("first note")
	noted2 := noted.WithNote("second note")

	if len(base.Notes) != 0 {
		t.Errorf("base.Notes = %v, want empty (WithNote must not mutate receiver)", base.Notes)
	}
	if len(noted.Notes) != 1 {
		t.Errorf("noted.Notes = %v, want one note", noted.Notes)
	}
	if len(noted2.Notes) != 2 || noted2.Notes[0] != "first note" || noted2.Notes[1] != "second note" {
		t.Errorf("noted2.Notes = %v, want [first note, second note]", noted2.Notes)
	}
}

func TestRenderIncludesPositionMessageCodeAndCaret(t *testing.T) {
	file := sourcemap.NewFile("test.stm", "mutabilis x = 1;\n")
	d := Newf("S101", sourcemap.Span{Start: 10, End: 11}, "unexpected token")

	rendered := d.Render(file)
	if !strings.Contains(rendered, "unexpected token") {
		t.Errorf("Render() = %q, missing message", rendered)
	}
	if !strings.Contains(rendered, "[S101]") {
		t.Errorf("Render() = %q, missing code", rendered)
	}
	if !strings.Contains(rendered, "mutabilis x = 1;") {
		t.Errorf("Render() = %q, missing source excerpt", rendered)
	}
	if !strings.Contains(rendered, "^") {
		t.Errorf("Render() = %q, missing caret", rendered)
	}
}

func TestRenderIncludesNotes(t *testing.T) {
	file := sourcemap.NewFile("test.stm", "x\n")
	d := New("S100", "msg", sourcemap.Span{Start: 0, End: 1}).WithNote("did you mean y?")

	rendered := d.Render(file)
	if !strings.Contains(rendered, "note: did you mean y?") {
		t.Errorf("Render() = %q, missing note", rendered)
	}
}

func TestMarshalJSONWithFileRoundTripsFields(t *testing.T) {
	file := sourcemap.NewFile("test.stm", "line one\nline two\n")
	d := New("S100", "msg", sourcemap.Span{Start: 9, End: 10}).WithNote("a note")

	data, err := d.MarshalJSONWithFile(file)
	if err != nil {
		t.Fatalf("MarshalJSONWithFile() error = %v", err)
	}

	var decoded struct {
		Code     string   `json:"code"`
		Message  string   `json:"message"`
		Severity string   `json:"severity"`
		File     string   `json:"file"`
		Line     int      `json:"line"`
		Column   int      `json:"column"`
		Span     struct{ Start, End int }
		Notes    []string `json:"notes"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}

	if decoded.Code != "S100" || decoded.Message != "msg" || decoded.Severity != "error" {
		t.Errorf("decoded = %+v, unexpected code/message/severity", decoded)
	}
	if decoded.File != "test.stm" || decoded.Line != 2 || decoded.Column != 1 {
		t.Errorf("decoded position = %+v, want file=test.stm line=2 column=1", decoded)
	}
	if len(decoded.Notes) != 1 || decoded.Notes[0] != "a note" {
		t.Errorf("decoded.Notes = %v, want [a note]", decoded.Notes)
	}
	if decoded.Span.Start != 9 || decoded.Span.End != 10 {
		t.Errorf("decoded.Span = %+v, want {9 10}", decoded.Span)
	}
}

func TestHasErrorsDetectsErrorSeverity(t *testing.T) {
	onlyWarnings := []Diagnostic{{Severity: Warning}, {Severity: Warning}}
	if HasErrors(onlyWarnings) {
		t.Error("HasErrors() = true for all-warning slice, want false")
	}

	mixed := []Diagnostic{{Severity: Warning}, {Severity: Error}}
	if !HasErrors(mixed) {
		t.Error("HasErrors() = false for slice containing an error, want true")
	}

	if HasErrors(nil) {
		t.Error("HasErrors(nil) = true, want false")
	}
}
