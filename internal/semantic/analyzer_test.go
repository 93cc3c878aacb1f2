package semantic

import (
	"testing"

	"github.com/hassandahiru/scriptum/internal/diag"
	"github.com/hassandahiru/scriptum/internal/parser"
	"github.com/hassandahiru/scriptum/internal/sourcemap"
)

func analyze(t *testing.T, src string) []diag.Diagnostic {
	t.Helper()
	file := sourcemap.NewFile("test.stm", src)
	module, interner, parseDiags := parser.Parse(file)
	for _, d := range parseDiags {
		t.Fatalf("unexpected parse diagnostic: %s", d.Message)
	}
	return New(interner).Analyze(module)
}

func codesOf(diags []diag.Diagnostic) []string {
	codes := make([]string, len(diags))
	for i, d := range diags {
		codes[i] = d.Code
	}
	return codes
}

func hasCode(diags []diag.Diagnostic, code string) bool {
	for _, d := range diags {
		if d.Code == code {
			return true
		}
	}
	return false
}

func TestAnalyzeCleanProgramProducesNoDiagnostics(t *testing.T) {
	src := `
functio adde(a: numerus, b: numerus) -> numerus {
    redde a + b;
}

mutabilis total: numerus = adde(1, 2);
`
	diags := analyze(t, src)
	if len(diags) != 0 {
		t.Errorf("Analyze() = %v, want no diagnostics", codesOf(diags))
	}
}

func TestAnalyzeDetectsUndeclaredName(t *testing.T) {
	src := `
functio foo() -> numerus {
    redde x + 1;
}
`
	diags := analyze(t, src)
	if !hasCode(diags, "S100") {
		t.Errorf("Analyze() = %v, want S100 undeclared name", codesOf(diags))
	}
}

func TestAnalyzeDetectsDuplicateDeclaration(t *testing.T) {
	src := `
functio foo() -> vacuum {
    mutabilis x: numerus = 1;
    mutabilis x: textus = "y";
}
`
	diags := analyze(t, src)
	if !hasCode(diags, "S110") {
		t.Errorf("Analyze() = %v, want S110 duplicate declaration", codesOf(diags))
	}
}

func TestAnalyzeDetectsAssignmentToConstant(t *testing.T) {
	src := `
functio foo() -> vacuum {
    constans x: numerus = 1;
    x = 2;
}
`
	diags := analyze(t, src)
	if !hasCode(diags, "S120") {
		t.Errorf("Analyze() = %v, want S120 immutability violation", codesOf(diags))
	}
}

func TestAnalyzeDetectsAssignmentTypeMismatch(t *testing.T) {
	src := `
functio foo() -> vacuum {
    mutabilis x: numerus = 1;
    x = "not a number";
}
`
	diags := analyze(t, src)
	if !hasCode(diags, "T010") {
		t.Errorf("Analyze() = %v, want T010 assignment type mismatch", codesOf(diags))
	}
}

func TestAnalyzeDetectsNonBooleanIfCondition(t *testing.T) {
	src := `
functio foo() -> vacuum {
    si (1) {
        redde;
    }
}
`
	diags := analyze(t, src)
	if !hasCode(diags, "T020") {
		t.Errorf("Analyze() = %v, want T020 non-booleanum si condition", codesOf(diags))
	}
}

func TestAnalyzeDetectsNonBooleanWhileCondition(t *testing.T) {
	src := `
functio foo() -> vacuum {
    dum ("not a bool") {
        frange;
    }
}
`
	diags := analyze(t, src)
	if !hasCode(diags, "T021") {
		t.Errorf("Analyze() = %v, want T021 non-booleanum dum condition", codesOf(diags))
	}
}

func TestAnalyzeDetectsBreakOutsideLoop(t *testing.T) {
	src := `
functio foo() -> vacuum {
    frange;
}
`
	diags := analyze(t, src)
	if !hasCode(diags, "T031") {
		t.Errorf("Analyze() = %v, want T031 frange outside loop", codesOf(diags))
	}
}

func TestAnalyzeAllowsBreakInsideWhileLoop(t *testing.T) {
	src := `
functio foo() -> vacuum {
    dum (verum) {
        frange;
    }
}
`
	diags := analyze(t, src)
	if len(diags) != 0 {
		t.Errorf("Analyze() = %v, want no diagnostics", codesOf(diags))
	}
}

func TestAnalyzeDetectsReturnTypeMismatch(t *testing.T) {
	src := `
functio foo() -> numerus {
    redde "not a number";
}
`
	diags := analyze(t, src)
	if !hasCode(diags, "T010") {
		t.Errorf("Analyze() = %v, want T010 return type mismatch", codesOf(diags))
	}
}

func TestAnalyzeAllowsReddeInsideNestedLoopBody(t *testing.T) {
	src := `
functio foo() -> numerus {
    dum (verum) {
        redde 1;
    }
    redde 0;
}
`
	diags := analyze(t, src)
	if len(diags) != 0 {
		t.Errorf("Analyze() = %v, want no diagnostics for redde nested inside a loop", codesOf(diags))
	}
}

func TestAnalyzeDetectsCallArityMismatch(t *testing.T) {
	src := `
functio adde(a: numerus, b: numerus) -> numerus {
    redde a + b;
}

mutabilis x: numerus = adde(1);
`
	diags := analyze(t, src)
	if !hasCode(diags, "T040") {
		t.Errorf("Analyze() = %v, want T040 call arity mismatch", codesOf(diags))
	}
}

func TestAnalyzeDetectsCallOnNonFunction(t *testing.T) {
	src := `
functio foo() -> vacuum {
    mutabilis x: numerus = 1;
    x();
}
`
	diags := analyze(t, src)
	if !hasCode(diags, "T060") {
		t.Errorf("Analyze() = %v, want T060 call on non-function", codesOf(diags))
	}
}

func TestAnalyzeAllowsForwardReference(t *testing.T) {
	src := `
functio primum() -> numerus {
    redde secundum();
}

functio secundum() -> numerus {
    redde 1;
}
`
	diags := analyze(t, src)
	if len(diags) != 0 {
		t.Errorf("Analyze() = %v, want no diagnostics (forward reference)", codesOf(diags))
	}
}

func TestAnalyzeInfersVarTypeFromInitializer(t *testing.T) {
	src := `
functio foo() -> vacuum {
    mutabilis x = "hello";
    x = "world";
}
`
	diags := analyze(t, src)
	if len(diags) != 0 {
		t.Errorf("Analyze() = %v, want no diagnostics", codesOf(diags))
	}
}

func TestAnalyzeDetectsArrayIterationOverNonArray(t *testing.T) {
	src := `
functio foo() -> vacuum {
    pro x in 5 {
        redde;
    }
}
`
	diags := analyze(t, src)
	if !hasCode(diags, "T080") {
		t.Errorf("Analyze() = %v, want T080 pro-in over a non-array", codesOf(diags))
	}
}

func TestAnalyzeAllowsForInOverArrayLiteral(t *testing.T) {
	src := `
functio foo() -> vacuum {
    pro x in [1, 2, 3] {
        redde;
    }
}
`
	diags := analyze(t, src)
	if len(diags) != 0 {
		t.Errorf("Analyze() = %v, want no diagnostics", codesOf(diags))
	}
}

func TestAnalyzeAllowsQuodlibetToSuppressTypeErrors(t *testing.T) {
	src := `
functio foo(x: quodlibet) -> vacuum {
    mutabilis y: numerus = x;
}
`
	diags := analyze(t, src)
	if len(diags) != 0 {
		t.Errorf("Analyze() = %v, want no diagnostics (quodlibet is the dynamic escape hatch)", codesOf(diags))
	}
}

func TestAnalyzeDetectsPlusOnIncompatibleOperands(t *testing.T) {
	src := `
functio foo() -> vacuum {
    mutabilis x: numerus = 1 + "two";
}
`
	diags := analyze(t, src)
	if !hasCode(diags, "T071") {
		t.Errorf("Analyze() = %v, want T071 mismatched + operands", codesOf(diags))
	}
}

func TestAnalyzeAllowsTextusConcatenation(t *testing.T) {
	src := `
functio foo() -> vacuum {
    mutabilis x: textus = "a" + "b";
}
`
	diags := analyze(t, src)
	if len(diags) != 0 {
		t.Errorf("Analyze() = %v, want no diagnostics", codesOf(diags))
	}
}
