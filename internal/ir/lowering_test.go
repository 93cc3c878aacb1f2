package ir

import (
	"testing"

	"github.com/hassandahiru/scriptum/internal/parser"
	"github.com/hassandahiru/scriptum/internal/sourcemap"
)

func lowerSource(t *testing.T, src string) *ModuleIr {
	t.Helper()
	file := sourcemap.NewFile("test.stm", src)
	module, interner, diags := parser.Parse(file)
	for _, d := range diags {
		t.Fatalf("unexpected parse diagnostic: %s", d.Message)
	}
	return Lower(module, interner)
}

func TestLowerGlobalVarDecl(t *testing.T) {
	m := lowerSource(t, `mutabilis contador: numerus = 0;`)

	if len(m.Globals) != 1 {
		t.Fatalf("Globals = %d, want 1", len(m.Globals))
	}
	g := m.Globals[0]
	if g.Name != "contador" || !g.Mutable || g.TypeAnnotation != "numerus" {
		t.Errorf("global = %+v, want name=contador mutable=true type=numerus", g)
	}
	lit, ok := g.Initializer.(*IrLiteral)
	if !ok || lit.Value.(float64) != 0 {
		t.Errorf("Initializer = %#v, want literal 0", g.Initializer)
	}
}

func TestLowerFunctionWithLoopAndIf(t *testing.T) {
	src := `
functio atualizar(limite: numerus) -> numerus {
    mutabilis total: numerus = 0;
    dum (total < limite) {
        total = total + 1;
        si (total == limite) {
            frange;
        } aliter {
            perge;
        }
    }
    redde total ?? 0;
}
`
	m := lowerSource(t, src)
	if len(m.Functions) != 1 {
		t.Fatalf("Functions = %d, want 1", len(m.Functions))
	}
	fn := m.Functions[0]
	if fn.Name != "atualizar" || fn.ReturnAnnotation != "numerus" {
		t.Errorf("fn = %+v, want name=atualizar return=numerus", fn)
	}
	if len(fn.Parameters) != 1 || fn.Parameters[0].Name != "limite" {
		t.Errorf("Parameters = %+v, want one parameter named limite", fn.Parameters)
	}

	if len(fn.Body) != 3 {
		t.Fatalf("Body = %d statements, want 3 (var decl, while, return)", len(fn.Body))
	}
	if _, ok := fn.Body[0].(*IrVariableDeclaration); !ok {
		t.Errorf("Body[0] = %T, want *IrVariableDeclaration", fn.Body[0])
	}

	while, ok := fn.Body[1].(*IrWhile)
	if !ok {
		t.Fatalf("Body[1] = %T, want *IrWhile", fn.Body[1])
	}
	if len(while.Body) != 2 {
		t.Fatalf("while.Body = %d statements, want 2 (assignment, if)", len(while.Body))
	}

	ifStmt, ok := while.Body[1].(*IrIf)
	if !ok {
		t.Fatalf("while.Body[1] = %T, want *IrIf", while.Body[1])
	}
	if len(ifStmt.Then) != 1 {
		t.Errorf("ifStmt.Then = %d statements, want 1", len(ifStmt.Then))
	}
	if _, ok := ifStmt.Then[0].(*IrBreak); !ok {
		t.Errorf("ifStmt.Then[0] = %T, want *IrBreak", ifStmt.Then[0])
	}
	if len(ifStmt.Else) != 1 {
		t.Errorf("ifStmt.Else = %d statements, want 1", len(ifStmt.Else))
	}
	if _, ok := ifStmt.Else[0].(*IrContinue); !ok {
		t.Errorf("ifStmt.Else[0] = %T, want *IrContinue", ifStmt.Else[0])
	}
}

func TestLowerNestedBlockIsFlattenedNotWrapped(t *testing.T) {
	// A bare `{ ... }` used directly as a loop body statement has no
	// dedicated IR node: its statements splice directly into the parent.
	src := `
functio foo() -> vacuum {
    dum (verum) {
        {
            frange;
        }
    }
}
`
	m := lowerSource(t, src)
	while := m.Functions[0].Body[0].(*IrWhile)
	if len(while.Body) != 1 {
		t.Fatalf("while.Body = %d statements, want 1 (flattened)", len(while.Body))
	}
	if _, ok := while.Body[0].(*IrBreak); !ok {
		t.Errorf("while.Body[0] = %T, want *IrBreak", while.Body[0])
	}
}

func TestLowerForInAndIndexAndMember(t *testing.T) {
	src := `
functio transformar(valores: numerus[]) -> vacuum {
    mutabilis soma: numerus = 0;
    pro item in valores {
        soma = soma + item;
    }
    mutabilis status: textus = structura { texto: "ok" }.texto;
    mutabilis primeiro: numerus = [1, 2, 3][0];
}
`
	m := lowerSource(t, src)
	fn := m.Functions[0]

	forIn, ok := fn.Body[1].(*IrForIn)
	if !ok {
		t.Fatalf("Body[1] = %T, want *IrForIn", fn.Body[1])
	}
	if forIn.Target.Name != "item" {
		t.Errorf("Target.Name = %q, want item", forIn.Target.Name)
	}
	if _, ok := forIn.Iterable.(*IrIdentifier); !ok {
		t.Errorf("Iterable = %T, want *IrIdentifier", forIn.Iterable)
	}

	statusDecl := fn.Body[2].(*IrVariableDeclaration)
	member, ok := statusDecl.Initializer.(*IrMemberAccess)
	if !ok {
		t.Fatalf("Initializer = %T, want *IrMemberAccess", statusDecl.Initializer)
	}
	if member.Property != "texto" {
		t.Errorf("Property = %q, want texto", member.Property)
	}
	if _, ok := member.Object.(*IrObjectLiteral); !ok {
		t.Errorf("Object = %T, want *IrObjectLiteral", member.Object)
	}

	primeiroDecl := fn.Body[3].(*IrVariableDeclaration)
	index, ok := primeiroDecl.Initializer.(*IrIndex)
	if !ok {
		t.Fatalf("Initializer = %T, want *IrIndex", primeiroDecl.Initializer)
	}
	if _, ok := index.Collection.(*IrArrayLiteral); !ok {
		t.Errorf("Collection = %T, want *IrArrayLiteral", index.Collection)
	}
}

func TestLowerLambdaWithBlockBody(t *testing.T) {
	src := `
functio foo() -> vacuum {
    mutabilis mapper: quodlibet = functio (x: numerus) -> numerus {
        redde x;
    };
}
`
	m := lowerSource(t, src)
	decl := m.Functions[0].Body[0].(*IrVariableDeclaration)
	lambda, ok := decl.Initializer.(*IrLambda)
	if !ok {
		t.Fatalf("Initializer = %T, want *IrLambda", decl.Initializer)
	}
	if len(lambda.Parameters) != 1 || lambda.Parameters[0].Name != "x" {
		t.Errorf("Parameters = %+v, want one parameter named x", lambda.Parameters)
	}
	if lambda.BodyExpr != nil {
		t.Error("BodyExpr should be nil for a block-bodied lambda")
	}
	if len(lambda.BodyStatements) != 1 {
		t.Errorf("BodyStatements = %d, want 1", len(lambda.BodyStatements))
	}
}

func TestLowerLogicalOperatorsStayDistinctFromBinary(t *testing.T) {
	src := `mutabilis x: booleanum = verum && falsum;`
	m := lowerSource(t, src)
	logical, ok := m.Globals[0].Initializer.(*IrLogical)
	if !ok {
		t.Fatalf("Initializer = %T, want *IrLogical", m.Globals[0].Initializer)
	}
	if logical.Operator != "&&" {
		t.Errorf("Operator = %q, want &&", logical.Operator)
	}
}

func TestLowerGroupingExprHasNoOwnNode(t *testing.T) {
	src := `mutabilis x: numerus = (1 + 2) * 3;`
	m := lowerSource(t, src)
	bin, ok := m.Globals[0].Initializer.(*IrBinary)
	if !ok {
		t.Fatalf("Initializer = %T, want *IrBinary", m.Globals[0].Initializer)
	}
	if bin.Operator != "*" {
		t.Errorf("Operator = %q, want *", bin.Operator)
	}
	if _, ok := bin.Left.(*IrBinary); !ok {
		t.Errorf("Left = %T, want *IrBinary (the grouped 1 + 2, with no separate grouping node)", bin.Left)
	}
}
