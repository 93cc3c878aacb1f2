package parser

import (
	"testing"

	"github.com/hassandahiru/scriptum/internal/parser/ast"
	"github.com/hassandahiru/scriptum/internal/sourcemap"
)

func parseSource(t *testing.T, src string) (*ast.Module, *ast.Interner) {
	t.Helper()
	file := sourcemap.NewFile("test.stm", src)
	module, interner, diags := Parse(file)
	for _, d := range diags {
		t.Errorf("unexpected diagnostic: %s", d.Message)
	}
	return module, interner
}

func TestParseFunctionDeclWithReturn(t *testing.T) {
	module, _ := parseSource(t, `
		functio add(a: numerus, b: numerus) -> numerus {
			redde a + b;
		}
	`)
	if len(module.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(module.Items))
	}
	fn, ok := module.Items[0].(*ast.FunctionDecl)
	if !ok {
		t.Fatalf("item is %T, want *ast.FunctionDecl", module.Items[0])
	}
	if len(fn.Params) != 2 {
		t.Fatalf("got %d params, want 2", len(fn.Params))
	}
	if len(fn.Body.Stmts) != 1 {
		t.Fatalf("got %d body statements, want 1", len(fn.Body.Stmts))
	}
	ret, ok := fn.Body.Stmts[0].(*ast.ReturnStmt)
	if !ok {
		t.Fatalf("body statement is %T, want *ast.ReturnStmt", fn.Body.Stmts[0])
	}
	if _, ok := ret.Value.(*ast.BinaryExpr); !ok {
		t.Errorf("return value is %T, want *ast.BinaryExpr", ret.Value)
	}
}

func TestParseGlobalVarDecl(t *testing.T) {
	module, interner := parseSource(t, `mutabilis counter: numerus = 0;`)
	decl, ok := module.Items[0].(*ast.GlobalVarDecl)
	if !ok {
		t.Fatalf("item is %T, want *ast.GlobalVarDecl", module.Items[0])
	}
	if !decl.Mutable {
		t.Error("expected mutable declaration")
	}
	if interner.Lookup(decl.Name) != "counter" {
		t.Errorf("name = %q, want counter", interner.Lookup(decl.Name))
	}
}

func TestParseDanglingElseBindsToNearestIf(t *testing.T) {
	module, _ := parseSource(t, `
		functio f() -> numerus {
			si (verum) {
				si (falsum) {
					redde 1;
				} aliter {
					redde 2;
				}
			}
			redde 0;
		}
	`)
	fn := module.Items[0].(*ast.FunctionDecl)
	outer, ok := fn.Body.Stmts[0].(*ast.IfStmt)
	if !ok {
		t.Fatalf("first statement is %T, want *ast.IfStmt", fn.Body.Stmts[0])
	}
	if outer.Else != nil {
		t.Error("outer if should have no aliter of its own")
	}
	outerThen, ok := outer.Then.(*ast.BlockStmt)
	if !ok || len(outerThen.Stmts) != 1 {
		t.Fatalf("outer then-block should hold the nested if as its only statement")
	}
	inner, ok := outerThen.Stmts[0].(*ast.IfStmt)
	if !ok {
		t.Fatalf("nested statement is %T, want *ast.IfStmt", outerThen.Stmts[0])
	}
	if inner.Else == nil {
		t.Error("aliter should bind to the nearest (inner) si")
	}
}

// TestParseDanglingElseWithoutParensOrBraces exercises the bare form of the
// dangling-else ambiguity directly: no parens around any condition, no
// braces around any body.
func TestParseDanglingElseWithoutParensOrBraces(t *testing.T) {
	module, _ := parseSource(t, `
		functio main() -> numerus {
			si 1 > 0 si 0 > 1 redde 1; aliter redde 2;
			redde 3;
		}
	`)
	fn := module.Items[0].(*ast.FunctionDecl)
	outer, ok := fn.Body.Stmts[0].(*ast.IfStmt)
	if !ok {
		t.Fatalf("first statement is %T, want *ast.IfStmt", fn.Body.Stmts[0])
	}
	if outer.Else != nil {
		t.Error("outer si should have no aliter of its own")
	}
	inner, ok := outer.Then.(*ast.IfStmt)
	if !ok {
		t.Fatalf("outer then is %T, want *ast.IfStmt", outer.Then)
	}
	if inner.Else == nil {
		t.Error("aliter should bind to the nearest (inner) si")
	}
	if _, ok := fn.Body.Stmts[1].(*ast.ReturnStmt); !ok {
		t.Errorf("second statement is %T, want *ast.ReturnStmt", fn.Body.Stmts[1])
	}
}

func TestParseExpressionPrecedence(t *testing.T) {
	module, _ := parseSource(t, `mutabilis x: numerus = 1 + 2 * 3 ** 2;`)
	decl := module.Items[0].(*ast.GlobalVarDecl)
	top, ok := decl.Initializer.(*ast.BinaryExpr)
	if !ok || top.Operator != "+" {
		t.Fatalf("top-level operator = %v, want +", decl.Initializer)
	}
	right, ok := top.Right.(*ast.BinaryExpr)
	if !ok || right.Operator != "*" {
		t.Fatalf("right operand = %v, want * node", top.Right)
	}
	exp, ok := right.Right.(*ast.BinaryExpr)
	if !ok || exp.Operator != "**" {
		t.Fatalf("innermost operand = %v, want ** node", right.Right)
	}
}

func TestParseTernaryAndAssignmentAreRightAssociative(t *testing.T) {
	module, _ := parseSource(t, `mutabilis x: numerus = verum ? 1 : falsum ? 2 : 3;`)
	decl := module.Items[0].(*ast.GlobalVarDecl)
	cond, ok := decl.Initializer.(*ast.ConditionalExpr)
	if !ok {
		t.Fatalf("initializer is %T, want *ast.ConditionalExpr", decl.Initializer)
	}
	if _, ok := cond.Else.(*ast.ConditionalExpr); !ok {
		t.Errorf("else branch is %T, want nested *ast.ConditionalExpr", cond.Else)
	}
}

func TestParseCallMemberAndIndexChain(t *testing.T) {
	module, _ := parseSource(t, `
		functio f() {
			objectum.metodus(1, 2)[0];
		}
	`)
	fn := module.Items[0].(*ast.FunctionDecl)
	stmt := fn.Body.Stmts[0].(*ast.ExprStmt)
	idx, ok := stmt.X.(*ast.IndexExpr)
	if !ok {
		t.Fatalf("expression is %T, want *ast.IndexExpr", stmt.X)
	}
	call, ok := idx.Collection.(*ast.CallExpr)
	if !ok {
		t.Fatalf("index collection is %T, want *ast.CallExpr", idx.Collection)
	}
	if _, ok := call.Callee.(*ast.MemberExpr); !ok {
		t.Errorf("call callee is %T, want *ast.MemberExpr", call.Callee)
	}
	if len(call.Args) != 2 {
		t.Errorf("got %d args, want 2", len(call.Args))
	}
}

func TestParseForInAndWhileLoops(t *testing.T) {
	module, _ := parseSource(t, `
		functio f() {
			mutabilis total: numerus = 0;
			pro item in [1, 2, 3] {
				total = total + item;
			}
			dum total < 10 {
				total = total + 1;
			}
		}
	`)
	fn := module.Items[0].(*ast.FunctionDecl)
	if _, ok := fn.Body.Stmts[1].(*ast.ForInStmt); !ok {
		t.Errorf("stmt 1 is %T, want *ast.ForInStmt", fn.Body.Stmts[1])
	}
	if _, ok := fn.Body.Stmts[2].(*ast.WhileStmt); !ok {
		t.Errorf("stmt 2 is %T, want *ast.WhileStmt", fn.Body.Stmts[2])
	}
}

func TestParseLambdaArrowBody(t *testing.T) {
	module, _ := parseSource(t, `mutabilis square: quodlibet = functio (x: numerus) -> numerus => x * x;`)
	decl := module.Items[0].(*ast.GlobalVarDecl)
	lambda, ok := decl.Initializer.(*ast.LambdaExpr)
	if !ok {
		t.Fatalf("initializer is %T, want *ast.LambdaExpr", decl.Initializer)
	}
	if lambda.BodyBlock != nil {
		t.Error("BodyBlock should be nil for an arrow-bodied lambda")
	}
	bin, ok := lambda.BodyExpr.(*ast.BinaryExpr)
	if !ok || bin.Operator != "*" {
		t.Fatalf("BodyExpr = %v, want x * x", lambda.BodyExpr)
	}
	if lambda.ReturnType == nil || lambda.ReturnType.Name != "numerus" {
		t.Errorf("ReturnType = %v, want numerus", lambda.ReturnType)
	}
}

func TestParseRecoversFromSyntaxErrorAndContinues(t *testing.T) {
	file := sourcemap.NewFile("test.stm", `
		mutabilis a: numerus = ;
		mutabilis b: numerus = 2;
	`)
	module, _, diags := Parse(file)
	if len(diags) == 0 {
		t.Fatal("expected at least one diagnostic")
	}
	if len(module.Items) != 1 {
		t.Fatalf("got %d items, want 1 (first decl dropped, second recovered)", len(module.Items))
	}
	decl, ok := module.Items[0].(*ast.GlobalVarDecl)
	if !ok {
		t.Fatalf("recovered item is %T, want *ast.GlobalVarDecl", module.Items[0])
	}
	if lit, ok := decl.Initializer.(*ast.LiteralExpr); !ok || lit.Value.(float64) != 2 {
		t.Errorf("recovered declaration initializer = %v, want literal 2", decl.Initializer)
	}
}
