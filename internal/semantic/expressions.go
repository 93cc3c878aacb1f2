package semantic

import (
	"github.com/hassandahiru/scriptum/internal/parser/ast"
	"github.com/hassandahiru/scriptum/internal/semantic/types"
	"github.com/hassandahiru/scriptum/internal/sourcemap"
	"github.com/hassandahiru/scriptum/internal/symtab"
)

// checkExpr computes and records expr's type, emitting any diagnostics its
// subexpressions produced along the way. It never returns nil: a
// malformed expression yields types.Invalid, which every other check in
// this package treats as "already reported, don't cascade".
func (a *Analyzer) checkExpr(expr ast.Expr) types.Type {
	result := a.checkExprUncached(expr)
	a.exprTypes[expr] = result
	return result
}

func (a *Analyzer) checkExprUncached(expr ast.Expr) types.Type {
	switch e := expr.(type) {
	case *ast.LiteralExpr:
		return literalType(e)

	case *ast.IdentifierExpr:
		return a.checkIdentifierExpr(e)

	case *ast.UnaryExpr:
		return a.checkUnaryExpr(e)

	case *ast.BinaryExpr:
		return a.checkBinaryExpr(e)

	case *ast.LogicalExpr:
		return a.checkLogicalExpr(e)

	case *ast.ConditionalExpr:
		return a.checkConditionalExpr(e)

	case *ast.AssignmentExpr:
		return a.checkAssignmentExpr(e)

	case *ast.CallExpr:
		return a.checkCallExpr(e)

	case *ast.MemberExpr:
		return a.checkMemberExpr(e)

	case *ast.IndexExpr:
		return a.checkIndexExpr(e)

	case *ast.GroupingExpr:
		return a.checkExpr(e.Inner)

	case *ast.ArrayLiteralExpr:
		return a.checkArrayLiteralExpr(e)

	case *ast.ObjectLiteralExpr:
		return a.checkObjectLiteralExpr(e)

	case *ast.LambdaExpr:
		return a.checkLambdaExpr(e)
	}

	return types.Invalid
}

func literalType(e *ast.LiteralExpr) types.Type {
	switch e.Kind {
	case ast.LitNumber:
		return types.Numerus
	case ast.LitString:
		return types.Textus
	case ast.LitBool:
		return types.Booleanum
	case ast.LitNullum:
		return types.Nullum
	case ast.LitIndefinitum:
		return types.Indefinitum
	default:
		return types.Invalid
	}
}

func (a *Analyzer) checkIdentifierExpr(e *ast.IdentifierExpr) types.Type {
	sym := a.currentScope.Lookup(a.name(e.Name))
	if sym == nil {
		a.errorf("S100", e.Span(), "undeclared name %q", a.name(e.Name))
		return types.Invalid
	}
	return sym.Type
}

// isDynamicOperand reports whether t should suppress further static
// checking of the operator it's an operand of: types.Invalid (already
// reported) or quodlibet (resolved dynamically at run time).
func isDynamicOperand(t types.Type) bool {
	return t == types.Invalid || t.Equals(types.Quodlibet)
}

func (a *Analyzer) checkUnaryExpr(e *ast.UnaryExpr) types.Type {
	operand := a.checkExpr(e.Operand)
	if isDynamicOperand(operand) {
		if operand == types.Invalid {
			return types.Invalid
		}
		return types.Quodlibet
	}

	switch e.Operator {
	case "!":
		if !types.IsBooleanType(operand) {
			a.errorf("T070", e.Span(), "operator ! requires a booleanum operand, got %s", operand)
		}
		return types.Booleanum
	case "-":
		if !types.IsNumeric(operand) {
			a.errorf("T070", e.Span(), "operator - requires a numerus operand, got %s", operand)
		}
		return types.Numerus
	default:
		return types.Invalid
	}
}

func (a *Analyzer) checkBinaryExpr(e *ast.BinaryExpr) types.Type {
	left := a.checkExpr(e.Left)
	right := a.checkExpr(e.Right)

	switch e.Operator {
	case "==", "!=":
		return types.Booleanum

	case "<", "<=", ">", ">=":
		return a.checkComparisonOperands(e.Operator, left, right, e.Span())

	case "+":
		return a.checkPlusOperands(left, right, e.Span())

	case "-", "*", "/", "%", "**":
		return a.checkArithmeticOperands(e.Operator, left, right, e.Span())

	default:
		return types.Invalid
	}
}

func (a *Analyzer) checkComparisonOperands(op string, left, right types.Type, span sourcemap.Span) types.Type {
	if isDynamicOperand(left) || isDynamicOperand(right) {
		return types.Booleanum
	}
	if !types.IsNumeric(left) || !types.IsNumeric(right) {
		a.errorf("T070", span, "operator %s requires numerus operands, got %s and %s", op, left, right)
	}
	return types.Booleanum
}

func (a *Analyzer) checkArithmeticOperands(op string, left, right types.Type, span sourcemap.Span) types.Type {
	if isDynamicOperand(left) || isDynamicOperand(right) {
		return types.Quodlibet
	}
	if !types.IsNumeric(left) || !types.IsNumeric(right) {
		a.errorf("T070", span, "operator %s requires numerus operands, got %s and %s", op, left, right)
		return types.Invalid
	}
	return types.Numerus
}

func (a *Analyzer) checkPlusOperands(left, right types.Type, span sourcemap.Span) types.Type {
	if isDynamicOperand(left) || isDynamicOperand(right) {
		return types.Quodlibet
	}
	if left.Equals(types.Textus) && right.Equals(types.Textus) {
		return types.Textus
	}
	if types.IsNumeric(left) && types.IsNumeric(right) {
		return types.Numerus
	}
	a.errorf("T071", span, "+ requires two numerus or two textus operands, got %s and %s", left, right)
	return types.Invalid
}

func (a *Analyzer) checkLogicalExpr(e *ast.LogicalExpr) types.Type {
	left := a.checkExpr(e.Left)
	right := a.checkExpr(e.Right)

	switch e.Operator {
	case "&&", "||":
		if !isDynamicOperand(left) && !types.IsBooleanType(left) {
			a.errorf("T070", e.Left.Span(), "operator %s requires booleanum operands, got %s", e.Operator, left)
		}
		if !isDynamicOperand(right) && !types.IsBooleanType(right) {
			a.errorf("T070", e.Right.Span(), "operator %s requires booleanum operands, got %s", e.Operator, right)
		}
		return types.Booleanum

	case "??":
		// `a ?? b` evaluates to a's unwrapped value when a is non-nullum,
		// otherwise to b. Statically we only know a's declared optionality,
		// not whether it's nullum at this particular point. For an optional
		// a, the result is b's type when it equals a's underlying type and
		// quodlibet otherwise; a bare nullum a yields b's type; any other a
		// yields a's own type.
		if opt, ok := left.(*types.OptionalType); ok {
			if opt.Inner.Equals(right) {
				return right
			}
			return types.Quodlibet
		}
		if left.Equals(types.Nullum) {
			return right
		}
		return left

	default:
		return types.Invalid
	}
}

func (a *Analyzer) checkConditionalExpr(e *ast.ConditionalExpr) types.Type {
	condType := a.checkExpr(e.Cond)
	a.checkConditionType("T022", "ternary", condType, e.Cond.Span())

	thenType := a.checkExpr(e.Then)
	elseType := a.checkExpr(e.Else)

	if thenType.Equals(elseType) {
		return thenType
	}
	return types.Quodlibet
}

func (a *Analyzer) checkAssignmentExpr(e *ast.AssignmentExpr) types.Type {
	targetType := a.checkAssignmentTarget(e.Target)
	valueType := a.checkExpr(e.Value)
	a.checkAssignable(valueType, targetType, e.Value.Span())
	return targetType
}

// checkAssignmentTarget resolves the static type of an assignment's
// left-hand side and, for a bare identifier, validates that the resolved
// symbol is actually assignable (not a constans, not a function). Member
// and index targets are always assignable at the type-check level: their
// mutability is a run-time property of the dynamic object/array they
// reach into, not something the static checker can rule out.
func (a *Analyzer) checkAssignmentTarget(target ast.Expr) types.Type {
	switch t := target.(type) {
	case *ast.IdentifierExpr:
		sym := a.currentScope.Lookup(a.name(t.Name))
		if sym == nil {
			a.errorf("S100", t.Span(), "undeclared name %q", a.name(t.Name))
			return types.Invalid
		}
		if !sym.CanAssign() {
			a.errorf("S120", t.Span(), "cannot assign to %s %q", sym.Kind, sym.Name)
		}
		return sym.Type

	case *ast.MemberExpr, *ast.IndexExpr:
		return a.checkExpr(target)

	default:
		a.errorf("S121", target.Span(), "invalid assignment target")
		return types.Invalid
	}
}

func (a *Analyzer) checkCallExpr(e *ast.CallExpr) types.Type {
	calleeType := a.checkExpr(e.Callee)

	argTypes := make([]types.Type, len(e.Args))
	for i, arg := range e.Args {
		argTypes[i] = a.checkExpr(arg)
	}

	if isDynamicOperand(calleeType) {
		return types.Quodlibet
	}

	fnType, ok := calleeType.(*types.FunctionType)
	if !ok {
		a.errorf("T060", e.Callee.Span(), "%s is not callable", calleeType)
		return types.Invalid
	}

	if len(e.Args) != len(fnType.Parameters) {
		a.errorf("T040", e.Span(), "expected %d arguments, got %d", len(fnType.Parameters), len(e.Args))
		return fnType.ReturnType
	}
	for i, argType := range argTypes {
		a.checkAssignable(argType, fnType.Parameters[i], e.Args[i].Span())
	}

	return fnType.ReturnType
}

func (a *Analyzer) checkMemberExpr(e *ast.MemberExpr) types.Type {
	objType := a.checkExpr(e.Object)

	if objType == types.Invalid {
		return types.Invalid
	}
	if objType.Equals(types.Object) || isDynamicOperand(objType) {
		// structura {} has no statically-known fields; every member access
		// is resolved at run time and may fail there instead.
		return types.Quodlibet
	}

	a.errorf("T051", e.Span(), "%s has no member access", objType)
	return types.Invalid
}

func (a *Analyzer) checkIndexExpr(e *ast.IndexExpr) types.Type {
	collType := a.checkExpr(e.Collection)
	idxType := a.checkExpr(e.Index)

	if collType == types.Invalid {
		return types.Invalid
	}

	if arr, ok := collType.(*types.ArrayType); ok {
		if !isDynamicOperand(idxType) && !types.IsNumeric(idxType) {
			a.errorf("T050", e.Index.Span(), "array index must be numerus, got %s", idxType)
		}
		return arr.Element
	}

	if collType.Equals(types.Object) || isDynamicOperand(collType) {
		return types.Quodlibet
	}

	a.errorf("T052", e.Span(), "%s is not indexable", collType)
	return types.Invalid
}

func (a *Analyzer) checkArrayLiteralExpr(e *ast.ArrayLiteralExpr) types.Type {
	if len(e.Elements) == 0 {
		return types.NewArray(types.Quodlibet)
	}

	elemType := a.checkExpr(e.Elements[0])
	for _, elem := range e.Elements[1:] {
		t := a.checkExpr(elem)
		if !t.Equals(elemType) {
			elemType = types.Quodlibet
		}
	}
	return types.NewArray(elemType)
}

func (a *Analyzer) checkObjectLiteralExpr(e *ast.ObjectLiteralExpr) types.Type {
	for _, prop := range e.Properties {
		a.checkExpr(prop.Value)
	}
	return types.Object
}

func (a *Analyzer) checkLambdaExpr(e *ast.LambdaExpr) types.Type {
	params := make([]types.Type, len(e.Params))
	for i, p := range e.Params {
		params[i] = a.resolveType(p.Type)
	}
	ret := types.Type(types.Quodlibet)
	if e.ReturnType != nil {
		ret = a.resolveType(e.ReturnType)
	}
	fnType := types.NewFunction(params, ret)

	a.enterScope(symtab.ScopeFunction)
	lambdaSym := &symtab.Symbol{Kind: symtab.SymbolFunction, Type: fnType, Span: e.Span()}
	a.currentScope.Function = lambdaSym
	prevFunction := a.currentFunction
	a.currentFunction = lambdaSym

	for i, p := range e.Params {
		paramSym := &symtab.Symbol{
			Name:  a.name(p.Name),
			Kind:  symtab.SymbolParameter,
			Type:  params[i],
			Span:  p.Span(),
			Index: i,
		}
		if err := a.currentScope.Define(paramSym); err != nil {
			a.errorf("S110", p.Span(), "%s", err)
		}
	}

	if e.BodyBlock != nil {
		for _, stmt := range e.BodyBlock.Stmts {
			a.checkStmt(stmt)
		}
	} else if e.BodyExpr != nil {
		bodyType := a.checkExpr(e.BodyExpr)
		a.checkAssignable(bodyType, ret, e.BodyExpr.Span())
	}

	a.currentFunction = prevFunction
	a.exitScope()

	return fnType
}
