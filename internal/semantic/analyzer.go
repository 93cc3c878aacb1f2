// Package semantic implements Scriptum's scope-aware, two-pass semantic
// analysis: name resolution against internal/symtab, and type checking
// against the escapable static lattice in internal/semantic/types.
//
// DESIGN PHILOSOPHY:
// Analysis runs in two passes over a Module's top-level items:
//  1. Declare every function and global variable's signature, so forward
//     references work (a function can call another declared later in the
//     file).
//  2. Check every body: resolve names, infer/check expression types, and
//     validate control-flow rules (redde only in a function, frange/perge
//     only in a loop).
//
// Every node is visited through a plain Go type switch rather than a
// visitor interface - Scriptum's AST has a small, closed set of node
// kinds, so a switch is shorter and easier to read than Accept methods
// scattered across the ast package.
package semantic

import (
	"github.com/hassandahiru/scriptum/internal/diag"
	"github.com/hassandahiru/scriptum/internal/parser/ast"
	"github.com/hassandahiru/scriptum/internal/semantic/types"
	"github.com/hassandahiru/scriptum/internal/sourcemap"
	"github.com/hassandahiru/scriptum/internal/symtab"
)

// Analyzer carries the state of one analysis pass: the scope stack, the
// diagnostics accumulated so far, and the string interner shared with the
// parse being analyzed.
type Analyzer struct {
	interner *ast.Interner

	globalScope  *symtab.Scope
	currentScope *symtab.Scope

	// currentFunction is the symbol of the function whose body is currently
	// being checked, used to validate redde's expression type against the
	// declared return type. nil at global scope.
	currentFunction *symtab.Symbol

	// exprTypes records the inferred/checked type of every expression node
	// visited this pass, keyed by node identity. Exposed so a later stage
	// (lowering) doesn't need to re-run type inference.
	exprTypes map[ast.Expr]types.Type

	diags []diag.Diagnostic
}

// New creates an Analyzer bound to interner, which must be the same
// Interner the Module being analyzed was parsed with.
func New(interner *ast.Interner) *Analyzer {
	return &Analyzer{interner: interner}
}

// Analyze runs both passes over module and returns every diagnostic
// produced. An empty result does not by itself mean the program is safe to
// run - callers should also check for Severity Error via diag.HasErrors.
func (a *Analyzer) Analyze(module *ast.Module) []diag.Diagnostic {
	a.globalScope = symtab.NewScope(symtab.ScopeGlobal, nil)
	a.currentScope = a.globalScope
	a.currentFunction = nil
	a.exprTypes = make(map[ast.Expr]types.Type)
	a.diags = nil

	for _, item := range module.Items {
		a.declareItem(item)
	}
	for _, item := range module.Items {
		a.checkItem(item)
	}

	return a.diags
}

// GlobalScope returns the scope holding every top-level declaration, for
// callers that want to inspect global bindings after analysis (e.g. the
// driver facade reporting unused globals).
func (a *Analyzer) GlobalScope() *symtab.Scope {
	return a.globalScope
}

// ExprType returns the type computed for expr during the last Analyze
// call, or nil if expr was never visited (e.g. analysis aborted early).
func (a *Analyzer) ExprType(expr ast.Expr) types.Type {
	return a.exprTypes[expr]
}

func (a *Analyzer) name(sym ast.Symbol) string {
	return a.interner.Lookup(sym)
}

func (a *Analyzer) errorf(code string, span sourcemap.Span, format string, args ...interface{}) {
	a.diags = append(a.diags, diag.Newf(code, span, format, args...))
}

func (a *Analyzer) enterScope(kind symtab.ScopeKind) {
	a.currentScope = symtab.NewScope(kind, a.currentScope)
}

func (a *Analyzer) exitScope() {
	a.currentScope = a.currentScope.Parent
}

// declareItem pre-registers a top-level item's signature in the global
// scope, without checking its body. Run for every item before any body is
// checked, so forward references resolve.
func (a *Analyzer) declareItem(item ast.Item) {
	switch d := item.(type) {
	case *ast.FunctionDecl:
		params := make([]types.Type, len(d.Params))
		for i, p := range d.Params {
			params[i] = a.resolveType(p.Type)
		}
		ret := types.Type(types.Vacuum)
		if d.ReturnType != nil {
			ret = a.resolveType(d.ReturnType)
		}
		sym := &symtab.Symbol{
			Name: a.name(d.Name),
			Kind: symtab.SymbolFunction,
			Type: types.NewFunction(params, ret),
			Span: d.Span(),
		}
		if err := a.globalScope.Define(sym); err != nil {
			a.errorf("S110", d.Span(), "%s", err)
		}

	case *ast.GlobalVarDecl:
		varType := types.Type(types.Quodlibet)
		if d.Type != nil {
			varType = a.resolveType(d.Type)
		}
		sym := &symtab.Symbol{
			Name:     a.name(d.Name),
			Kind:     symtab.SymbolVariable,
			Type:     varType,
			Span:     d.Span(),
			Constant: !d.Mutable,
		}
		if err := a.globalScope.Define(sym); err != nil {
			a.errorf("S110", d.Span(), "%s", err)
		}
	}
}

// checkItem checks a top-level item's body against the signature declared
// during the declare pass.
func (a *Analyzer) checkItem(item ast.Item) {
	switch d := item.(type) {
	case *ast.FunctionDecl:
		a.checkFunctionDecl(d)

	case *ast.GlobalVarDecl:
		sym := a.globalScope.LookupLocal(a.name(d.Name))
		initType := a.checkExpr(d.Initializer)
		if sym != nil {
			a.checkAssignable(initType, sym.Type, d.Initializer.Span())
		}
	}
}

func (a *Analyzer) checkFunctionDecl(d *ast.FunctionDecl) {
	fnSym := a.globalScope.LookupLocal(a.name(d.Name))

	a.enterScope(symtab.ScopeFunction)
	a.currentScope.Function = fnSym
	prevFunction := a.currentFunction
	a.currentFunction = fnSym

	fnType, _ := fnTypeOf(fnSym)
	for i, p := range d.Params {
		paramType := types.Type(types.Quodlibet)
		if fnType != nil && i < len(fnType.Parameters) {
			paramType = fnType.Parameters[i]
		}
		paramSym := &symtab.Symbol{
			Name:  a.name(p.Name),
			Kind:  symtab.SymbolParameter,
			Type:  paramType,
			Span:  p.Span(),
			Index: i,
		}
		if err := a.currentScope.Define(paramSym); err != nil {
			a.errorf("S110", p.Span(), "%s", err)
		}
		if p.Default != nil {
			defType := a.checkExpr(p.Default)
			a.checkAssignable(defType, paramType, p.Default.Span())
		}
	}

	for _, stmt := range d.Body.Stmts {
		a.checkStmt(stmt)
	}

	a.currentFunction = prevFunction
	a.exitScope()
}

// fnTypeOf extracts sym's FunctionType, if it has one. A nil or
// mistyped symbol (e.g. one left half-declared by a prior error) yields a
// nil result, and callers fall back to quodlibet for every parameter.
func fnTypeOf(sym *symtab.Symbol) (*types.FunctionType, bool) {
	if sym == nil {
		return nil, false
	}
	fnType, ok := sym.Type.(*types.FunctionType)
	return fnType, ok
}

// checkBlock opens a fresh block scope, checks every statement in it, and
// closes the scope again. Reached via checkStmt whenever a `{ ... }` block
// appears as a statement: a bare nested block, or the Then/Else/Body of an
// si/dum/pro whose single Statement happens to be a block; loop bodies
// additionally sit inside a ScopeLoop opened by the caller. Function and
// lambda bodies do not pass through here: their statements are checked
// directly in the function scope.
func (a *Analyzer) checkBlock(block *ast.BlockStmt) {
	a.enterScope(symtab.ScopeBlock)
	for _, stmt := range block.Stmts {
		a.checkStmt(stmt)
	}
	a.exitScope()
}

func (a *Analyzer) checkStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.VarDeclStmt:
		a.checkVarDeclStmt(s)

	case *ast.ExprStmt:
		a.checkExpr(s.X)

	case *ast.BlockStmt:
		a.checkBlock(s)

	case *ast.IfStmt:
		a.checkIfStmt(s)

	case *ast.WhileStmt:
		a.checkWhileStmt(s)

	case *ast.ForInStmt:
		a.checkForInStmt(s)

	case *ast.ReturnStmt:
		a.checkReturnStmt(s)

	case *ast.BreakStmt:
		if a.currentScope.FindEnclosingLoop() == nil {
			a.errorf("T031", s.Span(), "frange outside of a loop")
		}

	case *ast.ContinueStmt:
		if a.currentScope.FindEnclosingLoop() == nil {
			a.errorf("T031", s.Span(), "perge outside of a loop")
		}
	}
}

func (a *Analyzer) checkVarDeclStmt(s *ast.VarDeclStmt) {
	initType := a.checkExpr(s.Initializer)

	var varType types.Type
	if s.Type != nil {
		varType = a.resolveType(s.Type)
		a.checkAssignable(initType, varType, s.Initializer.Span())
	} else {
		varType = initType
	}

	sym := &symtab.Symbol{
		Name:     a.name(s.Name),
		Kind:     symtab.SymbolVariable,
		Type:     varType,
		Span:     s.Span(),
		Constant: !s.Mutable,
	}
	if err := a.currentScope.Define(sym); err != nil {
		a.errorf("S110", s.Span(), "%s", err)
	}
}

func (a *Analyzer) checkIfStmt(s *ast.IfStmt) {
	condType := a.checkExpr(s.Cond)
	a.checkConditionType("T020", "si", condType, s.Cond.Span())

	// Then/Else are each any single Statement, not necessarily a block;
	// checkStmt's own BlockStmt case opens a fresh scope when one is there.
	a.checkStmt(s.Then)
	if s.Else != nil {
		a.checkStmt(s.Else)
	}
}

func (a *Analyzer) checkWhileStmt(s *ast.WhileStmt) {
	condType := a.checkExpr(s.Cond)
	a.checkConditionType("T021", "dum", condType, s.Cond.Span())

	a.enterScope(symtab.ScopeLoop)
	a.checkStmt(s.Body)
	a.exitScope()
}

func (a *Analyzer) checkForInStmt(s *ast.ForInStmt) {
	iterType := a.checkExpr(s.Iterable)

	elemType := types.Type(types.Quodlibet)
	if arr, ok := iterType.(*types.ArrayType); ok {
		elemType = arr.Element
	} else if !iterType.Equals(types.Quodlibet) && iterType != types.Invalid {
		a.errorf("T080", s.Iterable.Span(), "pro-in iterable must be an array, got %s", iterType)
	}

	a.enterScope(symtab.ScopeLoop)

	targetType := elemType
	if s.TargetType != nil {
		targetType = a.resolveType(s.TargetType)
	}
	targetSym := &symtab.Symbol{
		Name:     a.name(s.TargetName),
		Kind:     symtab.SymbolVariable,
		Type:     targetType,
		Span:     s.Span(),
		Constant: !s.Mutable,
	}
	if err := a.currentScope.Define(targetSym); err != nil {
		a.errorf("S110", s.Span(), "%s", err)
	}

	a.checkStmt(s.Body)
	a.exitScope()
}

func (a *Analyzer) checkReturnStmt(s *ast.ReturnStmt) {
	if a.currentFunction == nil {
		a.errorf("T030", s.Span(), "redde outside of a function")
		return
	}

	fnType, _ := fnTypeOf(a.currentFunction)
	expected := types.Type(types.Vacuum)
	if fnType != nil {
		expected = fnType.ReturnType
	}

	if s.Value == nil {
		if !expected.Equals(types.Vacuum) {
			a.errorf("T010", s.Span(), "missing return value of type %s", expected)
		}
		return
	}

	valueType := a.checkExpr(s.Value)
	a.checkAssignable(valueType, expected, s.Value.Span())
}

// checkConditionType validates that a control-flow condition is boolean
// (or quodlibet, whose real value is decided at run time). kind names the
// construct in the diagnostic ("si", "dum") for a clearer message.
func (a *Analyzer) checkConditionType(code, kind string, condType types.Type, span sourcemap.Span) {
	if condType == types.Invalid || condType.Equals(types.Quodlibet) {
		return
	}
	if !types.IsBooleanType(condType) {
		a.errorf(code, span, "%s condition must be booleanum, got %s", kind, condType)
	}
}

// checkAssignable reports a T010 diagnostic if value is not assignable to
// target, and returns whether the assignment was valid. A value or target
// of types.Invalid is assumed to already have an associated diagnostic
// from whatever produced it, so no second diagnostic is raised here -
// otherwise a single malformed expression could cascade into dozens of
// unrelated-looking errors.
func (a *Analyzer) checkAssignable(value, target types.Type, span sourcemap.Span) bool {
	if value == types.Invalid || target == types.Invalid {
		return true
	}
	if value.AssignableTo(target) {
		return true
	}
	a.errorf("T010", span, "cannot assign %s to %s", value, target)
	return false
}

// resolveType turns a parsed type annotation into a types.Type, recursing
// through array and optional wrapping. A nil annotation (unannotated
// declaration) resolves to quodlibet, Scriptum's dynamic top type.
func (a *Analyzer) resolveType(t *ast.TypeExpr) types.Type {
	if t == nil {
		return types.Quodlibet
	}
	if t.Array != nil {
		return types.NewArray(a.resolveType(t.Array))
	}
	if t.Optional != nil {
		return types.NewOptional(a.resolveType(t.Optional))
	}

	resolved := types.FromName(t.Name)
	if resolved == types.Invalid {
		a.errorf("S102", t.Span(), "unknown type %q", t.Name)
	}
	return resolved
}
