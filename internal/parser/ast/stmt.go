package ast

import "github.com/hassandahiru/scriptum/internal/sourcemap"

// BlockStmt is a brace-delimited sequence of statements introducing a new
// scope.
type BlockStmt struct {
	base
	Stmts []Stmt
}

func (s *BlockStmt) stmtNode() {}

// VarDeclStmt declares a local variable (mutabilis/constans).
type VarDeclStmt struct {
	base
	Name        Symbol
	Mutable     bool
	Type        *TypeExpr
	Initializer Expr
}

func (s *VarDeclStmt) stmtNode() {}

// ExprStmt evaluates an expression for its side effects and discards the
// value.
type ExprStmt struct {
	base
	X Expr
}

func (s *ExprStmt) stmtNode() {}

// IfStmt is `si cond stmt (aliter stmt)?`. Then and Else are each any single
// Statement, not necessarily a block. Else is nil when the clause is absent.
// Dangling-else is resolved at parse time by binding the `aliter` clause to
// the nearest enclosing `si` still missing one, with no backtracking.
type IfStmt struct {
	base
	Cond Expr
	Then Stmt
	Else Stmt // *IfStmt for an else-if chain, or nil
}

func (s *IfStmt) stmtNode() {}

// WhileStmt is `dum cond stmt`. Body is any single Statement.
type WhileStmt struct {
	base
	Cond Expr
	Body Stmt
}

func (s *WhileStmt) stmtNode() {}

// ForInStmt is `pro name in iterable stmt`. Body is any single Statement.
type ForInStmt struct {
	base
	TargetName Symbol
	Mutable    bool
	TargetType *TypeExpr
	Iterable   Expr
	Body       Stmt
}

func (s *ForInStmt) stmtNode() {}

// ReturnStmt is `redde expr;` or a bare `redde;`.
type ReturnStmt struct {
	base
	Value Expr // nil for a bare return
}

func (s *ReturnStmt) stmtNode() {}

// BreakStmt is `frange;`.
type BreakStmt struct {
	base
}

func (s *BreakStmt) stmtNode() {}

// ContinueStmt is `perge;`.
type ContinueStmt struct {
	base
}

func (s *ContinueStmt) stmtNode() {}

// NewBlockStmt, NewVarDeclStmt, etc. are constructor helpers used by the
// parser so every node consistently gets a fresh NodeId and span.

func NewBlockStmt(gen *IdGen, span sourcemap.Span, stmts []Stmt) *BlockStmt {
	return &BlockStmt{base: newBase(gen, span), Stmts: stmts}
}

func NewVarDeclStmt(gen *IdGen, span sourcemap.Span, name Symbol, mutable bool, typ *TypeExpr, init Expr) *VarDeclStmt {
	return &VarDeclStmt{base: newBase(gen, span), Name: name, Mutable: mutable, Type: typ, Initializer: init}
}

func NewExprStmt(gen *IdGen, span sourcemap.Span, x Expr) *ExprStmt {
	return &ExprStmt{base: newBase(gen, span), X: x}
}

func NewIfStmt(gen *IdGen, span sourcemap.Span, cond Expr, then Stmt, els Stmt) *IfStmt {
	return &IfStmt{base: newBase(gen, span), Cond: cond, Then: then, Else: els}
}

func NewWhileStmt(gen *IdGen, span sourcemap.Span, cond Expr, body Stmt) *WhileStmt {
	return &WhileStmt{base: newBase(gen, span), Cond: cond, Body: body}
}

func NewForInStmt(gen *IdGen, span sourcemap.Span, name Symbol, mutable bool, typ *TypeExpr, iterable Expr, body Stmt) *ForInStmt {
	return &ForInStmt{base: newBase(gen, span), TargetName: name, Mutable: mutable, TargetType: typ, Iterable: iterable, Body: body}
}

func NewReturnStmt(gen *IdGen, span sourcemap.Span, value Expr) *ReturnStmt {
	return &ReturnStmt{base: newBase(gen, span), Value: value}
}

func NewBreakStmt(gen *IdGen, span sourcemap.Span) *BreakStmt {
	return &BreakStmt{base: newBase(gen, span)}
}

func NewContinueStmt(gen *IdGen, span sourcemap.Span) *ContinueStmt {
	return &ContinueStmt{base: newBase(gen, span)}
}

func NewModule(gen *IdGen, span sourcemap.Span, items []Item) *Module {
	return &Module{base: newBase(gen, span), Items: items}
}

func NewFunctionDecl(gen *IdGen, span sourcemap.Span, name Symbol, params []*Parameter, ret *TypeExpr, body *BlockStmt) *FunctionDecl {
	return &FunctionDecl{base: newBase(gen, span), Name: name, Params: params, ReturnType: ret, Body: body}
}

func NewGlobalVarDecl(gen *IdGen, span sourcemap.Span, name Symbol, mutable bool, typ *TypeExpr, init Expr) *GlobalVarDecl {
	return &GlobalVarDecl{base: newBase(gen, span), Name: name, Mutable: mutable, Type: typ, Initializer: init}
}

func NewParameter(gen *IdGen, span sourcemap.Span, name Symbol, typ *TypeExpr, def Expr) *Parameter {
	return &Parameter{base: newBase(gen, span), Name: name, Type: typ, Default: def}
}

func NewTypeExpr(gen *IdGen, span sourcemap.Span, name string, array, optional *TypeExpr) *TypeExpr {
	return &TypeExpr{base: newBase(gen, span), Name: name, Array: array, Optional: optional}
}
