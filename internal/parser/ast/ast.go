// Package ast defines the Abstract Syntax Tree for a Scriptum source file:
// a single Module root (no module/import system), an Interner shared by the
// whole parse, and a monotonic NodeId assigned to every node.
//
// DESIGN CHOICE (kept from the teacher): interfaces for Expr/Stmt and
// position info (now a byte-offset Span rather than a line/column Position)
// on every node. Nodes have no Accept method; consumers dispatch with a type
// switch.
package ast

import "github.com/hassandahiru/scriptum/internal/sourcemap"

// NodeId uniquely identifies a node within one parse. IDs are assigned by a
// single monotonic counter and are never reused, even across error
// recovery, so two different nodes never share an id.
type NodeId int

// IdGen hands out monotonic NodeIds. Not safe for concurrent use: parsing
// is single-threaded per spec's concurrency model.
type IdGen struct {
	next NodeId
}

// Next returns the next unused NodeId.
func (g *IdGen) Next() NodeId {
	id := g.next
	g.next++
	return id
}

// Symbol is an interned identifier name: a dense key into an Interner.
type Symbol int

// Interner is a bidirectional string<->Symbol map. Its lifetime matches the
// AST it was built for.
type Interner struct {
	strings []string
	index   map[string]Symbol
}

// NewInterner creates an empty Interner.
func NewInterner() *Interner {
	return &Interner{index: make(map[string]Symbol)}
}

// Intern returns the Symbol for s, creating a new dense key if s has not
// been seen before.
func (in *Interner) Intern(s string) Symbol {
	if id, ok := in.index[s]; ok {
		return id
	}
	id := Symbol(len(in.strings))
	in.strings = append(in.strings, s)
	in.index[s] = id
	return id
}

// Lookup returns the string for a Symbol. Panics if sym was never interned
// by this Interner, which would indicate a cross-module-parse programming
// error.
func (in *Interner) Lookup(sym Symbol) string {
	return in.strings[sym]
}

// Node is the base interface every AST node implements.
type Node interface {
	Id() NodeId
	Span() sourcemap.Span
}

// base is embedded by every concrete node to provide Id/Span without
// per-node boilerplate.
type base struct {
	id   NodeId
	span sourcemap.Span
}

func (b base) Id() NodeId           { return b.id }
func (b base) Span() sourcemap.Span { return b.span }

func newBase(gen *IdGen, span sourcemap.Span) base {
	return base{id: gen.Next(), span: span}
}

// Expr is any node that produces a value.
type Expr interface {
	Node
	exprNode()
}

// Stmt is any node that performs an action.
type Stmt interface {
	Node
	stmtNode()
}

// Module is the root of a parsed source file: a flat list of top-level
// declarations. There is no package/import system (single-file compilation
// unit, per the module's explicit non-goals).
type Module struct {
	base
	Items []Item
}

func (m *Module) stmtNode() {}

// Item is a top-level declaration: a function or a global variable.
type Item interface {
	Node
	itemNode()
}

// FunctionDecl declares a named function.
type FunctionDecl struct {
	base
	Name       Symbol
	Params     []*Parameter
	ReturnType *TypeExpr // nil if unannotated
	Body       *BlockStmt
}

func (d *FunctionDecl) itemNode() {}

// GlobalVarDecl declares a module-level variable.
type GlobalVarDecl struct {
	base
	Name        Symbol
	Mutable     bool
	Type        *TypeExpr // nil if unannotated
	Initializer Expr
}

func (d *GlobalVarDecl) itemNode() {}

// Parameter is one function parameter.
type Parameter struct {
	base
	Name    Symbol
	Type    *TypeExpr
	Default Expr // nil if no default
}

// TypeExpr is a type annotation as written in source.
type TypeExpr struct {
	base
	Name     string    // "numerus", "textus", "booleanum", ... "quodlibet"
	Array    *TypeExpr // non-nil for "T[]"
	Optional *TypeExpr // non-nil for "T?"
}
