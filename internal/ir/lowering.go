package ir

import (
	"github.com/hassandahiru/scriptum/internal/parser/ast"
)

// Lower turns an analyzed Module into its structural IR. interner must be
// the same Interner the module was parsed with, so symbol names resolve
// back to the strings the source actually used.
//
// Lowering assumes module already passed semantic analysis without error
// diagnostics: it does not re-check types or name resolution, only
// restructures the tree into IrStatement/IrExpr nodes.
func Lower(module *ast.Module, interner *ast.Interner) *ModuleIr {
	l := &lowerer{interner: interner}
	return l.lowerModule(module)
}

type lowerer struct {
	interner *ast.Interner
}

func (l *lowerer) name(sym ast.Symbol) string {
	return l.interner.Lookup(sym)
}

// typeAnnotation renders a parsed type annotation back into source-like
// text ("numerus[]?"), or "" for an absent annotation. Kept as a string
// rather than a types.Type because the IR is meant to be inspectable
// without importing the type checker.
func typeAnnotation(t *ast.TypeExpr) string {
	if t == nil {
		return ""
	}
	if t.Array != nil {
		return typeAnnotation(t.Array) + "[]"
	}
	if t.Optional != nil {
		return typeAnnotation(t.Optional) + "?"
	}
	return t.Name
}

func (l *lowerer) lowerModule(m *ast.Module) *ModuleIr {
	var globals []*IrVariable
	var functions []*IrFunction

	for _, item := range m.Items {
		switch d := item.(type) {
		case *ast.FunctionDecl:
			functions = append(functions, l.lowerFunction(d))
		case *ast.GlobalVarDecl:
			globals = append(globals, l.lowerGlobalVar(d))
		}
	}

	return &ModuleIr{irBase: irBase{m.Span()}, Globals: globals, Functions: functions}
}

func (l *lowerer) lowerGlobalVar(d *ast.GlobalVarDecl) *IrVariable {
	return &IrVariable{
		irBase:         irBase{d.Span()},
		Name:           l.name(d.Name),
		Mutable:        d.Mutable,
		TypeAnnotation: typeAnnotation(d.Type),
		Initializer:    l.lowerExprOpt(d.Initializer),
	}
}

func (l *lowerer) lowerFunction(d *ast.FunctionDecl) *IrFunction {
	params := make([]*IrParameter, len(d.Params))
	for i, p := range d.Params {
		params[i] = l.lowerParameter(p)
	}
	return &IrFunction{
		irBase:           irBase{d.Span()},
		Name:             l.name(d.Name),
		Parameters:       params,
		ReturnAnnotation: typeAnnotation(d.ReturnType),
		Body:             l.lowerBlock(d.Body),
	}
}

func (l *lowerer) lowerParameter(p *ast.Parameter) *IrParameter {
	return &IrParameter{
		irBase:         irBase{p.Span()},
		Name:           l.name(p.Name),
		TypeAnnotation: typeAnnotation(p.Type),
		DefaultValue:   l.lowerExprOpt(p.Default),
	}
}

// lowerBlock lowers a brace-delimited statement list into a flat
// []IrStatement: a block nested directly inside another (just `{ ... }`
// used as a statement) disappears, its statements spliced into the
// parent, since the IR has no scope-introducing block node of its own -
// internal/interp's Environment handles scoping instead.
func (l *lowerer) lowerBlock(block *ast.BlockStmt) []IrStatement {
	return l.lowerStmtList(block.Stmts)
}

func (l *lowerer) lowerStmtList(stmts []ast.Stmt) []IrStatement {
	result := []IrStatement{}
	for _, s := range stmts {
		result = append(result, l.lowerStmtFlat(s)...)
	}
	return result
}

// lowerStmtFlat lowers a single statement into one or more IrStatements,
// flattening a nested BlockStmt into its own statements rather than
// wrapping them in a block node.
func (l *lowerer) lowerStmtFlat(s ast.Stmt) []IrStatement {
	if block, ok := s.(*ast.BlockStmt); ok {
		return l.lowerStmtList(block.Stmts)
	}
	return []IrStatement{l.lowerStmt(s)}
}

func (l *lowerer) lowerStmt(s ast.Stmt) IrStatement {
	switch st := s.(type) {
	case *ast.VarDeclStmt:
		return &IrVariableDeclaration{
			irBase:         irBase{st.Span()},
			Name:           l.name(st.Name),
			Mutable:        st.Mutable,
			TypeAnnotation: typeAnnotation(st.Type),
			Initializer:    l.lowerExprOpt(st.Initializer),
		}

	case *ast.ExprStmt:
		return &IrExpressionStatement{irBase: irBase{st.Span()}, Expression: l.lowerExpr(st.X)}

	case *ast.IfStmt:
		elseBranch := []IrStatement{}
		if st.Else != nil {
			elseBranch = l.lowerStmtFlat(st.Else)
		}
		return &IrIf{
			irBase:    irBase{st.Span()},
			Condition: l.lowerExpr(st.Cond),
			Then:      l.lowerStmtFlat(st.Then),
			Else:      elseBranch,
		}

	case *ast.WhileStmt:
		return &IrWhile{
			irBase:    irBase{st.Span()},
			Condition: l.lowerExpr(st.Cond),
			Body:      l.lowerStmtFlat(st.Body),
		}

	case *ast.ForInStmt:
		return &IrForIn{
			irBase: irBase{st.Span()},
			Target: IrForTarget{
				irBase:         irBase{st.Span()},
				Name:           l.name(st.TargetName),
				Mutable:        st.Mutable,
				TypeAnnotation: typeAnnotation(st.TargetType),
			},
			Iterable: l.lowerExpr(st.Iterable),
			Body:     l.lowerStmtFlat(st.Body),
		}

	case *ast.ReturnStmt:
		return &IrReturn{irBase: irBase{st.Span()}, Value: l.lowerExprOpt(st.Value)}

	case *ast.BreakStmt:
		return &IrBreak{irBase: irBase{st.Span()}}

	case *ast.ContinueStmt:
		return &IrContinue{irBase: irBase{st.Span()}}
	}

	// Unreachable for a Module that parsed without error: every Stmt
	// concrete type is handled above.
	return nil
}

func (l *lowerer) lowerExprOpt(e ast.Expr) IrExpr {
	if e == nil {
		return nil
	}
	return l.lowerExpr(e)
}

func (l *lowerer) lowerExpr(e ast.Expr) IrExpr {
	switch ex := e.(type) {
	case *ast.IdentifierExpr:
		return &IrIdentifier{irBase: irBase{ex.Span()}, Name: l.name(ex.Name)}

	case *ast.LiteralExpr:
		return &IrLiteral{irBase: irBase{ex.Span()}, Value: ex.Value}

	case *ast.UnaryExpr:
		return &IrUnary{irBase: irBase{ex.Span()}, Operator: ex.Operator, Operand: l.lowerExpr(ex.Operand)}

	case *ast.BinaryExpr:
		return &IrBinary{
			irBase:   irBase{ex.Span()},
			Operator: ex.Operator,
			Left:     l.lowerExpr(ex.Left),
			Right:    l.lowerExpr(ex.Right),
		}

	case *ast.LogicalExpr:
		return &IrLogical{
			irBase:   irBase{ex.Span()},
			Operator: ex.Operator,
			Left:     l.lowerExpr(ex.Left),
			Right:    l.lowerExpr(ex.Right),
		}

	case *ast.ConditionalExpr:
		return &IrConditional{
			irBase:    irBase{ex.Span()},
			Condition: l.lowerExpr(ex.Cond),
			Then:      l.lowerExpr(ex.Then),
			Else:      l.lowerExpr(ex.Else),
		}

	case *ast.AssignmentExpr:
		return &IrAssignment{
			irBase: irBase{ex.Span()},
			Target: l.lowerExpr(ex.Target),
			Value:  l.lowerExpr(ex.Value),
		}

	case *ast.CallExpr:
		args := make([]IrExpr, len(ex.Args))
		for i, a := range ex.Args {
			args[i] = l.lowerExpr(a)
		}
		return &IrCall{irBase: irBase{ex.Span()}, Callee: l.lowerExpr(ex.Callee), Arguments: args}

	case *ast.MemberExpr:
		return &IrMemberAccess{
			irBase:   irBase{ex.Span()},
			Object:   l.lowerExpr(ex.Object),
			Property: l.name(ex.Property),
		}

	case *ast.IndexExpr:
		return &IrIndex{
			irBase:     irBase{ex.Span()},
			Collection: l.lowerExpr(ex.Collection),
			Index:      l.lowerExpr(ex.Index),
		}

	case *ast.GroupingExpr:
		// Parentheses only affect parse-time precedence; no IR node of
		// their own is needed once the tree shape already reflects them.
		return l.lowerExpr(ex.Inner)

	case *ast.ArrayLiteralExpr:
		elements := make([]IrExpr, len(ex.Elements))
		for i, elem := range ex.Elements {
			elements[i] = l.lowerExpr(elem)
		}
		return &IrArrayLiteral{irBase: irBase{ex.Span()}, Elements: elements}

	case *ast.ObjectLiteralExpr:
		props := make([]IrObjectProperty, len(ex.Properties))
		for i, p := range ex.Properties {
			props[i] = IrObjectProperty{Key: l.name(p.Key), Value: l.lowerExpr(p.Value)}
		}
		return &IrObjectLiteral{irBase: irBase{ex.Span()}, Properties: props}

	case *ast.LambdaExpr:
		return l.lowerLambda(ex)
	}

	// Unreachable for a Module that parsed without error.
	return nil
}

func (l *lowerer) lowerLambda(ex *ast.LambdaExpr) *IrLambda {
	params := make([]*IrParameter, len(ex.Params))
	for i, p := range ex.Params {
		params[i] = l.lowerParameter(p)
	}

	lambda := &IrLambda{
		irBase:           irBase{ex.Span()},
		Parameters:       params,
		ReturnAnnotation: typeAnnotation(ex.ReturnType),
	}
	if ex.BodyBlock != nil {
		lambda.BodyStatements = l.lowerBlock(ex.BodyBlock)
	} else {
		lambda.BodyExpr = l.lowerExprOpt(ex.BodyExpr)
	}
	return lambda
}
