package interp

import (
	"fmt"

	"github.com/hassandahiru/scriptum/internal/ir"
	"github.com/hassandahiru/scriptum/internal/sourcemap"
)

// ctrlSignal tags how a statement finished, letting redde/frange/perge
// unwind through ordinary Go return values instead of panic/recover.
//
// DESIGN CHOICE (redesign from the reference this package is grounded on):
// the Python interpreter it was ported from raises ReturnSignal/BreakSignal/
// ContinueSignal as exceptions caught at the nearest boundary. Go's
// panic/recover is reserved here for genuine internal invariant violations
// (an IR node type the lowering pass could never actually produce), so
// control flow instead threads a tagged signal through every statement-
// executing method's return value.
type ctrlSignal int

const (
	sigNone ctrlSignal = iota
	sigReturn
	sigBreak
	sigContinue
)

// Interpreter executes one lowered module. It holds no mutable state beyond
// what a single Run call needs, so a value can be reused across calls.
type Interpreter struct {
	globalEnv *Environment
}

// Run lowers a ModuleIr straight to its result: registers every top-level
// function, evaluates every global initializer, then invokes the "main"
// function with no arguments. The returned Value is main's return value, or
// Nullum if main falls off the end of its body without an explicit redde.
func Run(module *ir.ModuleIr) (Value, error) {
	interp := &Interpreter{globalEnv: NewEnvironment(nil)}
	return interp.run(module)
}

func (i *Interpreter) run(module *ir.ModuleIr) (Value, error) {
	for _, fn := range module.Functions {
		runtimeFn := &RuntimeFunction{decl: fn, closure: i.globalEnv}
		if err := i.globalEnv.Declare(fn.Name, runtimeFn, false, fn.Span()); err != nil {
			return nil, err
		}
	}
	for _, g := range module.Globals {
		value, err := i.evalOptional(g.Initializer, i.globalEnv)
		if err != nil {
			return nil, err
		}
		if err := i.globalEnv.Declare(g.Name, value, g.Mutable, g.Span()); err != nil {
			return nil, err
		}
	}

	entry, err := i.globalEnv.Get("main", module.Span())
	if err != nil {
		return nil, newFault(NameFault, module.Span(), "entry point %q not found", "main")
	}
	callable, ok := entry.(Callable)
	if !ok {
		return nil, newFault(TypeFault, module.Span(), "entry point %q is not callable", "main")
	}
	return callable.Call(i, nil, module.Span())
}

// RuntimeFunction is a declared function bound to the environment it closes
// over - the module's global frame, since Scriptum has no nested function
// declarations.
type RuntimeFunction struct {
	decl    *ir.IrFunction
	closure *Environment
}

func (*RuntimeFunction) Kind() Kind       { return KindCallable }
func (r *RuntimeFunction) String() string { return fmt.Sprintf("<functio %s>", r.decl.Name) }
func (*RuntimeFunction) valueNode()       {}

func (r *RuntimeFunction) Call(i *Interpreter, args []Value, span sourcemap.Span) (Value, error) {
	return i.invoke(r.decl.Parameters, r.decl.Body, r.closure, args, span)
}

// RuntimeLambda is an anonymous function value; its closure is whatever
// environment was active at the point the IrLambda expression was
// evaluated, captured by reference so later mutations of enclosing
// variables are visible the way a real closure's should be.
type RuntimeLambda struct {
	decl    *ir.IrLambda
	closure *Environment
}

func (*RuntimeLambda) Kind() Kind     { return KindCallable }
func (*RuntimeLambda) String() string { return "<lambda>" }
func (*RuntimeLambda) valueNode()     {}

func (r *RuntimeLambda) Call(i *Interpreter, args []Value, span sourcemap.Span) (Value, error) {
	if r.decl.BodyExpr != nil {
		callEnv, err := i.bindParameters(r.decl.Parameters, args, r.closure, span)
		if err != nil {
			return nil, err
		}
		return i.eval(r.decl.BodyExpr, callEnv)
	}
	return i.invoke(r.decl.Parameters, r.decl.BodyStatements, r.closure, args, span)
}

// invoke runs a function-shaped body to completion: parameters are bound in
// a fresh frame chained to closure (not to the caller's frame), the body
// executes directly in that frame, and a return signal short-circuits to
// its carried value. Falling off the end of the body yields Nullum.
func (i *Interpreter) invoke(params []*ir.IrParameter, body []ir.IrStatement, closure *Environment, args []Value, span sourcemap.Span) (Value, error) {
	callEnv, err := i.bindParameters(params, args, closure, span)
	if err != nil {
		return nil, err
	}
	signal, value, err := i.execStatements(body, callEnv)
	if err != nil {
		return nil, err
	}
	if signal == sigReturn {
		return value, nil
	}
	return NullumValue, nil
}

func (i *Interpreter) bindParameters(params []*ir.IrParameter, args []Value, closure *Environment, span sourcemap.Span) (*Environment, error) {
	if len(args) > len(params) {
		return nil, newFault(ArityMismatch, span, "too many arguments: want at most %d, got %d", len(params), len(args))
	}
	callEnv := NewEnvironment(closure)
	for idx, param := range params {
		var value Value
		switch {
		case idx < len(args):
			value = args[idx]
		case param.DefaultValue != nil:
			evaluated, err := i.eval(param.DefaultValue, closure)
			if err != nil {
				return nil, err
			}
			value = evaluated
		default:
			return nil, newFault(ArityMismatch, span, "missing argument for parameter %q", param.Name)
		}
		if err := callEnv.Declare(param.Name, value, false, param.Span()); err != nil {
			return nil, err
		}
	}
	return callEnv, nil
}

// execBlock runs a statement list in its own child frame, used wherever the
// IR's shape-preservation promises a branch/loop body always gets one
// (si/aliter branches, dum/pro bodies) even when the list is empty.
func (i *Interpreter) execBlock(stmts []ir.IrStatement, parent *Environment) (ctrlSignal, Value, error) {
	return i.execStatements(stmts, NewEnvironment(parent))
}

func (i *Interpreter) execStatements(stmts []ir.IrStatement, env *Environment) (ctrlSignal, Value, error) {
	for _, stmt := range stmts {
		signal, value, err := i.execStatement(stmt, env)
		if err != nil {
			return sigNone, nil, err
		}
		if signal != sigNone {
			return signal, value, nil
		}
	}
	return sigNone, nil, nil
}

func (i *Interpreter) execStatement(stmt ir.IrStatement, env *Environment) (ctrlSignal, Value, error) {
	switch st := stmt.(type) {
	case *ir.IrVariableDeclaration:
		value, err := i.evalOptional(st.Initializer, env)
		if err != nil {
			return sigNone, nil, err
		}
		if err := env.Declare(st.Name, value, st.Mutable, st.Span()); err != nil {
			return sigNone, nil, err
		}
		return sigNone, nil, nil

	case *ir.IrExpressionStatement:
		if _, err := i.eval(st.Expression, env); err != nil {
			return sigNone, nil, err
		}
		return sigNone, nil, nil

	case *ir.IrReturn:
		value, err := i.evalOptional(st.Value, env)
		if err != nil {
			return sigNone, nil, err
		}
		return sigReturn, value, nil

	case *ir.IrIf:
		cond, err := i.eval(st.Condition, env)
		if err != nil {
			return sigNone, nil, err
		}
		branch := st.Then
		if !Truthy(cond) {
			branch = st.Else
		}
		return i.execBlock(branch, env)

	case *ir.IrWhile:
		for {
			cond, err := i.eval(st.Condition, env)
			if err != nil {
				return sigNone, nil, err
			}
			if !Truthy(cond) {
				return sigNone, nil, nil
			}
			signal, value, err := i.execBlock(st.Body, env)
			if err != nil {
				return sigNone, nil, err
			}
			switch signal {
			case sigBreak:
				return sigNone, nil, nil
			case sigReturn:
				return sigReturn, value, nil
			}
		}

	case *ir.IrForIn:
		iterable, err := i.eval(st.Iterable, env)
		if err != nil {
			return sigNone, nil, err
		}
		elements, err := asArray(iterable, st.Iterable.Span())
		if err != nil {
			return sigNone, nil, err
		}
		for _, element := range elements {
			loopEnv := NewEnvironment(env)
			if err := loopEnv.Declare(st.Target.Name, element, st.Target.Mutable, st.Target.Span()); err != nil {
				return sigNone, nil, err
			}
			signal, value, err := i.execBlock(st.Body, loopEnv)
			if err != nil {
				return sigNone, nil, err
			}
			switch signal {
			case sigBreak:
				return sigNone, nil, nil
			case sigReturn:
				return sigReturn, value, nil
			}
		}
		return sigNone, nil, nil

	case *ir.IrBreak:
		return sigBreak, nil, nil

	case *ir.IrContinue:
		return sigContinue, nil, nil
	}

	return sigNone, nil, fmt.Errorf("interp: unhandled statement type %T", stmt)
}

// asArray requires v to be an Array, the only iterable Scriptum has today.
func asArray(v Value, span sourcemap.Span) ([]Value, error) {
	arr, ok := v.(Array)
	if !ok {
		return nil, newFault(TypeFault, span, "value of type %s is not iterable", v.Kind())
	}
	return arr.Elements, nil
}
