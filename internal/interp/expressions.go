package interp

import (
	"math"

	"github.com/hassandahiru/scriptum/internal/ir"
	"github.com/hassandahiru/scriptum/internal/sourcemap"
)

// evalOptional evaluates expr, or returns Nullum for a nil expression (an
// absent initializer or a bare `redde;`).
func (i *Interpreter) evalOptional(expr ir.IrExpr, env *Environment) (Value, error) {
	if expr == nil {
		return NullumValue, nil
	}
	return i.eval(expr, env)
}

func (i *Interpreter) eval(expr ir.IrExpr, env *Environment) (Value, error) {
	switch ex := expr.(type) {
	case *ir.IrLiteral:
		return literalValue(ex), nil

	case *ir.IrIdentifier:
		return env.Get(ex.Name, ex.Span())

	case *ir.IrUnary:
		return i.evalUnary(ex, env)

	case *ir.IrBinary:
		return i.evalBinary(ex, env)

	case *ir.IrLogical:
		return i.evalLogical(ex, env)

	case *ir.IrConditional:
		cond, err := i.eval(ex.Condition, env)
		if err != nil {
			return nil, err
		}
		if Truthy(cond) {
			return i.eval(ex.Then, env)
		}
		return i.eval(ex.Else, env)

	case *ir.IrAssignment:
		return i.evalAssignment(ex, env)

	case *ir.IrCall:
		return i.evalCall(ex, env)

	case *ir.IrMemberAccess:
		return i.evalMemberAccess(ex, env)

	case *ir.IrIndex:
		return i.evalIndex(ex, env)

	case *ir.IrArrayLiteral:
		elements := make([]Value, len(ex.Elements))
		for idx, elem := range ex.Elements {
			value, err := i.eval(elem, env)
			if err != nil {
				return nil, err
			}
			elements[idx] = value
		}
		return Array{Elements: elements}, nil

	case *ir.IrObjectLiteral:
		obj := NewObject()
		for _, prop := range ex.Properties {
			value, err := i.eval(prop.Value, env)
			if err != nil {
				return nil, err
			}
			obj.Set(prop.Key, value)
		}
		return obj, nil

	case *ir.IrLambda:
		return &RuntimeLambda{decl: ex, closure: env}, nil
	}

	return nil, newFault(TypeFault, expr.Span(), "unsupported expression node %T", expr)
}

func literalValue(lit *ir.IrLiteral) Value {
	switch v := lit.Value.(type) {
	case float64:
		return Numerus(v)
	case string:
		return Textus(v)
	case bool:
		return Booleanum(v)
	case nil:
		return NullumValue
	default:
		return NullumValue
	}
}

func (i *Interpreter) evalUnary(ex *ir.IrUnary, env *Environment) (Value, error) {
	operand, err := i.eval(ex.Operand, env)
	if err != nil {
		return nil, err
	}
	switch ex.Operator {
	case "!":
		return Booleanum(!Truthy(operand)), nil
	case "-":
		n, ok := operand.(Numerus)
		if !ok {
			return nil, newFault(TypeFault, ex.Span(), "unary - requires numerus, got %s", operand.Kind())
		}
		return -n, nil
	}
	return nil, newFault(TypeFault, ex.Span(), "unknown unary operator %q", ex.Operator)
}

func (i *Interpreter) evalLogical(ex *ir.IrLogical, env *Environment) (Value, error) {
	left, err := i.eval(ex.Left, env)
	if err != nil {
		return nil, err
	}
	switch ex.Operator {
	case "&&":
		if !Truthy(left) {
			return Booleanum(false), nil
		}
		right, err := i.eval(ex.Right, env)
		if err != nil {
			return nil, err
		}
		return Booleanum(Truthy(right)), nil

	case "||":
		if Truthy(left) {
			return Booleanum(true), nil
		}
		right, err := i.eval(ex.Right, env)
		if err != nil {
			return nil, err
		}
		return Booleanum(Truthy(right)), nil

	case "??":
		if isNullish(left) {
			return i.eval(ex.Right, env)
		}
		return left, nil
	}
	return nil, newFault(TypeFault, ex.Span(), "unknown logical operator %q", ex.Operator)
}

func isNullish(v Value) bool {
	switch v.(type) {
	case Nullum, Indefinitum:
		return true
	default:
		return false
	}
}

func (i *Interpreter) evalBinary(ex *ir.IrBinary, env *Environment) (Value, error) {
	left, err := i.eval(ex.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := i.eval(ex.Right, env)
	if err != nil {
		return nil, err
	}

	switch ex.Operator {
	case "==":
		return Booleanum(valuesEqual(left, right)), nil
	case "!=":
		return Booleanum(!valuesEqual(left, right)), nil
	case "===":
		return Booleanum(valuesStrictEqual(left, right)), nil
	case "!==":
		return Booleanum(!valuesStrictEqual(left, right)), nil
	case "+":
		return evalPlus(left, right, ex.Span())
	case "<", "<=", ">", ">=":
		return evalComparison(ex.Operator, left, right, ex.Span())
	case "-", "*", "/", "%", "**":
		return evalArithmetic(ex.Operator, left, right, ex.Span())
	}
	return nil, newFault(TypeFault, ex.Span(), "unknown binary operator %q", ex.Operator)
}

func evalPlus(left, right Value, span sourcemap.Span) (Value, error) {
	if l, ok := left.(Numerus); ok {
		if r, ok := right.(Numerus); ok {
			return l + r, nil
		}
	}
	if l, ok := left.(Textus); ok {
		if r, ok := right.(Textus); ok {
			return l + r, nil
		}
	}
	return nil, newFault(TypeFault, span, "+ requires two numerus or two textus operands, got %s and %s", left.Kind(), right.Kind())
}

func evalComparison(op string, left, right Value, span sourcemap.Span) (Value, error) {
	l, ok := left.(Numerus)
	if !ok {
		return nil, newFault(TypeFault, span, "%s requires numerus operands, got %s", op, left.Kind())
	}
	r, ok := right.(Numerus)
	if !ok {
		return nil, newFault(TypeFault, span, "%s requires numerus operands, got %s", op, right.Kind())
	}
	switch op {
	case "<":
		return Booleanum(l < r), nil
	case "<=":
		return Booleanum(l <= r), nil
	case ">":
		return Booleanum(l > r), nil
	case ">=":
		return Booleanum(l >= r), nil
	}
	return nil, newFault(TypeFault, span, "unknown comparison operator %q", op)
}

func evalArithmetic(op string, left, right Value, span sourcemap.Span) (Value, error) {
	l, ok := left.(Numerus)
	if !ok {
		return nil, newFault(TypeFault, span, "%s requires numerus operands, got %s", op, left.Kind())
	}
	r, ok := right.(Numerus)
	if !ok {
		return nil, newFault(TypeFault, span, "%s requires numerus operands, got %s", op, right.Kind())
	}
	switch op {
	case "-":
		return l - r, nil
	case "*":
		return l * r, nil
	case "/":
		// IEEE 754 division by zero yields +/-Inf or NaN rather than a
		// fault - Go's float64 division already has that behavior.
		return l / r, nil
	case "%":
		return Numerus(math.Mod(float64(l), float64(r))), nil
	case "**":
		return Numerus(math.Pow(float64(l), float64(r))), nil
	}
	return nil, newFault(TypeFault, span, "unknown arithmetic operator %q", op)
}

func valuesEqual(left, right Value) bool {
	if left.Kind() != right.Kind() {
		return false
	}
	switch l := left.(type) {
	case Numerus:
		return l == right.(Numerus)
	case Textus:
		return l == right.(Textus)
	case Booleanum:
		return l == right.(Booleanum)
	case Nullum:
		return true
	case Indefinitum:
		return true
	case Array:
		r := right.(Array)
		if len(l.Elements) != len(r.Elements) {
			return false
		}
		for idx, elem := range l.Elements {
			if !valuesEqual(elem, r.Elements[idx]) {
				return false
			}
		}
		return true
	case *Object:
		r := right.(*Object)
		if len(l.Keys) != len(r.Keys) {
			return false
		}
		for _, key := range l.Keys {
			rv, ok := r.Get(key)
			if !ok || !valuesEqual(l.Values[key], rv) {
				return false
			}
		}
		return true
	default:
		return left == right
	}
}

// valuesStrictEqual backs "===": identical to "==" for primitives and
// arrays. A structura literal additionally requires reference identity
// rather than structural equality, the same distinction JavaScript's ===
// draws for objects (the name this operator borrows from) - two distinct
// `structura { ... }` literals with identical fields are == but not ===.
// Array has no pointer identity of its own in this value model (it is a
// plain slice wrapper, not comparable via ==), so it falls back to
// structural comparison for both operators.
func valuesStrictEqual(left, right Value) bool {
	lo, lok := left.(*Object)
	ro, rok := right.(*Object)
	if lok || rok {
		return lok && rok && lo == ro
	}
	return valuesEqual(left, right)
}

func (i *Interpreter) evalAssignment(ex *ir.IrAssignment, env *Environment) (Value, error) {
	value, err := i.eval(ex.Value, env)
	if err != nil {
		return nil, err
	}
	switch target := ex.Target.(type) {
	case *ir.IrIdentifier:
		if err := env.Assign(target.Name, value, target.Span()); err != nil {
			return nil, err
		}
		return value, nil

	case *ir.IrMemberAccess:
		obj, err := i.eval(target.Object, env)
		if err != nil {
			return nil, err
		}
		o, ok := obj.(*Object)
		if !ok {
			return nil, newFault(TypeFault, target.Span(), "member assignment requires a structura value, got %s", obj.Kind())
		}
		o.Set(target.Property, value)
		return value, nil

	case *ir.IrIndex:
		collection, err := i.eval(target.Collection, env)
		if err != nil {
			return nil, err
		}
		index, err := i.eval(target.Index, env)
		if err != nil {
			return nil, err
		}
		arr, ok := collection.(Array)
		if !ok {
			return nil, newFault(TypeFault, target.Span(), "index assignment requires an array, got %s", collection.Kind())
		}
		idx, err := arrayIndex(index, len(arr.Elements), target.Span())
		if err != nil {
			return nil, err
		}
		arr.Elements[idx] = value
		return value, nil
	}
	return nil, newFault(TypeFault, ex.Span(), "unsupported assignment target %T", ex.Target)
}

func (i *Interpreter) evalCall(ex *ir.IrCall, env *Environment) (Value, error) {
	callee, err := i.eval(ex.Callee, env)
	if err != nil {
		return nil, err
	}
	callable, ok := callee.(Callable)
	if !ok {
		return nil, newFault(TypeFault, ex.Span(), "attempted to call a non-callable value of type %s", callee.Kind())
	}
	args := make([]Value, len(ex.Arguments))
	for idx, arg := range ex.Arguments {
		value, err := i.eval(arg, env)
		if err != nil {
			return nil, err
		}
		args[idx] = value
	}
	return callable.Call(i, args, ex.Span())
}

func (i *Interpreter) evalMemberAccess(ex *ir.IrMemberAccess, env *Environment) (Value, error) {
	obj, err := i.eval(ex.Object, env)
	if err != nil {
		return nil, err
	}
	o, ok := obj.(*Object)
	if !ok {
		return nil, newFault(TypeFault, ex.Span(), "member access requires a structura value, got %s", obj.Kind())
	}
	value, ok := o.Get(ex.Property)
	if !ok {
		return nil, newFault(UnknownMember, ex.Span(), "structura has no member %q", ex.Property)
	}
	return value, nil
}

func (i *Interpreter) evalIndex(ex *ir.IrIndex, env *Environment) (Value, error) {
	collection, err := i.eval(ex.Collection, env)
	if err != nil {
		return nil, err
	}
	index, err := i.eval(ex.Index, env)
	if err != nil {
		return nil, err
	}
	arr, ok := collection.(Array)
	if !ok {
		return nil, newFault(TypeFault, ex.Span(), "index operation requires an array, got %s", collection.Kind())
	}
	idx, err := arrayIndex(index, len(arr.Elements), ex.Span())
	if err != nil {
		return nil, err
	}
	return arr.Elements[idx], nil
}

func arrayIndex(index Value, length int, span sourcemap.Span) (int, error) {
	n, ok := index.(Numerus)
	if !ok {
		return 0, newFault(TypeFault, span, "array index must be numerus, got %s", index.Kind())
	}
	idx := int(n)
	if idx < 0 || idx >= length {
		return 0, newFault(IndexOutOfBounds, span, "index %d out of bounds for array of length %d", idx, length)
	}
	return idx, nil
}
