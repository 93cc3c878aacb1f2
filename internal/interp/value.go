// Package interp is Scriptum's tree-walking interpreter: it executes a
// lowered ModuleIr directly, with no further compilation stage.
//
// DESIGN CHOICE: the IR is structural (see internal/ir), so evaluation is a
// straightforward recursive walk rather than a bytecode dispatch loop - the
// interpreter mirrors the IR's own shape the same way the IR mirrors the
// AST's.
package interp

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hassandahiru/scriptum/internal/sourcemap"
)

// Kind tags a Value's dynamic type, mirroring the Numerus/Textus/Booleanum/
// Nullum/Indefinitum/Array/Object/Callable lattice from internal/semantic/types.
type Kind int

const (
	KindNumerus Kind = iota
	KindTextus
	KindBooleanum
	KindNullum
	KindIndefinitum
	KindArray
	KindObject
	KindCallable
)

func (k Kind) String() string {
	switch k {
	case KindNumerus:
		return "numerus"
	case KindTextus:
		return "textus"
	case KindBooleanum:
		return "booleanum"
	case KindNullum:
		return "nullum"
	case KindIndefinitum:
		return "indefinitum"
	case KindArray:
		return "array"
	case KindObject:
		return "structura"
	case KindCallable:
		return "functio"
	default:
		return "unknown"
	}
}

// Value is any runtime value the interpreter produces or consumes. Concrete
// types below are the only implementations; a type switch over them is
// exhaustive.
type Value interface {
	Kind() Kind
	String() string
	valueNode()
}

// Numerus is a 64-bit float, Scriptum's only numeric type.
type Numerus float64

func (Numerus) Kind() Kind    { return KindNumerus }
func (v Numerus) String() string {
	return strconv.FormatFloat(float64(v), 'g', -1, 64)
}
func (Numerus) valueNode() {}

// Textus is a Scriptum string.
type Textus string

func (Textus) Kind() Kind      { return KindTextus }
func (v Textus) String() string { return string(v) }
func (Textus) valueNode()      {}

// Booleanum is verum/falsum.
type Booleanum bool

func (Booleanum) Kind() Kind { return KindBooleanum }
func (v Booleanum) String() string {
	if bool(v) {
		return "verum"
	}
	return "falsum"
}
func (Booleanum) valueNode() {}

// Nullum is the explicit absence of a value.
type Nullum struct{}

func (Nullum) Kind() Kind      { return KindNullum }
func (Nullum) String() string  { return "nullum" }
func (Nullum) valueNode()      {}

// NullumValue is the single shared nullum instance; nullum carries no data,
// so every occurrence can point at the same value.
var NullumValue = Nullum{}

// Indefinitum is the uninitialized/unknown sentinel, distinct from nullum.
type Indefinitum struct{}

func (Indefinitum) Kind() Kind     { return KindIndefinitum }
func (Indefinitum) String() string { return "indefinitum" }
func (Indefinitum) valueNode()     {}

// IndefinitumValue is the single shared indefinitum instance.
var IndefinitumValue = Indefinitum{}

// Array is a Scriptum array, always homogeneous at the type-checker level
// but stored dynamically here since the interpreter does not re-check types.
type Array struct {
	Elements []Value
}

func (Array) Kind() Kind { return KindArray }
func (a Array) String() string {
	parts := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
func (Array) valueNode() {}

// Object is a structura literal's runtime value: an insertion-ordered
// key/value map, since spec semantics require object literal fields to
// preserve source order (e.g. for textual rendering).
type Object struct {
	Keys   []string
	Values map[string]Value
}

// NewObject builds an empty ordered object.
func NewObject() *Object {
	return &Object{Values: make(map[string]Value)}
}

// Set inserts or updates key, preserving first-insertion order.
func (o *Object) Set(key string, value Value) {
	if _, exists := o.Values[key]; !exists {
		o.Keys = append(o.Keys, key)
	}
	o.Values[key] = value
}

// Get returns the value at key and whether it was present.
func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.Values[key]
	return v, ok
}

func (*Object) Kind() Kind { return KindObject }
func (o *Object) String() string {
	parts := make([]string, len(o.Keys))
	for i, k := range o.Keys {
		parts[i] = fmt.Sprintf("%s: %s", k, o.Values[k].String())
	}
	return "structura { " + strings.Join(parts, ", ") + " }"
}
func (*Object) valueNode() {}

// Callable is any value that can appear as the callee of an IrCall: a
// declared function or a lambda, each closing over the environment it was
// defined in.
type Callable interface {
	Value
	// Call invokes the callable with already-evaluated arguments. span is
	// the call expression's span, used to locate an arity-mismatch fault at
	// the call site rather than at the callee's declaration.
	Call(i *Interpreter, args []Value, span sourcemap.Span) (Value, error)
}

// Truthy implements Scriptum's condition-coercion rule used by si/dum/&&/||:
// only booleanum participates in boolean contexts directly, but the
// interpreter still needs a total coercion for defensive contexts (e.g. a
// quodlibet-typed condition that slipped past analysis). Nullum,
// indefinitum, a zero numerus and an empty textus are falsy; every other
// value is truthy.
func Truthy(v Value) bool {
	switch x := v.(type) {
	case Booleanum:
		return bool(x)
	case Nullum:
		return false
	case Indefinitum:
		return false
	case Numerus:
		return x != 0
	case Textus:
		return x != ""
	default:
		return true
	}
}
