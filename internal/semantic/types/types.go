// Package types implements Scriptum's type system.
//
// DESIGN PHILOSOPHY:
// Scriptum is statically checked but deliberately escapable: every type is
// either one of the primitive kinds, a composite built from them, or
// `quodlibet`, the dynamic top type that is assignable to and from anything.
// That escape hatch exists so the analyzer can report real mismatches
// without having to solve the general dynamic-typing problem.
//
// KEY DESIGN CHOICES:
// - Structural typing throughout (no nominal types; Scriptum has no type
//   declarations, only the built-in primitive and composite shapes).
// - `quodlibet` is assignable to and from every other type. A value typed
//   `quodlibet` defers its real type check to the interpreter.
// - `Optional(T)` accepts a value of T or `nullum`, never the reverse of a
//   bare T (a plain numerus is not itself optional).
package types

import (
	"fmt"
	"strings"
)

// Type is the interface every Scriptum type implements.
type Type interface {
	// String returns a human-readable representation of the type.
	String() string

	// Equals checks if this type is identical to another type.
	Equals(other Type) bool

	// AssignableTo checks if a value of this type can be assigned to a
	// location of type other. More lenient than Equals: every type is
	// AssignableTo quodlibet and quodlibet is AssignableTo everything.
	AssignableTo(other Type) bool

	// kind returns the kind of type, for internal dispatch only; external
	// code should use a type switch on the concrete Type instead.
	kind() TypeKind
}

// TypeKind identifies a type's shape for quick checks without a full type
// switch.
type TypeKind int

const (
	KindInvalid TypeKind = iota
	KindNumerus
	KindTextus
	KindBooleanum
	KindVacuum
	KindNullum
	KindIndefinitum
	KindQuodlibet
	KindArray
	KindObject
	KindFunction
	KindOptional
)

// --- primitive types (stateless singletons) ---

type invalidType struct{}
type numerusType struct{}
type textusType struct{}
type booleanumType struct{}
type vacuumType struct{}
type nullumType struct{}
type indefinitumType struct{}
type quodlibetType struct{}
type objectType struct{}

var (
	// Invalid stands in for a type that could not be determined, e.g. after
	// a prior error; it is compatible with nothing, so it never triggers a
	// cascade of further diagnostics once reported once.
	Invalid Type = invalidType{}

	// Numerus is the single numeric type (IEEE-754 double, per the
	// interpreter's value model).
	Numerus Type = numerusType{}

	// Textus is the string type.
	Textus Type = textusType{}

	// Booleanum is the boolean type.
	Booleanum Type = booleanumType{}

	// Vacuum is the "no value" return type of a function that returns
	// nothing, analogous to void.
	Vacuum Type = vacuumType{}

	// Nullum is the type of the `nullum` literal itself, distinct from
	// Optional: a bare variable is never implicitly Nullum.
	Nullum Type = nullumType{}

	// Indefinitum is the type of the `indefinitum` literal (an explicit
	// "not yet assigned" marker, distinct from Nullum).
	Indefinitum Type = indefinitumType{}

	// Quodlibet is the dynamic top type: assignable to and from every type.
	Quodlibet Type = quodlibetType{}

	// Object is the type of a `structura { ... }` literal. Scriptum has no
	// nominal record types, so every object literal shares this one type;
	// field access is checked at runtime, not statically.
	Object Type = objectType{}
)

func (invalidType) String() string             { return "<invalid>" }
func (invalidType) Equals(other Type) bool     { return false }
func (invalidType) AssignableTo(other Type) bool { return false }
func (invalidType) kind() TypeKind             { return KindInvalid }

func (numerusType) String() string         { return "numerus" }
func (numerusType) kind() TypeKind         { return KindNumerus }
func (t numerusType) Equals(other Type) bool { return other.kind() == KindNumerus }
func (t numerusType) AssignableTo(other Type) bool {
	return other.kind() == KindQuodlibet || other.kind() == KindNumerus || assignableToOptional(t, other)
}

func (textusType) String() string         { return "textus" }
func (textusType) kind() TypeKind         { return KindTextus }
func (t textusType) Equals(other Type) bool { return other.kind() == KindTextus }
func (t textusType) AssignableTo(other Type) bool {
	return other.kind() == KindQuodlibet || other.kind() == KindTextus || assignableToOptional(t, other)
}

func (booleanumType) String() string         { return "booleanum" }
func (booleanumType) kind() TypeKind         { return KindBooleanum }
func (t booleanumType) Equals(other Type) bool { return other.kind() == KindBooleanum }
func (t booleanumType) AssignableTo(other Type) bool {
	return other.kind() == KindQuodlibet || other.kind() == KindBooleanum || assignableToOptional(t, other)
}

func (vacuumType) String() string         { return "vacuum" }
func (vacuumType) kind() TypeKind         { return KindVacuum }
func (t vacuumType) Equals(other Type) bool { return other.kind() == KindVacuum }
func (t vacuumType) AssignableTo(other Type) bool {
	return other.kind() == KindQuodlibet || other.kind() == KindVacuum
}

func (nullumType) String() string { return "nullum" }
func (nullumType) kind() TypeKind { return KindNullum }
func (t nullumType) Equals(other Type) bool { return other.kind() == KindNullum }
func (t nullumType) AssignableTo(other Type) bool {
	if other.kind() == KindQuodlibet || other.kind() == KindNullum {
		return true
	}
	if _, ok := other.(*OptionalType); ok {
		return true
	}
	return false
}

func (indefinitumType) String() string { return "indefinitum" }
func (indefinitumType) kind() TypeKind { return KindIndefinitum }
func (t indefinitumType) Equals(other Type) bool { return other.kind() == KindIndefinitum }
func (t indefinitumType) AssignableTo(other Type) bool {
	return other.kind() == KindQuodlibet || other.kind() == KindIndefinitum || assignableToOptional(t, other)
}

func (quodlibetType) String() string { return "quodlibet" }
func (quodlibetType) kind() TypeKind { return KindQuodlibet }
func (t quodlibetType) Equals(other Type) bool { return other.kind() == KindQuodlibet }
func (t quodlibetType) AssignableTo(other Type) bool { return true }

func (objectType) String() string { return "structura" }
func (objectType) kind() TypeKind { return KindObject }
func (t objectType) Equals(other Type) bool { return other.kind() == KindObject }
func (t objectType) AssignableTo(other Type) bool {
	return other.kind() == KindQuodlibet || other.kind() == KindObject || assignableToOptional(t, other)
}

// --- composite types ---

// ArrayType is a homogeneous array `T[]`.
type ArrayType struct {
	Element Type
}

// NewArray builds an ArrayType over element.
func NewArray(element Type) *ArrayType {
	return &ArrayType{Element: element}
}

func (a *ArrayType) String() string { return a.Element.String() + "[]" }
func (a *ArrayType) kind() TypeKind { return KindArray }

func (a *ArrayType) Equals(other Type) bool {
	o, ok := other.(*ArrayType)
	return ok && a.Element.Equals(o.Element)
}

func (a *ArrayType) AssignableTo(other Type) bool {
	if other.kind() == KindQuodlibet || assignableToOptional(a, other) {
		return true
	}
	o, ok := other.(*ArrayType)
	return ok && a.Element.AssignableTo(o.Element)
}

// FunctionType is a function signature, compared structurally.
type FunctionType struct {
	Parameters []Type
	ReturnType Type
}

// NewFunction builds a FunctionType.
func NewFunction(params []Type, ret Type) *FunctionType {
	return &FunctionType{Parameters: params, ReturnType: ret}
}

func (f *FunctionType) String() string {
	parts := make([]string, len(f.Parameters))
	for i, p := range f.Parameters {
		parts[i] = p.String()
	}
	return fmt.Sprintf("functio(%s): %s", strings.Join(parts, ", "), f.ReturnType.String())
}

func (f *FunctionType) kind() TypeKind { return KindFunction }

func (f *FunctionType) Equals(other Type) bool {
	o, ok := other.(*FunctionType)
	if !ok || len(f.Parameters) != len(o.Parameters) {
		return false
	}
	for i, p := range f.Parameters {
		if !p.Equals(o.Parameters[i]) {
			return false
		}
	}
	return f.ReturnType.Equals(o.ReturnType)
}

// AssignableTo compares signatures structurally, parameter-for-parameter and
// by return type. Scriptum does not model parameter-position variance
// separately from Equals; a narrower check is unnecessary since function
// values are never partially applied or widened in this language.
func (f *FunctionType) AssignableTo(other Type) bool {
	if other.kind() == KindQuodlibet || assignableToOptional(f, other) {
		return true
	}
	o, ok := other.(*FunctionType)
	if !ok || len(f.Parameters) != len(o.Parameters) {
		return false
	}
	for i, p := range f.Parameters {
		if !p.AssignableTo(o.Parameters[i]) {
			return false
		}
	}
	return f.ReturnType.AssignableTo(o.ReturnType)
}

// OptionalType is `T?`: a value of T, or nullum.
type OptionalType struct {
	Inner Type
}

// NewOptional builds an OptionalType over inner. Wrapping an already-optional
// type in another Optional collapses to the same shape rather than nesting,
// since `T??` has no meaning distinct from `T?`.
func NewOptional(inner Type) *OptionalType {
	if opt, ok := inner.(*OptionalType); ok {
		return opt
	}
	return &OptionalType{Inner: inner}
}

func (o *OptionalType) String() string { return o.Inner.String() + "?" }
func (o *OptionalType) kind() TypeKind { return KindOptional }

func (o *OptionalType) Equals(other Type) bool {
	other2, ok := other.(*OptionalType)
	return ok && o.Inner.Equals(other2.Inner)
}

func (o *OptionalType) AssignableTo(other Type) bool {
	if other.kind() == KindQuodlibet {
		return true
	}
	if other2, ok := other.(*OptionalType); ok {
		return o.Inner.AssignableTo(other2.Inner)
	}
	// A T? is only assignable to a bare T if its inner type is; the nullum
	// case still has to be handled at runtime since static checking cannot
	// know here whether the value is actually present.
	return o.Inner.AssignableTo(other)
}

// --- helpers ---

// assignableToOptional reports whether other is some T? whose T accepts
// value, the rule that lets a bare T flow into an optional location.
func assignableToOptional(value, other Type) bool {
	opt, ok := other.(*OptionalType)
	return ok && value.AssignableTo(opt.Inner)
}

// IsNumeric reports whether t is the numerus type.
func IsNumeric(t Type) bool {
	return t.kind() == KindNumerus
}

// IsBooleanType reports whether t is the booleanum type.
func IsBooleanType(t Type) bool {
	return t.kind() == KindBooleanum
}

// Underlying strips one layer of Optional, returning the inner type and
// whether t was optional at all.
func Underlying(t Type) (Type, bool) {
	if opt, ok := t.(*OptionalType); ok {
		return opt.Inner, true
	}
	return t, false
}

// FromName resolves a TypeExpr base-type keyword spelling to its primitive
// Type. Returns Invalid for anything that is not one of the built-in
// primitive names (composite shapes are built by the caller from the
// TypeExpr's Array/Optional wrapping, not from this lookup).
func FromName(name string) Type {
	switch name {
	case "numerus":
		return Numerus
	case "textus":
		return Textus
	case "booleanum":
		return Booleanum
	case "vacuum":
		return Vacuum
	case "nullum":
		return Nullum
	case "indefinitum":
		return Indefinitum
	case "quodlibet":
		return Quodlibet
	default:
		return Invalid
	}
}
