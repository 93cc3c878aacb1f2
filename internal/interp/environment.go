package interp

import "github.com/hassandahiru/scriptum/internal/sourcemap"

// binding pairs a value with the mutability it was declared with.
type binding struct {
	value   Value
	mutable bool
}

// Environment is one frame of Scriptum's lexical environment chain: a flat
// map of names to bindings, with a parent pointer for enclosing scopes.
// Function calls push a frame whose parent is the captured closure
// environment, not the caller's - exactly the chain a lambda snapshot needs
// to keep working after its defining call returns.
type Environment struct {
	parent   *Environment
	bindings map[string]*binding
}

// NewEnvironment creates a frame chained to parent (nil for the global
// frame).
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{parent: parent, bindings: make(map[string]*binding)}
}

// Declare introduces name in this frame. Redeclaration within the same
// frame is a semantic-analysis error (S110) and never reaches here for a
// module that passed analysis; it is still guarded defensively.
func (e *Environment) Declare(name string, value Value, mutable bool, span sourcemap.Span) error {
	if _, exists := e.bindings[name]; exists {
		return newFault(NameFault, span, "name %q already declared in this scope", name)
	}
	e.bindings[name] = &binding{value: value, mutable: mutable}
	return nil
}

// Assign updates the nearest enclosing binding for name.
func (e *Environment) Assign(name string, value Value, span sourcemap.Span) error {
	frame := e.resolve(name)
	if frame == nil {
		return newFault(NameFault, span, "name %q is not defined", name)
	}
	b := frame.bindings[name]
	if !b.mutable {
		return newFault(ImmutabilityFault, span, "cannot assign to immutable binding %q", name)
	}
	b.value = value
	return nil
}

// Get reads the nearest enclosing binding for name.
func (e *Environment) Get(name string, span sourcemap.Span) (Value, error) {
	frame := e.resolve(name)
	if frame == nil {
		return nil, newFault(NameFault, span, "name %q is not defined", name)
	}
	return frame.bindings[name].value, nil
}

func (e *Environment) resolve(name string) *Environment {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.bindings[name]; ok {
			return env
		}
	}
	return nil
}
