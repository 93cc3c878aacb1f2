package interp

import (
	"fmt"

	"github.com/hassandahiru/scriptum/internal/sourcemap"
)

// FaultKind classifies a runtime fault, mirroring the diagnostic taxonomy
// the static stages use but for errors that can only surface at run time.
type FaultKind int

const (
	TypeFault FaultKind = iota
	ArityMismatch
	UnknownMember
	IndexOutOfBounds
	DivisionByZero
	NameFault
	ImmutabilityFault
)

func (k FaultKind) String() string {
	switch k {
	case TypeFault:
		return "TypeFault"
	case ArityMismatch:
		return "ArityMismatch"
	case UnknownMember:
		return "UnknownMember"
	case IndexOutOfBounds:
		return "IndexOutOfBounds"
	case DivisionByZero:
		return "DivisionByZero"
	case NameFault:
		return "NameFault"
	case ImmutabilityFault:
		return "ImmutabilityFault"
	default:
		return "Fault"
	}
}

// InterpretError is a runtime fault at a specific IR span. The interpreter
// aborts the current run on the first one rather than accumulating, unlike
// the static stages.
type InterpretError struct {
	Kind    FaultKind
	Message string
	Span    sourcemap.Span
}

func (e *InterpretError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func newFault(kind FaultKind, span sourcemap.Span, format string, args ...interface{}) error {
	return &InterpretError{Kind: kind, Message: fmt.Sprintf(format, args...), Span: span}
}
