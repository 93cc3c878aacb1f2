// Package regex implements the regular expression engine used to build the
// lexer's combined DFA: a text parser producing a small regex AST, and a
// Thompson construction turning that AST into an NFA with multiple tagged
// accept states (one per token pattern).
package regex

// Node is a regex AST node.
type Node interface {
	node()
}

// Empty matches the empty string.
type Empty struct{}

func (Empty) node() {}

// Literal matches a single literal rune.
type Literal struct {
	Rune rune
}

func (Literal) node() {}

// Range is an inclusive rune range within a CharClass.
type Range struct {
	Lo, Hi rune
}

// CharClass matches any rune covered by its ranges (or, if Negated, any rune
// not covered by them). Any matches every rune (used for `.`).
type CharClass struct {
	Ranges  []Range
	Negated bool
	Any     bool
}

func (CharClass) node() {}

// Concat matches its elements in sequence.
type Concat struct {
	Elements []Node
}

func (Concat) node() {}

// Alternate matches any one of its options.
type Alternate struct {
	Options []Node
}

func (Alternate) node() {}

// RepeatKind distinguishes the `*`, `+`, and `?` repetition forms. Bounded
// `{m,n}` quantifiers have no RepeatKind of their own: the parser unfolds
// them into m mandatory copies followed by (n-m) ZeroOrOne copies (or a
// trailing ZeroOrMore when n is unbounded) rather than building this AST.
type RepeatKind int

const (
	ZeroOrMore RepeatKind = iota
	OneOrMore
	ZeroOrOne
)

// Repeat applies a repetition quantifier to Node.
type Repeat struct {
	Node Node
	Kind RepeatKind
}

func (Repeat) node() {}

// ConcatNodes builds a Concat, flattening nested Concats and collapsing a
// single-element sequence to that element directly.
func ConcatNodes(nodes []Node) Node {
	flat := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if c, ok := n.(Concat); ok {
			flat = append(flat, c.Elements...)
			continue
		}
		flat = append(flat, n)
	}
	if len(flat) == 1 {
		return flat[0]
	}
	return Concat{Elements: flat}
}

// AlternateNodes builds an Alternate, flattening nested Alternates.
func AlternateNodes(nodes []Node) Node {
	flat := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if a, ok := n.(Alternate); ok {
			flat = append(flat, a.Options...)
			continue
		}
		flat = append(flat, n)
	}
	if len(flat) == 1 {
		return flat[0]
	}
	return Alternate{Options: flat}
}

func singleton(r rune) CharClass {
	return CharClass{Ranges: []Range{{Lo: r, Hi: r}}}
}
