package lexer

import (
	"sort"
	"strings"

	"github.com/hassandahiru/scriptum/internal/dfatable"
)

// operators and punctuation, in the order listLiteralPatterns will sort
// them (longest lexeme first, so the declared order can serve as a tiebreak
// only among equal-length literals — maximal munch already prefers longer
// matches regardless of declaration order).
var operatorLexemes = []string{
	"===", "!==", "==", "!=", "<=", ">=", "&&", "||", "??", "**", "->", "=>",
	"=", "<", ">", "+", "-", "*", "/", "%", "!", "?", ":", ".",
}

var punctuationLexemes = []string{
	"(", ")", "{", "}", "[", "]", ",", ";",
}

// regexMeta are characters that are meaningful to the regex engine and must
// be escaped to match them literally.
const regexMeta = `.*+?()[]|\^`

func literalPattern(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(regexMeta, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Patterns exposes the declarative pattern table cmd/gentable needs to
// serialize a DFA table file offline, identical to the one sharedTable
// builds in-process.
func Patterns() []dfatable.PatternDef {
	return tokenPatterns()
}

// tokenPatterns returns the declarative pattern table, grounded on the
// reference lexer's TOKEN_PATTERNS list: whitespace and comments are high-
// priority ignored patterns, then literals (number, string, identifier),
// then the operator/punctuation literal patterns sorted longest-first.
func tokenPatterns() []dfatable.PatternDef {
	defs := []dfatable.PatternDef{
		{Name: "WHITESPACE", Pattern: `[ \t\r\n\f\v]+`, Priority: 100, Ignore: true, KindTag: "whitespace"},
		{Name: "COMMENT_LINE", Pattern: `//[^\r\n]*`, Priority: 90, Ignore: true, KindTag: "comment"},
		{Name: "COMMENT_BLOCK", Pattern: `/\*([^*]|\*+[^*/])*\*+/`, Priority: 90, Ignore: true, KindTag: "comment"},
		{Name: "NUMBER_LITERAL", Pattern: `(0|[1-9][0-9_]*)(\.[0-9_]+)?([eE][+-]?[0-9_]+)?`, Priority: 70, KindTag: "number"},
		{Name: "STRING_LITERAL", Pattern: `"([^"\\]|\\["\\/bfnrt]|\\u[0-9a-fA-F][0-9a-fA-F][0-9a-fA-F][0-9a-fA-F])*"`, Priority: 70, KindTag: "string"},
		{Name: "IDENTIFIER", Pattern: `[A-Za-z_][A-Za-z0-9_]*`, Priority: 60, KindTag: "identifier"},
	}

	literalNames := make([]string, 0, len(operatorLexemes)+len(punctuationLexemes))
	literalNames = append(literalNames, operatorLexemes...)
	literalNames = append(literalNames, punctuationLexemes...)
	sort.SliceStable(literalNames, func(i, j int) bool {
		return len(literalNames[i]) > len(literalNames[j])
	})

	for _, lexeme := range literalNames {
		priority := 50
		tag := "operator"
		if _, ok := punctuationKinds[lexeme]; ok {
			priority = 40
			tag = "punctuation"
		}
		defs = append(defs, dfatable.PatternDef{
			Name:     "LITERAL_" + lexeme,
			Pattern:  literalPattern(lexeme),
			Priority: priority,
			KindTag:  tag,
		})
	}

	return defs
}
