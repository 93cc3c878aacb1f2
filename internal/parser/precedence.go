package parser

import "github.com/hassandahiru/scriptum/internal/lexer"

// Precedence levels for the Pratt/precedence-climbing expression parser.
// Higher binds tighter. Matches the twelve-level table: assignment and
// ternary are right-associative, as is exponentiation; everything else
// left-associative.
type Precedence int

const (
	PrecNone       Precedence = iota
	PrecAssignment            // =
	PrecTernary               // ?:
	PrecNullish               // ??
	PrecOr                    // ||
	PrecAnd                   // &&
	PrecEquality              // == != === !==
	PrecComparison            // < <= > >=
	PrecTerm                  // + -
	PrecFactor                // * / %
	PrecExponent              // **
	PrecUnary                 // ! - (prefix)
	PrecCall                  // . [] () (postfix)
)

func infixPrecedence(kind lexer.TokenKind) Precedence {
	switch kind {
	case lexer.Assign:
		return PrecAssignment
	case lexer.Question:
		return PrecTernary
	case lexer.QuestionQuestion:
		return PrecNullish
	case lexer.OrOr:
		return PrecOr
	case lexer.AndAnd:
		return PrecAnd
	case lexer.EqEq, lexer.NotEq, lexer.EqEqEq, lexer.NotEqEq:
		return PrecEquality
	case lexer.Less, lexer.LessEq, lexer.Greater, lexer.GreaterEq:
		return PrecComparison
	case lexer.Plus, lexer.Minus:
		return PrecTerm
	case lexer.Star, lexer.Slash, lexer.Percent:
		return PrecFactor
	case lexer.StarStar:
		return PrecExponent
	case lexer.Dot, lexer.LBracket, lexer.LParen:
		return PrecCall
	default:
		return PrecNone
	}
}

func isRightAssociative(kind lexer.TokenKind) bool {
	switch kind {
	case lexer.Assign, lexer.Question, lexer.StarStar:
		return true
	default:
		return false
	}
}
