package lexer

import (
	"testing"

	"github.com/hassandahiru/scriptum/internal/sourcemap"
)

func tokenize(t *testing.T, src string) []Token {
	t.Helper()
	file := sourcemap.NewFile("test.stm", src)
	tokens, diags := Tokenize(file)
	for _, d := range diags {
		t.Errorf("unexpected diagnostic: %s", d.Message)
	}
	return tokens
}

func TestTokenizeArithmeticExpression(t *testing.T) {
	tokens := tokenize(t, "1 + 2 * 3")
	want := []TokenKind{Number, Plus, Number, Star, Number, EOF}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(tokens), len(want), tokens)
	}
	for i, k := range want {
		if tokens[i].Kind != k {
			t.Errorf("token %d: got %s, want %s", i, tokens[i].Kind, k)
		}
	}
}

func TestTokenizeKeywordVsIdentifier(t *testing.T) {
	tokens := tokenize(t, "si siValue")
	if tokens[0].Kind != KwSi {
		t.Errorf("expected keyword si, got %s", tokens[0].Kind)
	}
	if tokens[1].Kind != Identifier || tokens[1].Lexeme != "siValue" {
		t.Errorf("expected identifier siValue, got %s(%s)", tokens[1].Kind, tokens[1].Lexeme)
	}
}

func TestTokenizeStringAndNumberValues(t *testing.T) {
	tokens := tokenize(t, `numerus x = 3.5; textus s = "hi\n";`)
	var numTok, strTok Token
	for _, tok := range tokens {
		if tok.Kind == Number {
			numTok = tok
		}
		if tok.Kind == String {
			strTok = tok
		}
	}
	if numTok.Value.(float64) != 3.5 {
		t.Errorf("number value = %v, want 3.5", numTok.Value)
	}
	if strTok.Value.(string) != "hi\n" {
		t.Errorf("string value = %q, want %q", strTok.Value, "hi\n")
	}
}

func TestTokenizeOperatorMaximalMunch(t *testing.T) {
	tokens := tokenize(t, "a === b !== c ?? d")
	want := []TokenKind{Identifier, EqEqEq, Identifier, NotEqEq, Identifier, QuestionQuestion, Identifier, EOF}
	for i, k := range want {
		if tokens[i].Kind != k {
			t.Errorf("token %d: got %s, want %s", i, tokens[i].Kind, k)
		}
	}
}

func TestTokenizeRecoversFromInvalidCharacter(t *testing.T) {
	file := sourcemap.NewFile("test.stm", "numerus x @ = 1;")
	tokens, diags := Tokenize(file)
	if len(diags) == 0 {
		t.Fatal("expected a diagnostic for the '@' character")
	}
	var sawAssign bool
	for _, tok := range tokens {
		if tok.Kind == Assign {
			sawAssign = true
		}
	}
	if !sawAssign {
		t.Error("expected lexing to recover and continue past the invalid character")
	}
}

func TestTokenizeBlockCommentNonNesting(t *testing.T) {
	tokens := tokenize(t, "/* a /* b */ numerus x = 1;")
	// The comment closes at the first "*/"; "numerus x = 1;" remains to lex.
	if tokens[0].Kind != KwNumerus {
		t.Errorf("expected comment to end at first */, got first token %s", tokens[0].Kind)
	}
}
