package lexer

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/hassandahiru/scriptum/internal/dfatable"
	"github.com/hassandahiru/scriptum/internal/diag"
	"github.com/hassandahiru/scriptum/internal/sourcemap"
)

// Lexer drives the combined DFA over a source file's byte buffer, one
// NextToken call at a time, exactly like a hand-written scanner would, but
// matching is delegated entirely to the table instead of a switch statement.
type Lexer struct {
	file  *sourcemap.File
	table *dfatable.DFA
	pos   int
}

// New constructs a Lexer for file, building (or loading) the shared DFA
// table on first use.
func New(file *sourcemap.File) (*Lexer, error) {
	table, err := sharedTable()
	if err != nil {
		return nil, err
	}
	return &Lexer{file: file, table: table, pos: 0}, nil
}

// NextToken scans and returns the next non-ignored token, or an EOF token
// once the input is exhausted. On a lexical error it returns an Invalid
// token alongside a non-nil diagnostic and advances past the bad rune so
// scanning can continue (error recovery, not abort).
func (l *Lexer) NextToken() (Token, *diag.Diagnostic) {
	for {
		if l.pos >= len(l.file.Text) {
			return Token{Kind: EOF, Span: sourcemap.Span{Start: l.pos, End: l.pos}}, nil
		}

		length, acc := l.matchAt(l.pos)

		// Maximal munch still finds the longest *unterminated* prefix it can
		// accept - a bare Slash for "/*..." with no closing "*/", or nothing
		// at all for a "\"..." with no closing quote - rather than failing
		// outright. Catch both here, before that partial match is mistaken
		// for a real token, and report the specific unterminated diagnostic
		// spanning the opener to EOF instead.
		if start := l.pos; strings.HasPrefix(l.file.Text[start:], `"`) && (acc == nil || acc.KindTag != "string") {
			l.pos = len(l.file.Text)
			d := diag.Newf("LEX011", sourcemap.Span{Start: start, End: l.pos}, "unterminated string literal")
			return Token{Kind: Invalid, Lexeme: l.file.Text[start:l.pos], Span: d.Span}, &d
		}
		if start := l.pos; strings.HasPrefix(l.file.Text[start:], `/*`) && (acc == nil || acc.KindTag != "comment") {
			l.pos = len(l.file.Text)
			d := diag.Newf("LEX013", sourcemap.Span{Start: start, End: l.pos}, "unterminated block comment")
			return Token{Kind: Invalid, Lexeme: l.file.Text[start:l.pos], Span: d.Span}, &d
		}

		if length == 0 {
			start := l.pos
			_, size := utf8.DecodeRuneInString(l.file.Text[l.pos:])
			if size == 0 {
				size = 1
			}
			l.pos += size
			d := diag.Newf("LEX001", sourcemap.Span{Start: start, End: l.pos},
				"unexpected character %q", l.file.Text[start:l.pos])
			return Token{Kind: Invalid, Lexeme: l.file.Text[start:l.pos], Span: d.Span}, &d
		}

		start := l.pos
		end := l.pos + length
		lexeme := l.file.Text[start:end]
		l.pos = end

		if acc == nil {
			d := diag.Newf("LEX002", sourcemap.Span{Start: start, End: end},
				"unrecognized token %q", lexeme)
			return Token{Kind: Invalid, Lexeme: lexeme, Span: d.Span}, &d
		}

		if acc.Ignore {
			continue
		}

		tok, lexErr := l.buildToken(acc, lexeme, sourcemap.Span{Start: start, End: end})
		return tok, lexErr
	}
}

// matchAt runs maximal munch from byte offset start: walk the DFA rune by
// rune, remembering the length at the most recent accepting state, and
// return that length (0 if the DFA never accepted, meaning the character at
// start cannot begin any token).
func (l *Lexer) matchAt(start int) (int, *dfatable.Accepting) {
	state := l.table.Start
	bestLen := 0
	var bestAccept *dfatable.Accepting

	pos := start
	for pos < len(l.file.Text) {
		r, size := utf8.DecodeRuneInString(l.file.Text[pos:])
		if size == 0 {
			break
		}
		class := l.table.ClassOf(r)
		next := l.table.Trans[state][class]
		state = next
		pos += size

		if acc := l.table.Accept[state]; acc != nil {
			bestLen = pos - start
			bestAccept = acc
		}

		if isSinkForever(l.table, state) {
			break
		}
	}

	return bestLen, bestAccept
}

// isSinkForever detects the totalized sink state (non-accepting, every
// transition a self-loop) so matchAt can stop early instead of scanning to
// EOF once no further progress is possible.
func isSinkForever(d *dfatable.DFA, state int) bool {
	if d.Accept[state] != nil {
		return false
	}
	for _, target := range d.Trans[state] {
		if target != state {
			return false
		}
	}
	return true
}

// buildToken maps an accepted pattern to a Token, decoding literal values
// and reclassifying identifiers against the keyword table.
func (l *Lexer) buildToken(acc *dfatable.Accepting, lexeme string, span sourcemap.Span) (Token, *diag.Diagnostic) {
	switch acc.KindTag {
	case "number":
		return l.buildNumber(lexeme, span)
	case "string":
		return l.buildString(lexeme, span)
	case "identifier":
		kind := LookupKeyword(lexeme)
		return Token{Kind: kind, Lexeme: lexeme, Span: span}, nil
	case "operator", "punctuation":
		kind, ok := operatorKinds[lexeme]
		if !ok {
			kind, ok = punctuationKinds[lexeme]
		}
		if !ok {
			d := diag.Newf("LEX003", span, "unknown literal token %q", lexeme)
			return Token{Kind: Invalid, Lexeme: lexeme, Span: span}, &d
		}
		return Token{Kind: kind, Lexeme: lexeme, Span: span}, nil
	default:
		d := diag.Newf("LEX004", span, "internal: unhandled pattern kind %q", acc.KindTag)
		return Token{Kind: Invalid, Lexeme: lexeme, Span: span}, &d
	}
}

func (l *Lexer) buildNumber(lexeme string, span sourcemap.Span) (Token, *diag.Diagnostic) {
	clean := strings.ReplaceAll(lexeme, "_", "")
	value, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		d := diag.Newf("LEX010", span, "malformed number literal %q", lexeme)
		return Token{Kind: Invalid, Lexeme: lexeme, Span: span}, &d
	}
	return Token{Kind: Number, Lexeme: lexeme, Span: span, Value: value}, nil
}

// buildString decodes an already-matched STRING_LITERAL lexeme. The pattern
// itself requires both the opening and closing quote, so lexeme is always at
// least 2 bytes here - an unterminated string never reaches matchAt's accept
// path at all and is caught earlier in NextToken instead.
func (l *Lexer) buildString(lexeme string, span sourcemap.Span) (Token, *diag.Diagnostic) {
	inner := lexeme[1 : len(lexeme)-1]
	decoded, err := decodeStringEscapes(inner)
	if err != nil {
		d := diag.Newf("LEX012", span, "bad escape sequence in string literal: %v", err)
		return Token{Kind: Invalid, Lexeme: lexeme, Span: span}, &d
	}
	return Token{Kind: String, Lexeme: lexeme, Span: span, Value: decoded}, nil
}

// decodeStringEscapes processes the escape sequences accepted by the
// STRING_LITERAL pattern: \", \\, \/, \b, \f, \n, \r, \t, \uXXXX.
func decodeStringEscapes(s string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(s) {
			return "", strconv.ErrSyntax
		}
		switch s[i] {
		case '"':
			b.WriteByte('"')
		case '\\':
			b.WriteByte('\\')
		case '/':
			b.WriteByte('/')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'u':
			if i+4 >= len(s) {
				return "", strconv.ErrSyntax
			}
			code, err := strconv.ParseUint(s[i+1:i+5], 16, 32)
			if err != nil {
				return "", err
			}
			b.WriteRune(rune(code))
			i += 4
		default:
			return "", strconv.ErrSyntax
		}
	}
	return b.String(), nil
}

// Tokenize scans the entire file, returning every non-ignored token
// (including a trailing EOF token) plus any lexical diagnostics. Scanning
// continues past errors so multiple lexical mistakes are reported at once.
func Tokenize(file *sourcemap.File) ([]Token, []diag.Diagnostic) {
	l, err := New(file)
	if err != nil {
		return nil, []diag.Diagnostic{diag.New("LEX000", "failed to build lexer table: "+err.Error(), sourcemap.Span{})}
	}

	var tokens []Token
	var diags []diag.Diagnostic
	for {
		tok, d := l.NextToken()
		if d != nil {
			diags = append(diags, *d)
		}
		if tok.Kind != Invalid {
			tokens = append(tokens, tok)
		}
		if tok.Kind == EOF {
			break
		}
	}
	return tokens, diags
}
