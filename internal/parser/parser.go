// Package parser turns a token stream into a Module AST using recursive
// descent for statements and declarations, and precedence climbing (see
// precedence.go) for expressions.
//
// Errors do not abort parsing: on a malformed construct the parser records a
// diagnostic, synchronizes to the next statement boundary, and continues, so
// a single source file can report more than one syntax error per pass.
package parser

import (
	"github.com/hassandahiru/scriptum/internal/diag"
	"github.com/hassandahiru/scriptum/internal/lexer"
	"github.com/hassandahiru/scriptum/internal/parser/ast"
	"github.com/hassandahiru/scriptum/internal/sourcemap"
)

// Parser consumes a pre-lexed token stream and produces an AST.
type Parser struct {
	tokens   []lexer.Token
	pos      int
	gen      *ast.IdGen
	interner *ast.Interner
	diags    []diag.Diagnostic
}

// Parse lexes and parses file, returning the resulting Module, the interner
// the AST's Symbols were allocated from, and every diagnostic (lexical and
// syntactic) accumulated along the way.
func Parse(file *sourcemap.File) (*ast.Module, *ast.Interner, []diag.Diagnostic) {
	tokens, lexDiags := lexer.Tokenize(file)
	p := &Parser{
		tokens:   tokens,
		gen:      &ast.IdGen{},
		interner: ast.NewInterner(),
	}
	module := p.parseModule()
	diags := append(append([]diag.Diagnostic{}, lexDiags...), p.diags...)
	return module, p.interner, diags
}

// --- token cursor helpers ---

func (p *Parser) peek() lexer.Token {
	return p.tokens[p.pos]
}

func (p *Parser) previous() lexer.Token {
	if p.pos == 0 {
		return p.tokens[0]
	}
	return p.tokens[p.pos-1]
}

func (p *Parser) advance() lexer.Token {
	tok := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *Parser) atEnd() bool {
	return p.peek().Kind == lexer.EOF
}

func (p *Parser) check(kind lexer.TokenKind) bool {
	return p.peek().Kind == kind
}

func (p *Parser) match(kind lexer.TokenKind) bool {
	if p.check(kind) {
		p.advance()
		return true
	}
	return false
}

// expect consumes the current token if it has the given kind. On mismatch it
// records a diagnostic and leaves the cursor where it was, returning ok=false
// so the caller can decide how to recover.
func (p *Parser) expect(kind lexer.TokenKind) (lexer.Token, bool) {
	if p.check(kind) {
		return p.advance(), true
	}
	p.errorf(p.peek().Span, "expected %s, got %s", kind, p.peek().Kind)
	return lexer.Token{}, false
}

func (p *Parser) errorf(span sourcemap.Span, format string, args ...interface{}) {
	p.diags = append(p.diags, diag.Newf("P001", span, format, args...))
}

// synchronize discards tokens until it reaches a likely statement or
// declaration boundary, so one syntax error does not cascade into dozens.
func (p *Parser) synchronize() {
	for !p.atEnd() {
		if p.previous().Kind == lexer.Semicolon {
			return
		}
		switch p.peek().Kind {
		case lexer.KwFunctio, lexer.KwMutabilis, lexer.KwConstans, lexer.KwSi,
			lexer.KwDum, lexer.KwPro, lexer.KwRedde, lexer.KwFrange,
			lexer.KwPerge, lexer.RBrace:
			return
		}
		p.advance()
	}
}

func spanOf(a, b ast.Node) sourcemap.Span {
	return sourcemap.Span{Start: a.Span().Start, End: b.Span().End}
}

func spanOf2(a, b sourcemap.Span) sourcemap.Span {
	return sourcemap.Span{Start: a.Start, End: b.End}
}

// --- module / items ---

func (p *Parser) parseModule() *ast.Module {
	start := p.peek().Span
	var items []ast.Item
	for !p.atEnd() {
		item := p.parseItem()
		if item != nil {
			items = append(items, item)
		}
	}
	return ast.NewModule(p.gen, spanOf2(start, p.previous().Span), items)
}

func (p *Parser) parseItem() ast.Item {
	switch p.peek().Kind {
	case lexer.KwFunctio:
		return p.parseFunctionDecl()
	case lexer.KwMutabilis, lexer.KwConstans:
		return p.parseGlobalVarDecl()
	default:
		p.errorf(p.peek().Span, "expected a function or variable declaration, got %s", p.peek().Kind)
		p.advance()
		p.synchronize()
		return nil
	}
}

func (p *Parser) parseFunctionDecl() ast.Item {
	tok := p.advance() // functio
	nameTok, ok := p.expect(lexer.Identifier)
	if !ok {
		p.synchronize()
		return nil
	}
	name := p.interner.Intern(nameTok.Lexeme)
	if _, ok := p.expect(lexer.LParen); !ok {
		p.synchronize()
		return nil
	}
	params := p.parseParamList()
	if _, ok := p.expect(lexer.RParen); !ok {
		p.synchronize()
		return nil
	}
	var ret *ast.TypeExpr
	if p.match(lexer.Arrow) {
		ret = p.parseTypeExpr()
	}
	body := p.parseBlock()
	return ast.NewFunctionDecl(p.gen, spanOf2(tok.Span, body.Span()), name, params, ret, body)
}

func (p *Parser) parseGlobalVarDecl() ast.Item {
	tok := p.advance() // mutabilis | constans
	mutable := tok.Kind == lexer.KwMutabilis
	nameTok, ok := p.expect(lexer.Identifier)
	if !ok {
		p.synchronize()
		return nil
	}
	name := p.interner.Intern(nameTok.Lexeme)
	var typ *ast.TypeExpr
	if p.match(lexer.Colon) {
		typ = p.parseTypeExpr()
	}
	if _, ok := p.expect(lexer.Assign); !ok {
		p.synchronize()
		return nil
	}
	init := p.parseExpr(PrecAssignment)
	semi, ok := p.expect(lexer.Semicolon)
	if !ok {
		p.synchronize()
		return nil
	}
	return ast.NewGlobalVarDecl(p.gen, spanOf2(tok.Span, semi.Span), name, mutable, typ, init)
}

func (p *Parser) parseParamList() []*ast.Parameter {
	if p.check(lexer.RParen) {
		return nil
	}
	var params []*ast.Parameter
	for {
		nameTok, ok := p.expect(lexer.Identifier)
		if !ok {
			p.synchronize()
			break
		}
		name := p.interner.Intern(nameTok.Lexeme)
		var typ *ast.TypeExpr
		if p.match(lexer.Colon) {
			typ = p.parseTypeExpr()
		}
		var def ast.Expr
		if p.match(lexer.Assign) {
			def = p.parseExpr(PrecAssignment)
		}
		end := nameTok.Span
		if typ != nil {
			end = typ.Span()
		}
		if def != nil {
			end = def.Span()
		}
		params = append(params, ast.NewParameter(p.gen, spanOf2(nameTok.Span, end), name, typ, def))
		if p.match(lexer.Comma) {
			if p.check(lexer.RParen) {
				break
			}
			continue
		}
		break
	}
	return params
}

// parseTypeExpr parses a base type name followed by any number of postfix
// `[]` and `?` annotations, e.g. `numerus[]?`.
func (p *Parser) parseTypeExpr() *ast.TypeExpr {
	tok := p.peek()
	name := p.typeName()
	typ := ast.NewTypeExpr(p.gen, tok.Span, name, nil, nil)
	for {
		switch p.peek().Kind {
		case lexer.LBracket:
			p.advance()
			closeTok, _ := p.expect(lexer.RBracket)
			elem := typ
			typ = ast.NewTypeExpr(p.gen, spanOf2(tok.Span, closeTok.Span), "", elem, nil)
		case lexer.Question:
			qTok := p.advance()
			elem := typ
			typ = ast.NewTypeExpr(p.gen, spanOf2(tok.Span, qTok.Span), "", nil, elem)
		default:
			return typ
		}
	}
}

func (p *Parser) typeName() string {
	tok := p.peek()
	switch tok.Kind {
	case lexer.KwNumerus, lexer.KwTextus, lexer.KwBooleanum, lexer.KwVacuum,
		lexer.KwNullum, lexer.KwIndefinitum, lexer.KwQuodlibet:
		p.advance()
		return tok.Lexeme
	case lexer.Identifier:
		p.advance()
		return tok.Lexeme
	default:
		p.errorf(tok.Span, "expected a type name, got %s", tok.Kind)
		p.advance()
		return "quodlibet"
	}
}

// --- statements ---

func (p *Parser) parseBlock() *ast.BlockStmt {
	openTok, ok := p.expect(lexer.LBrace)
	if !ok {
		p.synchronize()
		return ast.NewBlockStmt(p.gen, p.peek().Span, nil)
	}
	var stmts []ast.Stmt
	for !p.check(lexer.RBrace) && !p.atEnd() {
		stmt := p.parseStatement()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	closeTok, _ := p.expect(lexer.RBrace)
	return ast.NewBlockStmt(p.gen, spanOf2(openTok.Span, closeTok.Span), stmts)
}

func (p *Parser) parseStatement() ast.Stmt {
	switch p.peek().Kind {
	case lexer.KwMutabilis, lexer.KwConstans:
		return p.parseVarDeclStmt()
	case lexer.KwSi:
		return p.parseIfStmt()
	case lexer.KwDum:
		return p.parseWhileStmt()
	case lexer.KwPro:
		return p.parseForInStmt()
	case lexer.KwRedde:
		return p.parseReturnStmt()
	case lexer.KwFrange:
		return p.parseBreakStmt()
	case lexer.KwPerge:
		return p.parseContinueStmt()
	case lexer.LBrace:
		return p.parseBlock()
	default:
		return p.parseExprStmt()
	}
}

func (p *Parser) parseVarDeclStmt() ast.Stmt {
	tok := p.advance() // mutabilis | constans
	mutable := tok.Kind == lexer.KwMutabilis
	nameTok, ok := p.expect(lexer.Identifier)
	if !ok {
		p.synchronize()
		return nil
	}
	name := p.interner.Intern(nameTok.Lexeme)
	var typ *ast.TypeExpr
	if p.match(lexer.Colon) {
		typ = p.parseTypeExpr()
	}
	if _, ok := p.expect(lexer.Assign); !ok {
		p.synchronize()
		return nil
	}
	init := p.parseExpr(PrecAssignment)
	semi, ok := p.expect(lexer.Semicolon)
	if !ok {
		p.synchronize()
		return nil
	}
	return ast.NewVarDeclStmt(p.gen, spanOf2(tok.Span, semi.Span), name, mutable, typ, init)
}

// parseIfStmt resolves dangling-else implicitly: the recursive call for an
// `aliter si` chain fully consumes its own optional `aliter` clause before
// returning, so an `aliter` always attaches to the nearest still-open `si`.
//
// The condition is a bare Expr with no surrounding parens, and the
// then/else clause is any Statement, not only a `{ }` block - `si 1 > 0
// redde 2;` is as valid as `si (1 > 0) { redde 2; }`.
func (p *Parser) parseIfStmt() ast.Stmt {
	tok := p.advance() // si
	cond := p.parseExpr(PrecAssignment)
	then := p.parseStatement()
	var elseStmt ast.Stmt
	end := tok.Span
	if then != nil {
		end = then.Span()
	}
	if p.match(lexer.KwAliter) {
		if p.check(lexer.KwSi) {
			elseStmt = p.parseIfStmt()
		} else {
			elseStmt = p.parseStatement()
		}
		if elseStmt != nil {
			end = elseStmt.Span()
		}
	}
	return ast.NewIfStmt(p.gen, spanOf2(tok.Span, end), cond, then, elseStmt)
}

func (p *Parser) parseWhileStmt() ast.Stmt {
	tok := p.advance() // dum
	cond := p.parseExpr(PrecAssignment)
	body := p.parseStatement()
	end := tok.Span
	if body != nil {
		end = body.Span()
	}
	return ast.NewWhileStmt(p.gen, spanOf2(tok.Span, end), cond, body)
}

func (p *Parser) parseForInStmt() ast.Stmt {
	tok := p.advance() // pro
	mutable := false
	if p.check(lexer.KwMutabilis) || p.check(lexer.KwConstans) {
		mutable = p.peek().Kind == lexer.KwMutabilis
		p.advance()
	}
	nameTok, ok := p.expect(lexer.Identifier)
	if !ok {
		p.synchronize()
		return nil
	}
	name := p.interner.Intern(nameTok.Lexeme)
	var typ *ast.TypeExpr
	if p.match(lexer.Colon) {
		typ = p.parseTypeExpr()
	}
	if _, ok := p.expect(lexer.KwIn); !ok {
		p.synchronize()
		return nil
	}
	iterable := p.parseExpr(PrecAssignment)
	body := p.parseStatement()
	end := tok.Span
	if body != nil {
		end = body.Span()
	}
	return ast.NewForInStmt(p.gen, spanOf2(tok.Span, end), name, mutable, typ, iterable, body)
}

func (p *Parser) parseReturnStmt() ast.Stmt {
	tok := p.advance() // redde
	var value ast.Expr
	if !p.check(lexer.Semicolon) {
		value = p.parseExpr(PrecAssignment)
	}
	semi, ok := p.expect(lexer.Semicolon)
	if !ok {
		p.synchronize()
		return nil
	}
	return ast.NewReturnStmt(p.gen, spanOf2(tok.Span, semi.Span), value)
}

func (p *Parser) parseBreakStmt() ast.Stmt {
	tok := p.advance() // frange
	semi, ok := p.expect(lexer.Semicolon)
	if !ok {
		p.synchronize()
		return nil
	}
	return ast.NewBreakStmt(p.gen, spanOf2(tok.Span, semi.Span))
}

func (p *Parser) parseContinueStmt() ast.Stmt {
	tok := p.advance() // perge
	semi, ok := p.expect(lexer.Semicolon)
	if !ok {
		p.synchronize()
		return nil
	}
	return ast.NewContinueStmt(p.gen, spanOf2(tok.Span, semi.Span))
}

func (p *Parser) parseExprStmt() ast.Stmt {
	expr := p.parseExpr(PrecAssignment)
	semi, ok := p.expect(lexer.Semicolon)
	if !ok {
		p.synchronize()
		return nil
	}
	return ast.NewExprStmt(p.gen, spanOf2(expr.Span(), semi.Span), expr)
}

// --- expressions ---

// parseExpr is the precedence-climbing entry point: it parses a unary
// operand, then repeatedly consumes infix operators whose precedence is at
// least minPrec, parsing each right operand with the operator's own
// precedence+1 for left-associative operators and the operator's own
// precedence for right-associative ones.
func (p *Parser) parseExpr(minPrec Precedence) ast.Expr {
	left := p.parseUnary()
	for {
		kind := p.peek().Kind
		prec := infixPrecedence(kind)
		if prec == PrecNone || prec < minPrec {
			break
		}
		opTok := p.advance()

		switch kind {
		case lexer.Assign:
			right := p.parseExpr(PrecAssignment)
			left = ast.NewAssignmentExpr(p.gen, spanOf(left, right), left, right)
			continue
		case lexer.Question:
			thenExpr := p.parseExpr(PrecAssignment)
			p.expect(lexer.Colon)
			elseExpr := p.parseExpr(PrecTernary)
			left = ast.NewConditionalExpr(p.gen, spanOf(left, elseExpr), left, thenExpr, elseExpr)
			continue
		}

		nextMin := prec + 1
		if isRightAssociative(kind) {
			nextMin = prec
		}
		right := p.parseExpr(nextMin)

		switch kind {
		case lexer.QuestionQuestion, lexer.OrOr, lexer.AndAnd:
			left = ast.NewLogicalExpr(p.gen, spanOf(left, right), opTok.Lexeme, left, right)
		default:
			left = ast.NewBinaryExpr(p.gen, spanOf(left, right), opTok.Lexeme, left, right)
		}
	}
	return left
}

func (p *Parser) parseUnary() ast.Expr {
	if p.check(lexer.Bang) || p.check(lexer.Minus) {
		opTok := p.advance()
		operand := p.parseUnary()
		return ast.NewUnaryExpr(p.gen, spanOf2(opTok.Span, operand.Span()), opTok.Lexeme, operand)
	}
	return p.parsePrimary()
}

// parsePrimary parses an atom and then immediately applies any postfix
// `.name`, `[index]`, or `(args)` suffixes, since those bind tighter than
// every prefix and infix operator.
func (p *Parser) parsePrimary() ast.Expr {
	expr := p.parseAtom()
	for {
		switch p.peek().Kind {
		case lexer.Dot:
			p.advance()
			propTok, ok := p.expect(lexer.Identifier)
			var prop ast.Symbol
			end := propTok.Span
			if ok {
				prop = p.interner.Intern(propTok.Lexeme)
			}
			expr = ast.NewMemberExpr(p.gen, spanOf2(expr.Span(), end), expr, prop)
		case lexer.LBracket:
			p.advance()
			idx := p.parseExpr(PrecAssignment)
			closeTok, _ := p.expect(lexer.RBracket)
			expr = ast.NewIndexExpr(p.gen, spanOf2(expr.Span(), closeTok.Span), expr, idx)
		case lexer.LParen:
			p.advance()
			args := p.parseArgList()
			closeTok, _ := p.expect(lexer.RParen)
			expr = ast.NewCallExpr(p.gen, spanOf2(expr.Span(), closeTok.Span), expr, args)
		default:
			return expr
		}
	}
}

func (p *Parser) parseArgList() []ast.Expr {
	if p.check(lexer.RParen) {
		return nil
	}
	var args []ast.Expr
	for {
		args = append(args, p.parseExpr(PrecAssignment))
		if p.match(lexer.Comma) {
			if p.check(lexer.RParen) {
				break
			}
			continue
		}
		break
	}
	return args
}

func (p *Parser) parseAtom() ast.Expr {
	tok := p.peek()
	switch tok.Kind {
	case lexer.Number:
		p.advance()
		return ast.NewLiteralExpr(p.gen, tok.Span, ast.LitNumber, tok.Value)
	case lexer.String:
		p.advance()
		return ast.NewLiteralExpr(p.gen, tok.Span, ast.LitString, tok.Value)
	case lexer.KwVerum:
		p.advance()
		return ast.NewLiteralExpr(p.gen, tok.Span, ast.LitBool, true)
	case lexer.KwFalsum:
		p.advance()
		return ast.NewLiteralExpr(p.gen, tok.Span, ast.LitBool, false)
	case lexer.KwNullum:
		p.advance()
		return ast.NewLiteralExpr(p.gen, tok.Span, ast.LitNullum, nil)
	case lexer.KwIndefinitum:
		p.advance()
		return ast.NewLiteralExpr(p.gen, tok.Span, ast.LitIndefinitum, nil)
	case lexer.Identifier:
		p.advance()
		return ast.NewIdentifierExpr(p.gen, tok.Span, p.interner.Intern(tok.Lexeme))
	case lexer.LParen:
		p.advance()
		inner := p.parseExpr(PrecAssignment)
		closeTok, _ := p.expect(lexer.RParen)
		return ast.NewGroupingExpr(p.gen, spanOf2(tok.Span, closeTok.Span), inner)
	case lexer.LBracket:
		return p.parseArrayLiteral()
	case lexer.KwStructura:
		return p.parseObjectLiteral()
	case lexer.KwFunctio:
		return p.parseLambda()
	default:
		p.errorf(tok.Span, "unexpected token %s in expression", tok.Kind)
		p.advance()
		return ast.NewLiteralExpr(p.gen, tok.Span, ast.LitNullum, nil)
	}
}

func (p *Parser) parseArrayLiteral() ast.Expr {
	tok := p.advance() // [
	var elements []ast.Expr
	if !p.check(lexer.RBracket) {
		for {
			elements = append(elements, p.parseExpr(PrecAssignment))
			if p.match(lexer.Comma) {
				if p.check(lexer.RBracket) {
					break
				}
				continue
			}
			break
		}
	}
	closeTok, _ := p.expect(lexer.RBracket)
	return ast.NewArrayLiteralExpr(p.gen, spanOf2(tok.Span, closeTok.Span), elements)
}

func (p *Parser) parseObjectLiteral() ast.Expr {
	tok := p.advance() // structura
	if _, ok := p.expect(lexer.LBrace); !ok {
		p.synchronize()
		return ast.NewObjectLiteralExpr(p.gen, tok.Span, nil)
	}
	var props []ast.ObjectProperty
	if !p.check(lexer.RBrace) {
		for {
			keyTok, ok := p.expect(lexer.Identifier)
			if !ok {
				p.synchronize()
				break
			}
			key := p.interner.Intern(keyTok.Lexeme)
			if _, ok := p.expect(lexer.Colon); !ok {
				p.synchronize()
				break
			}
			value := p.parseExpr(PrecAssignment)
			props = append(props, ast.ObjectProperty{Key: key, Value: value})
			if p.match(lexer.Comma) {
				if p.check(lexer.RBrace) {
					break
				}
				continue
			}
			break
		}
	}
	closeTok, _ := p.expect(lexer.RBrace)
	return ast.NewObjectLiteralExpr(p.gen, spanOf2(tok.Span, closeTok.Span), props)
}

// parseLambda parses an anonymous function. The body is either a `{ }` block
// or, after a `=>`, a single expression - `functio (x) => x * x` is as valid
// as `functio (x) { redde x * x; }`.
func (p *Parser) parseLambda() ast.Expr {
	tok := p.advance() // functio
	if _, ok := p.expect(lexer.LParen); !ok {
		p.synchronize()
		return ast.NewLambdaExpr(p.gen, tok.Span, nil, nil, nil, ast.NewBlockStmt(p.gen, tok.Span, nil))
	}
	params := p.parseParamList()
	if _, ok := p.expect(lexer.RParen); !ok {
		p.synchronize()
	}
	var ret *ast.TypeExpr
	if p.match(lexer.Arrow) {
		ret = p.parseTypeExpr()
	}
	if p.match(lexer.FatArrow) {
		bodyExpr := p.parseExpr(PrecAssignment)
		return ast.NewLambdaExpr(p.gen, spanOf2(tok.Span, bodyExpr.Span()), params, ret, bodyExpr, nil)
	}
	body := p.parseBlock()
	return ast.NewLambdaExpr(p.gen, spanOf2(tok.Span, body.Span()), params, ret, nil, body)
}
