// Package parser implements the Monkey Pratt (top-down operator precedence)
// parser: it consumes a token view and produces an [ast.Program] plus an
// accumulated list of parse error strings. Parsing is total — on a
// malformed construct the parser records an error and advances rather than
// aborting.
package parser

import (
	"fmt"
	"strconv"

	"github.com/monkeylang/monkey/pkg/ast"
	"github.com/monkeylang/monkey/pkg/token"
)

// Precedence levels, lowest to highest. Ternary is reserved for a future
// `?:` operator; no rule currently produces it, but it is the default
// starting precedence when parsing a top-level expression statement.
const (
	Lowest int = iota
	Ternary
	Equals
	LessGreater
	Term
	Factor
	Unary
	Call
	Index
)

var precedences = map[token.Type]int{
	token.EQ:       Equals,
	token.NOT_EQ:   Equals,
	token.LT:       LessGreater,
	token.GT:       LessGreater,
	token.PLUS:     Term,
	token.MINUS:    Term,
	token.ASTERISK: Factor,
	token.SLASH:    Factor,
	token.LPAREN:   Call,
	token.LBRACKET: Index,
}

type prefixParseFn func() ast.Expression
type infixParseFn func(ast.Expression) ast.Expression

// Parser holds all state needed to parse one Monkey token stream. Create
// one with New and call Parse once; a Parser is not meant to be reused.
type Parser struct {
	tokens []token.Token
	pos    int
	errors []string

	prefixFns map[token.Type]prefixParseFn
	infixFns  map[token.Type]infixParseFn
}

// New returns a Parser over tokens, which must be terminated by a single
// EOF token (as produced by lexer.All).
func New(tokens []token.Token) *Parser {
	p := &Parser{
		tokens:    tokens,
		prefixFns: make(map[token.Type]prefixParseFn),
		infixFns:  make(map[token.Type]infixParseFn),
	}

	p.registerPrefix(token.IDENT, p.parseIdentifier)
	p.registerPrefix(token.INT, p.parseIntegerLiteral)
	p.registerPrefix(token.STRING, p.parseStringLiteral)
	p.registerPrefix(token.TRUE, p.parseBoolean)
	p.registerPrefix(token.FALSE, p.parseBoolean)
	p.registerPrefix(token.MINUS, p.parsePrefixExpression)
	p.registerPrefix(token.BANG, p.parsePrefixExpression)
	p.registerPrefix(token.LPAREN, p.parseGroupedExpression)
	p.registerPrefix(token.IF, p.parseIfExpression)
	p.registerPrefix(token.FUNCTION, p.parseFunctionLiteral)
	p.registerPrefix(token.MACRO, p.parseMacroLiteral)
	p.registerPrefix(token.LBRACKET, p.parseArrayLiteral)
	p.registerPrefix(token.LBRACE, p.parseHashLiteral)

	for _, tt := range []token.Type{token.PLUS, token.MINUS, token.ASTERISK, token.SLASH,
		token.EQ, token.NOT_EQ, token.LT, token.GT} {
		p.registerInfix(tt, p.parseInfixExpression)
	}
	p.registerInfix(token.LPAREN, p.parseCallExpression)
	p.registerInfix(token.LBRACKET, p.parseIndexExpression)

	return p
}

// Errors returns every parse error accumulated during Parse.
func (p *Parser) Errors() []string { return p.errors }

// Tokens returns the token view this parser was constructed over, so
// callers can pass it on to ast.Show / runtime.Print.
func (p *Parser) Tokens() []token.Token { return p.tokens }

// Parse consumes the entire token stream and returns the resulting
// Program.
func (p *Parser) Parse() *ast.Program {
	prog := ast.NewProgram(len(p.tokens))
	for !p.curIs(token.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		}
	}
	return prog
}

//-----------------------------------------------------------------------------
// Token cursor
//-----------------------------------------------------------------------------

func (p *Parser) cur() token.Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos]
}

func (p *Parser) peek() token.Token {
	idx := p.pos + 1
	if idx >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[idx]
}

func (p *Parser) curIdx() int { return p.pos }

func (p *Parser) advance() { p.pos++ }

func (p *Parser) curIs(tt token.Type) bool  { return p.cur().Type == tt }
func (p *Parser) peekIs(tt token.Type) bool { return p.peek().Type == tt }

// expectPeek checks the peek token's type; if it matches it advances (so cur
// becomes that token) and returns true. Otherwise it records the standard
// mismatch error and leaves the cursor unmoved.
func (p *Parser) expectPeek(tt token.Type) bool {
	if p.peekIs(tt) {
		p.advance()
		return true
	}
	p.errorf("Expected next token to be '%s'; got %s instead", tt, p.peek().Type)
	return false
}

func (p *Parser) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.cur().Type]; ok {
		return prec
	}
	return Lowest
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peek().Type]; ok {
		return prec
	}
	return Lowest
}

// skipToSemicolon advances past tokens until it reaches a Semicolon or Eof,
// used for error recovery after a malformed Let statement.
func (p *Parser) skipToSemicolon() {
	for !p.curIs(token.SEMICOLON) && !p.curIs(token.EOF) {
		p.advance()
	}
}

//-----------------------------------------------------------------------------
// Statements
//-----------------------------------------------------------------------------

func (p *Parser) parseStatement() ast.Statement {
	switch p.cur().Type {
	case token.LET:
		return p.parseLetStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.SEMICOLON, token.EOF:
		p.advance()
		return nil
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseLetStatement() ast.Statement {
	// cur: Let
	if !p.peekIs(token.IDENT) {
		p.errorf("Not enough tokens for Let statement")
		p.skipToSemicolon()
		if p.curIs(token.SEMICOLON) {
			p.advance()
		}
		return nil
	}
	p.advance()
	nameIdx := p.curIdx()

	if !p.expectPeek(token.ASSIGN) {
		p.skipToSemicolon()
		if p.curIs(token.SEMICOLON) {
			p.advance()
		}
		return nil
	}
	p.advance() // move onto the expression's first token

	expr := p.parseExpression(Lowest)

	if p.peekIs(token.SEMICOLON) {
		p.advance()
	}
	p.advance()

	return ast.NewLet(nameIdx, expr)
}

func (p *Parser) parseReturnStatement() ast.Statement {
	mainIdx := p.curIdx() // Return token
	var expr ast.Expression
	if !p.peekIs(token.SEMICOLON) {
		p.advance()
		expr = p.parseExpression(Lowest)
	}
	if p.peekIs(token.SEMICOLON) {
		p.advance()
	}
	p.advance()
	return ast.NewReturn(mainIdx, expr)
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	mainIdx := p.curIdx()
	expr := p.parseExpression(Ternary)
	if p.peekIs(token.SEMICOLON) {
		p.advance()
	}
	p.advance()
	return ast.NewExpressionStatement(mainIdx, expr)
}

func (p *Parser) parseBlockStatement() *ast.Block {
	mainIdx := p.curIdx() // LBrace
	p.advance()

	var stmts []ast.Statement
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	// cur is RBrace (or Eof on unterminated input); left unconsumed for the
	// enclosing statement's own trailing advance() to pass over.
	return ast.NewBlock(mainIdx, stmts)
}

//-----------------------------------------------------------------------------
// Expressions
//-----------------------------------------------------------------------------

func (p *Parser) parseExpression(prec int) ast.Expression {
	prefix := p.prefixFns[p.cur().Type]
	if prefix == nil {
		p.errorf("Expected expression, but got %s instead", p.cur().Type)
		return nil
	}
	left := prefix()

	for !p.peekIs(token.SEMICOLON) && prec < p.peekPrecedence() {
		infix := p.infixFns[p.peek().Type]
		if infix == nil {
			return left
		}
		p.advance()
		left = infix(left)
	}
	return left
}

func (p *Parser) parseIdentifier() ast.Expression {
	return ast.NewIdentifier(p.curIdx())
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	idx := p.curIdx()
	value, err := strconv.ParseInt(p.cur().Literal, 10, 64)
	if err != nil {
		p.errorf("Could not parse %q as integer", p.cur().Literal)
		return nil
	}
	return ast.NewInt(idx, value)
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return ast.NewString(p.curIdx(), p.cur().Literal)
}

func (p *Parser) parseBoolean() ast.Expression {
	return ast.NewBoolean(p.curIdx(), p.curIs(token.TRUE))
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	idx := p.curIdx()
	op := p.cur().Type
	p.advance()
	expr := p.parseExpression(Unary)
	return ast.NewPrefix(idx, op, expr)
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	idx := p.curIdx()
	op := p.cur().Type
	prec := p.curPrecedence()
	p.advance()
	right := p.parseExpression(prec)
	return ast.NewInfix(idx, op, left, right)
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.advance()
	expr := p.parseExpression(Lowest)
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return expr
}

func (p *Parser) parseIfExpression() ast.Expression {
	mainIdx := p.curIdx()

	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	p.advance()
	cond := p.parseExpression(Lowest)

	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	trueBranch := p.parseBlockStatement()
	if !p.curIs(token.RBRACE) {
		return nil
	}

	var falseBranch *ast.Block
	if p.peekIs(token.ELSE) {
		p.advance()
		if !p.expectPeek(token.LBRACE) {
			return nil
		}
		falseBranch = p.parseBlockStatement()
	}

	return ast.NewIf(mainIdx, cond, trueBranch, falseBranch)
}

func (p *Parser) parseFunctionLiteral() ast.Expression {
	mainIdx := p.curIdx()
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	params := p.parseIdentifierList()
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	body := p.parseBlockStatement()
	return ast.NewFunctionLiteral(mainIdx, params, body)
}

func (p *Parser) parseMacroLiteral() ast.Expression {
	mainIdx := p.curIdx()
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	params := p.parseIdentifierList()
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	body := p.parseBlockStatement()
	return ast.NewMacroLiteral(mainIdx, params, body)
}

// parseIdentifierList parses a (possibly empty) comma-separated identifier
// list starting just after an already-consumed LParen and ending at, and
// consuming, the closing RParen.
func (p *Parser) parseIdentifierList() []*ast.Identifier {
	var params []*ast.Identifier

	if p.peekIs(token.RPAREN) {
		p.advance()
		return params
	}

	p.advance()
	params = append(params, ast.NewIdentifier(p.curIdx()))

	for p.peekIs(token.COMMA) {
		p.advance()
		p.advance()
		params = append(params, ast.NewIdentifier(p.curIdx()))
	}

	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return params
}

func (p *Parser) parseCallExpression(callee ast.Expression) ast.Expression {
	mainIdx := p.curIdx() // LParen
	args := p.parseExpressionList(token.RPAREN)
	if args == nil && !p.curIs(token.RPAREN) {
		p.errorf("Incomplete argument list for function call")
	}
	return ast.NewCall(mainIdx, callee, args)
}

// parseExpressionList parses a comma-separated expression list starting
// just after an already-consumed opening delimiter and ending at, and
// consuming, end.
func (p *Parser) parseExpressionList(end token.Type) []ast.Expression {
	var list []ast.Expression

	if p.peekIs(end) {
		p.advance()
		return list
	}

	p.advance()
	list = append(list, p.parseExpression(Lowest))

	for p.peekIs(token.COMMA) {
		p.advance()
		p.advance()
		list = append(list, p.parseExpression(Lowest))
	}

	if !p.expectPeek(end) {
		return nil
	}
	return list
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	mainIdx := p.curIdx()
	elements := p.parseExpressionList(token.RBRACKET)
	return ast.NewArrayLiteral(mainIdx, elements)
}

func (p *Parser) parseHashLiteral() ast.Expression {
	mainIdx := p.curIdx()
	var pairs []ast.HashPair

	for !p.peekIs(token.RBRACE) {
		p.advance()
		key := p.parseExpression(Lowest)

		if !p.expectPeek(token.COLON) {
			return nil
		}
		p.advance()
		value := p.parseExpression(Lowest)

		pairs = append(pairs, ast.HashPair{Key: key, Value: value})

		if !p.peekIs(token.RBRACE) && !p.expectPeek(token.COMMA) {
			return nil
		}
	}

	if !p.expectPeek(token.RBRACE) {
		return nil
	}
	return ast.NewHashLiteral(mainIdx, pairs)
}

func (p *Parser) parseIndexExpression(left ast.Expression) ast.Expression {
	mainIdx := p.curIdx() // LBracket
	p.advance()
	index := p.parseExpression(Lowest)
	if !p.expectPeek(token.RBRACKET) {
		return nil
	}
	return ast.NewIndex(mainIdx, left, index)
}

func (p *Parser) registerPrefix(tt token.Type, fn prefixParseFn) { p.prefixFns[tt] = fn }
func (p *Parser) registerInfix(tt token.Type, fn infixParseFn)   { p.infixFns[tt] = fn }
