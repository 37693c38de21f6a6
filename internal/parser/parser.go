package parser

import (
	"github.com/Microindole/lency/internal/ast"
	"github.com/Microindole/lency/internal/diagnostics"
	"github.com/Microindole/lency/internal/token"
)

// MaxRecursionDepth bounds expression nesting so malicious input cannot
// blow the stack.
const MaxRecursionDepth = 500

// Operator precedence, lowest to highest. The grammar places `??` in
// the postfix tier (right-associative); everything else is standard.
const (
	_ int = iota
	LOWEST
	LOGIC_OR    // ||
	LOGIC_AND   // &&
	EQUALS      // == !=
	LESSGREATER // < > <= >=
	SUM         // + -
	PRODUCT     // * / %
	PREFIX      // -x !x
	POSTFIX     // . ?. ?? ? () []
)

var precedences = map[token.TokenType]int{
	token.OR:            LOGIC_OR,
	token.AND:           LOGIC_AND,
	token.EQ:            EQUALS,
	token.NOT_EQ:        EQUALS,
	token.LT:            LESSGREATER,
	token.GT:            LESSGREATER,
	token.LTE:           LESSGREATER,
	token.GTE:           LESSGREATER,
	token.PLUS:          SUM,
	token.MINUS:         SUM,
	token.ASTERISK:      PRODUCT,
	token.SLASH:         PRODUCT,
	token.PERCENT:       PRODUCT,
	token.DOT:           POSTFIX,
	token.SAFE_NAV:      POSTFIX,
	token.NULL_COALESCE: POSTFIX,
	token.QUESTION:      POSTFIX,
	token.LPAREN:        POSTFIX,
	token.LBRACKET:      POSTFIX,
	token.PATH_SEP:      POSTFIX,
	token.TURBOFISH:     POSTFIX,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

type Parser struct {
	toks []token.Token
	pos  int
	sink *diagnostics.Sink

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn

	depth      int
	braceDepth int
	quiet      int // >0 while speculating: suppress diagnostics

	// noStructLiteral disables `Name { ... }` literals while parsing
	// if/while/for/match headers, where `{` opens the body instead.
	noStructLiteral bool
}

// New builds a parser over a token stream (which must end with EOF).
func New(toks []token.Token, sink *diagnostics.Sink) *Parser {
	p := &Parser{toks: toks, sink: sink}

	p.prefixParseFns = map[token.TokenType]prefixParseFn{
		token.IDENT:    p.parseIdentifierExpression,
		token.INT:      p.parseIntegerLiteral,
		token.FLOAT:    p.parseFloatLiteral,
		token.STRING:   p.parseStringLiteral,
		token.TRUE:     p.parseBooleanLiteral,
		token.FALSE:    p.parseBooleanLiteral,
		token.NULL:     p.parseNullLiteral,
		token.THIS:     p.parseThisExpression,
		token.BANG:     p.parsePrefixExpression,
		token.MINUS:    p.parsePrefixExpression,
		token.LPAREN:   p.parseGroupedExpression,
		token.LBRACKET: p.parseArrayLiteral,
		token.MATCH:    p.parseMatchExpression,
	}

	p.infixParseFns = map[token.TokenType]infixParseFn{
		token.PLUS:          p.parseInfixExpression,
		token.MINUS:         p.parseInfixExpression,
		token.ASTERISK:      p.parseInfixExpression,
		token.SLASH:         p.parseInfixExpression,
		token.PERCENT:       p.parseInfixExpression,
		token.EQ:            p.parseInfixExpression,
		token.NOT_EQ:        p.parseInfixExpression,
		token.LT:            p.parseLessThanOrGeneric,
		token.GT:            p.parseInfixExpression,
		token.LTE:           p.parseInfixExpression,
		token.GTE:           p.parseInfixExpression,
		token.AND:           p.parseInfixExpression,
		token.OR:            p.parseInfixExpression,
		token.DOT:           p.parseFieldOrMethod,
		token.SAFE_NAV:      p.parseSafeNav,
		token.NULL_COALESCE: p.parseElvis,
		token.QUESTION:      p.parseTry,
		token.LPAREN:        p.parseCall,
		token.LBRACKET:      p.parseIndex,
		token.PATH_SEP:      p.parsePath,
		token.TURBOFISH:     p.parseTurbofishCall,
	}

	return p
}

func (p *Parser) cur() token.Token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1] // EOF
	}
	return p.toks[p.pos]
}

func (p *Parser) peek() token.Token {
	if p.pos+1 >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+1]
}

func (p *Parser) next() {
	switch p.cur().Type {
	case token.LBRACE:
		p.braceDepth++
	case token.RBRACE:
		p.braceDepth--
	}
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
}

func (p *Parser) curIs(t token.TokenType) bool  { return p.cur().Type == t }
func (p *Parser) peekIs(t token.TokenType) bool { return p.peek().Type == t }

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.cur().Type]; ok {
		return pr
	}
	return LOWEST
}

// mark/resetTo implement speculative parsing. Speculation must run with
// p.quiet raised so failed attempts leave no diagnostics behind.
type parserMark struct {
	pos        int
	braceDepth int
}

func (p *Parser) mark() parserMark {
	return parserMark{pos: p.pos, braceDepth: p.braceDepth}
}

func (p *Parser) resetTo(m parserMark) {
	p.pos = m.pos
	p.braceDepth = m.braceDepth
}

func (p *Parser) errorf(code diagnostics.ErrorCode, tok token.Token, format string, args ...interface{}) {
	if p.quiet > 0 {
		return
	}
	p.sink.Add(diagnostics.NewError(code, tok, format, args...))
}

// expect consumes the current token if it matches, otherwise reports
// P002 and leaves the position alone for the caller to recover.
func (p *Parser) expect(t token.TokenType) (token.Token, bool) {
	if p.curIs(t) {
		tok := p.cur()
		p.next()
		return tok, true
	}
	p.errorf(diagnostics.ErrP002, p.cur(), "expected %q, found %q", string(t), p.cur().Lexeme)
	return p.cur(), false
}

func (p *Parser) skipNewlines() {
	for p.curIs(token.NEWLINE) {
		p.next()
	}
}

// endOfStatement consumes the statement terminator: a newline, or
// nothing when a closing brace or EOF implicitly terminates.
func (p *Parser) endOfStatement() {
	switch p.cur().Type {
	case token.NEWLINE:
		p.next()
	case token.RBRACE, token.EOF:
	default:
		p.errorf(diagnostics.ErrP001, p.cur(), "unexpected %q after statement", p.cur().Lexeme)
		p.skipToStatementBoundary()
	}
}

// skipToStatementBoundary advances to the next newline at the current
// brace depth (or a closing brace / EOF) so one error does not cascade.
func (p *Parser) skipToStatementBoundary() {
	entry := p.braceDepth
	for {
		switch p.cur().Type {
		case token.EOF:
			return
		case token.NEWLINE:
			if p.braceDepth <= entry {
				p.next()
				return
			}
		case token.RBRACE:
			if p.braceDepth <= entry {
				return
			}
		}
		p.next()
	}
}

// ParseModule parses one source file into a Module.
func (p *Parser) ParseModule(file string) *ast.Module {
	mod := &ast.Module{File: file}

	p.skipNewlines()
	for !p.curIs(token.EOF) {
		decl := p.parseDeclaration()
		if decl != nil {
			if imp, ok := decl.(*ast.ImportDeclaration); ok {
				mod.Imports = append(mod.Imports, imp)
			} else {
				mod.Decls = append(mod.Decls, decl)
			}
		}
		p.skipNewlines()
	}
	return mod
}
