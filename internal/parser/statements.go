package parser

import (
	"github.com/Microindole/lency/internal/ast"
	"github.com/Microindole/lency/internal/token"
)

func (p *Parser) parseBlock() *ast.BlockStatement {
	lbrace, ok := p.expect(token.LBRACE)
	if !ok {
		p.skipToStatementBoundary()
		return nil
	}
	block := &ast.BlockStatement{Token: lbrace}
	p.skipNewlines()
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		p.skipNewlines()
	}
	p.expect(token.RBRACE)
	return block
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.cur().Type {
	case token.VAR:
		return p.parseVarStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.BREAK:
		tok := p.cur()
		p.next()
		p.endOfStatement()
		return &ast.BreakStatement{Token: tok}
	case token.CONTINUE:
		tok := p.cur()
		p.next()
		p.endOfStatement()
		return &ast.ContinueStatement{Token: tok}
	case token.IF:
		return p.parseIfStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.FOR:
		return p.parseForStatement()
	case token.LBRACE:
		return p.parseBlock()
	default:
		return p.parseSimpleStatement()
	}
}

// parseVarStatement parses `var x = e`.
func (p *Parser) parseVarStatement() ast.Statement {
	tok := p.cur()
	p.next() // var
	nameTok, ok := p.expect(token.IDENT)
	if !ok {
		p.skipToStatementBoundary()
		return nil
	}
	if _, ok := p.expect(token.ASSIGN); !ok {
		p.skipToStatementBoundary()
		return nil
	}
	p.skipNewlines()
	value := p.parseExpression(LOWEST)
	if value == nil {
		p.skipToStatementBoundary()
		return nil
	}
	p.endOfStatement()
	return &ast.VarStatement{
		Token: tok,
		Name:  &ast.Identifier{Token: nameTok, Value: nameTok.Lexeme},
		Value: value,
	}
}

// parseSimpleStatement handles the three forms that start without a
// keyword: typed declarations `T x = e`, assignments `target = e`, and
// expression statements. Typed declarations need a speculative type
// parse because `T` is indistinguishable from an expression prefix.
func (p *Parser) parseSimpleStatement() ast.Statement {
	if p.curIs(token.IDENT) || p.curIs(token.LBRACKET) {
		m := p.mark()
		p.quiet++
		typ := p.parseType()
		isDecl := typ != nil && p.curIs(token.IDENT) && p.peekIs(token.ASSIGN)
		p.quiet--
		if isDecl {
			firstTok := p.toks[m.pos]
			nameTok := p.cur()
			p.next() // name
			p.next() // =
			p.skipNewlines()
			value := p.parseExpression(LOWEST)
			if value == nil {
				p.skipToStatementBoundary()
				return nil
			}
			p.endOfStatement()
			return &ast.VarStatement{
				Token: firstTok,
				Type:  typ,
				Name:  &ast.Identifier{Token: nameTok, Value: nameTok.Lexeme},
				Value: value,
			}
		}
		p.resetTo(m)
	}

	exprTok := p.cur()
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		p.skipToStatementBoundary()
		return nil
	}

	if p.curIs(token.ASSIGN) {
		assignTok := p.cur()
		p.next()
		p.skipNewlines()
		value := p.parseExpression(LOWEST)
		if value == nil {
			p.skipToStatementBoundary()
			return nil
		}
		p.endOfStatement()
		return &ast.AssignStatement{Token: assignTok, Target: expr, Value: value}
	}

	p.endOfStatement()
	return &ast.ExpressionStatement{Token: exprTok, Expression: expr}
}

func (p *Parser) parseReturnStatement() ast.Statement {
	tok := p.cur()
	p.next() // return
	rs := &ast.ReturnStatement{Token: tok}
	if !p.curIs(token.NEWLINE) && !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		rs.Value = p.parseExpression(LOWEST)
		if rs.Value == nil {
			p.skipToStatementBoundary()
			return rs
		}
	}
	p.endOfStatement()
	return rs
}

func (p *Parser) parseIfStatement() ast.Statement {
	tok := p.cur()
	p.next() // if

	restore := p.noStructLiteral
	p.noStructLiteral = true
	cond := p.parseExpression(LOWEST)
	p.noStructLiteral = restore
	if cond == nil {
		p.skipToStatementBoundary()
		return nil
	}

	then := p.parseBlock()
	if then == nil {
		return nil
	}
	stmt := &ast.IfStatement{Token: tok, Cond: cond, Then: then}

	// `else` may sit on the same line or after a newline.
	m := p.mark()
	p.skipNewlines()
	if p.curIs(token.ELSE) {
		p.next()
		if p.curIs(token.IF) {
			stmt.Else = p.parseIfStatement()
		} else {
			stmt.Else = p.parseBlock()
		}
	} else {
		p.resetTo(m)
	}
	return stmt
}

func (p *Parser) parseWhileStatement() ast.Statement {
	tok := p.cur()
	p.next() // while

	restore := p.noStructLiteral
	p.noStructLiteral = true
	cond := p.parseExpression(LOWEST)
	p.noStructLiteral = restore
	if cond == nil {
		p.skipToStatementBoundary()
		return nil
	}

	body := p.parseBlock()
	if body == nil {
		return nil
	}
	return &ast.WhileStatement{Token: tok, Cond: cond, Body: body}
}

func (p *Parser) parseForStatement() ast.Statement {
	tok := p.cur()
	p.next() // for
	nameTok, ok := p.expect(token.IDENT)
	if !ok {
		p.skipToStatementBoundary()
		return nil
	}
	if _, ok := p.expect(token.IN); !ok {
		p.skipToStatementBoundary()
		return nil
	}

	restore := p.noStructLiteral
	p.noStructLiteral = true
	iterable := p.parseExpression(LOWEST)
	p.noStructLiteral = restore
	if iterable == nil {
		p.skipToStatementBoundary()
		return nil
	}

	body := p.parseBlock()
	if body == nil {
		return nil
	}
	return &ast.ForStatement{
		Token:    tok,
		Var:      &ast.Identifier{Token: nameTok, Value: nameTok.Lexeme},
		Iterable: iterable,
		Body:     body,
	}
}
