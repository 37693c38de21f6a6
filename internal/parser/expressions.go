package parser

import (
	"github.com/Microindole/lency/internal/ast"
	"github.com/Microindole/lency/internal/diagnostics"
	"github.com/Microindole/lency/internal/token"
)

func (p *Parser) parseExpression(precedence int) ast.Expression {
	p.depth++
	defer func() { p.depth-- }()

	if p.depth > MaxRecursionDepth {
		p.errorf(diagnostics.ErrP006, p.cur(), "expression too complex: recursion depth limit exceeded")
		p.skipToStatementBoundary()
		return nil
	}

	prefix := p.prefixParseFns[p.cur().Type]
	if prefix == nil {
		p.errorf(diagnostics.ErrP003, p.cur(), "unexpected %q in expression", p.cur().Lexeme)
		return nil
	}
	leftExp := prefix()
	if leftExp == nil {
		return nil
	}

	for precedence < p.curPrecedence() {
		infix := p.infixParseFns[p.cur().Type]
		if infix == nil {
			return leftExp
		}
		nextExp := infix(leftExp)
		if nextExp == nil {
			return nil
		}
		leftExp = nextExp
	}

	return leftExp
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	tok := p.cur()
	p.next()
	val, _ := tok.Literal.(int64)
	return &ast.IntegerLiteral{Token: tok, Value: val}
}

func (p *Parser) parseFloatLiteral() ast.Expression {
	tok := p.cur()
	p.next()
	val, _ := tok.Literal.(float64)
	return &ast.FloatLiteral{Token: tok, Value: val}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	tok := p.cur()
	p.next()
	val, _ := tok.Literal.(string)
	return &ast.StringLiteral{Token: tok, Value: val}
}

func (p *Parser) parseBooleanLiteral() ast.Expression {
	tok := p.cur()
	p.next()
	return &ast.BooleanLiteral{Token: tok, Value: tok.Type == token.TRUE}
}

func (p *Parser) parseNullLiteral() ast.Expression {
	tok := p.cur()
	p.next()
	return &ast.NullLiteral{Token: tok}
}

func (p *Parser) parseThisExpression() ast.Expression {
	tok := p.cur()
	p.next()
	return &ast.ThisExpression{Token: tok}
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	tok := p.cur()
	p.next()
	right := p.parseExpression(PREFIX)
	if right == nil {
		return nil
	}
	return &ast.PrefixExpression{Token: tok, Operator: tok.Lexeme, Right: right}
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	tok := p.cur()
	prec := p.curPrecedence()
	p.next()
	p.skipNewlines()
	right := p.parseExpression(prec)
	if right == nil {
		return nil
	}
	return &ast.InfixExpression{Token: tok, Left: left, Operator: tok.Lexeme, Right: right}
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.next() // (
	p.skipNewlines()
	restore := p.noStructLiteral
	p.noStructLiteral = false
	exp := p.parseExpression(LOWEST)
	p.noStructLiteral = restore
	p.skipNewlines()
	if _, ok := p.expect(token.RPAREN); !ok {
		return nil
	}
	return exp
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	tok := p.cur()
	p.next() // [
	al := &ast.ArrayLiteral{Token: tok}
	p.skipNewlines()
	for !p.curIs(token.RBRACKET) && !p.curIs(token.EOF) {
		el := p.parseExpression(LOWEST)
		if el == nil {
			return nil
		}
		al.Elements = append(al.Elements, el)
		p.skipNewlines()
		if p.curIs(token.COMMA) {
			p.next()
			p.skipNewlines()
		}
	}
	p.expect(token.RBRACKET)
	return al
}

// parseIdentifierExpression handles a bare identifier plus the forms
// that start with one: struct literals `Name{...}` and generic
// instantiations `name<T>(...)` / `Name<T>{...}` via a speculative
// type-argument scan committed only when '(' or '{' follows.
func (p *Parser) parseIdentifierExpression() ast.Expression {
	tok := p.cur()
	ident := &ast.Identifier{Token: tok, Value: tok.Lexeme}
	p.next()

	if p.curIs(token.LT) {
		m := p.mark()
		if args := p.tryParseTypeArgs(); args != nil {
			switch {
			case p.curIs(token.LPAREN):
				return p.finishCall(&ast.CallExpression{Callee: ident, TypeArgs: args})
			case p.curIs(token.LBRACE) && !p.noStructLiteral:
				return p.parseStructLiteral(ident, args)
			default:
				// A comparison after all; rewind past the scan.
				p.resetTo(m)
			}
		}
	}

	if p.curIs(token.LBRACE) && !p.noStructLiteral {
		return p.parseStructLiteral(ident, nil)
	}
	return ident
}

func (p *Parser) parseStructLiteral(name *ast.Identifier, typeArgs []ast.TypeExpr) ast.Expression {
	sl := &ast.StructLiteral{Token: name.Token, Name: name, TypeArgs: typeArgs}
	p.next() // {
	p.skipNewlines()
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		fieldTok, ok := p.expect(token.IDENT)
		if !ok {
			p.skipToStatementBoundary()
			return nil
		}
		if _, ok := p.expect(token.COLON); !ok {
			p.skipToStatementBoundary()
			return nil
		}
		restore := p.noStructLiteral
		p.noStructLiteral = false
		val := p.parseExpression(LOWEST)
		p.noStructLiteral = restore
		if val == nil {
			return nil
		}
		sl.Fields = append(sl.Fields, &ast.FieldInit{
			Token: fieldTok,
			Name:  &ast.Identifier{Token: fieldTok, Value: fieldTok.Lexeme},
			Value: val,
		})
		p.skipNewlines()
		if p.curIs(token.COMMA) {
			p.next()
			p.skipNewlines()
		}
	}
	p.expect(token.RBRACE)
	return sl
}

// parseLessThanOrGeneric parses an infix `<` as a comparison. Generic
// instantiations `f<T>(x)` are recognised only after a bare identifier,
// in parseIdentifierExpression; after any other expression `<` is
// always a comparison.
func (p *Parser) parseLessThanOrGeneric(left ast.Expression) ast.Expression {
	return p.parseInfixExpression(left)
}

func (p *Parser) finishCall(call *ast.CallExpression) ast.Expression {
	lparen := p.cur()
	call.Token = lparen
	p.next() // (
	call.Args = p.parseCallArgs()
	return call
}

func (p *Parser) parseCallArgs() []ast.Expression {
	var args []ast.Expression
	p.skipNewlines()
	for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
		restore := p.noStructLiteral
		p.noStructLiteral = false
		arg := p.parseExpression(LOWEST)
		p.noStructLiteral = restore
		if arg == nil {
			return args
		}
		args = append(args, arg)
		p.skipNewlines()
		if p.curIs(token.COMMA) {
			p.next()
			p.skipNewlines()
		}
	}
	p.expect(token.RPAREN)
	return args
}

func (p *Parser) parseCall(left ast.Expression) ast.Expression {
	if fa, ok := left.(*ast.FieldAccessExpression); ok {
		mc := &ast.MethodCallExpression{Token: p.cur(), Receiver: fa.Receiver, Method: fa.Field}
		p.next() // (
		mc.Args = p.parseCallArgs()
		return mc
	}
	return p.finishCall(&ast.CallExpression{Callee: left})
}

func (p *Parser) parseTurbofishCall(left ast.Expression) ast.Expression {
	p.next() // ::<
	var typeArgs []ast.TypeExpr
	for {
		t := p.parseType()
		if t == nil {
			return nil
		}
		typeArgs = append(typeArgs, t)
		if p.curIs(token.COMMA) {
			p.next()
			continue
		}
		break
	}
	if _, ok := p.expect(token.GT); !ok {
		return nil
	}
	if !p.curIs(token.LPAREN) {
		p.errorf(diagnostics.ErrP001, p.cur(), "expected argument list after turbofish")
		return nil
	}
	if fa, ok := left.(*ast.FieldAccessExpression); ok {
		mc := &ast.MethodCallExpression{Token: p.cur(), Receiver: fa.Receiver, Method: fa.Field, TypeArgs: typeArgs}
		p.next() // (
		mc.Args = p.parseCallArgs()
		return mc
	}
	return p.finishCall(&ast.CallExpression{Callee: left, TypeArgs: typeArgs})
}

func (p *Parser) parseFieldOrMethod(left ast.Expression) ast.Expression {
	dotTok := p.cur()
	p.next() // .
	nameTok, ok := p.expect(token.IDENT)
	if !ok {
		return nil
	}
	field := &ast.Identifier{Token: nameTok, Value: nameTok.Lexeme}

	// Method calls may carry explicit type arguments.
	if p.curIs(token.LT) {
		m := p.mark()
		if args := p.tryParseTypeArgs(); args != nil {
			if p.curIs(token.LPAREN) {
				mc := &ast.MethodCallExpression{Token: p.cur(), Receiver: left, Method: field, TypeArgs: args}
				p.next() // (
				mc.Args = p.parseCallArgs()
				return mc
			}
			p.resetTo(m)
		}
	}
	return &ast.FieldAccessExpression{Token: dotTok, Receiver: left, Field: field}
}

func (p *Parser) parseSafeNav(left ast.Expression) ast.Expression {
	tok := p.cur()
	p.next() // ?.
	nameTok, ok := p.expect(token.IDENT)
	if !ok {
		return nil
	}
	return &ast.SafeNavExpression{
		Token:    tok,
		Receiver: left,
		Field:    &ast.Identifier{Token: nameTok, Value: nameTok.Lexeme},
	}
}

func (p *Parser) parseElvis(left ast.Expression) ast.Expression {
	tok := p.cur()
	p.next() // ??
	p.skipNewlines()
	// Right-associative: parse the right side one level below POSTFIX
	// so a following `??` folds rightward.
	right := p.parseExpression(POSTFIX - 1)
	if right == nil {
		return nil
	}
	return &ast.ElvisExpression{Token: tok, Left: left, Right: right}
}

func (p *Parser) parseTry(left ast.Expression) ast.Expression {
	tok := p.cur()
	p.next() // ?
	return &ast.TryExpression{Token: tok, Expr: left}
}

func (p *Parser) parseIndex(left ast.Expression) ast.Expression {
	tok := p.cur()
	p.next() // [
	p.skipNewlines()
	idx := p.parseExpression(LOWEST)
	if idx == nil {
		return nil
	}
	p.skipNewlines()
	if _, ok := p.expect(token.RBRACKET); !ok {
		return nil
	}
	return &ast.IndexExpression{Token: tok, Receiver: left, Index: idx}
}

func (p *Parser) parsePath(left ast.Expression) ast.Expression {
	tok := p.cur()
	ident, ok := left.(*ast.Identifier)
	if !ok {
		p.errorf(diagnostics.ErrP001, tok, "'::' must follow a type name")
		return nil
	}
	p.next() // ::
	nameTok, ok2 := p.expect(token.IDENT)
	if !ok2 {
		return nil
	}
	return &ast.PathExpression{
		Token: tok,
		Enum:  ident,
		Name:  &ast.Identifier{Token: nameTok, Value: nameTok.Lexeme},
	}
}

func (p *Parser) parseMatchExpression() ast.Expression {
	tok := p.cur()
	p.next() // match

	restore := p.noStructLiteral
	p.noStructLiteral = true
	scrutinee := p.parseExpression(LOWEST)
	p.noStructLiteral = restore
	if scrutinee == nil {
		return nil
	}

	me := &ast.MatchExpression{Token: tok, Scrutinee: scrutinee}
	if _, ok := p.expect(token.LBRACE); !ok {
		return nil
	}
	p.skipNewlines()

	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		caseTok, ok := p.expect(token.CASE)
		if !ok {
			p.skipToStatementBoundary()
			p.skipNewlines()
			continue
		}
		pat := p.parsePattern()
		if pat == nil {
			p.skipToStatementBoundary()
			p.skipNewlines()
			continue
		}
		if _, ok := p.expect(token.FAT_ARROW); !ok {
			p.skipToStatementBoundary()
			p.skipNewlines()
			continue
		}
		p.skipNewlines()
		body := p.parseExpression(LOWEST)
		if body == nil {
			p.skipToStatementBoundary()
			p.skipNewlines()
			continue
		}
		me.Arms = append(me.Arms, &ast.MatchArm{Token: caseTok, Pattern: pat, Body: body})

		// Arms separate by commas or newlines.
		if p.curIs(token.COMMA) {
			p.next()
		}
		p.skipNewlines()
	}
	p.expect(token.RBRACE)
	return me
}
