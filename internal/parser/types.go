package parser

import (
	"github.com/Microindole/lency/internal/ast"
	"github.com/Microindole/lency/internal/diagnostics"
	"github.com/Microindole/lency/internal/token"
)

// parseType parses a type expression:
//
//	T | T? | Name<T1, T2> | [T; n]
//
// A trailing `?` binds to the whole preceding type; `T??` is rejected.
func (p *Parser) parseType() ast.TypeExpr {
	var base ast.TypeExpr

	switch p.cur().Type {
	case token.LBRACKET:
		base = p.parseArrayType()
	case token.IDENT:
		base = p.parseNamedType()
	default:
		p.errorf(diagnostics.ErrP005, p.cur(), "expected a type, found %q", p.cur().Lexeme)
		return nil
	}
	if base == nil {
		return nil
	}

	switch {
	case p.curIs(token.QUESTION):
		qTok := p.cur()
		p.next()
		if p.curIs(token.QUESTION) {
			p.errorf(diagnostics.ErrP005, p.cur(), "a nullable type cannot be nested: remove the extra '?'")
			p.next()
		}
		return &ast.NullableType{Token: qTok, Inner: base}
	case p.curIs(token.NULL_COALESCE):
		// `int??` lexes as one '??' token.
		p.errorf(diagnostics.ErrP005, p.cur(), "a nullable type cannot be nested: remove the extra '?'")
		qTok := p.cur()
		p.next()
		return &ast.NullableType{Token: qTok, Inner: base}
	}
	return base
}

func (p *Parser) parseNamedType() ast.TypeExpr {
	nameTok := p.cur()
	p.next()
	name := &ast.Identifier{Token: nameTok, Value: nameTok.Lexeme}
	nt := &ast.NamedType{Token: nameTok, Name: name}

	if p.curIs(token.LT) {
		p.next()
		for {
			// `T?` inside angle brackets binds tighter than the
			// argument list, so each argument parses fully.
			arg := p.parseType()
			if arg == nil {
				return nil
			}
			nt.Args = append(nt.Args, arg)
			if p.curIs(token.COMMA) {
				p.next()
				continue
			}
			break
		}
		if _, ok := p.expect(token.GT); !ok {
			return nil
		}
	}
	return nt
}

func (p *Parser) parseArrayType() ast.TypeExpr {
	lbTok := p.cur()
	p.next()
	elem := p.parseType()
	if elem == nil {
		return nil
	}
	if _, ok := p.expect(token.SEMI); !ok {
		return nil
	}
	sizeTok := p.cur()
	if !p.curIs(token.INT) {
		p.errorf(diagnostics.ErrP005, sizeTok, "array length must be an integer literal")
		return nil
	}
	p.next()
	if _, ok := p.expect(token.RBRACKET); !ok {
		return nil
	}
	n, _ := sizeTok.Literal.(int64)
	return &ast.ArrayType{Token: lbTok, Elem: elem, Len: int(n)}
}

// tryParseType attempts a type parse without emitting diagnostics.
// On failure the position is restored and nil returned.
func (p *Parser) tryParseType() ast.TypeExpr {
	m := p.mark()
	p.quiet++
	t := p.parseType()
	p.quiet--
	if t == nil {
		p.resetTo(m)
	}
	return t
}

// tryParseTypeArgs speculatively parses `<T1, T2, ...>` starting at a
// '<'. Returns nil (position restored) unless a well-formed argument
// list closed by '>' is present.
func (p *Parser) tryParseTypeArgs() []ast.TypeExpr {
	if !p.curIs(token.LT) {
		return nil
	}
	m := p.mark()
	p.quiet++
	defer func() { p.quiet-- }()

	p.next() // consume '<'
	var args []ast.TypeExpr
	for {
		t := p.parseType()
		if t == nil {
			p.resetTo(m)
			return nil
		}
		args = append(args, t)
		if p.curIs(token.COMMA) {
			p.next()
			continue
		}
		break
	}
	if !p.curIs(token.GT) {
		p.resetTo(m)
		return nil
	}
	p.next() // consume '>'
	return args
}

// parseTypeParams parses `<T, U: Trait>` at a declaration site.
func (p *Parser) parseTypeParams() []*ast.TypeParam {
	if !p.curIs(token.LT) {
		return nil
	}
	p.next()
	var params []*ast.TypeParam
	for {
		nameTok, ok := p.expect(token.IDENT)
		if !ok {
			p.skipToStatementBoundary()
			return params
		}
		tp := &ast.TypeParam{Token: nameTok, Name: nameTok.Lexeme}
		if p.curIs(token.COLON) {
			p.next()
			boundTok, ok := p.expect(token.IDENT)
			if !ok {
				p.skipToStatementBoundary()
				return params
			}
			tp.Bounds = append(tp.Bounds, &ast.Identifier{Token: boundTok, Value: boundTok.Lexeme})
		}
		params = append(params, tp)
		if p.curIs(token.COMMA) {
			p.next()
			continue
		}
		break
	}
	p.expect(token.GT)
	return params
}
