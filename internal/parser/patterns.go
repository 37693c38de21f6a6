package parser

import (
	"github.com/Microindole/lency/internal/ast"
	"github.com/Microindole/lency/internal/diagnostics"
	"github.com/Microindole/lency/internal/token"
)

// parsePattern parses one match pattern:
//
//	literal | identifier | _ | Variant(subpat, ...) | Enum::Variant(...)
//
// A bare identifier parses as a binding; the checker reinterprets it as
// a unit-variant match when the name is a variant of the scrutinee enum.
func (p *Parser) parsePattern() ast.Pattern {
	tok := p.cur()

	switch tok.Type {
	case token.INT, token.FLOAT, token.STRING, token.TRUE, token.FALSE, token.NULL:
		lit := p.parseExpression(PREFIX)
		if lit == nil {
			return nil
		}
		return &ast.LiteralPattern{Token: tok, Value: lit}

	case token.MINUS:
		// Negative numeric literal.
		lit := p.parseExpression(PREFIX)
		if lit == nil {
			return nil
		}
		return &ast.LiteralPattern{Token: tok, Value: lit}

	case token.IDENT:
		if tok.Lexeme == "_" {
			p.next()
			return &ast.WildcardPattern{Token: tok}
		}
		p.next()
		name := &ast.Identifier{Token: tok, Value: tok.Lexeme}

		var enum *ast.Identifier
		if p.curIs(token.PATH_SEP) {
			p.next()
			variantTok, ok := p.expect(token.IDENT)
			if !ok {
				return nil
			}
			enum = name
			name = &ast.Identifier{Token: variantTok, Value: variantTok.Lexeme}
		}

		if p.curIs(token.LPAREN) {
			p.next()
			vp := &ast.VariantPattern{Token: tok, Enum: enum, Name: name}
			p.skipNewlines()
			for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
				sub := p.parsePattern()
				if sub == nil {
					return nil
				}
				vp.Elements = append(vp.Elements, sub)
				p.skipNewlines()
				if p.curIs(token.COMMA) {
					p.next()
					p.skipNewlines()
				}
			}
			p.expect(token.RPAREN)
			return vp
		}

		if enum != nil {
			return &ast.VariantPattern{Token: tok, Enum: enum, Name: name}
		}
		return &ast.IdentifierPattern{Token: tok, Name: name}
	}

	p.errorf(diagnostics.ErrP004, tok, "invalid pattern: unexpected %q", tok.Lexeme)
	return nil
}
