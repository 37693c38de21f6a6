package parser

import (
	"github.com/Microindole/lency/internal/ast"
	"github.com/Microindole/lency/internal/diagnostics"
	"github.com/Microindole/lency/internal/token"
)

func (p *Parser) parseDeclaration() ast.Declaration {
	pub := false
	if p.curIs(token.PUB) {
		pub = true
		p.next()
	}

	switch p.cur().Type {
	case token.IMPORT:
		if pub {
			p.errorf(diagnostics.ErrP001, p.cur(), "imports cannot be declared pub")
		}
		return p.parseImportDeclaration()
	case token.STRUCT:
		return p.parseStructDeclaration(pub)
	case token.ENUM:
		return p.parseEnumDeclaration(pub)
	case token.TRAIT:
		return p.parseTraitDeclaration(pub)
	case token.IMPL:
		if pub {
			p.errorf(diagnostics.ErrP001, p.cur(), "impl blocks cannot be declared pub")
		}
		return p.parseImplDeclaration()
	case token.CONST:
		return p.parseConstDeclaration(pub)
	case token.EXTERN:
		return p.parseExternDeclaration(pub)
	default:
		return p.parseFunctionDeclaration(pub, false)
	}
}

func (p *Parser) parseImportDeclaration() ast.Declaration {
	tok := p.cur()
	p.next() // import
	imp := &ast.ImportDeclaration{Token: tok}

	segTok, ok := p.expect(token.IDENT)
	if !ok {
		p.skipToStatementBoundary()
		return nil
	}
	imp.Segments = append(imp.Segments, segTok.Lexeme)
	for p.curIs(token.DOT) {
		p.next()
		segTok, ok := p.expect(token.IDENT)
		if !ok {
			p.skipToStatementBoundary()
			return nil
		}
		imp.Segments = append(imp.Segments, segTok.Lexeme)
	}
	p.endOfStatement()
	return imp
}

// parseFunctionDeclaration parses
//
//	RetType name<Gens>(ParamType param, ...) { body }
//
// With extern true the body is absent.
func (p *Parser) parseFunctionDeclaration(pub, extern bool) ast.Declaration {
	firstTok := p.cur()
	retType := p.parseType()
	if retType == nil {
		p.skipToStatementBoundary()
		return nil
	}

	nameTok, ok := p.expect(token.IDENT)
	if !ok {
		p.skipToStatementBoundary()
		return nil
	}

	fd := &ast.FunctionDeclaration{
		Token:      firstTok,
		Pub:        pub,
		Extern:     extern,
		ReturnType: retType,
		Name:       &ast.Identifier{Token: nameTok, Value: nameTok.Lexeme},
	}

	if p.curIs(token.LT) {
		fd.TypeParams = p.parseTypeParams()
	}

	if _, ok := p.expect(token.LPAREN); !ok {
		p.skipToStatementBoundary()
		return nil
	}
	fd.Params = p.parseParams()

	if extern {
		p.endOfStatement()
		return fd
	}

	fd.Body = p.parseBlock()
	if fd.Body == nil {
		return nil
	}
	return fd
}

func (p *Parser) parseParams() []*ast.Param {
	var params []*ast.Param
	p.skipNewlines()
	for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
		firstTok := p.cur()
		typ := p.parseType()
		if typ == nil {
			p.skipToStatementBoundary()
			return params
		}
		nameTok, ok := p.expect(token.IDENT)
		if !ok {
			p.skipToStatementBoundary()
			return params
		}
		params = append(params, &ast.Param{
			Token: firstTok,
			Type:  typ,
			Name:  &ast.Identifier{Token: nameTok, Value: nameTok.Lexeme},
		})
		p.skipNewlines()
		if p.curIs(token.COMMA) {
			p.next()
			p.skipNewlines()
		}
	}
	p.expect(token.RPAREN)
	return params
}

func (p *Parser) parseStructDeclaration(pub bool) ast.Declaration {
	tok := p.cur()
	p.next() // struct
	nameTok, ok := p.expect(token.IDENT)
	if !ok {
		p.skipToStatementBoundary()
		return nil
	}
	sd := &ast.StructDeclaration{
		Token: tok,
		Pub:   pub,
		Name:  &ast.Identifier{Token: nameTok, Value: nameTok.Lexeme},
	}
	if p.curIs(token.LT) {
		sd.TypeParams = p.parseTypeParams()
	}
	if _, ok := p.expect(token.LBRACE); !ok {
		p.skipToStatementBoundary()
		return nil
	}
	p.skipNewlines()
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		firstTok := p.cur()
		typ := p.parseType()
		if typ == nil {
			p.skipToStatementBoundary()
			p.skipNewlines()
			continue
		}
		fieldTok, ok := p.expect(token.IDENT)
		if !ok {
			p.skipToStatementBoundary()
			p.skipNewlines()
			continue
		}
		sd.Fields = append(sd.Fields, &ast.FieldDef{
			Token: firstTok,
			Type:  typ,
			Name:  &ast.Identifier{Token: fieldTok, Value: fieldTok.Lexeme},
		})
		p.skipNewlines()
	}
	p.expect(token.RBRACE)
	return sd
}

func (p *Parser) parseEnumDeclaration(pub bool) ast.Declaration {
	tok := p.cur()
	p.next() // enum
	nameTok, ok := p.expect(token.IDENT)
	if !ok {
		p.skipToStatementBoundary()
		return nil
	}
	ed := &ast.EnumDeclaration{
		Token: tok,
		Pub:   pub,
		Name:  &ast.Identifier{Token: nameTok, Value: nameTok.Lexeme},
	}
	if p.curIs(token.LT) {
		ed.TypeParams = p.parseTypeParams()
	}
	if _, ok := p.expect(token.LBRACE); !ok {
		p.skipToStatementBoundary()
		return nil
	}
	p.skipNewlines()
	tag := 0
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		variantTok, ok := p.expect(token.IDENT)
		if !ok {
			p.skipToStatementBoundary()
			p.skipNewlines()
			continue
		}
		vd := &ast.VariantDef{
			Token: variantTok,
			Name:  &ast.Identifier{Token: variantTok, Value: variantTok.Lexeme},
			Tag:   tag,
		}
		tag++
		if p.curIs(token.LPAREN) {
			p.next()
			for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
				typ := p.parseType()
				if typ == nil {
					break
				}
				vd.Params = append(vd.Params, typ)
				if p.curIs(token.COMMA) {
					p.next()
				}
			}
			p.expect(token.RPAREN)
		}
		ed.Variants = append(ed.Variants, vd)
		if p.curIs(token.COMMA) {
			p.next()
		}
		p.skipNewlines()
	}
	p.expect(token.RBRACE)
	return ed
}

func (p *Parser) parseTraitDeclaration(pub bool) ast.Declaration {
	tok := p.cur()
	p.next() // trait
	nameTok, ok := p.expect(token.IDENT)
	if !ok {
		p.skipToStatementBoundary()
		return nil
	}
	td := &ast.TraitDeclaration{
		Token: tok,
		Pub:   pub,
		Name:  &ast.Identifier{Token: nameTok, Value: nameTok.Lexeme},
	}
	if p.curIs(token.LT) {
		td.TypeParams = p.parseTypeParams()
	}
	if _, ok := p.expect(token.LBRACE); !ok {
		p.skipToStatementBoundary()
		return nil
	}
	p.skipNewlines()
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		sigTok := p.cur()
		retType := p.parseType()
		if retType == nil {
			p.skipToStatementBoundary()
			p.skipNewlines()
			continue
		}
		methodTok, ok := p.expect(token.IDENT)
		if !ok {
			p.skipToStatementBoundary()
			p.skipNewlines()
			continue
		}
		if _, ok := p.expect(token.LPAREN); !ok {
			p.skipToStatementBoundary()
			p.skipNewlines()
			continue
		}
		params := p.parseParams()
		td.Methods = append(td.Methods, &ast.FunctionSignature{
			Token:      sigTok,
			ReturnType: retType,
			Name:       &ast.Identifier{Token: methodTok, Value: methodTok.Lexeme},
			Params:     params,
		})
		p.skipNewlines()
	}
	p.expect(token.RBRACE)
	return td
}

// parseImplDeclaration parses `impl Name { ... }` or
// `impl Trait for Name { ... }`, optionally generic:
// `impl<T> Box<T> { ... }`.
func (p *Parser) parseImplDeclaration() ast.Declaration {
	tok := p.cur()
	p.next() // impl
	id := &ast.ImplDeclaration{Token: tok}

	if p.curIs(token.LT) {
		id.TypeParams = p.parseTypeParams()
	}

	first := p.parseNamedType()
	if first == nil {
		p.skipToStatementBoundary()
		return nil
	}

	if p.curIs(token.FOR) {
		p.next()
		firstNamed, ok := first.(*ast.NamedType)
		if !ok || len(firstNamed.Args) > 0 {
			p.errorf(diagnostics.ErrP001, tok, "trait name in impl cannot carry type arguments")
			p.skipToStatementBoundary()
			return nil
		}
		id.Trait = firstNamed.Name
		target := p.parseNamedType()
		if target == nil {
			p.skipToStatementBoundary()
			return nil
		}
		id.Target = target.(*ast.NamedType)
	} else {
		id.Target = first.(*ast.NamedType)
	}

	if _, ok := p.expect(token.LBRACE); !ok {
		p.skipToStatementBoundary()
		return nil
	}
	p.skipNewlines()
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		method := p.parseFunctionDeclaration(false, false)
		if fd, ok := method.(*ast.FunctionDeclaration); ok && fd != nil {
			id.Methods = append(id.Methods, fd)
		}
		p.skipNewlines()
	}
	p.expect(token.RBRACE)
	return id
}

func (p *Parser) parseConstDeclaration(pub bool) ast.Declaration {
	tok := p.cur()
	p.next() // const
	cd := &ast.ConstDeclaration{Token: tok, Pub: pub}

	// `const NAME = e` or `const Type NAME = e`.
	m := p.mark()
	p.quiet++
	typ := p.parseType()
	typed := typ != nil && p.curIs(token.IDENT)
	p.quiet--
	if typed {
		cd.Type = typ
	} else {
		p.resetTo(m)
	}

	nameTok, ok := p.expect(token.IDENT)
	if !ok {
		p.skipToStatementBoundary()
		return nil
	}
	cd.Name = &ast.Identifier{Token: nameTok, Value: nameTok.Lexeme}

	if _, ok := p.expect(token.ASSIGN); !ok {
		p.skipToStatementBoundary()
		return nil
	}
	p.skipNewlines()
	cd.Value = p.parseExpression(LOWEST)
	if cd.Value == nil {
		p.skipToStatementBoundary()
		return nil
	}
	p.endOfStatement()
	return cd
}

func (p *Parser) parseExternDeclaration(pub bool) ast.Declaration {
	p.next() // extern
	return p.parseFunctionDeclaration(pub, true)
}
