package ast

import (
	"github.com/Microindole/lency/internal/token"
)

// Node is the base interface for all AST nodes.
type Node interface {
	TokenLiteral() string
	Accept(v Visitor)
}

// Statement is a Node that represents a statement.
type Statement interface {
	Node
	statementNode()
	GetToken() token.Token
}

// Expression is a Node that represents an expression.
type Expression interface {
	Node
	expressionNode()
	GetToken() token.Token
}

// Declaration is a top-level declaration in a module.
type Declaration interface {
	Node
	declarationNode()
	GetToken() token.Token
}

// Pattern is a match pattern.
type Pattern interface {
	Node
	patternNode()
	GetToken() token.Token
}

// TypeExpr is the syntactic form of a type annotation.
type TypeExpr interface {
	Node
	typeExprNode()
	GetToken() token.Token
}

// Module is the root node the parser produces for one source file.
type Module struct {
	File    string   // source file path
	Path    string   // dotted import path ("a.b.c"), "" for the root file
	Imports []*ImportDeclaration
	Decls   []Declaration
}

func (m *Module) Accept(v Visitor) { v.VisitModule(m) }
func (m *Module) TokenLiteral() string {
	if len(m.Decls) > 0 {
		return m.Decls[0].TokenLiteral()
	}
	return ""
}

// ImportDeclaration represents `import a.b.c`.
type ImportDeclaration struct {
	Token    token.Token // the 'import' token
	Segments []string    // ["a", "b", "c"]
}

func (id *ImportDeclaration) Accept(v Visitor)     { v.VisitImportDeclaration(id) }
func (id *ImportDeclaration) declarationNode()     {}
func (id *ImportDeclaration) TokenLiteral() string { return id.Token.Lexeme }
func (id *ImportDeclaration) GetToken() token.Token {
	if id == nil {
		return token.Token{}
	}
	return id.Token
}

// DottedPath renders the import path back to source form.
func (id *ImportDeclaration) DottedPath() string {
	out := ""
	for i, s := range id.Segments {
		if i > 0 {
			out += "."
		}
		out += s
	}
	return out
}

// TypeParam is one generic parameter with optional trait bounds:
// <T> or <T: Trait>.
type TypeParam struct {
	Token  token.Token
	Name   string
	Bounds []*Identifier // trait names
}

func (tp *TypeParam) GetToken() token.Token {
	if tp == nil {
		return token.Token{}
	}
	return tp.Token
}

// Param is one function parameter: `Type name`.
type Param struct {
	Token token.Token
	Type  TypeExpr
	Name  *Identifier
}

func (p *Param) GetToken() token.Token {
	if p == nil {
		return token.Token{}
	}
	return p.Token
}

// FunctionDeclaration covers ordinary functions, extern functions
// (Extern true, Body nil), and impl-block methods.
// Signature shape: RetType name<Gens>(ParamType param, ...) { ... }
type FunctionDeclaration struct {
	Token      token.Token // first token of the return type
	Pub        bool
	Extern     bool
	ReturnType TypeExpr
	Name       *Identifier
	TypeParams []*TypeParam
	Params     []*Param
	Body       *BlockStatement // nil for extern
}

func (fd *FunctionDeclaration) Accept(v Visitor)     { v.VisitFunctionDeclaration(fd) }
func (fd *FunctionDeclaration) declarationNode()     {}
func (fd *FunctionDeclaration) TokenLiteral() string { return fd.Token.Lexeme }
func (fd *FunctionDeclaration) GetToken() token.Token {
	if fd == nil {
		return token.Token{}
	}
	return fd.Token
}

// IsGeneric reports whether the declaration has type parameters.
func (fd *FunctionDeclaration) IsGeneric() bool { return len(fd.TypeParams) > 0 }

// FieldDef is one struct field: `Type name`.
type FieldDef struct {
	Token token.Token
	Type  TypeExpr
	Name  *Identifier
}

func (fd *FieldDef) GetToken() token.Token {
	if fd == nil {
		return token.Token{}
	}
	return fd.Token
}

// StructDeclaration represents `struct Name<Gens> { Type field ... }`.
type StructDeclaration struct {
	Token      token.Token // the 'struct' token
	Pub        bool
	Name       *Identifier
	TypeParams []*TypeParam
	Fields     []*FieldDef
}

func (sd *StructDeclaration) Accept(v Visitor)     { v.VisitStructDeclaration(sd) }
func (sd *StructDeclaration) declarationNode()     {}
func (sd *StructDeclaration) TokenLiteral() string { return sd.Token.Lexeme }
func (sd *StructDeclaration) GetToken() token.Token {
	if sd == nil {
		return token.Token{}
	}
	return sd.Token
}

func (sd *StructDeclaration) IsGeneric() bool { return len(sd.TypeParams) > 0 }

// VariantDef is one enum variant. Tag is the discriminant, assigned
// 0..n-1 in declaration order.
type VariantDef struct {
	Token  token.Token
	Name   *Identifier
	Params []TypeExpr // payload types; empty for unit variants
	Tag    int
}

func (vd *VariantDef) GetToken() token.Token {
	if vd == nil {
		return token.Token{}
	}
	return vd.Token
}

// EnumDeclaration represents `enum Name<Gens> { A, B(T), ... }`.
type EnumDeclaration struct {
	Token      token.Token // the 'enum' token
	Pub        bool
	Name       *Identifier
	TypeParams []*TypeParam
	Variants   []*VariantDef
}

func (ed *EnumDeclaration) Accept(v Visitor)     { v.VisitEnumDeclaration(ed) }
func (ed *EnumDeclaration) declarationNode()     {}
func (ed *EnumDeclaration) TokenLiteral() string { return ed.Token.Lexeme }
func (ed *EnumDeclaration) GetToken() token.Token {
	if ed == nil {
		return token.Token{}
	}
	return ed.Token
}

func (ed *EnumDeclaration) IsGeneric() bool { return len(ed.TypeParams) > 0 }

// Variant returns the named variant, or nil.
func (ed *EnumDeclaration) Variant(name string) *VariantDef {
	for _, v := range ed.Variants {
		if v.Name.Value == name {
			return v
		}
	}
	return nil
}

// FunctionSignature is one trait method signature (no body).
type FunctionSignature struct {
	Token      token.Token
	ReturnType TypeExpr
	Name       *Identifier
	Params     []*Param
}

func (fs *FunctionSignature) GetToken() token.Token {
	if fs == nil {
		return token.Token{}
	}
	return fs.Token
}

// TraitDeclaration represents `trait Name { RetType m(...) ... }`.
type TraitDeclaration struct {
	Token      token.Token // the 'trait' token
	Pub        bool
	Name       *Identifier
	TypeParams []*TypeParam
	Methods    []*FunctionSignature
}

func (td *TraitDeclaration) Accept(v Visitor)     { v.VisitTraitDeclaration(td) }
func (td *TraitDeclaration) declarationNode()     {}
func (td *TraitDeclaration) TokenLiteral() string { return td.Token.Lexeme }
func (td *TraitDeclaration) GetToken() token.Token {
	if td == nil {
		return token.Token{}
	}
	return td.Token
}

// Method returns the named signature, or nil.
func (td *TraitDeclaration) Method(name string) *FunctionSignature {
	for _, m := range td.Methods {
		if m.Name.Value == name {
			return m
		}
	}
	return nil
}

// ImplDeclaration represents `impl Name { ... }` (inherent, Trait nil)
// or `impl Trait for Name { ... }`.
type ImplDeclaration struct {
	Token      token.Token // the 'impl' token
	TypeParams []*TypeParam
	Trait      *Identifier // nil for inherent impls
	Target     *NamedType
	Methods    []*FunctionDeclaration
}

func (id *ImplDeclaration) Accept(v Visitor)     { v.VisitImplDeclaration(id) }
func (id *ImplDeclaration) declarationNode()     {}
func (id *ImplDeclaration) TokenLiteral() string { return id.Token.Lexeme }
func (id *ImplDeclaration) GetToken() token.Token {
	if id == nil {
		return token.Token{}
	}
	return id.Token
}

func (id *ImplDeclaration) IsGeneric() bool { return len(id.TypeParams) > 0 }

// Method returns the named method, or nil.
func (id *ImplDeclaration) Method(name string) *FunctionDeclaration {
	for _, m := range id.Methods {
		if m.Name.Value == name {
			return m
		}
	}
	return nil
}

// ConstDeclaration represents `const NAME = expr` with an optional
// type annotation: `const int NAME = expr`.
type ConstDeclaration struct {
	Token token.Token // the 'const' token
	Pub   bool
	Type  TypeExpr // nil when inferred
	Name  *Identifier
	Value Expression
}

func (cd *ConstDeclaration) Accept(v Visitor)     { v.VisitConstDeclaration(cd) }
func (cd *ConstDeclaration) declarationNode()     {}
func (cd *ConstDeclaration) TokenLiteral() string { return cd.Token.Lexeme }
func (cd *ConstDeclaration) GetToken() token.Token {
	if cd == nil {
		return token.Token{}
	}
	return cd.Token
}
