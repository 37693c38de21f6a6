package ast

import (
	"github.com/Microindole/lency/internal/token"
)

// NamedType is a type reference by name with optional type arguments:
// `int`, `Box<int>`, `T`.
type NamedType struct {
	Token token.Token
	Name  *Identifier
	Args  []TypeExpr
}

func (nt *NamedType) Accept(v Visitor)     { v.VisitNamedType(nt) }
func (nt *NamedType) typeExprNode()        {}
func (nt *NamedType) TokenLiteral() string { return nt.Token.Lexeme }
func (nt *NamedType) GetToken() token.Token {
	if nt == nil {
		return token.Token{}
	}
	return nt.Token
}

// NullableType represents `T?`. The parser guarantees Inner is never
// itself a NullableType.
type NullableType struct {
	Token token.Token // the '?' token
	Inner TypeExpr
}

func (nt *NullableType) Accept(v Visitor)     { v.VisitNullableType(nt) }
func (nt *NullableType) typeExprNode()        {}
func (nt *NullableType) TokenLiteral() string { return nt.Token.Lexeme }
func (nt *NullableType) GetToken() token.Token {
	if nt == nil {
		return token.Token{}
	}
	return nt.Token
}

// ArrayType represents the fixed-size array type `[T; n]`.
type ArrayType struct {
	Token token.Token // the '[' token
	Elem  TypeExpr
	Len   int
}

func (at *ArrayType) Accept(v Visitor)     { v.VisitArrayType(at) }
func (at *ArrayType) typeExprNode()        {}
func (at *ArrayType) TokenLiteral() string { return at.Token.Lexeme }
func (at *ArrayType) GetToken() token.Token {
	if at == nil {
		return token.Token{}
	}
	return at.Token
}
