package ast

import (
	"github.com/Microindole/lency/internal/token"
)

// LiteralPattern matches an integer, float, string, bool, or null literal.
type LiteralPattern struct {
	Token token.Token
	Value Expression // one of the literal expression nodes
}

func (lp *LiteralPattern) Accept(v Visitor)     { v.VisitLiteralPattern(lp) }
func (lp *LiteralPattern) patternNode()         {}
func (lp *LiteralPattern) TokenLiteral() string { return lp.Token.Lexeme }
func (lp *LiteralPattern) GetToken() token.Token {
	if lp == nil {
		return token.Token{}
	}
	return lp.Token
}

// IdentifierPattern binds the scrutinee (or a variant payload element)
// to a fresh variable.
type IdentifierPattern struct {
	Token token.Token
	Name  *Identifier
}

func (ip *IdentifierPattern) Accept(v Visitor)     { v.VisitIdentifierPattern(ip) }
func (ip *IdentifierPattern) patternNode()         {}
func (ip *IdentifierPattern) TokenLiteral() string { return ip.Token.Lexeme }
func (ip *IdentifierPattern) GetToken() token.Token {
	if ip == nil {
		return token.Token{}
	}
	return ip.Token
}

// WildcardPattern is `_`.
type WildcardPattern struct {
	Token token.Token
}

func (wp *WildcardPattern) Accept(v Visitor)     { v.VisitWildcardPattern(wp) }
func (wp *WildcardPattern) patternNode()         {}
func (wp *WildcardPattern) TokenLiteral() string { return wp.Token.Lexeme }
func (wp *WildcardPattern) GetToken() token.Token {
	if wp == nil {
		return token.Token{}
	}
	return wp.Token
}

// VariantPattern matches an enum variant with optional payload
// sub-patterns: `Some(v)`, `Color::Red`, `Pair(a, _)`.
type VariantPattern struct {
	Token    token.Token
	Enum     *Identifier // optional qualifier before '::'
	Name     *Identifier
	Elements []Pattern
}

func (vp *VariantPattern) Accept(v Visitor)     { v.VisitVariantPattern(vp) }
func (vp *VariantPattern) patternNode()         {}
func (vp *VariantPattern) TokenLiteral() string { return vp.Token.Lexeme }
func (vp *VariantPattern) GetToken() token.Token {
	if vp == nil {
		return token.Token{}
	}
	return vp.Token
}
