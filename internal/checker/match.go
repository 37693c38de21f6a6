package checker

import (
	"strings"

	"github.com/Microindole/lency/internal/ast"
	"github.com/Microindole/lency/internal/diagnostics"
	"github.com/Microindole/lency/internal/symbols"
	"github.com/Microindole/lency/internal/typesystem"
)

// inferMatch types `match e { case P => arm, ... }`: each pattern is
// checked against the scrutinee type, bindings enter the arm scope with
// refined types, all arms must join to one result type, and coverage
// must be exhaustive.
func (c *Checker) inferMatch(expr *ast.MatchExpression) typesystem.Type {
	scrutType := c.inferExpr(expr.Scrutinee, nil)
	if scrutType == nil {
		return nil
	}
	if len(expr.Arms) == 0 {
		c.sink.Errorf(diagnostics.ErrT008, expr.Token.Span, "match has no arms")
		return nil
	}

	cov := newCoverage(c, scrutType)
	var result typesystem.Type

	for _, arm := range expr.Arms {
		if cov.complete && !cov.warned {
			c.sink.Warnf(diagnostics.WarnT102, arm.Token.Span,
				"unreachable match arm: earlier patterns already cover every value")
			cov.warned = true
		}

		c.checkPattern(arm.Pattern, scrutType, cov)

		armType := c.inferExpr(arm.Body, result)
		if armType == nil {
			continue
		}
		if result == nil {
			result = armType
			continue
		}
		joined := typesystem.Join(result, armType)
		if joined == nil {
			c.sink.Errorf(diagnostics.ErrT001, arm.Body.GetToken().Span,
				"match arm has type %s, but earlier arms have type %s", armType, result)
			continue
		}
		result = joined
	}

	cov.report(c, expr)
	return result
}

// checkPattern validates one pattern against the scrutinee type and
// assigns types to its bindings.
func (c *Checker) checkPattern(pat ast.Pattern, scrutType typesystem.Type, cov *coverage) {
	switch p := pat.(type) {
	case *ast.WildcardPattern:
		cov.markWildcard()

	case *ast.LiteralPattern:
		litType := c.inferExpr(p.Value, scrutType)
		if litType == nil {
			return
		}
		base := typesystem.StripNullable(scrutType)
		if typesystem.IsUntypedNull(litType) {
			if !typesystem.IsNullable(scrutType) {
				c.sink.Errorf(diagnostics.ErrT001, p.Token.Span,
					"null pattern against non-nullable %s", scrutType)
			}
			return
		}
		if !typesystem.Equal(litType, base) {
			c.sink.Errorf(diagnostics.ErrT001, p.Token.Span,
				"pattern of type %s cannot match %s", litType, scrutType)
			return
		}
		if b, ok := p.Value.(*ast.BooleanLiteral); ok {
			cov.markBool(b.Value)
		}

	case *ast.IdentifierPattern:
		// A bare name matching a variant of the scrutinee enum is a
		// unit-variant pattern; anything else binds the whole value.
		if enumSym, variant := cov.variantNamed(p.Name.Value); variant != nil {
			if len(variant.Params) > 0 {
				c.sink.Errorf(diagnostics.ErrT011, p.Token.Span,
					"variant %s::%s carries %d value(s); bind or ignore them",
					enumSym.Name, variant.Name.Value, len(variant.Params))
				return
			}
			cov.markVariant(variant.Name.Value)
			return
		}
		if sym, ok := c.res.SymbolOf(p.Name); ok {
			sym.Type = scrutType
		}
		cov.markWildcard()

	case *ast.VariantPattern:
		c.checkVariantPattern(p, scrutType, cov)
	}
}

func (c *Checker) checkVariantPattern(p *ast.VariantPattern, scrutType typesystem.Type, cov *coverage) {
	if cov.enumSym == nil {
		c.sink.Errorf(diagnostics.ErrT001, p.Token.Span,
			"variant pattern against non-enum type %s", scrutType)
		return
	}
	if p.Enum != nil && p.Enum.Value != cov.enumSym.Name {
		c.sink.Errorf(diagnostics.ErrT001, p.Enum.Token.Span,
			"pattern names enum %q but the scrutinee is %s", p.Enum.Value, scrutType)
		return
	}

	variant := cov.enumDecl.Variant(p.Name.Value)
	if variant == nil {
		c.sink.Errorf(diagnostics.ErrR001, p.Name.Token.Span,
			"enum %q has no variant %q", cov.enumSym.Name, p.Name.Value)
		return
	}
	if len(p.Elements) != len(variant.Params) {
		c.sink.Errorf(diagnostics.ErrT011, p.Token.Span,
			"variant %s::%s has %d value(s), pattern binds %d",
			cov.enumSym.Name, variant.Name.Value, len(variant.Params), len(p.Elements))
		return
	}

	// Bind payload elements at their instantiated types, e.g.
	// Some(v) binds v at T for an Option<T> scrutinee.
	named, _ := scrutType.(typesystem.TNamed)
	subst := typesystem.Subst{}
	for i, tp := range cov.enumSym.TypeParams {
		if i < len(named.Args) {
			subst[tp] = named.Args[i]
		}
	}
	for i, sub := range p.Elements {
		declared := c.variantParamType(cov.enumSym, variant.Params[i])
		if declared == nil {
			continue
		}
		elemType := declared.Apply(subst)
		subCov := newCoverage(c, elemType)
		c.checkPattern(sub, elemType, subCov)
	}

	// Only a fully irrefutable payload (all bindings/wildcards)
	// counts toward coverage of the variant.
	if irrefutable(p.Elements, c, cov) {
		cov.markVariant(variant.Name.Value)
	}
}

func irrefutable(pats []ast.Pattern, c *Checker, cov *coverage) bool {
	for _, sub := range pats {
		switch sp := sub.(type) {
		case *ast.WildcardPattern:
		case *ast.IdentifierPattern:
			if _, v := cov.variantNamed(sp.Name.Value); v != nil {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// coverage tracks exhaustiveness per scrutinee type: enum variants,
// bool, or wildcard-required (int, string, everything else).
type coverage struct {
	enumSym  *symbols.Symbol
	enumDecl *ast.EnumDeclaration

	seenVariants map[string]bool
	seenTrue     bool
	seenFalse    bool
	wildcard     bool
	isBool       bool

	complete bool
	warned   bool
}

func newCoverage(c *Checker, scrutType typesystem.Type) *coverage {
	cov := &coverage{seenVariants: make(map[string]bool)}
	base := typesystem.StripNullable(scrutType)
	if named, ok := base.(typesystem.TNamed); ok {
		if sym, found := c.table.FindType(named.Name); found && sym.Kind == symbols.EnumSymbol {
			cov.enumSym = sym
			cov.enumDecl = sym.Decl.(*ast.EnumDeclaration)
		}
	}
	cov.isBool = typesystem.Equal(base, typesystem.Bool)
	return cov
}

func (cov *coverage) variantNamed(name string) (*symbols.Symbol, *ast.VariantDef) {
	if cov.enumDecl == nil {
		return nil, nil
	}
	return cov.enumSym, cov.enumDecl.Variant(name)
}

func (cov *coverage) markWildcard() {
	cov.wildcard = true
	cov.complete = true
}

func (cov *coverage) markBool(v bool) {
	if v {
		cov.seenTrue = true
	} else {
		cov.seenFalse = true
	}
	if cov.seenTrue && cov.seenFalse {
		cov.complete = true
	}
}

func (cov *coverage) markVariant(name string) {
	cov.seenVariants[name] = true
	if cov.enumDecl != nil && len(cov.seenVariants) == len(cov.enumDecl.Variants) {
		cov.complete = true
	}
}

// report emits NonExhaustiveMatch with the missing coverage.
func (cov *coverage) report(c *Checker, expr *ast.MatchExpression) {
	if cov.complete || cov.wildcard {
		return
	}

	switch {
	case cov.enumDecl != nil:
		var missing []string
		for _, v := range cov.enumDecl.Variants {
			if !cov.seenVariants[v.Name.Value] {
				missing = append(missing, v.Name.Value)
			}
		}
		c.sink.Errorf(diagnostics.ErrT008, expr.Token.Span,
			"match on enum %q is not exhaustive: missing %s",
			cov.enumSym.Name, strings.Join(missing, ", ")).
			WithHelp("add the missing case(s) or a `case _ =>` arm")
	case cov.isBool:
		c.sink.Errorf(diagnostics.ErrT008, expr.Token.Span,
			"match on bool must cover true and false or use a wildcard")
	default:
		c.sink.Errorf(diagnostics.ErrT008, expr.Token.Span,
			"match requires a wildcard arm for this scrutinee type").
			WithHelp("add `case _ => ...`")
	}
}
