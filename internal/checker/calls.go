package checker

import (
	"github.com/Microindole/lency/internal/ast"
	"github.com/Microindole/lency/internal/diagnostics"
	"github.com/Microindole/lency/internal/symbols"
	"github.com/Microindole/lency/internal/token"
	"github.com/Microindole/lency/internal/typesystem"
)

func (c *Checker) inferCall(expr *ast.CallExpression, expected typesystem.Type) typesystem.Type {
	switch callee := expr.Callee.(type) {
	case *ast.Identifier:
		sym, ok := c.res.SymbolOf(callee)
		if !ok {
			return nil
		}
		switch sym.Kind {
		case symbols.FunctionSymbol:
			return c.checkInvoke(sym, callee.Token, expr.TypeArgs, expr.Args)
		case symbols.EnumVariantSymbol:
			argTypes, ok := c.inferArgs(expr.Args)
			if !ok {
				return nil
			}
			return c.variantCtorTypeWithExprs(sym.Enum, callee.Value, argTypes, expr.TypeArgs, expected, callee)
		default:
			c.sink.Errorf(diagnostics.ErrT001, callee.Token.Span,
				"%s %q is not callable", sym.Kind, callee.Value)
			return nil
		}

	case *ast.PathExpression:
		return c.inferPath(callee, expr, expected)

	default:
		// First-class function value (extern function references).
		ct := c.inferExpr(expr.Callee, nil)
		if ct == nil {
			return nil
		}
		fn, ok := ct.(typesystem.TFunc)
		if !ok {
			c.sink.Errorf(diagnostics.ErrT001, expr.Callee.GetToken().Span,
				"type %s is not callable", ct)
			return nil
		}
		return c.checkArgsAgainst(fn.Params, fn.Return, expr.Args, expr.Callee.GetToken())
	}
}

// checkInvoke type-checks a call of a named function, handling generic
// instantiation: explicit type arguments, arity, and trait bounds.
func (c *Checker) checkInvoke(sym *symbols.Symbol, at token.Token, typeArgs []ast.TypeExpr, args []ast.Expression) typesystem.Type {
	fn, ok := sym.Type.(typesystem.TFunc)
	if !ok {
		return nil
	}

	subst := typesystem.Subst{}
	if len(sym.TypeParams) > 0 {
		if len(typeArgs) != len(sym.TypeParams) {
			c.sink.Errorf(diagnostics.ErrT005, at.Span,
				"function %q expects %d type argument(s), got %d",
				sym.Name, len(sym.TypeParams), len(typeArgs)).
				WithHelp("instantiate explicitly, e.g. %s<...>(...)", sym.Name)
			return nil
		}
		for i, ta := range typeArgs {
			concrete := c.typeFromExpr(ta, c.fn.bounds)
			if concrete == nil {
				return nil
			}
			subst[sym.TypeParams[i]] = concrete
			c.checkBounds(sym, sym.TypeParams[i], concrete, ta.GetToken().Span, c.fn.bounds)
		}
	} else if len(typeArgs) > 0 {
		c.sink.Errorf(diagnostics.ErrT005, at.Span,
			"function %q is not generic", sym.Name)
		return nil
	}

	params := make([]typesystem.Type, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = p.Apply(subst)
	}
	return c.checkArgsAgainst(params, fn.Return.Apply(subst), args, at)
}

// checkArgsAgainst verifies argument count and assignability, then
// returns the call's result type.
func (c *Checker) checkArgsAgainst(params []typesystem.Type, ret typesystem.Type, args []ast.Expression, at token.Token) typesystem.Type {
	if len(args) != len(params) {
		c.sink.Errorf(diagnostics.ErrT011, at.Span,
			"wrong number of arguments: expected %d, got %d", len(params), len(args))
		return nil
	}
	for i, a := range args {
		argType := c.inferExpr(a, params[i])
		if argType == nil {
			continue
		}
		if !typesystem.IsConcrete(params[i]) {
			// Still generic inside a generic body; re-checked per
			// instantiation after substitution.
			continue
		}
		if !typesystem.Assignable(argType, params[i]) {
			c.sink.Errorf(diagnostics.ErrT001, a.GetToken().Span,
				"argument %d: cannot use %s as %s", i+1, argType, params[i])
		}
	}
	return ret
}

func (c *Checker) inferArgs(args []ast.Expression) ([]typesystem.Type, bool) {
	out := make([]typesystem.Type, len(args))
	ok := true
	for i, a := range args {
		out[i] = c.inferExpr(a, nil)
		if out[i] == nil {
			ok = false
		}
	}
	return out, ok
}

// inferPath types `Enum::Variant` used bare (call is nil) or as a
// constructor call.
func (c *Checker) inferPath(pe *ast.PathExpression, call *ast.CallExpression, expected typesystem.Type) typesystem.Type {
	enumSym, ok := c.res.SymbolOf(pe)
	if !ok {
		return nil
	}
	if call == nil {
		return c.variantCtorType(enumSym, pe.Name.Value, nil, nil, expected, pe)
	}
	argTypes, ok := c.inferArgs(call.Args)
	if !ok {
		return nil
	}
	return c.variantCtorTypeWithExprs(enumSym, pe.Name.Value, argTypes, call.TypeArgs, expected, pe)
}

func (c *Checker) variantCtorTypeWithExprs(enumSym *symbols.Symbol, variantName string, argTypes []typesystem.Type, typeArgExprs []ast.TypeExpr, expected typesystem.Type, at ast.Expression) typesystem.Type {
	var typeArgs []typesystem.Type
	for _, ta := range typeArgExprs {
		t := c.typeFromExpr(ta, c.fn.bounds)
		if t == nil {
			return nil
		}
		typeArgs = append(typeArgs, t)
	}
	return c.variantCtorType(enumSym, variantName, argTypes, typeArgs, expected, at)
}

// variantCtorType types an enum variant construction. The enum's type
// arguments come from, in order of preference: explicit arguments, the
// expected type, or local inference against the payload.
func (c *Checker) variantCtorType(enumSym *symbols.Symbol, variantName string, argTypes []typesystem.Type, typeArgs []typesystem.Type, expected typesystem.Type, at ast.Expression) typesystem.Type {
	decl := enumSym.Decl.(*ast.EnumDeclaration)
	variant := decl.Variant(variantName)
	if variant == nil {
		c.sink.Errorf(diagnostics.ErrR001, at.GetToken().Span,
			"enum %q has no variant %q", enumSym.Name, variantName)
		return nil
	}
	if len(argTypes) != len(variant.Params) {
		c.sink.Errorf(diagnostics.ErrT011, at.GetToken().Span,
			"variant %s::%s takes %d value(s), got %d",
			enumSym.Name, variantName, len(variant.Params), len(argTypes))
		return nil
	}

	// Declared payload types, with the enum's parameters generic.
	declaredParams := make([]typesystem.Type, len(variant.Params))
	for i, pt := range variant.Params {
		declaredParams[i] = c.variantParamType(enumSym, pt)
		if declaredParams[i] == nil {
			return nil
		}
	}

	subst := typesystem.Subst{}
	switch {
	case len(typeArgs) > 0:
		if len(typeArgs) != len(enumSym.TypeParams) {
			c.sink.Errorf(diagnostics.ErrT005, at.GetToken().Span,
				"enum %q expects %d type argument(s), got %d",
				enumSym.Name, len(enumSym.TypeParams), len(typeArgs))
			return nil
		}
		for i, tp := range enumSym.TypeParams {
			subst[tp] = typeArgs[i]
		}
	case expectedMatchesDecl(expected, enumSym):
		exp := expected.(typesystem.TNamed)
		for i, tp := range enumSym.TypeParams {
			subst[tp] = exp.Args[i]
		}
	default:
		// Local inference from the payload.
		for i, dp := range declaredParams {
			inferSubst(dp, argTypes[i], subst)
		}
	}

	// Every enum parameter must be fixed by now.
	args := make([]typesystem.Type, len(enumSym.TypeParams))
	for i, tp := range enumSym.TypeParams {
		t, ok := subst[tp]
		if !ok {
			c.sink.Errorf(diagnostics.ErrT005, at.GetToken().Span,
				"cannot infer type argument %q of enum %q", tp, enumSym.Name).
				WithHelp("annotate the enclosing declaration or use explicit type arguments")
			return nil
		}
		args[i] = t
	}

	for i, dp := range declaredParams {
		want := dp.Apply(subst)
		if !typesystem.IsConcrete(want) || argTypes[i] == nil {
			continue
		}
		if !typesystem.Assignable(argTypes[i], want) {
			c.sink.Errorf(diagnostics.ErrT001, at.GetToken().Span,
				"variant %s::%s value %d: cannot use %s as %s",
				enumSym.Name, variantName, i+1, argTypes[i], want)
		}
	}

	return typesystem.TNamed{Name: enumSym.Name, Args: args}
}

// variantParamType converts a variant payload type expression in the
// enum's own generic context.
func (c *Checker) variantParamType(enumSym *symbols.Symbol, pt ast.TypeExpr) typesystem.Type {
	if nt, ok := pt.(*ast.NamedType); ok && len(nt.Args) == 0 {
		for _, tp := range enumSym.TypeParams {
			if nt.Name.Value == tp {
				return typesystem.TParam{Name: tp}
			}
		}
	}
	return c.typeFromExpr(pt, c.fn.bounds)
}

func expectedMatchesDecl(expected typesystem.Type, declSym *symbols.Symbol) bool {
	named, ok := expected.(typesystem.TNamed)
	return ok && named.Name == declSym.Name && len(named.Args) == len(declSym.TypeParams)
}

// inferSubst unifies a declared (possibly generic) type against an
// actual type, filling subst for each generic parameter position.
func inferSubst(declared, actual typesystem.Type, subst typesystem.Subst) {
	switch d := declared.(type) {
	case typesystem.TParam:
		if _, ok := subst[d.Name]; !ok && actual != nil {
			subst[d.Name] = actual
		}
	case typesystem.TNullable:
		if a, ok := actual.(typesystem.TNullable); ok {
			inferSubst(d.Inner, a.Inner, subst)
		}
	case typesystem.TArray:
		if a, ok := actual.(typesystem.TArray); ok {
			inferSubst(d.Elem, a.Elem, subst)
		}
	case typesystem.TNamed:
		if a, ok := actual.(typesystem.TNamed); ok && a.Name == d.Name && len(a.Args) == len(d.Args) {
			for i := range d.Args {
				inferSubst(d.Args[i], a.Args[i], subst)
			}
		}
	}
}
