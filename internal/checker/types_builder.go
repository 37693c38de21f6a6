package checker

import (
	"github.com/Microindole/lency/internal/ast"
	"github.com/Microindole/lency/internal/diagnostics"
	"github.com/Microindole/lency/internal/symbols"
	"github.com/Microindole/lency/internal/token"
	"github.com/Microindole/lency/internal/typesystem"
)

var primitiveTypes = map[string]typesystem.Type{
	"int":    typesystem.Int,
	"float":  typesystem.Float,
	"bool":   typesystem.Bool,
	"string": typesystem.String,
	"void":   typesystem.Void,
}

// typeFromExpr converts a syntactic type annotation into a typesystem
// type, verifying generic arity and bounds. bounds carries the generic
// parameters in scope (name -> trait bounds); nil means none.
func (c *Checker) typeFromExpr(te ast.TypeExpr, bounds map[string][]string) typesystem.Type {
	switch t := te.(type) {
	case *ast.NamedType:
		if prim, ok := primitiveTypes[t.Name.Value]; ok {
			return prim
		}
		sym, ok := c.res.SymbolOf(t.Name)
		if !ok {
			// The resolver already reported the unresolved name.
			return nil
		}
		switch sym.Kind {
		case symbols.TypeParamSymbol:
			return typesystem.TParam{Name: t.Name.Value}
		case symbols.StructSymbol, symbols.EnumSymbol:
			return c.namedFromExpr(t, sym, bounds)
		case symbols.TraitSymbol:
			c.sink.Errorf(diagnostics.ErrT001, t.Name.Token.Span,
				"trait %q cannot be used as a type", t.Name.Value).
				WithHelp("use a generic parameter with a bound: <T: %s>", t.Name.Value)
			return nil
		default:
			c.sink.Errorf(diagnostics.ErrT001, t.Name.Token.Span,
				"%q is a %s, not a type", t.Name.Value, sym.Kind)
			return nil
		}

	case *ast.NullableType:
		inner := c.typeFromExpr(t.Inner, bounds)
		if inner == nil {
			return nil
		}
		return typesystem.MakeNullable(inner)

	case *ast.ArrayType:
		elem := c.typeFromExpr(t.Elem, bounds)
		if elem == nil {
			return nil
		}
		return typesystem.TArray{Elem: elem, Len: t.Len}
	}
	return nil
}

// namedFromExpr builds a TNamed, checking arity and trait bounds of the
// type arguments.
func (c *Checker) namedFromExpr(t *ast.NamedType, sym *symbols.Symbol, bounds map[string][]string) typesystem.Type {
	if len(t.Args) != len(sym.TypeParams) {
		c.sink.Errorf(diagnostics.ErrT005, t.Name.Token.Span,
			"%s %q expects %d type argument(s), got %d",
			sym.Kind, sym.Name, len(sym.TypeParams), len(t.Args))
		return nil
	}

	args := make([]typesystem.Type, 0, len(t.Args))
	for i, a := range t.Args {
		at := c.typeFromExpr(a, bounds)
		if at == nil {
			return nil
		}
		args = append(args, at)
		c.checkBounds(sym, sym.TypeParams[i], at, a.GetToken().Span, bounds)
	}
	return typesystem.TNamed{Name: sym.Name, Args: args}
}

// checkBounds verifies that a concrete type argument satisfies the
// trait bounds declared on the corresponding parameter.
func (c *Checker) checkBounds(declSym *symbols.Symbol, paramName string, arg typesystem.Type, span token.Span, callerBounds map[string][]string) {
	required := declSym.Bounds[paramName]
	for _, trait := range required {
		if c.satisfiesBound(arg, trait, callerBounds) {
			continue
		}
		c.sink.Errorf(diagnostics.ErrT006, span,
			"%s does not implement %s", arg, trait).
			WithNote("required by bound %s: %s on %s %q", paramName, trait, declSym.Kind, declSym.Name)
	}
}

// satisfiesBound reports whether arg implements trait. A generic
// parameter satisfies a bound when its own bounds include the trait.
func (c *Checker) satisfiesBound(arg typesystem.Type, trait string, callerBounds map[string][]string) bool {
	switch at := arg.(type) {
	case typesystem.TParam:
		for _, b := range callerBounds[at.Name] {
			if b == trait {
				return true
			}
		}
		return false
	case typesystem.TNamed:
		return c.traits.Implements(at.Name, trait)
	default:
		return c.traits.Implements(arg.String(), trait)
	}
}
