package checker

import (
	"github.com/Microindole/lency/internal/ast"
	"github.com/Microindole/lency/internal/config"
	"github.com/Microindole/lency/internal/diagnostics"
	"github.com/Microindole/lency/internal/symbols"
	"github.com/Microindole/lency/internal/traits"
	"github.com/Microindole/lency/internal/typesystem"
)

// inferMethodCall resolves `receiver.m(args)` against, in order:
// inherent methods of the receiver's named type, trait methods
// reachable through `impl Trait for Type` blocks, and — when the
// receiver is a generic parameter — the methods of its trait bounds.
func (c *Checker) inferMethodCall(expr *ast.MethodCallExpression) typesystem.Type {
	rt := c.inferExpr(expr.Receiver, nil)
	if rt == nil {
		return nil
	}
	if typesystem.IsNullable(rt) {
		c.sink.Errorf(diagnostics.ErrT007, expr.Method.Token.Span,
			"cannot call method %q on nullable type %s", expr.Method.Value, rt).
			WithHelp("narrow with `if x != null` first")
		return nil
	}

	switch recv := rt.(type) {
	case typesystem.TParam:
		return c.inferBoundMethodCall(expr, recv)
	case typesystem.TNamed:
		return c.inferNamedMethodCall(expr, recv)
	case typesystem.TCon:
		// Primitives can carry trait impls (`impl Greet for int`).
		return c.inferNamedMethodCall(expr, typesystem.TNamed{Name: recv.Name})
	default:
		c.sink.Errorf(diagnostics.ErrT002, expr.Method.Token.Span,
			"type %s has no method %q", rt, expr.Method.Value)
		return nil
	}
}

// inferBoundMethodCall handles calls on a generic parameter: the
// method must come from one of the parameter's trait bounds. The call
// is resolved lazily; monomorphization rewrites it to the concrete
// impl method.
func (c *Checker) inferBoundMethodCall(expr *ast.MethodCallExpression, recv typesystem.TParam) typesystem.Type {
	bounds := c.fn.bounds[recv.Name]
	traitName, sig, ok := c.traits.BoundMethod(bounds, expr.Method.Value)
	if !ok {
		d := c.sink.Errorf(diagnostics.ErrT002, expr.Method.Token.Span,
			"no method %q on generic parameter %s", expr.Method.Value, recv.Name)
		if len(bounds) == 0 {
			d.WithNote("%s has no trait bounds", recv.Name)
		} else {
			d.WithNote("bounds of %s: %v", recv.Name, bounds)
		}
		return nil
	}

	params := make([]typesystem.Type, len(sig.Params))
	for i, p := range sig.Params {
		params[i] = c.typeFromExpr(p.Type, c.fn.bounds)
		if params[i] == nil {
			return nil
		}
	}
	ret := c.typeFromExpr(sig.ReturnType, c.fn.bounds)
	if ret == nil {
		return nil
	}

	c.MethodTargets[expr] = MethodTarget{Kind: MethodBound, TraitName: traitName, Method: expr.Method.Value}
	return c.checkArgsAgainst(params, ret, expr.Args, expr.Method.Token)
}

func (c *Checker) inferNamedMethodCall(expr *ast.MethodCallExpression, recv typesystem.TNamed) typesystem.Type {
	if recv.Name == config.VecTypeName || recv.Name == config.MapTypeName {
		return c.inferContainerMethodCall(expr, recv)
	}

	method, imp, found := c.traits.InherentMethod(recv.Name, expr.Method.Value)
	kind := MethodInherent
	traitName := ""
	if !found {
		method, imp, found = c.traits.TraitMethod(recv.Name, expr.Method.Value)
		kind = MethodTraitImpl
		if found {
			traitName = imp.TraitName
		}
	}
	if !found {
		c.sink.Errorf(diagnostics.ErrT002, expr.Method.Token.Span,
			"type %s has no method %q", recv, expr.Method.Value)
		return nil
	}

	subst := c.substForImplTarget(imp, recv)

	params := make([]typesystem.Type, len(method.Params))
	implBounds := implTypeParamBounds(imp)
	for i, p := range method.Params {
		pt := c.typeFromExpr(p.Type, implBounds)
		if pt == nil {
			return nil
		}
		params[i] = pt.Apply(subst)
	}
	ret := c.typeFromExpr(method.ReturnType, implBounds)
	if ret == nil {
		return nil
	}

	c.MethodTargets[expr] = MethodTarget{Kind: kind, TraitName: traitName, Method: expr.Method.Value}
	return c.checkArgsAgainst(params, ret.Apply(subst), expr.Args, expr.Method.Token)
}

// substForImplTarget maps an impl block's type parameters to the
// receiver's concrete arguments by matching the impl target's argument
// positions: `impl<T> Box<T>` with receiver Box<int> maps T -> int.
func (c *Checker) substForImplTarget(imp *traits.Impl, recv typesystem.TNamed) typesystem.Subst {
	subst := typesystem.Subst{}
	target := imp.Decl.Target
	if target == nil {
		return subst
	}
	for i, arg := range target.Args {
		if i >= len(recv.Args) {
			break
		}
		if nt, ok := arg.(*ast.NamedType); ok && len(nt.Args) == 0 {
			subst[nt.Name.Value] = recv.Args[i]
		}
	}
	return subst
}

func implTypeParamBounds(imp *traits.Impl) map[string][]string {
	return boundsOf(imp.Decl.TypeParams)
}

// inferContainerMethodCall types the built-in Vec<T> and Map<V>
// methods. Their specializations lower onto the fixed runtime symbols.
func (c *Checker) inferContainerMethodCall(expr *ast.MethodCallExpression, recv typesystem.TNamed) typesystem.Type {
	if len(recv.Args) != 1 {
		c.sink.Errorf(diagnostics.ErrT005, expr.Method.Token.Span,
			"%s expects 1 type argument", recv.Name)
		return nil
	}
	elem := recv.Args[0]

	var params []typesystem.Type
	var ret typesystem.Type

	switch {
	case recv.Name == config.VecTypeName && expr.Method.Value == "push":
		params, ret = []typesystem.Type{elem}, typesystem.Void
	case recv.Name == config.VecTypeName && expr.Method.Value == "get":
		params, ret = []typesystem.Type{typesystem.Int}, typesystem.MakeNullable(elem)
	case recv.Name == config.VecTypeName && expr.Method.Value == "len":
		params, ret = nil, typesystem.Int
	case recv.Name == config.MapTypeName && expr.Method.Value == "insert":
		params, ret = []typesystem.Type{typesystem.String, elem}, typesystem.Void
	case recv.Name == config.MapTypeName && expr.Method.Value == "get":
		params, ret = []typesystem.Type{typesystem.String}, typesystem.MakeNullable(elem)
	default:
		c.sink.Errorf(diagnostics.ErrT002, expr.Method.Token.Span,
			"%s has no method %q", recv, expr.Method.Value)
		return nil
	}

	c.MethodTargets[expr] = MethodTarget{Kind: MethodBuiltin, Method: expr.Method.Value}
	return c.checkArgsAgainst(params, ret, expr.Args, expr.Method.Token)
}

func (c *Checker) inferStructLiteral(expr *ast.StructLiteral, expected typesystem.Type) typesystem.Type {
	sym, ok := c.res.SymbolOf(expr.Name)
	if !ok {
		return nil
	}
	if sym.Kind != symbols.StructSymbol {
		return nil
	}
	decl := sym.Decl.(*ast.StructDeclaration)

	var args []typesystem.Type
	switch {
	case len(expr.TypeArgs) > 0:
		if len(expr.TypeArgs) != len(sym.TypeParams) {
			c.sink.Errorf(diagnostics.ErrT005, expr.Name.Token.Span,
				"struct %q expects %d type argument(s), got %d",
				sym.Name, len(sym.TypeParams), len(expr.TypeArgs))
			return nil
		}
		for i, ta := range expr.TypeArgs {
			t := c.typeFromExpr(ta, c.fn.bounds)
			if t == nil {
				return nil
			}
			args = append(args, t)
			c.checkBounds(sym, sym.TypeParams[i], t, ta.GetToken().Span, c.fn.bounds)
		}
	case len(sym.TypeParams) == 0:
	case expectedMatchesDecl(expected, sym):
		args = expected.(typesystem.TNamed).Args
	default:
		c.sink.Errorf(diagnostics.ErrT005, expr.Name.Token.Span,
			"struct %q requires %d explicit type argument(s)", sym.Name, len(sym.TypeParams))
		return nil
	}

	subst := typesystem.Subst{}
	for i, tp := range sym.TypeParams {
		subst[tp] = args[i]
	}

	seen := make(map[string]bool)
	for _, init := range expr.Fields {
		if seen[init.Name.Value] {
			c.sink.Errorf(diagnostics.ErrT001, init.Name.Token.Span,
				"field %q initialized twice", init.Name.Value)
			continue
		}
		seen[init.Name.Value] = true

		fieldDef := structField(decl, init.Name.Value)
		if fieldDef == nil {
			c.sink.Errorf(diagnostics.ErrT004, init.Name.Token.Span,
				"struct %q has no field %q", sym.Name, init.Name.Value)
			c.inferExpr(init.Value, nil)
			continue
		}
		want := c.typeFromExprIn(fieldDef.Type, sym)
		if want == nil {
			continue
		}
		want = want.Apply(subst)
		got := c.inferExpr(init.Value, want)
		if got == nil || !typesystem.IsConcrete(want) {
			continue
		}
		if !typesystem.Assignable(got, want) {
			c.sink.Errorf(diagnostics.ErrT001, init.Value.GetToken().Span,
				"field %q: cannot use %s as %s", init.Name.Value, got, want)
		}
	}

	for _, f := range decl.Fields {
		if !seen[f.Name.Value] {
			c.sink.Errorf(diagnostics.ErrT003, expr.Name.Token.Span,
				"missing field %q in literal of struct %q", f.Name.Value, sym.Name)
		}
	}

	return typesystem.TNamed{Name: sym.Name, Args: args}
}

func structField(decl *ast.StructDeclaration, name string) *ast.FieldDef {
	for _, f := range decl.Fields {
		if f.Name.Value == name {
			return f
		}
	}
	return nil
}

// typeFromExprIn converts a field type in the declaring struct's
// generic context, so unqualified parameter names become TParams even
// when the literal appears in another function.
func (c *Checker) typeFromExprIn(te ast.TypeExpr, declSym *symbols.Symbol) typesystem.Type {
	if nt, ok := te.(*ast.NamedType); ok && len(nt.Args) == 0 {
		for _, tp := range declSym.TypeParams {
			if nt.Name.Value == tp {
				return typesystem.TParam{Name: tp}
			}
		}
	}
	return c.typeFromExpr(te, c.fn.bounds)
}
