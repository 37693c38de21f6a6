package mono

import (
	"github.com/Microindole/lency/internal/ast"
	"github.com/Microindole/lency/internal/symbols"
	"github.com/Microindole/lency/internal/typesystem"
)

// rewriteTypeExpr substitutes generic parameters in an annotation and
// renders the result with mangled names for instantiated generics.
func (m *Mono) rewriteTypeExpr(te ast.TypeExpr, subst typesystem.Subst) ast.TypeExpr {
	if te == nil {
		return nil
	}
	return m.typeToExpr(m.typeOf(te).Apply(subst))
}

// specializeFunction clones a function declaration under a
// substitution, rewriting its body.
func (m *Mono) specializeFunction(fd *ast.FunctionDeclaration, name string, subst typesystem.Subst) *ast.FunctionDeclaration {
	out := &ast.FunctionDeclaration{
		Token:      fd.Token,
		Pub:        fd.Pub,
		ReturnType: m.rewriteTypeExpr(fd.ReturnType, subst),
		Name:       &ast.Identifier{Token: fd.Name.Token, Value: name},
	}
	for _, p := range fd.Params {
		out.Params = append(out.Params, &ast.Param{
			Token: p.Token,
			Type:  m.rewriteTypeExpr(p.Type, subst),
			Name:  &ast.Identifier{Token: p.Name.Token, Value: p.Name.Value},
		})
	}
	if fd.Body != nil {
		out.Body = m.rewriteBlock(fd.Body, subst)
	}
	return out
}

func (m *Mono) specializeExtern(fd *ast.FunctionDeclaration) *ast.FunctionDeclaration {
	out := m.specializeFunction(fd, fd.Name.Value, typesystem.Subst{})
	out.Extern = true
	out.Body = nil
	return out
}

func (m *Mono) specializeStruct(sd *ast.StructDeclaration, name string, subst typesystem.Subst) *ast.StructDeclaration {
	out := &ast.StructDeclaration{
		Token: sd.Token,
		Pub:   sd.Pub,
		Name:  &ast.Identifier{Token: sd.Name.Token, Value: name},
	}
	for _, f := range sd.Fields {
		out.Fields = append(out.Fields, &ast.FieldDef{
			Token: f.Token,
			Type:  m.rewriteTypeExpr(f.Type, subst),
			Name:  &ast.Identifier{Token: f.Name.Token, Value: f.Name.Value},
		})
	}
	return out
}

func (m *Mono) specializeEnum(ed *ast.EnumDeclaration, name string, subst typesystem.Subst) *ast.EnumDeclaration {
	out := &ast.EnumDeclaration{
		Token: ed.Token,
		Pub:   ed.Pub,
		Name:  &ast.Identifier{Token: ed.Name.Token, Value: name},
	}
	for _, v := range ed.Variants {
		nv := &ast.VariantDef{
			Token: v.Token,
			Name:  &ast.Identifier{Token: v.Name.Token, Value: v.Name.Value},
			Tag:   v.Tag,
		}
		for _, pt := range v.Params {
			nv.Params = append(nv.Params, m.rewriteTypeExpr(pt, subst))
		}
		out.Variants = append(out.Variants, nv)
	}
	return out
}

func (m *Mono) specializeConst(cd *ast.ConstDeclaration) *ast.ConstDeclaration {
	out := &ast.ConstDeclaration{
		Token: cd.Token,
		Pub:   cd.Pub,
		Name:  &ast.Identifier{Token: cd.Name.Token, Value: cd.Name.Value},
		Value: m.rewriteExpr(cd.Value, typesystem.Subst{}),
	}
	if cd.Type != nil {
		out.Type = m.rewriteTypeExpr(cd.Type, typesystem.Subst{})
	}
	return out
}

// exprType returns the checked type of an expression with the current
// substitution applied.
func (m *Mono) exprType(e ast.Expression, subst typesystem.Subst) typesystem.Type {
	t, ok := m.chk.TypeMap[e]
	if !ok {
		return nil
	}
	return t.Apply(subst)
}

func (m *Mono) rewriteBlock(b *ast.BlockStatement, subst typesystem.Subst) *ast.BlockStatement {
	out := &ast.BlockStatement{Token: b.Token}
	for _, s := range b.Statements {
		if ns := m.rewriteStmt(s, subst); ns != nil {
			out.Statements = append(out.Statements, ns)
		}
	}
	return out
}

func (m *Mono) rewriteStmt(s ast.Statement, subst typesystem.Subst) ast.Statement {
	switch st := s.(type) {
	case *ast.VarStatement:
		out := &ast.VarStatement{
			Token: st.Token,
			Name:  &ast.Identifier{Token: st.Name.Token, Value: st.Name.Value},
			Value: m.rewriteExpr(st.Value, subst),
		}
		if st.Type != nil {
			out.Type = m.rewriteTypeExpr(st.Type, subst)
		}
		return out

	case *ast.AssignStatement:
		return &ast.AssignStatement{
			Token:  st.Token,
			Target: m.rewriteExpr(st.Target, subst),
			Value:  m.rewriteExpr(st.Value, subst),
		}

	case *ast.ReturnStatement:
		out := &ast.ReturnStatement{Token: st.Token}
		if st.Value != nil {
			out.Value = m.rewriteExpr(st.Value, subst)
		}
		return out

	case *ast.BreakStatement:
		return &ast.BreakStatement{Token: st.Token}
	case *ast.ContinueStatement:
		return &ast.ContinueStatement{Token: st.Token}

	case *ast.IfStatement:
		out := &ast.IfStatement{
			Token: st.Token,
			Cond:  m.rewriteExpr(st.Cond, subst),
			Then:  m.rewriteBlock(st.Then, subst),
		}
		if st.Else != nil {
			out.Else = m.rewriteStmt(st.Else, subst)
		}
		return out

	case *ast.WhileStatement:
		return &ast.WhileStatement{
			Token: st.Token,
			Cond:  m.rewriteExpr(st.Cond, subst),
			Body:  m.rewriteBlock(st.Body, subst),
		}

	case *ast.ForStatement:
		return &ast.ForStatement{
			Token:    st.Token,
			Var:      &ast.Identifier{Token: st.Var.Token, Value: st.Var.Value},
			Iterable: m.rewriteExpr(st.Iterable, subst),
			Body:     m.rewriteBlock(st.Body, subst),
		}

	case *ast.BlockStatement:
		return m.rewriteBlock(st, subst)

	case *ast.ExpressionStatement:
		return &ast.ExpressionStatement{
			Token:      st.Token,
			Expression: m.rewriteExpr(st.Expression, subst),
		}
	}
	return s
}

func (m *Mono) rewriteExpr(e ast.Expression, subst typesystem.Subst) ast.Expression {
	switch ex := e.(type) {
	case *ast.Identifier:
		if sym, ok := m.res.SymbolOf(ex); ok && sym.Kind == symbols.EnumVariantSymbol {
			// A bare library-enum variant becomes a qualified path on
			// the specialized enum.
			if t, ok := m.exprType(e, subst).(typesystem.TNamed); ok {
				return &ast.PathExpression{
					Token: ex.Token,
					Enum:  &ast.Identifier{Value: m.instantiateNamed(t)},
					Name:  &ast.Identifier{Token: ex.Token, Value: ex.Value},
				}
			}
		}
		return &ast.Identifier{Token: ex.Token, Value: ex.Value}

	case *ast.IntegerLiteral:
		return &ast.IntegerLiteral{Token: ex.Token, Value: ex.Value}
	case *ast.FloatLiteral:
		return &ast.FloatLiteral{Token: ex.Token, Value: ex.Value}
	case *ast.StringLiteral:
		return &ast.StringLiteral{Token: ex.Token, Value: ex.Value}
	case *ast.BooleanLiteral:
		return &ast.BooleanLiteral{Token: ex.Token, Value: ex.Value}
	case *ast.NullLiteral:
		return &ast.NullLiteral{Token: ex.Token}

	case *ast.ThisExpression:
		// Impl methods were lowered to functions with an explicit
		// `this` parameter.
		return &ast.Identifier{Token: ex.Token, Value: "this"}

	case *ast.PrefixExpression:
		return &ast.PrefixExpression{
			Token:    ex.Token,
			Operator: ex.Operator,
			Right:    m.rewriteExpr(ex.Right, subst),
		}

	case *ast.InfixExpression:
		return &ast.InfixExpression{
			Token:    ex.Token,
			Left:     m.rewriteExpr(ex.Left, subst),
			Operator: ex.Operator,
			Right:    m.rewriteExpr(ex.Right, subst),
		}

	case *ast.FieldAccessExpression:
		return &ast.FieldAccessExpression{
			Token:    ex.Token,
			Receiver: m.rewriteExpr(ex.Receiver, subst),
			Field:    &ast.Identifier{Token: ex.Field.Token, Value: ex.Field.Value},
		}

	case *ast.SafeNavExpression:
		return &ast.SafeNavExpression{
			Token:    ex.Token,
			Receiver: m.rewriteExpr(ex.Receiver, subst),
			Field:    &ast.Identifier{Token: ex.Field.Token, Value: ex.Field.Value},
		}

	case *ast.ElvisExpression:
		return &ast.ElvisExpression{
			Token: ex.Token,
			Left:  m.rewriteExpr(ex.Left, subst),
			Right: m.rewriteExpr(ex.Right, subst),
		}

	case *ast.TryExpression:
		return &ast.TryExpression{Token: ex.Token, Expr: m.rewriteExpr(ex.Expr, subst)}

	case *ast.IndexExpression:
		return &ast.IndexExpression{
			Token:    ex.Token,
			Receiver: m.rewriteExpr(ex.Receiver, subst),
			Index:    m.rewriteExpr(ex.Index, subst),
		}

	case *ast.ArrayLiteral:
		out := &ast.ArrayLiteral{Token: ex.Token}
		for _, el := range ex.Elements {
			out.Elements = append(out.Elements, m.rewriteExpr(el, subst))
		}
		return out

	case *ast.CallExpression:
		return m.rewriteCall(ex, subst)

	case *ast.MethodCallExpression:
		return m.rewriteMethodCall(ex, subst)

	case *ast.StructLiteral:
		return m.rewriteStructLiteral(ex, subst)

	case *ast.PathExpression:
		return m.rewritePath(ex, subst)

	case *ast.MatchExpression:
		return m.rewriteMatch(ex, subst)
	}
	return e
}

// rewriteCall binds generic calls to their mangled specializations and
// variant constructions to specialized enums.
func (m *Mono) rewriteCall(ex *ast.CallExpression, subst typesystem.Subst) ast.Expression {
	out := &ast.CallExpression{Token: ex.Token}
	for _, a := range ex.Args {
		out.Args = append(out.Args, m.rewriteExpr(a, subst))
	}

	switch callee := ex.Callee.(type) {
	case *ast.Identifier:
		sym, ok := m.res.SymbolOf(callee)
		if ok && sym.Kind == symbols.FunctionSymbol && len(sym.TypeParams) > 0 {
			args := make([]typesystem.Type, len(ex.TypeArgs))
			for i, ta := range ex.TypeArgs {
				args[i] = m.typeOf(ta).Apply(subst)
			}
			out.Callee = &ast.Identifier{Token: callee.Token, Value: m.instantiateFunction(sym, args)}
			return out
		}
		if ok && sym.Kind == symbols.EnumVariantSymbol {
			if t, isNamed := m.exprType(ex, subst).(typesystem.TNamed); isNamed {
				out.Callee = &ast.PathExpression{
					Token: callee.Token,
					Enum:  &ast.Identifier{Value: m.instantiateNamed(t)},
					Name:  &ast.Identifier{Token: callee.Token, Value: callee.Value},
				}
				return out
			}
		}
		out.Callee = &ast.Identifier{Token: callee.Token, Value: callee.Value}
		return out

	case *ast.PathExpression:
		if t, isNamed := m.exprType(ex, subst).(typesystem.TNamed); isNamed {
			out.Callee = &ast.PathExpression{
				Token: callee.Token,
				Enum:  &ast.Identifier{Value: m.instantiateNamed(t)},
				Name:  &ast.Identifier{Token: callee.Name.Token, Value: callee.Name.Value},
			}
			return out
		}
		out.Callee = m.rewriteExpr(callee, subst)
		return out

	default:
		out.Callee = m.rewriteExpr(ex.Callee, subst)
		return out
	}
}

// rewriteMethodCall binds the call to the concrete impl method and
// passes the receiver as the first argument.
func (m *Mono) rewriteMethodCall(ex *ast.MethodCallExpression, subst typesystem.Subst) ast.Expression {
	recvType := m.exprType(ex.Receiver, subst)
	recvName := m.concreteTypeName(recvType)

	fnName := MangleMethod(recvName, ex.Method.Value)
	out := &ast.CallExpression{
		Token:  ex.Token,
		Callee: &ast.Identifier{Token: ex.Method.Token, Value: fnName},
	}
	out.Args = append(out.Args, m.rewriteExpr(ex.Receiver, subst))
	for _, a := range ex.Args {
		out.Args = append(out.Args, m.rewriteExpr(a, subst))
	}
	return out
}

// concreteTypeName mangles a receiver type, instantiating generic
// named types on the way.
func (m *Mono) concreteTypeName(t typesystem.Type) string {
	if named, ok := t.(typesystem.TNamed); ok {
		return m.instantiateNamed(named)
	}
	if t == nil {
		return "unknown"
	}
	return MangleType(t)
}

func (m *Mono) rewriteStructLiteral(ex *ast.StructLiteral, subst typesystem.Subst) ast.Expression {
	name := ex.Name.Value
	if t, ok := m.exprType(ex, subst).(typesystem.TNamed); ok {
		name = m.instantiateNamed(t)
	}
	out := &ast.StructLiteral{
		Token: ex.Token,
		Name:  &ast.Identifier{Token: ex.Name.Token, Value: name},
	}
	for _, f := range ex.Fields {
		out.Fields = append(out.Fields, &ast.FieldInit{
			Token: f.Token,
			Name:  &ast.Identifier{Token: f.Name.Token, Value: f.Name.Value},
			Value: m.rewriteExpr(f.Value, subst),
		})
	}
	return out
}

func (m *Mono) rewritePath(ex *ast.PathExpression, subst typesystem.Subst) ast.Expression {
	enumName := ex.Enum.Value
	if t, ok := m.exprType(ex, subst).(typesystem.TNamed); ok {
		enumName = m.instantiateNamed(t)
	}
	return &ast.PathExpression{
		Token: ex.Token,
		Enum:  &ast.Identifier{Token: ex.Enum.Token, Value: enumName},
		Name:  &ast.Identifier{Token: ex.Name.Token, Value: ex.Name.Value},
	}
}

func (m *Mono) rewriteMatch(ex *ast.MatchExpression, subst typesystem.Subst) ast.Expression {
	scrutType := m.exprType(ex.Scrutinee, subst)
	out := &ast.MatchExpression{
		Token:     ex.Token,
		Scrutinee: m.rewriteExpr(ex.Scrutinee, subst),
	}
	for _, arm := range ex.Arms {
		out.Arms = append(out.Arms, &ast.MatchArm{
			Token:   arm.Token,
			Pattern: m.rewritePattern(arm.Pattern, scrutType),
			Body:    m.rewriteExpr(arm.Body, subst),
		})
	}
	return out
}

// rewritePattern renames enum qualifiers in variant patterns to the
// specialized enum name.
func (m *Mono) rewritePattern(pat ast.Pattern, scrutType typesystem.Type) ast.Pattern {
	vp, ok := pat.(*ast.VariantPattern)
	if !ok {
		return pat
	}
	out := &ast.VariantPattern{
		Token: vp.Token,
		Name:  &ast.Identifier{Token: vp.Name.Token, Value: vp.Name.Value},
	}
	var base typesystem.Type
	if scrutType != nil {
		base = typesystem.StripNullable(scrutType)
	}
	if named, isNamed := base.(typesystem.TNamed); isNamed {
		out.Enum = &ast.Identifier{Value: m.instantiateNamed(named)}
	} else if vp.Enum != nil {
		out.Enum = &ast.Identifier{Token: vp.Enum.Token, Value: vp.Enum.Value}
	}
	for _, sub := range vp.Elements {
		// Payload sub-patterns are bindings or literals; nested
		// variant payloads are rare enough to pass through unchanged.
		out.Elements = append(out.Elements, sub)
	}
	return out
}
