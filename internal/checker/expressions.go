package checker

import (
	"github.com/Microindole/lency/internal/ast"
	"github.com/Microindole/lency/internal/config"
	"github.com/Microindole/lency/internal/diagnostics"
	"github.com/Microindole/lency/internal/symbols"
	"github.com/Microindole/lency/internal/typesystem"
)

// inferExpr assigns a type to an expression. expected is a contextual
// hint consulted only where the language needs it (variant constructors
// of generic enums, generic struct literals written without type
// arguments, empty array literals); it never causes coercion.
// Returns nil after reporting an error; callers guard.
func (c *Checker) inferExpr(e ast.Expression, expected typesystem.Type) typesystem.Type {
	t := c.inferExprInner(e, expected)
	if t != nil {
		c.TypeMap[e] = t
	}
	return t
}

func (c *Checker) inferExprInner(e ast.Expression, expected typesystem.Type) typesystem.Type {
	switch expr := e.(type) {
	case *ast.IntegerLiteral:
		return typesystem.Int
	case *ast.FloatLiteral:
		return typesystem.Float
	case *ast.StringLiteral:
		return typesystem.String
	case *ast.BooleanLiteral:
		return typesystem.Bool
	case *ast.NullLiteral:
		return typesystem.NullLiteral

	case *ast.ThisExpression:
		if c.fn.thisType == nil {
			c.sink.Errorf(diagnostics.ErrT001, expr.Token.Span,
				"`this` is only valid inside impl methods")
			return nil
		}
		return c.fn.thisType

	case *ast.Identifier:
		return c.inferIdentifier(expr, expected)

	case *ast.PrefixExpression:
		return c.inferPrefix(expr)

	case *ast.InfixExpression:
		return c.inferInfix(expr)

	case *ast.FieldAccessExpression:
		return c.inferFieldAccess(expr)

	case *ast.SafeNavExpression:
		return c.inferSafeNav(expr)

	case *ast.ElvisExpression:
		return c.inferElvis(expr)

	case *ast.TryExpression:
		return c.inferTry(expr)

	case *ast.CallExpression:
		return c.inferCall(expr, expected)

	case *ast.MethodCallExpression:
		return c.inferMethodCall(expr)

	case *ast.IndexExpression:
		return c.inferIndex(expr)

	case *ast.StructLiteral:
		return c.inferStructLiteral(expr, expected)

	case *ast.PathExpression:
		return c.inferPath(expr, nil, expected)

	case *ast.ArrayLiteral:
		return c.inferArrayLiteral(expr, expected)

	case *ast.MatchExpression:
		return c.inferMatch(expr)
	}
	return nil
}

func (c *Checker) inferIdentifier(expr *ast.Identifier, expected typesystem.Type) typesystem.Type {
	sym, ok := c.res.SymbolOf(expr)
	if !ok {
		return nil
	}
	switch sym.Kind {
	case symbols.VariableSymbol:
		return c.fn.env.Lookup(sym)
	case symbols.ConstSymbol:
		return sym.Type
	case symbols.FunctionSymbol:
		return sym.Type
	case symbols.EnumVariantSymbol:
		// Bare unit-variant reference, e.g. `None`.
		return c.variantCtorType(sym.Enum, expr.Value, nil, nil, expected, expr)
	default:
		c.sink.Errorf(diagnostics.ErrT001, expr.Token.Span,
			"%s %q cannot be used as a value", sym.Kind, expr.Value)
		return nil
	}
}

func (c *Checker) inferPrefix(expr *ast.PrefixExpression) typesystem.Type {
	rt := c.inferExpr(expr.Right, nil)
	if rt == nil {
		return nil
	}
	switch expr.Operator {
	case "-":
		if !typesystem.IsNumeric(rt) {
			c.sink.Errorf(diagnostics.ErrT001, expr.Token.Span,
				"operator '-' requires a numeric operand, got %s", rt)
			return nil
		}
		return rt
	case "!":
		if !typesystem.Equal(rt, typesystem.Bool) {
			c.sink.Errorf(diagnostics.ErrT001, expr.Token.Span,
				"operator '!' requires bool, got %s", rt)
			return nil
		}
		return typesystem.Bool
	}
	return nil
}

func (c *Checker) inferInfix(expr *ast.InfixExpression) typesystem.Type {
	lt := c.inferExpr(expr.Left, nil)
	rt := c.inferExpr(expr.Right, nil)
	if lt == nil || rt == nil {
		return nil
	}

	switch expr.Operator {
	case "+", "-", "*", "/", "%":
		if expr.Operator == "+" && typesystem.Equal(lt, typesystem.String) && typesystem.Equal(rt, typesystem.String) {
			return typesystem.String
		}
		return c.arithmeticResult(expr, lt, rt)

	case "<", ">", "<=", ">=":
		if c.arithmeticResult(expr, lt, rt) == nil {
			return nil
		}
		return typesystem.Bool

	case "==", "!=":
		// Equality requires the same base type; nullability is
		// compared away through explicit null checks.
		if typesystem.IsUntypedNull(lt) || typesystem.IsUntypedNull(rt) {
			other := lt
			if typesystem.IsUntypedNull(lt) {
				other = rt
			}
			if !typesystem.IsNullable(other) && !typesystem.IsUntypedNull(other) {
				c.sink.Errorf(diagnostics.ErrT001, expr.Token.Span,
					"cannot compare non-nullable %s against null", other)
				return nil
			}
			return typesystem.Bool
		}
		lb, rb := typesystem.StripNullable(lt), typesystem.StripNullable(rt)
		if !typesystem.Equal(lb, rb) {
			c.sink.Errorf(diagnostics.ErrT001, expr.Token.Span,
				"cannot compare %s with %s", lt, rt)
			return nil
		}
		return typesystem.Bool

	case "&&", "||":
		if !typesystem.Equal(lt, typesystem.Bool) || !typesystem.Equal(rt, typesystem.Bool) {
			c.sink.Errorf(diagnostics.ErrT001, expr.Token.Span,
				"operator %q requires bool operands, got %s and %s", expr.Operator, lt, rt)
			return nil
		}
		return typesystem.Bool
	}
	return nil
}

// arithmeticResult enforces the numeric rules: both operands numeric,
// Int widens to Float when the other side is Float.
func (c *Checker) arithmeticResult(expr *ast.InfixExpression, lt, rt typesystem.Type) typesystem.Type {
	if isGenericOperand(lt) || isGenericOperand(rt) {
		// Arithmetic on generic parameters is rejected; no numeric
		// bound exists in the language.
		c.sink.Errorf(diagnostics.ErrT001, expr.Token.Span,
			"operator %q requires numeric operands, got %s and %s", expr.Operator, lt, rt)
		return nil
	}
	if !typesystem.IsNumeric(lt) || !typesystem.IsNumeric(rt) {
		c.sink.Errorf(diagnostics.ErrT001, expr.Token.Span,
			"operator %q requires numeric operands, got %s and %s", expr.Operator, lt, rt)
		return nil
	}
	if typesystem.Equal(lt, typesystem.Float) || typesystem.Equal(rt, typesystem.Float) {
		return typesystem.Float
	}
	return typesystem.Int
}

func isGenericOperand(t typesystem.Type) bool {
	_, ok := t.(typesystem.TParam)
	return ok
}

func (c *Checker) inferFieldAccess(expr *ast.FieldAccessExpression) typesystem.Type {
	rt := c.inferExpr(expr.Receiver, nil)
	if rt == nil {
		return nil
	}
	if typesystem.IsNullable(rt) {
		c.sink.Errorf(diagnostics.ErrT007, expr.Field.Token.Span,
			"cannot access field %q on nullable type %s", expr.Field.Value, rt).
			WithHelp("use '?.' or narrow with `if x != null`")
		return nil
	}
	return c.fieldType(rt, expr.Field)
}

// fieldType resolves a field on a struct type, substituting the
// struct's generic arguments into the field type.
func (c *Checker) fieldType(rt typesystem.Type, field *ast.Identifier) typesystem.Type {
	named, ok := rt.(typesystem.TNamed)
	if !ok {
		c.sink.Errorf(diagnostics.ErrT004, field.Token.Span,
			"type %s has no fields", rt)
		return nil
	}
	sym, ok := c.table.FindType(named.Name)
	if !ok || sym.Kind != symbols.StructSymbol {
		c.sink.Errorf(diagnostics.ErrT004, field.Token.Span,
			"type %s is not a struct", rt)
		return nil
	}
	decl := sym.Decl.(*ast.StructDeclaration)

	subst := typesystem.Subst{}
	for i, tp := range sym.TypeParams {
		if i < len(named.Args) {
			subst[tp] = named.Args[i]
		}
	}

	for _, f := range decl.Fields {
		if f.Name.Value == field.Value {
			ft := c.typeFromExpr(f.Type, c.fn.bounds)
			if ft == nil {
				return nil
			}
			return ft.Apply(subst)
		}
	}
	c.sink.Errorf(diagnostics.ErrT004, field.Token.Span,
		"struct %q has no field %q", named.Name, field.Value)
	return nil
}

func (c *Checker) inferSafeNav(expr *ast.SafeNavExpression) typesystem.Type {
	rt := c.inferExpr(expr.Receiver, nil)
	if rt == nil {
		return nil
	}
	if !typesystem.IsNullable(rt) {
		c.sink.Errorf(diagnostics.ErrT001, expr.Token.Span,
			"'?.' requires a nullable receiver, got %s", rt).
			WithHelp("the receiver is never null; use '.'")
		return nil
	}
	ft := c.fieldType(typesystem.StripNullable(rt), expr.Field)
	if ft == nil {
		return nil
	}
	return typesystem.MakeNullable(ft)
}

func (c *Checker) inferElvis(expr *ast.ElvisExpression) typesystem.Type {
	lt := c.inferExpr(expr.Left, nil)
	if lt == nil {
		return nil
	}
	if !typesystem.IsNullable(lt) {
		c.sink.Errorf(diagnostics.ErrT001, expr.Token.Span,
			"'??' requires a nullable left operand, got %s", lt).
			WithHelp("the left side is never null; the default can never apply")
		return nil
	}
	inner := typesystem.StripNullable(lt)
	rt := c.inferExpr(expr.Right, inner)
	if rt == nil {
		return nil
	}
	if typesystem.IsUntypedNull(lt) {
		return rt
	}
	if !typesystem.Assignable(rt, inner) {
		c.sink.Errorf(diagnostics.ErrT001, expr.Right.GetToken().Span,
			"'??' default of type %s does not match %s", rt, inner)
		return nil
	}
	return inner
}

func (c *Checker) inferTry(expr *ast.TryExpression) typesystem.Type {
	et := c.inferExpr(expr.Expr, nil)
	if et == nil {
		return nil
	}
	if typesystem.IsNullable(et) {
		c.sink.Errorf(diagnostics.ErrT012, expr.Token.Span,
			"'?' does not apply to nullable type %s", et).
			WithHelp("use '?? default' or an `if x != null` guard")
		return nil
	}
	named, ok := et.(typesystem.TNamed)
	if !ok || named.Name != config.ResultTypeName || len(named.Args) != 2 {
		c.sink.Errorf(diagnostics.ErrT012, expr.Token.Span,
			"'?' requires a Result<T, E> operand, got %s", et)
		return nil
	}

	// The early return must fit the enclosing function's signature.
	ret, ok := c.fn.retType.(typesystem.TNamed)
	if !ok || ret.Name != config.ResultTypeName || len(ret.Args) != 2 ||
		!typesystem.Equal(ret.Args[1], named.Args[1]) {
		c.sink.Errorf(diagnostics.ErrT012, expr.Token.Span,
			"'?' propagates %s but the function returns %s", named.Args[1], c.fn.retType).
			WithNote("the enclosing function must return Result<_, %s>", named.Args[1])
	}
	return named.Args[0]
}

func (c *Checker) inferIndex(expr *ast.IndexExpression) typesystem.Type {
	rt := c.inferExpr(expr.Receiver, nil)
	it := c.inferExpr(expr.Index, nil)
	if rt == nil {
		return nil
	}
	if it != nil && !typesystem.Equal(it, typesystem.Int) {
		c.sink.Errorf(diagnostics.ErrT001, expr.Index.GetToken().Span,
			"index must be int, got %s", it)
	}
	arr, ok := rt.(typesystem.TArray)
	if !ok {
		c.sink.Errorf(diagnostics.ErrT001, expr.Token.Span,
			"type %s does not support indexing", rt).
			WithNote("only fixed-size arrays are indexable; Vec uses .get()")
		return nil
	}
	return arr.Elem
}

func (c *Checker) inferArrayLiteral(expr *ast.ArrayLiteral, expected typesystem.Type) typesystem.Type {
	if len(expr.Elements) == 0 {
		if arr, ok := expected.(typesystem.TArray); ok {
			return typesystem.TArray{Elem: arr.Elem, Len: 0}
		}
		c.sink.Errorf(diagnostics.ErrT001, expr.Token.Span,
			"cannot infer the element type of an empty array literal")
		return nil
	}
	var elem typesystem.Type
	for _, el := range expr.Elements {
		et := c.inferExpr(el, nil)
		if et == nil {
			return nil
		}
		if elem == nil {
			elem = et
			continue
		}
		joined := typesystem.Join(elem, et)
		if joined == nil {
			c.sink.Errorf(diagnostics.ErrT001, el.GetToken().Span,
				"array element of type %s does not match %s", et, elem)
			return nil
		}
		elem = joined
	}
	return typesystem.TArray{Elem: elem, Len: len(expr.Elements)}
}
