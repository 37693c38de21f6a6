package checker

import (
	"github.com/Microindole/lency/internal/ast"
	"github.com/Microindole/lency/internal/diagnostics"
	"github.com/Microindole/lency/internal/symbols"
	"github.com/Microindole/lency/internal/typesystem"
)

// checkBlock checks every statement and reports whether the block
// diverges (return/break/continue on all paths). Statements after a
// diverging one are still checked for their own errors.
func (c *Checker) checkBlock(block *ast.BlockStatement) bool {
	diverges := false
	for _, stmt := range block.Statements {
		if c.checkStatement(stmt) {
			diverges = true
		}
	}
	return diverges
}

// checkStatement returns true when the statement diverges.
func (c *Checker) checkStatement(stmt ast.Statement) bool {
	switch s := stmt.(type) {
	case *ast.VarStatement:
		c.checkVarStatement(s)
		return false

	case *ast.AssignStatement:
		c.checkAssignStatement(s)
		return false

	case *ast.ReturnStatement:
		c.checkReturnStatement(s)
		return true

	case *ast.BreakStatement, *ast.ContinueStatement:
		if c.fn.loopDepth == 0 {
			c.sink.Errorf(diagnostics.ErrT001, s.GetToken().Span,
				"%q outside of a loop", s.TokenLiteral())
		}
		return true

	case *ast.IfStatement:
		return c.checkIfStatement(s)

	case *ast.WhileStatement:
		c.checkWhileStatement(s)
		return false

	case *ast.ForStatement:
		c.checkForStatement(s)
		return false

	case *ast.BlockStatement:
		saved := c.fn.env
		c.fn.env = NewEnv(saved)
		diverges := c.checkBlock(s)
		c.fn.env = saved
		return diverges

	case *ast.ExpressionStatement:
		c.inferExpr(s.Expression, nil)
		return false
	}
	return false
}

func (c *Checker) checkVarStatement(s *ast.VarStatement) {
	var declared typesystem.Type
	if s.Type != nil {
		declared = c.typeFromExpr(s.Type, c.fn.bounds)
	}

	valType := c.inferExpr(s.Value, declared)
	sym, ok := c.res.SymbolOf(s.Name)
	if !ok {
		return
	}

	if declared != nil {
		if valType != nil && !typesystem.Assignable(valType, declared) {
			c.sink.Errorf(diagnostics.ErrT001, s.Value.GetToken().Span,
				"cannot initialize %s %q with a value of type %s", declared, s.Name.Value, valType)
		}
		sym.Type = declared
		return
	}

	if valType == nil {
		return
	}
	if typesystem.IsUntypedNull(valType) {
		c.sink.Errorf(diagnostics.ErrT001, s.Value.GetToken().Span,
			"cannot infer the type of %q from a bare null", s.Name.Value).
			WithHelp("annotate the declaration, e.g. `string? %s = null`", s.Name.Value)
		return
	}
	if typesystem.Equal(valType, typesystem.Void) {
		c.sink.Errorf(diagnostics.ErrT001, s.Value.GetToken().Span,
			"cannot declare %q with a void value", s.Name.Value)
		return
	}
	sym.Type = valType
}

func (c *Checker) checkAssignStatement(s *ast.AssignStatement) {
	targetType := c.inferExpr(s.Target, nil)
	valType := c.inferExpr(s.Value, targetType)

	// Only variables, fields, and indexed elements are assignable.
	switch target := s.Target.(type) {
	case *ast.Identifier:
		sym, ok := c.res.SymbolOf(target)
		if !ok {
			return
		}
		if sym.Kind == symbols.ConstSymbol {
			c.sink.Errorf(diagnostics.ErrT009, target.Token.Span,
				"cannot assign to constant %q", target.Value)
			return
		}
		if sym.Kind != symbols.VariableSymbol {
			c.sink.Errorf(diagnostics.ErrT009, target.Token.Span,
				"cannot assign to %s %q", sym.Kind, target.Value)
			return
		}
		// Assignment resets any null refinement; the declared type is
		// what future reads see.
		c.fn.env.Invalidate(sym)
		targetType = sym.Type
	case *ast.FieldAccessExpression, *ast.IndexExpression:
	default:
		c.sink.Errorf(diagnostics.ErrT001, s.Target.GetToken().Span,
			"left-hand side of assignment is not assignable")
		return
	}

	if targetType == nil || valType == nil {
		return
	}
	if !typesystem.Assignable(valType, targetType) {
		c.sink.Errorf(diagnostics.ErrT001, s.Value.GetToken().Span,
			"cannot assign a value of type %s to %s", valType, targetType)
	}
}

func (c *Checker) checkReturnStatement(s *ast.ReturnStatement) {
	ret := c.fn.retType
	if s.Value == nil {
		if !typesystem.Equal(ret, typesystem.Void) {
			c.sink.Errorf(diagnostics.ErrT001, s.Token.Span,
				"missing return value: function returns %s", ret)
		}
		return
	}
	valType := c.inferExpr(s.Value, ret)
	if valType == nil {
		return
	}
	if typesystem.Equal(ret, typesystem.Void) {
		c.sink.Errorf(diagnostics.ErrT001, s.Value.GetToken().Span,
			"void function cannot return a value")
		return
	}
	if !typesystem.Assignable(valType, ret) && !c.genericAssignable(valType, ret) {
		c.sink.Errorf(diagnostics.ErrT001, s.Value.GetToken().Span,
			"cannot return %s from a function returning %s", valType, ret)
	}
}

// genericAssignable accepts returns whose types still mention generic
// parameters; their concrete check happens per instantiation.
func (c *Checker) genericAssignable(from, to typesystem.Type) bool {
	return !typesystem.IsConcrete(from) || !typesystem.IsConcrete(to)
}

func (c *Checker) checkIfStatement(s *ast.IfStatement) bool {
	condType := c.inferExpr(s.Cond, nil)
	if condType != nil && !typesystem.Equal(condType, typesystem.Bool) {
		c.sink.Errorf(diagnostics.ErrT001, s.Cond.GetToken().Span,
			"if condition must be bool, got %s", condType)
	}

	ref := c.analyzeCond(s.Cond)
	base := c.fn.env

	thenEnv := NewEnv(base)
	for sym, t := range ref.whenTrue {
		thenEnv.Refine(sym, t)
	}
	c.fn.env = thenEnv
	thenDiverges := c.checkBlock(s.Then)

	elseEnv := NewEnv(base)
	for sym, t := range ref.whenFalse {
		elseEnv.Refine(sym, t)
	}
	elseDiverges := false
	if s.Else != nil {
		c.fn.env = elseEnv
		elseDiverges = c.checkStatement(s.Else)
	}
	c.fn.env = base

	c.mergeBranches(base, thenEnv, elseEnv, thenDiverges, elseDiverges)
	return thenDiverges && s.Else != nil && elseDiverges
}

func (c *Checker) checkWhileStatement(s *ast.WhileStatement) {
	condType := c.inferExpr(s.Cond, nil)
	if condType != nil && !typesystem.Equal(condType, typesystem.Bool) {
		c.sink.Errorf(diagnostics.ErrT001, s.Cond.GetToken().Span,
			"while condition must be bool, got %s", condType)
	}

	ref := c.analyzeCond(s.Cond)
	base := c.fn.env
	bodyEnv := NewEnv(base)
	for sym, t := range ref.whenTrue {
		bodyEnv.Refine(sym, t)
	}
	c.fn.env = bodyEnv
	c.fn.loopDepth++
	c.checkBlock(s.Body)
	c.fn.loopDepth--
	c.fn.env = base
}

func (c *Checker) checkForStatement(s *ast.ForStatement) {
	iterType := c.inferExpr(s.Iterable, nil)
	var elemType typesystem.Type
	if iterType != nil {
		switch it := iterType.(type) {
		case typesystem.TArray:
			elemType = it.Elem
		case typesystem.TNamed:
			if it.Name == "Vec" && len(it.Args) == 1 {
				elemType = it.Args[0]
			}
		}
		if elemType == nil {
			c.sink.Errorf(diagnostics.ErrT001, s.Iterable.GetToken().Span,
				"cannot iterate over %s", iterType).
				WithNote("for loops iterate arrays and Vec<T>")
		}
	}

	if sym, ok := c.res.SymbolOf(s.Var); ok && elemType != nil {
		sym.Type = elemType
	}

	base := c.fn.env
	c.fn.env = NewEnv(base)
	c.fn.loopDepth++
	c.checkBlock(s.Body)
	c.fn.loopDepth--
	c.fn.env = base
}
