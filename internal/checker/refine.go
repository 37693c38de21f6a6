package checker

import (
	"github.com/Microindole/lency/internal/ast"
	"github.com/Microindole/lency/internal/symbols"
	"github.com/Microindole/lency/internal/typesystem"
)

// Env is the per-path refinement environment: a functional overlay of
// narrowed variable types on top of the declared types stored on
// symbols. Branching copies the overlay; joins merge per variable.
type Env struct {
	parent  *Env
	refined map[*symbols.Symbol]typesystem.Type
}

func NewEnv(parent *Env) *Env {
	return &Env{parent: parent, refined: make(map[*symbols.Symbol]typesystem.Type)}
}

// Lookup returns the refined type of sym, or its declared type.
func (e *Env) Lookup(sym *symbols.Symbol) typesystem.Type {
	for env := e; env != nil; env = env.parent {
		if t, ok := env.refined[sym]; ok {
			return t
		}
	}
	return sym.Type
}

// Refine narrows sym in this layer.
func (e *Env) Refine(sym *symbols.Symbol, t typesystem.Type) {
	e.refined[sym] = t
}

// Invalidate drops any refinement of sym (used after assignment).
func (e *Env) Invalidate(sym *symbols.Symbol) {
	e.refined[sym] = sym.Type
}

// refinement is the outcome of analyzing a condition: the narrowings
// that hold when it is true and when it is false.
type refinement struct {
	whenTrue  map[*symbols.Symbol]typesystem.Type
	whenFalse map[*symbols.Symbol]typesystem.Type
}

func newRefinement() refinement {
	return refinement{
		whenTrue:  make(map[*symbols.Symbol]typesystem.Type),
		whenFalse: make(map[*symbols.Symbol]typesystem.Type),
	}
}

// analyzeCond extracts null-guard refinements from a condition:
//
//	x != null   narrows x to T in the true branch
//	x == null   narrows x to T in the false branch
//	a && b      composes refinements along the short-circuit path
//	a || b      refines the false branch with both negations
//	!a          swaps the branches
func (c *Checker) analyzeCond(cond ast.Expression) refinement {
	r := newRefinement()

	switch e := cond.(type) {
	case *ast.InfixExpression:
		switch e.Operator {
		case "!=", "==":
			sym, nonNull := c.nullGuard(e)
			if sym == nil {
				return r
			}
			if e.Operator == "!=" {
				r.whenTrue[sym] = nonNull
			} else {
				r.whenFalse[sym] = nonNull
			}
			return r

		case "&&":
			left := c.analyzeCond(e.Left)
			right := c.analyzeCond(e.Right)
			// Both conjuncts hold on the true path.
			for s, t := range left.whenTrue {
				r.whenTrue[s] = t
			}
			for s, t := range right.whenTrue {
				r.whenTrue[s] = t
			}
			// On the false path nothing is certain.
			return r

		case "||":
			left := c.analyzeCond(e.Left)
			right := c.analyzeCond(e.Right)
			// Both disjuncts failed on the false path.
			for s, t := range left.whenFalse {
				r.whenFalse[s] = t
			}
			for s, t := range right.whenFalse {
				r.whenFalse[s] = t
			}
			return r
		}

	case *ast.PrefixExpression:
		if e.Operator == "!" {
			inner := c.analyzeCond(e.Right)
			return refinement{whenTrue: inner.whenFalse, whenFalse: inner.whenTrue}
		}
	}
	return r
}

// nullGuard recognizes `x != null` / `x == null` / `null != x` over a
// nullable variable and returns the variable symbol plus its narrowed
// non-null type.
func (c *Checker) nullGuard(e *ast.InfixExpression) (*symbols.Symbol, typesystem.Type) {
	var ident *ast.Identifier
	if _, ok := e.Right.(*ast.NullLiteral); ok {
		ident, _ = e.Left.(*ast.Identifier)
	} else if _, ok := e.Left.(*ast.NullLiteral); ok {
		ident, _ = e.Right.(*ast.Identifier)
	}
	if ident == nil {
		return nil, nil
	}
	sym, ok := c.res.SymbolOf(ident)
	if !ok || (sym.Kind != symbols.VariableSymbol && sym.Kind != symbols.ConstSymbol) {
		return nil, nil
	}
	cur := c.fn.env.Lookup(sym)
	if cur == nil || !typesystem.IsNullable(cur) {
		return nil, nil
	}
	return sym, typesystem.StripNullable(cur)
}

// mergeBranches merges refinements after an if. A branch that diverged
// contributes no obligation: the other branch's narrowings survive.
// Otherwise a variable keeps a narrowing only when both branches agree.
func (c *Checker) mergeBranches(base *Env, thenEnv, elseEnv *Env, thenDiverges, elseDiverges bool) {
	switch {
	case thenDiverges && elseDiverges:
		// Unreachable afterwards; nothing to merge.
	case thenDiverges:
		for sym, t := range elseEnv.refined {
			base.Refine(sym, t)
		}
	case elseDiverges:
		for sym, t := range thenEnv.refined {
			base.Refine(sym, t)
		}
	default:
		for sym, tThen := range thenEnv.refined {
			tElse, ok := elseEnv.refined[sym]
			if !ok {
				continue
			}
			if joined := typesystem.Join(tThen, tElse); joined != nil {
				base.Refine(sym, joined)
			}
		}
	}
}
