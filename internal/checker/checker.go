package checker

import (
	"github.com/Microindole/lency/internal/ast"
	"github.com/Microindole/lency/internal/diagnostics"
	"github.com/Microindole/lency/internal/modules"
	"github.com/Microindole/lency/internal/resolver"
	"github.com/Microindole/lency/internal/symbols"
	"github.com/Microindole/lency/internal/traits"
	"github.com/Microindole/lency/internal/typesystem"
)

// MethodKind classifies how a method call was resolved, for the
// monomorphizer's rewrite stage.
type MethodKind int

const (
	MethodInherent MethodKind = iota
	MethodTraitImpl
	MethodBound   // call on a generic parameter through its trait bound
	MethodBuiltin // Vec/Map runtime container method
)

// MethodTarget records the resolution of one method call site.
type MethodTarget struct {
	Kind      MethodKind
	TraitName string // for MethodTraitImpl and MethodBound
	Method    string
}

// Checker assigns a type to every expression and enforces the typing
// rules: assignability, generic bounds, nullability, trait method
// resolution, and flow-sensitive null refinement.
type Checker struct {
	table  *symbols.Table
	res    *resolver.Resolver
	traits *traits.Table
	sink   *diagnostics.Sink

	// TypeMap is the expression-type side table handed to the
	// monomorphizer and backend.
	TypeMap map[ast.Expression]typesystem.Type

	// MethodTargets records method-call resolution for the rewrite
	// stage.
	MethodTargets map[*ast.MethodCallExpression]MethodTarget

	fn *fnCtx
}

// fnCtx is the per-function checking context.
type fnCtx struct {
	retType    typesystem.Type
	thisType   typesystem.Type     // receiver type inside impl methods, nil elsewhere
	bounds     map[string][]string // generic param -> trait bounds in scope
	env        *Env
	loopDepth  int
}

func New(table *symbols.Table, res *resolver.Resolver, tr *traits.Table, sink *diagnostics.Sink) *Checker {
	return &Checker{
		table:         table,
		res:           res,
		traits:        tr,
		sink:          sink,
		TypeMap:       make(map[ast.Expression]typesystem.Type),
		MethodTargets: make(map[*ast.MethodCallExpression]MethodTarget),
	}
}

// Check walks every loaded module: function signatures first, then
// constants, then bodies. Recovery is per statement; the checker
// reports as much as it can.
func (c *Checker) Check(mods []*modules.Module) {
	// Signatures first so calls across declaration order type-check.
	for _, m := range mods {
		if m.Ast == nil {
			continue
		}
		for _, decl := range m.Ast.Decls {
			if d, ok := decl.(*ast.FunctionDeclaration); ok {
				c.declareFunctionType(d)
			}
		}
	}

	// Constants next: bodies may reference them in any order.
	for _, m := range mods {
		if m.Ast == nil {
			continue
		}
		for _, decl := range m.Ast.Decls {
			if d, ok := decl.(*ast.ConstDeclaration); ok {
				c.checkConstDeclaration(d)
			}
		}
	}

	for _, m := range mods {
		if m.Ast == nil {
			continue
		}
		for _, decl := range m.Ast.Decls {
			switch d := decl.(type) {
			case *ast.FunctionDeclaration:
				c.checkFunction(d, nil)
			case *ast.ImplDeclaration:
				c.checkImpl(d)
			case *ast.StructDeclaration:
				c.checkStructDeclaration(d)
			case *ast.EnumDeclaration:
				c.checkEnumDeclaration(d)
			}
		}
	}
}

// declareFunctionType computes and stores the TFunc signature on the
// function's symbol.
func (c *Checker) declareFunctionType(fd *ast.FunctionDeclaration) {
	sym, ok := c.res.SymbolOf(fd.Name)
	if !ok {
		return
	}
	bounds := boundsOf(fd.TypeParams)
	ret := c.typeFromExpr(fd.ReturnType, bounds)
	if ret == nil {
		// An invalid annotation already produced a diagnostic; keep a
		// well-formed signature so later uses do not cascade.
		ret = typesystem.Void
	}
	sig := typesystem.TFunc{Return: ret}
	for _, p := range fd.Params {
		pt := c.typeFromExpr(p.Type, bounds)
		if pt == nil {
			pt = typesystem.Void
		}
		sig.Params = append(sig.Params, pt)
	}
	sym.Type = sig
}

func (c *Checker) checkConstDeclaration(cd *ast.ConstDeclaration) {
	sym, ok := c.res.SymbolOf(cd.Name)
	if !ok {
		return
	}
	c.fn = &fnCtx{env: NewEnv(nil), bounds: map[string][]string{}}
	valType := c.inferExpr(cd.Value, nil)
	c.fn = nil
	if valType == nil {
		return
	}
	if cd.Type != nil {
		declared := c.typeFromExpr(cd.Type, nil)
		if declared == nil {
			return
		}
		if !typesystem.Assignable(valType, declared) {
			c.sink.Errorf(diagnostics.ErrT001, cd.Value.GetToken().Span,
				"cannot initialize constant of type %s with a value of type %s", declared, valType)
			return
		}
		sym.Type = declared
		return
	}
	if typesystem.IsUntypedNull(valType) {
		c.sink.Errorf(diagnostics.ErrT001, cd.Value.GetToken().Span,
			"cannot infer the type of a null constant").
			WithHelp("annotate the constant type, e.g. `const string? %s = null`", cd.Name.Value)
		return
	}
	sym.Type = valType
}

func (c *Checker) checkStructDeclaration(sd *ast.StructDeclaration) {
	bounds := boundsOf(sd.TypeParams)
	seen := make(map[string]bool)
	for _, f := range sd.Fields {
		if seen[f.Name.Value] {
			c.sink.Errorf(diagnostics.ErrR002, f.Name.Token.Span,
				"field %q is already declared in struct %q", f.Name.Value, sd.Name.Value)
			continue
		}
		seen[f.Name.Value] = true
		c.typeFromExpr(f.Type, bounds)
	}
}

func (c *Checker) checkEnumDeclaration(ed *ast.EnumDeclaration) {
	bounds := boundsOf(ed.TypeParams)
	for _, v := range ed.Variants {
		for _, pt := range v.Params {
			c.typeFromExpr(pt, bounds)
		}
	}
}

// checkImpl checks every method body with `this` bound to the target
// type. For generic impls the target's parameters stay generic; the
// monomorphizer substitutes them later.
func (c *Checker) checkImpl(id *ast.ImplDeclaration) {
	bounds := boundsOf(id.TypeParams)
	target := c.typeFromExpr(id.Target, bounds)
	if target == nil {
		return
	}
	for _, m := range id.Methods {
		c.checkFunction(m, &implCtx{target: target, bounds: bounds})
	}
}

type implCtx struct {
	target typesystem.Type
	bounds map[string][]string
}

// checkFunction checks one function body.
func (c *Checker) checkFunction(fd *ast.FunctionDeclaration, impl *implCtx) {
	bounds := boundsOf(fd.TypeParams)
	var thisType typesystem.Type
	if impl != nil {
		thisType = impl.target
		for k, v := range impl.bounds {
			bounds[k] = v
		}
	}

	retType := c.typeFromExpr(fd.ReturnType, bounds)
	if retType == nil {
		retType = typesystem.Void
	}

	c.fn = &fnCtx{
		retType:  retType,
		thisType: thisType,
		bounds:   bounds,
		env:      NewEnv(nil),
	}
	defer func() { c.fn = nil }()

	for _, p := range fd.Params {
		pt := c.typeFromExpr(p.Type, bounds)
		if pt == nil {
			continue
		}
		if sym, ok := c.res.SymbolOf(p.Name); ok {
			sym.Type = pt
		}
	}

	if fd.Body == nil {
		return
	}
	diverges := c.checkBlock(fd.Body)

	// A non-void function must return on every path.
	if !diverges && !typesystem.Equal(retType, typesystem.Void) {
		c.sink.Errorf(diagnostics.ErrT001, fd.Name.Token.Span,
			"function %q does not return a value on every path", fd.Name.Value)
	}
}

// boundsOf collects the trait bounds of a type parameter list.
func boundsOf(params []*ast.TypeParam) map[string][]string {
	out := make(map[string][]string)
	for _, tp := range params {
		var names []string
		for _, b := range tp.Bounds {
			names = append(names, b.Value)
		}
		out[tp.Name] = names
	}
	return out
}
