package resolver

import (
	"github.com/Microindole/lency/internal/ast"
	"github.com/Microindole/lency/internal/diagnostics"
	"github.com/Microindole/lency/internal/modules"
	"github.com/Microindole/lency/internal/symbols"
)

// primitives are type names with no symbol behind them.
var primitives = map[string]bool{
	"int":    true,
	"float":  true,
	"bool":   true,
	"string": true,
	"void":   true,
}

// bindModule is pass 2: walk every body and bind identifier uses.
func (r *Resolver) bindModule(m *modules.Module) {
	r.currentModule = m
	moduleScope := r.table.ModuleScope(m.Path)

	for _, decl := range m.Ast.Decls {
		switch d := decl.(type) {
		case *ast.FunctionDeclaration:
			r.bindFunction(d, moduleScope)
		case *ast.StructDeclaration:
			scope := r.openTypeParamScope(moduleScope, d.TypeParams)
			for _, f := range d.Fields {
				r.bindType(scope, f.Type)
			}
		case *ast.EnumDeclaration:
			scope := r.openTypeParamScope(moduleScope, d.TypeParams)
			for _, v := range d.Variants {
				for _, pt := range v.Params {
					r.bindType(scope, pt)
				}
			}
		case *ast.TraitDeclaration:
			scope := r.openTypeParamScope(moduleScope, d.TypeParams)
			for _, sig := range d.Methods {
				r.bindType(scope, sig.ReturnType)
				for _, p := range sig.Params {
					r.bindType(scope, p.Type)
				}
			}
		case *ast.ImplDeclaration:
			scope := r.openTypeParamScope(moduleScope, d.TypeParams)
			r.bindType(scope, d.Target)
			if d.Trait != nil {
				r.bindTraitName(scope, d.Trait)
			}
			for _, method := range d.Methods {
				r.bindFunction(method, scope)
			}
		case *ast.ConstDeclaration:
			if d.Type != nil {
				r.bindType(moduleScope, d.Type)
			}
			r.bindExpression(moduleScope, d.Value)
		}
	}
}

func (r *Resolver) openTypeParamScope(parent *symbols.Scope, params []*ast.TypeParam) *symbols.Scope {
	if len(params) == 0 {
		return parent
	}
	scope := symbols.NewScope(symbols.ScopeFunction, parent)
	for _, tp := range params {
		sym := r.table.NewSymbol(tp.Name, symbols.TypeParamSymbol)
		sym.Span = tp.Token.Span
		for _, b := range tp.Bounds {
			if sym.Bounds == nil {
				sym.Bounds = map[string][]string{}
			}
			sym.Bounds[tp.Name] = append(sym.Bounds[tp.Name], b.Value)
			r.bindTraitName(parent, b)
		}
		if existing, ok := scope.Define(sym); !ok {
			r.sink.Errorf(diagnostics.ErrR002, tp.Token.Span,
				"type parameter %q is already declared", tp.Name).
				WithNote("previous declaration at line %d", existing.Span.Line)
		}
	}
	return scope
}

// bindFunction opens the function scope: generic parameters first, then
// value parameters, then the body blocks as children.
func (r *Resolver) bindFunction(fd *ast.FunctionDeclaration, parent *symbols.Scope) {
	scope := r.openTypeParamScope(parent, fd.TypeParams)
	if scope == parent {
		scope = symbols.NewScope(symbols.ScopeFunction, parent)
	}

	r.bindType(scope, fd.ReturnType)
	for _, p := range fd.Params {
		r.bindType(scope, p.Type)
		sym := r.table.NewSymbol(p.Name.Value, symbols.VariableSymbol)
		sym.Span = p.Name.Token.Span
		sym.Mutable = true
		if existing, ok := scope.Define(sym); !ok {
			r.sink.Errorf(diagnostics.ErrR003, p.Name.Token.Span,
				"parameter %q shadows another parameter in the same scope", p.Name.Value).
				WithNote("previous declaration at line %d", existing.Span.Line)
			continue
		}
		r.Resolution[p.Name] = sym
	}

	if fd.Body != nil {
		r.bindBlock(scope, fd.Body)
	}
}

func (r *Resolver) bindBlock(parent *symbols.Scope, block *ast.BlockStatement) {
	scope := symbols.NewScope(symbols.ScopeBlock, parent)
	for _, stmt := range block.Statements {
		r.bindStatement(scope, stmt)
	}
}

func (r *Resolver) bindStatement(scope *symbols.Scope, stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.VarStatement:
		// The initializer binds before the name is defined, so
		// `var x = x` refers to an outer x (or fails).
		r.bindExpression(scope, s.Value)
		if s.Type != nil {
			r.bindType(scope, s.Type)
		}
		sym := r.table.NewSymbol(s.Name.Value, symbols.VariableSymbol)
		sym.Span = s.Name.Token.Span
		sym.Mutable = true
		if existing, ok := scope.Define(sym); !ok {
			r.sink.Errorf(diagnostics.ErrR003, s.Name.Token.Span,
				"%q is already declared in this scope", s.Name.Value).
				WithNote("previous declaration at line %d", existing.Span.Line).
				WithHelp("shadowing is only allowed in a nested scope")
			return
		}
		r.Resolution[s.Name] = sym

	case *ast.AssignStatement:
		r.bindExpression(scope, s.Target)
		r.bindExpression(scope, s.Value)

	case *ast.ReturnStatement:
		if s.Value != nil {
			r.bindExpression(scope, s.Value)
		}

	case *ast.IfStatement:
		r.bindExpression(scope, s.Cond)
		r.bindBlock(scope, s.Then)
		if s.Else != nil {
			r.bindStatement(scope, s.Else)
		}

	case *ast.WhileStatement:
		r.bindExpression(scope, s.Cond)
		r.bindBlock(scope, s.Body)

	case *ast.ForStatement:
		r.bindExpression(scope, s.Iterable)
		bodyScope := symbols.NewScope(symbols.ScopeBlock, scope)
		sym := r.table.NewSymbol(s.Var.Value, symbols.VariableSymbol)
		sym.Span = s.Var.Token.Span
		bodyScope.Define(sym)
		r.Resolution[s.Var] = sym
		for _, inner := range s.Body.Statements {
			r.bindStatement(bodyScope, inner)
		}

	case *ast.BlockStatement:
		r.bindBlock(scope, s)

	case *ast.ExpressionStatement:
		r.bindExpression(scope, s.Expression)

	case *ast.BreakStatement, *ast.ContinueStatement:
	}
}

func (r *Resolver) bindExpression(scope *symbols.Scope, expr ast.Expression) {
	switch e := expr.(type) {
	case *ast.Identifier:
		sym, ok := scope.Resolve(e.Value)
		if !ok {
			r.sink.Errorf(diagnostics.ErrR001, e.Token.Span, "unresolved name %q", e.Value)
			return
		}
		r.Resolution[e] = sym
		r.uses[sym] = true

	case *ast.PrefixExpression:
		r.bindExpression(scope, e.Right)
	case *ast.InfixExpression:
		r.bindExpression(scope, e.Left)
		r.bindExpression(scope, e.Right)
	case *ast.ElvisExpression:
		r.bindExpression(scope, e.Left)
		r.bindExpression(scope, e.Right)
	case *ast.TryExpression:
		r.bindExpression(scope, e.Expr)
	case *ast.IndexExpression:
		r.bindExpression(scope, e.Receiver)
		r.bindExpression(scope, e.Index)
	case *ast.FieldAccessExpression:
		r.bindExpression(scope, e.Receiver)
	case *ast.SafeNavExpression:
		r.bindExpression(scope, e.Receiver)

	case *ast.MethodCallExpression:
		// The method name resolves in the checker once the receiver
		// type is known.
		r.bindExpression(scope, e.Receiver)
		for _, ta := range e.TypeArgs {
			r.bindType(scope, ta)
		}
		for _, a := range e.Args {
			r.bindExpression(scope, a)
		}

	case *ast.CallExpression:
		r.bindExpression(scope, e.Callee)
		for _, ta := range e.TypeArgs {
			r.bindType(scope, ta)
		}
		for _, a := range e.Args {
			r.bindExpression(scope, a)
		}

	case *ast.StructLiteral:
		sym, ok := scope.Resolve(e.Name.Value)
		if !ok {
			r.sink.Errorf(diagnostics.ErrR001, e.Name.Token.Span, "unresolved name %q", e.Name.Value)
		} else if sym.Kind != symbols.StructSymbol {
			r.sink.Errorf(diagnostics.ErrR004, e.Name.Token.Span, "%q is a %s, not a struct", e.Name.Value, sym.Kind)
		} else {
			r.Resolution[e.Name] = sym
			r.uses[sym] = true
		}
		for _, ta := range e.TypeArgs {
			r.bindType(scope, ta)
		}
		for _, f := range e.Fields {
			r.bindExpression(scope, f.Value)
		}

	case *ast.PathExpression:
		r.bindPath(scope, e)

	case *ast.MatchExpression:
		r.bindExpression(scope, e.Scrutinee)
		for _, arm := range e.Arms {
			armScope := symbols.NewScope(symbols.ScopeBlock, scope)
			r.bindPattern(armScope, arm.Pattern)
			r.bindExpression(armScope, arm.Body)
		}

	case *ast.ArrayLiteral:
		for _, el := range e.Elements {
			r.bindExpression(scope, el)
		}

	case *ast.IntegerLiteral, *ast.FloatLiteral, *ast.StringLiteral,
		*ast.BooleanLiteral, *ast.NullLiteral, *ast.ThisExpression:
	}
}

// bindPath resolves `Enum::Variant` here; the checker only validates
// payload arity and types.
func (r *Resolver) bindPath(scope *symbols.Scope, e *ast.PathExpression) {
	sym, ok := scope.Resolve(e.Enum.Value)
	if !ok {
		r.sink.Errorf(diagnostics.ErrR001, e.Enum.Token.Span, "unresolved name %q", e.Enum.Value)
		return
	}
	if sym.Kind != symbols.EnumSymbol {
		r.sink.Errorf(diagnostics.ErrR004, e.Enum.Token.Span, "%q is a %s, not an enum", e.Enum.Value, sym.Kind)
		return
	}
	r.Resolution[e.Enum] = sym
	r.uses[sym] = true

	decl := sym.Decl.(*ast.EnumDeclaration)
	if decl.Variant(e.Name.Value) == nil {
		r.sink.Errorf(diagnostics.ErrR001, e.Name.Token.Span,
			"enum %q has no variant %q", e.Enum.Value, e.Name.Value)
		return
	}
	r.Resolution[e] = sym
}

// bindPattern defines binding patterns as variables in the arm scope.
// A bare identifier that later turns out to name a unit variant of the
// scrutinee enum is reinterpreted by the checker; the unused variable
// is harmless.
func (r *Resolver) bindPattern(scope *symbols.Scope, pat ast.Pattern) {
	switch p := pat.(type) {
	case *ast.IdentifierPattern:
		sym := r.table.NewSymbol(p.Name.Value, symbols.VariableSymbol)
		sym.Span = p.Name.Token.Span
		if existing, ok := scope.Define(sym); !ok {
			r.sink.Errorf(diagnostics.ErrR003, p.Name.Token.Span,
				"pattern binding %q is already declared in this arm", p.Name.Value).
				WithNote("previous binding at line %d", existing.Span.Line)
			return
		}
		r.Resolution[p.Name] = sym

	case *ast.VariantPattern:
		if p.Enum != nil {
			if sym, ok := scope.Resolve(p.Enum.Value); ok && sym.Kind == symbols.EnumSymbol {
				r.Resolution[p.Enum] = sym
			} else if !ok {
				r.sink.Errorf(diagnostics.ErrR001, p.Enum.Token.Span, "unresolved name %q", p.Enum.Value)
			}
		}
		for _, sub := range p.Elements {
			r.bindPattern(scope, sub)
		}

	case *ast.LiteralPattern, *ast.WildcardPattern:
	}
}

func (r *Resolver) bindType(scope *symbols.Scope, te ast.TypeExpr) {
	switch t := te.(type) {
	case *ast.NamedType:
		if primitives[t.Name.Value] {
			if len(t.Args) > 0 {
				r.sink.Errorf(diagnostics.ErrR004, t.Name.Token.Span,
					"primitive type %q cannot take type arguments", t.Name.Value)
			}
			return
		}
		sym, ok := scope.Resolve(t.Name.Value)
		if !ok {
			r.sink.Errorf(diagnostics.ErrR001, t.Name.Token.Span, "unresolved type name %q", t.Name.Value)
			return
		}
		if !sym.Kind.IsType() {
			r.sink.Errorf(diagnostics.ErrR004, t.Name.Token.Span, "%q is a %s, not a type", t.Name.Value, sym.Kind)
			return
		}
		r.Resolution[t.Name] = sym
		r.uses[sym] = true
		for _, a := range t.Args {
			r.bindType(scope, a)
		}
	case *ast.NullableType:
		r.bindType(scope, t.Inner)
	case *ast.ArrayType:
		r.bindType(scope, t.Elem)
	}
}

func (r *Resolver) bindTraitName(scope *symbols.Scope, name *ast.Identifier) {
	sym, ok := scope.Resolve(name.Value)
	if !ok {
		r.sink.Errorf(diagnostics.ErrR001, name.Token.Span, "unresolved trait %q", name.Value)
		return
	}
	if sym.Kind != symbols.TraitSymbol {
		r.sink.Errorf(diagnostics.ErrR004, name.Token.Span, "%q is a %s, not a trait", name.Value, sym.Kind)
		return
	}
	r.Resolution[name] = sym
	r.uses[sym] = true
}
