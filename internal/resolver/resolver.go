package resolver

import (
	"github.com/Microindole/lency/internal/ast"
	"github.com/Microindole/lency/internal/diagnostics"
	"github.com/Microindole/lency/internal/modules"
	"github.com/Microindole/lency/internal/symbols"
)

// Resolver performs two passes over the loaded modules.
//
// Pass 1 (collect) inserts every top-level declaration into its module
// scope without looking at bodies, so forward references and mutual
// recursion need no ordering.
//
// Pass 2 (bind) walks bodies and binds every identifier use to exactly
// one symbol, recorded in the Resolution side table. Method names and
// struct fields are left to the type checker, which knows receiver
// types.
type Resolver struct {
	table *symbols.Table
	sink  *diagnostics.Sink

	// Resolution maps identifier uses (and type references) to their
	// symbols. AST nodes never point at symbols directly.
	Resolution map[ast.Node]*symbols.Symbol

	// uses records symbols referenced from bodies and annotations,
	// excluding declaration sites. Feeds the unused-import warning.
	uses map[*symbols.Symbol]bool

	// currentModule is the module whose bodies pass 2 is binding.
	currentModule *modules.Module
}

func New(table *symbols.Table, sink *diagnostics.Sink) *Resolver {
	PopulateUniverse(table)
	return &Resolver{
		table:      table,
		sink:       sink,
		Resolution: make(map[ast.Node]*symbols.Symbol),
		uses:       make(map[*symbols.Symbol]bool),
	}
}

// Resolve runs both passes over every module, dependencies first.
func (r *Resolver) Resolve(mods []*modules.Module) {
	for _, m := range mods {
		if m.Ast != nil {
			r.collectModule(m)
		}
	}
	for _, m := range mods {
		if m.Ast != nil {
			r.mergeImports(m)
		}
	}
	for _, m := range mods {
		if m.Ast != nil {
			r.bindModule(m)
		}
	}
	for _, m := range mods {
		if m.Ast != nil {
			r.warnUnusedImports(m)
		}
	}
}

// warnUnusedImports reports imports none of whose pub symbols were
// referenced anywhere in the program.
func (r *Resolver) warnUnusedImports(m *modules.Module) {
	for _, imp := range m.Ast.Imports {
		var dep *modules.Module
		for _, d := range m.Deps {
			if d.Path == imp.DottedPath() {
				dep = d
				break
			}
		}
		if dep == nil {
			continue
		}
		depScope := r.table.ModuleScope(dep.Path)
		hasPub, anyUsed := false, false
		for _, sym := range depScope.Symbols() {
			if !sym.Pub {
				continue
			}
			hasPub = true
			if r.uses[sym] {
				anyUsed = true
				break
			}
		}
		if hasPub && !anyUsed {
			r.sink.Warnf(diagnostics.WarnM101, imp.GetToken().Span,
				"imported module %q is unused", imp.DottedPath())
		}
	}
}

// SymbolOf returns the symbol an identifier use was bound to.
func (r *Resolver) SymbolOf(n ast.Node) (*symbols.Symbol, bool) {
	sym, ok := r.Resolution[n]
	return sym, ok
}

// mergeImports makes the pub top-level symbols of every imported module
// visible in the importing module's scope. Name collisions are
// duplicate-declaration errors at the import site.
func (r *Resolver) mergeImports(m *modules.Module) {
	scope := r.table.ModuleScope(m.Path)
	for _, imp := range m.Ast.Imports {
		var dep *modules.Module
		for _, d := range m.Deps {
			if d.Path == imp.DottedPath() {
				dep = d
				break
			}
		}
		if dep == nil {
			// The loader already reported imports that failed.
			continue
		}
		depScope := r.table.ModuleScope(dep.Path)
		for _, sym := range depScope.Symbols() {
			if !sym.Pub {
				continue
			}
			if existing, ok := scope.Define(sym); !ok && existing != sym {
				r.sink.Errorf(diagnostics.ErrR002, imp.GetToken().Span,
					"import of %q collides with existing declaration %q", sym.Name, existing.Name)
			}
		}
	}
}
