package resolver

import (
	"github.com/Microindole/lency/internal/ast"
	"github.com/Microindole/lency/internal/diagnostics"
	"github.com/Microindole/lency/internal/modules"
	"github.com/Microindole/lency/internal/symbols"
)

// collectModule is pass 1: insert every top-level declaration into the
// module scope. Bodies are not inspected. Generic parameters are
// recorded on the symbol but not opened as a scope yet.
func (r *Resolver) collectModule(m *modules.Module) {
	scope := r.table.ModuleScope(m.Path)

	for _, decl := range m.Ast.Decls {
		switch d := decl.(type) {
		case *ast.FunctionDeclaration:
			r.declare(scope, m, d.Name, symbols.FunctionSymbol, d, d.Pub, typeParamInfo(d.TypeParams))
		case *ast.StructDeclaration:
			r.declare(scope, m, d.Name, symbols.StructSymbol, d, d.Pub, typeParamInfo(d.TypeParams))
		case *ast.EnumDeclaration:
			enumSym := r.declare(scope, m, d.Name, symbols.EnumSymbol, d, d.Pub, typeParamInfo(d.TypeParams))
			if enumSym != nil {
				r.checkVariantDuplicates(d)
			}
		case *ast.TraitDeclaration:
			r.declare(scope, m, d.Name, symbols.TraitSymbol, d, d.Pub, typeParamInfo(d.TypeParams))
		case *ast.ConstDeclaration:
			r.declare(scope, m, d.Name, symbols.ConstSymbol, d, d.Pub, nil)
		case *ast.ImplDeclaration:
			// Impl blocks declare no name; their methods are reached
			// through the trait table and receiver types.
		}
	}
}

type tpInfo struct {
	names  []string
	bounds map[string][]string
}

func typeParamInfo(params []*ast.TypeParam) *tpInfo {
	if len(params) == 0 {
		return nil
	}
	info := &tpInfo{bounds: make(map[string][]string)}
	for _, tp := range params {
		info.names = append(info.names, tp.Name)
		for _, b := range tp.Bounds {
			info.bounds[tp.Name] = append(info.bounds[tp.Name], b.Value)
		}
	}
	return info
}

func (r *Resolver) declare(scope *symbols.Scope, m *modules.Module, name *ast.Identifier, kind symbols.SymbolKind, decl ast.Declaration, pub bool, tps *tpInfo) *symbols.Symbol {
	sym := r.table.NewSymbol(name.Value, kind)
	sym.Decl = decl
	sym.Pub = pub
	sym.Span = name.Token.Span
	sym.Module = m.Path
	if tps != nil {
		sym.TypeParams = tps.names
		sym.Bounds = tps.bounds
	}

	if existing, ok := scope.Define(sym); !ok {
		r.sink.Errorf(diagnostics.ErrR002, name.Token.Span,
			"%s %q is already declared", kind, name.Value).
			WithNote("previous declaration at %s:%d:%d", existing.Span.File, existing.Span.Line, existing.Span.Column)
		return nil
	}
	r.Resolution[name] = sym
	return sym
}

func (r *Resolver) checkVariantDuplicates(d *ast.EnumDeclaration) {
	seen := make(map[string]*ast.VariantDef)
	for _, v := range d.Variants {
		if prev, ok := seen[v.Name.Value]; ok {
			r.sink.Errorf(diagnostics.ErrR002, v.Name.Token.Span,
				"variant %q is already declared in enum %q", v.Name.Value, d.Name.Value).
				WithNote("previous variant at %s:%d:%d", prev.Name.Token.Span.File, prev.Name.Token.Span.Line, prev.Name.Token.Span.Column)
			continue
		}
		seen[v.Name.Value] = v
	}
}
