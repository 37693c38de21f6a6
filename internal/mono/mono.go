package mono

import (
	"github.com/Microindole/lency/internal/ast"
	"github.com/Microindole/lency/internal/checker"
	"github.com/Microindole/lency/internal/config"
	"github.com/Microindole/lency/internal/diagnostics"
	"github.com/Microindole/lency/internal/modules"
	"github.com/Microindole/lency/internal/resolver"
	"github.com/Microindole/lency/internal/symbols"
	"github.com/Microindole/lency/internal/traits"
	"github.com/Microindole/lency/internal/typesystem"
)

// Program is the monomorphizer's output: a single concrete declaration
// list with no generic declarations, no GenericParam types, and every
// call bound to a named function. The backend receives this plus the
// symbol table.
type Program struct {
	Decls []ast.Declaration
}

// Mono performs whole-program specialization in three stages: collect
// concrete instantiations starting from the entry points, specialize
// each (GenericDecl, [ConcreteTypeArg]) tuple under its substitution,
// and rewrite every reference to a generic declaration into its
// mangled specialization.
type Mono struct {
	table *symbols.Table
	res   *resolver.Resolver
	tr    *traits.Table
	chk   *checker.Checker
	sink  *diagnostics.Sink

	decls   []ast.Declaration
	emitted map[string]bool
	queue   []workItem
}

type workItem struct {
	sym     *symbols.Symbol
	args    []typesystem.Type
	mangled string
}

func New(table *symbols.Table, res *resolver.Resolver, tr *traits.Table, chk *checker.Checker, sink *diagnostics.Sink) *Mono {
	return &Mono{
		table:   table,
		res:     res,
		tr:      tr,
		chk:     chk,
		sink:    sink,
		emitted: make(map[string]bool),
	}
}

// Run monomorphizes the checked program. Concrete declarations pass
// through with their bodies rewritten; generic declarations are
// dropped and re-emerge as specializations on demand.
func (m *Mono) Run(mods []*modules.Module) *Program {
	for _, mod := range mods {
		if mod.Ast == nil {
			continue
		}
		for _, decl := range mod.Ast.Decls {
			m.collectTopLevel(decl)
		}
	}

	// Drain instantiation work: each specialization may enqueue more.
	for len(m.queue) > 0 {
		item := m.queue[0]
		m.queue = m.queue[1:]
		m.specializeItem(item)
	}

	prog := &Program{Decls: m.decls}
	m.verify(prog)
	return prog
}

func (m *Mono) collectTopLevel(decl ast.Declaration) {
	switch d := decl.(type) {
	case *ast.FunctionDeclaration:
		if d.IsGeneric() {
			return // instantiated on demand, dropped otherwise
		}
		if d.Extern {
			m.emit(m.specializeExtern(d))
			return
		}
		m.emit(m.specializeFunction(d, d.Name.Value, typesystem.Subst{}))

	case *ast.StructDeclaration:
		if d.IsGeneric() {
			return
		}
		m.emit(m.specializeStruct(d, d.Name.Value, typesystem.Subst{}))

	case *ast.EnumDeclaration:
		if d.IsGeneric() {
			return
		}
		m.emit(m.specializeEnum(d, d.Name.Value, typesystem.Subst{}))

	case *ast.ConstDeclaration:
		m.emit(m.specializeConst(d))

	case *ast.ImplDeclaration:
		if d.IsGeneric() {
			return // specialized alongside its target type
		}
		target := m.typeOf(d.Target)
		m.lowerImplMethods(d, target, typesystem.Subst{})
	}
}

func (m *Mono) emit(decl ast.Declaration) {
	name := declName(decl)
	if name != "" {
		if m.emitted[name] {
			return
		}
		m.emitted[name] = true
	}
	m.decls = append(m.decls, decl)
}

func declName(decl ast.Declaration) string {
	switch d := decl.(type) {
	case *ast.FunctionDeclaration:
		return d.Name.Value
	case *ast.StructDeclaration:
		return d.Name.Value
	case *ast.EnumDeclaration:
		return d.Name.Value
	case *ast.ConstDeclaration:
		return d.Name.Value
	}
	return ""
}

// instantiateNamed records a concrete use of a (possibly generic)
// named type and returns its mangled name. Idempotent per tuple.
func (m *Mono) instantiateNamed(t typesystem.TNamed) string {
	if len(t.Args) == 0 {
		return t.Name
	}
	mangled := Mangle(t.Name, t.Args)
	if m.emitted[mangled] {
		return mangled
	}

	sym, ok := m.table.FindType(t.Name)
	if !ok {
		return mangled
	}
	if sym.Builtin && (t.Name == config.VecTypeName || t.Name == config.MapTypeName) {
		// Runtime containers have no declaration to specialize; the
		// backend lowers their method names onto the runtime ABI.
		m.emitted[mangled] = true
		return mangled
	}

	m.emitted[mangled] = true
	m.queue = append(m.queue, workItem{sym: sym, args: t.Args, mangled: mangled})
	return mangled
}

// instantiateFunction records a concrete generic function use.
func (m *Mono) instantiateFunction(sym *symbols.Symbol, args []typesystem.Type) string {
	mangled := Mangle(sym.Name, args)
	if m.emitted[mangled] {
		return mangled
	}
	m.emitted[mangled] = true
	m.queue = append(m.queue, workItem{sym: sym, args: args, mangled: mangled})
	return mangled
}

// specializeItem produces one specialized declaration (and, for types,
// their impl blocks) for a queued instantiation.
func (m *Mono) specializeItem(item workItem) {
	subst := typesystem.Subst{}
	for i, tp := range item.sym.TypeParams {
		if i < len(item.args) {
			subst[tp] = item.args[i]
		}
	}

	switch d := item.sym.Decl.(type) {
	case *ast.FunctionDeclaration:
		m.append(m.specializeFunction(d, item.mangled, subst))

	case *ast.StructDeclaration:
		m.append(m.specializeStruct(d, item.mangled, subst))
		target := typesystem.TNamed{Name: item.sym.Name, Args: item.args}
		m.specializeImplsFor(item.sym.Name, target)

	case *ast.EnumDeclaration:
		m.append(m.specializeEnum(d, item.mangled, subst))
	}
}

// append emits without the name-dedup check (the queue already
// deduplicated by mangled name).
func (m *Mono) append(decl ast.Declaration) {
	m.decls = append(m.decls, decl)
}

// specializeImplsFor emits the impl methods of a generic target for
// one concrete instantiation.
func (m *Mono) specializeImplsFor(baseName string, target typesystem.TNamed) {
	for _, imp := range m.tr.ImplsFor(baseName) {
		subst := typesystem.Subst{}
		for i, arg := range imp.Decl.Target.Args {
			if nt, ok := arg.(*ast.NamedType); ok && len(nt.Args) == 0 && i < len(target.Args) {
				subst[nt.Name.Value] = target.Args[i]
			}
		}
		m.lowerImplMethods(imp.Decl, target, subst)
	}
}

// lowerImplMethods turns impl-block methods into free functions whose
// first parameter is the receiver: `impl Greet for U { void g() }`
// becomes `void U__g(U this)`.
func (m *Mono) lowerImplMethods(id *ast.ImplDeclaration, target typesystem.Type, subst typesystem.Subst) {
	concrete := target.Apply(subst)
	mangledTarget := m.concreteTypeName(concrete)

	for _, method := range id.Methods {
		name := MangleMethod(mangledTarget, method.Name.Value)
		if m.emitted[name] {
			continue
		}
		m.emitted[name] = true

		fd := &ast.FunctionDeclaration{
			Token:      method.Token,
			ReturnType: m.rewriteTypeExpr(method.ReturnType, subst),
			Name:       &ast.Identifier{Token: method.Name.Token, Value: name},
		}
		fd.Params = append(fd.Params, &ast.Param{
			Type: m.typeToExpr(concrete),
			Name: &ast.Identifier{Value: "this"},
		})
		for _, p := range method.Params {
			fd.Params = append(fd.Params, &ast.Param{
				Token: p.Token,
				Type:  m.rewriteTypeExpr(p.Type, subst),
				Name:  &ast.Identifier{Token: p.Name.Token, Value: p.Name.Value},
			})
		}
		if method.Body != nil {
			fd.Body = m.rewriteBlock(method.Body, subst)
		}
		m.append(fd)
	}
}
