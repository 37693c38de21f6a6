package traits

import (
	"github.com/Microindole/lency/internal/ast"
	"github.com/Microindole/lency/internal/diagnostics"
	"github.com/Microindole/lency/internal/modules"
	"github.com/Microindole/lency/internal/resolver"
)

// Impl is one registered impl block.
type Impl struct {
	Decl   *ast.ImplDeclaration
	Module string
	// TargetName is the base name of the target type ("Box" for
	// `impl<T> Box<T>`).
	TargetName string
	TraitName  string // "" for inherent impls
}

type implKey struct {
	trait      string
	targetName string
}

// Table is the global (TraitName, ConcreteType) -> ImplBlock registry
// plus the inherent method index. Built once after name resolution;
// read by the checker and the monomorphizer.
type Table struct {
	sink *diagnostics.Sink
	res  *resolver.Resolver

	traitImpls map[implKey]*Impl
	inherent   map[string][]*Impl
	traits     map[string]*ast.TraitDeclaration

	// ordered keeps trait impls in registration order so method
	// resolution and diagnostics stay deterministic.
	ordered []*Impl
}

// Build registers every impl block in the loaded modules and verifies
// trait impls against their trait declarations. Duplicate
// (trait, type) registrations are errors.
func Build(mods []*modules.Module, res *resolver.Resolver, sink *diagnostics.Sink) *Table {
	t := &Table{
		sink:       sink,
		res:        res,
		traitImpls: make(map[implKey]*Impl),
		inherent:   make(map[string][]*Impl),
		traits:     make(map[string]*ast.TraitDeclaration),
	}

	for _, m := range mods {
		if m.Ast == nil {
			continue
		}
		for _, decl := range m.Ast.Decls {
			if td, ok := decl.(*ast.TraitDeclaration); ok {
				t.traits[td.Name.Value] = td
			}
		}
	}

	for _, m := range mods {
		if m.Ast == nil {
			continue
		}
		for _, decl := range m.Ast.Decls {
			id, ok := decl.(*ast.ImplDeclaration)
			if !ok {
				continue
			}
			t.register(id, m.Path)
		}
	}
	return t
}

func (t *Table) register(id *ast.ImplDeclaration, modulePath string) {
	if id.Target == nil {
		return
	}
	imp := &Impl{
		Decl:       id,
		Module:     modulePath,
		TargetName: id.Target.Name.Value,
	}

	if id.Trait == nil {
		t.inherent[imp.TargetName] = append(t.inherent[imp.TargetName], imp)
		return
	}

	imp.TraitName = id.Trait.Value
	key := implKey{trait: imp.TraitName, targetName: imp.TargetName}
	if prev, exists := t.traitImpls[key]; exists {
		t.sink.Errorf(diagnostics.ErrR002, id.GetToken().Span,
			"duplicate impl of trait %q for type %q", imp.TraitName, imp.TargetName).
			WithNote("previous impl at %s:%d:%d", prev.Decl.GetToken().Span.File,
				prev.Decl.GetToken().Span.Line, prev.Decl.GetToken().Span.Column)
		return
	}
	t.traitImpls[key] = imp
	t.ordered = append(t.ordered, imp)
	t.verify(imp)
}

// verify checks that every trait method has a matching implementation
// with an identical signature after substituting the impl target for
// the trait's view of the implementing type. Missing methods are
// IncompleteImpl errors; extra methods are warnings.
func (t *Table) verify(imp *Impl) {
	trait, ok := t.traits[imp.TraitName]
	if !ok {
		// The resolver already reported the unresolved trait name.
		return
	}

	for _, sig := range trait.Methods {
		method := imp.Decl.Method(sig.Name.Value)
		if method == nil {
			t.sink.Errorf(diagnostics.ErrT010, imp.Decl.GetToken().Span,
				"incomplete impl of trait %q for %q: missing method %q",
				imp.TraitName, imp.TargetName, sig.Name.Value).
				WithNote("trait method declared at %s:%d:%d", sig.GetToken().Span.File,
					sig.GetToken().Span.Line, sig.GetToken().Span.Column)
			continue
		}
		if !signatureMatches(sig, method, imp) {
			t.sink.Errorf(diagnostics.ErrT010, method.GetToken().Span,
				"method %q does not match the signature declared by trait %q",
				sig.Name.Value, imp.TraitName).
				WithNote("expected %d parameter(s) returning %s",
					len(sig.Params), typeExprString(sig.ReturnType))
		}
	}

	for _, method := range imp.Decl.Methods {
		if trait.Method(method.Name.Value) == nil {
			t.sink.Warnf(diagnostics.WarnT101, method.GetToken().Span,
				"method %q is not declared by trait %q", method.Name.Value, imp.TraitName)
		}
	}
}

// Lookup returns the impl of trait for the named type.
func (t *Table) Lookup(trait, targetName string) (*Impl, bool) {
	imp, ok := t.traitImpls[implKey{trait: trait, targetName: targetName}]
	return imp, ok
}

// Implements reports whether the named type has an impl of trait.
func (t *Table) Implements(targetName, trait string) bool {
	_, ok := t.Lookup(trait, targetName)
	return ok
}

// Trait returns a trait declaration by name.
func (t *Table) Trait(name string) (*ast.TraitDeclaration, bool) {
	td, ok := t.traits[name]
	return td, ok
}

// InherentMethod finds a method in the inherent impl blocks of the
// named type.
func (t *Table) InherentMethod(targetName, method string) (*ast.FunctionDeclaration, *Impl, bool) {
	for _, imp := range t.inherent[targetName] {
		if m := imp.Decl.Method(method); m != nil {
			return m, imp, true
		}
	}
	return nil, nil, false
}

// TraitMethod finds a method among the trait impls of the named type.
func (t *Table) TraitMethod(targetName, method string) (*ast.FunctionDeclaration, *Impl, bool) {
	for _, imp := range t.ordered {
		if imp.TargetName != targetName {
			continue
		}
		if m := imp.Decl.Method(method); m != nil {
			return m, imp, true
		}
	}
	return nil, nil, false
}

// ImplsFor returns every impl (inherent and trait) whose target is the
// named type.
func (t *Table) ImplsFor(targetName string) []*Impl {
	out := append([]*Impl{}, t.inherent[targetName]...)
	for _, imp := range t.ordered {
		if imp.TargetName == targetName {
			out = append(out, imp)
		}
	}
	return out
}

// BoundMethod resolves a method call on a generic parameter with the
// given trait bounds, returning the declaring trait and signature.
func (t *Table) BoundMethod(bounds []string, method string) (string, *ast.FunctionSignature, bool) {
	for _, traitName := range bounds {
		trait, ok := t.traits[traitName]
		if !ok {
			continue
		}
		if sig := trait.Method(method); sig != nil {
			return traitName, sig, true
		}
	}
	return "", nil, false
}

// signatureMatches compares a trait signature with an implementing
// method structurally. The impl target type is accepted wherever the
// trait signature names the implementing type.
func signatureMatches(sig *ast.FunctionSignature, method *ast.FunctionDeclaration, imp *Impl) bool {
	if len(sig.Params) != len(method.Params) {
		return false
	}
	if !typeExprEqual(sig.ReturnType, method.ReturnType, imp.TargetName) {
		return false
	}
	for i := range sig.Params {
		if !typeExprEqual(sig.Params[i].Type, method.Params[i].Type, imp.TargetName) {
			return false
		}
	}
	return true
}

// typeExprEqual compares type expressions structurally. The name
// "Self" on the trait side matches the impl target name.
func typeExprEqual(a, b ast.TypeExpr, targetName string) bool {
	switch at := a.(type) {
	case *ast.NamedType:
		bt, ok := b.(*ast.NamedType)
		if !ok {
			return false
		}
		an, bn := at.Name.Value, bt.Name.Value
		if an == "Self" {
			an = targetName
		}
		if an != bn || len(at.Args) != len(bt.Args) {
			return false
		}
		for i := range at.Args {
			if !typeExprEqual(at.Args[i], bt.Args[i], targetName) {
				return false
			}
		}
		return true
	case *ast.NullableType:
		bt, ok := b.(*ast.NullableType)
		return ok && typeExprEqual(at.Inner, bt.Inner, targetName)
	case *ast.ArrayType:
		bt, ok := b.(*ast.ArrayType)
		return ok && at.Len == bt.Len && typeExprEqual(at.Elem, bt.Elem, targetName)
	}
	return false
}

func typeExprString(te ast.TypeExpr) string {
	switch t := te.(type) {
	case *ast.NamedType:
		out := t.Name.Value
		if len(t.Args) > 0 {
			out += "<...>"
		}
		return out
	case *ast.NullableType:
		return typeExprString(t.Inner) + "?"
	case *ast.ArrayType:
		return "[" + typeExprString(t.Elem) + "]"
	}
	return "?"
}
