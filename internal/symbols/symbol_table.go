package symbols

import (
	"sort"

	"github.com/Microindole/lency/internal/ast"
	"github.com/Microindole/lency/internal/token"
	"github.com/Microindole/lency/internal/typesystem"
)

type SymbolKind int

const (
	VariableSymbol SymbolKind = iota
	FunctionSymbol
	StructSymbol
	EnumSymbol
	EnumVariantSymbol
	TraitSymbol
	TypeParamSymbol
	ConstSymbol
)

func (k SymbolKind) String() string {
	switch k {
	case VariableSymbol:
		return "variable"
	case FunctionSymbol:
		return "function"
	case StructSymbol:
		return "struct"
	case EnumSymbol:
		return "enum"
	case EnumVariantSymbol:
		return "enum variant"
	case TraitSymbol:
		return "trait"
	case TypeParamSymbol:
		return "type parameter"
	case ConstSymbol:
		return "constant"
	}
	return "symbol"
}

// IsType reports whether the symbol names a type.
func (k SymbolKind) IsType() bool {
	switch k {
	case StructSymbol, EnumSymbol, TraitSymbol, TypeParamSymbol:
		return true
	}
	return false
}

type ScopeKind int

const (
	ScopeUniverse ScopeKind = iota // built-in functions, types, library enums
	ScopeModule                    // one source module's top level
	ScopeFunction
	ScopeBlock
)

// Symbol is one named declaration. Cross-references out of the AST are
// stored as *Symbol in driver-owned side tables, never inside AST nodes.
type Symbol struct {
	ID      int
	Name    string
	Kind    SymbolKind
	Type    typesystem.Type // value type; TFunc for functions; nil for type symbols
	Mutable bool
	Builtin bool
	Pub     bool
	Span    token.Span
	Decl    ast.Node // defining declaration; nil for builtin functions, synthesized for builtin types
	Module  string   // dotted module path, "" for root/universe

	// Generic declarations record their parameters and bounds.
	TypeParams []string
	Bounds     map[string][]string // param name -> trait names

	// EnumVariantSymbol back-reference to its enum.
	Enum *Symbol
}

// Scope maps names to symbols. Insertion order is preserved for
// diagnostic stability.
type Scope struct {
	Kind   ScopeKind
	Parent *Scope

	names []string
	table map[string]*Symbol
}

func NewScope(kind ScopeKind, parent *Scope) *Scope {
	return &Scope{Kind: kind, Parent: parent, table: make(map[string]*Symbol)}
}

// Define inserts sym. Returns the previously defined symbol of the same
// name in this scope (and false) when the name is already taken.
func (s *Scope) Define(sym *Symbol) (*Symbol, bool) {
	if existing, ok := s.table[sym.Name]; ok {
		return existing, false
	}
	s.table[sym.Name] = sym
	s.names = append(s.names, sym.Name)
	return sym, true
}

// Resolve walks scopes outward until the name is found.
func (s *Scope) Resolve(name string) (*Symbol, bool) {
	for scope := s; scope != nil; scope = scope.Parent {
		if sym, ok := scope.table[name]; ok {
			return sym, true
		}
	}
	return nil, false
}

// ResolveLocal looks the name up in this scope only.
func (s *Scope) ResolveLocal(name string) (*Symbol, bool) {
	sym, ok := s.table[name]
	return sym, ok
}

// Symbols returns this scope's symbols in insertion order.
func (s *Scope) Symbols() []*Symbol {
	out := make([]*Symbol, 0, len(s.names))
	for _, n := range s.names {
		out = append(out, s.table[n])
	}
	return out
}

// Table owns the universe scope and one module scope per loaded module.
type Table struct {
	Universe *Scope
	modules  map[string]*Scope // keyed by dotted module path, "" = root
	nextID   int
}

func NewTable() *Table {
	return &Table{
		Universe: NewScope(ScopeUniverse, nil),
		modules:  make(map[string]*Scope),
	}
}

// NewSymbol allocates a symbol with a fresh ID.
func (t *Table) NewSymbol(name string, kind SymbolKind) *Symbol {
	t.nextID++
	return &Symbol{ID: t.nextID, Name: name, Kind: kind}
}

// ModuleScope returns (creating on first use) the scope for a module
// path. Module scopes chain to the universe.
func (t *Table) ModuleScope(path string) *Scope {
	if sc, ok := t.modules[path]; ok {
		return sc
	}
	sc := NewScope(ScopeModule, t.Universe)
	t.modules[path] = sc
	return sc
}

// ModulePaths returns the known module paths (unsorted).
func (t *Table) ModulePaths() []string {
	out := make([]string, 0, len(t.modules))
	for p := range t.modules {
		out = append(out, p)
	}
	return out
}

// FindType locates a struct or enum symbol by name, scanning the
// universe first and then every module scope in sorted path order.
// Type names are effectively program-unique because pub symbols merge
// flat at import time.
func (t *Table) FindType(name string) (*Symbol, bool) {
	if sym, ok := t.Universe.ResolveLocal(name); ok && sym.Kind.IsType() {
		return sym, true
	}
	paths := t.ModulePaths()
	sort.Strings(paths)
	for _, p := range paths {
		if sym, ok := t.modules[p].ResolveLocal(name); ok && sym.Kind.IsType() {
			return sym, true
		}
	}
	return nil, false
}

// LookupQualified resolves a symbol through another module's scope,
// honoring visibility: only pub symbols are reachable across modules.
func (t *Table) LookupQualified(modulePath, name string) (*Symbol, bool) {
	sc, ok := t.modules[modulePath]
	if !ok {
		return nil, false
	}
	sym, ok := sc.ResolveLocal(name)
	if !ok || !sym.Pub {
		return nil, false
	}
	return sym, true
}
