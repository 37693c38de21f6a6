package resolver

import (
	"github.com/Microindole/lency/internal/ast"
	"github.com/Microindole/lency/internal/config"
	"github.com/Microindole/lency/internal/symbols"
	"github.com/Microindole/lency/internal/typesystem"
)

// PopulateUniverse installs the built-in functions, the generic runtime
// containers Vec<T> and Map<T>, and the library enums Option<T> and
// Result<T, E> into the universe scope. Idempotent.
func PopulateUniverse(table *symbols.Table) {
	if _, ok := table.Universe.ResolveLocal(config.PrintFuncName); ok {
		return
	}

	defineBuiltinFunc(table, config.PrintFuncName, typesystem.TFunc{
		Params: []typesystem.Type{typesystem.String},
		Return: typesystem.Void,
	})
	defineBuiltinFunc(table, config.LenFuncName, typesystem.TFunc{
		Params: []typesystem.Type{typesystem.String},
		Return: typesystem.Int,
	})
	defineBuiltinFunc(table, config.PanicFuncName, typesystem.TFunc{
		Params: []typesystem.Type{typesystem.String},
		Return: typesystem.Void,
	})
	defineBuiltinFunc(table, config.ReadFileFuncName, typesystem.TFunc{
		Params: []typesystem.Type{typesystem.String},
		Return: typesystem.TNamed{Name: config.ResultTypeName, Args: []typesystem.Type{typesystem.String, typesystem.String}},
	})
	defineBuiltinFunc(table, config.WriteFileFuncName, typesystem.TFunc{
		Params: []typesystem.Type{typesystem.String, typesystem.String},
		Return: typesystem.TNamed{Name: config.ResultTypeName, Args: []typesystem.Type{typesystem.Void, typesystem.String}},
	})

	// Opaque runtime containers. Their methods are special-cased in the
	// checker and lowered onto the runtime symbol table by the backend.
	defineBuiltinStruct(table, config.VecTypeName, []string{"T"})
	defineBuiltinStruct(table, config.MapTypeName, []string{"V"})

	// Library enums. Synthesized declarations let pattern matching,
	// exhaustiveness, and monomorphization treat them like user enums.
	defineBuiltinEnum(table, config.OptionTypeName, []string{"T"}, []builtinVariant{
		{name: "Some", params: []ast.TypeExpr{namedTypeExpr("T")}},
		{name: "None"},
	})
	defineBuiltinEnum(table, config.ResultTypeName, []string{"T", "E"}, []builtinVariant{
		{name: "Ok", params: []ast.TypeExpr{namedTypeExpr("T")}},
		{name: "Err", params: []ast.TypeExpr{namedTypeExpr("E")}},
	})
}

type builtinVariant struct {
	name   string
	params []ast.TypeExpr
}

func namedTypeExpr(name string) ast.TypeExpr {
	return &ast.NamedType{Name: &ast.Identifier{Value: name}}
}

func defineBuiltinFunc(table *symbols.Table, name string, sig typesystem.TFunc) {
	sym := table.NewSymbol(name, symbols.FunctionSymbol)
	sym.Type = sig
	sym.Builtin = true
	sym.Pub = true
	table.Universe.Define(sym)
}

func defineBuiltinStruct(table *symbols.Table, name string, typeParams []string) {
	decl := &ast.StructDeclaration{Name: &ast.Identifier{Value: name}}
	for _, tp := range typeParams {
		decl.TypeParams = append(decl.TypeParams, &ast.TypeParam{Name: tp})
	}
	sym := table.NewSymbol(name, symbols.StructSymbol)
	sym.Builtin = true
	sym.Pub = true
	sym.Decl = decl
	sym.TypeParams = typeParams
	sym.Bounds = map[string][]string{}
	table.Universe.Define(sym)
}

func defineBuiltinEnum(table *symbols.Table, name string, typeParams []string, variants []builtinVariant) {
	decl := &ast.EnumDeclaration{Name: &ast.Identifier{Value: name}}
	for _, tp := range typeParams {
		decl.TypeParams = append(decl.TypeParams, &ast.TypeParam{Name: tp})
	}
	for i, v := range variants {
		decl.Variants = append(decl.Variants, &ast.VariantDef{
			Name:   &ast.Identifier{Value: v.name},
			Params: v.params,
			Tag:    i,
		})
	}

	sym := table.NewSymbol(name, symbols.EnumSymbol)
	sym.Builtin = true
	sym.Pub = true
	sym.Decl = decl
	sym.TypeParams = typeParams
	sym.Bounds = map[string][]string{}
	table.Universe.Define(sym)

	for _, v := range decl.Variants {
		vs := table.NewSymbol(v.Name.Value, symbols.EnumVariantSymbol)
		vs.Builtin = true
		vs.Pub = true
		vs.Decl = decl
		vs.Enum = sym
		table.Universe.Define(vs)
	}
}
