package mono

import (
	"github.com/Microindole/lency/internal/ast"
	"github.com/Microindole/lency/internal/symbols"
	"github.com/Microindole/lency/internal/typesystem"
)

// typeOf converts an already-checked type expression into a typesystem
// type. No diagnostics: the checker validated every annotation.
func (m *Mono) typeOf(te ast.TypeExpr) typesystem.Type {
	switch t := te.(type) {
	case *ast.NamedType:
		switch t.Name.Value {
		case "int":
			return typesystem.Int
		case "float":
			return typesystem.Float
		case "bool":
			return typesystem.Bool
		case "string":
			return typesystem.String
		case "void":
			return typesystem.Void
		}
		if sym, ok := m.res.SymbolOf(t.Name); ok {
			if sym.Kind == symbols.TypeParamSymbol {
				return typesystem.TParam{Name: t.Name.Value}
			}
			args := make([]typesystem.Type, len(t.Args))
			for i, a := range t.Args {
				args[i] = m.typeOf(a)
			}
			return typesystem.TNamed{Name: sym.Name, Args: args}
		}
		// Unresolved names only occur for synthetic parameters of
		// builtin declarations.
		return typesystem.TParam{Name: t.Name.Value}

	case *ast.NullableType:
		return typesystem.MakeNullable(m.typeOf(t.Inner))

	case *ast.ArrayType:
		return typesystem.TArray{Elem: m.typeOf(t.Elem), Len: t.Len}
	}
	return typesystem.Void
}

// typeToExpr renders a fully concrete type back into annotation syntax,
// instantiating (and thereby mangling) any generic named type it
// mentions.
func (m *Mono) typeToExpr(t typesystem.Type) ast.TypeExpr {
	switch tt := t.(type) {
	case typesystem.TCon:
		return &ast.NamedType{Name: &ast.Identifier{Value: tt.Name}}
	case typesystem.TNullable:
		return &ast.NullableType{Inner: m.typeToExpr(tt.Inner)}
	case typesystem.TArray:
		return &ast.ArrayType{Elem: m.typeToExpr(tt.Elem), Len: tt.Len}
	case typesystem.TNamed:
		name := m.instantiateNamed(tt)
		return &ast.NamedType{Name: &ast.Identifier{Value: name}}
	}
	return &ast.NamedType{Name: &ast.Identifier{Value: "void"}}
}
