package mono

import (
	"strconv"
	"strings"

	"github.com/Microindole/lency/internal/typesystem"
)

// Mangle derives the concrete name of a generic declaration applied to
// type arguments: Base__Arg1__Arg2. Nested generics flatten with single
// underscores inside an argument, double underscores between arguments:
//
//	Box<int>              -> Box__int
//	Pair<Box<int>, string> -> Pair__Box_int__string
//
// Distinct (declaration, type-argument) tuples map to distinct names.
func Mangle(base string, args []typesystem.Type) string {
	if len(args) == 0 {
		return base
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = MangleType(a)
	}
	return base + "__" + strings.Join(parts, "__")
}

// MangleMethod names a specialized impl method: the (mangled) target
// type, double underscore, method name.
func MangleMethod(mangledType, method string) string {
	return mangledType + "__" + method
}

// MangleType flattens one type argument into a name fragment using
// single underscores.
func MangleType(t typesystem.Type) string {
	switch tt := t.(type) {
	case typesystem.TCon:
		return tt.Name
	case typesystem.TNullable:
		return "opt_" + MangleType(tt.Inner)
	case typesystem.TArray:
		return "arr" + strconv.Itoa(tt.Len) + "_" + MangleType(tt.Elem)
	case typesystem.TNamed:
		if len(tt.Args) == 0 {
			return tt.Name
		}
		parts := make([]string, len(tt.Args))
		for i, a := range tt.Args {
			parts[i] = MangleType(a)
		}
		return tt.Name + "_" + strings.Join(parts, "_")
	case typesystem.TParam:
		// Should not survive to mangling; kept for debuggability.
		return "p_" + tt.Name
	case typesystem.TFunc:
		parts := make([]string, 0, len(tt.Params)+1)
		for _, p := range tt.Params {
			parts = append(parts, MangleType(p))
		}
		parts = append(parts, MangleType(tt.Return))
		return "fn_" + strings.Join(parts, "_")
	}
	return "unknown"
}
