package backend

import (
	"strings"

	"github.com/Microindole/lency/internal/config"
)

// Runtime symbol names the emitted code links against. The runtime
// library provides their definitions; the compiler only emits call
// sites. Signatures and calling conventions are fixed by the target
// ABI.
const (
	RuntimeVecNew        = "lency_vec_new"
	RuntimeVecPush       = "lency_vec_push"
	RuntimeVecGet        = "lency_vec_get"
	RuntimeVecLen        = "lency_vec_len"
	RuntimeMapStringNew  = "lency_hashmap_string_new"
	RuntimeMapStringIns  = "lency_hashmap_string_insert"
	RuntimeMapStringGet  = "lency_hashmap_string_get"
	RuntimeFileRead      = "lency_file_read"
	RuntimeFileWrite     = "lency_file_write"
	RuntimePanic         = "lency_panic"
)

// builtinSymbols maps builtin functions onto runtime entry points.
var builtinSymbols = map[string]string{
	config.PanicFuncName:     RuntimePanic,
	config.ReadFileFuncName:  RuntimeFileRead,
	config.WriteFileFuncName: RuntimeFileWrite,
}

// containerSymbols maps specialized container method suffixes onto the
// type-erased runtime helpers.
var containerSymbols = map[string]string{
	config.VecTypeName + "/push":   RuntimeVecPush,
	config.VecTypeName + "/get":    RuntimeVecGet,
	config.VecTypeName + "/len":    RuntimeVecLen,
	config.MapTypeName + "/insert": RuntimeMapStringIns,
	config.MapTypeName + "/get":    RuntimeMapStringGet,
}

// RuntimeSymbol resolves a monomorphized call target to the runtime
// symbol it lowers onto, if any. Specialized container methods arrive
// as e.g. "Vec__int__push"; all specializations of one method share
// one type-erased runtime helper.
func RuntimeSymbol(callTarget string) (string, bool) {
	if sym, ok := builtinSymbols[callTarget]; ok {
		return sym, true
	}
	for _, container := range []string{config.VecTypeName, config.MapTypeName} {
		prefix := container + "__"
		if !strings.HasPrefix(callTarget, prefix) {
			continue
		}
		idx := strings.LastIndex(callTarget, "__")
		method := callTarget[idx+2:]
		if sym, ok := containerSymbols[container+"/"+method]; ok {
			return sym, true
		}
	}
	return "", false
}
