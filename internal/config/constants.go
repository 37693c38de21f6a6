package config

// Version is the current Lency version.
// Set at build time via -ldflags or by writing to this file.
var Version = "0.4.2"

// SourceFileExt is the extension of Lency source files.
const SourceFileExt = ".lcy"

// ConfigFileName is the optional per-project configuration file.
const ConfigFileName = "lency.yaml"

// HasSourceExt returns true if the path ends with the Lency source extension.
func HasSourceExt(path string) bool {
	return len(path) >= len(SourceFileExt) && path[len(path)-len(SourceFileExt):] == SourceFileExt
}

// TrimSourceExt removes the source extension from a filename.
// Returns the original string if the extension does not match.
func TrimSourceExt(name string) string {
	if HasSourceExt(name) {
		return name[:len(name)-len(SourceFileExt)]
	}
	return name
}

// EntryFunctionName is the monomorphization root.
const EntryFunctionName = "main"

// Built-in function names registered in the universe scope.
const (
	PrintFuncName     = "print"
	LenFuncName       = "len"
	PanicFuncName     = "panic"
	ReadFileFuncName  = "readFile"
	WriteFileFuncName = "writeFile"
)

// Built-in generic container type names.
const (
	VecTypeName = "Vec"
	MapTypeName = "Map"
)

// Library enum names registered in the universe scope.
const (
	OptionTypeName = "Option"
	ResultTypeName = "Result"
)

// IsTestMode indicates the compiler is running under `go test`.
// Set once at startup; keeps diagnostic rendering deterministic.
var IsTestMode = false
