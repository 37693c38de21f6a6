package backend

import (
	"sort"

	"github.com/Microindole/lency/internal/diagnostics"
	"github.com/Microindole/lency/internal/mono"
	"github.com/Microindole/lency/internal/symbols"
)

// Backend consumes the monomorphizer's output: a concrete AST with no
// generic declarations, every type fully concrete, every call bound to
// a named function, every field reference resolved — plus the symbol
// table. Code generation itself lives outside this module; backends
// register here and the driver dispatches by name.
type Backend interface {
	Name() string
	// Emit lowers the program. The output path is advisory; a backend
	// that only verifies may ignore it.
	Emit(prog *mono.Program, table *symbols.Table, sink *diagnostics.Sink, outPath string) error
}

var registry = map[string]Backend{}

// Register installs a backend under its name. Later registrations of
// the same name win, so a linked-in native backend can replace the
// default contract verifier.
func Register(b Backend) {
	registry[b.Name()] = b
}

// Get returns a backend by name.
func Get(name string) (Backend, bool) {
	b, ok := registry[name]
	return b, ok
}

// Names lists registered backends, sorted.
func Names() []string {
	out := make([]string, 0, len(registry))
	for n := range registry {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
