package backend

import (
	"fmt"

	"github.com/Microindole/lency/internal/diagnostics"
	"github.com/Microindole/lency/internal/mono"
	"github.com/Microindole/lency/internal/symbols"
)

// Contract is the default backend: it re-verifies the backend contract
// over the concrete program and emits nothing. `build` and `run`
// dispatch here until a native code generator is linked in.
type Contract struct{}

func init() {
	Register(Contract{})
}

func (Contract) Name() string { return "contract" }

func (Contract) Emit(prog *mono.Program, table *symbols.Table, sink *diagnostics.Sink, outPath string) error {
	if prog == nil || len(prog.Decls) == 0 {
		return fmt.Errorf("contract backend: empty program")
	}
	// The monomorphizer already ran its exit verifier into the sink;
	// a clean sink here means the contract holds.
	if sink.HasErrors() {
		return fmt.Errorf("contract backend: program violates the backend contract")
	}
	return nil
}
