package driver

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/Microindole/lency/internal/backend"
	"github.com/Microindole/lency/internal/checker"
	"github.com/Microindole/lency/internal/config"
	"github.com/Microindole/lency/internal/diagnostics"
	"github.com/Microindole/lency/internal/modules"
	"github.com/Microindole/lency/internal/mono"
	"github.com/Microindole/lency/internal/resolver"
	"github.com/Microindole/lency/internal/symbols"
	"github.com/Microindole/lency/internal/traits"
)

// Exit codes of the lencyc CLI.
const (
	ExitOK       = 0
	ExitCompile  = 1
	ExitInternal = 2
)

// Result is what a successful frontend run hands to the backend.
type Result struct {
	Program *mono.Program
	Table   *symbols.Table
	Sources map[string]string
}

// Driver sequences the phases: load (lex+parse the import closure),
// resolve, trait registration, type check, monomorphize. It stops at
// the first phase that leaves errors in the sink.
type Driver struct {
	cfg  *config.Config
	sink *diagnostics.Sink
}

func New(cfg *config.Config, sink *diagnostics.Sink) *Driver {
	return &Driver{cfg: cfg, sink: sink}
}

// Compile runs the frontend over the root file. When any phase reported
// errors the returned Result has a nil Program (Sources is still set);
// diagnostics are in the sink.
func (d *Driver) Compile(rootFile string) *Result {
	loader := modules.NewLoader(d.cfg, d.sink)
	loader.LoadRoot(rootFile)
	if d.sink.HasErrors() {
		return &Result{Sources: loader.Sources}
	}
	mods := loader.Modules()

	table := symbols.NewTable()
	res := resolver.New(table, d.sink)
	res.Resolve(mods)
	if d.sink.HasErrors() {
		return &Result{Sources: loader.Sources}
	}

	traitTable := traits.Build(mods, res, d.sink)
	if d.sink.HasErrors() {
		return &Result{Sources: loader.Sources}
	}

	chk := checker.New(table, res, traitTable, d.sink)
	chk.Check(mods)
	if d.sink.HasErrors() {
		return &Result{Sources: loader.Sources}
	}

	specializer := mono.New(table, res, traitTable, chk, d.sink)
	prog := specializer.Run(mods)
	if d.sink.HasErrors() {
		return &Result{Sources: loader.Sources}
	}

	return &Result{Program: prog, Table: table, Sources: loader.Sources}
}

// Check runs the frontend and renders diagnostics. Returns the process
// exit code.
func Check(rootFile string, cfg *config.Config) int {
	return run(rootFile, cfg, "")
}

// Build runs the frontend and hands the concrete program to the named
// backend.
func Build(rootFile string, cfg *config.Config, backendName string) int {
	return run(rootFile, cfg, backendName)
}

func run(rootFile string, cfg *config.Config, backendName string) (code int) {
	sink := diagnostics.NewSink()
	sink.SetStrict(cfg.Strict)

	// Internal logic errors are fatal with status 2 and a report id;
	// user-facing failures always flow through the sink instead.
	defer func() {
		if r := recover(); r != nil {
			reportID := uuid.NewString()
			fmt.Fprintf(os.Stderr, "lencyc: internal error [report %s]: %v\n", reportID, r)
			code = ExitInternal
		}
	}()

	result := New(cfg, sink).Compile(rootFile)

	renderer := diagnostics.NewRenderer(os.Stderr)
	for path, src := range result.Sources {
		renderer.AddSource(path, src)
	}
	renderer.Render(sink)
	if sink.HasErrors() {
		return ExitCompile
	}
	if result.Program == nil {
		// Errors without Error-level records cannot happen; treat a
		// missing program with a clean sink as internal.
		fmt.Fprintln(os.Stderr, "lencyc: internal error: no program produced")
		return ExitInternal
	}

	if backendName != "" {
		b, ok := backend.Get(backendName)
		if !ok {
			fmt.Fprintf(os.Stderr, "lencyc: unknown backend %q (have: %v)\n", backendName, backend.Names())
			return ExitInternal
		}
		out := filepath.Join(os.TempDir(), "lency-"+uuid.NewString())
		if err := b.Emit(result.Program, result.Table, sink, out); err != nil {
			fmt.Fprintf(os.Stderr, "lencyc: %v\n", err)
			return ExitCompile
		}
	}
	return ExitOK
}
