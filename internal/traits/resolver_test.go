package traits_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Microindole/lency/internal/diagnostics"
	"github.com/Microindole/lency/internal/lexer"
	"github.com/Microindole/lency/internal/modules"
	"github.com/Microindole/lency/internal/parser"
	"github.com/Microindole/lency/internal/pipeline"
	"github.com/Microindole/lency/internal/resolver"
	"github.com/Microindole/lency/internal/symbols"
	"github.com/Microindole/lency/internal/traits"
)

func buildTable(t *testing.T, src string) (*traits.Table, *diagnostics.Sink) {
	t.Helper()
	ctx := pipeline.NewContext("test.lcy", src)
	ctx = pipeline.New(&lexer.LexerProcessor{}, &parser.ParserProcessor{}).Run(ctx)
	require.False(t, ctx.Sink.HasErrors(), "parse failed: %v", ctx.Sink.Diagnostics())

	mods := []*modules.Module{{Path: "", File: "test.lcy", Ast: ctx.AstRoot}}
	table := symbols.NewTable()
	res := resolver.New(table, ctx.Sink)
	res.Resolve(mods)
	require.False(t, ctx.Sink.HasErrors(), "resolve failed: %v", ctx.Sink.Diagnostics())

	return traits.Build(mods, res, ctx.Sink), ctx.Sink
}

func hasCode(sink *diagnostics.Sink, code diagnostics.ErrorCode) bool {
	return len(sink.ByCode(code)) > 0
}

const greetProgram = `
trait Greet {
    void g()
}

struct U {
}

impl Greet for U {
    void g() {
    }
}
`

func TestCompleteImplRegisters(t *testing.T) {
	table, sink := buildTable(t, greetProgram)
	assert.False(t, sink.HasErrors())
	assert.True(t, table.Implements("U", "Greet"))
	assert.False(t, table.Implements("U", "Display"))

	imp, ok := table.Lookup("Greet", "U")
	require.True(t, ok)
	assert.Equal(t, "Greet", imp.TraitName)
	assert.NotNil(t, imp.Decl.Method("g"))
}

func TestIncompleteImpl(t *testing.T) {
	_, sink := buildTable(t, `
trait Greet {
    void g()
    void h()
}

struct U {
}

impl Greet for U {
    void g() {
    }
}
`)
	require.True(t, hasCode(sink, diagnostics.ErrT010))
	d := sink.ByCode(diagnostics.ErrT010)[0]
	assert.True(t, strings.Contains(d.Message, "h"), "message should cite the missing method: %s", d.Message)
}

func TestSignatureMismatch(t *testing.T) {
	_, sink := buildTable(t, `
trait Greet {
    void g()
}

struct U {
}

impl Greet for U {
    int g() {
        return 1
    }
}
`)
	assert.True(t, hasCode(sink, diagnostics.ErrT010))
}

func TestExtraMethodWarns(t *testing.T) {
	_, sink := buildTable(t, `
trait Greet {
    void g()
}

struct U {
}

impl Greet for U {
    void g() {
    }

    void extra() {
    }
}
`)
	require.True(t, hasCode(sink, diagnostics.WarnT101))
	// A warning alone must not block compilation.
	assert.False(t, sink.HasErrors())
}

func TestDuplicateImpl(t *testing.T) {
	_, sink := buildTable(t, greetProgram+`
impl Greet for U {
    void g() {
    }
}
`)
	assert.True(t, hasCode(sink, diagnostics.ErrR002))
}

func TestInherentMethodLookup(t *testing.T) {
	table, sink := buildTable(t, `
struct P {
    int x
}

impl P {
    int getX() {
        return this.x
    }
}
`)
	assert.False(t, sink.HasErrors())
	m, imp, ok := table.InherentMethod("P", "getX")
	require.True(t, ok)
	assert.Equal(t, "getX", m.Name.Value)
	assert.Equal(t, "", imp.TraitName)

	_, _, ok = table.InherentMethod("P", "missing")
	assert.False(t, ok)
}

func TestBoundMethod(t *testing.T) {
	table, sink := buildTable(t, greetProgram)
	require.False(t, sink.HasErrors())
	traitName, sig, ok := table.BoundMethod([]string{"Greet"}, "g")
	require.True(t, ok)
	assert.Equal(t, "Greet", traitName)
	assert.Equal(t, "g", sig.Name.Value)

	_, _, ok = table.BoundMethod([]string{"Greet"}, "missing")
	assert.False(t, ok)
	_, _, ok = table.BoundMethod(nil, "g")
	assert.False(t, ok)
}

func TestGenericImplTarget(t *testing.T) {
	table, sink := buildTable(t, `
struct Box<T> {
    T v
}

impl<T> Box<T> {
    T get() {
        return this.v
    }
}
`)
	assert.False(t, sink.HasErrors())
	m, _, ok := table.InherentMethod("Box", "get")
	require.True(t, ok)
	assert.Equal(t, "get", m.Name.Value)
}
