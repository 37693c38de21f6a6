package resolver_test

import (
	"strings"
	"testing"

	"github.com/Microindole/lency/internal/diagnostics"
	"github.com/Microindole/lency/internal/lexer"
	"github.com/Microindole/lency/internal/modules"
	"github.com/Microindole/lency/internal/parser"
	"github.com/Microindole/lency/internal/pipeline"
	"github.com/Microindole/lency/internal/resolver"
	"github.com/Microindole/lency/internal/symbols"
)

func resolveSource(t *testing.T, src string) (*resolver.Resolver, *diagnostics.Sink) {
	t.Helper()
	ctx := pipeline.NewContext("test.lcy", src)
	ctx = pipeline.New(&lexer.LexerProcessor{}, &parser.ParserProcessor{}).Run(ctx)
	if ctx.Sink.HasErrors() {
		var msgs []string
		for _, d := range ctx.Sink.Diagnostics() {
			msgs = append(msgs, d.Error())
		}
		t.Fatalf("parse failed:\n%s", strings.Join(msgs, "\n"))
	}

	table := symbols.NewTable()
	res := resolver.New(table, ctx.Sink)
	res.Resolve([]*modules.Module{{Path: "", File: "test.lcy", Ast: ctx.AstRoot}})
	return res, ctx.Sink
}

func codes(sink *diagnostics.Sink) []diagnostics.ErrorCode {
	var out []diagnostics.ErrorCode
	for _, d := range sink.Diagnostics() {
		out = append(out, d.Code)
	}
	return out
}

func expectCode(t *testing.T, sink *diagnostics.Sink, code diagnostics.ErrorCode) {
	t.Helper()
	for _, d := range sink.Diagnostics() {
		if d.Code == code {
			return
		}
	}
	t.Fatalf("expected %s, got %v", code, codes(sink))
}

func expectClean(t *testing.T, sink *diagnostics.Sink) {
	t.Helper()
	if sink.HasErrors() {
		t.Fatalf("expected clean resolution, got %v", codes(sink))
	}
}

func TestForwardReferences(t *testing.T) {
	_, sink := resolveSource(t, `
int main() {
    return helper()
}

int helper() {
    return 1
}
`)
	expectClean(t, sink)
}

func TestMutualRecursion(t *testing.T) {
	_, sink := resolveSource(t, `
int even(int n) {
    return odd(n)
}

int odd(int n) {
    return even(n)
}
`)
	expectClean(t, sink)
}

func TestUnresolvedName(t *testing.T) {
	_, sink := resolveSource(t, "int main() {\n    return missing\n}")
	expectCode(t, sink, diagnostics.ErrR001)
}

func TestDuplicateDeclaration(t *testing.T) {
	_, sink := resolveSource(t, `
int f() {
    return 1
}

int f() {
    return 2
}
`)
	expectCode(t, sink, diagnostics.ErrR002)
}

func TestShadowInSameScope(t *testing.T) {
	_, sink := resolveSource(t, `
int main() {
    var x = 1
    var x = 2
    return x
}
`)
	expectCode(t, sink, diagnostics.ErrR003)
}

func TestShadowInNestedScopeAllowed(t *testing.T) {
	_, sink := resolveSource(t, `
int main() {
    var x = 1
    if true {
        var x = 2
        print("shadowed")
    }
    return x
}
`)
	expectClean(t, sink)
}

func TestVarInitializerBindsBeforeName(t *testing.T) {
	// `var x = x` must resolve the right-hand x outward, failing
	// when no outer x exists.
	_, sink := resolveSource(t, "int main() {\n    var x = x\n    return x\n}")
	expectCode(t, sink, diagnostics.ErrR001)
}

func TestEnumPathResolution(t *testing.T) {
	_, sink := resolveSource(t, `
enum Color {
    Red
    Green
}

Color f() {
    return Color::Red
}
`)
	expectClean(t, sink)
}

func TestEnumPathUnknownVariant(t *testing.T) {
	_, sink := resolveSource(t, `
enum Color {
    Red
}

Color f() {
    return Color::Blue
}
`)
	expectCode(t, sink, diagnostics.ErrR001)
}

func TestPathOnNonEnum(t *testing.T) {
	_, sink := resolveSource(t, `
struct P {
    int x
}

int f() {
    return P::x
}
`)
	expectCode(t, sink, diagnostics.ErrR004)
}

func TestUnresolvedTypeName(t *testing.T) {
	_, sink := resolveSource(t, "Missing f() {\n    return 0\n}")
	expectCode(t, sink, diagnostics.ErrR001)
}

func TestPrimitiveWithTypeArgs(t *testing.T) {
	_, sink := resolveSource(t, "void f(int<string> x) {\n}")
	expectCode(t, sink, diagnostics.ErrR004)
}

func TestUniverseBuiltinsVisible(t *testing.T) {
	_, sink := resolveSource(t, `
int main() {
    print("hi")
    return len("abc")
}
`)
	expectClean(t, sink)
}

func TestOptionAndResultVisible(t *testing.T) {
	_, sink := resolveSource(t, `
Option<int> f() {
    return Some(1)
}

Option<int> g() {
    return Option::None
}
`)
	expectClean(t, sink)
}

func TestDuplicateEnumVariant(t *testing.T) {
	_, sink := resolveSource(t, "enum C {\n    A\n    A\n}")
	expectCode(t, sink, diagnostics.ErrR002)
}
