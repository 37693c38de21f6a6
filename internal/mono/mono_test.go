package mono_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Microindole/lency/internal/ast"
	"github.com/Microindole/lency/internal/checker"
	"github.com/Microindole/lency/internal/diagnostics"
	"github.com/Microindole/lency/internal/lexer"
	"github.com/Microindole/lency/internal/modules"
	"github.com/Microindole/lency/internal/mono"
	"github.com/Microindole/lency/internal/parser"
	"github.com/Microindole/lency/internal/pipeline"
	"github.com/Microindole/lency/internal/prettyprinter"
	"github.com/Microindole/lency/internal/resolver"
	"github.com/Microindole/lency/internal/symbols"
	"github.com/Microindole/lency/internal/traits"
	"github.com/Microindole/lency/internal/typesystem"
)

// monomorphize runs the whole frontend over a single-file program.
func monomorphize(t *testing.T, src string) (*mono.Program, *diagnostics.Sink) {
	t.Helper()
	ctx := pipeline.NewContext("test.lcy", src)
	ctx = pipeline.New(&lexer.LexerProcessor{}, &parser.ParserProcessor{}).Run(ctx)
	require.False(t, ctx.Sink.HasErrors(), "parse failed: %v", ctx.Sink.Diagnostics())

	mods := []*modules.Module{{Path: "", File: "test.lcy", Ast: ctx.AstRoot}}
	table := symbols.NewTable()
	res := resolver.New(table, ctx.Sink)
	res.Resolve(mods)
	require.False(t, ctx.Sink.HasErrors(), "resolve failed: %v", ctx.Sink.Diagnostics())

	tr := traits.Build(mods, res, ctx.Sink)
	chk := checker.New(table, res, tr, ctx.Sink)
	chk.Check(mods)
	require.False(t, ctx.Sink.HasErrors(), "check failed: %v", ctx.Sink.Diagnostics())

	prog := mono.New(table, res, tr, chk, ctx.Sink).Run(mods)
	return prog, ctx.Sink
}

func declNames(prog *mono.Program) []string {
	var out []string
	for _, d := range prog.Decls {
		switch decl := d.(type) {
		case *ast.FunctionDeclaration:
			out = append(out, decl.Name.Value)
		case *ast.StructDeclaration:
			out = append(out, decl.Name.Value)
		case *ast.EnumDeclaration:
			out = append(out, decl.Name.Value)
		case *ast.ConstDeclaration:
			out = append(out, decl.Name.Value)
		}
	}
	return out
}

func findStruct(prog *mono.Program, name string) *ast.StructDeclaration {
	for _, d := range prog.Decls {
		if sd, ok := d.(*ast.StructDeclaration); ok && sd.Name.Value == name {
			return sd
		}
	}
	return nil
}

func findFunction(prog *mono.Program, name string) *ast.FunctionDeclaration {
	for _, d := range prog.Decls {
		if fd, ok := d.(*ast.FunctionDeclaration); ok && fd.Name.Value == name {
			return fd
		}
	}
	return nil
}

func TestGenericStructSpecialization(t *testing.T) {
	prog, sink := monomorphize(t, `
struct Box<T> {
    T v
}

int main() {
    var b = Box<int>{v: 7}
    return b.v
}
`)
	assert.False(t, sink.HasErrors(), "%v", sink.Diagnostics())

	box := findStruct(prog, "Box__int")
	require.NotNil(t, box, "expected Box__int among %v", declNames(prog))
	require.Len(t, box.Fields, 1)
	assert.Equal(t, "v", box.Fields[0].Name.Value)
	nt, ok := box.Fields[0].Type.(*ast.NamedType)
	require.True(t, ok)
	assert.Equal(t, "int", nt.Name.Value)

	// The generic declaration itself is dropped.
	assert.Nil(t, findStruct(prog, "Box"))

	// The literal in main is rewritten to the mangled name.
	main := findFunction(prog, "main")
	require.NotNil(t, main)
	varStmt := main.Body.Statements[0].(*ast.VarStatement)
	lit := varStmt.Value.(*ast.StructLiteral)
	assert.Equal(t, "Box__int", lit.Name.Value)
	assert.Empty(t, lit.TypeArgs)
}

func TestTraitBoundRewrite(t *testing.T) {
	prog, sink := monomorphize(t, `
trait Greet {
    void g()
}

struct U {
}

impl Greet for U {
    void g() {
    }
}

void run<T: Greet>(T x) {
    x.g()
}

int main() {
    var u = U{}
    run<U>(u)
    return 0
}
`)
	assert.False(t, sink.HasErrors(), "%v", sink.Diagnostics())

	// run<U> specializes to run__U...
	runU := findFunction(prog, "run__U")
	require.NotNil(t, runU, "expected run__U among %v", declNames(prog))

	// ...whose body calls U__g.
	es := runU.Body.Statements[0].(*ast.ExpressionStatement)
	call, ok := es.Expression.(*ast.CallExpression)
	require.True(t, ok, "method call must rewrite to a named call, got %T", es.Expression)
	callee := call.Callee.(*ast.Identifier)
	assert.Equal(t, "U__g", callee.Value)

	// The impl method was lowered with an explicit receiver.
	ug := findFunction(prog, "U__g")
	require.NotNil(t, ug)
	require.Len(t, ug.Params, 1)
	assert.Equal(t, "this", ug.Params[0].Name.Value)

	// main's call site is rewritten to the specialization.
	main := findFunction(prog, "main")
	mainCall := main.Body.Statements[1].(*ast.ExpressionStatement).Expression.(*ast.CallExpression)
	assert.Equal(t, "run__U", mainCall.Callee.(*ast.Identifier).Value)
	assert.Empty(t, mainCall.TypeArgs)
}

func TestNoGenericsSurvive(t *testing.T) {
	prog, sink := monomorphize(t, `
struct Pair<A, B> {
    A first
    B second
}

Pair<int, string> make() {
    return Pair<int, string>{first: 1, second: "x"}
}

int main() {
    var p = make()
    return p.first
}
`)
	assert.False(t, sink.HasErrors(), "%v", sink.Diagnostics())

	for _, d := range prog.Decls {
		switch decl := d.(type) {
		case *ast.FunctionDeclaration:
			assert.Empty(t, decl.TypeParams, "function %s still generic", decl.Name.Value)
		case *ast.StructDeclaration:
			assert.Empty(t, decl.TypeParams, "struct %s still generic", decl.Name.Value)
		}
	}
	require.NotNil(t, findStruct(prog, "Pair__int__string"), "got %v", declNames(prog))

	// make's return annotation is rewritten to the mangled name.
	mk := findFunction(prog, "make")
	nt := mk.ReturnType.(*ast.NamedType)
	assert.Equal(t, "Pair__int__string", nt.Name.Value)
	assert.Empty(t, nt.Args)
}

func TestGenericEnumSpecialization(t *testing.T) {
	prog, sink := monomorphize(t, `
int f(Option<int> o) {
    return match o {
        case Some(v) => v
        case None => 0
    }
}

int main() {
    return f(Some(7))
}
`)
	assert.False(t, sink.HasErrors(), "%v", sink.Diagnostics())

	var optInt *ast.EnumDeclaration
	for _, d := range prog.Decls {
		if ed, ok := d.(*ast.EnumDeclaration); ok && ed.Name.Value == "Option__int" {
			optInt = ed
		}
	}
	require.NotNil(t, optInt, "expected Option__int among %v", declNames(prog))
	require.Len(t, optInt.Variants, 2)
	assert.Equal(t, 0, optInt.Variants[0].Tag)
	assert.Equal(t, 1, optInt.Variants[1].Tag)
}

func TestGenericImplSpecialization(t *testing.T) {
	prog, sink := monomorphize(t, `
struct Box<T> {
    T v
}

impl<T> Box<T> {
    T get() {
        return this.v
    }
}

int main() {
    var b = Box<int>{v: 7}
    return b.get()
}
`)
	assert.False(t, sink.HasErrors(), "%v", sink.Diagnostics())

	get := findFunction(prog, "Box__int__get")
	require.NotNil(t, get, "expected Box__int__get among %v", declNames(prog))
	require.Len(t, get.Params, 1)
	recvType := get.Params[0].Type.(*ast.NamedType)
	assert.Equal(t, "Box__int", recvType.Name.Value)
	intRet := get.ReturnType.(*ast.NamedType)
	assert.Equal(t, "int", intRet.Name.Value)

	// The call site passes the receiver as the first argument.
	main := findFunction(prog, "main")
	ret := main.Body.Statements[1].(*ast.ReturnStatement)
	call := ret.Value.(*ast.CallExpression)
	assert.Equal(t, "Box__int__get", call.Callee.(*ast.Identifier).Value)
	require.Len(t, call.Args, 1)
}

func TestVecSpecializationUsesRuntimeNames(t *testing.T) {
	prog, sink := monomorphize(t, `
int f(Vec<int> v) {
    v.push(4)
    return v.len()
}

int main() {
    return 0
}
`)
	assert.False(t, sink.HasErrors(), "%v", sink.Diagnostics())

	f := findFunction(prog, "f")
	push := f.Body.Statements[0].(*ast.ExpressionStatement).Expression.(*ast.CallExpression)
	assert.Equal(t, "Vec__int__push", push.Callee.(*ast.Identifier).Value)
	// No Vec declaration is emitted; the backend lowers these names
	// onto the runtime.
	assert.Nil(t, findStruct(prog, "Vec__int"))
}

func TestManglingInjective(t *testing.T) {
	intT := typesystem.Int
	box := func(args ...typesystem.Type) typesystem.Type {
		return typesystem.TNamed{Name: "Box", Args: args}
	}
	pair := func(args ...typesystem.Type) typesystem.Type {
		return typesystem.TNamed{Name: "Pair", Args: args}
	}

	names := map[string]string{}
	cases := []struct {
		base string
		args []typesystem.Type
	}{
		{"Box", []typesystem.Type{intT}},
		{"Box", []typesystem.Type{typesystem.String}},
		{"Box", []typesystem.Type{typesystem.MakeNullable(intT)}},
		{"Box", []typesystem.Type{box(intT)}},
		{"Pair", []typesystem.Type{intT, typesystem.String}},
		{"Pair", []typesystem.Type{box(intT), typesystem.String}},
		{"Pair", []typesystem.Type{intT, box(typesystem.String)}},
		{"Pair", []typesystem.Type{pair(intT, intT), intT}},
		{"Pair", []typesystem.Type{typesystem.TArray{Elem: intT, Len: 3}, intT}},
	}
	for _, c := range cases {
		got := mono.Mangle(c.base, c.args)
		if prev, seen := names[got]; seen {
			t.Fatalf("mangling collision: %q produced by both %s and %s%v", got, prev, c.base, c.args)
		}
		names[got] = c.base
	}
}

func TestMangleExamples(t *testing.T) {
	assert.Equal(t, "Box__int", mono.Mangle("Box", []typesystem.Type{typesystem.Int}))
	assert.Equal(t, "Pair__Box_int__string", mono.Mangle("Pair", []typesystem.Type{
		typesystem.TNamed{Name: "Box", Args: []typesystem.Type{typesystem.Int}},
		typesystem.String,
	}))
	assert.Equal(t, "U__g", mono.MangleMethod("U", "g"))
	assert.Equal(t, "run__U", mono.Mangle("run", []typesystem.Type{typesystem.TNamed{Name: "U"}}))
}

// Monomorphization is idempotent: its output is a valid concrete
// program, and running the full frontend plus monomorphizer over the
// printed output reproduces it verbatim.
func TestMonoIdempotent(t *testing.T) {
	src := `
struct Box<T> {
    T v
}

int main() {
    var b = Box<int>{v: 7}
    return b.v
}
`
	first, sink := monomorphize(t, src)
	require.False(t, sink.HasErrors())

	printer := prettyprinter.NewCodePrinter()
	printed := printModule(printer, first)

	second, sink2 := monomorphize(t, printed)
	require.False(t, sink2.HasErrors(), "reprocessing mono output failed: %v", sink2.Diagnostics())

	assert.Equal(t, printed, printModule(printer, second))
}

func printModule(printer *prettyprinter.CodePrinter, prog *mono.Program) string {
	mod := &ast.Module{Decls: prog.Decls}
	return printer.Print(mod)
}
