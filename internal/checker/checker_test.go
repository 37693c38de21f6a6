package checker_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Microindole/lency/internal/ast"
	"github.com/Microindole/lency/internal/checker"
	"github.com/Microindole/lency/internal/diagnostics"
	"github.com/Microindole/lency/internal/lexer"
	"github.com/Microindole/lency/internal/modules"
	"github.com/Microindole/lency/internal/parser"
	"github.com/Microindole/lency/internal/pipeline"
	"github.com/Microindole/lency/internal/resolver"
	"github.com/Microindole/lency/internal/symbols"
	"github.com/Microindole/lency/internal/traits"
	"github.com/Microindole/lency/internal/typesystem"
)

type frontend struct {
	mods []*modules.Module
	chk  *checker.Checker
	sink *diagnostics.Sink
}

// checkSource runs lex, parse, resolve, trait build, and type check
// over a single-file program.
func checkSource(t *testing.T, src string) *frontend {
	t.Helper()
	ctx := pipeline.NewContext("test.lcy", src)
	ctx = pipeline.New(&lexer.LexerProcessor{}, &parser.ParserProcessor{}).Run(ctx)
	require.False(t, ctx.Sink.HasErrors(), "parse failed: %v", diagStrings(ctx.Sink))

	mods := []*modules.Module{{Path: "", File: "test.lcy", Ast: ctx.AstRoot}}
	table := symbols.NewTable()
	res := resolver.New(table, ctx.Sink)
	res.Resolve(mods)
	require.False(t, ctx.Sink.HasErrors(), "resolve failed: %v", diagStrings(ctx.Sink))

	tr := traits.Build(mods, res, ctx.Sink)
	chk := checker.New(table, res, tr, ctx.Sink)
	chk.Check(mods)
	return &frontend{mods: mods, chk: chk, sink: ctx.Sink}
}

func diagStrings(sink *diagnostics.Sink) []string {
	var out []string
	for _, d := range sink.Diagnostics() {
		out = append(out, d.Error())
	}
	return out
}

func expectClean(t *testing.T, f *frontend) {
	t.Helper()
	require.False(t, f.sink.HasErrors(), "expected clean check, got: %v", diagStrings(f.sink))
}

func expectCode(t *testing.T, f *frontend, code diagnostics.ErrorCode) *diagnostics.Diagnostic {
	t.Helper()
	found := f.sink.ByCode(code)
	require.NotEmpty(t, found, "expected %s, got: %v", code, diagStrings(f.sink))
	return found[0]
}

// findFunction returns the named top-level function declaration.
func (f *frontend) findFunction(name string) *ast.FunctionDeclaration {
	for _, m := range f.mods {
		for _, d := range m.Ast.Decls {
			if fd, ok := d.(*ast.FunctionDeclaration); ok && fd.Name.Value == name {
				return fd
			}
		}
	}
	return nil
}

// --- End-to-end scenarios -------------------------------------------

func TestIntegerAdd(t *testing.T) {
	f := checkSource(t, "int main() {\n    return 2 + 3\n}")
	expectClean(t, f)

	ret := f.findFunction("main").Body.Statements[0].(*ast.ReturnStatement)
	assert.True(t, typesystem.Equal(f.chk.TypeMap[ret.Value], typesystem.Int))
}

func TestNullGuardSmartCast(t *testing.T) {
	f := checkSource(t, `
int f(string? s) {
    if s != null {
        return len(s)
    }
    return 0
}
`)
	expectClean(t, f)

	// Inside the then branch, `s` is typed string, so len(s) is the
	// len(s) argument's type.
	fd := f.findFunction("f")
	ifStmt := fd.Body.Statements[0].(*ast.IfStatement)
	call := ifStmt.Then.Statements[0].(*ast.ReturnStatement).Value.(*ast.CallExpression)
	sArg := call.Args[0]
	assert.True(t, typesystem.Equal(f.chk.TypeMap[sArg], typesystem.String),
		"inside the guard, s must narrow to string, got %v", f.chk.TypeMap[sArg])
}

func TestNonExhaustiveMatch(t *testing.T) {
	f := checkSource(t, `
enum C {
    A
    B
    X
}

int f(C c) {
    return match c {
        case A => 1
        case B => 2
    }
}
`)
	d := expectCode(t, f, diagnostics.ErrT008)
	assert.Contains(t, d.Message, "X")
}

func TestTraitBoundSatisfied(t *testing.T) {
	f := checkSource(t, `
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
	expectClean(t, f)
}

func TestTraitBoundUnsatisfied(t *testing.T) {
	f := checkSource(t, `
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
    run<int>(0)
    return 0
}
`)
	d := expectCode(t, f, diagnostics.ErrT006)
	assert.Contains(t, d.Message, "int does not implement Greet")
}

// --- Declarations and assignability ---------------------------------

func TestVarTakesInitializerType(t *testing.T) {
	f := checkSource(t, `
int main() {
    var x = 2 + 3
    return x
}
`)
	expectClean(t, f)
}

func TestTypedDeclMismatch(t *testing.T) {
	f := checkSource(t, "int main() {\n    string s = 5\n    return 0\n}")
	expectCode(t, f, diagnostics.ErrT001)
}

func TestNoImplicitIntToFloatOnAssign(t *testing.T) {
	f := checkSource(t, "int main() {\n    float x = 1\n    return 0\n}")
	expectCode(t, f, diagnostics.ErrT001)
}

func TestArithmeticWidening(t *testing.T) {
	f := checkSource(t, `
float f() {
    return 1 + 2.5
}
`)
	expectClean(t, f)
}

func TestNullableWidening(t *testing.T) {
	f := checkSource(t, `
int main() {
    int? x = 5
    string? s = null
    return 0
}
`)
	expectClean(t, f)
}

func TestBareNullNeedsAnnotation(t *testing.T) {
	f := checkSource(t, "int main() {\n    var x = null\n    return 0\n}")
	expectCode(t, f, diagnostics.ErrT001)
}

func TestAssignToConst(t *testing.T) {
	f := checkSource(t, `
const MAX = 10

int main() {
    MAX = 11
    return 0
}
`)
	expectCode(t, f, diagnostics.ErrT009)
}

func TestStringConcat(t *testing.T) {
	f := checkSource(t, `
string f(string a, string b) {
    return a + b
}
`)
	expectClean(t, f)
}

func TestStringIntAddRejected(t *testing.T) {
	f := checkSource(t, "string f(string a) {\n    return a + 1\n}")
	expectCode(t, f, diagnostics.ErrT001)
}

func TestMissingReturn(t *testing.T) {
	f := checkSource(t, "int f(bool b) {\n    if b {\n        return 1\n    }\n}")
	expectCode(t, f, diagnostics.ErrT001)
}

func TestBothBranchesReturn(t *testing.T) {
	f := checkSource(t, `
int f(bool b) {
    if b {
        return 1
    } else {
        return 2
    }
}
`)
	expectClean(t, f)
}

// --- Nullability -----------------------------------------------------

func TestNullableFieldAccessRejected(t *testing.T) {
	f := checkSource(t, `
struct P {
    int x
}

int f(P? p) {
    return p.x
}
`)
	expectCode(t, f, diagnostics.ErrT007)
}

func TestSafeNavYieldsNullable(t *testing.T) {
	f := checkSource(t, `
struct P {
    int x
}

int f(P? p) {
    return p?.x ?? 0
}
`)
	expectClean(t, f)
}

func TestSafeNavOnNonNullableRejected(t *testing.T) {
	f := checkSource(t, `
struct P {
    int x
}

int f(P p) {
    return p?.x ?? 0
}
`)
	expectCode(t, f, diagnostics.ErrT001)
}

func TestElvisTypes(t *testing.T) {
	f := checkSource(t, "int f(int? x) {\n    return x ?? 0\n}")
	expectClean(t, f)
}

func TestElvisMismatchedDefault(t *testing.T) {
	f := checkSource(t, "int f(int? x) {\n    return x ?? \"zero\"\n}")
	expectCode(t, f, diagnostics.ErrT001)
}

func TestElvisOnNonNullable(t *testing.T) {
	f := checkSource(t, "int f(int x) {\n    return x ?? 0\n}")
	expectCode(t, f, diagnostics.ErrT001)
}

func TestGuardElseKeepsNullable(t *testing.T) {
	// In the else branch s stays string?, so len(s) must fail.
	f := checkSource(t, `
int f(string? s) {
    if s != null {
        return 1
    } else {
        return len(s)
    }
}
`)
	expectCode(t, f, diagnostics.ErrT001)
}

func TestEqualsNullDualGuard(t *testing.T) {
	f := checkSource(t, `
int f(string? s) {
    if s == null {
        return 0
    }
    return len(s)
}
`)
	expectClean(t, f)
}

func TestAndComposesGuards(t *testing.T) {
	f := checkSource(t, `
int f(string? a, string? b) {
    if a != null && b != null {
        return len(a) + len(b)
    }
    return 0
}
`)
	expectClean(t, f)
}

func TestOrRefinesElseBranch(t *testing.T) {
	f := checkSource(t, `
int f(string? a) {
    if a == null || false {
        return 0
    } else {
        return len(a)
    }
}
`)
	expectClean(t, f)
}

func TestMergeWidensAfterIf(t *testing.T) {
	// Neither branch diverges, so s widens back to string? after the
	// if and len(s) must fail.
	f := checkSource(t, `
int f(string? s) {
    if s != null {
        print("have it")
    }
    return len(s)
}
`)
	expectCode(t, f, diagnostics.ErrT001)
}

func TestAssignmentInvalidatesRefinement(t *testing.T) {
	f := checkSource(t, `
int f(string? s) {
    if s == null {
        return 0
    }
    s = null
    return len(s)
}
`)
	expectCode(t, f, diagnostics.ErrT001)
}

func TestMethodCallOnNullableRejected(t *testing.T) {
	f := checkSource(t, `
struct P {
    int x
}

impl P {
    int getX() {
        return this.x
    }
}

int f(P? p) {
    return p.getX()
}
`)
	expectCode(t, f, diagnostics.ErrT007)
}

// --- Structs, fields, generics --------------------------------------

func TestStructLiteralAndFieldAccess(t *testing.T) {
	f := checkSource(t, `
struct Box<T> {
    T v
}

int main() {
    var b = Box<int>{v: 7}
    return b.v
}
`)
	expectClean(t, f)
}

func TestStructLiteralWrongFieldType(t *testing.T) {
	f := checkSource(t, `
struct Box<T> {
    T v
}

int main() {
    var b = Box<int>{v: "seven"}
    return 0
}
`)
	expectCode(t, f, diagnostics.ErrT001)
}

func TestStructLiteralMissingField(t *testing.T) {
	f := checkSource(t, `
struct P {
    int x
    int y
}

int main() {
    var p = P{x: 1}
    return 0
}
`)
	expectCode(t, f, diagnostics.ErrT003)
}

func TestStructLiteralUnknownField(t *testing.T) {
	f := checkSource(t, `
struct P {
    int x
}

int main() {
    var p = P{x: 1, z: 2}
    return 0
}
`)
	expectCode(t, f, diagnostics.ErrT004)
}

func TestFieldNotInStruct(t *testing.T) {
	f := checkSource(t, `
struct P {
    int x
}

int f(P p) {
    return p.z
}
`)
	expectCode(t, f, diagnostics.ErrT004)
}

func TestGenericArityMismatch(t *testing.T) {
	f := checkSource(t, `
struct Box<T> {
    T v
}

void f(Box<int, string> b) {
}
`)
	expectCode(t, f, diagnostics.ErrT005)
}

func TestGenericCallRequiresTypeArgs(t *testing.T) {
	f := checkSource(t, `
void run<T>(T x) {
}

int main() {
    run(1)
    return 0
}
`)
	expectCode(t, f, diagnostics.ErrT005)
}

func TestInherentMethodCall(t *testing.T) {
	f := checkSource(t, `
struct P {
    int x
}

impl P {
    int getX() {
        return this.x
    }
}

int f(P p) {
    return p.getX()
}
`)
	expectClean(t, f)
}

func TestUnresolvedMethod(t *testing.T) {
	f := checkSource(t, `
struct P {
    int x
}

int f(P p) {
    return p.missing()
}
`)
	expectCode(t, f, diagnostics.ErrT002)
}

func TestGenericImplMethod(t *testing.T) {
	f := checkSource(t, `
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
	expectClean(t, f)
}

func TestWrongArgCount(t *testing.T) {
	f := checkSource(t, `
int add(int a, int b) {
    return a + b
}

int main() {
    return add(1)
}
`)
	expectCode(t, f, diagnostics.ErrT011)
}

// --- Match -----------------------------------------------------------

func TestMatchPayloadBinding(t *testing.T) {
	f := checkSource(t, `
int f(Option<int> o) {
    return match o {
        case Some(v) => v
        case None => 0
    }
}
`)
	expectClean(t, f)
}

func TestMatchArmTypeMismatch(t *testing.T) {
	f := checkSource(t, `
enum C {
    A
    B
}

int f(C c) {
    return match c {
        case A => 1
        case B => "two"
    }
}
`)
	expectCode(t, f, diagnostics.ErrT001)
}

func TestMatchIntNeedsWildcard(t *testing.T) {
	f := checkSource(t, `
int f(int x) {
    return match x {
        case 1 => 10
        case 2 => 20
    }
}
`)
	expectCode(t, f, diagnostics.ErrT008)
}

func TestMatchIntWithWildcard(t *testing.T) {
	f := checkSource(t, `
int f(int x) {
    return match x {
        case 1 => 10
        case _ => 0
    }
}
`)
	expectClean(t, f)
}

func TestMatchBoolCovered(t *testing.T) {
	f := checkSource(t, `
int f(bool b) {
    return match b {
        case true => 1
        case false => 0
    }
}
`)
	expectClean(t, f)
}

func TestRedundantWildcardKeepsResultType(t *testing.T) {
	withWildcard := checkSource(t, `
enum C {
    A
    B
}

int f(C c) {
    return match c {
        case A => 1
        case B => 2
        case _ => 3
    }
}
`)
	// Adding a redundant wildcard never changes the result type; it
	// only draws an unreachable-arm warning.
	require.False(t, withWildcard.sink.HasErrors(), "got: %v", diagStrings(withWildcard.sink))
	assert.NotEmpty(t, withWildcard.sink.ByCode(diagnostics.WarnT102))
	ret := withWildcard.findFunction("f").Body.Statements[0].(*ast.ReturnStatement)
	assert.True(t, typesystem.Equal(withWildcard.chk.TypeMap[ret.Value], typesystem.Int))
}

// --- Try operator ----------------------------------------------------

func TestTryOnResult(t *testing.T) {
	f := checkSource(t, `
Result<int, string> g() {
    return Ok::<int, string>(1)
}

Result<int, string> f() {
    var v = g()?
    return Ok::<int, string>(v + 1)
}
`)
	expectClean(t, f)
}

func TestTryOnNullableRejected(t *testing.T) {
	f := checkSource(t, "int f(int? x) {\n    var v = x?\n    return 0\n}")
	expectCode(t, f, diagnostics.ErrT012)
}

func TestTryErrorChannelMismatch(t *testing.T) {
	f := checkSource(t, `
Result<int, string> g() {
    return Ok::<int, string>(1)
}

Result<int, int> f() {
    var v = g()?
    return Ok::<int, int>(v)
}
`)
	expectCode(t, f, diagnostics.ErrT012)
}

// --- Containers ------------------------------------------------------

func TestVecMethods(t *testing.T) {
	f := checkSource(t, `
int f(Vec<int> v) {
    v.push(4)
    var first = v.get(0)
    return first ?? v.len()
}
`)
	expectClean(t, f)
}

func TestMapMethods(t *testing.T) {
	f := checkSource(t, `
int f(Map<int> m) {
    m.insert("a", 1)
    return m.get("a") ?? 0
}
`)
	expectClean(t, f)
}

func TestVecPushWrongElem(t *testing.T) {
	f := checkSource(t, `
void f(Vec<int> v) {
    v.push("no")
}
`)
	expectCode(t, f, diagnostics.ErrT001)
}
