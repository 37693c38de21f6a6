package parser_test

import (
	"strings"
	"testing"

	"github.com/Microindole/lency/internal/ast"
	"github.com/Microindole/lency/internal/lexer"
	"github.com/Microindole/lency/internal/parser"
	"github.com/Microindole/lency/internal/pipeline"
	"github.com/Microindole/lency/internal/prettyprinter"
)

func parse(t *testing.T, input string) *ast.Module {
	t.Helper()
	ctx := pipeline.NewContext("test.lcy", input)
	ctx = pipeline.New(&lexer.LexerProcessor{}, &parser.ParserProcessor{}).Run(ctx)
	if ctx.Sink.HasErrors() {
		var msgs []string
		for _, d := range ctx.Sink.Diagnostics() {
			msgs = append(msgs, d.Error())
		}
		t.Fatalf("parsing failed:\n%s\ninput: %s", strings.Join(msgs, "\n"), input)
	}
	return ctx.AstRoot
}

func TestParser(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{"function_basic", "int add(int x, int y) {\n    return x + y\n}"},
		{"function_void", "void noop() {\n}"},
		{"function_generic", "void run<T: Greet>(T x) {\n    x.g()\n}"},
		{"var_inferred", "int main() {\n    var x = 5\n    return x\n}"},
		{"var_typed", "int main() {\n    int x = 5\n    return x\n}"},
		{"var_nullable", "int main() {\n    string? s = null\n    return 0\n}"},
		{"assignment", "int main() {\n    var x = 1\n    x = 2\n    return x\n}"},
		{"field_assignment", "void f(P p) {\n    p.x = 2\n}"},
		{"if_else", "int f(bool b) {\n    if b {\n        return 1\n    } else {\n        return 2\n    }\n}"},
		{"if_elseif", "int f(int x) {\n    if x > 1 {\n        return 1\n    } else if x > 0 {\n        return 2\n    } else {\n        return 3\n    }\n}"},
		{"null_guard", "int f(string? s) {\n    if s != null {\n        return len(s)\n    }\n    return 0\n}"},
		{"while_loop", "void f() {\n    while true {\n        break\n    }\n}"},
		{"for_loop", "void f(Vec<int> v) {\n    for x in v {\n        print(\"a\")\n    }\n}"},
		{"struct_decl", "struct Point {\n    int x\n    int y\n}"},
		{"struct_generic", "struct Box<T> {\n    T v\n}"},
		{"struct_literal", "int main() {\n    var b = Box<int>{v: 7}\n    return b.v\n}"},
		{"struct_literal_plain", "int main() {\n    var u = U{}\n    return 0\n}"},
		{"enum_decl", "enum Color {\n    Red\n    Green\n    Blue\n}"},
		{"enum_payload", "enum Shape {\n    Circle(float)\n    Rect(float, float)\n}"},
		{"trait_decl", "trait Greet {\n    void g()\n}"},
		{"impl_inherent", "impl Point {\n    int getX() {\n        return this.x\n    }\n}"},
		{"impl_trait", "impl Greet for U {\n    void g() {\n    }\n}"},
		{"impl_generic", "impl<T> Box<T> {\n    T get() {\n        return this.v\n    }\n}"},
		{"const_decl", "const MAX = 100"},
		{"const_typed", "const int MAX = 100"},
		{"extern_decl", "extern int putchar(int c)"},
		{"import_decl", "import std.io"},
		{"pub_fn", "pub int f() {\n    return 1\n}"},
		{"match_expr", "int f(Color c) {\n    return match c {\n        case Red => 1\n        case _ => 2\n    }\n}"},
		{"match_payload", "int f(Opt o) {\n    return match o {\n        case Some(v) => v\n        case None => 0\n    }\n}"},
		{"match_qualified", "int f(Color c) {\n    return match c {\n        case Color::Red => 1\n        case _ => 0\n    }\n}"},
		{"safe_nav", "int f(Point? p) {\n    var x = p?.x\n    return 0\n}"},
		{"elvis", "int f(int? x) {\n    return x ?? 0\n}"},
		{"try_op", "int f() {\n    var r = g()?\n    return r\n}"},
		{"generic_call", "int main() {\n    run<U>(u)\n    return 0\n}"},
		{"turbofish_call", "int main() {\n    run::<U>(u)\n    return 0\n}"},
		{"enum_path_call", "Opt f() {\n    return Opt::Some(1)\n}"},
		{"array_literal", "int main() {\n    var a = [1, 2, 3]\n    return a[0]\n}"},
		{"array_type", "void f([int; 3] a) {\n}"},
		{"precedence", "int f() {\n    return 1 + 2 * 3 - 4\n}"},
		{"logical", "bool f(bool a, bool b) {\n    return a && b || !a\n}"},
		{"comparison_not_generic", "bool f(int a, int b, int c) {\n    return a < b\n}"},
		{"string_concat", "string f(string a, string b) {\n    return a + b\n}"},
	}

	printer := prettyprinter.NewCodePrinter()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			first := parse(t, tc.input)
			printed := printer.Print(first)

			// Round-trip law: parse -> print -> parse is stable
			// modulo trivia.
			second := parse(t, printed)
			reprinted := printer.Print(second)
			if printed != reprinted {
				t.Fatalf("round-trip mismatch:\nfirst print:\n%s\nsecond print:\n%s", printed, reprinted)
			}
		})
	}
}

func TestEnumTagsAssignedInOrder(t *testing.T) {
	mod := parse(t, "enum C {\n    A\n    B\n    X\n}")
	ed := mod.Decls[0].(*ast.EnumDeclaration)
	for i, v := range ed.Variants {
		if v.Tag != i {
			t.Fatalf("variant %s: tag %d, want %d", v.Name.Value, v.Tag, i)
		}
	}
}

func TestComparisonStaysComparison(t *testing.T) {
	mod := parse(t, "bool f(int a, int b) {\n    return a < b\n}")
	fd := mod.Decls[0].(*ast.FunctionDeclaration)
	ret := fd.Body.Statements[0].(*ast.ReturnStatement)
	infix, ok := ret.Value.(*ast.InfixExpression)
	if !ok || infix.Operator != "<" {
		t.Fatalf("expected comparison, got %T", ret.Value)
	}
}

func TestGenericCallStaysCall(t *testing.T) {
	mod := parse(t, "int main() {\n    run<U>(u)\n    return 0\n}")
	fd := mod.Decls[0].(*ast.FunctionDeclaration)
	es := fd.Body.Statements[0].(*ast.ExpressionStatement)
	call, ok := es.Expression.(*ast.CallExpression)
	if !ok {
		t.Fatalf("expected call, got %T", es.Expression)
	}
	if len(call.TypeArgs) != 1 {
		t.Fatalf("expected 1 type arg, got %d", len(call.TypeArgs))
	}
}

func TestElvisRightAssociative(t *testing.T) {
	mod := parse(t, "int f(int? a, int? b) {\n    return a ?? b ?? 0\n}")
	fd := mod.Decls[0].(*ast.FunctionDeclaration)
	ret := fd.Body.Statements[0].(*ast.ReturnStatement)
	outer, ok := ret.Value.(*ast.ElvisExpression)
	if !ok {
		t.Fatalf("expected elvis, got %T", ret.Value)
	}
	if _, ok := outer.Right.(*ast.ElvisExpression); !ok {
		t.Fatalf("expected right-associative elvis, right is %T", outer.Right)
	}
}
