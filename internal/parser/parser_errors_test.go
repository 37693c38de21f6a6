package parser_test

import (
	"strings"
	"testing"

	"github.com/Microindole/lency/internal/diagnostics"
	"github.com/Microindole/lency/internal/lexer"
	"github.com/Microindole/lency/internal/parser"
	"github.com/Microindole/lency/internal/pipeline"
)

// parseWithErrors runs the lexer+parser and returns every diagnostic.
func parseWithErrors(input string) []*diagnostics.Diagnostic {
	ctx := pipeline.NewContext("test.lcy", input)
	ctx = pipeline.New(&lexer.LexerProcessor{}, &parser.ParserProcessor{}).Run(ctx)
	return ctx.Sink.Diagnostics()
}

// expectError asserts at least one error with the given code.
func expectError(t *testing.T, input string, code diagnostics.ErrorCode) *diagnostics.Diagnostic {
	t.Helper()
	diags := parseWithErrors(input)
	if len(diags) == 0 {
		t.Fatalf("expected error %s, but got none\ninput: %s", code, input)
	}
	for _, d := range diags {
		if d.Code == code {
			return d
		}
	}
	var msgs []string
	for _, d := range diags {
		msgs = append(msgs, d.Error())
	}
	t.Fatalf("expected error %s, got:\n%s\ninput: %s", code, strings.Join(msgs, "\n"), input)
	return nil
}

func expectNoErrors(t *testing.T, input string) {
	t.Helper()
	diags := parseWithErrors(input)
	if len(diags) > 0 {
		var msgs []string
		for _, d := range diags {
			msgs = append(msgs, d.Error())
		}
		t.Fatalf("expected no errors, got:\n%s\ninput: %s", strings.Join(msgs, "\n"), input)
	}
}

func TestP002_MissingParen(t *testing.T) {
	expectError(t, "int f( {\n    return 1\n}", diagnostics.ErrP002)
}

func TestP002_MissingBraceAfterIf(t *testing.T) {
	expectError(t, "int f(bool b) {\n    if b\n        return 1\n    return 0\n}", diagnostics.ErrP002)
}

func TestP003_DanglingOperator(t *testing.T) {
	expectError(t, "int f() {\n    return 1 +\n}", diagnostics.ErrP003)
}

func TestP004_BadPattern(t *testing.T) {
	expectError(t, "int f(C c) {\n    return match c {\n        case + => 1\n    }\n}", diagnostics.ErrP004)
}

func TestP005_DoubleNullable(t *testing.T) {
	expectError(t, "void f(int?? x) {\n}", diagnostics.ErrP005)
}

func TestP001_PubImport(t *testing.T) {
	expectError(t, "pub import std.io", diagnostics.ErrP001)
}

func TestRecoveryYieldsMultipleErrors(t *testing.T) {
	// Two independent statements with errors: recovery at the
	// statement boundary must surface both.
	input := "int f() {\n    var = 5\n    var = 6\n    return 0\n}"
	diags := parseWithErrors(input)
	if len(diags) < 2 {
		t.Fatalf("expected recovery to surface at least 2 errors, got %d", len(diags))
	}
}

func TestNewlineTerminatesStatement(t *testing.T) {
	expectNoErrors(t, "int f() {\n    var x = 1\n    var y = 2\n    return x + y\n}")
}

func TestClosingBraceTerminatesStatement(t *testing.T) {
	expectNoErrors(t, "int f() { return 1 }")
}

func TestConditionDoesNotEatBody(t *testing.T) {
	// `b` followed by `{` must not parse as a struct literal inside
	// an if header.
	expectNoErrors(t, "int f(bool b) {\n    if b {\n        return 1\n    }\n    return 0\n}")
}
