package lexer_test

import (
	"testing"

	"github.com/Microindole/lency/internal/diagnostics"
	"github.com/Microindole/lency/internal/lexer"
	"github.com/Microindole/lency/internal/pipeline"
	"github.com/Microindole/lency/internal/token"
)

func tokenize(input string) []token.Token {
	return lexer.New("test.lcy", input).Tokenize()
}

func types(toks []token.Token) []token.TokenType {
	out := make([]token.TokenType, len(toks))
	for i, t := range toks {
		out[i] = t.Type
	}
	return out
}

func expectTypes(t *testing.T, input string, want ...token.TokenType) {
	t.Helper()
	got := types(tokenize(input))
	want = append(want, token.EOF)
	if len(got) != len(want) {
		t.Fatalf("token count mismatch for %q:\ngot  %v\nwant %v", input, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d for %q: got %v, want %v\nall: %v", i, input, got[i], want[i], got)
		}
	}
}

func TestBasicTokens(t *testing.T) {
	expectTypes(t, "var x = 5",
		token.VAR, token.IDENT, token.ASSIGN, token.INT)
	expectTypes(t, "int f() { return 2 + 3 }",
		token.IDENT, token.IDENT, token.LPAREN, token.RPAREN, token.LBRACE,
		token.RETURN, token.INT, token.PLUS, token.INT, token.RBRACE)
}

func TestNullableOperators(t *testing.T) {
	expectTypes(t, "a?.b", token.IDENT, token.SAFE_NAV, token.IDENT)
	expectTypes(t, "a ?? b", token.IDENT, token.NULL_COALESCE, token.IDENT)
	expectTypes(t, "a?", token.IDENT, token.QUESTION)
	expectTypes(t, "string? s", token.IDENT, token.QUESTION, token.IDENT)
}

func TestPathAndTurbofish(t *testing.T) {
	expectTypes(t, "C::A", token.IDENT, token.PATH_SEP, token.IDENT)
	expectTypes(t, "f::<int>(0)",
		token.IDENT, token.TURBOFISH, token.IDENT, token.GT,
		token.LPAREN, token.INT, token.RPAREN)
	expectTypes(t, "case _ => 1", token.CASE, token.IDENT, token.FAT_ARROW, token.INT)
}

func TestNewlinesCollapse(t *testing.T) {
	expectTypes(t, "a\n\n\nb", token.IDENT, token.NEWLINE, token.IDENT)
	// Comment-only lines collapse into the surrounding separator.
	expectTypes(t, "a\n// note\n\nb", token.IDENT, token.NEWLINE, token.IDENT)
	// Windows line endings.
	expectTypes(t, "a\r\nb", token.IDENT, token.NEWLINE, token.IDENT)
}

func TestLeadingNewlinesSkipped(t *testing.T) {
	expectTypes(t, "\n\nvar x = 1", token.VAR, token.IDENT, token.ASSIGN, token.INT)
}

func TestComments(t *testing.T) {
	expectTypes(t, "x // trailing comment", token.IDENT)
	expectTypes(t, "// whole line\nx", token.IDENT)
}

func TestNumbers(t *testing.T) {
	toks := tokenize("42 3.14")
	if toks[0].Type != token.INT || toks[0].Literal.(int64) != 42 {
		t.Fatalf("expected INT 42, got %v %v", toks[0].Type, toks[0].Literal)
	}
	if toks[1].Type != token.FLOAT || toks[1].Literal.(float64) != 3.14 {
		t.Fatalf("expected FLOAT 3.14, got %v %v", toks[1].Type, toks[1].Literal)
	}
}

func TestStringEscapes(t *testing.T) {
	toks := tokenize(`"a\n\t\r\\\"z"`)
	if toks[0].Type != token.STRING {
		t.Fatalf("expected STRING, got %v", toks[0].Type)
	}
	if got := toks[0].Literal.(string); got != "a\n\t\r\\\"z" {
		t.Fatalf("unexpected string value %q", got)
	}
}

func TestSpans(t *testing.T) {
	toks := tokenize("var xyz = 1")
	x := toks[1]
	if x.Span.Start != 4 || x.Span.End != 7 {
		t.Fatalf("span of %q: got [%d,%d), want [4,7)", x.Lexeme, x.Span.Start, x.Span.End)
	}
	if x.Span.Line != 1 || x.Span.Column != 5 {
		t.Fatalf("position of %q: got %d:%d, want 1:5", x.Lexeme, x.Span.Line, x.Span.Column)
	}
}

func lexErrors(input string) (*pipeline.Context, []*diagnostics.Diagnostic) {
	ctx := pipeline.NewContext("test.lcy", input)
	ctx = (&lexer.LexerProcessor{}).Process(ctx)
	return ctx, ctx.Sink.Diagnostics()
}

func TestUnterminatedString(t *testing.T) {
	_, diags := lexErrors("var s = \"abc")
	if len(diags) != 1 || diags[0].Code != diagnostics.ErrL001 {
		t.Fatalf("expected one L001, got %v", diags)
	}
}

func TestInvalidEscape(t *testing.T) {
	_, diags := lexErrors(`var s = "a\qb"`)
	if len(diags) != 1 || diags[0].Code != diagnostics.ErrL002 {
		t.Fatalf("expected one L002, got %v", diags)
	}
}

func TestUnknownCharacterRecovers(t *testing.T) {
	ctx, diags := lexErrors("var x = 5\n@@@ var y = 6")
	if len(diags) != 1 || diags[0].Code != diagnostics.ErrL003 {
		t.Fatalf("expected one L003 (recovery collapses the run), got %v", diags)
	}
	// Lexing continued after the bad run.
	sawY := false
	for _, tok := range ctx.Tokens {
		if tok.Type == token.IDENT && tok.Lexeme == "y" {
			sawY = true
		}
	}
	if !sawY {
		t.Fatal("lexer did not recover past the unknown characters")
	}
}
