package diagnostics

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Microindole/lency/internal/token"
)

func span(file string, start, line, col int) token.Span {
	return token.Span{File: file, Start: start, End: start + 3, Line: line, Column: col}
}

func TestSinkAccumulatesAndSorts(t *testing.T) {
	sink := NewSink()
	sink.Errorf(ErrT001, span("b.lcy", 10, 2, 1), "second file")
	sink.Errorf(ErrT001, span("a.lcy", 50, 5, 1), "later in first file")
	sink.Errorf(ErrT001, span("a.lcy", 10, 2, 1), "earlier in first file")

	sorted := sink.Diagnostics()
	if sorted[0].Span.File != "a.lcy" || sorted[0].Span.Start != 10 {
		t.Fatalf("sorting broken: first is %v", sorted[0])
	}
	if sorted[1].Span.File != "a.lcy" || sorted[1].Span.Start != 50 {
		t.Fatalf("sorting broken: second is %v", sorted[1])
	}
	if sorted[2].Span.File != "b.lcy" {
		t.Fatalf("sorting broken: third is %v", sorted[2])
	}
}

func TestHasErrorsLevels(t *testing.T) {
	sink := NewSink()
	sink.Warnf(WarnT101, span("a.lcy", 0, 1, 1), "just a warning")
	if sink.HasErrors() {
		t.Fatal("warnings must not count as errors")
	}
	sink.Errorf(ErrT001, span("a.lcy", 5, 1, 6), "an error")
	if !sink.HasErrors() {
		t.Fatal("errors must count")
	}
}

func TestStrictPromotesWarnings(t *testing.T) {
	sink := NewSink()
	sink.SetStrict(true)
	sink.Warnf(WarnT101, span("a.lcy", 0, 1, 1), "warning")
	if !sink.HasErrors() {
		t.Fatal("strict mode must promote warnings")
	}
}

func TestRenderFormat(t *testing.T) {
	src := "var x = foo\nvar y = 2\n"
	sink := NewSink()
	d := NewErrorAt(ErrR001, token.Span{File: "main.lcy", Start: 8, End: 11, Line: 1, Column: 9},
		"unresolved name %q", "foo")
	d.WithNote("did you forget an import?")
	d.WithHelp("declare it first")
	sink.Add(d)

	var buf bytes.Buffer
	r := NewRenderer(&buf)
	r.AddSource("main.lcy", src)
	if errs := r.Render(sink); errs != 1 {
		t.Fatalf("expected 1 rendered error, got %d", errs)
	}

	out := buf.String()
	for _, want := range []string{
		"main.lcy:1:9: error: unresolved name \"foo\"",
		"var x = foo",
		"^^^",
		"note: did you forget an import?",
		"help: declare it first",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("rendered output missing %q:\n%s", want, out)
		}
	}

	// Caret sits under the offending token.
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "^^^") {
			if !strings.HasPrefix(strings.TrimRight(line, "^"), "    "+strings.Repeat(" ", 8)) {
				t.Fatalf("caret misaligned: %q", line)
			}
		}
	}
}

func TestByCode(t *testing.T) {
	sink := NewSink()
	sink.Errorf(ErrT001, span("a.lcy", 0, 1, 1), "one")
	sink.Errorf(ErrT008, span("a.lcy", 5, 1, 6), "two")
	sink.Errorf(ErrT001, span("a.lcy", 9, 1, 10), "three")
	if got := len(sink.ByCode(ErrT001)); got != 2 {
		t.Fatalf("ByCode(T001) = %d, want 2", got)
	}
}
