package lexer

import (
	"strings"

	"github.com/Microindole/lency/internal/diagnostics"
	"github.com/Microindole/lency/internal/pipeline"
	"github.com/Microindole/lency/internal/token"
)

type LexerProcessor struct{}

// Process tokenizes ctx.SourceCode. ILLEGAL tokens become sink
// diagnostics and are dropped from the stream so the parser only sees
// well-formed tokens; lexing itself already recovered past them.
func (lp *LexerProcessor) Process(ctx *pipeline.Context) *pipeline.Context {
	l := New(ctx.FilePath, ctx.SourceCode)

	var clean []token.Token
	for _, tok := range l.Tokenize() {
		if tok.Type == token.ILLEGAL {
			msg, _ := tok.Literal.(string)
			code := diagnostics.ErrL003
			switch {
			case strings.HasPrefix(msg, "unterminated"):
				code = diagnostics.ErrL001
			case strings.HasPrefix(msg, "invalid escape"):
				code = diagnostics.ErrL002
			case strings.Contains(msg, "literal"):
				code = diagnostics.ErrL004
			}
			ctx.Sink.Errorf(code, tok.Span, "%s", msg)
			continue
		}
		clean = append(clean, tok)
	}

	ctx.Tokens = clean
	return ctx
}
