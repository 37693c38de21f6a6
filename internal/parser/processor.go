package parser

import (
	"github.com/Microindole/lency/internal/diagnostics"
	"github.com/Microindole/lency/internal/pipeline"
	"github.com/Microindole/lency/internal/token"
)

type ParserProcessor struct{}

func (pp *ParserProcessor) Process(ctx *pipeline.Context) *pipeline.Context {
	if ctx.Tokens == nil {
		// Safeguard; the lexer stage always runs first.
		ctx.Sink.Add(diagnostics.NewError(diagnostics.ErrP001, token.Token{}, "parser: token stream is nil"))
		return ctx
	}

	p := New(ctx.Tokens, ctx.Sink)
	ctx.AstRoot = p.ParseModule(ctx.FilePath)
	return ctx
}
