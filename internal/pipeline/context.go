package pipeline

import (
	"github.com/Microindole/lency/internal/ast"
	"github.com/Microindole/lency/internal/diagnostics"
	"github.com/Microindole/lency/internal/token"
)

// Context carries one source file through the per-file stages
// (lexing, parsing). Module-level state lives in the driver.
type Context struct {
	FilePath   string
	SourceCode string

	Tokens  []token.Token
	AstRoot *ast.Module

	Sink *diagnostics.Sink
}

// NewContext builds a context with a fresh sink.
func NewContext(filePath, source string) *Context {
	return &Context{
		FilePath:   filePath,
		SourceCode: source,
		Sink:       diagnostics.NewSink(),
	}
}

// Processor is one stage of the per-file pipeline.
type Processor interface {
	Process(ctx *Context) *Context
}
