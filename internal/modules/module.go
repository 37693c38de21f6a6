package modules

import (
	"github.com/Microindole/lency/internal/ast"
)

// Module is one loaded source file exposed under its dotted import
// path. The root file has path "".
type Module struct {
	Path string // dotted import path ("a.b.c"), "" for the root
	File string // filesystem path
	Ast  *ast.Module

	// Deps are the modules this one imports, in import order.
	Deps []*Module
}
