package mono

import (
	"strings"

	"github.com/Microindole/lency/internal/ast"
	"github.com/Microindole/lency/internal/config"
	"github.com/Microindole/lency/internal/diagnostics"
	"github.com/Microindole/lency/internal/token"
)

// verify re-checks the exit invariants: the output carries no generic
// declarations or type parameters, and the declaration set is closed
// under call references. Violations are internal consistency errors.
func (m *Mono) verify(prog *Program) {
	declared := make(map[string]bool)
	for _, name := range []string{
		config.PrintFuncName, config.LenFuncName, config.PanicFuncName,
		config.ReadFileFuncName, config.WriteFileFuncName,
	} {
		declared[name] = true
	}
	for _, d := range prog.Decls {
		if n := declName(d); n != "" {
			declared[n] = true
		}
	}

	for _, d := range prog.Decls {
		switch decl := d.(type) {
		case *ast.FunctionDeclaration:
			if len(decl.TypeParams) > 0 {
				m.consistency(decl.GetToken(), "generic function %q survived monomorphization", decl.Name.Value)
			}
			m.verifyTypeExpr(decl.ReturnType, decl.GetToken())
			for _, p := range decl.Params {
				m.verifyTypeExpr(p.Type, decl.GetToken())
			}
			if decl.Body != nil {
				m.verifyCalls(decl.Body, declared)
			}
		case *ast.StructDeclaration:
			if len(decl.TypeParams) > 0 {
				m.consistency(decl.GetToken(), "generic struct %q survived monomorphization", decl.Name.Value)
			}
			for _, f := range decl.Fields {
				m.verifyTypeExpr(f.Type, decl.GetToken())
			}
		case *ast.EnumDeclaration:
			if len(decl.TypeParams) > 0 {
				m.consistency(decl.GetToken(), "generic enum %q survived monomorphization", decl.Name.Value)
			}
		}
	}
}

// verifyTypeExpr checks that no parameterized named type survived: a
// Named(name, args) with args must have been rewritten to a mangled
// Named(name, []).
func (m *Mono) verifyTypeExpr(te ast.TypeExpr, at token.Token) {
	switch t := te.(type) {
	case *ast.NamedType:
		if len(t.Args) > 0 {
			m.consistency(at, "parameterized type %q survived monomorphization", t.Name.Value)
		}
	case *ast.NullableType:
		m.verifyTypeExpr(t.Inner, at)
	case *ast.ArrayType:
		m.verifyTypeExpr(t.Elem, at)
	}
}

// verifyCalls walks a body asserting every named call resolves to an
// emitted declaration, a builtin, or a runtime container method.
func (m *Mono) verifyCalls(block *ast.BlockStatement, declared map[string]bool) {
	var walkExpr func(e ast.Expression)
	var walkStmt func(s ast.Statement)

	walkExpr = func(e ast.Expression) {
		switch ex := e.(type) {
		case *ast.CallExpression:
			if ident, ok := ex.Callee.(*ast.Identifier); ok {
				if !declared[ident.Value] && !isRuntimeContainerCall(ident.Value) {
					m.sink.Errorf(diagnostics.ErrC002, ident.Token.Span,
						"call to %q has no declaration in the monomorphized program", ident.Value)
				}
			}
			walkExpr(ex.Callee)
			for _, a := range ex.Args {
				walkExpr(a)
			}
		case *ast.MethodCallExpression:
			m.consistency(ex.Method.Token,
				"method call %q survived monomorphization", ex.Method.Value)
		case *ast.PrefixExpression:
			walkExpr(ex.Right)
		case *ast.InfixExpression:
			walkExpr(ex.Left)
			walkExpr(ex.Right)
		case *ast.FieldAccessExpression:
			walkExpr(ex.Receiver)
		case *ast.SafeNavExpression:
			walkExpr(ex.Receiver)
		case *ast.ElvisExpression:
			walkExpr(ex.Left)
			walkExpr(ex.Right)
		case *ast.TryExpression:
			walkExpr(ex.Expr)
		case *ast.IndexExpression:
			walkExpr(ex.Receiver)
			walkExpr(ex.Index)
		case *ast.ArrayLiteral:
			for _, el := range ex.Elements {
				walkExpr(el)
			}
		case *ast.StructLiteral:
			for _, f := range ex.Fields {
				walkExpr(f.Value)
			}
		case *ast.MatchExpression:
			walkExpr(ex.Scrutinee)
			for _, arm := range ex.Arms {
				walkExpr(arm.Body)
			}
		}
	}

	walkStmt = func(s ast.Statement) {
		switch st := s.(type) {
		case *ast.VarStatement:
			walkExpr(st.Value)
		case *ast.AssignStatement:
			walkExpr(st.Target)
			walkExpr(st.Value)
		case *ast.ReturnStatement:
			if st.Value != nil {
				walkExpr(st.Value)
			}
		case *ast.IfStatement:
			walkExpr(st.Cond)
			for _, inner := range st.Then.Statements {
				walkStmt(inner)
			}
			if st.Else != nil {
				walkStmt(st.Else)
			}
		case *ast.WhileStatement:
			walkExpr(st.Cond)
			for _, inner := range st.Body.Statements {
				walkStmt(inner)
			}
		case *ast.ForStatement:
			walkExpr(st.Iterable)
			for _, inner := range st.Body.Statements {
				walkStmt(inner)
			}
		case *ast.BlockStatement:
			for _, inner := range st.Statements {
				walkStmt(inner)
			}
		case *ast.ExpressionStatement:
			walkExpr(st.Expression)
		}
	}

	for _, s := range block.Statements {
		walkStmt(s)
	}
}

// isRuntimeContainerCall recognizes specialized Vec/Map method names,
// which the backend lowers onto the runtime ABI instead of emitted
// declarations.
func isRuntimeContainerCall(name string) bool {
	return strings.HasPrefix(name, config.VecTypeName+"__") ||
		strings.HasPrefix(name, config.MapTypeName+"__")
}

func (m *Mono) consistency(at token.Token, format string, args ...interface{}) {
	m.sink.Errorf(diagnostics.ErrC001, at.Span, format, args...)
}
