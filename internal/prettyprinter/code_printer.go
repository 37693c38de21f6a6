package prettyprinter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Microindole/lency/internal/ast"
)

// CodePrinter renders an AST back to canonical source text. Output is
// re-parseable: parse → print → parse yields a structurally identical
// tree modulo trivia.
type CodePrinter struct {
	sb     strings.Builder
	indent int
}

func NewCodePrinter() *CodePrinter {
	return &CodePrinter{}
}

// Print renders a whole module.
func (cp *CodePrinter) Print(m *ast.Module) string {
	cp.sb.Reset()
	m.Accept(cp)
	return cp.sb.String()
}

// PrintExpr renders a single expression.
func (cp *CodePrinter) PrintExpr(e ast.Expression) string {
	cp.sb.Reset()
	e.Accept(cp)
	return cp.sb.String()
}

func (cp *CodePrinter) write(s string)                        { cp.sb.WriteString(s) }
func (cp *CodePrinter) writef(f string, args ...interface{}) { fmt.Fprintf(&cp.sb, f, args...) }

func (cp *CodePrinter) newline() {
	cp.sb.WriteString("\n")
	cp.sb.WriteString(strings.Repeat("    ", cp.indent))
}

func (cp *CodePrinter) VisitModule(m *ast.Module) {
	for _, imp := range m.Imports {
		imp.Accept(cp)
		cp.newline()
	}
	for i, d := range m.Decls {
		if i > 0 || len(m.Imports) > 0 {
			cp.newline()
		}
		d.Accept(cp)
		cp.newline()
	}
}

func (cp *CodePrinter) VisitImportDeclaration(id *ast.ImportDeclaration) {
	cp.write("import " + id.DottedPath())
}

func (cp *CodePrinter) typeParams(params []*ast.TypeParam) {
	if len(params) == 0 {
		return
	}
	cp.write("<")
	for i, tp := range params {
		if i > 0 {
			cp.write(", ")
		}
		cp.write(tp.Name)
		for j, b := range tp.Bounds {
			if j == 0 {
				cp.write(": ")
			} else {
				cp.write(" + ")
			}
			cp.write(b.Value)
		}
	}
	cp.write(">")
}

func (cp *CodePrinter) params(params []*ast.Param) {
	cp.write("(")
	for i, p := range params {
		if i > 0 {
			cp.write(", ")
		}
		p.Type.Accept(cp)
		cp.write(" " + p.Name.Value)
	}
	cp.write(")")
}

func (cp *CodePrinter) VisitFunctionDeclaration(fd *ast.FunctionDeclaration) {
	if fd.Pub {
		cp.write("pub ")
	}
	if fd.Extern {
		cp.write("extern ")
	}
	fd.ReturnType.Accept(cp)
	cp.write(" " + fd.Name.Value)
	cp.typeParams(fd.TypeParams)
	cp.params(fd.Params)
	if fd.Extern {
		return
	}
	cp.write(" ")
	fd.Body.Accept(cp)
}

func (cp *CodePrinter) VisitStructDeclaration(sd *ast.StructDeclaration) {
	if sd.Pub {
		cp.write("pub ")
	}
	cp.write("struct " + sd.Name.Value)
	cp.typeParams(sd.TypeParams)
	cp.write(" {")
	cp.indent++
	for _, f := range sd.Fields {
		cp.newline()
		f.Type.Accept(cp)
		cp.write(" " + f.Name.Value)
	}
	cp.indent--
	cp.newline()
	cp.write("}")
}

func (cp *CodePrinter) VisitEnumDeclaration(ed *ast.EnumDeclaration) {
	if ed.Pub {
		cp.write("pub ")
	}
	cp.write("enum " + ed.Name.Value)
	cp.typeParams(ed.TypeParams)
	cp.write(" {")
	cp.indent++
	for _, v := range ed.Variants {
		cp.newline()
		cp.write(v.Name.Value)
		if len(v.Params) > 0 {
			cp.write("(")
			for i, t := range v.Params {
				if i > 0 {
					cp.write(", ")
				}
				t.Accept(cp)
			}
			cp.write(")")
		}
	}
	cp.indent--
	cp.newline()
	cp.write("}")
}

func (cp *CodePrinter) VisitTraitDeclaration(td *ast.TraitDeclaration) {
	if td.Pub {
		cp.write("pub ")
	}
	cp.write("trait " + td.Name.Value)
	cp.typeParams(td.TypeParams)
	cp.write(" {")
	cp.indent++
	for _, m := range td.Methods {
		cp.newline()
		m.ReturnType.Accept(cp)
		cp.write(" " + m.Name.Value)
		cp.params(m.Params)
	}
	cp.indent--
	cp.newline()
	cp.write("}")
}

func (cp *CodePrinter) VisitImplDeclaration(id *ast.ImplDeclaration) {
	cp.write("impl")
	cp.typeParams(id.TypeParams)
	cp.write(" ")
	if id.Trait != nil {
		cp.write(id.Trait.Value + " for ")
	}
	id.Target.Accept(cp)
	cp.write(" {")
	cp.indent++
	for _, m := range id.Methods {
		cp.newline()
		m.Accept(cp)
	}
	cp.indent--
	cp.newline()
	cp.write("}")
}

func (cp *CodePrinter) VisitConstDeclaration(cd *ast.ConstDeclaration) {
	if cd.Pub {
		cp.write("pub ")
	}
	cp.write("const ")
	if cd.Type != nil {
		cd.Type.Accept(cp)
		cp.write(" ")
	}
	cp.write(cd.Name.Value + " = ")
	cd.Value.Accept(cp)
}

func (cp *CodePrinter) VisitVarStatement(vs *ast.VarStatement) {
	if vs.Type != nil {
		vs.Type.Accept(cp)
		cp.write(" ")
	} else {
		cp.write("var ")
	}
	cp.write(vs.Name.Value + " = ")
	vs.Value.Accept(cp)
}

func (cp *CodePrinter) VisitAssignStatement(as *ast.AssignStatement) {
	as.Target.Accept(cp)
	cp.write(" = ")
	as.Value.Accept(cp)
}

func (cp *CodePrinter) VisitReturnStatement(rs *ast.ReturnStatement) {
	cp.write("return")
	if rs.Value != nil {
		cp.write(" ")
		rs.Value.Accept(cp)
	}
}

func (cp *CodePrinter) VisitBreakStatement(*ast.BreakStatement)       { cp.write("break") }
func (cp *CodePrinter) VisitContinueStatement(*ast.ContinueStatement) { cp.write("continue") }

func (cp *CodePrinter) VisitIfStatement(is *ast.IfStatement) {
	cp.write("if ")
	is.Cond.Accept(cp)
	cp.write(" ")
	is.Then.Accept(cp)
	if is.Else != nil {
		cp.write(" else ")
		is.Else.Accept(cp)
	}
}

func (cp *CodePrinter) VisitWhileStatement(ws *ast.WhileStatement) {
	cp.write("while ")
	ws.Cond.Accept(cp)
	cp.write(" ")
	ws.Body.Accept(cp)
}

func (cp *CodePrinter) VisitForStatement(fs *ast.ForStatement) {
	cp.write("for " + fs.Var.Value + " in ")
	fs.Iterable.Accept(cp)
	cp.write(" ")
	fs.Body.Accept(cp)
}

func (cp *CodePrinter) VisitExpressionStatement(es *ast.ExpressionStatement) {
	es.Expression.Accept(cp)
}

func (cp *CodePrinter) VisitBlockStatement(bs *ast.BlockStatement) {
	cp.write("{")
	cp.indent++
	for _, s := range bs.Statements {
		cp.newline()
		s.Accept(cp)
	}
	cp.indent--
	cp.newline()
	cp.write("}")
}

func (cp *CodePrinter) VisitIdentifier(i *ast.Identifier)  { cp.write(i.Value) }
func (cp *CodePrinter) VisitIntegerLiteral(il *ast.IntegerLiteral) {
	cp.write(strconv.FormatInt(il.Value, 10))
}
func (cp *CodePrinter) VisitFloatLiteral(fl *ast.FloatLiteral) {
	s := strconv.FormatFloat(fl.Value, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	cp.write(s)
}
func (cp *CodePrinter) VisitStringLiteral(sl *ast.StringLiteral) {
	cp.write(strconv.Quote(sl.Value))
}
func (cp *CodePrinter) VisitBooleanLiteral(bl *ast.BooleanLiteral) {
	cp.write(strconv.FormatBool(bl.Value))
}
func (cp *CodePrinter) VisitNullLiteral(*ast.NullLiteral)     { cp.write("null") }
func (cp *CodePrinter) VisitThisExpression(*ast.ThisExpression) { cp.write("this") }

func (cp *CodePrinter) VisitArrayLiteral(al *ast.ArrayLiteral) {
	cp.write("[")
	for i, el := range al.Elements {
		if i > 0 {
			cp.write(", ")
		}
		el.Accept(cp)
	}
	cp.write("]")
}

func (cp *CodePrinter) VisitPrefixExpression(pe *ast.PrefixExpression) {
	cp.write("(" + pe.Operator)
	pe.Right.Accept(cp)
	cp.write(")")
}

func (cp *CodePrinter) VisitInfixExpression(ie *ast.InfixExpression) {
	cp.write("(")
	ie.Left.Accept(cp)
	cp.write(" " + ie.Operator + " ")
	ie.Right.Accept(cp)
	cp.write(")")
}

func (cp *CodePrinter) VisitFieldAccessExpression(fa *ast.FieldAccessExpression) {
	fa.Receiver.Accept(cp)
	cp.write("." + fa.Field.Value)
}

func (cp *CodePrinter) VisitSafeNavExpression(sn *ast.SafeNavExpression) {
	sn.Receiver.Accept(cp)
	cp.write("?." + sn.Field.Value)
}

func (cp *CodePrinter) VisitElvisExpression(ee *ast.ElvisExpression) {
	cp.write("(")
	ee.Left.Accept(cp)
	cp.write(" ?? ")
	ee.Right.Accept(cp)
	cp.write(")")
}

func (cp *CodePrinter) VisitTryExpression(te *ast.TryExpression) {
	te.Expr.Accept(cp)
	cp.write("?")
}

func (cp *CodePrinter) typeArgs(args []ast.TypeExpr) {
	if len(args) == 0 {
		return
	}
	cp.write("<")
	for i, a := range args {
		if i > 0 {
			cp.write(", ")
		}
		a.Accept(cp)
	}
	cp.write(">")
}

func (cp *CodePrinter) VisitCallExpression(ce *ast.CallExpression) {
	ce.Callee.Accept(cp)
	cp.typeArgs(ce.TypeArgs)
	cp.write("(")
	for i, a := range ce.Args {
		if i > 0 {
			cp.write(", ")
		}
		a.Accept(cp)
	}
	cp.write(")")
}

func (cp *CodePrinter) VisitMethodCallExpression(mc *ast.MethodCallExpression) {
	mc.Receiver.Accept(cp)
	cp.write("." + mc.Method.Value)
	cp.typeArgs(mc.TypeArgs)
	cp.write("(")
	for i, a := range mc.Args {
		if i > 0 {
			cp.write(", ")
		}
		a.Accept(cp)
	}
	cp.write(")")
}

func (cp *CodePrinter) VisitIndexExpression(ie *ast.IndexExpression) {
	ie.Receiver.Accept(cp)
	cp.write("[")
	ie.Index.Accept(cp)
	cp.write("]")
}

func (cp *CodePrinter) VisitStructLiteral(sl *ast.StructLiteral) {
	cp.write(sl.Name.Value)
	cp.typeArgs(sl.TypeArgs)
	cp.write("{")
	for i, f := range sl.Fields {
		if i > 0 {
			cp.write(", ")
		}
		cp.write(f.Name.Value + ": ")
		f.Value.Accept(cp)
	}
	cp.write("}")
}

func (cp *CodePrinter) VisitPathExpression(pe *ast.PathExpression) {
	cp.write(pe.Enum.Value + "::" + pe.Name.Value)
}

func (cp *CodePrinter) VisitMatchExpression(me *ast.MatchExpression) {
	cp.write("match ")
	me.Scrutinee.Accept(cp)
	cp.write(" {")
	cp.indent++
	for _, arm := range me.Arms {
		cp.newline()
		cp.write("case ")
		arm.Pattern.Accept(cp)
		cp.write(" => ")
		arm.Body.Accept(cp)
	}
	cp.indent--
	cp.newline()
	cp.write("}")
}

func (cp *CodePrinter) VisitLiteralPattern(lp *ast.LiteralPattern) {
	lp.Value.Accept(cp)
}

func (cp *CodePrinter) VisitIdentifierPattern(ip *ast.IdentifierPattern) {
	cp.write(ip.Name.Value)
}

func (cp *CodePrinter) VisitWildcardPattern(*ast.WildcardPattern) { cp.write("_") }

func (cp *CodePrinter) VisitVariantPattern(vp *ast.VariantPattern) {
	if vp.Enum != nil {
		cp.write(vp.Enum.Value + "::")
	}
	cp.write(vp.Name.Value)
	if len(vp.Elements) > 0 {
		cp.write("(")
		for i, e := range vp.Elements {
			if i > 0 {
				cp.write(", ")
			}
			e.Accept(cp)
		}
		cp.write(")")
	}
}

func (cp *CodePrinter) VisitNamedType(nt *ast.NamedType) {
	cp.write(nt.Name.Value)
	cp.typeArgs(nt.Args)
}

func (cp *CodePrinter) VisitNullableType(nt *ast.NullableType) {
	nt.Inner.Accept(cp)
	cp.write("?")
}

func (cp *CodePrinter) VisitArrayType(at *ast.ArrayType) {
	cp.write("[")
	at.Elem.Accept(cp)
	cp.writef("; %d]", at.Len)
}
