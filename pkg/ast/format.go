package ast

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/vito/oneinfer/pkg/types"
)

const indentString = "\t"

// Formatter prints nodes back as TypeScript-like source. Implicit casts are
// printed exactly like user casts.
type Formatter struct {
	buf    bytes.Buffer
	indent int
}

// Format formats a node and returns the formatted source code
func Format(node Node) string {
	f := &Formatter{}
	f.formatNode(node)
	return f.buf.String()
}

// FormatExpr formats a single expression on one line.
func FormatExpr(expr Expression) string {
	f := &Formatter{}
	f.formatExpr(expr)
	return f.buf.String()
}

func (f *Formatter) write(s string) {
	f.buf.WriteString(s)
}

func (f *Formatter) writef(format string, args ...any) {
	fmt.Fprintf(&f.buf, format, args...)
}

func (f *Formatter) newline() {
	f.buf.WriteByte('\n')
	f.buf.WriteString(strings.Repeat(indentString, f.indent))
}

func (f *Formatter) formatNode(node Node) {
	switch n := node.(type) {
	case *SourceFile:
		for i, fn := range n.Functions {
			if i > 0 {
				f.write("\n")
			}
			f.formatFunction(fn)
			f.write("\n")
		}
		if n.Main != nil {
			if len(n.Functions) > 0 {
				f.write("\n")
			}
			for _, s := range n.Main.Statements {
				f.formatStatement(s)
				f.write("\n")
			}
		}
	case *Function:
		f.formatFunction(n)
	case *Block:
		f.formatBlock(n)
	case Statement:
		f.formatStatement(n)
	case Expression:
		f.formatExpr(n)
	}
}

func (f *Formatter) formatFunction(fn *Function) {
	f.writef("function %s(", fn.Name)
	f.formatParams(fn.Parameters)
	f.write(")")
	if fn.Returns != nil {
		f.writef(": %s", fn.Returns)
	}
	f.write(" ")
	f.formatBlock(fn.Body)
}

func (f *Formatter) formatParams(params []*Parameter) {
	for i, p := range params {
		if i > 0 {
			f.write(", ")
		}
		f.write(p.Name)
		if p.Type != nil {
			f.writef(": %s", p.Type)
		}
	}
}

func (f *Formatter) formatBlock(b *Block) {
	if b == nil || len(b.Statements) == 0 {
		f.write("{}")
		return
	}
	f.write("{")
	f.indent++
	for _, s := range b.Statements {
		f.newline()
		f.formatStatement(s)
	}
	f.indent--
	f.newline()
	f.write("}")
}

func (f *Formatter) formatStatement(stmt Statement) {
	switch s := stmt.(type) {
	case *ExpressionStatement:
		f.formatExpr(s.Expr)
		f.write(";")
	case *VariableDeclaration:
		f.writef("let %s", s.Var.Name)
		if s.Var.Type != nil {
			f.writef(": %s", s.Var.Type)
		}
		if s.Var.Initializer != nil {
			f.write(" = ")
			f.formatExpr(s.Var.Initializer)
		}
		f.write(";")
	case *Return:
		f.write("return")
		if s.Expr != nil {
			f.write(" ")
			f.formatExpr(s.Expr)
		}
		f.write(";")
	case *If:
		f.write("if (")
		f.formatExpr(s.Condition)
		f.write(") ")
		f.formatBlock(s.Then)
		if s.Else != nil {
			f.write(" else ")
			f.formatBlock(s.Else)
		}
	case *While:
		f.write("while (")
		f.formatExpr(s.Condition)
		f.write(") ")
		f.formatBlock(s.Body)
	case *Foreach:
		f.writef("for (const %s of ", s.Var.Name)
		f.formatExpr(s.Items)
		f.write(") ")
		f.formatBlock(s.Body)
	default:
		f.writef("/* unknown statement %T */", stmt)
	}
}

func (f *Formatter) formatOperand(parentOp string, e Expression) {
	needsParens := false
	switch o := e.(type) {
	case *Conditional:
		needsParens = true
	case *Binary:
		needsParens = o.Op != parentOp || o.IsAssignment()
	}
	if needsParens {
		f.write("(")
		f.formatExpr(e)
		f.write(")")
	} else {
		f.formatExpr(e)
	}
}

func (f *Formatter) formatExpr(expr Expression) {
	switch e := expr.(type) {
	case nil:
		f.write("<nil>")
	case *StringLiteral:
		f.write(strconv.Quote(e.Value))
	case *NumericLiteral:
		f.write(e.Value)
	case *BooleanLiteral:
		f.write(strconv.FormatBool(e.Value))
	case *NullLiteral:
		f.write("null")
	case *ArrayLiteral:
		f.write("[")
		for i, item := range e.Items {
			if i > 0 {
				f.write(", ")
			}
			f.formatExpr(item)
		}
		f.write("]")
	case *MapLiteral:
		if len(e.Items) == 0 {
			f.write("{}")
			return
		}
		f.write("{ ")
		for i, item := range e.Items {
			if i > 0 {
				f.write(", ")
			}
			f.writef("%s: ", item.Key)
			f.formatExpr(item.Value)
		}
		f.write(" }")
	case *Lambda:
		f.write("(")
		f.formatParams(e.Parameters)
		f.write(") => ")
		if ret, ok := singleReturn(e.Body); ok {
			f.formatExpr(ret)
		} else {
			f.formatBlock(e.Body)
		}
	case *InstanceOf:
		f.formatOperand("instanceof", e.Expr)
		f.writef(" instanceof %s", typeName(e.CheckType))
	case *Cast:
		f.writef("(<%s>", typeName(e.NewType))
		f.formatExpr(e.Expr)
		f.write(")")
	case *Binary:
		f.formatOperand(e.Op, e.Left)
		f.writef(" %s ", e.Op)
		f.formatOperand(e.Op, e.Right)
	case *Unary:
		f.write(e.Op)
		f.formatOperand(e.Op, e.Operand)
	case *Conditional:
		f.formatOperand("?", e.Condition)
		f.write(" ? ")
		f.formatOperand("?", e.WhenTrue)
		f.write(" : ")
		f.formatOperand("?", e.WhenFalse)
	case *PropertyAccess:
		f.formatOperand(".", e.Object)
		f.writef(".%s", e.Name)
	case *Call:
		f.formatOperand("()", e.Callee)
		f.write("(")
		for i, a := range e.Args {
			if i > 0 {
				f.write(", ")
			}
			f.formatExpr(a)
		}
		f.write(")")
	case *VariableRef:
		f.write(e.Decl.Name)
	case *ParameterRef:
		f.write(e.Decl.Name)
	case *ForeachVariableRef:
		f.write(e.Decl.Name)
	case *InstanceFieldRef:
		if e.Object != nil {
			f.formatOperand(".", e.Object)
		} else {
			f.write("this")
		}
		f.writef(".%s", e.Field.Name)
	case *ThisRef:
		f.write("this")
	case *StaticThisRef:
		f.write(e.Class.Name)
	default:
		f.writef("/* unknown expression %T */", expr)
	}
}

func singleReturn(b *Block) (Expression, bool) {
	if b == nil || len(b.Statements) != 1 {
		return nil, false
	}
	ret, ok := b.Statements[0].(*Return)
	if !ok || ret.Expr == nil {
		return nil, false
	}
	return ret.Expr, true
}

func typeName(t types.Type) string {
	if t == nil {
		return "?"
	}
	return t.String()
}
