package ast

// Children returns the direct child nodes of n in evaluation order.
func Children(n Node) []Node {
	var out []Node
	addExpr := func(e Expression) {
		if e != nil {
			out = append(out, e)
		}
	}
	addBlock := func(b *Block) {
		if b != nil {
			out = append(out, b)
		}
	}

	switch n := n.(type) {
	case *SourceFile:
		for _, fn := range n.Functions {
			out = append(out, fn)
		}
		addBlock(n.Main)
	case *Function:
		addBlock(n.Body)
	case *Block:
		for _, s := range n.Statements {
			out = append(out, s)
		}
	case *ExpressionStatement:
		addExpr(n.Expr)
	case *VariableDeclaration:
		addExpr(n.Var.Initializer)
	case *Return:
		addExpr(n.Expr)
	case *If:
		addExpr(n.Condition)
		addBlock(n.Then)
		addBlock(n.Else)
	case *While:
		addExpr(n.Condition)
		addBlock(n.Body)
	case *Foreach:
		addExpr(n.Items)
		addBlock(n.Body)
	case *ArrayLiteral:
		for _, item := range n.Items {
			addExpr(item)
		}
	case *MapLiteral:
		for _, item := range n.Items {
			addExpr(item.Value)
		}
	case *Lambda:
		addBlock(n.Body)
	case *InstanceOf:
		addExpr(n.Expr)
	case *Cast:
		addExpr(n.Expr)
	case *Binary:
		addExpr(n.Left)
		addExpr(n.Right)
	case *Unary:
		addExpr(n.Operand)
	case *Conditional:
		addExpr(n.Condition)
		addExpr(n.WhenTrue)
		addExpr(n.WhenFalse)
	case *PropertyAccess:
		addExpr(n.Object)
	case *Call:
		addExpr(n.Callee)
		for _, a := range n.Args {
			addExpr(a)
		}
	case *InstanceFieldRef:
		addExpr(n.Object)
	}
	return out
}

// Walk visits n and its descendants depth-first. Returning false from fn
// skips the children of the node just visited.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range Children(n) {
		Walk(c, fn)
	}
}

// Rewriter holds the callbacks used to rebuild a node's children. Expr
// returns the replacement for each child expression; Block is invoked for
// nested blocks, which are never replaced.
type Rewriter struct {
	Expr  func(Expression) Expression
	Block func(*Block)
}

func (r Rewriter) expr(e Expression) Expression {
	if e == nil {
		return nil
	}
	return r.Expr(e)
}

func (r Rewriter) block(b *Block) {
	if b != nil {
		r.Block(b)
	}
}

// Children replaces every child expression of expr, in evaluation order.
func (r Rewriter) Children(expr Expression) {
	switch e := expr.(type) {
	case *ArrayLiteral:
		for i := range e.Items {
			e.Items[i] = r.expr(e.Items[i])
		}
	case *MapLiteral:
		for i := range e.Items {
			e.Items[i].Value = r.expr(e.Items[i].Value)
		}
	case *Lambda:
		r.block(e.Body)
	case *InstanceOf:
		e.Expr = r.expr(e.Expr)
	case *Cast:
		e.Expr = r.expr(e.Expr)
	case *Binary:
		e.Left = r.expr(e.Left)
		e.Right = r.expr(e.Right)
	case *Unary:
		e.Operand = r.expr(e.Operand)
	case *Conditional:
		e.Condition = r.expr(e.Condition)
		e.WhenTrue = r.expr(e.WhenTrue)
		e.WhenFalse = r.expr(e.WhenFalse)
	case *PropertyAccess:
		e.Object = r.expr(e.Object)
	case *Call:
		e.Callee = r.expr(e.Callee)
		for i := range e.Args {
			e.Args[i] = r.expr(e.Args[i])
		}
	case *InstanceFieldRef:
		e.Object = r.expr(e.Object)
	}
}

// Statement replaces the expressions held directly by stmt and visits its
// nested blocks.
func (r Rewriter) Statement(stmt Statement) {
	switch s := stmt.(type) {
	case *ExpressionStatement:
		s.Expr = r.expr(s.Expr)
	case *VariableDeclaration:
		s.Var.Initializer = r.expr(s.Var.Initializer)
	case *Return:
		s.Expr = r.expr(s.Expr)
	case *If:
		s.Condition = r.expr(s.Condition)
		r.block(s.Then)
		r.block(s.Else)
	case *While:
		s.Condition = r.expr(s.Condition)
		r.block(s.Body)
	case *Foreach:
		s.Items = r.expr(s.Items)
		r.block(s.Body)
	}
}
