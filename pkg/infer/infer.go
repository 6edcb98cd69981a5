package infer

import (
	"context"

	"github.com/pkg/errors"
	"github.com/vito/oneinfer/pkg/ast"
	"github.com/vito/oneinfer/pkg/diag"
	"github.com/vito/oneinfer/pkg/ioctx"
	"github.com/vito/oneinfer/pkg/types"
)

// Inferrer drives the plugin chain over a whole compilation unit in a
// single walk. Children are inferred before their parents, except lambdas,
// which are dispatched before their body so that their parameters are
// typed by the time the body refers to them.
type Inferrer struct {
	chain *Chain
}

func New(chain *Chain) *Inferrer {
	if chain == nil {
		chain = DefaultChain()
	}
	return &Inferrer{chain: chain}
}

// returnFrame tracks the declared and found return types of the function
// or lambda currently being inferred.
type returnFrame struct {
	declared types.Type
	found    []types.Type
}

type pass struct {
	*Inferrer
	ic      *Context
	returns []*returnFrame
}

// InferFile annotates every expression in file with its actual type. A
// fatal diagnostic aborts the walk and is returned; warnings land in bag.
func (in *Inferrer) InferFile(ctx context.Context, file *ast.SourceFile, parents *ast.Parents, bag *diag.Bag) error {
	if file.LiteralTypes.Array == nil || file.LiteralTypes.Map == nil {
		return bag.Throw(file, "%s does not provide the array and map literal types", file.Path)
	}
	if parents == nil {
		parents = ast.LinkParents(file)
	}

	ctx = ioctx.WithAttrs(ctx, "file", file.Path, "pass", "infer")

	p := &pass{
		Inferrer: in,
		ic:       &Context{File: file, Parents: parents, Diag: bag},
	}

	for _, fn := range file.Functions {
		if err := p.function(ctx, fn); err != nil {
			return err
		}
	}
	if file.Main != nil {
		if err := p.block(ctx, file.Main); err != nil {
			return err
		}
	}
	return nil
}

// InferExpression infers a single detached expression tree.
func (in *Inferrer) InferExpression(ctx context.Context, ic *Context, expr ast.Expression) error {
	p := &pass{Inferrer: in, ic: ic}
	return p.expr(ctx, expr)
}

func (p *pass) function(ctx context.Context, fn *ast.Function) error {
	for _, param := range fn.Parameters {
		if param.Type == nil {
			return p.ic.Diag.Throw(fn, "parameter %s of %s has no type", param.Name, fn.Name)
		}
	}
	p.returns = append(p.returns, &returnFrame{declared: fn.Returns})
	defer func() { p.returns = p.returns[:len(p.returns)-1] }()
	return p.block(ctx, fn.Body)
}

func (p *pass) block(ctx context.Context, b *ast.Block) error {
	if b == nil {
		return nil
	}
	for _, s := range b.Statements {
		if err := p.statement(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func (p *pass) statement(ctx context.Context, stmt ast.Statement) error {
	switch s := stmt.(type) {
	case *ast.ExpressionStatement:
		return p.expr(ctx, s.Expr)

	case *ast.VariableDeclaration:
		v := s.Var
		if v.Initializer == nil {
			if v.Type == nil {
				p.ic.Diag.Warn(s, "Could not determine the type of variable %s, using AnyType instead", v.Name)
				v.Type = types.Any
			}
			return nil
		}
		if v.Type != nil && v.Initializer.ExpectedType() == nil {
			v.Initializer.SetExpectedType(v.Type)
		}
		if err := p.expr(ctx, v.Initializer); err != nil {
			return err
		}
		if v.Type == nil {
			v.Type = v.Initializer.ActualType()
		}
		return nil

	case *ast.Return:
		if s.Expr == nil {
			return nil
		}
		var frame *returnFrame
		if len(p.returns) > 0 {
			frame = p.returns[len(p.returns)-1]
		}
		if frame != nil && frame.declared != nil && s.Expr.ExpectedType() == nil {
			s.Expr.SetExpectedType(frame.declared)
		}
		if err := p.expr(ctx, s.Expr); err != nil {
			return err
		}
		if frame != nil {
			frame.found = append(frame.found, s.Expr.ActualType())
		}
		return nil

	case *ast.If:
		if err := p.expr(ctx, s.Condition); err != nil {
			return err
		}
		if err := p.block(ctx, s.Then); err != nil {
			return err
		}
		return p.block(ctx, s.Else)

	case *ast.While:
		if err := p.expr(ctx, s.Condition); err != nil {
			return err
		}
		return p.block(ctx, s.Body)

	case *ast.Foreach:
		if err := p.expr(ctx, s.Items); err != nil {
			return err
		}
		if s.Var.Type == nil {
			s.Var.Type = p.elementType(s, s.Items.ActualType())
		}
		return p.block(ctx, s.Body)
	}

	return errors.Errorf("unhandled statement %T", stmt)
}

func (p *pass) elementType(node ast.Node, t types.Type) types.Type {
	if ct, ok := t.(*types.ClassType); ok && ct.Decl == p.ic.Literals().Array && len(ct.TypeArgs) == 1 {
		return ct.TypeArgs[0]
	}
	p.ic.Diag.Warn(node, "Could not determine the element type of %s, using AnyType instead", t)
	return types.Any
}

func (p *pass) expr(ctx context.Context, expr ast.Expression) error {
	if expr == nil || expr.ActualType() != nil {
		return nil
	}

	switch e := expr.(type) {
	case *ast.Lambda:
		return p.lambda(ctx, e)

	case *ast.Call:
		if err := p.expr(ctx, e.Callee); err != nil {
			return err
		}
		if lt, ok := e.Callee.ActualType().(*types.LambdaType); ok && len(lt.Params) == len(e.Args) {
			for i, arg := range e.Args {
				if arg.ExpectedType() == nil && lt.Params[i].Type != nil {
					arg.SetExpectedType(lt.Params[i].Type)
				}
			}
		}
		for _, arg := range e.Args {
			if err := p.expr(ctx, arg); err != nil {
				return err
			}
		}

	case *ast.Conditional:
		if err := p.expr(ctx, e.Condition); err != nil {
			return err
		}
		// a literal branch takes its expected type from the other branch,
		// so the other branch goes first
		first, second := e.WhenTrue, e.WhenFalse
		if isContainerLiteral(first) && !isContainerLiteral(second) {
			first, second = second, first
		}
		if err := p.expr(ctx, first); err != nil {
			return err
		}
		if err := p.expr(ctx, second); err != nil {
			return err
		}

	default:
		for _, child := range ast.Children(expr) {
			if ce, ok := child.(ast.Expression); ok {
				if err := p.expr(ctx, ce); err != nil {
					return err
				}
			}
		}
	}

	if err := p.chain.Infer(ctx, p.ic, expr); err != nil {
		return err
	}
	if expr.ActualType() == nil {
		return errors.Errorf("%T at %s was claimed but left untyped", expr, expr.GetSourceLocation())
	}
	return nil
}

func (p *pass) lambda(ctx context.Context, lambda *ast.Lambda) error {
	if err := p.chain.Infer(ctx, p.ic, lambda); err != nil {
		return err
	}

	for _, param := range lambda.Parameters {
		if param.Type == nil {
			p.ic.Diag.Warn(lambda, "Could not determine the type of lambda parameter %s, using AnyType instead", param.Name)
			param.Type = types.Any
		}
	}

	declared := lambda.Returns
	if declared == nil {
		if lt, ok := lambda.ExpectedType().(*types.LambdaType); ok && lt.Return != nil && !lt.Return.Eq(types.Void) {
			declared = lt.Return
		}
	}

	frame := &returnFrame{declared: declared}
	p.returns = append(p.returns, frame)
	err := p.block(ctx, lambda.Body)
	p.returns = p.returns[:len(p.returns)-1]
	if err != nil {
		return err
	}

	ret := lambda.Returns
	if ret == nil {
		ret = p.returnType(lambda, frame.found)
	}

	lt := &types.LambdaType{Return: ret}
	for _, param := range lambda.Parameters {
		lt.Params = append(lt.Params, types.Param{Name: param.Name, Type: param.Type})
	}
	return lambda.SetActualType(lt)
}

func (p *pass) returnType(lambda *ast.Lambda, found []types.Type) types.Type {
	var ret types.Type
	for _, t := range found {
		if ret == nil {
			ret = t
			continue
		}
		ret = commonType(p.ic, lambda, ret, t)
	}
	if ret == nil {
		return types.Void
	}
	return ret
}

func isContainerLiteral(expr ast.Expression) bool {
	switch expr.(type) {
	case *ast.ArrayLiteral, *ast.MapLiteral:
		return true
	}
	return false
}
