package infer

import (
	"context"

	"github.com/vito/oneinfer/pkg/ast"
	"github.com/vito/oneinfer/pkg/types"
)

// Casts types explicit casts with their target type and instanceof tests
// as booleans.
type Casts struct{}

var _ Plugin = Casts{}

func (Casts) Name() string { return "Casts" }

func (Casts) CanInfer(expr ast.Expression) bool {
	switch expr.(type) {
	case *ast.Cast, *ast.InstanceOf:
		return true
	}
	return false
}

func (Casts) Infer(ctx context.Context, ic *Context, expr ast.Expression) (bool, error) {
	switch e := expr.(type) {
	case *ast.Cast:
		return setType(e, e.NewType, nil)
	case *ast.InstanceOf:
		return setLiteral(e, ic.booleanType)
	}
	return false, nil
}

// Operators types unary, binary and conditional expressions.
type Operators struct{}

var _ Plugin = Operators{}

func (Operators) Name() string { return "Operators" }

func (Operators) CanInfer(expr ast.Expression) bool {
	switch expr.(type) {
	case *ast.Unary, *ast.Binary, *ast.Conditional:
		return true
	}
	return false
}

func (Operators) Infer(ctx context.Context, ic *Context, expr ast.Expression) (bool, error) {
	switch e := expr.(type) {
	case *ast.Unary:
		switch e.Op {
		case "!":
			return setLiteral(e, ic.booleanType)
		case "-", "+":
			return setLiteral(e, ic.numericType)
		}
		return false, ic.Diag.Throw(e, "unknown unary operator %s", e.Op)

	case *ast.Binary:
		switch e.Op {
		case "=":
			return setType(e, e.Left.ActualType(), nil)
		case "&&", "||", "==", "!=", "===", "!==", "<", ">", "<=", ">=":
			return setLiteral(e, ic.booleanType)
		case "+":
			str := ic.Literals().String
			if isClass(e.Left.ActualType(), str) || isClass(e.Right.ActualType(), str) {
				return setLiteral(e, ic.stringType)
			}
			return setLiteral(e, ic.numericType)
		case "-", "*", "/", "%":
			return setLiteral(e, ic.numericType)
		}
		return false, ic.Diag.Throw(e, "unknown binary operator %s", e.Op)

	case *ast.Conditional:
		return setType(e, commonType(ic, e, e.WhenTrue.ActualType(), e.WhenFalse.ActualType()), nil)
	}
	return false, nil
}

func isClass(t types.Type, decl *types.Class) bool {
	ct, ok := t.(*types.ClassType)
	return ok && decl != nil && ct.Decl == decl
}

// commonType picks the type both branches can be seen as. Unrelated
// branches degrade to Any with a warning.
func commonType(ic *Context, node ast.Expression, a, b types.Type) types.Type {
	switch {
	case types.Equal(a, b):
		return a
	case types.AssignableTo(a, b):
		return b
	case types.AssignableTo(b, a):
		return a
	}
	ic.Diag.Warn(node, "Could not determine a common type for %s and %s, using AnyType instead", a, b)
	return types.Any
}

// Calls types calls to function values with the callee's return type.
type Calls struct{}

var _ Plugin = Calls{}

func (Calls) Name() string { return "Calls" }

func (Calls) CanInfer(expr ast.Expression) bool {
	_, ok := expr.(*ast.Call)
	return ok
}

func (Calls) Infer(ctx context.Context, ic *Context, expr ast.Expression) (bool, error) {
	call := expr.(*ast.Call)

	calleeType := call.Callee.ActualType()
	if _, ok := calleeType.(types.AnyType); ok {
		return setType(call, types.Any, nil)
	}

	lt, ok := calleeType.(*types.LambdaType)
	if !ok {
		return false, ic.Diag.Throw(call, "%s is not callable", calleeType)
	}
	if len(lt.Params) != len(call.Args) {
		return false, ic.Diag.Throw(call, "expected %d arguments, but got %d", len(lt.Params), len(call.Args))
	}
	ret := lt.Return
	if ret == nil {
		ret = types.Void
	}
	return setType(call, ret, nil)
}
