package infer

import (
	"context"

	"github.com/vito/oneinfer/pkg/ast"
	"github.com/vito/oneinfer/pkg/diag"
	"github.com/vito/oneinfer/pkg/types"
)

// Plugin is one independent inference strategy. The chain asks each plugin
// in registration order whether it can infer an expression; the first one
// that claims it is responsible for it.
type Plugin interface {
	Name() string
	CanInfer(ast.Expression) bool

	// Infer computes the type of a claimed expression. Returning false
	// without an error means the plugin failed to produce a type, which the
	// chain treats as a hard error.
	Infer(context.Context, *Context, ast.Expression) (bool, error)
}

// Context is the per-unit state shared by all plugins during one inference
// pass.
type Context struct {
	File    *ast.SourceFile
	Parents *ast.Parents
	Diag    *diag.Bag
}

// ExpectedType returns expr's expected type, propagating one from its
// parent the first time it is needed.
func (ic *Context) ExpectedType(expr ast.Expression) types.Type {
	return PropagateExpected(ic, expr)
}

// Literals returns the unit's literal type registry.
func (ic *Context) Literals() ast.LiteralTypes {
	return ic.File.LiteralTypes
}

// literalType returns the unparameterized class type of a literal
// registry entry.
func (ic *Context) literalType(node ast.Node, cls *types.Class, what string) (types.Type, error) {
	if cls == nil {
		return nil, ic.Diag.Throw(node, "no %s literal type is registered for %s", what, ic.File.Path)
	}
	return types.NewClassType(cls), nil
}

func (ic *Context) booleanType(node ast.Node) (types.Type, error) {
	return ic.literalType(node, ic.Literals().Boolean, "boolean")
}

func (ic *Context) stringType(node ast.Node) (types.Type, error) {
	return ic.literalType(node, ic.Literals().String, "string")
}

func (ic *Context) numericType(node ast.Node) (types.Type, error) {
	return ic.literalType(node, ic.Literals().Numeric, "numeric")
}

// setLiteral sets expr's type to the registered literal class literal
// returns for it.
func setLiteral(expr ast.Expression, literal func(ast.Node) (types.Type, error)) (bool, error) {
	t, err := literal(expr)
	return setType(expr, t, err)
}

// setType is the common tail of most plugins.
func setType(expr ast.Expression, t types.Type, err error) (bool, error) {
	if err != nil {
		return false, err
	}
	if t == nil {
		return false, nil
	}
	if err := expr.SetActualType(t); err != nil {
		return false, err
	}
	return true, nil
}
