package infer

import (
	"context"

	"github.com/vito/oneinfer/pkg/ast"
	"github.com/vito/oneinfer/pkg/types"
)

// Literals types scalar literals with the unit's registered literal classes.
type Literals struct{}

var _ Plugin = Literals{}

func (Literals) Name() string { return "Literals" }

func (Literals) CanInfer(expr ast.Expression) bool {
	switch expr.(type) {
	case *ast.StringLiteral, *ast.NumericLiteral, *ast.BooleanLiteral, *ast.NullLiteral:
		return true
	}
	return false
}

func (Literals) Infer(ctx context.Context, ic *Context, expr ast.Expression) (bool, error) {
	switch expr.(type) {
	case *ast.StringLiteral:
		return setLiteral(expr, ic.stringType)
	case *ast.NumericLiteral:
		return setLiteral(expr, ic.numericType)
	case *ast.BooleanLiteral:
		return setLiteral(expr, ic.booleanType)
	case *ast.NullLiteral:
		// null carries no type of its own; the consumer decides
		return setType(expr, types.Any, nil)
	}
	return false, nil
}
