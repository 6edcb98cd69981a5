package infer

import (
	"context"

	"github.com/vito/oneinfer/pkg/ast"
	"github.com/vito/oneinfer/pkg/types"
)

// LambdaParams fills in untyped lambda parameters from the lambda's
// expected type and checks declared ones against it. It never sets the
// lambda's actual type; that follows from the declaration once the body has
// been inferred.
type LambdaParams struct{}

var _ Plugin = LambdaParams{}

func (LambdaParams) Name() string { return "LambdaParams" }

func (LambdaParams) CanInfer(expr ast.Expression) bool {
	_, ok := expr.(*ast.Lambda)
	return ok
}

func (LambdaParams) Infer(ctx context.Context, ic *Context, expr ast.Expression) (bool, error) {
	lambda := expr.(*ast.Lambda)

	expected := ic.ExpectedType(lambda)
	if expected == nil {
		return true, nil
	}

	lt, ok := expected.(*types.LambdaType)
	if !ok {
		return false, ic.Diag.Throw(lambda, "Expected LambdaType as Lambda's type, got %s!", expected)
	}

	if len(lt.Params) != len(lambda.Parameters) {
		return false, ic.Diag.Throw(lambda, "Expected %d parameters for lambda, but got %d!",
			len(lambda.Parameters), len(lt.Params))
	}

	for i, param := range lambda.Parameters {
		want := lt.Params[i].Type
		if param.Type == nil {
			param.Type = want
		} else if !types.AssignableTo(param.Type, want) {
			return false, ic.Diag.Throw(lambda, "Parameter type %s cannot be assigned to %s.", param.Type, want)
		}
	}

	return true, nil
}
