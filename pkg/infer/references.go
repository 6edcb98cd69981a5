package infer

import (
	"context"

	"github.com/vito/oneinfer/pkg/ast"
	"github.com/vito/oneinfer/pkg/types"
)

// References types resolved references from the declarations they point
// at.
type References struct{}

var _ Plugin = References{}

func (References) Name() string { return "References" }

func (References) CanInfer(expr ast.Expression) bool {
	return ast.IsReference(expr)
}

func (References) Infer(ctx context.Context, ic *Context, expr ast.Expression) (bool, error) {
	switch ref := expr.(type) {
	case *ast.VariableRef:
		if ref.Decl.Type == nil {
			return false, ic.Diag.Throw(ref, "variable %s is used before its type is known", ref.Decl.Name)
		}
		return setType(ref, ref.Decl.Type, nil)

	case *ast.ParameterRef:
		if ref.Decl.Type == nil {
			return false, ic.Diag.Throw(ref, "parameter %s has no type", ref.Decl.Name)
		}
		return setType(ref, ref.Decl.Type, nil)

	case *ast.ForeachVariableRef:
		if ref.Decl.Type == nil {
			return false, ic.Diag.Throw(ref, "loop variable %s has no type", ref.Decl.Name)
		}
		return setType(ref, ref.Decl.Type, nil)

	case *ast.InstanceFieldRef:
		t := ref.Field.Type
		if ref.Object != nil {
			t = types.Substitute(t, types.BindingsOf(ref.Object.ActualType()))
		}
		return setType(ref, t, nil)

	case *ast.ThisRef:
		return setType(ref, selfType(ref.Class), nil)

	case *ast.StaticThisRef:
		return setType(ref, selfType(ref.Class), nil)
	}
	return false, nil
}

// selfType is a class applied to its own type parameters.
func selfType(c *types.Class) types.Type {
	args := make([]types.Type, len(c.TypeParams))
	for i, p := range c.TypeParams {
		args[i] = types.GenericType{Name: p}
	}
	return types.NewClassType(c, args...)
}

// Members types property accesses by looking the property up on the
// object's type.
type Members struct{}

var _ Plugin = Members{}

func (Members) Name() string { return "Members" }

func (Members) CanInfer(expr ast.Expression) bool {
	_, ok := expr.(*ast.PropertyAccess)
	return ok
}

func (Members) Infer(ctx context.Context, ic *Context, expr ast.Expression) (bool, error) {
	pa := expr.(*ast.PropertyAccess)
	objType := pa.Object.ActualType()

	if _, ok := objType.(types.AnyType); ok {
		return setType(pa, types.Any, nil)
	}

	_, fieldType, found := types.LookupField(objType, pa.Name)
	if !found {
		return false, ic.Diag.Throw(pa, "property %s does not exist on type %s", pa.Name, objType)
	}
	return setType(pa, fieldType, nil)
}
