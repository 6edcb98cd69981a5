package infer

import (
	"context"
	"strings"

	"github.com/vito/oneinfer/pkg/ast"
	"github.com/vito/oneinfer/pkg/types"
)

// ContainerLiterals types array and map literals from their items, falling
// back to the expected type for empty literals.
type ContainerLiterals struct{}

var _ Plugin = ContainerLiterals{}

func (ContainerLiterals) Name() string { return "ContainerLiterals" }

func (ContainerLiterals) CanInfer(expr ast.Expression) bool {
	switch expr.(type) {
	case *ast.ArrayLiteral, *ast.MapLiteral:
		return true
	}
	return false
}

func (ContainerLiterals) Infer(ctx context.Context, ic *Context, expr ast.Expression) (bool, error) {
	expected := ic.ExpectedType(expr)

	switch lit := expr.(type) {
	case *ast.ArrayLiteral:
		decl := ic.Literals().Array
		if decl == nil {
			return false, ic.Diag.Throw(expr, "no array literal type is registered for %s", ic.File.Path)
		}
		itemType := inferItemType(ic, expr, lit.Items, expected, decl, false)
		return setType(expr, types.NewClassType(decl, itemType), nil)

	case *ast.MapLiteral:
		decl := ic.Literals().Map
		if decl == nil {
			return false, ic.Diag.Throw(expr, "no map literal type is registered for %s", ic.File.Path)
		}
		values := make([]ast.Expression, len(lit.Items))
		for i, item := range lit.Items {
			values[i] = item.Value
		}
		itemType := inferItemType(ic, expr, values, expected, decl, true)
		return setType(expr, types.NewClassType(decl, itemType), nil)
	}

	return false, nil
}

// DistinctTypes returns the actual types of items with structural
// duplicates removed, in order of first occurrence.
func DistinctTypes(items []ast.Expression) []types.Type {
	var distinct []types.Type
	for _, item := range items {
		t := item.ActualType()
		seen := false
		for _, d := range distinct {
			if types.Equal(d, t) {
				seen = true
				break
			}
		}
		if !seen {
			distinct = append(distinct, t)
		}
	}
	return distinct
}

func inferItemType(ic *Context, node ast.Expression, items []ast.Expression, expected types.Type, literal *types.Class, isMap bool) types.Type {
	kind := "ArrayLiteral"
	if isMap {
		kind = "MapLiteral"
	}

	itemTypes := DistinctTypes(items)
	switch len(itemTypes) {
	case 0:
		if expected == nil {
			ic.Diag.Warn(node, "Could not determine the type of an empty %s, using AnyType instead", kind)
			return types.Any
		}
		if ct, ok := expected.(*types.ClassType); ok && ct.Decl == literal && len(ct.TypeArgs) == 1 {
			return ct.TypeArgs[0]
		}
		return types.Any

	case 1:
		return itemTypes[0]

	default:
		if _, ok := expected.(types.AnyType); ok {
			return types.Any
		}
		names := make([]string, len(itemTypes))
		for i, t := range itemTypes {
			names[i] = t.String()
		}
		article := "an"
		if isMap {
			article = "a"
		}
		ic.Diag.Warn(node, "Could not determine the type of %s %s! Multiple types were found: %s, using AnyType instead",
			article, kind, strings.Join(names, ", "))
		return types.Any
	}
}
