package narrow

import "github.com/vito/oneinfer/pkg/ast"

// SameValue reports whether a and b denote the same runtime value: the same
// variable, parameter, loop variable or field, or the same property chain
// rooted at one. Casts inserted by narrowing are ignored on both sides.
// Any other shape never matches, even when textually identical.
func SameValue(a, b ast.Expression) bool {
	a = ast.UnwrapImplicitCasts(a)
	b = ast.UnwrapImplicitCasts(b)

	switch x := a.(type) {
	case *ast.PropertyAccess:
		y, ok := b.(*ast.PropertyAccess)
		return ok && x.Name == y.Name && SameValue(x.Object, y.Object)
	case *ast.VariableRef:
		y, ok := b.(*ast.VariableRef)
		return ok && x.Decl == y.Decl
	case *ast.ParameterRef:
		y, ok := b.(*ast.ParameterRef)
		return ok && x.Decl == y.Decl
	case *ast.ForeachVariableRef:
		y, ok := b.(*ast.ForeachVariableRef)
		return ok && x.Decl == y.Decl
	case *ast.InstanceFieldRef:
		y, ok := b.(*ast.InstanceFieldRef)
		return ok && x.Field == y.Field
	case *ast.ThisRef:
		_, ok := b.(*ast.ThisRef)
		return ok
	case *ast.StaticThisRef:
		_, ok := b.(*ast.StaticThisRef)
		return ok
	}
	return false
}
