package infer

import (
	"github.com/vito/oneinfer/pkg/ast"
	"github.com/vito/oneinfer/pkg/types"
)

// ExpectationRule derives an expected type for expr from its parent. The
// bool result reports whether the rule applies at all; an applying rule may
// still yield a nil type when the information it relies on is missing.
type ExpectationRule struct {
	Name  string
	Apply func(expr ast.Expression, parent ast.Node) (types.Type, bool)
}

// ExpectationRules are tried in priority order.
var ExpectationRules = []ExpectationRule{
	{Name: "cast", Apply: expectFromCast},
	{Name: "assignment", Apply: expectFromAssignment},
	{Name: "conditional", Apply: expectFromConditional},
}

// PropagateExpected fills in expr's expected type from its parent if it
// has none yet, and returns the result. Nil means no contextual
// expectation exists.
func PropagateExpected(ic *Context, expr ast.Expression) types.Type {
	if t := expr.ExpectedType(); t != nil {
		return t
	}
	parent := ic.Parents.Of(expr)
	if parent == nil {
		return nil
	}
	for _, rule := range ExpectationRules {
		if t, ok := rule.Apply(expr, parent); ok {
			if t != nil {
				expr.SetExpectedType(t)
			}
			return t
		}
	}
	return nil
}

// `<{ [name: string]: Foo }> {}` expects the cast's target type.
func expectFromCast(expr ast.Expression, parent ast.Node) (types.Type, bool) {
	cast, ok := parent.(*ast.Cast)
	if !ok {
		return nil, false
	}
	return cast.NewType, true
}

// `someMap = {}` expects the already-inferred type of the target.
func expectFromAssignment(expr ast.Expression, parent ast.Node) (types.Type, bool) {
	bin, ok := parent.(*ast.Binary)
	if !ok || !bin.IsAssignment() || bin.Right != expr {
		return nil, false
	}
	return bin.Left.ActualType(), true
}

// Both branches of a conditional must unify, so each expects the other's
// type.
func expectFromConditional(expr ast.Expression, parent ast.Node) (types.Type, bool) {
	cond, ok := parent.(*ast.Conditional)
	if !ok {
		return nil, false
	}
	switch expr {
	case cond.WhenTrue:
		return cond.WhenFalse.ActualType(), true
	case cond.WhenFalse:
		return cond.WhenTrue.ActualType(), true
	}
	return nil, false
}
