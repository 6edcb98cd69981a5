package ast

import "github.com/vito/oneinfer/pkg/types"

type StringLiteral struct {
	TypeInfo
	Loc
	Value string
}

type NumericLiteral struct {
	TypeInfo
	Loc
	Value string
}

type BooleanLiteral struct {
	TypeInfo
	Loc
	Value bool
}

type NullLiteral struct {
	TypeInfo
	Loc
}

// ArrayLiteral is `[a, b, c]`.
type ArrayLiteral struct {
	TypeInfo
	Loc
	Items []Expression
}

// MapLiteralItem is one `key: value` entry of a map literal.
type MapLiteralItem struct {
	Key   string
	Value Expression
}

// MapLiteral is `{ a: x, b: y }`. Keys are always strings; only the values
// take part in type inference.
type MapLiteral struct {
	TypeInfo
	Loc
	Items []MapLiteralItem
}

// Lambda is an anonymous function. Parameter types may be left nil and are
// filled in from the lambda's expected type.
type Lambda struct {
	TypeInfo
	Loc
	Parameters []*Parameter
	Returns    types.Type
	Body       *Block
}

// InstanceOf is a runtime type test, `expr instanceof CheckType`.
type InstanceOf struct {
	TypeInfo
	Loc
	Expr      Expression
	CheckType types.Type

	// ImplicitCasts collects every cast the narrowing pass inserted on behalf
	// of this test.
	ImplicitCasts []*Cast
}

// Cast is `<NewType>expr`. InstanceOfCast is non-nil when the cast was
// inserted by narrowing rather than written by the user.
type Cast struct {
	TypeInfo
	Loc
	Expr           Expression
	NewType        types.Type
	InstanceOfCast *InstanceOf
}

// Binary covers arithmetic, comparison, logic and assignment (`=`).
type Binary struct {
	TypeInfo
	Loc
	Op    string
	Left  Expression
	Right Expression
}

// IsAssignment reports whether the operator stores into the left operand.
func (b *Binary) IsAssignment() bool { return b.Op == "=" }

type Unary struct {
	TypeInfo
	Loc
	Op      string
	Operand Expression
}

// Conditional is `cond ? whenTrue : whenFalse`.
type Conditional struct {
	TypeInfo
	Loc
	Condition Expression
	WhenTrue  Expression
	WhenFalse Expression
}

// PropertyAccess is `object.name`.
type PropertyAccess struct {
	TypeInfo
	Loc
	Object Expression
	Name   string
}

// Call invokes a function value.
type Call struct {
	TypeInfo
	Loc
	Callee Expression
	Args   []Expression
}

var (
	_ Expression = (*StringLiteral)(nil)
	_ Expression = (*NumericLiteral)(nil)
	_ Expression = (*BooleanLiteral)(nil)
	_ Expression = (*NullLiteral)(nil)
	_ Expression = (*ArrayLiteral)(nil)
	_ Expression = (*MapLiteral)(nil)
	_ Expression = (*Lambda)(nil)
	_ Expression = (*InstanceOf)(nil)
	_ Expression = (*Cast)(nil)
	_ Expression = (*Binary)(nil)
	_ Expression = (*Unary)(nil)
	_ Expression = (*Conditional)(nil)
	_ Expression = (*PropertyAccess)(nil)
	_ Expression = (*Call)(nil)
)

// NewImplicitCast wraps expr in a cast produced by an instanceof test.
func NewImplicitCast(test *InstanceOf, expr Expression) *Cast {
	return &Cast{
		Loc:            Loc{Location: expr.GetSourceLocation()},
		Expr:           expr,
		NewType:        test.CheckType,
		InstanceOfCast: test,
	}
}

// UnwrapImplicitCasts strips any narrowing-derived casts around expr.
func UnwrapImplicitCasts(expr Expression) Expression {
	for {
		c, ok := expr.(*Cast)
		if !ok || c.InstanceOfCast == nil {
			return expr
		}
		expr = c.Expr
	}
}
