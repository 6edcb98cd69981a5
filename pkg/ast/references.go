package ast

import "github.com/vito/oneinfer/pkg/types"

// Variable is a local variable declaration. Type may be nil until the
// initializer has been inferred.
type Variable struct {
	Name        string
	Type        types.Type
	Initializer Expression
}

// Parameter is a function or lambda parameter. Type is nil for lambda
// parameters that take their type from context.
type Parameter struct {
	Name string
	Type types.Type
}

// ForeachVariable is the per-iteration variable of a foreach loop.
type ForeachVariable struct {
	Name string
	Type types.Type
}

// References are expressions that resolve to a declaration. They are
// created already resolved; this package never performs name lookup.

type VariableRef struct {
	TypeInfo
	Loc
	Decl *Variable
}

type ParameterRef struct {
	TypeInfo
	Loc
	Decl *Parameter
}

type ForeachVariableRef struct {
	TypeInfo
	Loc
	Decl *ForeachVariable
}

// InstanceFieldRef is a field read off an object, resolved to the field
// declaration.
type InstanceFieldRef struct {
	TypeInfo
	Loc
	Object Expression
	Field  *types.Field
}

type ThisRef struct {
	TypeInfo
	Loc
	Class *types.Class
}

type StaticThisRef struct {
	TypeInfo
	Loc
	Class *types.Class
}

var (
	_ Expression = (*VariableRef)(nil)
	_ Expression = (*ParameterRef)(nil)
	_ Expression = (*ForeachVariableRef)(nil)
	_ Expression = (*InstanceFieldRef)(nil)
	_ Expression = (*ThisRef)(nil)
	_ Expression = (*StaticThisRef)(nil)
)

// IsReference reports whether expr is one of the reference kinds.
func IsReference(expr Expression) bool {
	switch expr.(type) {
	case *VariableRef, *ParameterRef, *ForeachVariableRef, *InstanceFieldRef, *ThisRef, *StaticThisRef:
		return true
	}
	return false
}
