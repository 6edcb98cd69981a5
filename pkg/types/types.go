package types

import (
	"fmt"
	"strings"
)

// Type represents all type constructors known to the inference core.
type Type interface {
	// Eq reports structural equality. Identity of the Go value is ignored.
	Eq(Type) bool
	fmt.Stringer
}

// AnyType is the untyped top type. Literals fall back to it when their
// element type cannot be determined.
type AnyType struct{}

// Any is the only AnyType value anyone needs.
var Any Type = AnyType{}

func (AnyType) Eq(other Type) bool {
	_, ok := other.(AnyType)
	return ok
}

func (AnyType) String() string { return "any" }

// PrimitiveType is a built-in type without a class declaration, like void.
type PrimitiveType struct {
	Name string
}

var Void Type = PrimitiveType{Name: "void"}

func (t PrimitiveType) Eq(other Type) bool {
	ot, ok := other.(PrimitiveType)
	return ok && ot.Name == t.Name
}

func (t PrimitiveType) String() string { return t.Name }

// GenericType refers to a type parameter of the enclosing declaration.
type GenericType struct {
	Name string
}

func (t GenericType) Eq(other Type) bool {
	ot, ok := other.(GenericType)
	return ok && ot.Name == t.Name
}

func (t GenericType) String() string { return t.Name }

// ClassType is a class declaration applied to type arguments.
type ClassType struct {
	Decl     *Class
	TypeArgs []Type
}

func NewClassType(decl *Class, args ...Type) *ClassType {
	return &ClassType{Decl: decl, TypeArgs: args}
}

func (t *ClassType) Eq(other Type) bool {
	ot, ok := other.(*ClassType)
	return ok && ot.Decl == t.Decl && argsEq(t.TypeArgs, ot.TypeArgs)
}

func (t *ClassType) String() string {
	return nominalString(t.Decl.Name, t.TypeArgs)
}

// InterfaceType is an interface declaration applied to type arguments.
type InterfaceType struct {
	Decl     *Interface
	TypeArgs []Type
}

func NewInterfaceType(decl *Interface, args ...Type) *InterfaceType {
	return &InterfaceType{Decl: decl, TypeArgs: args}
}

func (t *InterfaceType) Eq(other Type) bool {
	ot, ok := other.(*InterfaceType)
	return ok && ot.Decl == t.Decl && argsEq(t.TypeArgs, ot.TypeArgs)
}

func (t *InterfaceType) String() string {
	return nominalString(t.Decl.Name, t.TypeArgs)
}

// EnumType is a reference to an enum declaration.
type EnumType struct {
	Decl *Enum
}

func (t *EnumType) Eq(other Type) bool {
	ot, ok := other.(*EnumType)
	return ok && ot.Decl == t.Decl
}

func (t *EnumType) String() string { return t.Decl.Name }

// Param is one parameter of a lambda type.
type Param struct {
	Name string
	Type Type
}

// LambdaType is the type of a function value.
type LambdaType struct {
	Params []Param
	Return Type
}

func NewLambdaType(ret Type, params ...Type) *LambdaType {
	lt := &LambdaType{Return: ret}
	for i, p := range params {
		lt.Params = append(lt.Params, Param{Name: fmt.Sprintf("p%d", i), Type: p})
	}
	return lt
}

// Eq compares parameter types and return type. Parameter names are not part
// of the type.
func (t *LambdaType) Eq(other Type) bool {
	ot, ok := other.(*LambdaType)
	if !ok || len(ot.Params) != len(t.Params) {
		return false
	}
	for i := range t.Params {
		if !Equal(t.Params[i].Type, ot.Params[i].Type) {
			return false
		}
	}
	return Equal(t.Return, ot.Return)
}

func (t *LambdaType) String() string {
	params := make([]string, len(t.Params))
	for i, p := range t.Params {
		params[i] = fmt.Sprintf("%s: %s", p.Name, str(p.Type))
	}
	return fmt.Sprintf("(%s) => %s", strings.Join(params, ", "), str(t.Return))
}

// Equal is Eq with nil handling: two nil types are equal, nil never equals
// a non-nil type.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Eq(b)
}

func argsEq(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func nominalString(name string, args []Type) string {
	if len(args) == 0 {
		return name
	}
	strs := make([]string, len(args))
	for i, a := range args {
		strs[i] = str(a)
	}
	return fmt.Sprintf("%s<%s>", name, strings.Join(strs, ", "))
}

func str(t Type) string {
	if t == nil {
		return "?"
	}
	return t.String()
}
