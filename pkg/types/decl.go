package types

// Field is an instance field of a class.
type Field struct {
	Name string
	Type Type
}

// Class is a nominal class declaration. Declarations are compared by
// pointer identity; two classes with the same name are different types.
type Class struct {
	Name       string
	TypeParams []string
	Base       *ClassType
	Interfaces []*InterfaceType
	Fields     []*Field
}

// Field returns the field declared directly on this class.
func (c *Class) Field(name string) (*Field, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// Interface is a nominal interface declaration.
type Interface struct {
	Name       string
	TypeParams []string
	Bases      []*InterfaceType
	Fields     []*Field
}

// Enum is a nominal enum declaration.
type Enum struct {
	Name   string
	Values []string
}

// Bindings maps type parameter names to the arguments they were applied to.
type Bindings map[string]Type

func bind(params []string, args []Type) Bindings {
	if len(params) == 0 {
		return nil
	}
	b := make(Bindings, len(params))
	for i, p := range params {
		if i < len(args) {
			b[p] = args[i]
		}
	}
	return b
}

// BindingsOf returns the type parameter bindings of an applied class or
// interface type.
func BindingsOf(t Type) Bindings {
	switch t := t.(type) {
	case *ClassType:
		return bind(t.Decl.TypeParams, t.TypeArgs)
	case *InterfaceType:
		return bind(t.Decl.TypeParams, t.TypeArgs)
	}
	return nil
}

// Substitute replaces generic type references with their bindings.
func Substitute(t Type, b Bindings) Type {
	if len(b) == 0 || t == nil {
		return t
	}
	switch t := t.(type) {
	case GenericType:
		if bound, ok := b[t.Name]; ok {
			return bound
		}
		return t
	case *ClassType:
		return &ClassType{Decl: t.Decl, TypeArgs: substituteAll(t.TypeArgs, b)}
	case *InterfaceType:
		return &InterfaceType{Decl: t.Decl, TypeArgs: substituteAll(t.TypeArgs, b)}
	case *LambdaType:
		lt := &LambdaType{Return: Substitute(t.Return, b)}
		for _, p := range t.Params {
			lt.Params = append(lt.Params, Param{Name: p.Name, Type: Substitute(p.Type, b)})
		}
		return lt
	default:
		return t
	}
}

func substituteAll(ts []Type, b Bindings) []Type {
	if ts == nil {
		return nil
	}
	out := make([]Type, len(ts))
	for i, t := range ts {
		out[i] = Substitute(t, b)
	}
	return out
}

// Supertypes returns the direct supertypes of a class or interface type with
// the type arguments of t substituted through.
func Supertypes(t Type) []Type {
	var supers []Type
	switch t := t.(type) {
	case *ClassType:
		b := BindingsOf(t)
		if t.Decl.Base != nil {
			supers = append(supers, Substitute(t.Decl.Base, b))
		}
		for _, i := range t.Decl.Interfaces {
			supers = append(supers, Substitute(i, b))
		}
	case *InterfaceType:
		b := BindingsOf(t)
		for _, i := range t.Decl.Bases {
			supers = append(supers, Substitute(i, b))
		}
	}
	return supers
}

// LookupField finds a field on t or any of its supertypes, returning its
// type with the receiver's type arguments applied.
func LookupField(t Type, name string) (*Field, Type, bool) {
	var fields []*Field
	switch tt := t.(type) {
	case *ClassType:
		fields = tt.Decl.Fields
	case *InterfaceType:
		fields = tt.Decl.Fields
	default:
		return nil, nil, false
	}
	for _, f := range fields {
		if f.Name == name {
			return f, Substitute(f.Type, BindingsOf(t)), true
		}
	}
	for _, super := range Supertypes(t) {
		if f, ft, ok := LookupField(super, name); ok {
			return f, ft, true
		}
	}
	return nil, nil, false
}
