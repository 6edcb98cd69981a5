package types

// AssignableTo reports whether a value of type src can be stored where dst
// is expected. This is either an exact match or a compatible variant: any
// type mixes freely with Any, classes flow into their base classes and
// implemented interfaces, and lambdas are compared shape by shape.
func AssignableTo(src, dst Type) bool {
	if src == nil || dst == nil {
		return false
	}
	if src.Eq(dst) {
		return true
	}
	if _, ok := src.(AnyType); ok {
		return true
	}
	if _, ok := dst.(AnyType); ok {
		return true
	}

	switch s := src.(type) {
	case *ClassType, *InterfaceType:
		for _, super := range Supertypes(s) {
			if AssignableTo(super, dst) {
				return true
			}
		}
		return false
	case *LambdaType:
		d, ok := dst.(*LambdaType)
		if !ok || len(d.Params) != len(s.Params) {
			return false
		}
		for i := range s.Params {
			if !AssignableTo(d.Params[i].Type, s.Params[i].Type) {
				return false
			}
		}
		if _, void := d.Return.(PrimitiveType); void && d.Return.Eq(Void) {
			return true
		}
		return AssignableTo(s.Return, d.Return)
	}

	return false
}
