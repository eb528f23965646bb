package nullinfo

import "github.com/broady/nullinfo/meta"

// Shape is a read-only capability view over a type descriptor.
// The zero Shape (from a nil descriptor) classifies as a reference scalar
// with no children.
type Shape struct {
	t meta.TypeDescriptor
}

// ShapeOf returns the capability view of t.
func ShapeOf(t meta.TypeDescriptor) Shape {
	return Shape{t: t}
}

// Kind returns the structural shape. A nil descriptor is KindScalar.
func (s Shape) Kind() meta.Kind {
	if s.t == nil {
		return meta.KindScalar
	}
	return s.t.Kind()
}

func (s Shape) IsByRef() bool        { return s.Kind() == meta.KindByRef }
func (s Shape) IsArray() bool        { return s.Kind() == meta.KindArray }
func (s Shape) IsGeneric() bool      { return s.Kind() == meta.KindGeneric }
func (s Shape) IsGenericParam() bool { return s.Kind() == meta.KindGenericParam }

// IsValueType reports whether the type has value semantics.
func (s Shape) IsValueType() bool {
	return s.t != nil && s.t.IsValueType()
}

// IsOptionalWrapper reports whether the type is the optional-wrapper form of
// a value type.
func (s Shape) IsOptionalWrapper() bool {
	g, ok := s.t.(*meta.GenericDescriptor)
	return ok && g.IsOptionalWrapper()
}

// Element returns the referent of a ByRef or the element of an Array.
func (s Shape) Element() meta.TypeDescriptor {
	switch t := s.t.(type) {
	case *meta.ByRefDescriptor:
		return t.Element
	case *meta.ArrayDescriptor:
		return t.Element
	}
	return nil
}

// Arguments returns the generic arguments in declared order.
func (s Shape) Arguments() []meta.TypeDescriptor {
	if g, ok := s.t.(*meta.GenericDescriptor); ok {
		return g.Arguments
	}
	return nil
}

// Constraints returns the generic parameter constraint flags.
func (s Shape) Constraints() meta.Constraint {
	if p, ok := s.t.(*meta.GenericParamDescriptor); ok {
		return p.Constraints
	}
	return meta.ConstraintNone
}

// Attributes returns the type's own annotation entries.
func (s Shape) Attributes() []meta.Attribute {
	if s.t == nil {
		return nil
	}
	return s.t.Attributes()
}
