package meta

import "strings"

// ScalarDescriptor represents a named, non-generic type.
type ScalarDescriptor struct {
	// Name is the type identifier.
	Name Identifier

	// ValueType is true for structs and primitives, false for classes,
	// interfaces and other reference types.
	ValueType bool

	// Annotations are entries declared on the type itself.
	Annotations []Attribute
}

// Kind returns KindScalar.
func (d *ScalarDescriptor) Kind() Kind { return KindScalar }

// TypeName returns the scalar's name.
func (d *ScalarDescriptor) TypeName() Identifier { return d.Name }

// IsValueType reports whether the scalar is a value type.
func (d *ScalarDescriptor) IsValueType() bool { return d.ValueType }

// Attributes returns the scalar's own annotations.
func (d *ScalarDescriptor) Attributes() []Attribute { return d.Annotations }

func (*ScalarDescriptor) sealed() {}

// Class returns a ScalarDescriptor for a reference type.
func Class(namespace, name string) *ScalarDescriptor {
	return &ScalarDescriptor{Name: Identifier{Namespace: namespace, Name: name}}
}

// Struct returns a ScalarDescriptor for a value type.
func Struct(namespace, name string) *ScalarDescriptor {
	return &ScalarDescriptor{Name: Identifier{Namespace: namespace, Name: name}, ValueType: true}
}

// ByRefDescriptor represents a by-reference wrapper around a referent type.
// It never carries nullability of its own; the referent's state is reported.
type ByRefDescriptor struct {
	wrapperBase

	// Element is the referent type.
	Element TypeDescriptor
}

// Kind returns KindByRef.
func (d *ByRefDescriptor) Kind() Kind { return KindByRef }

// ByRef returns a ByRefDescriptor for the referent type.
func ByRef(element TypeDescriptor) *ByRefDescriptor {
	return &ByRefDescriptor{Element: element}
}

// ArrayDescriptor represents an array. Arrays are reference types: the array
// and its element each occupy their own structural position.
type ArrayDescriptor struct {
	wrapperBase

	// Element is the array element type.
	Element TypeDescriptor

	// Rank is the number of dimensions. 0 and 1 both mean a vector.
	Rank int
}

// Kind returns KindArray.
func (d *ArrayDescriptor) Kind() Kind { return KindArray }

// ArrayOf returns a single-dimension ArrayDescriptor.
func ArrayOf(element TypeDescriptor) *ArrayDescriptor {
	return &ArrayDescriptor{Element: element, Rank: 1}
}

// GenericDescriptor represents a constructed generic type.
type GenericDescriptor struct {
	// Name is the generic definition's identifier.
	Name Identifier

	// Arguments are the type arguments in declared order.
	Arguments []TypeDescriptor

	// ValueType is true for generic structs.
	ValueType bool

	// Annotations are entries declared on the type itself.
	Annotations []Attribute
}

// Kind returns KindGeneric.
func (d *GenericDescriptor) Kind() Kind { return KindGeneric }

// TypeName returns the generic definition's name.
func (d *GenericDescriptor) TypeName() Identifier { return d.Name }

// IsValueType reports whether the generic type is a value type.
func (d *GenericDescriptor) IsValueType() bool { return d.ValueType }

// Attributes returns the generic type's own annotations.
func (d *GenericDescriptor) Attributes() []Attribute { return d.Annotations }

func (*GenericDescriptor) sealed() {}

// IsOptionalWrapper reports whether d is the optional-wrapper form of a
// value type (Nullable<T>).
func (d *GenericDescriptor) IsOptionalWrapper() bool {
	return d.ValueType && d.Name == OptionalName && len(d.Arguments) == 1
}

// OptionalName identifies the optional-wrapper generic value type.
var OptionalName = Identifier{Namespace: "System", Name: "Nullable`1"}

// Generic returns a GenericDescriptor for a constructed reference type.
func Generic(namespace, name string, args ...TypeDescriptor) *GenericDescriptor {
	return &GenericDescriptor{Name: Identifier{Namespace: namespace, Name: name}, Arguments: args}
}

// GenericStruct returns a GenericDescriptor for a constructed value type.
func GenericStruct(namespace, name string, args ...TypeDescriptor) *GenericDescriptor {
	return &GenericDescriptor{Name: Identifier{Namespace: namespace, Name: name}, Arguments: args, ValueType: true}
}

// Optional returns the optional-wrapper form of a value type.
func Optional(inner TypeDescriptor) *GenericDescriptor {
	return &GenericDescriptor{Name: OptionalName, Arguments: []TypeDescriptor{inner}, ValueType: true}
}

// Constraint is a set of generic parameter constraint flags. The values match
// the generic parameter attribute bits of the metadata format.
type Constraint int

const (
	ConstraintNone                 Constraint = 0
	ConstraintReferenceType        Constraint = 0x04
	ConstraintNotNullableValueType Constraint = 0x08
	ConstraintDefaultConstructor   Constraint = 0x10
)

// Has reports whether all flags in c2 are set in c.
func (c Constraint) Has(c2 Constraint) bool {
	return c&c2 == c2
}

// String returns the flag names joined with "|".
func (c Constraint) String() string {
	if c == ConstraintNone {
		return "none"
	}
	var parts []string
	if c.Has(ConstraintReferenceType) {
		parts = append(parts, "class")
	}
	if c.Has(ConstraintNotNullableValueType) {
		parts = append(parts, "struct")
	}
	if c.Has(ConstraintDefaultConstructor) {
		parts = append(parts, "new()")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// GenericParamDescriptor represents a generic type parameter.
type GenericParamDescriptor struct {
	// ParamName is the type parameter name (e.g. "T").
	ParamName string

	// Position is the parameter's ordinal in its declaring definition.
	Position int

	// Constraints are the special constraint flags.
	Constraints Constraint

	// ConstraintTypes are the type constraints (base class, interfaces).
	ConstraintTypes []TypeDescriptor

	// Annotations are entries declared on the parameter itself.
	Annotations []Attribute
}

// Kind returns KindGenericParam.
func (d *GenericParamDescriptor) Kind() Kind { return KindGenericParam }

// TypeName returns the parameter name with no namespace.
func (d *GenericParamDescriptor) TypeName() Identifier { return Identifier{Name: d.ParamName} }

// IsValueType is always false: a parameter's value-typeness is only known
// through its constraints.
func (d *GenericParamDescriptor) IsValueType() bool { return false }

// Attributes returns the parameter's own annotations.
func (d *GenericParamDescriptor) Attributes() []Attribute { return d.Annotations }

func (*GenericParamDescriptor) sealed() {}

// TypeParam returns a GenericParamDescriptor.
func TypeParam(name string, position int, constraints Constraint) *GenericParamDescriptor {
	return &GenericParamDescriptor{ParamName: name, Position: position, Constraints: constraints}
}

// Format renders a descriptor in a compact, C#-like notation:
// "String", "Int32?", "String[]", "List<String>", "T&".
func Format(d TypeDescriptor) string {
	var sb strings.Builder
	format(&sb, d)
	return sb.String()
}

func format(sb *strings.Builder, d TypeDescriptor) {
	switch t := d.(type) {
	case nil:
		sb.WriteString("<nil>")
	case *ScalarDescriptor:
		sb.WriteString(t.Name.Name)
	case *ByRefDescriptor:
		format(sb, t.Element)
		sb.WriteByte('&')
	case *ArrayDescriptor:
		format(sb, t.Element)
		sb.WriteByte('[')
		for i := 1; i < t.Rank; i++ {
			sb.WriteByte(',')
		}
		sb.WriteByte(']')
	case *GenericDescriptor:
		if t.IsOptionalWrapper() {
			format(sb, t.Arguments[0])
			sb.WriteByte('?')
			return
		}
		name := t.Name.Name
		if i := strings.IndexByte(name, '`'); i >= 0 {
			name = name[:i]
		}
		sb.WriteString(name)
		sb.WriteByte('<')
		for i, arg := range t.Arguments {
			if i > 0 {
				sb.WriteString(", ")
			}
			format(sb, arg)
		}
		sb.WriteByte('>')
	case *GenericParamDescriptor:
		sb.WriteString(t.ParamName)
	}
}
