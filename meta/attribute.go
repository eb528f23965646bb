package meta

// Attribute names read by the resolver. These are fixed by the metadata
// format and must match exactly to interoperate with compiled binaries.
const (
	// NullableAttribute carries the per-position encoding: a single byte
	// applying to every position, or one byte per structural position.
	NullableAttribute = "System.Runtime.CompilerServices.NullableAttribute"

	// NullableContextAttribute carries the scope-level default byte.
	NullableContextAttribute = "System.Runtime.CompilerServices.NullableContextAttribute"
)

// ArgKind identifies the shape of an attribute argument.
type ArgKind int

const (
	ArgScalar   ArgKind = iota // Single integer value
	ArgSequence                // Ordered integer values
	ArgText                    // String value
	ArgBool                    // Boolean value
)

// String returns the string representation of the argument kind.
func (k ArgKind) String() string {
	switch k {
	case ArgScalar:
		return "Scalar"
	case ArgSequence:
		return "Sequence"
	case ArgText:
		return "Text"
	case ArgBool:
		return "Bool"
	default:
		return "Unknown"
	}
}

// Arg is a single attribute argument. Only the field selected by Kind is
// meaningful.
type Arg struct {
	Kind     ArgKind
	Scalar   int64
	Sequence []int64
	Text     string
	Bool     bool
}

// ScalarArg returns a scalar argument.
func ScalarArg(v int64) Arg {
	return Arg{Kind: ArgScalar, Scalar: v}
}

// SequenceArg returns a sequence argument.
func SequenceArg(vs ...int64) Arg {
	if vs == nil {
		vs = []int64{}
	}
	return Arg{Kind: ArgSequence, Sequence: vs}
}

// TextArg returns a string argument.
func TextArg(s string) Arg {
	return Arg{Kind: ArgText, Text: s}
}

// BoolArg returns a boolean argument.
func BoolArg(b bool) Arg {
	return Arg{Kind: ArgBool, Bool: b}
}

// Attribute is one metadata entry attached to a member, parameter, type or
// scope.
type Attribute struct {
	// Name is the fully qualified attribute type name.
	Name string

	// Args are the constructor arguments in order.
	Args []Arg
}

// Nullable returns a NullableAttribute entry. A single value produces the
// scalar form; any other count produces the sequence form.
func Nullable(values ...int64) Attribute {
	if len(values) == 1 {
		return Attribute{Name: NullableAttribute, Args: []Arg{ScalarArg(values[0])}}
	}
	return Attribute{Name: NullableAttribute, Args: []Arg{SequenceArg(values...)}}
}

// NullableContext returns a NullableContextAttribute entry.
func NullableContext(value int64) Attribute {
	return Attribute{Name: NullableContextAttribute, Args: []Arg{ScalarArg(value)}}
}

// FindAttribute returns the first entry with the given name.
func FindAttribute(attrs []Attribute, name string) (Attribute, bool) {
	for _, a := range attrs {
		if a.Name == name {
			return a, true
		}
	}
	return Attribute{}, false
}
