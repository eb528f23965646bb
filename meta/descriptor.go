package meta

// Kind identifies the structural shape of a type descriptor.
type Kind int

const (
	KindScalar       Kind = iota // Named non-generic type (class, struct, primitive)
	KindByRef                    // By-reference wrapper (ref/out/in, T&)
	KindArray                    // Array of an element type
	KindGeneric                  // Constructed generic type (List<T>, Nullable<T>)
	KindGenericParam             // Generic type parameter (T)
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "Scalar"
	case KindByRef:
		return "ByRef"
	case KindArray:
		return "Array"
	case KindGeneric:
		return "Generic"
	case KindGenericParam:
		return "GenericParam"
	default:
		return "Unknown"
	}
}

// TypeDescriptor is the capability view over a type.
// The set of implementations is closed; switch on Kind or on the concrete
// pointer types.
type TypeDescriptor interface {
	// Kind returns the descriptor shape for type switching.
	Kind() Kind

	// TypeName returns the canonical name of this type.
	// Returns zero value for ByRef and Array descriptors.
	TypeName() Identifier

	// IsValueType reports whether the type has value semantics.
	// Value types can never hold an absent value unless they are the
	// optional wrapper.
	IsValueType() bool

	// Attributes returns the annotation entries attached to the type itself.
	Attributes() []Attribute

	// Ensure only types in this package can implement TypeDescriptor.
	sealed()
}

// wrapperBase provides zero-value implementations of TypeDescriptor methods
// for the structural wrappers (ByRef, Array) that have no name of their own.
type wrapperBase struct{}

func (wrapperBase) TypeName() Identifier    { return Identifier{} }
func (wrapperBase) IsValueType() bool       { return false }
func (wrapperBase) Attributes() []Attribute { return nil }
func (wrapperBase) sealed()                 {}
