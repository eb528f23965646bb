package meta

// TypeDef is a declaring scope: a type definition whose annotations may
// carry a context-level default for the members it contains. Scopes nest
// through DeclaringType; the outermost scope has a nil DeclaringType.
type TypeDef struct {
	// Name is the type identifier.
	Name Identifier

	// Annotations are entries declared on the type definition.
	Annotations []Attribute

	// DeclaringType is the enclosing scope, or nil.
	DeclaringType *TypeDef

	// Source location, if known.
	Source Source
}

// MemberKind identifies the category of a member.
type MemberKind int

const (
	MemberField MemberKind = iota
	MemberProperty
	MemberMethod
)

// String returns the string representation of the member kind.
func (k MemberKind) String() string {
	switch k {
	case MemberField:
		return "field"
	case MemberProperty:
		return "property"
	case MemberMethod:
		return "method"
	default:
		return "unknown"
	}
}

// Member is a field, property or method.
type Member interface {
	// MemberKind returns the member category.
	MemberKind() MemberKind

	// MemberName returns the simple member name.
	MemberName() string

	// Declaring returns the declaring scope, or nil.
	Declaring() *TypeDef

	// MemberAttributes returns the entries declared on the member.
	MemberAttributes() []Attribute
}

// Key returns "Type.Member" for m, or just the member name if it has no
// declaring scope.
func Key(m Member) string {
	if d := m.Declaring(); d != nil {
		return d.Name.Name + "." + m.MemberName()
	}
	return m.MemberName()
}

// Property is a property member.
type Property struct {
	Name          string
	Type          TypeDescriptor
	DeclaringType *TypeDef
	Annotations   []Attribute
}

func (p *Property) MemberKind() MemberKind        { return MemberProperty }
func (p *Property) MemberName() string            { return p.Name }
func (p *Property) Declaring() *TypeDef           { return p.DeclaringType }
func (p *Property) MemberAttributes() []Attribute { return p.Annotations }

// Field is a field member.
type Field struct {
	Name          string
	Type          TypeDescriptor
	DeclaringType *TypeDef
	Annotations   []Attribute
}

func (f *Field) MemberKind() MemberKind        { return MemberField }
func (f *Field) MemberName() string            { return f.Name }
func (f *Field) Declaring() *TypeDef           { return f.DeclaringType }
func (f *Field) MemberAttributes() []Attribute { return f.Annotations }

// Method is a method member. Parameters point back at their owning method.
type Method struct {
	Name          string
	ReturnType    TypeDescriptor
	Parameters    []*Parameter
	DeclaringType *TypeDef
	Annotations   []Attribute
}

func (m *Method) MemberKind() MemberKind        { return MemberMethod }
func (m *Method) MemberName() string            { return m.Name }
func (m *Method) Declaring() *TypeDef           { return m.DeclaringType }
func (m *Method) MemberAttributes() []Attribute { return m.Annotations }

// AddParameter appends a parameter, assigning its position and owner.
func (m *Method) AddParameter(name string, t TypeDescriptor, annotations ...Attribute) *Parameter {
	p := &Parameter{
		Name:        name,
		Position:    len(m.Parameters),
		Type:        t,
		Member:      m,
		Annotations: annotations,
	}
	m.Parameters = append(m.Parameters, p)
	return p
}

// Parameter finds a parameter by name. Returns nil if not found.
func (m *Method) Parameter(name string) *Parameter {
	for _, p := range m.Parameters {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Parameter is a method parameter.
type Parameter struct {
	Name     string
	Position int
	Type     TypeDescriptor

	// Member is the method that owns the parameter.
	Member *Method

	// Annotations are entries declared on the parameter itself.
	Annotations []Attribute
}
