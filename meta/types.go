// Package meta defines the descriptor model consumed by the nullability
// resolver: type shapes, annotation entries, declaring scopes and members.
// Descriptors are read-only snapshots supplied by a provider (a fixture
// document, Go source, or runtime reflection) and are never mutated by the
// resolver.
package meta

// Identifier names a type within its namespace.
// For generic definitions the Name carries the arity suffix the metadata
// format uses (e.g. "List`1").
type Identifier struct {
	// Namespace is the dotted namespace or the Go package path.
	// Empty for builtin types.
	Namespace string

	// Name is the simple type name.
	Name string
}

// IsZero returns true if the identifier is empty.
func (id Identifier) IsZero() bool {
	return id.Name == "" && id.Namespace == ""
}

// String returns the qualified name.
func (id Identifier) String() string {
	if id.Namespace == "" {
		return id.Name
	}
	return id.Namespace + "." + id.Name
}

// Source represents source code location information.
type Source struct {
	File   string
	Line   int
	Column int
}

// IsZero returns true if the source location is empty.
func (s Source) IsZero() bool {
	return s.File == "" && s.Line == 0 && s.Column == 0
}

// Warning represents a non-fatal issue encountered while building a catalog.
type Warning struct {
	// Code is a machine-readable warning identifier.
	Code string

	// Message is a human-readable description.
	Message string

	// Source is the location that triggered the warning, if applicable.
	Source *Source

	// TypeName is the type that triggered the warning, if applicable.
	TypeName string
}
