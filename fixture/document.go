// Package fixture reads descriptor documents: YAML, JSON or MessagePack files
// that describe declaring scopes and members together with their annotation
// entries, as a compiler would emit them. Documents are validated and then
// built into a meta.Catalog.
//
// A minimal YAML document:
//
//	scopes:
//	  - name: Repo
//	    namespace: Acme
//	    annotations:
//	      - {name: NullableContext, args: [2]}
//	members:
//	  - kind: property
//	    name: Names
//	    declaringType: Repo
//	    type: {kind: generic, namespace: System.Collections.Generic, name: "List`1",
//	           args: [{kind: class, namespace: System, name: String}]}
//	    annotations:
//	      - {name: Nullable, args: [[1, 2]]}
package fixture

// Document is the on-disk form of a catalog.
type Document struct {
	Scopes  []Scope  `json:"scopes,omitempty" yaml:"scopes,omitempty" msgpack:"scopes,omitempty" validate:"dive"`
	Members []Member `json:"members" yaml:"members" msgpack:"members" validate:"required,min=1,dive"`
}

// Scope describes a declaring type.
type Scope struct {
	Name      string `json:"name" yaml:"name" msgpack:"name" validate:"required"`
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty" msgpack:"namespace,omitempty"`

	// DeclaringType is the Name of the enclosing scope, if any.
	DeclaringType string `json:"declaringType,omitempty" yaml:"declaringType,omitempty" msgpack:"declaringType,omitempty"`

	Annotations []Attribute `json:"annotations,omitempty" yaml:"annotations,omitempty" msgpack:"annotations,omitempty" validate:"dive"`
}

// Member describes a field, property or method.
type Member struct {
	Kind string `json:"kind" yaml:"kind" msgpack:"kind" validate:"required,oneof=field property method"`
	Name string `json:"name" yaml:"name" msgpack:"name" validate:"required"`

	// DeclaringType is the Name of the declaring scope, if any.
	DeclaringType string `json:"declaringType,omitempty" yaml:"declaringType,omitempty" msgpack:"declaringType,omitempty"`

	// Type is the field or property type, or the method return type.
	Type *Type `json:"type" yaml:"type" msgpack:"type" validate:"required"`

	Annotations []Attribute `json:"annotations,omitempty" yaml:"annotations,omitempty" msgpack:"annotations,omitempty" validate:"dive"`

	// Parameters are only meaningful for methods.
	Parameters []Parameter `json:"parameters,omitempty" yaml:"parameters,omitempty" msgpack:"parameters,omitempty" validate:"dive"`
}

// Parameter describes a method parameter.
type Parameter struct {
	Name        string      `json:"name" yaml:"name" msgpack:"name" validate:"required"`
	Type        *Type       `json:"type" yaml:"type" msgpack:"type" validate:"required"`
	Annotations []Attribute `json:"annotations,omitempty" yaml:"annotations,omitempty" msgpack:"annotations,omitempty" validate:"dive"`
}

// Type describes a type shape. Kind selects which fields apply:
//
//	class, struct   Namespace, Name (reference or value scalar)
//	scalar          Namespace, Name, ValueType
//	byref           Element
//	array           Element, Rank
//	generic         Namespace, Name, Args, ValueType
//	optional        Element (the wrapped value type)
//	param           Name, Position, Constraints
type Type struct {
	Kind        string      `json:"kind" yaml:"kind" msgpack:"kind" validate:"required,oneof=class struct scalar byref array generic optional param"`
	Namespace   string      `json:"namespace,omitempty" yaml:"namespace,omitempty" msgpack:"namespace,omitempty"`
	Name        string      `json:"name,omitempty" yaml:"name,omitempty" msgpack:"name,omitempty"`
	ValueType   bool        `json:"valueType,omitempty" yaml:"valueType,omitempty" msgpack:"valueType,omitempty"`
	Element     *Type       `json:"element,omitempty" yaml:"element,omitempty" msgpack:"element,omitempty"`
	Rank        int         `json:"rank,omitempty" yaml:"rank,omitempty" msgpack:"rank,omitempty" validate:"gte=0,lte=32"`
	Args        []*Type     `json:"args,omitempty" yaml:"args,omitempty" msgpack:"args,omitempty" validate:"dive,required"`
	Position    int         `json:"position,omitempty" yaml:"position,omitempty" msgpack:"position,omitempty" validate:"gte=0"`
	Constraints []string    `json:"constraints,omitempty" yaml:"constraints,omitempty" msgpack:"constraints,omitempty" validate:"dive,oneof=class struct new()"`
	Annotations []Attribute `json:"annotations,omitempty" yaml:"annotations,omitempty" msgpack:"annotations,omitempty" validate:"dive"`
}

// Attribute is an annotation entry. Name may be the fully qualified
// attribute name or one of the short forms "Nullable" and "NullableContext".
// Each argument is an integer (scalar), a list of integers (sequence), a
// string or a boolean.
type Attribute struct {
	Name string `json:"name" yaml:"name" msgpack:"name" validate:"required"`
	Args []any  `json:"args,omitempty" yaml:"args,omitempty" msgpack:"args,omitempty"`
}
