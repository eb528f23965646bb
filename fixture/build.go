package fixture

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"fortio.org/safecast"

	"github.com/broady/nullinfo/meta"
)

// ErrUnresolvedScope is returned when a declaringType names a scope that the
// document does not define.
var ErrUnresolvedScope = errors.New("unresolved declaring type")

// shortNames maps fixture shorthands to attribute names.
var shortNames = map[string]string{
	"Nullable":        meta.NullableAttribute,
	"NullableContext": meta.NullableContextAttribute,
}

// Catalog validates the document and builds a catalog from it.
func (d *Document) Catalog() (*meta.Catalog, error) {
	if err := validate.Struct(d); err != nil {
		return nil, fmt.Errorf("invalid document: %w", err)
	}

	c := &meta.Catalog{}
	scopes := make(map[string]*meta.TypeDef, len(d.Scopes))
	for _, s := range d.Scopes {
		if _, dup := scopes[s.Name]; dup {
			return nil, fmt.Errorf("scope %s: defined twice", s.Name)
		}
		td := &meta.TypeDef{
			Name:        meta.Identifier{Namespace: s.Namespace, Name: s.Name},
			Annotations: buildAttributes(s.Annotations),
		}
		scopes[s.Name] = td
		c.AddScope(td)
	}
	for _, s := range d.Scopes {
		if s.DeclaringType == "" {
			continue
		}
		outer, ok := scopes[s.DeclaringType]
		if !ok {
			return nil, fmt.Errorf("scope %s: %w %q", s.Name, ErrUnresolvedScope, s.DeclaringType)
		}
		scopes[s.Name].DeclaringType = outer
	}

	for i, m := range d.Members {
		var declaring *meta.TypeDef
		if m.DeclaringType != "" {
			var ok bool
			if declaring, ok = scopes[m.DeclaringType]; !ok {
				return nil, fmt.Errorf("member %s: %w %q", m.Name, ErrUnresolvedScope, m.DeclaringType)
			}
		}
		member, err := buildMember(m, declaring)
		if err != nil {
			return nil, fmt.Errorf("members[%d] %s: %w", i, m.Name, err)
		}
		c.AddMember(member)
	}
	return c, nil
}

func buildMember(m Member, declaring *meta.TypeDef) (meta.Member, error) {
	typ, err := buildType(m.Type)
	if err != nil {
		return nil, err
	}
	attrs := buildAttributes(m.Annotations)

	switch m.Kind {
	case "field":
		return &meta.Field{Name: m.Name, Type: typ, DeclaringType: declaring, Annotations: attrs}, nil
	case "property":
		return &meta.Property{Name: m.Name, Type: typ, DeclaringType: declaring, Annotations: attrs}, nil
	case "method":
		method := &meta.Method{Name: m.Name, ReturnType: typ, DeclaringType: declaring, Annotations: attrs}
		for _, p := range m.Parameters {
			pt, err := buildType(p.Type)
			if err != nil {
				return nil, fmt.Errorf("parameter %s: %w", p.Name, err)
			}
			method.AddParameter(p.Name, pt, buildAttributes(p.Annotations)...)
		}
		return method, nil
	default:
		return nil, fmt.Errorf("unknown member kind %q", m.Kind)
	}
}

func buildType(t *Type) (meta.TypeDescriptor, error) {
	if t == nil {
		return nil, errors.New("missing type")
	}
	attrs := buildAttributes(t.Annotations)

	switch t.Kind {
	case "class", "struct", "scalar":
		if t.Name == "" {
			return nil, fmt.Errorf("%s type requires a name", t.Kind)
		}
		valueType := t.ValueType
		if t.Kind != "scalar" {
			valueType = t.Kind == "struct"
		}
		return &meta.ScalarDescriptor{
			Name:        meta.Identifier{Namespace: t.Namespace, Name: t.Name},
			ValueType:   valueType,
			Annotations: attrs,
		}, nil

	case "byref":
		elem, err := buildElement(t)
		if err != nil {
			return nil, err
		}
		return meta.ByRef(elem), nil

	case "array":
		elem, err := buildElement(t)
		if err != nil {
			return nil, err
		}
		rank := t.Rank
		if rank == 0 {
			rank = 1
		}
		return &meta.ArrayDescriptor{Element: elem, Rank: rank}, nil

	case "generic":
		if t.Name == "" {
			return nil, errors.New("generic type requires a name")
		}
		args := make([]meta.TypeDescriptor, len(t.Args))
		for i, a := range t.Args {
			arg, err := buildType(a)
			if err != nil {
				return nil, fmt.Errorf("%s argument %d: %w", t.Name, i, err)
			}
			args[i] = arg
		}
		return &meta.GenericDescriptor{
			Name:        meta.Identifier{Namespace: t.Namespace, Name: t.Name},
			Arguments:   args,
			ValueType:   t.ValueType,
			Annotations: attrs,
		}, nil

	case "optional":
		elem, err := buildElement(t)
		if err != nil {
			return nil, err
		}
		return meta.Optional(elem), nil

	case "param":
		if t.Name == "" {
			return nil, errors.New("generic parameter requires a name")
		}
		p := meta.TypeParam(t.Name, t.Position, constraintFlags(t.Constraints))
		p.Annotations = attrs
		return p, nil

	default:
		return nil, fmt.Errorf("unknown type kind %q", t.Kind)
	}
}

// buildElement builds the single child of a wrapper kind. The child may be
// given as element or as the only entry of args.
func buildElement(t *Type) (meta.TypeDescriptor, error) {
	child := t.Element
	if child == nil && len(t.Args) == 1 {
		child = t.Args[0]
	}
	if child == nil {
		return nil, fmt.Errorf("%s type requires an element", t.Kind)
	}
	elem, err := buildType(child)
	if err != nil {
		return nil, fmt.Errorf("%s element: %w", t.Kind, err)
	}
	return elem, nil
}

func constraintFlags(names []string) meta.Constraint {
	var c meta.Constraint
	for _, n := range names {
		switch n {
		case "class":
			c |= meta.ConstraintReferenceType
		case "struct":
			c |= meta.ConstraintNotNullableValueType
		case "new()":
			c |= meta.ConstraintDefaultConstructor
		}
	}
	return c
}

func buildAttributes(in []Attribute) []meta.Attribute {
	if len(in) == 0 {
		return nil
	}
	out := make([]meta.Attribute, len(in))
	for i, a := range in {
		name := a.Name
		if full, ok := shortNames[name]; ok {
			name = full
		}
		args := make([]meta.Arg, len(a.Args))
		for j, v := range a.Args {
			args[j] = buildArg(v)
		}
		out[i] = meta.Attribute{Name: name, Args: args}
	}
	return out
}

// buildArg converts a decoded argument. Values that are neither integers nor
// lists of integers are kept as text or bool so that the resolver sees them
// as malformed rather than the loader rejecting the document.
func buildArg(v any) meta.Arg {
	if n, ok := toInt64(v); ok {
		return meta.ScalarArg(n)
	}
	switch v := v.(type) {
	case []any:
		seq := make([]int64, len(v))
		for i, e := range v {
			n, ok := toInt64(e)
			if !ok {
				return meta.TextArg(fmt.Sprint(v))
			}
			seq[i] = n
		}
		return meta.SequenceArg(seq...)
	case []byte:
		seq := make([]int64, len(v))
		for i, b := range v {
			seq[i] = int64(b)
		}
		return meta.SequenceArg(seq...)
	case bool:
		return meta.BoolArg(v)
	case string:
		return meta.TextArg(v)
	case nil:
		return meta.TextArg("")
	default:
		return meta.TextArg(fmt.Sprint(v))
	}
}

// toInt64 accepts every integer representation the three decoders produce.
func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint:
		i, err := safecast.Conv[int64](n)
		return i, err == nil
	case uint64:
		i, err := safecast.Conv[int64](n)
		return i, err == nil
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		i, err := safecast.Convert[int64](n)
		return i, err == nil
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	default:
		return 0, false
	}
}
