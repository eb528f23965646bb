package meta

import "encoding/json"

// JSON serialization support for descriptors.
// All descriptors include a "kind" field for type discrimination.

// MarshalJSON implements json.Marshaler for ScalarDescriptor.
func (d *ScalarDescriptor) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind        string      `json:"kind"`
		Name        Identifier  `json:"name"`
		ValueType   bool        `json:"valueType,omitempty"`
		Annotations []Attribute `json:"annotations,omitempty"`
	}{
		Kind:        "scalar",
		Name:        d.Name,
		ValueType:   d.ValueType,
		Annotations: d.Annotations,
	})
}

// MarshalJSON implements json.Marshaler for ByRefDescriptor.
func (d *ByRefDescriptor) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind    string         `json:"kind"`
		Element TypeDescriptor `json:"element"`
	}{
		Kind:    "byref",
		Element: d.Element,
	})
}

// MarshalJSON implements json.Marshaler for ArrayDescriptor.
func (d *ArrayDescriptor) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind    string         `json:"kind"`
		Element TypeDescriptor `json:"element"`
		Rank    int            `json:"rank,omitempty"`
	}{
		Kind:    "array",
		Element: d.Element,
		Rank:    d.Rank,
	})
}

// MarshalJSON implements json.Marshaler for GenericDescriptor.
func (d *GenericDescriptor) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind        string           `json:"kind"`
		Name        Identifier       `json:"name"`
		Arguments   []TypeDescriptor `json:"arguments"`
		ValueType   bool             `json:"valueType,omitempty"`
		Annotations []Attribute      `json:"annotations,omitempty"`
	}{
		Kind:        "generic",
		Name:        d.Name,
		Arguments:   d.Arguments,
		ValueType:   d.ValueType,
		Annotations: d.Annotations,
	})
}

// MarshalJSON implements json.Marshaler for GenericParamDescriptor.
func (d *GenericParamDescriptor) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind            string           `json:"kind"`
		ParamName       string           `json:"paramName"`
		Position        int              `json:"position"`
		Constraints     string           `json:"constraints,omitempty"`
		ConstraintTypes []TypeDescriptor `json:"constraintTypes,omitempty"`
		Annotations     []Attribute      `json:"annotations,omitempty"`
	}{
		Kind:            "genericParam",
		ParamName:       d.ParamName,
		Position:        d.Position,
		Constraints:     d.Constraints.String(),
		ConstraintTypes: d.ConstraintTypes,
		Annotations:     d.Annotations,
	})
}

// MarshalJSON implements json.Marshaler for Identifier.
func (id Identifier) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Name      string `json:"name"`
		Namespace string `json:"namespace,omitempty"`
	}{
		Name:      id.Name,
		Namespace: id.Namespace,
	})
}

// MarshalJSON implements json.Marshaler for Arg. The value is emitted in its
// natural JSON form: number, array of numbers, string or boolean.
func (a Arg) MarshalJSON() ([]byte, error) {
	switch a.Kind {
	case ArgSequence:
		seq := a.Sequence
		if seq == nil {
			seq = []int64{}
		}
		return json.Marshal(seq)
	case ArgText:
		return json.Marshal(a.Text)
	case ArgBool:
		return json.Marshal(a.Bool)
	default:
		return json.Marshal(a.Scalar)
	}
}

// MarshalJSON implements json.Marshaler for Attribute.
func (a Attribute) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Name string `json:"name"`
		Args []Arg  `json:"args"`
	}{
		Name: a.Name,
		Args: a.Args,
	})
}
