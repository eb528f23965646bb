package meta

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestDescriptorJSON_KindDiscriminator(t *testing.T) {
	tests := []struct {
		d    TypeDescriptor
		kind string
	}{
		{Class("System", "String"), "scalar"},
		{ByRef(Class("System", "String")), "byref"},
		{ArrayOf(Class("System", "String")), "array"},
		{Optional(Struct("System", "Int32")), "generic"},
		{TypeParam("T", 0, ConstraintNotNullableValueType), "genericParam"},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			data, err := json.Marshal(tt.d)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			var got struct {
				Kind string `json:"kind"`
			}
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if got.Kind != tt.kind {
				t.Errorf("kind = %q, want %q (%s)", got.Kind, tt.kind, data)
			}
		})
	}
}

func TestGenericParamJSON_Constraints(t *testing.T) {
	data, err := json.Marshal(TypeParam("T", 2, ConstraintNotNullableValueType))
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	if !strings.Contains(s, `"constraints":"struct"`) || !strings.Contains(s, `"position":2`) {
		t.Errorf("unexpected JSON: %s", s)
	}
}

func TestAttributeJSON(t *testing.T) {
	attrs := []Attribute{
		Nullable(2),
		Nullable(1, 2),
		{Name: "X", Args: []Arg{TextArg("a"), BoolArg(true)}},
		Nullable(),
	}
	data, err := json.Marshal(attrs)
	if err != nil {
		t.Fatal(err)
	}
	want := `[{"name":"` + NullableAttribute + `","args":[2]},` +
		`{"name":"` + NullableAttribute + `","args":[[1,2]]},` +
		`{"name":"X","args":["a",true]},` +
		`{"name":"` + NullableAttribute + `","args":[[]]}]`
	if string(data) != want {
		t.Errorf("JSON =\n  %s\nwant\n  %s", data, want)
	}
}
