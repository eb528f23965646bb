package meta

import "testing"

func TestArgKind_String(t *testing.T) {
	for k, want := range map[ArgKind]string{
		ArgScalar: "Scalar", ArgSequence: "Sequence", ArgText: "Text", ArgBool: "Bool", ArgKind(42): "Unknown",
	} {
		if got := k.String(); got != want {
			t.Errorf("ArgKind(%d).String() = %q, want %q", int(k), got, want)
		}
	}
}

func TestNullable(t *testing.T) {
	a := Nullable(2)
	if a.Name != NullableAttribute || len(a.Args) != 1 || a.Args[0].Kind != ArgScalar || a.Args[0].Scalar != 2 {
		t.Errorf("Nullable(2) = %+v", a)
	}

	a = Nullable(1, 2)
	if len(a.Args) != 1 || a.Args[0].Kind != ArgSequence || len(a.Args[0].Sequence) != 2 {
		t.Errorf("Nullable(1, 2) = %+v", a)
	}

	a = Nullable()
	if a.Args[0].Kind != ArgSequence || a.Args[0].Sequence == nil {
		t.Errorf("Nullable() = %+v, want empty non-nil sequence", a)
	}
}

func TestNullableContext(t *testing.T) {
	a := NullableContext(1)
	if a.Name != NullableContextAttribute || a.Args[0].Scalar != 1 {
		t.Errorf("NullableContext(1) = %+v", a)
	}
}

func TestFindAttribute(t *testing.T) {
	attrs := []Attribute{
		{Name: "System.ObsoleteAttribute", Args: []Arg{TextArg("old")}},
		NullableContext(2),
		Nullable(1),
	}
	if a, ok := FindAttribute(attrs, NullableAttribute); !ok || a.Args[0].Scalar != 1 {
		t.Errorf("FindAttribute(Nullable) = %+v, %v", a, ok)
	}
	if _, ok := FindAttribute(attrs, "Missing"); ok {
		t.Error("FindAttribute(Missing) should fail")
	}
	if _, ok := FindAttribute(nil, NullableAttribute); ok {
		t.Error("FindAttribute(nil) should fail")
	}
}
