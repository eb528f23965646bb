package nullinfo

import (
	"testing"

	"github.com/broady/nullinfo/meta"
)

func TestShapeOf_Classification(t *testing.T) {
	tests := []struct {
		name     string
		typ      meta.TypeDescriptor
		kind     meta.Kind
		value    bool
		optional bool
	}{
		{"nil", nil, meta.KindScalar, false, false},
		{"class", stringType(), meta.KindScalar, false, false},
		{"struct", intType(), meta.KindScalar, true, false},
		{"byref", meta.ByRef(intType()), meta.KindByRef, false, false},
		{"array", meta.ArrayOf(intType()), meta.KindArray, false, false},
		{"generic", listOf(intType()), meta.KindGeneric, false, false},
		{"optional", meta.Optional(intType()), meta.KindGeneric, true, true},
		{"param", meta.TypeParam("T", 0, meta.ConstraintNone), meta.KindGenericParam, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ShapeOf(tt.typ)
			if s.Kind() != tt.kind {
				t.Errorf("Kind() = %v, want %v", s.Kind(), tt.kind)
			}
			if s.IsValueType() != tt.value {
				t.Errorf("IsValueType() = %v, want %v", s.IsValueType(), tt.value)
			}
			if s.IsOptionalWrapper() != tt.optional {
				t.Errorf("IsOptionalWrapper() = %v, want %v", s.IsOptionalWrapper(), tt.optional)
			}

			// Exactly one shape predicate holds for non-scalars.
			n := 0
			for _, b := range []bool{s.IsByRef(), s.IsArray(), s.IsGeneric(), s.IsGenericParam()} {
				if b {
					n++
				}
			}
			if want := map[bool]int{true: 0, false: 1}[tt.kind == meta.KindScalar]; n != want {
				t.Errorf("%d shape predicates true, want %d", n, want)
			}
		})
	}
}

func TestShapeOf_Accessors(t *testing.T) {
	elem := stringType()
	if ShapeOf(meta.ByRef(elem)).Element() != meta.TypeDescriptor(elem) {
		t.Error("ByRef Element() mismatch")
	}
	if ShapeOf(meta.ArrayOf(elem)).Element() != meta.TypeDescriptor(elem) {
		t.Error("Array Element() mismatch")
	}
	if ShapeOf(elem).Element() != nil {
		t.Error("scalar Element() should be nil")
	}

	d := dictOf(stringType(), intType())
	if args := ShapeOf(d).Arguments(); len(args) != 2 || args[1] != d.Arguments[1] {
		t.Errorf("Arguments() = %v", args)
	}
	if ShapeOf(elem).Arguments() != nil {
		t.Error("scalar Arguments() should be nil")
	}

	p := meta.TypeParam("T", 0, meta.ConstraintNotNullableValueType)
	if !ShapeOf(p).Constraints().Has(meta.ConstraintNotNullableValueType) {
		t.Error("Constraints() lost the struct constraint")
	}
	if ShapeOf(elem).Constraints() != meta.ConstraintNone {
		t.Error("scalar Constraints() should be none")
	}
	if ShapeOf(nil).Attributes() != nil {
		t.Error("nil Attributes() should be nil")
	}
}
