package meta

import (
	"reflect"
	"testing"
)

func TestCatalog(t *testing.T) {
	outer := &TypeDef{Name: Identifier{Namespace: "Acme", Name: "Outer"}}
	inner := &TypeDef{Name: Identifier{Namespace: "Acme", Name: "Inner"}, DeclaringType: outer}

	m := &Method{Name: "Run", DeclaringType: inner}
	m.AddParameter("input", Class("System", "String"))

	c := &Catalog{}
	c.AddScope(outer)
	c.AddScope(inner)
	c.AddMember(&Field{Name: "count", DeclaringType: inner})
	c.AddMember(&Property{Name: "Name", DeclaringType: outer})
	c.AddMember(m)
	c.AddMember(&Field{Name: "loose"})
	c.AddWarning(Warning{Code: "TEST", Message: "test"})

	if c.FindScope("Inner") != inner {
		t.Error("FindScope(Inner) mismatch")
	}
	if c.FindScope("Missing") != nil {
		t.Error("FindScope(Missing) should be nil")
	}
	if c.FindMember("Inner.Run") != Member(m) {
		t.Error("FindMember(Inner.Run) mismatch")
	}
	if c.FindMember("loose") == nil {
		t.Error("FindMember(loose) should find a member without scope")
	}
	if c.FindMember("Outer.Run") != nil {
		t.Error("FindMember(Outer.Run) should be nil")
	}

	want := []string{"Inner.count", "Outer.Name", "Inner.Run", "loose"}
	if got := c.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
	if len(c.Warnings) != 1 {
		t.Errorf("len(Warnings) = %d, want 1", len(c.Warnings))
	}
}

func TestMemberKinds(t *testing.T) {
	tests := []struct {
		m    Member
		want string
	}{
		{&Field{}, "field"},
		{&Property{}, "property"},
		{&Method{}, "method"},
	}
	for _, tt := range tests {
		if got := tt.m.MemberKind().String(); got != tt.want {
			t.Errorf("MemberKind() = %q, want %q", got, tt.want)
		}
	}
	if MemberKind(9).String() != "unknown" {
		t.Error("invalid MemberKind should be unknown")
	}
}

func TestMethod_AddParameter(t *testing.T) {
	m := &Method{Name: "Copy"}
	src := m.AddParameter("src", Class("System", "String"))
	dst := m.AddParameter("dst", ByRef(Class("System", "String")), Nullable(2))

	if src.Position != 0 || dst.Position != 1 {
		t.Errorf("positions = %d, %d; want 0, 1", src.Position, dst.Position)
	}
	if src.Member != m || dst.Member != m {
		t.Error("parameters should point back at their method")
	}
	if len(dst.Annotations) != 1 {
		t.Errorf("dst annotations = %v", dst.Annotations)
	}
	if m.Parameter("missing") != nil {
		t.Error("Parameter(missing) should be nil")
	}
}

func TestCatalog_DuplicateWarnings(t *testing.T) {
	svc := &TypeDef{Name: Identifier{Namespace: "Acme", Name: "Svc"}}
	c := &Catalog{}
	c.AddMember(&Method{Name: "Get", DeclaringType: svc})
	c.AddMember(&Field{Name: "id", DeclaringType: svc})
	c.AddMember(&Method{Name: "Get", DeclaringType: svc})
	c.AddMember(&Method{Name: "Get", DeclaringType: svc})

	got := c.DuplicateWarnings()
	if len(got) != 1 {
		t.Fatalf("got %d warnings, want 1: %+v", len(got), got)
	}
	w := got[0]
	if w.Code != "DUPLICATE_KEY" || w.TypeName != "Svc" {
		t.Errorf("warning = %+v", w)
	}
	if want := "3 members share key Svc.Get; only the first is reachable by key"; w.Message != want {
		t.Errorf("message = %q, want %q", w.Message, want)
	}

	if got := (&Catalog{Members: c.Members[:2]}).DuplicateWarnings(); got != nil {
		t.Errorf("unique keys: got %+v, want nil", got)
	}
}
