package main

import (
	"reflect"
	"testing"

	"github.com/broady/nullinfo"
	"github.com/broady/nullinfo/meta"
)

func TestResolveMember_Truncation(t *testing.T) {
	str := meta.Class("System", "String")
	nestedList := meta.Generic("System.Collections.Generic", "List`1",
		meta.Generic("System.Collections.Generic", "List`1", str))

	m := &meta.Method{
		Name:          "Load",
		DeclaringType: &meta.TypeDef{Name: meta.Identifier{Namespace: "Acme", Name: "Svc"}},
		ReturnType:    nestedList,
	}
	m.AddParameter("id", meta.Struct("System", "Int32"))
	m.AddParameter("keys", nestedList)

	rep := resolveMember(nullinfo.NewResolver().WithMaxDepth(1), m)
	want := []string{
		"resolution truncated at String",
		"param keys: resolution truncated at String",
	}
	if !reflect.DeepEqual(rep.Warnings, want) {
		t.Errorf("warnings = %q, want %q", rep.Warnings, want)
	}

	rep = resolveMember(nullinfo.NewResolver(), m)
	if len(rep.Warnings) != 0 {
		t.Errorf("warnings = %q, want none", rep.Warnings)
	}
}
