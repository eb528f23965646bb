package nullinfo

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/broady/nullinfo/meta"
)

const collections = "System.Collections.Generic"

func stringType() *meta.ScalarDescriptor { return meta.Class("System", "String") }
func objectType() *meta.ScalarDescriptor { return meta.Class("System", "Object") }
func intType() *meta.ScalarDescriptor    { return meta.Struct("System", "Int32") }

func listOf(arg meta.TypeDescriptor) *meta.GenericDescriptor {
	return meta.Generic(collections, "List`1", arg)
}

func dictOf(key, value meta.TypeDescriptor) *meta.GenericDescriptor {
	return meta.Generic(collections, "Dictionary`2", key, value)
}

// scope returns a declaring scope named name with the given annotations.
func scope(name string, attrs ...meta.Attribute) *meta.TypeDef {
	return &meta.TypeDef{Name: meta.Identifier{Namespace: "Acme", Name: name}, Annotations: attrs}
}

// nested returns a scope named name declared inside outer.
func nested(outer *meta.TypeDef, name string, attrs ...meta.Attribute) *meta.TypeDef {
	s := scope(name, attrs...)
	s.DeclaringType = outer
	return s
}

// debugResolver returns a resolver that logs debug records into buf.
func debugResolver(buf *bytes.Buffer) *Resolver {
	logger := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewResolver().WithLogger(logger)
}

// assertState fails the test if info is nil or has the wrong ReadState.
func assertState(t *testing.T, what string, info *Info, want State) {
	t.Helper()
	if info == nil {
		t.Fatalf("%s: info is nil", what)
	}
	if info.ReadState != want {
		t.Errorf("%s: ReadState = %v, want %v", what, info.ReadState, want)
	}
}

// sameTree reports whether a and b have identical shape and states.
func sameTree(a, b *Info) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Type != b.Type || a.ReadState != b.ReadState || a.Position != b.Position {
		return false
	}
	if !sameTree(a.ElementType, b.ElementType) {
		return false
	}
	if len(a.GenericArguments) != len(b.GenericArguments) {
		return false
	}
	for i := range a.GenericArguments {
		if !sameTree(a.GenericArguments[i], b.GenericArguments[i]) {
			return false
		}
	}
	return true
}
