package provider

import (
	"context"
	"fmt"
	"path"
	"reflect"

	"github.com/broady/nullinfo/meta"
)

// ReflectionProvider extracts members using runtime reflection.
// Reflection sees neither comments nor parameter names, so only struct tags
// annotate members; a type may declare its scope default by implementing
// ContextProvider. Prefer the SourceProvider where source is available.
type ReflectionProvider struct{}

// ReflectionInputOptions configures reflection-based extraction.
type ReflectionInputOptions struct {
	// RootTypes are the struct types to extract, specified as reflect.Type
	// values. Pointers are dereferenced.
	RootTypes []reflect.Type
}

// ContextProvider is implemented by types that declare the default state of
// their members: 0 unknown, 1 notnull, 2 nullable.
type ContextProvider interface {
	NullableContext() uint8
}

var contextProviderType = reflect.TypeFor[ContextProvider]()

// BuildCatalog extracts the root types, and every named struct type
// reachable from their fields, and returns a Catalog.
func (p *ReflectionProvider) BuildCatalog(ctx context.Context, opts ReflectionInputOptions) (*meta.Catalog, error) {
	if len(opts.RootTypes) == 0 {
		return nil, fmt.Errorf("no root types provided")
	}

	b := &reflectionCatalogBuilder{
		catalog:  &meta.Catalog{},
		packages: make(map[string]*meta.TypeDef),
		visited:  make(map[reflect.Type]bool),
	}
	for _, t := range opts.RootTypes {
		for t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		if t.Kind() != reflect.Struct {
			return nil, fmt.Errorf("root type %s: expected struct, got %s", t, t.Kind())
		}
		if err := b.extractStruct(ctx, t); err != nil {
			return nil, err
		}
	}
	return b.catalog, nil
}

// reflectionCatalogBuilder maintains state during catalog construction.
type reflectionCatalogBuilder struct {
	catalog  *meta.Catalog
	packages map[string]*meta.TypeDef // package path -> package scope
	visited  map[reflect.Type]bool
}

// extractStruct adds a named struct type as a scope with its members.
func (b *reflectionCatalogBuilder) extractStruct(ctx context.Context, t reflect.Type) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b.visited[t] || t.Name() == "" {
		return nil
	}
	b.visited[t] = true

	scope := &meta.TypeDef{
		Name:          meta.Identifier{Namespace: t.PkgPath(), Name: t.Name()},
		DeclaringType: b.packageScope(t.PkgPath()),
	}
	if reflect.PointerTo(t).Implements(contextProviderType) {
		cp := reflect.New(t).Interface().(ContextProvider)
		scope.Annotations = []meta.Attribute{meta.NullableContext(int64(cp.NullableContext()))}
	}
	b.catalog.AddScope(scope)

	var nested []reflect.Type
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		attrs, err := tagAttributes(string(field.Tag))
		if err != nil {
			return fmt.Errorf("field %s.%s: %w", t.Name(), field.Name, err)
		}
		b.catalog.AddMember(&meta.Field{
			Name:          field.Name,
			Type:          b.typeToDescriptor(field.Type),
			DeclaringType: scope,
			Annotations:   attrs,
		})
		nested = append(nested, namedStructs(field.Type, 0)...)
	}

	b.addMethods(t, scope)

	for _, n := range nested {
		if err := b.extractStruct(ctx, n); err != nil {
			return err
		}
	}
	return nil
}

// addMethods adds the exported methods of *t, except NullableContext.
// Reflection carries no parameter names, so parameters are named argN.
func (b *reflectionCatalogBuilder) addMethods(t reflect.Type, scope *meta.TypeDef) {
	pt := reflect.PointerTo(t)
	for i := 0; i < pt.NumMethod(); i++ {
		method := pt.Method(i)
		if method.Name == "NullableContext" {
			continue
		}
		ft := method.Type
		m := &meta.Method{
			Name:          method.Name,
			ReturnType:    b.results(ft),
			DeclaringType: scope,
		}
		// In(0) is the receiver.
		for j := 1; j < ft.NumIn(); j++ {
			m.AddParameter(fmt.Sprintf("arg%d", j-1), b.typeToDescriptor(ft.In(j)))
		}
		b.catalog.AddMember(m)
	}
}

func (b *reflectionCatalogBuilder) results(ft reflect.Type) meta.TypeDescriptor {
	switch ft.NumOut() {
	case 0:
		return meta.Struct("", "struct{}")
	case 1:
		return b.typeToDescriptor(ft.Out(0))
	}
	args := make([]meta.TypeDescriptor, ft.NumOut())
	for i := range args {
		args[i] = b.typeToDescriptor(ft.Out(i))
	}
	return meta.GenericStruct("", fmt.Sprintf("tuple`%d", len(args)), args...)
}

func (b *reflectionCatalogBuilder) packageScope(pkgPath string) *meta.TypeDef {
	if pkgPath == "" {
		return nil
	}
	if s, ok := b.packages[pkgPath]; ok {
		return s
	}
	s := &meta.TypeDef{Name: meta.Identifier{Namespace: pkgPath, Name: path.Base(pkgPath)}}
	b.packages[pkgPath] = s
	b.catalog.AddScope(s)
	return s
}

// typeToDescriptor converts a reflect.Type to a TypeDescriptor.
func (b *reflectionCatalogBuilder) typeToDescriptor(t reflect.Type) meta.TypeDescriptor {
	switch t.Kind() {
	case reflect.Pointer:
		return meta.Optional(b.typeToDescriptor(t.Elem()))

	case reflect.Slice, reflect.Array:
		return meta.ArrayOf(b.typeToDescriptor(t.Elem()))

	case reflect.Map:
		return meta.Generic("", "map`2", b.typeToDescriptor(t.Key()), b.typeToDescriptor(t.Elem()))

	case reflect.Interface:
		if t.Name() == "" && t.NumMethod() == 0 {
			return meta.Class("", "any")
		}
		return &meta.ScalarDescriptor{Name: typeIdentifier(t)}

	case reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return &meta.ScalarDescriptor{Name: typeIdentifier(t)}

	default:
		// Basic kinds and structs.
		return &meta.ScalarDescriptor{Name: typeIdentifier(t), ValueType: true}
	}
}

func typeIdentifier(t reflect.Type) meta.Identifier {
	if t.Name() == "" {
		return meta.Identifier{Name: t.String()}
	}
	return meta.Identifier{Namespace: t.PkgPath(), Name: t.Name()}
}

// namedStructs returns the named struct types a field type refers to
// through pointers, slices, arrays and maps.
func namedStructs(t reflect.Type, depth int) []reflect.Type {
	if depth > 32 {
		return nil
	}
	switch t.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Array:
		return namedStructs(t.Elem(), depth+1)
	case reflect.Map:
		return append(namedStructs(t.Key(), depth+1), namedStructs(t.Elem(), depth+1)...)
	case reflect.Struct:
		if t.Name() != "" {
			return []reflect.Type{t}
		}
	}
	return nil
}
