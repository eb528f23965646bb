// Package provider implements input providers that extract member metadata
// from Go code and convert it to the descriptor model in package meta.
//
// Go types map onto descriptor shapes as follows:
//
//	basic types, structs     value scalar
//	*T                       optional wrapper of T
//	[]T, [N]T                array of T
//	map[K]V                  generic "map`2" of K, V
//	Named[A, B]              generic "Named`2" of A, B
//	interfaces, chans, funcs reference scalar
//	type parameters          generic parameter
//
// Nullable annotations come from `nullable:"..."` struct tags and from
// //nullinfo: directives (see internal/directive).
package provider

import (
	"context"
	"fmt"
	"go/token"
	"go/types"

	"golang.org/x/tools/go/packages"

	"github.com/broady/nullinfo/internal/directive"
	"github.com/broady/nullinfo/meta"
)

// SourceProvider extracts members by analyzing Go source code.
type SourceProvider struct{}

// SourceInputOptions configures source-based extraction.
type SourceInputOptions struct {
	// Packages are the Go package paths to analyze.
	Packages []string

	// RootTypes are the type names to extract (e.g., "Repo", "User").
	// If empty, all exported types in the packages are extracted.
	RootTypes []string

	// Dir is the directory in which to run the build system's query tool.
	// If empty, the current directory is used.
	Dir string
}

// BuildCatalog analyzes source code and returns a Catalog.
//
// Each package becomes an outer scope. Each exported named type becomes a
// scope declared in its package, with its struct fields and exported methods
// as members. Exported package-level functions are methods of the package
// scope.
func (p *SourceProvider) BuildCatalog(ctx context.Context, opts SourceInputOptions) (*meta.Catalog, error) {
	if len(opts.Packages) == 0 {
		return nil, fmt.Errorf("no packages specified")
	}

	cfg := &packages.Config{
		Context: ctx,
		Dir:     opts.Dir,
		Mode: packages.NeedName |
			packages.NeedFiles |
			packages.NeedImports |
			packages.NeedTypes |
			packages.NeedSyntax |
			packages.NeedTypesInfo,
	}

	pkgs, err := packages.Load(cfg, opts.Packages...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}
	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			return nil, fmt.Errorf("package %s has errors: %v", pkg.PkgPath, pkg.Errors)
		}
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages found")
	}

	b := &catalogBuilder{
		catalog:   &meta.Catalog{},
		scopes:    make(map[string]*meta.TypeDef),
		typeAttrs: make(map[string][]meta.Attribute),
	}

	for _, pkg := range pkgs {
		if err := b.addPackage(pkg); err != nil {
			return nil, err
		}
	}

	if len(opts.RootTypes) > 0 {
		for _, name := range opts.RootTypes {
			if err := b.extractRootType(name); err != nil {
				return nil, fmt.Errorf("failed to extract root type %s: %w", name, err)
			}
		}
		return b.catalog, nil
	}

	for _, pkg := range b.pkgs {
		if err := b.extractPackage(pkg); err != nil {
			return nil, err
		}
	}
	return b.catalog, nil
}

// catalogBuilder accumulates scopes and members.
type catalogBuilder struct {
	catalog *meta.Catalog
	pkgs    []*loadedPackage

	// scopes holds every scope added so far, keyed by typeKey.
	scopes map[string]*meta.TypeDef

	// typeAttrs holds the nullable directives of named types, keyed by
	// typeKey. They become the type's own annotations wherever it is used.
	typeAttrs map[string][]meta.Attribute
}

// loadedPackage is a package with its directives merged across files.
type loadedPackage struct {
	pkg        *packages.Package
	scope      *meta.TypeDef
	directives *directive.File
}

func (b *catalogBuilder) addPackage(pkg *packages.Package) error {
	merged := &directive.File{
		Types:  make(map[string][]directive.Directive),
		Fields: make(map[string][]directive.Directive),
		Funcs:  make(map[string][]directive.Directive),
	}
	for _, f := range pkg.Syntax {
		df, err := directive.ParseFile(pkg.Fset, f)
		if err != nil {
			return err
		}
		if len(df.Package) > 0 {
			if len(merged.Package) > 0 {
				return fmt.Errorf("multiple package-level //nullinfo: directive groups found:\n  %s\n  %s",
					merged.Package[0].Pos, df.Package[0].Pos)
			}
			merged.Package = df.Package
		}
		for k, v := range df.Types {
			merged.Types[k] = append(merged.Types[k], v...)
		}
		for k, v := range df.Fields {
			merged.Fields[k] = append(merged.Fields[k], v...)
		}
		for k, v := range df.Funcs {
			merged.Funcs[k] = append(merged.Funcs[k], v...)
		}
	}

	scope := &meta.TypeDef{
		Name:        meta.Identifier{Namespace: pkg.PkgPath, Name: pkg.Name},
		Annotations: directive.Attributes(merged.Package),
	}
	if len(pkg.GoFiles) > 0 {
		scope.Source = meta.Source{File: pkg.GoFiles[0]}
	}

	lp := &loadedPackage{pkg: pkg, scope: scope, directives: merged}
	b.pkgs = append(b.pkgs, lp)

	for name, ds := range merged.Types {
		var nullable []directive.Directive
		for _, d := range ds {
			if d.Kind == directive.KindNullable {
				nullable = append(nullable, d)
			}
		}
		if len(nullable) > 0 {
			b.typeAttrs[pkg.PkgPath+"."+name] = directive.Attributes(nullable)
		}
	}
	return nil
}

// extractRootType finds and extracts a named type by name.
func (b *catalogBuilder) extractRootType(name string) error {
	for _, lp := range b.pkgs {
		obj := lp.pkg.Types.Scope().Lookup(name)
		tn, ok := obj.(*types.TypeName)
		if !ok {
			continue
		}
		return b.extractNamedType(lp, tn)
	}
	return fmt.Errorf("type %s not found in any package", name)
}

// extractPackage extracts all exported types and functions of a package.
func (b *catalogBuilder) extractPackage(lp *loadedPackage) error {
	scope := lp.pkg.Types.Scope()
	for _, name := range scope.Names() {
		obj := scope.Lookup(name)
		if !obj.Exported() {
			continue
		}
		switch obj := obj.(type) {
		case *types.TypeName:
			if err := b.extractNamedType(lp, obj); err != nil {
				return err
			}
		case *types.Func:
			b.ensurePackageScope(lp)
			m, err := b.buildMethod(lp, obj, lp.scope, obj.Name())
			if err != nil {
				return err
			}
			b.catalog.AddMember(m)
		}
	}
	return nil
}

func (b *catalogBuilder) ensurePackageScope(lp *loadedPackage) {
	key := lp.pkg.PkgPath
	if _, ok := b.scopes[key]; ok {
		return
	}
	b.scopes[key] = lp.scope
	b.catalog.AddScope(lp.scope)
}

// extractNamedType adds a named type as a scope with its members.
func (b *catalogBuilder) extractNamedType(lp *loadedPackage, tn *types.TypeName) error {
	if tn.IsAlias() {
		return nil
	}
	named, ok := tn.Type().(*types.Named)
	if !ok {
		return nil
	}
	key := typeKey(named)
	if _, exists := b.scopes[key]; exists {
		return nil
	}

	b.ensurePackageScope(lp)
	var contextAttrs []meta.Attribute
	for _, d := range lp.directives.Types[tn.Name()] {
		if d.Kind == directive.KindContext {
			contextAttrs = append(contextAttrs, d.Attribute())
		}
	}
	scope := &meta.TypeDef{
		Name:          meta.Identifier{Namespace: tn.Pkg().Path(), Name: tn.Name()},
		Annotations:   contextAttrs,
		DeclaringType: lp.scope,
		Source:        b.source(lp, tn.Pos()),
	}
	b.scopes[key] = scope
	b.catalog.AddScope(scope)

	if st, ok := named.Underlying().(*types.Struct); ok {
		if err := b.addFields(lp, scope, tn.Name(), st); err != nil {
			return err
		}
	}

	for i := 0; i < named.NumMethods(); i++ {
		fn := named.Method(i)
		if !fn.Exported() {
			continue
		}
		m, err := b.buildMethod(lp, fn, scope, tn.Name()+"."+fn.Name())
		if err != nil {
			return err
		}
		b.catalog.AddMember(m)
	}
	return nil
}

func (b *catalogBuilder) addFields(lp *loadedPackage, scope *meta.TypeDef, typeName string, st *types.Struct) error {
	for i := 0; i < st.NumFields(); i++ {
		field := st.Field(i)
		if !field.Exported() {
			continue
		}

		ft, err := b.convertType(field.Type())
		if err != nil {
			return fmt.Errorf("failed to convert field %s.%s: %w", typeName, field.Name(), err)
		}

		attrs, err := tagAttributes(st.Tag(i))
		if err != nil {
			return fmt.Errorf("%s: field %s.%s: %w", lp.pkg.Fset.Position(field.Pos()), typeName, field.Name(), err)
		}
		if ds := lp.directives.Fields[typeName+"."+field.Name()]; len(ds) > 0 {
			if len(attrs) > 0 {
				b.catalog.AddWarning(meta.Warning{
					Code:     "TAG_AND_DIRECTIVE",
					Message:  fmt.Sprintf("field %s.%s has both a nullable tag and a directive; the tag wins", typeName, field.Name()),
					Source:   ptr(b.source(lp, field.Pos())),
					TypeName: typeName,
				})
			}
			attrs = append(attrs, directive.Attributes(ds)...)
		}

		b.catalog.AddMember(&meta.Field{
			Name:          field.Name(),
			Type:          ft,
			DeclaringType: scope,
			Annotations:   attrs,
		})
	}
	return nil
}

// buildMethod converts a function or method. The return type is the single
// result, an empty struct for no results, or a tuple value type for several.
func (b *catalogBuilder) buildMethod(lp *loadedPackage, fn *types.Func, scope *meta.TypeDef, key string) (*meta.Method, error) {
	sig := fn.Type().(*types.Signature)

	ret, err := b.convertResults(sig.Results())
	if err != nil {
		return nil, fmt.Errorf("failed to convert results of %s: %w", key, err)
	}

	m := &meta.Method{
		Name:          fn.Name(),
		ReturnType:    ret,
		DeclaringType: scope,
		Annotations:   directive.Attributes(lp.directives.Funcs[key]),
	}

	params := sig.Params()
	for i := 0; i < params.Len(); i++ {
		v := params.At(i)
		pt, err := b.convertType(v.Type())
		if err != nil {
			return nil, fmt.Errorf("failed to convert parameter %d of %s: %w", i, key, err)
		}
		name := v.Name()
		if name == "" || name == "_" {
			name = fmt.Sprintf("arg%d", i)
		}
		m.AddParameter(name, pt)
	}
	return m, nil
}

func (b *catalogBuilder) convertResults(results *types.Tuple) (meta.TypeDescriptor, error) {
	switch results.Len() {
	case 0:
		return meta.Struct("", "struct{}"), nil
	case 1:
		return b.convertType(results.At(0).Type())
	}
	args := make([]meta.TypeDescriptor, results.Len())
	for i := range args {
		t, err := b.convertType(results.At(i).Type())
		if err != nil {
			return nil, err
		}
		args[i] = t
	}
	return meta.GenericStruct("", fmt.Sprintf("tuple`%d", len(args)), args...), nil
}

// typeKey generates a unique key for a named type.
func typeKey(named *types.Named) string {
	obj := named.Obj()
	if obj == nil || obj.Pkg() == nil {
		return named.String()
	}
	return obj.Pkg().Path() + "." + obj.Name()
}

// convertType converts a Go type to a TypeDescriptor.
func (b *catalogBuilder) convertType(t types.Type) (meta.TypeDescriptor, error) {
	switch typ := t.(type) {
	case *types.Alias:
		return b.convertType(types.Unalias(typ))

	case *types.Basic:
		if typ.Kind() == types.UntypedNil || typ.Kind() == types.UnsafePointer {
			return meta.Class("", typ.Name()), nil
		}
		return meta.Struct("", typ.Name()), nil

	case *types.Named:
		return b.convertNamed(typ)

	case *types.Pointer:
		elem, err := b.convertType(typ.Elem())
		if err != nil {
			return nil, err
		}
		return meta.Optional(elem), nil

	case *types.Slice:
		elem, err := b.convertType(typ.Elem())
		if err != nil {
			return nil, err
		}
		return meta.ArrayOf(elem), nil

	case *types.Array:
		elem, err := b.convertType(typ.Elem())
		if err != nil {
			return nil, err
		}
		return meta.ArrayOf(elem), nil

	case *types.Map:
		key, err := b.convertType(typ.Key())
		if err != nil {
			return nil, err
		}
		value, err := b.convertType(typ.Elem())
		if err != nil {
			return nil, err
		}
		return meta.Generic("", "map`2", key, value), nil

	case *types.TypeParam:
		return meta.TypeParam(typ.Obj().Name(), typ.Index(), constraintFlags(typ)), nil

	case *types.Interface:
		if typ.Empty() {
			return meta.Class("", "any"), nil
		}
		return meta.Class("", types.TypeString(typ, nil)), nil

	case *types.Struct:
		return meta.Struct("", types.TypeString(typ, nil)), nil

	case *types.Chan, *types.Signature:
		return meta.Class("", types.TypeString(typ, nil)), nil

	default:
		return nil, fmt.Errorf("unknown type: %T", t)
	}
}

func (b *catalogBuilder) convertNamed(named *types.Named) (meta.TypeDescriptor, error) {
	obj := named.Obj()
	pkgPath := ""
	if obj.Pkg() != nil {
		pkgPath = obj.Pkg().Path()
	}
	attrs := b.typeAttrs[typeKey(named)]
	valueType := isValueType(named)

	targs := named.TypeArgs()
	if targs == nil || targs.Len() == 0 {
		return &meta.ScalarDescriptor{
			Name:        meta.Identifier{Namespace: pkgPath, Name: obj.Name()},
			ValueType:   valueType,
			Annotations: attrs,
		}, nil
	}

	args := make([]meta.TypeDescriptor, targs.Len())
	for i := range args {
		arg, err := b.convertType(targs.At(i))
		if err != nil {
			return nil, fmt.Errorf("%s type argument %d: %w", obj.Name(), i, err)
		}
		args[i] = arg
	}
	return &meta.GenericDescriptor{
		Name:        meta.Identifier{Namespace: pkgPath, Name: fmt.Sprintf("%s`%d", obj.Name(), len(args))},
		Arguments:   args,
		ValueType:   valueType,
		Annotations: attrs,
	}, nil
}

// isValueType reports whether values of t can never be nil.
func isValueType(t types.Type) bool {
	if _, ok := types.Unalias(t).(*types.TypeParam); ok {
		return false
	}
	switch u := t.Underlying().(type) {
	case *types.Basic:
		return u.Kind() != types.UntypedNil && u.Kind() != types.UnsafePointer
	case *types.Struct, *types.Array:
		return true
	default:
		return false
	}
}

// constraintFlags derives constraint flags from a type parameter's type
// set. A set made only of value types is a value-type constraint; one made
// only of nilable types is a reference-type constraint.
func constraintFlags(tp *types.TypeParam) meta.Constraint {
	iface, ok := tp.Constraint().Underlying().(*types.Interface)
	if !ok {
		return meta.ConstraintNone
	}
	terms := unionTerms(iface, 0)
	if len(terms) == 0 {
		return meta.ConstraintNone
	}
	values := 0
	for _, term := range terms {
		if isValueType(term.Type()) {
			values++
		}
	}
	switch values {
	case len(terms):
		return meta.ConstraintNotNullableValueType
	case 0:
		return meta.ConstraintReferenceType
	default:
		return meta.ConstraintNone
	}
}

// unionTerms collects union terms from an interface and the constraint
// interfaces it embeds.
func unionTerms(iface *types.Interface, depth int) []*types.Term {
	if depth > 16 {
		return nil
	}
	var out []*types.Term
	for i := 0; i < iface.NumEmbeddeds(); i++ {
		switch e := iface.EmbeddedType(i).(type) {
		case *types.Union:
			for j := 0; j < e.Len(); j++ {
				out = append(out, e.Term(j))
			}
		default:
			if inner, ok := e.Underlying().(*types.Interface); ok {
				out = append(out, unionTerms(inner, depth+1)...)
			} else {
				out = append(out, types.NewTerm(false, e))
			}
		}
	}
	return out
}

func (b *catalogBuilder) source(lp *loadedPackage, pos token.Pos) meta.Source {
	if !pos.IsValid() || lp.pkg.Fset == nil {
		return meta.Source{}
	}
	p := lp.pkg.Fset.Position(pos)
	return meta.Source{File: p.Filename, Line: p.Line, Column: p.Column}
}

func ptr[T any](v T) *T { return &v }
