// Package directive parses nullinfo directives from Go source files.
//
// Directives are line comments in the form:
//
//	//nullinfo:context <state>
//	//nullinfo:nullable <state>[,<state>...]
//
// A state is one of unknown, notnull or nullable, or its byte value 0, 1 or 2.
//
// The context directive sets the default state for everything declared
// beneath it. It may appear above the package clause, a type declaration or
// a method. The nullable directive annotates the declaration that follows it
// with one state per position, like a struct tag does for a field.
package directive

import (
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"strings"

	"github.com/broady/nullinfo"
	"github.com/broady/nullinfo/meta"
)

const prefix = "//nullinfo:"

// Kind represents the type of directive.
type Kind string

const (
	KindContext  Kind = "context"
	KindNullable Kind = "nullable"
)

// Directive represents a parsed nullinfo directive.
type Directive struct {
	Kind   Kind
	States []nullinfo.State // exactly one for context
	Pos    token.Position
}

// Attribute returns the metadata attribute the directive stands for.
func (d Directive) Attribute() meta.Attribute {
	values := make([]int64, len(d.States))
	for i, s := range d.States {
		values[i] = int64(s)
	}
	if d.Kind == KindContext {
		return meta.NullableContext(values[0])
	}
	return meta.Nullable(values...)
}

// File contains the directives of one source file, keyed by the
// declaration they are attached to.
type File struct {
	// Package holds directives above the package clause.
	Package []Directive

	// Types holds directives on type declarations, by type name.
	Types map[string][]Directive

	// Fields holds directives on struct fields, as "Type.Field".
	Fields map[string][]Directive

	// Funcs holds directives on functions and methods, as "Func" or
	// "Type.Method".
	Funcs map[string][]Directive
}

// Attributes converts directives to metadata attributes.
func Attributes(ds []Directive) []meta.Attribute {
	if len(ds) == 0 {
		return nil
	}
	out := make([]meta.Attribute, len(ds))
	for i, d := range ds {
		out[i] = d.Attribute()
	}
	return out
}

// Parse extracts the directives of a single comment group.
//
// Returns an error if a directive is unknown, has malformed states, or is
// given twice in the same group.
func Parse(fset *token.FileSet, cg *ast.CommentGroup) ([]Directive, error) {
	if cg == nil {
		return nil, nil
	}
	var out []Directive
	seen := make(map[Kind]token.Position)
	for _, c := range cg.List {
		if !strings.HasPrefix(c.Text, prefix) {
			continue
		}
		parts := strings.Fields(strings.TrimPrefix(c.Text, prefix))
		if len(parts) == 0 {
			continue
		}

		pos := fset.Position(c.Pos())
		kind := Kind(parts[0])
		switch kind {
		case KindContext, KindNullable:
		default:
			return nil, fmt.Errorf("%s: unknown directive %s%s", pos, prefix, parts[0])
		}
		if prev, dup := seen[kind]; dup {
			return nil, fmt.Errorf("%s: duplicate %s%s directive (first at %s)", pos, prefix, kind, prev)
		}
		seen[kind] = pos

		states, err := parseStates(parts[1:])
		if err != nil {
			return nil, fmt.Errorf("%s: %s%s: %w", pos, prefix, kind, err)
		}
		if kind == KindContext && len(states) != 1 {
			return nil, fmt.Errorf("%s: %s%s takes exactly one state, got %d", pos, prefix, kind, len(states))
		}
		out = append(out, Directive{Kind: kind, States: states, Pos: pos})
	}
	return out, nil
}

// ParseStates parses a list of states separated by commas, spaces or both,
// as used by the nullable directive and the nullable struct tag.
func ParseStates(text string) ([]nullinfo.State, error) {
	return parseStates(strings.Fields(text))
}

func parseStates(args []string) ([]nullinfo.State, error) {
	var out []nullinfo.State
	for _, a := range args {
		for _, f := range strings.Split(a, ",") {
			if f == "" {
				continue
			}
			s, err := nullinfo.ParseState(f)
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil, errors.New("missing state")
	}
	return out, nil
}

// ParseFile extracts the directives of a file and attaches them to
// declarations.
//
// Returns an error if a directive comment is not attached to the package
// clause, a type, a struct field or a function declaration.
func ParseFile(fset *token.FileSet, f *ast.File) (*File, error) {
	result := &File{
		Types:  make(map[string][]Directive),
		Fields: make(map[string][]Directive),
		Funcs:  make(map[string][]Directive),
	}
	attached := make(map[*ast.CommentGroup]bool)

	attach := func(cg *ast.CommentGroup, dst map[string][]Directive, key string) error {
		ds, err := Parse(fset, cg)
		if err != nil {
			return err
		}
		attached[cg] = true
		if len(ds) > 0 {
			dst[key] = append(dst[key], ds...)
		}
		return nil
	}

	if f.Doc != nil {
		ds, err := Parse(fset, f.Doc)
		if err != nil {
			return nil, err
		}
		attached[f.Doc] = true
		result.Package = ds
	}

	for _, decl := range f.Decls {
		switch decl := decl.(type) {
		case *ast.GenDecl:
			if decl.Tok != token.TYPE {
				continue
			}
			for _, spec := range decl.Specs {
				ts := spec.(*ast.TypeSpec)
				doc := ts.Doc
				if doc == nil && !decl.Lparen.IsValid() {
					doc = decl.Doc
				}
				if doc != nil {
					if err := attach(doc, result.Types, ts.Name.Name); err != nil {
						return nil, err
					}
				}
				st, ok := ts.Type.(*ast.StructType)
				if !ok {
					continue
				}
				for _, field := range st.Fields.List {
					for _, cg := range []*ast.CommentGroup{field.Doc, field.Comment} {
						if cg == nil {
							continue
						}
						names := field.Names
						if len(names) == 0 {
							names = []*ast.Ident{{Name: receiverName(field.Type)}}
						}
						for _, name := range names {
							if err := attach(cg, result.Fields, ts.Name.Name+"."+name.Name); err != nil {
								return nil, err
							}
						}
					}
				}
			}

		case *ast.FuncDecl:
			if decl.Doc == nil {
				continue
			}
			if err := attach(decl.Doc, result.Funcs, FuncKey(decl)); err != nil {
				return nil, err
			}
		}
	}

	for _, cg := range f.Comments {
		if attached[cg] {
			continue
		}
		for _, c := range cg.List {
			if strings.HasPrefix(c.Text, prefix) {
				return nil, fmt.Errorf("%s: %s directive must be attached to a package clause, type, field or function declaration",
					fset.Position(c.Pos()), strings.Fields(c.Text)[0])
			}
		}
	}

	return result, nil
}

// FuncKey returns "Type.Method" for methods and the plain name for
// functions. Pointer receivers and type parameters are dropped.
func FuncKey(fn *ast.FuncDecl) string {
	if fn.Recv == nil || len(fn.Recv.List) == 0 {
		return fn.Name.Name
	}
	return receiverName(fn.Recv.List[0].Type) + "." + fn.Name.Name
}

func receiverName(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.StarExpr:
		return receiverName(e.X)
	case *ast.IndexExpr:
		return receiverName(e.X)
	case *ast.IndexListExpr:
		return receiverName(e.X)
	case *ast.ParenExpr:
		return receiverName(e.X)
	case *ast.SelectorExpr:
		return e.Sel.Name
	case *ast.Ident:
		return e.Name
	default:
		return ""
	}
}
