package nullinfo

import (
	"log/slog"

	"github.com/broady/nullinfo/meta"
)

// defaultMaxDepth bounds recursion through nested descriptors and scopes.
const defaultMaxDepth = 256

// Resolver decodes nullability trees from descriptors.
// Configure it with the With* methods before first use; after that a
// Resolver is safe for concurrent use and keeps no state between calls.
type Resolver struct {
	logger         *slog.Logger
	maxDepth       int
	contextNotNull bool
	paramAttrs     bool
	indexer        func(position, i int) int
}

// NewResolver returns a Resolver with default settings.
func NewResolver() *Resolver {
	return &Resolver{
		maxDepth: defaultMaxDepth,
		indexer:  GenericArgumentPosition,
	}
}

// WithLogger sets the logger for debug diagnostics.
// If not set, slog.Default() will be used.
func (r *Resolver) WithLogger(logger *slog.Logger) *Resolver {
	r.logger = logger
	return r
}

// WithMaxDepth sets the maximum descriptor nesting depth. Nodes below the
// limit resolve Unknown and are marked Truncated. Values < 1 restore the
// default of 256.
func (r *Resolver) WithMaxDepth(depth int) *Resolver {
	if depth < 1 {
		depth = defaultMaxDepth
	}
	r.maxDepth = depth
	return r
}

// WithContextNotNull makes a NotNull scope-level default apply to reference
// positions without an explicit annotation. By default only a Nullable
// scope default is applied and such positions stay Unknown.
func (r *Resolver) WithContextNotNull() *Resolver {
	r.contextNotNull = true
	return r
}

// WithParameterAnnotations lets a parameter's own NullableAttribute take
// precedence over the owning method's. A parameter annotation that is
// malformed counts as absent and the method's stream is used instead.
// Off by default.
func (r *Resolver) WithParameterAnnotations() *Resolver {
	r.paramAttrs = true
	return r
}

// WithGenericIndexer replaces the function that computes the structural
// position of generic argument i of a type decoded at position.
// A nil fn restores GenericArgumentPosition.
func (r *Resolver) WithGenericIndexer(fn func(position, i int) int) *Resolver {
	if fn == nil {
		fn = GenericArgumentPosition
	}
	r.indexer = fn
	return r
}

// GenericArgumentPosition is the default generic argument indexer:
// argument i of a type at position p is decoded at p+i+1.
//
// The formula does not account for positions consumed by earlier
// arguments' subtrees, so for generics nested inside earlier arguments it
// can disagree with a pre-order walk of the encoded stream. It is kept as
// the default; see TestGenericArgumentPosition_NestedMisalignment.
func GenericArgumentPosition(position, i int) int {
	return position + i + 1
}

func (r *Resolver) log() *slog.Logger {
	if r.logger != nil {
		return r.logger
	}
	return slog.Default()
}

// ForProperty resolves the type of a property using the property's
// annotations and its declaring scope. A NullableContextAttribute on the
// property itself is consulted before the declaring scope chain.
func (r *Resolver) ForProperty(p *meta.Property) *Info {
	if p == nil {
		return &Info{}
	}
	return r.run(p.Type, &request{
		name:    p.Name,
		source:  p.Annotations,
		context: p.Annotations,
		scope:   p.DeclaringType,
	})
}

// ForField resolves the type of a field using the field's annotations and
// its declaring scope. A NullableContextAttribute on the field itself is
// consulted before the declaring scope chain.
func (r *Resolver) ForField(f *meta.Field) *Info {
	if f == nil {
		return &Info{}
	}
	return r.run(f.Type, &request{
		name:    f.Name,
		source:  f.Annotations,
		context: f.Annotations,
		scope:   f.DeclaringType,
	})
}

// ForParameter resolves the type of a parameter against the annotations of
// the method that owns it and that method's declaring type. A parameter with
// no owner uses its own annotations and has no scope.
//
// See WithParameterAnnotations for reading the parameter's own annotation.
func (r *Resolver) ForParameter(p *meta.Parameter) *Info {
	if p == nil {
		return &Info{}
	}
	req := &request{name: p.Name, source: p.Annotations}
	if m := p.Member; m != nil {
		req.source = m.Annotations
		req.context = m.Annotations
		req.scope = m.DeclaringType
		if r.paramAttrs {
			if own := r.decode(p.Annotations, p.Name); !own.Absent() {
				req.stream, req.decoded = own, true
			}
		}
	}
	return r.run(p.Type, req)
}

// ForReturn resolves a method's return type using the method's annotations
// and declaring scope. A NullableContextAttribute on the method itself is
// consulted before the declaring scope chain.
func (r *Resolver) ForReturn(m *meta.Method) *Info {
	if m == nil {
		return &Info{}
	}
	return r.run(m.ReturnType, &request{
		name:    m.Name,
		source:  m.Annotations,
		context: m.Annotations,
		scope:   m.DeclaringType,
	})
}

// ForMember dispatches to ForField, ForProperty or ForReturn.
func (r *Resolver) ForMember(m meta.Member) *Info {
	switch m := m.(type) {
	case *meta.Field:
		return r.ForField(m)
	case *meta.Property:
		return r.ForProperty(m)
	case *meta.Method:
		return r.ForReturn(m)
	default:
		return &Info{}
	}
}

// Resolve decodes t at position 0 against an explicit annotation source and
// declaring scope.
func (r *Resolver) Resolve(t meta.TypeDescriptor, scope *meta.TypeDef, source []meta.Attribute) *Info {
	return r.run(t, &request{source: source, scope: scope})
}

// request carries the inputs shared by every position of one resolve call.
type request struct {
	name    string
	source  []meta.Attribute
	context []meta.Attribute
	scope   *meta.TypeDef

	// source is decoded once per call.
	stream  Stream
	decoded bool

	// scope default is looked up at most once per call.
	ctxState State
	ctxFound bool
	ctxDone  bool
}

func (r *Resolver) run(t meta.TypeDescriptor, req *request) *Info {
	return r.resolve(t, req, 0, 0)
}

// resolve implements the precedence rules: by-ref pass-through, array
// element, generic arguments, value types, explicit annotations, scope
// default, generic parameter constraints, Unknown.
func (r *Resolver) resolve(t meta.TypeDescriptor, req *request, position, depth int) *Info {
	info := &Info{Type: t, Position: position}
	if depth > r.maxDepth {
		info.Truncated = true
		r.log().Debug("nullability resolution truncated",
			slog.String("member", req.name),
			slog.String("type", meta.Format(t)),
			slog.Int("depth", depth),
		)
		return info
	}

	shape := ShapeOf(t)
	switch {
	case shape.IsByRef():
		inner := r.resolve(shape.Element(), req, position, depth+1)
		inner.Type = t
		return inner

	case shape.IsArray():
		info.ElementType = r.resolve(shape.Element(), req, position+1, depth+1)

	case shape.IsGeneric():
		args := shape.Arguments()
		info.GenericArguments = make([]*Info, len(args))
		for i, arg := range args {
			info.GenericArguments[i] = r.resolve(arg, req, r.indexer(position, i), depth+1)
		}
	}

	if shape.IsValueType() {
		if shape.IsOptionalWrapper() {
			info.ReadState = Nullable
		} else {
			info.ReadState = NotNull
		}
		return info
	}

	if state, ok := r.explicit(shape, req, position); ok {
		info.ReadState = state
		return info
	}

	if state, ok := r.scopeDefault(req); ok {
		if state == Nullable || (state == NotNull && r.contextNotNull) {
			info.ReadState = state
			return info
		}
	}

	if shape.IsGenericParam() && shape.Constraints().Has(meta.ConstraintNotNullableValueType) {
		info.ReadState = NotNull
	}
	return info
}

// explicit looks up the per-position state from the member's stream, or
// from the type's own stream when the member has none.
func (r *Resolver) explicit(shape Shape, req *request, position int) (State, bool) {
	if !req.decoded {
		req.stream = r.decode(req.source, req.name)
		req.decoded = true
	}
	stream := req.stream
	if stream.Absent() {
		stream = r.decode(shape.Attributes(), meta.Format(shape.t))
	}
	return stream.At(position)
}

func (r *Resolver) decode(attrs []meta.Attribute, where string) Stream {
	s, err := decodeStream(attrs)
	if err != nil {
		r.log().Debug("ignoring nullable annotation",
			slog.String("attribute", meta.NullableAttribute),
			slog.String("on", where),
			slog.Any("error", err),
		)
	}
	return s
}

// scopeDefault returns the member-level context, falling back to the
// declaring scope chain.
func (r *Resolver) scopeDefault(req *request) (State, bool) {
	if !req.ctxDone {
		req.ctxState, req.ctxFound = contextEntry(req.context)
		if !req.ctxFound {
			req.ctxState, req.ctxFound = contextDefault(req.scope, r.maxDepth)
		}
		req.ctxDone = true
	}
	return req.ctxState, req.ctxFound
}
