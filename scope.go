package nullinfo

import (
	"fortio.org/safecast"

	"github.com/broady/nullinfo/meta"
)

// ContextDefault walks from scope outward through DeclaringType and returns
// the first scope-level default found. Scopes whose context entry is not a
// single scalar byte are skipped.
func ContextDefault(scope *meta.TypeDef) (State, bool) {
	return contextDefault(scope, defaultMaxDepth)
}

// contextDefault bounds the walk by limit so that a cyclic scope graph
// terminates.
func contextDefault(scope *meta.TypeDef, limit int) (State, bool) {
	for i := 0; scope != nil && i <= limit; i++ {
		if s, ok := contextEntry(scope.Annotations); ok {
			return s, true
		}
		scope = scope.DeclaringType
	}
	return Unknown, false
}

// contextEntry decodes a scope-level default from one entry list.
func contextEntry(attrs []meta.Attribute) (State, bool) {
	attr, ok := meta.FindAttribute(attrs, meta.NullableContextAttribute)
	if !ok || len(attr.Args) != 1 || attr.Args[0].Kind != meta.ArgScalar {
		return Unknown, false
	}
	b, err := safecast.Conv[uint8](attr.Args[0].Scalar)
	if err != nil {
		return Unknown, false
	}
	return stateFromByte(b), true
}
