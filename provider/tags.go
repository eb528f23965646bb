package provider

import (
	"reflect"

	"github.com/broady/nullinfo/internal/directive"
	"github.com/broady/nullinfo/meta"
)

// tagKey is the struct tag that carries per-position states, in the same
// format as the nullable directive: `nullable:"notnull,nullable"` or
// `nullable:"1,2"`.
const tagKey = "nullable"

// tagAttributes returns the NullableAttribute for a struct tag, or nil if
// the tag has no nullable key.
func tagAttributes(tag string) ([]meta.Attribute, error) {
	value, ok := reflect.StructTag(tag).Lookup(tagKey)
	if !ok {
		return nil, nil
	}
	states, err := directive.ParseStates(value)
	if err != nil {
		return nil, err
	}
	values := make([]int64, len(states))
	for i, s := range states {
		values[i] = int64(s)
	}
	return []meta.Attribute{meta.Nullable(values...)}, nil
}
