package nullinfo

import (
	"encoding/json"
	"strings"

	"github.com/broady/nullinfo/meta"
)

// Info is one node of a resolved nullability tree.
// The tree mirrors the descriptor it was resolved from: an Array node has an
// ElementType child and a Generic node has one GenericArguments child per
// type argument, in declared order. A ByRef descriptor does not add a level;
// its node is the referent's node reporting the by-reference Type.
type Info struct {
	// Type is the descriptor this node describes.
	Type meta.TypeDescriptor

	// ReadState is the decoded nullability of this position.
	ReadState State

	// ElementType is the array element node. Nil for non-array types.
	ElementType *Info

	// GenericArguments are the type argument nodes. Nil for non-generic types.
	GenericArguments []*Info

	// Position is the structural position this node was decoded at.
	Position int

	// Truncated is set when the resolver stopped descending at its maximum
	// depth. A truncated node is Unknown and has no children.
	Truncated bool
}

// IsNullable reports whether info's ReadState is Nullable.
// A nil info is not nullable.
func IsNullable(info *Info) bool {
	return info != nil && info.ReadState == Nullable
}

// Walk visits info and its descendants in pre-order (node, element,
// generic arguments). Returning false from fn stops descent into that node's
// children.
func (info *Info) Walk(fn func(depth int, n *Info) bool) {
	info.walk(0, fn)
}

func (info *Info) walk(depth int, fn func(int, *Info) bool) {
	if info == nil || !fn(depth, info) {
		return
	}
	info.ElementType.walk(depth+1, fn)
	for _, arg := range info.GenericArguments {
		arg.walk(depth+1, fn)
	}
}

// String renders the tree on one line, e.g. "List<String>:notnull{String:nullable}".
func (info *Info) String() string {
	var sb strings.Builder
	info.write(&sb)
	return sb.String()
}

func (info *Info) write(sb *strings.Builder) {
	if info == nil {
		sb.WriteString("<nil>")
		return
	}
	sb.WriteString(meta.Format(info.Type))
	sb.WriteByte(':')
	sb.WriteString(info.ReadState.String())
	if info.ElementType == nil && len(info.GenericArguments) == 0 {
		return
	}
	sb.WriteByte('{')
	first := true
	if info.ElementType != nil {
		info.ElementType.write(sb)
		first = false
	}
	for _, arg := range info.GenericArguments {
		if !first {
			sb.WriteString(", ")
		}
		arg.write(sb)
		first = false
	}
	sb.WriteByte('}')
}

// MarshalJSON implements json.Marshaler for Info.
func (info *Info) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Type             string  `json:"type"`
		Kind             string  `json:"kind"`
		ReadState        State   `json:"readState"`
		Position         int     `json:"position"`
		ElementType      *Info   `json:"elementType,omitempty"`
		GenericArguments []*Info `json:"genericArguments,omitempty"`
		Truncated        bool    `json:"truncated,omitempty"`
	}{
		Type:             meta.Format(info.Type),
		Kind:             kindName(info.Type),
		ReadState:        info.ReadState,
		Position:         info.Position,
		ElementType:      info.ElementType,
		GenericArguments: info.GenericArguments,
		Truncated:        info.Truncated,
	})
}

func kindName(t meta.TypeDescriptor) string {
	if t == nil {
		return ""
	}
	return t.Kind().String()
}
