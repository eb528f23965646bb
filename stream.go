package nullinfo

import (
	"errors"
	"fmt"

	"fortio.org/safecast"

	"github.com/broady/nullinfo/meta"
)

// Stream is a decoded per-position annotation: absent, a single scalar that
// applies at every position, or a sequence indexed by structural position.
type Stream struct {
	kind     streamKind
	scalar   State
	sequence []State
}

type streamKind uint8

const (
	streamAbsent streamKind = iota
	streamScalar
	streamSequence
)

// Absent reports whether no usable annotation was found.
func (s Stream) Absent() bool { return s.kind == streamAbsent }

// Scalar returns the uniform state if the stream is in scalar form.
func (s Stream) Scalar() (State, bool) {
	return s.scalar, s.kind == streamScalar
}

// Sequence returns the per-position states if the stream is in sequence form.
func (s Stream) Sequence() []State {
	if s.kind != streamSequence {
		return nil
	}
	return s.sequence
}

// At returns the state for a structural position. A scalar stream answers
// every position; a sequence answers positions within its length.
func (s Stream) At(position int) (State, bool) {
	switch s.kind {
	case streamScalar:
		return s.scalar, true
	case streamSequence:
		if position < 0 || position >= len(s.sequence) {
			return Unknown, false
		}
		return s.sequence[position], true
	default:
		return Unknown, false
	}
}

// errMalformed marks an entry that exists but cannot be decoded.
var errMalformed = errors.New("malformed annotation")

// DecodeStream locates the per-position nullability entry in attrs and
// decodes it. Malformed entries decode as absent.
func DecodeStream(attrs []meta.Attribute) Stream {
	s, _ := decodeStream(attrs)
	return s
}

// decodeStream is DecodeStream with the reason a present entry was rejected.
func decodeStream(attrs []meta.Attribute) (Stream, error) {
	attr, ok := meta.FindAttribute(attrs, meta.NullableAttribute)
	if !ok {
		return Stream{}, nil
	}
	if len(attr.Args) != 1 {
		return Stream{}, fmt.Errorf("%w: want 1 argument, got %d", errMalformed, len(attr.Args))
	}

	arg := attr.Args[0]
	switch arg.Kind {
	case meta.ArgScalar:
		b, err := safecast.Conv[uint8](arg.Scalar)
		if err != nil {
			return Stream{}, fmt.Errorf("%w: %w", errMalformed, err)
		}
		return Stream{kind: streamScalar, scalar: stateFromByte(b)}, nil

	case meta.ArgSequence:
		seq := make([]State, len(arg.Sequence))
		for i, v := range arg.Sequence {
			b, err := safecast.Conv[uint8](v)
			if err != nil {
				return Stream{}, fmt.Errorf("%w: element %d: %w", errMalformed, i, err)
			}
			seq[i] = stateFromByte(b)
		}
		return Stream{kind: streamSequence, sequence: seq}, nil

	default:
		return Stream{}, fmt.Errorf("%w: unexpected %s argument", errMalformed, arg.Kind)
	}
}
