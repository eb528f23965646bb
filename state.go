package nullinfo

import (
	"fmt"
	"strings"
)

// State is the nullability of one structural position.
type State uint8

const (
	// Unknown means neither proven nullable nor proven non-null.
	Unknown State = iota
	// NotNull means the position never holds an absent value.
	NotNull
	// Nullable means the position may hold an absent value.
	Nullable
)

// String returns the lower-case state name.
func (s State) String() string {
	switch s {
	case Unknown:
		return "unknown"
	case NotNull:
		return "notnull"
	case Nullable:
		return "nullable"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// stateFromByte maps an encoded byte to a State. Bytes outside the
// documented range decode as Unknown.
func stateFromByte(b uint8) State {
	switch b {
	case 1:
		return NotNull
	case 2:
		return Nullable
	default:
		return Unknown
	}
}

// ParseState parses a state name or its encoded digit.
// Accepted forms: "unknown"/"oblivious"/"0", "notnull"/"1", "nullable"/"2".
func ParseState(s string) (State, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "unknown", "oblivious", "0":
		return Unknown, nil
	case "notnull", "not-null", "1":
		return NotNull, nil
	case "nullable", "2":
		return Nullable, nil
	default:
		return Unknown, fmt.Errorf("invalid nullability state %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(text []byte) error {
	v, err := ParseState(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
