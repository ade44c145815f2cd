package schema

import (
	"fmt"
	"strings"
)

// Mode selects which fields a form view shows.
type Mode int

const (
	// ModeSimple shows only fields annotated with the custom category.
	ModeSimple Mode = iota
	// ModeAdvanced shows every field.
	ModeAdvanced
)

func (m Mode) String() string {
	switch m {
	case ModeSimple:
		return "simple"
	case ModeAdvanced:
		return "advanced"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode accepts "simple" or "advanced" (case-insensitive).
func ParseMode(raw string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "simple", "":
		return ModeSimple, nil
	case "advanced":
		return ModeAdvanced, nil
	default:
		return ModeSimple, fmt.Errorf("schema: unknown display mode %q", raw)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// IsVisibleIn reports whether node is shown on its own in mode: always in
// Advanced, and only for custom fields in Simple.
func IsVisibleIn(node *Node, mode Mode) bool {
	if node == nil {
		return false
	}
	if mode == ModeAdvanced {
		return true
	}
	return node.Category == CategoryCustom
}
