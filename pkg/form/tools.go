package form

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-adlform/pkg/document"
)

// ToolKind names one of the three tool groups and doubles as the mapping key
// the group lives under.
type ToolKind string

const (
	ToolCommand   ToolKind = "commands"
	ToolOption    ToolKind = "options"
	ToolDecorator ToolKind = "decorators"
)

// DefaultToolsPath is where assistant definitions keep their tools.
var DefaultToolsPath = document.PathOf("assistant_instructions", "tools")

// Tool entry fields.
const (
	ToolFieldDisplayName = "display_name"
	ToolFieldDescription = "description"
	ToolFieldPrompt      = "prompt"
)

// ToolKinds returns the groups in render order.
func ToolKinds() []ToolKind {
	return []ToolKind{ToolCommand, ToolOption, ToolDecorator}
}

// ParseToolKind accepts the group key or its singular form.
func ParseToolKind(raw string) (ToolKind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "commands", "command":
		return ToolCommand, nil
	case "options", "option":
		return ToolOption, nil
	case "decorators", "decorator":
		return ToolDecorator, nil
	default:
		return "", fmt.Errorf("form: unknown tool kind %q", raw)
	}
}

// Prefix returns the identifier prefix entries of this kind carry.
func (k ToolKind) Prefix() string {
	if k == ToolDecorator {
		return "+++"
	}
	return "/"
}

// Singular returns the label used for a single entry.
func (k ToolKind) Singular() string {
	switch k {
	case ToolCommand:
		return "Command"
	case ToolOption:
		return "Option"
	case ToolDecorator:
		return "Decorator"
	default:
		return string(k)
	}
}

// Key returns the entry key for name, adding the kind's prefix unless name
// already carries it.
func (k ToolKind) Key(name string) string {
	name = strings.TrimSpace(name)
	prefix := k.Prefix()
	if strings.HasPrefix(name, prefix) {
		return name
	}
	return prefix + strings.TrimLeft(name, "/+")
}

// NewToolEntry returns the mapping a freshly added tool starts with.
func NewToolEntry(displayName string) *document.Value {
	return document.MappingOf(
		document.Entry{Key: ToolFieldDisplayName, Value: document.String(displayName)},
		document.Entry{Key: ToolFieldDescription, Value: document.String("")},
		document.Entry{Key: ToolFieldPrompt, Value: document.String("")},
	)
}
