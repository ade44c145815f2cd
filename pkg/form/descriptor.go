package form

import (
	"github.com/goliatone/go-adlform/pkg/document"
	"github.com/goliatone/go-adlform/pkg/schema"
)

// DescriptorKind identifies the shape of a rendered descriptor.
type DescriptorKind string

const (
	// KindSection groups the fields of an object property.
	KindSection DescriptorKind = "section"
	// KindField is a single editable control.
	KindField DescriptorKind = "field"
	// KindList holds one child per array item plus an add affordance.
	KindList DescriptorKind = "list"
	// KindTools is the tools container with its three groups.
	KindTools DescriptorKind = "tools"
	// KindToolGroup lists the entries of one tool kind.
	KindToolGroup DescriptorKind = "tool_group"
	// KindToolEntry is a single command, option or decorator.
	KindToolEntry DescriptorKind = "tool_entry"
)

// ControlKind tells the host which input to bind to a field.
type ControlKind string

const (
	ControlText       ControlKind = "text"
	ControlTextarea   ControlKind = "textarea"
	ControlNumber     ControlKind = "number"
	ControlToggle     ControlKind = "toggle"
	ControlChoice     ControlKind = "choice"
	ControlStructured ControlKind = "structured"
)

// Descriptor is one node of the rendered form tree. Path is absolute from the
// document root and is what the host passes back with edits.
type Descriptor struct {
	Kind        DescriptorKind  `json:"kind"`
	Path        document.Path   `json:"path"`
	Name        string          `json:"name,omitempty"`
	Label       string          `json:"label"`
	Description string          `json:"description,omitempty"`
	Control     ControlKind     `json:"control,omitempty"`
	SchemaKind  schema.Kind     `json:"schemaKind,omitempty"`
	Format      string          `json:"format,omitempty"`
	Value       *document.Value `json:"value,omitempty"`
	Options     []string        `json:"options,omitempty"`
	Required    bool            `json:"required,omitempty"`
	Category    schema.Category `json:"category,omitempty"`

	ToolKind ToolKind `json:"toolKind,omitempty"`
	Prefix   string   `json:"prefix,omitempty"`

	// Addable marks lists and tool groups that accept new entries.
	Addable bool `json:"addable,omitempty"`
	// Removable marks list items and tool entries that can be deleted.
	Removable bool `json:"removable,omitempty"`

	Children []Descriptor `json:"children,omitempty"`
}

// Walk visits d and its descendants depth first. Returning false from fn
// skips the children of the current descriptor.
func (d Descriptor) Walk(fn func(Descriptor) bool) {
	if !fn(d) {
		return
	}
	for _, child := range d.Children {
		child.Walk(fn)
	}
}

// Find returns the first descriptor in the forest bound to path.
func Find(descriptors []Descriptor, path document.Path) (Descriptor, bool) {
	var (
		found Descriptor
		ok    bool
	)
	for _, root := range descriptors {
		root.Walk(func(d Descriptor) bool {
			if ok {
				return false
			}
			if d.Path.Equal(path) {
				found, ok = d, true
				return false
			}
			return path.HasPrefix(d.Path)
		})
		if ok {
			break
		}
	}
	return found, ok
}

// Fields flattens the forest into its field descriptors in render order.
func Fields(descriptors []Descriptor) []Descriptor {
	var out []Descriptor
	for _, root := range descriptors {
		root.Walk(func(d Descriptor) bool {
			if d.Kind == KindField {
				out = append(out, d)
			}
			return true
		})
	}
	return out
}
