package schema

import (
	"strings"

	"github.com/goliatone/go-adlform/pkg/document"
)

// Kind enumerates the JSON-Schema types the editor understands.
type Kind string

const (
	KindUnknown Kind = ""
	KindObject  Kind = "object"
	KindArray   Kind = "array"
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindInteger Kind = "integer"
	KindBoolean Kind = "boolean"
)

func parseKind(raw string) (Kind, bool) {
	switch Kind(strings.ToLower(strings.TrimSpace(raw))) {
	case KindObject:
		return KindObject, true
	case KindArray:
		return KindArray, true
	case KindString:
		return KindString, true
	case KindNumber:
		return KindNumber, true
	case KindInteger:
		return KindInteger, true
	case KindBoolean:
		return KindBoolean, true
	default:
		return KindUnknown, false
	}
}

// IsScalar reports whether nodes of this kind hold a single scalar value.
func (k Kind) IsScalar() bool {
	switch k {
	case KindString, KindNumber, KindInteger, KindBoolean:
		return true
	default:
		return false
	}
}

// IsNumeric reports whether the kind is number or integer.
func (k Kind) IsNumeric() bool {
	return k == KindNumber || k == KindInteger
}

// Category is the `category` / `x-category` annotation separating user
// authored fields from system fields.
type Category string

const (
	CategoryUnset  Category = ""
	CategoryCustom Category = "custom"
	CategorySystem Category = "system"
)

// Property is one named entry of an object node, kept in declaration order.
type Property struct {
	Name string
	Node *Node
}

// Node is an immutable schema fragment.
type Node struct {
	Kind        Kind
	Title       string
	Description string
	Format      string
	Category    Category

	// Properties lists object members in the order the schema declares them.
	Properties []Property
	// Items describes array members.
	Items *Node
	// AdditionalProperties describes free-keyed object members, such as the
	// entries of a tool map.
	AdditionalProperties *Node

	Enum     []string
	Default  *document.Value
	Required []string
}

// Property returns the declared property called name.
func (n *Node) Property(name string) (*Node, bool) {
	if n == nil {
		return nil, false
	}
	for _, prop := range n.Properties {
		if prop.Name == name {
			return prop.Node, true
		}
	}
	return nil, false
}

// IsRequired reports whether name is listed in the node's required set.
func (n *Node) IsRequired(name string) bool {
	if n == nil {
		return false
	}
	for _, req := range n.Required {
		if req == name {
			return true
		}
	}
	return false
}

// HasDefault reports whether the schema declares a default value.
func (n *Node) HasDefault() bool {
	return n != nil && n.Default != nil
}

// IsCustom reports whether the node carries the custom category.
func (n *Node) IsCustom() bool {
	return n != nil && n.Category == CategoryCustom
}

// IsStructured reports whether the node is a container the form cannot
// break into individual fields: an object without declared properties, or
// an array whose items are missing or are not scalars or objects.
func (n *Node) IsStructured() bool {
	if n == nil {
		return false
	}
	switch n.Kind {
	case KindObject:
		return len(n.Properties) == 0
	case KindArray:
		if n.Items == nil {
			return true
		}
		return !n.Items.Kind.IsScalar() && (n.Items.Kind != KindObject || n.Items.IsStructured())
	default:
		return false
	}
}

// Lookup walks path from n. Key segments select declared properties, falling
// back to AdditionalProperties; index segments select Items.
func (n *Node) Lookup(path document.Path) (*Node, bool) {
	current := n
	for _, seg := range path {
		if current == nil {
			return nil, false
		}
		if seg.IsIndex {
			if current.Kind != KindArray || current.Items == nil {
				return nil, false
			}
			current = current.Items
			continue
		}
		if current.Kind != KindObject {
			return nil, false
		}
		if child, ok := current.Property(seg.Key); ok {
			current = child
			continue
		}
		if current.AdditionalProperties == nil {
			return nil, false
		}
		current = current.AdditionalProperties
	}
	return current, current != nil
}
