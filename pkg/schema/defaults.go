package schema

import "github.com/goliatone/go-adlform/pkg/document"

// DefaultFor returns the node's declared default, or the empty value for its
// kind: "" for strings, false for booleans, 0 for numbers, an empty sequence
// for arrays and an empty mapping for objects. Unknown kinds yield null. The
// result is always a fresh value the caller may mutate.
func DefaultFor(node *Node) *document.Value {
	if node == nil {
		return document.Null()
	}
	if node.Default != nil {
		return node.Default.Clone()
	}
	switch node.Kind {
	case KindString:
		return document.String("")
	case KindBoolean:
		return document.Bool(false)
	case KindNumber, KindInteger:
		return document.Int(0)
	case KindArray:
		return document.Sequence()
	case KindObject:
		return document.Mapping()
	default:
		return document.Null()
	}
}

// BuildDefault expands DefaultFor through objects: an object without its own
// default becomes a mapping holding the built default of every declared
// property, in declaration order.
func BuildDefault(node *Node) *document.Value {
	if node == nil || node.Default != nil || node.Kind != KindObject {
		return DefaultFor(node)
	}
	out := document.Mapping()
	for _, prop := range node.Properties {
		out.Put(prop.Name, BuildDefault(prop.Node))
	}
	return out
}
