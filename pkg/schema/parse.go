package schema

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-adlform/pkg/document"
)

const maxSchemaDepth = 256

// Parse converts a decoded JSON-Schema object (as produced by json or yaml
// unmarshalling into `any`) into a Node tree. Go maps carry no order, so
// properties end up sorted by name; use ParseBytes to keep declaration order.
func Parse(raw any) (*Node, error) {
	if raw == nil {
		return nil, &ParseError{Message: "schema document is empty"}
	}
	var node yaml.Node
	if err := node.Encode(raw); err != nil {
		return nil, &ParseError{Message: fmt.Sprintf("encode schema: %v", err)}
	}
	return parseRoot(&node)
}

// ParseBytes parses a JSON or YAML schema document, keeping properties in the
// order they are declared.
func ParseBytes(data []byte) (*Node, error) {
	if strings.TrimSpace(string(data)) == "" {
		return nil, &ParseError{Message: "schema document is empty"}
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, &ParseError{Message: fmt.Sprintf("decode schema: %v", err)}
	}
	return parseRoot(&node)
}

// ParseDocument parses a loaded Document.
func ParseDocument(doc Document) (*Node, error) {
	node, err := ParseBytes(doc.Raw())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", doc.Location(), err)
	}
	return node, nil
}

// MustParseBytes panics when data is not a valid schema. Useful for tests and
// embedded schemas.
func MustParseBytes(data []byte) *Node {
	node, err := ParseBytes(data)
	if err != nil {
		panic(err)
	}
	return node
}

func parseRoot(node *yaml.Node) (*Node, error) {
	node = unwrap(node)
	if node == nil || node.Kind == 0 {
		return nil, &ParseError{Message: "schema document is empty"}
	}
	p := &parser{budget: document.YAMLNodeBudget(node)}
	out, err := p.parseNode(node, nil, 0)
	if err != nil {
		return nil, err
	}
	if out.Kind == KindUnknown {
		return nil, &ParseError{Message: "root has no recognizable type"}
	}
	return out, nil
}

func unwrap(node *yaml.Node) *yaml.Node {
	for node != nil {
		switch node.Kind {
		case yaml.DocumentNode:
			if len(node.Content) == 0 {
				return nil
			}
			node = node.Content[0]
		case yaml.AliasNode:
			node = node.Alias
		default:
			return node
		}
	}
	return nil
}

// parser shares one node budget across the walk so aliased fragments cannot
// fan out without bound.
type parser struct {
	budget int
}

func (p *parser) spend(path document.Path, n int) error {
	p.budget -= n
	if p.budget < 0 {
		return fail(path, "%v", document.ErrAliasExpansion)
	}
	return nil
}

func (p *parser) parseNode(raw *yaml.Node, path document.Path, depth int) (*Node, error) {
	if depth > maxSchemaDepth {
		return nil, fail(path, "nesting exceeds %d levels", maxSchemaDepth)
	}
	if err := p.spend(path, 1); err != nil {
		return nil, err
	}
	raw = unwrap(raw)
	if raw == nil || raw.Kind != yaml.MappingNode {
		return nil, fail(path, "schema fragment must be a mapping")
	}

	fields := make(map[string]*yaml.Node, len(raw.Content)/2)
	for i := 0; i+1 < len(raw.Content); i += 2 {
		fields[raw.Content[i].Value] = unwrap(raw.Content[i+1])
	}

	out := &Node{
		Title:       scalarText(fields["title"]),
		Description: scalarText(fields["description"]),
		Format:      scalarText(fields["format"]),
		Category:    categoryFrom(fields),
	}

	if typeNode, ok := fields["type"]; ok && typeNode != nil {
		kind, err := kindFrom(typeNode, path)
		if err != nil {
			return nil, err
		}
		out.Kind = kind
	}

	if props, ok := fields["properties"]; ok && props != nil {
		if props.Kind != yaml.MappingNode {
			return nil, fail(path, "properties must be a mapping")
		}
		for i := 0; i+1 < len(props.Content); i += 2 {
			name := props.Content[i].Value
			child, err := p.parseNode(props.Content[i+1], path.Child(name), depth+1)
			if err != nil {
				return nil, err
			}
			out.Properties = append(out.Properties, Property{Name: name, Node: child})
		}
	}

	if items, ok := fields["items"]; ok && items != nil {
		switch items.Kind {
		case yaml.MappingNode:
			child, err := p.parseNode(items, path.At(0), depth+1)
			if err != nil {
				return nil, err
			}
			out.Items = child
		case yaml.SequenceNode:
			// Tuple form: the first entry describes every item.
			if len(items.Content) > 0 {
				child, err := p.parseNode(items.Content[0], path.At(0), depth+1)
				if err != nil {
					return nil, err
				}
				out.Items = child
			}
		default:
			return nil, fail(path, "items must be a mapping")
		}
	}

	if extra, ok := fields["additionalProperties"]; ok && extra != nil && extra.Kind == yaml.MappingNode {
		child, err := p.parseNode(extra, path.Child("*"), depth+1)
		if err != nil {
			return nil, err
		}
		out.AdditionalProperties = child
	}

	if enum, ok := fields["enum"]; ok && enum != nil {
		if enum.Kind != yaml.SequenceNode {
			return nil, fail(path, "enum must be a sequence")
		}
		for _, item := range enum.Content {
			item = unwrap(item)
			if item == nil || item.Kind != yaml.ScalarNode {
				return nil, fail(path, "enum values must be scalars")
			}
			out.Enum = append(out.Enum, item.Value)
		}
	}

	if req, ok := fields["required"]; ok && req != nil && req.Kind == yaml.SequenceNode {
		for _, item := range req.Content {
			if item = unwrap(item); item != nil && item.Kind == yaml.ScalarNode {
				out.Required = append(out.Required, item.Value)
			}
		}
	}

	if def, ok := fields["default"]; ok {
		value, used, err := document.FromYAMLNodeLimit(def, max(p.budget, 0))
		if err != nil {
			return nil, fail(path, "default: %v", err)
		}
		if err := p.spend(path, used); err != nil {
			return nil, err
		}
		if value.Kind() != document.KindNull {
			out.Default = value
		}
	}

	if out.Kind == KindUnknown {
		out.Kind = inferKind(out)
	}
	return out, nil
}

// kindFrom accepts a single type name or a list; the first non-null entry
// wins.
func kindFrom(node *yaml.Node, path document.Path) (Kind, error) {
	var names []string
	switch node.Kind {
	case yaml.ScalarNode:
		names = []string{node.Value}
	case yaml.SequenceNode:
		for _, item := range node.Content {
			if item = unwrap(item); item != nil && item.Kind == yaml.ScalarNode {
				names = append(names, item.Value)
			}
		}
	default:
		return KindUnknown, fail(path, "type must be a string or a list of strings")
	}

	for _, name := range names {
		if strings.EqualFold(strings.TrimSpace(name), "null") {
			continue
		}
		kind, ok := parseKind(name)
		if !ok {
			return KindUnknown, fail(path, "unsupported type %q", name)
		}
		return kind, nil
	}
	return KindUnknown, fail(path, "type declares no usable kind")
}

func inferKind(n *Node) Kind {
	switch {
	case len(n.Properties) > 0 || n.AdditionalProperties != nil:
		return KindObject
	case n.Items != nil:
		return KindArray
	case len(n.Enum) > 0:
		return KindString
	case n.Default != nil:
		switch n.Default.Kind() {
		case document.KindBool:
			return KindBoolean
		case document.KindInt:
			return KindInteger
		case document.KindFloat:
			return KindNumber
		case document.KindString:
			return KindString
		case document.KindSequence:
			return KindArray
		case document.KindMapping:
			return KindObject
		}
	}
	return KindUnknown
}

func categoryFrom(fields map[string]*yaml.Node) Category {
	for _, key := range []string{"x-category", "category"} {
		if text := scalarText(fields[key]); text != "" {
			return Category(strings.ToLower(strings.TrimSpace(text)))
		}
	}
	return CategoryUnset
}

func scalarText(node *yaml.Node) string {
	if node == nil || node.Kind != yaml.ScalarNode {
		return ""
	}
	return node.Value
}

func fail(path document.Path, format string, args ...any) error {
	return &ParseError{Path: path.String(), Message: fmt.Sprintf(format, args...)}
}
