package document

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const yamlIndent = 2

// ToYAML serialises the whole document. Mapping order is preserved.
func (s *Store) ToYAML() (string, error) {
	return MarshalYAML(s.root)
}

// FromYAML parses text and replaces the document. On failure the previous
// document is kept and a *ParseError is returned. Empty input yields an
// empty mapping.
func (s *Store) FromYAML(text string) error {
	parsed, err := ParseYAML(text)
	if err != nil {
		return err
	}
	s.root = parsed
	return nil
}

// MarshalYAML renders a value as a YAML document.
func MarshalYAML(v *Value) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(yamlIndent)
	if err := enc.Encode(ToYAMLNode(v)); err != nil {
		return "", fmt.Errorf("document: encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("document: encode yaml: %w", err)
	}
	return buf.String(), nil
}

// ParseYAML parses text into a Value without touching any store.
func ParseYAML(text string) (*Value, error) {
	if strings.TrimSpace(text) == "" {
		return Mapping(), nil
	}
	var root yaml.Node
	if err := yaml.Unmarshal([]byte(text), &root); err != nil {
		return nil, &ParseError{Err: err}
	}
	if root.Kind == 0 {
		return Mapping(), nil
	}
	value, err := FromYAMLNode(&root)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	if value.Kind() == KindNull {
		return Mapping(), nil
	}
	return value, nil
}

// FromYAMLNode converts a decoded yaml.Node tree into a Value, keeping the
// order mapping keys appear in the source. Aliases are expanded and merge
// keys (`<<`) are applied, with the mapping's own keys taking precedence.
func FromYAMLNode(node *yaml.Node) (*Value, error) {
	value, _, err := FromYAMLNodeLimit(node, YAMLNodeBudget(node))
	return value, err
}

// FromYAMLNodeLimit is FromYAMLNode with an explicit cap on the number of
// nodes produced once aliases are expanded. It also reports how many nodes
// were used so callers can share one budget across several conversions.
func FromYAMLNodeLimit(node *yaml.Node, limit int) (*Value, int, error) {
	d := &yamlDecoder{budget: limit}
	value, err := d.convert(node, 0)
	if err != nil {
		return nil, d.nodes, err
	}
	return value, d.nodes, nil
}

const (
	maxYAMLDepth = 512
	// minYAMLNodeBudget bounds alias expansion for small documents; larger
	// documents may expand to yamlExpansionRatio times their source size.
	minYAMLNodeBudget  = 10000
	yamlExpansionRatio = 4
)

// ErrAliasExpansion is wrapped by the error returned when aliases expand a
// document far beyond its source size.
var ErrAliasExpansion = errors.New("document: excessive yaml alias expansion")

type yamlDecoder struct {
	budget int
	nodes  int
}

// YAMLNodeBudget returns the expansion budget for a document: a multiple of
// its source node count, never below a fixed minimum.
func YAMLNodeBudget(root *yaml.Node) int {
	// Aliases are not followed, so this is linear in the source size.
	count := 0
	var visit func(*yaml.Node)
	visit = func(n *yaml.Node) {
		if n == nil {
			return
		}
		count++
		for _, child := range n.Content {
			visit(child)
		}
	}
	visit(root)
	return max(minYAMLNodeBudget, count*yamlExpansionRatio)
}

func (d *yamlDecoder) convert(node *yaml.Node, depth int) (*Value, error) {
	if node == nil {
		return Null(), nil
	}
	if depth > maxYAMLDepth {
		return nil, fmt.Errorf("document: yaml nesting exceeds %d levels", maxYAMLDepth)
	}
	d.nodes++
	if d.nodes > d.budget {
		return nil, fmt.Errorf("%w: more than %d nodes", ErrAliasExpansion, d.budget)
	}

	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return Null(), nil
		}
		return d.convert(node.Content[0], depth+1)
	case yaml.AliasNode:
		return d.convert(node.Alias, depth+1)
	case yaml.SequenceNode:
		out := Sequence()
		for _, item := range node.Content {
			child, err := d.convert(item, depth+1)
			if err != nil {
				return nil, err
			}
			out.Append(child)
		}
		return out, nil
	case yaml.MappingNode:
		return d.mapping(node, depth)
	case yaml.ScalarNode:
		return scalarFromYAML(node)
	default:
		return nil, fmt.Errorf("document: line %d: unsupported yaml node kind %d", node.Line, node.Kind)
	}
}

func (d *yamlDecoder) mapping(node *yaml.Node, depth int) (*Value, error) {
	explicit := make(map[string]struct{}, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		if key := resolveAlias(node.Content[i]); key != nil && !isMergeKey(key) {
			explicit[key.Value] = struct{}{}
		}
	}

	out := Mapping()
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode := resolveAlias(node.Content[i])
		if keyNode == nil || keyNode.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("document: line %d: mapping keys must be scalars", node.Content[i].Line)
		}
		if isMergeKey(keyNode) {
			if err := d.merge(out, node.Content[i+1], explicit, depth); err != nil {
				return nil, err
			}
			continue
		}
		child, err := d.convert(node.Content[i+1], depth+1)
		if err != nil {
			return nil, err
		}
		out.Put(keyNode.Value, child)
	}
	return out, nil
}

// merge copies entries of the merged mapping (or sequence of mappings) into
// out. Keys declared on the mapping itself and keys placed by an earlier
// merge source win.
func (d *yamlDecoder) merge(out *Value, source *yaml.Node, explicit map[string]struct{}, depth int) error {
	source = resolveAlias(source)
	var sources []*yaml.Node
	switch {
	case source == nil:
		return nil
	case source.Kind == yaml.MappingNode:
		sources = []*yaml.Node{source}
	case source.Kind == yaml.SequenceNode:
		sources = source.Content
	default:
		return fmt.Errorf("document: line %d: merge value must be a mapping or a sequence of mappings", source.Line)
	}
	for _, src := range sources {
		if resolved := resolveAlias(src); resolved == nil || resolved.Kind != yaml.MappingNode {
			return fmt.Errorf("document: line %d: merge value must be a mapping or a sequence of mappings", src.Line)
		}
		merged, err := d.convert(src, depth+1)
		if err != nil {
			return err
		}
		for _, key := range merged.Keys() {
			if _, ok := explicit[key]; ok {
				continue
			}
			if _, ok := out.Field(key); ok {
				continue
			}
			child, _ := merged.Field(key)
			out.Put(key, child)
		}
	}
	return nil
}

func resolveAlias(node *yaml.Node) *yaml.Node {
	for node != nil && node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	return node
}

func isMergeKey(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.ShortTag() == "!!merge"
}

func scalarFromYAML(node *yaml.Node) (*Value, error) {
	switch node.ShortTag() {
	case "!!null":
		return Null(), nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return nil, err
		}
		return Bool(b), nil
	case "!!int":
		var i int64
		if err := node.Decode(&i); err == nil {
			return Int(i), nil
		}
		var f float64
		if err := node.Decode(&f); err != nil {
			return nil, err
		}
		return Float(f), nil
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return nil, err
		}
		return Float(f), nil
	default:
		// !!str, !!timestamp, !!binary and custom tags keep their source text.
		return String(node.Value), nil
	}
}

// ToYAMLNode converts a Value into a yaml.Node tree ready for encoding.
func ToYAMLNode(v *Value) *yaml.Node {
	switch v.Kind() {
	case KindBool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v.b)}
	case KindInt:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(v.i, 10)}
	case KindFloat:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: formatYAMLFloat(v.f)}
	case KindString:
		node := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.s}
		if strings.Contains(v.s, "\n") {
			node.Style = yaml.LiteralStyle
		}
		return node
	case KindSequence:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range v.items {
			node.Content = append(node.Content, ToYAMLNode(item))
		}
		return node
	case KindMapping:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, key := range v.keys {
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
				ToYAMLNode(v.fields[key]),
			)
		}
		return node
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}

// formatYAMLFloat keeps a fractional marker so integral floats do not read
// back as integers.
func formatYAMLFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	case math.IsNaN(f):
		return ".nan"
	}
	text := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(text, ".eEn") {
		text += ".0"
	}
	return text
}
