package extract

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-adlform/pkg/document"
	pkgopenapi "github.com/goliatone/go-adlform/pkg/openapi"
	"github.com/goliatone/go-adlform/pkg/schema"
)

// Extractor implements pkgopenapi.Extractor using kin-openapi.
type Extractor struct {
	options pkgopenapi.Options
}

var _ pkgopenapi.Extractor = (*Extractor)(nil)

// New constructs an Extractor.
func New(options pkgopenapi.Options) *Extractor {
	return &Extractor{options: options}
}

// Components lists component schema names in sorted order.
func (e *Extractor) Components(ctx context.Context, doc schema.Document) ([]string, error) {
	spec, err := e.load(ctx, doc)
	if err != nil {
		return nil, err
	}
	if spec.Components == nil {
		return nil, nil
	}
	names := make([]string, 0, len(spec.Components.Schemas))
	for name := range spec.Components.Schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Schema converts the named component schema into a schema.Node.
func (e *Extractor) Schema(ctx context.Context, doc schema.Document, component string) (*schema.Node, error) {
	if strings.TrimSpace(component) == "" {
		return nil, errors.New("openapi extract: component name is required")
	}
	spec, err := e.load(ctx, doc)
	if err != nil {
		return nil, err
	}
	if spec.Components == nil || spec.Components.Schemas[component] == nil {
		return nil, fmt.Errorf("openapi extract: component %q not found", component)
	}

	c := &converter{visiting: make(map[*openapi3.Schema]bool), order: declaredOrder(doc.Raw())}
	node := c.convert(spec.Components.Schemas[component])
	if node.Kind == schema.KindUnknown {
		return nil, &schema.ParseError{Message: fmt.Sprintf("component %q has no recognizable type", component)}
	}
	return node, nil
}

func (e *Extractor) load(ctx context.Context, doc schema.Document) (*openapi3.T, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw := doc.Raw()
	if len(raw) == 0 {
		return nil, errors.New("openapi extract: document payload is empty")
	}

	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: e.options.ResolveExternalRefs,
	}
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi extract: load document: %w", err)
	}
	if e.options.Validate {
		if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi extract: validate: %w", err)
		}
	}
	return spec, nil
}

type converter struct {
	visiting map[*openapi3.Schema]bool
	order    propertyOrder
}

// propertyOrder maps a property-name set to the order the source document
// first declares it in. kin-openapi keeps properties in Go maps, so the raw
// document is the only place declaration order survives.
type propertyOrder map[string][]string

func declaredOrder(raw []byte) propertyOrder {
	order := propertyOrder{}
	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return order
	}
	var visit func(*yaml.Node)
	visit = func(n *yaml.Node) {
		if n == nil || n.Kind == yaml.AliasNode {
			return
		}
		if n.Kind == yaml.MappingNode {
			for i := 0; i+1 < len(n.Content); i += 2 {
				key, value := n.Content[i], n.Content[i+1]
				if key.Value == "properties" && value.Kind == yaml.MappingNode {
					names := make([]string, 0, len(value.Content)/2)
					for j := 0; j+1 < len(value.Content); j += 2 {
						names = append(names, value.Content[j].Value)
					}
					if sig := signature(names); order[sig] == nil {
						order[sig] = names
					}
				}
			}
		}
		for _, child := range n.Content {
			visit(child)
		}
	}
	visit(&root)
	return order
}

// names returns the property names in declaration order, falling back to
// sorted order when the source layout is unknown.
func (o propertyOrder) names(properties openapi3.Schemas) []string {
	names := make([]string, 0, len(properties))
	for name := range properties {
		names = append(names, name)
	}
	sort.Strings(names)
	if declared, ok := o[signature(names)]; ok && len(declared) == len(names) {
		return append([]string(nil), declared...)
	}
	return names
}

func signature(names []string) string {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	return strings.Join(sorted, "\x00")
}

// convert walks a schema ref. A schema already on the current branch is cut
// short as a structured object so recursive components terminate.
func (c *converter) convert(ref *openapi3.SchemaRef) *schema.Node {
	if ref == nil || ref.Value == nil {
		return &schema.Node{}
	}
	src := ref.Value
	if c.visiting[src] {
		return &schema.Node{Kind: schema.KindObject, Title: src.Title, Description: src.Description}
	}
	c.visiting[src] = true
	defer delete(c.visiting, src)

	node := &schema.Node{
		Kind:        firstSchemaKind(src.Type),
		Title:       src.Title,
		Description: src.Description,
		Format:      src.Format,
		Category:    categoryFrom(src.Extensions),
	}
	if len(src.Required) > 0 {
		node.Required = append([]string(nil), src.Required...)
	}
	for _, value := range src.Enum {
		node.Enum = append(node.Enum, fmt.Sprint(value))
	}

	for _, name := range c.order.names(src.Properties) {
		node.Properties = append(node.Properties, schema.Property{Name: name, Node: c.convert(src.Properties[name])})
	}
	if src.Items != nil {
		node.Items = c.convert(src.Items)
	}
	if extra := src.AdditionalProperties.Schema; extra != nil {
		node.AdditionalProperties = c.convert(extra)
	}
	c.mergeAllOf(node, src.AllOf)

	if node.Kind == schema.KindUnknown {
		switch {
		case len(node.Properties) > 0 || node.AdditionalProperties != nil:
			node.Kind = schema.KindObject
		case node.Items != nil:
			node.Kind = schema.KindArray
		case len(node.Enum) > 0:
			node.Kind = schema.KindString
		}
	}
	if src.Default != nil {
		if value, err := document.FromAny(src.Default); err == nil {
			node.Default = narrowInteger(node.Kind, value)
		}
	}
	return node
}

// mergeAllOf folds allOf members into node: missing properties, required
// names and annotations are taken from each member in order.
func (c *converter) mergeAllOf(node *schema.Node, refs openapi3.SchemaRefs) {
	for _, ref := range refs {
		member := c.convert(ref)
		if node.Kind == schema.KindUnknown {
			node.Kind = member.Kind
		}
		if node.Category == schema.CategoryUnset {
			node.Category = member.Category
		}
		if node.Description == "" {
			node.Description = member.Description
		}
		for _, prop := range member.Properties {
			if _, exists := node.Property(prop.Name); !exists {
				node.Properties = append(node.Properties, prop)
			}
		}
		node.Required = append(node.Required, member.Required...)
	}
}

func firstSchemaKind(types *openapi3.Types) schema.Kind {
	if types == nil {
		return schema.KindUnknown
	}
	for _, name := range types.Slice() {
		if name == "null" {
			continue
		}
		switch kind := schema.Kind(name); kind {
		case schema.KindObject, schema.KindArray, schema.KindString, schema.KindNumber, schema.KindInteger, schema.KindBoolean:
			return kind
		}
	}
	return schema.KindUnknown
}

func categoryFrom(extensions map[string]any) schema.Category {
	for _, key := range []string{"x-category", "category"} {
		if text, ok := extensions[key].(string); ok && strings.TrimSpace(text) != "" {
			return schema.Category(strings.ToLower(strings.TrimSpace(text)))
		}
	}
	return schema.CategoryUnset
}

// narrowInteger turns JSON's float defaults back into integers where the
// schema says so.
func narrowInteger(kind schema.Kind, value *document.Value) *document.Value {
	if kind != schema.KindInteger {
		return value
	}
	if f, ok := value.Float(); ok && value.Kind() == document.KindFloat && f == math.Trunc(f) {
		return document.Int(int64(f))
	}
	return value
}
