package adlform

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-adlform/pkg/editor"
	"github.com/goliatone/go-adlform/pkg/openapi"
	"github.com/goliatone/go-adlform/pkg/schema"
)

// Session aliases editor.Session for callers that only import the root package.
type Session = editor.Session

// Mode aliases schema.Mode.
type Mode = schema.Mode

// NewSession exposes the editor constructor from the top-level module.
func NewSession(node *schema.Node, options ...editor.Option) (*Session, error) {
	return editor.NewSession(node, options...)
}

// FallbackSchema returns the raw built-in assistant definition schema so
// callers can publish or extend it.
func FallbackSchema() []byte {
	return schema.FallbackBytes()
}

// NewProvider resolves location into a schema.Provider. An empty location
// yields the built-in schema. Other locations are loaded on every fetch. With
// a component name the location must be an OpenAPI document; without one an
// OpenAPI document is accepted when it declares exactly one component schema.
func NewProvider(location, component string, options ...schema.LoaderOption) (schema.Provider, error) {
	if strings.TrimSpace(location) == "" {
		return schema.StaticProvider(schema.Fallback()), nil
	}
	src, err := schema.ResolveSource(location)
	if err != nil {
		return nil, err
	}
	loader := NewLoader(options...)
	extractor := NewOpenAPIExtractor()
	if name := strings.TrimSpace(component); name != "" {
		return openapi.NewProvider(loader, extractor, src, name), nil
	}

	return schema.ProviderFunc(func(ctx context.Context) (*schema.Node, error) {
		doc, err := loader.Load(ctx, src)
		if err != nil {
			return nil, fmt.Errorf("adlform: load %s: %w", src.Location(), err)
		}
		if !openapi.Detect(doc.Raw()) {
			return schema.ParseDocument(doc)
		}
		names, err := extractor.Components(ctx, doc)
		if err != nil {
			return nil, err
		}
		if len(names) != 1 {
			return nil, fmt.Errorf("adlform: %s declares components %v; choose one", src.Location(), names)
		}
		return extractor.Schema(ctx, doc, names[0])
	}), nil
}
