package openapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-adlform/pkg/schema"
)

// Extractor reads component schemas out of an OpenAPI document.
type Extractor interface {
	// Components lists the names under components.schemas, sorted.
	Components(ctx context.Context, doc schema.Document) ([]string, error)
	// Schema converts one component schema. Properties are sorted by name
	// since OpenAPI components carry no declaration order.
	Schema(ctx context.Context, doc schema.Document, component string) (*schema.Node, error)
}

// Options configures an Extractor.
type Options struct {
	// ResolveExternalRefs allows $ref pointers into other documents.
	ResolveExternalRefs bool
	// Validate runs document validation before extraction.
	Validate bool
}

// Option mutates Options during construction.
type Option func(*Options)

// WithExternalRefs toggles resolution of external references.
func WithExternalRefs(enabled bool) Option {
	return func(opts *Options) {
		opts.ResolveExternalRefs = enabled
	}
}

// WithValidation toggles document validation.
func WithValidation(enabled bool) Option {
	return func(opts *Options) {
		opts.Validate = enabled
	}
}

// NewOptions applies options over the defaults.
func NewOptions(options ...Option) Options {
	cfg := Options{}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// NewProvider returns a schema.Provider that loads src and extracts component.
func NewProvider(loader schema.Loader, extractor Extractor, src schema.Source, component string) schema.Provider {
	return schema.ProviderFunc(func(ctx context.Context) (*schema.Node, error) {
		if loader == nil || extractor == nil {
			return nil, errors.New("openapi: loader and extractor are required")
		}
		if src == nil {
			return nil, errors.New("openapi: source is nil")
		}
		doc, err := loader.Load(ctx, src)
		if err != nil {
			return nil, fmt.Errorf("openapi: load %s: %w", src.Location(), err)
		}
		return extractor.Schema(ctx, doc, component)
	})
}

// Detect reports whether raw looks like an OpenAPI or Swagger document.
func Detect(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return false
	}
	if trimmed[0] == '{' {
		var payload map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &payload); err == nil {
			_, openapi := payload["openapi"]
			_, swagger := payload["swagger"]
			return openapi || swagger
		}
	}
	for _, line := range strings.Split(string(trimmed), "\n") {
		lower := strings.ToLower(strings.TrimSpace(line))
		if strings.HasPrefix(lower, "openapi:") || strings.HasPrefix(lower, "swagger:") {
			return true
		}
	}
	return false
}
