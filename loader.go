package adlform

import (
	"github.com/goliatone/go-adlform/internal/openapi/extract"
	"github.com/goliatone/go-adlform/internal/schemaloader"
	"github.com/goliatone/go-adlform/pkg/openapi"
	"github.com/goliatone/go-adlform/pkg/schema"
)

// NewLoader constructs a schema loader using the internal implementation while
// keeping the concrete type hidden from consumers.
func NewLoader(options ...schema.LoaderOption) schema.Loader {
	cfg := schema.NewLoaderOptions(options...)
	return schemaloader.New(cfg)
}

// NewOpenAPIExtractor constructs a component extractor backed by kin-openapi.
func NewOpenAPIExtractor(options ...openapi.Option) openapi.Extractor {
	cfg := openapi.NewOptions(options...)
	return extract.New(cfg)
}
