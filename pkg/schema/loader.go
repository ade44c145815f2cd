package schema

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"
)

// Loader fetches schema documents from files, an fs.FS, or HTTP. The
// implementation lives in internal/schemaloader; construct one through the
// root adlform package.
type Loader interface {
	Load(ctx context.Context, src Source) (Document, error)
}

// LoaderOptions configures how a Loader resolves sources.
type LoaderOptions struct {
	// FileSystem backs SourceKindFS lookups.
	FileSystem fs.FS

	// HTTPClient enables URL sources. Nil disables them unless
	// AllowHTTPFallback is set.
	HTTPClient *http.Client

	// AllowHTTPFallback enables URL sources with a default client.
	AllowHTTPFallback bool

	// RequestTimeout caps remote fetches.
	RequestTimeout time.Duration
}

// LoaderOption mutates LoaderOptions prior to construction.
type LoaderOption func(*LoaderOptions)

// WithFileSystem injects the fs.FS used for SourceFromFS.
func WithFileSystem(files fs.FS) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.FileSystem = files
	}
}

// WithHTTPClient injects a client for URL sources.
func WithHTTPClient(client *http.Client) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.HTTPClient = client
	}
}

// WithHTTPFallback enables URL sources with a default client and timeout.
func WithHTTPFallback(timeout time.Duration) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.AllowHTTPFallback = true
		opts.RequestTimeout = timeout
	}
}

// NewLoaderOptions applies options over the zero configuration.
func NewLoaderOptions(options ...LoaderOption) LoaderOptions {
	cfg := LoaderOptions{}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Provider yields the schema for an editing session. Failures are returned to
// the host, which decides whether to retry or use Fallback.
type Provider interface {
	FetchSchema(ctx context.Context) (*Node, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context) (*Node, error)

// FetchSchema calls f.
func (f ProviderFunc) FetchSchema(ctx context.Context) (*Node, error) {
	return f(ctx)
}

// NewProvider returns a Provider that loads src with loader and parses it on
// every call.
func NewProvider(loader Loader, src Source) Provider {
	return ProviderFunc(func(ctx context.Context) (*Node, error) {
		if loader == nil {
			return nil, errors.New("schema: loader is nil")
		}
		if src == nil {
			return nil, errors.New("schema: source is nil")
		}
		doc, err := loader.Load(ctx, src)
		if err != nil {
			return nil, fmt.Errorf("schema: load %s: %w", src.Location(), err)
		}
		return ParseDocument(doc)
	})
}

// StaticProvider always returns node.
func StaticProvider(node *Node) Provider {
	return ProviderFunc(func(context.Context) (*Node, error) {
		if node == nil {
			return nil, errors.New("schema: static provider has no schema")
		}
		return node, nil
	})
}
