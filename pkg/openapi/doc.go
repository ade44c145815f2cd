// Package openapi turns a component schema of an OpenAPI 3 document into a
// schema.Node, so an assistant definition format published as part of an API
// description can drive the editor. The kin-openapi implementation lives under
// internal/openapi; construct it through the root adlform package.
package openapi
