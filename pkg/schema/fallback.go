package schema

import (
	_ "embed"
	"sync"
)

//go:embed fallback.yaml
var fallbackYAML []byte

var (
	fallbackOnce sync.Once
	fallbackNode *Node
)

// Fallback returns the built-in assistant definition schema used when the
// configured provider cannot be reached.
func Fallback() *Node {
	fallbackOnce.Do(func() {
		fallbackNode = MustParseBytes(fallbackYAML)
	})
	return fallbackNode
}

// FallbackBytes returns a copy of the raw built-in schema.
func FallbackBytes() []byte {
	return append([]byte(nil), fallbackYAML...)
}
