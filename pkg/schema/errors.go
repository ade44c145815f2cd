package schema

import "fmt"

// ParseError reports a schema fragment that cannot be turned into a Node.
// Path is the dotted property path of the offending fragment; it is empty for
// the root.
type ParseError struct {
	Path    string
	Message string
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return "schema: " + e.Message
	}
	return fmt.Sprintf("schema: %s: %s", e.Path, e.Message)
}
