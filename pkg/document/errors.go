package document

import (
	"errors"
	"fmt"
)

var (
	// ErrNotSequence is returned when a sequence operation targets a location
	// that does not hold a sequence.
	ErrNotSequence = errors.New("document: target is not a sequence")
	// ErrIndexOutOfRange is returned when a sequence index does not exist.
	ErrIndexOutOfRange = errors.New("document: index out of range")
)

// ParseError reports malformed YAML handed to Store.FromYAML. The store keeps
// its previous document when this error is returned.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	if e == nil || e.Err == nil {
		return "document: parse error"
	}
	return fmt.Sprintf("document: parse yaml: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// InvalidPathError reports a path that cannot be applied. Write operations
// replace incompatible intermediate values instead of failing, so this error
// only surfaces for malformed paths (negative indexes, bad syntax).
type InvalidPathError struct {
	Path   string
	Reason string
}

func (e *InvalidPathError) Error() string {
	if e == nil {
		return "document: invalid path"
	}
	if e.Path == "" {
		return "document: invalid path: " + e.Reason
	}
	return fmt.Sprintf("document: invalid path %q: %s", e.Path, e.Reason)
}
