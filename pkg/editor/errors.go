package editor

import "errors"

var (
	// ErrNoSchema is returned by NewSession when no schema is supplied.
	ErrNoSchema = errors.New("editor: schema is required")
	// ErrNoDocument is returned by edits made before any document is loaded,
	// including after a session was reset.
	ErrNoDocument = errors.New("editor: no document loaded")
	// ErrNotList is returned when an item operation targets a non-array field.
	ErrNotList = errors.New("editor: field is not a list")
	// ErrInvalidToolKind is returned for tool groups other than commands,
	// options and decorators.
	ErrInvalidToolKind = errors.New("editor: invalid tool kind")
	// ErrInvalidToolName is returned when a tool name is empty once its
	// prefix is removed.
	ErrInvalidToolName = errors.New("editor: invalid tool name")
	// ErrToolExists is returned when adding a tool whose key is taken.
	ErrToolExists = errors.New("editor: tool already exists")
	// ErrUnsupportedValue is returned when an edit carries a Go value that
	// has no document representation. The document is left untouched.
	ErrUnsupportedValue = errors.New("editor: unsupported value")
	// ErrToolNotFound is returned when removing a tool that does not exist.
	ErrToolNotFound = errors.New("editor: tool not found")
)
