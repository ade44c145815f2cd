// Package editor binds field edits to a document and keeps the YAML preview
// in sync. A Session owns one document for one editing session; sessions
// share nothing.
package editor

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/goliatone/go-adlform/pkg/document"
	"github.com/goliatone/go-adlform/pkg/form"
	"github.com/goliatone/go-adlform/pkg/schema"
)

// State is the lifecycle position of a session.
type State int

const (
	// StateEmpty holds no document. Edits are rejected until one is loaded.
	StateEmpty State = iota
	// StateLoaded holds a document that matches its source.
	StateLoaded
	// StateEdited holds unsaved changes.
	StateEdited
	// StateSaved holds a document that matches its stored record.
	StateSaved
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoaded:
		return "loaded"
	case StateEdited:
		return "edited"
	case StateSaved:
		return "saved"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Option customises a Session.
type Option func(*Session)

// WithLogger routes state transition logs to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRenderer replaces the default form renderer. The renderer's tools path
// is also where tool edits land.
func WithRenderer(renderer *form.Renderer) Option {
	return func(s *Session) {
		if renderer != nil {
			s.renderer = renderer
		}
	}
}

// WithMode sets the initial display mode.
func WithMode(mode schema.Mode) Option {
	return func(s *Session) {
		s.mode = mode
	}
}

// Session is the single owner of a live document. It is not safe for
// concurrent use.
type Session struct {
	schema   *schema.Node
	store    *document.Store
	renderer *form.Renderer
	logger   *slog.Logger
	mode     schema.Mode

	state    State
	modified bool
	recordID string
	preview  string
}

// NewSession returns an empty session editing documents described by node.
func NewSession(node *schema.Node, options ...Option) (*Session, error) {
	if node == nil {
		return nil, ErrNoSchema
	}
	s := &Session{
		schema:   node,
		store:    document.NewStore(),
		renderer: form.NewRenderer(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		mode:     schema.ModeSimple,
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Schema returns the schema the session edits against.
func (s *Session) Schema() *schema.Node { return s.schema }

// State reports the lifecycle position.
func (s *Session) State() State { return s.state }

// Modified reports whether the document has unsaved changes.
func (s *Session) Modified() bool { return s.modified }

// RecordID returns the identity of the record the document is bound to, or
// "" for a document that was never saved.
func (s *Session) RecordID() string { return s.recordID }

// Mode returns the current display mode.
func (s *Session) Mode() schema.Mode { return s.mode }

// SetMode switches the display mode. The document is untouched.
func (s *Session) SetMode(mode schema.Mode) { s.mode = mode }

// Document exposes the store for read access. Mutating it directly bypasses
// state tracking.
func (s *Session) Document() *document.Store { return s.store }

// Value returns a copy of the value at path.
func (s *Session) Value(path document.Path) (*document.Value, bool) {
	return s.store.Get(path)
}

// Preview returns the YAML text produced by the last RegenerateYAML.
func (s *Session) Preview() string { return s.preview }

// Render produces descriptors for the whole document in the current mode.
func (s *Session) Render() ([]form.Descriptor, error) {
	return s.renderer.Render(s.schema, s.store, s.mode, nil)
}

// RenderAt produces descriptors for the subtree at path.
func (s *Session) RenderAt(path document.Path) ([]form.Descriptor, error) {
	node, ok := s.schema.Lookup(path)
	if !ok {
		return nil, fmt.Errorf("editor: no schema at %s", path)
	}
	return s.renderer.Render(node, s.store, s.mode, path)
}

// CreateNew replaces the document with one built from schema defaults and
// clears the record identity.
func (s *Session) CreateNew() error {
	s.store.Replace(schema.BuildDefault(s.schema))
	s.recordID = ""
	s.modified = false
	s.transition(StateLoaded)
	_, err := s.RegenerateYAML()
	return err
}

// ImportYAML replaces the document with text. An imported document is never
// bound to a record, and counts as unsaved. On a parse error the session is
// unchanged and a *document.ParseError is returned.
func (s *Session) ImportYAML(text string) error {
	if err := s.store.FromYAML(text); err != nil {
		return err
	}
	s.recordID = ""
	s.modified = true
	s.transition(StateEdited)
	_, err := s.RegenerateYAML()
	return err
}

// LoadFromRecord replaces the document with a stored record's YAML and binds
// the session to id.
func (s *Session) LoadFromRecord(text, id string) error {
	if err := s.store.FromYAML(text); err != nil {
		return err
	}
	s.recordID = id
	s.modified = false
	s.transition(StateLoaded)
	_, err := s.RegenerateYAML()
	return err
}

// RegenerateYAML serialises the document and caches the text as the preview.
func (s *Session) RegenerateYAML() (string, error) {
	text, err := s.store.ToYAML()
	if err != nil {
		return "", err
	}
	s.preview = text
	return text, nil
}

// ApplyFieldEdit coerces raw to the kind the schema declares at path and
// writes it. Paths the schema does not describe are written without
// coercion beyond keeping text as text.
func (s *Session) ApplyFieldEdit(path document.Path, raw any) error {
	if err := s.requireDocument(); err != nil {
		return err
	}
	node, _ := s.schema.Lookup(path)
	value, err := Coerce(node, raw)
	if err != nil {
		return fmt.Errorf("editor: %s: %w", path, err)
	}
	if err := s.store.Set(path, value); err != nil {
		return s.fail(err)
	}
	s.touch()
	return nil
}

// AddItem appends the item schema's default to the list at path and returns
// the new index.
func (s *Session) AddItem(path document.Path) (int, error) {
	if err := s.requireDocument(); err != nil {
		return 0, err
	}
	node, ok := s.schema.Lookup(path)
	if !ok || node.Kind != schema.KindArray {
		return 0, fmt.Errorf("%w: %s", ErrNotList, path)
	}
	index, err := s.store.AppendSequenceItem(path, schema.BuildDefault(node.Items))
	if err != nil {
		return 0, s.fail(err)
	}
	s.touch()
	return index, nil
}

// RemoveItem removes the list item at index. Later items shift down, so
// descriptors for them must be re-rendered.
func (s *Session) RemoveItem(path document.Path, index int) error {
	if err := s.requireDocument(); err != nil {
		return err
	}
	if err := s.store.RemoveSequenceItem(path, index); err != nil {
		return s.fail(err)
	}
	s.touch()
	return nil
}

// MarkSaved binds the session to id after the host stored the document.
func (s *Session) MarkSaved(id string) {
	s.recordID = id
	s.modified = false
	s.transition(StateSaved)
}

// Reset drops the document and record identity.
func (s *Session) Reset() {
	s.store = document.NewStore()
	s.recordID = ""
	s.modified = false
	s.preview = ""
	s.transition(StateEmpty)
}

func (s *Session) requireDocument() error {
	if s.state == StateEmpty {
		return ErrNoDocument
	}
	return nil
}

func (s *Session) touch() {
	s.modified = true
	s.transition(StateEdited)
}

// fail resets the session on path errors, which mean the caller and the
// document disagree about the document's shape.
func (s *Session) fail(err error) error {
	var pathErr *document.InvalidPathError
	if errors.As(err, &pathErr) {
		s.logger.Error("editor: invalid path, resetting session", "path", pathErr.Path, "reason", pathErr.Reason)
		s.Reset()
	}
	return err
}

func (s *Session) transition(next State) {
	if s.state == next {
		return
	}
	s.logger.Debug("editor: state change", "from", s.state.String(), "to", next.String(), "record", s.recordID)
	s.state = next
}
