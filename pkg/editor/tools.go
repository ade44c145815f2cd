package editor

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-adlform/pkg/document"
	"github.com/goliatone/go-adlform/pkg/form"
)

// AddTool creates an empty entry in the kind's group and returns its key.
// The kind's prefix is added to name unless already present.
func (s *Session) AddTool(kind form.ToolKind, name string) (string, error) {
	if err := s.requireDocument(); err != nil {
		return "", err
	}
	if _, err := form.ParseToolKind(string(kind)); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidToolKind, kind)
	}
	key := kind.Key(name)
	display := strings.TrimLeft(key, "/+")
	if display == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidToolName, name)
	}

	path := s.toolPath(kind, key)
	if s.store.Has(path) {
		return "", fmt.Errorf("%w: %s", ErrToolExists, key)
	}
	if err := s.store.Set(path, form.NewToolEntry(display)); err != nil {
		return "", s.fail(err)
	}
	s.touch()
	return key, nil
}

// RemoveTool deletes the entry stored under key in the kind's group.
func (s *Session) RemoveTool(kind form.ToolKind, key string) error {
	if err := s.requireDocument(); err != nil {
		return err
	}
	if _, err := form.ParseToolKind(string(kind)); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidToolKind, kind)
	}
	if !s.store.Delete(s.toolPath(kind, kind.Key(key))) {
		return fmt.Errorf("%w: %s", ErrToolNotFound, key)
	}
	s.touch()
	return nil
}

// Tools lists the entry keys of a group in document order.
func (s *Session) Tools(kind form.ToolKind) []string {
	group, ok := s.store.Get(s.renderer.ToolsPath().Child(string(kind)))
	if !ok {
		return nil
	}
	return group.Keys()
}

func (s *Session) toolPath(kind form.ToolKind, key string) document.Path {
	return s.renderer.ToolsPath().Child(string(kind)).Child(key)
}
