package editor

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-adlform/pkg/document"
	"github.com/goliatone/go-adlform/pkg/form"
	"github.com/goliatone/go-adlform/pkg/schema"
)

func newSession(t *testing.T, options ...Option) *Session {
	t.Helper()
	s, err := NewSession(schema.Fallback(), options...)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return s
}

func loadedSession(t *testing.T, options ...Option) *Session {
	t.Helper()
	s := newSession(t, options...)
	if err := s.CreateNew(); err != nil {
		t.Fatalf("create new: %v", err)
	}
	return s
}

func mustGet(t *testing.T, s *Session, raw string) *document.Value {
	t.Helper()
	value, ok := s.Value(document.MustParsePath(raw))
	if !ok {
		t.Fatalf("expected value at %s", raw)
	}
	return value
}

func assertState(t *testing.T, s *Session, state State, modified bool, id string) {
	t.Helper()
	if s.State() != state || s.Modified() != modified || s.RecordID() != id {
		t.Fatalf("expected %s/modified=%v/id=%q, got %s/modified=%v/id=%q",
			state, modified, id, s.State(), s.Modified(), s.RecordID())
	}
}

func TestNewSession_RequiresSchema(t *testing.T) {
	if _, err := NewSession(nil); !errors.Is(err, ErrNoSchema) {
		t.Fatalf("expected ErrNoSchema, got %v", err)
	}
}

func TestSession_StateMachine(t *testing.T) {
	s := newSession(t)
	assertState(t, s, StateEmpty, false, "")

	if err := s.ApplyFieldEdit(document.MustParsePath("metadata.description.title"), "X"); !errors.Is(err, ErrNoDocument) {
		t.Fatalf("expected ErrNoDocument before load, got %v", err)
	}

	if err := s.CreateNew(); err != nil {
		t.Fatalf("create new: %v", err)
	}
	assertState(t, s, StateLoaded, false, "")

	if err := s.ApplyFieldEdit(document.MustParsePath("metadata.description.title"), "Tutor"); err != nil {
		t.Fatalf("edit: %v", err)
	}
	assertState(t, s, StateEdited, true, "")

	s.MarkSaved("rec-1")
	assertState(t, s, StateSaved, false, "rec-1")

	if err := s.ApplyFieldEdit(document.MustParsePath("metadata.description.title"), "Tutor 2"); err != nil {
		t.Fatalf("edit: %v", err)
	}
	assertState(t, s, StateEdited, true, "rec-1")

	if err := s.LoadFromRecord("metadata:\n  title: Stored\n", "rec-2"); err != nil {
		t.Fatalf("load from record: %v", err)
	}
	assertState(t, s, StateLoaded, false, "rec-2")

	if err := s.ImportYAML("metadata:\n  title: Imported\n"); err != nil {
		t.Fatalf("import: %v", err)
	}
	assertState(t, s, StateEdited, true, "")

	s.Reset()
	assertState(t, s, StateEmpty, false, "")
	if s.Preview() != "" {
		t.Fatalf("expected preview cleared on reset")
	}
}

func TestSession_ImportInvalidYAMLKeepsDocument(t *testing.T) {
	s := loadedSession(t)
	s.MarkSaved("rec-1")
	before := s.Document().Root()
	preview := s.Preview()

	err := s.ImportYAML("not: [valid yaml")
	var parseErr *document.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected document.ParseError, got %v", err)
	}
	if !document.Equal(before, s.Document().Root()) {
		t.Fatalf("document changed after failed import")
	}
	if s.Preview() != preview {
		t.Fatalf("preview changed after failed import")
	}
	assertState(t, s, StateSaved, false, "rec-1")
}

func TestSession_CreateNewUsesDefaults(t *testing.T) {
	s := loadedSession(t)

	cases := []struct {
		path string
		want *document.Value
	}{
		{path: "metadata.schema_version", want: document.String("1.0")},
		{path: "metadata.description.title", want: document.String("New Assistant")},
		{path: "metadata.author.name", want: document.String("")},
		{path: "metadata.visibility.is_public", want: document.Bool(false)},
		{path: "metadata.history", want: document.Sequence()},
		{path: "assistant_instructions.style_guidelines.tone", want: document.String("friendly")},
		{path: "assistant_instructions.style_guidelines.max_response_words", want: document.Int(300)},
		{path: `assistant_instructions.tools.commands["/help"].display_name`, want: document.String("Help")},
		{path: "assistant_instructions.tools.decorators", want: document.Mapping()},
	}
	for _, tc := range cases {
		if diff := cmp.Diff(tc.want, mustGet(t, s, tc.path), cmp.Comparer(document.Equal)); diff != "" {
			t.Fatalf("%s mismatch (-want +got):\n%s", tc.path, diff)
		}
	}
	if !strings.HasPrefix(s.Preview(), "metadata:\n  schema_version: \"1.0\"\n") {
		t.Fatalf("unexpected preview start:\n%s", s.Preview())
	}
}

func TestSession_ApplyFieldEditCoercesBySchema(t *testing.T) {
	s := loadedSession(t)

	edits := []struct {
		path string
		raw  any
		want *document.Value
	}{
		{"metadata.visibility.is_public", "on", document.Bool(true)},
		{"assistant_instructions.style_guidelines.max_response_words", "450", document.Int(450)},
		{"assistant_instructions.style_guidelines.max_response_words", "", document.Null()},
		{"metadata.description.title", "42", document.String("42")},
		{"metadata.description.keywords[2]", "ai", document.String("ai")},
		{"metadata.unknown.deep", "free text", document.String("free text")},
	}
	for _, edit := range edits {
		path := document.MustParsePath(edit.path)
		if err := s.ApplyFieldEdit(path, edit.raw); err != nil {
			t.Fatalf("edit %s: %v", edit.path, err)
		}
		if diff := cmp.Diff(edit.want, mustGet(t, s, edit.path), cmp.Comparer(document.Equal)); diff != "" {
			t.Fatalf("%s mismatch (-want +got):\n%s", edit.path, diff)
		}
	}

	keywords := mustGet(t, s, "metadata.description.keywords")
	want := document.Sequence(document.Null(), document.Null(), document.String("ai"))
	if !document.Equal(want, keywords) {
		t.Fatalf("expected null padding, got %v", keywords.Interface())
	}
}

func TestSession_InvalidPathResetsSession(t *testing.T) {
	s := loadedSession(t)
	s.MarkSaved("rec-1")

	bad := document.Path{document.Key("metadata"), document.Index(-1)}
	err := s.ApplyFieldEdit(bad, "x")
	var pathErr *document.InvalidPathError
	if !errors.As(err, &pathErr) {
		t.Fatalf("expected InvalidPathError, got %v", err)
	}
	assertState(t, s, StateEmpty, false, "")
	if _, ok := s.Value(document.MustParsePath("metadata")); ok {
		t.Fatalf("expected document dropped after reset")
	}
}

func TestSession_UnsupportedEditLeavesDocument(t *testing.T) {
	s := loadedSession(t)
	path := document.MustParsePath("assistant_instructions.style_guidelines.max_response_words")
	if err := s.ApplyFieldEdit(path, "7"); err != nil {
		t.Fatalf("edit: %v", err)
	}
	s.MarkSaved("rec-1")

	err := s.ApplyFieldEdit(path, map[string]int{"a": 1})
	if !errors.Is(err, ErrUnsupportedValue) {
		t.Fatalf("expected ErrUnsupportedValue, got %v", err)
	}
	assertState(t, s, StateSaved, false, "rec-1")
	if diff := cmp.Diff(document.Int(7), mustGet(t, s, path.String()), cmp.Comparer(document.Equal)); diff != "" {
		t.Fatalf("value changed after rejected edit (-want +got):\n%s", diff)
	}
}

func TestSession_AddAndRemoveItems(t *testing.T) {
	s := loadedSession(t)

	keywords := document.MustParsePath("metadata.description.keywords")
	for _, word := range []string{"maths", "algebra", "tutor"} {
		index, err := s.AddItem(keywords)
		if err != nil {
			t.Fatalf("add item: %v", err)
		}
		if err := s.ApplyFieldEdit(keywords.At(index), word); err != nil {
			t.Fatalf("edit item: %v", err)
		}
	}
	if err := s.RemoveItem(keywords, 0); err != nil {
		t.Fatalf("remove item: %v", err)
	}
	got := mustGet(t, s, "metadata.description.keywords").Interface()
	if diff := cmp.Diff([]any{"algebra", "tutor"}, got); diff != "" {
		t.Fatalf("keywords mismatch (-want +got):\n%s", diff)
	}

	history := document.MustParsePath("metadata.history")
	if _, err := s.AddItem(history); err != nil {
		t.Fatalf("add history: %v", err)
	}
	entry := mustGet(t, s, "metadata.history[0]")
	if diff := cmp.Diff([]string{"version", "date", "changes"}, entry.Keys()); diff != "" {
		t.Fatalf("history item keys mismatch (-want +got):\n%s", diff)
	}

	if _, err := s.AddItem(document.MustParsePath("metadata.description.title")); !errors.Is(err, ErrNotList) {
		t.Fatalf("expected ErrNotList, got %v", err)
	}
	if err := s.RemoveItem(keywords, 9); !errors.Is(err, document.ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
	if s.State() != StateEdited {
		t.Fatalf("out of range removal must not reset the session")
	}
}

func TestSession_Tools(t *testing.T) {
	s := loadedSession(t)

	key, err := s.AddTool(form.ToolCommand, "summarize")
	if err != nil || key != "/summarize" {
		t.Fatalf("add command: %q %v", key, err)
	}
	if _, err := s.AddTool(form.ToolCommand, "/summarize"); !errors.Is(err, ErrToolExists) {
		t.Fatalf("expected ErrToolExists, got %v", err)
	}
	if key, err := s.AddTool(form.ToolDecorator, "socratic"); err != nil || key != "+++socratic" {
		t.Fatalf("add decorator: %q %v", key, err)
	}
	if _, err := s.AddTool(form.ToolKind("macros"), "x"); !errors.Is(err, ErrInvalidToolKind) {
		t.Fatalf("expected ErrInvalidToolKind, got %v", err)
	}
	if _, err := s.AddTool(form.ToolOption, "///"); !errors.Is(err, ErrInvalidToolName) {
		t.Fatalf("expected ErrInvalidToolName, got %v", err)
	}

	prompt := form.DefaultToolsPath.Child("commands").Child("/summarize").Child("prompt")
	if err := s.ApplyFieldEdit(prompt, "Summarise the conversation"); err != nil {
		t.Fatalf("edit prompt: %v", err)
	}
	if diff := cmp.Diff([]string{"/help", "/summarize"}, s.Tools(form.ToolCommand)); diff != "" {
		t.Fatalf("command order mismatch (-want +got):\n%s", diff)
	}
	entry := mustGet(t, s, `assistant_instructions.tools.commands["/summarize"]`)
	if diff := cmp.Diff(map[string]any{
		"display_name": "summarize",
		"description":  "",
		"prompt":       "Summarise the conversation",
	}, entry.Interface()); diff != "" {
		t.Fatalf("entry mismatch (-want +got):\n%s", diff)
	}

	text, err := s.RegenerateYAML()
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if !strings.Contains(text, "      /summarize:\n        display_name: summarize\n") {
		t.Fatalf("expected nested tool mapping in yaml:\n%s", text)
	}

	if err := s.RemoveTool(form.ToolCommand, "help"); err != nil {
		t.Fatalf("remove tool: %v", err)
	}
	if err := s.RemoveTool(form.ToolCommand, "/help"); !errors.Is(err, ErrToolNotFound) {
		t.Fatalf("expected ErrToolNotFound, got %v", err)
	}
	if diff := cmp.Diff([]string{"/summarize"}, s.Tools(form.ToolCommand)); diff != "" {
		t.Fatalf("commands after removal (-want +got):\n%s", diff)
	}
}

func TestSession_RenderReflectsEdits(t *testing.T) {
	s := loadedSession(t)
	if err := s.ApplyFieldEdit(document.MustParsePath("metadata.description.title"), "Maths Tutor"); err != nil {
		t.Fatalf("edit: %v", err)
	}

	descriptors, err := s.Render()
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	title, ok := form.Find(descriptors, document.MustParsePath("metadata.description.title"))
	if !ok || title.Value.Text() != "Maths Tutor" {
		t.Fatalf("expected edited title in descriptors, got %+v", title)
	}
	if _, ok := form.Find(descriptors, document.MustParsePath("metadata.schema_version")); ok {
		t.Fatalf("system field rendered in simple mode")
	}

	s.SetMode(schema.ModeAdvanced)
	descriptors, err = s.Render()
	if err != nil {
		t.Fatalf("render advanced: %v", err)
	}
	if _, ok := form.Find(descriptors, document.MustParsePath("metadata.schema_version")); !ok {
		t.Fatalf("system field missing in advanced mode")
	}

	sub, err := s.RenderAt(document.MustParsePath("metadata.author"))
	if err != nil {
		t.Fatalf("render at: %v", err)
	}
	if len(sub) == 0 || !sub[0].Path.HasPrefix(document.MustParsePath("metadata.author")) {
		t.Fatalf("unexpected subtree descriptors %+v", sub)
	}
}

func TestSession_SaveRequest(t *testing.T) {
	s := loadedSession(t)
	s.MarkSaved("rec-9")
	if err := s.ApplyFieldEdit(document.MustParsePath("metadata.visibility.is_public"), true); err != nil {
		t.Fatalf("edit: %v", err)
	}

	data, id, err := s.SaveRequest()
	if err != nil {
		t.Fatalf("save request: %v", err)
	}
	if id != "rec-9" {
		t.Fatalf("expected bound id, got %q", id)
	}
	if data.Title != "New Assistant" || data.Description != "A brief description of what this assistant does" || !data.IsPublic {
		t.Fatalf("unexpected payload %+v", data)
	}
	if data.YAMLContent != s.Preview() {
		t.Fatalf("payload yaml must match preview")
	}

	if err := s.ImportYAML("metadata:\n  description: Plain text\n  visibility: public\n"); err != nil {
		t.Fatalf("import: %v", err)
	}
	data, id, err = s.SaveRequest()
	if err != nil {
		t.Fatalf("save request: %v", err)
	}
	if id != "" || data.Title != UntitledTitle || data.Description != "Plain text" || !data.IsPublic {
		t.Fatalf("unexpected legacy payload %+v id=%q", data, id)
	}
}

func TestSession_ExportFilename(t *testing.T) {
	s := loadedSession(t)
	if got := s.ExportFilename(); got != "New Assistant.yaml" {
		t.Fatalf("unexpected filename %q", got)
	}
	if err := s.ImportYAML("metadata:\n  title: a/b\n"); err != nil {
		t.Fatalf("import: %v", err)
	}
	if got := s.ExportFilename(); got != "a-b.yaml" {
		t.Fatalf("unexpected filename %q", got)
	}
	if err := s.ImportYAML("{}"); err != nil {
		t.Fatalf("import: %v", err)
	}
	if got := s.ExportFilename(); got != "assistant.yaml" {
		t.Fatalf("unexpected filename %q", got)
	}
}

func TestSession_ProgressAndAuthor(t *testing.T) {
	s := loadedSession(t)
	if got := s.Progress(); got != 50 {
		t.Fatalf("expected 50%% for defaults, got %d", got)
	}

	if err := s.ApplyAuthor(Author{Name: "Ada", Email: "ada@example.com"}); err != nil {
		t.Fatalf("apply author: %v", err)
	}
	if s.Modified() {
		t.Fatalf("prefilling the author must not mark the document modified")
	}
	if got := mustGet(t, s, "metadata.author.email").Text(); got != "ada@example.com" {
		t.Fatalf("unexpected email %q", got)
	}
	if got := mustGet(t, s, "metadata.author.role").Text(); got != "" {
		t.Fatalf("empty author fields must not overwrite, got %q", got)
	}
	if got := s.Progress(); got != 75 {
		t.Fatalf("expected 75%%, got %d", got)
	}

	if err := s.ApplyFieldEdit(document.MustParsePath("assistant_instructions.context.assistant_role"), "A patient tutor"); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if got := s.Progress(); got != 100 {
		t.Fatalf("expected 100%%, got %d", got)
	}

	flat, err := NewSession(schema.MustParseBytes([]byte(`type: object
properties:
  a: {type: string}`)))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if got := flat.Progress(); got != 100 {
		t.Fatalf("expected 100%% without required fields, got %d", got)
	}
}

func TestSession_LogsTransitions(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s := loadedSession(t, WithLogger(logger))
	s.MarkSaved("rec-1")

	out := buf.String()
	for _, want := range []string{"from=empty to=loaded", "from=loaded to=saved"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in log output:\n%s", want, out)
		}
	}
}
