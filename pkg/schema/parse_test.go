package schema

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-adlform/pkg/document"
)

func propertyNames(n *Node) []string {
	names := make([]string, 0, len(n.Properties))
	for _, prop := range n.Properties {
		names = append(names, prop.Name)
	}
	return names
}

func TestParseBytes_KeepsDeclarationOrder(t *testing.T) {
	node, err := ParseBytes([]byte(`
type: object
properties:
  zeta: {type: string}
  alpha: {type: integer}
  mid:
    type: object
    properties:
      b: {type: boolean}
      a: {type: number}
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if diff := cmp.Diff([]string{"zeta", "alpha", "mid"}, propertyNames(node)); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	mid, _ := node.Property("mid")
	if diff := cmp.Diff([]string{"b", "a"}, propertyNames(mid)); diff != "" {
		t.Fatalf("nested order mismatch (-want +got):\n%s", diff)
	}
}

func TestParseBytes_AcceptsJSON(t *testing.T) {
	node, err := ParseBytes([]byte(`{"type":"object","properties":{"title":{"type":"string","category":"custom"},"internalId":{"type":"string","category":"system"}}}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	title, _ := node.Property("title")
	internal, _ := node.Property("internalId")
	if title.Category != CategoryCustom || internal.Category != CategorySystem {
		t.Fatalf("unexpected categories: %q %q", title.Category, internal.Category)
	}
}

func TestParse_SortsGoMaps(t *testing.T) {
	node, err := Parse(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"b": map[string]any{"type": "string"},
			"a": map[string]any{"type": "string", "x-category": "custom"},
		},
	})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b"}, propertyNames(node)); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	a, _ := node.Property("a")
	if !a.IsCustom() {
		t.Fatalf("expected x-category to be read")
	}
}

func TestParse_Annotations(t *testing.T) {
	node := MustParseBytes([]byte(`
type: object
required: [tone]
properties:
  tone:
    type: string
    title: Voice
    description: How the assistant sounds
    format: long-text
    enum: [formal, friendly]
    default: friendly
  tags:
    type: array
    items: {type: string}
  nullable:
    type: [null, integer]
  tools:
    type: object
    additionalProperties:
      type: object
      properties:
        prompt: {type: string}
`))

	tone, _ := node.Property("tone")
	want := &Node{
		Kind:        KindString,
		Title:       "Voice",
		Description: "How the assistant sounds",
		Format:      "long-text",
		Enum:        []string{"formal", "friendly"},
		Default:     document.String("friendly"),
	}
	if diff := cmp.Diff(want, tone, cmp.Comparer(document.Equal)); diff != "" {
		t.Fatalf("tone mismatch (-want +got):\n%s", diff)
	}
	if !node.IsRequired("tone") || node.IsRequired("tags") {
		t.Fatalf("unexpected required set %v", node.Required)
	}

	tags, _ := node.Property("tags")
	if tags.Kind != KindArray || tags.Items == nil || tags.Items.Kind != KindString {
		t.Fatalf("unexpected tags node %+v", tags)
	}

	nullable, _ := node.Property("nullable")
	if nullable.Kind != KindInteger {
		t.Fatalf("expected first non-null type, got %q", nullable.Kind)
	}

	tools, _ := node.Property("tools")
	if tools.AdditionalProperties == nil {
		t.Fatalf("expected additionalProperties schema on tools")
	}
	if !tools.IsStructured() || tags.IsStructured() {
		t.Fatalf("free-keyed objects are structured, scalar arrays are not")
	}
}

func TestParse_InfersMissingTypes(t *testing.T) {
	node := MustParseBytes([]byte(`
properties:
  flag: {default: true}
  choice: {enum: [a, b]}
  list: {items: {type: string}}
  free: {description: no type at all}
`))
	if node.Kind != KindObject {
		t.Fatalf("expected root inferred as object, got %q", node.Kind)
	}
	cases := map[string]Kind{
		"flag":   KindBoolean,
		"choice": KindString,
		"list":   KindArray,
		"free":   KindUnknown,
	}
	for name, kind := range cases {
		child, _ := node.Property(name)
		if child.Kind != kind {
			t.Fatalf("%s: expected %q, got %q", name, kind, child.Kind)
		}
	}
}

func TestParse_Errors(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		path string
	}{
		{name: "scalar root", raw: `"just text"`},
		{name: "untyped root", raw: `description: nothing to render`},
		{name: "unknown type", raw: `type: object
properties:
  a: {type: date}`, path: "a"},
		{name: "properties not mapping", raw: `type: object
properties: [a, b]`},
		{name: "nested properties not mapping", raw: `type: object
properties:
  meta:
    type: object
    properties: nope`, path: "meta"},
		{name: "items scalar", raw: `type: array
items: string`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseBytes([]byte(tc.raw))
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("expected ParseError, got %v", err)
			}
			if parseErr.Path != tc.path {
				t.Fatalf("expected path %q, got %q", tc.path, parseErr.Path)
			}
		})
	}
}

func TestParseBytes_RejectsAliasFanOut(t *testing.T) {
	var b strings.Builder
	b.WriteString("type: object\ndefinitions:\n  f0: &f0 {type: string, default: x}\n")
	for level := 1; level <= 7; level++ {
		fmt.Fprintf(&b, "  f%d: &f%d {type: object, properties: {", level, level)
		for i := 0; i < 10; i++ {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "p%d: *f%d", i, level-1)
		}
		b.WriteString("}}\n")
	}
	b.WriteString("properties:\n  top: *f7\n")

	_, err := ParseBytes([]byte(b.String()))
	var parseErr *ParseError
	if !errors.As(err, &parseErr) || !strings.Contains(parseErr.Error(), "alias expansion") {
		t.Fatalf("expected alias expansion ParseError, got %v", err)
	}
}

func TestParseBytes_SharedFragments(t *testing.T) {
	node, err := ParseBytes([]byte(`
type: object
properties:
  commands: {type: object, additionalProperties: &tool {type: object, properties: {prompt: {type: string}}}}
  options: {type: object, additionalProperties: *tool}
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	options, ok := node.Property("options")
	if !ok || options.AdditionalProperties == nil || options.AdditionalProperties.Kind != KindObject {
		t.Fatalf("expected aliased fragment to parse, got %+v", options)
	}
}

func TestParse_EmptyInput(t *testing.T) {
	if _, err := ParseBytes([]byte("  ")); err == nil {
		t.Fatalf("expected error for empty schema")
	}
	if _, err := Parse(nil); err == nil {
		t.Fatalf("expected error for nil schema")
	}
}

func TestNode_Lookup(t *testing.T) {
	node := Fallback()

	cases := []struct {
		path string
		kind Kind
	}{
		{path: "metadata.description.title", kind: KindString},
		{path: "metadata.description.keywords[3]", kind: KindString},
		{path: "metadata.history[0].version", kind: KindString},
		{path: `assistant_instructions.tools.commands["/help"].prompt`, kind: KindString},
		{path: "metadata.visibility.is_public", kind: KindBoolean},
	}
	for _, tc := range cases {
		got, ok := node.Lookup(document.MustParsePath(tc.path))
		if !ok {
			t.Fatalf("lookup %s: not found", tc.path)
		}
		if got.Kind != tc.kind {
			t.Fatalf("lookup %s: expected %q, got %q", tc.path, tc.kind, got.Kind)
		}
	}

	if _, ok := node.Lookup(document.MustParsePath("metadata.unknown")); ok {
		t.Fatalf("expected missing property to fail lookup")
	}
	if _, ok := node.Lookup(document.MustParsePath("metadata.description.title[0]")); ok {
		t.Fatalf("expected index into scalar to fail lookup")
	}
}

func TestFallback_Parses(t *testing.T) {
	node := Fallback()
	if node.Kind != KindObject {
		t.Fatalf("expected object root")
	}
	options, ok := node.Lookup(document.MustParsePath("assistant_instructions.tools.options"))
	if !ok || options.AdditionalProperties == nil {
		t.Fatalf("expected aliased tool schema on options")
	}
	if _, ok := options.AdditionalProperties.Property("prompt"); !ok {
		t.Fatalf("expected prompt property on tool entries")
	}
}
