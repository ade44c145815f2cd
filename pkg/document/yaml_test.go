package document

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestStore_YAMLRoundTrip(t *testing.T) {
	docs := []*Value{
		Mapping(),
		MappingOf(
			Entry{Key: "title", Value: String("X")},
			Entry{Key: "count", Value: Int(3)},
			Entry{Key: "ratio", Value: Float(2)},
			Entry{Key: "flag", Value: Bool(false)},
			Entry{Key: "nothing", Value: Null()},
		),
		MappingOf(
			Entry{Key: "zeta", Value: String("last declared first")},
			Entry{Key: "alpha", Value: Sequence(String("a"), Int(1), Sequence(Bool(true)))},
			Entry{Key: "prompt", Value: String("line one\nline two\n")},
			Entry{Key: "quoted", Value: String("true")},
			Entry{Key: "numeric text", Value: String("0012")},
			Entry{Key: "empty", Value: String("")},
		),
		MappingOf(Entry{Key: "tools", Value: MappingOf(
			Entry{Key: "commands", Value: MappingOf(
				Entry{Key: "/help", Value: MappingOf(Entry{Key: "prompt", Value: String("Show help")})},
			)},
			Entry{Key: "decorators", Value: MappingOf(
				Entry{Key: "+++socratic", Value: MappingOf(Entry{Key: "display_name", Value: String("Socratic")})},
			)},
		)}),
		Sequence(String("a"), String("b")),
	}

	for i, doc := range docs {
		store := NewStoreFrom(doc)
		text, err := store.ToYAML()
		if err != nil {
			t.Fatalf("doc %d: to yaml: %v", i, err)
		}

		restored := NewStore()
		if err := restored.FromYAML(text); err != nil {
			t.Fatalf("doc %d: from yaml: %v\n%s", i, err, text)
		}
		if !Equal(doc, restored.Root()) {
			t.Fatalf("doc %d: round trip mismatch\nyaml:\n%s\nwant %v\ngot  %v", i, text, doc.Interface(), restored.Root().Interface())
		}
	}
}

func TestStore_ToYAMLNestedToolKeys(t *testing.T) {
	store := NewStore()
	if err := store.Set(PathOf("tools", "commands", "/help", "prompt"), String("Show help")); err != nil {
		t.Fatalf("set: %v", err)
	}

	text, err := store.ToYAML()
	if err != nil {
		t.Fatalf("to yaml: %v", err)
	}
	want := "tools:\n  commands:\n    /help:\n      prompt: Show help\n"
	if diff := cmp.Diff(want, text); diff != "" {
		t.Fatalf("yaml mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_FromYAMLInvalidKeepsDocument(t *testing.T) {
	store := NewStore()
	_ = store.Set(PathOf("title"), String("keep me"))
	before := store.Root()

	err := store.FromYAML("not: [valid yaml")
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if !Equal(before, store.Root()) {
		t.Fatalf("document changed after failed import: %v", store.Root().Interface())
	}
}

func TestStore_FromYAMLPreservesKeyOrder(t *testing.T) {
	store := NewStore()
	if err := store.FromYAML("zeta: 1\nalpha: 2\nmid:\n  b: 1\n  a: 2\n"); err != nil {
		t.Fatalf("from yaml: %v", err)
	}
	if diff := cmp.Diff([]string{"zeta", "alpha", "mid"}, store.Root().Keys()); diff != "" {
		t.Fatalf("key order mismatch (-want +got):\n%s", diff)
	}
	mid, _ := store.Get(PathOf("mid"))
	if diff := cmp.Diff([]string{"b", "a"}, mid.Keys()); diff != "" {
		t.Fatalf("nested key order mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_FromYAMLEmptyAndNull(t *testing.T) {
	for _, text := range []string{"", "   \n", "~", "null"} {
		store := NewStore()
		if err := store.FromYAML(text); err != nil {
			t.Fatalf("from yaml %q: %v", text, err)
		}
		if store.Root().Kind() != KindMapping || store.Root().Len() != 0 {
			t.Fatalf("expected empty mapping for %q, got %v", text, store.Root().Interface())
		}
	}
}

func TestStore_FromYAMLResolvesAliases(t *testing.T) {
	store := NewStore()
	text := "base: &b\n  tone: formal\ncopy: *b\n"
	if err := store.FromYAML(text); err != nil {
		t.Fatalf("from yaml: %v", err)
	}
	got, ok := store.Get(PathOf("copy", "tone"))
	if !ok || got.Text() != "formal" {
		t.Fatalf("expected alias to resolve, got %v", store.Root().Interface())
	}
}

func TestStore_FromYAMLRejectsAliasExpansion(t *testing.T) {
	var b strings.Builder
	b.WriteString("l0: &l0 [x, x, x, x, x, x, x, x, x, x]\n")
	for level := 1; level <= 7; level++ {
		fmt.Fprintf(&b, "l%d: &l%d [", level, level)
		for i := 0; i < 10; i++ {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "*l%d", level-1)
		}
		b.WriteString("]\n")
	}

	store := NewStore()
	_ = store.Set(PathOf("title"), String("keep me"))
	before := store.Root()

	err := store.FromYAML(b.String())
	var parseErr *ParseError
	if !errors.As(err, &parseErr) || !errors.Is(err, ErrAliasExpansion) {
		t.Fatalf("expected alias expansion ParseError, got %v", err)
	}
	if !Equal(before, store.Root()) {
		t.Fatalf("document changed after rejected import")
	}
}

func TestStore_FromYAMLAppliesMergeKeys(t *testing.T) {
	store := NewStore()
	text := "base: &b\n  x: 1\n  y: 1\nderived:\n  <<: *b\n  y: 2\n  z: 3\n"
	if err := store.FromYAML(text); err != nil {
		t.Fatalf("from yaml: %v", err)
	}
	derived, ok := store.Get(PathOf("derived"))
	if !ok {
		t.Fatalf("derived missing")
	}
	want := MappingOf(
		Entry{Key: "x", Value: Int(1)},
		Entry{Key: "y", Value: Int(2)},
		Entry{Key: "z", Value: Int(3)},
	)
	if !Equal(want, derived) {
		t.Fatalf("merged mapping mismatch: %v", derived.Interface())
	}

	out, err := store.ToYAML()
	if err != nil {
		t.Fatalf("to yaml: %v", err)
	}
	if strings.Contains(out, "<<") {
		t.Fatalf("merge key written back:\n%s", out)
	}
	again := NewStore()
	if err := again.FromYAML(out); err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if !Equal(store.Root(), again.Root()) {
		t.Fatalf("round trip changed the document:\n%s", out)
	}
}

func TestStore_FromYAMLMergeSequencePrecedence(t *testing.T) {
	store := NewStore()
	text := "a: &a {k: first, only_a: 1}\nb: &b {k: second, only_b: 2}\nc:\n  <<: [*a, *b]\n"
	if err := store.FromYAML(text); err != nil {
		t.Fatalf("from yaml: %v", err)
	}
	for _, tc := range []struct {
		path string
		want string
	}{
		{"c.k", "first"},
		{"c.only_a", "1"},
		{"c.only_b", "2"},
	} {
		got, ok := store.Get(MustParsePath(tc.path))
		if !ok || got.Text() != tc.want {
			t.Fatalf("%s: got %v, want %q", tc.path, got.Interface(), tc.want)
		}
	}

	if err := store.FromYAML("c:\n  <<: plain\n"); err == nil {
		t.Fatalf("expected error for scalar merge value")
	}
}

func TestMarshalYAML_MultilineUsesLiteralBlock(t *testing.T) {
	text, err := MarshalYAML(MappingOf(Entry{Key: "prompt", Value: String("one\ntwo")}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(text, "prompt: |") {
		t.Fatalf("expected literal block scalar, got:\n%s", text)
	}
}
