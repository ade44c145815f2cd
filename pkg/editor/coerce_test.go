package editor

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-adlform/pkg/document"
	"github.com/goliatone/go-adlform/pkg/schema"
)

func TestCoerce(t *testing.T) {
	root := schema.MustParseBytes([]byte(`
type: object
properties:
  name: {type: string}
  enabled: {type: boolean}
  count: {type: integer}
  ratio: {type: number}
  settings: {type: object}
  tags:
    type: array
    items: {type: string}
`))
	prop := func(name string) *schema.Node {
		node, ok := root.Property(name)
		if !ok {
			t.Fatalf("missing property %s", name)
		}
		return node
	}

	mapping := document.MappingOf(
		document.Entry{Key: "b", Value: document.Int(1)},
		document.Entry{Key: "a", Value: document.Bool(true)},
	)

	cases := []struct {
		name string
		node *schema.Node
		raw  any
		want *document.Value
	}{
		{"text", prop("name"), "hello", document.String("hello")},
		{"number into text", prop("name"), 12, document.String("12")},
		{"checkbox on", prop("enabled"), "on", document.Bool(true)},
		{"checkbox empty", prop("enabled"), "", document.Bool(false)},
		{"checkbox native", prop("enabled"), true, document.Bool(true)},
		{"checkbox garbage", prop("enabled"), "maybe", document.String("maybe")},
		{"integer", prop("count"), " 42 ", document.Int(42)},
		{"integer from whole float text", prop("count"), "4.0", document.Int(4)},
		{"integer from whole float", prop("count"), float64(3), document.Int(3)},
		{"integer cleared", prop("count"), "", document.Null()},
		{"integer garbage", prop("count"), "abc", document.String("abc")},
		{"number", prop("ratio"), "2.5", document.Float(2.5)},
		{"number integral", prop("ratio"), "7", document.Int(7)},
		{"structured json", prop("settings"), `{"b": 1, "a": true}`, mapping},
		{"structured invalid", prop("settings"), "{not json", document.String("{not json")},
		{"structured cleared", prop("settings"), "  ", document.Null()},
		{"list as json", prop("tags"), `["x", "y"]`, document.Sequence(document.String("x"), document.String("y"))},
		{"list native", prop("tags"), []string{"x"}, document.Sequence(document.String("x"))},
		{"no schema", nil, "free", document.String("free")},
		{"no schema native", nil, 3.5, document.Float(3.5)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Coerce(tc.node, tc.raw)
			if err != nil {
				t.Fatalf("Coerce: %v", err)
			}
			if diff := cmp.Diff(tc.want, got, cmp.Comparer(document.Equal)); diff != "" {
				t.Fatalf("Coerce mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCoerce_UnsupportedValue(t *testing.T) {
	count := schema.MustParseBytes([]byte(`{type: integer}`))
	for _, raw := range []any{struct{}{}, map[string]int{"a": 1}, []any{1, struct{}{}}} {
		if _, err := Coerce(count, raw); !errors.Is(err, ErrUnsupportedValue) {
			t.Fatalf("Coerce(%T): expected ErrUnsupportedValue, got %v", raw, err)
		}
	}
}
