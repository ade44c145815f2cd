package editor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-adlform/pkg/document"
	"github.com/goliatone/go-adlform/pkg/schema"
)

// Coerce converts a raw control value into the document value the schema
// node implies. Strings from text inputs are parsed by kind: booleans accept
// true/false, on/off, yes/no and 1/0; numbers parse as integers first, then
// floats; structured fields are parsed as JSON. Input that does not parse is
// kept as a string so no keystroke is lost. Non-string input is converted
// as-is; values with no document form return ErrUnsupportedValue.
func Coerce(node *schema.Node, raw any) (*document.Value, error) {
	text, isText := raw.(string)
	if !isText {
		value, err := document.FromAny(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedValue, err)
		}
		return coerceValue(node, value), nil
	}
	if node == nil {
		return document.String(text), nil
	}
	return coerceText(node, text), nil
}

func coerceText(node *schema.Node, text string) *document.Value {

	switch {
	case node.IsStructured() || node.Kind == schema.KindObject || node.Kind == schema.KindArray:
		return coerceStructured(text)
	case node.Kind == schema.KindBoolean:
		if b, ok := parseBool(text); ok {
			return document.Bool(b)
		}
	case node.Kind.IsNumeric():
		return coerceNumber(node.Kind, text)
	}
	return document.String(text)
}

// coerceValue adjusts already typed input: integers are narrowed from whole
// floats, and scalar text for numeric or boolean fields is parsed.
func coerceValue(node *schema.Node, value *document.Value) *document.Value {
	if node == nil {
		return value
	}
	switch {
	case node.Kind == schema.KindInteger && value.Kind() == document.KindFloat:
		if f, _ := value.Float(); f == float64(int64(f)) {
			return document.Int(int64(f))
		}
	case node.Kind == schema.KindString && value.Kind() != document.KindString && value.IsScalar() && value.Kind() != document.KindNull:
		return document.String(value.Text())
	}
	return value
}

func coerceStructured(text string) *document.Value {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return document.Null()
	}
	if value, err := document.ParseJSON([]byte(trimmed)); err == nil {
		return value
	}
	return document.String(text)
}

func coerceNumber(kind schema.Kind, text string) *document.Value {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return document.Null()
	}
	if i, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return document.Int(i)
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return document.String(text)
	}
	if kind == schema.KindInteger && f == float64(int64(f)) {
		return document.Int(int64(f))
	}
	return document.Float(f)
}

func parseBool(text string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "true", "on", "1", "yes", "y":
		return true, true
	case "false", "off", "0", "no", "n", "":
		return false, true
	default:
		return false, false
	}
}
