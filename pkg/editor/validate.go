package editor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-adlform/pkg/document"
	"github.com/goliatone/go-adlform/pkg/schema"
)

// Issue is a single validation failure.
type Issue struct {
	Path    document.Path `json:"path"`
	Message string        `json:"message"`
}

func (i Issue) String() string {
	parts := make([]string, 0, len(i.Path))
	for _, seg := range i.Path {
		if seg.IsIndex {
			parts = append(parts, strconv.Itoa(seg.Index))
			continue
		}
		parts = append(parts, seg.Key)
	}
	return fmt.Sprintf("Validation error at '%s': %s", strings.Join(parts, " > "), i.Message)
}

// Validate checks value against node: kinds, enum membership and required
// properties. Properties the schema does not declare are accepted. Issues
// are reported in document order, missing required properties first within
// each mapping.
func Validate(node *schema.Node, value *document.Value) []Issue {
	var issues []Issue
	validate(node, value, nil, &issues)
	return issues
}

// Validate checks the session's document against its schema.
func (s *Session) Validate() []Issue {
	return Validate(s.schema, s.store.Root())
}

func validate(node *schema.Node, value *document.Value, path document.Path, issues *[]Issue) {
	if node == nil || node.Kind == schema.KindUnknown {
		return
	}
	if !kindMatches(node.Kind, value) {
		*issues = append(*issues, Issue{
			Path:    path,
			Message: fmt.Sprintf("%s is not of type '%s'", describe(value), node.Kind),
		})
		return
	}
	if len(node.Enum) > 0 && value.IsScalar() && !contains(node.Enum, value.Text()) {
		*issues = append(*issues, Issue{
			Path:    path,
			Message: fmt.Sprintf("%s is not one of [%s]", describe(value), quoteAll(node.Enum)),
		})
	}

	switch node.Kind {
	case schema.KindObject:
		for _, name := range node.Required {
			if _, ok := value.Field(name); !ok {
				*issues = append(*issues, Issue{
					Path:    path,
					Message: fmt.Sprintf("'%s' is a required property", name),
				})
			}
		}
		for _, key := range value.Keys() {
			child, _ := value.Field(key)
			childNode, ok := node.Property(key)
			if !ok {
				childNode = node.AdditionalProperties
			}
			validate(childNode, child, path.Child(key), issues)
		}
	case schema.KindArray:
		for i, item := range value.Items() {
			validate(node.Items, item, path.At(i), issues)
		}
	}
}

func kindMatches(kind schema.Kind, value *document.Value) bool {
	switch kind {
	case schema.KindObject:
		return value.Kind() == document.KindMapping
	case schema.KindArray:
		return value.Kind() == document.KindSequence
	case schema.KindString:
		return value.Kind() == document.KindString
	case schema.KindBoolean:
		return value.Kind() == document.KindBool
	case schema.KindInteger:
		if value.Kind() == document.KindFloat {
			f, _ := value.Float()
			return f == float64(int64(f))
		}
		return value.Kind() == document.KindInt
	case schema.KindNumber:
		return value.Kind() == document.KindInt || value.Kind() == document.KindFloat
	default:
		return true
	}
}

func describe(value *document.Value) string {
	switch value.Kind() {
	case document.KindString:
		return "'" + value.Text() + "'"
	case document.KindNull:
		return "None"
	case document.KindSequence, document.KindMapping:
		return "a " + value.Kind().String()
	default:
		return value.Text()
	}
}

func quoteAll(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + v + "'"
	}
	return strings.Join(quoted, ", ")
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
