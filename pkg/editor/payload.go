package editor

import (
	"math"
	"strings"

	"github.com/goliatone/go-adlform/pkg/document"
	"github.com/goliatone/go-adlform/pkg/record"
	"github.com/goliatone/go-adlform/pkg/schema"
)

// UntitledTitle is the record title used when the document has none.
const UntitledTitle = "Untitled Assistant"

var (
	pathDescriptionTitle   = document.PathOf("metadata", "description", "title")
	pathDescriptionSummary = document.PathOf("metadata", "description", "summary")
	pathMetadataTitle      = document.PathOf("metadata", "title")
	pathMetadataDesc       = document.PathOf("metadata", "description")
	pathVisibility         = document.PathOf("metadata", "visibility")
	pathVisibilityPublic   = document.PathOf("metadata", "visibility", "is_public")
	pathAuthor             = document.PathOf("metadata", "author")
)

// Author is the signed-in user's profile copied into metadata.author.
type Author struct {
	Name         string
	Email        string
	Organization string
	Role         string
	Contact      string
}

// ApplyAuthor fills metadata.author with the non-empty fields of author.
// The modified flag is left as it was: prefilling is not a user edit.
func (s *Session) ApplyAuthor(author Author) error {
	if err := s.requireDocument(); err != nil {
		return err
	}
	for _, field := range []struct{ key, value string }{
		{"name", author.Name},
		{"email", author.Email},
		{"organization", author.Organization},
		{"role", author.Role},
		{"contact", author.Contact},
	} {
		if strings.TrimSpace(field.value) == "" {
			continue
		}
		if err := s.store.Set(pathAuthor.Child(field.key), document.String(field.value)); err != nil {
			return s.fail(err)
		}
	}
	return nil
}

// SaveRequest regenerates the YAML and returns the payload to store along
// with the bound record id. An empty id means the record must be created.
func (s *Session) SaveRequest() (record.AssistantData, string, error) {
	text, err := s.RegenerateYAML()
	if err != nil {
		return record.AssistantData{}, "", err
	}
	title := s.title()
	if title == "" {
		title = UntitledTitle
	}
	return record.AssistantData{
		Title:       title,
		Description: s.description(),
		YAMLContent: text,
		IsPublic:    s.isPublic(),
	}, s.recordID, nil
}

// ExportFilename names the file an export is written to.
func (s *Session) ExportFilename() string {
	title := s.title()
	if title == "" {
		title = "assistant"
	}
	title = strings.NewReplacer("/", "-", "\\", "-").Replace(title)
	return title + ".yaml"
}

// Progress returns the share, 0 to 100, of required leaf fields holding a
// value. Objects with properties are descended into rather than counted. A
// schema without required fields reports 100.
func (s *Session) Progress() int {
	var total, filled int
	countRequired(s.schema, nil, s.store, &total, &filled)
	if total == 0 {
		return 100
	}
	return int(math.Round(float64(filled) * 100 / float64(total)))
}

func countRequired(node *schema.Node, path document.Path, doc *document.Store, total, filled *int) {
	if node == nil || node.Kind != schema.KindObject {
		return
	}
	for _, prop := range node.Properties {
		child := prop.Node
		childPath := path.Child(prop.Name)
		if child.Kind == schema.KindObject && len(child.Properties) > 0 {
			countRequired(child, childPath, doc, total, filled)
			continue
		}
		if !node.IsRequired(prop.Name) {
			continue
		}
		*total++
		if value, ok := doc.Get(childPath); ok && !value.IsEmpty() {
			*filled++
		}
	}
}

func (s *Session) title() string {
	for _, path := range []document.Path{pathDescriptionTitle, pathMetadataTitle} {
		if value, ok := s.store.Get(path); ok {
			if text := strings.TrimSpace(value.Text()); text != "" {
				return text
			}
		}
	}
	return ""
}

func (s *Session) description() string {
	if value, ok := s.store.Get(pathDescriptionSummary); ok && value.IsScalar() {
		return value.Text()
	}
	if value, ok := s.store.Get(pathMetadataDesc); ok && value.IsScalar() {
		return value.Text()
	}
	return ""
}

func (s *Session) isPublic() bool {
	if value, ok := s.store.Get(pathVisibilityPublic); ok {
		b, _ := value.Bool()
		return b
	}
	if value, ok := s.store.Get(pathVisibility); ok {
		text, _ := value.Str()
		return strings.EqualFold(text, "public")
	}
	return false
}
