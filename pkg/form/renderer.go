package form

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-adlform/pkg/document"
	"github.com/goliatone/go-adlform/pkg/schema"
)

// DefaultLongTextThreshold is the default-value length above which a string
// renders as a multi-line control.
const DefaultLongTextThreshold = 100

// Reader is the read side of a document store. Render never needs more.
type Reader interface {
	Get(path document.Path) (*document.Value, bool)
}

// Renderer walks a schema together with the current document and produces
// descriptors. It is safe for concurrent use; it holds configuration only.
type Renderer struct {
	labeler           Labeler
	longTextThreshold int
	toolsPath         document.Path
	longTextFormats   map[string]struct{}
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLabeler overrides how keys become labels.
func WithLabeler(labeler Labeler) Option {
	return func(r *Renderer) {
		if labeler != nil {
			r.labeler = labeler
		}
	}
}

// WithLongTextThreshold changes the default-length cutoff for multi-line
// strings. Non-positive values disable the length rule.
func WithLongTextThreshold(n int) Option {
	return func(r *Renderer) {
		r.longTextThreshold = n
	}
}

// WithToolsPath moves the tools container. A nil path disables tools
// rendering.
func WithToolsPath(path document.Path) Option {
	return func(r *Renderer) {
		r.toolsPath = append(document.Path(nil), path...)
	}
}

// WithLongTextFormats adds schema `format` values that force a multi-line
// control.
func WithLongTextFormats(formats ...string) Option {
	return func(r *Renderer) {
		for _, format := range formats {
			r.longTextFormats[strings.ToLower(format)] = struct{}{}
		}
	}
}

// NewRenderer returns a Renderer with defaults applied.
func NewRenderer(options ...Option) *Renderer {
	r := &Renderer{
		labeler:           DefaultLabeler,
		longTextThreshold: DefaultLongTextThreshold,
		toolsPath:         append(document.Path(nil), DefaultToolsPath...),
		longTextFormats: map[string]struct{}{
			"long-text": {},
			"markdown":  {},
			"textarea":  {},
		},
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// ToolsPath returns the configured tools container path.
func (r *Renderer) ToolsPath() document.Path {
	return append(document.Path(nil), r.toolsPath...)
}

// Labeler returns the configured labeler.
func (r *Renderer) Labeler() Labeler {
	return r.labeler
}

// Render produces descriptors for node, which describes the document value
// at base. Object nodes yield one descriptor per shown property in
// declaration order; other nodes yield a single descriptor. Containers with
// nothing visible inside are dropped, and when nothing at all remains
// ErrNoRenderableFields is returned. Render only reads doc.
func (r *Renderer) Render(node *schema.Node, doc Reader, mode schema.Mode, base document.Path) ([]Descriptor, error) {
	if node == nil {
		return nil, ErrNoRenderableFields
	}
	w := walk{r: r, doc: doc, mode: mode}

	var out []Descriptor
	if node.Kind == schema.KindObject && !node.IsStructured() && !w.isTools(base) {
		out = w.properties(node, base)
	} else {
		name := ""
		if last, ok := base.Last(); ok && !last.IsIndex {
			name = last.Key
		}
		if d, ok := w.property(name, node, base, false); ok {
			out = append(out, d)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoRenderableFields
	}
	return out, nil
}

// HasCustomFields reports whether Simple mode can show anything for node.
// Hosts use it to decide whether to open in Advanced mode instead.
func HasCustomFields(node *schema.Node) bool {
	if node == nil {
		return false
	}
	if node.IsCustom() {
		return true
	}
	for _, prop := range node.Properties {
		if HasCustomFields(prop.Node) {
			return true
		}
	}
	return HasCustomFields(node.Items)
}

type walk struct {
	r    *Renderer
	doc  Reader
	mode schema.Mode
}

// itemShown reports whether a list's item controls are shown. Items without
// a category of their own follow the list; every other node is judged by
// its own category.
func (w walk) itemShown(items *schema.Node, listShown bool) bool {
	if schema.IsVisibleIn(items, w.mode) {
		return true
	}
	return listShown && items.Category == schema.CategoryUnset
}

func (w walk) isTools(path document.Path) bool {
	return len(w.r.toolsPath) > 0 && path.Equal(w.r.toolsPath)
}

func (w walk) value(path document.Path) (*document.Value, bool) {
	if w.doc == nil {
		return nil, false
	}
	return w.doc.Get(path)
}

func (w walk) properties(node *schema.Node, path document.Path) []Descriptor {
	var out []Descriptor
	for _, prop := range node.Properties {
		if d, ok := w.property(prop.Name, prop.Node, path.Child(prop.Name), node.IsRequired(prop.Name)); ok {
			out = append(out, d)
		}
	}
	return out
}

func (w walk) property(name string, node *schema.Node, path document.Path, required bool) (Descriptor, bool) {
	if node == nil {
		return Descriptor{}, false
	}
	if w.isTools(path) {
		return w.tools(name, node, path), true
	}

	shown := schema.IsVisibleIn(node, w.mode)
	switch {
	case node.Kind == schema.KindObject && !node.IsStructured():
		children := w.properties(node, path)
		if len(children) == 0 {
			return Descriptor{}, false
		}
		d := w.base(KindSection, name, node, path, required)
		d.Children = children
		return d, true
	case node.Kind == schema.KindArray && !node.IsStructured():
		if !shown && !w.hasVisible(node.Items, path.At(0)) {
			return Descriptor{}, false
		}
		return w.list(name, node, path, shown, required), true
	case node.Kind == schema.KindUnknown:
		return Descriptor{}, false
	}

	if !shown {
		return Descriptor{}, false
	}
	return w.field(name, node, path, required), true
}

// hasVisible reports from the schema alone whether node would show anything
// in the current mode. Used for lists, whose items may not exist yet.
func (w walk) hasVisible(node *schema.Node, path document.Path) bool {
	if node == nil {
		return false
	}
	if w.isTools(path) || schema.IsVisibleIn(node, w.mode) {
		return node.Kind != schema.KindUnknown
	}
	for _, prop := range node.Properties {
		if w.hasVisible(prop.Node, path.Child(prop.Name)) {
			return true
		}
	}
	return node.Kind == schema.KindArray && w.hasVisible(node.Items, path.At(0))
}

func (w walk) base(kind DescriptorKind, name string, node *schema.Node, path document.Path, required bool) Descriptor {
	label := plainText(node.Title)
	if label == "" {
		label = w.r.labeler(name)
	}
	return Descriptor{
		Kind:        kind,
		Path:        path,
		Name:        name,
		Label:       label,
		Description: plainText(node.Description),
		SchemaKind:  node.Kind,
		Format:      node.Format,
		Required:    required,
		Category:    node.Category,
	}
}

func (w walk) field(name string, node *schema.Node, path document.Path, required bool) Descriptor {
	d := w.base(KindField, name, node, path, required)
	current, ok := w.value(path)
	if !ok {
		current = schema.DefaultFor(node)
	}
	d.Value = current
	d.Control = w.control(node, current)
	if d.Control == ControlChoice {
		d.Options = append([]string(nil), node.Enum...)
	}
	return d
}

func (w walk) control(node *schema.Node, current *document.Value) ControlKind {
	switch {
	case node.IsStructured():
		return ControlStructured
	case len(node.Enum) > 0:
		return ControlChoice
	case node.Kind == schema.KindBoolean:
		return ControlToggle
	case node.Kind.IsNumeric():
		return ControlNumber
	case w.isLongText(node, current):
		return ControlTextarea
	default:
		return ControlText
	}
}

func (w walk) isLongText(node *schema.Node, current *document.Value) bool {
	if _, ok := w.r.longTextFormats[strings.ToLower(node.Format)]; ok {
		return true
	}
	if text, ok := current.Str(); ok && strings.Contains(text, "\n") {
		return true
	}
	if w.r.longTextThreshold <= 0 || node.Default == nil {
		return false
	}
	text, ok := node.Default.Str()
	return ok && len([]rune(text)) > w.r.longTextThreshold
}

func (w walk) list(name string, node *schema.Node, path document.Path, shown, required bool) Descriptor {
	d := w.base(KindList, name, node, path, required)
	d.Addable = true

	items := node.Items
	current, _ := w.value(path)
	if current.Kind() != document.KindSequence {
		return d
	}
	label := d.Label
	if label == "" {
		label = "Item"
	}
	itemShown := w.itemShown(items, shown)
	for i := 0; i < current.Len(); i++ {
		itemPath := path.At(i)
		itemName := label + " " + strconv.Itoa(i+1)
		if items.Kind == schema.KindObject {
			child := w.base(KindSection, "", items, itemPath, false)
			child.Label = itemName
			child.Removable = true
			child.Children = w.properties(items, itemPath)
			d.Children = append(d.Children, child)
			continue
		}
		if !itemShown {
			continue
		}
		child := w.field("", items, itemPath, false)
		child.Label = itemName
		child.Removable = true
		d.Children = append(d.Children, child)
	}
	return d
}

func (w walk) tools(name string, node *schema.Node, path document.Path) Descriptor {
	d := w.base(KindTools, name, node, path, false)
	if d.Label == "" {
		d.Label = "Tools"
	}
	for _, kind := range ToolKinds() {
		groupPath := path.Child(string(kind))
		group := Descriptor{
			Kind:     KindToolGroup,
			Path:     groupPath,
			Name:     string(kind),
			Label:    w.r.labeler(string(kind)),
			ToolKind: kind,
			Prefix:   kind.Prefix(),
			Addable:  true,
		}
		if groupNode, ok := node.Property(string(kind)); ok {
			if label := plainText(groupNode.Title); label != "" {
				group.Label = label
			}
			group.Description = plainText(groupNode.Description)
		}

		entries, _ := w.value(groupPath)
		for _, key := range entries.Keys() {
			entry, _ := entries.Field(key)
			group.Children = append(group.Children, w.toolEntry(kind, key, entry, groupPath.Child(key)))
		}
		d.Children = append(d.Children, group)
	}
	return d
}

func (w walk) toolEntry(kind ToolKind, key string, entry *document.Value, path document.Path) Descriptor {
	label := w.r.labeler(key)
	if display, ok := entry.Field(ToolFieldDisplayName); ok && strings.TrimSpace(display.Text()) != "" {
		label = display.Text()
	}
	d := Descriptor{
		Kind:      KindToolEntry,
		Path:      path,
		Name:      key,
		Label:     label,
		ToolKind:  kind,
		Prefix:    kind.Prefix(),
		Removable: true,
	}
	for _, spec := range []struct {
		key     string
		control ControlKind
	}{
		{ToolFieldDisplayName, ControlText},
		{ToolFieldDescription, ControlText},
		{ToolFieldPrompt, ControlTextarea},
	} {
		value, ok := entry.Field(spec.key)
		if !ok {
			value = document.String("")
		}
		d.Children = append(d.Children, Descriptor{
			Kind:       KindField,
			Path:       path.Child(spec.key),
			Name:       spec.key,
			Label:      w.r.labeler(spec.key),
			Control:    spec.control,
			SchemaKind: schema.KindString,
			Value:      value.Clone(),
		})
	}
	return d
}
