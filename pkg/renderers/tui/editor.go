package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-adlform/pkg/document"
	"github.com/goliatone/go-adlform/pkg/editor"
	"github.com/goliatone/go-adlform/pkg/form"
	"github.com/goliatone/go-adlform/pkg/schema"
)

const (
	actionDone   = "Done"
	actionAdd    = "Add"
	actionRemove = "Remove"
)

// Editor prompts for every descriptor a session renders and feeds the
// answers back into the session as field edits.
type Editor struct {
	driver           PromptDriver
	mode             *schema.Mode
	theme            Theme
	advancedFallback bool
}

// New constructs a terminal editor backed by survey unless another driver is
// supplied.
func New(options ...Option) *Editor {
	e := &Editor{
		theme:            DefaultTheme,
		advancedFallback: true,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	if e.driver == nil {
		e.driver = newSurveyDriver()
	}
	return e
}

// Edit walks the session's form once, top to bottom. Lists and tool groups
// offer add and remove actions after their existing entries. Unchanged
// answers are not written back, so accepting every default leaves the
// session clean.
func (e *Editor) Edit(ctx context.Context, session *editor.Session) error {
	if ctx == nil {
		return errors.New("tui: context is required")
	}
	if session == nil {
		return ErrNoSession
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if e.mode != nil {
		session.SetMode(*e.mode)
	}

	descriptors, err := session.Render()
	if errors.Is(err, form.ErrNoRenderableFields) && e.advancedFallback && session.Mode() == schema.ModeSimple {
		if err := e.info(ctx, e.theme.InfoPrefix+"No custom fields to show, switching to advanced mode."); err != nil {
			return err
		}
		session.SetMode(schema.ModeAdvanced)
		descriptors, err = session.Render()
	}
	if err != nil {
		return err
	}

	for _, d := range descriptors {
		if err := e.visit(ctx, session, d); err != nil {
			return err
		}
	}
	return nil
}

func (e *Editor) visit(ctx context.Context, s *editor.Session, d form.Descriptor) error {
	switch d.Kind {
	case form.KindField:
		return e.promptField(ctx, s, d)
	case form.KindList:
		return e.editList(ctx, s, d)
	case form.KindToolGroup:
		return e.editToolGroup(ctx, s, d)
	case form.KindSection, form.KindTools, form.KindToolEntry:
		if err := e.info(ctx, e.theme.SectionPrefix+d.Label); err != nil {
			return err
		}
		for _, child := range d.Children {
			if err := e.visit(ctx, s, child); err != nil {
				return err
			}
		}
		return nil
	default:
		return nil
	}
}

func (e *Editor) promptField(ctx context.Context, s *editor.Session, d form.Descriptor) error {
	current := d.Value.Text()
	if d.Control == form.ControlStructured && !d.Value.IsEmpty() {
		payload, err := d.Value.MarshalJSON()
		if err != nil {
			return fmt.Errorf("tui: encode %s: %w", d.Path, err)
		}
		current = string(payload)
	}

	switch d.Control {
	case form.ControlToggle:
		was, _ := d.Value.Bool()
		answer, err := e.driver.Confirm(ctx, ConfirmConfig{Message: d.Label, Default: was, Help: d.Description})
		if err != nil {
			return err
		}
		return e.apply(s, d, answer, strconv.FormatBool(answer) != current)

	case form.ControlChoice:
		if len(d.Options) == 0 {
			break
		}
		for {
			idx, err := e.driver.Select(ctx, SelectConfig{
				Message:      d.Label,
				Options:      d.Options,
				DefaultIndex: indexOf(d.Options, current),
				Help:         d.Description,
			})
			if err != nil {
				return err
			}
			if idx < 0 || idx >= len(d.Options) {
				if err := e.invalid(ctx, d, "invalid selection"); err != nil {
					return err
				}
				continue
			}
			return e.apply(s, d, d.Options[idx], d.Options[idx] != current)
		}

	case form.ControlTextarea:
		answer, err := e.driver.TextArea(ctx, TextAreaConfig{Message: d.Label, Default: current, Help: d.Description})
		if err != nil {
			return err
		}
		return e.apply(s, d, answer, answer != current)

	case form.ControlNumber, form.ControlStructured:
		check := validateNumber
		if d.Control == form.ControlStructured {
			check = validateJSON
		}
		for {
			answer, err := e.driver.Input(ctx, InputConfig{Message: d.Label, Default: current, Help: d.Description, Validator: check})
			if err != nil {
				return err
			}
			if strings.TrimSpace(answer) == "" && d.Required {
				if err := e.invalid(ctx, d, "required"); err != nil {
					return err
				}
				continue
			}
			if err := check(answer); err != nil {
				if err := e.invalid(ctx, d, err.Error()); err != nil {
					return err
				}
				continue
			}
			return e.apply(s, d, answer, answer != current)
		}
	}

	answer, err := e.driver.Input(ctx, InputConfig{Message: d.Label, Default: current, Help: d.Description})
	if err != nil {
		return err
	}
	return e.apply(s, d, answer, answer != current)
}

// apply writes raw when the answer changed or the document lacks the value
// the prompt showed.
func (e *Editor) apply(s *editor.Session, d form.Descriptor, raw any, changed bool) error {
	if _, present := s.Value(d.Path); present && !changed {
		return nil
	}
	return s.ApplyFieldEdit(d.Path, raw)
}

func (e *Editor) editList(ctx context.Context, s *editor.Session, d form.Descriptor) error {
	if err := e.info(ctx, e.theme.SectionPrefix+d.Label); err != nil {
		return err
	}
	for _, child := range d.Children {
		if err := e.visit(ctx, s, child); err != nil {
			return err
		}
	}

	for {
		current, err := e.find(s, d.Path)
		if err != nil {
			return err
		}
		action, err := e.chooseAction(ctx, d.Label, "item", len(current.Children) > 0)
		if err != nil {
			return err
		}
		switch action {
		case actionDone:
			return nil
		case actionAdd:
			index, err := s.AddItem(d.Path)
			if err != nil {
				return err
			}
			item, err := e.find(s, d.Path.At(index))
			if err != nil {
				return err
			}
			if err := e.visit(ctx, s, item); err != nil {
				return err
			}
		case actionRemove:
			idx, err := e.chooseChild(ctx, "Remove which item?", current.Children)
			if err != nil {
				return err
			}
			if err := s.RemoveItem(d.Path, idx); err != nil {
				return err
			}
		}
	}
}

func (e *Editor) editToolGroup(ctx context.Context, s *editor.Session, g form.Descriptor) error {
	if err := e.info(ctx, e.theme.SectionPrefix+g.Label); err != nil {
		return err
	}
	for _, entry := range g.Children {
		if err := e.visit(ctx, s, entry); err != nil {
			return err
		}
	}

	singular := strings.ToLower(g.ToolKind.Singular())
	for {
		current, err := e.find(s, g.Path)
		if err != nil {
			return err
		}
		action, err := e.chooseAction(ctx, g.Label, singular, len(current.Children) > 0)
		if err != nil {
			return err
		}
		switch action {
		case actionDone:
			return nil
		case actionAdd:
			name, err := e.driver.Input(ctx, InputConfig{
				Message: g.ToolKind.Singular() + " name",
				Help:    fmt.Sprintf("The %q prefix is added when missing.", g.Prefix),
			})
			if err != nil {
				return err
			}
			key, err := s.AddTool(g.ToolKind, name)
			if errors.Is(err, editor.ErrToolExists) || errors.Is(err, editor.ErrInvalidToolName) {
				if err := e.info(ctx, e.theme.ErrorPrefix+err.Error()); err != nil {
					return err
				}
				continue
			}
			if err != nil {
				return err
			}
			entry, err := e.find(s, g.Path.Child(key))
			if err != nil {
				return err
			}
			if err := e.visit(ctx, s, entry); err != nil {
				return err
			}
		case actionRemove:
			idx, err := e.chooseChild(ctx, "Remove which "+singular+"?", current.Children)
			if err != nil {
				return err
			}
			if err := s.RemoveTool(g.ToolKind, current.Children[idx].Name); err != nil {
				return err
			}
		}
	}
}

// chooseAction asks what to do next with a list or tool group. Options are
// Done, Add and, when something exists, Remove.
func (e *Editor) chooseAction(ctx context.Context, label, noun string, removable bool) (string, error) {
	actions := []string{actionDone, actionAdd}
	options := []string{actionDone, actionAdd + " " + noun}
	if removable {
		actions = append(actions, actionRemove)
		options = append(options, actionRemove+" "+noun)
	}
	for {
		idx, err := e.driver.Select(ctx, SelectConfig{Message: label, Options: options, DefaultIndex: 0})
		if err != nil {
			return "", err
		}
		if idx >= 0 && idx < len(actions) {
			return actions[idx], nil
		}
		if err := e.info(ctx, e.theme.ErrorPrefix+"Invalid selection"); err != nil {
			return "", err
		}
	}
}

func (e *Editor) chooseChild(ctx context.Context, message string, children []form.Descriptor) (int, error) {
	labels := make([]string, len(children))
	for i, child := range children {
		labels[i] = child.Label
	}
	for {
		idx, err := e.driver.Select(ctx, SelectConfig{Message: message, Options: labels, DefaultIndex: -1})
		if err != nil {
			return 0, err
		}
		if idx >= 0 && idx < len(children) {
			return idx, nil
		}
		if err := e.info(ctx, e.theme.ErrorPrefix+"Invalid selection"); err != nil {
			return 0, err
		}
	}
}

// find re-renders the session and returns the descriptor at path, picking up
// entries added or removed since the last render.
func (e *Editor) find(s *editor.Session, path document.Path) (form.Descriptor, error) {
	descriptors, err := s.Render()
	if err != nil {
		return form.Descriptor{}, err
	}
	d, ok := form.Find(descriptors, path)
	if !ok {
		return form.Descriptor{}, fmt.Errorf("tui: nothing rendered at %s", path)
	}
	return d, nil
}

func (e *Editor) invalid(ctx context.Context, d form.Descriptor, reason string) error {
	return e.info(ctx, fmt.Sprintf("%sInvalid %s: %s", e.theme.ErrorPrefix, d.Label, reason))
}

func (e *Editor) info(ctx context.Context, msg string) error {
	return e.driver.Info(ctx, msg)
}

func validateNumber(text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	if _, err := strconv.ParseFloat(trimmed, 64); err != nil {
		return fmt.Errorf("%q is not a number", trimmed)
	}
	return nil
}

func validateJSON(text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	if _, err := document.ParseJSON([]byte(trimmed)); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}
