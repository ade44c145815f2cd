package tui

import "github.com/goliatone/go-adlform/pkg/schema"

// Theme captures optional prefixes the editor puts in front of messages.
type Theme struct {
	SectionPrefix string
	InfoPrefix    string
	ErrorPrefix   string
}

// DefaultTheme is used when WithTheme is not supplied.
var DefaultTheme = Theme{
	SectionPrefix: "== ",
	InfoPrefix:    "",
	ErrorPrefix:   "! ",
}

// Option configures the terminal editor.
type Option func(*Editor)

// WithPromptDriver overrides the prompt driver used by the editor.
func WithPromptDriver(driver PromptDriver) Option {
	return func(e *Editor) {
		if driver != nil {
			e.driver = driver
		}
	}
}

// WithMode forces the session into mode before editing starts.
func WithMode(mode schema.Mode) Option {
	return func(e *Editor) {
		e.mode = &mode
	}
}

// WithTheme applies message prefixes.
func WithTheme(theme Theme) Option {
	return func(e *Editor) {
		e.theme = theme
	}
}

// WithAdvancedFallback controls whether Edit switches to Advanced mode when
// Simple mode has nothing to show. Enabled by default.
func WithAdvancedFallback(enabled bool) Option {
	return func(e *Editor) {
		e.advancedFallback = enabled
	}
}
