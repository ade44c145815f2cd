package form

import (
	"regexp"
	"strings"
	"unicode"
)

// Labeler turns a mapping key into the label shown next to its control.
type Labeler func(name string) string

var (
	splitWordsPattern   = regexp.MustCompile(`[_\-\s.]+`)
	leadingSymbolsRegex = regexp.MustCompile(`^[^\p{L}\p{N}]+`)
)

// DefaultLabeler strips leading symbols such as the `/` and `+++` tool
// prefixes, splits on separators and camelCase boundaries, and title-cases
// every word.
func DefaultLabeler(name string) string {
	name = leadingSymbolsRegex.ReplaceAllString(strings.TrimSpace(name), "")
	if name == "" {
		return ""
	}

	var words []string
	for _, chunk := range splitWordsPattern.Split(name, -1) {
		for _, word := range splitCamel(chunk) {
			if word != "" {
				words = append(words, titleCase(word))
			}
		}
	}
	return strings.Join(words, " ")
}

func splitCamel(input string) []string {
	runes := []rune(input)
	var (
		words []string
		start int
	)
	for i := 1; i < len(runes); i++ {
		if isBoundary(runes, i) {
			words = append(words, string(runes[start:i]))
			start = i
		}
	}
	if start < len(runes) {
		words = append(words, string(runes[start:]))
	}
	return words
}

// isBoundary splits lower->Upper, letter<->digit, and the last capital of an
// acronym run followed by lowercase (`HTTPServer` -> `HTTP Server`).
func isBoundary(runes []rune, i int) bool {
	prev, cur := runes[i-1], runes[i]
	switch {
	case unicode.IsLower(prev) && unicode.IsUpper(cur):
		return true
	case unicode.IsLetter(prev) && unicode.IsDigit(cur):
		return true
	case unicode.IsDigit(prev) && unicode.IsLetter(cur):
		return true
	case unicode.IsUpper(prev) && unicode.IsUpper(cur) && i+1 < len(runes) && unicode.IsLower(runes[i+1]):
		return true
	}
	return false
}

func titleCase(word string) string {
	runes := []rune(word)
	if isAcronym(runes) {
		return word
	}
	runes[0] = unicode.ToUpper(runes[0])
	for i := 1; i < len(runes); i++ {
		runes[i] = unicode.ToLower(runes[i])
	}
	return string(runes)
}

func isAcronym(runes []rune) bool {
	if len(runes) < 2 {
		return false
	}
	for _, r := range runes {
		if !unicode.IsUpper(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
