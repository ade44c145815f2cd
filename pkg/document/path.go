package document

import (
	"fmt"
	"strconv"
	"strings"
)

// Segment addresses one step of a Path: a mapping key or a sequence index.
type Segment struct {
	Key     string `json:"key,omitempty"`
	Index   int    `json:"index,omitempty"`
	IsIndex bool   `json:"isIndex,omitempty"`
}

// Key returns a mapping-key segment.
func Key(name string) Segment { return Segment{Key: name} }

// Index returns a sequence-index segment.
func Index(i int) Segment { return Segment{Index: i, IsIndex: true} }

func (s Segment) String() string {
	if s.IsIndex {
		return "[" + strconv.Itoa(s.Index) + "]"
	}
	if needsQuoting(s.Key) {
		return "[" + strconv.Quote(s.Key) + "]"
	}
	return s.Key
}

// Path is an ordered list of segments applied left to right from the
// document root. The empty path addresses the root itself.
type Path []Segment

// PathOf builds a Path from strings and ints. Any other element type panics,
// which keeps literal paths in code honest.
func PathOf(parts ...any) Path {
	out := make(Path, 0, len(parts))
	for _, part := range parts {
		switch typed := part.(type) {
		case string:
			out = append(out, Key(typed))
		case int:
			out = append(out, Index(typed))
		case Segment:
			out = append(out, typed)
		default:
			panic(fmt.Sprintf("document: unsupported path element %T", part))
		}
	}
	return out
}

// Child returns a new path extended with a key segment.
func (p Path) Child(key string) Path {
	return p.append(Key(key))
}

// At returns a new path extended with an index segment.
func (p Path) At(i int) Path {
	return p.append(Index(i))
}

// Join returns a new path extended with all segments of other.
func (p Path) Join(other Path) Path {
	out := make(Path, 0, len(p)+len(other))
	out = append(out, p...)
	return append(out, other...)
}

func (p Path) append(seg Segment) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, seg)
}

// Parent returns the path without its last segment.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return nil
	}
	return append(Path(nil), p[:len(p)-1]...)
}

// Last returns the final segment.
func (p Path) Last() (Segment, bool) {
	if len(p) == 0 {
		return Segment{}, false
	}
	return p[len(p)-1], true
}

// Equal reports whether both paths address the same location.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether prefix addresses an ancestor of (or the same
// location as) p.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix) > len(p) {
		return false
	}
	return p[:len(prefix)].Equal(prefix)
}

// String renders the dotted form used by form bindings, e.g.
// `tools.commands[2].prompt`. Keys that contain separators are bracket quoted.
func (p Path) String() string {
	var b strings.Builder
	for i, seg := range p {
		text := seg.String()
		if i > 0 && !strings.HasPrefix(text, "[") {
			b.WriteByte('.')
		}
		b.WriteString(text)
	}
	return b.String()
}

// MarshalText renders the dotted form so descriptors serialise paths as
// plain strings.
func (p Path) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText parses the dotted form.
func (p *Path) UnmarshalText(text []byte) error {
	parsed, err := ParsePath(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePath parses the dotted form produced by Path.String. Bare keys are
// separated by dots, `[n]` selects a sequence index, and `["key"]` selects a
// mapping key verbatim.
func ParsePath(raw string) (Path, error) {
	if strings.TrimSpace(raw) == "" {
		return Path{}, nil
	}

	var (
		out     Path
		current strings.Builder
		pending bool
	)
	flush := func() {
		if pending {
			out = append(out, Key(current.String()))
			current.Reset()
			pending = false
		}
	}

	for i := 0; i < len(raw); i++ {
		ch := raw[i]
		switch ch {
		case '.':
			if !pending && (i == 0 || raw[i-1] == '.') {
				return nil, &InvalidPathError{Path: raw, Reason: "empty key segment"}
			}
			flush()
		case '[':
			flush()
			end, seg, err := parseBracket(raw, i)
			if err != nil {
				return nil, err
			}
			out = append(out, seg)
			i = end
		default:
			current.WriteByte(ch)
			pending = true
		}
	}
	if strings.HasSuffix(raw, ".") {
		return nil, &InvalidPathError{Path: raw, Reason: "trailing separator"}
	}
	flush()
	return out, nil
}

func parseBracket(raw string, start int) (int, Segment, error) {
	if start+1 < len(raw) && raw[start+1] == '"' {
		// Find the closing quote honouring escapes, then expect ']'.
		for j := start + 2; j < len(raw); j++ {
			if raw[j] == '\\' {
				j++
				continue
			}
			if raw[j] == '"' {
				if j+1 >= len(raw) || raw[j+1] != ']' {
					return 0, Segment{}, &InvalidPathError{Path: raw, Reason: "unterminated quoted key"}
				}
				key, err := strconv.Unquote(raw[start+1 : j+1])
				if err != nil {
					return 0, Segment{}, &InvalidPathError{Path: raw, Reason: "invalid quoted key"}
				}
				return j + 1, Key(key), nil
			}
		}
		return 0, Segment{}, &InvalidPathError{Path: raw, Reason: "unterminated quoted key"}
	}

	end := strings.IndexByte(raw[start:], ']')
	if end < 0 {
		return 0, Segment{}, &InvalidPathError{Path: raw, Reason: "unterminated index"}
	}
	end += start
	idx, err := strconv.Atoi(raw[start+1 : end])
	if err != nil || idx < 0 {
		return 0, Segment{}, &InvalidPathError{Path: raw, Reason: fmt.Sprintf("invalid index %q", raw[start+1:end])}
	}
	return end, Index(idx), nil
}

// MustParsePath panics on malformed input. Useful for tests and literals.
func MustParsePath(raw string) Path {
	p, err := ParsePath(raw)
	if err != nil {
		panic(err)
	}
	return p
}

func needsQuoting(key string) bool {
	if key == "" {
		return true
	}
	return strings.ContainsAny(key, ".[]\"")
}
