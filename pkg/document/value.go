package document

import (
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Kind enumerates the shapes a Value can take.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindSequence
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindInt:
		return "integer"
	case KindFloat:
		return "number"
	case KindString:
		return "string"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return "unknown"
	}
}

// Value is a node of the document tree: a scalar, an ordered sequence, or an
// ordered mapping keyed by strings. Containers are mutated in place by Store;
// callers outside the package receive clones.
type Value struct {
	kind   Kind
	b      bool
	i      int64
	f      float64
	s      string
	items  []*Value
	keys   []string
	fields map[string]*Value
}

// Null returns a null scalar.
func Null() *Value { return &Value{kind: KindNull} }

// Bool returns a boolean scalar.
func Bool(b bool) *Value { return &Value{kind: KindBool, b: b} }

// Int returns an integer scalar.
func Int(i int64) *Value { return &Value{kind: KindInt, i: i} }

// Float returns a floating point scalar.
func Float(f float64) *Value { return &Value{kind: KindFloat, f: f} }

// String returns a string scalar.
func String(s string) *Value { return &Value{kind: KindString, s: s} }

// Sequence returns a sequence holding the supplied items.
func Sequence(items ...*Value) *Value {
	v := &Value{kind: KindSequence, items: make([]*Value, 0, len(items))}
	for _, item := range items {
		v.items = append(v.items, orNull(item))
	}
	return v
}

// Mapping returns an empty ordered mapping.
func Mapping() *Value {
	return &Value{kind: KindMapping, fields: make(map[string]*Value)}
}

// Entry is a key/value pair used to build mappings in declaration order.
type Entry struct {
	Key   string
	Value *Value
}

// MappingOf builds an ordered mapping from entries. Later duplicates replace
// earlier values but keep the first position.
func MappingOf(entries ...Entry) *Value {
	v := Mapping()
	for _, entry := range entries {
		v.Put(entry.Key, entry.Value)
	}
	return v
}

func orNull(v *Value) *Value {
	if v == nil {
		return Null()
	}
	return v
}

// Kind reports the value's shape. A nil Value reports KindNull.
func (v *Value) Kind() Kind {
	if v == nil {
		return KindNull
	}
	return v.kind
}

// IsScalar reports whether the value is neither a sequence nor a mapping.
func (v *Value) IsScalar() bool {
	k := v.Kind()
	return k != KindSequence && k != KindMapping
}

// Bool returns the boolean payload.
func (v *Value) Bool() (bool, bool) {
	if v.Kind() != KindBool {
		return false, false
	}
	return v.b, true
}

// Int returns the integer payload.
func (v *Value) Int() (int64, bool) {
	if v.Kind() != KindInt {
		return 0, false
	}
	return v.i, true
}

// Float returns the numeric payload for integers and floats.
func (v *Value) Float() (float64, bool) {
	switch v.Kind() {
	case KindFloat:
		return v.f, true
	case KindInt:
		return float64(v.i), true
	default:
		return 0, false
	}
}

// Str returns the string payload.
func (v *Value) Str() (string, bool) {
	if v.Kind() != KindString {
		return "", false
	}
	return v.s, true
}

// Text renders scalars as display text. Containers and null render empty.
func (v *Value) Text() string {
	switch v.Kind() {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindString:
		return v.s
	default:
		return ""
	}
}

// Len returns the number of sequence items or mapping entries.
func (v *Value) Len() int {
	switch v.Kind() {
	case KindSequence:
		return len(v.items)
	case KindMapping:
		return len(v.keys)
	default:
		return 0
	}
}

// Index returns the sequence item at i.
func (v *Value) Index(i int) (*Value, bool) {
	if v.Kind() != KindSequence || i < 0 || i >= len(v.items) {
		return nil, false
	}
	return v.items[i], true
}

// Items returns the sequence items. The slice is shared with the value.
func (v *Value) Items() []*Value {
	if v.Kind() != KindSequence {
		return nil
	}
	return v.items
}

// Keys returns mapping keys in insertion order.
func (v *Value) Keys() []string {
	if v.Kind() != KindMapping {
		return nil
	}
	return append([]string(nil), v.keys...)
}

// Field returns the mapping entry stored under key.
func (v *Value) Field(key string) (*Value, bool) {
	if v.Kind() != KindMapping {
		return nil, false
	}
	child, ok := v.fields[key]
	return child, ok
}

// Put stores child under key, appending the key when it is new. Put is a
// no-op on non-mapping values.
func (v *Value) Put(key string, child *Value) {
	if v.Kind() != KindMapping {
		return
	}
	if _, exists := v.fields[key]; !exists {
		v.keys = append(v.keys, key)
	}
	v.fields[key] = orNull(child)
}

// Remove deletes key from a mapping and reports whether it existed.
func (v *Value) Remove(key string) bool {
	if v.Kind() != KindMapping {
		return false
	}
	if _, exists := v.fields[key]; !exists {
		return false
	}
	delete(v.fields, key)
	for i, k := range v.keys {
		if k == key {
			v.keys = append(v.keys[:i], v.keys[i+1:]...)
			break
		}
	}
	return true
}

// Append adds items to a sequence.
func (v *Value) Append(items ...*Value) {
	if v.Kind() != KindSequence {
		return
	}
	for _, item := range items {
		v.items = append(v.items, orNull(item))
	}
}

// Clone returns a deep copy.
func (v *Value) Clone() *Value {
	if v == nil {
		return nil
	}
	out := &Value{kind: v.kind, b: v.b, i: v.i, f: v.f, s: v.s}
	switch v.kind {
	case KindSequence:
		out.items = make([]*Value, len(v.items))
		for i, item := range v.items {
			out.items[i] = item.Clone()
		}
	case KindMapping:
		out.keys = append([]string(nil), v.keys...)
		out.fields = make(map[string]*Value, len(v.fields))
		for k, child := range v.fields {
			out.fields[k] = child.Clone()
		}
	}
	return out
}

// IsEmpty reports whether the value carries no user content: null, an empty
// string, or an empty container.
func (v *Value) IsEmpty() bool {
	switch v.Kind() {
	case KindNull:
		return true
	case KindString:
		return v.s == ""
	case KindSequence, KindMapping:
		return v.Len() == 0
	default:
		return false
	}
}

// Equal reports structural equality. Mapping key order is significant.
func Equal(a, b *Value) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch a.Kind() {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindInt:
		return a.i == b.i
	case KindFloat:
		if math.IsNaN(a.f) && math.IsNaN(b.f) {
			return true
		}
		return a.f == b.f
	case KindString:
		return a.s == b.s
	case KindSequence:
		if len(a.items) != len(b.items) {
			return false
		}
		for i := range a.items {
			if !Equal(a.items[i], b.items[i]) {
				return false
			}
		}
		return true
	case KindMapping:
		if len(a.keys) != len(b.keys) {
			return false
		}
		for i, key := range a.keys {
			if b.keys[i] != key {
				return false
			}
			if !Equal(a.fields[key], b.fields[key]) {
				return false
			}
		}
		return true
	}
	return false
}

// Interface converts the value into plain Go data: nil, bool, int64, float64,
// string, []any, or map[string]any. Mapping order is lost.
func (v *Value) Interface() any {
	switch v.Kind() {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindSequence:
		out := make([]any, len(v.items))
		for i, item := range v.items {
			out[i] = item.Interface()
		}
		return out
	case KindMapping:
		out := make(map[string]any, len(v.keys))
		for _, key := range v.keys {
			out[key] = v.fields[key].Interface()
		}
		return out
	default:
		return nil
	}
}

// FromAny converts plain Go data into a Value. Maps are ordered by key since
// Go maps carry no order; numeric types collapse to int64 or float64. Values
// implementing json.Number-style String/Int64/Float64 are recognised.
func FromAny(raw any) (*Value, error) {
	switch typed := raw.(type) {
	case nil:
		return Null(), nil
	case *Value:
		if typed == nil {
			return Null(), nil
		}
		return typed.Clone(), nil
	case bool:
		return Bool(typed), nil
	case string:
		return String(typed), nil
	case int:
		return Int(int64(typed)), nil
	case int8:
		return Int(int64(typed)), nil
	case int16:
		return Int(int64(typed)), nil
	case int32:
		return Int(int64(typed)), nil
	case int64:
		return Int(typed), nil
	case uint:
		return Int(int64(typed)), nil
	case uint8:
		return Int(int64(typed)), nil
	case uint16:
		return Int(int64(typed)), nil
	case uint32:
		return Int(int64(typed)), nil
	case uint64:
		if typed > math.MaxInt64 {
			return Float(float64(typed)), nil
		}
		return Int(int64(typed)), nil
	case float32:
		return Float(float64(typed)), nil
	case float64:
		return Float(typed), nil
	case numberLike:
		if i, err := typed.Int64(); err == nil {
			return Int(i), nil
		}
		f, err := typed.Float64()
		if err != nil {
			return nil, fmt.Errorf("document: invalid number %q: %w", typed.String(), err)
		}
		return Float(f), nil
	case []any:
		out := Sequence()
		for idx, item := range typed {
			child, err := FromAny(item)
			if err != nil {
				return nil, fmt.Errorf("document: item %d: %w", idx, err)
			}
			out.Append(child)
		}
		return out, nil
	case []string:
		out := Sequence()
		for _, item := range typed {
			out.Append(String(item))
		}
		return out, nil
	case map[string]any:
		keys := make([]string, 0, len(typed))
		for key := range typed {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		out := Mapping()
		for _, key := range keys {
			child, err := FromAny(typed[key])
			if err != nil {
				return nil, fmt.Errorf("document: key %q: %w", key, err)
			}
			out.Put(key, child)
		}
		return out, nil
	case map[string]string:
		keys := make([]string, 0, len(typed))
		for key := range typed {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		out := Mapping()
		for _, key := range keys {
			out.Put(key, String(typed[key]))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("document: unsupported value type %T", raw)
	}
}

type numberLike interface {
	String() string
	Int64() (int64, error)
	Float64() (float64, error)
}
