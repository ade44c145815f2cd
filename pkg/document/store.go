package document

import "fmt"

// Store owns a single document tree for one editing session. It is not safe
// for concurrent use; a session serialises all edits.
//
// Writes never fail on a well-formed path. When a segment expects a mapping
// or a sequence and the tree holds something else at that position, the
// existing value is replaced by a fresh container (destructive overwrite).
// Reads never create anything.
type Store struct {
	root *Value
}

// NewStore returns a store holding an empty mapping.
func NewStore() *Store {
	return &Store{root: Mapping()}
}

// NewStoreFrom returns a store holding a copy of root.
func NewStoreFrom(root *Value) *Store {
	if root == nil {
		return NewStore()
	}
	return &Store{root: root.Clone()}
}

// Root returns a copy of the whole document.
func (s *Store) Root() *Value {
	return s.root.Clone()
}

// Replace swaps the whole document for a copy of root.
func (s *Store) Replace(root *Value) {
	if root == nil {
		root = Mapping()
	}
	s.root = root.Clone()
}

// Get returns a copy of the value at path. The boolean is false when any
// segment is missing or addresses into an incompatible value.
func (s *Store) Get(path Path) (*Value, bool) {
	node, ok := s.lookup(path)
	if !ok {
		return nil, false
	}
	return node.Clone(), true
}

// Has reports whether path resolves to a value.
func (s *Store) Has(path Path) bool {
	_, ok := s.lookup(path)
	return ok
}

func (s *Store) lookup(path Path) (*Value, bool) {
	current := s.root
	for _, seg := range path {
		var ok bool
		if seg.IsIndex {
			current, ok = current.Index(seg.Index)
		} else {
			current, ok = current.Field(seg.Key)
		}
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// MaxSequencePadding is how far past the end of a sequence Set may write.
// The gap is filled with nulls.
const MaxSequencePadding = 1024

// Set writes a copy of value at path, creating intermediate mappings for key
// segments and growing sequences with null padding for index segments.
func (s *Store) Set(path Path, value *Value) error {
	if err := validatePath(path); err != nil {
		return err
	}
	if err := s.checkPadding(path); err != nil {
		return err
	}
	value = orNull(value).Clone()
	if len(path) == 0 {
		s.root = value
		return nil
	}

	parent := s.ensureContainer(path[:len(path)-1], path[len(path)-1])
	assign(parent, path[len(path)-1], value)
	return nil
}

// Delete removes the value at path. Removing a sequence item shifts later
// items down. It reports whether anything was removed.
func (s *Store) Delete(path Path) bool {
	if len(path) == 0 {
		return false
	}
	parent, ok := s.lookup(path[:len(path)-1])
	if !ok {
		return false
	}
	last := path[len(path)-1]
	if last.IsIndex {
		if parent.Kind() != KindSequence || last.Index < 0 || last.Index >= len(parent.items) {
			return false
		}
		parent.items = append(parent.items[:last.Index], parent.items[last.Index+1:]...)
		return true
	}
	return parent.Remove(last.Key)
}

// InsertSequenceItem inserts a copy of value into the sequence at path and
// returns the new item's index. A negative or out-of-range index appends. An
// absent or non-sequence target is replaced by a new sequence first.
func (s *Store) InsertSequenceItem(path Path, value *Value, index int) (int, error) {
	if err := validatePath(path); err != nil {
		return 0, err
	}
	seq, ok := s.lookup(path)
	if !ok || seq.Kind() != KindSequence {
		if err := s.Set(path, Sequence()); err != nil {
			return 0, err
		}
		seq, _ = s.lookup(path)
	}

	item := orNull(value).Clone()
	if index < 0 || index >= len(seq.items) {
		seq.items = append(seq.items, item)
		return len(seq.items) - 1, nil
	}
	seq.items = append(seq.items, nil)
	copy(seq.items[index+1:], seq.items[index:])
	seq.items[index] = item
	return index, nil
}

// AppendSequenceItem is InsertSequenceItem at the end.
func (s *Store) AppendSequenceItem(path Path, value *Value) (int, error) {
	return s.InsertSequenceItem(path, value, -1)
}

// RemoveSequenceItem removes the item at index from the sequence at path.
// Callers that bind controls to indexed paths must relabel the controls that
// followed the removed item; the store only mutates the sequence.
func (s *Store) RemoveSequenceItem(path Path, index int) error {
	seq, ok := s.lookup(path)
	if !ok || seq.Kind() != KindSequence {
		return fmt.Errorf("%w: %s", ErrNotSequence, path)
	}
	if index < 0 || index >= len(seq.items) {
		return fmt.Errorf("%w: %s[%d] (len %d)", ErrIndexOutOfRange, path, index, len(seq.items))
	}
	seq.items = append(seq.items[:index], seq.items[index+1:]...)
	return nil
}

// ensureContainer walks prefix creating containers as needed and returns the
// container that must hold next.
func (s *Store) ensureContainer(prefix Path, next Segment) *Value {
	if len(prefix) == 0 {
		s.root = coerceContainer(s.root, next)
		return s.root
	}

	current := coerceContainer(s.root, prefix[0])
	s.root = current
	for i, seg := range prefix {
		want := next
		if i+1 < len(prefix) {
			want = prefix[i+1]
		}
		child := childOf(current, seg)
		fixed := coerceContainer(child, want)
		if fixed != child {
			assign(current, seg, fixed)
		}
		current = fixed
	}
	return current
}

// coerceContainer returns v when it already fits seg, otherwise a fresh
// container of the right kind.
func coerceContainer(v *Value, seg Segment) *Value {
	if seg.IsIndex {
		if v.Kind() == KindSequence {
			return v
		}
		return Sequence()
	}
	if v.Kind() == KindMapping {
		return v
	}
	return Mapping()
}

func childOf(container *Value, seg Segment) *Value {
	var (
		child *Value
		ok    bool
	)
	if seg.IsIndex {
		child, ok = container.Index(seg.Index)
	} else {
		child, ok = container.Field(seg.Key)
	}
	if !ok {
		return nil
	}
	return child
}

func assign(container *Value, seg Segment, value *Value) {
	if seg.IsIndex {
		for len(container.items) <= seg.Index {
			container.items = append(container.items, Null())
		}
		container.items[seg.Index] = value
		return
	}
	container.Put(seg.Key, value)
}

// checkPadding rejects index segments that would grow a sequence by more than
// MaxSequencePadding, before anything is written. Containers that Set would
// replace count as empty.
func (s *Store) checkPadding(path Path) error {
	current := s.root
	for _, seg := range path {
		if seg.IsIndex {
			length := 0
			if current.Kind() == KindSequence {
				length = len(current.items)
			}
			if seg.Index > length+MaxSequencePadding {
				return fmt.Errorf("%w: %s: index %d is more than %d past the end (len %d)",
					ErrIndexOutOfRange, path, seg.Index, MaxSequencePadding, length)
			}
		}
		current = childOf(coerceContainer(current, seg), seg)
	}
	return nil
}

func validatePath(path Path) error {
	for _, seg := range path {
		if seg.IsIndex && seg.Index < 0 {
			return &InvalidPathError{Path: path.String(), Reason: fmt.Sprintf("negative index %d", seg.Index)}
		}
	}
	return nil
}
