package record

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryStore keeps records in a map. Used by tests and the CLI when no
// database path is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
	opts    options
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore(opts ...Option) *MemoryStore {
	return &MemoryStore{
		records: make(map[string]Record),
		opts:    newOptions(opts),
	}
}

func (s *MemoryStore) Create(ctx context.Context, owner string, data AssistantData) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	now := s.opts.now()
	rec := Record{
		ID:          s.opts.newID(),
		Owner:       owner,
		Title:       data.Title,
		Description: data.Description,
		YAMLContent: data.YAMLContent,
		IsPublic:    data.IsPublic,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[rec.ID]; exists {
		return Record{}, fmt.Errorf("record: duplicate id %q", rec.ID)
	}
	s.records[rec.ID] = rec
	return rec, nil
}

func (s *MemoryStore) Update(ctx context.Context, id string, data AssistantData) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	rec.Title = data.Title
	rec.Description = data.Description
	rec.YAMLContent = data.YAMLContent
	rec.IsPublic = data.IsPublic
	rec.UpdatedAt = s.opts.now()
	s.records[id] = rec
	return rec, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return rec, nil
}

// List returns matching records, most recently updated first.
func (s *MemoryStore) List(ctx context.Context, opts ListOptions) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opts = opts.normalized()

	s.mu.RLock()
	matched := make([]Record, 0, len(s.records))
	for _, rec := range s.records {
		if opts.matches(rec) {
			matched = append(matched, rec)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].UpdatedAt.Equal(matched[j].UpdatedAt) {
			return matched[i].UpdatedAt.After(matched[j].UpdatedAt)
		}
		return matched[i].ID < matched[j].ID
	})

	if opts.Offset >= len(matched) {
		return []Record{}, nil
	}
	end := opts.Offset + opts.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[opts.Offset:end], nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.records, id)
	return nil
}
