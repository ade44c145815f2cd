// Package record persists assistant definitions. The editor produces an
// AssistantData payload; a Store turns it into a Record with identity and
// timestamps.
package record

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no record matches an id.
var ErrNotFound = errors.New("record: not found")

// DefaultListLimit caps List results when ListOptions.Limit is unset.
const DefaultListLimit = 50

// AssistantData is the save payload produced by an editing session.
type AssistantData struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	YAMLContent string `json:"yamlContent"`
	IsPublic    bool   `json:"isPublic"`
}

// Record is a stored assistant definition.
type Record struct {
	ID          string    `json:"id"`
	Owner       string    `json:"owner,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	YAMLContent string    `json:"yamlContent"`
	IsPublic    bool      `json:"isPublic"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Data returns the payload part of the record.
func (r Record) Data() AssistantData {
	return AssistantData{
		Title:       r.Title,
		Description: r.Description,
		YAMLContent: r.YAMLContent,
		IsPublic:    r.IsPublic,
	}
}

// ListOptions filters and paginates List. An empty Owner matches every
// owner. IncludePublic also returns other owners' public records when Owner
// is set. PublicOnly restricts results to public records.
type ListOptions struct {
	Owner         string
	IncludePublic bool
	PublicOnly    bool
	Search        string
	Offset        int
	Limit         int
}

func (o ListOptions) normalized() ListOptions {
	if o.Offset < 0 {
		o.Offset = 0
	}
	if o.Limit <= 0 {
		o.Limit = DefaultListLimit
	}
	o.Search = strings.TrimSpace(o.Search)
	return o
}

func (o ListOptions) matches(r Record) bool {
	if o.PublicOnly && !r.IsPublic {
		return false
	}
	if o.Owner != "" && r.Owner != o.Owner && !(o.IncludePublic && r.IsPublic) {
		return false
	}
	if o.Search != "" {
		needle := strings.ToLower(o.Search)
		if !strings.Contains(strings.ToLower(r.Title), needle) &&
			!strings.Contains(strings.ToLower(r.Description), needle) {
			return false
		}
	}
	return true
}

// Store persists records. Implementations are safe for concurrent use.
type Store interface {
	Create(ctx context.Context, owner string, data AssistantData) (Record, error)
	Update(ctx context.Context, id string, data AssistantData) (Record, error)
	Get(ctx context.Context, id string) (Record, error)
	List(ctx context.Context, opts ListOptions) ([]Record, error)
	Delete(ctx context.Context, id string) error
}

// Save creates a record when id is empty and updates it otherwise.
func Save(ctx context.Context, store Store, id, owner string, data AssistantData) (Record, error) {
	if id == "" {
		return store.Create(ctx, owner, data)
	}
	return store.Update(ctx, id, data)
}

// Option configures a store.
type Option func(*options)

type options struct {
	now   func() time.Time
	newID func() string
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithIDGenerator overrides how record ids are minted.
func WithIDGenerator(newID func() string) Option {
	return func(o *options) {
		if newID != nil {
			o.newID = newID
		}
	}
}

func newOptions(opts []Option) options {
	o := options{
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
