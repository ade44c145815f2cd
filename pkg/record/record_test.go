package record

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// steppingClock returns a clock that advances one second per call.
func steppingClock() func() time.Time {
	current := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("rec-%03d", n)
	}
}

func storeFactories(t *testing.T) map[string]func(t *testing.T) Store {
	return map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store {
			return NewMemoryStore(WithClock(steppingClock()), WithIDGenerator(sequentialIDs()))
		},
		"sqlite": func(t *testing.T) Store {
			path := filepath.Join(t.TempDir(), "nested", "records.db")
			store, err := OpenSQLite(context.Background(), path, WithClock(steppingClock()), WithIDGenerator(sequentialIDs()))
			require.NoError(t, err)
			t.Cleanup(func() { _ = store.Close() })
			return store
		},
	}
}

func TestStore_CreateGetUpdate(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := factory(t)

			created, err := store.Create(ctx, "alice", AssistantData{
				Title:       "Tutor",
				Description: "Explains maths",
				YAMLContent: "metadata: {}\n",
			})
			require.NoError(t, err)
			assert.Equal(t, "rec-001", created.ID)
			assert.Equal(t, "alice", created.Owner)
			assert.True(t, created.CreatedAt.Equal(created.UpdatedAt))

			got, err := store.Get(ctx, created.ID)
			require.NoError(t, err)
			assert.Equal(t, created.Data(), got.Data())
			assert.True(t, created.CreatedAt.Equal(got.CreatedAt))

			updated, err := store.Update(ctx, created.ID, AssistantData{
				Title:       "Tutor v2",
				YAMLContent: "metadata: {title: v2}\n",
				IsPublic:    true,
			})
			require.NoError(t, err)
			assert.Equal(t, "Tutor v2", updated.Title)
			assert.Equal(t, "", updated.Description)
			assert.True(t, updated.IsPublic)
			assert.Equal(t, "alice", updated.Owner)
			assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))
			assert.True(t, updated.CreatedAt.Equal(created.CreatedAt))
		})
	}
}

func TestStore_NotFound(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := factory(t)

			_, err := store.Get(ctx, "missing")
			require.ErrorIs(t, err, ErrNotFound)
			_, err = store.Update(ctx, "missing", AssistantData{Title: "x"})
			require.ErrorIs(t, err, ErrNotFound)
			require.ErrorIs(t, store.Delete(ctx, "missing"), ErrNotFound)
		})
	}
}

func TestStore_Delete(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := factory(t)

			rec, err := store.Create(ctx, "alice", AssistantData{Title: "Gone soon"})
			require.NoError(t, err)
			require.NoError(t, store.Delete(ctx, rec.ID))

			_, err = store.Get(ctx, rec.ID)
			require.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStore_List(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := factory(t)

			seed := []struct {
				owner string
				data  AssistantData
			}{
				{"alice", AssistantData{Title: "Maths Tutor", Description: "algebra"}},
				{"alice", AssistantData{Title: "Writing Coach", IsPublic: true}},
				{"bob", AssistantData{Title: "Code Reviewer", IsPublic: true}},
				{"bob", AssistantData{Title: "Private Notes"}},
			}
			for _, s := range seed {
				_, err := store.Create(ctx, s.owner, s.data)
				require.NoError(t, err)
			}

			titles := func(recs []Record) []string {
				out := make([]string, 0, len(recs))
				for _, r := range recs {
					out = append(out, r.Title)
				}
				return out
			}

			all, err := store.List(ctx, ListOptions{})
			require.NoError(t, err)
			assert.Equal(t, []string{"Private Notes", "Code Reviewer", "Writing Coach", "Maths Tutor"}, titles(all))

			mine, err := store.List(ctx, ListOptions{Owner: "alice"})
			require.NoError(t, err)
			assert.Equal(t, []string{"Writing Coach", "Maths Tutor"}, titles(mine))

			visible, err := store.List(ctx, ListOptions{Owner: "alice", IncludePublic: true})
			require.NoError(t, err)
			assert.Equal(t, []string{"Code Reviewer", "Writing Coach", "Maths Tutor"}, titles(visible))

			public, err := store.List(ctx, ListOptions{PublicOnly: true})
			require.NoError(t, err)
			assert.Equal(t, []string{"Code Reviewer", "Writing Coach"}, titles(public))

			search, err := store.List(ctx, ListOptions{Search: "ALGEBRA"})
			require.NoError(t, err)
			assert.Equal(t, []string{"Maths Tutor"}, titles(search))

			page, err := store.List(ctx, ListOptions{Offset: 1, Limit: 2})
			require.NoError(t, err)
			assert.Equal(t, []string{"Code Reviewer", "Writing Coach"}, titles(page))

			past, err := store.List(ctx, ListOptions{Offset: 10})
			require.NoError(t, err)
			assert.Empty(t, past)
		})
	}
}

func TestSave_CreatesThenUpdates(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(WithIDGenerator(sequentialIDs()))

	first, err := Save(ctx, store, "", "alice", AssistantData{Title: "Draft"})
	require.NoError(t, err)
	assert.Equal(t, "rec-001", first.ID)

	second, err := Save(ctx, store, first.ID, "ignored", AssistantData{Title: "Final"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Final", second.Title)
	assert.Equal(t, "alice", second.Owner)

	all, err := store.List(ctx, ListOptions{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "records.db")

	store, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	rec, err := store.Create(ctx, "alice", AssistantData{Title: "Kept", YAMLContent: "a: 1\n"})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	got, err := reopened.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "a: 1\n", got.YAMLContent)
	assert.Len(t, rec.ID, 36)
}

func TestMemoryStore_HonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMemoryStore().Create(ctx, "alice", AssistantData{Title: "x"})
	require.ErrorIs(t, err, context.Canceled)
}
