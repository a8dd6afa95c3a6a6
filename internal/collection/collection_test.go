package collection_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/Tinuva88/TCGFun/internal/catalog"
	"github.com/Tinuva88/TCGFun/internal/collection"
)

func cards(ids ...string) []catalog.Card {
	out := make([]catalog.Card, len(ids))
	for i, id := range ids {
		out[i] = catalog.Card{ID: id, Name: "name-" + id, RarityID: "C", SetID: "S1"}
	}
	return out
}

func TestMemory_AddAndCount(t *testing.T) {
	ctx := context.Background()
	m := collection.NewMemory()

	require.NoError(t, m.Add(ctx, "alice", cards("a", "b", "a")))
	require.NoError(t, m.Add(ctx, "alice", cards("a")))

	n, err := m.Count(ctx, "alice", "a")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = m.Count(ctx, "alice", "zzz")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	entries, err := m.Entries(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].CardID)
	assert.Equal(t, "name-a", entries[0].Name)

	unique, total := collection.Summary(entries)
	assert.Equal(t, 2, unique)
	assert.Equal(t, 4, total)
}

func TestMemory_OwnersAreIsolatedAndClearable(t *testing.T) {
	ctx := context.Background()
	m := collection.NewMemory()
	require.NoError(t, m.Add(ctx, "alice", cards("a")))
	require.NoError(t, m.Add(ctx, "bob", cards("a", "a")))

	require.NoError(t, m.Clear(ctx, "alice"))
	entries, err := m.Entries(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, entries)

	n, err := m.Count(ctx, "bob", "a")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestMemory_EmptyOwner(t *testing.T) {
	ctx := context.Background()
	m := collection.NewMemory()
	assert.ErrorIs(t, m.Add(ctx, "", cards("a")), collection.ErrEmptyOwner)
	_, err := m.Entries(ctx, "")
	assert.ErrorIs(t, err, collection.ErrEmptyOwner)
	_, err = m.Count(ctx, "", "a")
	assert.ErrorIs(t, err, collection.ErrEmptyOwner)
	assert.ErrorIs(t, m.Clear(ctx, ""), collection.ErrEmptyOwner)
}

func TestProperty_TotalEqualsCardsAdded(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		ctx := context.Background()
		m := collection.NewMemory()
		ids := rapid.SliceOfN(rapid.SampledFrom([]string{"a", "b", "c", "d"}), 0, 50).Draw(rt, "ids")
		if err := m.Add(ctx, "owner", cards(ids...)); err != nil {
			rt.Fatalf("add: %v", err)
		}
		entries, err := m.Entries(ctx, "owner")
		if err != nil {
			rt.Fatalf("entries: %v", err)
		}
		_, total := collection.Summary(entries)
		if total != len(ids) {
			rt.Fatalf("total %d, want %d", total, len(ids))
		}
	})
}
