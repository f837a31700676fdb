// Package storetest holds the behaviour every store.Collection must show.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"synergy/internal/store"
)

// Item is the document type the suite stores.
type Item struct {
	ID    int64    `json:"id" bson:"id"`
	Name  string   `json:"name" bson:"name"`
	Done  bool     `json:"done" bson:"done"`
	Count int      `json:"count" bson:"count"`
	Tags  []string `json:"tags" bson:"tags"`
}

// Run exercises a fresh, empty collection returned by open.
func Run(t *testing.T, open func(t *testing.T) store.Collection[Item]) {
	ctx := context.Background()

	t.Run("empty", func(t *testing.T) {
		c := open(t)
		items, err := c.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, items)

		maxID, err := c.MaxID(ctx)
		require.NoError(t, err)
		assert.Zero(t, maxID)
	})

	t.Run("insert and list in id order", func(t *testing.T) {
		c := open(t)
		require.NoError(t, c.Insert(ctx, Item{ID: 30, Name: "c"}, Item{ID: 10, Name: "a"}))
		require.NoError(t, c.Insert(ctx, Item{ID: 20, Name: "b", Tags: []string{"x"}}))

		items, err := c.List(ctx)
		require.NoError(t, err)
		require.Len(t, items, 3)
		assert.Equal(t, []int64{10, 20, 30}, []int64{items[0].ID, items[1].ID, items[2].ID})
		assert.Equal(t, []string{"x"}, items[1].Tags)

		maxID, err := c.MaxID(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 30, maxID)
	})

	t.Run("get", func(t *testing.T) {
		c := open(t)
		require.NoError(t, c.Insert(ctx, Item{ID: 1, Name: "a", Count: 3}))

		got, err := c.Get(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, Item{ID: 1, Name: "a", Count: 3}, got)

		_, err = c.Get(ctx, 2)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("duplicate id is rejected", func(t *testing.T) {
		c := open(t)
		require.NoError(t, c.Insert(ctx, Item{ID: 1, Name: "a"}))
		err := c.Insert(ctx, Item{ID: 1, Name: "b"})
		assert.ErrorIs(t, err, store.ErrDuplicateID)

		got, err := c.Get(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "a", got.Name)
	})

	t.Run("partial update", func(t *testing.T) {
		c := open(t)
		require.NoError(t, c.Insert(ctx, Item{ID: 1, Name: "a", Count: 3}))

		got, err := c.Update(ctx, 1, map[string]any{"done": true})
		require.NoError(t, err)
		assert.Equal(t, Item{ID: 1, Name: "a", Done: true, Count: 3}, got)

		got, err = c.Get(ctx, 1)
		require.NoError(t, err)
		assert.True(t, got.Done)
		assert.Equal(t, "a", got.Name)

		_, err = c.Update(ctx, 99, map[string]any{"done": true})
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		c := open(t)
		require.NoError(t, c.Insert(ctx, Item{ID: 1}, Item{ID: 2}))
		require.NoError(t, c.Delete(ctx, 1))

		items, err := c.List(ctx)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.EqualValues(t, 2, items[0].ID)

		assert.ErrorIs(t, c.Delete(ctx, 1), store.ErrNotFound)
	})
}
