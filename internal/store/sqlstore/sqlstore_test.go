package sqlstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"synergy/internal/store"
	"synergy/internal/store/storetest"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), "sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCollection(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Collection[storetest.Item] {
		c, err := NewCollection[storetest.Item](context.Background(), openMemory(t), "items")
		require.NoError(t, err)
		return c
	})
}

func TestInsertIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	c, err := NewCollection[storetest.Item](ctx, openMemory(t), "items")
	require.NoError(t, err)
	require.NoError(t, c.Insert(ctx, storetest.Item{ID: 2}))

	err = c.Insert(ctx, storetest.Item{ID: 1}, storetest.Item{ID: 2})
	assert.ErrorIs(t, err, store.ErrDuplicateID)

	items, err := c.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestCollectionsShareOneDatabase(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)
	a, err := NewCollection[storetest.Item](ctx, s, "todos")
	require.NoError(t, err)
	b, err := NewCollection[storetest.Item](ctx, s, "dietItems")
	require.NoError(t, err)

	require.NoError(t, a.Insert(ctx, storetest.Item{ID: 1, Name: "task"}))
	_, err = b.Get(ctx, 1)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRebind(t *testing.T) {
	pg := &Store{dbType: Postgres}
	assert.Equal(t, "UPDATE t SET doc = $1 WHERE id = $2", pg.rebind("UPDATE t SET doc = ? WHERE id = ?"))

	lite := &Store{dbType: SQLite}
	assert.Equal(t, "SELECT ? FROM t", lite.rebind("SELECT ? FROM t"))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "oracle", "")
	assert.Error(t, err)
}
