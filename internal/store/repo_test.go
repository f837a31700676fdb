package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"synergy/internal/store"
	"synergy/internal/store/memstore"
	"synergy/internal/store/storetest"
)

func newRepo(ids *store.IDGen) (*store.Repo[storetest.Item], *memstore.Collection[storetest.Item]) {
	coll := memstore.New[storetest.Item]("items")
	return store.NewRepo[storetest.Item](coll, ids, func(it *storetest.Item, id int64) { it.ID = id }), coll
}

func TestIDGenIsStrictlyIncreasing(t *testing.T) {
	frozen := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	g := store.NewIDGenWithClock(func() time.Time { return frozen })

	prev := g.Next()
	assert.Equal(t, frozen.UnixMicro(), prev)
	for i := 0; i < 1000; i++ {
		id := g.Next()
		require.Greater(t, id, prev)
		prev = id
	}
}

func TestIDGenObserve(t *testing.T) {
	g := store.NewIDGenWithClock(func() time.Time { return time.UnixMicro(100) })
	g.Observe(5000)
	assert.EqualValues(t, 5001, g.Next())
	g.Observe(10)
	assert.EqualValues(t, 5002, g.Next())
}

func TestIDGenConcurrentUse(t *testing.T) {
	g := store.NewIDGen()
	const workers, each = 8, 500

	var mu sync.Mutex
	seen := make(map[int64]bool, workers*each)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < each; i++ {
				id := g.Next()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, workers*each)
}

func TestRepoCreateAssignsIDs(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(store.NewIDGen())

	a, err := repo.Create(ctx, storetest.Item{Name: "a"})
	require.NoError(t, err)
	b, err := repo.Create(ctx, storetest.Item{Name: "b", ID: 42})
	require.NoError(t, err)

	assert.NotZero(t, a.ID)
	assert.Greater(t, b.ID, a.ID, "later creations sort after earlier ones")

	got, err := repo.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "b", got.Name)
}

func TestRepoBulkCreate(t *testing.T) {
	ctx := context.Background()
	frozen := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	repo, _ := newRepo(store.NewIDGenWithClock(func() time.Time { return frozen }))

	docs := make([]storetest.Item, 7)
	out, err := repo.BulkCreate(ctx, docs)
	require.NoError(t, err)
	require.Len(t, out, 7)

	ids := map[int64]bool{}
	for _, d := range out {
		ids[d.ID] = true
	}
	assert.Len(t, ids, 7)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 7)

	empty, err := repo.BulkCreate(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRepoPrimesFromExistingIDs(t *testing.T) {
	ctx := context.Background()
	ids := store.NewIDGenWithClock(func() time.Time { return time.UnixMicro(1) })
	repo, coll := newRepo(ids)
	require.NoError(t, coll.Insert(ctx, storetest.Item{ID: 9000}))

	created, err := repo.Create(ctx, storetest.Item{})
	require.NoError(t, err)
	assert.EqualValues(t, 9001, created.ID)
}

func TestRepoUpdate(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(store.NewIDGen())
	it, err := repo.Create(ctx, storetest.Item{Name: "a", Count: 1})
	require.NoError(t, err)

	got, err := repo.Update(ctx, it.ID, map[string]any{"name": "b"})
	require.NoError(t, err)
	assert.Equal(t, "b", got.Name)
	assert.Equal(t, 1, got.Count)

	got, err = repo.Update(ctx, it.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "b", got.Name)

	_, err = repo.Update(ctx, it.ID, map[string]any{"id": 5})
	assert.ErrorIs(t, err, store.ErrValidation)

	_, err = repo.Update(ctx, it.ID+1, map[string]any{"name": "x"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRepoDelete(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(store.NewIDGen())
	it, err := repo.Create(ctx, storetest.Item{})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, it.ID))
	assert.ErrorIs(t, repo.Delete(ctx, it.ID), store.ErrNotFound)
}
