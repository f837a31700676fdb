// Package memstore is an in-process store.Collection. Documents are held in
// their JSON encoding, so values handed out never alias stored state.
package memstore

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"synergy/internal/store"
)

type Collection[T any] struct {
	name string

	mu   sync.RWMutex
	docs map[int64][]byte
}

func New[T any](name string) *Collection[T] {
	return &Collection[T]{name: name, docs: make(map[int64][]byte)}
}

func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]int64, 0, len(c.docs))
	for id := range c.docs {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	out := make([]T, 0, len(ids))
	for _, id := range ids {
		doc, err := store.DecodeDoc[T](c.docs[id])
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", c.name, err)
		}
		out = append(out, doc)
	}
	return out, nil
}

func (c *Collection[T]) Get(ctx context.Context, id int64) (T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	raw, ok := c.docs[id]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%s %d: %w", c.name, id, store.ErrNotFound)
	}
	return store.DecodeDoc[T](raw)
}

func (c *Collection[T]) Insert(ctx context.Context, docs ...T) error {
	encoded := make(map[int64][]byte, len(docs))
	for _, d := range docs {
		raw, id, err := store.EncodeDoc(d)
		if err != nil {
			return fmt.Errorf("insert %s: %w", c.name, err)
		}
		if _, dup := encoded[id]; dup {
			return fmt.Errorf("insert %s %d: %w", c.name, id, store.ErrDuplicateID)
		}
		encoded[id] = raw
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for id := range encoded {
		if _, dup := c.docs[id]; dup {
			return fmt.Errorf("insert %s %d: %w", c.name, id, store.ErrDuplicateID)
		}
	}
	for id, raw := range encoded {
		c.docs[id] = raw
	}
	return nil
}

func (c *Collection[T]) Update(ctx context.Context, id int64, fields map[string]any) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	raw, ok := c.docs[id]
	if !ok {
		return zero, fmt.Errorf("%s %d: %w", c.name, id, store.ErrNotFound)
	}
	merged, doc, err := store.MergeDoc[T](raw, fields)
	if err != nil {
		return zero, fmt.Errorf("update %s %d: %w", c.name, id, err)
	}
	c.docs[id] = merged
	return doc, nil
}

func (c *Collection[T]) Delete(ctx context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.docs[id]; !ok {
		return fmt.Errorf("%s %d: %w", c.name, id, store.ErrNotFound)
	}
	delete(c.docs, id)
	return nil
}

func (c *Collection[T]) MaxID(ctx context.Context) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var maxID int64
	for id := range c.docs {
		maxID = max(maxID, id)
	}
	return maxID, nil
}
