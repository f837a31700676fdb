package store

import (
	"context"
	"fmt"
	"sync"
)

// Repo is the CRUD facade over one collection. It owns id assignment:
// callers hand in documents without ids and get them back with one.
type Repo[T any] struct {
	coll  Collection[T]
	ids   *IDGen
	setID func(*T, int64)

	mu     sync.Mutex
	primed bool
}

// NewRepo wraps coll. setID writes a generated id into a document. Repos
// sharing one IDGen never hand out the same id twice.
func NewRepo[T any](coll Collection[T], ids *IDGen, setID func(*T, int64)) *Repo[T] {
	return &Repo[T]{coll: coll, ids: ids, setID: setID}
}

func (r *Repo[T]) List(ctx context.Context) ([]T, error) {
	return r.coll.List(ctx)
}

func (r *Repo[T]) Get(ctx context.Context, id int64) (T, error) {
	return r.coll.Get(ctx, id)
}

// Create stores doc under a fresh id.
func (r *Repo[T]) Create(ctx context.Context, doc T) (T, error) {
	out, err := r.BulkCreate(ctx, []T{doc})
	if err != nil {
		var zero T
		return zero, err
	}
	return out[0], nil
}

// BulkCreate stores all docs, each under its own fresh id, in one call.
func (r *Repo[T]) BulkCreate(ctx context.Context, docs []T) ([]T, error) {
	if len(docs) == 0 {
		return []T{}, nil
	}
	if err := r.prime(ctx); err != nil {
		return nil, err
	}
	out := make([]T, len(docs))
	for i, d := range docs {
		r.setID(&d, r.ids.Next())
		out[i] = d
	}
	if err := r.coll.Insert(ctx, out...); err != nil {
		return nil, err
	}
	return out, nil
}

// Update applies a partial update. The id itself cannot be changed.
func (r *Repo[T]) Update(ctx context.Context, id int64, fields map[string]any) (T, error) {
	if _, ok := fields["id"]; ok {
		var zero T
		return zero, fmt.Errorf("%w: id is immutable", ErrValidation)
	}
	if len(fields) == 0 {
		return r.coll.Get(ctx, id)
	}
	return r.coll.Update(ctx, id, fields)
}

func (r *Repo[T]) Delete(ctx context.Context, id int64) error {
	return r.coll.Delete(ctx, id)
}

// prime raises the id generator past ids already in the store, so a clock
// that moved backwards between runs cannot cause reuse.
func (r *Repo[T]) prime(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.primed {
		return nil
	}
	maxID, err := r.coll.MaxID(ctx)
	if err != nil {
		return err
	}
	r.ids.Observe(maxID)
	r.primed = true
	return nil
}
